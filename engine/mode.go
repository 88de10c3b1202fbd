// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package engine

import (
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Mode is the fixed role of a connection.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeSendonly
	ModeRecvonly
	ModeSendrecv
)

// ParseMode parses a mode label. Besides the canonical names it accepts the
// legacy spellings "send", "recv" and "sendRecv".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "sendonly", "send":
		return ModeSendonly, nil
	case "recvonly", "recv":
		return ModeRecvonly, nil
	case "sendrecv", "sendRecv":
		return ModeSendrecv, nil
	default:
		return ModeUnknown, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeSendonly:
		return "sendonly"
	case ModeRecvonly:
		return "recvonly"
	case ModeSendrecv:
		return "sendrecv"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the three connection roles.
func (m Mode) Valid() bool {
	return m == ModeSendonly || m == ModeRecvonly || m == ModeSendrecv
}

// Sends reports whether local media is attached in this mode.
func (m Mode) Sends() bool {
	return m == ModeSendonly || m == ModeSendrecv
}

// Receives reports whether remote media is expected in this mode.
func (m Mode) Receives() bool {
	return m == ModeRecvonly || m == ModeSendrecv
}

// Direction maps the mode to a transceiver direction.
func (m Mode) Direction() webrtc.RTPTransceiverDirection {
	switch m {
	case ModeSendonly:
		return webrtc.RTPTransceiverDirectionSendonly
	case ModeRecvonly:
		return webrtc.RTPTransceiverDirectionRecvonly
	case ModeSendrecv:
		return webrtc.RTPTransceiverDirectionSendrecv
	default:
		return webrtc.RTPTransceiverDirectionUnknown
	}
}

// MarshalText encodes the mode as its canonical label.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMode, int(m))
	}

	return []byte(m.String()), nil
}

// UnmarshalText accepts any label ParseMode accepts.
func (m *Mode) UnmarshalText(text []byte) error {
	mode, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = mode

	return nil
}
