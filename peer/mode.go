// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import "github.com/pion/webrtcpeer/engine"

// Mode is the fixed role of a peer.
type Mode = engine.Mode

const (
	ModeSendonly = engine.ModeSendonly
	ModeRecvonly = engine.ModeRecvonly
	ModeSendrecv = engine.ModeSendrecv
)

// ParseMode accepts sendonly, recvonly and sendrecv plus the legacy
// spellings send, recv and sendRecv.
func ParseMode(s string) (Mode, error) {
	return engine.ParseMode(s)
}

// NewSendonly creates a peer that only sends local media.
func NewSendonly(opts ...Option) (*Peer, error) {
	return New(ModeSendonly, opts...)
}

// NewRecvonly creates a peer that only receives remote media.
func NewRecvonly(opts ...Option) (*Peer, error) {
	return New(ModeRecvonly, opts...)
}

// NewSendrecv creates a peer that sends and receives media.
func NewSendrecv(opts ...Option) (*Peer, error) {
	return New(ModeSendrecv, opts...)
}
