// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package logging

import (
	"fmt"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/rtcp"
	"github.com/pion/rtp"
)

const (
	maxSequenceNumberPlusOne = int64(65536)
	breakpoint               = 32768 // half of max uint16
)

// unwrapper extends 16 bit RTP sequence numbers to a monotonic counter.
type unwrapper struct {
	init          bool
	lastUnwrapped int64
}

func isNewer(value, previous uint16) bool {
	if value-previous == breakpoint {
		return value > previous
	}

	return value != previous && (value-previous) < breakpoint
}

func (u *unwrapper) unwrap(i uint16) int64 {
	if !u.init {
		u.init = true
		u.lastUnwrapped = int64(i)

		return u.lastUnwrapped
	}

	lastWrapped := uint16(u.lastUnwrapped)
	delta := int64(i - lastWrapped)
	if isNewer(i, lastWrapped) {
		if delta < 0 {
			delta += maxSequenceNumberPlusOne
		}
	} else if delta > 0 && u.lastUnwrapped+delta-maxSequenceNumberPlusOne >= 0 {
		delta -= maxSequenceNumberPlusOne
	}

	u.lastUnwrapped += delta

	return u.lastUnwrapped
}

// RTPFormatter writes one CSV line per received packet:
// time, payload type, ssrc, seq, timestamp, marker, size, unwrapped seq.
// Sequence numbers are unwrapped per SSRC. packetdump formats on a single
// goroutine, so the formatter is not locked.
type RTPFormatter struct {
	seqnr map[uint32]*unwrapper
}

func (f *RTPFormatter) unwrap(ssrc uint32, seq uint16) int64 {
	if f.seqnr == nil {
		f.seqnr = map[uint32]*unwrapper{}
	}
	u, ok := f.seqnr[ssrc]
	if !ok {
		u = &unwrapper{}
		f.seqnr[ssrc] = u
	}

	return u.unwrap(seq)
}

// RTPFormat implements packetdump.RTPFormatCallback.
func (f *RTPFormatter) RTPFormat(pkt *rtp.Packet, _ interceptor.Attributes) string {
	return fmt.Sprintf("%d, %d, %d, %d, %d, %t, %d, %d\n",
		time.Now().UnixMilli(),
		pkt.PayloadType,
		pkt.SSRC,
		pkt.SequenceNumber,
		pkt.Timestamp,
		pkt.Marker,
		pkt.MarshalSize(),
		f.unwrap(pkt.SSRC, pkt.SequenceNumber),
	)
}

// RTCPFormat writes one CSV line per compound packet:
// time, size, keyframe requests, receiver reports.
func RTCPFormat(pkts []rtcp.Packet, _ interceptor.Attributes) string {
	size, keyframeRequests, reports := 0, 0, 0
	for _, pkt := range pkts {
		if raw, err := pkt.Marshal(); err == nil {
			size += len(raw)
		}
		switch pkt.(type) {
		case *rtcp.PictureLossIndication, *rtcp.FullIntraRequest:
			keyframeRequests++
		case *rtcp.ReceiverReport:
			reports++
		}
	}

	return fmt.Sprintf("%d, %d, %d, %d\n", time.Now().UnixMilli(), size, keyframeRequests, reports)
}
