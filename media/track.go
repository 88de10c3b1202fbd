// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package media holds the track and stream types shared by the connection
// engine, the presentation sinks and the peer wrapper.
package media

import (
	"image"

	"github.com/pion/webrtc/v4"
)

// Track is the minimal view of a media track. *webrtc.TrackRemote,
// webrtc.TrackLocal and mediadevices.Track all satisfy it.
type Track interface {
	ID() string
	StreamID() string
	Kind() webrtc.RTPCodecType
}

// FrameSource is a video track that can report the most recent decoded frame.
type FrameSource interface {
	Track
	// CurrentFrame returns the latest frame, or false if none has arrived yet.
	CurrentFrame() (image.Image, bool)
}

// TrackGroup is one sender or receiver of a connection together with its track.
type TrackGroup struct {
	Track Track
	// Mid of the owning transceiver, empty until negotiated.
	Mid string
}

type trackKey struct {
	streamID string
	id       string
	kind     webrtc.RTPCodecType
}

func keyOf(t Track) trackKey {
	return trackKey{streamID: t.StreamID(), id: t.ID(), kind: t.Kind()}
}
