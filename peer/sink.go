// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"image"

	"github.com/pion/webrtcpeer/media"
	"github.com/pion/webrtcpeer/sink"
)

// Sink is a presentation surface. The caller owns it; a Peer only changes
// its source, playback and mute state.
type Sink interface {
	SetSource(stream *media.Stream)
	Source() *media.Stream
	Play() error
	Pause()
	Load()
	ReadyState() media.ReadyState
	VideoSize() (width, height int)
	Frame() image.Image
	Muted() bool
	SetMuted(muted bool)
}

var _ Sink = (*sink.Video)(nil)

// release detaches a sink from whatever it was showing.
func release(s Sink) {
	s.Pause()
	s.SetSource(nil)
	s.Load()
}
