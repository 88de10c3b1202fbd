// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import "github.com/pion/webrtcpeer/media"

// bindLocal shows the local stream in the local sink, muted so local
// playback never feeds back into the microphone.
func (p *Peer) bindLocal() {
	p.mu.Lock()
	if p.disposed || p.localVideo == nil {
		p.mu.Unlock()

		return
	}
	stream := p.engine.LocalStream()
	p.localVideo.SetSource(stream)
	p.localVideo.SetMuted(true)
	p.mu.Unlock()

	p.log.Debugf("local sink bound to %d tracks", stream.Len())
	p.notify(EventLocalBound, stream.Len())
}

// bindRemote replaces the remote sink's source with a stream built from
// every inbound track the engine currently reports.
func (p *Peer) bindRemote() {
	p.mu.Lock()
	if p.disposed || p.remoteVideo == nil {
		p.mu.Unlock()

		return
	}
	stream := media.StreamFromGroups(p.engine.InboundTrackGroups())
	p.remoteVideo.Pause()
	p.remoteVideo.SetSource(stream)
	err := p.remoteVideo.Play()
	p.mu.Unlock()

	if err != nil {
		p.log.Warnf("remote sink did not resume: %v", err)
	}
	p.log.Debugf("remote sink bound to %d tracks", stream.Len())
	p.notify(EventRemoteBound, stream.Len())
}
