// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"image"

	"github.com/pion/webrtcpeer/media"
	"golang.org/x/image/draw"
)

// CurrentFrame returns a snapshot of the remote view sized to the video's
// native dimensions.
//
// With a remote sink it fails with ErrNoFrameData until the sink holds a
// frame. Without one, the inbound tracks are shown in a temporary sink that
// is released before returning; ErrNoRemoteStream is returned when there
// are none. The configured sinks are never modified.
func (p *Peer) CurrentFrame() (*image.RGBA, error) {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()

		return nil, ErrPeerDisposed
	}
	img, tracks, err := p.capture()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	p.notify(EventFrameCaptured, tracks)

	return img, nil
}

func (p *Peer) capture() (*image.RGBA, int, error) {
	if video := p.remoteVideo; video != nil {
		if video.ReadyState() < media.HaveCurrentData {
			return nil, 0, ErrNoFrameData
		}

		return snapshot(video), video.Source().Len(), nil
	}

	groups := p.engine.InboundTrackGroups()
	if len(groups) == 0 {
		return nil, 0, ErrNoRemoteStream
	}
	video, err := p.newSink()
	if err != nil {
		return nil, 0, err
	}
	defer release(video)

	stream := media.StreamFromGroups(groups)
	video.SetSource(stream)
	if err := video.Play(); err != nil {
		p.log.Debugf("off-screen sink did not play: %v", err)
	}

	return snapshot(video), stream.Len(), nil
}

// snapshot copies the displayed frame into a new image sized to that frame.
// A sink without a frame yields an image of its reported size with no content.
func snapshot(video Sink) *image.RGBA {
	frame := video.Frame()
	if frame == nil {
		width, height := video.VideoSize()

		return image.NewRGBA(image.Rect(0, 0, width, height))
	}
	bounds := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), frame, bounds.Min, draw.Src)

	return dst
}
