// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"context"
	"errors"
	"image"
	"io"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/rtcp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/samplebuilder"
	"github.com/pion/webrtcpeer/media"
)

const sampleMaxLate = 64

// RemoteTrack is a received track. Video tracks with VP8 decoding enabled
// expose their most recent frame.
type RemoteTrack struct {
	track    *webrtc.TrackRemote
	receiver *webrtc.RTPReceiver
	frames   *media.FrameBuffer
	log      logging.LeveledLogger

	mu      sync.Mutex
	decoder *vp8Decoder
}

func newRemoteTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver, log logging.LeveledLogger) *RemoteTrack {
	return &RemoteTrack{
		track:    track,
		receiver: receiver,
		frames:   media.NewFrameBuffer(),
		log:      log,
	}
}

func (t *RemoteTrack) ID() string                { return t.track.ID() }
func (t *RemoteTrack) StreamID() string          { return t.track.StreamID() }
func (t *RemoteTrack) Kind() webrtc.RTPCodecType { return t.track.Kind() }

// CurrentFrame returns the last decoded frame.
func (t *RemoteTrack) CurrentFrame() (image.Image, bool) {
	return t.frames.Current()
}

// Remote returns the underlying pion track.
func (t *RemoteTrack) Remote() *webrtc.TrackRemote {
	return t.track
}

// Receiver returns the receiver the track arrived on.
func (t *RemoteTrack) Receiver() *webrtc.RTPReceiver {
	return t.receiver
}

// FramesDecoded returns how many frames have been decoded so far.
func (t *RemoteTrack) FramesDecoded() uint64 {
	return t.frames.Count()
}

func (t *RemoteTrack) isVP8() bool {
	return t.track.Kind() == webrtc.RTPCodecTypeVideo && t.track.Codec().MimeType == webrtc.MimeTypeVP8
}

// drain reads and discards packets until the track ends.
func (t *RemoteTrack) drain() {
	for {
		if _, _, err := t.track.ReadRTP(); err != nil {
			t.logReadEnd(err)

			return
		}
	}
}

// decodeVP8 depacketizes VP8 into frames and feeds them to the decoder.
func (t *RemoteTrack) decodeVP8() {
	builder := samplebuilder.New(sampleMaxLate, &codecs.VP8Packet{}, t.track.Codec().ClockRate)
	for {
		packet, _, err := t.track.ReadRTP()
		if err != nil {
			t.logReadEnd(err)

			return
		}
		builder.Push(packet)
		for sample := builder.Pop(); sample != nil; sample = builder.Pop() {
			t.handleFrame(sample.Data)
		}
	}
}

func (t *RemoteTrack) handleFrame(frame []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.decoder == nil {
		width, height, ok := ParseVP8KeyframeDimensions(frame)
		if !ok {
			return
		}
		decoder, err := newVP8Decoder(width, height, t.frames, t.log)
		if err != nil {
			t.log.Errorf("track %s: %v", t.ID(), err)

			return
		}
		t.log.Infof("track %s: decoding %dx%d VP8", t.ID(), width, height)
		t.decoder = decoder
	}
	t.decoder.decode(frame)
}

// requestKeyframes sends a PLI right away and then every interval until the
// first frame is decoded or ctx ends.
func (t *RemoteTrack) requestKeyframes(ctx context.Context, pc *webrtc.PeerConnection, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pli := &rtcp.PictureLossIndication{MediaSSRC: uint32(t.track.SSRC())}
		if err := pc.WriteRTCP([]rtcp.Packet{pli}); err != nil {
			t.log.Debugf("track %s: keyframe request failed: %v", t.ID(), err)
		}

		select {
		case <-ctx.Done():
			return
		case <-t.frames.First():
			return
		case <-ticker.C:
		}
	}
}

func (t *RemoteTrack) logReadEnd(err error) {
	if errors.Is(err, io.EOF) {
		t.log.Infof("track %s ended", t.ID())
	} else {
		t.log.Infof("track %s read failed: %v", t.ID(), err)
	}
}

func (t *RemoteTrack) close() error {
	t.mu.Lock()
	decoder := t.decoder
	t.decoder = nil
	t.mu.Unlock()

	var err error
	if decoder != nil {
		err = decoder.close()
	}

	return errors.Join(err, t.frames.Close())
}
