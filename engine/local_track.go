// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"errors"
	"image"
	"io"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec"
	"github.com/pion/mediadevices/pkg/io/video"
	"github.com/pion/webrtcpeer/media"
)

// LocalTrack is a captured track that is sent to the remote peer. Video
// tracks mirror their raw frames so a local sink can preview them.
type LocalTrack struct {
	mediadevices.Track

	frames *media.FrameBuffer
	reader video.Reader
	log    logging.LeveledLogger

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newLocalTrack(track mediadevices.Track, log logging.LeveledLogger) *LocalTrack {
	t := &LocalTrack{
		Track: track,
		log:   log,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	if videoTrack, ok := track.(*mediadevices.VideoTrack); ok {
		t.frames = media.NewFrameBuffer()
		t.reader = videoTrack.NewReader(false)
		go t.preview()
	} else {
		close(t.done)
	}

	return t
}

// CurrentFrame returns the last captured frame of a video track.
func (t *LocalTrack) CurrentFrame() (image.Image, bool) {
	if t.frames == nil {
		return nil, false
	}

	return t.frames.Current()
}

// bitRateController returns the track's encoder controller when the
// encoder can change its bitrate. It is nil until the track is bound.
func (t *LocalTrack) bitRateController() codec.BitRateController {
	controller, _ := t.EncoderController().(codec.BitRateController)

	return controller
}

func (t *LocalTrack) preview() {
	defer close(t.done)
	for {
		img, release, err := t.reader.Read()
		if err != nil {
			t.log.Debugf("local track %s preview stopped: %v", t.ID(), err)

			return
		}
		select {
		case <-t.stop:
			if release != nil {
				release()
			}

			return
		default:
		}
		sendErr := t.frames.SendFrame(img)
		if release != nil {
			release()
		}
		if sendErr != nil {
			if !errors.Is(sendErr, media.ErrBufferClosed) {
				t.log.Warnf("local track %s: %v", t.ID(), sendErr)
			}

			return
		}
	}
}

// close stops the preview. A reader that can be closed is closed so a
// pending Read returns at once; otherwise the preview ends with the next
// frame or when the caller closes the capture track, which it owns.
func (t *LocalTrack) close() error {
	t.stopOnce.Do(func() { close(t.stop) })
	if t.frames == nil {
		return nil
	}

	var readerErr error
	if closer, ok := t.reader.(io.Closer); ok {
		readerErr = closer.Close()
	}

	return errors.Join(readerErr, t.frames.Close())
}
