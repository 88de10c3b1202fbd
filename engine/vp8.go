// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/mediadevices/pkg/codec"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtcpeer/media"
)

const (
	vp8KeyframeHeaderSize = 10
	vp8DimensionMask      = 0x3fff
	feederQueueSize       = 16
)

var vp8StartCode = [3]byte{0x9d, 0x01, 0x2a}

// isVP8Keyframe reports whether an assembled VP8 frame is a keyframe.
func isVP8Keyframe(frame []byte) bool {
	return len(frame) > 0 && frame[0]&0x01 == 0
}

// ParseVP8KeyframeDimensions reads the frame size from the uncompressed
// header of a VP8 keyframe.
func ParseVP8KeyframeDimensions(frame []byte) (width, height int, ok bool) {
	if len(frame) < vp8KeyframeHeaderSize || !isVP8Keyframe(frame) {
		return 0, 0, false
	}
	if [3]byte(frame[3:6]) != vp8StartCode {
		return 0, 0, false
	}
	width = int(binary.LittleEndian.Uint16(frame[6:8]) & vp8DimensionMask)
	height = int(binary.LittleEndian.Uint16(frame[8:10]) & vp8DimensionMask)
	if width == 0 || height == 0 {
		return 0, 0, false
	}

	return width, height, true
}

// frameFeeder hands assembled frames to the decoder through io.Reader.
// Read blocks until a frame is queued and returns io.EOF once closed.
type frameFeeder struct {
	frames chan []byte
	done   chan struct{}
	once   sync.Once

	current []byte
	offset  int
}

func newFrameFeeder() *frameFeeder {
	return &frameFeeder{
		frames: make(chan []byte, feederQueueSize),
		done:   make(chan struct{}),
	}
}

func (f *frameFeeder) Read(buffer []byte) (int, error) {
	if f.current == nil {
		select {
		case <-f.done:
			return 0, io.EOF
		case f.current = <-f.frames:
			f.offset = 0
		}
	}

	n := copy(buffer, f.current[f.offset:])
	f.offset += n
	if f.offset >= len(f.current) {
		f.current = nil
	}

	return n, nil
}

// feed queues a copy of frame, dropping it when the decoder falls behind.
func (f *frameFeeder) feed(frame []byte) bool {
	data := append([]byte(nil), frame...)
	select {
	case <-f.done:
		return false
	default:
	}

	select {
	case f.frames <- data:
		return true
	default:
		return false
	}
}

func (f *frameFeeder) close() {
	f.once.Do(func() { close(f.done) })
}

// vp8Decoder decodes VP8 frames into a frame buffer on its own goroutine.
type vp8Decoder struct {
	decoder  codec.VideoDecoder
	feeder   *frameFeeder
	frames   *media.FrameBuffer
	log      logging.LeveledLogger
	finished chan struct{}
}

func newVP8Decoder(width, height int, frames *media.FrameBuffer, log logging.LeveledLogger) (*vp8Decoder, error) {
	feeder := newFrameFeeder()
	decoder, err := vpx.NewDecoder(feeder, prop.Media{
		Video: prop.Video{
			Width:  width,
			Height: height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoder, err)
	}

	d := &vp8Decoder{
		decoder:  decoder,
		feeder:   feeder,
		frames:   frames,
		log:      log,
		finished: make(chan struct{}),
	}
	go d.run()

	return d, nil
}

func (d *vp8Decoder) run() {
	defer close(d.finished)

	for {
		img, release, err := d.decoder.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			select {
			case <-d.feeder.done:
				return
			default:
			}
			d.log.Debugf("vp8 decode failed: %v", err)

			continue
		}
		if img == nil {
			continue
		}
		if err := d.frames.SendFrame(img); err != nil && !errors.Is(err, media.ErrBufferClosed) {
			d.log.Warnf("failed to store decoded frame: %v", err)
		}
		if release != nil {
			release()
		}
	}
}

func (d *vp8Decoder) decode(frame []byte) {
	if !d.feeder.feed(frame) {
		d.log.Debugf("decoder busy, dropped %d byte frame", len(frame))
	}
}

func (d *vp8Decoder) close() error {
	d.feeder.close()
	<-d.finished

	if err := d.decoder.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrDecoder, err)
	}

	return nil
}
