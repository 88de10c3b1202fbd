// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

// Package sink provides an in-memory presentation surface for media streams.
// It behaves like a video element: it accepts a stream as its source, plays
// and pauses, reports a ready state and exposes the frame it would display.
package sink

import (
	"errors"
	"image"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/webrtcpeer/media"
)

// Static errors for err113 compliance.
var (
	ErrNoSource = errors.New("sink has no source")
)

// Video renders the first video track of its source that can report frames.
// All methods are safe for concurrent use.
type Video struct {
	mu sync.Mutex

	source   *media.Stream
	paused   bool
	muted    bool
	autoplay bool
	// frozen is the frame shown while paused.
	frozen image.Image

	log logging.LeveledLogger
}

// NewVideo creates a sink with no source.
func NewVideo(opts ...Option) (*Video, error) {
	v := &Video{
		paused:   true,
		autoplay: true,
		log:      logging.NewDefaultLoggerFactory().NewLogger("sink"),
	}
	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}

// SetSource replaces the current source. Nil detaches it. With autoplay
// enabled a non-nil source starts playing immediately.
func (v *Video) SetSource(stream *media.Stream) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.source = stream
	v.frozen = nil
	if stream == nil {
		v.paused = true
		return
	}
	if v.autoplay {
		v.paused = false
	}
	v.log.Debugf("source %s assigned with %d tracks", stream.ID(), stream.Len())
}

// Source returns the assigned stream, or nil.
func (v *Video) Source() *media.Stream {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.source
}

// Play resumes playback of the current source.
func (v *Video) Play() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.source == nil {
		return ErrNoSource
	}
	v.paused = false
	v.frozen = nil

	return nil
}

// Pause stops playback and freezes the frame currently on display.
func (v *Video) Pause() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.paused {
		return
	}
	v.paused = true
	if src := v.frameSource(); src != nil {
		if img, ok := src.CurrentFrame(); ok {
			v.frozen = img
		}
	}
}

// Load resets playback for the current source and drops any frozen frame.
func (v *Video) Load() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.frozen = nil
	v.paused = v.source == nil || !v.autoplay
}

// Paused reports whether playback is stopped.
func (v *Video) Paused() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.paused
}

// Muted reports the mute flag.
func (v *Video) Muted() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.muted
}

// SetMuted sets the mute flag.
func (v *Video) SetMuted(muted bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.muted = muted
}

// ReadyState reports how much displayable data the sink holds.
func (v *Video) ReadyState() media.ReadyState {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.frameSource() == nil {
		return media.HaveNothing
	}
	if v.frame() == nil {
		return media.HaveMetadata
	}
	if v.paused {
		return media.HaveCurrentData
	}

	return media.HaveEnoughData
}

// Frame returns the image the sink would display, or nil.
func (v *Video) Frame() image.Image {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.frame()
}

// VideoSize returns the native dimensions of the displayed frame, or zero.
func (v *Video) VideoSize() (width, height int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	img := v.frame()
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()

	return b.Dx(), b.Dy()
}

func (v *Video) frame() image.Image {
	if v.paused && v.frozen != nil {
		return v.frozen
	}
	src := v.frameSource()
	if src == nil {
		return nil
	}
	img, ok := src.CurrentFrame()
	if !ok {
		return nil
	}
	// A paused sink keeps showing the first frame it rendered.
	if v.paused {
		v.frozen = img
	}

	return img
}

func (v *Video) frameSource() media.FrameSource {
	for _, track := range v.source.VideoTracks() {
		if src, ok := track.(media.FrameSource); ok {
			return src
		}
	}

	return nil
}
