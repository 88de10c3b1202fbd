// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package media

import (
	"errors"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// Static errors for err113 compliance.
var (
	ErrBufferClosed = errors.New("buffer closed")
	ErrNilFrame     = errors.New("nil frame")
)

// FrameBuffer keeps the most recent video frame of a track. Decoders reuse
// their output buffers, so every frame is copied on the way in; readers get
// an image that stays valid after the next SendFrame.
type FrameBuffer struct {
	mu     sync.RWMutex
	frame  *image.RGBA
	count  uint64
	closed bool

	first     chan struct{}
	firstOnce sync.Once
}

// NewFrameBuffer creates an empty frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		first: make(chan struct{}),
	}
}

// SendFrame replaces the current frame with a copy of img.
func (f *FrameBuffer) SendFrame(img image.Image) error {
	if img == nil {
		return ErrNilFrame
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrBufferClosed
	}

	// Readers may still hold the previous frame, so it is never reused.
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(dst, image.Point{}, img, bounds, draw.Src, nil)

	f.frame = dst
	f.count++
	f.firstOnce.Do(func() { close(f.first) })

	return nil
}

// Current returns the latest frame, or false if none has been received.
func (f *FrameBuffer) Current() (image.Image, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.frame == nil {
		return nil, false
	}

	return f.frame, true
}

// Count returns how many frames have been received.
func (f *FrameBuffer) Count() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.count
}

// First is closed once the first frame has been received.
func (f *FrameBuffer) First() <-chan struct{} {
	return f.first
}

// Close drops the current frame and rejects further frames.
func (f *FrameBuffer) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	f.frame = nil

	return nil
}
