// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/media"
	"github.com/pion/webrtcpeer/sink"
	"github.com/stretchr/testify/require"
)

type testTrack struct {
	id     string
	kind   webrtc.RTPCodecType
	frames *media.FrameBuffer
}

func newVideoTrack(id string) *testTrack {
	return &testTrack{id: id, kind: webrtc.RTPCodecTypeVideo, frames: media.NewFrameBuffer()}
}

func newAudioTrack(id string) *testTrack {
	return &testTrack{id: id, kind: webrtc.RTPCodecTypeAudio, frames: media.NewFrameBuffer()}
}

func (t *testTrack) ID() string                        { return t.id }
func (t *testTrack) StreamID() string                  { return "remote" }
func (t *testTrack) Kind() webrtc.RTPCodecType         { return t.kind }
func (t *testTrack) CurrentFrame() (image.Image, bool) { return t.frames.Current() }

func (t *testTrack) push(tb testing.TB, width, height int, c color.RGBA) {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	require.NoError(tb, t.frames.SendFrame(img))
}

type handler struct {
	id int
	fn func()
}

// fakeEngine delivers events synchronously on the calling goroutine.
type fakeEngine struct {
	mu       sync.Mutex
	nextID   int
	local    []handler
	remote   []handler
	inbound  []media.TrackGroup
	outbound []media.TrackGroup
	stream   *media.Stream

	startErr error
	closeErr error
	starts   int
	closes   int
	onClose  func()

	localDesc  *webrtc.SessionDescription
	remoteDesc *webrtc.SessionDescription
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{stream: media.NewStream()}
}

func (f *fakeEngine) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++

	return f.startErr
}

func (f *fakeEngine) subscribe(list *[]handler, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	*list = append(*list, handler{id: id, fn: fn})

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, h := range *list {
			if h.id == id {
				*list = append((*list)[:i:i], (*list)[i+1:]...)
				return
			}
		}
	}
}

func (f *fakeEngine) OnLocalStreamReady(fn func()) func()  { return f.subscribe(&f.local, fn) }
func (f *fakeEngine) OnRemoteStreamReady(fn func()) func() { return f.subscribe(&f.remote, fn) }

func (f *fakeEngine) emit(list *[]handler) {
	f.mu.Lock()
	handlers := append([]handler(nil), *list...)
	f.mu.Unlock()
	for _, h := range handlers {
		h.fn()
	}
}

func (f *fakeEngine) emitLocal()  { f.emit(&f.local) }
func (f *fakeEngine) emitRemote() { f.emit(&f.remote) }

func (f *fakeEngine) setInbound(tracks ...media.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = f.inbound[:0]
	for _, t := range tracks {
		f.inbound = append(f.inbound, media.TrackGroup{Track: t})
	}
}

func (f *fakeEngine) setLocal(tracks ...media.Track) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = media.NewStream(tracks...)
	f.outbound = f.outbound[:0]
	for _, t := range tracks {
		f.outbound = append(f.outbound, media.TrackGroup{Track: t})
	}
}

func (f *fakeEngine) InboundTrackGroups() []media.TrackGroup {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]media.TrackGroup(nil), f.inbound...)
}

func (f *fakeEngine) OutboundTrackGroups(indices ...int) []media.TrackGroup {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(indices) == 0 {
		return append([]media.TrackGroup(nil), f.outbound...)
	}
	var out []media.TrackGroup
	for _, i := range indices {
		if i >= 0 && i < len(f.outbound) {
			out = append(out, f.outbound[i])
		}
	}

	return out
}

func (f *fakeEngine) LocalStream() *media.Stream {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stream
}

func (f *fakeEngine) LocalDescription() *webrtc.SessionDescription  { return f.localDesc }
func (f *fakeEngine) RemoteDescription() *webrtc.SessionDescription { return f.remoteDesc }

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	f.closes++
	onClose := f.onClose
	f.mu.Unlock()
	if onClose != nil {
		onClose()
	}

	return f.closeErr
}

func (f *fakeEngine) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.local) + len(f.remote)
}

// recordingSink is a sink.Video that logs the mutating calls made on it.
type recordingSink struct {
	*sink.Video

	mu    sync.Mutex
	calls []string
}

func newRecordingSink(tb testing.TB, opts ...sink.Option) *recordingSink {
	tb.Helper()
	video, err := sink.NewVideo(opts...)
	require.NoError(tb, err)

	return &recordingSink{Video: video}
}

func (r *recordingSink) record(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recordingSink) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *recordingSink) SetSource(stream *media.Stream) {
	r.record("SetSource")
	r.Video.SetSource(stream)
}

func (r *recordingSink) Play() error {
	r.record("Play")

	return r.Video.Play()
}

func (r *recordingSink) Pause() {
	r.record("Pause")
	r.Video.Pause()
}

func (r *recordingSink) Load() {
	r.record("Load")
	r.Video.Load()
}

func (r *recordingSink) SetMuted(muted bool) {
	r.record("SetMuted")
	r.Video.SetMuted(muted)
}
