// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"errors"
	"image/color"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/engine"
	"github.com/pion/webrtcpeer/media"
	"github.com/pion/webrtcpeer/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allModes = []Mode{ModeSendonly, ModeRecvonly, ModeSendrecv}

func newTestPeer(t *testing.T, mode Mode, eng *fakeEngine, opts ...Option) *Peer {
	t.Helper()

	p, err := New(mode, append([]Option{WithEngine(eng)}, opts...)...)
	require.NoError(t, err, "New() should not error")

	return p
}

func TestNew_StartsEngineAfterSubscribing(t *testing.T) {
	eng := newFakeEngine()
	p := newTestPeer(t, ModeSendrecv, eng)

	assert.Equal(t, 1, eng.starts)
	assert.Equal(t, 2, eng.handlerCount())
	assert.Equal(t, ModeSendrecv, p.Mode())
	assert.Same(t, eng, p.Engine())
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New(engine.ModeUnknown, WithEngine(newFakeEngine()))
	assert.ErrorIs(t, err, engine.ErrInvalidMode)

	_, err = New(Mode(42))
	assert.ErrorIs(t, err, engine.ErrInvalidMode)
}

func TestNew_NilEngine(t *testing.T) {
	_, err := New(ModeRecvonly, WithEngine(nil))
	assert.ErrorIs(t, err, ErrNilEngine)
}

func TestNew_StartFailureClosesEngine(t *testing.T) {
	errStart := errors.New("start failed")
	eng := newFakeEngine()
	eng.startErr = errStart

	p, err := New(ModeSendonly, WithEngine(eng))
	assert.ErrorIs(t, err, errStart)
	assert.Nil(t, p)
	assert.Equal(t, 1, eng.closes)
	assert.Equal(t, 0, eng.handlerCount())
}

func TestModeConstructors(t *testing.T) {
	constructors := map[Mode]func(...Option) (*Peer, error){
		ModeSendonly: NewSendonly,
		ModeRecvonly: NewRecvonly,
		ModeSendrecv: NewSendrecv,
	}
	for mode, construct := range constructors {
		t.Run(mode.String(), func(t *testing.T) {
			p, err := construct(WithEngine(newFakeEngine()))
			require.NoError(t, err)
			assert.Equal(t, mode, p.Mode())
		})
	}
}

func TestParseMode_Legacy(t *testing.T) {
	mode, err := ParseMode("sendRecv")
	require.NoError(t, err)
	assert.Equal(t, ModeSendrecv, mode)
}

func TestAccessors(t *testing.T) {
	eng := newFakeEngine()
	eng.localDesc = &webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"}
	eng.remoteDesc = &webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0"}
	local, remote := newRecordingSink(t), newRecordingSink(t)

	p := newTestPeer(t, ModeSendrecv, eng, LocalVideo(local), RemoteVideo(remote))

	assert.Same(t, local, p.LocalVideo())
	assert.Same(t, remote, p.RemoteVideo())
	assert.Same(t, eng.localDesc, p.LocalDescription())
	assert.Same(t, eng.remoteDesc, p.RemoteDescription())
}

func TestBindLocal(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			eng := newFakeEngine()
			camera := newVideoTrack("camera")
			eng.setLocal(camera, newAudioTrack("mic"))
			local := newRecordingSink(t)

			newTestPeer(t, mode, eng, LocalVideo(local))
			eng.emitLocal()

			assert.Same(t, eng.LocalStream(), local.Source())
			assert.True(t, local.Muted(), "local playback must be muted")
		})
	}
}

func TestBindLocal_NoSink(t *testing.T) {
	eng := newFakeEngine()
	eng.setLocal(newVideoTrack("camera"))
	remote := newRecordingSink(t)
	newTestPeer(t, ModeSendonly, eng, RemoteVideo(remote))

	eng.emitLocal()

	assert.Empty(t, remote.Calls())
}

func TestBindRemote_OrderAndNoDuplicates(t *testing.T) {
	eng := newFakeEngine()
	a, b := newVideoTrack("A"), newAudioTrack("B")
	eng.setInbound(a, b)
	remote := newRecordingSink(t)
	newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))

	eng.emitRemote()

	assert.Equal(t, []media.Track{a, b}, remote.Source().Tracks())
}

func TestBindRemote_PausesReplacesAndPlays(t *testing.T) {
	eng := newFakeEngine()
	eng.setInbound(newVideoTrack("A"))
	remote := newRecordingSink(t)
	newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))

	eng.emitRemote()

	assert.Equal(t, []string{"Pause", "SetSource", "Play"}, remote.Calls())
	assert.False(t, remote.Paused())
}

func TestBindRemote_RebuildsFromCurrentSet(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			eng := newFakeEngine()
			remote := newRecordingSink(t)
			newTestPeer(t, mode, eng, RemoteVideo(remote))

			a, b, c := newVideoTrack("A"), newAudioTrack("B"), newVideoTrack("C")
			eng.setInbound(a, b)
			eng.emitRemote()
			first := remote.Source()

			eng.setInbound(c)
			eng.emitRemote()

			assert.Equal(t, []media.Track{c}, remote.Source().Tracks())
			assert.NotSame(t, first, remote.Source())
			assert.False(t, remote.Source().Contains(a))
			assert.False(t, remote.Source().Contains(b))
		})
	}
}

func TestBindRemote_ZeroTracks(t *testing.T) {
	eng := newFakeEngine()
	remote := newRecordingSink(t)
	newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))

	eng.emitRemote()

	require.NotNil(t, remote.Source())
	assert.Equal(t, 0, remote.Source().Len())
	assert.Equal(t, media.HaveNothing, remote.ReadyState())
}

func TestCurrentFrame_TemporarySink(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			eng := newFakeEngine()
			eng.setLocal(newVideoTrack("camera"))
			local := newRecordingSink(t)

			var temp *recordingSink
			factory := func() (Sink, error) {
				temp = newRecordingSink(t)
				return temp, nil
			}
			p := newTestPeer(t, mode, eng, LocalVideo(local), WithSinkFactory(factory))
			eng.emitLocal()
			localSource := local.Source()
			local.reset()

			video := newVideoTrack("remote-video")
			video.push(t, 4, 2, color.RGBA{R: 200, A: 255})
			eng.setInbound(newAudioTrack("remote-audio"), video)
			eng.emitRemote()

			img, err := p.CurrentFrame()
			require.NoError(t, err)
			assert.Equal(t, 4, img.Bounds().Dx())
			assert.Equal(t, 2, img.Bounds().Dy())
			assert.Equal(t, color.RGBA{R: 200, A: 255}, img.RGBAAt(3, 1))

			assert.Same(t, localSource, local.Source(), "local sink source must be untouched")
			assert.Empty(t, local.Calls(), "local sink must not be written")

			require.NotNil(t, temp, "a temporary sink should have been created")
			assert.Nil(t, temp.Source(), "temporary sink must be released")
			assert.True(t, temp.Paused())
			assert.Equal(t, []string{"SetSource", "Play", "Pause", "SetSource", "Load"}, temp.Calls())
		})
	}
}

func TestCurrentFrame_TemporarySinkWithoutFrame(t *testing.T) {
	eng := newFakeEngine()
	eng.setInbound(newVideoTrack("remote-video"))
	p := newTestPeer(t, ModeRecvonly, eng)

	img, err := p.CurrentFrame()
	require.NoError(t, err)
	assert.True(t, img.Bounds().Empty())
}

func TestCurrentFrame_NoRemoteStream(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			created := false
			factory := func() (Sink, error) {
				created = true
				return newRecordingSink(t), nil
			}
			p := newTestPeer(t, mode, newFakeEngine(), LocalVideo(newRecordingSink(t)), WithSinkFactory(factory))

			img, err := p.CurrentFrame()
			assert.ErrorIs(t, err, ErrNoRemoteStream)
			assert.Nil(t, img)
			assert.False(t, created, "no sink should be created without inbound tracks")
		})
	}
}

func TestCurrentFrame_NoFrameData(t *testing.T) {
	eng := newFakeEngine()
	remote := newRecordingSink(t)
	p := newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))

	_, err := p.CurrentFrame()
	assert.ErrorIs(t, err, ErrNoFrameData, "sink never bound")

	eng.setInbound(newVideoTrack("remote-video"))
	eng.emitRemote()
	_, err = p.CurrentFrame()
	assert.ErrorIs(t, err, ErrNoFrameData, "bound but no frame yet")
}

func TestCurrentFrame_FromRemoteSink(t *testing.T) {
	eng := newFakeEngine()
	video := newVideoTrack("remote-video")
	eng.setInbound(video)
	remote := newRecordingSink(t)
	p := newTestPeer(t, ModeSendrecv, eng, RemoteVideo(remote))
	eng.emitRemote()

	video.push(t, 8, 6, color.RGBA{G: 100, A: 255})
	remote.reset()

	img, err := p.CurrentFrame()
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	assert.Empty(t, remote.Calls(), "capture must only read the configured sink")

	video.push(t, 8, 6, color.RGBA{B: 100, A: 255})
	assert.Equal(t, color.RGBA{G: 100, A: 255}, img.RGBAAt(0, 0), "snapshot must not follow the stream")
}

// resizingSink reports a stale size, as a sink does when a frame with new
// dimensions arrives between VideoSize and Frame.
type resizingSink struct {
	*recordingSink
}

func (r *resizingSink) VideoSize() (int, int) { return 4, 2 }

func TestCurrentFrame_SizedFromCapturedFrame(t *testing.T) {
	eng := newFakeEngine()
	video := newVideoTrack("remote-video")
	eng.setInbound(video)
	remote := &resizingSink{recordingSink: newRecordingSink(t)}
	p := newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))
	eng.emitRemote()
	video.push(t, 8, 6, color.RGBA{R: 100, A: 255})

	img, err := p.CurrentFrame()
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{R: 100, A: 255}, img.RGBAAt(7, 5))
}

func TestCurrentFrame_SinkFactoryError(t *testing.T) {
	errFactory := errors.New("no sink")
	eng := newFakeEngine()
	eng.setInbound(newVideoTrack("remote-video"))
	p := newTestPeer(t, ModeRecvonly, eng, WithSinkFactory(func() (Sink, error) { return nil, errFactory }))

	_, err := p.CurrentFrame()
	assert.ErrorIs(t, err, errFactory)
}

func TestDispose_ClearsSinksAndRestoresMute(t *testing.T) {
	for _, mode := range allModes {
		for _, initiallyMuted := range []bool{false, true} {
			eng := newFakeEngine()
			eng.setLocal(newVideoTrack("camera"))
			eng.setInbound(newVideoTrack("remote"))
			local := newRecordingSink(t, sink.Muted(initiallyMuted))
			remote := newRecordingSink(t)
			p := newTestPeer(t, mode, eng, LocalVideo(local), RemoteVideo(remote))

			eng.emitLocal()
			eng.emitRemote()
			require.True(t, local.Muted())
			require.NotNil(t, remote.Source())

			require.NoError(t, p.Dispose())

			assert.Nil(t, local.Source(), "%s: local source cleared", mode)
			assert.Nil(t, remote.Source(), "%s: remote source cleared", mode)
			assert.Equal(t, initiallyMuted, local.Muted(), "%s: local mute flag restored", mode)
			assert.True(t, local.Paused())
			assert.True(t, remote.Paused())
		}
	}
}

func TestDispose_SinksReleasedBeforeEngine(t *testing.T) {
	eng := newFakeEngine()
	eng.setInbound(newVideoTrack("remote"))
	local, remote := newRecordingSink(t), newRecordingSink(t)
	p := newTestPeer(t, ModeSendrecv, eng, LocalVideo(local), RemoteVideo(remote))
	eng.emitRemote()
	local.reset()
	remote.reset()

	var localAtClose, remoteAtClose []string
	eng.onClose = func() {
		localAtClose = local.Calls()
		remoteAtClose = remote.Calls()
	}
	require.NoError(t, p.Dispose())

	assert.Equal(t, []string{"Pause", "SetSource", "Load", "SetMuted"}, localAtClose)
	assert.Equal(t, []string{"Pause", "SetSource", "Load"}, remoteAtClose)
}

func TestDispose_Idempotent(t *testing.T) {
	eng := newFakeEngine()
	local := newRecordingSink(t)
	p := newTestPeer(t, ModeSendonly, eng, LocalVideo(local))

	require.NoError(t, p.Dispose())
	local.reset()
	require.NoError(t, p.Dispose())

	assert.Equal(t, 1, eng.closes)
	assert.Empty(t, local.Calls(), "second dispose must not touch sinks")
	assert.True(t, p.Disposed())
}

func TestDispose_PropagatesEngineError(t *testing.T) {
	errClose := errors.New("close failed")
	eng := newFakeEngine()
	eng.closeErr = errClose
	remote := newRecordingSink(t)
	p := newTestPeer(t, ModeRecvonly, eng, RemoteVideo(remote))

	assert.Equal(t, errClose, p.Dispose())
	assert.Nil(t, remote.Source(), "sinks are released even when the engine fails")
}

func TestAfterDispose(t *testing.T) {
	eng := newFakeEngine()
	eng.setLocal(newVideoTrack("camera"))
	video := newVideoTrack("remote")
	video.push(t, 2, 2, color.RGBA{A: 255})
	eng.setInbound(video)
	local, remote := newRecordingSink(t), newRecordingSink(t)
	p := newTestPeer(t, ModeSendrecv, eng, LocalVideo(local), RemoteVideo(remote))

	require.NoError(t, p.Dispose())
	assert.Equal(t, 0, eng.handlerCount(), "handlers unsubscribed")
	local.reset()
	remote.reset()

	eng.emitLocal()
	eng.emitRemote()
	p.bindLocal()
	p.bindRemote()
	assert.Empty(t, local.Calls())
	assert.Empty(t, remote.Calls())

	_, err := p.CurrentFrame()
	assert.ErrorIs(t, err, ErrPeerDisposed)
}

func TestObserver(t *testing.T) {
	var mu sync.Mutex
	var kinds []EventKind
	observer := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, ev.Kind)
		assert.Equal(t, ModeSendrecv, ev.Mode)
		assert.False(t, ev.Time.IsZero())
	}

	eng := newFakeEngine()
	eng.setLocal(newVideoTrack("camera"))
	video := newVideoTrack("remote")
	video.push(t, 2, 2, color.RGBA{A: 255})
	eng.setInbound(video)
	p := newTestPeer(t, ModeSendrecv, eng,
		LocalVideo(newRecordingSink(t)), RemoteVideo(newRecordingSink(t)), WithObserver(observer))

	eng.emitLocal()
	eng.emitRemote()
	_, err := p.CurrentFrame()
	require.NoError(t, err)
	require.NoError(t, p.Dispose())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventKind{EventLocalBound, EventRemoteBound, EventFrameCaptured, EventDisposed}, kinds)
}

func TestNew_DefaultEngine(t *testing.T) {
	remote := newRecordingSink(t)
	p, err := NewRecvonly(RemoteVideo(remote), WithEngineOptions(engine.DecodeVideo(false)))
	require.NoError(t, err)

	_, ok := p.Engine().(*engine.Core)
	assert.True(t, ok)

	_, err = p.CurrentFrame()
	assert.ErrorIs(t, err, ErrNoFrameData)
	assert.NoError(t, p.Dispose())
	assert.NoError(t, p.Dispose())
}
