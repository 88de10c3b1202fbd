// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Package peer binds a WebRTC connection to local and remote video sinks.
//
// A Peer subscribes to the stream events of its connection engine and keeps
// the configured sinks pointed at the current local and inbound tracks. It
// can capture a still frame of the remote view and tears every binding down,
// exactly once, on Dispose.
package peer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pion/logging"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/engine"
	"github.com/pion/webrtcpeer/sink"
)

// Static errors for err113 compliance.
var (
	ErrNoRemoteStream = errors.New("no remote video stream available")
	ErrNoFrameData    = errors.New("no remote video stream data available")
	ErrPeerDisposed   = errors.New("peer disposed")
	ErrNilEngine      = errors.New("nil engine")
)

// Peer is a connection engine together with its presentation bindings.
type Peer struct {
	mode       Mode
	engine     Engine
	engineOpts []engine.Option

	localVideo  Sink
	remoteVideo Sink
	newSink     func() (Sink, error)
	observer    func(Event)

	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger

	mu sync.Mutex
	// localMuted is the local sink's mute flag before any binding.
	localMuted  bool
	unsubscribe []func()
	disposed    bool
}

// New creates a peer in the given mode and starts its engine.
func New(mode Mode, opts ...Option) (*Peer, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", engine.ErrInvalidMode, mode)
	}

	loggerFactory := logging.NewDefaultLoggerFactory()
	p := &Peer{
		mode:          mode,
		loggerFactory: loggerFactory,
		log:           loggerFactory.NewLogger("peer"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	if p.newSink == nil {
		p.newSink = p.offscreenSink
	}

	if p.engine == nil {
		engineOpts := append([]engine.Option{engine.WithLoggerFactory(p.loggerFactory)}, p.engineOpts...)
		core, err := engine.NewCore(mode, engineOpts...)
		if err != nil {
			return nil, err
		}
		p.engine = core
	}

	if p.localVideo != nil {
		p.localMuted = p.localVideo.Muted()
	}
	p.unsubscribe = []func(){
		p.engine.OnLocalStreamReady(p.bindLocal),
		p.engine.OnRemoteStreamReady(p.bindRemote),
	}

	if err := p.engine.Start(); err != nil {
		for _, fn := range p.unsubscribe {
			fn()
		}

		return nil, errors.Join(err, p.engine.Close())
	}
	p.log.Debugf("%s peer started", mode)

	return p, nil
}

func (p *Peer) offscreenSink() (Sink, error) {
	video, err := sink.NewVideo(sink.WithLogger(p.loggerFactory.NewLogger("sink")))
	if err != nil {
		return nil, err
	}

	return video, nil
}

// Mode returns the role fixed at construction.
func (p *Peer) Mode() Mode {
	return p.mode
}

// LocalVideo returns the configured local sink, or nil.
func (p *Peer) LocalVideo() Sink {
	return p.localVideo
}

// RemoteVideo returns the configured remote sink, or nil.
func (p *Peer) RemoteVideo() Sink {
	return p.remoteVideo
}

// Engine returns the connection engine.
func (p *Peer) Engine() Engine {
	return p.engine
}

// LocalDescription passes through the engine's local session description.
func (p *Peer) LocalDescription() *webrtc.SessionDescription {
	return p.engine.LocalDescription()
}

// RemoteDescription passes through the engine's remote session description.
func (p *Peer) RemoteDescription() *webrtc.SessionDescription {
	return p.engine.RemoteDescription()
}

// Disposed reports whether Dispose has been called.
func (p *Peer) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.disposed
}

func (p *Peer) notify(kind EventKind, tracks int) {
	if p.observer == nil {
		return
	}
	p.observer(Event{Kind: kind, Mode: p.mode, Tracks: tracks, Time: time.Now()})
}
