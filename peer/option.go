// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"github.com/pion/logging"
	"github.com/pion/webrtcpeer/engine"
)

// Option configures a Peer.
type Option func(*Peer) error

// LocalVideo sets the sink that previews local media.
func LocalVideo(s Sink) Option {
	return func(p *Peer) error {
		p.localVideo = s
		return nil
	}
}

// RemoteVideo sets the sink that shows the received tracks.
func RemoteVideo(s Sink) Option {
	return func(p *Peer) error {
		p.remoteVideo = s
		return nil
	}
}

// WithEngine uses e instead of creating an *engine.Core. The peer takes
// ownership and closes it on Dispose.
func WithEngine(e Engine) Option {
	return func(p *Peer) error {
		if e == nil {
			return ErrNilEngine
		}
		p.engine = e
		return nil
	}
}

// WithEngineOptions forwards options to the default engine.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(p *Peer) error {
		p.engineOpts = append(p.engineOpts, opts...)
		return nil
	}
}

// WithSinkFactory sets how the off-screen sink used for captures without
// a remote sink is created.
func WithSinkFactory(factory func() (Sink, error)) Option {
	return func(p *Peer) error {
		p.newSink = factory
		return nil
	}
}

// WithLoggerFactory replaces the default logger factory. It is also passed
// to the default engine.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(p *Peer) error {
		p.loggerFactory = factory
		p.log = factory.NewLogger("peer")
		return nil
	}
}

// WithObserver registers fn to be told about every lifecycle step.
func WithObserver(fn func(Event)) Option {
	return func(p *Peer) error {
		p.observer = fn
		return nil
	}
}
