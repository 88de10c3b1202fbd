// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import (
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/engine"
	"github.com/pion/webrtcpeer/media"
)

// Engine is the connection a Peer binds to. *engine.Core implements it.
type Engine interface {
	// Start attaches local media. Subscriptions made before Start see the
	// first local stream event.
	Start() error
	OnLocalStreamReady(fn func()) (unsubscribe func())
	OnRemoteStreamReady(fn func()) (unsubscribe func())
	InboundTrackGroups() []media.TrackGroup
	OutboundTrackGroups(indices ...int) []media.TrackGroup
	LocalStream() *media.Stream
	LocalDescription() *webrtc.SessionDescription
	RemoteDescription() *webrtc.SessionDescription
	Close() error
}

var _ Engine = (*engine.Core)(nil)
