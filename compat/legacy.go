// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Package compat keeps the accessor names of older peer wrappers working on
// top of peer.Peer. New code should use peer directly.
package compat

import (
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/media"
	"github.com/pion/webrtcpeer/peer"
)

// Legacy exposes the deprecated accessors of a Peer.
type Legacy struct {
	*peer.Peer
}

// Wrap adds the deprecated accessors to p.
func Wrap(p *peer.Peer) *Legacy {
	return &Legacy{Peer: p}
}

// New parses a mode label such as "send", "recv" or "sendRecv" and creates
// a wrapped peer.
func New(mode string, opts ...peer.Option) (*Legacy, error) {
	m, err := peer.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	p, err := peer.New(m, opts...)
	if err != nil {
		return nil, err
	}

	return Wrap(p), nil
}

// GetLocalSessionDescriptor returns the local session description.
//
// Deprecated: use Peer.LocalDescription.
func (l *Legacy) GetLocalSessionDescriptor() *webrtc.SessionDescription {
	return l.LocalDescription()
}

// GetRemoteSessionDescriptor returns the remote session description.
//
// Deprecated: use Peer.RemoteDescription.
func (l *Legacy) GetRemoteSessionDescriptor() *webrtc.SessionDescription {
	return l.RemoteDescription()
}

// GetLocalStream builds a stream from the outbound tracks, optionally only
// those at the given sender positions.
//
// Deprecated: use Engine().OutboundTrackGroups.
func (l *Legacy) GetLocalStream(indices ...int) *media.Stream {
	return media.StreamFromGroups(l.Engine().OutboundTrackGroups(indices...))
}

// GetRemoteStream builds a stream from the inbound tracks, optionally only
// those at the given receiver positions.
//
// Deprecated: use Engine().InboundTrackGroups.
func (l *Legacy) GetRemoteStream(indices ...int) *media.Stream {
	groups := l.Engine().InboundTrackGroups()
	if len(indices) == 0 {
		return media.StreamFromGroups(groups)
	}

	selected := make([]media.TrackGroup, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(groups) {
			selected = append(selected, groups[i])
		}
	}

	return media.StreamFromGroups(selected)
}

// ShowLocalVideo does nothing; the local sink is bound automatically.
//
// Deprecated: the local sink is bound when local media is ready.
func (l *Legacy) ShowLocalVideo() {}
