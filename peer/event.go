// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package peer

import "time"

// EventKind names a peer lifecycle step.
type EventKind string

const (
	EventLocalBound    EventKind = "local-bound"
	EventRemoteBound   EventKind = "remote-bound"
	EventFrameCaptured EventKind = "frame-captured"
	EventDisposed      EventKind = "disposed"
)

// Event is reported to the observer after each lifecycle step.
type Event struct {
	Kind EventKind `json:"kind"`
	Mode Mode      `json:"mode"`
	// Tracks is the size of the stream that was bound or captured.
	Tracks int       `json:"tracks"`
	Time   time.Time `json:"time"`
}
