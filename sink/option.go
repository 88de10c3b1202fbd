// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package sink

import "github.com/pion/logging"

// Option configures a Video sink.
type Option func(*Video) error

// Autoplay controls whether assigning a source starts playback. Enabled by default.
func Autoplay(enabled bool) Option {
	return func(v *Video) error {
		v.autoplay = enabled
		return nil
	}
}

// Muted sets the initial mute flag.
func Muted(muted bool) Option {
	return func(v *Video) error {
		v.muted = muted
		return nil
	}
}

// WithLogger replaces the default "sink" logger.
func WithLogger(log logging.LeveledLogger) Option {
	return func(v *Video) error {
		v.log = log
		return nil
	}
}
