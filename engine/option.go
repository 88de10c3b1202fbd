// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"io"
	"time"

	"github.com/pion/logging"
	"github.com/pion/mediadevices"
	"github.com/pion/transport/v3/vnet"
	"github.com/pion/webrtc/v4"
)

// Option configures a Core before its peer connection is created.
type Option func(*Core) error

// WithConfiguration sets the ICE servers and policies of the peer connection.
func WithConfiguration(configuration webrtc.Configuration) Option {
	return func(c *Core) error {
		c.configuration = configuration
		return nil
	}
}

// WithVideoStream attaches local media whose video tracks are sent.
func WithVideoStream(stream mediadevices.MediaStream) Option {
	return func(c *Core) error {
		c.videoStream = stream
		return nil
	}
}

// WithAudioStream attaches local media whose audio tracks are sent.
// Without it, audio tracks of the video stream are used.
func WithAudioStream(stream mediadevices.MediaStream) Option {
	return func(c *Core) error {
		c.audioStream = stream
		return nil
	}
}

// WithLoggerFactory replaces the default logger factory.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(c *Core) error {
		c.loggerFactory = factory
		c.log = factory.NewLogger("engine")
		return nil
	}
}

// SetVnet runs the connection on a virtual network.
func SetVnet(v *vnet.Net, publicIPs []string) Option {
	return func(c *Core) error {
		c.settingEngine.SetNet(v)
		c.settingEngine.SetICETimeouts(time.Second, time.Second, 200*time.Millisecond)
		c.settingEngine.SetNAT1To1IPs(publicIPs, webrtc.ICECandidateTypeHost)
		return nil
	}
}

// PacketLogWriter dumps received RTP and sent RTCP packets. Either writer may be nil.
func PacketLogWriter(rtpWriter, rtcpWriter io.Writer) Option {
	return func(c *Core) error {
		c.rtpWriter = rtpWriter
		c.rtcpWriter = rtcpWriter
		return nil
	}
}

// DecodeVideo toggles VP8 decoding of remote video. Enabled by default;
// without it remote tracks never produce frames.
func DecodeVideo(enabled bool) Option {
	return func(c *Core) error {
		c.decodeVideo = enabled
		return nil
	}
}

// KeyframeInterval sets how often a keyframe is requested until a remote
// track produces its first frame.
func KeyframeInterval(interval time.Duration) Option {
	return func(c *Core) error {
		if interval <= 0 {
			return ErrInvalidInterval
		}
		c.keyframeInterval = interval
		return nil
	}
}

// BandwidthEstimation enables send-side congestion control starting at
// initialBitrate bits per second. Estimates are applied to the encoders of
// the local tracks.
func BandwidthEstimation(initialBitrate int) Option {
	return func(c *Core) error {
		if initialBitrate <= 0 {
			return ErrInvalidBitrate
		}
		c.initialBitrate = initialBitrate
		return nil
	}
}
