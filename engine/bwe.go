// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"github.com/pion/interceptor/pkg/cc"
	"github.com/pion/interceptor/pkg/gcc"
	"github.com/pion/mediadevices/pkg/codec"
	"github.com/pion/webrtc/v4"
)

// setupBandwidthEstimation registers a send-side GCC estimator whose target
// bitrate drives the encoders of the local tracks.
func (c *Core) setupBandwidthEstimation() error {
	if c.initialBitrate <= 0 {
		return nil
	}

	controller, err := cc.NewInterceptor(func() (cc.BandwidthEstimator, error) {
		return gcc.NewSendSideBWE(gcc.SendSideBWEInitialBitrate(c.initialBitrate))
	})
	if err != nil {
		return err
	}
	controller.OnNewPeerConnection(func(_ string, estimator cc.BandwidthEstimator) {
		estimator.OnTargetBitrateChange(c.applyTargetBitrate)
	})
	c.registry.Add(controller)

	return webrtc.ConfigureTWCCHeaderExtensionSender(c.mediaEngine, c.registry)
}

// TargetBitrate returns the last bitrate estimate in bits per second, or 0
// before the first estimate or without bandwidth estimation.
func (c *Core) TargetBitrate() int {
	return int(c.targetBitrate.Load())
}

// applyTargetBitrate splits bitrate evenly between the local tracks whose
// encoders accept a new rate.
func (c *Core) applyTargetBitrate(bitrate int) {
	c.targetBitrate.Store(int64(bitrate))

	c.mu.RLock()
	var controllers []codec.BitRateController
	for _, local := range c.local {
		if controller := local.bitRateController(); controller != nil {
			controllers = append(controllers, controller)
		}
	}
	c.mu.RUnlock()

	if len(controllers) == 0 {
		c.log.Debugf("target bitrate %d bps, no adjustable encoder", bitrate)

		return
	}
	share := bitrate / len(controllers)
	for _, controller := range controllers {
		if err := controller.SetBitRate(share); err != nil {
			c.log.Warnf("failed to set encoder bitrate: %v", err)
		}
	}
	c.log.Debugf("target bitrate %d bps (%d per track)", bitrate, share)
}
