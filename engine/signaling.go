// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pion/webrtc/v4"
)

// CreateOffer creates an offer, applies it locally and waits for ICE
// gathering so the returned description carries all candidates.
func (c *Core) CreateOffer(ctx context.Context) (*webrtc.SessionDescription, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	offer, err := c.peerConnection.CreateOffer(nil)
	if err != nil {
		return nil, err
	}

	return c.setLocal(ctx, offer)
}

// ProcessOffer applies a remote offer and returns the complete answer.
func (c *Core) ProcessOffer(ctx context.Context, offer webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if err := c.peerConnection.SetRemoteDescription(offer); err != nil {
		return nil, err
	}
	answer, err := c.peerConnection.CreateAnswer(nil)
	if err != nil {
		return nil, err
	}

	return c.setLocal(ctx, answer)
}

func (c *Core) setLocal(ctx context.Context, desc webrtc.SessionDescription) (*webrtc.SessionDescription, error) {
	gatherComplete := webrtc.GatheringCompletePromise(c.peerConnection)
	if err := c.peerConnection.SetLocalDescription(desc); err != nil {
		return nil, err
	}

	select {
	case <-gatherComplete:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return c.peerConnection.LocalDescription(), nil
}

// ProcessAnswer applies the remote answer to a previously created offer.
func (c *Core) ProcessAnswer(answer webrtc.SessionDescription) error {
	if c.isClosed() {
		return ErrClosed
	}

	return c.peerConnection.SetRemoteDescription(answer)
}

// AddICECandidate adds a trickled remote candidate.
func (c *Core) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	if c.isClosed() {
		return ErrClosed
	}

	return c.peerConnection.AddICECandidate(candidate)
}

// SDPHandler answers offers POSTed as JSON session descriptions.
func (c *Core) SDPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)

			return
		}
		offer := webrtc.SessionDescription{}
		if err := json.NewDecoder(req.Body).Decode(&offer); err != nil {
			c.log.Errorf("failed to decode SDP offer: %v", err)
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		answer, err := c.ProcessOffer(req.Context(), offer)
		if err != nil {
			c.log.Errorf("failed to answer offer: %v", err)
			w.WriteHeader(http.StatusBadRequest)

			return
		}
		payload, err := json.Marshal(answer)
		if err != nil {
			c.log.Errorf("failed to marshal SDP answer: %v", err)
			w.WriteHeader(http.StatusInternalServerError)

			return
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(payload); err != nil {
			c.log.Errorf("failed to write signaling response: %v", err)
		}
	}
}

// SignalHTTP posts an offer to url and applies the answer it returns.
func (c *Core) SignalHTTP(ctx context.Context, url string) error {
	offer, err := c.CreateOffer(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(offer)
	if err != nil {
		return err
	}

	c.log.Infof("signaling to %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSignaling, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %s", ErrSignaling, resp.Status)
	}
	answer := webrtc.SessionDescription{}
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return fmt.Errorf("%w: %w", ErrSignaling, err)
	}

	return c.ProcessAnswer(answer)
}
