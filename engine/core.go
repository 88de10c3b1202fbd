// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Package engine adapts a pion PeerConnection to the stream lifecycle used by
// the peer wrapper: it attaches local media according to the connection mode,
// tracks the live set of inbound tracks and announces changes to subscribers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/packetdump"
	"github.com/pion/logging"
	"github.com/pion/mediadevices"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/media"

	peerlog "github.com/pion/webrtcpeer/logging"
)

const defaultKeyframeInterval = time.Second

// Static errors for err113 compliance.
var (
	ErrInvalidMode     = errors.New("invalid connection mode")
	ErrClosed          = errors.New("engine closed")
	ErrSignaling       = errors.New("signaling failed")
	ErrInvalidInterval = errors.New("interval must be positive")
	ErrDecoder         = errors.New("vp8 decoder failure")
	ErrInvalidBitrate  = errors.New("bitrate must be positive")
)

// Core owns one PeerConnection and the tracks flowing through it.
type Core struct {
	mode Mode

	configuration webrtc.Configuration
	settingEngine *webrtc.SettingEngine
	mediaEngine   *webrtc.MediaEngine
	registry      *interceptor.Registry

	videoStream mediadevices.MediaStream
	audioStream mediadevices.MediaStream

	decodeVideo      bool
	keyframeInterval time.Duration
	rtpWriter        io.Writer
	rtcpWriter       io.Writer
	initialBitrate   int
	targetBitrate    atomic.Int64

	loggerFactory logging.LoggerFactory
	log           logging.LeveledLogger

	peerConnection *webrtc.PeerConnection
	events         *dispatcher
	readers        sync.WaitGroup

	mu          sync.RWMutex
	inbound     []*RemoteTrack
	local       []*LocalTrack
	localStream []media.Track
	onCandidate func(*webrtc.ICECandidate)
	started     bool
	closed      bool
}

// NewCore creates the PeerConnection for mode. Local media is attached by Start.
func NewCore(mode Mode, opts ...Option) (*Core, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}

	loggerFactory := logging.NewDefaultLoggerFactory()
	core := &Core{
		mode:             mode,
		settingEngine:    &webrtc.SettingEngine{},
		mediaEngine:      &webrtc.MediaEngine{},
		registry:         &interceptor.Registry{},
		decodeVideo:      true,
		keyframeInterval: defaultKeyframeInterval,
		loggerFactory:    loggerFactory,
		log:              loggerFactory.NewLogger("engine"),
	}
	if err := core.mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(core); err != nil {
			return nil, err
		}
	}
	core.settingEngine.LoggerFactory = core.loggerFactory

	if err := core.setupPacketDump(); err != nil {
		return nil, err
	}
	if err := core.setupBandwidthEstimation(); err != nil {
		return nil, err
	}
	if err := webrtc.RegisterDefaultInterceptors(core.mediaEngine, core.registry); err != nil {
		return nil, err
	}

	pc, err := webrtc.NewAPI(
		webrtc.WithSettingEngine(*core.settingEngine),
		webrtc.WithInterceptorRegistry(core.registry),
		webrtc.WithMediaEngine(core.mediaEngine),
	).NewPeerConnection(core.configuration)
	if err != nil {
		return nil, err
	}
	core.peerConnection = pc
	core.events = newDispatcher()

	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		core.log.Infof("ICE connection state: %s", state)
	})
	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		core.log.Infof("peer connection state: %s", state)
	})
	pc.OnICECandidate(core.handleICECandidate)
	pc.OnTrack(core.onTrack)

	return core, nil
}

func (c *Core) setupPacketDump() error {
	if c.rtpWriter == nil && c.rtcpWriter == nil {
		return nil
	}
	rtpWriter, rtcpWriter := c.rtpWriter, c.rtcpWriter
	if rtpWriter == nil {
		rtpWriter = io.Discard
	}
	if rtcpWriter == nil {
		rtcpWriter = io.Discard
	}

	formatter := &peerlog.RTPFormatter{}
	dumper, err := packetdump.NewReceiverInterceptor(
		packetdump.RTPFormatter(formatter.RTPFormat),
		packetdump.RTCPFormatter(peerlog.RTCPFormat),
		packetdump.RTPWriter(rtpWriter),
		packetdump.RTCPWriter(rtcpWriter),
	)
	if err != nil {
		return err
	}
	c.registry.Add(dumper)

	return nil
}

// Mode returns the connection role.
func (c *Core) Mode() Mode {
	return c.mode
}

// PeerConnection returns the underlying connection.
func (c *Core) PeerConnection() *webrtc.PeerConnection {
	return c.peerConnection
}

// Start attaches local media and the receive transceivers required by the
// mode, then announces the local stream. Calling it again does nothing.
func (c *Core) Start() error {
	ready, err := c.attachMedia()
	if err != nil {
		return err
	}
	if ready {
		c.events.emit(EventLocalStreamReady)
	}

	return nil
}

func (c *Core) attachMedia() (localReady bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, ErrClosed
	}
	if c.started {
		return false, nil
	}
	c.started = true

	direction := c.mode.Direction()
	videos, audios := c.captureTracks()
	if c.mode.Sends() {
		for _, track := range append(videos, audios...) {
			transceiver, err := c.peerConnection.AddTransceiverFromTrack(track, webrtc.RTPTransceiverInit{
				Direction: direction,
			})
			if err != nil {
				return false, err
			}
			go drainRTCP(transceiver.Sender())

			local := newLocalTrack(track, c.log)
			c.local = append(c.local, local)
			if c.inVideoStream(track) {
				c.localStream = append(c.localStream, local)
			}
		}
	}

	for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio} {
		if !c.needsReceiveTransceiver(kind, len(videos), len(audios)) {
			continue
		}
		if _, err := c.peerConnection.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
			Direction: direction,
		}); err != nil {
			return false, err
		}
	}
	c.log.Infof("started %s connection with %d local tracks", c.mode, len(c.local))

	return len(c.localStream) > 0, nil
}

// needsReceiveTransceiver reports whether kind has to be negotiated without
// a local track: always when receiving only, and in sendrecv when no local
// track of that kind exists.
func (c *Core) needsReceiveTransceiver(kind webrtc.RTPCodecType, videos, audios int) bool {
	switch c.mode {
	case ModeRecvonly:
		return true
	case ModeSendrecv:
		if kind == webrtc.RTPCodecTypeVideo {
			return videos == 0
		}

		return audios == 0
	default:
		return false
	}
}

// captureTracks returns the local video and audio tracks in a stable order.
func (c *Core) captureTracks() (videos, audios []mediadevices.Track) {
	if c.videoStream != nil {
		videos = c.videoStream.GetVideoTracks()
		audios = c.videoStream.GetAudioTracks()
	}
	if c.audioStream != nil {
		audios = c.audioStream.GetAudioTracks()
	}

	return videos, audios
}

func (c *Core) inVideoStream(track mediadevices.Track) bool {
	if c.videoStream == nil {
		return false
	}
	for _, t := range c.videoStream.GetTracks() {
		if t.ID() == track.ID() {
			return true
		}
	}

	return false
}

func drainRTCP(sender *webrtc.RTPSender) {
	if sender == nil {
		return
	}
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}

// OnLocalStreamReady registers fn for EventLocalStreamReady.
func (c *Core) OnLocalStreamReady(fn func()) (unsubscribe func()) {
	return c.events.on(EventLocalStreamReady, fn)
}

// OnRemoteStreamReady registers fn for EventRemoteStreamReady.
func (c *Core) OnRemoteStreamReady(fn func()) (unsubscribe func()) {
	return c.events.on(EventRemoteStreamReady, fn)
}

// OnICECandidate sets the handler for locally gathered candidates. A nil
// candidate marks the end of gathering.
func (c *Core) OnICECandidate(fn func(*webrtc.ICECandidate)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onCandidate = fn
}

func (c *Core) handleICECandidate(candidate *webrtc.ICECandidate) {
	c.log.Debugf("local candidate: %v", candidate)

	c.mu.RLock()
	fn := c.onCandidate
	c.mu.RUnlock()
	if fn != nil {
		fn(candidate)
	}
}

func (c *Core) onTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver) {
	remote := newRemoteTrack(track, receiver, c.log)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return
	}
	c.inbound = append(c.inbound, remote)
	c.readers.Add(1)
	c.mu.Unlock()
	defer c.readers.Done()

	c.log.Infof("remote %s track %s added (%s)", track.Kind(), track.ID(), track.Codec().MimeType)
	c.events.emit(EventRemoteStreamReady)

	if c.decodeVideo && remote.isVP8() {
		ctx, cancel := context.WithCancel(context.Background())
		go remote.requestKeyframes(ctx, c.peerConnection, c.keyframeInterval)
		remote.decodeVP8()
		cancel()
	} else {
		remote.drain()
	}

	c.removeInbound(remote)
	if err := remote.close(); err != nil {
		c.log.Warnf("failed to close remote track %s: %v", remote.ID(), err)
	}
	c.events.emit(EventRemoteStreamReady)
}

func (c *Core) removeInbound(remote *RemoteTrack) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.inbound {
		if t == remote {
			c.inbound = append(c.inbound[:i:i], c.inbound[i+1:]...)

			return
		}
	}
}

// InboundTrackGroups returns the live remote tracks in arrival order.
func (c *Core) InboundTrackGroups() []media.TrackGroup {
	c.mu.RLock()
	inbound := append([]*RemoteTrack(nil), c.inbound...)
	c.mu.RUnlock()

	mids := c.receiverMids()
	groups := make([]media.TrackGroup, 0, len(inbound))
	for _, t := range inbound {
		groups = append(groups, media.TrackGroup{Track: t, Mid: mids[t.receiver]})
	}

	return groups
}

// OutboundTrackGroups returns the senders that carry a track. With indices,
// only the senders at those positions are returned; unknown positions are
// skipped.
func (c *Core) OutboundTrackGroups(indices ...int) []media.TrackGroup {
	c.mu.RLock()
	local := make(map[string]*LocalTrack, len(c.local))
	for _, t := range c.local {
		local[t.ID()] = t
	}
	c.mu.RUnlock()

	var groups []media.TrackGroup
	for _, transceiver := range c.peerConnection.GetTransceivers() {
		sender := transceiver.Sender()
		if sender == nil || sender.Track() == nil {
			continue
		}
		var track media.Track = sender.Track()
		if t, ok := local[sender.Track().ID()]; ok {
			track = t
		}
		groups = append(groups, media.TrackGroup{Track: track, Mid: transceiver.Mid()})
	}
	if len(indices) == 0 {
		return groups
	}

	selected := make([]media.TrackGroup, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(groups) {
			selected = append(selected, groups[i])
		}
	}

	return selected
}

func (c *Core) receiverMids() map[*webrtc.RTPReceiver]string {
	mids := make(map[*webrtc.RTPReceiver]string)
	for _, transceiver := range c.peerConnection.GetTransceivers() {
		if receiver := transceiver.Receiver(); receiver != nil {
			mids[receiver] = transceiver.Mid()
		}
	}

	return mids
}

// LocalStream returns the tracks of the configured video stream that are
// being sent.
func (c *Core) LocalStream() *media.Stream {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return media.NewStream(c.localStream...)
}

// LocalDescription returns the current local session description, or nil.
func (c *Core) LocalDescription() *webrtc.SessionDescription {
	return c.peerConnection.LocalDescription()
}

// RemoteDescription returns the current remote session description, or nil.
func (c *Core) RemoteDescription() *webrtc.SessionDescription {
	return c.peerConnection.RemoteDescription()
}

// Close stops local previews, closes the PeerConnection and waits for the
// remote track readers to finish. Later calls return nil.
func (c *Core) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()

		return nil
	}
	c.closed = true
	local := c.local
	c.mu.Unlock()

	c.events.close()

	errs := make([]error, 0, len(local)+1)
	for _, t := range local {
		errs = append(errs, t.close())
	}
	errs = append(errs, c.peerConnection.Close())
	c.readers.Wait()
	c.log.Infof("closed %s connection", c.mode)

	return errors.Join(errs...)
}

func (c *Core) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.closed
}
