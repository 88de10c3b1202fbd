// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Command webrtcpeer runs a peer in any mode. It answers offers POSTed to
// /sdp, or sends its own offer to -signal-url, and serves snapshots of the
// remote and local video on /frame.png and /local.png.
package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"image/png"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pion/logging"
	"github.com/pion/mediadevices"
	"github.com/pion/mediadevices/pkg/codec/vpx"
	_ "github.com/pion/mediadevices/pkg/driver/videotest"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtcpeer/engine"
	peerlog "github.com/pion/webrtcpeer/logging"
	"github.com/pion/webrtcpeer/monitor"
	"github.com/pion/webrtcpeer/peer"
	"github.com/pion/webrtcpeer/sink"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

const (
	captureWidth   = 640
	captureHeight  = 480
	captureBitrate = 500_000
)

var errNotCore = errors.New("peer engine is not an *engine.Core")

type config struct {
	mode        string
	addr        string
	signalURL   string
	logFile     string
	logLevel    string
	rtpLogFile  string
	rtcpLogFile string
	monitorAddr string
	stun        string
	bitrate     int
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "recvonly", "Mode: sendonly/recvonly/sendrecv")
	flag.StringVar(&cfg.addr, "addr", ":8080", "HTTP address for /sdp and the snapshot endpoints")
	flag.StringVar(&cfg.signalURL, "signal-url", "", "Send an offer to this /sdp URL instead of waiting for one")
	flag.StringVar(&cfg.logFile, "log-file", "stderr", "Log destination: file path, stdout or stderr")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: error/warn/info/debug/trace")
	flag.StringVar(&cfg.rtpLogFile, "rtp-log", "", "Dump received RTP packets to this file")
	flag.StringVar(&cfg.rtcpLogFile, "rtcp-log", "", "Dump received RTCP packets to this file")
	flag.StringVar(&cfg.monitorAddr, "monitor", "", "Serve the lifecycle event monitor on this address")
	flag.StringVar(&cfg.stun, "stun", "", "STUN server URL, e.g. stun:stun.l.google.com:19302")
	flag.IntVar(&cfg.bitrate, "bwe", 0, "Enable congestion control starting at this bitrate (bps) in send modes")
	flag.Parse()

	return cfg
}

func realMain() error {
	cfg := parseFlags()

	mode, err := peer.ParseMode(cfg.mode)
	if err != nil {
		return err
	}

	logOut, err := peerlog.GetLogFile(cfg.logFile)
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Close() }()
	loggerFactory, err := peerlog.NewLoggerFactory(logOut, cfg.logLevel)
	if err != nil {
		return err
	}
	logger := loggerFactory.NewLogger("webrtcpeer")

	rtpLog, err := peerlog.GetLogFile(cfg.rtpLogFile)
	if err != nil {
		return err
	}
	defer func() { _ = rtpLog.Close() }()
	rtcpLog, err := peerlog.GetLogFile(cfg.rtcpLogFile)
	if err != nil {
		return err
	}
	defer func() { _ = rtcpLog.Close() }()

	engineOpts := []engine.Option{
		engine.WithLoggerFactory(loggerFactory),
		engine.PacketLogWriter(rtpLog, rtcpLog),
	}
	if cfg.stun != "" {
		engineOpts = append(engineOpts, engine.WithConfiguration(webrtc.Configuration{
			ICEServers: []webrtc.ICEServer{{URLs: []string{cfg.stun}}},
		}))
	}
	if mode.Sends() {
		stream, err := captureStream()
		if err != nil {
			return err
		}
		defer func() {
			for _, track := range stream.GetTracks() {
				_ = track.Close()
			}
		}()
		engineOpts = append(engineOpts, engine.WithVideoStream(stream))
		if cfg.bitrate > 0 {
			engineOpts = append(engineOpts, engine.BandwidthEstimation(cfg.bitrate))
		}
	}

	sinkLogger := sink.WithLogger(loggerFactory.NewLogger("sink"))
	localVideo, err := sink.NewVideo(sinkLogger)
	if err != nil {
		return err
	}
	peerOpts := []peer.Option{
		peer.WithLoggerFactory(loggerFactory),
		peer.WithEngineOptions(engineOpts...),
		peer.LocalVideo(localVideo),
	}
	if mode.Receives() {
		remoteVideo, err := sink.NewVideo(sinkLogger)
		if err != nil {
			return err
		}
		peerOpts = append(peerOpts, peer.RemoteVideo(remoteVideo))
	}

	var events *monitor.Server
	if cfg.monitorAddr != "" {
		events, err = monitor.New(monitor.WithLoggerFactory(loggerFactory))
		if err != nil {
			return err
		}
		peerOpts = append(peerOpts, peer.WithObserver(events.Observe))
	}

	p, err := peer.New(mode, peerOpts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Dispose(); err != nil {
			logger.Errorf("dispose failed: %v", err)
		}
	}()
	core, ok := p.Engine().(*engine.Core)
	if !ok {
		return errNotCore
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	group, ctx := errgroup.WithContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/sdp", core.SDPHandler())
	mux.HandleFunc("/frame.png", pngHandler(logger, p.CurrentFrame))
	mux.HandleFunc("/local.png", pngHandler(logger, func() (*image.RGBA, error) {
		return localSnapshot(localVideo)
	}))
	serve(ctx, group, logger, cfg.addr, mux)
	if events != nil {
		serve(ctx, group, logger, cfg.monitorAddr, events.Handler())
	}

	if cfg.signalURL != "" {
		group.Go(func() error {
			return core.SignalHTTP(ctx, cfg.signalURL)
		})
	}

	logger.Infof("%s peer listening on %s", mode, cfg.addr)

	return group.Wait()
}

// serve runs an HTTP server until ctx is done.
func serve(ctx context.Context, group *errgroup.Group, logger logging.LeveledLogger, addr string, handler http.Handler) {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	group.Go(func() error {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		logger.Infof("shutting down %s", addr)

		return server.Close()
	})
}

func captureStream() (mediadevices.MediaStream, error) {
	params, err := vpx.NewVP8Params()
	if err != nil {
		return nil, err
	}
	params.BitRate = captureBitrate

	return mediadevices.GetUserMedia(mediadevices.MediaStreamConstraints{
		Video: func(c *mediadevices.MediaTrackConstraints) {
			c.Width = prop.Int(captureWidth)
			c.Height = prop.Int(captureHeight)
		},
		Codec: mediadevices.NewCodecSelector(mediadevices.WithVideoEncoders(&params)),
	})
}

func localSnapshot(video *sink.Video) (*image.RGBA, error) {
	frame := video.Frame()
	if frame == nil {
		return nil, peer.ErrNoFrameData
	}
	bounds := frame.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Copy(dst, image.Point{}, frame, bounds, draw.Src, nil)

	return dst, nil
}

func pngHandler(logger logging.LeveledLogger, capture func() (*image.RGBA, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		img, err := capture()
		switch {
		case errors.Is(err, peer.ErrNoRemoteStream), errors.Is(err, peer.ErrNoFrameData):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)

			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)

			return
		case img.Bounds().Empty():
			http.Error(w, peer.ErrNoFrameData.Error(), http.StatusServiceUnavailable)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, img); err != nil && !errors.Is(err, io.ErrClosedPipe) {
			logger.Warnf("failed to write snapshot: %v", err)
		}
	}
}

func main() {
	if err := realMain(); err != nil {
		log.Fatal(err)
	}
}
