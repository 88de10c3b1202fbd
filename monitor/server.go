// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

//go:build !js
// +build !js

// Package monitor streams peer lifecycle events to browsers over websocket.
package monitor

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/logging"
	"github.com/pion/webrtcpeer/peer"
)

const subscriberBuffer = 16

// Server fans peer events out to every connected websocket client.
type Server struct {
	upgrader *websocket.Upgrader
	log      logging.LeveledLogger

	mu          sync.Mutex
	subscribers map[chan peer.Event]struct{}
}

// Option configures a Server.
type Option func(*Server) error

// WithLoggerFactory replaces the default logger factory.
func WithLoggerFactory(factory logging.LoggerFactory) Option {
	return func(s *Server) error {
		s.log = factory.NewLogger("monitor")
		return nil
	}
}

// New creates a monitor server.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		upgrader:    &websocket.Upgrader{},
		log:         logging.NewDefaultLoggerFactory().NewLogger("monitor"),
		subscribers: make(map[chan peer.Event]struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Observe broadcasts ev to the connected clients. It never blocks; a client
// that falls behind misses events. Pass it to peer.WithObserver.
func (s *Server) Observe(ev peer.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			s.log.Debugf("dropped %s event for a slow client", ev.Kind)
		}
	}
}

// Handler serves the event page on "/" and the websocket feed on "/update".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.home)
	mux.HandleFunc("/update", s.update)

	return mux
}

func (s *Server) subscribe() chan peer.Event {
	ch := make(chan peer.Event, subscriberBuffer)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	return ch
}

func (s *Server) unsubscribe(ch chan peer.Event) {
	s.mu.Lock()
	delete(s.subscribers, ch)
	s.mu.Unlock()
}

func (s *Server) clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.subscribers)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade failed: %v", err)

		return
	}
	defer func() {
		if err = wsConn.Close(); err != nil {
			s.log.Debugf("failed to close websocket connection: %v", err)
		}
	}()

	events := s.subscribe()
	defer s.unsubscribe(events)

	// The read side only detects the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := wsConn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err = wsConn.WriteJSON(ev); err != nil {
				s.log.Debugf("websocket write failed: %v", err)

				return
			}
		}
	}
}

var homeTemplate = template.Must(template.New("").Parse(`<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8">
    <title>webrtcpeer events</title>
  </head>
  <body>
    <table>
      <thead><tr><th>time</th><th>mode</th><th>event</th><th>tracks</th></tr></thead>
      <tbody id="events"></tbody>
    </table>
    <script>
      const socket = new WebSocket("{{.}}");
      socket.onmessage = function(event) {
        const data = JSON.parse(event.data);
        const row = document.createElement("tr");
        for (const value of [data.time, data.mode, data.kind, data.tracks]) {
          const cell = document.createElement("td");
          cell.textContent = value;
          row.appendChild(cell);
        }
        document.getElementById("events").prepend(row);
      };
    </script>
  </body>
</html>
`))

func (s *Server) home(w http.ResponseWriter, req *http.Request) {
	if err := homeTemplate.Execute(w, "ws://"+req.Host+"/update"); err != nil {
		s.log.Errorf("failed to execute template: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
