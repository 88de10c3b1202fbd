// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package engine

import "sync"

// Event identifies a stream lifecycle notification.
type Event int

const (
	// EventLocalStreamReady fires once local media is attached.
	EventLocalStreamReady Event = iota
	// EventRemoteStreamReady fires whenever the inbound track set changes.
	EventRemoteStreamReady
)

func (e Event) String() string {
	switch e {
	case EventLocalStreamReady:
		return "local-stream-ready"
	case EventRemoteStreamReady:
		return "remote-stream-ready"
	default:
		return "unknown"
	}
}

const eventQueueSize = 32

type subscription struct {
	id int
	fn func()
}

// dispatcher delivers events to subscribers on a single goroutine, in the
// order they were emitted.
type dispatcher struct {
	mu       sync.Mutex
	nextID   int
	handlers map[Event][]subscription

	queue     chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		handlers: make(map[Event][]subscription),
		queue:    make(chan Event, eventQueueSize),
		done:     make(chan struct{}),
	}
	go d.run()

	return d
}

// on registers fn for ev and returns a function that removes it again.
func (d *dispatcher) on(ev Event, fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.handlers[ev] = append(d.handlers[ev], subscription{id: id, fn: fn})

	return func() { d.off(ev, id) }
}

func (d *dispatcher) off(ev Event, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	subs := d.handlers[ev]
	for i, sub := range subs {
		if sub.id == id {
			d.handlers[ev] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// emit queues ev. It blocks while the queue is full and drops the event
// once the dispatcher is closed.
func (d *dispatcher) emit(ev Event) {
	select {
	case <-d.done:
		return
	default:
	}

	select {
	case d.queue <- ev:
	case <-d.done:
	}
}

func (d *dispatcher) run() {
	for {
		select {
		case <-d.done:
			return
		case ev := <-d.queue:
			d.mu.Lock()
			subs := append([]subscription(nil), d.handlers[ev]...)
			d.mu.Unlock()

			for _, sub := range subs {
				sub.fn()
			}
		}
	}
}

func (d *dispatcher) close() {
	d.closeOnce.Do(func() { close(d.done) })
}
