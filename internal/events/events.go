// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package events defines the notifications emitted by scans, dispatch
// batches and the schedule loop, and the Observer fan-out used to deliver
// them to the dashboard, metrics and the MQTT sink.
package events

import (
	"slices"
	"sync"
	"time"

	"github.com/toeirei/boardlock/internal/model"
)

// Kind identifies an event.
type Kind string

const (
	KindDeviceFound    Kind = "device_found"
	KindProgress       Kind = "progress"
	KindVisibility     Kind = "visibility"
	KindBatchStarted   Kind = "batch_started"
	KindBatchFinished  Kind = "batch_finished"
	KindDispatchResult Kind = "dispatch_result"
	KindScanFinished   Kind = "scan_finished"
	KindTickFired      Kind = "tick_fired"
)

// Event is a single notification. Only the fields relevant to Kind are set.
type Event struct {
	Kind    Kind             `json:"kind"`
	RunID   string           `json:"run_id,omitempty"`
	Time    time.Time        `json:"time"`
	Address string           `json:"address,omitempty"`
	Percent int              `json:"percent,omitempty"`
	Visible bool             `json:"visible"`
	Action  model.ActionKind `json:"action,omitempty"`
	Count   int              `json:"count,omitempty"`
	Probed  int              `json:"probed,omitempty"`
	Total   int              `json:"total,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// Observer receives events. Notify may be called from several goroutines
// and must not block for long.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Notify(e Event) { f(e) }

type discard struct{}

func (discard) Notify(Event) {}

// Discard drops every event.
var Discard Observer = discard{}

type multi []Observer

func (m multi) Notify(e Event) {
	for _, o := range m {
		o.Notify(e)
	}
}

// Multi fans each event out to every non-nil observer, in order.
func Multi(observers ...Observer) Observer {
	var out multi
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return Discard
	case 1:
		return out[0]
	}
	return out
}

// OrDiscard returns o, or Discard when o is nil.
func OrDiscard(o Observer) Observer {
	if o == nil {
		return Discard
	}
	return o
}

// Callbacks is the three-callback observer surface of the panel: a device
// was found, progress changed, the progress indicator should be shown or
// hidden. Other kinds are ignored.
type Callbacks struct {
	OnDeviceFound               func(address string)
	OnProgress                  func(percent int)
	OnProgressVisibilityChanged func(visible bool)
}

func (c Callbacks) Notify(e Event) {
	switch e.Kind {
	case KindDeviceFound:
		if c.OnDeviceFound != nil {
			c.OnDeviceFound(e.Address)
		}
	case KindProgress:
		if c.OnProgress != nil {
			c.OnProgress(e.Percent)
		}
	case KindVisibility:
		if c.OnProgressVisibilityChanged != nil {
			c.OnProgressVisibilityChanged(e.Visible)
		}
	}
}

// Channel delivers events into a buffered channel. When the buffer is full
// the event is dropped so producers never stall on a slow consumer.
type Channel struct {
	C chan Event
}

// NewChannel returns a Channel with the given buffer size.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{C: make(chan Event, size)}
}

func (c *Channel) Notify(e Event) {
	select {
	case c.C <- e:
	default:
	}
}

// Hub is an Observer whose subscribers can change at runtime.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]Observer
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]Observer)}
}

// Subscribe adds o and returns a function that removes it again.
func (h *Hub) Subscribe(o Observer) (unsubscribe func()) {
	if o == nil {
		return func() {}
	}
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = o
	h.mu.Unlock()
	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Notify delivers e to every subscriber in subscription order.
func (h *Hub) Notify(e Event) {
	h.mu.RLock()
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]Observer, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, h.subs[id])
	}
	h.mu.RUnlock()

	for _, o := range subs {
		o.Notify(e)
	}
}
