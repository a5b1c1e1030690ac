// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/logging"
)

const (
	publishTimeout = 5 * time.Second
	bufferSize     = 256
)

// Sink forwards events to "<topic>/<kind>" as JSON. Notify only queues;
// Run does the publishing so a slow broker never stalls a scan.
type Sink struct {
	client Client
	topic  string
	qos    byte
	queue  *events.Channel
}

// NewSink returns a sink publishing below topic.
func NewSink(client Client, topic string) *Sink {
	return &Sink{
		client: client,
		topic:  strings.TrimSuffix(topic, "/"),
		qos:    1,
		queue:  events.NewChannel(bufferSize),
	}
}

// Notify queues e. Progress events are not forwarded.
func (s *Sink) Notify(e events.Event) {
	if e.Kind == events.KindProgress || e.Kind == events.KindVisibility {
		return
	}
	s.queue.Notify(e)
}

// Run publishes queued events until ctx is done. Events queued by then
// are still published before the client disconnects.
func (s *Sink) Run(ctx context.Context) {
	defer s.client.Disconnect(250)
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case e := <-s.queue.C:
			s.send(e)
		}
	}
}

func (s *Sink) drain() {
	for {
		select {
		case e := <-s.queue.C:
			s.send(e)
		default:
			return
		}
	}
}

func (s *Sink) send(e events.Event) {
	if err := s.publish(e); err != nil {
		logging.Warnf("mqtt: %v", err)
	}
}

// Topic returns the topic e is published on.
func (s *Sink) Topic(e events.Event) string {
	return s.topic + "/" + string(e.Kind)
}

func (s *Sink) publish(e events.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", e.Kind, err)
	}
	token := s.client.Publish(s.Topic(e), s.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", s.Topic(e))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", s.Topic(e), err)
	}
	return nil
}
