// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/toeirei/boardlock/internal/config"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/model"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	mu           sync.Mutex
	msgs         []published
	err          error
	disconnected bool
}

func (c *fakeClient) Publish(topic string, _ byte, _ bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, published{topic: topic, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *fakeClient) snapshot() ([]published, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]published(nil), c.msgs...), c.disconnected
}

func TestSinkPublishesEventsAsJSON(t *testing.T) {
	fc := &fakeClient{}
	s := NewSink(fc, "school/boards/")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Notify(events.Event{Kind: events.KindProgress, Percent: 10})
	s.Notify(events.Event{Kind: events.KindVisibility, Visible: true})
	s.Notify(events.Event{Kind: events.KindBatchFinished, RunID: "r1", Action: model.ActionLock, Count: 4, Total: 5})

	deadline := time.Now().Add(2 * time.Second)
	for {
		msgs, _ := fc.snapshot()
		if len(msgs) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected one publish, got %d", len(msgs))
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	msgs, disconnected := fc.snapshot()
	if msgs[0].topic != "school/boards/batch_finished" {
		t.Fatalf("unexpected topic %q", msgs[0].topic)
	}
	var got events.Event
	if err := json.Unmarshal(msgs[0].payload, &got); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.RunID != "r1" || got.Action != model.ActionLock || got.Count != 4 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if !disconnected {
		t.Fatal("Run should disconnect on exit")
	}
}

func TestSinkDrainsQueueOnShutdown(t *testing.T) {
	fc := &fakeClient{}
	s := NewSink(fc, "boardlock")
	s.Notify(events.Event{Kind: events.KindDispatchResult, Address: "10.0.0.1", Action: model.ActionLock})
	s.Notify(events.Event{Kind: events.KindBatchFinished, Action: model.ActionLock, Count: 1, Total: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)

	msgs, disconnected := fc.snapshot()
	if len(msgs) != 2 || msgs[1].topic != "boardlock/batch_finished" {
		t.Fatalf("queued events should be published before disconnect, got %+v", msgs)
	}
	if !disconnected {
		t.Fatal("expected disconnect")
	}
}

func TestPublishError(t *testing.T) {
	fc := &fakeClient{err: errors.New("not connected")}
	s := NewSink(fc, "boardlock")
	err := s.publish(events.Event{Kind: events.KindTickFired, Action: model.ActionUnlock})
	if err == nil {
		t.Fatal("expected publish error")
	}
}

func TestConnectInvalidBroker(t *testing.T) {
	_, err := Connect(config.MQTTConfig{Broker: "tcp://127.0.0.1:1", ClientID: "boardlock-test"})
	if !errors.Is(err, ErrConnectionFailed) {
		t.Fatalf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
