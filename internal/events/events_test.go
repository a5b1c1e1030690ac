// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package events

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/toeirei/boardlock/internal/model"
)

func TestCallbacksRouteByKind(t *testing.T) {
	var found []string
	var progress []int
	var visible []bool
	cb := Callbacks{
		OnDeviceFound:               func(a string) { found = append(found, a) },
		OnProgress:                  func(p int) { progress = append(progress, p) },
		OnProgressVisibilityChanged: func(v bool) { visible = append(visible, v) },
	}

	cb.Notify(Event{Kind: KindVisibility, Visible: true})
	cb.Notify(Event{Kind: KindDeviceFound, Address: "10.0.0.5"})
	cb.Notify(Event{Kind: KindProgress, Percent: 50})
	cb.Notify(Event{Kind: KindBatchStarted})
	cb.Notify(Event{Kind: KindVisibility, Visible: false})

	if len(found) != 1 || found[0] != "10.0.0.5" {
		t.Fatalf("unexpected found: %v", found)
	}
	if len(progress) != 1 || progress[0] != 50 {
		t.Fatalf("unexpected progress: %v", progress)
	}
	if len(visible) != 2 || !visible[0] || visible[1] {
		t.Fatalf("unexpected visibility: %v", visible)
	}
}

func TestCallbacksNilFieldsAreSafe(t *testing.T) {
	Callbacks{}.Notify(Event{Kind: KindDeviceFound, Address: "10.0.0.1"})
	Callbacks{}.Notify(Event{Kind: KindProgress, Percent: 1})
	Callbacks{}.Notify(Event{Kind: KindVisibility, Visible: true})
}

func TestMultiFansOutInOrder(t *testing.T) {
	var seen []string
	a := ObserverFunc(func(e Event) { seen = append(seen, "a:"+string(e.Kind)) })
	b := ObserverFunc(func(e Event) { seen = append(seen, "b:"+string(e.Kind)) })

	Multi(a, nil, b).Notify(Event{Kind: KindProgress})
	if strings.Join(seen, ",") != "a:progress,b:progress" {
		t.Fatalf("unexpected fan-out: %v", seen)
	}

	if Multi() != Discard || Multi(nil) != Discard {
		t.Fatal("empty Multi should be Discard")
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	c := NewChannel(1)
	c.Notify(Event{Kind: KindProgress, Percent: 1})
	c.Notify(Event{Kind: KindProgress, Percent: 2})

	got := <-c.C
	if got.Percent != 1 {
		t.Fatalf("expected first event to be kept, got %+v", got)
	}
	select {
	case e := <-c.C:
		t.Fatalf("expected second event to be dropped, got %+v", e)
	default:
	}
}

func TestEventJSON(t *testing.T) {
	data, err := json.Marshal(Event{Kind: KindDispatchResult, Address: "10.0.0.2", Action: model.ActionUnlock, Error: "refused"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"kind":"dispatch_result"`, `"action":"unlock"`, `"address":"10.0.0.2"`, `"error":"refused"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %s in %s", want, s)
		}
	}
	if strings.Contains(s, "percent") {
		t.Errorf("zero percent should be omitted: %s", s)
	}
}

func TestHubSubscribeUnsubscribe(t *testing.T) {
	h := NewHub()
	var a, b int
	unsubA := h.Subscribe(ObserverFunc(func(Event) { a++ }))
	h.Subscribe(ObserverFunc(func(Event) { b++ }))
	h.Subscribe(nil)

	h.Notify(Event{Kind: KindProgress})
	unsubA()
	h.Notify(Event{Kind: KindProgress})

	if a != 1 || b != 2 {
		t.Fatalf("unexpected deliveries a=%d b=%d", a, b)
	}
}
