// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/model"
)

func TestCollectorCountsEvents(t *testing.T) {
	c := New()

	c.Notify(events.Event{Kind: events.KindScanFinished, Count: 3, Total: 254})
	c.Notify(events.Event{Kind: events.KindDispatchResult, Action: model.ActionLock})
	c.Notify(events.Event{Kind: events.KindDispatchResult, Action: model.ActionLock, Error: "refused"})
	c.Notify(events.Event{Kind: events.KindDispatchResult, Action: model.ActionLock})
	c.Notify(events.Event{Kind: events.KindBatchFinished, Action: model.ActionLock, Count: 2, Total: 3})
	c.Notify(events.Event{Kind: events.KindTickFired, Action: model.ActionUnlock})
	c.Notify(events.Event{Kind: events.KindProgress, Percent: 50})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"scans", testutil.ToFloat64(c.ScansTotal), 1},
		{"devices", testutil.ToFloat64(c.DevicesFound), 3},
		{"addresses", testutil.ToFloat64(c.ScanAddresses), 254},
		{"dispatch ok", testutil.ToFloat64(c.DispatchesTotal.WithLabelValues("lock", "ok")), 2},
		{"dispatch failed", testutil.ToFloat64(c.DispatchesTotal.WithLabelValues("lock", "failed")), 1},
		{"batches", testutil.ToFloat64(c.BatchesTotal.WithLabelValues("lock")), 1},
		{"last batch", testutil.ToFloat64(c.LastBatchSucceeded.WithLabelValues("lock")), 2},
		{"ticks", testutil.ToFloat64(c.TicksTotal.WithLabelValues("unlock")), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Notify(events.Event{Kind: events.KindScanFinished, Count: 1, Total: 254})

	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "boardlock_scans_total 1") {
		t.Fatalf("metrics output missing scan counter:\n%s", body)
	}
}
