// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package testutil

import (
	"context"
	"sync/atomic"
	"time"
)

// FakeSSHHosts answers scan probes as if an SSH server listened on the
// listed addresses. Probe has the scan.Prober signature.
type FakeSSHHosts struct {
	alive  map[string]bool
	probes atomic.Int64
	// Delay, if set, is slept before answering, honouring ctx.
	Delay time.Duration
}

// NewFakeSSHHosts returns a fake network where addrs accept connections.
func NewFakeSSHHosts(addrs ...string) *FakeSSHHosts {
	f := &FakeSSHHosts{alive: make(map[string]bool, len(addrs))}
	for _, a := range addrs {
		f.alive[a] = true
	}
	return f
}

// Probe reports whether addr is alive.
func (f *FakeSSHHosts) Probe(ctx context.Context, addr string, _ int, _ time.Duration) bool {
	f.probes.Add(1)
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(f.Delay):
		}
	}
	return f.alive[addr]
}

// Probes returns how many probes were made.
func (f *FakeSSHHosts) Probes() int { return int(f.probes.Load()) }
