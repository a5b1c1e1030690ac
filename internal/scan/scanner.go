// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package scan discovers boards by probing the SSH port of every host in
// a /24.
package scan

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
	"golang.org/x/sync/errgroup"
)

// Config controls the probes.
type Config struct {
	Port    int
	Timeout time.Duration
	Workers int
}

// DefaultConfig returns port 22, a 40ms probe timeout and 32 workers.
func DefaultConfig() Config {
	return Config{Port: 22, Timeout: 40 * time.Millisecond, Workers: 32}
}

// Prober reports whether something accepted a TCP connection on
// addr:port within timeout.
type Prober func(ctx context.Context, addr string, port int, timeout time.Duration) bool

// TCPProber is the default Prober. Any error counts as absent.
func TCPProber(ctx context.Context, addr string, port int, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(addr, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Result describes one scan pass.
type Result struct {
	RunID     string
	Devices   []model.Device
	Probed    int
	Total     int
	Cancelled bool
}

// Scanner runs scan passes. Starting a pass cancels the one in flight, and
// only the newest completed pass is committed.
type Scanner struct {
	cfg   Config
	probe Prober

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// New returns a Scanner using TCPProber. Zero config fields take defaults.
func New(cfg Config) *Scanner {
	def := DefaultConfig()
	if cfg.Port <= 0 {
		cfg.Port = def.Port
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Scanner{cfg: cfg, probe: TCPProber}
}

// SetProber replaces the probe function.
func (s *Scanner) SetProber(p Prober) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == nil {
		p = TCPProber
	}
	s.probe = p
}

// Config returns the effective configuration.
func (s *Scanner) Config() Config { return s.cfg }

// Scan probes every candidate of rangeText and reports findings and
// progress to obs as they happen. When the pass completes without being
// cancelled or superseded, commit receives the devices sorted by last
// octet. Scan never fails; malformed range text probes nothing.
func (s *Scanner) Scan(ctx context.Context, rangeText string, obs events.Observer, commit func([]model.Device)) Result {
	obs = events.OrDiscard(obs)
	res := Result{RunID: uuid.NewString(), Devices: []model.Device{}}

	candidates := Candidates(rangeText)

	// Any new call supersedes the pass in flight, even one with nothing to scan.
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if len(candidates) == 0 {
		s.mu.Unlock()
		logging.Warnf("scan: ignoring malformed address range %q", rangeText)
		obs.Notify(events.Event{Kind: events.KindScanFinished, RunID: res.RunID, Time: time.Now()})
		return res
	}
	res.Total = len(candidates)
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	probe := s.probe
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		cancel()
	}()

	logging.Debugf("scan %s: probing %d hosts of %s on port %d", res.RunID, res.Total, rangeText, s.cfg.Port)
	obs.Notify(events.Event{Kind: events.KindVisibility, RunID: res.RunID, Time: time.Now(), Visible: true})

	found := make([]*time.Time, len(candidates))
	var progressMu sync.Mutex

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, addr := range candidates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			ok := probe(ctx, addr, s.cfg.Port, s.cfg.Timeout)
			now := time.Now()

			progressMu.Lock()
			defer progressMu.Unlock()
			if ok {
				found[i] = &now
				obs.Notify(events.Event{Kind: events.KindDeviceFound, RunID: res.RunID, Time: now, Address: addr})
			}
			res.Probed++
			obs.Notify(events.Event{
				Kind:    events.KindProgress,
				RunID:   res.RunID,
				Time:    now,
				Percent: res.Probed * 100 / res.Total,
				Count:   res.Probed,
				Total:   res.Total,
			})
			return nil
		})
	}
	_ = g.Wait()

	// Candidates are in ascending octet order, so walking found by index
	// sorts the result independently of completion order.
	for i, seen := range found {
		if seen != nil {
			res.Devices = append(res.Devices, model.Device{Address: candidates[i], LastSeen: seen})
		}
	}
	res.Cancelled = ctx.Err() != nil

	obs.Notify(events.Event{Kind: events.KindVisibility, RunID: res.RunID, Time: time.Now(), Visible: false})

	s.mu.Lock()
	if s.gen != gen {
		res.Cancelled = true
	}
	if !res.Cancelled && commit != nil {
		commit(res.Devices)
	}
	s.mu.Unlock()

	if res.Cancelled {
		logging.Debugf("scan %s: superseded after %d/%d probes", res.RunID, res.Probed, res.Total)
	} else {
		logging.Infof("scan %s: %d devices found in %s", res.RunID, len(res.Devices), rangeText)
	}
	obs.Notify(events.Event{Kind: events.KindScanFinished, RunID: res.RunID, Time: time.Now(), Count: len(res.Devices), Probed: res.Probed, Total: res.Total})
	return res
}

// Cancel stops the pass in flight, if any. It is not committed.
func (s *Scanner) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.gen++
		s.cancel()
		s.cancel = nil
	}
}
