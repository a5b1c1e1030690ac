// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package dispatch runs the lock and unlock commands on boards over SSH.
//
// Delivery is best effort: one attempt per board, no retry, and the remote
// command's output and exit status are never read. Failures are returned
// as values for diagnostics and never abort a batch.
package dispatch

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

// Stage names the step at which a dispatch failed.
type Stage string

const (
	StageNone    Stage = ""
	StageCommand Stage = "command"
	StageConnect Stage = "connect"
	StageAuth    Stage = "auth"
	StageSession Stage = "session"
	StageSubmit  Stage = "submit"
)

// Result is the outcome of one dispatch.
type Result struct {
	Address  string
	Action   model.ActionKind
	Stage    Stage
	Err      error
	Duration time.Duration
}

// OK reports whether the command was submitted.
func (r Result) OK() bool { return r.Err == nil }

// BatchResult is the outcome of ExecuteMany. Results follow input order.
type BatchResult struct {
	RunID    string
	Action   model.ActionKind
	Results  []Result
	Duration time.Duration
}

// Succeeded returns the number of boards that accepted the command.
func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.OK() {
			n++
		}
	}
	return n
}

// Failed returns the number of boards that could not be reached.
func (b BatchResult) Failed() int { return len(b.Results) - b.Succeeded() }

// Dispatcher executes action commands on boards.
type Dispatcher struct {
	cfg      ConnectionConfig
	commands map[model.ActionKind]string
}

// New returns a Dispatcher with the given timeouts and command table. A nil
// table uses DefaultCommands.
func New(cfg ConnectionConfig, commands map[model.ActionKind]string) *Dispatcher {
	if commands == nil {
		commands = DefaultCommands()
	}
	return &Dispatcher{cfg: cfg.withDefaults(), commands: cloneCommands(commands)}
}

// Config returns the effective connection configuration.
func (d *Dispatcher) Config() ConnectionConfig { return d.cfg }

// Command returns the shell command submitted for action.
func (d *Dispatcher) Command(action model.ActionKind) (string, error) {
	return lookupCommand(d.commands, action)
}

// Execute connects to device, authenticates with creds and starts the
// command for action, then disconnects without waiting for it to finish.
func (d *Dispatcher) Execute(ctx context.Context, device model.Device, creds model.Credentials, action model.ActionKind) Result {
	start := time.Now()
	res := Result{Address: device.Address, Action: action}

	fail := func(stage Stage, err error) Result {
		res.Stage = stage
		res.Err = err
		res.Duration = time.Since(start)
		logging.Warnf("dispatch %s to %s failed at %s: %v", action, device.Address, stage, err)
		return res
	}

	cmd, err := d.Command(action)
	if err != nil {
		return fail(StageCommand, err)
	}

	addr := net.JoinHostPort(device.Address, strconv.Itoa(d.cfg.Port))
	client, err := sshDial(ctx, "tcp", addr, clientConfig(creds.Username, creds.Password, d.cfg.ConnectionTimeout))
	if err != nil {
		stage := StageConnect
		if IsAuthenticationError(err) {
			stage = StageAuth
		}
		return fail(stage, ClassifyConnectionError(device.Address, err))
	}
	defer func() { _ = client.Close() }()

	_ = client.SetDeadline(time.Now().Add(d.cfg.CommandTimeout))

	session, err := client.NewSession()
	if err != nil {
		return fail(StageSession, ClassifyConnectionError(device.Address, err))
	}
	defer func() { _ = session.Close() }()

	// Start returns once the exec request is acknowledged.
	if err := session.Start(cmd); err != nil {
		return fail(StageSubmit, ClassifyConnectionError(device.Address, err))
	}

	res.Duration = time.Since(start)
	logging.Debugf("dispatch %s to %s submitted in %s", action, device.Address, res.Duration)
	return res
}

// ExecuteMany dispatches action to every device concurrently and reports
// progress to obs. A batch is not cancellable: ctx only provides values,
// each board is bounded by the connection timeouts. An empty device list
// is a no-op and emits nothing.
func (d *Dispatcher) ExecuteMany(ctx context.Context, devices []model.Device, creds model.Credentials, action model.ActionKind, obs events.Observer) BatchResult {
	batch := BatchResult{Action: action, Results: []Result{}}
	if len(devices) == 0 {
		return batch
	}
	obs = events.OrDiscard(obs)
	ctx = context.WithoutCancel(ctx)

	start := time.Now()
	batch.RunID = uuid.NewString()
	batch.Results = make([]Result, len(devices))
	total := len(devices)

	logging.Infof("dispatch %s: sending %s to %d boards", batch.RunID, action, total)
	obs.Notify(events.Event{Kind: events.KindBatchStarted, RunID: batch.RunID, Time: start, Action: action, Total: total})
	obs.Notify(events.Event{Kind: events.KindVisibility, RunID: batch.RunID, Time: start, Visible: true})

	var mu sync.Mutex
	completed := 0

	var g errgroup.Group
	g.SetLimit(d.cfg.Workers)
	for i, dev := range devices {
		g.Go(func() error {
			r := d.Execute(ctx, dev, creds, action)

			mu.Lock()
			defer mu.Unlock()
			batch.Results[i] = r
			completed++
			now := time.Now()
			ev := events.Event{Kind: events.KindDispatchResult, RunID: batch.RunID, Time: now, Address: r.Address, Action: action}
			if r.Err != nil {
				ev.Error = r.Err.Error()
			}
			obs.Notify(ev)
			obs.Notify(events.Event{
				Kind:    events.KindProgress,
				RunID:   batch.RunID,
				Time:    now,
				Percent: completed * 100 / total,
				Count:   completed,
				Total:   total,
			})
			return nil
		})
	}
	_ = g.Wait()

	batch.Duration = time.Since(start)
	ok := batch.Succeeded()
	logging.Infof("dispatch %s: %s done, %d ok, %d failed in %s", batch.RunID, action, ok, total-ok, batch.Duration)

	end := time.Now()
	obs.Notify(events.Event{Kind: events.KindVisibility, RunID: batch.RunID, Time: end, Visible: false})
	obs.Notify(events.Event{Kind: events.KindBatchFinished, RunID: batch.RunID, Time: end, Action: action, Count: ok, Total: total})
	return batch
}
