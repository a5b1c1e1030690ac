// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package tui is the operator dashboard: the board list, a live clock, the
// progress of the running scan or batch and the active schedule slot.
// It only talks to the panel and renders the events the panel emits.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/toeirei/boardlock/internal/dispatch"
	"github.com/toeirei/boardlock/internal/events"
	"github.com/toeirei/boardlock/internal/i18n"
	"github.com/toeirei/boardlock/internal/model"
)

// Panel is what the dashboard needs from core.Panel.
type Panel interface {
	Devices() []model.Device
	Settings() model.Settings
	Subscribe(events.Observer) (unsubscribe func())
	StartScan(ctx context.Context)
	ClearDevices()
	Apply(ctx context.Context, action model.ActionKind, addrs []string) dispatch.BatchResult
	ApplyAll(ctx context.Context, action model.ActionKind) dispatch.BatchResult
	ActiveSlot(now time.Time) (model.Slot, bool)
}

// status is what the panel is busy with.
type status int

const (
	statusIdle status = iota
	statusScanning
	statusDispatching
)

// eventMsg carries one panel event into the update loop.
type eventMsg events.Event

// clockMsg advances the live clock.
type clockMsg time.Time

// batchDoneMsg is sent when a lock/unlock started from the dashboard ends.
type batchDoneMsg dispatch.BatchResult

// clipboardWrite is replaced in tests.
var clipboardWrite = clipboard.WriteAll

// Model is the dashboard's bubbletea model.
type Model struct {
	ctx    context.Context
	panel  Panel
	events *events.Channel
	keys   KeyMap
	help   help.Model

	devices  []model.Device
	selected map[string]bool
	cursor   int

	status   status
	action   model.ActionKind
	progress progress.Model
	percent  int
	visible  bool
	now      time.Time

	message string
	isError bool
	width   int
}

// New builds the dashboard for panel. The caller must subscribe Events()
// to the panel before the program starts; Run does that.
func New(ctx context.Context, panel Panel) *Model {
	return &Model{
		ctx:      ctx,
		panel:    panel,
		events:   events.NewChannel(512),
		keys:     newKeyMap(),
		help:     help.New(),
		devices:  panel.Devices(),
		selected: map[string]bool{},
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		now:      time.Now(),
	}
}

// Events returns the observer feeding the dashboard.
func (m *Model) Events() events.Observer { return m.events }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tickClock())
}

func waitForEvent(ch *events.Channel) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-ch.C)
	}
}

func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.progress.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case clockMsg:
		m.now = time.Time(msg)
		return m, tickClock()

	case eventMsg:
		m.handleEvent(events.Event(msg))
		return m, waitForEvent(m.events)

	case batchDoneMsg:
		b := dispatch.BatchResult(msg)
		m.status = statusIdle
		if len(b.Results) == 0 {
			m.setMessage(i18n.T("dispatch.no_devices"), true)
		} else {
			m.setMessage(i18n.T("dispatch.finished", actionLabel(b.Action), b.Succeeded(), b.Failed()), b.Failed() > 0)
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleEvent(e events.Event) {
	switch e.Kind {
	case events.KindVisibility:
		m.visible = e.Visible
		if e.Visible {
			m.percent = 0
		}
	case events.KindProgress:
		m.percent = e.Percent
	case events.KindDeviceFound:
		m.setMessage(i18n.T("scan.found", e.Address), false)
	case events.KindScanFinished:
		m.status = statusIdle
		m.devices = m.panel.Devices()
		m.pruneSelection()
		m.setMessage(i18n.T("scan.finished", e.Count, e.Probed, e.Total), false)
	case events.KindBatchStarted:
		m.status = statusDispatching
		m.action = e.Action
	case events.KindDispatchResult:
		if e.Error != "" {
			m.setMessage(i18n.T("dispatch.failed", e.Address, e.Error), true)
		}
	case events.KindTickFired:
		m.setMessage(i18n.T("schedule.tick_fired", actionLabel(e.Action), model.Clock(e.Time)), false)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(m.devices) {
			a := m.devices[m.cursor].Address
			m.selected[a] = !m.selected[a]
			if !m.selected[a] {
				delete(m.selected, a)
			}
		}
	case key.Matches(msg, m.keys.SelectAll):
		if len(m.selected) == len(m.devices) {
			m.selected = map[string]bool{}
		} else {
			for _, d := range m.devices {
				m.selected[d.Address] = true
			}
		}
	case key.Matches(msg, m.keys.Scan):
		if m.status != statusIdle {
			return nil
		}
		m.status = statusScanning
		m.setMessage(i18n.T("scan.started", m.panel.Settings().IPRange), false)
		m.panel.StartScan(m.ctx)
	case key.Matches(msg, m.keys.Lock):
		return m.apply(model.ActionLock, false)
	case key.Matches(msg, m.keys.Unlock):
		return m.apply(model.ActionUnlock, false)
	case key.Matches(msg, m.keys.LockAll):
		return m.apply(model.ActionLock, true)
	case key.Matches(msg, m.keys.UnlockAll):
		return m.apply(model.ActionUnlock, true)
	case key.Matches(msg, m.keys.Copy):
		addrs := m.targets()
		if err := clipboardWrite(strings.Join(addrs, "\n")); err != nil {
			m.setMessage(i18n.T("devices.copy_failed", err), true)
		} else {
			m.setMessage(i18n.T("devices.copied", len(addrs)), false)
		}
	case key.Matches(msg, m.keys.Clear):
		if m.status != statusIdle {
			return nil
		}
		m.panel.ClearDevices()
		m.devices = m.panel.Devices()
		m.selected = map[string]bool{}
		m.cursor = 0
		m.setMessage(i18n.T("devices.cleared"), false)
	}
	return nil
}

// apply runs a batch in the background. With all set every known board is
// targeted; otherwise only the selection, and an empty selection sends
// nothing.
func (m *Model) apply(action model.ActionKind, all bool) tea.Cmd {
	if m.status == statusDispatching {
		return nil
	}
	if !all && len(m.selected) == 0 {
		m.setMessage(i18n.T("dispatch.no_devices"), true)
		return nil
	}
	m.status = statusDispatching
	m.action = action
	ctx, panel := m.ctx, m.panel
	if all {
		return func() tea.Msg { return batchDoneMsg(panel.ApplyAll(ctx, action)) }
	}
	addrs := m.targets()
	return func() tea.Msg { return batchDoneMsg(panel.Apply(ctx, action, addrs)) }
}

// targets returns the selected addresses in list order, or every address
// when nothing is selected.
func (m *Model) targets() []string {
	out := make([]string, 0, len(m.devices))
	for _, d := range m.devices {
		if len(m.selected) == 0 || m.selected[d.Address] {
			out = append(out, d.Address)
		}
	}
	return out
}

func (m *Model) pruneSelection() {
	for a := range m.selected {
		if !slices.ContainsFunc(m.devices, func(d model.Device) bool { return d.Address == a }) {
			delete(m.selected, a)
		}
	}
	if m.cursor >= len(m.devices) {
		m.cursor = max(len(m.devices)-1, 0)
	}
}

func (m *Model) setMessage(s string, isError bool) {
	m.message, m.isError = s, isError
}

func (m *Model) View() string {
	var b strings.Builder

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(i18n.T("app.title")),
		"  ",
		clockStyle.Render(i18n.T("tui.clock", model.WeekdayOf(m.now), m.now.Format("15:04:05"))),
	)
	b.WriteString(header + "\n")
	b.WriteString(helpStyle.Render(m.slotLine()) + "\n\n")

	var list strings.Builder
	list.WriteString(fmt.Sprintf("%s  %s\n",
		i18n.T("tui.devices", len(m.devices)),
		helpStyle.Render(i18n.T("tui.selected", len(m.selected)))))
	if len(m.devices) == 0 {
		list.WriteString(helpStyle.Render(i18n.T("devices.empty")))
	}
	for i, d := range m.devices {
		mark := "[ ]"
		if m.selected[d.Address] {
			mark = "[x]"
		}
		line := mark + " " + d.Address
		if i == m.cursor {
			list.WriteString(selectedItemStyle.Render("> "+line) + "\n")
		} else {
			list.WriteString(itemStyle.Render(line) + "\n")
		}
	}
	b.WriteString(paneStyle.Render(strings.TrimRight(list.String(), "\n")) + "\n")

	b.WriteString(m.statusLine() + "\n")
	if m.visible {
		b.WriteString(m.progress.ViewAs(float64(m.percent)/100) + fmt.Sprintf(" %3d%%\n", m.percent))
	}
	if m.message != "" {
		style := successStyle
		if m.isError {
			style = errorStyle
		}
		b.WriteString(style.Render(m.message) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys))
	return docStyle.Render(b.String())
}

func (m *Model) slotLine() string {
	day, clock := model.WeekdayOf(m.now), model.Clock(m.now)
	if slot, ok := m.panel.ActiveSlot(m.now); ok {
		return i18n.T("schedule.now_active", day, clock, slot)
	}
	return i18n.T("schedule.now_idle", day, clock)
}

func (m *Model) statusLine() string {
	switch m.status {
	case statusScanning:
		return i18n.T("tui.status.scanning")
	case statusDispatching:
		return i18n.T("tui.status.dispatching", actionLabel(m.action))
	}
	return i18n.T("tui.status.idle")
}

func actionLabel(a model.ActionKind) string {
	switch a {
	case model.ActionLock:
		return i18n.T("action.lock")
	case model.ActionUnlock:
		return i18n.T("action.unlock")
	}
	return a.String()
}

// Run shows the dashboard until the operator quits.
func Run(ctx context.Context, panel Panel) error {
	m := New(ctx, panel)
	unsubscribe := panel.Subscribe(m.Events())
	defer unsubscribe()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
