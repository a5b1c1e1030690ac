// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package store persists the three panel documents: the device list, the
// weekly schedule and the operator settings. Two backends exist: JSON files
// in a directory, and a single documents table reached through bun.
//
// Load methods never fail. A missing, unreadable or corrupt document yields
// its default (empty list, empty week, default settings) and a warning.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/boardlock/internal/config"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// ErrUnsupportedType is returned by Open for an unknown store.type.
var ErrUnsupportedType = errors.New("unsupported store type")

// Document names shared by both backends.
const (
	DocDevices  = "devices"
	DocSchedule = "schedule"
	DocSettings = "settings"
)

// Store is the persistence collaborator of the panel.
type Store interface {
	LoadDevices() []model.Device
	SaveDevices([]model.Device) error
	LoadSchedule() model.WeeklySchedule
	SaveSchedule(model.WeeklySchedule) error
	LoadSettings() model.Settings
	SaveSettings(model.Settings) error
	Close() error
}

// Open returns the backend selected by cfg.Type.
func Open(cfg config.StoreConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case "", "file":
		return NewFileStore(cfg.Dir)
	case "sqlite", "postgres", "mysql":
		return NewBunStore(strings.ToLower(cfg.Type), cfg.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}
}

func encodeDocument(v any) ([]byte, error) {
	var sb strings.Builder
	enc := json.NewEncoder(&sb)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}

func decodeDevices(name string, data []byte) []model.Device {
	var devices []model.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		logging.Warnf("store: %s is corrupt, starting with an empty device list: %v", name, err)
		return []model.Device{}
	}
	out := devices[:0]
	for _, d := range devices {
		if !model.ValidAddress(d.Address) {
			logging.Warnf("store: skipping invalid device address %q in %s", d.Address, name)
			continue
		}
		out = append(out, d)
	}
	if out == nil {
		out = []model.Device{}
	}
	return out
}

func decodeSchedule(name string, data []byte) model.WeeklySchedule {
	var w model.WeeklySchedule
	if err := json.Unmarshal(data, &w); err != nil {
		logging.Warnf("store: %s is corrupt, starting with an empty schedule: %v", name, err)
		return model.NewWeeklySchedule()
	}
	return w.Normalize()
}

// decodeSettings overlays the stored keys on the defaults, so a document
// missing a key keeps the default for it.
func decodeSettings(name string, data []byte) model.Settings {
	s := model.DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		logging.Warnf("store: %s is corrupt, using default settings: %v", name, err)
		return model.DefaultSettings()
	}
	return s
}
