// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup reads and writes zstd compressed JSON snapshots of the
// settings, the device list and the weekly schedule.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// SchemaVersion is the version written by this build.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned for backups written by a newer build.
var ErrUnsupportedVersion = errors.New("unsupported backup schema version")

// Data is the content of a backup file.
type Data struct {
	SchemaVersion int                  `json:"schema_version"`
	CreatedAt     time.Time            `json:"created_at"`
	Settings      model.Settings       `json:"settings"`
	Devices       []model.Device       `json:"devices"`
	Schedule      model.WeeklySchedule `json:"schedule"`
}

// New returns backup data stamped with the current version and time.
func New(settings model.Settings, devices []model.Device, week model.WeeklySchedule) *Data {
	if devices == nil {
		devices = []model.Device{}
	}
	return &Data{
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Settings:      settings,
		Devices:       devices,
		Schedule:      week.Normalize(),
	}
}

// DefaultFilename is the file name used when none is given.
func DefaultFilename(now time.Time) string {
	return fmt.Sprintf("boardlock-backup-%s.json.zst", now.Format("2006-01-02"))
}

// Filename appends ".zst" to name unless present.
func Filename(name string) string {
	if strings.HasSuffix(name, ".zst") {
		return name
	}
	return name + ".zst"
}

// Write encodes d as indented JSON into a zstd stream on w.
func Write(w io.Writer, d *Data) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		_ = zw.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("could not flush zstd writer: %w", err)
	}
	return nil
}

// Read decodes a backup from r. Invalid device addresses are dropped and
// the schedule is normalized to the seven weekday keys.
func Read(r io.Reader) (*Data, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var d Data
	if err := json.NewDecoder(zr).Decode(&d); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if d.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.SchemaVersion)
	}

	devices := make([]model.Device, 0, len(d.Devices))
	for _, dev := range d.Devices {
		if !model.ValidAddress(dev.Address) {
			logging.Warnf("backup: dropping invalid address %q", dev.Address)
			continue
		}
		devices = append(devices, dev)
	}
	d.Devices = devices
	d.Schedule = d.Schedule.Normalize()
	return &d, nil
}

// WriteFile writes d to filename, replacing any existing file.
func WriteFile(filename string, d *Data) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := Write(f, d); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a backup from filename.
func ReadFile(filename string) (*Data, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}
