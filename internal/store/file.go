// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
)

// File names of the JSON documents. The legacy names are read when the
// current file does not exist yet.
const (
	DevicesFile  = "devices.json"
	ScheduleFile = "schedule.json"
	SettingsFile = "settings.json"

	legacyDevicesFile  = "tahtalar.json"
	legacyScheduleFile = "program.json"
	legacySettingsFile = "ayarlar.json"
)

// FileStore keeps each document in its own JSON file under Dir.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore returns a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory holding the documents.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) LoadDevices() []model.Device {
	name, data, ok := s.read(DevicesFile, legacyDevicesFile)
	if !ok {
		return []model.Device{}
	}
	return decodeDevices(name, data)
}

func (s *FileStore) SaveDevices(devices []model.Device) error {
	if devices == nil {
		devices = []model.Device{}
	}
	return s.write(DevicesFile, devices, 0o644)
}

func (s *FileStore) LoadSchedule() model.WeeklySchedule {
	name, data, ok := s.read(ScheduleFile, legacyScheduleFile)
	if !ok {
		return model.NewWeeklySchedule()
	}
	return decodeSchedule(name, data)
}

func (s *FileStore) SaveSchedule(w model.WeeklySchedule) error {
	return s.write(ScheduleFile, w.Normalize(), 0o644)
}

func (s *FileStore) LoadSettings() model.Settings {
	name, data, ok := s.read(SettingsFile, legacySettingsFile)
	if !ok {
		return model.DefaultSettings()
	}
	return decodeSettings(name, data)
}

// SaveSettings writes the settings with mode 0600 since they hold the
// shared password.
func (s *FileStore) SaveSettings(settings model.Settings) error {
	return s.write(SettingsFile, settings, 0o600)
}

func (s *FileStore) Close() error { return nil }

// read returns the first of names that exists. Unreadable files are
// logged and treated as missing.
func (s *FileStore) read(names ...string) (string, []byte, bool) {
	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, data, true
		}
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Warnf("store: could not read %s: %v", path, err)
			return "", nil, false
		}
	}
	return "", nil, false
}

// write replaces name atomically: the document goes to a temp file in the
// same directory which is then renamed over the target.
func (s *FileStore) write(name string, v any, perm os.FileMode) error {
	data, err := encodeDocument(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("could not create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("could not set mode on %s: %w", name, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("could not replace %s: %w", target, err)
	}
	return nil
}
