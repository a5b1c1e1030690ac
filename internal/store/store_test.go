// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toeirei/boardlock/internal/config"
	"github.com/toeirei/boardlock/internal/model"
)

func sampleSchedule() model.WeeklySchedule {
	w := model.NewWeeklySchedule()
	w[model.Monday] = []model.Slot{
		{Start: "08:10", End: "08:50", Action: model.ActionUnlock},
		{Start: "08:50", End: "09:00", Action: model.ActionLock},
	}
	return w
}

// exerciseStore runs the same contract against every backend.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	assert.Empty(t, s.LoadDevices())
	assert.True(t, s.LoadSchedule().Equal(model.NewWeeklySchedule()))
	assert.Equal(t, model.DefaultSettings(), s.LoadSettings())

	devices := model.DevicesFromAddresses([]string{"10.46.197.3", "10.46.197.20"})
	require.NoError(t, s.SaveDevices(devices))
	assert.Equal(t, []string{"10.46.197.3", "10.46.197.20"}, model.Addresses(s.LoadDevices()))

	require.NoError(t, s.SaveDevices(nil))
	got := s.LoadDevices()
	assert.NotNil(t, got)
	assert.Empty(t, got)

	w := sampleSchedule()
	require.NoError(t, s.SaveSchedule(w))
	assert.True(t, s.LoadSchedule().Equal(w))

	settings := model.Settings{User: "ogretmen", Pass: "şifre!", IPRange: "192.168.5.0/24"}
	require.NoError(t, s.SaveSettings(settings))
	assert.Equal(t, settings, s.LoadSettings())

	// Saving again replaces rather than duplicates.
	settings.User = "admin"
	require.NoError(t, s.SaveSettings(settings))
	assert.Equal(t, "admin", s.LoadSettings().User)
}

func TestFileStore_Contract(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestBunStore_SqliteContract(t *testing.T) {
	s, err := NewBunStore("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	exerciseStore(t, s)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s, err := NewBunStore("sqlite", ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, RunMigrations(s.bun.DB, "sqlite"))

	var count int
	require.NoError(t, s.bun.DB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFileStore_DocumentFormat(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, s.SaveDevices(model.DevicesFromAddresses([]string{"10.0.0.1"})))
	data, err := os.ReadFile(filepath.Join(dir, DevicesFile))
	require.NoError(t, err)
	assert.Equal(t, "[\n    \"10.0.0.1\"\n]\n", string(data))

	require.NoError(t, s.SaveSettings(model.Settings{User: "öğretmen", Pass: "a&b", IPRange: "10.0.0.0/24"}))
	data, err = os.ReadFile(filepath.Join(dir, SettingsFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"user": "öğretmen"`)
	assert.Contains(t, string(data), `"pass": "a&b"`)

	info, err := os.Stat(filepath.Join(dir, SettingsFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "leftover temp file %s", e.Name())
	}
}

func TestFileStore_CorruptDocumentsFallBack(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{DevicesFile, ScheduleFile, SettingsFile} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644))
	}
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	assert.Empty(t, s.LoadDevices())
	assert.Len(t, s.LoadSchedule(), 7)
	assert.Equal(t, model.DefaultSettings(), s.LoadSettings())
}

func TestFileStore_ReadsLegacyDocuments(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("tahtalar.json", `["10.46.197.5", "bogus", "10.46.197.9"]`)
	write("program.json", `{"Pazartesi": [{"start": "08:10", "end": "08:50", "action": "unlock"}], "Salı": []}`)
	write("ayarlar.json", `{"user": "etapadmin", "ip_range": "10.46.198.0/24"}`)

	s, err := NewFileStore(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"10.46.197.5", "10.46.197.9"}, model.Addresses(s.LoadDevices()))

	w := s.LoadSchedule()
	require.Len(t, w[model.Monday], 1)
	assert.Equal(t, model.ActionUnlock, w[model.Monday][0].Action)

	settings := s.LoadSettings()
	assert.Equal(t, "10.46.198.0/24", settings.IPRange)
	assert.Equal(t, model.DefaultPass, settings.Pass, "missing key keeps its default")

	// Writes go to the new names; the new file then wins over the legacy one.
	require.NoError(t, s.SaveDevices(nil))
	assert.Empty(t, s.LoadDevices())
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StoreConfig{Type: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	_, ok := s.(*FileStore)
	assert.True(t, ok)

	s, err = Open(config.StoreConfig{Type: "SQLite", DSN: ":memory:"})
	require.NoError(t, err)
	_, ok = s.(*BunStore)
	assert.True(t, ok)
	require.NoError(t, s.Close())

	_, err = Open(config.StoreConfig{Type: "redis"})
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}
