// Copyright (c) 2026 ToeiRei
// Boardlock - classroom display board lock manager
// This source code is licensed under the MIT license found in the LICENSE file.

package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/toeirei/boardlock/internal/logging"
	"github.com/toeirei/boardlock/internal/model"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed migrations
var embeddedMigrations embed.FS

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

const opTimeout = 5 * time.Second

// documentModel is one row of the documents table.
type documentModel struct {
	bun.BaseModel `bun:"table:documents"`

	Name      string    `bun:"name,pk"`
	Body      string    `bun:"body,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// BunStore keeps each document as a row of the documents table.
type BunStore struct {
	dbType string
	bun    *bun.DB
}

// NewBunStore opens dsn with the driver for dbType (sqlite, postgres or
// mysql), applies the embedded migrations and returns the store.
func NewBunStore(dbType, dsn string) (*BunStore, error) {
	driverName := dbType
	// The pgx stdlib registers driver name "pgx".
	if dbType == "postgres" {
		driverName = "pgx"
	}
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A plain ":memory:" sqlite database exists per connection.
	if dbType == "sqlite" && dsn == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetMaxIdleConns(4)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(sqlDB, dbType); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &BunStore{dbType: dbType, bun: createBunDB(sqlDB, dbType)}, nil
}

func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// RunMigrations applies the embedded .up.sql files for dbType that are not
// yet recorded in schema_migrations, each in its own transaction.
func RunMigrations(db *sql.DB, dbType string) error {
	migrationsPath := "migrations/" + dbType

	entries, err := fs.ReadDir(embeddedMigrations, migrationsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: no migrations for %q", ErrUnsupportedType, dbType)
		}
		return fmt.Errorf("failed to read embedded migrations (%s): %w", migrationsPath, err)
	}

	var ups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	ddl := `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMP)`
	if dbType == "mysql" {
		// MySQL cannot index TEXT without a length.
		ddl = `CREATE TABLE IF NOT EXISTS schema_migrations (version VARCHAR(191) PRIMARY KEY, applied_at TIMESTAMP)`
	}
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}

	selectQuery := "SELECT 1 FROM schema_migrations WHERE version = ?"
	insertQuery := "INSERT INTO schema_migrations(version, applied_at) VALUES(?, ?)"
	if dbType == "postgres" {
		selectQuery = "SELECT 1 FROM schema_migrations WHERE version = $1"
		insertQuery = "INSERT INTO schema_migrations(version, applied_at) VALUES($1, $2)"
	}

	for _, fname := range ups {
		version := strings.TrimSuffix(fname, ".up.sql")

		var exists int
		err := db.QueryRow(selectQuery, version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check migration version %s: %w", version, err)
		}

		p := path.Join(migrationsPath, fname)
		data, err := embeddedMigrations.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", p, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %s: %w", version, err)
		}
		if _, err := tx.Exec(string(data)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to execute migration %s: %w", version, err)
		}
		if _, err := tx.Exec(insertQuery, version, time.Now()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", version, err)
		}
		logging.Debugf("store: applied migration %s (%s)", version, dbType)
	}
	return nil
}

func (s *BunStore) load(name string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var doc documentModel
	err := s.bun.NewSelect().Model(&doc).Where("name = ?", name).Limit(1).Scan(ctx)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logging.Warnf("store: could not read document %s: %v", name, err)
		}
		return nil, false
	}
	return []byte(doc.Body), true
}

// save replaces the row for name inside a transaction.
func (s *BunStore) save(name string, v any) error {
	data, err := encodeDocument(v)
	if err != nil {
		return fmt.Errorf("could not encode %s: %w", name, err)
	}
	doc := &documentModel{Name: name, Body: string(data), UpdatedAt: time.Now().UTC()}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*documentModel)(nil)).Where("name = ?", name).Exec(ctx); err != nil {
			return fmt.Errorf("could not replace %s: %w", name, err)
		}
		if _, err := tx.NewInsert().Model(doc).Exec(ctx); err != nil {
			return fmt.Errorf("could not store %s: %w", name, err)
		}
		return nil
	})
}

func (s *BunStore) LoadDevices() []model.Device {
	data, ok := s.load(DocDevices)
	if !ok {
		return []model.Device{}
	}
	return decodeDevices(DocDevices, data)
}

func (s *BunStore) SaveDevices(devices []model.Device) error {
	if devices == nil {
		devices = []model.Device{}
	}
	return s.save(DocDevices, devices)
}

func (s *BunStore) LoadSchedule() model.WeeklySchedule {
	data, ok := s.load(DocSchedule)
	if !ok {
		return model.NewWeeklySchedule()
	}
	return decodeSchedule(DocSchedule, data)
}

func (s *BunStore) SaveSchedule(w model.WeeklySchedule) error {
	return s.save(DocSchedule, w.Normalize())
}

func (s *BunStore) LoadSettings() model.Settings {
	data, ok := s.load(DocSettings)
	if !ok {
		return model.DefaultSettings()
	}
	return decodeSettings(DocSettings, data)
}

func (s *BunStore) SaveSettings(settings model.Settings) error {
	return s.save(DocSettings, settings)
}

// Close closes the underlying database.
func (s *BunStore) Close() error {
	return s.bun.Close()
}
