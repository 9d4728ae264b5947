package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"lookout/internal/config"
	"lookout/internal/services"
)

const (
	busyRetryAttempts = 5
	busyRetryBaseWait = 10 * time.Millisecond
	busyRetryMaxWait  = 200 * time.Millisecond
	sqliteBusyCode    = 5
)

// Store wraps the SQLite knowledge database.
type Store struct {
	db   *sql.DB
	path string
}

// DatabasePath returns the on-disk location for the knowledge database.
func DatabasePath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DataDir, "lookout.db")
}

// Open opens (creating if needed) the knowledge database and applies the schema.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "configuration is required", nil)
	}
	path := DatabasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "create data directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "open database", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, services.Wrap(services.ErrConfiguration, "store", "open", fmt.Sprintf("apply %s", pragma), err)
		}
	}
	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) execRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return result, err
}

func (s *Store) queryRowRetry(ctx context.Context, scan func(*sql.Row) error, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		return scan(s.db.QueryRowContext(ctx, query, args...))
	})
}

func retryOnBusy(ctx context.Context, op func() error) error {
	wait := busyRetryBaseWait
	var err error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		err = op()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > busyRetryMaxWait {
			wait = busyRetryMaxWait
		}
	}
	return err
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func storeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	parsed, err := parseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
