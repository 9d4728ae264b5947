package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"lookout/internal/services"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch reports a database created by an incompatible build.
var ErrSchemaMismatch = errors.New("store: schema version mismatch")

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return services.Wrap(services.ErrConfiguration, "store", "init schema", "apply schema", err)
	}
	var version int
	err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, schemaVersion); err != nil {
			return services.Wrap(services.ErrConfiguration, "store", "init schema", "record schema version", err)
		}
	case err != nil:
		return services.Wrap(services.ErrConfiguration, "store", "init schema", "read schema version", err)
	case version != schemaVersion:
		return fmt.Errorf("%w: database has version %d, this build expects %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}
