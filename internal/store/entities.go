package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lookout/internal/services"
)

// EntityKind names one of the entity tables.
type EntityKind string

const (
	EntityProject      EntityKind = "projects"
	EntityCollaborator EntityKind = "collaborators"
	EntityInterest     EntityKind = "interests"
)

var displayCaser = cases.Title(language.English, cases.NoLower)

// UpsertEntity merges a named entity into the given table. Names differing
// only by case or surrounding whitespace land on the same row: the mention
// count is incremented and last_seen refreshed, while first_seen and the
// originally recorded display name are preserved.
func (s *Store) UpsertEntity(ctx context.Context, kind EntityKind, name string, seen time.Time) error {
	display := strings.Join(strings.Fields(name), " ")
	if display == "" {
		return services.Wrap(services.ErrValidation, "store", "upsert entity", "entity name is empty", nil)
	}
	if display == strings.ToLower(display) {
		display = displayCaser.String(display)
	}
	query := fmt.Sprintf(`INSERT INTO %s (name, name_key, mentions, first_seen, last_seen)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name_key) DO UPDATE SET
			mentions = mentions + 1,
			last_seen = excluded.last_seen`, kind)
	if _, err := s.execRetry(ctx, query, display, NameKey(name), storeTime(seen), storeTime(seen)); err != nil {
		return services.Wrap(services.ErrTransient, "store", "upsert entity", fmt.Sprintf("merge into %s", kind), err)
	}
	return nil
}

// Entities lists all rows of one entity table ordered by most recently seen.
func (s *Store) Entities(ctx context.Context, kind EntityKind) ([]Entity, error) {
	query := fmt.Sprintf(`SELECT id, name, mentions, first_seen, last_seen FROM %s ORDER BY last_seen DESC`, kind)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list entities", "query rows", err)
	}
	defer rows.Close()
	var entities []Entity
	for rows.Next() {
		var entity Entity
		var firstSeen, lastSeen string
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Mentions, &firstSeen, &lastSeen); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list entities", "scan row", err)
		}
		if entity.FirstSeen, err = parseTime(firstSeen); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list entities", "parse timestamp", err)
		}
		if entity.LastSeen, err = parseTime(lastSeen); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list entities", "parse timestamp", err)
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

// EntityNames returns the display names of one entity table, most recent first.
func (s *Store) EntityNames(ctx context.Context, kind EntityKind) ([]string, error) {
	entities, err := s.Entities(ctx, kind)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entities))
	for _, entity := range entities {
		names = append(names, entity.Name)
	}
	return names, nil
}
