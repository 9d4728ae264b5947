package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lookout/internal/services"
)

// InsertAction records a delivery-ready action. Priority is clamped to [0, 10].
func (s *Store) InsertAction(ctx context.Context, action Action) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO actions (action_type, title, message, source, priority, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		string(action.Type), action.Title, action.Message, action.Source,
		ClampPriority(action.Priority), storeTime(action.CreatedAt))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert action", "write row", err)
	}
	return result.LastInsertId()
}

// MarkActionShown stamps the time an action was delivered to the user.
func (s *Store) MarkActionShown(ctx context.Context, id int64, shownAt time.Time) error {
	if _, err := s.execRetry(ctx,
		`UPDATE actions SET shown_at = ? WHERE id = ? AND shown_at IS NULL`,
		storeTime(shownAt), id); err != nil {
		return services.Wrap(services.ErrTransient, "store", "mark action shown", "update row", err)
	}
	return nil
}

// MarkActionDismissed stamps the time the user dismissed an action.
func (s *Store) MarkActionDismissed(ctx context.Context, id int64, dismissedAt time.Time) error {
	result, err := s.execRetry(ctx,
		`UPDATE actions SET dismissed_at = ? WHERE id = ? AND dismissed_at IS NULL`,
		storeTime(dismissedAt), id)
	if err != nil {
		return services.Wrap(services.ErrTransient, "store", "dismiss action", "update row", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		var exists int
		if scanErr := s.db.QueryRowContext(ctx, `SELECT 1 FROM actions WHERE id = ?`, id).Scan(&exists); errors.Is(scanErr, sql.ErrNoRows) {
			return services.Wrap(services.ErrValidation, "store", "dismiss action", "no such action", nil)
		}
	}
	return nil
}

// LastActionAt returns the creation time of the newest action from the given
// source. The boolean reports whether one exists.
func (s *Store) LastActionAt(ctx context.Context, source string) (time.Time, bool, error) {
	var createdAt string
	err := s.queryRowRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&createdAt)
	}, `SELECT created_at FROM actions WHERE source = ? ORDER BY created_at DESC LIMIT 1`, source)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last action", "query", err)
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last action", "parse timestamp", err)
	}
	return parsed, true, nil
}

// LastActionTimes returns the newest action creation time per source.
func (s *Store) LastActionTimes(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, MAX(created_at) FROM actions GROUP BY source`)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "last action times", "query rows", err)
	}
	defer rows.Close()
	times := make(map[string]time.Time)
	for rows.Next() {
		var source, createdAt string
		if err := rows.Scan(&source, &createdAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "last action times", "scan row", err)
		}
		parsed, err := parseTime(createdAt)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "last action times", "parse timestamp", err)
		}
		times[source] = parsed
	}
	return times, rows.Err()
}

// DismissalsSince counts actions dismissed at or after the cutoff.
func (s *Store) DismissalsSince(ctx context.Context, cutoff time.Time) (int, error) {
	var count int
	err := s.queryRowRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&count)
	}, `SELECT COUNT(*) FROM actions WHERE dismissed_at IS NOT NULL AND dismissed_at >= ?`, storeTime(cutoff))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "count dismissals", "query", err)
	}
	return count, nil
}

// LastPopupShownAt returns the most recent time a popup action was shown.
// The boolean reports whether any popup has been shown.
func (s *Store) LastPopupShownAt(ctx context.Context) (time.Time, bool, error) {
	var shownAt string
	err := s.queryRowRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&shownAt)
	}, `SELECT shown_at FROM actions WHERE action_type = ? AND shown_at IS NOT NULL ORDER BY shown_at DESC LIMIT 1`,
		string(ActionPopup))
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last popup", "query", err)
	}
	parsed, err := parseTime(shownAt)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last popup", "parse timestamp", err)
	}
	return parsed, true, nil
}

// RecentActions returns the newest actions up to the given limit.
func (s *Store) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action_type, title, message, source, priority, created_at, shown_at, dismissed_at
		 FROM actions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list actions", "query rows", err)
	}
	defer rows.Close()
	var actions []Action
	for rows.Next() {
		var action Action
		var actionType, createdAt string
		var shownAt, dismissedAt sql.NullString
		if err := rows.Scan(&action.ID, &actionType, &action.Title, &action.Message, &action.Source,
			&action.Priority, &createdAt, &shownAt, &dismissedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list actions", "scan row", err)
		}
		action.Type = ActionType(actionType)
		if action.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list actions", "parse timestamp", err)
		}
		if action.ShownAt, err = parseNullableTime(shownAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list actions", "parse timestamp", err)
		}
		if action.DismissedAt, err = parseNullableTime(dismissedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list actions", "parse timestamp", err)
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
