package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"lookout/internal/services"
)

// InsertInsight appends a synthesized insight.
func (s *Store) InsertInsight(ctx context.Context, insight Insight) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO insights (kind, content, source, created_at) VALUES (?, ?, ?, ?)`,
		string(insight.Kind), insight.Content, insight.Source, storeTime(insight.CreatedAt))
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert insight", "write row", err)
	}
	return result.LastInsertId()
}

// LastInsightAt returns the creation time of the newest insight from the
// given source. The boolean reports whether one exists.
func (s *Store) LastInsightAt(ctx context.Context, source string) (time.Time, bool, error) {
	var createdAt string
	err := s.queryRowRetry(ctx, func(row *sql.Row) error {
		return row.Scan(&createdAt)
	}, `SELECT created_at FROM insights WHERE source = ? ORDER BY created_at DESC LIMIT 1`, source)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last insight", "query", err)
	}
	parsed, err := parseTime(createdAt)
	if err != nil {
		return time.Time{}, false, services.Wrap(services.ErrTransient, "store", "last insight", "parse timestamp", err)
	}
	return parsed, true, nil
}

// RecentInsights returns insights created at or after the cutoff, newest first.
func (s *Store) RecentInsights(ctx context.Context, cutoff time.Time) ([]Insight, error) {
	return s.listInsights(ctx,
		`SELECT id, kind, content, source, created_at FROM insights WHERE created_at >= ? ORDER BY created_at DESC`,
		storeTime(cutoff))
}

// LatestInsights returns the newest insights up to the given limit.
func (s *Store) LatestInsights(ctx context.Context, limit int) ([]Insight, error) {
	return s.listInsights(ctx,
		`SELECT id, kind, content, source, created_at FROM insights ORDER BY created_at DESC LIMIT ?`, limit)
}

func (s *Store) listInsights(ctx context.Context, query string, args ...any) ([]Insight, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list insights", "query rows", err)
	}
	defer rows.Close()
	var insights []Insight
	for rows.Next() {
		var insight Insight
		var kind, createdAt string
		if err := rows.Scan(&insight.ID, &kind, &insight.Content, &insight.Source, &createdAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list insights", "scan row", err)
		}
		insight.Kind = InsightKind(kind)
		if insight.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list insights", "parse timestamp", err)
		}
		insights = append(insights, insight)
	}
	return insights, rows.Err()
}
