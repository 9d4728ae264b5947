package store

import (
	"context"
	"time"

	"lookout/internal/services"
)

// InsertScreenCapture records one OCR snapshot.
func (s *Store) InsertScreenCapture(ctx context.Context, capture ScreenCapture) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO screen_captures (captured_at, app, window, ocr_text) VALUES (?, ?, ?, ?)`,
		storeTime(capture.CapturedAt), capture.App, capture.Window, capture.OCRText)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert screen capture", "write row", err)
	}
	return result.LastInsertId()
}

// InsertVoiceSegment records one transcribed audio span.
func (s *Store) InsertVoiceSegment(ctx context.Context, segment VoiceSegment) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO voice_segments (started_at, ended_at, transcript, confidence) VALUES (?, ?, ?, ?)`,
		storeTime(segment.StartedAt), storeTime(segment.EndedAt), segment.Transcript, segment.Confidence)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert voice segment", "write row", err)
	}
	return result.LastInsertId()
}

// InsertFaceEvent records one facial-emotion observation.
func (s *Store) InsertFaceEvent(ctx context.Context, event FaceEvent) (int64, error) {
	result, err := s.execRetry(ctx,
		`INSERT INTO face_events (observed_at, emotion) VALUES (?, ?)`,
		storeTime(event.ObservedAt), event.Emotion)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "store", "insert face event", "write row", err)
	}
	return result.LastInsertId()
}

// ScreenCapturesSince returns captures at or after the cutoff, oldest first.
func (s *Store) ScreenCapturesSince(ctx context.Context, cutoff time.Time) ([]ScreenCapture, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, captured_at, app, window, ocr_text FROM screen_captures WHERE captured_at >= ? ORDER BY captured_at ASC`,
		storeTime(cutoff))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list screen captures", "query rows", err)
	}
	defer rows.Close()
	var captures []ScreenCapture
	for rows.Next() {
		var capture ScreenCapture
		var capturedAt string
		if err := rows.Scan(&capture.ID, &capturedAt, &capture.App, &capture.Window, &capture.OCRText); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list screen captures", "scan row", err)
		}
		if capture.CapturedAt, err = parseTime(capturedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list screen captures", "parse timestamp", err)
		}
		captures = append(captures, capture)
	}
	return captures, rows.Err()
}

// VoiceSegmentsSince returns segments starting at or after the cutoff, oldest first.
func (s *Store) VoiceSegmentsSince(ctx context.Context, cutoff time.Time) ([]VoiceSegment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, transcript, confidence FROM voice_segments WHERE started_at >= ? ORDER BY started_at ASC`,
		storeTime(cutoff))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list voice segments", "query rows", err)
	}
	defer rows.Close()
	var segments []VoiceSegment
	for rows.Next() {
		var segment VoiceSegment
		var startedAt, endedAt string
		if err := rows.Scan(&segment.ID, &startedAt, &endedAt, &segment.Transcript, &segment.Confidence); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list voice segments", "scan row", err)
		}
		if segment.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list voice segments", "parse timestamp", err)
		}
		if segment.EndedAt, err = parseTime(endedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list voice segments", "parse timestamp", err)
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

// FaceEventsSince returns emotion observations at or after the cutoff, oldest first.
func (s *Store) FaceEventsSince(ctx context.Context, cutoff time.Time) ([]FaceEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, observed_at, emotion FROM face_events WHERE observed_at >= ? ORDER BY observed_at ASC`,
		storeTime(cutoff))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "list face events", "query rows", err)
	}
	defer rows.Close()
	var events []FaceEvent
	for rows.Next() {
		var event FaceEvent
		var observedAt string
		if err := rows.Scan(&event.ID, &observedAt, &event.Emotion); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list face events", "scan row", err)
		}
		if event.ObservedAt, err = parseTime(observedAt); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "list face events", "parse timestamp", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ActivityTimestamps returns every screen and voice observation timestamp at
// or after the cutoff, oldest first. Used to split activity into work
// sessions.
func (s *Store) ActivityTimestamps(ctx context.Context, cutoff time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT captured_at AS ts FROM screen_captures WHERE captured_at >= ?
		 UNION ALL
		 SELECT started_at AS ts FROM voice_segments WHERE started_at >= ?
		 ORDER BY ts ASC`,
		storeTime(cutoff), storeTime(cutoff))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "store", "activity timestamps", "query rows", err)
	}
	defer rows.Close()
	var stamps []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "activity timestamps", "scan row", err)
		}
		parsed, err := parseTime(raw)
		if err != nil {
			return nil, services.Wrap(services.ErrTransient, "store", "activity timestamps", "parse timestamp", err)
		}
		stamps = append(stamps, parsed)
	}
	return stamps, rows.Err()
}
