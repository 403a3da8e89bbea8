package store

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertActivityEvents writes a batch of events in a single
// transaction. The observer flushes its in-memory queue through here
// on a fixed cadence and on shutdown.
func (s *Store) InsertActivityEvents(events []ActivityEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activity_events (path, op, observed_at)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, ev := range events {
		if _, err := stmt.Exec(ev.Path, ev.Op, ev.ObservedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to insert event for %s: %w", ev.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit events: %w", err)
	}
	return nil
}

// RecentEvents returns the newest events, most recent first.
func (s *Store) RecentEvents(limit int) ([]ActivityEvent, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, path, op, observed_at
		FROM activity_events
		ORDER BY observed_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []ActivityEvent
	for rows.Next() {
		var ev ActivityEvent
		var observedAt string
		if err := rows.Scan(&ev.ID, &ev.Path, &ev.Op, &observedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ts, err := time.Parse(time.RFC3339, observedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", observedAt, err)
		}
		ev.ObservedAt = ts
		events = append(events, ev)
	}
	return events, rows.Err()
}

// LatestActivity returns the timestamp of the newest journaled event.
// The second return is false when the journal is empty.
func (s *Store) LatestActivity() (time.Time, bool, error) {
	var observedAt string
	err := s.db.QueryRow(`
		SELECT observed_at
		FROM activity_events
		ORDER BY observed_at DESC, id DESC
		LIMIT 1
	`).Scan(&observedAt)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest activity: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, observedAt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse latest activity %q: %w", observedAt, err)
	}
	return ts, true, nil
}

// RecordAction appends one row to the action log.
func (s *Store) RecordAction(rec ActionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO action_log (outcome, detail, droplet_id, occurred_at)
		VALUES (?, ?, ?, ?)
	`, rec.Outcome, rec.Detail, rec.DropletID, rec.OccurredAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// LastAction returns the most recent action log entry, or nil when no
// action has ever fired.
func (s *Store) LastAction() (*ActionRecord, error) {
	var rec ActionRecord
	var occurredAt string
	err := s.db.QueryRow(`
		SELECT id, outcome, detail, droplet_id, occurred_at
		FROM action_log
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&rec.ID, &rec.Outcome, &rec.Detail, &rec.DropletID, &occurredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query last action: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse action timestamp %q: %w", occurredAt, err)
	}
	rec.OccurredAt = ts
	return &rec, nil
}
