package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/blackwell-systems/muxdash/internal/eventlog"
)

// ArchivedEvent is one row of the events table.
type ArchivedEvent struct {
	ID            int64
	Session       string
	Ts            int64
	Type          string
	Svc           string
	Action        string
	InteractionID string
	Payload       string
}

// Time returns the event timestamp as a time.Time.
func (e *ArchivedEvent) Time() time.Time {
	return time.UnixMilli(e.Ts)
}

// Archive inserts the events of one session that have not been archived yet
// and returns how many rows were added. Idempotent across repeated calls: a
// per-session watermark records how many log lines have been consumed, the
// same crash-safe pattern as an offset file, but transactional. A watermark
// beyond the current log length means the log was cleared; archiving then
// restarts from the beginning.
func (s *Store) Archive(session string, events []*eventlog.Event) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}

	var mark int
	err = tx.QueryRow(`SELECT last_index FROM archive_watermarks WHERE session = ?`, session).Scan(&mark)
	if err != nil && err != sql.ErrNoRows {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("read watermark: %w", err)
	}
	if mark > len(events) {
		mark = 0
	}

	stmt, err := tx.Prepare(`INSERT INTO events (session, ts, type, svc, action, interaction_id, payload) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, ev := range events[mark:] {
		payload, err := json.Marshal(ev)
		if err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("marshal event: %w", err)
		}
		if _, err := stmt.Exec(session, ev.Ts, ev.Type, ev.Svc, ev.Action, ev.ID, string(payload)); err != nil {
			tx.Rollback() //nolint:errcheck
			return 0, fmt.Errorf("insert event: %w", err)
		}
		inserted++
	}

	if _, err := tx.Exec(`INSERT INTO archive_watermarks (session, last_index) VALUES (?, ?)
		ON CONFLICT(session) DO UPDATE SET last_index = excluded.last_index`, session, len(events)); err != nil {
		tx.Rollback() //nolint:errcheck
		return 0, fmt.Errorf("update watermark: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListEvents returns archived events, newest first. session filters to one
// session when non-empty; since drops events older than the given time;
// limit caps the result when positive.
func (s *Store) ListEvents(session string, since time.Time, limit int) ([]*ArchivedEvent, error) {
	query := `SELECT id, session, ts, type, svc, action, interaction_id, payload FROM events WHERE ts >= ?`
	args := []any{since.UnixMilli()}
	if session != "" {
		query += ` AND session = ?`
		args = append(args, session)
	}
	query += ` ORDER BY ts DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*ArchivedEvent
	for rows.Next() {
		var ev ArchivedEvent
		var svc, action, iid sql.NullString
		if err := rows.Scan(&ev.ID, &ev.Session, &ev.Ts, &ev.Type, &svc, &action, &iid, &ev.Payload); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Svc = svc.String
		ev.Action = action.String
		ev.InteractionID = iid.String
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// CountByType returns the number of archived events per type for a session
// (all sessions when session is empty).
func (s *Store) CountByType(session string) (map[string]int, error) {
	query := `SELECT type, COUNT(*) FROM events`
	var args []any
	if session != "" {
		query += ` WHERE session = ?`
		args = append(args, session)
	}
	query += ` GROUP BY type`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
