package store

import "database/sql"

// Event kinds recorded by the pipeline.
const (
	EventLocked    = "locked"
	EventUnlocked  = "unlocked"
	EventGrabbed   = "grabbed"
	EventReleased  = "released"
	EventSelection = "selection"
	EventBimanual  = "bimanual"
)

// Event is one control transition within a session, kept for diagnostics
// and threshold tuning. Payload is a JSON blob whose shape depends on kind.
type Event struct {
	ID          int64
	SessionID   string
	Kind        string
	TimestampMs int64
	Payload     string
}

// EventRepository provides operations on events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records one event.
func (r *EventRepository) Append(e *Event) error {
	result, err := r.db.Exec(
		`INSERT INTO events (session_id, kind, timestamp_ms, payload)
		 VALUES (?, ?, ?, ?)`,
		e.SessionID, e.Kind, e.TimestampMs, e.Payload,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// ListBySession retrieves a session's events in timestamp order.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, timestamp_ms, payload
		 FROM events WHERE session_id = ? ORDER BY timestamp_ms ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.TimestampMs, &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountByKind returns how many events of the given kind a session recorded.
func (r *EventRepository) CountByKind(sessionID, kind string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE session_id = ? AND kind = ?`,
		sessionID, kind,
	).Scan(&n)
	return n, err
}
