package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the keyboard controller.
type Session struct {
	ID        string
	CameraID  int
	Frames    int
	Dropped   int
	Presses   int
	StartedAt time.Time
	EndedAt   *time.Time
	// Rules maps rule name to the number of frames it fired.
	Rules map[string]int
}

// SessionRepository records drive sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts an open session for cameraID.
func (r *SessionRepository) Start(cameraID int) (*Session, error) {
	sess := &Session{
		ID:        uuid.New().String(),
		CameraID:  cameraID,
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, camera_id, started_at) VALUES (?, ?, ?)`,
		sess.ID, sess.CameraID, sess.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Finish stores the session's counters and rule tallies and marks it ended.
func (r *SessionRepository) Finish(sess *Session) error {
	now := time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE sessions SET frames = ?, dropped = ?, presses = ?, ended_at = ?
		 WHERE id = ?`,
		sess.Frames, sess.Dropped, sess.Presses, now, sess.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM session_rules WHERE session_id = ?`, sess.ID); err != nil {
		return err
	}
	for rule, frames := range sess.Rules {
		if _, err := tx.Exec(
			`INSERT INTO session_rules (session_id, rule, frames) VALUES (?, ?, ?)`,
			sess.ID, rule, frames,
		); err != nil {
			return fmt.Errorf("rule %s: %w", rule, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	sess.EndedAt = &now
	return nil
}

// GetByID retrieves a session and its rule tallies.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, camera_id, frames, dropped, presses, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.CameraID, &sess.Frames, &sess.Dropped, &sess.Presses, &sess.StartedAt, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ended.Valid {
		sess.EndedAt = &ended.Time
	}

	rows, err := r.db.Query(`SELECT rule, frames FROM session_rules WHERE session_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sess.Rules = make(map[string]int)
	for rows.Next() {
		var rule string
		var frames int
		if err := rows.Scan(&rule, &frames); err != nil {
			return nil, err
		}
		sess.Rules[rule] = frames
	}

	return sess, rows.Err()
}

// Delete removes a session and its rule tallies.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Recent returns up to limit sessions, newest first. Rule tallies are not
// loaded.
func (r *SessionRepository) Recent(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, camera_id, frames, dropped, presses, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var ended sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.CameraID, &sess.Frames, &sess.Dropped, &sess.Presses, &sess.StartedAt, &ended); err != nil {
			return nil, err
		}
		if ended.Valid {
			sess.EndedAt = &ended.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}
