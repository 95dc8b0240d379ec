package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Run is one finished race.
type Run struct {
	ID        string
	Score     int
	Distance  float64
	Duration  time.Duration
	Dodges    int
	CreatedAt time.Time
}

// RunRepository records race results.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts a run, assigning an ID when it has none.
func (r *RunRepository) Create(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	run.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO runs (id, score, distance, duration_ms, dodges, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Score, run.Distance, run.Duration.Milliseconds(), run.Dodges, run.CreatedAt,
	)
	return err
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(id string) (*Run, error) {
	row := r.db.QueryRow(
		`SELECT id, score, distance, duration_ms, dodges, created_at
		 FROM runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// Top returns up to limit runs, best score first.
func (r *RunRepository) Top(limit int) ([]*Run, error) {
	rows, err := r.db.Query(
		`SELECT id, score, distance, duration_ms, dodges, created_at
		 FROM runs ORDER BY score DESC, created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return runs, nil
}

// Count returns the number of recorded runs.
func (r *RunRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	run := &Run{}
	var durationMs int64
	if err := s.Scan(&run.ID, &run.Score, &run.Distance, &durationMs, &run.Dodges, &run.CreatedAt); err != nil {
		return nil, err
	}
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}
