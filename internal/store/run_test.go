package store

import (
	"errors"
	"testing"
	"time"
)

func TestRunRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	repo := s.Runs()

	run := &Run{
		Score:    420,
		Distance: 4200.5,
		Duration: 95 * time.Second,
		Dodges:   3,
	}
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("Create() should assign an ID")
	}
	if run.CreatedAt.IsZero() {
		t.Error("Create() should set CreatedAt")
	}

	got, err := repo.GetByID(run.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Score != 420 || got.Distance != 4200.5 || got.Dodges != 3 {
		t.Errorf("GetByID() = %+v, want score 420 distance 4200.5 dodges 3", got)
	}
	if got.Duration != 95*time.Second {
		t.Errorf("Duration = %v, want 1m35s", got.Duration)
	}
}

func TestRunRepository_KeepsGivenID(t *testing.T) {
	repo := newTestStore(t).Runs()

	run := &Run{ID: "run-1", Score: 1}
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if run.ID != "run-1" {
		t.Errorf("ID = %q, want run-1", run.ID)
	}

	// IDs are unique.
	if err := repo.Create(&Run{ID: "run-1", Score: 2}); err == nil {
		t.Error("Create() with a duplicate ID should fail")
	}
}

func TestRunRepository_RejectsNegativeScore(t *testing.T) {
	repo := newTestStore(t).Runs()

	if err := repo.Create(&Run{Score: -1}); err == nil {
		t.Error("Create() with a negative score should fail")
	}
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestStore(t).Runs()

	_, err := repo.GetByID("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestRunRepository_Top(t *testing.T) {
	repo := newTestStore(t).Runs()

	for _, score := range []int{50, 300, 120, 300, 10} {
		if err := repo.Create(&Run{Score: score}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	top, err := repo.Top(3)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("Top(3) returned %d runs", len(top))
	}
	want := []int{300, 300, 120}
	for i, run := range top {
		if run.Score != want[i] {
			t.Errorf("Top()[%d].Score = %d, want %d", i, run.Score, want[i])
		}
	}

	n, err := repo.Count()
	if err != nil || n != 5 {
		t.Errorf("Count() = %d, %v; want 5, nil", n, err)
	}
}

func TestRunRepository_TopEmpty(t *testing.T) {
	repo := newTestStore(t).Runs()

	top, err := repo.Top(10)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 0 {
		t.Errorf("Top() on empty store returned %d runs", len(top))
	}
}
