// Package highscore persists the best race score as a single integer in a
// plain text file.
package highscore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// ErrCorrupt is returned when the file does not hold a non-negative integer.
var ErrCorrupt = errors.New("high score file is corrupt")

// File is the high score file at a fixed path.
type File struct {
	path string

	mu   sync.Mutex
	best int
}

// Open reads the high score at path. A missing file is a score of zero.
// A corrupt file also yields a usable File at zero, along with ErrCorrupt,
// so the next Submit rewrites it.
func Open(path string) (*File, error) {
	f := &File{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read high score: %w", err)
	}

	best, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || best < 0 {
		return f, fmt.Errorf("%w: %q", ErrCorrupt, data)
	}
	f.best = best
	return f, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Best returns the current high score.
func (f *File) Best() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.best
}

// Submit records score when it beats the current best and reports whether
// it did. Ties do not rewrite the file.
func (f *File) Submit(score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if score <= f.best {
		return false, nil
	}
	if err := writeAtomic(f.path, []byte(strconv.Itoa(score)+"\n")); err != nil {
		return false, fmt.Errorf("write high score: %w", err)
	}
	f.best = score
	return true, nil
}

// writeAtomic replaces path with data via a temp file and rename, so a crash
// never leaves a half-written score.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
