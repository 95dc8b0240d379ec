package highscore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFileIsZero(t *testing.T) {
	f, err := Open(filepath.Join(t.TempDir(), "highscore.txt"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Best())
}

func TestOpen_ReadsScore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highscore.txt")
	require.NoError(t, os.WriteFile(path, []byte("1234\n"), 0o644))

	f, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1234, f.Best())
}

func TestOpen_Corrupt(t *testing.T) {
	for _, content := range []string{"", "abc", "-5", "12.5"} {
		path := filepath.Join(t.TempDir(), "highscore.txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		f, err := Open(path)
		assert.True(t, errors.Is(err, ErrCorrupt), "content %q", content)
		require.NotNil(t, f)
		assert.Equal(t, 0, f.Best())
	}
}

func TestSubmit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores", "highscore.txt")
	f, err := Open(path)
	require.NoError(t, err)

	beat, err := f.Submit(100)
	require.NoError(t, err)
	assert.True(t, beat)

	beat, err = f.Submit(100)
	require.NoError(t, err)
	assert.False(t, beat, "a tie is not a new record")

	beat, err = f.Submit(40)
	require.NoError(t, err)
	assert.False(t, beat)
	assert.Equal(t, 100, f.Best())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "100\n", string(data))

	// A fresh reader sees the persisted value.
	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 100, again.Best())
}

func TestSubmit_RewritesCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highscore.txt")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	f, err := Open(path)
	require.ErrorIs(t, err, ErrCorrupt)

	beat, err := f.Submit(7)
	require.NoError(t, err)
	assert.True(t, beat)

	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 7, again.Best())
}

func TestSubmit_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	f, err := Open(filepath.Join(dir, "highscore.txt"))
	require.NoError(t, err)

	for score := 1; score <= 3; score++ {
		_, err := f.Submit(score)
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
