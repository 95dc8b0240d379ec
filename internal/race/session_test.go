package race

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/gesture"
	"github.com/ayusman/gesturedrive/internal/store"
)

type fakeBoard struct {
	best    int
	submits []int
	err     error
}

func (b *fakeBoard) Best() int { return b.best }

func (b *fakeBoard) Submit(score int) (bool, error) {
	b.submits = append(b.submits, score)
	if b.err != nil {
		return false, b.err
	}
	if score > b.best {
		b.best = score
		return true, nil
	}
	return false, nil
}

type fakeRuns struct {
	runs []*store.Run
}

func (r *fakeRuns) Create(run *store.Run) error {
	r.runs = append(r.runs, run)
	return nil
}

var (
	bothPalms = action.Pair{Left: gesture.Palm, Right: gesture.Palm}
	bothTwo   = action.Pair{Left: gesture.Count2, Right: gesture.Count2}
	noHands   = action.Pair{}
)

func newSession(board ScoreBoard, opts ...SessionOption) *Session {
	return NewSession(board, log.New(io.Discard), opts...)
}

func crash(s *Session) {
	w := s.World()
	w.Obstacles = []Obstacle{{X: w.X, Y: 0.2}}
}

func TestSession_TickResolvesAndSteps(t *testing.T) {
	s := newSession(&fakeBoard{}, WithSeed(3))

	res := s.Tick(bothPalms)
	assert.Equal(t, action.Accelerate, res.Action)
	assert.Equal(t, 1, s.World().Ticks)
	assert.Greater(t, s.World().Speed, s.World().MinSpeed)

	pair, last := s.Last()
	assert.Equal(t, bothPalms, pair)
	assert.Equal(t, res, last)

	res = s.Tick(noHands)
	assert.Equal(t, action.Coast, res.Action)
	assert.Equal(t, "coast", res.Rule)
}

func TestSession_GameOverBooksScoreOnce(t *testing.T) {
	board := &fakeBoard{best: 0}
	runs := &fakeRuns{}
	p := DefaultParams()
	p.SpawnGap = 1e9
	s := newSession(board, WithSeed(5), WithRuns(runs), WithParams(p))

	s.World().Obstacles = nil
	for i := 0; i < 3*TickRate; i++ {
		s.Tick(noHands)
	}
	crash(s)
	s.Tick(noHands)

	require.True(t, s.World().Over)
	res := s.Result()
	require.NotNil(t, res)
	assert.Equal(t, s.World().Score(), res.Score)
	assert.Greater(t, res.Score, 0)
	assert.True(t, res.NewRecord)
	assert.Equal(t, res.Score, res.Best)

	require.Len(t, runs.runs, 1)
	assert.Equal(t, res.Score, runs.runs[0].Score)
	assert.Equal(t, s.World().Dodges, runs.runs[0].Dodges)
	assert.Greater(t, runs.runs[0].Duration.Seconds(), 2.9)

	// Further ticks while the run is over do nothing.
	s.Tick(bothPalms)
	s.Tick(noHands)
	assert.Len(t, board.submits, 1)
	assert.Len(t, runs.runs, 1)
}

func TestSession_EndBooksRunInProgress(t *testing.T) {
	board := &fakeBoard{}
	runs := &fakeRuns{}
	p := DefaultParams()
	p.SpawnGap = 1e9
	s := newSession(board, WithSeed(5), WithRuns(runs), WithParams(p))

	// Nothing played yet.
	s.End()
	assert.Empty(t, board.submits)
	assert.Nil(t, s.Result())

	s.World().Obstacles = nil
	for i := 0; i < 3*TickRate; i++ {
		s.Tick(bothPalms)
	}
	require.False(t, s.World().Over)

	s.End()
	res := s.Result()
	require.NotNil(t, res)
	assert.Greater(t, res.Score, 0)
	assert.True(t, res.NewRecord)
	assert.Equal(t, []int{res.Score}, board.submits)
	assert.Len(t, runs.runs, 1)

	s.End()
	assert.Len(t, board.submits, 1)
}

func TestSession_EndAfterCrashDoesNotRebook(t *testing.T) {
	board := &fakeBoard{}
	s := newSession(board, WithSeed(5))

	crash(s)
	s.Tick(noHands)
	require.True(t, s.World().Over)

	s.End()
	assert.Len(t, board.submits, 1)
}

func TestSession_LowScoreIsNotARecord(t *testing.T) {
	board := &fakeBoard{best: 1_000_000}
	s := newSession(board, WithSeed(5))

	crash(s)
	s.Tick(noHands)

	require.NotNil(t, s.Result())
	assert.False(t, s.Result().NewRecord)
	assert.Equal(t, 1_000_000, s.Result().Best)
}

func TestSession_ScoreBoardErrorIsNotFatal(t *testing.T) {
	board := &fakeBoard{err: errors.New("read-only file system")}
	s := newSession(board, WithSeed(5))

	crash(s)
	s.Tick(noHands)

	require.NotNil(t, s.Result())
	assert.False(t, s.Result().NewRecord)
}

func TestSession_CalibrateRestarts(t *testing.T) {
	s := newSession(&fakeBoard{}, WithSeed(8))
	crash(s)
	s.Tick(noHands)
	require.NotNil(t, s.Result())

	res := s.Tick(bothTwo)
	assert.Equal(t, action.Calibrate, res.Action)
	assert.Nil(t, s.Result())
	assert.False(t, s.World().Over)
	assert.Equal(t, 0, s.World().Ticks)
}

func TestSession_SeedFixesLayout(t *testing.T) {
	a := newSession(&fakeBoard{}, WithSeed(11))
	b := newSession(&fakeBoard{}, WithSeed(11))
	assert.Equal(t, a.World().Obstacles, b.World().Obstacles)

	a.Restart()
	assert.Equal(t, b.World().Obstacles, a.World().Obstacles, "restart reuses a fixed seed")
}

func TestSession_WithParams(t *testing.T) {
	p := DefaultParams()
	p.Lanes = 5
	s := newSession(&fakeBoard{}, WithParams(p))
	assert.Equal(t, 5, s.World().Lanes)
}

func TestHUDLines(t *testing.T) {
	s := newSession(&fakeBoard{best: 42}, WithSeed(2))
	s.Tick(action.Pair{Left: gesture.Fist, Right: gesture.Palm})

	lines := HUDLines(s)
	require.Len(t, lines, 4)
	assert.Equal(t, "SCORE 0  BEST 42", lines[0])
	assert.Equal(t, "L: FIST | R: PALM", lines[2])
	assert.Equal(t, "ACTION: turn-left", lines[3])

	crash(s)
	s.Tick(noHands)
	lines = HUDLines(s)
	require.Len(t, lines, 6)
	assert.Contains(t, lines[4], "GAME OVER")
}
