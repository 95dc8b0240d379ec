package race

import (
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/store"
)

// ScoreBoard keeps the best score across runs.
type ScoreBoard interface {
	Best() int
	Submit(score int) (bool, error)
}

// RunRecorder stores finished runs.
type RunRecorder interface {
	Create(run *store.Run) error
}

// Result summarises a finished run.
type Result struct {
	Score     int
	Best      int
	NewRecord bool
}

// Session plays consecutive runs: it resolves gestures into car actions,
// steps the world and books the score when a run ends.
type Session struct {
	table  *action.Table[action.CarAction]
	params Params
	seed   uint64
	board  ScoreBoard
	runs   RunRecorder
	logger *log.Logger

	world  *World
	last   action.Resolution[action.CarAction]
	pair   action.Pair
	result *Result
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSeed fixes the obstacle layout of every run. Without it each run
// draws a fresh seed.
func WithSeed(seed uint64) SessionOption {
	return func(s *Session) { s.seed = seed }
}

// WithRuns records every finished run.
func WithRuns(r RunRecorder) SessionOption {
	return func(s *Session) { s.runs = r }
}

// WithParams overrides DefaultParams.
func WithParams(p Params) SessionOption {
	return func(s *Session) { s.params = p }
}

// NewSession starts the first run.
func NewSession(board ScoreBoard, logger *log.Logger, opts ...SessionOption) *Session {
	s := &Session{
		table:  action.Car(),
		params: DefaultParams(),
		board:  board,
		logger: logger.WithPrefix("race"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Restart()
	return s
}

// Restart begins a new run.
func (s *Session) Restart() {
	seed := s.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s.world = NewWorld(seed, s.params)
	s.result = nil
	s.logger.Debug("run started", "seed", seed)
}

// Tick applies one frame of gestures. Once the run is over, the calibrate
// gesture starts the next one.
func (s *Session) Tick(p action.Pair) action.Resolution[action.CarAction] {
	s.pair = p
	s.last = s.table.Resolve(p)

	if s.world.Over {
		if s.last.Action == action.Calibrate {
			s.Restart()
		}
		return s.last
	}

	s.world.Step(s.last.Action)
	if s.world.Over {
		s.finish()
	}
	return s.last
}

// End books the run in progress as if it had ended now. It does nothing
// when the run is already over or has not moved yet.
func (s *Session) End() {
	if s.result != nil || s.world.Ticks == 0 {
		return
	}
	s.finish()
}

func (s *Session) finish() {
	w := s.world
	res := &Result{Score: w.Score()}

	beat, err := s.board.Submit(res.Score)
	if err != nil {
		s.logger.Error("saving high score failed", "err", err)
	}
	res.NewRecord = beat
	res.Best = s.board.Best()
	s.result = res

	if s.runs != nil {
		run := &store.Run{
			Score:    res.Score,
			Distance: w.Distance,
			Duration: time.Duration(w.Ticks) * time.Second / TickRate,
			Dodges:   w.Dodges,
		}
		if err := s.runs.Create(run); err != nil {
			s.logger.Error("recording run failed", "err", err)
		}
	}

	s.logger.Info("run over", "score", res.Score, "best", res.Best, "record", res.NewRecord)
}

// World returns the current run's world.
func (s *Session) World() *World {
	return s.world
}

// Last returns the most recent gestures and their resolution.
func (s *Session) Last() (action.Pair, action.Resolution[action.CarAction]) {
	return s.pair, s.last
}

// Result returns the outcome of the current run, or nil while it is still
// being played.
func (s *Session) Result() *Result {
	return s.result
}

// Best returns the high score.
func (s *Session) Best() int {
	return s.board.Best()
}
