package app

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// StatsInterval is how often throughput is measured and logged.
const StatsInterval = 5 * time.Second

// meter counts processed frames and rule hits.
type meter struct {
	frames atomic.Uint64
	fps    atomic.Uint64 // math.Float64bits

	mu    sync.Mutex
	rules map[string]int
	last  uint64
}

func newMeter() *meter {
	return &meter{rules: make(map[string]int)}
}

func (m *meter) record(rule string) uint64 {
	m.mu.Lock()
	m.rules[rule]++
	m.mu.Unlock()
	return m.frames.Add(1)
}

func (m *meter) FPS() float64 {
	return math.Float64frombits(m.fps.Load())
}

func (m *meter) Frames() uint64 {
	return m.frames.Load()
}

// Rules returns a copy of the per-rule frame counts.
func (m *meter) Rules() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.rules))
	for k, v := range m.rules {
		out[k] = v
	}
	return out
}

func (m *meter) sample(interval time.Duration) float64 {
	n := m.frames.Load()
	fps := float64(n-m.last) / interval.Seconds()
	m.last = n
	m.fps.Store(math.Float64bits(fps))
	return fps
}

// start samples throughput every StatsInterval on clock until ctx ends.
// dropped reports the capture buffer's overwritten frames.
func (m *meter) start(ctx context.Context, clock quartz.Clock, logger *log.Logger, dropped func() uint64) quartz.Waiter {
	return clock.TickerFunc(ctx, StatsInterval, func() error {
		fps := m.sample(StatsInterval)
		logger.Debug("throughput", "fps", math.Round(fps*10)/10, "frames", m.Frames(), "dropped", dropped())
		return nil
	}, "stats")
}
