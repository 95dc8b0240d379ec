// Package race is a vertical-scrolling car game steered by hand gestures.
package race

import (
	"math"
	"math/rand/v2"

	"github.com/ayusman/gesturedrive/internal/action"
)

// TickRate is the number of simulation steps per second.
const TickRate = 60

const dt = 1.0 / TickRate

// Params are the world's physical constants, in road units (one lane is
// one unit wide) and seconds.
type Params struct {
	Lanes         int
	MinSpeed      float64 // cruising speed with no input
	MaxSpeed      float64
	Accel         float64
	Brake         float64
	Drag          float64
	Steer         float64 // lateral units per second while turning
	DodgeCooldown int     // ticks between dodges
	CarWidth      float64
	CarLength     float64
	ObstacleWidth float64
	ObstacleLen   float64
	SpawnGap      float64 // minimum distance between obstacle rows
	ViewDistance  float64 // how far ahead obstacles exist
	// UnitsPerPoint converts distance travelled into score.
	UnitsPerPoint float64
}

// DefaultParams returns a three-lane road tuned for webcam control.
func DefaultParams() Params {
	return Params{
		Lanes:         3,
		MinSpeed:      4,
		MaxSpeed:      16,
		Accel:         6,
		Brake:         12,
		Drag:          1.5,
		Steer:         2.5,
		DodgeCooldown: TickRate / 2,
		CarWidth:      0.6,
		CarLength:     1.2,
		ObstacleWidth: 0.7,
		ObstacleLen:   1.0,
		SpawnGap:      7,
		ViewDistance:  14,
		UnitsPerPoint: 1,
	}
}

// Obstacle is a blocker on the road. X is its lateral centre, Y its
// distance ahead of the car's centre.
type Obstacle struct {
	X float64
	Y float64
}

// World is the game state. It is advanced only by Step and never reads
// the clock, so a seed and an action sequence reproduce a run exactly.
type World struct {
	Params

	// X is the car's lateral offset from the road centre.
	X        float64
	Speed    float64
	Distance float64
	Ticks    int
	Dodges   int
	Over     bool

	Obstacles []Obstacle

	cooldown  int
	nextSpawn float64
	rng       *rand.Rand
}

// NewWorld creates a world whose obstacle layout is fixed by seed.
func NewWorld(seed uint64, p Params) *World {
	w := &World{
		Params: p,
		Speed:  p.MinSpeed,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	w.nextSpawn = p.ViewDistance / 2
	w.spawn()
	return w
}

// HalfRoad is the largest lateral offset the car can reach.
func (w *World) HalfRoad() float64 {
	return float64(w.Lanes)/2 - w.CarWidth/2
}

// LaneCenter returns the lateral centre of lane i, counted from the left.
func (w *World) LaneCenter(i int) float64 {
	return float64(i) - float64(w.Lanes-1)/2
}

// Score is the distance travelled in points.
func (w *World) Score() int {
	return int(w.Distance / w.UnitsPerPoint)
}

// Step advances the world by one tick under a.
func (w *World) Step(a action.CarAction) {
	if w.Over {
		return
	}
	w.Ticks++

	switch a {
	case action.Accelerate:
		w.Speed += w.Accel * dt
	case action.Brake:
		w.Speed -= w.Brake * dt
	case action.TurnLeft:
		w.X -= w.Steer * dt
	case action.TurnRight:
		w.X += w.Steer * dt
	case action.DodgeLeft:
		w.dodge(-1)
	case action.DodgeRight:
		w.dodge(1)
	case action.Calibrate:
		w.X = 0
	}

	if a != action.Accelerate {
		w.Speed -= w.Drag * dt
	}
	w.Speed = clamp(w.Speed, w.MinSpeed, w.MaxSpeed)
	w.X = clamp(w.X, -w.HalfRoad(), w.HalfRoad())
	if w.cooldown > 0 {
		w.cooldown--
	}

	move := w.Speed * dt
	w.Distance += move
	kept := w.Obstacles[:0]
	for _, o := range w.Obstacles {
		o.Y -= move
		if o.Y > -w.CarLength {
			kept = append(kept, o)
		}
	}
	w.Obstacles = kept
	w.spawn()

	if w.collides() {
		w.Over = true
	}
}

// CanDodge reports whether a dodge would take effect this tick.
func (w *World) CanDodge() bool {
	return w.cooldown == 0
}

// dodge jumps one lane width in dir, at most once per cooldown.
func (w *World) dodge(dir float64) {
	if w.cooldown > 0 {
		return
	}
	w.X += dir
	w.cooldown = w.DodgeCooldown
	w.Dodges++
}

// spawn fills the road ahead with obstacle rows. Each row blocks one lane
// and sometimes a second, never all of them.
func (w *World) spawn() {
	for w.nextSpawn <= w.Distance+w.ViewDistance {
		y := w.nextSpawn - w.Distance
		first := w.rng.IntN(w.Lanes)
		w.Obstacles = append(w.Obstacles, Obstacle{X: w.LaneCenter(first), Y: y})
		if w.Lanes > 2 && w.rng.IntN(3) == 0 {
			second := (first + 1 + w.rng.IntN(w.Lanes-1)) % w.Lanes
			w.Obstacles = append(w.Obstacles, Obstacle{X: w.LaneCenter(second), Y: y})
		}
		w.nextSpawn += w.SpawnGap + w.rng.Float64()*w.SpawnGap
	}
}

func (w *World) collides() bool {
	for _, o := range w.Obstacles {
		if math.Abs(o.Y) < (w.CarLength+w.ObstacleLen)/2 &&
			math.Abs(o.X-w.X) < (w.CarWidth+w.ObstacleWidth)/2 {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
