package app

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/overlay"
	"github.com/ayusman/gesturedrive/internal/server"
)

// Player runs a game on the calling goroutine until it ends or ctx is
// cancelled, polling source for the current gestures.
type Player func(ctx context.Context, source func() action.Pair) error

// RaceConfig wires the gesture feed of the car game.
type RaceConfig struct {
	Camera    capture.Camera
	CameraID  int
	Processor *Processor

	Frames *server.FrameBuffer
	Hub    *server.Hub

	Clock  quartz.Clock
	Logger *log.Logger
}

// Race tracks gestures in the background while a game is played.
type Race struct {
	config RaceConfig
	table  *action.Table[action.CarAction]
	meter  *meter
	pair   atomic.Pointer[action.Pair]
	logger *log.Logger
}

// NewRace creates the race gesture feed.
func NewRace(config RaceConfig) *Race {
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	return &Race{
		config: config,
		table:  action.Car(),
		meter:  newMeter(),
		logger: config.Logger.WithPrefix("race-feed"),
	}
}

// Pair returns the gestures of the most recent frame. It is safe to call
// from the game goroutine.
func (r *Race) Pair() action.Pair {
	if p := r.pair.Load(); p != nil {
		return *p
	}
	return action.Pair{}
}

// Run opens the camera, tracks gestures in the background and plays the
// game on the calling goroutine. A camera failure ends the game.
func (r *Race) Run(ctx context.Context, play Player) error {
	if err := r.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera %d: %w", r.config.CameraID, err)
	}
	defer r.config.Camera.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := capture.NewStream(r.config.Camera, r.config.Logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(gctx) })
	g.Go(func() error { return r.track(gctx, stream) })

	err := play(gctx, r.Pair)
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}

	r.logger.Info("stopped", "frames", r.meter.Frames(), "dropped", stream.Slot().Dropped())
	return err
}

func (r *Race) track(ctx context.Context, stream *capture.Stream) error {
	if err := stream.WaitFirstFrame(ctx, r.config.Clock, FirstFrameTimeout); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("camera warm-up: %w", err)
	}

	r.meter.start(ctx, r.config.Clock, r.logger, stream.Slot().Dropped)
	return consume(ctx, stream, r.Step)
}

// Step classifies one frame and publishes its gestures to the game. The
// car table is resolved here only for the debug feeds; the game resolves
// its own copy every tick.
func (r *Race) Step(frame *gocv.Mat) (bool, error) {
	obs, err := r.config.Processor.Process(frame)
	if err != nil {
		return false, err
	}
	r.pair.Store(&obs.Pair)

	res := r.table.Resolve(obs.Pair)
	n := r.meter.record(res.Rule)

	if r.config.Hub != nil {
		r.config.Hub.Broadcast(server.State{
			Frame:     n,
			Left:      obs.Pair.Left,
			Right:     obs.Pair.Right,
			Rule:      res.Rule,
			Action:    res.Action.String(),
			Enabled:   true,
			Timestamp: r.config.Clock.Now().UnixMilli(),
		})
	}

	if r.config.Frames != nil && r.config.Frames.Viewers() > 0 {
		overlay.Draw(frame, obs.Hands, overlay.Status{
			Left:   obs.Pair.Left,
			Right:  obs.Pair.Right,
			Action: res.Action.String(),
			Label:  "CAR",
			FPS:    r.meter.FPS(),
		})
		if err := r.config.Frames.Publish(frame); err != nil {
			r.logger.Warn("publish frame", "err", err)
		}
	}
	return false, nil
}
