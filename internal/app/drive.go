package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/input"
	"github.com/ayusman/gesturedrive/internal/overlay"
	"github.com/ayusman/gesturedrive/internal/server"
	"github.com/ayusman/gesturedrive/internal/store"
)

// FirstFrameTimeout bounds the camera warm-up.
const FirstFrameTimeout = 10 * time.Second

// Display shows annotated frames. Show reports whether the user asked to
// quit.
type Display interface {
	Show(frame *gocv.Mat) bool
	Close() error
}

// DriveConfig wires the keyboard controller. Camera, Processor and
// Controller are required; the rest are optional.
type DriveConfig struct {
	Camera     capture.Camera
	CameraID   int
	Processor  *Processor
	Controller *input.Controller

	// Display is nil when running headless.
	Display  Display
	Frames   *server.FrameBuffer
	Hub      *server.Hub
	Sessions *store.SessionRepository
	// OnRule is called whenever the resolved rule changes.
	OnRule func(rule string)

	Clock  quartz.Clock
	Logger *log.Logger
}

// Drive maps gestures to held keys, one camera frame at a time.
type Drive struct {
	config  DriveConfig
	table   *action.Table[action.KeyAction]
	meter   *meter
	enabled atomic.Bool
	rule    string
	logger  *log.Logger
}

// NewDrive creates an enabled keyboard controller.
func NewDrive(config DriveConfig) *Drive {
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	d := &Drive{
		config: config,
		table:  action.Keyboard(),
		meter:  newMeter(),
		logger: config.Logger.WithPrefix("drive"),
	}
	d.enabled.Store(true)
	return d
}

// SetEnabled turns key output on or off. While disabled every key is
// released and gestures are still tracked.
func (d *Drive) SetEnabled(enabled bool) {
	d.enabled.Store(enabled)
	d.logger.Info("key output", "enabled", enabled)
}

// Enabled reports whether key output is on.
func (d *Drive) Enabled() bool {
	return d.enabled.Load()
}

// Run opens the camera and processes frames on the calling goroutine until
// ctx is cancelled, the display asks to quit or the camera fails. Every key
// is released before Run returns.
func (d *Drive) Run(ctx context.Context) error {
	if err := d.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera %d: %w", d.config.CameraID, err)
	}
	defer d.config.Camera.Close()
	defer d.config.Controller.ReleaseAll()

	sess := d.startSession()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stream := capture.NewStream(d.config.Camera, d.config.Logger)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return stream.Run(gctx) })

	err := d.process(gctx, stream)
	cancel()
	if werr := g.Wait(); err == nil {
		err = werr
	}

	d.finishSession(sess, stream)
	d.logger.Info("stopped", "frames", d.meter.Frames(), "dropped", stream.Slot().Dropped(), "presses", d.config.Controller.Presses())
	return err
}

func (d *Drive) process(ctx context.Context, stream *capture.Stream) error {
	if err := stream.WaitFirstFrame(ctx, d.config.Clock, FirstFrameTimeout); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("camera warm-up: %w", err)
	}
	d.logger.Info("running", "enabled", d.Enabled())

	d.meter.start(ctx, d.config.Clock, d.logger, stream.Slot().Dropped)
	return consume(ctx, stream, d.Step)
}

// Step handles one frame: detect, classify, resolve, press keys, then
// annotate and show it. It reports whether the display asked to quit.
func (d *Drive) Step(frame *gocv.Mat) (bool, error) {
	obs, err := d.config.Processor.Process(frame)
	if err != nil {
		return false, err
	}

	res := d.table.Resolve(obs.Pair)
	n := d.meter.record(res.Rule)

	enabled := d.Enabled()
	if enabled {
		d.config.Controller.Apply(res.Action.Keys)
	} else {
		d.config.Controller.ReleaseAll()
	}

	if res.Rule != d.rule {
		d.logger.Debug("rule", "name", res.Rule, "left", obs.Pair.Left, "right", obs.Pair.Right, "keys", res.Action.Keys)
		d.rule = res.Rule
		if d.config.OnRule != nil {
			d.config.OnRule(res.Rule)
		}
	}

	held := d.config.Controller.Held()
	if d.config.Hub != nil {
		d.config.Hub.Broadcast(server.State{
			Frame:     n,
			Left:      obs.Pair.Left,
			Right:     obs.Pair.Right,
			Rule:      res.Rule,
			Action:    held.String(),
			Enabled:   enabled,
			Timestamp: d.config.Clock.Now().UnixMilli(),
		})
	}

	streaming := d.config.Frames != nil && d.config.Frames.Viewers() > 0
	if d.config.Display == nil && !streaming {
		return false, nil
	}

	keys := held.String()
	if !enabled {
		keys = "disabled"
	} else if keys == "" {
		keys = "none"
	}
	overlay.Draw(frame, obs.Hands, overlay.Status{
		Left:   obs.Pair.Left,
		Right:  obs.Pair.Right,
		Action: keys,
		Label:  "KEYS",
		FPS:    d.meter.FPS(),
	})

	if streaming {
		if err := d.config.Frames.Publish(frame); err != nil {
			d.logger.Warn("publish frame", "err", err)
		}
	}
	if d.config.Display != nil {
		return d.config.Display.Show(frame), nil
	}
	return false, nil
}

func (d *Drive) startSession() *store.Session {
	if d.config.Sessions == nil {
		return nil
	}
	sess, err := d.config.Sessions.Start(d.config.CameraID)
	if err != nil {
		d.logger.Warn("session not recorded", "err", err)
		return nil
	}
	return sess
}

func (d *Drive) finishSession(sess *store.Session, stream *capture.Stream) {
	if sess == nil {
		return
	}
	sess.Frames = int(d.meter.Frames())
	sess.Dropped = int(stream.Slot().Dropped())
	sess.Presses = d.config.Controller.Presses()
	sess.Rules = d.meter.Rules()
	if err := d.config.Sessions.Finish(sess); err != nil {
		d.logger.Warn("session not recorded", "id", sess.ID, "err", err)
	}
}
