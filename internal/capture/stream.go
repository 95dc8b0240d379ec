package capture

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"gocv.io/x/gocv"
)

// ErrNoFirstFrame is returned when the camera delivers nothing during warm-up.
var ErrNoFirstFrame = errors.New("camera produced no frame")

// Stream continuously reads a camera into a Slot on its own goroutine.
type Stream struct {
	camera Camera
	slot   *Slot[*gocv.Mat]
	logger *log.Logger
	frames atomic.Uint64
}

// NewStream creates a stream over an opened camera.
func NewStream(camera Camera, logger *log.Logger) *Stream {
	return &Stream{
		camera: camera,
		slot:   NewSlot(closeMat),
		logger: logger.WithPrefix("capture"),
	}
}

func closeMat(m *gocv.Mat) {
	if m != nil {
		m.Close()
	}
}

// Slot returns the buffer frames are written to. Frames taken from it must
// be closed by the caller.
func (s *Stream) Slot() *Slot[*gocv.Mat] {
	return s.slot
}

// Frames returns how many frames have been captured.
func (s *Stream) Frames() uint64 {
	return s.frames.Load()
}

// Run reads frames until ctx is cancelled or the camera fails. A read
// failure ends the stream and is returned; cancellation returns nil.
func (s *Stream) Run(ctx context.Context) error {
	defer s.slot.Close()

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Error("camera read failed", "err", err, "frames", s.frames.Load())
			return fmt.Errorf("capture stream: %w", err)
		}

		s.slot.Put(frame)
		s.frames.Add(1)
	}
}

// WaitFirstFrame blocks until the first frame reaches the slot. It fails
// when timeout elapses on clock first. The frame stays in the slot.
func (s *Stream) WaitFirstFrame(ctx context.Context, clock quartz.Clock, timeout time.Duration) error {
	expired := make(chan struct{})
	timer := clock.AfterFunc(timeout, func() {
		close(expired)
	})
	defer timer.Stop()

	select {
	case <-s.slot.Ready():
		// Hand the notification back to the consumer.
		s.slot.signal()
		s.logger.Debug("camera warm", "frames", s.frames.Load())
		return nil
	case <-expired:
		return fmt.Errorf("%w within %s", ErrNoFirstFrame, timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
