package capture

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func TestStream_ReadErrorEndsStream(t *testing.T) {
	frames := BlankFrames(3, 32, 24)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)
	cam.Open()
	stream := NewStream(cam, discardLogger())

	err := stream.Run(context.Background())
	if !errors.Is(err, ErrNoMoreFrames) {
		t.Fatalf("Run() error = %v, want ErrNoMoreFrames", err)
	}
	if stream.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", stream.Frames())
	}
	// The stream releases whatever was left in the slot on exit.
	if _, ok := stream.Slot().Take(); ok {
		t.Error("slot should be empty after the stream ends")
	}
}

func TestStream_CancelReturnsNil(t *testing.T) {
	frames := BlankFrames(1, 32, 24)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	stream := NewStream(cam, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- stream.Run(ctx) }()

	// Consume one frame, then stop.
	<-stream.Slot().Ready()
	if f, ok := stream.Slot().Take(); ok {
		f.Close()
	}
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestStream_WaitFirstFrame(t *testing.T) {
	frames := BlankFrames(1, 32, 24)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	stream := NewStream(cam, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stream.Run(ctx)

	clock := quartz.NewMock(t)
	if err := stream.WaitFirstFrame(ctx, clock, time.Second); err != nil {
		t.Fatalf("WaitFirstFrame() error = %v", err)
	}

	// The notification is still there for the consumer.
	select {
	case <-stream.Slot().Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("Ready() notification was consumed by warm-up")
	}
}

func TestStream_WaitFirstFrameTimeout(t *testing.T) {
	// The stream is never run, so no frame ever arrives.
	stream := NewStream(NewMockCamera(nil, false), discardLogger())

	err := stream.WaitFirstFrame(context.Background(), quartz.NewReal(), 10*time.Millisecond)
	if !errors.Is(err, ErrNoFirstFrame) {
		t.Errorf("WaitFirstFrame() error = %v, want ErrNoFirstFrame", err)
	}
}

func TestStream_WaitFirstFrameCancelled(t *testing.T) {
	stream := NewStream(NewMockCamera(nil, false), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := stream.WaitFirstFrame(ctx, quartz.NewMock(t), time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitFirstFrame() error = %v, want context.Canceled", err)
	}
}
