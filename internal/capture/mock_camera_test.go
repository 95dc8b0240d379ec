package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func closeAll(frames []*gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}

func TestMockCamera_Playback(t *testing.T) {
	frames := BlankFrames(2, 640, 480)
	defer closeAll(frames)

	cam := NewMockCamera(frames, false)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	// Read both frames
	for i := 0; i < 2; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() %d error = %v", i, err)
		}
		if f.Cols() != 640 || f.Rows() != 480 {
			t.Errorf("frame %d is %dx%d, want 640x480", i, f.Cols(), f.Rows())
		}
		f.Close()
	}

	// Third read should fail (no loop)
	_, err := cam.ReadFrame()
	if !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("ReadFrame() after playback error = %v, want ErrNoMoreFrames", err)
	}
	if cam.Reads() != 2 {
		t.Errorf("Reads() = %d, want 2", cam.Reads())
	}
}

func TestMockCamera_Loop(t *testing.T) {
	frames := BlankFrames(1, 64, 48)
	defer closeAll(frames)

	cam := NewMockCamera(frames, true)
	cam.Open()
	defer cam.Close()

	// Should loop indefinitely
	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		f.Close()
	}
}

func TestMockCamera_NotOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}

	cam.Open()
	if _, err := cam.ReadFrame(); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("ReadFrame() with no frames error = %v, want ErrEmptyFrame", err)
	}
}
