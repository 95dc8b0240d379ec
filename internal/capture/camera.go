// Package capture provides camera capture functionality using GoCV (OpenCV)
// and the single-slot buffer that hands frames to the processing loop.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default camera settings
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	DefaultCodec  = "MJPG"
)

var (
	// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")

	// ErrEmptyFrame is returned when the device delivers no image data.
	ErrEmptyFrame = errors.New("captured frame is empty")
)

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}

// Options configures a camera device.
type Options struct {
	DeviceID int
	Width    int
	Height   int
	// Codec is the FOURCC requested from the device. Compressed formats
	// such as MJPG allow higher frame rates over USB.
	Codec string
}

// DefaultOptions returns settings for device 0 at 1280x720 MJPG.
func DefaultOptions() Options {
	return Options{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Codec:  DefaultCodec,
	}
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	opts    Options
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewCamera creates a Camera for the given options. The device is not
// touched until Open.
func NewCamera(opts Options) Camera {
	return &cameraImpl{opts: opts}
}

// Open opens the camera and requests the configured codec and resolution.
// Devices are free to ignore the request; frames are resized downstream.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.opts.DeviceID)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.opts.DeviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open camera %d: %w", c.opts.DeviceID, ErrCameraNotOpen)
	}

	if c.opts.Codec != "" {
		capture.Set(gocv.VideoCaptureFOURCC, capture.ToCodec(c.opts.Codec))
	}
	if c.opts.Width > 0 && c.opts.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	}

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, fmt.Errorf("read camera %d: device returned no frame", c.opts.DeviceID)
	}

	if mat.Empty() {
		mat.Close()
		return nil, ErrEmptyFrame
	}

	return &mat, nil
}

// IsOpen returns true if the camera is currently open and running.
func (c *cameraImpl) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}
