// Package app assembles the gesture pipeline and runs the keyboard
// controller and the race game's gesture feed.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/config"
	"github.com/ayusman/gesturedrive/internal/detector"
	"github.com/ayusman/gesturedrive/internal/gesture"
	"github.com/ayusman/gesturedrive/internal/server"
	"github.com/ayusman/gesturedrive/internal/store"
)

// Services are the long-lived components shared by both applications.
type Services struct {
	Config   *config.Config
	Logger   *log.Logger
	Detector detector.Detector
	Store    *store.Store

	// Frames and Hub are nil unless the debug server is enabled.
	Frames *server.FrameBuffer
	Hub    *server.Hub
	server *server.Server
}

// Open creates the data directory, the history store, the landmark
// detector and, when enabled, the debug server.
func Open(cfg *config.Config, logger *log.Logger) (*Services, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.HistoryPath())
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", cfg.HistoryPath(), err)
	}

	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.Model.MaxHands,
		ModelComplexity: cfg.Model.Complexity,
		MinConfidence:   cfg.Model.MinDetectionConfidence,
		MinTrackingConf: cfg.Model.MinTrackingConfidence,
	})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("landmark detector: %w", err)
	}

	s := &Services{
		Config:   cfg,
		Logger:   logger,
		Detector: det,
		Store:    st,
	}

	if cfg.Server.Enabled {
		s.Frames = server.NewFrameBuffer()
		s.Hub = server.NewHub(logger)
		s.server = server.New(server.Config{
			Store:  st,
			Frames: s.Frames,
			Hub:    s.Hub,
			Logger: logger,
		})
	}
	return s, nil
}

// Camera returns the configured capture device, not yet opened.
func (s *Services) Camera() capture.Camera {
	c := s.Config.Camera
	return capture.NewCamera(capture.Options{
		DeviceID: c.ID,
		Width:    c.CaptureWidth,
		Height:   c.CaptureHeight,
		Codec:    c.Codec,
	})
}

// Processor returns a frame processor. shapes selects the race variant of
// the classifier, which reports Fist and Palm instead of Count0 and Count5.
func (s *Services) Processor(shapes bool) *Processor {
	return NewProcessor(s.Detector, ProcessorConfig{
		Mirror: s.Config.Mirror,
		Width:  s.Config.Camera.ProcessWidth,
		Height: s.Config.Camera.ProcessHeight,
		Gestures: gesture.Options{
			Shapes:     shapes,
			PinchRatio: s.Config.Gestures.PinchRatio,
		},
	}, s.Logger)
}

// Serve runs the debug server until ctx is cancelled. Without a server it
// returns immediately.
func (s *Services) Serve(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.ListenAndServe(ctx, s.Config.Server.Addr)
}

// Close stops the detector and closes the store.
func (s *Services) Close() error {
	return errors.Join(s.Detector.Close(), s.Store.Close())
}
