// Package config holds runtime settings for both applications. Values come
// from the in-source defaults, an optional HCL file and GESTUREDRIVE_*
// environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable the config reads.
const EnvPrefix = "GESTUREDRIVE_"

// Config is the complete runtime configuration.
type Config struct {
	// ShowCamera opens the debug overlay window. When false the controller
	// runs headless from the system tray.
	ShowCamera bool `env:"SHOW_CAMERA"`

	// Mirror flips frames horizontally before detection so the screen
	// behaves like a mirror.
	Mirror bool `env:"MIRROR"`

	Camera   Camera   `envPrefix:"CAMERA_"`
	Model    Model    `envPrefix:"MODEL_"`
	Gestures Gestures `envPrefix:"GESTURE_"`
	Race     Race     `envPrefix:"RACE_"`
	Server   Server   `envPrefix:"SERVER_"`

	// DataDir holds the history database and, unless overridden, the
	// high score file.
	DataDir  string `env:"DATA_DIR"`
	LogLevel string `env:"LOG_LEVEL"`
}

// Camera selects the capture device and frame sizes.
type Camera struct {
	ID            int    `env:"ID"`
	CaptureWidth  int    `env:"CAPTURE_WIDTH"`
	CaptureHeight int    `env:"CAPTURE_HEIGHT"`
	Codec         string `env:"CODEC"`
	// ProcessWidth and ProcessHeight are the size frames are scaled to
	// before landmark detection.
	ProcessWidth  int `env:"PROCESS_WIDTH"`
	ProcessHeight int `env:"PROCESS_HEIGHT"`
}

// Model tunes the landmark model.
type Model struct {
	// Complexity 0 is the fast model, 1 the accurate one.
	Complexity             int     `env:"COMPLEXITY"`
	MaxHands               int     `env:"MAX_HANDS"`
	MinDetectionConfidence float64 `env:"MIN_DETECTION_CONFIDENCE"`
	MinTrackingConfidence  float64 `env:"MIN_TRACKING_CONFIDENCE"`
}

// Gestures tunes the classifier.
type Gestures struct {
	PinchRatio float64 `env:"PINCH_RATIO"`
}

// Race configures the car game.
type Race struct {
	AssetDir      string `env:"ASSET_DIR"`
	HighScoreFile string `env:"HIGH_SCORE_FILE"`
	// Seed fixes the obstacle layout; zero picks a new one per run.
	Seed int64 `env:"SEED"`
}

// Server configures the optional debug HTTP server.
type Server struct {
	Enabled bool   `env:"ENABLED"`
	Addr    string `env:"ADDR"`
}

// Default returns the built-in configuration.
func Default() *Config {
	dataDir := ".gesturedrive"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".gesturedrive")
	}

	return &Config{
		ShowCamera: true,
		Mirror:     true,
		Camera: Camera{
			ID:            0,
			CaptureWidth:  1280,
			CaptureHeight: 720,
			Codec:         "MJPG",
			ProcessWidth:  640,
			ProcessHeight: 480,
		},
		Model: Model{
			Complexity:             0,
			MaxHands:               2,
			MinDetectionConfidence: 0.5,
			MinTrackingConfidence:  0.5,
		},
		Gestures: Gestures{
			PinchRatio: 0.25,
		},
		Race: Race{
			AssetDir: "assets",
		},
		Server: Server{
			Addr: "127.0.0.1:8080",
		},
		DataDir:  dataDir,
		LogLevel: "info",
	}
}

// Load builds the configuration: defaults, then the HCL file at path when
// path is non-empty, then environment variables. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// HighScorePath returns where the race high score is kept.
func (c *Config) HighScorePath() string {
	if c.Race.HighScoreFile != "" {
		return c.Race.HighScoreFile
	}
	return filepath.Join(c.DataDir, "highscore.txt")
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if c.Model.Complexity != 0 && c.Model.Complexity != 1 {
		errs = append(errs, fmt.Errorf("model complexity must be 0 or 1, got %d", c.Model.Complexity))
	}
	if c.Model.MaxHands < 1 || c.Model.MaxHands > 2 {
		errs = append(errs, fmt.Errorf("max hands must be 1 or 2, got %d", c.Model.MaxHands))
	}
	if c.Camera.ProcessWidth <= 0 || c.Camera.ProcessHeight <= 0 {
		errs = append(errs, fmt.Errorf("processing resolution must be positive, got %dx%d",
			c.Camera.ProcessWidth, c.Camera.ProcessHeight))
	}
	if c.Camera.CaptureWidth < 0 || c.Camera.CaptureHeight < 0 {
		errs = append(errs, fmt.Errorf("capture resolution must not be negative, got %dx%d",
			c.Camera.CaptureWidth, c.Camera.CaptureHeight))
	}
	if c.Camera.ID < 0 {
		errs = append(errs, fmt.Errorf("camera id must not be negative, got %d", c.Camera.ID))
	}
	if !unit(c.Model.MinDetectionConfidence) || !unit(c.Model.MinTrackingConfidence) {
		errs = append(errs, errors.New("confidence thresholds must be within [0, 1]"))
	}
	if c.Gestures.PinchRatio <= 0 {
		errs = append(errs, fmt.Errorf("pinch ratio must be positive, got %g", c.Gestures.PinchRatio))
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required when the server is enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func unit(f float64) bool {
	return f >= 0 && f <= 1
}
