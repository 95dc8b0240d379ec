package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// fileConfig mirrors Config for HCL decoding. Every field is optional;
// nil means "keep the current value".
type fileConfig struct {
	ShowCamera *bool   `hcl:"show_camera,optional"`
	Mirror     *bool   `hcl:"mirror,optional"`
	DataDir    *string `hcl:"data_dir,optional"`
	LogLevel   *string `hcl:"log_level,optional"`

	Camera   *cameraFile   `hcl:"camera,block"`
	Model    *modelFile    `hcl:"model,block"`
	Gestures *gesturesFile `hcl:"gestures,block"`
	Race     *raceFile     `hcl:"race,block"`
	Server   *serverFile   `hcl:"server,block"`
}

type cameraFile struct {
	ID            *int    `hcl:"id,optional"`
	CaptureWidth  *int    `hcl:"capture_width,optional"`
	CaptureHeight *int    `hcl:"capture_height,optional"`
	Codec         *string `hcl:"codec,optional"`
	ProcessWidth  *int    `hcl:"process_width,optional"`
	ProcessHeight *int    `hcl:"process_height,optional"`
}

type modelFile struct {
	Complexity             *int     `hcl:"complexity,optional"`
	MaxHands               *int     `hcl:"max_hands,optional"`
	MinDetectionConfidence *float64 `hcl:"min_detection_confidence,optional"`
	MinTrackingConfidence  *float64 `hcl:"min_tracking_confidence,optional"`
}

type gesturesFile struct {
	PinchRatio *float64 `hcl:"pinch_ratio,optional"`
}

type raceFile struct {
	AssetDir      *string `hcl:"asset_dir,optional"`
	HighScoreFile *string `hcl:"high_score_file,optional"`
	Seed          *int64  `hcl:"seed,optional"`
}

type serverFile struct {
	Enabled *bool   `hcl:"enabled,optional"`
	Addr    *string `hcl:"addr,optional"`
}

// applyFile overlays the settings of the HCL file at path onto c.
func (c *Config) applyFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	set(&c.ShowCamera, fc.ShowCamera)
	set(&c.Mirror, fc.Mirror)
	set(&c.DataDir, fc.DataDir)
	set(&c.LogLevel, fc.LogLevel)

	if f := fc.Camera; f != nil {
		set(&c.Camera.ID, f.ID)
		set(&c.Camera.CaptureWidth, f.CaptureWidth)
		set(&c.Camera.CaptureHeight, f.CaptureHeight)
		set(&c.Camera.Codec, f.Codec)
		set(&c.Camera.ProcessWidth, f.ProcessWidth)
		set(&c.Camera.ProcessHeight, f.ProcessHeight)
	}
	if f := fc.Model; f != nil {
		set(&c.Model.Complexity, f.Complexity)
		set(&c.Model.MaxHands, f.MaxHands)
		set(&c.Model.MinDetectionConfidence, f.MinDetectionConfidence)
		set(&c.Model.MinTrackingConfidence, f.MinTrackingConfidence)
	}
	if f := fc.Gestures; f != nil {
		set(&c.Gestures.PinchRatio, f.PinchRatio)
	}
	if f := fc.Race; f != nil {
		set(&c.Race.AssetDir, f.AssetDir)
		set(&c.Race.HighScoreFile, f.HighScoreFile)
		set(&c.Race.Seed, f.Seed)
	}
	if f := fc.Server; f != nil {
		set(&c.Server.Enabled, f.Enabled)
		set(&c.Server.Addr, f.Addr)
	}

	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
