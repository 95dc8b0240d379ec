package app

import (
	"context"
	"fmt"
	"image"

	"github.com/charmbracelet/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/detector"
	"github.com/ayusman/gesturedrive/internal/gesture"
)

// maxDetectFailures is how many consecutive failed detections end the
// pipeline. Single failures are treated as frames without hands.
const maxDetectFailures = 30

// Observation is what the pipeline saw in one frame.
type Observation struct {
	Hands []detector.HandLandmarks
	Pair  action.Pair
}

// ProcessorConfig controls frame preparation.
type ProcessorConfig struct {
	// Mirror flips the frame horizontally, in place, before detection.
	Mirror bool
	// Width and Height are the detection resolution. Zero keeps the
	// capture size.
	Width, Height int
	Gestures      gesture.Options
}

// Processor turns a camera frame into one gesture per hand.
type Processor struct {
	detector detector.Detector
	config   ProcessorConfig
	logger   *log.Logger
	scaled   gocv.Mat
	failures int
}

// NewProcessor creates a Processor over d.
func NewProcessor(d detector.Detector, config ProcessorConfig, logger *log.Logger) *Processor {
	return &Processor{
		detector: d,
		config:   config,
		logger:   logger.WithPrefix("detect"),
		scaled:   gocv.NewMat(),
	}
}

// Process prepares frame, detects hands and classifies each of them.
// When Mirror is set frame is left flipped so overlays drawn on it line up
// with the landmarks.
func (p *Processor) Process(frame *gocv.Mat) (Observation, error) {
	if p.config.Mirror {
		gocv.Flip(*frame, frame, 1)
	}

	input := frame
	if p.config.Width > 0 && p.config.Height > 0 &&
		(frame.Cols() != p.config.Width || frame.Rows() != p.config.Height) {
		gocv.Resize(*frame, &p.scaled, image.Pt(p.config.Width, p.config.Height), 0, 0, gocv.InterpolationLinear)
		input = &p.scaled
	}

	hands, err := p.detector.Detect(input)
	if err != nil {
		p.failures++
		if p.failures == 1 {
			p.logger.Warn("hand detection failed", "err", err)
		}
		if p.failures >= maxDetectFailures {
			return Observation{}, fmt.Errorf("detect hands: %d consecutive failures: %w", p.failures, err)
		}
		return Observation{}, nil
	}
	if p.failures > 0 {
		p.logger.Info("hand detection recovered", "failed", p.failures)
		p.failures = 0
	}

	return Observation{
		Hands: hands,
		Pair:  PairHands(hands, p.config.Gestures),
	}, nil
}

// Failures returns the current run of failed detections.
func (p *Processor) Failures() int {
	return p.failures
}

// Close releases the scaling buffer.
func (p *Processor) Close() error {
	return p.scaled.Close()
}

// PairHands classifies hands and assigns them to the left and right slots
// by their handedness label. When two hands carry the same label the more
// confident one wins. A slot with no hand is gesture.None.
func PairHands(hands []detector.HandLandmarks, opts gesture.Options) action.Pair {
	var pair action.Pair
	leftScore, rightScore := -1.0, -1.0

	for i := range hands {
		h := &hands[i]
		switch h.Handedness {
		case detector.Left:
			if h.Score > leftScore {
				pair.Left, leftScore = gesture.Classify(h, opts), h.Score
			}
		case detector.Right:
			if h.Score > rightScore {
				pair.Right, rightScore = gesture.Classify(h, opts), h.Score
			}
		}
	}
	return pair
}

// frameHandler consumes one frame and reports whether to stop.
type frameHandler func(frame *gocv.Mat) (stop bool, err error)

// consume hands each newest frame of stream to handle until ctx is
// cancelled, handle asks to stop or fails. Frames are closed after
// handling. A cancelled ctx is not an error.
func consume(ctx context.Context, stream *capture.Stream, handle frameHandler) error {
	slot := stream.Slot()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-slot.Ready():
		}

		frame, ok := slot.Take()
		if !ok {
			continue
		}
		stop, err := handle(frame)
		frame.Close()
		if err != nil || stop {
			return err
		}
	}
}
