package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/detector"
	"github.com/ayusman/gesturedrive/internal/gesture"
)

func newRaceFixture(t *testing.T, loop bool) (*Race, *detector.MockDetector) {
	t.Helper()

	frames := capture.BlankFrames(1, 64, 48)
	t.Cleanup(func() { frames[0].Close() })

	md := detector.NewMockDetector()
	p := NewProcessor(md, ProcessorConfig{Gestures: gesture.Options{Shapes: true}}, discard)
	t.Cleanup(func() { p.Close() })

	return NewRace(RaceConfig{
		Camera:    capture.NewMockCamera(frames, loop),
		Processor: p,
		Clock:     quartz.NewMock(t),
		Logger:    discard,
	}), md
}

func TestRace_PairBeforeFirstFrame(t *testing.T) {
	r, _ := newRaceFixture(t, false)
	assert.Equal(t, action.Pair{}, r.Pair())
}

func TestRace_Step(t *testing.T) {
	r, md := newRaceFixture(t, false)
	frames := capture.BlankFrames(1, 32, 24)
	defer frames[0].Close()

	md.SetHands([]detector.HandLandmarks{detector.FistLandmarks(detector.Left), detector.FistLandmarks(detector.Right)})
	stop, err := r.Step(frames[0])
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Equal(t, action.Pair{Left: gesture.Fist, Right: gesture.Fist}, r.Pair())
	assert.Equal(t, map[string]int{"brake": 1}, r.meter.Rules())
}

func TestRace_Run(t *testing.T) {
	r, md := newRaceFixture(t, true)
	md.SetHands([]detector.HandLandmarks{detector.OkSignLandmarks(detector.Left)})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var seen action.Pair
	err := r.Run(ctx, func(ctx context.Context, source func() action.Pair) error {
		for ctx.Err() == nil {
			if p := source(); p.Left != gesture.None {
				seen = p
				return nil
			}
			time.Sleep(time.Millisecond)
		}
		return ctx.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, action.Pair{Left: gesture.OkSign, Right: gesture.None}, seen)
}

func TestRace_CameraFailureEndsGame(t *testing.T) {
	r, _ := newRaceFixture(t, false)

	err := r.Run(context.Background(), func(ctx context.Context, _ func() action.Pair) error {
		<-ctx.Done()
		return nil
	})
	assert.True(t, errors.Is(err, capture.ErrNoMoreFrames), "err = %v", err)
}

func TestRace_PlayerError(t *testing.T) {
	r, _ := newRaceFixture(t, true)
	boom := errors.New("window closed")

	err := r.Run(context.Background(), func(context.Context, func() action.Pair) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}
