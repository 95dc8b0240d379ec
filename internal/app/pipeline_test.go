package app

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/gesturedrive/internal/action"
	"github.com/ayusman/gesturedrive/internal/capture"
	"github.com/ayusman/gesturedrive/internal/detector"
	"github.com/ayusman/gesturedrive/internal/gesture"
	"github.com/ayusman/gesturedrive/internal/input"
)

var discard = log.New(io.Discard)

func withScore(h detector.HandLandmarks, score float64) detector.HandLandmarks {
	h.Score = score
	return h
}

func TestPairHands(t *testing.T) {
	counting := gesture.Options{}

	tests := []struct {
		name  string
		hands []detector.HandLandmarks
		want  action.Pair
	}{
		{"no hands", nil, action.Pair{Left: gesture.None, Right: gesture.None}},
		{
			"both hands",
			[]detector.HandLandmarks{detector.FingersLandmarks(detector.Right, 1), detector.FingersLandmarks(detector.Left, 2)},
			action.Pair{Left: gesture.Count2, Right: gesture.Count1},
		},
		{
			"left only",
			[]detector.HandLandmarks{detector.FingersLandmarks(detector.Left, 3)},
			action.Pair{Left: gesture.Count3, Right: gesture.None},
		},
		{
			"duplicate label keeps the more confident hand",
			[]detector.HandLandmarks{
				withScore(detector.FingersLandmarks(detector.Right, 1), 0.6),
				withScore(detector.FingersLandmarks(detector.Right, 3), 0.9),
				withScore(detector.FingersLandmarks(detector.Right, 2), 0.7),
			},
			action.Pair{Left: gesture.None, Right: gesture.Count3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PairHands(tt.hands, counting))
		})
	}
}

func TestPairHands_Shapes(t *testing.T) {
	hands := []detector.HandLandmarks{detector.FistLandmarks(detector.Left), detector.OpenPalmLandmarks(detector.Right)}
	assert.Equal(t, action.Pair{Left: gesture.Fist, Right: gesture.Palm}, PairHands(hands, gesture.Options{Shapes: true}))
	assert.Equal(t, action.Pair{Left: gesture.Count0, Right: gesture.Count5}, PairHands(hands, gesture.Options{}))
}

func TestPairHands_PinchWithFingersUpReverses(t *testing.T) {
	hands := []detector.HandLandmarks{
		detector.PinchThreeUpLandmarks(detector.Left),
		detector.PinchThreeUpLandmarks(detector.Right),
	}
	pair := PairHands(hands, gesture.Options{})
	require.Equal(t, action.Pair{Left: gesture.Count3, Right: gesture.Count3}, pair)

	got := action.Keyboard().Resolve(pair)
	assert.Equal(t, "reverse", got.Rule)
	assert.Equal(t, input.NewKeySet(input.KeyS), got.Action.Keys)
}

func TestProcessor_Resize(t *testing.T) {
	frames := capture.BlankFrames(1, 128, 96)
	defer frames[0].Close()

	md := detector.NewMockDetector()
	p := NewProcessor(md, ProcessorConfig{Width: 64, Height: 48}, discard)
	defer p.Close()

	_, err := p.Process(frames[0])
	require.NoError(t, err)

	w, h := md.LastSize()
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)
	assert.Equal(t, 128, frames[0].Cols(), "source frame keeps its size")
}

func TestProcessor_KeepsSizeWhenUnset(t *testing.T) {
	frames := capture.BlankFrames(1, 80, 60)
	defer frames[0].Close()

	md := detector.NewMockDetector()
	p := NewProcessor(md, ProcessorConfig{Mirror: true}, discard)
	defer p.Close()

	_, err := p.Process(frames[0])
	require.NoError(t, err)

	w, h := md.LastSize()
	assert.Equal(t, 80, w)
	assert.Equal(t, 60, h)
}

func TestProcessor_Classifies(t *testing.T) {
	frames := capture.BlankFrames(1, 64, 48)
	defer frames[0].Close()

	md := detector.NewMockDetector()
	md.SetHands([]detector.HandLandmarks{detector.OkSignLandmarks(detector.Left), detector.OpenPalmLandmarks(detector.Right)})
	p := NewProcessor(md, ProcessorConfig{Gestures: gesture.Options{Shapes: true}}, discard)
	defer p.Close()

	obs, err := p.Process(frames[0])
	require.NoError(t, err)
	assert.Len(t, obs.Hands, 2)
	assert.Equal(t, action.Pair{Left: gesture.OkSign, Right: gesture.Palm}, obs.Pair)
}

func TestProcessor_DetectFailures(t *testing.T) {
	frames := capture.BlankFrames(1, 64, 48)
	defer frames[0].Close()

	md := detector.NewMockDetector()
	md.SetHands([]detector.HandLandmarks{detector.FingersLandmarks(detector.Left, 2)})
	boom := errors.New("service died")
	md.SetError(boom)

	p := NewProcessor(md, ProcessorConfig{}, discard)
	defer p.Close()

	for i := 1; i < maxDetectFailures; i++ {
		obs, err := p.Process(frames[0])
		require.NoError(t, err, "failure %d should be tolerated", i)
		assert.Equal(t, action.Pair{}, obs.Pair, "a failed frame has no hands")
	}
	assert.Equal(t, maxDetectFailures-1, p.Failures())

	md.SetError(nil)
	obs, err := p.Process(frames[0])
	require.NoError(t, err)
	assert.Equal(t, gesture.Count2, obs.Pair.Left)
	assert.Zero(t, p.Failures(), "a good frame resets the failure run")

	md.SetError(boom)
	for i := 1; i < maxDetectFailures; i++ {
		_, err = p.Process(frames[0])
		require.NoError(t, err)
	}
	_, err = p.Process(frames[0])
	assert.ErrorIs(t, err, boom)
}
