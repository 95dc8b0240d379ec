package gesture

import (
	"github.com/ayusman/gesturedrive/internal/detector"
)

// DefaultPinchRatio is the thumb-to-index fingertip distance, as a fraction
// of the wrist-to-middle-knuckle length, under which the two tips touch.
const DefaultPinchRatio = 0.25

// minHandSpan is the wrist-to-middle-knuckle length, in image units, below
// which a hand has no measurable shape.
const minHandSpan = 1e-6

// Options tunes classification for a particular controller.
type Options struct {
	// Shapes reports Fist and Palm instead of Count0 and Count5.
	Shapes bool

	// PinchRatio overrides DefaultPinchRatio when positive.
	PinchRatio float64
}

// Fingers holds the extension state of each finger, thumb first.
type Fingers [5]bool

// Count returns how many fingers are extended.
func (f Fingers) Count() int {
	n := 0
	for _, up := range f {
		if up {
			n++
		}
	}
	return n
}

// curled reports whether none of the four non-thumb fingers is extended.
func (f Fingers) curled() bool {
	return !f[detector.Index] && !f[detector.Middle] && !f[detector.Ring] && !f[detector.Pinky]
}

// fingerJoints lists tip and PIP landmark indices of the four non-thumb fingers.
var fingerJoints = [4][2]int{
	{detector.IndexTip, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddlePIP},
	{detector.RingTip, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyPIP},
}

// Classify maps one hand to exactly one gesture. Every frame is classified
// on its own; there is no smoothing across frames.
//
// Rules, in order:
//  1. nil, incomplete or zero-span hand: None
//  2. all four non-thumb fingers curled and the thumb tip touching the
//     index fingertip: OkSign
//  3. no finger extended: Fist (Shapes) or Count0
//  4. all five extended: Palm (Shapes) or Count5
//  5. otherwise Count1..Count4
func Classify(hand *detector.HandLandmarks, opts Options) Gesture {
	if !hand.Complete() {
		return None
	}
	if detector.Distance2D(hand.Points[detector.Wrist], hand.Points[detector.MiddleMCP]) < minHandSpan {
		return None
	}

	norm := hand.Normalize()
	fingers := extension(norm)

	ratio := opts.PinchRatio
	if ratio <= 0 {
		ratio = DefaultPinchRatio
	}
	if fingers.curled() && pinched(norm, ratio) {
		return OkSign
	}

	count := fingers.Count()
	if opts.Shapes {
		switch count {
		case 0:
			return Fist
		case 5:
			return Palm
		}
	}
	return CountOf(count)
}

// Extension reports which fingers of the hand are extended.
// An incomplete hand reports every finger curled.
func Extension(hand *detector.HandLandmarks) Fingers {
	if !hand.Complete() {
		return Fingers{}
	}
	return extension(hand.Normalize())
}

func extension(hand *detector.HandLandmarks) Fingers {
	var f Fingers
	center := palmCenter(hand)
	for i, j := range fingerJoints {
		tip := detector.Distance2D(hand.Points[j[0]], center)
		pip := detector.Distance2D(hand.Points[j[1]], center)
		f[detector.Index+i] = tip > pip
	}
	f[detector.Thumb] = thumbExtended(hand)
	return f
}

// pinched reports whether the thumb tip touches the index fingertip.
func pinched(hand *detector.HandLandmarks, ratio float64) bool {
	return detector.Distance2D(hand.Points[detector.ThumbTip], hand.Points[detector.IndexTip]) < ratio
}

// palmCenter is the mean of the wrist and the four finger knuckles.
func palmCenter(hand *detector.HandLandmarks) detector.Point3D {
	var c detector.Point3D
	joints := []int{detector.Wrist, detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
	for _, j := range joints {
		c.X += hand.Points[j].X
		c.Y += hand.Points[j].Y
	}
	n := float64(len(joints))
	return detector.Point3D{X: c.X / n, Y: c.Y / n}
}

// thumbExtended compares the thumb tip against its IP joint horizontally.
// The direction that counts as "outward" follows the knuckle order: when the
// index knuckle lies on the +X side of the pinky knuckle the thumb opens
// toward +X. That order flips with the image mirror and with palm rotation,
// so the handedness label is only consulted when the knuckles line up.
func thumbExtended(hand *detector.HandLandmarks) bool {
	side := orientation(hand)
	dx := hand.Points[detector.ThumbTip].X - hand.Points[detector.ThumbIP].X
	return dx*side > 0
}

// orientation returns +1 when the thumb side of the hand faces +X, -1 otherwise.
func orientation(hand *detector.HandLandmarks) float64 {
	const degenerate = 1e-6

	spread := hand.Points[detector.IndexMCP].X - hand.Points[detector.PinkyMCP].X
	switch {
	case spread > degenerate:
		return 1
	case spread < -degenerate:
		return -1
	}

	if hand.Handedness == detector.Left {
		return -1
	}
	return 1
}
