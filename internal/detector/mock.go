package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	hands []HandLandmarks
	err   error
	calls int
	// size of the last frame passed to Detect
	width, height int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastSize returns the dimensions of the most recent frame passed to Detect.
func (m *MockDetector) LastSize() (width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.width, m.height
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if frame != nil {
		m.width, m.height = frame.Cols(), frame.Rows()
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerMCP holds the knuckle positions of a right hand, palm facing the
// camera in a mirrored image: the thumb sits on the +X side.
var fingerMCP = [5]Point3D{
	Index:  {X: 0.56, Y: 0.65},
	Middle: {X: 0.50, Y: 0.63},
	Ring:   {X: 0.44, Y: 0.65},
	Pinky:  {X: 0.38, Y: 0.68},
}

// PoseLandmarks builds a synthetic hand with the given fingers extended
// (indexed by Thumb, Index, Middle, Ring, Pinky). Extended fingers point
// straight up; curled fingers fold their tip back toward the palm.
// A Left hand is the mirror image of the Right one.
func PoseLandmarks(hand Handedness, extended [5]bool) HandLandmarks {
	lm := HandLandmarks{
		Handedness: Right,
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.85}
	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.80}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.75}
	if extended[Thumb] {
		lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.70}
		lm.Points[ThumbTip] = Point3D{X: 0.74, Y: 0.66}
	} else {
		// Folded across the middle phalanges
		lm.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.68}
		lm.Points[ThumbTip] = Point3D{X: 0.50, Y: 0.64}
	}

	for f := Index; f <= Pinky; f++ {
		mcp := fingerMCP[f]
		base := IndexMCP + (f-Index)*4
		lm.Points[base] = mcp
		if extended[f] {
			lm.Points[base+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.10}
			lm.Points[base+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.17}
			lm.Points[base+3] = Point3D{X: mcp.X, Y: mcp.Y - 0.23}
		} else {
			lm.Points[base+1] = Point3D{X: mcp.X, Y: mcp.Y - 0.06}
			lm.Points[base+2] = Point3D{X: mcp.X, Y: mcp.Y - 0.02}
			lm.Points[base+3] = Point3D{X: mcp.X, Y: mcp.Y + 0.03}
		}
	}

	if hand == Left {
		return lm.Mirror()
	}
	return lm
}

// OpenPalmLandmarks returns a hand with all five fingers extended.
func OpenPalmLandmarks(hand Handedness) HandLandmarks {
	return PoseLandmarks(hand, [5]bool{true, true, true, true, true})
}

// FistLandmarks returns a hand with all five fingers curled.
func FistLandmarks(hand Handedness) HandLandmarks {
	return PoseLandmarks(hand, [5]bool{})
}

// FingersLandmarks returns a hand showing n fingers counted from the index
// finger outward (1 = index, 2 = index+middle, ...), thumb curled.
func FingersLandmarks(hand Handedness, n int) HandLandmarks {
	var extended [5]bool
	for f := Index; f < Index+n && f <= Pinky; f++ {
		extended[f] = true
	}
	return PoseLandmarks(hand, extended)
}

// OkSignLandmarks returns a hand whose index finger bends forward to meet
// the thumb tip in front of the palm, other fingers curled.
func OkSignLandmarks(hand Handedness) HandLandmarks {
	lm := PoseLandmarks(Right, [5]bool{})
	lm.Points[IndexPIP] = Point3D{X: 0.58, Y: 0.53}
	lm.Points[IndexDIP] = Point3D{X: 0.62, Y: 0.51}
	lm.Points[IndexTip] = Point3D{X: 0.62, Y: 0.58}
	lm.Points[ThumbIP] = Point3D{X: 0.65, Y: 0.66}
	lm.Points[ThumbTip] = Point3D{X: 0.625, Y: 0.585}

	if hand == Left {
		return lm.Mirror()
	}
	return lm
}

// PinchThreeUpLandmarks returns the OK-sign pinch with the middle, ring and
// pinky fingers raised instead of curled.
func PinchThreeUpLandmarks(hand Handedness) HandLandmarks {
	lm := OkSignLandmarks(hand)
	palm := OpenPalmLandmarks(hand)
	for j := MiddleMCP; j <= PinkyTip; j++ {
		lm.Points[j] = palm.Points[j]
	}
	return lm
}
