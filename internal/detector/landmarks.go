// Package detector provides hand detection interfaces and landmark types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Finger positions, thumb first.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
)

// Handedness is the Left/Right label the landmark model assigns to a hand.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// Opposite returns the other hand's label. Unknown labels are returned unchanged.
func (h Handedness) Opposite() Handedness {
	switch h {
	case Left:
		return Right
	case Right:
		return Left
	}
	return h
}

// Connections lists the landmark pairs forming the hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the image size, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Missing reports whether the point carries no usable coordinates.
func (p Point3D) Missing() bool {
	return !finite(p.X) || !finite(p.Y) || !finite(p.Z)
}

// MissingPoint is the placeholder stored for landmarks the model did not return.
func MissingPoint() Point3D {
	nan := math.NaN()
	return Point3D{X: nan, Y: nan, Z: nan}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// HandLandmarks represents the 21 hand landmarks detected for one hand in one frame.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness Handedness            `json:"handedness"`
	Score      float64               `json:"score"`
}

// Complete reports whether every landmark of the hand is present.
// An occluded or truncated hand is not complete.
func (h *HandLandmarks) Complete() bool {
	if h == nil {
		return false
	}
	for _, p := range h.Points {
		if p.Missing() {
			return false
		}
	}
	return true
}

// Mirror returns the hand as seen in a horizontally flipped image:
// X coordinates are reflected around 0.5 and the handedness label is swapped.
func (h HandLandmarks) Mirror() HandLandmarks {
	m := HandLandmarks{
		Handedness: h.Handedness.Opposite(),
		Score:      h.Score,
	}
	for i, p := range h.Points {
		m.Points[i] = Point3D{X: 1 - p.X, Y: p.Y, Z: p.Z}
	}
	return m
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Distance2D calculates the Euclidean distance between two points in the image plane.
func Distance2D(a, b Point3D) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Normalize normalizes the hand landmarks relative to wrist position and hand size.
// The normalized landmarks have the wrist at origin (0,0,0) and are scaled
// so that the distance from wrist to middle finger MCP is 1.0.
// Returns a new HandLandmarks instance with normalized points.
func (h *HandLandmarks) Normalize() *HandLandmarks {
	if h == nil {
		return nil
	}

	normalized := &HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}

	wrist := h.Points[Wrist]
	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i] = Point3D{
			X: h.Points[i].X - wrist.X,
			Y: h.Points[i].Y - wrist.Y,
			Z: h.Points[i].Z - wrist.Z,
		}
	}

	scale := distance3D(Point3D{}, normalized.Points[MiddleMCP])

	// Avoid division by zero
	if scale < 1e-10 {
		return normalized
	}

	for i := 0; i < NumLandmarks; i++ {
		normalized.Points[i].X /= scale
		normalized.Points[i].Y /= scale
		normalized.Points[i].Z /= scale
	}

	return normalized
}
