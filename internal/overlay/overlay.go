// Package overlay draws the debug view: camera frame, hand skeletons,
// per-hand gesture labels and the current action.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/gesturedrive/internal/detector"
	"github.com/ayusman/gesturedrive/internal/gesture"
)

var (
	green  = color.RGBA{G: 255, A: 255}
	yellow = color.RGBA{R: 255, G: 255, A: 255}
	white  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red    = color.RGBA{R: 255, A: 255}
)

// Status is the per-frame text shown on the overlay.
type Status struct {
	Left, Right gesture.Gesture
	// Action is the resolved action, e.g. the held keys "A W" or "turn-left".
	Action string
	// Label prefixes Action; "KEYS" for the keyboard controller.
	Label string
	FPS   float64
}

// Lines returns the text rows drawn in the top-left corner.
func (s Status) Lines() []string {
	label := s.Label
	if label == "" {
		label = "ACTION"
	}
	lines := []string{
		fmt.Sprintf("%s: %s", label, s.Action),
		fmt.Sprintf("L: %s | R: %s", s.Left, s.Right),
	}
	if s.FPS > 0 {
		lines = append(lines, fmt.Sprintf("FPS: %.0f", s.FPS))
	}
	return lines
}

// Draw renders hands and status onto frame in place.
func Draw(frame *gocv.Mat, hands []detector.HandLandmarks, s Status) {
	for i := range hands {
		drawHand(frame, &hands[i])
	}

	for i, line := range s.Lines() {
		c := green
		if i > 0 {
			c = yellow
		}
		gocv.PutText(frame, line, image.Pt(10, 30+30*i), gocv.FontHersheySimplex, 0.7, c, 2)
	}
}

// drawHand draws the landmark skeleton and the hand's label at its wrist.
// Incomplete hands are skipped.
func drawHand(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if !hand.Complete() {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	for _, c := range detector.Connections {
		gocv.Line(frame, Pixel(hand.Points[c[0]], w, h), Pixel(hand.Points[c[1]], w, h), white, 2)
	}
	for _, p := range hand.Points {
		gocv.Circle(frame, Pixel(p, w, h), 4, red, -1)
	}
	for _, tip := range ExtendedTips(hand) {
		gocv.Circle(frame, Pixel(hand.Points[tip], w, h), tipRing, green, 2)
	}

	wrist := Pixel(hand.Points[detector.Wrist], w, h)
	gocv.PutText(frame, string(hand.Handedness), image.Pt(wrist.X-20, wrist.Y+25),
		gocv.FontHersheySimplex, 0.6, green, 2)
}

// tipRing is the radius of the marker around a raised fingertip.
const tipRing = 8

var fingertips = [5]int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}

// ExtendedTips returns the landmark indices of the fingertips the classifier
// counts as raised, thumb first.
func ExtendedTips(hand *detector.HandLandmarks) []int {
	var tips []int
	for f, up := range gesture.Extension(hand) {
		if up {
			tips = append(tips, fingertips[f])
		}
	}
	return tips
}

// Pixel converts a normalized landmark to pixel coordinates in a w×h image.
func Pixel(p detector.Point3D, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}
