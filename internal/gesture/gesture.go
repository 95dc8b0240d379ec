// Package gesture classifies a single hand's landmarks into a discrete gesture.
package gesture

// Gesture is the discrete classification of one hand in one frame.
type Gesture int

const (
	// None means no usable hand: absent, occluded or incomplete.
	None Gesture = iota
	Count0
	Count1
	Count2
	Count3
	Count4
	Count5
	Fist
	Palm
	OkSign
)

// All lists every gesture, None first.
var All = []Gesture{None, Count0, Count1, Count2, Count3, Count4, Count5, Fist, Palm, OkSign}

var names = map[Gesture]string{
	None:   "NONE",
	Count0: "COUNT_0",
	Count1: "COUNT_1",
	Count2: "COUNT_2",
	Count3: "COUNT_3",
	Count4: "COUNT_4",
	Count5: "COUNT_5",
	Fist:   "FIST",
	Palm:   "PALM",
	OkSign: "OK_SIGN",
}

func (g Gesture) String() string {
	if name, ok := names[g]; ok {
		return name
	}
	return "UNKNOWN"
}

// CountOf returns the count gesture for n extended fingers.
// Values outside 0..5 yield None.
func CountOf(n int) Gesture {
	if n < 0 || n > 5 {
		return None
	}
	return Count0 + Gesture(n)
}

// MarshalText encodes the gesture by name, so JSON payloads stay readable.
func (g Gesture) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}
