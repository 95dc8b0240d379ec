package action

import (
	"github.com/ayusman/gesturedrive/internal/gesture"
)

// CarAction is what the race car does for one tick.
type CarAction int

const (
	Coast CarAction = iota
	Accelerate
	TurnLeft
	TurnRight
	Brake
	DodgeLeft
	DodgeRight
	Calibrate
)

var carActionNames = [...]string{
	Coast:      "coast",
	Accelerate: "accelerate",
	TurnLeft:   "turn-left",
	TurnRight:  "turn-right",
	Brake:      "brake",
	DodgeLeft:  "dodge-left",
	DodgeRight: "dodge-right",
	Calibrate:  "calibrate",
}

func (a CarAction) String() string {
	if a < 0 || int(a) >= len(carActionNames) {
		return "unknown"
	}
	return carActionNames[a]
}

// MarshalText encodes the action by name.
func (a CarAction) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Car returns the race game table. Gestures are classified with shapes,
// so an open hand is Palm and a closed one is Fist.
func Car() *Table[CarAction] {
	anything := func(gesture.Gesture) bool { return true }
	ok := is(gesture.OkSign)
	fist, palm := is(gesture.Fist), is(gesture.Palm)
	two := is(gesture.Count2)

	rule := func(a CarAction, when func(Pair) bool) Rule[CarAction] {
		return Rule[CarAction]{Name: a.String(), When: when, Then: a}
	}

	return NewTable(Coast.String(), Coast,
		rule(DodgeLeft, hands(ok, anything)),
		rule(DodgeRight, hands(anything, ok)),
		rule(Calibrate, hands(two, two)),
		rule(Accelerate, hands(palm, palm)),
		rule(TurnLeft, hands(fist, palm)),
		rule(TurnRight, hands(palm, fist)),
		rule(Brake, hands(fist, fist)),
	)
}
