package action

import (
	"github.com/ayusman/gesturedrive/internal/gesture"
	"github.com/ayusman/gesturedrive/internal/input"
)

// KeyAction is a named set of keys that should be held for the frame.
type KeyAction struct {
	Name string       `json:"name"`
	Keys input.KeySet `json:"keys"`
}

func keys(name string, ks ...input.Key) KeyAction {
	return KeyAction{Name: name, Keys: input.NewKeySet(ks...)}
}

// Neutral releases every key.
var Neutral = keys("neutral")

// Keyboard returns the driving table for the W/A/S/D/X layout. Counts are
// fingers held up; a single-hand rule only fires when the other hand is
// out of frame.
func Keyboard() *Table[KeyAction] {
	c1, c2, c3 := is(gesture.Count1), is(gesture.Count2), is(gesture.Count3)
	boost := oneOf(gesture.Count2, gesture.OkSign)

	rule := func(name string, when func(Pair) bool, ks ...input.Key) Rule[KeyAction] {
		return Rule[KeyAction]{Name: name, When: when, Then: keys(name, ks...)}
	}

	return NewTable(Neutral.Name, Neutral,
		rule("nitro", hands(boost, boost), input.KeyX, input.KeyW),
		rule("accelerate", hands(c1, c1), input.KeyW),
		rule("accelerate-left", hands(c2, c1), input.KeyW, input.KeyA),
		rule("accelerate-right", hands(c1, c2), input.KeyW, input.KeyD),
		rule("coast-left", hands(c2, absent), input.KeyA),
		rule("reverse-left", hands(c3, absent), input.KeyS, input.KeyA),
		rule("coast-right", hands(absent, c2), input.KeyD),
		rule("reverse-right", hands(absent, c3), input.KeyS, input.KeyD),
		rule("reverse", hands(c3, c3), input.KeyS),
	)
}
