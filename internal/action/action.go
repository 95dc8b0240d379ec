// Package action resolves a pair of hand gestures into the action an
// effector should perform for the current frame.
package action

import (
	"github.com/ayusman/gesturedrive/internal/gesture"
)

// Pair is what the classifier saw for each hand in one frame.
// A hand that was not detected is gesture.None.
type Pair struct {
	Left  gesture.Gesture `json:"left"`
	Right gesture.Gesture `json:"right"`
}

// Rule is one row of a resolution table.
type Rule[A any] struct {
	Name string
	When func(Pair) bool
	Then A
}

// Resolution is the outcome of resolving a Pair: the matching rule's name
// and its action.
type Resolution[A any] struct {
	Rule   string `json:"rule"`
	Action A      `json:"action"`
}

// Table is an ordered list of rules with a fallback. Rules are evaluated
// top-down and the first match wins; when nothing matches the fallback
// applies, so every Pair resolves to exactly one action.
type Table[A any] struct {
	rules    []Rule[A]
	fallback Rule[A]
}

// NewTable builds a table from rules in priority order. fallbackName and
// fallback describe the action taken when no rule matches.
func NewTable[A any](fallbackName string, fallback A, rules ...Rule[A]) *Table[A] {
	return &Table[A]{
		rules:    rules,
		fallback: Rule[A]{Name: fallbackName, Then: fallback},
	}
}

// Resolve returns the action of the first rule matching p.
func (t *Table[A]) Resolve(p Pair) Resolution[A] {
	for _, r := range t.rules {
		if r.When(p) {
			return Resolution[A]{Rule: r.Name, Action: r.Then}
		}
	}
	return Resolution[A]{Rule: t.fallback.Name, Action: t.fallback.Then}
}

// Rules returns the rule names in evaluation order, fallback last.
func (t *Table[A]) Rules() []string {
	names := make([]string, 0, len(t.rules)+1)
	for _, r := range t.rules {
		names = append(names, r.Name)
	}
	return append(names, t.fallback.Name)
}

// is matches a single hand showing g.
func is(g gesture.Gesture) func(gesture.Gesture) bool {
	return func(x gesture.Gesture) bool { return x == g }
}

// oneOf matches a single hand showing any of gs.
func oneOf(gs ...gesture.Gesture) func(gesture.Gesture) bool {
	return func(x gesture.Gesture) bool {
		for _, g := range gs {
			if x == g {
				return true
			}
		}
		return false
	}
}

// hands combines a left-hand and a right-hand matcher.
func hands(left, right func(gesture.Gesture) bool) func(Pair) bool {
	return func(p Pair) bool { return left(p.Left) && right(p.Right) }
}

var absent = is(gesture.None)
