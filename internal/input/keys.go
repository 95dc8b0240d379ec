// Package input synthesizes keyboard events for the driving controller.
package input

import (
	"sort"
	"strings"
)

// Key is one of the keys the controller may hold down.
type Key uint8

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyX
	numKeys
)

// AllKeys lists every controllable key.
var AllKeys = []Key{KeyW, KeyA, KeyS, KeyD, KeyX}

var keyNames = [numKeys]string{"w", "a", "s", "d", "x"}

// String returns the lower-case key name used by the OS back-ends.
func (k Key) String() string {
	if k >= numKeys {
		return "?"
	}
	return keyNames[k]
}

// KeySet is a set of keys. The zero value is empty.
type KeySet uint8

// NewKeySet returns the set holding ks.
func NewKeySet(ks ...Key) KeySet {
	var s KeySet
	for _, k := range ks {
		s = s.With(k)
	}
	return s
}

// With returns s with k added.
func (s KeySet) With(k Key) KeySet {
	return s | 1<<k
}

// Has reports whether k is in s.
func (s KeySet) Has(k Key) bool {
	return s&(1<<k) != 0
}

// Minus returns the keys of s that are not in o.
func (s KeySet) Minus(o KeySet) KeySet {
	return s &^ o
}

// Empty reports whether no key is in s.
func (s KeySet) Empty() bool {
	return s == 0
}

// Keys returns the members of s in W, A, S, D, X order.
func (s KeySet) Keys() []Key {
	var ks []Key
	for _, k := range AllKeys {
		if s.Has(k) {
			ks = append(ks, k)
		}
	}
	return ks
}

// String lists the keys alphabetically in upper case, e.g. "A W".
func (s KeySet) String() string {
	names := make([]string, 0, numKeys)
	for _, k := range s.Keys() {
		names = append(names, strings.ToUpper(k.String()))
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// MarshalText encodes the set as its String form.
func (s KeySet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
