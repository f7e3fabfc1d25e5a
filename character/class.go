package character

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is the character class id stored in the header.
type Class uint8

const (
	Amazon Class = iota
	Sorceress
	Necromancer
	Paladin
	Barbarian
	Druid
	Assassin

	numClasses
)

// DefaultClass replaces expansion-only classes when expansion is turned off.
const DefaultClass = Amazon

var classNames = [numClasses]string{
	"Amazon", "Sorceress", "Necromancer", "Paladin", "Barbarian", "Druid", "Assassin",
}

func (c Class) String() string {
	if c < numClasses {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Valid reports whether c is a known class.
func (c Class) Valid() bool {
	return c < numClasses
}

// ExpansionOnly reports whether c needs an expansion character.
func (c Class) ExpansionOnly() bool {
	return c == Druid || c == Assassin
}

// ParseClass resolves a class by name or by its decimal id.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	for i, name := range classNames {
		if strings.EqualFold(name, s) {
			return Class(i), nil
		}
	}
	if id, err := strconv.ParseUint(s, 10, 8); err == nil && Class(id).Valid() {
		return Class(id), nil
	}
	return 0, fmt.Errorf("class %q: %w", s, ErrValueOutOfRange)
}

// Classes returns every class in id order.
func Classes() []Class {
	out := make([]Class, numClasses)
	for i := range out {
		out[i] = Class(i)
	}
	return out
}
