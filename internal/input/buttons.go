package input

import (
	"fmt"
	"strings"
)

// Buttons is a bitmask of pad buttons.
type Buttons uint32

const (
	ButtonA Buttons = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonR
	ButtonL
	ButtonX
	ButtonY
)

var buttonNames = []struct {
	b    Buttons
	name string
}{
	{ButtonA, "a"},
	{ButtonB, "b"},
	{ButtonSelect, "select"},
	{ButtonStart, "start"},
	{ButtonRight, "right"},
	{ButtonLeft, "left"},
	{ButtonUp, "up"},
	{ButtonDown, "down"},
	{ButtonR, "r"},
	{ButtonL, "l"},
	{ButtonX, "x"},
	{ButtonY, "y"},
}

// Contains reports whether every button in mask is set in b.
func (b Buttons) Contains(mask Buttons) bool {
	return mask != 0 && b&mask == mask
}

func (b Buttons) String() string {
	if b == 0 {
		return "none"
	}
	var names []string
	for _, n := range buttonNames {
		if b&n.b != 0 {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "+")
}

// ParseButton maps a button name such as "start" or "select" to its mask.
func ParseButton(name string) (Buttons, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, n := range buttonNames {
		if n.name == name {
			return n.b, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}
