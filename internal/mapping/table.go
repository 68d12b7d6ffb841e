// Package mapping holds the shared table of the 16 logical joystick
// inputs (8 stick directions, 8 buttons) and their physical key
// bindings.
package mapping

import (
	evdev "github.com/holoplot/go-evdev"
)

const (
	NumDirections = 8
	NumButtons    = 8
	NumEntries    = NumDirections + NumButtons
)

// Entry is one logical joystick input bound to a physical key.
// Direction entries carry a vector contribution (DX, DY); button
// entries carry the virtual button index instead and have Button >= 0.
type Entry struct {
	Flag    string // CLI flag name, without leading dashes
	Label   string
	DX, DY  int
	Button  int // 0..7 for buttons, -1 for directions
	Key     evdev.EvCode
	Default evdev.EvCode
}

// Table is the mapping table. It is created once from defaults and
// mutated only by startup flags or an active remap session.
type Table struct {
	entries [NumEntries]Entry
}

// Snapshot is a copy of the bound key codes, used for session rollback.
type Snapshot [NumEntries]evdev.EvCode

// NewTable returns a table populated with the default QWEASDZXC layout.
func NewTable() *Table {
	t := &Table{}
	defs := [NumEntries]Entry{
		{Flag: "up", Label: "Up", DX: 0, DY: -1, Button: -1, Default: evdev.KEY_W},
		{Flag: "down", Label: "Down", DX: 0, DY: 1, Button: -1, Default: evdev.KEY_X},
		{Flag: "left", Label: "Left", DX: -1, DY: 0, Button: -1, Default: evdev.KEY_A},
		{Flag: "right", Label: "Right", DX: 1, DY: 0, Button: -1, Default: evdev.KEY_D},
		{Flag: "upleft", Label: "Up-Left", DX: -1, DY: -1, Button: -1, Default: evdev.KEY_Q},
		{Flag: "upright", Label: "Up-Right", DX: 1, DY: -1, Button: -1, Default: evdev.KEY_E},
		{Flag: "downleft", Label: "Down-Left", DX: -1, DY: 1, Button: -1, Default: evdev.KEY_Z},
		{Flag: "downright", Label: "Down-Right", DX: 1, DY: 1, Button: -1, Default: evdev.KEY_C},
		{Flag: "leftfire", Label: "Left Fire", Button: 0, Default: evdev.KEY_SPACE},
		{Flag: "rightfire", Label: "Right Fire", Button: 1, Default: evdev.KEY_LEFTALT},
		{Flag: "lefttri", Label: "Left Tri", Button: 2, Default: evdev.KEY_LEFTBRACE},
		{Flag: "righttri", Label: "Right Tri", Button: 3, Default: evdev.KEY_RIGHTBRACE},
		{Flag: "menu1", Label: "Menu 1", Button: 4, Default: evdev.KEY_7},
		{Flag: "menu2", Label: "Menu 2", Button: 5, Default: evdev.KEY_8},
		{Flag: "menu3", Label: "Menu 3", Button: 6, Default: evdev.KEY_9},
		{Flag: "menu4", Label: "Menu 4", Button: 7, Default: evdev.KEY_0},
	}
	for i := range defs {
		defs[i].Key = defs[i].Default
	}
	t.entries = defs
	return t
}

// Entry returns a copy of entry i.
func (t *Table) Entry(i int) Entry {
	return t.entries[i]
}

// SetKey rebinds entry i to the given key code.
func (t *Table) SetKey(i int, code evdev.EvCode) {
	t.entries[i].Key = code
}

// Snapshot captures the current bindings.
func (t *Table) Snapshot() Snapshot {
	var s Snapshot
	for i := range t.entries {
		s[i] = t.entries[i].Key
	}
	return s
}

// Restore rolls the bindings back to a previously taken snapshot.
func (t *Table) Restore(s Snapshot) {
	for i := range t.entries {
		t.entries[i].Key = s[i]
	}
}

// Duplicates returns the indices of other entries bound to the same key
// as entry i. Duplicate bindings are advisory only; they never block an
// apply.
func (t *Table) Duplicates(i int) []int {
	var dups []int
	for j := range t.entries {
		if j != i && t.entries[j].Key == t.entries[i].Key {
			dups = append(dups, j)
		}
	}
	return dups
}

// HasDuplicates reports whether any two entries share a key.
func (t *Table) HasDuplicates() bool {
	for i := range t.entries {
		if len(t.Duplicates(i)) > 0 {
			return true
		}
	}
	return false
}

// Vector sums the direction contributions of the held set and clamps
// each component to -1..1, so opposing holds cancel to neutral.
func (t *Table) Vector(held [NumDirections]bool) (dx, dy int) {
	for i := 0; i < NumDirections; i++ {
		if held[i] {
			dx += t.entries[i].DX
			dy += t.entries[i].DY
		}
	}
	return clampSign(dx), clampSign(dy)
}

func clampSign(v int) int {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
