// Package remap holds the mapping from input virtual keys to output actions.
// A Table is a plain in-memory structure with overwrite semantics; callers
// (the engine) provide synchronization.
package remap

import "errors"

// ErrEmptyCombo is returned when constructing a combo with no keys.
var ErrEmptyCombo = errors.New("combo must contain at least one key")

// Action is the output for one mapped input key: either a single key that
// replaces the input stroke in place, or an ordered combo synthesized through
// the system input queue.
type Action struct {
	vk    uint16
	combo []uint16
}

// Single returns an action that substitutes one output key for the input,
// preserving the original stroke's up/down state.
func Single(vk uint16) Action {
	return Action{vk: vk}
}

// Combo returns an action that fires an ordered key sequence on key-down and
// consumes the physical key entirely. The list must be non-empty.
func Combo(vks ...uint16) (Action, error) {
	if len(vks) == 0 {
		return Action{}, ErrEmptyCombo
	}
	c := make([]uint16, len(vks))
	copy(c, vks)
	return Action{combo: c}, nil
}

// IsCombo reports whether the action is a key sequence.
func (a Action) IsCombo() bool { return a.combo != nil }

// Key returns the single output key. Only meaningful when !IsCombo.
func (a Action) Key() uint16 { return a.vk }

// Keys returns a copy of the combo's ordered key list, or nil for a single
// key action.
func (a Action) Keys() []uint16 {
	if a.combo == nil {
		return nil
	}
	c := make([]uint16, len(a.combo))
	copy(c, a.combo)
	return c
}

// Table maps input virtual keys to output actions. The zero value is not
// usable; call NewTable.
type Table struct {
	entries map[uint16]Action
}

// NewTable returns an empty remap table.
func NewTable() *Table {
	return &Table{entries: make(map[uint16]Action)}
}

// Set installs an action for an input key, overwriting any existing entry.
// An input key is therefore never simultaneously a single-key and a combo
// mapping.
func (t *Table) Set(inputVk uint16, a Action) {
	t.entries[inputVk] = a
}

// Remove deletes the entry for an input key. No-op when absent.
func (t *Table) Remove(inputVk uint16) {
	delete(t.entries, inputVk)
}

// Clear removes all entries.
func (t *Table) Clear() {
	clear(t.entries)
}

// Lookup returns the action for an input key, if one is set.
func (t *Table) Lookup(inputVk uint16) (Action, bool) {
	a, ok := t.entries[inputVk]
	return a, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Snapshot returns a copy of the table's contents for persistence.
func (t *Table) Snapshot() map[uint16]Action {
	out := make(map[uint16]Action, len(t.entries))
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}
