// Package sender synthesizes key combinations through the system input queue.
// Unlike strokes forwarded on the driver connection, synthesized input is not
// tied to a source device; it is how consumed combo mappings reach the OS.
package sender

import (
	"log/slog"

	"github.com/Alia5/KEYPER/keycode"
)

// Injector posts one synthetic key transition to the system input queue.
// The Windows implementation wraps SendInput; tests record calls.
type Injector interface {
	SendKey(vk uint16, keyUp bool) error
}

// Synthesizer turns an ordered virtual-key list into the press/release
// sequence a human would produce: modifiers held around tapped regular keys.
type Synthesizer struct {
	inj    Injector
	logger *slog.Logger
}

// New returns a Synthesizer delivering keys through inj.
func New(inj Injector, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{inj: inj, logger: logger}
}

// SendCombo delivers the ordered key list: all modifiers down in order, each
// regular key tapped (down, then up) in order, then modifiers released in
// reverse order. Individual injection failures are logged and do not abort
// the remaining steps; the return value reports whether every step succeeded.
// An empty list is rejected.
func (s *Synthesizer) SendCombo(vks []uint16) bool {
	if len(vks) == 0 {
		return false
	}

	var modifiers, regular []uint16
	for _, vk := range vks {
		if keycode.IsModifier(vk) {
			modifiers = append(modifiers, vk)
		} else {
			regular = append(regular, vk)
		}
	}

	ok := true
	press := func(vk uint16, keyUp bool) {
		if err := s.inj.SendKey(vk, keyUp); err != nil {
			s.logger.Warn("key injection failed",
				"key", keycode.Name(vk), "keyUp", keyUp, "error", err)
			ok = false
		}
	}

	for _, vk := range modifiers {
		press(vk, false)
	}
	for _, vk := range regular {
		press(vk, false)
		press(vk, true)
	}
	for i := len(modifiers) - 1; i >= 0; i-- {
		press(modifiers[i], true)
	}
	return ok
}
