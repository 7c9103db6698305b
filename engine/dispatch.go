package engine

import (
	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/keycode"
	"github.com/Alia5/KEYPER/remap"
)

// verdict is the single outbound decision made for one received stroke.
type verdict int

const (
	// verdictForward passes the original stroke through unchanged. This is
	// the mandatory default: a dropped down-event leaves the keyboard dead.
	verdictForward verdict = iota
	// verdictTransform forwards the stroke with a substituted scan code.
	verdictTransform
	// verdictConsume swallows the stroke with no output (the up of a combo
	// key, or auto-repeat while a combo holds the key).
	verdictConsume
	// verdictConsumeFire swallows the stroke and fires the combo.
	verdictConsumeFire
)

func (e *Engine) dispatchLoop(conn driver.Conn, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	e.logger.Debug("dispatch loop started")
	for {
		select {
		case <-stop:
			e.logger.Debug("dispatch loop exiting")
			return
		default:
		}
		device := conn.Wait(e.config.WaitTimeout)
		if device == 0 {
			// Timeout; loop around to observe the stop signal.
			continue
		}
		stroke, ok := conn.Receive(device)
		if !ok {
			continue
		}
		e.handleStroke(conn, device, stroke)
	}
}

// handleStroke runs the full receive/decide/forward cycle for one stroke.
// Exactly one outbound decision is made per received stroke; per-stroke
// errors are logged and never stop the loop, since a stalled loop freezes
// the physical keyboard.
func (e *Engine) handleStroke(conn driver.Conn, device int, s driver.Stroke) {
	e.raw.Stroke(true, device, s.Bytes())

	vk := keycode.VKFromScan(s.Code, s.IsExtended())
	hw := ""
	if d, ok := e.registry.ByIndex(device); ok {
		hw = d.HardwareID
	}

	e.notify(KeyEvent{
		ScanCode:   s.Code,
		VKCode:     vk,
		KeyUp:      s.IsKeyUp(),
		Device:     device,
		HardwareID: hw,
	})

	v, action := e.decide(device, vk, s.IsKeyUp())
	switch v {
	case verdictConsumeFire:
		if !e.synth.SendCombo(action.Keys()) {
			e.logger.Warn("combo delivered partially", "input", keycode.Name(vk))
		}
	case verdictConsume:
		// Swallowed; nothing reaches the driver for this stroke.
	case verdictTransform:
		out := driver.Stroke{
			Code:        keycode.ScanFromVK(action.Key()),
			State:       s.State,
			Information: s.Information,
		}
		e.raw.Stroke(false, device, out.Bytes())
		if err := conn.Send(device, out); err != nil {
			e.logger.Error("forward remapped stroke failed", "device", device, "error", err)
		}
	default:
		e.raw.Stroke(false, device, s.Bytes())
		if err := conn.Send(device, s); err != nil {
			e.logger.Error("pass-through failed", "device", device, "error", err)
		}
	}
}

// decide classifies one stroke under the engine mutex. Remap applies iff the
// engine is enabled, the VK has a table entry, and the stroke's device matches
// the target (or no target is set).
//
// Inputs consumed by a combo are tracked per (device, key): the later key-up
// is swallowed, auto-repeat downs while held are swallowed without re-firing,
// and a key-up whose down was forwarded (mapping added mid-press) is forwarded
// so no key is left stuck.
func (e *Engine) decide(device int, vk uint16, keyUp bool) (verdict, remap.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key := pressedKey{device: device, vk: vk}
	if keyUp {
		if _, held := e.suppressed[key]; held {
			delete(e.suppressed, key)
			return verdictConsume, remap.Action{}
		}
	}

	action, ok := e.table.Lookup(vk)
	applies := e.enabled && ok && (e.target == 0 || device == e.target)
	if !applies {
		if !keyUp {
			// Mapping removed while the key was consumed; drop the stale
			// entry so the next up forwards normally.
			delete(e.suppressed, key)
		}
		return verdictForward, remap.Action{}
	}

	if action.IsCombo() {
		if keyUp {
			// Down was forwarded before this mapping existed.
			return verdictForward, remap.Action{}
		}
		if _, held := e.suppressed[key]; held {
			return verdictConsume, remap.Action{}
		}
		e.suppressed[key] = struct{}{}
		return verdictConsumeFire, action
	}
	return verdictTransform, action
}

// notify posts the event to the monitor channel without blocking.
func (e *Engine) notify(ev KeyEvent) {
	e.mu.Lock()
	ch := e.monitor
	e.mu.Unlock()
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
		// Consumer lagging; dropping an observation beats stalling the loop.
	}
}
