// Package driver binds the Interception kernel driver, which exposes every
// attached keyboard as a separately addressable device and lets a user-mode
// process receive, forward, or synthesize keystrokes per device.
//
// The driver itself is an external dependency: a kernel component plus
// interception.dll. Open loads the DLL and creates a context; everything else
// goes through the Conn interface so the engine can run against a fake in
// tests and on non-Windows platforms.
package driver

import (
	"errors"
	"time"
)

// Stroke is one raw keyboard event as the driver delivers it. It exists only
// for the duration of one receive/decide/send cycle and is never stored.
type Stroke struct {
	Code        uint16 // hardware scan code
	State       uint16 // KeyDown/KeyUp/E0/E1 flag bits
	Information uint32 // opaque pass-through payload
}

// Key state flag bits in Stroke.State.
const (
	KeyDown uint16 = 0x00
	KeyUp   uint16 = 0x01
	KeyE0   uint16 = 0x02
	KeyE1   uint16 = 0x04
)

// Filter flags for SetKeyboardFilter.
const (
	FilterKeyNone uint16 = 0x0000
	FilterKeyAll  uint16 = 0xFFFF
	FilterKeyDown uint16 = 0x01
	FilterKeyUp   uint16 = 0x02
)

// MaxKeyboard is the number of keyboard device slots the driver exposes.
// Device indices run 1..MaxKeyboard and are stable only within one context.
const MaxKeyboard = 10

var (
	// ErrDriverMissing means interception.dll could not be located or loaded.
	ErrDriverMissing = errors.New("interception library not found")
	// ErrContextFailed means the library is present but the kernel component
	// is not installed, so no context can be created.
	ErrContextFailed = errors.New("interception kernel component not installed")
)

// IsKeyUp reports whether the stroke is a key release.
func (s Stroke) IsKeyUp() bool { return s.State&KeyUp != 0 }

// IsExtended reports whether the stroke carried the E0 scan code prefix.
func (s Stroke) IsExtended() bool { return s.State&KeyE0 != 0 }

// Bytes renders the stroke in driver wire layout, for raw logging.
func (s Stroke) Bytes() []byte {
	return []byte{
		byte(s.Code), byte(s.Code >> 8),
		byte(s.State), byte(s.State >> 8),
		byte(s.Information), byte(s.Information >> 8),
		byte(s.Information >> 16), byte(s.Information >> 24),
	}
}

// Conn is an open connection to the driver. All methods are safe for use from
// a single dispatch goroutine; Close may be called from another goroutine to
// unblock a pending Wait.
type Conn interface {
	// SetKeyboardFilter directs keyboard events matching flags to this
	// connection. Until a filter is set, all events pass through untouched.
	SetKeyboardFilter(flags uint16)
	// Wait blocks until a device has pending input or the timeout elapses.
	// Returns the device index, or 0 on timeout.
	Wait(timeout time.Duration) int
	// Receive reads exactly one stroke from the device. The second return is
	// false when no stroke was available.
	Receive(device int) (Stroke, bool)
	// Send forwards a stroke to the device's input stream.
	Send(device int, s Stroke) error
	// IsKeyboard reports whether the index designates a keyboard-class slot.
	IsKeyboard(device int) bool
	// HardwareID returns the device's hardware identifier, or "" for
	// disconnected slots.
	HardwareID(device int) string
	// Close destroys the driver context and releases the library handle.
	Close() error
}
