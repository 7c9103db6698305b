// Package testing provides shared fakes for package tests: a scriptable
// in-memory driver connection and a recording injector.
package testing

import (
	"sync"
	"time"

	"github.com/Alia5/KEYPER/driver"
)

type queuedStroke struct {
	device int
	stroke driver.Stroke
}

// SentStroke is one stroke the engine forwarded to the fake driver.
type SentStroke struct {
	Device int
	Stroke driver.Stroke
}

// FakeConn is an in-memory driver.Conn. Tests queue incoming strokes and
// observe forwarded ones; Wait blocks like the real driver until input is
// pending or the timeout elapses.
type FakeConn struct {
	mu       sync.Mutex
	pending  []queuedStroke
	signal   chan struct{}
	sent     chan SentStroke
	hardware map[int]string
	filter   uint16
	closed   bool

	// SendErr, when set, is returned from every Send.
	SendErr error
}

// NewFakeConn creates a fake connection. hardware maps device index to
// hardware id; every index present is keyboard-class.
func NewFakeConn(hardware map[int]string) *FakeConn {
	if hardware == nil {
		hardware = make(map[int]string)
	}
	return &FakeConn{
		signal:   make(chan struct{}, driver.MaxKeyboard*16),
		sent:     make(chan SentStroke, 256),
		hardware: hardware,
	}
}

// Queue schedules one incoming stroke on the given device.
func (c *FakeConn) Queue(device int, s driver.Stroke) {
	c.mu.Lock()
	c.pending = append(c.pending, queuedStroke{device: device, stroke: s})
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *FakeConn) SetKeyboardFilter(flags uint16) {
	c.mu.Lock()
	c.filter = flags
	c.mu.Unlock()
}

// Filter returns the last filter flags set.
func (c *FakeConn) Filter() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

func (c *FakeConn) Wait(timeout time.Duration) int {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		c.mu.Lock()
		if len(c.pending) > 0 {
			device := c.pending[0].device
			c.mu.Unlock()
			return device
		}
		c.mu.Unlock()
		select {
		case <-c.signal:
			// Re-check; the stroke may already have been consumed.
		case <-deadline.C:
			return 0
		}
	}
}

func (c *FakeConn) Receive(device int) (driver.Stroke, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 || c.pending[0].device != device {
		return driver.Stroke{}, false
	}
	s := c.pending[0].stroke
	c.pending = c.pending[1:]
	return s, true
}

func (c *FakeConn) Send(device int, s driver.Stroke) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	c.sent <- SentStroke{Device: device, Stroke: s}
	return nil
}

func (c *FakeConn) IsKeyboard(device int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.hardware[device]
	return ok
}

func (c *FakeConn) HardwareID(device int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hardware[device]
}

func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *FakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// NextSent returns the next forwarded stroke, or false if none arrives
// within the timeout.
func (c *FakeConn) NextSent(timeout time.Duration) (SentStroke, bool) {
	select {
	case s := <-c.sent:
		return s, true
	case <-time.After(timeout):
		return SentStroke{}, false
	}
}

// InjectedKey is one synthetic key transition recorded by RecordingInjector.
type InjectedKey struct {
	VK    uint16
	KeyUp bool
}

// RecordingInjector records synthetic key transitions instead of delivering
// them to the OS.
type RecordingInjector struct {
	mu   sync.Mutex
	keys []InjectedKey

	// Err, when set, is returned from every SendKey (calls are still
	// recorded).
	Err error
}

func (r *RecordingInjector) SendKey(vk uint16, keyUp bool) error {
	r.mu.Lock()
	r.keys = append(r.keys, InjectedKey{VK: vk, KeyUp: keyUp})
	r.mu.Unlock()
	return r.Err
}

// Keys returns a copy of the recorded transitions.
func (r *RecordingInjector) Keys() []InjectedKey {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]InjectedKey, len(r.keys))
	copy(out, r.keys)
	return out
}
