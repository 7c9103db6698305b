// Package engine implements the device-scoped key interception engine: it
// owns a connection to the Interception driver, runs a dispatch loop on its
// own goroutine, and for every incoming keystroke either forwards it
// unchanged, forwards a transformed stroke, or fires a synthesized combo
// while consuming the physical key.
//
// An Engine is an explicitly constructed, explicitly owned value; "one engine
// per process" is a caller convention, not enforced here.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/internal/log"
	"github.com/Alia5/KEYPER/remap"
	"github.com/Alia5/KEYPER/sender"
)

// KeyEvent is the observable projection of one stroke, posted to the monitor
// channel for every key-down and key-up the engine processes, whether or not
// a remap applies. It never mutates engine state.
type KeyEvent struct {
	ScanCode   uint16
	VKCode     uint16
	KeyUp      bool
	Device     int
	HardwareID string
}

// Config carries construction-time parameters. The zero value gets sensible
// defaults from New.
type Config struct {
	// WaitTimeout bounds each blocking wait so the loop observes Stop within
	// one interval even with no input. Default 100ms.
	WaitTimeout time.Duration
	// StopTimeout bounds how long Stop blocks joining the dispatch loop.
	// Default 2s.
	StopTimeout time.Duration
	// Open dials the driver. Default driver.Open.
	Open func() (driver.Conn, error)
	// Injector delivers synthesized keys. Default is the SendInput-backed
	// system injector.
	Injector sender.Injector
}

// pressedKey identifies one physical key on one device, for tracking inputs
// currently consumed by a combo mapping.
type pressedKey struct {
	device int
	vk     uint16
}

// Engine intercepts keyboard strokes per device and applies the remap table.
//
// All mutation methods are safe to call from any goroutine while the dispatch
// loop runs; shared state is read under the same mutex once per stroke, so a
// concurrent change becomes visible no later than the next stroke.
type Engine struct {
	config Config
	logger *slog.Logger
	raw    log.RawLogger
	synth  *sender.Synthesizer

	registry *Registry

	mu         sync.Mutex
	conn       driver.Conn
	running    bool
	stopCh     chan struct{}
	loopDone   chan struct{}
	table      *remap.Table
	target     int    // 0 = remap regardless of source device
	targetHW   string // hardware id backing target, kept for persistence
	enabled    bool
	monitor    chan<- KeyEvent
	suppressed map[pressedKey]struct{}
}

// New creates an engine. It does not touch the driver until Start.
func New(config Config, logger *slog.Logger, rawLogger log.RawLogger) *Engine {
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = 100 * time.Millisecond
	}
	if config.StopTimeout <= 0 {
		config.StopTimeout = 2 * time.Second
	}
	if config.Open == nil {
		config.Open = driver.Open
	}
	if config.Injector == nil {
		config.Injector = sender.NewSystemInjector()
	}
	return &Engine{
		config:     config,
		logger:     logger,
		raw:        rawLogger,
		synth:      sender.New(config.Injector, logger),
		registry:   NewRegistry(),
		table:      remap.NewTable(),
		enabled:    true,
		suppressed: make(map[pressedKey]struct{}),
	}
}

// Start connects to the driver if needed, enumerates keyboards, installs the
// keyboard filter for both key-down and key-up events, and spawns the
// dispatch loop. Idempotent: starting a running engine is a no-op.
//
// Start fails with driver.ErrDriverMissing or driver.ErrContextFailed when
// the driver cannot be used; the engine then never grabs any device, so the
// physical keyboards keep working normally.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return nil
	}
	if e.conn == nil {
		conn, err := e.config.Open()
		if err != nil {
			return fmt.Errorf("connect to interception driver: %w", err)
		}
		e.conn = conn
		e.registry.Refresh(conn)
		e.resolveTargetLocked()
	}
	e.conn.SetKeyboardFilter(driver.FilterKeyAll)
	e.stopCh = make(chan struct{})
	e.loopDone = make(chan struct{})
	e.running = true
	go e.dispatchLoop(e.conn, e.stopCh, e.loopDone)
	e.logger.Info("interception engine started",
		"keyboards", len(e.registry.Devices()), "target", e.target)
	return nil
}

// Stop signals the dispatch loop, joins it with a bounded timeout, and
// releases the driver context. Any in-flight receive/decide/forward sequence
// completes before the loop exits. Idempotent when already idle.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		conn := e.conn
		e.conn = nil
		e.mu.Unlock()
		if conn != nil {
			return conn.Close()
		}
		return nil
	}
	e.running = false
	close(e.stopCh)
	done := e.loopDone
	conn := e.conn
	e.conn = nil
	e.mu.Unlock()

	select {
	case <-done:
	case <-time.After(e.config.StopTimeout):
		e.logger.Warn("dispatch loop did not stop within timeout")
	}
	err := conn.Close()
	e.logger.Info("interception engine stopped")
	return err
}

// Running reports whether the dispatch loop is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Devices returns the keyboards found by the last enumeration.
func (e *Engine) Devices() []Device {
	return e.registry.Devices()
}

// RefreshDevices re-enumerates keyboards, connecting to the driver first if
// the engine is idle, and re-resolves the target hardware id against the new
// snapshot. The engine never refreshes on its own mid-session.
func (e *Engine) RefreshDevices() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn == nil {
		conn, err := e.config.Open()
		if err != nil {
			return fmt.Errorf("connect to interception driver: %w", err)
		}
		e.conn = conn
	}
	e.registry.Refresh(e.conn)
	e.resolveTargetLocked()
	return nil
}

// resolveTargetLocked re-resolves targetHW to a device index. An id that is
// not currently attached degrades to "no target" rather than an error.
func (e *Engine) resolveTargetLocked() {
	if e.targetHW == "" {
		return
	}
	if d, ok := e.registry.ByHardwareID(e.targetHW); ok {
		e.target = d.Index
		return
	}
	e.logger.Warn("target device not attached, remapping all devices",
		"hardwareId", e.targetHW)
	e.target = 0
}

// SetTargetDevice restricts remapping to one driver device index; 0 applies
// remapping regardless of source device.
func (e *Engine) SetTargetDevice(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = index
	e.targetHW = ""
	if d, ok := e.registry.ByIndex(index); ok {
		e.targetHW = d.HardwareID
	}
}

// SetTargetHardwareID restricts remapping to the device with the given
// persistent hardware id. An empty id clears the target. Returns false when
// the id did not resolve to an attached device; the target is then unset and
// remapping applies to all devices until the id resolves on a later refresh.
func (e *Engine) SetTargetHardwareID(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.targetHW = id
	if id == "" {
		e.target = 0
		return true
	}
	if d, ok := e.registry.ByHardwareID(id); ok {
		e.target = d.Index
		return true
	}
	e.target = 0
	return false
}

// TargetDevice returns the active target device index, 0 for none.
func (e *Engine) TargetDevice() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// TargetHardwareID returns the configured target hardware id, which is kept
// even while the device is not attached.
func (e *Engine) TargetHardwareID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.targetHW
}

// SetEnabled toggles remapping. While disabled every stroke passes through
// unmodified; the table, target and registry are untouched.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Enabled reports whether remapping is active.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// SetMapping installs one mapping, overwriting any existing entry for the
// input key.
func (e *Engine) SetMapping(inputVk uint16, action remap.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.Set(inputVk, action)
}

// SetMappings replaces the whole table.
func (e *Engine) SetMappings(mappings map[uint16]remap.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.Clear()
	for vk, a := range mappings {
		e.table.Set(vk, a)
	}
}

// RemoveMapping deletes one mapping; no-op when absent.
func (e *Engine) RemoveMapping(inputVk uint16) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.Remove(inputVk)
}

// ClearMappings empties the table.
func (e *Engine) ClearMappings() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.Clear()
}

// Mappings returns a snapshot of the table for persistence.
func (e *Engine) Mappings() map[uint16]remap.Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.Snapshot()
}

// SetMonitor installs the channel receiving a KeyEvent for every processed
// stroke, or removes it when ch is nil. The dispatch loop posts without
// blocking: when the channel is full the event is dropped, so a slow consumer
// can never stall interception.
func (e *Engine) SetMonitor(ch chan<- KeyEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.monitor = ch
}
