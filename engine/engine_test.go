package engine_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/log"
	th "github.com/Alia5/KEYPER/internal/testing"
	"github.com/Alia5/KEYPER/keycode"
	"github.com/Alia5/KEYPER/remap"
)

const (
	scanF13 = 0x64
	scanF1  = 0x3B
	scanA   = 0x1E
)

var testKeyboards = map[int]string{
	2: `HID\VID_1234&PID_5678\A`,
	3: `HID\VID_AAAA&PID_BBBB\B`,
}

func newTestEngine(t *testing.T, conn *th.FakeConn) (*engine.Engine, *th.RecordingInjector) {
	t.Helper()
	inj := &th.RecordingInjector{}
	e := engine.New(engine.Config{
		WaitTimeout: 10 * time.Millisecond,
		StopTimeout: time.Second,
		Open:        func() (driver.Conn, error) { return conn, nil },
		Injector:    inj,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), log.NewRaw(nil))
	t.Cleanup(func() { _ = e.Stop() })
	return e, inj
}

func TestStartSetsKeyboardFilter(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())
	assert.Equal(t, driver.FilterKeyAll, conn.Filter())
	assert.True(t, e.Running())
}

func TestStartErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"driver missing", driver.ErrDriverMissing},
		{"kernel component missing", driver.ErrContextFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := engine.New(engine.Config{
				Open: func() (driver.Conn, error) {
					return nil, fmt.Errorf("open: %w", tt.err)
				},
			}, slog.New(slog.NewTextHandler(io.Discard, nil)), log.NewRaw(nil))
			err := e.Start()
			require.ErrorIs(t, err, tt.err)
			assert.False(t, e.Running())
		})
	}
}

func TestStartIdempotent(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())
	require.NoError(t, e.Start())

	// A single dispatch loop means a queued stroke is forwarded exactly once.
	conn.Queue(2, driver.Stroke{Code: scanA})
	_, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	_, dup := conn.NextSent(50 * time.Millisecond)
	assert.False(t, dup, "stroke forwarded twice: two dispatch loops running")
}

func TestStopIdleIsNoop(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Stop())
	assert.False(t, conn.Closed())
}

func TestStopReleasesDriver(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())
	require.NoError(t, e.Stop())
	assert.True(t, conn.Closed())
	assert.False(t, e.Running())

	// Stopping again is a no-op.
	require.NoError(t, e.Stop())
}

func TestPassThroughUnchanged(t *testing.T) {
	combo, err := remap.Combo(keycode.VKLeftControl, 'V')
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(e *engine.Engine)
	}{
		{"no mappings", func(e *engine.Engine) {}},
		{"disabled", func(e *engine.Engine) {
			e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))
			e.SetMapping(keycode.VKF13, combo)
			e.SetEnabled(false)
		}},
		{"wrong device", func(e *engine.Engine) {
			e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))
			e.SetTargetDevice(3)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := th.NewFakeConn(testKeyboards)
			e, inj := newTestEngine(t, conn)
			tt.setup(e)
			require.NoError(t, e.Start())

			in := driver.Stroke{Code: scanF13, State: driver.KeyDown, Information: 0xDEAD}
			conn.Queue(2, in)
			sent, ok := conn.NextSent(time.Second)
			require.True(t, ok)
			assert.Equal(t, 2, sent.Device)
			assert.Equal(t, in, sent.Stroke, "pass-through must be byte-identical")
			assert.Empty(t, inj.Keys())
		})
	}
}

func TestSingleKeyRemap(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))
	e.SetTargetDevice(2)
	require.NoError(t, e.Start())

	// Key-down on the target device: scan code substituted, everything else
	// preserved.
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown, Information: 7})
	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, 2, sent.Device)
	assert.Equal(t, driver.Stroke{Code: scanF1, State: driver.KeyDown, Information: 7}, sent.Stroke)

	// Key-up keeps the up flag.
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyUp, Information: 7})
	sent, ok = conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, driver.Stroke{Code: scanF1, State: driver.KeyUp, Information: 7}, sent.Stroke)

	// The identical stroke on another device is forwarded unchanged.
	in := driver.Stroke{Code: scanF13, State: driver.KeyDown, Information: 7}
	conn.Queue(3, in)
	sent, ok = conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, 3, sent.Device)
	assert.Equal(t, in, sent.Stroke)
}

func TestSingleKeyRemapPreservesExtendedFlag(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	e.SetMapping(keycode.VKUp, remap.Single(keycode.VKDown))
	require.NoError(t, e.Start())

	// Arrow up arrives with the E0 prefix; the transformed stroke keeps it.
	conn.Queue(2, driver.Stroke{Code: 0x48, State: driver.KeyE0})
	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, keycode.ScanFromVK(keycode.VKDown), sent.Stroke.Code)
	assert.Equal(t, driver.KeyE0, sent.Stroke.State)
}

func TestComboConsumesDownAndUp(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, inj := newTestEngine(t, conn)
	combo, err := remap.Combo(keycode.VKLeftControl, keycode.VKLeftShift, 'V')
	require.NoError(t, err)
	e.SetMapping(keycode.VKF13, combo)
	require.NoError(t, e.Start())

	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyUp})
	// Sentinel after the combo strokes: the first thing the driver sees must
	// be this, proving neither F13 stroke was forwarded.
	sentinel := driver.Stroke{Code: scanA, State: driver.KeyDown}
	conn.Queue(3, sentinel)

	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, sentinel, sent.Stroke)
	assert.Equal(t, 3, sent.Device)

	want := []th.InjectedKey{
		{VK: keycode.VKLeftControl, KeyUp: false},
		{VK: keycode.VKLeftShift, KeyUp: false},
		{VK: 'V', KeyUp: false},
		{VK: 'V', KeyUp: true},
		{VK: keycode.VKLeftShift, KeyUp: true},
		{VK: keycode.VKLeftControl, KeyUp: true},
	}
	assert.Equal(t, want, inj.Keys())
}

func TestComboAutoRepeatFiresOnce(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, inj := newTestEngine(t, conn)
	combo, err := remap.Combo('X')
	require.NoError(t, err)
	e.SetMapping(keycode.VKF13, combo)
	require.NoError(t, e.Start())

	// Holding the key repeats the down; only the first fires the combo.
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyUp})
	sentinel := driver.Stroke{Code: scanA, State: driver.KeyDown}
	conn.Queue(2, sentinel)

	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, sentinel, sent.Stroke)

	assert.Equal(t, []th.InjectedKey{{VK: 'X', KeyUp: false}, {VK: 'X', KeyUp: true}}, inj.Keys())
}

func TestComboAppliesToAnyDeviceWithoutTarget(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, inj := newTestEngine(t, conn)
	combo, err := remap.Combo(keycode.VKLeftControl, 'C')
	require.NoError(t, err)
	e.SetMapping(keycode.VKF13, combo)
	require.NoError(t, e.Start())

	conn.Queue(3, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	sentinel := driver.Stroke{Code: scanA, State: driver.KeyDown}
	conn.Queue(2, sentinel)

	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, sentinel, sent.Stroke)
	assert.Len(t, inj.Keys(), 4)
}

func TestMonitorReceivesEveryEvent(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))

	events := make(chan engine.KeyEvent, 16)
	e.SetMonitor(events)
	require.NoError(t, e.Start())

	conn.Queue(2, driver.Stroke{Code: scanF13, State: driver.KeyDown})
	conn.Queue(3, driver.Stroke{Code: scanA, State: driver.KeyUp})

	ev := nextEvent(t, events)
	assert.Equal(t, uint16(scanF13), ev.ScanCode)
	assert.Equal(t, keycode.VKF13, ev.VKCode)
	assert.False(t, ev.KeyUp)
	assert.Equal(t, 2, ev.Device)
	assert.Equal(t, testKeyboards[2], ev.HardwareID)

	ev = nextEvent(t, events)
	assert.Equal(t, uint16('A'), ev.VKCode)
	assert.True(t, ev.KeyUp)
	assert.Equal(t, 3, ev.Device)
}

func TestMonitorOverflowDoesNotStallLoop(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)

	// Unbuffered channel nobody reads: every post must be dropped, not block.
	e.SetMonitor(make(chan engine.KeyEvent))
	require.NoError(t, e.Start())

	for i := 0; i < 5; i++ {
		conn.Queue(2, driver.Stroke{Code: scanA, State: driver.KeyDown})
	}
	for i := 0; i < 5; i++ {
		_, ok := conn.NextSent(time.Second)
		require.True(t, ok, "loop stalled on monitor post")
	}
}

func TestSetTargetHardwareID(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())

	require.True(t, e.SetTargetHardwareID(testKeyboards[3]))
	assert.Equal(t, 3, e.TargetDevice())
	assert.Equal(t, testKeyboards[3], e.TargetHardwareID())

	// An id that is not attached degrades to "no target", recoverably.
	require.False(t, e.SetTargetHardwareID(`HID\VID_0000&PID_0000\X`))
	assert.Equal(t, 0, e.TargetDevice())
	assert.Equal(t, `HID\VID_0000&PID_0000\X`, e.TargetHardwareID())

	require.True(t, e.SetTargetHardwareID(""))
	assert.Equal(t, 0, e.TargetDevice())
}

func TestMappingMutationsWhileRunning(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())

	e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))
	conn.Queue(2, driver.Stroke{Code: scanF13})
	sent, ok := conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, uint16(scanF1), sent.Stroke.Code)

	e.RemoveMapping(keycode.VKF13)
	conn.Queue(2, driver.Stroke{Code: scanF13})
	sent, ok = conn.NextSent(time.Second)
	require.True(t, ok)
	assert.Equal(t, uint16(scanF13), sent.Stroke.Code)

	e.SetMappings(map[uint16]remap.Action{'A': remap.Single('B')})
	assert.Len(t, e.Mappings(), 1)
	e.ClearMappings()
	assert.Empty(t, e.Mappings())
}

func TestSendFailureDoesNotStopLoop(t *testing.T) {
	conn := th.NewFakeConn(testKeyboards)
	conn.SendErr = errors.New("device gone")
	e, _ := newTestEngine(t, conn)
	require.NoError(t, e.Start())

	conn.Queue(2, driver.Stroke{Code: scanA})

	// The loop must survive the failed send and still stop cleanly.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, e.Stop())
}

func nextEvent(t *testing.T, ch <-chan engine.KeyEvent) engine.KeyEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for key event")
		return engine.KeyEvent{}
	}
}
