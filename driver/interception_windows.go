//go:build windows

package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// dllCandidates returns the paths probed for interception.dll, in order.
func dllCandidates() []string {
	paths := []string{"interception.dll"}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "interception.dll"))
	}
	paths = append(paths,
		`C:\Program Files\Interception\library\x64\interception.dll`,
		`C:\Interception\library\x64\interception.dll`,
	)
	return paths
}

type conn struct {
	dll *windows.DLL
	ctx uintptr

	procDestroyContext *windows.Proc
	procSetFilter      *windows.Proc
	procWaitTimeout    *windows.Proc
	procReceive        *windows.Proc
	procSend           *windows.Proc
	procIsKeyboard     *windows.Proc
	procHardwareID     *windows.Proc

	predicate uintptr
}

// Open loads interception.dll and creates a driver context. It distinguishes
// the library being absent (ErrDriverMissing) from the library loading but the
// kernel component being uninstalled (ErrContextFailed); both are fatal and
// leave the physical keyboards untouched.
func Open() (Conn, error) {
	var dll *windows.DLL
	var lastErr error
	for _, path := range dllCandidates() {
		d, err := windows.LoadDLL(path)
		if err == nil {
			dll = d
			break
		}
		lastErr = err
	}
	if dll == nil {
		return nil, fmt.Errorf("%w (last attempt: %v)", ErrDriverMissing, lastErr)
	}

	c := &conn{dll: dll}
	procs := map[string]**windows.Proc{
		"interception_destroy_context": &c.procDestroyContext,
		"interception_set_filter":      &c.procSetFilter,
		"interception_wait_with_timeout": &c.procWaitTimeout,
		"interception_receive":         &c.procReceive,
		"interception_send":            &c.procSend,
		"interception_is_keyboard":     &c.procIsKeyboard,
		"interception_get_hardware_id": &c.procHardwareID,
	}
	for name, dst := range procs {
		p, err := dll.FindProc(name)
		if err != nil {
			dll.Release()
			return nil, fmt.Errorf("%w: missing export %s", ErrDriverMissing, name)
		}
		*dst = p
	}

	create, err := dll.FindProc("interception_create_context")
	if err != nil {
		dll.Release()
		return nil, fmt.Errorf("%w: missing export interception_create_context", ErrDriverMissing)
	}
	ctx, _, _ := create.Call()
	if ctx == 0 {
		dll.Release()
		if !kernelComponentPresent() {
			return nil, ErrContextFailed
		}
		return nil, fmt.Errorf("create interception context failed")
	}
	c.ctx = ctx

	// The filter predicate callback selects keyboard-class devices.
	c.predicate = windows.NewCallback(func(device uintptr) uintptr {
		r, _, _ := c.procIsKeyboard.Call(device)
		return r
	})

	return c, nil
}

// kernelComponentPresent probes one of the driver's device objects to tell
// "DLL present, kernel driver missing" apart from other context failures.
func kernelComponentPresent() bool {
	name, err := windows.UTF16PtrFromString(`\\.\interception00`)
	if err != nil {
		return false
	}
	h, err := windows.CreateFile(name, windows.GENERIC_READ,
		windows.FILE_SHARE_READ, nil, windows.OPEN_EXISTING, 0, 0)
	if err != nil {
		return false
	}
	_ = windows.CloseHandle(h)
	return true
}

func (c *conn) SetKeyboardFilter(flags uint16) {
	_, _, _ = c.procSetFilter.Call(c.ctx, c.predicate, uintptr(flags))
}

func (c *conn) Wait(timeout time.Duration) int {
	device, _, _ := c.procWaitTimeout.Call(c.ctx, uintptr(timeout.Milliseconds()))
	return int(device)
}

func (c *conn) Receive(device int) (Stroke, bool) {
	var s Stroke
	n, _, _ := c.procReceive.Call(c.ctx, uintptr(device),
		uintptr(unsafe.Pointer(&s)), 1)
	return s, n > 0
}

func (c *conn) Send(device int, s Stroke) error {
	n, _, _ := c.procSend.Call(c.ctx, uintptr(device),
		uintptr(unsafe.Pointer(&s)), 1)
	if n != 1 {
		return fmt.Errorf("send stroke to device %d: driver accepted %d of 1", device, n)
	}
	return nil
}

func (c *conn) IsKeyboard(device int) bool {
	r, _, _ := c.procIsKeyboard.Call(uintptr(device))
	return r != 0
}

func (c *conn) HardwareID(device int) string {
	var buf [500]uint16
	n, _, _ := c.procHardwareID.Call(c.ctx, uintptr(device),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)*2))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:])
}

func (c *conn) Close() error {
	if c.ctx != 0 {
		_, _, _ = c.procDestroyContext.Call(c.ctx)
		c.ctx = 0
	}
	if c.dll != nil {
		err := c.dll.Release()
		c.dll = nil
		return err
	}
	return nil
}
