//go:build windows

package sender

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Alia5/KEYPER/keycode"
)

const (
	inputKeyboard = 1

	keyeventfExtendedKey = 0x0001
	keyeventfKeyUp       = 0x0002
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

type keybdInput struct {
	Vk          uint16
	Scan        uint16
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input matches the Windows INPUT struct for keyboard events. The union is
// sized for MOUSEINPUT (the largest member), hence the trailing padding.
type input struct {
	Type uint32
	_    uint32 // alignment
	Ki   keybdInput
	_    [8]byte // pad union to MOUSEINPUT size
}

type systemInjector struct{}

// NewSystemInjector returns the Injector backed by the SendInput API.
func NewSystemInjector() Injector {
	return systemInjector{}
}

func (systemInjector) SendKey(vk uint16, keyUp bool) error {
	var flags uint32
	if keyUp {
		flags |= keyeventfKeyUp
	}
	if keycode.IsExtendedVK(vk) {
		flags |= keyeventfExtendedKey
	}

	in := input{
		Type: inputKeyboard,
		Ki: keybdInput{
			Vk:    vk,
			Flags: flags,
		},
	}

	sent, _, callErr := procSendInput.Call(1,
		uintptr(unsafe.Pointer(&in)), unsafe.Sizeof(in))
	if sent != 1 {
		if callErr != nil && callErr != windows.ERROR_SUCCESS {
			return fmt.Errorf("SendInput: %w", callErr)
		}
		return fmt.Errorf("SendInput accepted 0 of 1 events")
	}
	return nil
}
