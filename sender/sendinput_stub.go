//go:build !windows

package sender

import "errors"

type systemInjector struct{}

// NewSystemInjector returns a stub on non-Windows platforms; synthetic input
// requires the Windows SendInput API.
func NewSystemInjector() Injector {
	return systemInjector{}
}

func (systemInjector) SendKey(vk uint16, keyUp bool) error {
	return errors.New("synthetic input is only available on windows")
}
