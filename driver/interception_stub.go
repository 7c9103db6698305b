//go:build !windows

package driver

import "fmt"

// Open fails on non-Windows platforms; the Interception driver is
// Windows-only. The engine still builds and tests everywhere through the Conn
// interface.
func Open() (Conn, error) {
	return nil, fmt.Errorf("%w: interception is only available on windows", ErrDriverMissing)
}
