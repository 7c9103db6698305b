//go:build !windows

package util

func IsRunFromGUI() bool {
	// The driver this tool fronts is Windows-only; on other platforms the
	// binary is only ever run from a shell, usually for tests.
	return false
}

func HideConsoleWindow() {
	// No-op on non-Windows platforms
}
