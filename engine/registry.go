package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Alia5/KEYPER/driver"
)

// Device is one keyboard-class slot exposed by the driver. Index is assigned
// by the driver and stable only within a connection session; HardwareID is the
// persistent cross-session identity a profile stores.
type Device struct {
	Index      int    `json:"index"`
	HardwareID string `json:"hardwareId"`
}

// DisplayName renders a short human-readable label, extracting the USB
// VID/PID from the hardware id when present.
func (d Device) DisplayName() string {
	hw := strings.ToUpper(d.HardwareID)
	vid := extractAfter(hw, "VID_")
	pid := extractAfter(hw, "PID_")
	if vid != "" && pid != "" {
		return fmt.Sprintf("Keyboard %d (VID:%s PID:%s)", d.Index, vid, pid)
	}
	if d.HardwareID != "" {
		id := d.HardwareID
		if len(id) > 30 {
			id = id[:30] + "..."
		}
		return fmt.Sprintf("Keyboard %d (%s)", d.Index, id)
	}
	return fmt.Sprintf("Keyboard %d", d.Index)
}

func extractAfter(s, marker string) string {
	i := strings.Index(s, marker)
	if i < 0 || i+len(marker)+4 > len(s) {
		return ""
	}
	return s[i+len(marker) : i+len(marker)+4]
}

// Registry holds the keyboard devices found by the last enumeration. It does
// not auto-refresh; the device list only changes when Refresh is called with
// a live connection.
type Registry struct {
	mu      sync.Mutex
	devices []Device
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Refresh probes every keyboard slot the driver exposes and replaces the
// snapshot with the slots that are keyboard-class and report a non-empty
// hardware id (disconnected slots report an empty one). Enumeration is
// best-effort device listing; with a nil connection the snapshot is cleared
// rather than failing the caller.
func (r *Registry) Refresh(conn driver.Conn) {
	var devices []Device
	if conn != nil {
		for idx := 1; idx <= driver.MaxKeyboard; idx++ {
			if !conn.IsKeyboard(idx) {
				continue
			}
			hw := conn.HardwareID(idx)
			if hw == "" {
				continue
			}
			devices = append(devices, Device{Index: idx, HardwareID: hw})
		}
	}
	r.mu.Lock()
	r.devices = devices
	r.mu.Unlock()
}

// Devices returns a copy of the last enumeration snapshot.
func (r *Registry) Devices() []Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// ByIndex finds a device by its driver-assigned index.
func (r *Registry) ByIndex(index int) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.Index == index {
			return d, true
		}
	}
	return Device{}, false
}

// ByHardwareID finds a device by its persistent hardware identifier.
func (r *Registry) ByHardwareID(id string) (Device, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.devices {
		if d.HardwareID == id {
			return d, true
		}
	}
	return Device{}, false
}
