// Package profile persists a remap profile: the target device's hardware id,
// the enabled flag, and the key mappings, keyed by human-readable key names.
// The engine itself never touches the disk; this package snapshots and
// restores its state.
package profile

import (
	"fmt"
	"os"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml"

	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/configpaths"
	"github.com/Alia5/KEYPER/keycode"
	"github.com/Alia5/KEYPER/remap"
)

// Profile is the durable remap configuration. Mapping values are either a
// single key name ("F1") or a combo joined with '+' ("LCTRL+LSHIFT+V");
// the order of combo keys is the order they are pressed.
type Profile struct {
	// Device is the hardware id of the keyboard to remap; empty remaps all
	// keyboards. Hardware ids survive reconnects and reboots, unlike driver
	// device indices.
	Device   string            `toml:"device" json:"device" yaml:"device"`
	Enabled  bool              `toml:"enabled" json:"enabled" yaml:"enabled"`
	Mappings map[string]string `toml:"mappings" json:"mappings" yaml:"mappings"`
}

// Default returns an empty, enabled profile.
func Default() Profile {
	return Profile{Enabled: true, Mappings: map[string]string{}}
}

// Template returns a profile with example mappings, for `config init`.
func Template() Profile {
	return Profile{
		Enabled: true,
		Mappings: map[string]string{
			"F13": "F1",
			"F14": "LCTRL+LSHIFT+V",
		},
	}
}

// Load reads a profile from path. A missing file yields the default profile;
// a malformed one is an error.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	p := Default()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	if p.Mappings == nil {
		p.Mappings = map[string]string{}
	}
	return p, nil
}

// Save writes the profile to path, creating the directory if needed.
func Save(path string, p Profile) error {
	if err := configpaths.EnsureDir(path); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Actions parses the mapping table into engine actions. Unknown key names
// are an error naming the offending entry.
func (p Profile) Actions() (map[uint16]remap.Action, error) {
	out := make(map[uint16]remap.Action, len(p.Mappings))
	for inName, outSpec := range p.Mappings {
		inVk, ok := keycode.FromName(inName)
		if !ok {
			return nil, fmt.Errorf("unknown input key %q", inName)
		}
		action, err := parseAction(outSpec)
		if err != nil {
			return nil, fmt.Errorf("mapping %q: %w", inName, err)
		}
		out[inVk] = action
	}
	return out, nil
}

func parseAction(spec string) (remap.Action, error) {
	parts := strings.Split(spec, "+")
	vks := make([]uint16, 0, len(parts))
	for _, part := range parts {
		vk, ok := keycode.FromName(part)
		if !ok {
			return remap.Action{}, fmt.Errorf("unknown output key %q", strings.TrimSpace(part))
		}
		vks = append(vks, vk)
	}
	if len(vks) == 1 {
		return remap.Single(vks[0]), nil
	}
	return remap.Combo(vks...)
}

// Apply restores the profile into the engine: mappings, enabled flag, and
// target device. A device id that is not currently attached is not an error;
// the engine remaps all devices until the id resolves on a later refresh.
func (p Profile) Apply(e *engine.Engine) error {
	actions, err := p.Actions()
	if err != nil {
		return err
	}
	e.SetMappings(actions)
	e.SetEnabled(p.Enabled)
	e.SetTargetHardwareID(p.Device)
	return nil
}

// FromEngine snapshots the engine's current state into a profile.
func FromEngine(e *engine.Engine) Profile {
	p := Profile{
		Device:   e.TargetHardwareID(),
		Enabled:  e.Enabled(),
		Mappings: map[string]string{},
	}
	for inVk, action := range e.Mappings() {
		p.Mappings[keycode.Name(inVk)] = formatAction(action)
	}
	return p
}

func formatAction(a remap.Action) string {
	if !a.IsCombo() {
		return keycode.Name(a.Key())
	}
	keys := a.Keys()
	names := make([]string, len(keys))
	for i, vk := range keys {
		names[i] = keycode.Name(vk)
	}
	return strings.Join(names, "+")
}

// SortedMappings returns the mapping entries ordered by input key name, for
// stable listing output.
func (p Profile) SortedMappings() [][2]string {
	out := make([][2]string, 0, len(p.Mappings))
	for k, v := range p.Mappings {
		out = append(out, [2]string{k, v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
