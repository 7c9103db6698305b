package profile_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/KEYPER/driver"
	"github.com/Alia5/KEYPER/engine"
	"github.com/Alia5/KEYPER/internal/log"
	"github.com/Alia5/KEYPER/internal/profile"
	th "github.com/Alia5/KEYPER/internal/testing"
	"github.com/Alia5/KEYPER/keycode"
	"github.com/Alia5/KEYPER/remap"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMissingFileYieldsDefault(t *testing.T) {
	p, err := profile.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.True(t, p.Enabled)
	assert.Empty(t, p.Device)
	assert.Empty(t, p.Mappings)
}

func TestLoadMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	require.NoError(t, os.WriteFile(path, []byte("mappings = ["), 0o644))

	_, err := profile.Load(path)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "profile.toml")
	in := profile.Profile{
		Device:  `HID\VID_046D&PID_C31C\6&1`,
		Enabled: false,
		Mappings: map[string]string{
			"F13": "F1",
			"F14": "LCTRL+LSHIFT+V",
		},
	}
	require.NoError(t, profile.Save(path, in))

	out, err := profile.Load(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestActionsParsing(t *testing.T) {
	p := profile.Profile{Mappings: map[string]string{
		"F13": "A",
		"F14": "LCTRL+C",
	}}
	actions, err := p.Actions()
	require.NoError(t, err)
	require.Len(t, actions, 2)

	single := actions[keycode.VKF13]
	assert.False(t, single.IsCombo())
	assert.Equal(t, uint16('A'), single.Key())

	combo := actions[keycode.VKF14]
	require.True(t, combo.IsCombo())
	assert.Equal(t, []uint16{keycode.VKLeftControl, uint16('C')}, combo.Keys())
}

func TestActionsRejectsUnknownNames(t *testing.T) {
	_, err := profile.Profile{Mappings: map[string]string{"NOSUCH": "A"}}.Actions()
	assert.ErrorContains(t, err, "NOSUCH")

	_, err = profile.Profile{Mappings: map[string]string{"F13": "LCTRL+BOGUS"}}.Actions()
	assert.ErrorContains(t, err, "BOGUS")
}

func newIdleEngine(t *testing.T, hardware map[int]string) *engine.Engine {
	t.Helper()
	conn := th.NewFakeConn(hardware)
	e := engine.New(engine.Config{
		Open:     func() (driver.Conn, error) { return conn, nil },
		Injector: &th.RecordingInjector{},
	}, discard(), log.NewRaw(nil))
	t.Cleanup(func() { _ = e.Stop() })
	return e
}

func TestApplyRestoresEngineState(t *testing.T) {
	hw := `HID\VID_1234&PID_5678\1`
	e := newIdleEngine(t, map[int]string{2: hw})
	require.NoError(t, e.RefreshDevices())

	p := profile.Profile{
		Device:  hw,
		Enabled: false,
		Mappings: map[string]string{
			"F13": "F1",
			"F14": "LCTRL+LSHIFT+V",
		},
	}
	require.NoError(t, p.Apply(e))

	assert.False(t, e.Enabled())
	assert.Equal(t, 2, e.TargetDevice())
	assert.Equal(t, hw, e.TargetHardwareID())
	assert.Len(t, e.Mappings(), 2)
}

func TestApplyKeepsUnresolvedDeviceID(t *testing.T) {
	e := newIdleEngine(t, map[int]string{1: "something-else"})
	require.NoError(t, e.RefreshDevices())

	p := profile.Default()
	p.Device = "not-attached"
	require.NoError(t, p.Apply(e))

	// The id is kept for persistence even though no device matched.
	assert.Equal(t, 0, e.TargetDevice())
	assert.Equal(t, "not-attached", e.TargetHardwareID())
}

func TestFromEngineRoundTrip(t *testing.T) {
	e := newIdleEngine(t, nil)
	e.SetEnabled(false)
	e.SetMapping(keycode.VKF13, remap.Single(keycode.VKF1))
	combo, err := remap.Combo(keycode.VKLeftControl, keycode.VKLeftShift, 'V')
	require.NoError(t, err)
	e.SetMapping(keycode.VKF14, combo)

	p := profile.FromEngine(e)
	assert.False(t, p.Enabled)
	assert.Equal(t, map[string]string{
		"F13": "F1",
		"F14": "LCTRL+LSHIFT+V",
	}, p.Mappings)

	actions, err := p.Actions()
	require.NoError(t, err)
	assert.Equal(t, e.Mappings(), actions)
}

func TestSortedMappings(t *testing.T) {
	p := profile.Profile{Mappings: map[string]string{
		"F14": "B",
		"A":   "C",
		"F13": "A",
	}}
	got := p.SortedMappings()
	assert.Equal(t, [][2]string{{"A", "C"}, {"F13", "A"}, {"F14", "B"}}, got)
}

func TestWatchDeliversReloadedProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.toml")
	require.NoError(t, profile.Save(path, profile.Default()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates, err := profile.Watch(ctx, path, discard())
	require.NoError(t, err)

	p := profile.Default()
	p.Mappings["F13"] = "F1"
	require.NoError(t, profile.Save(path, p))

	select {
	case got := <-updates:
		assert.Equal(t, "F1", got.Mappings["F13"])
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	updates, err := profile.Watch(ctx, filepath.Join(dir, "profile.toml"), discard())
	require.NoError(t, err)

	cancel()
	select {
	case _, open := <-updates:
		assert.False(t, open)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
