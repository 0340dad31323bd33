package autostart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEntry struct {
	on       bool
	err      error
	disables int
}

func (f *fakeEntry) Enable() error {
	if f.err != nil {
		return f.err
	}
	f.on = true
	return nil
}

func (f *fakeEntry) Disable() error {
	f.disables++
	if f.err != nil {
		return f.err
	}
	f.on = false
	return nil
}

func (f *fakeEntry) IsEnabled() bool { return f.on }

func TestSetToggles(t *testing.T) {
	e := &fakeEntry{}
	m := &Manager{app: e}

	require.NoError(t, m.Set(true))
	assert.True(t, m.Enabled())
	require.NoError(t, m.Set(false))
	assert.False(t, m.Enabled())

	require.NoError(t, m.Set(false), "disabling twice is fine")
	assert.Equal(t, 1, e.disables)
}

func TestSetWrapsErrors(t *testing.T) {
	cause := errors.New("read-only file system")
	m := &Manager{app: &fakeEntry{err: cause}}

	err := m.Set(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

// entryPath mirrors where the login item library writes on this OS.
func entryPath(t *testing.T, name string) string {
	t.Helper()
	switch runtime.GOOS {
	case "windows":
		t.Skip("startup shortcuts are binary .lnk files")
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", name+".plist")
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, "autostart", name+".desktop")
}

func TestLoginEntryLaunchesMinimized(t *testing.T) {
	if testing.Short() {
		t.Skip("writes to the user's autostart directory")
	}
	name := fmt.Sprintf("tinytosh-test-%d", time.Now().UnixNano())
	path := entryPath(t, name)
	m := NewFor(name, "/opt/tinytosh/tinytosh")
	t.Cleanup(func() { _ = m.Set(false) })

	require.NoError(t, m.Set(true))
	assert.True(t, m.Enabled())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "/opt/tinytosh/tinytosh")
	assert.Contains(t, string(data), Flag)

	require.NoError(t, m.Set(false))
	assert.False(t, m.Enabled())
	assert.NoFileExists(t, path)
}
