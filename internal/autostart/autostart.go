// Package autostart registers tinytosh to start minimized at user login:
// an XDG .desktop entry on Linux and BSD, a LaunchAgent on macOS and a
// Startup folder shortcut on Windows.
package autostart

import (
	"fmt"
	"os"

	goautostart "github.com/emersion/go-autostart"
)

const (
	AppName     = "tinytosh"
	DisplayName = "Tinytosh"
	Flag        = "--minimized"
)

// entry is the login item backend; *goautostart.App in production.
type entry interface {
	Enable() error
	Disable() error
	IsEnabled() bool
}

// Manager enables or disables the login entry for one executable.
type Manager struct {
	app entry
}

// New returns a Manager for the running executable.
func New() (*Manager, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return NewFor(AppName, exe), nil
}

// NewFor returns a Manager that launches exe with Flag under the given
// entry name.
func NewFor(name, exe string) *Manager {
	return &Manager{app: &goautostart.App{
		Name:        name,
		DisplayName: DisplayName,
		Exec:        []string{exe, Flag},
	}}
}

// Set enables or disables starting at login. Disabling an absent entry is
// not an error.
func (m *Manager) Set(enable bool) error {
	if enable {
		if err := m.app.Enable(); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		return nil
	}
	if !m.app.IsEnabled() {
		return nil
	}
	if err := m.app.Disable(); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

// Enabled reports whether the login entry exists.
func (m *Manager) Enabled() bool { return m.app.IsEnabled() }
