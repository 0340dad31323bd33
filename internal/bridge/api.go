package bridge

import (
	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"github.com/VladimirGitsarev/Tinytosh/internal/ports"
)

// Command surface used by the UI. Every method is safe to call while Run is
// active on another goroutine.

// GetStats returns the last snapshot as JSON, "{}" before the first tick.
func (b *Bridge) GetStats() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Snapshot returns the last snapshot.
func (b *Bridge) Snapshot() model.Sample {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sample
}

// GetPorts enumerates ports live and merges in the connection state.
func (b *Bridge) GetPorts() model.PortStatus {
	names := ports.Names(b.catalog)

	st := b.State()
	status := model.PortStatus{Ports: names, StatusText: st.StatusText}
	if st.Connected() {
		name := st.PortName
		status.Connected = &name
	}
	return status
}

// ToggleConnection connects to portName or disconnects. It blocks for as long
// as the OS takes to open the port.
func (b *Bridge) ToggleConnection(portName string, connect bool) (string, error) {
	if !connect {
		b.Disconnect()
		return StatusDisconnected, nil
	}
	if err := b.Connect(portName); err != nil {
		return "", err
	}
	return StatusConnected, nil
}
