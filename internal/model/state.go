package model

// ConnectionState is a copy of the bridge's connection state machine.
// PortName is non-empty only while connected.
type ConnectionState struct {
	PortName   string
	Manual     bool
	FailCount  int
	StatusText string
}

// Connected reports whether a serial link is open.
func (s ConnectionState) Connected() bool { return s.PortName != "" }

func (s ConnectionState) String() string {
	switch {
	case s.Connected():
		return "connected(" + s.PortName + ")"
	case s.Manual:
		return "idle(manual)"
	default:
		return "idle(auto)"
	}
}
