package model

// PortKind classifies how a serial port is attached.
type PortKind int

const (
	PortOther PortKind = iota
	PortUSB
)

func (k PortKind) String() string {
	if k == PortUSB {
		return "usb"
	}
	return "other"
}

// PortDescriptor is one enumerated serial port. Re-read on every scan.
type PortDescriptor struct {
	Name    string
	Kind    PortKind
	Product string
}

// PortStatus is the answer to a port listing request from the UI.
type PortStatus struct {
	Ports      []string `json:"ports"`
	Connected  *string  `json:"connected"`
	StatusText string   `json:"status_text"`
}
