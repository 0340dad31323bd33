package ports

import (
	"strings"

	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"go.bug.st/serial/enumerator"
)

// Substrings that mark a likely display board. Matched case-insensitively.
var (
	nameHints    = []string{"usb", "acm", "serial", "jtag", "com"}
	productHints = []string{"cp210", "ch340", "esp32", "serial", "jtag"}
)

// Catalog enumerates serial ports.
type Catalog interface {
	List() ([]model.PortDescriptor, error)
}

// System lists the ports the OS reports.
type System struct{}

func (System) List() ([]model.PortDescriptor, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, err
	}
	out := make([]model.PortDescriptor, 0, len(details))
	for _, d := range details {
		desc := model.PortDescriptor{Name: d.Name, Kind: model.PortOther}
		if d.IsUSB {
			desc.Kind = model.PortUSB
			desc.Product = d.Product
		}
		out = append(out, desc)
	}
	return out, nil
}

// Names lists port names, treating an enumeration error as no ports.
func Names(c Catalog) []string {
	list, err := c.List()
	if err != nil {
		return []string{}
	}
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.Name)
	}
	return names
}

// FindCandidate returns the first port that looks like the display.
// There is no ranking: enumeration order decides between several matches.
func FindCandidate(list []model.PortDescriptor) (model.PortDescriptor, bool) {
	for _, p := range list {
		if IsCandidate(p) {
			return p, true
		}
	}
	return model.PortDescriptor{}, false
}

// IsCandidate applies the naming heuristic to a single port.
func IsCandidate(p model.PortDescriptor) bool {
	if containsAny(strings.ToLower(p.Name), nameHints) {
		return true
	}
	if p.Kind != model.PortUSB {
		return false
	}
	return containsAny(strings.ToLower(p.Product), productHints)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
