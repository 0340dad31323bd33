package link

import (
	"errors"
	"sync"
)

// ErrUnplugged is returned by FakePort writes after Unplug.
var ErrUnplugged = errors.New("device unplugged")

// FakePort records writes in memory. Used by tests in other packages.
type FakePort struct {
	mu        sync.Mutex
	name      string
	lines     []string
	unplugged bool
	closed    bool
}

func (p *FakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unplugged || p.closed {
		return 0, ErrUnplugged
	}
	p.lines = append(p.lines, string(b))
	return len(b), nil
}

func (p *FakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Unplug makes every following write fail.
func (p *FakePort) Unplug() {
	p.mu.Lock()
	p.unplugged = true
	p.mu.Unlock()
}

func (p *FakePort) Name() string { return p.name }

func (p *FakePort) Lines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.lines...)
}

func (p *FakePort) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// FakeOpener hands out FakePorts for the names in Available.
type FakeOpener struct {
	mu        sync.Mutex
	available map[string]bool
	opened    []*FakePort
}

func NewFakeOpener(available ...string) *FakeOpener {
	o := &FakeOpener{available: make(map[string]bool)}
	for _, name := range available {
		o.available[name] = true
	}
	return o
}

// SetAvailable plugs or unplugs a device name.
func (o *FakeOpener) SetAvailable(name string, ok bool) {
	o.mu.Lock()
	o.available[name] = ok
	o.mu.Unlock()
}

func (o *FakeOpener) Open(name string) (Port, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.available[name] {
		return nil, errors.New("no such file or directory")
	}
	p := &FakePort{name: name}
	o.opened = append(o.opened, p)
	return p, nil
}

// Opened returns every port handed out so far, oldest first.
func (o *FakeOpener) Opened() []*FakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]*FakePort(nil), o.opened...)
}

// Last returns the most recently opened port, or nil.
func (o *FakeOpener) Last() *FakePort {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.opened) == 0 {
		return nil
	}
	return o.opened[len(o.opened)-1]
}
