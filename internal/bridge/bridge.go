// Package bridge streams host telemetry to the display and keeps the serial
// link alive. All connection state lives in one Bridge value that is shared
// between the tick loop and command callers.
package bridge

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/VladimirGitsarev/Tinytosh/internal/link"
	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"github.com/VladimirGitsarev/Tinytosh/internal/ports"
)

// TickInterval is the fixed sampling and write period.
const TickInterval = time.Second

// ScanThreshold is how many idle ticks are tolerated before a rescan;
// the scan happens on the tick after that.
const ScanThreshold = 2

// Status texts shown to the UI. StatusConnected is only returned by
// ToggleConnection; a connected state carries an empty status text.
const (
	StatusWaiting      = "Waiting for connection..."
	StatusDisconnected = "Disconnected"
	StatusConnected    = "Connected"
)

// Sampler produces one telemetry snapshot per call.
type Sampler interface {
	Sample() model.Sample
}

// OpenError reports a port that could not be opened on request.
type OpenError struct {
	Port string
	Err  error
}

func (e *OpenError) Error() string { return "Connection failed: " + e.Err.Error() }

func (e *OpenError) Unwrap() error { return e.Err }

// Bridge is the connection manager plus the state it shares with callers.
type Bridge struct {
	sampler Sampler
	catalog ports.Catalog
	opener  link.Opener
	log     zerolog.Logger

	// ops serializes port opens and closes. Lock order: ops, then mu.
	ops sync.Mutex

	// wmu serializes serial writes. It is never held together with ops or
	// mu, so a stuck write cannot block commands; Disconnect closes the
	// handle underneath it instead.
	wmu sync.Mutex

	mu     sync.Mutex
	stats  string
	sample model.Sample
	port   link.Port
	state  model.ConnectionState
}

func New(s Sampler, c ports.Catalog, o link.Opener, log zerolog.Logger) *Bridge {
	return &Bridge{
		sampler: s,
		catalog: c,
		opener:  o,
		log:     log.With().Str("component", "bridge").Logger(),
		stats:   "{}",
		state:   model.ConnectionState{StatusText: StatusWaiting},
	}
}

// Run ticks once immediately and then every TickInterval until ctx is done.
// The open port, if any, is closed on return.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Info().Dur("interval", TickInterval).Msg("bridge loop started")
	defer b.log.Info().Msg("bridge loop stopped")
	defer b.closePort()

	b.safeTick()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			b.safeTick()
		}
	}
}

func (b *Bridge) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Msg("tick panicked")
		}
	}()
	b.Tick()
}

// Tick samples the host, pushes the snapshot to the display and, after enough
// idle ticks, looks for a device to reconnect to.
func (b *Bridge) Tick() {
	sample := b.sampler.Sample()
	payload, err := json.Marshal(sample)
	if err != nil {
		b.log.Error().Err(err).Msg("encode sample")
		payload = []byte("{}")
	}

	b.mu.Lock()
	b.sample = sample
	b.stats = string(payload)
	port := b.port
	scan := port == nil && b.idleLocked()
	b.mu.Unlock()

	if port != nil {
		b.deliver(port, payload)
	}
	if scan {
		b.scan()
	}
}

// idleLocked advances the idle counter and reports whether a scan is due.
func (b *Bridge) idleLocked() bool {
	if b.state.Manual {
		return false
	}
	b.state.FailCount++
	if b.state.FailCount <= ScanThreshold {
		return false
	}
	b.state.FailCount = 0
	return true
}

// deliver writes payload to port without holding mu. The outcome is applied
// only if port is still the active handle; a Connect or Disconnect that ran
// meanwhile owns the state.
func (b *Bridge) deliver(port link.Port, payload []byte) {
	b.wmu.Lock()
	err := link.WriteLine(port, payload)
	b.wmu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.port != port {
		return
	}
	if err == nil {
		b.state.FailCount = 0
		return
	}
	b.log.Warn().Err(err).Str("port", b.state.PortName).Msg("write failed, link lost")
	b.closeLocked()
	b.state = model.ConnectionState{}
}

func (b *Bridge) scan() {
	if !b.ops.TryLock() {
		b.log.Debug().Msg("connect in progress, skipping scan")
		return
	}
	defer b.ops.Unlock()

	list, err := b.catalog.List()
	if err != nil {
		b.log.Debug().Err(err).Msg("enumerate ports")
		return
	}
	cand, ok := ports.FindCandidate(list)
	if !ok {
		b.log.Debug().Int("ports", len(list)).Msg("no candidate port")
		return
	}
	p, err := b.opener.Open(cand.Name)
	if err != nil {
		b.log.Debug().Err(err).Str("port", cand.Name).Msg("auto-connect failed")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.port != nil || b.state.Manual {
		_ = p.Close()
		return
	}
	b.port = p
	b.state = model.ConnectionState{PortName: cand.Name}
	b.log.Info().Str("port", cand.Name).Str("product", cand.Product).Msg("auto-connected")
}

// Connect closes any open link and opens name. On failure the status text
// carries the error and the manual flag is left as it was.
func (b *Bridge) Connect(name string) error {
	b.ops.Lock()
	defer b.ops.Unlock()

	// mu is released for the open; ticks in between see an idle link and
	// any scan they trigger is skipped because ops is held.
	b.mu.Lock()
	b.closeLocked()
	b.state.PortName = ""
	b.mu.Unlock()

	p, err := b.opener.Open(name)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		oe := &OpenError{Port: name, Err: err}
		b.state.StatusText = oe.Error()
		b.log.Warn().Err(err).Str("port", name).Msg("connect failed")
		return oe
	}
	b.port = p
	b.state = model.ConnectionState{PortName: name}
	b.log.Info().Str("port", name).Msg("connected")
	return nil
}

// Disconnect closes the link and suspends auto-discovery until the next
// Connect or successful scan.
func (b *Bridge) Disconnect() {
	b.ops.Lock()
	defer b.ops.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.port != nil {
		b.log.Info().Str("port", b.state.PortName).Msg("disconnected by request")
	}
	b.closeLocked()
	b.state = model.ConnectionState{Manual: true, StatusText: StatusDisconnected}
}

func (b *Bridge) closePort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
	b.state.PortName = ""
}

func (b *Bridge) closeLocked() {
	if b.port == nil {
		return
	}
	if err := b.port.Close(); err != nil {
		b.log.Debug().Err(err).Msg("close port")
	}
	b.port = nil
}

// State returns a copy of the connection state.
func (b *Bridge) State() model.ConnectionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
