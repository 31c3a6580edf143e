// Package core owns the lifecycle: which producer (live UDP or demo) writes
// the dashboard snapshot, and the start/stop transitions between them.
package core

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"apexgo/pkg/dashboard"
	"apexgo/pkg/haptics"
	"apexgo/pkg/layout"
	"apexgo/pkg/logging"
	"apexgo/pkg/packet"
	"apexgo/pkg/reconcile"
	"apexgo/pkg/sim"
	"apexgo/pkg/sim/demo"
	"apexgo/pkg/sim/udp"
	"apexgo/pkg/tracker"
)

// Config selects the live source and the demo behaviour.
type Config struct {
	ListenAddr  string
	MaxDatagram int
	// VehicleIndex is the car to follow; negative follows the player.
	VehicleIndex int
	Demo         demo.Config
	Registry     *layout.Registry
}

// Status is the externally visible lifecycle state.
type Status struct {
	State      sim.State `json:"state"`
	Scenario   string    `json:"scenario,omitempty"`
	ListenAddr string    `json:"listen_addr,omitempty"`
	LocalAddr  string    `json:"local_addr,omitempty"`
	TargetIP   string    `json:"target_ip,omitempty"`
	Peer       string    `json:"peer,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	Since      time.Time `json:"since"`
}

// Controller switches the single snapshot writer between the live and demo
// producers. All methods are safe for concurrent use and never block on
// network I/O.
type Controller struct {
	cfg     Config
	store   *dashboard.Store
	haptics haptics.Emitter
	stats   *tracker.Tracker
	logger  *slog.Logger

	mu         sync.Mutex
	state      sim.State
	since      time.Time
	lastErr    error
	writer     *dashboard.Writer
	listener   *udp.Listener
	runner     *demo.Runner
	scenario   string
	resettable []SessionResettable
}

// New creates a stopped controller. em and stats may be nil.
func New(cfg Config, store *dashboard.Store, em haptics.Emitter, stats *tracker.Tracker, logger *slog.Logger) *Controller {
	if cfg.Registry == nil {
		cfg.Registry = layout.Default()
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = udp.DefaultAddress
	}
	if em == nil {
		em = haptics.Discard
	}
	if stats == nil {
		stats = tracker.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		cfg:     cfg,
		store:   store,
		haptics: em,
		stats:   stats,
		logger:  logger.With("component", "core"),
		state:   sim.StateDisconnected,
		since:   time.Now(),
	}
}

// OnNewRun registers components to reset at the start of every run.
func (c *Controller) OnNewRun(r ...SessionResettable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resettable = append(c.resettable, r...)
}

// Stats returns the ingestion statistics.
func (c *Controller) Stats() *tracker.Tracker {
	return c.stats
}

// Start begins live ingestion. Starting while already listening is a no-op;
// a running demo is stopped first. A bind failure leaves the controller in
// the error state and is also returned.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == sim.StateListening {
		return nil
	}
	c.stopLocked()
	c.beginRun()

	w := c.store.Acquire()
	engine := reconcile.New(w, c.haptics, c.logger)
	l := udp.NewListener(c.cfg.ListenAddr, c.cfg.MaxDatagram, c.logger)
	if err := l.Start(c.ingest(w, engine)); err != nil {
		w.Revoke()
		c.fail(err)
		return err
	}

	c.writer = w
	c.listener = l
	c.transition(sim.StateListening)
	c.logger.Info("Live telemetry started", "addr", c.cfg.ListenAddr, "run", w.Token())
	return nil
}

// StartScenario runs the named demo scenario. Starting the scenario that is
// already running is a no-op; live ingestion or another scenario is
// stopped first.
func (c *Controller) StartScenario(name string) error {
	s, err := demo.Lookup(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == sim.StateDemo && c.scenario == s.Name {
		return nil
	}
	c.stopLocked()
	c.beginRun()

	w := c.store.Acquire()
	r := demo.NewRunner(c.cfg.Demo, w, c.haptics, c.logger)
	token := w.Token()
	r.Start(s, func() { c.finished(token) })

	c.writer = w
	c.runner = r
	c.scenario = s.Name
	c.transition(sim.StateDemo)
	return nil
}

// Stop ends whichever producer is running and resets the snapshot to its
// defaults. It returns once no producer can write. Stopping a stopped
// controller is a no-op.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writer == nil && c.state != sim.StateError {
		return
	}
	c.stopLocked()
	c.store.Reset()
	c.lastErr = nil
	c.transition(sim.StateDisconnected)
	c.logger.Info("Telemetry stopped")
}

// stopLocked revokes the write right before releasing the producer, so a
// datagram or tick already in flight is discarded instead of applied.
func (c *Controller) stopLocked() {
	if c.writer != nil {
		c.writer.Revoke()
		c.writer = nil
	}
	if c.listener != nil {
		c.listener.Stop()
		c.listener = nil
	}
	if c.runner != nil {
		c.runner.Stop()
		c.runner = nil
	}
	c.scenario = ""
}

// beginRun clears the previous session before a new producer starts.
func (c *Controller) beginRun() {
	c.store.Reset()
	c.lastErr = nil
	for _, r := range c.resettable {
		r.Reset()
	}
}

// finished is called by the demo runner when its plan ends. The demo stops
// itself and the snapshot returns to its defaults, unless another run has
// started in the meantime.
func (c *Controller) finished(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writer == nil || c.writer.Token() != token {
		return
	}
	c.logger.Info("Demo scenario finished", "scenario", c.scenario)
	c.stopLocked()
	c.store.Reset()
	c.transition(sim.StateDisconnected)
}

func (c *Controller) fail(err error) {
	c.lastErr = err
	c.transition(sim.StateError)
	c.logger.Error("Telemetry start failed", "error", err)
}

func (c *Controller) transition(s sim.State) {
	if c.state != s {
		c.since = time.Now()
	}
	c.state = s
}

// Status reports the lifecycle state. A listener whose read loop died is
// reported as an error without waiting for Stop.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Status{
		State:    c.state,
		Scenario: c.scenario,
		Since:    c.since,
	}
	if c.writer != nil {
		st.RunID = c.writer.Token()
	}
	err := c.lastErr
	if l := c.listener; l != nil {
		st.ListenAddr = c.cfg.ListenAddr
		st.LocalAddr = addrString(l.LocalAddr())
		st.Peer = addrString(l.Peer())
		if ip := l.Destination(); ip != nil {
			st.TargetIP = ip.String()
		}
		if !l.Listening() && l.LastError() != nil {
			err = l.LastError()
			st.State = sim.StateError
		}
	}
	if err != nil {
		st.LastError = err.Error()
	}
	return st
}

// State is a shorthand for Status().State.
func (c *Controller) State() sim.State {
	return c.Status().State
}

func addrString(a net.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// ingest returns the datagram handler for one live run. It is bound to the
// run's writer and engine, so nothing it does can leak into a later run.
func (c *Controller) ingest(w *dashboard.Writer, engine *reconcile.Engine) udp.Handler {
	reg := c.cfg.Registry
	vehicle := c.cfg.VehicleIndex
	return func(buf []byte, from net.Addr) {
		c.stats.TrackDatagram()

		d, err := packet.Decode(buf, reg, vehicle)
		if err != nil {
			c.stats.TrackDropped()
			logging.Trace(c.logger, "Datagram dropped", "from", addrString(from), "size", len(buf), "error", err)
			return
		}
		name := d.Header.PacketID.String()
		if d.Record == nil {
			c.stats.TrackUnknown(name)
			return
		}
		c.stats.TrackDecoded(name, d.ZeroFilled, d.FellBack)
		logging.Trace(c.logger, "Datagram decoded", "packet", name, "generation", d.Generation, "zero_filled", d.ZeroFilled)

		if !w.Active() || !engine.Apply(d) {
			c.stats.TrackDiscarded()
		}
	}
}

// ErrUnknownScenario is returned by StartScenario for names not in
// Scenarios.
var ErrUnknownScenario = demo.ErrUnknownScenario

// Scenarios lists the scenarios StartScenario accepts.
func Scenarios() []demo.Scenario {
	return demo.Scenarios()
}

// String renders a status for logs.
func (s Status) String() string {
	if s.LastError != "" {
		return fmt.Sprintf("%s (%s)", s.State, s.LastError)
	}
	return string(s.State)
}
