package demo

import (
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"apexgo/pkg/haptics"
	"apexgo/pkg/sim"
)

// ErrUnknownScenario is returned for scenario names not in Scenarios().
var ErrUnknownScenario = errors.New("unknown scenario")

// Config holds the demo tick and noise settings.
type Config struct {
	Tick             time.Duration
	Noise            bool
	FlashProbability float64
	// Seed fixes the noise sequence. Zero seeds from the clock.
	Seed int64

	DriverName string
	TeamID     uint8
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Tick:             50 * time.Millisecond,
		Noise:            true,
		FlashProbability: 0.15,
		DriverName:       "Apex DEMO",
		TeamID:           8,
	}
}

// Runner drives the flight plan on a ticker and publishes each frame.
type Runner struct {
	cfg     Config
	pub     sim.Publisher
	haptics haptics.Emitter
	logger  *slog.Logger
	now     func() time.Time

	mu       sync.Mutex
	stopCh   chan struct{}
	wg       sync.WaitGroup
	running  bool
	physics  *Physics
	lastGear int8
	ticks    uint64
}

// NewRunner creates a stopped runner.
func NewRunner(cfg Config, pub sim.Publisher, em haptics.Emitter, logger *slog.Logger) *Runner {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.DriverName == "" {
		cfg.DriverName = def.DriverName
	}
	if em == nil {
		em = haptics.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:     cfg,
		pub:     pub,
		haptics: em,
		logger:  logger.With("component", "demo"),
		now:     time.Now,
	}
}

// Start runs scenario until Stop, until the plan ends, or until the
// publisher rejects a frame. onFinished is called on its own goroutine when
// the plan runs to completion. Starting a running runner is a no-op.
func (r *Runner) Start(s Scenario, onFinished func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	var rng *rand.Rand
	if r.cfg.Noise {
		seed := r.cfg.Seed
		if seed == 0 {
			seed = r.now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	r.physics = NewPhysics(rng, r.cfg.FlashProbability)
	r.lastGear = 0
	r.ticks = 0
	r.running = true
	r.stopCh = make(chan struct{})

	r.logger.Info("Demo started", "scenario", s.Name, "offset", s.Offset)

	r.wg.Add(1)
	go r.loop(r.stopCh, r.now(), s.Offset, onFinished)
}

// Stop cancels the ticker and waits for the loop to exit. Stop is idempotent.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.running {
		close(r.stopCh)
		r.running = false
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) loop(stop <-chan struct{}, start time.Time, offset time.Duration, onFinished func()) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	if !r.tick(offset) {
		r.exit("revoked")
		return
	}

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			elapsed := r.now().Sub(start) + offset
			if elapsed >= Duration {
				r.exit("finished")
				if onFinished != nil {
					go onFinished()
				}
				return
			}
			if !r.tick(elapsed) {
				r.exit("revoked")
				return
			}
		}
	}
}

func (r *Runner) exit(reason string) {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
	r.logger.Info("Demo ended", "reason", reason)
}

// tick computes and publishes one frame. It returns false when the
// publisher no longer accepts frames.
func (r *Runner) tick(elapsed time.Duration) bool {
	frame := At(elapsed)
	dyn := r.physics.Step(frame.Speed)

	r.ticks++

	snap := r.Build(frame, dyn)
	snap.PacketsReceived = r.ticks
	snap.UpdatedAt = r.now()
	if !r.pub.Publish(snap) {
		return false
	}
	// Shifts are felt only once the frame showing them is on the dashboard.
	if dyn.Gear != r.lastGear {
		r.haptics.Emit(haptics.NewEvent(r.lastGear, dyn.Gear, r.now()))
		r.lastGear = dyn.Gear
	}
	return true
}

// Build renders a frame and its dynamics as a snapshot.
func (r *Runner) Build(f Frame, d Dynamics) sim.Snapshot {
	s := sim.DefaultSnapshot()
	s.Source = sim.SourceDemo

	s.Speed = d.Speed
	s.Gear = d.Gear
	s.RPM = d.RPM
	s.MaxRPM = maxRPM
	s.RevLightsPercent = d.RevLights
	s.DRS = f.Phase == PhaseFinalClimb && d.Speed > 290

	s.Position = f.Position
	s.TotalCars = sim.DefaultTotalCars
	s.CurrentLap = f.Lap
	s.TotalLaps = TotalLaps
	s.CurrentLapTime = sim.FormatLapTime(f.CurrentLapMS)
	s.LastLapTime = sim.FormatLapTime(f.LastLapMS)

	s.TyreCompound = f.Tyre
	s.TyreAgeLaps = f.TyreAge
	s.TeamID = r.cfg.TeamID
	s.TeamColor = sim.TeamColor(r.cfg.TeamID)
	s.DriverName = sim.DriverShortName(r.cfg.DriverName)

	s.PitStatus = f.PitStatus
	s.SafetyCarStatus = f.SafetyCarStatus
	s.ResultStatus = f.ResultStatus
	s.SessionEnded = f.SessionEnded

	s.TrackTemperature = 32
	s.AirTemperature = 24

	s.LastLapNumber = f.Lap
	s.LastGear = d.Gear
	return s
}
