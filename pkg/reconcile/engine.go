// Package reconcile folds decoded packets into the dashboard snapshot.
//
// Each packet type owns a subset of the snapshot fields. There is no
// cross-type atomicity: a field keeps its last value until a packet that
// owns it arrives, and the most recent packet wins.
package reconcile

import (
	"log/slog"
	"sync"
	"time"

	"apexgo/pkg/haptics"
	"apexgo/pkg/layout"
	"apexgo/pkg/packet"
	"apexgo/pkg/sim"
)

// Engine owns the working snapshot for one live run.
type Engine struct {
	mu      sync.Mutex
	snap    sim.Snapshot
	pub     sim.Publisher
	haptics haptics.Emitter
	logger  *slog.Logger
	now     func() time.Time
}

// New creates an engine that publishes through pub and emits gear changes to em.
func New(pub sim.Publisher, em haptics.Emitter, logger *slog.Logger) *Engine {
	if em == nil {
		em = haptics.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		pub:     pub,
		haptics: em,
		logger:  logger.With("component", "reconcile"),
		now:     time.Now,
	}
	e.snap = e.initial()
	return e
}

func (e *Engine) initial() sim.Snapshot {
	s := sim.DefaultSnapshot()
	s.Source = sim.SourceLive
	return s
}

// Snapshot returns a copy of the working snapshot.
func (e *Engine) Snapshot() sim.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// Reset restores the defaults, clearing the session-end latch and the
// lap and gear memory.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = e.initial()
}

// Apply merges one decoded datagram and publishes the complete result. It
// returns false when the publisher rejected the snapshot because the run
// that owns this engine has ended.
func (e *Engine) Apply(d packet.Decoded) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	prevGear := e.snap.LastGear
	if !e.merge(d) {
		return true
	}
	e.snap.Generation = uint16(d.Generation)
	e.snap.PacketsReceived++
	e.snap.UpdatedAt = e.now()
	if !e.pub.Publish(e.snap) {
		return false
	}
	if gear := e.snap.LastGear; gear != prevGear {
		e.haptics.Emit(haptics.NewEvent(prevGear, gear, e.snap.UpdatedAt))
	}
	return true
}

// merge applies the record's rules and reports whether anything was owned
// by this packet type.
func (e *Engine) merge(d packet.Decoded) bool {
	switch rec := d.Record.(type) {
	case packet.TelemetryRecord:
		e.telemetry(rec)
	case packet.LapRecord:
		e.lap(rec)
	case packet.StatusRecord:
		e.status(rec)
	case packet.ParticipantRecord:
		e.participant(rec)
	case packet.SessionRecord:
		e.session(rec)
	case packet.EventRecord:
		e.event(rec, int(d.Header.PlayerCarIndex))
	case packet.ClassificationRecord:
		e.classification(rec)
	default:
		return false
	}
	return true
}

func (e *Engine) telemetry(rec packet.TelemetryRecord) {
	s := &e.snap
	s.Speed = rec.Speed
	s.RPM = rec.EngineRPM
	s.RevLightsPercent = rec.RevLightsPercent
	s.DRS = rec.DRS == 1
	s.Gear = rec.Gear
	s.LastGear = rec.Gear
}

func (e *Engine) lap(rec packet.LapRecord) {
	s := &e.snap
	s.Position = rec.CarPosition
	s.CurrentLap = rec.CurrentLapNum
	s.PitStatus = sim.PitStatus(rec.PitStatus)
	s.CurrentLapTime = sim.FormatLapTime(rec.CurrentLapTimeMS)

	result := sim.ResultStatus(rec.ResultStatus)
	if !s.ResultStatus.Terminal() || result.Terminal() {
		s.ResultStatus = result
	}

	rollover := s.LastLapNumber > 0 && rec.CurrentLapNum > s.LastLapNumber
	joined := s.LastLapNumber == 0 && rec.LastLapTimeMS > 0
	if rollover || joined {
		s.LastLapTime = sim.FormatLapTime(rec.LastLapTimeMS)
	}
	if rollover {
		e.logger.Debug("Lap completed", "lap", s.LastLapNumber, "time", s.LastLapTime)
	}
	s.LastLapNumber = rec.CurrentLapNum
}

func (e *Engine) status(rec packet.StatusRecord) {
	s := &e.snap
	if s.PitStatus == sim.PitNone {
		s.TyreCompound = sim.TyreLetter(rec.VisualTyreCompound)
		s.TyreAgeLaps = rec.TyresAgeLaps
	}
	if rec.MaxRPM > 0 {
		s.MaxRPM = rec.MaxRPM
	}
}

func (e *Engine) participant(rec packet.ParticipantRecord) {
	s := &e.snap
	if rec.NumActiveCars > 0 {
		s.TotalCars = rec.NumActiveCars
	}
	if rec.Name != "" && rec.Name != packet.UnknownName {
		s.TeamID = rec.TeamID
		s.TeamColor = sim.TeamColor(rec.TeamID)
		s.DriverName = sim.DriverShortName(rec.Name)
	}
}

func (e *Engine) session(rec packet.SessionRecord) {
	s := &e.snap
	s.TotalLaps = rec.TotalLaps
	s.SafetyCarStatus = sim.SafetyCarStatus(rec.SafetyCarStatus)
	s.Weather = rec.Weather
	s.TrackTemperature = rec.TrackTemperature
	s.AirTemperature = rec.AirTemperature
}

// event applies race-control events. Retirement is matched against the
// player's car even when another car is being followed.
func (e *Engine) event(rec packet.EventRecord, playerIndex int) {
	s := &e.snap
	switch rec.Code {
	case layout.EventRetirement:
		if rec.HasVehicle && int(rec.VehicleIndex) == playerIndex {
			s.ResultStatus = sim.ResultRetired
			e.logger.Info("Player car retired", "vehicle", playerIndex)
		}
	case layout.EventChequeredFlag, layout.EventSessionEnded:
		e.endSession(rec.Code)
	}
}

func (e *Engine) classification(rec packet.ClassificationRecord) {
	s := &e.snap
	if rec.NumCars > 0 {
		s.TotalCars = rec.NumCars
	}
	if rec.Position > 0 {
		s.Position = rec.Position
	}
	if result := sim.ResultStatus(rec.ResultStatus); result >= sim.ResultFinished {
		s.ResultStatus = result
	}
	e.endSession("classification")
}

func (e *Engine) endSession(trigger string) {
	if e.snap.SessionEnded {
		return
	}
	e.snap.SessionEnded = true
	e.logger.Info("Session ended", "trigger", trigger)
}
