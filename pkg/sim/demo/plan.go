// Package demo produces a scripted two-minute race as a stream of snapshots.
// Everything except the optional noise term is a pure function of the time
// elapsed since the demo started.
package demo

import (
	"math"
	"time"

	"apexgo/pkg/sim"
)

// Phase names one section of the flight plan.
type Phase string

const (
	PhaseAcceleration Phase = "acceleration"
	PhaseSafetyCar    Phase = "safety-car"
	PhaseRestart      Phase = "restart"
	PhasePitWindow    Phase = "pit-window"
	PhaseFinalClimb   Phase = "final-climb"
	PhaseSessionEnd   Phase = "session-end"
	PhaseFinished     Phase = "finished"
)

// Phase boundaries in seconds since the start.
const (
	safetyCarAt  = 30.0
	restartAt    = 50.0
	pitWindowAt  = 70.0
	finalClimbAt = 90.0
	sessionEndAt = 115.0
	finishAt     = 120.0
)

// Duration is the full length of the plan.
const Duration = time.Duration(finishAt) * time.Second

// Race shape.
const (
	TotalLaps = 6
	// lapSeconds of plan time make one lap.
	lapSeconds = 20.0
	// lapTimeScale stretches plan time into believable lap times.
	lapTimeScale = 4.6
	// pitLaneSpeed is the limiter speed in km/h.
	pitLaneSpeed = 80.0
)

// lapVariation keeps consecutive demo lap times from looking identical.
var lapVariation = [TotalLaps]int{0, 412, -230, 655, 120, -75}

// Frame is the deterministic part of a demo snapshot.
type Frame struct {
	Phase           Phase
	Elapsed         float64 // seconds
	Speed           float64 // km/h, before noise
	Position        uint8
	Lap             uint8
	CurrentLapMS    uint32
	LastLapMS       uint32
	PitStatus       sim.PitStatus
	SafetyCarStatus sim.SafetyCarStatus
	ResultStatus    sim.ResultStatus
	Tyre            string
	TyreAge         uint8
	SessionEnded    bool
}

// PhaseAt returns the phase containing elapsed seconds.
func PhaseAt(elapsed float64) Phase {
	switch {
	case elapsed < safetyCarAt:
		return PhaseAcceleration
	case elapsed < restartAt:
		return PhaseSafetyCar
	case elapsed < pitWindowAt:
		return PhaseRestart
	case elapsed < finalClimbAt:
		return PhasePitWindow
	case elapsed < sessionEndAt:
		return PhaseFinalClimb
	case elapsed < finishAt:
		return PhaseSessionEnd
	}
	return PhaseFinished
}

// At evaluates the plan at elapsed time since the start.
func At(elapsed time.Duration) Frame {
	t := max(elapsed.Seconds(), 0)
	f := Frame{
		Phase:        PhaseAt(t),
		Elapsed:      t,
		ResultStatus: sim.ResultActive,
	}

	lapIdx := min(int(t/lapSeconds), TotalLaps-1)
	f.Lap = uint8(lapIdx + 1)
	f.CurrentLapMS = uint32(math.Round(math.Mod(t, lapSeconds) * lapTimeScale * 1000))
	if lapIdx > 0 {
		f.LastLapMS = uint32(math.Round(lapSeconds*lapTimeScale*1000) + float64(lapVariation[lapIdx-1]))
	}

	f.Tyre, f.TyreAge = sim.TyreSoft, uint8(lapIdx)

	switch f.Phase {
	case PhaseAcceleration:
		f.Speed = ramp(t, 0, safetyCarAt, 0, 310)
		f.Position = step(t, 0, 6, 10, 9, 8, 8, 7)

	case PhaseSafetyCar:
		f.Speed = ramp(t, safetyCarAt, safetyCarAt+4, 310, 140)
		f.Position = 7
		f.SafetyCarStatus = sim.SafetyCarFull

	case PhaseRestart:
		f.Speed = ramp(t, restartAt, pitWindowAt, 140, 305)
		f.Position = step(t, restartAt, 5, 7, 6, 6, 5)

	case PhasePitWindow:
		pitWindow(t, &f)

	case PhaseFinalClimb:
		f.Speed = 285 + 25*math.Sin(2*math.Pi*(t-finalClimbAt)/6.25)
		f.Position = 7 - uint8(min(int((t-finalClimbAt)/((sessionEndAt-finalClimbAt)/7)), 6))
		f.Tyre, f.TyreAge = sim.TyreMedium, tyreAgeAfterStop(t)

	case PhaseSessionEnd, PhaseFinished:
		f.Speed = ramp(t, sessionEndAt, finishAt, 300, 120)
		f.Position = 1
		f.SessionEnded = true
		f.ResultStatus = sim.ResultFinished
		f.Tyre, f.TyreAge = sim.TyreMedium, tyreAgeAfterStop(t)
	}
	return f
}

// pitWindow: brake into the pit lane, stop in the box, change to mediums and
// rejoin behind the cars that did not stop.
func pitWindow(t float64, f *Frame) {
	switch {
	case t < 74:
		f.Speed = ramp(t, 70, 74, 305, pitLaneSpeed)
		f.PitStatus = sim.PitPitting
		f.Position = 5
	case t < 78:
		f.Speed = pitLaneSpeed
		f.PitStatus = sim.PitPitting
		f.Position = 5
	case t < 81:
		f.Speed = 0
		f.PitStatus = sim.PitInArea
		f.Position = 9
	case t < 85:
		f.Speed = pitLaneSpeed
		f.PitStatus = sim.PitPitting
		f.Position = 9
	default:
		f.Speed = ramp(t, 85, finalClimbAt, pitLaneSpeed, 260)
		f.Position = 8
		f.Tyre, f.TyreAge = sim.TyreMedium, 0
	}
}

// tyreAgeAfterStop counts laps started since the stop at 85s.
func tyreAgeAfterStop(t float64) uint8 {
	stopAt := 85.0
	return uint8(max(int(t/lapSeconds)-int(stopAt/lapSeconds), 0))
}

// ramp interpolates linearly from v0 at t0 to v1 at t1 and holds v1 after.
func ramp(t, t0, t1, v0, v1 float64) float64 {
	if t <= t0 {
		return v0
	}
	if t >= t1 {
		return v1
	}
	return v0 + (v1-v0)*(t-t0)/(t1-t0)
}

// step picks positions[i] for the i-th interval of width seconds after t0,
// holding the last entry.
func step(t, t0, width float64, positions ...uint8) uint8 {
	i := int((t - t0) / width)
	i = min(max(i, 0), len(positions)-1)
	return positions[i]
}
