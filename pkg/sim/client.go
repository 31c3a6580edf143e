package sim

import (
	"time"
)

// Publisher receives whole snapshots. It returns false once the producer has
// lost its right to write, after which the producer should stop.
type Publisher interface {
	Publish(s Snapshot) bool
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(s Snapshot) bool

// Publish calls f(s).
func (f PublisherFunc) Publish(s Snapshot) bool {
	return f(s)
}

// Snapshot is the reconciled state a dashboard renders. It is a value type:
// producers build a complete copy and publish it in one hand-off.
type Snapshot struct {
	Source     Source
	Generation uint16

	Gear             int8
	Speed            uint16 // km/h
	RPM              uint16
	MaxRPM           uint16
	RevLightsPercent uint8
	DRS              bool

	Position       uint8
	TotalCars      uint8
	CurrentLap     uint8
	TotalLaps      uint8
	CurrentLapTime string
	LastLapTime    string

	TyreCompound string // display letter
	TyreAgeLaps  uint8
	TeamID       uint8
	TeamColor    string
	DriverName   string

	PitStatus       PitStatus
	SafetyCarStatus SafetyCarStatus
	ResultStatus    ResultStatus
	SessionEnded    bool

	Weather          uint8
	TrackTemperature int8
	AirTemperature   int8

	PacketsReceived uint64
	UpdatedAt       time.Time

	// Derived memory for rollover and gear-change detection.
	LastLapNumber uint8
	LastGear      int8
}

// Display defaults used until a producer reports real values.
const (
	DefaultMaxRPM    = 13000
	DefaultTotalCars = 20
	DefaultTeamColor = "#FFFFFF"
)

// DefaultSnapshot returns the state shown before any data arrives and after
// every stop.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		MaxRPM:          DefaultMaxRPM,
		TotalCars:       DefaultTotalCars,
		CurrentLapTime:  FormatLapTime(0),
		LastLapTime:     FormatLapTime(0),
		TyreCompound:    TyreUnknown,
		TeamColor:       DefaultTeamColor,
		PitStatus:       PitNone,
		SafetyCarStatus: SafetyCarNone,
		ResultStatus:    ResultActive,
	}
}

// RPMFraction returns RPM relative to MaxRPM, clamped to [0,1].
func (s Snapshot) RPMFraction() float64 {
	if s.MaxRPM == 0 {
		return 0
	}
	f := float64(s.RPM) / float64(s.MaxRPM)
	return min(max(f, 0), 1)
}

// GearLabel renders the gear as shown on a steering wheel display.
func (s Snapshot) GearLabel() string {
	switch {
	case s.Gear < 0:
		return "R"
	case s.Gear == 0:
		return "N"
	}
	return string(rune('0' + s.Gear))
}
