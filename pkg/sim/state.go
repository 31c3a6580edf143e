// Package sim provides the dashboard snapshot model and its producer contract.
package sim

import "fmt"

// State represents what is currently feeding the snapshot.
type State string

const (
	// StateDisconnected indicates nothing is producing snapshots.
	StateDisconnected State = "disconnected"
	// StateListening indicates the UDP listener is bound and ingesting.
	StateListening State = "listening"
	// StateDemo indicates a scripted demo scenario is running.
	StateDemo State = "demo"
	// StateError indicates the last start attempt failed; see the status error.
	StateError State = "error"
)

// Active reports whether a producer owns the snapshot.
func (s State) Active() bool {
	return s == StateListening || s == StateDemo
}

// Source tags which producer wrote a snapshot.
type Source string

const (
	SourceNone Source = ""
	SourceLive Source = "live"
	SourceDemo Source = "demo"
)

// PitStatus mirrors the lap packet's pitStatus byte.
type PitStatus uint8

const (
	PitNone    PitStatus = 0
	PitPitting PitStatus = 1
	PitInArea  PitStatus = 2
)

func (p PitStatus) String() string {
	switch p {
	case PitNone:
		return "none"
	case PitPitting:
		return "pitting"
	case PitInArea:
		return "in_pit_area"
	}
	return "unknown"
}

// MarshalText renders the status name in JSON and CBOR.
func (p PitStatus) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PitStatus) UnmarshalText(b []byte) error {
	return parseName(p, string(b), PitInArea)
}

// ResultStatus mirrors the lap packet's resultStatus byte.
type ResultStatus uint8

const (
	ResultInvalid       ResultStatus = 0
	ResultInactive      ResultStatus = 1
	ResultActive        ResultStatus = 2
	ResultFinished      ResultStatus = 3
	ResultDNF           ResultStatus = 4
	ResultDSQ           ResultStatus = 5
	ResultNotClassified ResultStatus = 6
	ResultRetired       ResultStatus = 7
)

var resultNames = [...]string{"invalid", "inactive", "active", "finished", "dnf", "dsq", "not_classified", "retired"}

func (r ResultStatus) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// Terminal reports whether the status ends the car's race. Terminal statuses
// are not overwritten by later lap data.
func (r ResultStatus) Terminal() bool {
	switch r {
	case ResultDNF, ResultDSQ, ResultNotClassified, ResultRetired:
		return true
	}
	return false
}

// MarshalText renders the status name in JSON and CBOR.
func (r ResultStatus) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *ResultStatus) UnmarshalText(b []byte) error {
	return parseName(r, string(b), ResultRetired)
}

// SafetyCarStatus mirrors the session packet's safetyCarStatus byte.
type SafetyCarStatus uint8

const (
	SafetyCarNone      SafetyCarStatus = 0
	SafetyCarFull      SafetyCarStatus = 1
	SafetyCarVirtual   SafetyCarStatus = 2
	SafetyCarFormation SafetyCarStatus = 3
)

func (s SafetyCarStatus) String() string {
	switch s {
	case SafetyCarNone:
		return "none"
	case SafetyCarFull:
		return "full"
	case SafetyCarVirtual:
		return "virtual"
	case SafetyCarFormation:
		return "formation"
	}
	return "unknown"
}

// MarshalText renders the status name in JSON and CBOR.
func (s SafetyCarStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SafetyCarStatus) UnmarshalText(b []byte) error {
	return parseName(s, string(b), SafetyCarFormation)
}

// parseName finds the value in [0,last] whose String is name.
func parseName[T interface {
	~uint8
	fmt.Stringer
}](dst *T, name string, last T) error {
	for v := T(0); v <= last; v++ {
		if v.String() == name {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}
