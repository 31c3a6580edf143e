package sim

import (
	"encoding/json"
	"testing"
)

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		ms   uint32
		want string
	}{
		{0, "0:00.000"},
		{999, "0:00.999"},
		{65432, "1:05.432"},
		{91234, "1:31.234"},
		{600000, "10:00.000"},
		{3599999, "59:59.999"},
	}

	for _, tt := range tests {
		if got := FormatLapTime(tt.ms); got != tt.want {
			t.Errorf("FormatLapTime(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTyreLetter(t *testing.T) {
	tests := []struct {
		id   uint8
		want string
	}{
		{16, "S"}, {17, "M"}, {18, "H"}, {7, "I"}, {8, "W"},
		{0, "U"}, {9, "U"}, {255, "U"},
	}
	for _, tt := range tests {
		if got := TyreLetter(tt.id); got != tt.want {
			t.Errorf("TyreLetter(%d) = %q, want %q", tt.id, got, tt.want)
		}
		if tt.want != TyreUnknown && TyreCompoundID(tt.want) != tt.id {
			t.Errorf("TyreCompoundID(%q) = %d, want %d", tt.want, TyreCompoundID(tt.want), tt.id)
		}
	}
}

func TestDriverShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Max VERSTAPPEN", "VER"},
		{"lando norris", "NOR"},
		{"ZHOU", "ZHO"},
		{"Guanyu Zhou", "ZHO"},
		{"Kevin Ma", "MA"},
		{"Sergio Pérez", "PÉR"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := DriverShortName(tt.name); got != tt.want {
			t.Errorf("DriverShortName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestTeamColor(t *testing.T) {
	if got := TeamColor(8); got != "#FF8000" {
		t.Errorf("TeamColor(8) = %q", got)
	}
	if got := TeamColor(104); got != DefaultTeamColor {
		t.Errorf("unknown team should use default, got %q", got)
	}
}

func TestDefaultSnapshot(t *testing.T) {
	s := DefaultSnapshot()
	if s.Gear != 0 || s.Speed != 0 || s.RPM != 0 {
		t.Errorf("expected zero motion, got gear=%d speed=%d rpm=%d", s.Gear, s.Speed, s.RPM)
	}
	if s.ResultStatus != ResultActive {
		t.Errorf("expected active result, got %s", s.ResultStatus)
	}
	if s.PitStatus != PitNone || s.SafetyCarStatus != SafetyCarNone || s.SessionEnded {
		t.Error("expected clean race status")
	}
	if s.CurrentLapTime != "0:00.000" || s.TyreCompound != "U" {
		t.Errorf("unexpected display defaults: %q %q", s.CurrentLapTime, s.TyreCompound)
	}
}

func TestSnapshotHelpers(t *testing.T) {
	tests := []struct {
		gear int8
		want string
	}{
		{-1, "R"}, {0, "N"}, {1, "1"}, {8, "8"},
	}
	for _, tt := range tests {
		if got := (Snapshot{Gear: tt.gear}).GearLabel(); got != tt.want {
			t.Errorf("GearLabel(%d) = %q, want %q", tt.gear, got, tt.want)
		}
	}

	if f := (Snapshot{RPM: 15000, MaxRPM: 13000}).RPMFraction(); f != 1 {
		t.Errorf("RPMFraction should clamp, got %v", f)
	}
	if f := (Snapshot{RPM: 6500}).RPMFraction(); f != 0 {
		t.Errorf("RPMFraction without max should be 0, got %v", f)
	}
}

func TestStatusText(t *testing.T) {
	v := struct {
		Pit    PitStatus       `json:"pit"`
		Result ResultStatus    `json:"result"`
		SC     SafetyCarStatus `json:"sc"`
	}{PitInArea, ResultRetired, SafetyCarVirtual}

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"pit":"in_pit_area","result":"retired","sc":"virtual"}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	if !ResultRetired.Terminal() || !ResultDSQ.Terminal() || ResultFinished.Terminal() || ResultActive.Terminal() {
		t.Error("unexpected Terminal classification")
	}
	if ResultStatus(42).String() != "unknown" {
		t.Error("out of range result status should be unknown")
	}
	if !StateDemo.Active() || StateError.Active() {
		t.Error("unexpected Active classification")
	}
}

func TestStatusTextRoundTrip(t *testing.T) {
	var p PitStatus
	if err := p.UnmarshalText([]byte("in_pit_area")); err != nil || p != PitInArea {
		t.Errorf("PitStatus = %v, %v", p, err)
	}
	var r ResultStatus
	if err := r.UnmarshalText([]byte("dsq")); err != nil || r != ResultDSQ {
		t.Errorf("ResultStatus = %v, %v", r, err)
	}
	var s SafetyCarStatus
	if err := s.UnmarshalText([]byte("bogus")); err == nil {
		t.Error("expected error for unknown safety car status")
	}
}
