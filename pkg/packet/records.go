package packet

import "apexgo/pkg/layout"

// Record is a decoded payload tagged with the packet type it came from.
type Record interface {
	PacketID() layout.PacketID
}

// TelemetryRecord is one vehicle's CarTelemetryData.
type TelemetryRecord struct {
	Speed                   uint16
	Throttle                float32
	Steer                   float32
	Brake                   float32
	Clutch                  uint8
	Gear                    int8
	EngineRPM               uint16
	DRS                     uint8
	RevLightsPercent        uint8
	RevLightsBitValue       uint16
	BrakesTemperature       [4]uint16
	TyresSurfaceTemperature [4]uint8
	TyresInnerTemperature   [4]uint8
	EngineTemperature       uint16
	TyresPressure           [4]float32
	SurfaceType             [4]uint8
}

func (TelemetryRecord) PacketID() layout.PacketID { return layout.PacketCarTelemetry }

func (t *TelemetryRecord) visit(c fieldCodec, o layout.TelemetryOffsets) {
	c.u16(o.Speed, &t.Speed)
	c.f32(o.Throttle, &t.Throttle)
	c.f32(o.Steer, &t.Steer)
	c.f32(o.Brake, &t.Brake)
	c.u8(o.Clutch, &t.Clutch)
	c.i8(o.Gear, &t.Gear)
	c.u16(o.EngineRPM, &t.EngineRPM)
	c.u8(o.DRS, &t.DRS)
	c.u8(o.RevLightsPercent, &t.RevLightsPercent)
	c.u16(o.RevLightsBitValue, &t.RevLightsBitValue)
	c.u16s(o.BrakesTemperature, t.BrakesTemperature[:])
	c.u8s(o.TyresSurfaceTemperature, t.TyresSurfaceTemperature[:])
	c.u8s(o.TyresInnerTemperature, t.TyresInnerTemperature[:])
	c.u16(o.EngineTemperature, &t.EngineTemperature)
	c.f32s(o.TyresPressure, t.TyresPressure[:])
	c.u8s(o.SurfaceType, t.SurfaceType[:])
}

// LapRecord is one vehicle's LapData. Minute and delta fields a generation
// does not carry stay zero.
type LapRecord struct {
	LastLapTimeMS               uint32
	CurrentLapTimeMS            uint32
	Sector1TimeMS               uint16
	Sector1TimeMinutes          uint8
	Sector2TimeMS               uint16
	Sector2TimeMinutes          uint8
	DeltaToCarInFrontMS         uint16
	DeltaToCarInFrontMinutes    uint8
	DeltaToRaceLeaderMS         uint16
	DeltaToRaceLeaderMinutes    uint8
	LapDistance                 float32
	TotalDistance               float32
	SafetyCarDelta              float32
	CarPosition                 uint8
	CurrentLapNum               uint8
	PitStatus                   uint8
	NumPitStops                 uint8
	Sector                      uint8
	CurrentLapInvalid           uint8
	Penalties                   uint8
	TotalWarnings               uint8
	CornerCuttingWarnings       uint8
	NumUnservedDriveThroughPens uint8
	NumUnservedStopGoPens       uint8
	GridPosition                uint8
	DriverStatus                uint8
	ResultStatus                uint8
	PitLaneTimerActive          uint8
	PitLaneTimeInLaneMS         uint16
	PitStopTimerMS              uint16
	PitStopShouldServePen       uint8
	SpeedTrapFastestSpeed       float32
	SpeedTrapFastestLap         uint8
}

func (LapRecord) PacketID() layout.PacketID { return layout.PacketLapData }

func (l *LapRecord) visit(c fieldCodec, o layout.LapOffsets) {
	c.u32(o.LastLapTimeMS, &l.LastLapTimeMS)
	c.u32(o.CurrentLapTimeMS, &l.CurrentLapTimeMS)
	c.u16(o.Sector1TimeMS, &l.Sector1TimeMS)
	c.u8(o.Sector1TimeMinutes, &l.Sector1TimeMinutes)
	c.u16(o.Sector2TimeMS, &l.Sector2TimeMS)
	c.u8(o.Sector2TimeMinutes, &l.Sector2TimeMinutes)
	c.u16(o.DeltaToCarInFrontMS, &l.DeltaToCarInFrontMS)
	c.u8(o.DeltaToCarInFrontMinutes, &l.DeltaToCarInFrontMinutes)
	c.u16(o.DeltaToRaceLeaderMS, &l.DeltaToRaceLeaderMS)
	c.u8(o.DeltaToRaceLeaderMinutes, &l.DeltaToRaceLeaderMinutes)
	c.f32(o.LapDistance, &l.LapDistance)
	c.f32(o.TotalDistance, &l.TotalDistance)
	c.f32(o.SafetyCarDelta, &l.SafetyCarDelta)
	c.u8(o.CarPosition, &l.CarPosition)
	c.u8(o.CurrentLapNum, &l.CurrentLapNum)
	c.u8(o.PitStatus, &l.PitStatus)
	c.u8(o.NumPitStops, &l.NumPitStops)
	c.u8(o.Sector, &l.Sector)
	c.u8(o.CurrentLapInvalid, &l.CurrentLapInvalid)
	c.u8(o.Penalties, &l.Penalties)
	c.u8(o.TotalWarnings, &l.TotalWarnings)
	c.u8(o.CornerCuttingWarnings, &l.CornerCuttingWarnings)
	c.u8(o.NumUnservedDriveThroughPens, &l.NumUnservedDriveThroughPens)
	c.u8(o.NumUnservedStopGoPens, &l.NumUnservedStopGoPens)
	c.u8(o.GridPosition, &l.GridPosition)
	c.u8(o.DriverStatus, &l.DriverStatus)
	c.u8(o.ResultStatus, &l.ResultStatus)
	c.u8(o.PitLaneTimerActive, &l.PitLaneTimerActive)
	c.u16(o.PitLaneTimeInLaneMS, &l.PitLaneTimeInLaneMS)
	c.u16(o.PitStopTimerMS, &l.PitStopTimerMS)
	c.u8(o.PitStopShouldServePen, &l.PitStopShouldServePen)
	c.f32(o.SpeedTrapFastestSpeed, &l.SpeedTrapFastestSpeed)
	c.u8(o.SpeedTrapFastestLap, &l.SpeedTrapFastestLap)
}

// StatusRecord is one vehicle's CarStatusData.
type StatusRecord struct {
	TractionControl         uint8
	AntiLockBrakes          uint8
	FuelMix                 uint8
	FrontBrakeBias          uint8
	PitLimiterStatus        uint8
	FuelInTank              float32
	FuelCapacity            float32
	FuelRemainingLaps       float32
	MaxRPM                  uint16
	IdleRPM                 uint16
	MaxGears                uint8
	DRSAllowed              uint8
	DRSActivationDistance   uint16
	ActualTyreCompound      uint8
	VisualTyreCompound      uint8
	TyresAgeLaps            uint8
	VehicleFIAFlags         int8
	EnginePowerICE          float32
	EnginePowerMGUK         float32
	ERSStoreEnergy          float32
	ERSDeployMode           uint8
	ERSHarvestedThisLapMGUK float32
	ERSHarvestedThisLapMGUH float32
	ERSDeployedThisLap      float32
	NetworkPaused           uint8
}

func (StatusRecord) PacketID() layout.PacketID { return layout.PacketCarStatus }

func (s *StatusRecord) visit(c fieldCodec, o layout.StatusOffsets) {
	c.u8(o.TractionControl, &s.TractionControl)
	c.u8(o.AntiLockBrakes, &s.AntiLockBrakes)
	c.u8(o.FuelMix, &s.FuelMix)
	c.u8(o.FrontBrakeBias, &s.FrontBrakeBias)
	c.u8(o.PitLimiterStatus, &s.PitLimiterStatus)
	c.f32(o.FuelInTank, &s.FuelInTank)
	c.f32(o.FuelCapacity, &s.FuelCapacity)
	c.f32(o.FuelRemainingLaps, &s.FuelRemainingLaps)
	c.u16(o.MaxRPM, &s.MaxRPM)
	c.u16(o.IdleRPM, &s.IdleRPM)
	c.u8(o.MaxGears, &s.MaxGears)
	c.u8(o.DRSAllowed, &s.DRSAllowed)
	c.u16(o.DRSActivationDistance, &s.DRSActivationDistance)
	c.u8(o.ActualTyreCompound, &s.ActualTyreCompound)
	c.u8(o.VisualTyreCompound, &s.VisualTyreCompound)
	c.u8(o.TyresAgeLaps, &s.TyresAgeLaps)
	c.i8(o.VehicleFIAFlags, &s.VehicleFIAFlags)
	c.f32(o.EnginePowerICE, &s.EnginePowerICE)
	c.f32(o.EnginePowerMGUK, &s.EnginePowerMGUK)
	c.f32(o.ERSStoreEnergy, &s.ERSStoreEnergy)
	c.u8(o.ERSDeployMode, &s.ERSDeployMode)
	c.f32(o.ERSHarvestedThisLapMGUK, &s.ERSHarvestedThisLapMGUK)
	c.f32(o.ERSHarvestedThisLapMGUH, &s.ERSHarvestedThisLapMGUH)
	c.f32(o.ERSDeployedThisLap, &s.ERSDeployedThisLap)
	c.u8(o.NetworkPaused, &s.NetworkPaused)
}

// RGB is one livery colour.
type RGB struct {
	Red, Green, Blue uint8
}

// ParticipantRecord is one vehicle's ParticipantData plus the packet-level
// active car count.
type ParticipantRecord struct {
	NumActiveCars   uint8
	AIControlled    uint8
	DriverID        uint8
	NetworkID       uint8
	TeamID          uint8
	MyTeam          uint8
	RaceNumber      uint8
	Nationality     uint8
	Name            string
	YourTelemetry   uint8
	ShowOnlineNames uint8
	TechLevel       uint16
	Platform        uint8
	NumColours      uint8
	LiveryColours   [4]RGB
}

func (ParticipantRecord) PacketID() layout.PacketID { return layout.PacketParticipants }

func (p *ParticipantRecord) visit(c fieldCodec, o layout.ParticipantOffsets) {
	c.u8(o.AIControlled, &p.AIControlled)
	c.u8(o.DriverID, &p.DriverID)
	c.u8(o.NetworkID, &p.NetworkID)
	c.u8(o.TeamID, &p.TeamID)
	c.u8(o.MyTeam, &p.MyTeam)
	c.u8(o.RaceNumber, &p.RaceNumber)
	c.u8(o.Nationality, &p.Nationality)
	c.name(o.Name, o.NameLength, &p.Name)
	c.u8(o.YourTelemetry, &p.YourTelemetry)
	c.u8(o.ShowOnlineNames, &p.ShowOnlineNames)
	c.u16(o.TechLevel, &p.TechLevel)
	c.u8(o.Platform, &p.Platform)
	c.u8(o.NumColours, &p.NumColours)
	if o.LiveryColours != layout.Absent {
		var raw [12]uint8
		for i, col := range p.LiveryColours {
			raw[3*i], raw[3*i+1], raw[3*i+2] = col.Red, col.Green, col.Blue
		}
		c.u8s(o.LiveryColours, raw[:])
		for i := range p.LiveryColours {
			p.LiveryColours[i] = RGB{raw[3*i], raw[3*i+1], raw[3*i+2]}
		}
	}
}

// SessionRecord is the decoded prefix of PacketSessionData plus the safety
// car and network fields that follow the marshal zones.
type SessionRecord struct {
	Weather           uint8
	TrackTemperature  int8
	AirTemperature    int8
	TotalLaps         uint8
	TrackLength       uint16
	SessionType       uint8
	TrackID           int8
	Formula           uint8
	SessionTimeLeft   uint16
	SessionDuration   uint16
	PitSpeedLimit     uint8
	GamePaused        uint8
	IsSpectating      uint8
	SpectatorCarIndex uint8
	NumMarshalZones   uint8
	SafetyCarStatus   uint8
	NetworkGame       uint8
}

func (SessionRecord) PacketID() layout.PacketID { return layout.PacketSession }

func (s *SessionRecord) visit(c fieldCodec, o layout.SessionOffsets) {
	c.u8(o.Weather, &s.Weather)
	c.i8(o.TrackTemperature, &s.TrackTemperature)
	c.i8(o.AirTemperature, &s.AirTemperature)
	c.u8(o.TotalLaps, &s.TotalLaps)
	c.u16(o.TrackLength, &s.TrackLength)
	c.u8(o.SessionType, &s.SessionType)
	c.i8(o.TrackID, &s.TrackID)
	c.u8(o.Formula, &s.Formula)
	c.u16(o.SessionTimeLeft, &s.SessionTimeLeft)
	c.u16(o.SessionDuration, &s.SessionDuration)
	c.u8(o.PitSpeedLimit, &s.PitSpeedLimit)
	c.u8(o.GamePaused, &s.GamePaused)
	c.u8(o.IsSpectating, &s.IsSpectating)
	c.u8(o.SpectatorCarIndex, &s.SpectatorCarIndex)
	c.u8(o.NumMarshalZones, &s.NumMarshalZones)
	c.u8(o.SafetyCarStatus, &s.SafetyCarStatus)
	c.u8(o.NetworkGame, &s.NetworkGame)
}

// EventRecord is an event code plus its vehicle operand when the code has one.
type EventRecord struct {
	Code         string
	VehicleIndex uint8
	HasVehicle   bool
}

func (EventRecord) PacketID() layout.PacketID { return layout.PacketEvent }

// ClassificationRecord is one vehicle's FinalClassificationData plus the
// packet-level car count.
type ClassificationRecord struct {
	NumCars          uint8
	Position         uint8
	NumLaps          uint8
	GridPosition     uint8
	Points           uint8
	NumPitStops      uint8
	ResultStatus     uint8
	ResultReason     uint8
	BestLapTimeMS    uint32
	TotalRaceTime    float64
	PenaltiesTime    uint8
	NumPenalties     uint8
	NumTyreStints    uint8
	TyreStintsActual [8]uint8
	TyreStintsVisual [8]uint8
	TyreStintsEndLap [8]uint8
}

func (ClassificationRecord) PacketID() layout.PacketID { return layout.PacketFinalClassification }

func (f *ClassificationRecord) visit(c fieldCodec, o layout.ClassificationOffsets) {
	c.u8(o.Position, &f.Position)
	c.u8(o.NumLaps, &f.NumLaps)
	c.u8(o.GridPosition, &f.GridPosition)
	c.u8(o.Points, &f.Points)
	c.u8(o.NumPitStops, &f.NumPitStops)
	c.u8(o.ResultStatus, &f.ResultStatus)
	c.u8(o.ResultReason, &f.ResultReason)
	c.u32(o.BestLapTimeMS, &f.BestLapTimeMS)
	c.f64(o.TotalRaceTime, &f.TotalRaceTime)
	c.u8(o.PenaltiesTime, &f.PenaltiesTime)
	c.u8(o.NumPenalties, &f.NumPenalties)
	c.u8(o.NumTyreStints, &f.NumTyreStints)
	c.u8s(o.TyreStintsActual, f.TyreStintsActual[:])
	c.u8s(o.TyreStintsVisual, f.TyreStintsVisual[:])
	c.u8s(o.TyreStintsEndLap, f.TyreStintsEndLap[:])
}
