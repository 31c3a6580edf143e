package layout

// HeaderOffsets locates the packet header fields from offset 0.
type HeaderOffsets struct {
	PacketFormat            int
	GameYear                int
	GameMajorVersion        int
	GameMinorVersion        int
	PacketVersion           int
	PacketID                int
	SessionUID              int
	SessionTime             int
	FrameIdentifier         int
	OverallFrameIdentifier  int
	PlayerCarIndex          int
	SecondaryPlayerCarIndex int
}

// TelemetryOffsets locates CarTelemetryData fields. Array fields point at the
// first element; elements are packed.
type TelemetryOffsets struct {
	Size                    int
	Speed                   int
	Throttle                int
	Steer                   int
	Brake                   int
	Clutch                  int
	Gear                    int
	EngineRPM               int
	DRS                     int
	RevLightsPercent        int
	RevLightsBitValue       int
	BrakesTemperature       int
	TyresSurfaceTemperature int
	TyresInnerTemperature   int
	EngineTemperature       int
	TyresPressure           int
	SurfaceType             int
}

// LapOffsets locates LapData fields.
type LapOffsets struct {
	Size                        int
	LastLapTimeMS               int
	CurrentLapTimeMS            int
	Sector1TimeMS               int
	Sector1TimeMinutes          int
	Sector2TimeMS               int
	Sector2TimeMinutes          int
	DeltaToCarInFrontMS         int
	DeltaToCarInFrontMinutes    int
	DeltaToRaceLeaderMS         int
	DeltaToRaceLeaderMinutes    int
	LapDistance                 int
	TotalDistance               int
	SafetyCarDelta              int
	CarPosition                 int
	CurrentLapNum               int
	PitStatus                   int
	NumPitStops                 int
	Sector                      int
	CurrentLapInvalid           int
	Penalties                   int
	TotalWarnings               int
	CornerCuttingWarnings       int
	NumUnservedDriveThroughPens int
	NumUnservedStopGoPens       int
	GridPosition                int
	DriverStatus                int
	ResultStatus                int
	PitLaneTimerActive          int
	PitLaneTimeInLaneMS         int
	PitStopTimerMS              int
	PitStopShouldServePen       int
	SpeedTrapFastestSpeed       int
	SpeedTrapFastestLap         int
}

// StatusOffsets locates CarStatusData fields.
type StatusOffsets struct {
	Size                    int
	TractionControl         int
	AntiLockBrakes          int
	FuelMix                 int
	FrontBrakeBias          int
	PitLimiterStatus        int
	FuelInTank              int
	FuelCapacity            int
	FuelRemainingLaps       int
	MaxRPM                  int
	IdleRPM                 int
	MaxGears                int
	DRSAllowed              int
	DRSActivationDistance   int
	ActualTyreCompound      int
	VisualTyreCompound      int
	TyresAgeLaps            int
	VehicleFIAFlags         int
	EnginePowerICE          int
	EnginePowerMGUK         int
	ERSStoreEnergy          int
	ERSDeployMode           int
	ERSHarvestedThisLapMGUK int
	ERSHarvestedThisLapMGUH int
	ERSDeployedThisLap      int
	NetworkPaused           int
}

// ParticipantOffsets locates ParticipantData fields.
type ParticipantOffsets struct {
	Size            int
	AIControlled    int
	DriverID        int
	NetworkID       int
	TeamID          int
	MyTeam          int
	RaceNumber      int
	Nationality     int
	Name            int
	NameLength      int
	YourTelemetry   int
	ShowOnlineNames int
	TechLevel       int
	Platform        int
	NumColours      int
	LiveryColours   int
}

// SessionOffsets locates the PacketSessionData prefix this system decodes.
// The marshal-zone array sits between NumMarshalZones and SafetyCarStatus.
type SessionOffsets struct {
	Size              int
	Weather           int
	TrackTemperature  int
	AirTemperature    int
	TotalLaps         int
	TrackLength       int
	SessionType       int
	TrackID           int
	Formula           int
	SessionTimeLeft   int
	SessionDuration   int
	PitSpeedLimit     int
	GamePaused        int
	IsSpectating      int
	SpectatorCarIndex int
	NumMarshalZones   int
	SafetyCarStatus   int
	NetworkGame       int
}

// EventOffsets locates the event code and, per code, the vehicle-index
// operand inside the event details union.
type EventOffsets struct {
	Size int
	Code int
	// Operands maps event codes that carry a vehicle index to its offset.
	// Codes missing from the map carry no vehicle operand.
	Operands map[string]int
}

// ClassificationOffsets locates FinalClassificationData fields.
type ClassificationOffsets struct {
	Size             int
	Position         int
	NumLaps          int
	GridPosition     int
	Points           int
	NumPitStops      int
	ResultStatus     int
	ResultReason     int
	BestLapTimeMS    int
	TotalRaceTime    int
	PenaltiesTime    int
	NumPenalties     int
	NumTyreStints    int
	TyreStintsActual int
	TyreStintsVisual int
	TyreStintsEndLap int
}
