package layout

func header2022() HeaderOffsets {
	return HeaderOffsets{
		PacketFormat:            0,
		GameYear:                Absent,
		GameMajorVersion:        2,
		GameMinorVersion:        3,
		PacketVersion:           4,
		PacketID:                5,
		SessionUID:              6,
		SessionTime:             14,
		FrameIdentifier:         18,
		OverallFrameIdentifier:  Absent,
		PlayerCarIndex:          22,
		SecondaryPlayerCarIndex: 23,
	}
}

func header2023() HeaderOffsets {
	return HeaderOffsets{
		PacketFormat:            0,
		GameYear:                2,
		GameMajorVersion:        3,
		GameMinorVersion:        4,
		PacketVersion:           5,
		PacketID:                6,
		SessionUID:              7,
		SessionTime:             15,
		FrameIdentifier:         19,
		OverallFrameIdentifier:  23,
		PlayerCarIndex:          27,
		SecondaryPlayerCarIndex: 28,
	}
}

// The car telemetry record has not changed since 2022.
func telemetry() TelemetryOffsets {
	return TelemetryOffsets{
		Size:                    60,
		Speed:                   0,
		Throttle:                2,
		Steer:                   6,
		Brake:                   10,
		Clutch:                  14,
		Gear:                    15,
		EngineRPM:               16,
		DRS:                     18,
		RevLightsPercent:        19,
		RevLightsBitValue:       20,
		BrakesTemperature:       22,
		TyresSurfaceTemperature: 30,
		TyresInnerTemperature:   34,
		EngineTemperature:       38,
		TyresPressure:           40,
		SurfaceType:             56,
	}
}

func lap2022() LapOffsets {
	return LapOffsets{
		Size:                        43,
		LastLapTimeMS:               0,
		CurrentLapTimeMS:            4,
		Sector1TimeMS:               8,
		Sector1TimeMinutes:          Absent,
		Sector2TimeMS:               10,
		Sector2TimeMinutes:          Absent,
		DeltaToCarInFrontMS:         Absent,
		DeltaToCarInFrontMinutes:    Absent,
		DeltaToRaceLeaderMS:         Absent,
		DeltaToRaceLeaderMinutes:    Absent,
		LapDistance:                 12,
		TotalDistance:               16,
		SafetyCarDelta:              20,
		CarPosition:                 24,
		CurrentLapNum:               25,
		PitStatus:                   26,
		NumPitStops:                 27,
		Sector:                      28,
		CurrentLapInvalid:           29,
		Penalties:                   30,
		TotalWarnings:               31,
		CornerCuttingWarnings:       Absent,
		NumUnservedDriveThroughPens: 32,
		NumUnservedStopGoPens:       33,
		GridPosition:                34,
		DriverStatus:                35,
		ResultStatus:                36,
		PitLaneTimerActive:          37,
		PitLaneTimeInLaneMS:         38,
		PitStopTimerMS:              40,
		PitStopShouldServePen:       42,
		SpeedTrapFastestSpeed:       Absent,
		SpeedTrapFastestLap:         Absent,
	}
}

func lap2023() LapOffsets {
	return LapOffsets{
		Size:                        50,
		LastLapTimeMS:               0,
		CurrentLapTimeMS:            4,
		Sector1TimeMS:               8,
		Sector1TimeMinutes:          10,
		Sector2TimeMS:               11,
		Sector2TimeMinutes:          13,
		DeltaToCarInFrontMS:         14,
		DeltaToCarInFrontMinutes:    Absent,
		DeltaToRaceLeaderMS:         16,
		DeltaToRaceLeaderMinutes:    Absent,
		LapDistance:                 18,
		TotalDistance:               22,
		SafetyCarDelta:              26,
		CarPosition:                 30,
		CurrentLapNum:               31,
		PitStatus:                   32,
		NumPitStops:                 33,
		Sector:                      34,
		CurrentLapInvalid:           35,
		Penalties:                   36,
		TotalWarnings:               37,
		CornerCuttingWarnings:       38,
		NumUnservedDriveThroughPens: 39,
		NumUnservedStopGoPens:       40,
		GridPosition:                41,
		DriverStatus:                42,
		ResultStatus:                43,
		PitLaneTimerActive:          44,
		PitLaneTimeInLaneMS:         45,
		PitStopTimerMS:              47,
		PitStopShouldServePen:       49,
		SpeedTrapFastestSpeed:       Absent,
		SpeedTrapFastestLap:         Absent,
	}
}

// 2024 split the deltas into ms and minute parts and appended speed-trap data.
// 2025 kept the record unchanged.
func lap2024() LapOffsets {
	return LapOffsets{
		Size:                        57,
		LastLapTimeMS:               0,
		CurrentLapTimeMS:            4,
		Sector1TimeMS:               8,
		Sector1TimeMinutes:          10,
		Sector2TimeMS:               11,
		Sector2TimeMinutes:          13,
		DeltaToCarInFrontMS:         14,
		DeltaToCarInFrontMinutes:    16,
		DeltaToRaceLeaderMS:         17,
		DeltaToRaceLeaderMinutes:    19,
		LapDistance:                 20,
		TotalDistance:               24,
		SafetyCarDelta:              28,
		CarPosition:                 32,
		CurrentLapNum:               33,
		PitStatus:                   34,
		NumPitStops:                 35,
		Sector:                      36,
		CurrentLapInvalid:           37,
		Penalties:                   38,
		TotalWarnings:               39,
		CornerCuttingWarnings:       40,
		NumUnservedDriveThroughPens: 41,
		NumUnservedStopGoPens:       42,
		GridPosition:                43,
		DriverStatus:                44,
		ResultStatus:                45,
		PitLaneTimerActive:          46,
		PitLaneTimeInLaneMS:         47,
		PitStopTimerMS:              49,
		PitStopShouldServePen:       51,
		SpeedTrapFastestSpeed:       52,
		SpeedTrapFastestLap:         56,
	}
}

func status2022() StatusOffsets {
	return StatusOffsets{
		Size:                    47,
		TractionControl:         0,
		AntiLockBrakes:          1,
		FuelMix:                 2,
		FrontBrakeBias:          3,
		PitLimiterStatus:        4,
		FuelInTank:              5,
		FuelCapacity:            9,
		FuelRemainingLaps:       13,
		MaxRPM:                  17,
		IdleRPM:                 19,
		MaxGears:                21,
		DRSAllowed:              22,
		DRSActivationDistance:   23,
		ActualTyreCompound:      25,
		VisualTyreCompound:      26,
		TyresAgeLaps:            27,
		VehicleFIAFlags:         28,
		EnginePowerICE:          Absent,
		EnginePowerMGUK:         Absent,
		ERSStoreEnergy:          29,
		ERSDeployMode:           33,
		ERSHarvestedThisLapMGUK: 34,
		ERSHarvestedThisLapMGUH: 38,
		ERSDeployedThisLap:      42,
		NetworkPaused:           46,
	}
}

func status2023() StatusOffsets {
	return StatusOffsets{
		Size:                    55,
		TractionControl:         0,
		AntiLockBrakes:          1,
		FuelMix:                 2,
		FrontBrakeBias:          3,
		PitLimiterStatus:        4,
		FuelInTank:              5,
		FuelCapacity:            9,
		FuelRemainingLaps:       13,
		MaxRPM:                  17,
		IdleRPM:                 19,
		MaxGears:                21,
		DRSAllowed:              22,
		DRSActivationDistance:   23,
		ActualTyreCompound:      25,
		VisualTyreCompound:      26,
		TyresAgeLaps:            27,
		VehicleFIAFlags:         28,
		EnginePowerICE:          29,
		EnginePowerMGUK:         33,
		ERSStoreEnergy:          37,
		ERSDeployMode:           41,
		ERSHarvestedThisLapMGUK: 42,
		ERSHarvestedThisLapMGUH: 46,
		ERSDeployedThisLap:      50,
		NetworkPaused:           54,
	}
}

func participant2022() ParticipantOffsets {
	return ParticipantOffsets{
		Size:            56,
		AIControlled:    0,
		DriverID:        1,
		NetworkID:       2,
		TeamID:          3,
		MyTeam:          4,
		RaceNumber:      5,
		Nationality:     6,
		Name:            7,
		NameLength:      48,
		YourTelemetry:   55,
		ShowOnlineNames: Absent,
		TechLevel:       Absent,
		Platform:        Absent,
		NumColours:      Absent,
		LiveryColours:   Absent,
	}
}

func participant2023() ParticipantOffsets {
	p := participant2022()
	p.Size = 58
	p.ShowOnlineNames = 56
	p.Platform = 57
	return p
}

func participant2024() ParticipantOffsets {
	p := participant2022()
	p.Size = 60
	p.ShowOnlineNames = 56
	p.TechLevel = 57
	p.Platform = 59
	return p
}

// 2025 shortened the name field to 32 bytes and added livery colours.
func participant2025() ParticipantOffsets {
	return ParticipantOffsets{
		Size:            57,
		AIControlled:    0,
		DriverID:        1,
		NetworkID:       2,
		TeamID:          3,
		MyTeam:          4,
		RaceNumber:      5,
		Nationality:     6,
		Name:            7,
		NameLength:      32,
		YourTelemetry:   39,
		ShowOnlineNames: 40,
		TechLevel:       41,
		Platform:        43,
		NumColours:      44,
		LiveryColours:   45,
	}
}

func session() SessionOffsets {
	return SessionOffsets{
		Size:              126,
		Weather:           0,
		TrackTemperature:  1,
		AirTemperature:    2,
		TotalLaps:         3,
		TrackLength:       4,
		SessionType:       6,
		TrackID:           7,
		Formula:           8,
		SessionTimeLeft:   9,
		SessionDuration:   11,
		PitSpeedLimit:     13,
		GamePaused:        14,
		IsSpectating:      15,
		SpectatorCarIndex: 16,
		NumMarshalZones:   18,
		SafetyCarStatus:   124,
		NetworkGame:       125,
	}
}

func classification2022() ClassificationOffsets {
	return ClassificationOffsets{
		Size:             45,
		Position:         0,
		NumLaps:          1,
		GridPosition:     2,
		Points:           3,
		NumPitStops:      4,
		ResultStatus:     5,
		ResultReason:     Absent,
		BestLapTimeMS:    6,
		TotalRaceTime:    10,
		PenaltiesTime:    18,
		NumPenalties:     19,
		NumTyreStints:    20,
		TyreStintsActual: 21,
		TyreStintsVisual: 29,
		TyreStintsEndLap: 37,
	}
}

func classification2025() ClassificationOffsets {
	return ClassificationOffsets{
		Size:             46,
		Position:         0,
		NumLaps:          1,
		GridPosition:     2,
		Points:           3,
		NumPitStops:      4,
		ResultStatus:     5,
		ResultReason:     6,
		BestLapTimeMS:    7,
		TotalRaceTime:    11,
		PenaltiesTime:    19,
		NumPenalties:     20,
		NumTyreStints:    21,
		TyreStintsActual: 22,
		TyreStintsVisual: 30,
		TyreStintsEndLap: 38,
	}
}

// Event codes carried in the first four bytes of an event packet body.
const (
	EventFastestLap     = "FTLP"
	EventRetirement     = "RTMT"
	EventTeamMateInPits = "TMPT"
	EventRaceWinner     = "RCWN"
	EventPenalty        = "PENA"
	EventSpeedTrap      = "SPTP"
	EventDriveThrough   = "DTSV"
	EventStopGo         = "SGSV"
	EventOvertake       = "OVTK"
	EventCollision      = "COLL"
	EventChequeredFlag  = "CHQF"
	EventSessionStarted = "SSTA"
	EventSessionEnded   = "SEND"
	EventLightsOut      = "LGOT"
	EventRedFlag        = "RDFL"
	EventDRSEnabled     = "DRSE"
	EventDRSDisabled    = "DRSD"
	EventSafetyCar      = "SCAR"
	EventButtonStatus   = "BUTN"
	EventFlashback      = "FLBK"
	EventStartLights    = "STLG"
)

func event2022() EventOffsets {
	return EventOffsets{
		Size: 16,
		Code: 0,
		Operands: map[string]int{
			EventFastestLap:     4,
			EventRetirement:     4,
			EventTeamMateInPits: 4,
			EventRaceWinner:     4,
			EventSpeedTrap:      4,
			EventDriveThrough:   4,
			EventStopGo:         4,
			// penaltyType and infringementType precede the vehicle index.
			EventPenalty: 6,
		},
	}
}

func event2023() EventOffsets {
	e := event2022()
	e.Operands[EventOvertake] = 4
	return e
}

func event2024() EventOffsets {
	e := event2023()
	e.Operands[EventCollision] = 4
	return e
}

// Layout2022 describes packetFormat 2022.
func Layout2022() *Layout {
	return (&Layout{
		Generation:     Gen2022,
		HeaderSize:     24,
		Header:         header2022(),
		Telemetry:      telemetry(),
		Lap:            lap2022(),
		Status:         status2022(),
		Participant:    participant2022(),
		Session:        session(),
		Event:          event2022(),
		Classification: classification2022(),
	}).finalize()
}

// Layout2023 describes packetFormat 2023, the first with the 29-byte header.
func Layout2023() *Layout {
	return (&Layout{
		Generation:     Gen2023,
		HeaderSize:     29,
		Header:         header2023(),
		Telemetry:      telemetry(),
		Lap:            lap2023(),
		Status:         status2023(),
		Participant:    participant2023(),
		Session:        session(),
		Event:          event2023(),
		Classification: classification2022(),
	}).finalize()
}

// Layout2024 describes packetFormat 2024.
func Layout2024() *Layout {
	return (&Layout{
		Generation:     Gen2024,
		HeaderSize:     29,
		Header:         header2023(),
		Telemetry:      telemetry(),
		Lap:            lap2024(),
		Status:         status2023(),
		Participant:    participant2024(),
		Session:        session(),
		Event:          event2024(),
		Classification: classification2022(),
	}).finalize()
}

// Layout2025 describes packetFormat 2025.
func Layout2025() *Layout {
	return (&Layout{
		Generation:     Gen2025,
		HeaderSize:     29,
		Header:         header2023(),
		Telemetry:      telemetry(),
		Lap:            lap2024(),
		Status:         status2023(),
		Participant:    participant2025(),
		Session:        session(),
		Event:          event2024(),
		Classification: classification2025(),
	}).finalize()
}
