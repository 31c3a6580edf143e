package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"apexgo/pkg/sim"
)

// SnapshotResponse is the wire form of a dashboard snapshot, shared by the
// HTTP endpoint and the WebSocket stream (JSON and CBOR).
type SnapshotResponse struct {
	Source     sim.Source `json:"source"`
	Generation uint16     `json:"generation,omitempty"`

	Gear             int8    `json:"gear"`
	GearLabel        string  `json:"gear_label"`
	Speed            uint16  `json:"speed"`
	RPM              uint16  `json:"rpm"`
	MaxRPM           uint16  `json:"max_rpm"`
	RPMFraction      float64 `json:"rpm_fraction"`
	RevLightsPercent uint8   `json:"rev_lights_percent"`
	DRS              bool    `json:"drs"`

	Position       uint8  `json:"position"`
	TotalCars      uint8  `json:"total_cars"`
	CurrentLap     uint8  `json:"current_lap"`
	TotalLaps      uint8  `json:"total_laps"`
	CurrentLapTime string `json:"current_lap_time"`
	LastLapTime    string `json:"last_lap_time"`

	TyreCompound string `json:"tyre_compound"`
	TyreAgeLaps  uint8  `json:"tyre_age_laps"`
	TeamID       uint8  `json:"team_id"`
	TeamColor    string `json:"team_color"`
	DriverName   string `json:"driver_name,omitempty"`

	PitStatus       sim.PitStatus       `json:"pit_status"`
	SafetyCarStatus sim.SafetyCarStatus `json:"safety_car_status"`
	ResultStatus    sim.ResultStatus    `json:"result_status"`
	SessionEnded    bool                `json:"session_ended"`

	Weather          uint8 `json:"weather"`
	TrackTemperature int8  `json:"track_temperature"`
	AirTemperature   int8  `json:"air_temperature"`

	PacketsReceived uint64    `json:"packets_received"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewSnapshotResponse converts a snapshot for the wire.
func NewSnapshotResponse(s *sim.Snapshot) SnapshotResponse {
	return SnapshotResponse{
		Source:           s.Source,
		Generation:       s.Generation,
		Gear:             s.Gear,
		GearLabel:        s.GearLabel(),
		Speed:            s.Speed,
		RPM:              s.RPM,
		MaxRPM:           s.MaxRPM,
		RPMFraction:      s.RPMFraction(),
		RevLightsPercent: s.RevLightsPercent,
		DRS:              s.DRS,
		Position:         s.Position,
		TotalCars:        s.TotalCars,
		CurrentLap:       s.CurrentLap,
		TotalLaps:        s.TotalLaps,
		CurrentLapTime:   s.CurrentLapTime,
		LastLapTime:      s.LastLapTime,
		TyreCompound:     s.TyreCompound,
		TyreAgeLaps:      s.TyreAgeLaps,
		TeamID:           s.TeamID,
		TeamColor:        s.TeamColor,
		DriverName:       s.DriverName,
		PitStatus:        s.PitStatus,
		SafetyCarStatus:  s.SafetyCarStatus,
		ResultStatus:     s.ResultStatus,
		SessionEnded:     s.SessionEnded,
		Weather:          s.Weather,
		TrackTemperature: s.TrackTemperature,
		AirTemperature:   s.AirTemperature,
		PacketsReceived:  s.PacketsReceived,
		UpdatedAt:        s.UpdatedAt,
	}
}

// SnapshotSource is the read side of the dashboard store.
type SnapshotSource interface {
	Current() sim.Snapshot
}

// SnapshotHandler serves the current snapshot.
type SnapshotHandler struct {
	store SnapshotSource
}

func NewSnapshotHandler(store SnapshotSource) *SnapshotHandler {
	return &SnapshotHandler{store: store}
}

func (h *SnapshotHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewSnapshotResponse(&snap)); err != nil {
		slog.Error("Failed to encode snapshot response", "error", err)
	}
}
