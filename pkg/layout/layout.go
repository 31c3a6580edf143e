// Package layout holds the byte layouts of the F1 UDP telemetry protocol for
// every supported protocol generation. It is pure data: no other package
// hardcodes an offset.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

// Absent marks a field that the generation does not carry. Decoders treat it
// as zero without touching the buffer.
const Absent = -1

// MaxCars is the number of vehicle slots in every per-vehicle packet.
const MaxCars = 22

var (
	// ErrUnsupportedGeneration is returned when no layout exists for a generation.
	ErrUnsupportedGeneration = errors.New("unsupported protocol generation")
)

// Generation identifies a wire-format revision. Its value equals the
// packetFormat field the game writes at offset 0 of every datagram.
type Generation uint16

const (
	Gen2022 Generation = 2022
	Gen2023 Generation = 2023
	Gen2024 Generation = 2024
	Gen2025 Generation = 2025
)

// PacketID is the header's packet-type identifier.
type PacketID uint8

const (
	PacketMotion              PacketID = 0
	PacketSession             PacketID = 1
	PacketLapData             PacketID = 2
	PacketEvent               PacketID = 3
	PacketParticipants        PacketID = 4
	PacketCarSetups           PacketID = 5
	PacketCarTelemetry        PacketID = 6
	PacketCarStatus           PacketID = 7
	PacketFinalClassification PacketID = 8
	PacketLobbyInfo           PacketID = 9
	PacketCarDamage           PacketID = 10
	PacketSessionHistory      PacketID = 11
	PacketTyreSets            PacketID = 12
	PacketMotionEx            PacketID = 13
	PacketTimeTrial           PacketID = 14
	PacketLapPositions        PacketID = 15
)

var packetNames = map[PacketID]string{
	PacketMotion:              "motion",
	PacketSession:             "session",
	PacketLapData:             "lap_data",
	PacketEvent:               "event",
	PacketParticipants:        "participants",
	PacketCarSetups:           "car_setups",
	PacketCarTelemetry:        "car_telemetry",
	PacketCarStatus:           "car_status",
	PacketFinalClassification: "final_classification",
	PacketLobbyInfo:           "lobby_info",
	PacketCarDamage:           "car_damage",
	PacketSessionHistory:      "session_history",
	PacketTyreSets:            "tyre_sets",
	PacketMotionEx:            "motion_ex",
	PacketTimeTrial:           "time_trial",
	PacketLapPositions:        "lap_positions",
}

func (id PacketID) String() string {
	if name, ok := packetNames[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", uint8(id))
}

// PacketLayout describes where the records of one packet type live.
type PacketLayout struct {
	// BodyOffset is the first byte of the record (or record array).
	BodyOffset int
	// EntrySize is the per-vehicle stride. Zero for single-record packets.
	EntrySize int
	// RecordSize is the decoded span of a single-record packet.
	RecordSize int
	// CountOffset locates an active-car count byte, or Absent.
	CountOffset int
}

// PerVehicle reports whether the packet carries one record per vehicle slot.
func (p PacketLayout) PerVehicle() bool {
	return p.EntrySize > 0
}

// EntryOffset returns the absolute offset of the record for vehicleIndex.
func (p PacketLayout) EntryOffset(vehicleIndex int) int {
	return p.BodyOffset + vehicleIndex*p.EntrySize
}

// Size returns the number of bytes a complete packet of this type spans.
func (p PacketLayout) Size() int {
	if p.PerVehicle() {
		return p.BodyOffset + MaxCars*p.EntrySize
	}
	return p.BodyOffset + p.RecordSize
}

// Layout is the complete offset table for one generation. Record offsets are
// relative to the start of the record they belong to.
type Layout struct {
	Generation     Generation
	HeaderSize     int
	Header         HeaderOffsets
	Telemetry      TelemetryOffsets
	Lap            LapOffsets
	Status         StatusOffsets
	Participant    ParticipantOffsets
	Session        SessionOffsets
	Event          EventOffsets
	Classification ClassificationOffsets

	packets map[PacketID]PacketLayout
}

// Packet returns the placement of a packet type's records.
func (l *Layout) Packet(id PacketID) (PacketLayout, bool) {
	p, ok := l.packets[id]
	return p, ok
}

// Supports reports whether this layout knows how to decode the packet type.
func (l *Layout) Supports(id PacketID) bool {
	_, ok := l.packets[id]
	return ok
}

func (l *Layout) String() string {
	return fmt.Sprintf("F1 %d", uint16(l.Generation))
}

// finalize derives the packet placement table from the record sizes.
func (l *Layout) finalize() *Layout {
	h := l.HeaderSize
	l.packets = map[PacketID]PacketLayout{
		PacketCarTelemetry: {BodyOffset: h, EntrySize: l.Telemetry.Size, CountOffset: Absent},
		PacketLapData:      {BodyOffset: h, EntrySize: l.Lap.Size, CountOffset: Absent},
		PacketCarStatus:    {BodyOffset: h, EntrySize: l.Status.Size, CountOffset: Absent},
		PacketParticipants: {BodyOffset: h + 1, EntrySize: l.Participant.Size, CountOffset: h},
		PacketFinalClassification: {
			BodyOffset: h + 1, EntrySize: l.Classification.Size, CountOffset: h,
		},
		PacketSession: {BodyOffset: h, RecordSize: l.Session.Size, CountOffset: Absent},
		PacketEvent:   {BodyOffset: h, RecordSize: l.Event.Size, CountOffset: Absent},
	}
	return l
}

// Registry maps generations to layouts.
type Registry struct {
	layouts map[Generation]*Layout
	newest  *Layout
}

// NewRegistry builds a registry from the given layouts. The layout with the
// highest generation becomes the fallback for unknown formats.
func NewRegistry(layouts ...*Layout) *Registry {
	r := &Registry{layouts: make(map[Generation]*Layout, len(layouts))}
	for _, l := range layouts {
		r.layouts[l.Generation] = l
		if r.newest == nil || l.Generation > r.newest.Generation {
			r.newest = l
		}
	}
	return r
}

// Default returns a registry holding every generation known to this package.
func Default() *Registry {
	return NewRegistry(Layout2022(), Layout2023(), Layout2024(), Layout2025())
}

// LayoutFor returns the layout of a generation.
func (r *Registry) LayoutFor(g Generation) (*Layout, error) {
	l, ok := r.layouts[g]
	if !ok {
		return nil, fmt.Errorf("layout for %d: %w", uint16(g), ErrUnsupportedGeneration)
	}
	return l, nil
}

// Resolve selects the layout for an observed packetFormat value. Unknown
// formats fall back to the newest layout and report fellBack.
func (r *Registry) Resolve(packetFormat uint16) (l *Layout, fellBack bool) {
	if l, ok := r.layouts[Generation(packetFormat)]; ok {
		return l, false
	}
	return r.newest, true
}

// Newest returns the most recent generation's layout.
func (r *Registry) Newest() *Layout {
	return r.newest
}

// Generations lists the supported generations in ascending order.
func (r *Registry) Generations() []Generation {
	out := make([]Generation, 0, len(r.layouts))
	for g := range r.layouts {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
