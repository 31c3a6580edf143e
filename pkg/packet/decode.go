package packet

import (
	"apexgo/pkg/layout"
)

// Decoded is what the decoder hands to reconciliation: the header, the
// generation used, and at most one payload record.
type Decoded struct {
	Header     Header
	Generation layout.Generation
	// FellBack is set when packetFormat was unknown and the newest layout
	// was used instead.
	FellBack bool
	// VehicleIndex is the slot the per-vehicle record was read from.
	VehicleIndex int
	// ZeroFilled counts fields that did not fit in the datagram.
	ZeroFilled int
	// Record is nil for packet types this system does not decode.
	Record Record
}

// PacketID returns the header's packet type.
func (d Decoded) PacketID() layout.PacketID {
	return d.Header.PacketID
}

// recordReader positions a reader on vehicleIndex's entry. Out-of-range
// indices read nothing and every field zero-fills.
func recordReader(buf []byte, p layout.PacketLayout, vehicleIndex int) *reader {
	if vehicleIndex < 0 || vehicleIndex >= layout.MaxCars {
		return newReader(buf, -1)
	}
	return newReader(buf, p.EntryOffset(vehicleIndex))
}

func packetLayout(lay *layout.Layout, id layout.PacketID) layout.PacketLayout {
	p, ok := lay.Packet(id)
	if !ok {
		return layout.PacketLayout{BodyOffset: -1, CountOffset: layout.Absent}
	}
	return p
}

func decodeTelemetry(buf []byte, vehicleIndex int, lay *layout.Layout) (TelemetryRecord, int) {
	var rec TelemetryRecord
	r := recordReader(buf, packetLayout(lay, layout.PacketCarTelemetry), vehicleIndex)
	rec.visit(r, lay.Telemetry)
	return rec, r.zeroFilled
}

func decodeLap(buf []byte, vehicleIndex int, lay *layout.Layout) (LapRecord, int) {
	var rec LapRecord
	r := recordReader(buf, packetLayout(lay, layout.PacketLapData), vehicleIndex)
	rec.visit(r, lay.Lap)
	return rec, r.zeroFilled
}

func decodeStatus(buf []byte, vehicleIndex int, lay *layout.Layout) (StatusRecord, int) {
	var rec StatusRecord
	r := recordReader(buf, packetLayout(lay, layout.PacketCarStatus), vehicleIndex)
	rec.visit(r, lay.Status)
	return rec, r.zeroFilled
}

func decodeParticipant(buf []byte, vehicleIndex int, lay *layout.Layout) (ParticipantRecord, int) {
	var rec ParticipantRecord
	p := packetLayout(lay, layout.PacketParticipants)
	count := newReader(buf, 0)
	count.u8(p.CountOffset, &rec.NumActiveCars)
	r := recordReader(buf, p, vehicleIndex)
	rec.visit(r, lay.Participant)
	return rec, r.zeroFilled + count.zeroFilled
}

func decodeClassification(buf []byte, vehicleIndex int, lay *layout.Layout) (ClassificationRecord, int) {
	var rec ClassificationRecord
	p := packetLayout(lay, layout.PacketFinalClassification)
	count := newReader(buf, 0)
	count.u8(p.CountOffset, &rec.NumCars)
	r := recordReader(buf, p, vehicleIndex)
	rec.visit(r, lay.Classification)
	return rec, r.zeroFilled + count.zeroFilled
}

func decodeSession(buf []byte, lay *layout.Layout) (SessionRecord, int) {
	var rec SessionRecord
	r := newReader(buf, packetLayout(lay, layout.PacketSession).BodyOffset)
	rec.visit(r, lay.Session)
	return rec, r.zeroFilled
}

func decodeEvent(buf []byte, lay *layout.Layout) (EventRecord, int) {
	var rec EventRecord
	r := newReader(buf, packetLayout(lay, layout.PacketEvent).BodyOffset)
	var code [4]uint8
	if b := r.span(lay.Event.Code, len(code)); b != nil {
		rec.Code = string(b)
	}
	if off, ok := lay.Event.Operands[rec.Code]; ok {
		if b := r.span(off, 1); b != nil {
			rec.VehicleIndex = b[0]
			rec.HasVehicle = true
		}
	}
	return rec, r.zeroFilled
}

// DecodeTelemetry reads vehicleIndex's CarTelemetryData.
func DecodeTelemetry(buf []byte, vehicleIndex int, lay *layout.Layout) TelemetryRecord {
	rec, _ := decodeTelemetry(buf, vehicleIndex, lay)
	return rec
}

// DecodeLap reads vehicleIndex's LapData.
func DecodeLap(buf []byte, vehicleIndex int, lay *layout.Layout) LapRecord {
	rec, _ := decodeLap(buf, vehicleIndex, lay)
	return rec
}

// DecodeStatus reads vehicleIndex's CarStatusData.
func DecodeStatus(buf []byte, vehicleIndex int, lay *layout.Layout) StatusRecord {
	rec, _ := decodeStatus(buf, vehicleIndex, lay)
	return rec
}

// DecodeParticipant reads vehicleIndex's ParticipantData and the active car count.
func DecodeParticipant(buf []byte, vehicleIndex int, lay *layout.Layout) ParticipantRecord {
	rec, _ := decodeParticipant(buf, vehicleIndex, lay)
	return rec
}

// DecodeClassification reads vehicleIndex's FinalClassificationData.
func DecodeClassification(buf []byte, vehicleIndex int, lay *layout.Layout) ClassificationRecord {
	rec, _ := decodeClassification(buf, vehicleIndex, lay)
	return rec
}

// DecodeSession reads the session packet body.
func DecodeSession(buf []byte, lay *layout.Layout) SessionRecord {
	rec, _ := decodeSession(buf, lay)
	return rec
}

// DecodeEvent reads the event code, and the vehicle operand only for codes
// the layout lists as carrying one.
func DecodeEvent(buf []byte, lay *layout.Layout) EventRecord {
	rec, _ := decodeEvent(buf, lay)
	return rec
}

// Decode parses the header and the payload record for its packet type.
// A negative vehicleIndex selects the header's player car. Packet types the
// layout does not support carry only the header, with a nil Record. The only
// error is ErrTooShort; every other malformation degrades to zero-valued fields.
func Decode(buf []byte, reg *layout.Registry, vehicleIndex int) (Decoded, error) {
	h, lay, err := DecodeHeader(buf, reg)
	if err != nil {
		return Decoded{}, err
	}

	if vehicleIndex < 0 {
		vehicleIndex = int(h.PlayerCarIndex)
	}

	d := Decoded{
		Header:       h,
		Generation:   lay.Generation,
		FellBack:     layout.Generation(h.PacketFormat) != lay.Generation,
		VehicleIndex: vehicleIndex,
	}
	if !lay.Supports(h.PacketID) {
		return d, nil
	}

	switch h.PacketID {
	case layout.PacketCarTelemetry:
		rec, zf := decodeTelemetry(buf, vehicleIndex, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketLapData:
		rec, zf := decodeLap(buf, vehicleIndex, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketCarStatus:
		rec, zf := decodeStatus(buf, vehicleIndex, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketParticipants:
		rec, zf := decodeParticipant(buf, vehicleIndex, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketFinalClassification:
		rec, zf := decodeClassification(buf, vehicleIndex, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketSession:
		rec, zf := decodeSession(buf, lay)
		d.Record, d.ZeroFilled = rec, zf
	case layout.PacketEvent:
		rec, zf := decodeEvent(buf, lay)
		d.Record, d.ZeroFilled = rec, zf
	}
	return d, nil
}
