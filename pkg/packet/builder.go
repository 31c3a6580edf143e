package packet

import (
	"apexgo/pkg/layout"
)

// Builder encodes datagrams with the same offset tables the decoder uses.
// It backs the synthetic packet generator and hand-built test buffers.
type Builder struct {
	lay *layout.Layout
	id  layout.PacketID
	p   layout.PacketLayout
	buf []byte
}

// NewBuilder allocates a full-size packet of type id and stamps the
// generation and packet id into its header.
func NewBuilder(lay *layout.Layout, id layout.PacketID) *Builder {
	p, ok := lay.Packet(id)
	size := lay.HeaderSize
	if ok {
		size = p.Size()
	}
	b := &Builder{lay: lay, id: id, p: p, buf: make([]byte, size)}
	b.Header(Header{PacketVersion: 1})
	return b
}

// Header writes h. PacketFormat, PacketID and GameYear always follow the
// builder's layout and packet type.
func (b *Builder) Header(h Header) *Builder {
	h.PacketFormat = uint16(b.lay.Generation)
	h.PacketID = b.id
	h.GameYear = uint8(uint16(b.lay.Generation) % 100)
	h.visit(&writer{buf: b.buf}, b.lay.Header)
	return b
}

func (b *Builder) entry(vehicleIndex int) *writer {
	if !b.p.PerVehicle() || vehicleIndex < 0 || vehicleIndex >= layout.MaxCars {
		return &writer{}
	}
	return &writer{buf: b.buf, base: b.p.EntryOffset(vehicleIndex)}
}

func (b *Builder) count(n uint8) {
	w := &writer{buf: b.buf}
	w.u8(b.p.CountOffset, &n)
}

// Telemetry writes rec into vehicleIndex's slot.
func (b *Builder) Telemetry(vehicleIndex int, rec TelemetryRecord) *Builder {
	rec.visit(b.entry(vehicleIndex), b.lay.Telemetry)
	return b
}

// Lap writes rec into vehicleIndex's slot.
func (b *Builder) Lap(vehicleIndex int, rec LapRecord) *Builder {
	rec.visit(b.entry(vehicleIndex), b.lay.Lap)
	return b
}

// Status writes rec into vehicleIndex's slot.
func (b *Builder) Status(vehicleIndex int, rec StatusRecord) *Builder {
	rec.visit(b.entry(vehicleIndex), b.lay.Status)
	return b
}

// Participant writes rec into vehicleIndex's slot and rec.NumActiveCars into
// the packet's count byte.
func (b *Builder) Participant(vehicleIndex int, rec ParticipantRecord) *Builder {
	b.count(rec.NumActiveCars)
	rec.visit(b.entry(vehicleIndex), b.lay.Participant)
	return b
}

// Classification writes rec into vehicleIndex's slot and rec.NumCars into the
// packet's count byte.
func (b *Builder) Classification(vehicleIndex int, rec ClassificationRecord) *Builder {
	b.count(rec.NumCars)
	rec.visit(b.entry(vehicleIndex), b.lay.Classification)
	return b
}

// Session writes the session body.
func (b *Builder) Session(rec SessionRecord) *Builder {
	rec.visit(&writer{buf: b.buf, base: b.p.BodyOffset}, b.lay.Session)
	return b
}

// Event writes the event code and, when the code carries one, the vehicle
// operand.
func (b *Builder) Event(rec EventRecord) *Builder {
	w := &writer{buf: b.buf, base: b.p.BodyOffset}
	var code [4]uint8
	copy(code[:], rec.Code)
	w.u8s(b.lay.Event.Code, code[:])
	if off, ok := b.lay.Event.Operands[rec.Code]; ok {
		w.u8(off, &rec.VehicleIndex)
	}
	return b
}

// Bytes returns the encoded datagram.
func (b *Builder) Bytes() []byte {
	return b.buf
}
