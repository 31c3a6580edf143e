// Package canbus mirrors the dashboard snapshot onto a CAN bus as OBD-II
// style frames, so off-the-shelf gauges can show speed, RPM and gear.
package canbus

import (
	"encoding/binary"

	"go.einride.tech/can"

	"apexgo/pkg/sim"
)

// Frame identifiers. 0x0D and 0x0C follow the OBD-II PIDs; 0xD0 and 0xD1
// are custom.
const (
	IDSpeed     uint32 = 0x0D // km/h, 1 byte, clamped to 255
	IDSpeedWide uint32 = 0xD0 // km/h, 2 bytes
	IDRPM       uint32 = 0x0C // rpm*4, 2 bytes
	IDGear      uint32 = 0xD1 // signed, -1 reverse, 0 neutral
)

// Frames encodes the snapshot as one frame per identifier.
func Frames(s sim.Snapshot) []can.Frame {
	speed := min(s.Speed, 255)
	rpm := min(uint32(s.RPM)*4, 0xFFFF)
	return []can.Frame{
		unsigned(IDSpeed, 1, uint64(speed)),
		unsigned(IDSpeedWide, 2, uint64(s.Speed)),
		unsigned(IDRPM, 2, uint64(rpm)),
		unsigned(IDGear, 1, uint64(uint8(s.Gear))),
	}
}

// unsigned writes value big-endian into a frame of length bytes.
func unsigned(id uint32, length uint8, value uint64) can.Frame {
	f := can.Frame{ID: id, Length: length}
	switch length {
	case 1:
		f.Data[0] = uint8(value)
	case 2:
		binary.BigEndian.PutUint16(f.Data[:2], uint16(value))
	case 4:
		binary.BigEndian.PutUint32(f.Data[:4], uint32(value))
	case 8:
		binary.BigEndian.PutUint64(f.Data[:8], value)
	}
	return f
}
