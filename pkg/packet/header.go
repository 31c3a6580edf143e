// Package packet decodes F1 UDP telemetry datagrams into typed records.
//
// Every decode function is total: fields that do not fit inside the buffer
// resolve to their zero value, nothing panics on short or garbled input, and
// all byte positions come from an injected layout.Layout.
package packet

import (
	"errors"
	"fmt"

	"apexgo/pkg/layout"
)

var (
	// ErrTooShort is returned when a datagram cannot hold a packet header.
	ErrTooShort = errors.New("datagram shorter than packet header")
)

// Header is the common packet header present at offset 0 of every datagram.
type Header struct {
	PacketFormat            uint16
	GameYear                uint8
	GameMajorVersion        uint8
	GameMinorVersion        uint8
	PacketVersion           uint8
	PacketID                layout.PacketID
	SessionUID              uint64
	SessionTime             float32
	FrameIdentifier         uint32
	OverallFrameIdentifier  uint32
	PlayerCarIndex          uint8
	SecondaryPlayerCarIndex uint8
}

func (h *Header) visit(c fieldCodec, o layout.HeaderOffsets) {
	c.u16(o.PacketFormat, &h.PacketFormat)
	c.u8(o.GameYear, &h.GameYear)
	c.u8(o.GameMajorVersion, &h.GameMajorVersion)
	c.u8(o.GameMinorVersion, &h.GameMinorVersion)
	c.u8(o.PacketVersion, &h.PacketVersion)
	id := uint8(h.PacketID)
	c.u8(o.PacketID, &id)
	h.PacketID = layout.PacketID(id)
	c.u64(o.SessionUID, &h.SessionUID)
	c.f32(o.SessionTime, &h.SessionTime)
	c.u32(o.FrameIdentifier, &h.FrameIdentifier)
	c.u32(o.OverallFrameIdentifier, &h.OverallFrameIdentifier)
	c.u8(o.PlayerCarIndex, &h.PlayerCarIndex)
	c.u8(o.SecondaryPlayerCarIndex, &h.SecondaryPlayerCarIndex)
}

// PacketFormat reads the generation marker at offset 0. It is at the same
// place in every generation.
func PacketFormat(buf []byte) (uint16, bool) {
	if len(buf) < 2 {
		return 0, false
	}
	return le.Uint16(buf), true
}

// DecodeHeader resolves the layout for the datagram's packetFormat and parses
// the header with it. Unknown formats use the registry's newest layout.
func DecodeHeader(buf []byte, reg *layout.Registry) (Header, *layout.Layout, error) {
	format, ok := PacketFormat(buf)
	if !ok {
		return Header{}, nil, fmt.Errorf("%d bytes: %w", len(buf), ErrTooShort)
	}
	lay, _ := reg.Resolve(format)
	h, err := ParseHeader(buf, lay)
	if err != nil {
		return Header{}, nil, err
	}
	return h, lay, nil
}

// ParseHeader parses the header with a known layout.
func ParseHeader(buf []byte, lay *layout.Layout) (Header, error) {
	if len(buf) < lay.HeaderSize {
		return Header{}, fmt.Errorf("%d bytes, %s header needs %d: %w", len(buf), lay, lay.HeaderSize, ErrTooShort)
	}
	var h Header
	h.visit(newReader(buf, 0), lay.Header)
	return h, nil
}
