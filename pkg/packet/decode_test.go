package packet

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"apexgo/pkg/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allLayouts() []*layout.Layout {
	return []*layout.Layout{layout.Layout2022(), layout.Layout2023(), layout.Layout2024(), layout.Layout2025()}
}

func TestDecodeHeader(t *testing.T) {
	reg := layout.Default()

	t.Run("2022", func(t *testing.T) {
		buf := make([]byte, 24)
		binary.LittleEndian.PutUint16(buf[0:], 2022)
		buf[5] = uint8(layout.PacketLapData)
		binary.LittleEndian.PutUint64(buf[6:], 0xDEADBEEF)
		binary.LittleEndian.PutUint32(buf[18:], 777)
		buf[22] = 19

		h, lay, err := DecodeHeader(buf, reg)
		require.NoError(t, err)
		assert.Equal(t, layout.Gen2022, lay.Generation)
		assert.Equal(t, uint16(2022), h.PacketFormat)
		assert.Equal(t, uint8(0), h.GameYear)
		assert.Equal(t, layout.PacketLapData, h.PacketID)
		assert.Equal(t, uint64(0xDEADBEEF), h.SessionUID)
		assert.Equal(t, uint32(777), h.FrameIdentifier)
		assert.Equal(t, uint8(19), h.PlayerCarIndex)
	})

	t.Run("2024", func(t *testing.T) {
		buf := make([]byte, 29)
		binary.LittleEndian.PutUint16(buf[0:], 2024)
		buf[2] = 24
		buf[6] = uint8(layout.PacketCarTelemetry)
		binary.LittleEndian.PutUint32(buf[15:], math.Float32bits(12.5))
		binary.LittleEndian.PutUint32(buf[23:], 4242)
		buf[27] = 3
		buf[28] = 255

		h, lay, err := DecodeHeader(buf, reg)
		require.NoError(t, err)
		assert.Equal(t, layout.Gen2024, lay.Generation)
		assert.Equal(t, uint8(24), h.GameYear)
		assert.Equal(t, layout.PacketCarTelemetry, h.PacketID)
		assert.Equal(t, float32(12.5), h.SessionTime)
		assert.Equal(t, uint32(4242), h.OverallFrameIdentifier)
		assert.Equal(t, uint8(3), h.PlayerCarIndex)
		assert.Equal(t, uint8(255), h.SecondaryPlayerCarIndex)
	})

	t.Run("TooShort", func(t *testing.T) {
		for _, n := range []int{0, 1, 2, 23, 28} {
			buf := make([]byte, n)
			if n >= 2 {
				binary.LittleEndian.PutUint16(buf, 2023)
			}
			_, _, err := DecodeHeader(buf, reg)
			assert.True(t, errors.Is(err, ErrTooShort), "len %d", n)
		}
	})

	t.Run("2022HeaderFitsIn24", func(t *testing.T) {
		buf := NewBuilder(layout.Layout2022(), layout.PacketEvent).Bytes()[:24]
		_, _, err := DecodeHeader(buf, reg)
		assert.NoError(t, err)
	})
}

// Reference buffers written byte by byte at the published positions.
func TestDecodeLap_HandBuilt(t *testing.T) {
	tests := []struct {
		name   string
		lay    *layout.Layout
		header int
		entry  int
		// absolute positions inside the entry
		currentLap, position, lapNum, pit, result int
	}{
		{"2022", layout.Layout2022(), 24, 43, 4, 24, 25, 26, 36},
		{"2023", layout.Layout2023(), 29, 50, 4, 30, 31, 32, 43},
		{"2024", layout.Layout2024(), 29, 57, 4, 32, 33, 34, 45},
		{"2025", layout.Layout2025(), 29, 57, 4, 32, 33, 34, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const idx = 5
			buf := make([]byte, tt.header+22*tt.entry)
			base := tt.header + idx*tt.entry
			binary.LittleEndian.PutUint32(buf[base+tt.currentLap:], 65432)
			buf[base+tt.position] = 7
			buf[base+tt.lapNum] = 3
			buf[base+tt.pit] = 1
			buf[base+tt.result] = 2

			rec := DecodeLap(buf, idx, tt.lay)
			assert.Equal(t, uint32(65432), rec.CurrentLapTimeMS)
			assert.Equal(t, uint8(7), rec.CarPosition)
			assert.Equal(t, uint8(3), rec.CurrentLapNum)
			assert.Equal(t, uint8(1), rec.PitStatus)
			assert.Equal(t, uint8(2), rec.ResultStatus)

			// Neighbouring slot stays empty.
			other := DecodeLap(buf, idx+1, tt.lay)
			assert.Equal(t, LapRecord{}, other)
		})
	}
}

func TestDecodeTelemetry_HandBuilt(t *testing.T) {
	lay := layout.Layout2023()
	const idx = 2
	buf := make([]byte, 29+22*60)
	base := 29 + idx*60
	binary.LittleEndian.PutUint16(buf[base:], 287)
	binary.LittleEndian.PutUint32(buf[base+2:], math.Float32bits(0.75))
	buf[base+15] = 0xFF // reverse
	binary.LittleEndian.PutUint16(buf[base+16:], 11234)
	buf[base+18] = 1
	buf[base+19] = 88
	binary.LittleEndian.PutUint16(buf[base+22+6:], 900)
	binary.LittleEndian.PutUint32(buf[base+40+12:], math.Float32bits(23.1))
	buf[base+59] = 4

	rec := DecodeTelemetry(buf, idx, lay)
	assert.Equal(t, uint16(287), rec.Speed)
	assert.Equal(t, float32(0.75), rec.Throttle)
	assert.Equal(t, int8(-1), rec.Gear)
	assert.Equal(t, uint16(11234), rec.EngineRPM)
	assert.Equal(t, uint8(1), rec.DRS)
	assert.Equal(t, uint8(88), rec.RevLightsPercent)
	assert.Equal(t, uint16(900), rec.BrakesTemperature[3])
	assert.Equal(t, float32(23.1), rec.TyresPressure[3])
	assert.Equal(t, uint8(4), rec.SurfaceType[3])
}

func TestDecodeStatus_HandBuilt(t *testing.T) {
	tests := []struct {
		lay          *layout.Layout
		header, size int
		ers          int
	}{
		{layout.Layout2022(), 24, 47, 29},
		{layout.Layout2023(), 29, 55, 37},
	}

	for _, tt := range tests {
		t.Run(tt.lay.String(), func(t *testing.T) {
			buf := make([]byte, tt.header+22*tt.size)
			base := tt.header
			binary.LittleEndian.PutUint16(buf[base+17:], 13000)
			buf[base+25] = 16
			buf[base+26] = 17
			buf[base+27] = 9
			binary.LittleEndian.PutUint32(buf[base+tt.ers:], math.Float32bits(4e6))

			rec := DecodeStatus(buf, 0, tt.lay)
			assert.Equal(t, uint16(13000), rec.MaxRPM)
			assert.Equal(t, uint8(16), rec.ActualTyreCompound)
			assert.Equal(t, uint8(17), rec.VisualTyreCompound)
			assert.Equal(t, uint8(9), rec.TyresAgeLaps)
			assert.Equal(t, float32(4e6), rec.ERSStoreEnergy)
		})
	}
}

func TestDecodeParticipant_HandBuilt(t *testing.T) {
	tests := []struct {
		lay          *layout.Layout
		header, size int
		nameLen      int
	}{
		{layout.Layout2022(), 24, 56, 48},
		{layout.Layout2024(), 29, 60, 48},
		{layout.Layout2025(), 29, 57, 32},
	}

	for _, tt := range tests {
		t.Run(tt.lay.String(), func(t *testing.T) {
			const idx = 1
			buf := make([]byte, tt.header+1+22*tt.size)
			buf[tt.header] = 20
			base := tt.header + 1 + idx*tt.size
			buf[base+3] = 8
			copy(buf[base+7:base+7+tt.nameLen], "  Lando NORRIS\x00garbage")

			rec := DecodeParticipant(buf, idx, tt.lay)
			assert.Equal(t, uint8(20), rec.NumActiveCars)
			assert.Equal(t, uint8(8), rec.TeamID)
			assert.Equal(t, "Lando NORRIS", rec.Name)
		})
	}
}

func TestRoundTrip_AllGenerations(t *testing.T) {
	reg := layout.Default()

	for _, lay := range allLayouts() {
		t.Run(lay.String(), func(t *testing.T) {
			tel := TelemetryRecord{
				Speed: 301, Throttle: 1, Brake: 0.25, Gear: 7, EngineRPM: 11800,
				DRS: 1, RevLightsPercent: 95, BrakesTemperature: [4]uint16{500, 510, 520, 530},
				TyresPressure: [4]float32{22.5, 22.6, 21.9, 21.8}, SurfaceType: [4]uint8{0, 0, 1, 1},
			}
			d := decodeBuilt(t, reg, NewBuilder(lay, layout.PacketCarTelemetry).Telemetry(4, tel).Header(Header{PlayerCarIndex: 4}))
			assert.Equal(t, tel, d.Record)
			assert.Equal(t, 4, d.VehicleIndex)

			lap := LapRecord{
				LastLapTimeMS: 91234, CurrentLapTimeMS: 65432, Sector1TimeMS: 30100,
				LapDistance: 1234.5, CarPosition: 3, CurrentLapNum: 12, PitStatus: 2,
				NumPitStops: 1, ResultStatus: 2, PitStopTimerMS: 2300, GridPosition: 6,
			}
			d = decodeBuilt(t, reg, NewBuilder(lay, layout.PacketLapData).Lap(0, lap))
			assert.Equal(t, lap, d.Record)

			st := StatusRecord{
				MaxRPM: 13000, IdleRPM: 4000, MaxGears: 8, ActualTyreCompound: 18,
				VisualTyreCompound: 18, TyresAgeLaps: 4, VehicleFIAFlags: -1, ERSStoreEnergy: 2e6,
			}
			d = decodeBuilt(t, reg, NewBuilder(lay, layout.PacketCarStatus).Status(0, st))
			assert.Equal(t, st, d.Record)

			part := ParticipantRecord{NumActiveCars: 20, TeamID: 2, RaceNumber: 1, Name: "Max VERSTAPPEN"}
			d = decodeBuilt(t, reg, NewBuilder(lay, layout.PacketParticipants).Participant(0, part))
			assert.Equal(t, part, d.Record)

			sess := SessionRecord{TotalLaps: 57, TrackLength: 5412, SafetyCarStatus: 2, TrackTemperature: -3, NetworkGame: 1}
			d = decodeBuilt(t, reg, NewBuilder(lay, layout.PacketSession).Session(sess))
			assert.Equal(t, sess, d.Record)

			cls := ClassificationRecord{NumCars: 20, Position: 1, NumLaps: 57, Points: 25, ResultStatus: 3, BestLapTimeMS: 90123, TotalRaceTime: 5400.25}
			d = decodeBuilt(t, reg, NewBuilder(lay, layout.PacketFinalClassification).Classification(0, cls))
			assert.Equal(t, cls, d.Record)
			assert.Zero(t, d.ZeroFilled)
		})
	}
}

func decodeBuilt(t *testing.T, reg *layout.Registry, b *Builder) Decoded {
	t.Helper()
	d, err := Decode(b.Bytes(), reg, -1)
	require.NoError(t, err)
	require.False(t, d.FellBack)
	return d
}

func TestDecode_GenerationSpecificFields(t *testing.T) {
	reg := layout.Default()

	lap := LapRecord{DeltaToCarInFrontMS: 1500, DeltaToCarInFrontMinutes: 1, SpeedTrapFastestSpeed: 330.5}
	d := decodeBuilt(t, reg, NewBuilder(layout.Layout2022(), layout.PacketLapData).Lap(0, lap))
	got := d.Record.(LapRecord)
	assert.Zero(t, got.DeltaToCarInFrontMS, "2022 carries no deltas")
	assert.Zero(t, got.SpeedTrapFastestSpeed)

	d = decodeBuilt(t, reg, NewBuilder(layout.Layout2024(), layout.PacketLapData).Lap(0, lap))
	got = d.Record.(LapRecord)
	assert.Equal(t, uint16(1500), got.DeltaToCarInFrontMS)
	assert.Equal(t, uint8(1), got.DeltaToCarInFrontMinutes)
	assert.Equal(t, float32(330.5), got.SpeedTrapFastestSpeed)

	part := ParticipantRecord{Name: "Oscar PIASTRI", NumColours: 2, LiveryColours: [4]RGB{{255, 128, 0}, {0, 0, 0}}}
	d = decodeBuilt(t, reg, NewBuilder(layout.Layout2025(), layout.PacketParticipants).Participant(0, part))
	gotPart := d.Record.(ParticipantRecord)
	assert.Equal(t, RGB{255, 128, 0}, gotPart.LiveryColours[0])
	assert.Equal(t, uint8(2), gotPart.NumColours)
}

func TestDecode_TruncatedNeverPanics(t *testing.T) {
	reg := layout.Default()
	ids := []layout.PacketID{
		layout.PacketCarTelemetry, layout.PacketLapData, layout.PacketCarStatus,
		layout.PacketParticipants, layout.PacketSession, layout.PacketEvent,
		layout.PacketFinalClassification, layout.PacketMotion,
	}

	for _, lay := range allLayouts() {
		for _, id := range ids {
			full := NewBuilder(lay, id).Header(Header{PlayerCarIndex: 21}).Bytes()
			for n := 0; n <= len(full); n++ {
				buf := full[:n]
				assert.NotPanics(t, func() {
					d, err := Decode(buf, reg, -1)
					if n < lay.HeaderSize {
						assert.True(t, errors.Is(err, ErrTooShort))
						return
					}
					assert.NoError(t, err)
					assert.Equal(t, id, d.PacketID())
				})
			}
		}
	}
}

func TestDecode_ShortFieldsZeroFill(t *testing.T) {
	reg := layout.Default()
	lay := layout.Layout2023()
	tel := TelemetryRecord{Speed: 250, Gear: 6, EngineRPM: 11000, SurfaceType: [4]uint8{1, 1, 1, 1}}
	full := NewBuilder(lay, layout.PacketCarTelemetry).Telemetry(0, tel).Bytes()

	// Cut in the middle of the RPM field of slot 0.
	buf := full[:29+17]
	d, err := Decode(buf, reg, 0)
	require.NoError(t, err)

	got := d.Record.(TelemetryRecord)
	assert.Equal(t, uint16(250), got.Speed)
	assert.Equal(t, int8(6), got.Gear)
	assert.Zero(t, got.EngineRPM)
	assert.Equal(t, [4]uint8{}, got.SurfaceType)
	assert.Positive(t, d.ZeroFilled)
}

func TestDecode_OutOfRangeVehicle(t *testing.T) {
	reg := layout.Default()
	lay := layout.Layout2024()
	buf := NewBuilder(lay, layout.PacketCarTelemetry).
		Telemetry(0, TelemetryRecord{Speed: 100}).
		Header(Header{PlayerCarIndex: 255}).
		Bytes()

	d, err := Decode(buf, reg, -1)
	require.NoError(t, err)
	assert.Equal(t, 255, d.VehicleIndex)
	assert.Equal(t, TelemetryRecord{}, d.Record)
	assert.Equal(t, 16, d.ZeroFilled)
}

func TestDecode_UnknownFormatFallsBack(t *testing.T) {
	reg := layout.Default()
	buf := NewBuilder(layout.Layout2025(), layout.PacketCarTelemetry).
		Telemetry(0, TelemetryRecord{Speed: 123}).
		Bytes()
	binary.LittleEndian.PutUint16(buf, 2026)

	d, err := Decode(buf, reg, 0)
	require.NoError(t, err)
	assert.True(t, d.FellBack)
	assert.Equal(t, layout.Gen2025, d.Generation)
	assert.Equal(t, uint16(123), d.Record.(TelemetryRecord).Speed)
}

func TestDecode_UnknownPacketType(t *testing.T) {
	reg := layout.Default()
	buf := NewBuilder(layout.Layout2023(), layout.PacketCarDamage).Bytes()

	d, err := Decode(buf, reg, 0)
	require.NoError(t, err)
	assert.Nil(t, d.Record)
	assert.Equal(t, layout.PacketCarDamage, d.PacketID())
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name       string
		lay        *layout.Layout
		code       string
		operandAt  int
		vehicle    uint8
		hasVehicle bool
	}{
		{"Retirement", layout.Layout2023(), "RTMT", 4, 7, true},
		{"Penalty", layout.Layout2022(), "PENA", 6, 11, true},
		{"Chequered", layout.Layout2024(), "CHQF", 4, 0, false},
		{"SessionEnd", layout.Layout2022(), "SEND", 4, 0, false},
		{"OvertakeBefore2023", layout.Layout2022(), "OVTK", 4, 0, false},
		{"Overtake", layout.Layout2023(), "OVTK", 4, 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.lay.HeaderSize+16)
			copy(buf[tt.lay.HeaderSize:], tt.code)
			buf[tt.lay.HeaderSize+tt.operandAt] = 9
			if tt.hasVehicle {
				buf[tt.lay.HeaderSize+tt.operandAt] = tt.vehicle
			}

			rec := DecodeEvent(buf, tt.lay)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.hasVehicle, rec.HasVehicle)
			if tt.hasVehicle {
				assert.Equal(t, tt.vehicle, rec.VehicleIndex)
			} else {
				assert.Zero(t, rec.VehicleIndex)
			}
		})
	}

	t.Run("OperandCutOff", func(t *testing.T) {
		lay := layout.Layout2023()
		buf := make([]byte, lay.HeaderSize+4)
		copy(buf[lay.HeaderSize:], "RTMT")
		rec := DecodeEvent(buf, lay)
		assert.Equal(t, "RTMT", rec.Code)
		assert.False(t, rec.HasVehicle)
	})

	t.Run("BuilderRoundTrip", func(t *testing.T) {
		lay := layout.Layout2024()
		buf := NewBuilder(lay, layout.PacketEvent).Event(EventRecord{Code: "RTMT", VehicleIndex: 3}).Bytes()
		assert.Equal(t, EventRecord{Code: "RTMT", VehicleIndex: 3, HasVehicle: true}, DecodeEvent(buf, lay))
	})
}

func TestDecodeName(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"Plain", []byte("Charles LECLERC\x00\x00\x00"), "Charles LECLERC"},
		{"Padded", []byte("\t  Lewis HAMILTON \r\n\x00"), "Lewis HAMILTON"},
		{"NoTerminator", []byte("George RUSSELL"), "George RUSSELL"},
		{"Accents", []byte("Sergio PÉREZ\x00"), "Sergio PÉREZ"},
		{"Empty", make([]byte, 48), UnknownName},
		{"OnlySpaces", []byte("    \x00"), UnknownName},
		{"InvalidUTF8", []byte{'A', 0xff, 0xfe, 'B', 0}, UnknownName},
		{"GarbageAfterNUL", []byte{'Z', 'H', 'O', 'U', 0, 0xff, 0xff}, "ZHOU"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeName(tt.raw))
		})
	}
}
