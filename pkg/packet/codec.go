package packet

import (
	"encoding/binary"
	"math"

	"apexgo/pkg/layout"
)

// fieldCodec visits record fields by offset. The reader fills the pointers
// from a buffer, the writer serialises them into one. Offsets are relative to
// the record base; layout.Absent fields are skipped by both.
type fieldCodec interface {
	u8(off int, v *uint8)
	i8(off int, v *int8)
	u16(off int, v *uint16)
	u32(off int, v *uint32)
	u64(off int, v *uint64)
	f32(off int, v *float32)
	f64(off int, v *float64)
	u8s(off int, v []uint8)
	u16s(off int, v []uint16)
	f32s(off int, v []float32)
	name(off, length int, v *string)
}

var le = binary.LittleEndian

// reader never reads outside buf. A field that does not fit resolves to its
// zero value and bumps zeroFilled.
type reader struct {
	buf        []byte
	base       int
	zeroFilled int
}

func newReader(buf []byte, base int) *reader {
	return &reader{buf: buf, base: base}
}

func (r *reader) span(off, width int) []byte {
	if off == layout.Absent {
		return nil
	}
	start := r.base + off
	if r.base < 0 || start < 0 || start+width > len(r.buf) {
		r.zeroFilled++
		return nil
	}
	return r.buf[start : start+width]
}

func (r *reader) u8(off int, v *uint8) {
	*v = 0
	if b := r.span(off, 1); b != nil {
		*v = b[0]
	}
}

func (r *reader) i8(off int, v *int8) {
	*v = 0
	if b := r.span(off, 1); b != nil {
		*v = int8(b[0])
	}
}

func (r *reader) u16(off int, v *uint16) {
	*v = 0
	if b := r.span(off, 2); b != nil {
		*v = le.Uint16(b)
	}
}

func (r *reader) u32(off int, v *uint32) {
	*v = 0
	if b := r.span(off, 4); b != nil {
		*v = le.Uint32(b)
	}
}

func (r *reader) u64(off int, v *uint64) {
	*v = 0
	if b := r.span(off, 8); b != nil {
		*v = le.Uint64(b)
	}
}

func (r *reader) f32(off int, v *float32) {
	*v = 0
	if b := r.span(off, 4); b != nil {
		*v = math.Float32frombits(le.Uint32(b))
	}
}

func (r *reader) f64(off int, v *float64) {
	*v = 0
	if b := r.span(off, 8); b != nil {
		*v = math.Float64frombits(le.Uint64(b))
	}
}

func (r *reader) u8s(off int, v []uint8) {
	clear(v)
	if b := r.span(off, len(v)); b != nil {
		copy(v, b)
	}
}

func (r *reader) u16s(off int, v []uint16) {
	clear(v)
	if b := r.span(off, 2*len(v)); b != nil {
		for i := range v {
			v[i] = le.Uint16(b[2*i:])
		}
	}
}

func (r *reader) f32s(off int, v []float32) {
	clear(v)
	if b := r.span(off, 4*len(v)); b != nil {
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(b[4*i:]))
		}
	}
}

func (r *reader) name(off, length int, v *string) {
	*v = UnknownName
	if b := r.span(off, length); b != nil {
		*v = DecodeName(b)
	}
}

// writer is the inverse of reader. Fields outside buf are silently dropped.
type writer struct {
	buf  []byte
	base int
}

func (w *writer) span(off, width int) []byte {
	if off == layout.Absent {
		return nil
	}
	start := w.base + off
	if start < 0 || start+width > len(w.buf) {
		return nil
	}
	return w.buf[start : start+width]
}

func (w *writer) u8(off int, v *uint8) {
	if b := w.span(off, 1); b != nil {
		b[0] = *v
	}
}

func (w *writer) i8(off int, v *int8) {
	if b := w.span(off, 1); b != nil {
		b[0] = uint8(*v)
	}
}

func (w *writer) u16(off int, v *uint16) {
	if b := w.span(off, 2); b != nil {
		le.PutUint16(b, *v)
	}
}

func (w *writer) u32(off int, v *uint32) {
	if b := w.span(off, 4); b != nil {
		le.PutUint32(b, *v)
	}
}

func (w *writer) u64(off int, v *uint64) {
	if b := w.span(off, 8); b != nil {
		le.PutUint64(b, *v)
	}
}

func (w *writer) f32(off int, v *float32) {
	if b := w.span(off, 4); b != nil {
		le.PutUint32(b, math.Float32bits(*v))
	}
}

func (w *writer) f64(off int, v *float64) {
	if b := w.span(off, 8); b != nil {
		le.PutUint64(b, math.Float64bits(*v))
	}
}

func (w *writer) u8s(off int, v []uint8) {
	if b := w.span(off, len(v)); b != nil {
		copy(b, v)
	}
}

func (w *writer) u16s(off int, v []uint16) {
	if b := w.span(off, 2*len(v)); b != nil {
		for i, x := range v {
			le.PutUint16(b[2*i:], x)
		}
	}
}

func (w *writer) f32s(off int, v []float32) {
	if b := w.span(off, 4*len(v)); b != nil {
		for i, x := range v {
			le.PutUint32(b[4*i:], math.Float32bits(x))
		}
	}
}

// name writes a NUL-terminated string, truncated to fit the field.
func (w *writer) name(off, length int, v *string) {
	b := w.span(off, length)
	if b == nil {
		return
	}
	clear(b)
	copy(b[:length-1], *v)
}
