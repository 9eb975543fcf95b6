package rbm

import (
	"bytes"
	"encoding/binary"
	gomath "math"

	"github.com/Faultbox/rbmkit/pkg/encoding"
	"github.com/Faultbox/rbmkit/pkg/math"
)

// reader decodes multi-byte fields from an in-memory buffer under a byte
// order chosen after the endianness marker has been read. The first failure
// is kept in err and every later read returns a zero value.
type reader struct {
	data  []byte
	off   int
	order binary.ByteOrder
	err   error
}

func newReader(data []byte) *reader {
	return &reader{data: data, order: binary.LittleEndian}
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

// fail records err at the current offset unless an earlier error is pending.
func (r *reader) fail(err error) {
	r.failAt(r.off, err)
}

func (r *reader) failAt(off int, err error) {
	if r.err == nil {
		r.err = &OffsetError{Op: "decode", Offset: int64(off), Err: err}
	}
}

func (r *reader) take(n int) ([]byte, bool) {
	if r.err != nil {
		return nil, false
	}
	if n < 0 || n > r.remaining() {
		r.fail(ErrTruncated)
		return nil, false
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, true
}

func (r *reader) u8() uint8 {
	b, ok := r.take(1)
	if !ok {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b, ok := r.take(2)
	if !ok {
		return 0
	}
	return r.order.Uint16(b)
}

func (r *reader) i16() int16 {
	return int16(r.u16())
}

func (r *reader) u32() uint32 {
	b, ok := r.take(4)
	if !ok {
		return 0
	}
	return r.order.Uint32(b)
}

func (r *reader) f32() float32 {
	return gomath.Float32frombits(r.u32())
}

func (r *reader) vec2() math.Vec2 {
	return math.Vec2{X: r.f32(), Y: r.f32()}
}

func (r *reader) vec3() math.Vec3 {
	return math.Vec3{X: r.f32(), Y: r.f32(), Z: r.f32()}
}

func (r *reader) vec4() math.Vec4 {
	return math.Vec4{X: r.f32(), Y: r.f32(), Z: r.f32(), W: r.f32()}
}

// text reads a u32 length-prefixed ISO-8859-1 string.
func (r *reader) text() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if uint64(n) > uint64(r.remaining()) {
		r.failAt(r.off-4, ErrTruncated)
		return ""
	}
	b, _ := r.take(int(n))
	return encoding.Latin1ToUTF8(b)
}

// writer accumulates an encoded model. Writes to the underlying buffer never
// fail; encode errors come only from validation and are recorded in err.
type writer struct {
	buf   bytes.Buffer
	order binary.ByteOrder
	err   error
}

func newWriter(order binary.ByteOrder) *writer {
	return &writer{order: order}
}

func (w *writer) offset() int {
	return w.buf.Len()
}

func (w *writer) fail(err error) {
	if w.err == nil {
		w.err = &OffsetError{Op: "encode", Offset: int64(w.offset()), Err: err}
	}
}

func (w *writer) raw(b []byte) {
	w.buf.Write(b)
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) i16(v int16) {
	w.u16(uint16(v))
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) f32(v float32) {
	w.u32(gomath.Float32bits(v))
}

func (w *writer) vec2(v math.Vec2) {
	w.f32(v.X)
	w.f32(v.Y)
}

func (w *writer) vec3(v math.Vec3) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
}

func (w *writer) vec4(v math.Vec4) {
	w.f32(v.X)
	w.f32(v.Y)
	w.f32(v.Z)
	w.f32(v.W)
}

func (w *writer) text(s string) {
	b, err := encoding.UTF8ToLatin1(s)
	if err != nil {
		w.fail(ErrInvalidString)
		return
	}
	n, err := countOf(len(b))
	if err != nil {
		w.fail(err)
		return
	}
	w.u32(n)
	w.raw(b)
}
