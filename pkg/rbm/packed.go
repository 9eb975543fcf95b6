package rbm

import (
	gomath "math"

	"github.com/chewxy/math32"

	"github.com/Faultbox/rbmkit/pkg/math"
)

// Packed normals store each direction component as an unsigned byte c with
// value c/127.5 - 1, giving a resolution of 1/127.5 per axis. Components
// outside [-1, 1] saturate. Two physical carriers exist; the vertex layout
// decides which one is used.

const maxPacked24 = 1<<24 - 1

func packComponent(c float32) uint32 {
	if math32.IsNaN(c) {
		return 128
	}
	q := gomath.Round((float64(c) + 1) * 127.5)
	return uint32(math.Clamp(q, 0, 255))
}

func unpackComponent(b uint32) float32 {
	return float32(b&0xff)/127.5 - 1
}

func packBytes(v math.Vec3) uint32 {
	return packComponent(v.X) | packComponent(v.Y)<<8 | packComponent(v.Z)<<16
}

func unpackBytes(bits uint32) math.Vec3 {
	return math.Vec3{
		X: unpackComponent(bits),
		Y: unpackComponent(bits >> 8),
		Z: unpackComponent(bits >> 16),
	}
}

// PackedNormalF32 carries three packed bytes inside an integral float:
// x + 256*y + 65536*z.
type PackedNormalF32 float32

// PackNormalF32 quantizes a direction. It never fails.
func PackNormalF32(v math.Vec3) PackedNormalF32 {
	return PackedNormalF32(float32(packBytes(v)))
}

// Vec3 recovers the direction. Any bit pattern decodes: NaN and negative
// values read as zero bytes, values above 2^24-1 saturate, and fractional
// parts are truncated.
func (p PackedNormalF32) Vec3() math.Vec3 {
	f := float64(p)
	if !(f > 0) {
		return unpackBytes(0)
	}
	if f > maxPacked24 {
		f = maxPacked24
	}
	return unpackBytes(uint32(f))
}

// PackedNormalU32 carries the packed bytes in the low 24 bits of an integer.
// The high byte is ignored on decode; PackNormalU32 writes it as zero.
type PackedNormalU32 uint32

// PackNormalU32 quantizes a direction. It never fails.
func PackNormalU32(v math.Vec3) PackedNormalU32 {
	return PackedNormalU32(packBytes(v))
}

// Vec3 recovers the direction.
func (p PackedNormalU32) Vec3() math.Vec3 {
	return unpackBytes(uint32(p))
}

// PackedCarrier names the physical carrier a packed direction was read from.
type PackedCarrier uint8

const (
	CarrierNone PackedCarrier = iota
	CarrierF32
	CarrierU32
)

// PackedDirections keeps the stored words behind a canonical vertex's
// Normal, Tangent and Binormal. F32 words hold the float's bit pattern.
//
// Several words decode to the same direction (U32 high bytes, fractional or
// out-of-range F32 values), so the canonical Vec3 alone cannot reproduce
// them. Converting back to a layout with the same carrier reuses a stored
// word while its field still holds exactly the direction it decodes to;
// an edited direction or a different carrier is packed afresh.
type PackedDirections struct {
	Carrier  PackedCarrier
	Normal   uint32
	Tangent  uint32
	Binormal uint32
}

func f32Word(p PackedNormalF32) uint32 {
	return gomath.Float32bits(float32(p))
}

func (d PackedDirections) f32(word uint32, dir math.Vec3) PackedNormalF32 {
	if d.Carrier == CarrierF32 {
		if stored := PackedNormalF32(gomath.Float32frombits(word)); stored.Vec3() == dir {
			return stored
		}
	}
	return PackNormalF32(dir)
}

func (d PackedDirections) u32(word uint32, dir math.Vec3) PackedNormalU32 {
	if d.Carrier == CarrierU32 {
		if stored := PackedNormalU32(word); stored.Vec3() == dir {
			return stored
		}
	}
	return PackNormalU32(dir)
}

// PackedColor is an RGBA8 color with red in the low byte.
type PackedColor uint32

// unitToByte quantizes a value in [0, 1] to a byte, saturating outside it.
func unitToByte(f float32) uint32 {
	if math32.IsNaN(f) {
		return 0
	}
	return uint32(math.Clamp(gomath.Round(float64(f)*255), 0, 255))
}

// PackColor quantizes a color whose components are in [0, 1].
func PackColor(c math.Vec4) PackedColor {
	return PackedColor(unitToByte(c.X) | unitToByte(c.Y)<<8 | unitToByte(c.Z)<<16 | unitToByte(c.W)<<24)
}

// Vec4 returns the color with components in [0, 1].
func (c PackedColor) Vec4() math.Vec4 {
	return math.Vec4{
		X: float32(c&0xff) / 255,
		Y: float32(c>>8&0xff) / 255,
		Z: float32(c>>16&0xff) / 255,
		W: float32(c>>24&0xff) / 255,
	}
}

// snormFromInt16 and snormToInt16 map an int16 to [-1, 1] and back. Decoded
// values re-quantize to the same integer.
func snormFromInt16(v int16) float32 {
	return float32(v) / gomath.MaxInt16
}

func snormToInt16(f float32) int16 {
	if math32.IsNaN(f) {
		return 0
	}
	q := gomath.Round(float64(f) * gomath.MaxInt16)
	return int16(math.Clamp(q, gomath.MinInt16, gomath.MaxInt16))
}
