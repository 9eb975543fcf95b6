package rbm

import (
	"fmt"

	"github.com/Faultbox/rbmkit/pkg/math"
)

// VertexFormat selects the physical layout of General and Lambert vertices.
type VertexFormat uint32

const (
	VertexFormatF32 VertexFormat = 0 // full-precision floats
	VertexFormatI16 VertexFormat = 1 // signed-normalized 16-bit positions and UVs
)

// String returns a human-readable format name.
func (f VertexFormat) String() string {
	switch f {
	case VertexFormatF32:
		return "F32"
	case VertexFormatI16:
		return "I16"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(f))
	}
}

// Valid reports whether f names a known layout.
func (f VertexFormat) Valid() bool {
	return f == VertexFormatF32 || f == VertexFormatI16
}

// GenericVertex is the canonical vertex every physical layout converts to.
// Fields a layout does not store are left at their defaults: zero vectors,
// zero bone weights and indices, and opaque white for Color. Packed records
// the stored direction words so a layout converts back bit-exactly.
type GenericVertex struct {
	Position    math.Vec3
	Normal      math.Vec3
	Tangent     math.Vec3
	Binormal    math.Vec3
	UV0         math.Vec2
	UV1         math.Vec2
	Color       math.Vec4
	BoneWeights [8]float32
	BoneIndices [8]uint32
	Packed      PackedDirections
}

// White is the default vertex color for layouts without a color channel.
var White = math.Vec4{X: 1, Y: 1, Z: 1, W: 1}

// Vertex is implemented by every physical vertex layout.
type Vertex interface {
	Generic() GenericVertex
}

var (
	_ Vertex = SimpleVertex{}
	_ Vertex = GeneralVertex{}
	_ Vertex = DeformableVertex{}
	_ Vertex = SkinnedVertex{}
)

// weightToByte quantizes a bone weight in [0, 1] to a byte.
func weightToByte(w float32) uint8 {
	return uint8(unitToByte(w))
}

func weightFromByte(b uint8) float32 {
	return float32(b) / 255
}

func boneIndexToByte(i uint32) uint8 {
	return uint8(min(i, 0xff))
}
