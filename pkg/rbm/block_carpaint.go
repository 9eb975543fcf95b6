package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// CarPaintVersion is the only CarPaint attribute layout.
const CarPaintVersion uint8 = 14

func validCarPaintVersion(v uint8) bool {
	return v == CarPaintVersion
}

// CarPaintFlags is the render flag bitset of CarPaint blocks.
type CarPaintFlags uint32

const (
	CarPaintNoCulling CarPaintFlags = 1 << iota
	CarPaintAlphaBlending
	CarPaintTwoToned
	CarPaintDeformable
	CarPaintUseDirt
	CarPaintUseDecals
)

// Has reports whether every bit of mask is set.
func (f CarPaintFlags) Has(mask CarPaintFlags) bool {
	return f&mask == mask
}

// CarPaintAttributes is the attribute body of a CarPaint block.
type CarPaintAttributes struct {
	Color1        math.Vec4
	Color2        math.Vec4
	SpecularPower float32
	DepthBias     float32
	Flags         CarPaintFlags
}

// CarPaintBlock is a deformable vehicle body block. It is the only block
// kind with 32-bit indices.
type CarPaintBlock struct {
	Attributes CarPaintAttributes
	Material   Material
	Vertices   []DeformableVertex
	Indices    []uint32
}

func (b *CarPaintBlock) Kind() BlockKind                  { return BlockCarPaint }
func (b *CarPaintBlock) MaterialInfo() Material           { return b.Material }
func (b *CarPaintBlock) VertexCount() int                 { return len(b.Vertices) }
func (b *CarPaintBlock) IndexCount() int                  { return len(b.Indices) }
func (b *CarPaintBlock) IndexList() []uint32              { return indexList(b.Indices) }
func (b *CarPaintBlock) GenericVertices() []GenericVertex { return genericVertices(b.Vertices, nil) }

func (b *CarPaintBlock) decode(r *reader) {
	if _, ok := readBlockVersion(r, BlockCarPaint, validCarPaintVersion); !ok {
		return
	}
	a := &b.Attributes
	a.Color1 = r.vec4()
	a.Color2 = r.vec4()
	a.SpecularPower = r.f32()
	a.DepthBias = r.f32()
	a.Flags = CarPaintFlags(r.u32())
	b.Material.decode(r)
	b.Vertices = readBuffer[DeformableVertex](r, struct{}{})
	b.Indices = readIndices[uint32](r, len(b.Vertices))
}

func (b *CarPaintBlock) encode(w *writer) {
	a := &b.Attributes
	w.u8(CarPaintVersion)
	w.vec4(a.Color1)
	w.vec4(a.Color2)
	w.f32(a.SpecularPower)
	w.f32(a.DepthBias)
	w.u32(uint32(a.Flags))
	b.Material.encode(w)
	writeBuffer(w, b.Vertices, struct{}{})
	writeIndices(w, b.Indices, len(b.Vertices))
}
