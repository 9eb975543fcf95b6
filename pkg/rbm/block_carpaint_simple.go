package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// CarPaintSimpleVersion is the only CarPaintSimple attribute layout.
const CarPaintSimpleVersion uint8 = 1

func validCarPaintSimpleVersion(v uint8) bool {
	return v == CarPaintSimpleVersion
}

// CarPaintSimpleFlags is the render flag bitset of CarPaintSimple blocks.
type CarPaintSimpleFlags uint32

const (
	CarPaintSimpleNoCulling CarPaintSimpleFlags = 1 << iota
	CarPaintSimpleAlphaBlending
	CarPaintSimpleUseDirt
)

// Has reports whether every bit of mask is set.
func (f CarPaintSimpleFlags) Has(mask CarPaintSimpleFlags) bool {
	return f&mask == mask
}

// CarPaintSimpleAttributes is the attribute body of a CarPaintSimple block.
type CarPaintSimpleAttributes struct {
	Color         math.Vec4
	SpecularPower float32
	Flags         CarPaintSimpleFlags
}

// CarPaintSimpleBlock is a rigid vehicle part block.
type CarPaintSimpleBlock struct {
	Attributes CarPaintSimpleAttributes
	Material   Material
	Vertices   []SimpleVertex
	Indices    []uint16
}

func (b *CarPaintSimpleBlock) Kind() BlockKind                  { return BlockCarPaintSimple }
func (b *CarPaintSimpleBlock) MaterialInfo() Material           { return b.Material }
func (b *CarPaintSimpleBlock) VertexCount() int                 { return len(b.Vertices) }
func (b *CarPaintSimpleBlock) IndexCount() int                  { return len(b.Indices) }
func (b *CarPaintSimpleBlock) IndexList() []uint32              { return indexList(b.Indices) }
func (b *CarPaintSimpleBlock) GenericVertices() []GenericVertex { return genericVertices(b.Vertices, nil) }

func (b *CarPaintSimpleBlock) decode(r *reader) {
	if _, ok := readBlockVersion(r, BlockCarPaintSimple, validCarPaintSimpleVersion); !ok {
		return
	}
	b.Attributes.Color = r.vec4()
	b.Attributes.SpecularPower = r.f32()
	b.Attributes.Flags = CarPaintSimpleFlags(r.u32())
	b.Material.decode(r)
	b.Vertices = readBuffer[SimpleVertex](r, struct{}{})
	b.Indices = readIndices[uint16](r, len(b.Vertices))
}

func (b *CarPaintSimpleBlock) encode(w *writer) {
	w.u8(CarPaintSimpleVersion)
	w.vec4(b.Attributes.Color)
	w.f32(b.Attributes.SpecularPower)
	w.u32(uint32(b.Attributes.Flags))
	b.Material.encode(w)
	writeBuffer(w, b.Vertices, struct{}{})
	writeIndices(w, b.Indices, len(b.Vertices))
}
