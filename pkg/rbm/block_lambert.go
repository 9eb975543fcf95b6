package rbm

// LambertVersion is the only Lambert attribute layout.
const LambertVersion uint8 = 4

func validLambertVersion(v uint8) bool {
	return v == LambertVersion
}

// LambertFlags is the render flag bitset of Lambert blocks.
type LambertFlags uint32

const (
	LambertNoCulling LambertFlags = 1 << iota
	LambertAlphaTest
	LambertAlphaBlending
	LambertAdditiveAlpha
	LambertDynamicEmissive
	LambertNoDepthTest
)

// Has reports whether every bit of mask is set.
func (f LambertFlags) Has(mask LambertFlags) bool {
	return f&mask == mask
}

// LambertAttributes is the attribute body of a Lambert block. Its VertexInfo
// has no second UV extent.
type LambertAttributes struct {
	VertexInfo VertexInfo
	DepthBias  float32
	Flags      LambertFlags
}

// LambertBlock is an unlit diffuse-only mesh block. It shares the General
// vertex layouts.
type LambertBlock struct {
	Attributes LambertAttributes
	Material   Material
	Vertices   []GeneralVertex
	Indices    []uint16
}

func (b *LambertBlock) Kind() BlockKind        { return BlockLambert }
func (b *LambertBlock) MaterialInfo() Material { return b.Material }
func (b *LambertBlock) VertexCount() int       { return len(b.Vertices) }
func (b *LambertBlock) IndexCount() int        { return len(b.Indices) }
func (b *LambertBlock) IndexList() []uint32    { return indexList(b.Indices) }

func (b *LambertBlock) GenericVertices() []GenericVertex {
	info := b.Attributes.VertexInfo
	return genericVertices(b.Vertices, func(g GenericVertex) GenericVertex {
		return info.dequantize(g, false)
	})
}

func (b *LambertBlock) decode(r *reader) {
	if _, ok := readBlockVersion(r, BlockLambert, validLambertVersion); !ok {
		return
	}
	b.Attributes.VertexInfo.decode(r, false)
	b.Attributes.DepthBias = r.f32()
	b.Attributes.Flags = LambertFlags(r.u32())
	b.Material.decode(r)
	b.Vertices = readBuffer[GeneralVertex](r, b.Attributes.VertexInfo.Format)
	b.Indices = readIndices[uint16](r, len(b.Vertices))
}

func (b *LambertBlock) encode(w *writer) {
	w.u8(LambertVersion)
	b.Attributes.VertexInfo.encode(w, false)
	w.f32(b.Attributes.DepthBias)
	w.u32(uint32(b.Attributes.Flags))
	b.Material.encode(w)
	writeBuffer(w, b.Vertices, b.Attributes.VertexInfo.Format)
	writeIndices(w, b.Indices, len(b.Vertices))
}
