package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// GeneralVersion selects the attribute layout of a General block.
type GeneralVersion uint8

const (
	GeneralV2 GeneralVersion = 2 // no second UV extent
	GeneralV3 GeneralVersion = 3
)

func validGeneralVersion(v uint8) bool {
	return GeneralVersion(v) == GeneralV2 || GeneralVersion(v) == GeneralV3
}

// GeneralFlags is the render flag bitset of General blocks. Bits outside the
// named set are preserved as read.
type GeneralFlags uint32

const (
	GeneralNoCulling GeneralFlags = 1 << iota
	GeneralAlphaBlending
	GeneralAdditiveAlpha
	GeneralUsePalette
	GeneralUseSubSurfaceScattering
	GeneralUseChannelTextures
	GeneralUseSnow
	GeneralAnimateTexture
	GeneralAlphaTest
	GeneralUseAmbientOcclusion
	GeneralNoDepthTest
)

// GeneralKnownFlags is the union of every named General flag.
const GeneralKnownFlags = GeneralNoDepthTest<<1 - 1

// Has reports whether every bit of mask is set.
func (f GeneralFlags) Has(mask GeneralFlags) bool {
	return f&mask == mask
}

// Unknown returns the bits outside the named set.
func (f GeneralFlags) Unknown() GeneralFlags {
	return f &^ GeneralKnownFlags
}

// GeneralAttributes is the attribute body of a General block.
type GeneralAttributes struct {
	ChannelMask                 math.Vec4
	ChannelAmbientOcclusionMask math.Vec4
	DepthBias                   float32
	SpecularPower               float32
	VertexInfo                  VertexInfo
	Flags                       GeneralFlags
}

func (a *GeneralAttributes) decode(r *reader, version GeneralVersion) {
	a.ChannelMask = r.vec4()
	a.ChannelAmbientOcclusionMask = r.vec4()
	a.DepthBias = r.f32()
	a.SpecularPower = r.f32()
	a.VertexInfo.decode(r, version == GeneralV3)
	a.Flags = GeneralFlags(r.u32())
}

func (a *GeneralAttributes) encode(w *writer, version GeneralVersion) {
	w.vec4(a.ChannelMask)
	w.vec4(a.ChannelAmbientOcclusionMask)
	w.f32(a.DepthBias)
	w.f32(a.SpecularPower)
	a.VertexInfo.encode(w, version == GeneralV3)
	w.u32(uint32(a.Flags))
}

// GeneralBlock is the general-purpose static mesh block. Version is kept as
// read so the block re-encodes with the same attribute layout. V2 does not
// store VertexInfo.UV1Extent, so it must be zero for a V2 block to encode.
type GeneralBlock struct {
	Version    GeneralVersion
	Attributes GeneralAttributes
	Material   Material
	Vertices   []GeneralVertex
	Indices    []uint16
}

func (b *GeneralBlock) Kind() BlockKind        { return BlockGeneral }
func (b *GeneralBlock) MaterialInfo() Material { return b.Material }
func (b *GeneralBlock) VertexCount() int       { return len(b.Vertices) }
func (b *GeneralBlock) IndexCount() int        { return len(b.Indices) }
func (b *GeneralBlock) IndexList() []uint32    { return indexList(b.Indices) }

func (b *GeneralBlock) GenericVertices() []GenericVertex {
	info := b.Attributes.VertexInfo
	hasUV1 := b.Version == GeneralV3
	return genericVertices(b.Vertices, func(g GenericVertex) GenericVertex {
		return info.dequantize(g, hasUV1)
	})
}

func (b *GeneralBlock) decode(r *reader) {
	v, ok := readBlockVersion(r, BlockGeneral, validGeneralVersion)
	if !ok {
		return
	}
	b.Version = GeneralVersion(v)
	b.Attributes.decode(r, b.Version)
	b.Material.decode(r)
	b.Vertices = readBuffer[GeneralVertex](r, b.Attributes.VertexInfo.Format)
	b.Indices = readIndices[uint16](r, len(b.Vertices))
}

func (b *GeneralBlock) encode(w *writer) {
	if !writeBlockVersion(w, BlockGeneral, uint8(b.Version), validGeneralVersion) {
		return
	}
	b.Attributes.encode(w, b.Version)
	b.Material.encode(w)
	writeBuffer(w, b.Vertices, b.Attributes.VertexInfo.Format)
	writeIndices(w, b.Indices, len(b.Vertices))
}
