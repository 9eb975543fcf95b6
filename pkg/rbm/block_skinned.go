package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// SkinnedGeneralVersion is the only SkinnedGeneral attribute layout.
const SkinnedGeneralVersion uint8 = 3

func validSkinnedGeneralVersion(v uint8) bool {
	return v == SkinnedGeneralVersion
}

// SkinnedGeneralFlags is the render flag bitset of SkinnedGeneral blocks.
type SkinnedGeneralFlags uint32

const (
	SkinnedNoCulling SkinnedGeneralFlags = 1 << iota
	SkinnedAlphaTest
	SkinnedAlphaBlending
	SkinnedEightBones // vertices use the 8-bone position layout
	SkinnedUseFeatureMap
	SkinnedUseWrinkleMap
	SkinnedUseCameraLighting
	SkinnedNoDepthTest
)

// Has reports whether every bit of mask is set.
func (f SkinnedGeneralFlags) Has(mask SkinnedGeneralFlags) bool {
	return f&mask == mask
}

// SkinnedGeneralAttributes is the attribute body of a SkinnedGeneral block.
type SkinnedGeneralAttributes struct {
	SpecularPower float32
	RimIntensity  float32
	RimPower      float32
	RimWeights    math.Vec4
	Flags         SkinnedGeneralFlags
}

// EightBones reports whether vertices use the 8-bone position layout.
func (a SkinnedGeneralAttributes) EightBones() bool {
	return a.Flags.Has(SkinnedEightBones)
}

// SkinnedGeneralBlock is a character mesh block skinned to a skeleton.
type SkinnedGeneralBlock struct {
	Attributes SkinnedGeneralAttributes
	Material   Material
	Vertices   []SkinnedVertex
	Indices    []uint16
}

func (b *SkinnedGeneralBlock) Kind() BlockKind                  { return BlockSkinnedGeneral }
func (b *SkinnedGeneralBlock) MaterialInfo() Material           { return b.Material }
func (b *SkinnedGeneralBlock) VertexCount() int                 { return len(b.Vertices) }
func (b *SkinnedGeneralBlock) IndexCount() int                  { return len(b.Indices) }
func (b *SkinnedGeneralBlock) IndexList() []uint32              { return indexList(b.Indices) }
func (b *SkinnedGeneralBlock) GenericVertices() []GenericVertex { return genericVertices(b.Vertices, nil) }

func (b *SkinnedGeneralBlock) decode(r *reader) {
	if _, ok := readBlockVersion(r, BlockSkinnedGeneral, validSkinnedGeneralVersion); !ok {
		return
	}
	a := &b.Attributes
	a.SpecularPower = r.f32()
	a.RimIntensity = r.f32()
	a.RimPower = r.f32()
	a.RimWeights = r.vec4()
	a.Flags = SkinnedGeneralFlags(r.u32())
	b.Material.decode(r)
	b.Vertices = readBuffer[SkinnedVertex](r, a.EightBones())
	b.Indices = readIndices[uint16](r, len(b.Vertices))
}

func (b *SkinnedGeneralBlock) encode(w *writer) {
	a := &b.Attributes
	w.u8(SkinnedGeneralVersion)
	w.f32(a.SpecularPower)
	w.f32(a.RimIntensity)
	w.f32(a.RimPower)
	w.vec4(a.RimWeights)
	w.u32(uint32(a.Flags))
	b.Material.encode(w)
	writeBuffer(w, b.Vertices, a.EightBones())
	writeIndices(w, b.Indices, len(b.Vertices))
}
