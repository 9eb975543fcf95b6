package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// SkinnedPosition is the position sub-layout of a skinned vertex. The
// owning block's EightBones flag selects the physical encoding:
//
//	4 bones: position 3xf32, weights 4xu8, indices 4xu8 (20 bytes)
//	8 bones: position 3xf32, weights 8xu8, indices 8xu8 (28 bytes)
//
// Both decode to eight slots; the 4-bone encoding zero-fills slots 4-7 on
// decode and drops them on encode.
type SkinnedPosition struct {
	Position    math.Vec3
	BoneWeights [8]uint8
	BoneIndices [8]uint8
}

func bonesFor(eightBones bool) int {
	if eightBones {
		return 8
	}
	return 4
}

func (p *SkinnedPosition) size(eightBones bool) int {
	return 12 + 2*bonesFor(eightBones)
}

func (p *SkinnedPosition) decode(r *reader, eightBones bool) {
	*p = SkinnedPosition{Position: r.vec3()}
	n := bonesFor(eightBones)
	for i := 0; i < n; i++ {
		p.BoneWeights[i] = r.u8()
	}
	for i := 0; i < n; i++ {
		p.BoneIndices[i] = r.u8()
	}
}

func (p *SkinnedPosition) encode(w *writer, eightBones bool) {
	n := bonesFor(eightBones)
	w.vec3(p.Position)
	w.raw(p.BoneWeights[:n])
	w.raw(p.BoneIndices[:n])
}

// SkinnedVertex is the layout used by SkinnedGeneral blocks: a
// SkinnedPosition followed by the shading data (normal, tangent, binormal
// as PackedNormalU32 and one UV set), 40 or 48 bytes in total.
//
// Conversion from GenericVertex drops UV1 and Color. Canonical bone indices
// above 255 saturate.
type SkinnedVertex struct {
	SkinnedPosition
	Normal   PackedNormalU32
	Tangent  PackedNormalU32
	Binormal PackedNormalU32
	UV0      math.Vec2
}

// SkinnedVertexFromGeneric converts a canonical vertex, keeping all eight
// bone slots. Encoding under the 4-bone layout discards slots 4-7.
func SkinnedVertexFromGeneric(g GenericVertex) SkinnedVertex {
	v := SkinnedVertex{
		SkinnedPosition: SkinnedPosition{Position: g.Position},
		Normal:          g.Packed.u32(g.Packed.Normal, g.Normal),
		Tangent:         g.Packed.u32(g.Packed.Tangent, g.Tangent),
		Binormal:        g.Packed.u32(g.Packed.Binormal, g.Binormal),
		UV0:             g.UV0,
	}
	for i := range v.BoneWeights {
		v.BoneWeights[i] = weightToByte(g.BoneWeights[i])
		v.BoneIndices[i] = boneIndexToByte(g.BoneIndices[i])
	}
	return v
}

// Generic converts to the canonical vertex.
func (v SkinnedVertex) Generic() GenericVertex {
	g := GenericVertex{
		Position: v.Position,
		Normal:   v.Normal.Vec3(),
		Tangent:  v.Tangent.Vec3(),
		Binormal: v.Binormal.Vec3(),
		UV0:      v.UV0,
		Color:    White,
		Packed: PackedDirections{
			Carrier:  CarrierU32,
			Normal:   uint32(v.Normal),
			Tangent:  uint32(v.Tangent),
			Binormal: uint32(v.Binormal),
		},
	}
	for i := range v.BoneWeights {
		g.BoneWeights[i] = weightFromByte(v.BoneWeights[i])
		g.BoneIndices[i] = uint32(v.BoneIndices[i])
	}
	return g
}

func (v *SkinnedVertex) size(eightBones bool) int {
	return v.SkinnedPosition.size(eightBones) + 20
}

func (v *SkinnedVertex) decode(r *reader, eightBones bool) {
	v.SkinnedPosition.decode(r, eightBones)
	v.Normal = PackedNormalU32(r.u32())
	v.Tangent = PackedNormalU32(r.u32())
	v.Binormal = PackedNormalU32(r.u32())
	v.UV0 = r.vec2()
}

func (v *SkinnedVertex) encode(w *writer, eightBones bool) {
	v.SkinnedPosition.encode(w, eightBones)
	w.u32(uint32(v.Normal))
	w.u32(uint32(v.Tangent))
	w.u32(uint32(v.Binormal))
	w.vec2(v.UV0)
}
