package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// DeformableVertex is the 44-byte layout used by CarPaint blocks. Up to four
// deformation bones drive each vertex when a vehicle body is damaged.
//
// The deform weights and indices map to the first four canonical bone slots;
// slots 4-7, Binormal and Color are dropped by DeformableVertexFromGeneric.
// Canonical bone indices above 255 saturate.
type DeformableVertex struct {
	Position      math.Vec3
	DeformWeights [4]uint8
	DeformIndices [4]uint8
	Normal        PackedNormalF32
	Tangent       PackedNormalF32
	UV0           math.Vec2
	UV1           math.Vec2
}

// DeformableVertexFromGeneric converts a canonical vertex.
func DeformableVertexFromGeneric(g GenericVertex) DeformableVertex {
	v := DeformableVertex{
		Position: g.Position,
		Normal:   g.Packed.f32(g.Packed.Normal, g.Normal),
		Tangent:  g.Packed.f32(g.Packed.Tangent, g.Tangent),
		UV0:      g.UV0,
		UV1:      g.UV1,
	}
	for i := range v.DeformWeights {
		v.DeformWeights[i] = weightToByte(g.BoneWeights[i])
		v.DeformIndices[i] = boneIndexToByte(g.BoneIndices[i])
	}
	return v
}

// Generic converts to the canonical vertex.
func (v DeformableVertex) Generic() GenericVertex {
	g := GenericVertex{
		Position: v.Position,
		Normal:   v.Normal.Vec3(),
		Tangent:  v.Tangent.Vec3(),
		UV0:      v.UV0,
		UV1:      v.UV1,
		Color:    White,
		Packed:   PackedDirections{Carrier: CarrierF32, Normal: f32Word(v.Normal), Tangent: f32Word(v.Tangent)},
	}
	for i := range v.DeformWeights {
		g.BoneWeights[i] = weightFromByte(v.DeformWeights[i])
		g.BoneIndices[i] = uint32(v.DeformIndices[i])
	}
	return g
}

func (v *DeformableVertex) size(struct{}) int {
	return 44
}

func (v *DeformableVertex) decode(r *reader, _ struct{}) {
	v.Position = r.vec3()
	for i := range v.DeformWeights {
		v.DeformWeights[i] = r.u8()
	}
	for i := range v.DeformIndices {
		v.DeformIndices[i] = r.u8()
	}
	v.Normal = PackedNormalF32(r.f32())
	v.Tangent = PackedNormalF32(r.f32())
	v.UV0 = r.vec2()
	v.UV1 = r.vec2()
}

func (v *DeformableVertex) encode(w *writer, _ struct{}) {
	w.vec3(v.Position)
	w.raw(v.DeformWeights[:])
	w.raw(v.DeformIndices[:])
	w.f32(float32(v.Normal))
	w.f32(float32(v.Tangent))
	w.vec2(v.UV0)
	w.vec2(v.UV1)
}
