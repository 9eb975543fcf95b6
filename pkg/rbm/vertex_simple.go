package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// SimpleVertex is the 32-byte layout used by CarPaintSimple blocks.
//
// Conversion from GenericVertex keeps Position, Normal, UV0, Tangent and
// Binormal; UV1, Color and bone data are dropped.
type SimpleVertex struct {
	Position math.Vec3
	Normal   PackedNormalF32
	UV0      math.Vec2
	Tangent  PackedNormalF32
	Binormal PackedNormalF32
}

// SimpleVertexFromGeneric converts a canonical vertex, quantizing the
// direction vectors.
func SimpleVertexFromGeneric(g GenericVertex) SimpleVertex {
	return SimpleVertex{
		Position: g.Position,
		Normal:   g.Packed.f32(g.Packed.Normal, g.Normal),
		UV0:      g.UV0,
		Tangent:  g.Packed.f32(g.Packed.Tangent, g.Tangent),
		Binormal: g.Packed.f32(g.Packed.Binormal, g.Binormal),
	}
}

// Generic converts to the canonical vertex.
func (v SimpleVertex) Generic() GenericVertex {
	return GenericVertex{
		Position: v.Position,
		Normal:   v.Normal.Vec3(),
		UV0:      v.UV0,
		Tangent:  v.Tangent.Vec3(),
		Binormal: v.Binormal.Vec3(),
		Color:    White,
		Packed: PackedDirections{
			Carrier:  CarrierF32,
			Normal:   f32Word(v.Normal),
			Tangent:  f32Word(v.Tangent),
			Binormal: f32Word(v.Binormal),
		},
	}
}

func (v *SimpleVertex) size(struct{}) int {
	return 32
}

func (v *SimpleVertex) decode(r *reader, _ struct{}) {
	v.Position = r.vec3()
	v.Normal = PackedNormalF32(r.f32())
	v.UV0 = r.vec2()
	v.Tangent = PackedNormalF32(r.f32())
	v.Binormal = PackedNormalF32(r.f32())
}

func (v *SimpleVertex) encode(w *writer, _ struct{}) {
	w.vec3(v.Position)
	w.f32(float32(v.Normal))
	w.vec2(v.UV0)
	w.f32(float32(v.Tangent))
	w.f32(float32(v.Binormal))
}
