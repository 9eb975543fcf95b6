package rbm

import "github.com/Faultbox/rbmkit/pkg/math"

// GeneralVertex is the layout used by General and Lambert blocks. The
// block's VertexInfo.Format selects how it is stored:
//
//	F32: position 3xf32, uv0 2xf32, uv1 2xf32, normal, tangent, color (40 bytes)
//	I16: position 3xi16, uv0 2xi16, uv1 2xi16, normal, tangent, color (26 bytes)
//
// Under I16 the position and UVs hold signed-normalized values in [-1, 1];
// the owning block scales them by VertexInfo. Conversion from GenericVertex
// drops Binormal and bone data.
type GeneralVertex struct {
	Position math.Vec3
	UV0      math.Vec2
	UV1      math.Vec2
	Normal   PackedNormalF32
	Tangent  PackedNormalF32
	Color    PackedColor
}

// GeneralVertexFromGeneric converts a canonical vertex.
func GeneralVertexFromGeneric(g GenericVertex) GeneralVertex {
	return GeneralVertex{
		Position: g.Position,
		UV0:      g.UV0,
		UV1:      g.UV1,
		Normal:   g.Packed.f32(g.Packed.Normal, g.Normal),
		Tangent:  g.Packed.f32(g.Packed.Tangent, g.Tangent),
		Color:    PackColor(g.Color),
	}
}

// Generic converts to the canonical vertex without applying any
// VertexInfo scaling.
func (v GeneralVertex) Generic() GenericVertex {
	return GenericVertex{
		Position: v.Position,
		Normal:   v.Normal.Vec3(),
		Tangent:  v.Tangent.Vec3(),
		UV0:      v.UV0,
		UV1:      v.UV1,
		Color:    v.Color.Vec4(),
		Packed:   PackedDirections{Carrier: CarrierF32, Normal: f32Word(v.Normal), Tangent: f32Word(v.Tangent)},
	}
}

func (v *GeneralVertex) size(f VertexFormat) int {
	if f == VertexFormatI16 {
		return 26
	}
	return 40
}

func (v *GeneralVertex) decode(r *reader, f VertexFormat) {
	if f == VertexFormatI16 {
		v.Position = math.Vec3{X: snormFromInt16(r.i16()), Y: snormFromInt16(r.i16()), Z: snormFromInt16(r.i16())}
		v.UV0 = math.Vec2{X: snormFromInt16(r.i16()), Y: snormFromInt16(r.i16())}
		v.UV1 = math.Vec2{X: snormFromInt16(r.i16()), Y: snormFromInt16(r.i16())}
	} else {
		v.Position = r.vec3()
		v.UV0 = r.vec2()
		v.UV1 = r.vec2()
	}
	v.Normal = PackedNormalF32(r.f32())
	v.Tangent = PackedNormalF32(r.f32())
	v.Color = PackedColor(r.u32())
}

func (v *GeneralVertex) encode(w *writer, f VertexFormat) {
	if f == VertexFormatI16 {
		w.i16(snormToInt16(v.Position.X))
		w.i16(snormToInt16(v.Position.Y))
		w.i16(snormToInt16(v.Position.Z))
		w.i16(snormToInt16(v.UV0.X))
		w.i16(snormToInt16(v.UV0.Y))
		w.i16(snormToInt16(v.UV1.X))
		w.i16(snormToInt16(v.UV1.Y))
	} else {
		w.vec3(v.Position)
		w.vec2(v.UV0)
		w.vec2(v.UV1)
	}
	w.f32(float32(v.Normal))
	w.f32(float32(v.Tangent))
	w.u32(uint32(v.Color))
}
