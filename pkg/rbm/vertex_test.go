package rbm

import (
	gomath "math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/rbmkit/pkg/math"
)

func randVec2(rng *rand.Rand) math.Vec2 {
	return math.Vec2{X: rng.Float32()*4 - 2, Y: rng.Float32()*4 - 2}
}

func randVec3(rng *rand.Rand) math.Vec3 {
	return math.Vec3{X: rng.Float32()*200 - 100, Y: rng.Float32()*200 - 100, Z: rng.Float32()*200 - 100}
}

// randPackedF32 mixes canonical words with arbitrary non-NaN bit patterns.
func randPackedF32(rng *rand.Rand) PackedNormalF32 {
	if rng.Intn(2) == 0 {
		return PackedNormalF32(float32(rng.Intn(maxPacked24 + 1)))
	}
	for {
		f := gomath.Float32frombits(rng.Uint32())
		if !gomath.IsNaN(float64(f)) {
			return PackedNormalF32(f)
		}
	}
}

func randPackedU32(rng *rand.Rand) PackedNormalU32 {
	return PackedNormalU32(rng.Uint32())
}

func randBytes4(rng *rand.Rand) (out [4]uint8) {
	for i := range out {
		out[i] = uint8(rng.Intn(256))
	}
	return out
}

func TestVertexConversionClosure(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("simple", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := SimpleVertex{
				Position: randVec3(rng),
				Normal:   randPackedF32(rng),
				UV0:      randVec2(rng),
				Tangent:  randPackedF32(rng),
				Binormal: randPackedF32(rng),
			}
			assert.Equal(t, v, SimpleVertexFromGeneric(v.Generic()))
		}
	})

	t.Run("general", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := GeneralVertex{
				Position: randVec3(rng),
				UV0:      randVec2(rng),
				UV1:      randVec2(rng),
				Normal:   randPackedF32(rng),
				Tangent:  randPackedF32(rng),
				Color:    PackedColor(rng.Uint32()),
			}
			assert.Equal(t, v, GeneralVertexFromGeneric(v.Generic()))
		}
	})

	t.Run("deformable", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := DeformableVertex{
				Position:      randVec3(rng),
				DeformWeights: randBytes4(rng),
				DeformIndices: randBytes4(rng),
				Normal:        randPackedF32(rng),
				Tangent:       randPackedF32(rng),
				UV0:           randVec2(rng),
				UV1:           randVec2(rng),
			}
			assert.Equal(t, v, DeformableVertexFromGeneric(v.Generic()))
		}
	})

	t.Run("skinned", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := SkinnedVertex{
				SkinnedPosition: SkinnedPosition{Position: randVec3(rng)},
				Normal:          randPackedU32(rng),
				Tangent:         randPackedU32(rng),
				Binormal:        randPackedU32(rng),
				UV0:             randVec2(rng),
			}
			lo, hi := randBytes4(rng), randBytes4(rng)
			copy(v.BoneWeights[:4], lo[:])
			copy(v.BoneWeights[4:], hi[:])
			lo, hi = randBytes4(rng), randBytes4(rng)
			copy(v.BoneIndices[:4], lo[:])
			copy(v.BoneIndices[4:], hi[:])
			assert.Equal(t, v, SkinnedVertexFromGeneric(v.Generic()))
		}
	})
}

func TestVertexConversionKeepsStoredBits(t *testing.T) {
	nan := PackedNormalF32(gomath.Float32frombits(0x7FC00001))

	t.Run("skinned high byte", func(t *testing.T) {
		v := SkinnedVertex{Normal: 0x01808080, Tangent: 0xFF000000, Binormal: 0x80FFFFFF}
		got := SkinnedVertexFromGeneric(v.Generic())
		assert.Equal(t, PackedNormalU32(0x01808080), got.Normal)
		assert.Equal(t, v, got)
	})

	t.Run("general non-integral", func(t *testing.T) {
		v := GeneralVertex{Normal: 100.5, Tangent: -3}
		assert.Equal(t, v, GeneralVertexFromGeneric(v.Generic()))
	})

	t.Run("simple out of range", func(t *testing.T) {
		v := SimpleVertex{Normal: 1 << 25, Tangent: PackedNormalF32(gomath.Inf(1)), Binormal: nan}
		got := SimpleVertexFromGeneric(v.Generic())
		assert.Equal(t, v.Normal, got.Normal)
		assert.Equal(t, v.Tangent, got.Tangent)
		assert.Equal(t, f32Word(nan), f32Word(got.Binormal))
	})

	t.Run("deformable negative zero", func(t *testing.T) {
		v := DeformableVertex{Normal: PackedNormalF32(gomath.Copysign(0, -1)), Tangent: 0.25}
		got := DeformableVertexFromGeneric(v.Generic())
		assert.Equal(t, f32Word(v.Normal), f32Word(got.Normal))
		assert.Equal(t, f32Word(v.Tangent), f32Word(got.Tangent))
	})

	t.Run("edited direction repacks", func(t *testing.T) {
		g := SkinnedVertex{Normal: 0x01808080}.Generic()
		g.Normal = math.Vec3{Z: 1}
		assert.Equal(t, PackNormalU32(math.Vec3{Z: 1}), SkinnedVertexFromGeneric(g).Normal)
	})

	t.Run("other carrier repacks", func(t *testing.T) {
		g := GeneralVertex{Normal: 100.5}.Generic()
		assert.Equal(t, PackedNormalU32(100), SkinnedVertexFromGeneric(g).Normal)

		g = SkinnedVertex{Normal: 0x01808080}.Generic()
		assert.Equal(t, PackedNormalF32(0x808080), SimpleVertexFromGeneric(g).Normal)
	})

	t.Run("through a block", func(t *testing.T) {
		b := &SkinnedGeneralBlock{
			Vertices: []SkinnedVertex{{Normal: 0x01808080}},
			Indices:  []uint16{0},
		}
		m := &Model{Version: DefaultVersion, Blocks: []RenderBlock{b}}
		data, err := m.MarshalBinary()
		if !assert.NoError(t, err) {
			return
		}
		got, err := Decode(data)
		if !assert.NoError(t, err) {
			return
		}
		g := got.Blocks[0].GenericVertices()[0]
		assert.Equal(t, PackedNormalU32(0x01808080), SkinnedVertexFromGeneric(g).Normal)
	})
}

func TestVertexConversionDropsFields(t *testing.T) {
	g := GenericVertex{
		Position:    math.Vec3{X: 1, Y: 2, Z: 3},
		Normal:      math.Vec3{Y: 1},
		Tangent:     math.Vec3{X: 1},
		Binormal:    math.Vec3{Z: 1},
		UV0:         math.Vec2{X: 0.25, Y: 0.75},
		UV1:         math.Vec2{X: 0.5, Y: 0.5},
		Color:       math.Vec4{X: 1, W: 1},
		BoneWeights: [8]float32{0.5, 0.5, 0, 0, 0, 0, 0, 1},
		BoneIndices: [8]uint32{1, 300, 0, 0, 0, 0, 0, 9},
	}

	s := SimpleVertexFromGeneric(g).Generic()
	assert.Equal(t, g.Position, s.Position)
	assert.Equal(t, g.UV0, s.UV0)
	assert.Zero(t, s.UV1)
	assert.Equal(t, White, s.Color)
	assert.Zero(t, s.BoneWeights)

	gv := GeneralVertexFromGeneric(g).Generic()
	assert.Equal(t, g.UV1, gv.UV1)
	assert.Equal(t, g.Color, gv.Color)
	assert.Zero(t, gv.Binormal)

	d := DeformableVertexFromGeneric(g)
	assert.Equal(t, [4]uint8{128, 128, 0, 0}, d.DeformWeights)
	assert.Equal(t, [4]uint8{1, 255, 0, 0}, d.DeformIndices, "bone index saturates")
	assert.Zero(t, d.Generic().BoneWeights[7])

	sk := SkinnedVertexFromGeneric(g)
	assert.Equal(t, uint8(255), sk.BoneWeights[7])
	assert.Equal(t, uint8(9), sk.BoneIndices[7])
	assert.Zero(t, sk.Generic().UV1)
	assert.Equal(t, White, sk.Generic().Color)
}

func TestVertexSizes(t *testing.T) {
	assert.Equal(t, 32, (&SimpleVertex{}).size(struct{}{}))
	assert.Equal(t, 40, (&GeneralVertex{}).size(VertexFormatF32))
	assert.Equal(t, 26, (&GeneralVertex{}).size(VertexFormatI16))
	assert.Equal(t, 44, (&DeformableVertex{}).size(struct{}{}))
	assert.Equal(t, 40, (&SkinnedVertex{}).size(false))
	assert.Equal(t, 48, (&SkinnedVertex{}).size(true))
}

func TestVertexFormatString(t *testing.T) {
	assert.Equal(t, "F32", VertexFormatF32.String())
	assert.Equal(t, "I16", VertexFormatI16.String())
	assert.Equal(t, "Unknown(9)", VertexFormat(9).String())
	assert.False(t, VertexFormat(2).Valid())
}
