package rbm

import (
	"bytes"
	"encoding/binary"

	"github.com/Faultbox/rbmkit/pkg/math"
)

// fixture builds RBM bytes field by field.
type fixture struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func newFixture(order binary.ByteOrder) *fixture {
	return &fixture{order: order}
}

func (f *fixture) put(values ...any) *fixture {
	for _, v := range values {
		binary.Write(&f.buf, f.order, v)
	}
	return f
}

func (f *fixture) raw(b []byte) *fixture {
	f.buf.Write(b)
	return f
}

func (f *fixture) str(s string) *fixture {
	f.put(uint32(len(s)))
	f.buf.WriteString(s)
	return f
}

func (f *fixture) bytes() []byte {
	return f.buf.Bytes()
}

// header writes the marker, magic, version 1.13.patch and bounds.
func (f *fixture) header(patch uint32) *fixture {
	marker := markerLittle
	if f.order == binary.BigEndian {
		marker = markerBig
	}
	return f.raw(marker[:]).
		raw([]byte(Magic)).
		put(uint32(1), uint32(13), patch).
		put([3]float32{-1, -2, -3}, [3]float32{1, 2, 3})
}

// generalV3Block writes one General V3 block with four F32 vertices and the
// given indices.
func (f *fixture) generalV3Block(indices []uint16) *fixture {
	f.put(uint8(BlockGeneral), uint8(GeneralV3))
	f.put([4]float32{1, 0, 0, 1}, [4]float32{0, 1, 0, 0}) // channel masks
	f.put(float32(0.5), float32(32))                      // depth bias, specular power
	f.put(uint32(VertexFormatF32), float32(1))            // format, scale
	f.put([2]float32{1, 1}, [2]float32{2, 2})             // uv extents
	f.put(uint32(0))                                      // flags

	f.put(uint32(PrimitiveIndexedTriangleList))
	f.str("textures/body_dif.dds").str("textures/body_nrm.dds")
	for i := 2; i < TextureCount; i++ {
		f.str("")
	}

	normal := PackNormalF32(math.Vec3{Z: 1})
	tangent := PackNormalF32(math.Vec3{X: 1})
	f.put(uint32(4))
	for _, p := range [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}} {
		f.put(p, [2]float32{p[0], p[1]}, [2]float32{p[1], p[0]})
		f.put(float32(normal), float32(tangent), uint32(0xFFFFFFFF))
	}

	f.put(uint32(len(indices)))
	for _, i := range indices {
		f.put(i)
	}
	return f
}

func quadIndices() []uint16 {
	return []uint16{0, 1, 2, 2, 1, 3}
}

// generalScenario is a version 1.13.0 model with a single General V3 block
// of four vertices and two triangles.
func generalScenario(order binary.ByteOrder) []byte {
	return newFixture(order).header(0).put(uint32(1)).generalV3Block(quadIndices()).bytes()
}

func i16Grid(values ...int16) []float32 {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = snormFromInt16(v)
	}
	return out
}

func texturesOf(first string) [TextureCount]string {
	var t [TextureCount]string
	t[0] = first
	return t
}

// allKindsModel returns a model exercising every block kind and every
// vertex layout variant.
func allKindsModel(endian Endian) *Model {
	up := PackNormalF32(math.Vec3{Y: 1})
	right := PackNormalF32(math.Vec3{X: 1})
	fwd := PackNormalU32(math.Vec3{Z: -1})

	g := i16Grid(-32768, -1, 0, 1, 16384, 32767)

	general := &GeneralBlock{
		Version: GeneralV3,
		Attributes: GeneralAttributes{
			ChannelMask:                 math.Vec4{X: 1, W: 1},
			ChannelAmbientOcclusionMask: math.Vec4{Y: 1},
			DepthBias:                   0.25,
			SpecularPower:               16,
			VertexInfo:                  VertexInfo{Format: VertexFormatF32, Scale: 1, UV0Extent: math.Vec2{X: 1, Y: 1}, UV1Extent: math.Vec2{X: 4, Y: 4}},
			Flags:                       GeneralAlphaTest | GeneralUseSnow | 0x80000000,
		},
		Material: Material{PrimitiveType: PrimitiveIndexedTriangleList, Textures: texturesOf("general_dif.dds")},
		Vertices: []GeneralVertex{
			{Position: math.Vec3{X: 0.1, Y: 0.2, Z: 0.3}, UV0: math.Vec2{X: 0.5}, Normal: up, Tangent: right, Color: 0xFF00FF00},
			{Position: math.Vec3{X: -5, Y: 12.5}, UV1: math.Vec2{Y: 1}, Normal: up, Tangent: right, Color: 0x11223344},
			{Position: math.Vec3{Z: 100}, Normal: up, Tangent: right},
		},
		Indices: []uint16{0, 1, 2},
	}

	generalV2 := &GeneralBlock{
		Version: GeneralV2,
		Attributes: GeneralAttributes{
			VertexInfo: VertexInfo{Format: VertexFormatI16, Scale: 8, UV0Extent: math.Vec2{X: 2, Y: 2}},
			Flags:      GeneralNoCulling,
		},
		Material: Material{PrimitiveType: PrimitiveTriangleStrip, Textures: texturesOf("terrain/rock.dds")},
		Vertices: []GeneralVertex{
			{Position: math.Vec3{X: g[0], Y: g[1], Z: g[2]}, UV0: math.Vec2{X: g[3], Y: g[4]}, UV1: math.Vec2{X: g[5], Y: g[0]}, Normal: up},
			{Position: math.Vec3{X: g[5], Y: g[4], Z: g[3]}, UV0: math.Vec2{X: g[2], Y: g[1]}, Normal: up, Color: 0xFFFFFFFF},
		},
		Indices: []uint16{0, 1, 1, 0},
	}

	lambert := &LambertBlock{
		Attributes: LambertAttributes{
			VertexInfo: VertexInfo{Format: VertexFormatF32, Scale: 1, UV0Extent: math.Vec2{X: 1, Y: 1}},
			DepthBias:  1,
			Flags:      LambertAlphaBlending | LambertNoDepthTest,
		},
		Material: Material{PrimitiveType: PrimitiveLineList, Textures: texturesOf("lambert.dds")},
		Vertices: []GeneralVertex{{Position: math.Vec3{X: 1}}, {Position: math.Vec3{X: 2}}},
		Indices:  []uint16{0, 1},
	}

	carPaint := &CarPaintBlock{
		Attributes: CarPaintAttributes{
			Color1:        math.Vec4{X: 0.8, Y: 0.1, Z: 0.1, W: 1},
			Color2:        math.Vec4{X: 0.1, Y: 0.1, Z: 0.8, W: 1},
			SpecularPower: 64,
			DepthBias:     0,
			Flags:         CarPaintTwoToned | CarPaintDeformable,
		},
		Material: Material{PrimitiveType: PrimitiveIndexedTriangleList, Textures: texturesOf("car/paint.dds")},
		Vertices: []DeformableVertex{
			{Position: math.Vec3{X: 1, Y: 2, Z: 3}, DeformWeights: [4]uint8{255, 0, 0, 0}, DeformIndices: [4]uint8{3, 0, 0, 0}, Normal: up, Tangent: right, UV0: math.Vec2{X: 0.25}},
			{Position: math.Vec3{X: 4, Y: 5, Z: 6}, DeformWeights: [4]uint8{128, 127, 0, 0}, DeformIndices: [4]uint8{1, 2, 0, 0}, Normal: up, Tangent: right, UV1: math.Vec2{Y: 0.75}},
			{Position: math.Vec3{X: 7, Y: 8, Z: 9}, Normal: up, Tangent: right},
		},
		Indices: []uint32{2, 1, 0},
	}

	carPaintSimple := &CarPaintSimpleBlock{
		Attributes: CarPaintSimpleAttributes{Color: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}, SpecularPower: 8, Flags: CarPaintSimpleUseDirt},
		Material:   Material{PrimitiveType: PrimitiveIndexedTriangleStrip, Textures: texturesOf("car/rim.dds")},
		Vertices: []SimpleVertex{
			{Position: math.Vec3{X: 1}, Normal: up, UV0: math.Vec2{X: 1}, Tangent: right, Binormal: up},
			{Position: math.Vec3{Y: 1}, Normal: up, UV0: math.Vec2{Y: 1}, Tangent: right, Binormal: up},
			{Position: math.Vec3{Z: 1}, Normal: up, Tangent: right, Binormal: up},
		},
		Indices: []uint16{0, 1, 2},
	}

	skinned4 := &SkinnedGeneralBlock{
		Attributes: SkinnedGeneralAttributes{SpecularPower: 4, RimIntensity: 0.5, RimPower: 2, RimWeights: math.Vec4{X: 1}, Flags: SkinnedUseFeatureMap},
		Material:   Material{PrimitiveType: PrimitiveIndexedTriangleList, Textures: texturesOf("char/skin.dds")},
		Vertices: []SkinnedVertex{
			{SkinnedPosition: SkinnedPosition{Position: math.Vec3{X: 1}, BoneWeights: [8]uint8{200, 55}, BoneIndices: [8]uint8{4, 9}}, Normal: fwd, Tangent: fwd, Binormal: fwd, UV0: math.Vec2{X: 0.5}},
			{SkinnedPosition: SkinnedPosition{Position: math.Vec3{Y: 1}, BoneWeights: [8]uint8{255}, BoneIndices: [8]uint8{1}}, Normal: fwd},
			{SkinnedPosition: SkinnedPosition{Position: math.Vec3{Z: 1}, BoneWeights: [8]uint8{1, 2, 3, 249}, BoneIndices: [8]uint8{1, 2, 3, 4}}, Binormal: fwd},
		},
		Indices: []uint16{0, 1, 2},
	}

	skinned8 := &SkinnedGeneralBlock{
		Attributes: SkinnedGeneralAttributes{SpecularPower: 4, Flags: SkinnedEightBones | SkinnedAlphaTest},
		Material:   Material{PrimitiveType: PrimitiveIndexedTriangleList, Textures: texturesOf("char/head.dds")},
		Vertices: []SkinnedVertex{
			{SkinnedPosition: SkinnedPosition{Position: math.Vec3{X: 2}, BoneWeights: [8]uint8{10, 20, 30, 40, 50, 60, 40, 5}, BoneIndices: [8]uint8{0, 1, 2, 3, 4, 5, 6, 7}}, Normal: fwd},
		},
		Indices: []uint16{0, 0, 0},
	}

	return &Model{
		Endian:  endian,
		Version: Version{Major: 1, Minor: 13, Patch: 3},
		Min:     math.Vec3{X: -10, Y: -20, Z: -30},
		Max:     math.Vec3{X: 10, Y: 20, Z: 30},
		Blocks:  []RenderBlock{general, generalV2, lambert, carPaint, carPaintSimple, skinned4, skinned8},
	}
}
