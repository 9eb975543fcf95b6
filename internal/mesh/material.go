package mesh

import (
	"path"
	"strings"

	"github.com/Faultbox/rbmkit/pkg/math"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Texture slots shared by every block kind.
const (
	SlotDiffuse = iota
	SlotNormal
	SlotProperties
)

// AlphaMode is how a material combines with the framebuffer.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
	AlphaAdditive
)

func (m AlphaMode) String() string {
	switch m {
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	case AlphaAdditive:
		return "additive"
	default:
		return "opaque"
	}
}

// Material is the render state a consumer needs to draw one block, derived
// from the block's attributes and flags.
type Material struct {
	Textures      [rbm.TextureCount]string
	Cull          bool
	DepthTest     bool
	DepthBias     float32
	Alpha         AlphaMode
	SpecularPower float32
	BaseColor     math.Vec4
	SecondColor   math.Vec4 // CarPaint two-tone color

	// General only.
	Scale                       float32
	UV0Scale                    math.Vec2
	UV1Scale                    math.Vec2
	ChannelMask                 math.Vec4
	ChannelAmbientOcclusionMask math.Vec4
	UseChannelTextures          bool
	UsePalette                  bool
	UseSubSurfaceScattering     bool
	UseSnow                     bool
	UseAmbientOcclusion         bool
	Animate                     bool

	// SkinnedGeneral only.
	RimIntensity float32
	RimPower     float32
	RimWeights   math.Vec4
}

func alphaMode(test, blend, additive bool) AlphaMode {
	switch {
	case additive:
		return AlphaAdditive
	case blend:
		return AlphaBlend
	case test:
		return AlphaMask
	default:
		return AlphaOpaque
	}
}

// MaterialOf describes the render state of a block.
func MaterialOf(b rbm.RenderBlock) Material {
	m := Material{
		Textures:  b.MaterialInfo().Textures,
		Cull:      true,
		DepthTest: true,
		BaseColor: rbm.White,
		UV0Scale:  math.Vec2{X: 1, Y: 1},
		UV1Scale:  math.Vec2{X: 1, Y: 1},
		Scale:     1,
	}

	switch b := b.(type) {
	case *rbm.GeneralBlock:
		a := b.Attributes
		f := a.Flags
		m.Scale = a.VertexInfo.Scale
		m.UV0Scale = a.VertexInfo.UV0Extent
		m.UV1Scale = a.VertexInfo.UV1Extent
		m.Cull = !f.Has(rbm.GeneralNoCulling)
		m.DepthTest = !f.Has(rbm.GeneralNoDepthTest)
		m.DepthBias = a.DepthBias
		m.Alpha = alphaMode(f.Has(rbm.GeneralAlphaTest), f.Has(rbm.GeneralAlphaBlending), f.Has(rbm.GeneralAdditiveAlpha))
		m.SpecularPower = a.SpecularPower
		m.ChannelMask = a.ChannelMask
		m.ChannelAmbientOcclusionMask = a.ChannelAmbientOcclusionMask
		m.UseChannelTextures = f.Has(rbm.GeneralUseChannelTextures)
		m.UsePalette = f.Has(rbm.GeneralUsePalette)
		m.UseSubSurfaceScattering = f.Has(rbm.GeneralUseSubSurfaceScattering)
		m.UseSnow = f.Has(rbm.GeneralUseSnow)
		m.UseAmbientOcclusion = f.Has(rbm.GeneralUseAmbientOcclusion)
		m.Animate = f.Has(rbm.GeneralAnimateTexture)

	case *rbm.LambertBlock:
		a := b.Attributes
		f := a.Flags
		m.Scale = a.VertexInfo.Scale
		m.UV0Scale = a.VertexInfo.UV0Extent
		m.Cull = !f.Has(rbm.LambertNoCulling)
		m.DepthTest = !f.Has(rbm.LambertNoDepthTest)
		m.DepthBias = a.DepthBias
		m.Alpha = alphaMode(f.Has(rbm.LambertAlphaTest), f.Has(rbm.LambertAlphaBlending), f.Has(rbm.LambertAdditiveAlpha))

	case *rbm.CarPaintBlock:
		a := b.Attributes
		m.Cull = !a.Flags.Has(rbm.CarPaintNoCulling)
		m.DepthBias = a.DepthBias
		m.Alpha = alphaMode(false, a.Flags.Has(rbm.CarPaintAlphaBlending), false)
		m.SpecularPower = a.SpecularPower
		m.BaseColor = a.Color1
		m.SecondColor = a.Color1
		if a.Flags.Has(rbm.CarPaintTwoToned) {
			m.SecondColor = a.Color2
		}

	case *rbm.CarPaintSimpleBlock:
		a := b.Attributes
		m.Cull = !a.Flags.Has(rbm.CarPaintSimpleNoCulling)
		m.Alpha = alphaMode(false, a.Flags.Has(rbm.CarPaintSimpleAlphaBlending), false)
		m.SpecularPower = a.SpecularPower
		m.BaseColor = a.Color
		m.SecondColor = a.Color

	case *rbm.SkinnedGeneralBlock:
		a := b.Attributes
		f := a.Flags
		m.Cull = !f.Has(rbm.SkinnedNoCulling)
		m.DepthTest = !f.Has(rbm.SkinnedNoDepthTest)
		m.Alpha = alphaMode(f.Has(rbm.SkinnedAlphaTest), f.Has(rbm.SkinnedAlphaBlending), false)
		m.SpecularPower = a.SpecularPower
		m.RimIntensity = a.RimIntensity
		m.RimPower = a.RimPower
		m.RimWeights = a.RimWeights
	}
	return m
}

// ResolveTextures joins every non-empty texture path onto the directory of
// the model that references it.
func ResolveTextures(modelPath string, textures [rbm.TextureCount]string) [rbm.TextureCount]string {
	dir := path.Dir(toSlash(modelPath))
	var out [rbm.TextureCount]string
	for i, t := range textures {
		if t == "" {
			continue
		}
		out[i] = path.Join(dir, toSlash(t))
	}
	return out
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}
