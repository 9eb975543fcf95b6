package export

import (
	"fmt"
	"io"
	gomath "math"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/rbmkit/internal/mesh"
	"github.com/Faultbox/rbmkit/pkg/math"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Generator is written to the glTF asset header.
const Generator = "rbmkit"

const (
	jointsSecond  = "JOINTS_1"
	weightsSecond = "WEIGHTS_1"
)

// Document builds a glTF document with one node, mesh and material per
// non-empty block. Texture paths become image URIs and are not copied.
//
// Bone slots 0-3 are written as JOINTS_0/WEIGHTS_0 and slots 4-7 as
// JOINTS_1/WEIGHTS_1, only when the block uses them. No skin is emitted:
// the skeleton is not part of the model. UVs keep their top-left origin,
// which glTF shares, so Options.FlipV is ignored.
func Document(meshes []*mesh.Mesh, opts Options) *gltf.Document {
	doc := gltf.NewDocument()
	doc.Asset.Generator = Generator
	images := make(map[string]int)

	for i, m := range meshes {
		if len(m.Vertices) == 0 {
			continue
		}
		name := MaterialName(i, m)
		textures := m.Material.Textures
		if opts.TexturePaths != nil {
			textures = opts.TexturePaths(m)
		}

		prim := &gltf.Primitive{
			Mode:       primitiveMode(m.Topology),
			Attributes: writeAttributes(doc, m.Vertices),
			Material:   gltf.Index(writeMaterial(doc, images, name, m.Material, textures)),
		}
		if len(m.Indices) > 0 {
			prim.Indices = gltf.Index(modeler.WriteIndices(doc, m.Indices))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{Name: name, Primitives: []*gltf.Primitive{prim}})
		doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}
	return doc
}

func primitiveMode(t mesh.Topology) gltf.PrimitiveMode {
	switch t {
	case mesh.TriangleStrip:
		return gltf.PrimitiveTriangleStrip
	case mesh.LineList:
		return gltf.PrimitiveLines
	case mesh.PointList:
		return gltf.PrimitivePoints
	default:
		return gltf.PrimitiveTriangles
	}
}

// writeAttributes writes the vertex streams a block actually uses. POSITION,
// NORMAL and TEXCOORD_0 are always present.
func writeAttributes(doc *gltf.Document, vertices []rbm.GenericVertex) map[string]int {
	n := len(vertices)
	var (
		positions = make([][3]float32, n)
		normals   = make([][3]float32, n)
		tangents  = make([][4]float32, n)
		uv0       = make([][2]float32, n)
		uv1       = make([][2]float32, n)
		colors    = make([][4]float32, n)
		joints    = [2][][4]uint16{make([][4]uint16, n), make([][4]uint16, n)}
		weights   = [2][][4]float32{make([][4]float32, n), make([][4]float32, n)}

		hasTangent, hasUV1, hasColor bool
		hasBones                     [2]bool
	)

	for i, v := range vertices {
		positions[i] = v.Position.Array()
		normals[i] = unit(v.Normal).Array()
		uv0[i] = v.UV0.Array()
		uv1[i] = v.UV1.Array()
		colors[i] = v.Color.Array()
		if v.Tangent != (math.Vec3{}) {
			hasTangent = true
			t := unit(v.Tangent)
			tangents[i] = [4]float32{t.X, t.Y, t.Z, handedness(v)}
		} else {
			tangents[i] = [4]float32{1, 0, 0, 1}
		}
		hasUV1 = hasUV1 || v.UV1 != (math.Vec2{})
		hasColor = hasColor || v.Color != rbm.White

		for slot, w := range v.BoneWeights {
			set, k := slot/4, slot%4
			weights[set][i][k] = w
			joints[set][i][k] = uint16(min(v.BoneIndices[slot], gomath.MaxUint16))
			if w != 0 {
				hasBones[set] = true
			}
		}
	}

	attrs := map[string]int{
		gltf.POSITION:   modeler.WritePosition(doc, positions),
		gltf.NORMAL:     modeler.WriteNormal(doc, normals),
		gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uv0),
	}
	if hasTangent {
		attrs[gltf.TANGENT] = modeler.WriteTangent(doc, tangents)
	}
	if hasUV1 {
		attrs[gltf.TEXCOORD_1] = modeler.WriteTextureCoord(doc, uv1)
	}
	if hasColor {
		attrs[gltf.COLOR_0] = modeler.WriteColor(doc, colors)
	}
	if hasBones[0] || hasBones[1] {
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(doc, joints[0])
		attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(doc, weights[0])
	}
	if hasBones[1] {
		attrs[jointsSecond] = modeler.WriteJoints(doc, joints[1])
		attrs[weightsSecond] = modeler.WriteWeights(doc, weights[1])
	}
	return attrs
}

func unit(v math.Vec3) math.Vec3 {
	if v == (math.Vec3{}) {
		return v
	}
	return v.Normalize()
}

// handedness is the TANGENT w component: -1 when the stored binormal points
// against normal x tangent.
func handedness(v rbm.GenericVertex) float32 {
	if v.Binormal != (math.Vec3{}) && v.Normal.Cross(v.Tangent).Dot(v.Binormal) < 0 {
		return -1
	}
	return 1
}

func writeMaterial(doc *gltf.Document, images map[string]int, name string, mat mesh.Material, textures [rbm.TextureCount]string) int {
	c := mat.BaseColor
	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor: &[4]float64{float64(c.X), float64(c.Y), float64(c.Z), float64(c.W)},
		MetallicFactor:  gltf.Float(0),
		RoughnessFactor: gltf.Float(roughness(mat.SpecularPower)),
	}
	if t := textures[mesh.SlotDiffuse]; t != "" {
		pbr.BaseColorTexture = &gltf.TextureInfo{Index: textureIndex(doc, images, t)}
	}

	out := &gltf.Material{
		Name:                 name,
		PBRMetallicRoughness: pbr,
		DoubleSided:          !mat.Cull,
	}
	if t := textures[mesh.SlotNormal]; t != "" {
		out.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(textureIndex(doc, images, t))}
	}
	switch mat.Alpha {
	case mesh.AlphaMask:
		out.AlphaMode = gltf.AlphaMask
		out.AlphaCutoff = gltf.Float(0.5)
	case mesh.AlphaBlend, mesh.AlphaAdditive:
		out.AlphaMode = gltf.AlphaBlend
	}

	doc.Materials = append(doc.Materials, out)
	return len(doc.Materials) - 1
}

// roughness maps a Blinn-Phong exponent to a PBR roughness.
func roughness(specularPower float32) float64 {
	if specularPower <= 0 {
		return 1
	}
	return gomath.Sqrt(2 / (float64(specularPower) + 2))
}

// textureIndex returns the texture for uri, adding it and its image once.
func textureIndex(doc *gltf.Document, images map[string]int, uri string) int {
	if idx, ok := images[uri]; ok {
		return idx
	}
	doc.Images = append(doc.Images, &gltf.Image{Name: filepath.Base(uri), URI: uri})
	doc.Textures = append(doc.Textures, &gltf.Texture{Source: gltf.Index(len(doc.Images) - 1)})
	idx := len(doc.Textures) - 1
	images[uri] = idx
	return idx
}

// WriteGLTF encodes meshes as a binary GLB when binary is set, otherwise as
// glTF JSON with the geometry buffer embedded as a data URI.
func WriteGLTF(w io.Writer, meshes []*mesh.Mesh, binary bool, opts Options) error {
	doc := Document(meshes, opts)
	if !binary {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = binary
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding gltf: %w", err)
	}
	return nil
}

// WriteGLTFFile writes <dir>/<name>.glb or <dir>/<name>.gltf and returns the
// path.
func WriteGLTFFile(dir, name string, meshes []*mesh.Mesh, binary bool, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	ext := ".gltf"
	if binary {
		ext = ".glb"
	}
	path := filepath.Join(dir, name+ext)
	if err := writeFile(path, func(w io.Writer) error {
		return WriteGLTF(w, meshes, binary, opts)
	}); err != nil {
		return "", err
	}
	return path, nil
}
