package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/rbmkit/internal/mesh"
	"github.com/Faultbox/rbmkit/pkg/math"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

func quad() *mesh.Mesh {
	vertex := func(x, y, u, v float32) rbm.GenericVertex {
		return rbm.GenericVertex{
			Position: math.Vec3{X: x, Y: y},
			Normal:   math.Vec3{Z: 2},
			UV0:      math.Vec2{X: u, Y: v},
			Color:    rbm.White,
		}
	}
	m := &mesh.Mesh{
		Kind:     rbm.BlockGeneral,
		Topology: mesh.TriangleList,
		Vertices: []rbm.GenericVertex{
			vertex(0, 0, 0, 0),
			vertex(1, 0, 1, 0),
			vertex(0, 1, 0, 1),
			vertex(1, 1, 1, 1),
		},
		Indices: []uint32{0, 1, 2, 2, 1, 3},
		Material: mesh.Material{
			BaseColor:     math.Vec4{X: 1, Y: 0.5, Z: 0, W: 1},
			SpecularPower: 32,
		},
	}
	m.Material.Textures[mesh.SlotDiffuse] = "textures/body_dif.dds"
	m.Material.Textures[mesh.SlotNormal] = "textures/body_nrm.dds"
	return m
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestWriteOBJ(t *testing.T) {
	var buf bytes.Buffer
	err := WriteOBJ(&buf, []*mesh.Mesh{quad()}, Options{MaterialLib: "car.mtl"})
	require.NoError(t, err)

	got := lines(buf.String())
	assert.Equal(t, "mtllib car.mtl", got[1])
	assert.Equal(t, "o block0_General", got[2])
	assert.Contains(t, got, "v 1 1 0")
	assert.Contains(t, got, "vt 0 1")
	assert.Contains(t, got, "vn 0 0 1")
	assert.Contains(t, got, "usemtl block0_General")
	assert.Contains(t, got, "f 1/1/1 2/2/2 3/3/3")
	assert.Contains(t, got, "f 3/3/3 2/2/2 4/4/4")
}

func TestWriteOBJFlipV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, []*mesh.Mesh{quad()}, Options{FlipV: true}))

	var vts []string
	for _, l := range lines(buf.String()) {
		if strings.HasPrefix(l, "vt ") {
			vts = append(vts, l)
		}
	}
	assert.Equal(t, []string{"vt 0 1", "vt 1 1", "vt 0 0", "vt 1 0"}, vts)
	assert.NotContains(t, buf.String(), "mtllib")
	assert.NotContains(t, buf.String(), "usemtl")
}

func TestWriteOBJIndexOffsets(t *testing.T) {
	second := quad()
	second.Kind = rbm.BlockLambert

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, []*mesh.Mesh{quad(), second}, Options{}))

	got := lines(buf.String())
	assert.Contains(t, got, "o block1_Lambert")
	assert.Contains(t, got, "f 5/5/5 6/6/6 7/7/7")
	assert.Contains(t, got, "f 7/7/7 6/6/6 8/8/8")
}

func TestWriteOBJLinesAndPoints(t *testing.T) {
	l := quad()
	l.Topology = mesh.LineList
	l.Indices = []uint32{0, 1, 2, 3, 3}
	p := quad()
	p.Topology = mesh.PointList
	p.Indices = []uint32{0, 3}

	var buf bytes.Buffer
	require.NoError(t, WriteOBJ(&buf, []*mesh.Mesh{l, p}, Options{}))

	got := lines(buf.String())
	assert.Contains(t, got, "l 1 2")
	assert.Contains(t, got, "l 3 4")
	assert.Contains(t, got, "p 5")
	assert.Contains(t, got, "p 8")
	assert.NotContains(t, buf.String(), "\nf ")
}

func TestWriteMTL(t *testing.T) {
	plain := quad()
	plain.Material = mesh.Material{BaseColor: math.Vec4{X: 0.25, Y: 0.25, Z: 0.25, W: 0.5}}

	var buf bytes.Buffer
	require.NoError(t, WriteMTL(&buf, []*mesh.Mesh{quad(), plain}, Options{}))
	out := buf.String()

	assert.Contains(t, out, "newmtl block0_General\nKd 1 0.5 0\nKs 1 1 1\nNs 32\nd 1\n")
	assert.Contains(t, out, "map_Kd textures/body_dif.dds\n")
	assert.Contains(t, out, "map_Bump textures/body_nrm.dds\n")
	assert.Contains(t, out, "newmtl block1_General\nKd 0.25 0.25 0.25\nKs 0 0 0\nd 0.5\n")
	assert.Equal(t, 2, strings.Count(out, "map_"))
}

func TestWriteMTLTexturePaths(t *testing.T) {
	m := quad()
	var buf bytes.Buffer
	opts := Options{TexturePaths: func(m *mesh.Mesh) [rbm.TextureCount]string {
		return mesh.ResolveTextures("models/car/body.rbm", m.Material.Textures)
	}}
	require.NoError(t, WriteMTL(&buf, []*mesh.Mesh{m}, opts))
	assert.Contains(t, buf.String(), "map_Kd models/car/textures/body_dif.dds\n")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, os.ErrClosed }

func TestWriteOBJPropagatesErrors(t *testing.T) {
	big := quad()
	for i := 0; i < 12; i++ {
		big.Vertices = append(big.Vertices, big.Vertices...)
	}
	err := WriteOBJ(failWriter{}, []*mesh.Mesh{big}, Options{})
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	objPath, err := WriteFiles(dir, "body", []*mesh.Mesh{quad()}, true, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "body.obj"), objPath)

	obj, err := os.ReadFile(objPath)
	require.NoError(t, err)
	assert.Contains(t, string(obj), "mtllib body.mtl\n")

	mtl, err := os.ReadFile(filepath.Join(dir, "body.mtl"))
	require.NoError(t, err)
	assert.Contains(t, string(mtl), "newmtl block0_General\n")
}

func TestWriteFilesWithoutMaterials(t *testing.T) {
	dir := t.TempDir()
	objPath, err := WriteFiles(dir, "body", []*mesh.Mesh{quad()}, false, Options{MaterialLib: "stale.mtl"})
	require.NoError(t, err)

	obj, err := os.ReadFile(objPath)
	require.NoError(t, err)
	assert.NotContains(t, string(obj), "mtllib")
	assert.NoFileExists(t, filepath.Join(dir, "body.mtl"))
}
