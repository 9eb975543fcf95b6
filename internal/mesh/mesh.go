// Package mesh turns decoded render blocks into drawable meshes: canonical
// vertices, widened indices, an explicit topology and a material
// description.
package mesh

import (
	"fmt"

	"github.com/Faultbox/rbmkit/pkg/math"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Mesh is one render block ready for a renderer or exporter.
type Mesh struct {
	Kind     rbm.BlockKind
	Topology Topology
	Vertices []rbm.GenericVertex
	Indices  []uint32
	Material Material
}

// FromBlock converts a block. Vertices are dequantized by the block's
// vertex info.
func FromBlock(b rbm.RenderBlock) (*Mesh, error) {
	topology, err := TopologyOf(b.MaterialInfo().PrimitiveType)
	if err != nil {
		return nil, err
	}
	return &Mesh{
		Kind:     b.Kind(),
		Topology: topology,
		Vertices: b.GenericVertices(),
		Indices:  b.IndexList(),
		Material: MaterialOf(b),
	}, nil
}

// FromModel converts every block of a model. The first block that cannot be
// converted fails the model.
func FromModel(m *rbm.Model) ([]*Mesh, error) {
	meshes := make([]*Mesh, 0, len(m.Blocks))
	for i, b := range m.Blocks {
		mesh, err := FromBlock(b)
		if err != nil {
			return nil, fmt.Errorf("block %d (%s): %w", i, b.Kind(), err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Triangles returns the mesh's triangles.
func (m *Mesh) Triangles() [][3]uint32 {
	return Triangles(m.Topology, m.Indices)
}

// Bounds returns the axis-aligned bounds of the vertex positions. An empty
// mesh has zero bounds.
func (m *Mesh) Bounds() (lo, hi math.Vec3) {
	if len(m.Vertices) == 0 {
		return lo, hi
	}
	lo, hi = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		lo = lo.Min(v.Position)
		hi = hi.Max(v.Position)
	}
	return lo, hi
}
