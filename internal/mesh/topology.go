package mesh

import (
	"fmt"

	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Topology is how an index stream groups into drawable primitives.
type Topology int

const (
	TriangleList Topology = iota
	TriangleStrip
	LineList
	PointList
)

func (t Topology) String() string {
	switch t {
	case TriangleList:
		return "triangle-list"
	case TriangleStrip:
		return "triangle-strip"
	case LineList:
		return "line-list"
	case PointList:
		return "point-list"
	default:
		return fmt.Sprintf("topology(%d)", int(t))
	}
}

// TopologyOf maps a material primitive type to a topology. Triangle fans and
// values outside the named set fail with rbm.ErrUnsupportedPrimitive.
func TopologyOf(p rbm.PrimitiveType) (Topology, error) {
	switch p {
	case rbm.PrimitiveTriangleList, rbm.PrimitiveIndexedTriangleList:
		return TriangleList, nil
	case rbm.PrimitiveTriangleStrip, rbm.PrimitiveIndexedTriangleStrip:
		return TriangleStrip, nil
	case rbm.PrimitivePointSprite, rbm.PrimitiveIndexedPointSprite:
		return PointList, nil
	case rbm.PrimitiveLineList:
		return LineList, nil
	default:
		return 0, fmt.Errorf("%w: %s", rbm.ErrUnsupportedPrimitive, p)
	}
}

// Triangles expands an index stream into triangles. Strips alternate
// winding and drop degenerate triangles, which strips use as restarts.
// Lines and points yield no triangles.
func Triangles(t Topology, indices []uint32) [][3]uint32 {
	switch t {
	case TriangleList:
		tris := make([][3]uint32, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			tris = append(tris, [3]uint32{indices[i], indices[i+1], indices[i+2]})
		}
		return tris
	case TriangleStrip:
		var tris [][3]uint32
		for i := 0; i+2 < len(indices); i++ {
			a, b, c := indices[i], indices[i+1], indices[i+2]
			if a == b || b == c || a == c {
				continue
			}
			if i%2 == 1 {
				a, b = b, a
			}
			tris = append(tris, [3]uint32{a, b, c})
		}
		return tris
	default:
		return nil
	}
}
