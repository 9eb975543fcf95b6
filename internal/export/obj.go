// Package export writes decoded models as glTF 2.0 (JSON or GLB) or as
// Wavefront OBJ geometry with an accompanying MTL material library.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/rbmkit/internal/mesh"
	"github.com/Faultbox/rbmkit/pkg/math"
	"github.com/Faultbox/rbmkit/pkg/rbm"
)

// Options controls export output. MaterialLib and FlipV only apply to OBJ.
type Options struct {
	// MaterialLib is the MTL file referenced by the OBJ. Empty disables
	// material references.
	MaterialLib string

	// FlipV writes texture coordinates as 1-v. RBM textures are top-left
	// origin; OBJ is bottom-left.
	FlipV bool

	// TexturePaths overrides the texture paths written to the MTL. When nil
	// the material's own paths are used.
	TexturePaths func(m *mesh.Mesh) [rbm.TextureCount]string
}

// objWriter keeps the first write error so line emitters stay unchecked.
type objWriter struct {
	w   *bufio.Writer
	err error
}

func (o *objWriter) printf(format string, args ...any) {
	if o.err != nil {
		return
	}
	_, o.err = fmt.Fprintf(o.w, format, args...)
}

func (o *objWriter) flush() error {
	if o.err != nil {
		return o.err
	}
	return o.w.Flush()
}

func num(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// MaterialName is the MTL material name used for the i-th mesh.
func MaterialName(i int, m *mesh.Mesh) string {
	return fmt.Sprintf("block%d_%s", i, m.Kind)
}

// WriteOBJ writes meshes as one OBJ file with an object per mesh. Vertex
// indices are 1-based and run across objects.
func WriteOBJ(w io.Writer, meshes []*mesh.Mesh, opts Options) error {
	o := &objWriter{w: bufio.NewWriter(w)}
	o.printf("# rbmkit export: %d blocks\n", len(meshes))
	if opts.MaterialLib != "" {
		o.printf("mtllib %s\n", opts.MaterialLib)
	}

	base := uint32(1)
	for i, m := range meshes {
		o.printf("o %s\n", MaterialName(i, m))
		for _, v := range m.Vertices {
			o.printf("v %s %s %s\n", num(v.Position.X), num(v.Position.Y), num(v.Position.Z))
		}
		for _, v := range m.Vertices {
			u, t := v.UV0.X, v.UV0.Y
			if opts.FlipV {
				t = 1 - t
			}
			o.printf("vt %s %s\n", num(u), num(t))
		}
		for _, v := range m.Vertices {
			n := v.Normal
			if n != (math.Vec3{}) {
				n = n.Normalize()
			}
			o.printf("vn %s %s %s\n", num(n.X), num(n.Y), num(n.Z))
		}
		if opts.MaterialLib != "" {
			o.printf("usemtl %s\n", MaterialName(i, m))
		}

		switch m.Topology {
		case mesh.LineList:
			for j := 0; j+1 < len(m.Indices); j += 2 {
				o.printf("l %d %d\n", base+m.Indices[j], base+m.Indices[j+1])
			}
		case mesh.PointList:
			for _, idx := range m.Indices {
				o.printf("p %d\n", base+idx)
			}
		default:
			for _, tri := range m.Triangles() {
				a, b, c := base+tri[0], base+tri[1], base+tri[2]
				o.printf("f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
			}
		}
		base += uint32(len(m.Vertices))
	}
	return o.flush()
}

// WriteMTL writes a material per mesh, named to match WriteOBJ.
func WriteMTL(w io.Writer, meshes []*mesh.Mesh, opts Options) error {
	o := &objWriter{w: bufio.NewWriter(w)}
	for i, m := range meshes {
		mat := m.Material
		textures := mat.Textures
		if opts.TexturePaths != nil {
			textures = opts.TexturePaths(m)
		}

		o.printf("newmtl %s\n", MaterialName(i, m))
		c := mat.BaseColor
		o.printf("Kd %s %s %s\n", num(c.X), num(c.Y), num(c.Z))
		if mat.SpecularPower > 0 {
			o.printf("Ks 1 1 1\n")
			o.printf("Ns %s\n", num(mat.SpecularPower))
		} else {
			o.printf("Ks 0 0 0\n")
		}
		o.printf("d %s\n", num(c.W))
		o.printf("illum 2\n")
		if t := textures[mesh.SlotDiffuse]; t != "" {
			o.printf("map_Kd %s\n", t)
		}
		if t := textures[mesh.SlotNormal]; t != "" {
			o.printf("map_Bump %s\n", t)
		}
		o.printf("\n")
	}
	return o.flush()
}

// WriteFiles writes <dir>/<name>.obj and, when withMaterials is set,
// <dir>/<name>.mtl. It returns the OBJ path.
func WriteFiles(dir, name string, meshes []*mesh.Mesh, withMaterials bool, opts Options) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if withMaterials {
		opts.MaterialLib = name + ".mtl"
		if err := writeFile(filepath.Join(dir, opts.MaterialLib), func(w io.Writer) error {
			return WriteMTL(w, meshes, opts)
		}); err != nil {
			return "", err
		}
	} else {
		opts.MaterialLib = ""
	}

	objPath := filepath.Join(dir, name+".obj")
	if err := writeFile(objPath, func(w io.Writer) error {
		return WriteOBJ(w, meshes, opts)
	}); err != nil {
		return "", err
	}
	return objPath, nil
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
