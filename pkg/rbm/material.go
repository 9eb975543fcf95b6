package rbm

import "fmt"

// PrimitiveType describes how an index stream groups into primitives.
type PrimitiveType uint32

const (
	PrimitiveTriangleList PrimitiveType = iota
	PrimitiveIndexedTriangleList
	PrimitiveTriangleStrip
	PrimitiveIndexedTriangleStrip
	PrimitiveTriangleFan
	PrimitiveIndexedTriangleFan
	PrimitivePointSprite
	PrimitiveIndexedPointSprite
	PrimitiveLineList
)

var primitiveNames = [...]string{
	"TriangleList",
	"IndexedTriangleList",
	"TriangleStrip",
	"IndexedTriangleStrip",
	"TriangleFan",
	"IndexedTriangleFan",
	"PointSprite",
	"IndexedPointSprite",
	"LineList",
}

// String returns a human-readable primitive type name.
func (p PrimitiveType) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(p))
}

// TextureCount is the number of texture slots in every material.
const TextureCount = 8

// Material describes the textures and topology of a render block. Texture
// paths are opaque strings; empty slots are empty strings. The primitive type
// is carried as read, including values outside the named set.
type Material struct {
	PrimitiveType PrimitiveType
	Textures      [TextureCount]string
}

func (m *Material) decode(r *reader) {
	m.PrimitiveType = PrimitiveType(r.u32())
	for i := range m.Textures {
		m.Textures[i] = r.text()
	}
}

func (m *Material) encode(w *writer) {
	w.u32(uint32(m.PrimitiveType))
	for i := range m.Textures {
		w.text(m.Textures[i])
	}
}
