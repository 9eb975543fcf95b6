package rbm

import (
	"fmt"

	"github.com/Faultbox/rbmkit/pkg/math"
)

// BlockKind is the one-byte tag written before every render block.
type BlockKind uint8

const (
	BlockGeneral BlockKind = iota
	BlockLambert
	BlockCarPaint
	BlockCarPaintSimple
	BlockSkinnedGeneral
)

var blockKindNames = [...]string{
	"General",
	"Lambert",
	"CarPaint",
	"CarPaintSimple",
	"SkinnedGeneral",
}

// String returns a human-readable block kind name.
func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", uint8(k))
}

// BlockKinds returns every supported kind in tag order.
func BlockKinds() []BlockKind {
	return []BlockKind{BlockGeneral, BlockLambert, BlockCarPaint, BlockCarPaintSimple, BlockSkinnedGeneral}
}

// RenderBlock is one mesh chunk of a model. The set of implementations is
// closed: *GeneralBlock, *LambertBlock, *CarPaintBlock, *CarPaintSimpleBlock
// and *SkinnedGeneralBlock.
type RenderBlock interface {
	Kind() BlockKind
	MaterialInfo() Material
	VertexCount() int
	IndexCount() int
	// GenericVertices converts the vertex buffer to canonical vertices,
	// applying any block-level dequantization.
	GenericVertices() []GenericVertex
	// IndexList returns the index buffer widened to uint32.
	IndexList() []uint32

	decode(r *reader)
	encode(w *writer)
}

// NewRenderBlock returns an empty block of the given kind.
func NewRenderBlock(kind BlockKind) (RenderBlock, error) {
	switch kind {
	case BlockGeneral:
		return &GeneralBlock{}, nil
	case BlockLambert:
		return &LambertBlock{}, nil
	case BlockCarPaint:
		return &CarPaintBlock{}, nil
	case BlockCarPaintSimple:
		return &CarPaintSimpleBlock{}, nil
	case BlockSkinnedGeneral:
		return &SkinnedGeneralBlock{}, nil
	default:
		return nil, &UnsupportedBlockError{Tag: uint8(kind)}
	}
}

// blockEntry adapts a tagged render block to the buffer engine.
type blockEntry struct {
	block RenderBlock
}

// size is the smallest encoded block: the kind tag alone.
func (e *blockEntry) size(struct{}) int {
	return 1
}

func (e *blockEntry) decode(r *reader, _ struct{}) {
	at := r.off
	tag := r.u8()
	if r.err != nil {
		return
	}
	block, err := NewRenderBlock(BlockKind(tag))
	if err != nil {
		r.failAt(at, err)
		return
	}
	block.decode(r)
	e.block = block
}

func (e *blockEntry) encode(w *writer, _ struct{}) {
	if e.block == nil {
		w.fail(fmt.Errorf("%w: nil block", ErrUnsupportedBlock))
		return
	}
	w.u8(uint8(e.block.Kind()))
	e.block.encode(w)
}

// readBlockVersion reads a block's attribute version tag and checks it with
// valid. It reports false after recording ErrUnsupportedBlockVersion.
func readBlockVersion(r *reader, kind BlockKind, valid func(uint8) bool) (uint8, bool) {
	at := r.off
	v := r.u8()
	if r.err != nil {
		return v, false
	}
	if !valid(v) {
		r.failAt(at, fmt.Errorf("%w: %s version %d", ErrUnsupportedBlockVersion, kind, v))
		return v, false
	}
	return v, true
}

func writeBlockVersion(w *writer, kind BlockKind, v uint8, valid func(uint8) bool) bool {
	if !valid(v) {
		w.fail(fmt.Errorf("%w: %s version %d", ErrUnsupportedBlockVersion, kind, v))
		return false
	}
	w.u8(v)
	return true
}

// VertexInfo describes the vertex buffer of General and Lambert blocks.
// UV1Extent is only stored by attribute layouts that carry a second UV set;
// encoding a non-zero UV1Extent into any other layout fails.
type VertexInfo struct {
	Format    VertexFormat
	Scale     float32
	UV0Extent math.Vec2
	UV1Extent math.Vec2
}

func (v *VertexInfo) decode(r *reader, hasUV1 bool) {
	at := r.off
	v.Format = VertexFormat(r.u32())
	if r.err == nil && !v.Format.Valid() {
		r.failAt(at, fmt.Errorf("%w: %s", ErrInvalidVertexFormat, v.Format))
		return
	}
	v.Scale = r.f32()
	v.UV0Extent = r.vec2()
	if hasUV1 {
		v.UV1Extent = r.vec2()
	}
}

func (v *VertexInfo) encode(w *writer, hasUV1 bool) {
	if !v.Format.Valid() {
		w.fail(fmt.Errorf("%w: %s", ErrInvalidVertexFormat, v.Format))
		return
	}
	if !hasUV1 && v.UV1Extent != (math.Vec2{}) {
		w.fail(fmt.Errorf("%w: attribute layout has no second UV extent, got %v", ErrUnsupportedBlockVersion, v.UV1Extent))
		return
	}
	w.u32(uint32(v.Format))
	w.f32(v.Scale)
	w.vec2(v.UV0Extent)
	if hasUV1 {
		w.vec2(v.UV1Extent)
	}
}

// dequantize scales signed-normalized I16 data to model space. F32 data is
// returned unchanged.
func (v *VertexInfo) dequantize(g GenericVertex, hasUV1 bool) GenericVertex {
	if v.Format != VertexFormatI16 {
		return g
	}
	g.Position = g.Position.Scale(v.Scale)
	g.UV0 = g.UV0.Mul(v.UV0Extent)
	if hasUV1 {
		g.UV1 = g.UV1.Mul(v.UV1Extent)
	}
	return g
}

func genericVertices[V Vertex](vertices []V, fn func(GenericVertex) GenericVertex) []GenericVertex {
	out := make([]GenericVertex, len(vertices))
	for i, v := range vertices {
		g := v.Generic()
		if fn != nil {
			g = fn(g)
		}
		out[i] = g
	}
	return out
}
