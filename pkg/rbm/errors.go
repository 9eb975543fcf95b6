package rbm

import (
	"errors"
	"fmt"
)

// Render block model errors.
var (
	ErrMalformedHeader         = errors.New("malformed RBM header")
	ErrUnsupportedVersion      = errors.New("unsupported RBM version")
	ErrUnsupportedBlock        = errors.New("unsupported render block")
	ErrUnsupportedBlockVersion = errors.New("unsupported render block version")
	ErrInvalidVertexFormat     = errors.New("invalid vertex format")
	ErrUnsupportedPrimitive    = errors.New("unsupported primitive type")
	ErrLengthOverflow          = errors.New("sequence length overflows count field")
	ErrIndexOutOfBounds        = errors.New("index out of bounds")
	ErrTruncated               = errors.New("truncated RBM data")
	ErrInvalidString           = errors.New("invalid texture path string")
)

// OffsetError records the byte offset at which decoding or encoding failed.
type OffsetError struct {
	Op     string // "decode" or "encode"
	Offset int64
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}

// UnsupportedBlockError is returned for a block kind tag outside the known set.
type UnsupportedBlockError struct {
	Tag uint8
}

func (e *UnsupportedBlockError) Error() string {
	return fmt.Sprintf("%v: tag %d", ErrUnsupportedBlock, e.Tag)
}

func (e *UnsupportedBlockError) Unwrap() error {
	return ErrUnsupportedBlock
}

// IndexOutOfBoundsError identifies an index that does not address a vertex.
type IndexOutOfBoundsError struct {
	Index    uint32 // offending index value
	Bound    int    // vertex count of the owning buffer
	Position int    // element position within the index buffer
}

func (e *IndexOutOfBoundsError) Error() string {
	return fmt.Sprintf("%v: index %d at position %d (vertex count %d)", ErrIndexOutOfBounds, e.Index, e.Position, e.Bound)
}

func (e *IndexOutOfBoundsError) Unwrap() error {
	return ErrIndexOutOfBounds
}

// ErrKind returns a short name for the error class of err, for logging
// rejected assets. It returns "io" for errors outside the taxonomy.
func ErrKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrUnsupportedVersion):
		return "unsupported_version"
	case errors.Is(err, ErrUnsupportedBlock):
		return "unsupported_block"
	case errors.Is(err, ErrUnsupportedBlockVersion):
		return "unsupported_block_version"
	case errors.Is(err, ErrInvalidVertexFormat):
		return "invalid_vertex_format"
	case errors.Is(err, ErrUnsupportedPrimitive):
		return "unsupported_primitive"
	case errors.Is(err, ErrLengthOverflow):
		return "length_overflow"
	case errors.Is(err, ErrIndexOutOfBounds):
		return "index_out_of_bounds"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrInvalidString):
		return "invalid_string"
	default:
		return "io"
	}
}
