// Package rbm decodes and encodes render block models (RBM), the binary mesh
// container of the Avalanche engine asset pipeline.
//
// A model is a header (endianness marker, magic, version, bounding box)
// followed by a count-prefixed list of tagged render blocks. Every block
// carries a version-tagged attribute body, a material, a vertex buffer whose
// layout the attributes select and an index buffer bounded by the vertex
// count.
package rbm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Masterminds/semver/v3"

	"github.com/Faultbox/rbmkit/pkg/math"
)

// Magic follows the endianness marker in every model.
const Magic = "RBMDL"

// HeaderSize is the size of the fixed header up to the block count.
const HeaderSize = 45

// Endian is the byte order of every multi-byte field after the marker.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

var (
	markerLittle = [4]byte{0x05, 0x00, 0x00, 0x00}
	markerBig    = [4]byte{0x00, 0x00, 0x00, 0x05}
)

// ByteOrder returns the encoding/binary byte order for e.
func (e Endian) ByteOrder() binary.ByteOrder {
	if e == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// String returns "little" or "big".
func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

func (e Endian) marker() [4]byte {
	if e == BigEndian {
		return markerBig
	}
	return markerLittle
}

// Version is the model format version triple.
type Version struct {
	Major, Minor, Patch uint32
}

// String returns the version as "Major.Minor.Patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// supportedVersions accepts 1.13 with any patch level.
var supportedVersions = mustConstraint("~1.13")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

// Supported reports whether the codec can read models of version v.
func (v Version) Supported() bool {
	return supportedVersions.Check(semver.New(uint64(v.Major), uint64(v.Minor), uint64(v.Patch), "", ""))
}

// DefaultVersion is the version written by models built in memory.
var DefaultVersion = Version{Major: 1, Minor: 13, Patch: 0}

// Model is a decoded render block model. The version is carried as read;
// the bounding box is passed through without checking Min against Max.
type Model struct {
	Endian  Endian
	Version Version
	Min     math.Vec3
	Max     math.Vec3
	Blocks  []RenderBlock
}

// Decode decodes a model from data. Decoding never retains data.
func Decode(data []byte) (*Model, error) {
	r := newReader(data)
	m := &Model{}

	marker, ok := r.take(4)
	if !ok {
		r.err = nil
		r.failAt(0, fmt.Errorf("%w: %w", ErrMalformedHeader, ErrTruncated))
		return nil, r.err
	}
	switch [4]byte(marker) {
	case markerLittle:
		m.Endian = LittleEndian
	case markerBig:
		m.Endian = BigEndian
	default:
		r.failAt(0, fmt.Errorf("%w: endianness marker % x", ErrMalformedHeader, marker))
		return nil, r.err
	}
	r.order = m.Endian.ByteOrder()

	magic, ok := r.take(len(Magic))
	if !ok {
		return nil, r.err
	}
	if string(magic) != Magic {
		r.failAt(4, fmt.Errorf("%w: magic %q", ErrMalformedHeader, magic))
		return nil, r.err
	}

	m.Version = Version{Major: r.u32(), Minor: r.u32(), Patch: r.u32()}
	if r.err != nil {
		return nil, r.err
	}
	if !m.Version.Supported() {
		r.failAt(9, fmt.Errorf("%w: %s", ErrUnsupportedVersion, m.Version))
		return nil, r.err
	}

	m.Min = r.vec3()
	m.Max = r.vec3()

	entries := readBuffer[blockEntry](r, struct{}{})
	if r.err != nil {
		return nil, r.err
	}
	m.Blocks = make([]RenderBlock, len(entries))
	for i, e := range entries {
		m.Blocks[i] = e.block
	}
	return m, nil
}

// Read decodes a model from a byte source.
func Read(src io.Reader) (*Model, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading RBM data: %w", err)
	}
	return Decode(data)
}

// ReadFile decodes a model from disk.
func ReadFile(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading RBM file: %w", err)
	}
	return Decode(data)
}

// MarshalBinary encodes the model under m.Endian. The marker and magic are
// derived from the configuration; every count is derived from the slices.
func (m *Model) MarshalBinary() ([]byte, error) {
	w := newWriter(m.Endian.ByteOrder())
	marker := m.Endian.marker()
	w.raw(marker[:])
	w.raw([]byte(Magic))
	w.u32(m.Version.Major)
	w.u32(m.Version.Minor)
	w.u32(m.Version.Patch)
	w.vec3(m.Min)
	w.vec3(m.Max)

	entries := make([]blockEntry, len(m.Blocks))
	for i, b := range m.Blocks {
		entries[i] = blockEntry{block: b}
	}
	writeBuffer(w, entries, struct{}{})
	if w.err != nil {
		return nil, w.err
	}
	return w.buf.Bytes(), nil
}

// UnmarshalBinary replaces m with the model decoded from data.
func (m *Model) UnmarshalBinary(data []byte) error {
	decoded, err := Decode(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// Encode writes the encoded model to dst. Nothing is written when encoding
// fails.
func (m *Model) Encode(dst io.Writer) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, bytes.NewReader(data))
	return err
}

// WriteFile encodes the model to disk.
func (m *Model) WriteFile(path string) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// VertexCount returns the number of vertices across all blocks.
func (m *Model) VertexCount() int {
	total := 0
	for _, b := range m.Blocks {
		total += b.VertexCount()
	}
	return total
}

// IndexCount returns the number of indices across all blocks.
func (m *Model) IndexCount() int {
	total := 0
	for _, b := range m.Blocks {
		total += b.IndexCount()
	}
	return total
}
