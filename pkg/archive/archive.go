// Package archive reads and writes hashed asset archives: a .tab index of
// {path hash, offset, size} entries and a .arc data file holding the bytes.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// tabMagic starts every index file.
const tabMagic = "TAB\x00"

// Version is the index format version written and accepted.
const Version = 2

// DefaultAlignment is the data alignment used by Build.
const DefaultAlignment = 2048

const (
	headerSize = 12
	entrySize  = 12
)

var (
	ErrInvalidMagic       = errors.New("invalid archive index magic")
	ErrUnsupportedVersion = errors.New("unsupported archive index version")
	ErrCorruptIndex       = errors.New("corrupt archive index")
	ErrNotFound           = errors.New("file not found in archive")
	ErrDuplicate          = errors.New("duplicate archive path")
)

// Header is the fixed .tab header.
type Header struct {
	Magic     [4]byte
	Version   uint32
	Alignment uint32
}

// Entry locates one file inside the .arc data file.
type Entry struct {
	Hash   uint32
	Offset uint32
	Size   uint32
}

// Archive is an opened archive. Reads use ReadAt and are safe for
// concurrent use.
type Archive struct {
	data    io.ReaderAt
	closer  io.Closer
	header  Header
	entries map[uint32]Entry
	order   []uint32
}

// Open opens an archive from its index path. The data file is the sibling
// with the .arc extension.
func Open(tabPath string) (*Archive, error) {
	tab, err := os.Open(tabPath)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}
	defer tab.Close()

	arc, err := os.Open(DataPath(tabPath))
	if err != nil {
		return nil, fmt.Errorf("opening data: %w", err)
	}

	a, err := Load(tab, arc)
	if err != nil {
		arc.Close()
		return nil, err
	}
	a.closer = arc
	return a, nil
}

// DataPath returns the .arc path paired with an index path.
func DataPath(tabPath string) string {
	return strings.TrimSuffix(tabPath, ".tab") + ".arc"
}

// Load reads an index from tab and serves file contents from data.
func Load(tab io.Reader, data io.ReaderAt) (*Archive, error) {
	a := &Archive{
		data:    data,
		entries: make(map[uint32]Entry),
	}
	if err := a.readHeader(tab); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if err := a.readEntries(tab); err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	return a, nil
}

// Close releases the data file opened by Open.
func (a *Archive) Close() error {
	if a.closer != nil {
		return a.closer.Close()
	}
	return nil
}

func (a *Archive) readHeader(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != tabMagic {
		return fmt.Errorf("%w: % x", ErrInvalidMagic, a.header.Magic)
	}
	if a.header.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readEntries(r io.Reader) error {
	var raw [entrySize]byte
	for {
		_, err := io.ReadFull(r, raw[:])
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}

		e := Entry{
			Hash:   binary.LittleEndian.Uint32(raw[0:]),
			Offset: binary.LittleEndian.Uint32(raw[4:]),
			Size:   binary.LittleEndian.Uint32(raw[8:]),
		}
		if _, dup := a.entries[e.Hash]; !dup {
			a.order = append(a.order, e.Hash)
		}
		a.entries[e.Hash] = e
	}
}

// Header returns the index header.
func (a *Archive) Header() Header {
	return a.header
}

// Len returns the number of files in the archive.
func (a *Archive) Len() int {
	return len(a.order)
}

// Entries returns every entry in index order.
func (a *Archive) Entries() []Entry {
	result := make([]Entry, 0, len(a.order))
	for _, h := range a.order {
		result = append(result, a.entries[h])
	}
	return result
}

// Contains checks if a file exists.
func (a *Archive) Contains(path string) bool {
	_, ok := a.entries[Hash(path)]
	return ok
}

// Lookup returns the entry for a path.
func (a *Archive) Lookup(path string) (Entry, bool) {
	e, ok := a.entries[Hash(path)]
	return e, ok
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	e, ok := a.entries[Hash(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return a.readEntry(e)
}

// ReadHash reads a file by its path hash.
func (a *Archive) ReadHash(hash uint32) ([]byte, error) {
	e, ok := a.entries[hash]
	if !ok {
		return nil, fmt.Errorf("%w: hash %08x", ErrNotFound, hash)
	}
	return a.readEntry(e)
}

func (a *Archive) readEntry(e Entry) ([]byte, error) {
	data := make([]byte, e.Size)
	if e.Size == 0 {
		return data, nil
	}
	if _, err := a.data.ReadAt(data, int64(e.Offset)); err != nil {
		return nil, fmt.Errorf("reading %08x at offset %d: %w", e.Hash, e.Offset, err)
	}
	return data, nil
}

// File is one input to Build.
type File struct {
	Path string
	Data []byte
}

// Build writes an archive holding files to tab and arc. Entries are written
// in path order and each file starts on an alignment boundary.
func Build(tab, arc io.Writer, files []File, alignment uint32) error {
	if alignment == 0 {
		alignment = 1
	}
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(x, y File) int {
		return strings.Compare(x.Path, y.Path)
	})

	seen := make(map[uint32]string, len(sorted))
	for _, f := range sorted {
		h := Hash(f.Path)
		if prev, ok := seen[h]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicate, prev, f.Path)
		}
		seen[h] = f.Path
	}

	header := Header{Version: Version, Alignment: alignment}
	copy(header.Magic[:], tabMagic)
	if err := binary.Write(tab, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	var offset uint64
	for _, f := range sorted {
		if offset+uint64(len(f.Data)) > 0xFFFFFFFF {
			return fmt.Errorf("archive exceeds 4 GiB at %s", f.Path)
		}
		e := Entry{Hash: Hash(f.Path), Offset: uint32(offset), Size: uint32(len(f.Data))}
		if err := binary.Write(tab, binary.LittleEndian, e); err != nil {
			return fmt.Errorf("writing entry: %w", err)
		}
		if _, err := arc.Write(f.Data); err != nil {
			return fmt.Errorf("writing %s: %w", f.Path, err)
		}
		offset += uint64(len(f.Data))

		if pad := (uint64(alignment) - offset%uint64(alignment)) % uint64(alignment); pad > 0 {
			if _, err := arc.Write(make([]byte, pad)); err != nil {
				return fmt.Errorf("writing padding: %w", err)
			}
			offset += pad
		}
	}
	return nil
}

// BuildFiles writes an archive to tabPath and its sibling .arc.
func BuildFiles(tabPath string, files []File, alignment uint32) (err error) {
	tab, err := os.Create(tabPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := tab.Close(); err == nil {
			err = cerr
		}
	}()

	arc, err := os.Create(DataPath(tabPath))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := arc.Close(); err == nil {
			err = cerr
		}
	}()

	return Build(tab, arc, files, alignment)
}
