package rbm

import (
	gomath "math"
)

// record is implemented by pointers to fixed-size records that the buffer
// engine reads and writes. A carries the per-element decode arguments that
// the enclosing block resolves while reading (vertex format, bone width).
type record[T, A any] interface {
	*T
	size(args A) int
	decode(r *reader, args A)
	encode(w *writer, args A)
}

// Index is the set of index element widths used by render blocks.
type Index interface {
	uint8 | uint16 | uint32
}

// countOf converts a sequence length to the u32 count field.
func countOf(n int) (uint32, error) {
	if n < 0 || uint64(n) > gomath.MaxUint32 {
		return 0, ErrLengthOverflow
	}
	return uint32(n), nil
}

// readBuffer reads a u32 element count followed by that many records. The
// declared count is checked against the remaining input before allocating.
// On failure it returns nil and leaves the error in r.
func readBuffer[T any, A any, P record[T, A]](r *reader, args A) []T {
	start := r.off
	count := r.u32()
	if r.err != nil {
		return nil
	}

	var zero T
	size := P(&zero).size(args)
	if uint64(count)*uint64(size) > uint64(r.remaining()) {
		r.failAt(start, ErrTruncated)
		return nil
	}

	items := make([]T, count)
	for i := range items {
		P(&items[i]).decode(r, args)
		if r.err != nil {
			return nil
		}
	}
	return items
}

// writeBuffer writes the u32 element count followed by every record.
func writeBuffer[T any, A any, P record[T, A]](w *writer, items []T, args A) {
	if w.err != nil {
		return
	}
	count, err := countOf(len(items))
	if err != nil {
		w.fail(err)
		return
	}
	w.u32(count)
	for i := range items {
		P(&items[i]).encode(w, args)
		if w.err != nil {
			return
		}
	}
}

func indexSize[T Index]() int {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	default:
		return 4
	}
}

func readIndex[T Index](r *reader) T {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return T(r.u8())
	case uint16:
		return T(r.u16())
	default:
		return T(r.u32())
	}
}

func writeIndex[T Index](w *writer, v T) {
	switch x := any(v).(type) {
	case uint8:
		w.u8(x)
	case uint16:
		w.u16(x)
	case uint32:
		w.u32(x)
	}
}

// readIndices reads an index buffer whose every element must address one of
// bound vertices. The first offending element fails the whole buffer.
func readIndices[T Index](r *reader, bound int) []T {
	start := r.off
	count := r.u32()
	if r.err != nil {
		return nil
	}

	size := indexSize[T]()
	if uint64(count)*uint64(size) > uint64(r.remaining()) {
		r.failAt(start, ErrTruncated)
		return nil
	}

	indices := make([]T, count)
	for i := range indices {
		at := r.off
		v := readIndex[T](r)
		if r.err != nil {
			return nil
		}
		if uint64(v) >= uint64(bound) {
			r.failAt(at, &IndexOutOfBoundsError{Index: uint32(v), Bound: bound, Position: i})
			return nil
		}
		indices[i] = v
	}
	return indices
}

// writeIndices performs the same bound check as readIndices before emitting
// each element, so an invalid in-memory model never reaches the output.
func writeIndices[T Index](w *writer, indices []T, bound int) {
	if w.err != nil {
		return
	}
	count, err := countOf(len(indices))
	if err != nil {
		w.fail(err)
		return
	}
	w.u32(count)
	for i, v := range indices {
		if uint64(v) >= uint64(bound) {
			w.fail(&IndexOutOfBoundsError{Index: uint32(v), Bound: bound, Position: i})
			return
		}
		writeIndex(w, v)
	}
}

// indexList widens an index buffer for consumers.
func indexList[T Index](indices []T) []uint32 {
	out := make([]uint32, len(indices))
	for i, v := range indices {
		out[i] = uint32(v)
	}
	return out
}
