// SPDX-License-Identifier: MIT

// Package sparse implements a rank-aligned payload array: a slice of
// values kept in the same order as the set bits of some occupancy
// structure, so that the i-th occupied key maps to Items[i].
//
// Adapted from github.com/gaissmai/bart's internal/sparse.Array256,
// which couples payload items directly to a bitset.BitSet256. Splinter's
// Partition occupancy can be any of four storage classes (Vec, Bitmap,
// Run, Tree), not only a flat bitmap, so this package decouples the
// rank computation (supplied by the caller via a plain int) from the
// item storage, while keeping the same insert/delete shifting algorithm.
package sparse

// Array is a dense, rank-ordered slice of payload items. Callers are
// responsible for computing the rank (0-based position among members)
// from whichever occupancy encoding they use, typically via a
// storage-class-specific Rank method, and for keeping that occupancy in
// sync with InsertAt/DeleteAt calls on this array.
type Array[T any] struct {
	Items []T
}

// Len returns the number of stored items.
func (a *Array[T]) Len() int {
	return len(a.Items)
}

// Get returns the item at rank, and true, or the zero value and false if
// rank is out of bounds.
func (a *Array[T]) Get(rank int) (value T, ok bool) {
	if rank < 0 || rank >= len(a.Items) {
		return value, false
	}
	return a.Items[rank], true
}

// MustGet returns the item at rank without bounds checking. Use only
// after a caller has already verified the rank is valid.
func (a *Array[T]) MustGet(rank int) T {
	return a.Items[rank]
}

// Copy returns a shallow copy of the array.
func (a *Array[T]) Copy() *Array[T] {
	if a == nil {
		return nil
	}
	return &Array[T]{Items: append(a.Items[:0:0], a.Items...)}
}

// InsertAt inserts value at rank, shifting every item at or after rank
// one slot to the right. The caller must insert at the correct rank for
// a newly-occupied key (i.e. call this only after adding the key to the
// occupancy structure and recomputing its rank).
//
// It panics if rank is out of [0, Len()] range.
func (a *Array[T]) InsertAt(rank int, value T) {
	if len(a.Items) < cap(a.Items) {
		a.Items = a.Items[:len(a.Items)+1] // fast resize, no alloc
	} else {
		var zero T
		a.Items = append(a.Items, zero)
	}

	_ = a.Items[rank]                     // BCE
	copy(a.Items[rank+1:], a.Items[rank:]) // shift right starting at rank
	a.Items[rank] = value
}

// DeleteAt removes and returns the item at rank, shifting every item
// after it one slot to the left and clearing the vacated tail slot.
//
// It panics if rank is out of [0, Len()) range.
func (a *Array[T]) DeleteAt(rank int) T {
	var zero T

	value := a.Items[rank]

	_ = a.Items[rank]                     // BCE
	copy(a.Items[rank:], a.Items[rank+1:]) // shift left

	nl := len(a.Items) - 1
	a.Items[nl] = zero
	a.Items = a.Items[:nl]

	return value
}
