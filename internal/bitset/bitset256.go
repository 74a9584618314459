// SPDX-License-Identifier: MIT

// Package bitset implements a fixed-size 256-bit set, the primitive used
// throughout splinter's owning tree to represent Block occupancy and
// Partition key membership, whatever storage class the codec later picks.
//
// Studied github.com/gaissmai/bart's internal/bitset package inside out;
// the popcount/rank tricks below are that implementation's, rewritten
// here around byte-value membership instead of routing-table indices.
package bitset

import (
	"fmt"
	"math/bits"
)

// BitSet256 represents a fixed size bitset over the byte range [0, 255].
// It backs the Bitmap storage class for both Block occupancy and
// Partition key occupancy.
type BitSet256 [4]uint64

func (b *BitSet256) String() string {
	return fmt.Sprint(b.All())
}

// MustSet sets the bit for byte value v. Panics if v > 255, by intention:
// every caller already knows v is a byte.
func (b *BitSet256) MustSet(v uint) {
	b[v>>6] |= 1 << (v & 63)
}

// MustClear clears the bit for byte value v. Panics if v > 255.
func (b *BitSet256) MustClear(v uint) {
	b[v>>6] &^= 1 << (v & 63)
}

// Test reports whether v is a member.
func (b *BitSet256) Test(v uint) bool {
	if x := int(v >> 6); x < 4 {
		return b[x&3]&(1<<(v&63)) != 0 // [x&3] is bounds check elimination (BCE)
	}
	return false
}

// FirstSet returns the lowest member, if any.
func (b *BitSet256) FirstSet() (first uint, ok bool) {
	if x := bits.TrailingZeros64(b[0]); x != 64 {
		return uint(x), true
	} else if x := bits.TrailingZeros64(b[1]); x != 64 {
		return uint(x + 64), true
	} else if x := bits.TrailingZeros64(b[2]); x != 64 {
		return uint(x + 128), true
	} else if x := bits.TrailingZeros64(b[3]); x != 64 {
		return uint(x + 192), true
	}
	return
}

// NextSet returns the lowest member >= v, if any.
func (b *BitSet256) NextSet(v uint) (uint, bool) {
	wIdx := int(v >> 6)
	if wIdx >= 4 {
		return 0, false
	}

	first := b[wIdx&3] >> (v & 63)
	if first != 0 {
		return v + uint(bits.TrailingZeros64(first)), true
	}

	wIdx++
	for jIdx, word := range b[wIdx:] {
		if word != 0 {
			return uint((wIdx+jIdx)<<6 + bits.TrailingZeros64(word)), true
		}
	}
	return 0, false
}

// AsSlice returns all members as a slice of byte values without heap
// allocation, reusing buf's capacity. It panics if cap(buf) < b.Size().
func (b *BitSet256) AsSlice(buf []uint) []uint {
	buf = buf[:cap(buf)]

	size := 0
	for wIdx, word := range b {
		for ; word != 0; size++ {
			buf[size] = uint(wIdx<<6 + bits.TrailingZeros64(word))
			word &= word - 1
		}
	}

	return buf[:size]
}

// All returns all members in ascending order. Simpler but slower than
// AsSlice because it allocates.
func (b *BitSet256) All() []uint {
	return b.AsSlice(make([]uint, 0, 256))
}

// IntersectionTop returns the highest member of b that is also a member
// of c, if the intersection is non-empty.
func (b *BitSet256) IntersectionTop(c *BitSet256) (top uint, ok bool) {
	for wIdx := 4 - 1; wIdx >= 0; wIdx-- {
		if word := b[wIdx] & c[wIdx]; word != 0 {
			return uint(wIdx<<6+bits.Len64(word)) - 1, true
		}
	}
	return
}

// Rank0 returns the number of members <= v, minus 1. The result is
// meant to be used directly as a slice index into a rank-aligned
// payload array (see internal/sparse), hence the "0" in the name and
// the implicit decrement.
//
// Rank0 is on the hot query path: it deliberately does not bounds-check
// v against 255, relying on the precomputed mask table instead.
func (b *BitSet256) Rank0(v uint) (rnk int) {
	rnk += bits.OnesCount64(b[0] & rankMask[uint8(v)][0]) // uint8() is BCE
	rnk += bits.OnesCount64(b[1] & rankMask[uint8(v)][1])
	rnk += bits.OnesCount64(b[2] & rankMask[uint8(v)][2])
	rnk += bits.OnesCount64(b[3] & rankMask[uint8(v)][3])

	rnk--
	return
}

// IsEmpty reports whether no bit is set.
func (b *BitSet256) IsEmpty() bool {
	return b[3] == 0 && b[2] == 0 && b[1] == 0 && b[0] == 0
}

// IntersectsAny reports whether b and c share any member.
func (b *BitSet256) IntersectsAny(c *BitSet256) bool {
	return b[0]&c[0] != 0 ||
		b[1]&c[1] != 0 ||
		b[2]&c[2] != 0 ||
		b[3]&c[3] != 0
}

// Intersection returns b & c.
func (b *BitSet256) Intersection(c *BitSet256) (bs BitSet256) {
	bs[0] = b[0] & c[0]
	bs[1] = b[1] & c[1]
	bs[2] = b[2] & c[2]
	bs[3] = b[3] & c[3]
	return
}

// Union returns b | c.
func (b *BitSet256) Union(c *BitSet256) (bs BitSet256) {
	bs[0] = b[0] | c[0]
	bs[1] = b[1] | c[1]
	bs[2] = b[2] | c[2]
	bs[3] = b[3] | c[3]
	return
}

// Difference returns b with every member of c cleared (b \ c).
func (b *BitSet256) Difference(c *BitSet256) (bs BitSet256) {
	bs[0] = b[0] &^ c[0]
	bs[1] = b[1] &^ c[1]
	bs[2] = b[2] &^ c[2]
	bs[3] = b[3] &^ c[3]
	return
}

// IntersectionCardinality returns the popcount of b & c.
func (b *BitSet256) IntersectionCardinality(c *BitSet256) (cnt int) {
	cnt += bits.OnesCount64(b[0] & c[0])
	cnt += bits.OnesCount64(b[1] & c[1])
	cnt += bits.OnesCount64(b[2] & c[2])
	cnt += bits.OnesCount64(b[3] & c[3])
	return
}

// Size is the number of members (popcount).
func (b *BitSet256) Size() int {
	return bits.OnesCount64(b[0]) + bits.OnesCount64(b[1]) +
		bits.OnesCount64(b[2]) + bits.OnesCount64(b[3])
}
