// SPDX-License-Identifier: MIT

package splinter

import (
	"bytes"
	"iter"
	"sort"
)

// Bytes is any type that behaves like a byte slice: []byte itself, or a
// named type derived from it (e.g. mmap'd pages, a bytes.Buffer's Bytes()
// result copied into a named slice type).
type Bytes interface {
	~[]byte
}

// blockRef is a zero-copy view of a parsed Block (level-3 leaf) node.
type blockRef struct {
	set byteSetRef
}

func (b blockRef) cardinality() int {
	if b.set.full {
		return 256
	}
	return b.set.card
}

func (b blockRef) ascend(bs [4]byte, yield func(uint32) bool) bool {
	v, ok := b.set.first()
	for ok {
		bs[3] = v
		if !yield(recompose(bs)) {
			return false
		}
		v, ok = b.set.next(int(v) + 1)
	}
	return true
}

func (b blockRef) rangeAscend(loByte, hiByte byte, bs [4]byte, yield func(uint32) bool) bool {
	v, ok := b.set.next(int(loByte))
	for ok && v <= hiByte {
		bs[3] = v
		if !yield(recompose(bs)) {
			return false
		}
		v, ok = b.set.next(int(v) + 1)
	}
	return true
}

// partitionRef is a zero-copy view of a parsed Partition node: children are
// stored as `any`, holding either a partitionRef (level < 2) or a blockRef
// (level == 2), mirroring the owning side's sparse.Array[any] dispatch.
type partitionRef struct {
	level     uint8
	totalCard uint32
	keys      byteSetRef
	cumCard   []uint32
	children  []any
}

func (p *partitionRef) cumBefore(before int) uint32 {
	if before <= 0 {
		return 0
	}
	return p.cumCard[before-1]
}

func (p *partitionRef) contains(bs [4]byte) bool {
	key := bs[p.level]
	if !p.keys.contains(key) {
		return false
	}
	rank := p.keys.rank0(key)
	switch child := p.children[rank].(type) {
	case blockRef:
		return child.set.contains(bs[3])
	case partitionRef:
		return child.contains(bs)
	}
	return false
}

func (p *partitionRef) rank(bs [4]byte) int {
	key := bs[p.level]
	rank0 := p.keys.rank0(key)
	contains := p.keys.contains(key)

	before := rank0
	if !contains {
		before = rank0 + 1
	}
	base := p.cumBefore(before)

	if !contains {
		return int(base)
	}

	switch child := p.children[before].(type) {
	case blockRef:
		return int(base) + child.set.rank0(bs[3]) + 1
	case partitionRef:
		return int(base) + child.rank(bs)
	}
	return int(base)
}

// selectNth descends by binary search over cumCard, the format's own
// cumulative-cardinality payload, rather than walking children one at a
// time: cumCard[idx] is the total count through child idx, so the
// smallest idx with cumCard[idx] > n is the child holding the n-th member.
func (p *partitionRef) selectNth(n int, bs *[4]byte) bool {
	target := uint32(n)
	idx := sort.Search(len(p.cumCard), func(i int) bool { return p.cumCard[i] > target })
	if idx >= len(p.cumCard) {
		return false
	}

	key, ok := p.keys.nthMember(idx)
	if !ok {
		return false
	}
	bs[p.level] = key

	local := n - int(p.cumBefore(idx))
	switch child := p.children[idx].(type) {
	case blockRef:
		v, found := child.set.nthMember(local)
		if !found {
			return false
		}
		bs[3] = v
		return true
	case partitionRef:
		return child.selectNth(local, bs)
	}
	return false
}

func (p *partitionRef) ascend(bs [4]byte, yield func(uint32) bool) bool {
	key, ok := p.keys.first()
	idx := 0
	for ok {
		bs[p.level] = key
		var cont bool
		switch child := p.children[idx].(type) {
		case blockRef:
			cont = child.ascend(bs, yield)
		case partitionRef:
			cont = child.ascend(bs, yield)
		}
		if !cont {
			return false
		}
		idx++
		key, ok = p.keys.next(int(key) + 1)
	}
	return true
}

func (p *partitionRef) rangeAscend(lo, hi, bs [4]byte, yield func(uint32) bool) bool {
	level := p.level
	loKey, hiKey := lo[level], hi[level]

	key, ok := p.keys.next(int(loKey))
	for ok && key <= hiKey {
		idx := p.keys.rank0(key)
		bs[level] = key

		childLo, childHi := lo, hi
		if key != loKey {
			childLo = fullLowBytes
		}
		if key != hiKey {
			childHi = fullHighBytes
		}

		var cont bool
		switch child := p.children[idx].(type) {
		case blockRef:
			cont = child.rangeAscend(childLo[3], childHi[3], bs, yield)
		case partitionRef:
			cont = child.rangeAscend(childLo, childHi, bs, yield)
		}
		if !cont {
			return false
		}
		key, ok = p.keys.next(int(key) + 1)
	}
	return true
}

// SplinterRef is a zero-copy, read-only view over an encoded blob of type
// B. Parse validates and indexes the entire tree up front, so every method
// here is infallible: there is no "and this might also fail on malformed
// input" case left to handle at call time.
type SplinterRef[B Bytes] struct {
	data B
	root *partitionRef
}

// Bytes returns the backing buffer this view was parsed from.
func (r *SplinterRef[B]) Bytes() B { return r.data }

// Cardinality returns the number of members.
func (r *SplinterRef[B]) Cardinality() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.totalCard)
}

// Contains reports whether v is a member.
func (r *SplinterRef[B]) Contains(v uint32) bool {
	if r.root == nil {
		return false
	}
	return r.root.contains(decompose(v))
}

// Rank returns the number of members <= v.
func (r *SplinterRef[B]) Rank(v uint32) int {
	if r.root == nil {
		return 0
	}
	return r.root.rank(decompose(v))
}

// Select returns the i-th smallest member (0-based).
func (r *SplinterRef[B]) Select(i int) (uint32, bool) {
	if r.root == nil || i < 0 || uint32(i) >= r.root.totalCard {
		return 0, false
	}
	var bs [4]byte
	if !r.root.selectNth(i, &bs) {
		return 0, false
	}
	return recompose(bs), true
}

// All iterates every member in ascending order.
func (r *SplinterRef[B]) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if r.root == nil {
			return
		}
		r.root.ascend([4]byte{}, yield)
	}
}

// Range iterates every member in [lo, hi] in ascending order.
func (r *SplinterRef[B]) Range(lo, hi uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if r.root == nil || lo > hi {
			return
		}
		r.root.rangeAscend(decompose(lo), decompose(hi), [4]byte{}, yield)
	}
}

// owned materializes a mutable, owning copy of this view's contents.
func (r *SplinterRef[B]) owned() *Splinter {
	s := New()
	for v := range r.All() {
		s.Insert(v)
	}
	return s
}

// IntoOwned is owned, exported for callers who need a Splinter they can
// mutate once the backing buffer of this view is no longer guaranteed to
// stay alive.
func (r *SplinterRef[B]) IntoOwned() *Splinter {
	return r.owned()
}

// Equal compares two views by canonical serialized form, not by backing
// bytes, so two views built from differently-chosen storage classes over
// the same members still compare equal.
func (r *SplinterRef[B]) Equal(other *SplinterRef[B]) bool {
	return bytes.Equal(r.owned().Serialize(), other.owned().Serialize())
}

// Stats reports the storage class actually used by each node on the wire,
// tallied by re-walking the parsed tree (no separate bookkeeping is kept
// during Parse).
func (r *SplinterRef[B]) Stats() Stats {
	var st Stats
	if r.root != nil {
		tallyPartitionRef(r.root, &st)
	}
	return st
}

func tallyPartitionRef(p *partitionRef, st *Stats) {
	st.Partitions++
	tallyClass(p.keys, st)
	for _, c := range p.children {
		switch child := c.(type) {
		case blockRef:
			st.Blocks++
			tallyClass(child.set, st)
		case partitionRef:
			tallyPartitionRef(&child, st)
		}
	}
}

func tallyClass(s byteSetRef, st *Stats) {
	if s.full {
		st.Full++
		return
	}
	switch s.tag {
	case classVec:
		st.Vec++
	case classBitmap:
		st.Bitmap++
	case classRun:
		st.Run++
	case classTree:
		st.Tree++
	}
}
