// SPDX-License-Identifier: MIT

// Package splinter implements a compressed bitmap for sets of 32-bit
// unsigned integers, aimed at small-to-mid cardinality workloads where
// Roaring-style bitmaps spend more bytes than the data warrants.
//
// A value is decomposed into four bytes and routed through up to three
// levels of Partition before landing in a 256-bit Block at the leaf. Each
// node picks, independently and only at serialization time, whichever
// storage class yields the smallest encoding for its own members: Vec,
// Bitmap or Run for a Block, and additionally Tree for a Partition's
// key-set.
package splinter

import (
	"bytes"
	"iter"
)

// Stats tallies how many nodes of the encoded tree use each storage class,
// as actually chosen on the wire (not predicted ahead of serialization).
type Stats struct {
	Partitions int
	Blocks     int
	Vec        int
	Bitmap     int
	Run        int
	Tree       int
	Full       int
}

// Splinter is a mutable, owning set of uint32 values. Its internal
// representation is always a plain bitset at every level; storage-class
// selection only happens when Serialize is called.
type Splinter struct {
	root  *partition
	count int
}

// New returns an empty Splinter.
func New() *Splinter {
	return &Splinter{}
}

// FromValues returns a Splinter containing exactly the given values.
func FromValues(values ...uint32) *Splinter {
	s := New()
	for _, v := range values {
		s.Insert(v)
	}
	return s
}

// Insert adds v, reporting whether it was not already present.
func (s *Splinter) Insert(v uint32) bool {
	if s.root == nil {
		s.root = newPartition(0)
	}
	if s.root.insert(decompose(v)) {
		s.count++
		return true
	}
	return false
}

// Remove deletes v, reporting whether it was present.
func (s *Splinter) Remove(v uint32) bool {
	if s.root == nil {
		return false
	}
	if s.root.remove(decompose(v)) {
		s.count--
		if s.root.keys.IsEmpty() {
			s.root = nil
		}
		return true
	}
	return false
}

// Contains reports whether v is a member.
func (s *Splinter) Contains(v uint32) bool {
	if s.root == nil {
		return false
	}
	return s.root.contains(decompose(v))
}

// Cardinality returns the number of members.
func (s *Splinter) Cardinality() int {
	return s.count
}

// Rank returns the number of members <= v.
func (s *Splinter) Rank(v uint32) int {
	if s.root == nil {
		return 0
	}
	return s.root.rank(decompose(v))
}

// Select returns the i-th smallest member (0-based).
func (s *Splinter) Select(i int) (uint32, bool) {
	if s.root == nil || i < 0 || i >= s.count {
		return 0, false
	}
	var bs [4]byte
	if !s.root.selectNth(i, &bs) {
		return 0, false
	}
	return recompose(bs), true
}

// All iterates every member in ascending order.
func (s *Splinter) All() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if s.root == nil {
			return
		}
		s.root.ascend([4]byte{}, yield)
	}
}

// Range iterates every member in [lo, hi] in ascending order.
func (s *Splinter) Range(lo, hi uint32) iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		if s.root == nil || lo > hi {
			return
		}
		s.root.rangeAscend(decompose(lo), decompose(hi), [4]byte{}, yield)
	}
}

// Clone returns a deep copy, sharing no mutable state with s.
func (s *Splinter) Clone() *Splinter {
	c := &Splinter{count: s.count}
	if s.root != nil {
		c.root = s.root.clonePartition()
	}
	return c
}

// Optimize is a no-op: Serialize always picks the smallest legal storage
// class for every node on the fly, so there is no separate in-memory
// normalization pass to run ahead of it. It is kept as a public method so
// callers migrating from a format where optimization and serialization are
// distinct steps still have somewhere to call.
func (s *Splinter) Optimize() {}

// Serialize returns the canonical byte encoding of s.
func (s *Splinter) Serialize() []byte {
	return serialize(s.root)
}

// Equal compares two sets by canonical serialized form.
func (s *Splinter) Equal(other *Splinter) bool {
	return bytes.Equal(s.Serialize(), other.Serialize())
}

// Stats reports the storage class each node would use on the wire, found
// by round-tripping through Serialize and Parse rather than duplicating
// the class-selection logic that already lives in the codec.
func (s *Splinter) Stats() Stats {
	ref, err := Parse(s.Serialize())
	if err != nil {
		panic(&LogicError{Msg: "round-trip of a freshly serialized container failed to parse: " + err.Error()})
	}
	return ref.Stats()
}
