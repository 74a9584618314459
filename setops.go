// SPDX-License-Identifier: MIT

package splinter

import (
	"github.com/splinter-rs/splinter-go/internal/bitset"
)

type mergeKind uint8

const (
	opUnion mergeKind = iota
	opIntersect
	opDiff
)

// mergeBlocks combines two leaf blocks' bitsets according to kind.
func mergeBlocks(a, b *block, kind mergeKind) *block {
	var out block
	switch kind {
	case opUnion:
		out.bits = a.bits.Union(&b.bits)
	case opIntersect:
		out.bits = a.bits.Intersection(&b.bits)
	case opDiff:
		out.bits = a.bits.Difference(&b.bits)
	}
	return &out
}

// mergeNode combines two same-level nodes (both *block at level 3, both
// *partition otherwise). A nil node stands for an empty subtree, needed
// because union/diff walk keys present in only one side.
func mergeNode(level uint8, a, b any, kind mergeKind) any {
	if level == 3 {
		var ab, bb block
		if a != nil {
			ab = *a.(*block)
		}
		if b != nil {
			bb = *b.(*block)
		}
		out := mergeBlocks(&ab, &bb, kind)
		if out.bits.IsEmpty() {
			return nil
		}
		return out
	}

	var ap, bp *partition
	if a != nil {
		ap = a.(*partition)
	}
	if b != nil {
		bp = b.(*partition)
	}
	out := mergePartitions(level, ap, bp, kind)
	if out == nil || out.keys.IsEmpty() {
		return nil
	}
	return out
}

// mergePartitions combines two partitions at the same level. Either may be
// nil, standing for an empty subtree at that level. Candidate keys (those
// present on either relevant side) are visited in ascending order and a
// child is appended to the output only if its own merge is non-empty, so
// keys and children are built in lockstep and never need reconciling
// afterwards.
func mergePartitions(level uint8, a, b *partition, kind mergeKind) *partition {
	var candidates bitset.BitSet256
	switch {
	case a == nil && b == nil:
		return newPartition(level)
	case a == nil:
		if kind == opUnion {
			candidates = b.keys
		}
	case b == nil:
		if kind != opIntersect {
			candidates = a.keys
		}
	default:
		switch kind {
		case opUnion:
			candidates = a.keys.Union(&b.keys)
		case opIntersect:
			candidates = a.keys.Intersection(&b.keys)
		case opDiff:
			// A key present on both sides can still leave members of a
			// behind, so every key of a is a candidate.
			candidates = a.keys
		}
	}

	out := &partition{level: level}
	for _, key := range candidates.All() {
		var childA, childB any
		if a != nil && a.keys.Test(key) {
			childA = a.children.MustGet(a.keys.Rank0(key))
		}
		if b != nil && b.keys.Test(key) {
			childB = b.children.MustGet(b.keys.Rank0(key))
		}

		merged := mergeNode(level+1, childA, childB, kind)
		if merged == nil {
			continue
		}
		out.keys.MustSet(key)
		out.children.Items = append(out.children.Items, merged)
	}

	return out
}

func mergeResult(root *partition) *Splinter {
	s := &Splinter{root: root}
	if root != nil {
		s.count = root.cardinality()
		if s.count == 0 {
			s.root = nil
		}
	}
	return s
}

// Union returns a new Splinter containing every member of s or other.
func (s *Splinter) Union(other *Splinter) *Splinter {
	return mergeResult(mergePartitions(0, s.root, other.root, opUnion))
}

// Intersection returns a new Splinter containing members present in both
// s and other.
func (s *Splinter) Intersection(other *Splinter) *Splinter {
	return mergeResult(mergePartitions(0, s.root, other.root, opIntersect))
}

// Difference returns a new Splinter containing members of s that are not
// in other.
func (s *Splinter) Difference(other *Splinter) *Splinter {
	return mergeResult(mergePartitions(0, s.root, other.root, opDiff))
}
