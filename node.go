// SPDX-License-Identifier: MIT

package splinter

import (
	"github.com/splinter-rs/splinter-go/internal/bitset"
	"github.com/splinter-rs/splinter-go/internal/sparse"
)

// block is the owning, mutable representation of a level-3 leaf: a set of
// byte members held as a 256-bit bitmap. Storage-class selection (Vec,
// Bitmap, Run) only happens at serialization time; in memory every
// block is simply a bitset, the same way litenode.go keeps its prefix table
// in one canonical shape and leaves wire encoding to the codec.
type block struct {
	bits bitset.BitSet256
}

func (b *block) insert(v byte) (inserted bool) {
	if b.bits.Test(uint(v)) {
		return false
	}
	b.bits.MustSet(uint(v))
	return true
}

func (b *block) remove(v byte) (removed bool) {
	if !b.bits.Test(uint(v)) {
		return false
	}
	b.bits.MustClear(uint(v))
	return true
}

func (b *block) contains(v byte) bool {
	return b.bits.Test(uint(v))
}

func (b *block) cardinality() int {
	return b.bits.Size()
}

func (b *block) clone() *block {
	c := *b
	return &c
}

func (b *block) rank(v byte) int {
	return b.bits.Rank0(uint(v)) + 1
}

func (b *block) selectNth(i int) (byte, bool) {
	v, ok := b.bits.FirstSet()
	for n := 0; n < i && ok; n++ {
		v, ok = b.bits.NextSet(v + 1)
	}
	if !ok {
		return 0, false
	}
	return byte(v), true
}

func (b *block) ascend(bs [4]byte, yield func(uint32) bool) bool {
	v, ok := b.bits.FirstSet()
	for ok {
		bs[3] = byte(v)
		if !yield(recompose(bs)) {
			return false
		}
		v, ok = b.bits.NextSet(v + 1)
	}
	return true
}

func (b *block) rangeAscend(lo, hi byte, bs [4]byte, yield func(uint32) bool) bool {
	v, ok := b.bits.NextSet(uint(lo))
	for ok && v <= uint(hi) {
		bs[3] = byte(v)
		if !yield(recompose(bs)) {
			return false
		}
		v, ok = b.bits.NextSet(v + 1)
	}
	return true
}

// partition is the owning, mutable representation of an interior node at
// level 0, 1 or 2: an occupancy bitmap over child keys plus a rank-aligned
// array of children, the same split litenode.go uses between a BitSet256
// and a sparse.Array256 of child pointers.
//
// Children are stored as `any` and recovered with a type switch: a *block
// when level == 2 (since level 3 is always a block), a *partition
// otherwise. This mirrors the tagged-union-via-type-switch dispatch
// litenode.go uses for its own *liteNode/*liteLeafNode/*liteFringeNode
// children.
type partition struct {
	level    uint8
	keys     bitset.BitSet256
	children sparse.Array[any]
}

func newPartition(level uint8) *partition {
	return &partition{level: level}
}

func decompose(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func recompose(bs [4]byte) uint32 {
	return uint32(bs[0])<<24 | uint32(bs[1])<<16 | uint32(bs[2])<<8 | uint32(bs[3])
}

func (p *partition) insert(bs [4]byte) (inserted bool) {
	key := bs[p.level]
	if p.keys.Test(uint(key)) {
		rank := p.keys.Rank0(uint(key))
		if p.level == 2 {
			return p.children.MustGet(rank).(*block).insert(bs[3])
		}
		return p.children.MustGet(rank).(*partition).insert(bs)
	}

	p.keys.MustSet(uint(key))
	rank := p.keys.Rank0(uint(key))
	if p.level == 2 {
		child := &block{}
		child.insert(bs[3])
		p.children.InsertAt(rank, child)
	} else {
		child := newPartition(p.level + 1)
		child.insert(bs)
		p.children.InsertAt(rank, child)
	}
	return true
}

func (p *partition) remove(bs [4]byte) (removed bool) {
	key := bs[p.level]
	if !p.keys.Test(uint(key)) {
		return false
	}
	rank := p.keys.Rank0(uint(key))

	if p.level == 2 {
		child := p.children.MustGet(rank).(*block)
		removed = child.remove(bs[3])
		if removed && child.bits.IsEmpty() {
			p.children.DeleteAt(rank)
			p.keys.MustClear(uint(key))
		}
		return removed
	}

	child := p.children.MustGet(rank).(*partition)
	removed = child.remove(bs)
	if removed && child.keys.IsEmpty() {
		p.children.DeleteAt(rank)
		p.keys.MustClear(uint(key))
	}
	return removed
}

func (p *partition) contains(bs [4]byte) bool {
	key := bs[p.level]
	if !p.keys.Test(uint(key)) {
		return false
	}
	rank := p.keys.Rank0(uint(key))
	if p.level == 2 {
		return p.children.MustGet(rank).(*block).contains(bs[3])
	}
	return p.children.MustGet(rank).(*partition).contains(bs)
}

func nodeCardinality(level uint8, n any) int {
	if level == 3 {
		return n.(*block).cardinality()
	}
	return n.(*partition).cardinality()
}

// cardinality recomputes the total subtree cardinality by walking every
// child. The owning container caches its own top-level count separately;
// this is used by rank and selectNth (through nodeCardinality), by set
// operations and by Dump.
func (p *partition) cardinality() int {
	total := 0
	for i := 0; i < p.children.Len(); i++ {
		total += nodeCardinality(p.level+1, p.children.Items[i])
	}
	return total
}

func (p *partition) rank(bs [4]byte) int {
	key := bs[p.level]
	cnt := p.keys.Rank0(uint(key)) + 1
	contains := p.keys.Test(uint(key))

	before := cnt
	if contains {
		before = cnt - 1
	}

	sum := 0
	for i := 0; i < before; i++ {
		sum += nodeCardinality(p.level+1, p.children.Items[i])
	}
	if !contains {
		return sum
	}

	child := p.children.Items[before]
	if p.level == 2 {
		return sum + child.(*block).rank(bs[3])
	}
	return sum + child.(*partition).rank(bs)
}

func (p *partition) selectNth(i int, bs *[4]byte) bool {
	key, ok := p.keys.FirstSet()
	idx := 0
	for ok {
		childCard := nodeCardinality(p.level+1, p.children.Items[idx])
		if i < childCard {
			bs[p.level] = byte(key)
			if p.level == 2 {
				v, found := p.children.Items[idx].(*block).selectNth(i)
				if !found {
					return false
				}
				bs[3] = v
				return true
			}
			return p.children.Items[idx].(*partition).selectNth(i, bs)
		}
		i -= childCard
		idx++
		key, ok = p.keys.NextSet(key + 1)
	}
	return false
}

func (p *partition) ascend(bs [4]byte, yield func(uint32) bool) bool {
	key, ok := p.keys.FirstSet()
	idx := 0
	for ok {
		bs[p.level] = byte(key)
		var cont bool
		if p.level == 2 {
			cont = p.children.Items[idx].(*block).ascend(bs, yield)
		} else {
			cont = p.children.Items[idx].(*partition).ascend(bs, yield)
		}
		if !cont {
			return false
		}
		idx++
		key, ok = p.keys.NextSet(key + 1)
	}
	return true
}

var fullLowBytes = [4]byte{0, 0, 0, 0}
var fullHighBytes = [4]byte{255, 255, 255, 255}

func (p *partition) rangeAscend(lo, hi, bs [4]byte, yield func(uint32) bool) bool {
	level := p.level
	loKey, hiKey := lo[level], hi[level]

	key, ok := p.keys.NextSet(uint(loKey))
	for ok && key <= uint(hiKey) {
		rank := p.keys.Rank0(key)
		bs[level] = byte(key)

		childLo, childHi := lo, hi
		if byte(key) != loKey {
			childLo = fullLowBytes
		}
		if byte(key) != hiKey {
			childHi = fullHighBytes
		}

		var cont bool
		if level == 2 {
			cont = p.children.MustGet(rank).(*block).rangeAscend(childLo[3], childHi[3], bs, yield)
		} else {
			cont = p.children.MustGet(rank).(*partition).rangeAscend(childLo, childHi, bs, yield)
		}
		if !cont {
			return false
		}

		key, ok = p.keys.NextSet(key + 1)
	}
	return true
}

func cloneNode(level uint8, n any) any {
	if level == 3 {
		return n.(*block).clone()
	}
	return n.(*partition).clonePartition()
}

func (p *partition) clonePartition() *partition {
	c := &partition{level: p.level, keys: p.keys}
	c.children.Items = make([]any, p.children.Len())
	for i, child := range p.children.Items {
		c.children.Items[i] = cloneNode(p.level+1, child)
	}
	return c
}
