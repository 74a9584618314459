// SPDX-License-Identifier: MIT

package splinter

import (
	"bytes"
	"encoding/binary"
	"math/bits"
)

// parseByteSetPayload interprets the next bytes of data as a byte-set
// payload of the given class and declared member count n, and returns how
// many bytes it consumed. n == 256 always means Full, with no payload,
// regardless of tag.
func parseByteSetPayload(tag classTag, n int, data []byte) (byteSetRef, int, error) {
	if n == 256 {
		return byteSetRef{tag: tag, full: true, card: 256}, 0, nil
	}

	switch tag {
	case classVec:
		if len(data) < n {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		return byteSetRef{tag: tag, card: n, data: data[:n]}, n, nil

	case classBitmap:
		if len(data) < 32 {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		return byteSetRef{tag: tag, card: n, data: data[:32]}, 32, nil

	case classRun:
		if len(data) < 2 {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		numRuns := int(binary.BigEndian.Uint16(data))
		need := 2 + numRuns*2
		if len(data) < need {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		return byteSetRef{tag: tag, card: n, data: data[:need]}, need, nil

	case classTree:
		if len(data) < 2 {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		groupMask := binary.BigEndian.Uint16(data)
		numGroups := bits.OnesCount16(groupMask)
		need := 2 + numGroups*2
		if len(data) < need {
			return byteSetRef{}, 0, errTruncatedPayload
		}
		return byteSetRef{tag: tag, card: n, data: data[:need]}, need, nil

	default:
		return byteSetRef{}, 0, &ParseError{Code: ErrInvalidClassTag}
	}
}

func parseBlockAt(blob []byte, offset uint32) (blockRef, uint32, error) {
	if int(offset)+2 > len(blob) {
		return blockRef{}, 0, &ParseError{Code: ErrTruncated, Offset: offset}
	}
	tag := blob[offset]
	class := classTag(tag & 0x3)
	if class == classTree {
		return blockRef{}, 0, &ParseError{Code: ErrInvalidClassTag, Offset: offset}
	}

	n := int(blob[offset+1]) + 1
	payloadStart := int(offset) + 2

	set, consumed, err := parseByteSetPayload(class, n, blob[payloadStart:])
	if err != nil {
		return blockRef{}, 0, wrapOffset(err, uint32(payloadStart))
	}
	return blockRef{set: set}, uint32(2 + consumed), nil
}

func parsePartitionAt(blob []byte, level uint8, offset uint32) (partitionRef, uint32, error) {
	if int(offset) >= len(blob) {
		return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: offset}
	}

	tag := blob[offset]
	outerClass := classTag(tag & 0x3)
	widthSel := (tag >> 2) & 0x3

	pos := int(offset) + 1
	if pos+4 > len(blob) {
		return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: offset}
	}
	totalCard := binary.BigEndian.Uint32(blob[pos : pos+4])
	pos += 4

	if pos+2 > len(blob) {
		return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: uint32(pos)}
	}
	keyTag := classTag(blob[pos])
	if keyTag != outerClass {
		return partitionRef{}, 0, &ParseError{Code: ErrInvalidClassTag, Offset: offset}
	}
	n := int(blob[pos+1]) + 1
	pos += 2

	keySet, consumed, err := parseByteSetPayload(keyTag, n, blob[pos:])
	if err != nil {
		return partitionRef{}, 0, wrapOffset(err, uint32(pos))
	}
	pos += consumed

	cardsBytes := n * 4
	if pos+cardsBytes > len(blob) {
		return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: uint32(pos)}
	}
	cumCard := make([]uint32, n)
	for i := 0; i < n; i++ {
		cumCard[i] = binary.BigEndian.Uint32(blob[pos+i*4:]) + 1
	}
	pos += cardsBytes

	var offWidth int
	switch widthSel {
	case 0:
		offWidth = 1
	case 1:
		offWidth = 2
	case 2:
		offWidth = 4
	default:
		return partitionRef{}, 0, &ParseError{Code: ErrUnalignedOffset, Offset: offset}
	}

	offsBytes := n * offWidth
	if pos+offsBytes > len(blob) {
		return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: uint32(pos)}
	}

	childLevel := level + 1
	children := make([]any, n)
	for i := 0; i < n; i++ {
		childOff := readOffset(blob[pos+i*offWidth:], offWidth)
		if childOff >= offset {
			return partitionRef{}, 0, &ParseError{Code: ErrTruncated, Offset: uint32(pos + i*offWidth)}
		}
		if childLevel == 3 {
			blk, _, err := parseBlockAt(blob, childOff)
			if err != nil {
				return partitionRef{}, 0, err
			}
			children[i] = blk
		} else {
			child, _, err := parsePartitionAt(blob, childLevel, childOff)
			if err != nil {
				return partitionRef{}, 0, err
			}
			children[i] = child
		}
	}
	pos += offsBytes

	size := uint32(pos) - offset
	return partitionRef{
		level:     level,
		totalCard: totalCard,
		keys:      keySet,
		cumCard:   cumCard,
		children:  children,
	}, size, nil
}

// Parse validates the header, trailer and every node's framing (tags,
// lengths, offsets) eagerly, so that every read operation on the returned
// SplinterRef afterwards is infallible, per the library's error-handling
// contract. It does not verify deeper semantic invariants (member sort
// order, run well-formedness, exact cardinality accounting) — use
// ParseStrict for that.
func Parse[B Bytes](data B) (*SplinterRef[B], error) {
	raw := []byte(data)
	if len(raw) < 14 {
		return nil, &ParseError{Code: ErrTruncated, Offset: 0}
	}
	if !bytes.Equal(raw[0:2], magicHead[:]) {
		return nil, &ParseError{Code: ErrBadMagic, Offset: 0}
	}

	trailer := raw[len(raw)-10:]
	if !bytes.Equal(trailer[8:10], magicTail[:]) {
		return nil, &ParseError{Code: ErrBadMagic, Offset: uint32(len(raw) - 2)}
	}

	totalCard := binary.BigEndian.Uint32(trailer[0:4])
	rootSize := binary.BigEndian.Uint32(trailer[4:8])

	ref := &SplinterRef[B]{data: data}
	if totalCard == 0 {
		return ref, nil
	}

	bodyEnd := len(raw) - 10
	rootStart := bodyEnd - int(rootSize)
	if rootSize == 0 || rootStart < 4 || rootStart >= bodyEnd {
		return nil, &ParseError{Code: ErrTruncated, Offset: uint32(bodyEnd)}
	}

	root, size, err := parsePartitionAt(raw, 0, uint32(rootStart))
	if err != nil {
		return nil, err
	}
	if int(size) != bodyEnd-rootStart {
		return nil, &ParseError{Code: ErrInvalidCardinality, Offset: uint32(rootStart)}
	}
	if root.totalCard != totalCard {
		return nil, &ParseError{Code: ErrInvalidCardinality, Offset: uint32(rootStart)}
	}

	ref.root = &root
	return ref, nil
}

// ParseStrict runs Parse, then walks the whole tree checking the
// invariants Parse leaves unverified: Vec payloads sorted and unique, Run
// payloads sorted/non-overlapping/maximally-merged, Tree sub-bitmaps
// non-empty, and every node's declared cardinality matching its actual
// member count. Intended for untrusted-input callers; Parse remains the
// fast, bounds-checked-only default.
func ParseStrict[B Bytes](data B) (*SplinterRef[B], error) {
	ref, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if ref.root != nil {
		if err := validatePartition(ref.root); err != nil {
			return nil, err
		}
	}
	return ref, nil
}

func validateByteSet(s byteSetRef) error {
	if s.full {
		return nil
	}
	if s.card <= 0 || s.card > 255 {
		return &ParseError{Code: ErrInvalidCardinality}
	}

	members := s.all()
	if len(members) != s.card {
		return &ParseError{Code: ErrInvalidCardinality}
	}
	for i := 1; i < len(members); i++ {
		if members[i] <= members[i-1] {
			return &ParseError{Code: ErrInvalidCardinality}
		}
	}

	if s.tag == classRun {
		pairs := s.data[2:]
		for i := 0; i+2 <= len(pairs); i += 2 {
			if pairs[i] > pairs[i+1] {
				return &ParseError{Code: ErrInvalidCardinality}
			}
			if i+4 <= len(pairs) && int(pairs[i+2]) <= int(pairs[i+1])+1 {
				return &ParseError{Code: ErrInvalidCardinality}
			}
		}
	}

	if s.tag == classTree {
		groupMask := treeGroupMask(s.data)
		rank := 0
		for g := 0; g < 16; g++ {
			if groupMask&(1<<uint(g)) != 0 {
				if treeSubBitmap(s.data, rank) == 0 {
					return &ParseError{Code: ErrInvalidCardinality}
				}
				rank++
			}
		}
	}

	return nil
}

func validatePartition(p *partitionRef) error {
	if err := validateByteSet(p.keys); err != nil {
		return err
	}
	if len(p.children) == 0 {
		return &ParseError{Code: ErrInvalidCardinality}
	}
	keyCount := p.keys.card
	if p.keys.full {
		keyCount = 256
	}
	if keyCount != len(p.children) {
		return &ParseError{Code: ErrInvalidCardinality}
	}

	var sum uint32
	for i, c := range p.children {
		switch child := c.(type) {
		case blockRef:
			if err := validateByteSet(child.set); err != nil {
				return err
			}
			card := uint32(child.set.card)
			sum += card
			if p.cumCard[i] != sum {
				return &ParseError{Code: ErrInvalidCardinality}
			}
		case partitionRef:
			if err := validatePartition(&child); err != nil {
				return err
			}
			sum += child.totalCard
			if p.cumCard[i] != sum {
				return &ParseError{Code: ErrInvalidCardinality}
			}
		}
	}
	if sum != p.totalCard {
		return &ParseError{Code: ErrInvalidCardinality}
	}
	return nil
}
