// SPDX-License-Identifier: MIT

package splinter

import "encoding/binary"

// Wire format, post-order:
//
//	[magic:2][flags:1][reserved:1]
//	<node entries, children before parents>
//	[trailer: total_cardinality:u32][root_size:u32][magic2:2]
//
// Every node entry is `[tag:u8][card...][payload]`.
//
// A Block entry: card is a single byte, 1-based (stored = cardinality-1).
// payload is omitted entirely when cardinality == 256 (the implicit Full
// state), regardless of the tag written.
//
// A Partition entry: card is a u32, the TOTAL cardinality of the subtree
// rooted here (not the number of children). tag's low 2 bits name the
// storage class of the partition's own key-set (which children are
// present); bits 2-3 select the width used for child_offsets (0=u8,
// 1=u16, 2=u32). Payload is:
//
//	key_block:     [key_tag:u8][key_card-1:u8][key_payload]   (Block framing)
//	child_cards:   n * u32, cumulative cardinality through child i, 1-based
//	child_offsets: n * (u8|u16|u32), absolute offsets backward into the
//	               blob to each child's own entry, in ascending key order
//
// child_offsets point at independently-written entries earlier in the
// post-order stream; a partition's payload never embeds its children's
// bytes, only references to them, which is what lets a reader skip
// whole subtrees during rank/select/range without touching their payload.

var magicHead = [2]byte{'S', 'p'}
var magicTail = [2]byte{'l', 'r'}

type encodeBuf struct {
	buf []byte
}

func chooseOffsetWidth(offsets []uint32) (width int, sel byte) {
	var max uint32
	for _, o := range offsets {
		if o > max {
			max = o
		}
	}
	switch {
	case max < 1<<8:
		return 1, 0
	case max < 1<<16:
		return 2, 1
	default:
		return 4, 2
	}
}

func appendOffset(buf []byte, v uint32, width int) []byte {
	switch width {
	case 1:
		return append(buf, byte(v))
	case 2:
		var b [2]byte
		binary.BigEndian.PutUint16(b[:], uint16(v))
		return append(buf, b[:]...)
	default:
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], v)
		return append(buf, b[:]...)
	}
}

func readOffset(data []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(data[0])
	case 2:
		return uint32(binary.BigEndian.Uint16(data))
	default:
		return binary.BigEndian.Uint32(data)
	}
}

// encodeBlock appends b's entry to e.buf and returns its start offset,
// entry size, and cardinality.
func encodeBlock(e *encodeBuf, b *block) (offset, size, card uint32) {
	members := b.bits.All()
	card = uint32(len(members))
	offset = uint32(len(e.buf))

	if card == 256 {
		e.buf = append(e.buf, encodeTag(classRun, 0), 0xFF)
		size = uint32(len(e.buf)) - offset
		return
	}

	payload, tag := bestBlockPayload(&b.bits, members)
	e.buf = append(e.buf, encodeTag(tag, 0), byte(card-1))
	e.buf = append(e.buf, payload...)
	size = uint32(len(e.buf)) - offset
	return
}

// encodePartition appends p's entire subtree (children first, then p's own
// entry) to e.buf, and returns p's own start offset, entry size, and total
// subtree cardinality.
func encodePartition(e *encodeBuf, p *partition) (offset, size, totalCard uint32) {
	n := p.children.Len()
	if n == 0 {
		panic(&LogicError{Msg: "empty partition encoded"})
	}

	childOffsets := make([]uint32, n)
	cumCard := make([]uint32, n)
	var sum uint32
	for i := 0; i < n; i++ {
		var off, card uint32
		if p.level == 2 {
			off, _, card = encodeBlock(e, p.children.Items[i].(*block))
		} else {
			off, _, card = encodePartition(e, p.children.Items[i].(*partition))
		}
		childOffsets[i] = off
		sum += card
		cumCard[i] = sum
	}
	totalCard = sum

	var keyPayload []byte
	var keyTag classTag
	var keyCardByte byte
	if n == 256 {
		// Mirrors encodeBlock's Full sentinel: when every one of the 256
		// possible keys is present, the card byte is 0xFF and the payload
		// is omitted regardless of which class would otherwise have won.
		keyTag = classRun
		keyCardByte = 0xFF
	} else {
		members := p.keys.All()
		keyPayload, keyTag = bestKeyPayload(&p.keys, members)
		keyCardByte = byte(n - 1)
	}
	offWidth, widthSel := chooseOffsetWidth(childOffsets)

	offset = uint32(len(e.buf))
	e.buf = append(e.buf, encodeTag(keyTag, widthSel))

	var cardBuf [4]byte
	binary.BigEndian.PutUint32(cardBuf[:], totalCard)
	e.buf = append(e.buf, cardBuf[:]...)

	e.buf = append(e.buf, byte(keyTag), keyCardByte)
	e.buf = append(e.buf, keyPayload...)

	for i := 0; i < n; i++ {
		var b [4]byte
		binary.BigEndian.PutUint32(b[:], cumCard[i]-1)
		e.buf = append(e.buf, b[:]...)
	}
	for i := 0; i < n; i++ {
		e.buf = appendOffset(e.buf, childOffsets[i], offWidth)
	}

	size = uint32(len(e.buf)) - offset
	return
}

// serialize produces the canonical byte-for-byte encoding of the tree
// rooted at root (nil meaning the empty set). Canonicalization happens
// inline: encodeBlock/encodePartition always pick the smallest legal class
// for each node, so there is no separate "optimize the tree, then encode"
// pass to run.
func serialize(root *partition) []byte {
	e := &encodeBuf{}
	e.buf = append(e.buf, magicHead[0], magicHead[1], 0x00, 0x00)

	var totalCard, rootSize uint32
	if root != nil {
		_, rootSize, totalCard = encodePartition(e, root)
	}

	var trailer [10]byte
	binary.BigEndian.PutUint32(trailer[0:4], totalCard)
	binary.BigEndian.PutUint32(trailer[4:8], rootSize)
	trailer[8], trailer[9] = magicTail[0], magicTail[1]
	e.buf = append(e.buf, trailer[:]...)

	return e.buf
}
