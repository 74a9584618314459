// SPDX-License-Identifier: MIT

package bitset

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroValue(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("a zero value bitset must not panic: %v", r)
		}
	}()

	var b BitSet256
	b.MustSet(0)

	b = BitSet256{}
	b.MustClear(100)

	b = BitSet256{}
	b.Size()

	b = BitSet256{}
	b.Rank0(100)

	b = BitSet256{}
	b.Test(42)

	b = BitSet256{}
	b.NextSet(0)

	b = BitSet256{}
	b.AsSlice(nil)

	b = BitSet256{}
	b.All()

	c := BitSet256{}
	_ = b.Union(&c)
	_ = b.Intersection(&c)
	_ = b.Difference(&c)
	_ = b.IntersectsAny(&c)
	_, _ = b.IntersectionTop(&c)
}

func TestSetOutOfBoundsPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() {
		var b BitSet256
		b.MustSet(256)
	})
}

func TestClearOutOfBoundsPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() {
		var b BitSet256
		b.MustClear(256)
	})
}

func TestTest(t *testing.T) {
	t.Parallel()
	var b BitSet256
	b.MustSet(100)
	require.True(t, b.Test(100))
	require.False(t, b.Test(99))
}

func TestFirstSet(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name    string
		set     []uint
		wantIdx uint
		wantOk  bool
	}{
		{"empty", nil, 0, false},
		{"zero", []uint{0}, 0, true},
		{"1,5", []uint{1, 5}, 1, true},
		{"second word", []uint{70, 255}, 70, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var b BitSet256
			for _, v := range tc.set {
				b.MustSet(v)
			}
			idx, ok := b.FirstSet()
			require.Equal(t, tc.wantOk, ok)
			require.Equal(t, tc.wantIdx, idx)
		})
	}
}

func TestNextSet(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		name    string
		set     []uint
		del     []uint
		start   uint
		wantIdx uint
		wantOk  bool
	}{
		{"empty", nil, nil, 0, 0, false},
		{"zero", []uint{0}, nil, 0, 0, true},
		{"skip ahead", []uint{1, 5}, nil, 2, 5, true},
		{"past the end", []uint{1, 5}, nil, 6, 0, false},
		{"cleared member is skipped", []uint{1, 5, 7}, []uint{5}, 2, 7, true},
		{"crosses a word boundary", []uint{1, 70, 255}, nil, 2, 70, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var b BitSet256
			for _, v := range tc.set {
				b.MustSet(v)
			}
			for _, v := range tc.del {
				b.MustClear(v)
			}
			idx, ok := b.NextSet(tc.start)
			require.Equal(t, tc.wantOk, ok)
			require.Equal(t, tc.wantIdx, idx)
		})
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()
	var b BitSet256
	require.True(t, b.IsEmpty())

	b.MustSet(130)
	require.False(t, b.IsEmpty())

	b.MustClear(130)
	require.True(t, b.IsEmpty())
}

func TestAllAndAsSlice(t *testing.T) {
	t.Parallel()
	members := []uint{1, 65, 130, 190, 250}

	var b BitSet256
	for _, v := range members {
		b.MustSet(v)
	}

	require.True(t, slices.Equal(members, b.All()))

	buf := make([]uint, 0, 256)
	require.True(t, slices.Equal(members, b.AsSlice(buf)))
}

func TestSize(t *testing.T) {
	t.Parallel()
	var b BitSet256
	for i := uint(0); i < 255; i++ {
		require.Equal(t, int(i), b.Size())
		b.MustSet(i)
	}
	require.Equal(t, 255, b.Size())
}

func TestUnionIntersectionDifference(t *testing.T) {
	t.Parallel()
	var a, b BitSet256
	for i := uint(1); i < 100; i += 2 {
		a.MustSet(i)
		b.MustSet(i - 1)
	}
	for i := uint(100); i < 200; i++ {
		b.MustSet(i)
	}

	u := a.Union(&b)
	require.Equal(t, 200, u.Size())

	var c, d BitSet256
	for i := uint(1); i < 100; i += 2 {
		c.MustSet(i)
		d.MustSet(i - 1)
		d.MustSet(i)
	}
	inter := c.Intersection(&d)
	require.Equal(t, 50, inter.Size())
	require.Equal(t, inter.Size(), c.IntersectionCardinality(&d))

	diff := d.Difference(&c)
	require.Equal(t, d.Size()-inter.Size(), diff.Size())
}

func TestIntersectsAny(t *testing.T) {
	t.Parallel()
	var a, b BitSet256
	for i := uint(1); i < 100; i++ {
		a.MustSet(i)
	}
	for i := uint(100); i < 200; i++ {
		b.MustSet(i)
	}
	require.False(t, a.IntersectsAny(&b))

	b = a
	require.True(t, a.IntersectsAny(&b))
}

func TestIntersectionTop(t *testing.T) {
	t.Parallel()
	var a, b BitSet256
	for i := uint(1); i < 100; i += 2 {
		a.MustSet(i)
		b.MustSet(i - 1)
		b.MustSet(i)
	}
	for i := uint(100); i < 200; i++ {
		b.MustSet(i)
	}

	top, ok := a.IntersectionTop(&b)
	require.True(t, ok)
	require.Equal(t, uint(99), top)
}

func TestRank0(t *testing.T) {
	t.Parallel()
	var b BitSet256
	for _, v := range []uint{0, 3, 5, 7, 11, 62, 63, 64, 70, 150, 255} {
		b.MustSet(v)
	}

	for _, tc := range []struct {
		idx  uint
		want int
	}{
		{0, 0},
		{1, 0},
		{2, 0},
		{3, 1},
		{4, 1},
		{62, 5},
		{63, 6},
		{64, 7},
		{150, 9},
		{254, 9},
		{255, 10},
	} {
		require.Equal(t, tc.want, b.Rank0(tc.idx), "Rank0(%d)", tc.idx)
	}
}
