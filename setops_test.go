// SPDX-License-Identifier: MIT

package splinter

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnionIntersectionDifference(t *testing.T) {
	t.Parallel()
	a := FromValues(1, 2, 3, 100, 1_000_000)
	b := FromValues(2, 3, 4, 100, 2_000_000)

	union := a.Union(b)
	for _, v := range []uint32{1, 2, 3, 4, 100, 1_000_000, 2_000_000} {
		require.True(t, union.Contains(v))
	}
	require.Equal(t, 7, union.Cardinality())

	inter := a.Intersection(b)
	require.Equal(t, 3, inter.Cardinality())
	for _, v := range []uint32{2, 3, 100} {
		require.True(t, inter.Contains(v))
	}
	require.False(t, inter.Contains(1))
	require.False(t, inter.Contains(4))

	diff := a.Difference(b)
	require.Equal(t, 2, diff.Cardinality())
	require.True(t, diff.Contains(1))
	require.True(t, diff.Contains(1_000_000))
	require.False(t, diff.Contains(2))
}

func TestUnionWithEmpty(t *testing.T) {
	t.Parallel()
	a := FromValues(1, 2, 3)
	empty := New()

	require.True(t, a.Equal(a.Union(empty)))
	require.Equal(t, 0, a.Intersection(empty).Cardinality())
	require.True(t, a.Equal(a.Difference(empty)))
	require.Equal(t, 0, empty.Difference(a).Cardinality())
}

func TestSetOpsAgainstReferenceModel(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(3, 5))

	genSet := func(n int) (*Splinter, map[uint32]bool) {
		s := New()
		model := make(map[uint32]bool)
		for i := 0; i < n; i++ {
			v := prng.Uint32() % 50_000
			s.Insert(v)
			model[v] = true
		}
		return s, model
	}

	a, ma := genSet(2000)
	b, mb := genSet(2000)

	union := a.Union(b)
	for v := range ma {
		require.True(t, union.Contains(v))
	}
	for v := range mb {
		require.True(t, union.Contains(v))
	}

	inter := a.Intersection(b)
	for v := range ma {
		want := mb[v]
		require.Equal(t, want, inter.Contains(v), "value %d", v)
	}

	diff := a.Difference(b)
	for v := range ma {
		require.Equal(t, !mb[v], diff.Contains(v), "value %d", v)
	}
	for v := range mb {
		if !ma[v] {
			require.False(t, diff.Contains(v))
		}
	}
}

func TestUnionIsCanonicalAfterMerge(t *testing.T) {
	t.Parallel()
	a := New()
	for i := 0; i < 256; i++ {
		a.Insert(uint32(i))
	}
	b := FromValues(1000)

	union := a.Union(b)
	roundTrip, err := ParseStrict(union.Serialize())
	require.NoError(t, err)
	require.Equal(t, union.Cardinality(), roundTrip.Cardinality())
	require.Equal(t, 1, roundTrip.Stats().Full)
}
