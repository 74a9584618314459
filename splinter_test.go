// SPDX-License-Identifier: MIT

package splinter

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptySet(t *testing.T) {
	t.Parallel()
	s := New()
	require.Equal(t, 0, s.Cardinality())
	require.False(t, s.Contains(0))
	require.False(t, s.Contains(math.MaxUint32))
	_, ok := s.Select(0)
	require.False(t, ok)

	data := s.Serialize()
	ref, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 0, ref.Cardinality())
}

func TestSingletonBoundaries(t *testing.T) {
	t.Parallel()
	for _, v := range []uint32{0, 1, math.MaxUint32, math.MaxUint32 - 1} {
		s := New()
		require.True(t, s.Insert(v))
		require.False(t, s.Insert(v))
		require.True(t, s.Contains(v))
		require.Equal(t, 1, s.Cardinality())

		ref, err := ParseStrict(s.Serialize())
		require.NoError(t, err)
		require.True(t, ref.Contains(v))
		require.Equal(t, 1, ref.Cardinality())
		got, ok := ref.Select(0)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func TestZeroAndMaxTogether(t *testing.T) {
	t.Parallel()
	s := FromValues(0, math.MaxUint32)
	require.Equal(t, 2, s.Cardinality())
	require.True(t, s.Contains(0))
	require.True(t, s.Contains(math.MaxUint32))
	require.False(t, s.Contains(1))

	ref, err := ParseStrict(s.Serialize())
	require.NoError(t, err)
	require.Equal(t, 2, ref.Cardinality())
	var got []uint32
	for v := range ref.All() {
		got = append(got, v)
	}
	require.Equal(t, []uint32{0, math.MaxUint32}, got)
}

func TestInsertRemoveRoundtrip(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(1, 2))
	s := New()
	values := make(map[uint32]bool)
	for i := 0; i < 5000; i++ {
		v := prng.Uint32() % 200_000
		if s.Insert(v) {
			values[v] = true
		}
	}

	require.Equal(t, len(values), s.Cardinality())
	for v := range values {
		require.True(t, s.Contains(v))
	}

	var sorted []uint32
	for v := range values {
		sorted = append(sorted, v)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i, v := range sorted {
		got, ok := s.Select(i)
		require.True(t, ok)
		require.Equal(t, v, got)
		require.Equal(t, i+1, s.Rank(v))
	}

	for i := 0; i < 1000; i++ {
		j := prng.IntN(len(sorted))
		v := sorted[j]
		sorted = append(sorted[:j], sorted[j+1:]...)
		require.True(t, s.Remove(v))
		require.False(t, s.Contains(v))
	}
}

func TestDenseBlockPromotesToFull(t *testing.T) {
	t.Parallel()
	s := New()
	for i := 0; i < 256; i++ {
		s.Insert(uint32(i))
	}
	require.Equal(t, 256, s.Cardinality())

	data := s.Serialize()
	ref, err := ParseStrict(data)
	require.NoError(t, err)
	require.Equal(t, 256, ref.Cardinality())
	for i := 0; i < 256; i++ {
		require.True(t, ref.Contains(uint32(i)))
	}

	stats := ref.Stats()
	require.Equal(t, 1, stats.Full)
}

func TestStorageClassChoices(t *testing.T) {
	t.Parallel()

	t.Run("sparse favors vec or run", func(t *testing.T) {
		s := FromValues(1, 2, 3, 100, 200)
		stats := s.Stats()
		require.True(t, stats.Run > 0 || stats.Vec > 0)
	})

	t.Run("dense favors bitmap", func(t *testing.T) {
		s := New()
		for i := 0; i < 256; i += 2 {
			s.Insert(uint32(i))
		}
		stats := s.Stats()
		require.True(t, stats.Bitmap > 0)
	})

	t.Run("contiguous favors run", func(t *testing.T) {
		s := New()
		for i := 0; i < 200; i++ {
			s.Insert(uint32(i))
		}
		stats := s.Stats()
		require.Equal(t, 1, stats.Run)
	})

	t.Run("3-per-group nibble spread favors tree", func(t *testing.T) {
		// 24 keys, 3 non-adjacent per nibble group across 8 groups: tree
		// payload is 2+2*8=18 bytes, beating vec (24), bitmap (32) and
		// run (50, since every member starts its own 1-byte run).
		s := New()
		for g := uint32(0); g < 8; g++ {
			base := g << 28
			s.Insert(base)
			s.Insert(base | (2 << 24))
			s.Insert(base | (4 << 24))
		}
		require.Equal(t, 24, s.Cardinality())

		stats := s.Stats()
		require.Equal(t, 1, stats.Tree)
	})
}

// TestTreeClassRoundTrips forces the root partition's key-set to choose the
// Tree storage class and checks that both Parse (framing only) and
// ParseStrict (which additionally walks every Tree sub-bitmap to confirm
// it is non-empty) round-trip it correctly.
func TestTreeClassRoundTrips(t *testing.T) {
	t.Parallel()

	var values []uint32
	for g := uint32(0); g < 8; g++ {
		base := g << 28
		values = append(values, base, base|(2<<24), base|(4<<24))
	}

	s := FromValues(values...)
	require.Equal(t, 24, s.Cardinality())
	require.Equal(t, 1, s.Stats().Tree)

	data := s.Serialize()

	ref, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 24, ref.Cardinality())
	for _, v := range values {
		require.True(t, ref.Contains(v))
	}
	require.Equal(t, 1, ref.Stats().Tree)

	strict, err := ParseStrict(data)
	require.NoError(t, err)
	require.Equal(t, 24, strict.Cardinality())
	for _, v := range values {
		require.True(t, strict.Contains(v))
	}

	var got []uint32
	for v := range strict.All() {
		got = append(got, v)
	}
	require.ElementsMatch(t, values, got)
}

func TestCanonicalEquality(t *testing.T) {
	t.Parallel()
	a := FromValues(5, 10, 15, 100_000)
	b := New()
	for _, v := range []uint32{100_000, 15, 10, 5} {
		b.Insert(v)
	}
	require.True(t, a.Equal(b))
	require.Equal(t, a.Serialize(), b.Serialize())
}

func TestRangeIteration(t *testing.T) {
	t.Parallel()
	s := New()
	for i := 0; i < 1000; i++ {
		s.Insert(uint32(i * 7))
	}

	var got []uint32
	for v := range s.Range(100, 500) {
		got = append(got, v)
	}
	for _, v := range got {
		require.True(t, v >= 100 && v <= 500)
	}
	require.True(t, len(got) > 0)

	ref, err := ParseStrict(s.Serialize())
	require.NoError(t, err)
	var gotRef []uint32
	for v := range ref.Range(100, 500) {
		gotRef = append(gotRef, v)
	}
	require.Equal(t, got, gotRef)
}

func TestRangeAcrossPartitionBoundaries(t *testing.T) {
	t.Parallel()
	s := FromValues(0, 1<<8, 1<<16, 1<<24, math.MaxUint32)
	var got []uint32
	for v := range s.Range(1, 1<<24) {
		got = append(got, v)
	}
	require.Equal(t, []uint32{1 << 8, 1 << 16, 1 << 24}, got)
}

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()
	a := FromValues(1, 2, 3)
	b := a.Clone()
	b.Insert(4)
	require.False(t, a.Contains(4))
	require.True(t, b.Contains(4))
	require.Equal(t, 3, a.Cardinality())
	require.Equal(t, 4, b.Cardinality())
}

func TestParseRejectsCorruption(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 3, 70_000, 1<<20)
	data := s.Serialize()

	t.Run("bad head magic", func(t *testing.T) {
		corrupt := append([]byte{}, data...)
		corrupt[0] = 'X'
		_, err := Parse(corrupt)
		require.Error(t, err)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		require.Equal(t, ErrBadMagic, pe.Code)
	})

	t.Run("bad tail magic", func(t *testing.T) {
		corrupt := append([]byte{}, data...)
		corrupt[len(corrupt)-1] = 'X'
		_, err := Parse(corrupt)
		require.Error(t, err)
	})

	t.Run("truncated", func(t *testing.T) {
		corrupt := data[:len(data)-4]
		_, err := Parse(corrupt)
		require.Error(t, err)
	})

	t.Run("too short to hold a header", func(t *testing.T) {
		_, err := Parse([]byte{0x53, 0x70})
		require.Error(t, err)
	})
}

func TestStatsClassTotalsMatchNodeCount(t *testing.T) {
	t.Parallel()
	prng := rand.New(rand.NewPCG(7, 11))
	s := New()
	for i := 0; i < 20_000; i++ {
		s.Insert(prng.Uint32())
	}

	stats := s.Stats()
	total := stats.Vec + stats.Bitmap + stats.Run + stats.Tree + stats.Full
	require.Equal(t, stats.Blocks+stats.Partitions, total)
}
