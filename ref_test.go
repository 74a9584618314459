// SPDX-License-Identifier: MIT

package splinter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type namedBytes []byte

func TestParseGenericOverNamedByteSlice(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 3, 99999)
	data := namedBytes(s.Serialize())

	ref, err := Parse(data)
	require.NoError(t, err)
	require.Equal(t, 4, ref.Cardinality())
	require.Equal(t, []byte(data), []byte(ref.Bytes()))
}

func TestIntoOwnedIsIndependentOfBackingBuffer(t *testing.T) {
	t.Parallel()
	s := FromValues(5, 6, 7)
	data := s.Serialize()

	ref, err := Parse(data)
	require.NoError(t, err)
	owned := ref.IntoOwned()

	for i := range data {
		data[i] = 0
	}

	require.True(t, owned.Contains(5))
	require.True(t, owned.Contains(6))
	require.True(t, owned.Contains(7))
	require.Equal(t, 3, owned.Cardinality())
}

func TestRefEqualComparesMemberSets(t *testing.T) {
	t.Parallel()
	sparse := FromValues(1, 500, 100000)
	dense := New()
	for i := 0; i < 256; i++ {
		dense.Insert(uint32(i))
	}

	sparseRef, err := Parse(sparse.Serialize())
	require.NoError(t, err)
	denseRef, err := Parse(dense.Serialize())
	require.NoError(t, err)

	require.False(t, sparseRef.Equal(denseRef))

	sameRef, err := Parse(sparse.Clone().Serialize())
	require.NoError(t, err)
	require.True(t, sparseRef.Equal(sameRef))
}

func TestParseStrictRejectsBadCardinality(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 3)
	data := s.Serialize()

	trailerStart := len(data) - 10
	corrupt := append([]byte{}, data...)
	corrupt[trailerStart] = 0xFF // lie about total_cardinality
	_, err := ParseStrict(corrupt)
	require.Error(t, err)
}

func TestSelectOutOfRange(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 3)
	ref, err := Parse(s.Serialize())
	require.NoError(t, err)

	_, ok := ref.Select(-1)
	require.False(t, ok)
	_, ok = ref.Select(3)
	require.False(t, ok)
	_, ok = ref.Select(2)
	require.True(t, ok)
}
