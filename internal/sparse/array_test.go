// SPDX-License-Identifier: MIT

package sparse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAtDeleteAt(t *testing.T) {
	t.Parallel()

	var a Array[string]

	a.InsertAt(0, "b")
	a.InsertAt(0, "a")
	a.InsertAt(2, "c")

	require.Equal(t, []string{"a", "b", "c"}, a.Items)

	got := a.DeleteAt(1)
	require.Equal(t, "b", got)
	require.Equal(t, []string{"a", "c"}, a.Items)

	v, ok := a.Get(0)
	require.True(t, ok)
	require.Equal(t, "a", v)

	_, ok = a.Get(5)
	require.False(t, ok)
}

func TestCopyIsIndependent(t *testing.T) {
	t.Parallel()

	var a Array[int]
	a.InsertAt(0, 1)
	a.InsertAt(1, 2)

	b := a.Copy()
	b.InsertAt(2, 3)

	require.Equal(t, []int{1, 2}, a.Items)
	require.Equal(t, []int{1, 2, 3}, b.Items)
}

func TestMustGet(t *testing.T) {
	t.Parallel()

	var a Array[int]
	a.InsertAt(0, 42)
	require.Equal(t, 42, a.MustGet(0))
}
