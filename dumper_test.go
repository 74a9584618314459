// SPDX-License-Identifier: MIT

package splinter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDumpProducesOneLinePerNode(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 1<<20)

	var w strings.Builder
	s.Dump(&w)

	out := w.String()
	require.Contains(t, out, "cardinality(3)")
	require.Contains(t, out, "partition")
	require.Contains(t, out, "block")
	// header line, then 4 partitions (levels 0, 1 and two at level 2) and 2 blocks
	require.Equal(t, 7, strings.Count(out, "\n"))
}

func TestDumpEmpty(t *testing.T) {
	t.Parallel()
	var w strings.Builder
	New().Dump(&w)
	require.Equal(t, "(empty)\n", w.String())
}

func TestDumpVerboseIncludesRawBitsetWords(t *testing.T) {
	t.Parallel()
	s := FromValues(1, 2, 3, 1<<16)

	var w strings.Builder
	s.DumpVerbose(&w)

	out := w.String()
	require.Contains(t, out, "partition")
	require.Contains(t, out, "block")
	require.Contains(t, out, "uint64")
}

func TestDumpVerboseEmpty(t *testing.T) {
	t.Parallel()
	var w strings.Builder
	New().DumpVerbose(&w)
	require.Equal(t, "(empty)\n", w.String())
}
