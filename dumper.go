// SPDX-License-Identifier: MIT

package splinter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// ##################################################
//  useful during development, debugging and testing
// ##################################################

// Dump writes a human-readable tree of s's nodes to w: a header line, then
// one line per node, indented by depth, naming its key path and
// cardinality (and, for a partition, its level and key count).
func (s *Splinter) Dump(w io.Writer) {
	if s == nil || s.root == nil {
		fmt.Fprintln(w, "(empty)")
		return
	}
	fmt.Fprintf(w, "splinter: cardinality(%d)\n", s.count)
	s.root.dumpRec(w, nil, 0)
}

func (p *partition) dumpRec(w io.Writer, path []byte, depth int) {
	p.dumpNode(w, path, depth)

	key, ok := p.keys.FirstSet()
	idx := 0
	for ok {
		childPath := append(append([]byte{}, path...), byte(key))
		if p.level == 2 {
			p.children.Items[idx].(*block).dumpNode(w, childPath, depth+1)
		} else {
			p.children.Items[idx].(*partition).dumpRec(w, childPath, depth+1)
		}
		idx++
		key, ok = p.keys.NextSet(key + 1)
	}
}

func (p *partition) dumpNode(w io.Writer, path []byte, depth int) {
	indent := strings.Repeat(".", depth)
	fmt.Fprintf(w, "%spartition level=%d path=%s keys=%d card=%d\n",
		indent, p.level, pathString(path), len(p.keys.All()), p.cardinality())
}

func (b *block) dumpNode(w io.Writer, path []byte, depth int) {
	indent := strings.Repeat(".", depth)
	fmt.Fprintf(w, "%sblock path=%s card=%d\n", indent, pathString(path), b.cardinality())
}

func pathString(path []byte) string {
	parts := make([]string, len(path))
	for i, b := range path {
		parts[i] = strconv.Itoa(int(b))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// DumpVerbose writes a full spew.Sdump of s's internal tree to w, including
// raw bitset words. Meant for bug reports and test failure output, not for
// regular debugging (use Dump for that).
func (s *Splinter) DumpVerbose(w io.Writer) {
	if s == nil || s.root == nil {
		fmt.Fprintln(w, "(empty)")
		return
	}
	// Methods are disabled so BitSet256 prints its words, not its String().
	cfg := spew.ConfigState{Indent: " ", DisableMethods: true}
	fmt.Fprintln(w, cfg.Sdump(s.root))
}
