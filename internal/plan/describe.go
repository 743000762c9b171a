package plan

import (
	"fmt"
	"strings"
)

// Describe renders the plan rooted at n for debugging. Struct and reference
// nodes are printed once under a label and referred to by it elsewhere, so
// cyclic plans render finitely.
func Describe(n *Node) string {
	if n == nil {
		return "<nil>"
	}

	var (
		b strings.Builder
		d = newDealer()
	)

	if !hasMembers(n) {
		b.WriteString(inline(d, n))
		b.WriteByte('\n')
	} else {
		d.need(n)
	}

	for next, ok := d.next(); ok; next, ok = d.next() {
		fmt.Fprintf(&b, "%s %s %s", d.labels[next], next.kind, next.pair)

		if next.kind == KindReference {
			tracking := "tracking off"
			if next.tracking {
				tracking = "tracking on"
			}

			fmt.Fprintf(&b, " (%s, %s)", tracking, next.behavior)
		}

		b.WriteByte('\n')

		for _, m := range next.members {
			fmt.Fprintf(&b, "    %s: %s\n", m.Mapping, inline(d, m.Plan))
		}
	}

	return b.String()
}

func hasMembers(n *Node) bool {
	return n.kind == KindStruct || n.kind == KindReference
}

func inline(d *dealer, n *Node) string {
	switch n.kind {
	case KindStruct, KindReference:
		return d.need(n)
	case KindCopy:
		return fmt.Sprintf("copy %s", n.pair.Source)
	case KindCustom:
		return fmt.Sprintf("custom %s with %s", n.pair, n.caster.Name)
	case KindNullable:
		return fmt.Sprintf("nullable %s of %s", n.pair, inline(d, n.elem))
	case KindCollection:
		return fmt.Sprintf("collection %s (%s) of %s", n.pair, n.strategy, inline(d, n.elem))
	case KindDictionary:
		return fmt.Sprintf("dictionary %s (%s) of key %s, value %s", n.pair, n.strategy, inline(d, n.key), inline(d, n.elem))
	}

	return fmt.Sprintf("%s %s", n.kind, n.pair)
}
