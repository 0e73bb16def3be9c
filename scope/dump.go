package scope

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes the scope tree rooted at s, one table per namespace,
// symbols in declaration order.
func Fprint(w io.Writer, s *Scope) error {
	var sb strings.Builder
	dumpScope(&sb, s, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

func dumpScope(sb *strings.Builder, s *Scope, depth int) {
	indent := strings.Repeat("  ", depth)
	if s.Name != "" {
		fmt.Fprintf(sb, "%s%s %q\n", indent, s.Kind, s.Name)
	} else {
		fmt.Fprintf(sb, "%s%s\n", indent, s.Kind)
	}
	for ns := Namespace(0); ns < numNamespaces; ns++ {
		t := s.Table(ns)
		if t == nil || t.Len() == 0 {
			continue
		}
		fmt.Fprintf(sb, "%s  %s\n", indent, ns)
		for _, sym := range t.Symbols() {
			pos := sym.Node.Pos()
			kind := sym.Kind.String()
			if ns == Tags {
				kind = tagKeyword(sym.Tag)
			}
			fmt.Fprintf(sb, "%s    %s %s %d:%d", indent, sym.Name, kind, pos.Line, pos.Col)
			if sym.Defined && sym.Kind != Label {
				sb.WriteString(" defined")
			}
			sb.WriteByte('\n')
		}
	}
	for _, c := range s.children {
		dumpScope(sb, c, depth+1)
	}
}
