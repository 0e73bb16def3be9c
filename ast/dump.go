package ast

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented rendering of the tree rooted at n. Empty slots
// are omitted. Serial numbers are left out so dumps of equal trees compare
// equal.
func Fprint(w io.Writer, n Node) error {
	var sb strings.Builder
	v := NewVisitor[struct{}, int]()
	for _, k := range Kinds() {
		v.On(k, func(n Node, depth int) struct{} {
			indent := strings.Repeat("  ", depth)
			switch n := n.(type) {
			case *Leaf:
				fmt.Fprintf(&sb, "%s%s %q\n", indent, n.Kind(), n.Lexeme())
			case *Composite:
				fmt.Fprintf(&sb, "%s%s\n", indent, n.Kind())
				for s := 0; s < n.NumSlots(); s++ {
					if len(n.Children(Slot(s))) == 0 {
						continue
					}
					fmt.Fprintf(&sb, "%s  .%s\n", indent, n.Kind().SlotName(Slot(s)))
					v.VisitSlot(n, Slot(s), depth+2)
				}
			}
			return struct{}{}
		})
	}
	v.Visit(n, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

// Sprint is Fprint to a string.
func Sprint(n Node) string {
	var sb strings.Builder
	Fprint(&sb, n)
	return sb.String()
}
