package parse

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes an indented rendering of the tree rooted at n.
func Fprint(w io.Writer, n Node) error {
	var sb strings.Builder
	dump(&sb, n, 0)
	_, err := io.WriteString(w, sb.String())
	return err
}

func dump(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch n := n.(type) {
	case *Rule:
		sb.WriteString(n.Kind.String())
		sb.WriteByte('\n')
		for _, c := range n.Children {
			dump(sb, c, depth+1)
		}
	case *Terminal:
		fmt.Fprintf(sb, "%s %q\n", n.Kind(), n.Text())
	}
}
