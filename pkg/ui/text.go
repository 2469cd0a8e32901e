package ui

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
)

// WriteText writes a readable outline of a rendered tree to w, one node per
// line, two spaces of indentation per level:
//
//	<Counter>
//	  span class=count
//	    "1"
//
// Element attributes are sorted by name. Function values print as <func>.
// Props of component nodes are not printed.
func WriteText(w io.Writer, n *Node) error {
	var b strings.Builder
	writeNode(&b, n, 0)
	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the WriteText outline of a tree.
func (n *Node) String() string {
	var b strings.Builder
	writeNode(&b, n, 0)
	return b.String()
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat("  ", depth)

	switch n.Kind {
	case KindText:
		fmt.Fprintf(b, "%s%q\n", indent, n.Text)

	case KindFragment:
		for _, ch := range n.Children {
			writeNode(b, ch, depth)
		}

	case KindComponent:
		fmt.Fprintf(b, "%s<%s>\n", indent, n.Comp.Name())
		if n.inst != nil {
			writeNode(b, n.inst.output, depth+1)
			return
		}
		for _, ch := range n.Children {
			writeNode(b, ch, depth+1)
		}

	default:
		b.WriteString(indent)
		b.WriteString(n.Tag)
		names := make([]string, 0, len(n.Props))
		for k := range n.Props {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			fmt.Fprintf(b, " %s=%s", k, formatValue(n.Props[k]))
		}
		b.WriteString("\n")
		for _, ch := range n.Children {
			writeNode(b, ch, depth+1)
		}
	}
}

func formatValue(v any) string {
	if v == nil {
		return "<nil>"
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return "<func>"
	}
	return fmt.Sprintf("%v", v)
}
