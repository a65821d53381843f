package emit

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT writes each document as a Graphviz digraph.
func WriteDOT(w io.Writer, docs []GraphDocument) error {
	for _, doc := range docs {
		if err := writeDigraph(w, doc); err != nil {
			return err
		}
	}
	return nil
}

func writeDigraph(w io.Writer, doc GraphDocument) error {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", quote(escape(doc.Method)))
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	for _, n := range doc.Nodes {
		attrs := []string{"label=" + quote(dotLabel(n))}
		switch {
		case n.Kind == "exit":
			attrs = append(attrs, "shape=doublecircle")
		case n.Handler != "":
			attrs = append(attrs, "style=filled", "fillcolor=\"#fde8c8\"")
		}
		if doc.Entry != nil && *doc.Entry == n.ID {
			attrs = append(attrs, "penwidth=2")
		}
		fmt.Fprintf(&b, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}
	for _, e := range doc.Edges {
		var attrs []string
		switch e.Kind {
		case "normal":
		case "exceptional":
			attrs = append(attrs, "style=dashed", "color=red")
		case "finally":
			attrs = append(attrs, "label="+quote(e.Kind), "color=blue")
		default:
			attrs = append(attrs, "label="+quote(e.Kind))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&b, "  n%d -> n%d;\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "  n%d -> n%d [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// dotLabel returns a left-justified multi-line label. Lines are joined with
// the literal \l escape, which quote leaves alone.
func dotLabel(n NodeDocument) string {
	if n.Kind == "exit" {
		return "exit"
	}
	head := n.Label
	if n.Handler != "" {
		head += " (" + n.Handler + ")"
	}
	lines := []string{escape(head)}
	for _, instr := range n.Instructions {
		lines = append(lines, escape(instr))
	}
	return strings.Join(lines, `\l`) + `\l`
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

func quote(s string) string {
	return `"` + s + `"`
}
