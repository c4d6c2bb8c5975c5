package topology

import (
	"fmt"
	"strings"
)

// DOT renders the graph in Graphviz format.
func DOT(g Graph) string {
	var b strings.Builder
	b.WriteString("digraph netwatch {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, n := range g.Nodes {
		label := n.Name
		if n.Address != "" && n.Address != n.Name {
			label = fmt.Sprintf("%s\\n%s", n.Name, n.Address)
		}
		fmt.Fprintf(&b, "  %q [label=%q, shape=%s];\n", n.ID, label, shapeFor(n.Kind))
	}
	for _, e := range g.Edges {
		switch e.Kind {
		case EdgePhysical:
			fmt.Fprintf(&b, "  %q -> %q [style=bold];\n", e.Source, e.Target)
		default:
			label := strings.TrimSpace(e.Protocol + " " + e.State)
			if e.Service != "" {
				label += " " + e.Service
			}
			fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.Source, e.Target, label)
		}
	}
	b.WriteString("}\n")
	return b.String()
}

func shapeFor(kind NodeKind) string {
	switch kind {
	case NodeHost:
		return "box"
	case NodeInterface:
		return "ellipse"
	default:
		return "oval"
	}
}
