package graph

import (
	"fmt"
	"strings"
)

// DOT renders the graph in Graphviz format. Default edges are dashed so
// branching stands out.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph quiz {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, style=rounded];\n")

	for _, n := range g.Nodes {
		attrs := fmt.Sprintf("label=%s", dotQuote(n.Label))
		if n.Kind == NodeEnd {
			attrs += ", shape=doublecircle"
		}
		fmt.Fprintf(&b, "  %s [%s];\n", dotQuote(n.ID), attrs)
	}

	for _, e := range g.Edges {
		var attrs []string
		if e.Label != "" {
			attrs = append(attrs, "label="+dotQuote(e.Label))
		}
		switch e.Kind {
		case EdgeDefault:
			attrs = append(attrs, "style=dashed", "color=gray")
		case EdgeComplete:
			attrs = append(attrs, "color=darkgreen")
		}
		fmt.Fprintf(&b, "  %s -> %s", dotQuote(e.Source), dotQuote(e.Target))
		if len(attrs) > 0 {
			fmt.Fprintf(&b, " [%s]", strings.Join(attrs, ", "))
		}
		b.WriteString(";\n")
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid renders the graph as a Mermaid flowchart.
func (g Graph) Mermaid() string {
	alias := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias[n.ID] = fmt.Sprintf("n%d", i)
	}
	ref := func(id string) string {
		if a, ok := alias[id]; ok {
			return a
		}
		return mermaidID(id)
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	for _, n := range g.Nodes {
		if n.Kind == NodeEnd {
			fmt.Fprintf(&b, "  %s((%s))\n", ref(n.ID), mermaidQuote(n.Label))
			continue
		}
		fmt.Fprintf(&b, "  %s[%s]\n", ref(n.ID), mermaidQuote(n.Label))
	}
	for _, e := range g.Edges {
		arrow := "-->"
		if e.Kind == EdgeDefault {
			arrow = "-.->"
		}
		if e.Label != "" {
			fmt.Fprintf(&b, "  %s %s|%s| %s\n", ref(e.Source), arrow, mermaidQuote(e.Label), ref(e.Target))
		} else {
			fmt.Fprintf(&b, "  %s %s %s\n", ref(e.Source), arrow, ref(e.Target))
		}
	}
	return b.String()
}

func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return `"` + s + `"`
}

func mermaidQuote(s string) string {
	s = strings.ReplaceAll(s, `"`, "#quot;")
	s = strings.ReplaceAll(s, "\n", " ")
	return `"` + s + `"`
}

func mermaidID(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, s)
}
