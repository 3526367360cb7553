package automaton

import (
	"fmt"
	"io"
	"strings"
)

// GraphViz exports d to the Graphviz Dot format. Clients provide stringers for
// symbols and for alias sets; aliases may be nil.
func (d *DFA[S, A]) GraphViz(w io.Writer, symbol func(A) string, aliases func([]S) string) error {
	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for id := 0; id < d.Size(); id++ {
		label := fmt.Sprintf("%03d", id)
		if aliases != nil {
			label = fmt.Sprintf("{%03d | %s}", id, forGraphviz(aliases(d.aliases[id])))
		}
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"%s\"]\n", id, nodecolor(d.accept[id]), label)
	}
	for id := 0; id < d.Size(); id++ {
		for _, e := range d.edges[id] {
			fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", id, e.to, forGraphviz(symbol(e.symbol)))
		}
	}
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func nodecolor(accept bool) string {
	if accept {
		return "lightgray"
	}
	return "white"
}

var dotEscaper = strings.NewReplacer(`"`, `\"`, `{`, `\{`, `}`, `\}`, `<`, `\<`, `>`, `\>`, `|`, `\|`)

func forGraphviz(s string) string {
	return dotEscaper.Replace(s)
}
