package lr1

import (
	"fmt"
	"io"
	"strings"

	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/scanner"
)

// Node is a node of a parse tree. Inner nodes carry a non-terminal and have
// children in RHS order. Leaves carry either a terminal together with its
// token, or epsilon for an empty production.
type Node struct {
	Symbol   *lr.Symbol
	Token    lrkit.Token // nil for inner nodes and epsilon leaves
	Children []*Node
	Span     lrkit.Span // source lines covered
}

func leaf(a *lr.Symbol, tok lrkit.Token) *Node {
	return &Node{Symbol: a, Token: tok, Span: lrkit.LineSpan(tok.Line())}
}

// IsLeaf is true for terminal and epsilon nodes.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Label returns the text for a node: the symbol name for inner nodes,
// "NAME line text" for terminals.
func (n *Node) Label() string {
	if n.Token == nil {
		return n.Symbol.Name
	}
	return fmt.Sprintf("%s %d %s", n.Token.Name(), n.Token.Line(), n.Token.Lexeme())
}

// Value returns the value of the token of a terminal leaf, if the token
// carries one (see scanner.Valuer), and nil otherwise.
func (n *Node) Value() interface{} {
	if v, ok := n.Token.(scanner.Valuer); ok {
		return v.Value()
	}
	return nil
}

// String returns an indented text form of the tree rooted at n, with one
// space of indentation per level.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b, 0)
	return b.String()
}

func (n *Node) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat(" ", depth))
	b.WriteString(n.Label())
	b.WriteByte('\n')
	for _, child := range n.Children {
		child.write(b, depth+1)
	}
}

// Walk visits the nodes of a tree in pre-order.
func (n *Node) Walk(f func(node *Node, depth int)) {
	n.walk(f, 0)
}

func (n *Node) walk(f func(*Node, int), depth int) {
	f(n, depth)
	for _, child := range n.Children {
		child.walk(f, depth+1)
	}
}

// PrintTree writes the text form of a tree to w.
func PrintTree(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	_, err := io.WriteString(w, n.String())
	return err
}
