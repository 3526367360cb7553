/*
Package lr1 provides a table driven LR(1) shift-reduce parser. Clients have to
use the tools of package lr to prepare the necessary parse tables. The parser
utilizes these tables to create a right derivation for a given input,
provided through a scanner interface, and builds a parse tree.

The main focus for this implementation is adaptability and on-the-fly usage.
Clients are able to construct the parse tables from a grammar and use the
parser directly, without a code-generation or compile step. Tables may as
well be loaded from a file, produced by an earlier run of the table generator.

Usage

Clients construct a grammar, usually by using a grammar builder:

	b := lr.NewGrammarBuilder("Parens")
	b.LHS("S").T("(").N("S").T(")").End()  // S --> ( S )
	b.LHS("S").T("a").End()                // S --> a
	b.Sync(")")
	g, err := b.Grammar()

This grammar is subjected to grammar analysis and table generation.

	ga, err := lr.Analysis(g)
	lrgen := lr.NewTableGenerator(ga)
	err = lrgen.CreateTables()

Finally parse some input:

	p := lr1.NewParser(lrgen.Tables())
	accepted, err := p.Parse(tokenizer)
	lr1.PrintTree(os.Stdout, p.ParseTree())

Error Recovery

The parser recovers from syntax errors in panic mode: it reports the
symbols it would have accepted, skips input up to the next synchronization
terminal, and then pops states from the parse stack until it finds a state
with an action for the synchronization terminal. Parsing resumes from there.
If no synchronization terminal is found before the end of input, or the stack
runs empty, parsing stops. Syntax errors are collected and available after
the parse.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr1

import (
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.lr")
}

// ErrorKind classifies syntax errors.
type ErrorKind int8

// Kinds of syntax errors.
const (
	ParseError         ErrorKind = iota // no table entry for state and token
	StructuralMismatch                  // stack or GOTO table do not fit a reduce
	RecoveryFailure                     // no way to resume after an error
)

func (k ErrorKind) String() string {
	switch k {
	case StructuralMismatch:
		return "structural mismatch"
	case RecoveryFailure:
		return "recovery failure"
	}
	return "parse error"
}

// SyntaxError is an error found during parsing.
type SyntaxError struct {
	Kind     ErrorKind
	Line     int
	Token    lrkit.Token
	Expected []string // terminals the parser would have accepted
}

func (e *SyntaxError) Error() string {
	var tok string
	if e.Token != nil {
		tok = fmt.Sprintf(" at %s %q", e.Token.Name(), e.Token.Lexeme())
	}
	if len(e.Expected) == 0 {
		return fmt.Sprintf("line %d: %s%s", e.Line, e.Kind, tok)
	}
	return fmt.Sprintf("line %d: %s%s, expected one of [%s]", e.Line, e.Kind, tok,
		strings.Join(e.Expected, " "))
}

// Parser is an LR(1)-parser type. Create and initialize one with lr1.NewParser(...)
type Parser struct {
	tables   *lr.Tables
	stack    *arraystack.Stack // parser stack of stackitems
	sink     io.Writer         // recovery messages go here, if set
	errors   []*SyntaxError
	tree     *Node
	dangling *Node       // reduced, but without GOTO entry to push it
	token    lrkit.Token // current lookahead
	sym      *lr.Symbol  // terminal of the current lookahead
	pos      int         // number of tokens read
	shiftPos int         // pos of the token following the last shift
	recovPos int         // pos of the sync token of the last recovery
}

// We store pairs of states and parse tree nodes on the parse stack.
type stackitem struct {
	state int   // state of the LR(1) automaton
	node  *Node // nil for the bottom of the stack
}

// ParserOption configures a parser.
type ParserOption func(*Parser)

// WithSink sets a writer for error recovery messages.
func WithSink(w io.Writer) ParserOption {
	return func(p *Parser) {
		p.sink = w
	}
}

// NewParser creates an LR(1) parser.
func NewParser(tables *lr.Tables, opts ...ParserOption) *Parser {
	p := &Parser{
		tables: tables,
		stack:  arraystack.New(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse starts a new parse, given a scanner tokenizing the input. The
// tokenizer has to deliver a token named lr.EndOfStreamName at the end of input.
//
// The parser returns true if the input has been accepted. Syntax errors are
// not returned, but collected (see SyntaxErrors). An error is returned only if
// the parser is not initialized.
func (p *Parser) Parse(scan scanner.Tokenizer) (bool, error) {
	tracer().Debugf("~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~")
	if p.tables == nil || p.tables.G == nil {
		tracer().Errorf("LR(1)-parser not initialized")
		return false, fmt.Errorf("LR(1)-parser not initialized")
	}
	p.stack.Clear()
	p.errors = nil
	p.tree = nil
	p.dangling = nil
	p.pos, p.shiftPos, p.recovPos = 0, 0, -1
	p.stack.Push(stackitem{state: 0}) // push start state
	p.advance(scan)
	accepted := false
	for !accepted && !p.stack.Empty() {
		top := p.top()
		action := p.tables.Action(top.state, p.sym)
		tracer().Debugf("action(%d,%s)=%s", top.state, p.token.Name(), action)
		switch action.Kind {
		case lr.Shift:
			p.stack.Push(stackitem{state: action.Target, node: leaf(p.sym, p.token)})
			p.advance(scan)
			p.shiftPos = p.pos
			continue
		case lr.Reduce:
			if kind, ok := p.reduce(p.tables.G.Production(action.Target)); !ok {
				if !p.recover(scan, kind) {
					return false, nil
				}
			}
			continue
		case lr.Accept:
			accepted = true
			p.tree = top.node
			continue
		}
		if !p.recover(scan, ParseError) {
			return false, nil
		}
	}
	return accepted, nil
}

// ParseTree returns the parse tree of the last successful parse, or nil.
func (p *Parser) ParseTree() *Node {
	return p.tree
}

// PartialForest returns the nodes on the parse stack, bottom first. After a
// failed parse this is what has been recognized of the input. A subtree which
// has been reduced, but could not be pushed for lack of a GOTO entry, comes
// last.
func (p *Parser) PartialForest() []*Node {
	values := p.stack.Values() // top first
	var forest []*Node
	for i := len(values) - 1; i >= 0; i-- {
		if n := values[i].(stackitem).node; n != nil {
			forest = append(forest, n)
		}
	}
	if p.dangling != nil {
		forest = append(forest, p.dangling)
	}
	return forest
}

// SyntaxErrors returns the syntax errors found during the last parse.
func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.errors
}

func (p *Parser) top() stackitem {
	x, _ := p.stack.Peek()
	return x.(stackitem)
}

func (p *Parser) advance(scan scanner.Tokenizer) {
	p.token = scan.NextToken()
	p.sym = p.tables.G.Symbols().Resolve(p.token.Name(), lr.Terminal)
	p.pos++
	tracer().Debugf("got token %s %d %q", p.token.Name(), p.token.Line(), p.token.Lexeme())
}

func (p *Parser) atEOF() bool {
	return p.token.Name() == lr.EndOfStreamName
}

// reduce performs a reduce action for a production
//
//    LHS --> X1 ... Xn   (with X being terminals or non-terminals)
//
// Symbols X1 to Xn should be represented on the stack as nodes
//
//    [TOS]  (Sn, Xn) ... (S1, X1)  ...
//
// The stack is checked before anything is popped; a mismatch leaves it intact.
func (p *Parser) reduce(prod *lr.Production) (ErrorKind, bool) {
	tracer().Debugf("reduce %v", prod)
	rhs := prod.RHS()
	values := p.stack.Values() // top first
	if len(values) <= len(rhs) {
		return p.mismatch(prod, nil)
	}
	for k := 0; k < len(rhs); k++ {
		node := values[k].(stackitem).node
		if node == nil || node.Symbol != rhs[len(rhs)-1-k] {
			return p.mismatch(prod, node)
		}
	}
	parent := &Node{Symbol: prod.LHS}
	if prod.IsEpsilon() {
		parent.Children = []*Node{{Symbol: p.tables.G.Symbols().Epsilon()}}
	} else {
		parent.Children = make([]*Node, len(rhs))
		for k := len(rhs) - 1; k >= 0; k-- {
			x, _ := p.stack.Pop()
			child := x.(stackitem).node
			parent.Children[k] = child
		}
		for _, child := range parent.Children {
			parent.Span = parent.Span.Extend(child.Span)
		}
	}
	next, ok := p.tables.Goto(p.top().state, prod.LHS)
	if !ok {
		// tables are inconsistent: the stack matched, but there is no successor
		tracer().Errorf("no goto for %s in state %d", prod.LHS, p.top().state)
		p.dangling = parent
		return StructuralMismatch, false
	}
	p.stack.Push(stackitem{state: next, node: parent})
	return ParseError, true
}

func (p *Parser) mismatch(prod *lr.Production, node *Node) (ErrorKind, bool) {
	var found string
	if node != nil {
		found = node.Symbol.Name
	}
	msg := fmt.Sprintf("cannot reduce %s, stack has %q", prod, found)
	if gconf.GetBool("panic-on-structural-mismatch") {
		panic(msg)
	}
	tracer().Errorf(msg)
	return StructuralMismatch, false
}

// recover performs panic mode error recovery. It returns false if parsing
// cannot resume.
//
// If an error occurs again before anything has been shifted since the last
// recovery, the current token is skipped before searching for a synchronization
// terminal. Every recovery thus either leads to a shift or consumes input,
// which guarantees termination.
func (p *Parser) recover(scan scanner.Tokenizer, kind ErrorKind) bool {
	state := p.top().state
	var expected []string
	for _, a := range p.tables.Expected(state) {
		expected = append(expected, a.Name)
	}
	serr := &SyntaxError{Kind: kind, Line: p.token.Line(), Token: p.token, Expected: expected}
	p.errors = append(p.errors, serr)
	tracer().Errorf("syntax error: %v", serr)
	p.report("Syntax error in line %d at %s %q, expected one of [%s]\n",
		serr.Line, p.token.Name(), p.token.Lexeme(), strings.Join(expected, " "))
	if p.recovPos >= 0 && p.shiftPos <= p.recovPos && !p.atEOF() {
		p.advance(scan) // no progress since last recovery
	}
	for p.sym == nil || !p.sym.Sync {
		if p.atEOF() {
			return p.fail("no synchronization symbol found before end of input")
		}
		p.advance(scan)
	}
	for !p.stack.Empty() {
		top := p.top()
		if p.tables.Action(top.state, p.sym).Kind != lr.NoAction {
			tracer().Infof("resuming in state %d at %s in line %d", top.state, p.token.Name(), p.token.Line())
			p.report("Resuming at %s %q in line %d\n", p.token.Name(), p.token.Lexeme(), p.token.Line())
			p.recovPos = p.pos
			p.dangling = nil
			return true
		}
		p.stack.Pop()
	}
	return p.fail("stack exhausted while searching for a state to resume")
}

func (p *Parser) fail(msg string) bool {
	serr := &SyntaxError{Kind: RecoveryFailure, Line: p.token.Line(), Token: p.token}
	p.errors = append(p.errors, serr)
	tracer().Errorf("%s: %s", serr, msg)
	p.report("Cannot recover: %s\n", msg)
	return false
}

func (p *Parser) report(format string, args ...interface{}) {
	if p.sink != nil {
		fmt.Fprintf(p.sink, format, args...)
	}
}
