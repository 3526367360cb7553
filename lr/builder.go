package lr

import (
	"sort"
	"strings"

	"golang.org/x/exp/ebnf"
)

// GrammarBuilder is used to construct a grammar. Clients add rules, consisting
// of non-terminal symbols and terminals:
//
//	b := lr.NewGrammarBuilder("G")
//	b.LHS("S").N("A").T("a").End()  // S  ->  A a
//	b.LHS("A").T("b").End()         // A  ->  b
//	b.LHS("A").Epsilon()            // A  ->
//	g, err := b.Grammar()
//
// The LHS of the first rule is the start symbol, unless set explicitly.
type GrammarBuilder struct {
	g     *Grammar
	start string
	err   error
	done  bool
}

// NewGrammarBuilder gets a new grammar builder, given the name of the grammar to build.
func NewGrammarBuilder(name string) *GrammarBuilder {
	g := &Grammar{
		Name:    name,
		symbols: NewSymbolTable(),
		prods:   []*Production{nil}, // reserved for the augmented production
		byLHS:   make(map[*Symbol][]*Production),
	}
	return &GrammarBuilder{g: g}
}

func (b *GrammarBuilder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = inconsistency(format, args...)
	}
}

func (b *GrammarBuilder) symbol(name string, kind Kind) *Symbol {
	if b.done {
		b.fail("grammar %s is complete, cannot add %s", b.g.Name, name)
		return nil
	}
	switch name {
	case EpsilonName, EndOfStreamName, AugmentedStartName:
		b.fail("symbol name %q is reserved", name)
		return nil
	case "":
		b.fail("empty symbol name")
		return nil
	}
	A, _ := b.g.symbols.ResolveOrDefine(name, kind)
	return A
}

// Start sets the start symbol of the grammar.
func (b *GrammarBuilder) Start(name string) *GrammarBuilder {
	b.start = name
	return b
}

// Terminals declares terminals, independent of their use in rules.
func (b *GrammarBuilder) Terminals(names ...string) *GrammarBuilder {
	for _, name := range names {
		b.symbol(name, Terminal)
	}
	return b
}

// NonTerminals declares non-terminals, independent of their use in rules.
func (b *GrammarBuilder) NonTerminals(names ...string) *GrammarBuilder {
	for _, name := range names {
		b.symbol(name, NonTerminal)
	}
	return b
}

// Sync flags terminals as synchronization symbols for error recovery.
func (b *GrammarBuilder) Sync(names ...string) *GrammarBuilder {
	for _, name := range names {
		if a := b.symbol(name, Terminal); a != nil {
			a.Sync = true
		}
	}
	return b
}

// LHS starts a rule given the left hand side symbol (non-terminal).
func (b *GrammarBuilder) LHS(name string) *RuleBuilder {
	if b.start == "" {
		b.start = name
	}
	return &RuleBuilder{b: b, lhs: b.symbol(name, NonTerminal)}
}

// RuleBuilder is a builder type for rules.
type RuleBuilder struct {
	b   *GrammarBuilder
	lhs *Symbol
	rhs []*Symbol
}

// N appends a non-terminal to the RHS of the rule.
func (rb *RuleBuilder) N(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.symbol(name, NonTerminal))
	return rb
}

// T appends a terminal to the RHS of the rule.
func (rb *RuleBuilder) T(name string) *RuleBuilder {
	rb.rhs = append(rb.rhs, rb.b.symbol(name, Terminal))
	return rb
}

// End closes a rule and adds it to the grammar.
func (rb *RuleBuilder) End() *Production {
	if rb.lhs == nil {
		return nil
	}
	for _, A := range rb.rhs {
		if A == nil {
			return nil
		}
	}
	g := rb.b.g
	p := &Production{Serial: len(g.prods), LHS: rb.lhs, rhs: rb.rhs}
	g.prods = append(g.prods, p)
	g.byLHS[p.LHS] = append(g.byLHS[p.LHS], p)
	return p
}

// Epsilon closes a rule as an epsilon production and adds it to the grammar.
// Symbols appended before are an error.
func (rb *RuleBuilder) Epsilon() *Production {
	if len(rb.rhs) > 0 {
		rb.b.fail("epsilon production for %s must not have RHS symbols", rb.lhs)
		return nil
	}
	return rb.End()
}

// Grammar returns the grammar, augmented by a start production. After this call
// no more rules may be added. Undefined non-terminals are reported as a
// GrammarInconsistency.
func (b *GrammarBuilder) Grammar() (*Grammar, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.done {
		return b.g, nil
	}
	g := b.g
	if len(g.prods) == 1 {
		return nil, inconsistency("grammar %s has no productions", g.Name)
	}
	g.Start = g.symbols.Resolve(b.start, NonTerminal)
	if g.Start == nil {
		return nil, inconsistency("start symbol %s is not a non-terminal", b.start)
	}
	st := g.symbols
	if names := st.ambiguousNames(); len(names) > 0 {
		return nil, inconsistency("name(s) %s used for a terminal and a non-terminal",
			strings.Join(names, ", "))
	}
	g.prods[0] = &Production{Serial: 0, LHS: st.AugmentedStart(), rhs: []*Symbol{g.Start}}
	g.byLHS[st.AugmentedStart()] = []*Production{g.prods[0]}
	if err := g.Verify(); err != nil {
		return nil, err
	}
	st.freeze()
	b.done = true
	tracer().Debugf("grammar %s has %d productions and %d symbols", g.Name, len(g.prods), st.Size())
	return g, nil
}

// === Verification ==========================================================

// Every name is mangled to start with a lower case letter, which makes it a
// lexical production for ebnf and frees us from ebnf's naming rules.
const ebnfPrefix = "n·"

// Verify checks that every non-terminal referenced is defined by at least one
// production. It translates g into an EBNF grammar with an additional start
// production referencing every non-terminal, and lets ebnf.Verify find missing
// productions.
func (g *Grammar) Verify() error {
	grammar := make(ebnf.Grammar)
	var all ebnf.Sequence
	seen := make(map[*Symbol]bool)
	ref := func(A *Symbol) {
		if !seen[A] {
			seen[A] = true
			all = append(all, &ebnf.Name{String: ebnfPrefix + A.Name})
		}
	}
	for _, p := range g.prods[1:] {
		ref(p.LHS)
		var seq ebnf.Sequence
		for _, A := range p.rhs {
			if A.IsTerminal() {
				seq = append(seq, &ebnf.Token{String: A.Name})
			} else {
				ref(A)
				seq = append(seq, &ebnf.Name{String: ebnfPrefix + A.Name})
			}
		}
		name := ebnfPrefix + p.LHS.Name
		if prod, ok := grammar[name]; ok {
			if alt, ok := prod.Expr.(ebnf.Alternative); ok {
				prod.Expr = append(alt, seq)
			} else {
				prod.Expr = ebnf.Alternative{prod.Expr, seq}
			}
		} else {
			grammar[name] = &ebnf.Production{Name: &ebnf.Name{String: name}, Expr: seq}
		}
	}
	ref(g.Start)
	start := ebnfPrefix + AugmentedStartName
	grammar[start] = &ebnf.Production{Name: &ebnf.Name{String: start}, Expr: all}
	if err := ebnf.Verify(grammar, start); err != nil {
		tracer().Debugf("ebnf: %v", err)
		if undef := g.Undefined(); len(undef) > 0 {
			return inconsistency("undefined non-terminal(s) %s", strings.Join(undef, ", "))
		}
		return inconsistency("%s", demangle(err.Error()))
	}
	return nil
}

// demangle turns an ebnf error message into one about grammar symbols.
func demangle(msg string) string {
	msg = strings.ReplaceAll(msg, ebnfPrefix, "")
	msg = strings.ReplaceAll(msg, "missing production", "undefined non-terminal")
	if i := strings.Index(msg, ": "); i >= 0 { // strip the position
		msg = msg[i+2:]
	}
	return msg
}

// Undefined returns the names of all non-terminals referenced without a
// production, including a start symbol without productions.
func (g *Grammar) Undefined() []string {
	var names []string
	for _, p := range g.prods {
		if p == nil {
			continue
		}
		for _, A := range p.rhs {
			if !A.IsTerminal() && len(g.byLHS[A]) == 0 {
				names = append(names, A.Name)
			}
		}
	}
	if g.Start != nil && len(g.byLHS[g.Start]) == 0 {
		names = append(names, g.Start.Name)
	}
	sort.Strings(names)
	return unique(names)
}

func unique(in []string) []string { // from slice tricks
	if len(in) == 0 {
		return in
	}
	j := 0
	for i := 1; i < len(in); i++ {
		if in[j] == in[i] {
			continue
		}
		j++
		in[j] = in[i]
	}
	return in[:j+1]
}
