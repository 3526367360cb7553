package lr

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// GrammarInconsistency is raised during grammar construction and analysis. It
// aborts table generation; there are no partial tables.
type GrammarInconsistency struct {
	Msg string
}

func (e *GrammarInconsistency) Error() string {
	return "grammar inconsistency: " + e.Msg
}

func inconsistency(format string, args ...interface{}) *GrammarInconsistency {
	return &GrammarInconsistency{Msg: fmt.Sprintf(format, args...)}
}

// === Productions ===========================================================

// Production is a grammar rule LHS → RHS. An epsilon production has an empty RHS.
type Production struct {
	Serial    int     // production id; 0 is the augmented production
	LHS       *Symbol // left hand side non-terminal
	rhs       []*Symbol
	emptyFrom int               // RHS positions from here on are all nullable
	startsAt  []*intsets.Sparse // FIRST of the RHS suffix starting at position i
}

// RHS returns the right hand side symbols of p. Clients must not modify the result.
func (p *Production) RHS() []*Symbol {
	return p.rhs
}

// Len returns the length of the RHS.
func (p *Production) Len() int {
	return len(p.rhs)
}

// IsEpsilon is true for productions A → ε.
func (p *Production) IsEpsilon() bool {
	return len(p.rhs) == 0
}

// IsEmptyFrom is true if every RHS symbol from position i on is nullable.
// Valid after grammar analysis.
func (p *Production) IsEmptyFrom(i int) bool {
	return i >= p.emptyFrom
}

// StartsAt returns the set of terminals (as terminal bit positions) which may
// start a derivation of the RHS suffix from position i. If the suffix is
// nullable, this does not include anything following the production.
// Valid after grammar analysis. Clients must not modify the result.
func (p *Production) StartsAt(i int) *intsets.Sparse {
	return p.startsAt[i]
}

func (p *Production) String() string {
	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(p.LHS.Name)
	b.WriteString("] ::= [")
	for i, A := range p.rhs {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(A.Name)
	}
	b.WriteString("]")
	return b.String()
}

// === Grammars ==============================================================

// Grammar is a context free grammar, augmented by a production
//
//	#start → S
//
// where S is the start symbol. Grammars are created by a GrammarBuilder or read
// from a grammar spec, and are immutable after analysis.
type Grammar struct {
	Name     string
	Start    *Symbol // start symbol of the un-augmented grammar
	symbols  *SymbolTable
	prods    []*Production
	byLHS    map[*Symbol][]*Production
	first    []*intsets.Sparse // FIRST sets by symbol serial
	analysed bool
}

// Symbols returns the symbol table of g.
func (g *Grammar) Symbols() *SymbolTable {
	return g.symbols
}

// Size returns the number of productions, including the augmented one.
func (g *Grammar) Size() int {
	return len(g.prods)
}

// Production returns the production with id i.
func (g *Grammar) Production(i int) *Production {
	if i < 0 || i >= len(g.prods) {
		return nil
	}
	return g.prods[i]
}

// Productions returns all productions, in order of their ids.
func (g *Grammar) Productions() []*Production {
	return g.prods
}

// ProductionsFor returns the productions for non-terminal A, in order of their ids.
func (g *Grammar) ProductionsFor(A *Symbol) []*Production {
	return g.byLHS[A]
}

// EachNonTerminal calls f for every non-terminal, in symbol order.
func (g *Grammar) EachNonTerminal(f func(A *Symbol)) {
	for _, A := range g.symbols.NonTerminals() {
		f(A)
	}
}

// EachTerminal calls f for every terminal, in symbol order.
func (g *Grammar) EachTerminal(f func(A *Symbol)) {
	for _, A := range g.symbols.Terminals() {
		f(A)
	}
}

// Dump is a debugging helper.
func (g *Grammar) Dump() {
	tracer().Debugf("--- grammar %s ------------------------------", g.Name)
	for _, p := range g.prods {
		tracer().Debugf("%3d: %s", p.Serial, p)
	}
	tracer().Debugf("-------------------------------------------")
}

// === Nullability and Start Sets ============================================

// AnnotateNullable marks every non-terminal which derives the empty word.
// A non-terminal is nullable if one of its productions is an epsilon production
// or has a RHS of nullable symbols only. AnnotateNullable is idempotent.
func (g *Grammar) AnnotateNullable() {
	for changed := true; changed; {
		changed = false // every round marks at least one more non-terminal, or stops
		for _, p := range g.prods {
			if p.LHS.Nullable {
				continue
			}
			nullable := true
			for _, A := range p.rhs {
				if !A.Nullable {
					nullable = false
					break
				}
			}
			if nullable {
				tracer().Debugf("%s is nullable by %s", p.LHS, p)
				p.LHS.Nullable = true
				changed = true
			}
		}
	}
	for _, p := range g.prods {
		p.emptyFrom = 0
		for i := len(p.rhs) - 1; i >= 0; i-- {
			if !p.rhs[i].Nullable {
				p.emptyFrom = i + 1
				break
			}
		}
	}
}

// ComputeStartSets computes FIRST sets for all symbols and, for every
// production, the FIRST sets of all its RHS suffixes. Nullability has to be
// annotated beforehand.
//
// Every non-terminal is seeded with the terminals directly starting its
// productions, and remembers the non-terminals it depends on. The dependency
// graph is then closed to a fixed point.
func (g *Grammar) ComputeStartSets() error {
	st := g.symbols
	g.first = make([]*intsets.Sparse, len(st.Symbols()))
	for _, A := range st.Symbols() {
		g.first[A.serial] = &intsets.Sparse{}
		if A.IsTerminal() && A != st.Epsilon() {
			g.first[A.serial].Insert(st.bit(A))
		}
	}
	deps := make([][]*Symbol, len(st.NonTerminals()))
	for _, p := range g.prods {
		A := p.LHS
		for _, X := range p.rhs {
			if X.IsTerminal() {
				g.first[A.serial].Insert(st.bit(X))
			} else if X != A {
				deps[A.serial] = append(deps[A.serial], X)
			}
			if !X.Nullable {
				break
			}
		}
	}
	// every round adds at least one terminal to some set
	bound := len(st.NonTerminals())*len(st.Terminals()) + 1
	rounds := 0
	for changed := true; changed; rounds++ {
		if rounds > bound {
			return inconsistency("start sets do not converge after %d rounds", rounds)
		}
		changed = false
		for _, A := range st.NonTerminals() {
			for _, B := range deps[A.serial] {
				if g.first[A.serial].UnionWith(g.first[B.serial]) {
					changed = true
				}
			}
		}
	}
	tracer().Debugf("start sets converged after %d rounds", rounds)
	for _, p := range g.prods {
		p.startsAt = make([]*intsets.Sparse, len(p.rhs)+1)
		p.startsAt[len(p.rhs)] = &intsets.Sparse{}
		for i := len(p.rhs) - 1; i >= 0; i-- {
			s := &intsets.Sparse{}
			s.Copy(g.first[p.rhs[i].serial])
			if p.rhs[i].Nullable {
				s.UnionWith(p.startsAt[i+1])
			}
			p.startsAt[i] = s
		}
	}
	return nil
}

// FirstSet returns FIRST(A) as a set of terminal bit positions. Valid after
// ComputeStartSets. Clients must not modify the result.
func (g *Grammar) FirstSet(A *Symbol) *intsets.Sparse {
	if g.first == nil || A.serial < 0 {
		return nil
	}
	return g.first[A.serial]
}

// TerminalsOf maps a set of terminal bit positions to terminals.
func (g *Grammar) TerminalsOf(set *intsets.Sparse) []*Symbol {
	bits := set.AppendTo(nil)
	r := make([]*Symbol, len(bits))
	for i, bit := range bits {
		r[i] = g.symbols.TerminalAt(bit)
	}
	return r
}

// === Analysis ==============================================================

// LRAnalysis is the static analysis of a grammar, a prerequisite for building
// parser tables.
type LRAnalysis struct {
	g *Grammar
}

// Analysis annotates nullability and computes FIRST sets for a grammar.
// Analysing a grammar twice has no further effect.
func Analysis(g *Grammar) (*LRAnalysis, error) {
	if !g.analysed {
		g.AnnotateNullable()
		if err := g.ComputeStartSets(); err != nil {
			return nil, err
		}
		g.analysed = true
	}
	return &LRAnalysis{g: g}, nil
}

// Grammar returns the grammar under analysis.
func (ga *LRAnalysis) Grammar() *Grammar {
	return ga.g
}

// First returns FIRST(A) as a list of terminals, in symbol order.
func (ga *LRAnalysis) First(A *Symbol) []*Symbol {
	return ga.g.TerminalsOf(ga.g.FirstSet(A))
}

// Nullable is true if A derives the empty word.
func (ga *LRAnalysis) Nullable(A *Symbol) bool {
	return A.Nullable
}
