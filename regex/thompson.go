package regex

import (
	"github.com/npillmayer/lrkit/automaton"
)

// === Thompson Construction =================================================

// fragment is a sub-automaton with one entry and one exit state.
type fragment struct {
	start, accept automaton.State
}

// parser is a recursive descent parser over a cursor into an expanded pattern.
// It builds all fragments on a single graph.
//
//     alternation := sequence { '|' sequence }
//     sequence    := { term [ '*' ] }
//     term        := '(' alternation ')' | '\' char | '$' | char
//
type parser struct {
	pattern []rune
	pos     int
	g       *automaton.Graph[rune]
	source  string // pattern as given by the client, for error messages
}

func compile(expanded, source string) (*automaton.ENFA[rune], error) {
	p := &parser{
		pattern: []rune(expanded),
		g:       automaton.NewGraph[rune](),
		source:  source,
	}
	f, err := p.alternation(0)
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.pattern) { // can only be a stray ')'
		return nil, p.errorf("unbalanced )")
	}
	tracer().Debugf("compiled %q into %d states", source, p.g.Size())
	return &automaton.ENFA[rune]{Graph: p.g, Start: f.start, Accept: f.accept}, nil
}

func (p *parser) errorf(msg string) error {
	pos := p.pos
	if string(p.pattern) != p.source {
		pos = -1 // position refers to the expanded pattern
	}
	return &PatternError{Pattern: p.source, Pos: pos, Msg: msg}
}

func (p *parser) atEnd() bool {
	return p.pos >= len(p.pattern)
}

// Choice: alternatives are wired from a fresh start state and into a fresh
// accept state via epsilon edges.
func (p *parser) alternation(depth int) (fragment, error) {
	var alternatives []fragment
	for {
		f, err := p.sequence(depth)
		if err != nil {
			return fragment{}, err
		}
		alternatives = append(alternatives, f)
		if p.atEnd() || p.pattern[p.pos] != '|' {
			break
		}
		p.pos++ // skip '|'
	}
	if len(alternatives) == 1 {
		return alternatives[0], nil
	}
	choice := fragment{start: p.g.NewState(), accept: p.g.NewState()}
	for _, alt := range alternatives {
		p.g.AddEpsilon(choice.start, alt.start)
		p.g.AddEpsilon(alt.accept, choice.accept)
	}
	return choice, nil
}

// Concatenation: terms are chained by epsilon edges from the accept state of
// one term to the start state of the next one.
func (p *parser) sequence(depth int) (fragment, error) {
	seq := fragment{start: p.g.NewState()}
	last := seq.start
	for !p.atEnd() {
		c := p.pattern[p.pos]
		if c == '|' {
			break
		}
		if c == ')' {
			if depth == 0 {
				return fragment{}, p.errorf("unbalanced )")
			}
			break
		}
		term, err := p.term(depth)
		if err != nil {
			return fragment{}, err
		}
		if !p.atEnd() && p.pattern[p.pos] == '*' {
			p.pos++
			term = p.star(term)
		}
		p.g.AddEpsilon(last, term.start)
		last = term.accept
	}
	seq.accept = p.g.NewState()
	p.g.AddEpsilon(last, seq.accept)
	return seq, nil
}

func (p *parser) term(depth int) (fragment, error) {
	c := p.pattern[p.pos]
	switch c {
	case '\\':
		if p.pos+1 >= len(p.pattern) {
			return fragment{}, p.errorf("dangling escape")
		}
		r := Unescape(p.pattern[p.pos+1])
		p.pos += 2
		return p.symbol(r), nil
	case '(':
		open := p.pos
		p.pos++
		f, err := p.alternation(depth + 1)
		if err != nil {
			return fragment{}, err
		}
		if p.atEnd() {
			p.pos = open
			return fragment{}, p.errorf("unterminated group")
		}
		p.pos++ // skip ')'
		return f, nil
	case Epsilon:
		p.pos++
		f := fragment{start: p.g.NewState(), accept: p.g.NewState()}
		p.g.AddEpsilon(f.start, f.accept)
		return f, nil
	}
	p.pos++
	return p.symbol(c), nil
}

// symbol creates a 2-state fragment with a single edge labeled r.
func (p *parser) symbol(r rune) fragment {
	f := fragment{start: p.g.NewState(), accept: p.g.NewState()}
	p.g.AddTransition(f.start, r, f.accept)
	return f
}

// Kleene star: loop back from accept to start, or skip the fragment.
func (p *parser) star(f fragment) fragment {
	k := fragment{start: p.g.NewState(), accept: p.g.NewState()}
	p.g.AddEpsilon(k.start, f.start)
	p.g.AddEpsilon(k.start, k.accept)
	p.g.AddEpsilon(f.accept, f.start)
	p.g.AddEpsilon(f.accept, k.accept)
	return k
}
