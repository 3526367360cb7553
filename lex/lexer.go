package lex

import (
	"fmt"
	"io"

	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr/scanner"
)

// InputError is reported for input which no rule matches.
type InputError struct {
	Line int
	Char rune
}

func (e *InputError) Error() string {
	return fmt.Sprintf("line %d: no rule matches %q", e.Line, e.Char)
}

// Lexer is a table driven lexer. Create one with NewLexer.
type Lexer struct {
	tables  *Tables
	dfas    []*matcher
	input   []rune
	pos     int
	line    int
	state   int // index of the current lexer state
	errorFn func(error)
}

var _ scanner.Tokenizer = (*Lexer)(nil)

// matcher is the runtime form of a Machine.
type matcher struct {
	m    *Machine
	next []map[rune]int
}

func newMatcher(m *Machine) *matcher {
	mt := &matcher{m: m, next: make([]map[rune]int, m.Size)}
	for i := range mt.next {
		mt.next[i] = make(map[rune]int)
	}
	for _, e := range m.Edges {
		mt.next[e.From][e.Char] = e.To
	}
	return mt
}

// Option configures a lexer.
type Option func(*Lexer)

// WithErrorHandler sets a handler for input errors. The default handler
// traces errors.
func WithErrorHandler(h func(error)) Option {
	return func(lx *Lexer) {
		lx.SetErrorHandler(h)
	}
}

// NewLexer creates a lexer reading all of input.
func NewLexer(tables *Tables, input io.Reader, opts ...Option) (*Lexer, error) {
	data, err := io.ReadAll(input)
	if err != nil {
		return nil, err
	}
	lx := &Lexer{
		tables:  tables,
		input:   []rune(string(data)),
		line:    1,
		errorFn: logError,
	}
	for _, m := range tables.Machines {
		lx.dfas = append(lx.dfas, newMatcher(m))
	}
	for _, opt := range opts {
		opt(lx)
	}
	return lx, nil
}

func logError(e error) {
	tracer().Errorf("lexer error: %v", e)
}

// SetErrorHandler is part of interface scanner.Tokenizer.
func (lx *Lexer) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	lx.errorFn = h
}

// Line returns the current line number.
func (lx *Lexer) Line() int {
	return lx.line
}

// State returns the name of the current lexer state.
func (lx *Lexer) State() string {
	return lx.tables.States[lx.state]
}

// NextToken is part of interface scanner.Tokenizer. At the end of input it
// returns tokens named scanner.EOF.
func (lx *Lexer) NextToken() lrkit.Token {
	empty := 0 // consecutive empty matches
	for lx.pos < len(lx.input) {
		mt := lx.dfas[lx.state]
		length, rule := lx.munch(mt)
		if length == 0 {
			empty++
		} else {
			empty = 0
		}
		if rule < 0 || empty > len(lx.dfas) {
			// no match, or empty matches cycling through lexer states
			lx.errorFn(&InputError{Line: lx.line, Char: lx.input[lx.pos]})
			lx.pos++
			empty = 0
			continue
		}
		tok, emit := lx.apply(mt.m.Rules[rule], length)
		if emit {
			tracer().Debugf("token %v", tok)
			return tok
		}
	}
	return scanner.MakeDefaultToken(scanner.EOF, lx.line, "")
}

// munch finds the longest match at the current position. On equal length the
// earliest rule wins, as encoded in the accept table. An empty match is
// found only if no rule matches a non-empty prefix.
func (lx *Lexer) munch(mt *matcher) (length int, rule int) {
	length, rule = 0, mt.m.Accept[0]
	state := 0
	for i := lx.pos; i < len(lx.input); i++ {
		next, ok := mt.next[state][lx.input[i]]
		if !ok {
			break
		}
		state = next
		if r := mt.m.Accept[state]; r >= 0 {
			length, rule = i-lx.pos+1, r
		}
	}
	return
}

// apply performs the actions of a rule for a match of the given length.
// VRATI_SE is applied first, then the token is created, then the line
// counter and lexer state change. A match which ends up empty has to switch
// the lexer state, otherwise the lexer would not advance.
func (lx *Lexer) apply(rule *Rule, length int) (scanner.DefaultToken, bool) {
	newState := lx.state
	newLine := lx.line
	for _, action := range rule.Actions {
		switch action.Kind {
		case GoBack:
			if action.N < length {
				length = action.N
			}
		case NewLine:
			newLine++
		case EnterState:
			for i, s := range lx.tables.States {
				if s == action.State {
					newState = i
				}
			}
		}
	}
	if length == 0 && newState == lx.state {
		lx.errorFn(&InputError{Line: lx.line, Char: lx.input[lx.pos]})
		lx.pos++
		return scanner.DefaultToken{}, false
	}
	lexeme := string(lx.input[lx.pos : lx.pos+length])
	tok := scanner.MakeDefaultToken(rule.Class, lx.line, lexeme)
	lx.pos += length
	lx.line = newLine
	lx.state = newState
	return tok, rule.Class != ""
}

// WriteTokens runs a lexer to the end of its input and writes the tokens in
// the form
//
//    CLASS line lexeme
//
// one per line. The end of input is not written.
func WriteTokens(w io.Writer, lx *Lexer) error {
	for tok := lx.NextToken(); tok.Name() != scanner.EOF; tok = lx.NextToken() {
		if _, err := fmt.Fprintf(w, "%s %d %s\n", tok.Name(), tok.Line(), tok.Lexeme()); err != nil {
			return err
		}
	}
	return nil
}
