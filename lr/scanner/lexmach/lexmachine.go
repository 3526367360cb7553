package lexmach

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/npillmayer/schuko/tracing"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'lrkit.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.scanner")
}

// Converter computes the value of a token from its lexeme.
type Converter func(lexeme string) (interface{}, error)

// Rules collects the patterns of a lexer. Patterns are in lexmachine syntax.
// If more than one pattern matches the longest prefix of the input, the one
// added first wins.
type Rules struct {
	lexer *lexmachine.Lexer
	names []string       // token names, indexed by lexmachine token type
	types map[string]int // token name -> lexmachine token type
}

func (r *Rules) typeOf(name string) int {
	if typ, ok := r.types[name]; ok {
		return typ
	}
	r.types[name] = len(r.names)
	r.names = append(r.names, name)
	return r.types[name]
}

// Token adds a pattern producing tokens with the given name.
func (r *Rules) Token(pattern, name string) {
	r.Value(pattern, name, nil)
}

// Value adds a pattern producing tokens with the given name, carrying a value
// computed by convert. A conversion error is reported as a scanner error.
func (r *Rules) Value(pattern, name string, convert Converter) {
	typ := r.typeOf(name)
	r.lexer.Add([]byte(pattern), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		tok := s.Token(typ, nil, m)
		if convert != nil {
			v, err := convert(string(m.Bytes))
			if err != nil {
				return nil, fmt.Errorf("line %d: cannot convert %q: %w", m.StartLine, m.Bytes, err)
			}
			tok.Value = v
		}
		return tok, nil
	})
}

// Skip adds a pattern for input to ignore, e.g. white space or comments.
func (r *Rules) Skip(pattern string) {
	r.lexer.Add([]byte(pattern), func(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
		return nil, nil
	})
}

// Literals adds literal strings, e.g. operators. Each literal produces tokens
// named by itself.
func (r *Rules) Literals(literals ...string) {
	for _, lit := range literals {
		r.Token(`\`+strings.Join(strings.Split(lit, ""), `\`), lit)
	}
}

// Keywords adds keywords. Each keyword produces tokens named by itself. Add
// keywords before patterns for identifiers.
func (r *Rules) Keywords(keywords ...string) {
	for _, kw := range keywords {
		r.Token(kw, kw)
	}
}

// Lexer is a compiled lexmachine lexer producing lrkit tokens.
type Lexer struct {
	lm    *lexmachine.Lexer
	names []string
}

// Compile creates a lexer from the rules added by define. It returns an error
// if lexmachine fails to compile its DFA.
func Compile(define func(*Rules)) (*Lexer, error) {
	r := &Rules{lexer: lexmachine.NewLexer(), types: make(map[string]int)}
	define(r)
	if err := r.lexer.Compile(); err != nil {
		tracer().Errorf("error compiling lexmachine DFA: %v", err)
		return nil, err
	}
	tracer().Debugf("lexmachine lexer for %d token names", len(r.names))
	return &Lexer{lm: r.lexer, names: r.names}, nil
}

// TokenNames returns the names of all tokens the lexer may produce, sorted.
func (lx *Lexer) TokenNames() []string {
	names := append([]string{}, lx.names...)
	sort.Strings(names)
	return names
}

// Check verifies that every token name is known, usually by being a terminal
// of a grammar (see scanner.Terminals).
func (lx *Lexer) Check(known func(string) bool) error {
	var unknown []string
	for _, name := range lx.TokenNames() {
		if !known(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("tokens without terminal: %s", strings.Join(unknown, " "))
	}
	return nil
}

// Scanner creates a tokenizer for an input string.
func (lx *Lexer) Scanner(input string) (*Scanner, error) {
	s, err := lx.lm.Scanner([]byte(input))
	if err != nil {
		return nil, err
	}
	return &Scanner{scanner: s, names: lx.names, errorFn: logError, line: 1}, nil
}

// Scanner tokenizes a single input. It implements scanner.Tokenizer and
// delivers scanner.DefaultTokens, with the value set for tokens from
// Rules.Value patterns.
type Scanner struct {
	scanner *lexmachine.Scanner
	names   []string
	errorFn func(error)
	line    int // line of the last token
}

var _ scanner.Tokenizer = (*Scanner)(nil)

// SetErrorHandler is part of interface scanner.Tokenizer.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	s.errorFn = h
}

func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// NextToken is part of interface scanner.Tokenizer. Input no pattern matches
// is reported to the error handler and skipped. At the end of input it
// returns tokens named scanner.EOF, carrying the line of the last token.
func (s *Scanner) NextToken() lrkit.Token {
	for {
		tok, err, eof := s.scanner.Next()
		if eof {
			return scanner.MakeDefaultToken(scanner.EOF, s.line, "")
		}
		if err != nil {
			s.errorFn(err)
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				s.scanner.TC = ui.FailTC
			}
			continue
		}
		lt := tok.(*lexmachine.Token)
		s.line = lt.StartLine
		token := scanner.MakeDefaultToken(s.names[lt.Type], lt.StartLine, string(lt.Lexeme))
		token.Val = lt.Value
		tracer().Debugf("lexmachine token %v", token)
		return token
	}
}
