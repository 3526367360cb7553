package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr"
)

// TokenStream is a tokenizer over tokens which have already been recognized,
// usually by a lexer run in a different process. Create one with NewTokenStream.
type TokenStream struct {
	tokens []DefaultToken
	pos    int
	Error  func(error)
}

var _ Tokenizer = (*TokenStream)(nil)

// NewTokenStream reads tokens in the form
//
//    NAME line text
//
// one per line, where text extends to the end of the line. Empty lines are
// ignored. Names have to be accepted by known, usually looking up a terminal
// of a grammar; pass nil to accept any name. The stream ends with an EOF token,
// which is appended by NewTokenStream and must not be part of the input.
func NewTokenStream(r io.Reader, known func(name string) bool) (*TokenStream, error) {
	ts := &TokenStream{Error: logError}
	sc := bufio.NewScanner(r)
	lineno, last := 0, 0
	for sc.Scan() {
		lineno++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(strings.TrimLeft(line, " \t"), " ", 3)
		if len(fields) < 2 {
			return nil, &lr.SpecError{Line: lineno, Cause: fmt.Errorf("expected NAME line text, have %q", line)}
		}
		if known != nil && !known(fields[0]) || fields[0] == EOF {
			return nil, &lr.SpecError{Line: lineno, Cause: fmt.Errorf("unknown terminal %s", fields[0])}
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, &lr.SpecError{Line: lineno, Cause: fmt.Errorf("invalid line number %q", fields[1])}
		}
		var text string
		if len(fields) == 3 {
			text = fields[2]
		}
		ts.tokens = append(ts.tokens, MakeDefaultToken(fields[0], n, text))
		last = n
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	ts.tokens = append(ts.tokens, MakeDefaultToken(EOF, last, ""))
	tracer().Debugf("token stream with %d tokens", len(ts.tokens))
	return ts, nil
}

// Terminals returns a function to check names against the terminals of a grammar.
func Terminals(g *lr.Grammar) func(string) bool {
	return func(name string) bool {
		return g.Symbols().Resolve(name, lr.Terminal) != nil
	}
}

// NextToken is part of the Tokenizer interface. After the last token it
// keeps returning the EOF token.
func (ts *TokenStream) NextToken() lrkit.Token {
	tok := ts.tokens[ts.pos]
	if ts.pos < len(ts.tokens)-1 {
		ts.pos++
	}
	return tok
}

// SetErrorHandler is part of the Tokenizer interface. Token streams do not
// produce errors after construction.
func (ts *TokenStream) SetErrorHandler(h func(error)) {
	if h == nil {
		h = logError
	}
	ts.Error = h
}

// Tokens returns a tokenizer over a fixed list of tokens, with EOF appended.
func Tokens(tokens ...DefaultToken) *TokenStream {
	ts := &TokenStream{Error: logError}
	ts.tokens = append(ts.tokens, tokens...)
	last := 0
	if len(tokens) > 0 {
		last = tokens[len(tokens)-1].Line()
	}
	ts.tokens = append(ts.tokens, MakeDefaultToken(EOF, last, ""))
	return ts
}
