/*
Package scanner defines an interface for scanners to be used with parsers of package lr.

Three scanner implementations are provided: (1) a thin wrapper over the Go std lib
'text/scanner', (2) a token stream reading the output of a lexer from a
text, and (3) an adapter for lexmachine, living in sub-package `lexmach`. Package
lex provides another one, driven by generated lexer tables.

Tokens are identified by name. A name has to match a terminal of the grammar the
parser has been built for. At the end of input every tokenizer delivers tokens
named EOF, as often as it is asked.

Tokens for literals may carry a value. The Go tokenizer converts numbers,
strings and characters; clients query it through interface Valuer.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package scanner

import (
	"fmt"
	"io"
	"strconv"
	"text/scanner"

	"github.com/npillmayer/lrkit"
	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.scanner'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.scanner")
}

// EOF is the name of the end-of-input token.
const EOF = lr.EndOfStreamName

// Tokenizer is a scanner interface.
type Tokenizer interface {
	NextToken() lrkit.Token
	SetErrorHandler(func(error))
}

// DefaultTokenizer is a default implementation, backed by scanner.Scanner.
// Create one with GoTokenizer.
//
// Operators and punctuation produce tokens named by their character, e.g.
// "+" or "(". Other tokens are named after their class: Ident, Int, Float,
// Char, String, RawString and Comment.
type DefaultTokenizer struct {
	scanner.Scanner
	lastToken    rune        // last token this scanner has produced
	Error        func(error) // error handler
	unifyStrings bool        // convert single chars to strings
}

var _ Tokenizer = (*DefaultTokenizer)(nil)

// Default error reporting function for scanners
func logError(e error) {
	tracer().Errorf("scanner error: " + e.Error())
}

// GoTokenizer creates a scanner/tokenizer accepting tokens similar to the Go language.
func GoTokenizer(sourceID string, input io.Reader, opts ...Option) *DefaultTokenizer {
	t := &DefaultTokenizer{}
	t.Error = logError
	t.Init(input)
	t.Filename = sourceID
	t.Scanner.Error = func(s *scanner.Scanner, msg string) {
		t.Error(fmt.Errorf("%s: %s", s.Position, msg))
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetErrorHandler sets an error handler for the scanner.
func (t *DefaultTokenizer) SetErrorHandler(h func(error)) {
	if h == nil {
		t.Error = logError
		return
	}
	t.Error = h
}

// NextToken is part of the Tokenizer interface.
func (t *DefaultTokenizer) NextToken() lrkit.Token {
	t.lastToken = t.Scan()
	if t.lastToken == scanner.EOF {
		tracer().Debugf("DefaultTokenizer reached end of input")
		return MakeDefaultToken(EOF, t.Position.Line, "")
	}
	text := t.TokenText()
	val := literalValue(t.lastToken, text)
	if t.unifyStrings &&
		(t.lastToken == scanner.RawString || t.lastToken == scanner.Char) {
		t.lastToken = scanner.String
	}
	token := MakeDefaultToken(TokenName(t.lastToken), t.Position.Line, text)
	token.Val = val
	return token
}

// literalValue converts the text of a literal token. Other tokens have no value.
func literalValue(tok rune, text string) interface{} {
	switch tok {
	case scanner.Int:
		if n, err := strconv.ParseInt(text, 0, 64); err == nil {
			return n
		}
	case scanner.Float:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	case scanner.String, scanner.RawString, scanner.Char:
		if s, err := strconv.Unquote(text); err == nil {
			return s
		}
	}
	return nil
}

// TokenName returns the token name for a token class of text/scanner.
func TokenName(tok rune) string {
	if tok < 0 {
		if tok == scanner.EOF {
			return EOF
		}
		return scanner.TokenString(tok)
	}
	return string(tok)
}

// --- Default tokens --------------------------------------------------------

// Valuer is implemented by tokens which carry a value in addition to their
// lexeme, e.g. the number of a numeric literal.
type Valuer interface {
	Value() interface{}
}

// DefaultToken is a very unsophisticated token type, used as default for the Go
// tokenizer, for token streams as well as the LexMachine scanner.
type DefaultToken struct {
	name   string
	line   int
	lexeme string
	Val    interface{} // value of a literal, or nil
}

var _ lrkit.Token = DefaultToken{}
var _ Valuer = DefaultToken{}

// MakeDefaultToken creates a token.
func MakeDefaultToken(name string, line int, lexeme string) DefaultToken {
	return DefaultToken{
		name:   name,
		line:   line,
		lexeme: lexeme,
	}
}

// Name is part of interface lrkit.Token.
func (t DefaultToken) Name() string {
	return t.name
}

// Line is part of interface lrkit.Token.
func (t DefaultToken) Line() int {
	return t.line
}

// Lexeme is part of interface lrkit.Token.
func (t DefaultToken) Lexeme() string {
	return t.lexeme
}

// Value is part of interface Valuer.
func (t DefaultToken) Value() interface{} {
	return t.Val
}

func (t DefaultToken) String() string {
	return fmt.Sprintf("%s %d %s", t.name, t.line, t.lexeme)
}

// --- Scanner options for the default (Go) tokenizer ---------------------------

// Option configures a default tokenizer.
type Option func(p *DefaultTokenizer)

// SkipComments sets or clears mode-flag SkipComments. Comments are skipped by
// default; with SkipComments(false) they are delivered as tokens named Comment.
func SkipComments(b bool) Option {
	return func(t *DefaultTokenizer) {
		if b {
			t.Mode |= scanner.SkipComments
		} else {
			t.Mode &^= scanner.SkipComments
		}
	}
}

// UnifyStrings sets or clears option UnifyStrings:
// treat raw strings and single chars as strings.
func UnifyStrings(b bool) Option {
	return func(t *DefaultTokenizer) {
		t.unifyStrings = b
	}
}
