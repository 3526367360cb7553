package lrkit

import "fmt"

// --- A general purpose interface for tokens --------------------------------

// Tokens represent input tokens. They are usually produced by a lexer and
// reflect terminals in a language.
//
// An example would be a token for an identifier:
//
//    Name    = "IDN"       // name of the terminal symbol (lexical class)
//    Line    = 12          // source line the lexeme appeared on
//    Lexeme  = "counter"   // lexeme as it appeared in the input stream
//
type Token interface {
	Name() string
	Line() int
	Lexeme() string
}

// --- Spans ------------------------------------------------------------

// Span is a small type for capturing a run of source lines. For every
// terminal and non-terminal, a parse tree will track which input lines
// this symbol covers. A span denotes a start line and the line just
// behind the end.
type Span [2]uint64 // (x…y)

// LineSpan creates the span of a single line.
func LineSpan(line int) Span {
	if line < 0 {
		return Span{}
	}
	return Span{uint64(line), uint64(line) + 1}
}

// From returns the start value of a span.
func (s Span) From() uint64 {
	return s[0]
}

// To returns the end value of a span.
func (s Span) To() uint64 {
	return s[1]
}

// Len returns the length of (x…y)
func (s Span) Len() uint64 {
	return s[1] - s[0]
}

// IsNull is true for the empty span, used e.g. for epsilon-derived nodes.
func (s Span) IsNull() bool {
	return s == Span{}
}

// Extend returns the smallest span covering s and other. Null spans are neutral.
func (s Span) Extend(other Span) Span {
	if s.IsNull() {
		return other
	}
	if other.IsNull() {
		return s
	}
	if other[0] < s[0] {
		s[0] = other[0]
	}
	if other[1] > s[1] {
		s[1] = other[1]
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("(%d…%d)", s[0], s[1])
}
