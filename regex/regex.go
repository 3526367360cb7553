/*
Package regex compiles regular expressions into epsilon-NFAs, using Thompson
construction.

The syntax is deliberately small. A pattern is a sequence of terms, where a term is

■ a literal character,

■ an escaped character: \t (tab), \n (newline), \_ (space), \0 (NUL), or a
backslash followed by any other character, which stands for that character,

■ the epsilon marker $,

■ a group (...),

■ a named reference {name}.

Terms are concatenated by adjacency and may be followed by a Kleene star *.
Alternatives are separated by | on the top level of a group.

Named expressions have to be registered before they are referenced. References are
resolved by textual substitution: {name} is replaced by the parenthesized
expansion of name before Thompson construction starts.

    c := regex.NewCompiler()
    c.Register("digit", "0|1|2|3|4|5|6|7|8|9")
    enfa, err := c.Compile("{digit}{digit}*")

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package regex

import (
	"fmt"
	"strings"

	"github.com/npillmayer/lrkit/automaton"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.regex'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.regex")
}

// Epsilon is the pattern character denoting the empty word.
const Epsilon = '$'

// PatternError is returned for malformed patterns. A pattern which produced an
// error must not be used any further.
type PatternError struct {
	Pattern string // pattern as given by the client
	Pos     int    // rune position of the error, -1 if unknown
	Msg     string
}

func (e *PatternError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Msg)
	}
	return fmt.Sprintf("pattern %q at %d: %s", e.Pattern, e.Pos, e.Msg)
}

// Compiler compiles patterns and keeps track of named expressions.
type Compiler struct {
	expansions map[string]string               // name -> expanded pattern
	fragments  map[string]*automaton.ENFA[rune] // name -> compiled fragment
}

// NewCompiler creates a compiler without any named expressions.
func NewCompiler() *Compiler {
	return &Compiler{
		expansions: make(map[string]string),
		fragments:  make(map[string]*automaton.ENFA[rune]),
	}
}

// Register compiles pattern and stores it under name. pattern may reference
// expressions registered earlier. Registering a name twice replaces the
// earlier definition for all subsequent references.
func (c *Compiler) Register(name, pattern string) error {
	expanded, err := c.Expand(pattern)
	if err != nil {
		return err
	}
	enfa, err := compile(expanded, pattern)
	if err != nil {
		return err
	}
	c.expansions[name] = expanded
	c.fragments[name] = enfa
	tracer().Debugf("registered {%s} = %s", name, expanded)
	return nil
}

// Fragment returns the compiled fragment of a named expression.
func (c *Compiler) Fragment(name string) (*automaton.ENFA[rune], bool) {
	enfa, ok := c.fragments[name]
	return enfa, ok
}

// Compile compiles a pattern into an epsilon-NFA. Every call creates a new graph.
func (c *Compiler) Compile(pattern string) (*automaton.ENFA[rune], error) {
	expanded, err := c.Expand(pattern)
	if err != nil {
		return nil, err
	}
	return compile(expanded, pattern)
}

// Expand substitutes every named reference {name} in pattern by the
// parenthesized expansion of name.
func (c *Compiler) Expand(pattern string) (string, error) {
	var b strings.Builder
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '{' || !IsOperator(runes, i) {
			b.WriteRune(runes[i])
			continue
		}
		close := findCloser(runes, '}', i+1)
		if close < 0 {
			return "", &PatternError{Pattern: pattern, Pos: i, Msg: "unterminated reference"}
		}
		name := string(runes[i+1 : close])
		expansion, ok := c.expansions[name]
		if !ok {
			return "", &PatternError{Pattern: pattern, Pos: i, Msg: "unknown reference {" + name + "}"}
		}
		b.WriteRune('(')
		b.WriteString(expansion)
		b.WriteRune(')')
		i = close
	}
	return b.String(), nil
}

// IsOperator is true if the character at position i of a pattern is not escaped,
// i.e. it is preceded by an even number of consecutive backslashes.
func IsOperator(pattern []rune, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && pattern[j] == '\\'; j-- {
		n++
	}
	return n%2 == 0
}

func findCloser(pattern []rune, closer rune, from int) int {
	for i := from; i < len(pattern); i++ {
		if pattern[i] == closer && IsOperator(pattern, i) {
			return i
		}
	}
	return -1
}

// Unescape returns the character denoted by a backslash followed by r.
func Unescape(r rune) rune {
	switch r {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case '_':
		return ' '
	case '0':
		return 0
	}
	return r
}
