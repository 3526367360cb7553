package lr

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SpecError is an error in a grammar spec, located by line.
type SpecError struct {
	Line  int
	Cause error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

// ReadGrammar reads a grammar spec. The format is line oriented:
//
//	%V <S> <A> <B>
//	%T a b c
//	%Syn c
//	<S>
//	 <A> <B> c
//	<A>
//	 a
//	 $
//
// %V declares the non-terminals, the first of which is the start symbol, %T
// declares the terminals and %Syn the synchronization terminals for error
// recovery. Non-terminal names are enclosed in angle brackets. A production
// group starts with a non-terminal on its own line, followed by one indented
// line per right hand side. A right hand side of just $ is an epsilon
// production. Productions are numbered in order of appearance, starting at 1.
func ReadGrammar(name string, r io.Reader) (*Grammar, error) {
	b := NewGrammarBuilder(name)
	nonterms := make(map[string]bool)
	terms := make(map[string]bool)
	var lhs string
	var haveV bool
	lineno := 0
	serr := func(format string, args ...interface{}) error {
		return &SpecError{Line: lineno, Cause: fmt.Errorf(format, args...)}
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		switch {
		case fields[0] == "%V":
			if len(fields) < 2 {
				return nil, serr("%%V needs at least a start symbol")
			}
			for _, A := range fields[1:] {
				if !isNonTerminalName(A) {
					return nil, serr("non-terminal %s must be enclosed in <...>", A)
				}
				nonterms[A] = true
			}
			b.Start(fields[1]).NonTerminals(fields[1:]...)
			haveV = true
		case fields[0] == "%T":
			for _, a := range fields[1:] {
				terms[a] = true
			}
			b.Terminals(fields[1:]...)
		case fields[0] == "%Syn":
			for _, a := range fields[1:] {
				if !terms[a] {
					return nil, serr("synchronization symbol %s is not a declared terminal", a)
				}
			}
			b.Sync(fields[1:]...)
		case line[0] != ' ' && line[0] != '\t':
			if !haveV {
				return nil, serr("production before %%V declaration")
			}
			if len(fields) != 1 || !nonterms[fields[0]] {
				return nil, serr("expected declared non-terminal, have %q", line)
			}
			lhs = fields[0]
		default:
			if lhs == "" {
				return nil, serr("right hand side without non-terminal")
			}
			rb := b.LHS(lhs)
			if len(fields) == 1 && fields[0] == EpsilonName {
				rb.Epsilon()
				continue
			}
			for _, X := range fields {
				switch {
				case nonterms[X]:
					rb.N(X)
				case terms[X]:
					rb.T(X)
				default:
					return nil, serr("undeclared symbol %s", X)
				}
			}
			rb.End()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if !haveV {
		return nil, &SpecError{Line: lineno, Cause: errors.New("missing %V declaration")}
	}
	g, err := b.Grammar()
	if err != nil {
		return nil, &SpecError{Line: lineno, Cause: err}
	}
	return g, nil
}

func isNonTerminalName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "<") && strings.HasSuffix(name, ">")
}
