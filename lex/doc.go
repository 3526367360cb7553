/*
Package lex generates table driven lexers from a lexical specification and
runs them.

Lexical Specifications

A lexical specification is a line oriented text. It starts with definitions
of named regular expressions, followed by the declaration of the lexer states,
the declaration of the lexical classes, and finally the lexer rules:

    {digit} 0|1|2|3|4|5|6|7|8|9
    {number} {digit}{digit}*
    %X S_init S_comment
    %L NUM PLUS
    <S_init>{number}
    {
    NUM
    }
    <S_init>\n
    {
    -
    NOVI_REDAK
    }

Named expressions may reference expressions defined before them. The first
lexer state is the initial state. A rule names the lexer state it is active in
and a regular expression (see package regex), followed by a block giving the
lexical class of the match, or '-' for none, and a list of actions:

    NOVI_REDAK         increment the line counter
    UDJI_U_STANJE S    switch to lexer state S
    VRATI_SE n         keep the first n characters of the match, return the
                       rest to the input

Lexer Generation

For every lexer state, the rules' expressions are compiled into epsilon-NFAs,
joined under a fresh start state and determinized (package automaton). A
deterministic state accepts rule k if its alias set contains the accepting
state of rule k. If more than one rule accepts, the earliest rule wins.

    spec, err := lex.ReadSpec(r)
    tables, err := lex.Generate(spec)
    err = tables.Save(w)

Tables are saved as JSON. Saving is reproducible to the byte.

Running a Lexer

A lexer scans its input using maximal munch: in the current lexer state it
looks for the longest prefix of the remaining input which is accepted by
a rule. If no rule matches, one character is skipped and reported as an error.
Actions are executed in a fixed order: VRATI_SE first, then the token is
emitted, then NOVI_REDAK and UDJI_U_STANJE take effect.

Lexers implement scanner.Tokenizer and may be plugged into an LR(1) parser
directly.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lex

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.lex'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.lex")
}
