/*
Package lexmach builds tokenizers for lrkit parsers with the lexmachine
scanner generator (https://github.com/timtadh/lexmachine). It is the
quickest way to get from a grammar to a working parser, when there is no
need for generated lexer tables (see package lex).

Token names have to match the terminals of the grammar. Clients describe the
tokens with patterns in lexmachine syntax, give literals and keywords, and
may attach a conversion for token values:

	lexer, err := lexmach.Compile(func(r *lexmach.Rules) {
		r.Literals("+", "*", "(", ")")
		r.Keywords("let")
		r.Value(`[0-9]+`, "number", func(s string) (interface{}, error) {
			return strconv.Atoi(s)
		})
		r.Token(`[a-z]+`, "id")
		r.Skip(`( |\t|\n)+`)
	})
	err = lexer.Check(scanner.Terminals(tables.G))

A lexer creates a scanner.Tokenizer per input. Tokens carry their line;
converted values are available through scanner.Valuer and end up in the
leaves of the parse tree:

	scan, err := lexer.Scanner("let x * (y + 2)")
	p := lr1.NewParser(tables)
	accepted, err := p.Parse(scan)
	v := leaf.Value()   // for a leaf of p.ParseTree()

Input no pattern matches is reported to the scanner's error handler and
skipped, thus the parser sees the remaining tokens.

________________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexmach
