/*
Command lrrepl provides an interactive command line tool for an expression
grammar. Every input line is tokenized, parsed with an LR(1) parser, and the
resulting parse tree is printed. lrrepl serves as a sandbox for experiments with
the parser runtime and its error recovery.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/

package main

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.lr'
func tracer() tracing.Trace {
	return tracing.Select("lrkit.lr")
}
