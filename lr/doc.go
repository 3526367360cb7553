/*
Package lr implements grammars and the construction of LR(1) parser tables.

Building a Grammar

Grammars are specified using a grammar builder object. Clients add
rules, consisting of non-terminal symbols and terminals. Grammars may
contain epsilon-productions.

Example:

    b := lr.NewGrammarBuilder("G")
    b.LHS("S").N("A").T("a").End()     // S  ->  A a
    b.LHS("A").N("B").N("D").End()     // A  ->  B D
    b.LHS("B").T("b").End()            // B  ->  b
    b.LHS("B").Epsilon()               // B  ->
    b.LHS("D").T("d").End()            // D  ->  d
    b.LHS("D").Epsilon()               // D  ->
    g, err := b.Grammar()

This results in the following trivial grammar:

   g.Dump()

   0: [#start] ::= [S]
   1: [S] ::= [A a]
   2: [A] ::= [B D]
   3: [B] ::= [b]
   4: [B] ::= []
   5: [D] ::= [d]
   6: [D] ::= []

Production 0 is the augmented production, with the start symbol as its only
RHS symbol. Grammars may also be read from a grammar spec, see ReadGrammar.

Every grammar has its own symbol table. Symbols are interned by name and kind,
so comparing symbols by identity is the same as comparing them by value.
Besides the grammar's symbols, each table holds three special symbols:
epsilon ($), end-of-stream (#eof) and the augmented start symbol (#start).

Static Grammar Analysis

After the grammar is complete, it has to be analysed. For this end, the
grammar is subjected to an LRAnalysis object, which determines all nullable
non-terminals and computes FIRST sets for all symbols and for every suffix of
every production's RHS. Sets of terminals are bitsets.

    ga, err := lr.Analysis(g)  // analyser for grammar above
    g.EachNonTerminal(func(A *lr.Symbol) {
        fmt.Printf("FIRST(%s) = %v\n", A, ga.First(A))
    })

    // Output:
    FIRST(#start) = [a b d]
    FIRST(A) = [b d]
    FIRST(B) = [b]
    FIRST(D) = [d]
    FIRST(S) = [a b d]

Parser Construction

Using grammar analysis as input, a bottom-up parser can be constructed.
First a graph of LR(1) items is built, with epsilon edges from items to the
initial items of the non-terminal after the dot. Subset construction (package
automaton) turns it into the LR(1) automaton, which is then transformed into a
GOTO table and an ACTION table. The automaton will not be thrown away,
but is made available to the client. This is intended
for debugging purposes. It can be exported to Graphviz's Dot-format.

Example:

    lrgen := lr.NewTableGenerator(ga)  // ga is a GrammarAnalysis, see above
    err = lrgen.CreateTables()         // construct LR parser tables
    tables := lrgen.Tables()           // hand over to a parser

Table derivation resolves conflicts deterministically: items are visited in
item order (incomplete before complete, then by production and dot), and the
first action entered for a state and terminal wins. In effect shifts win over
reductions, and reductions by earlier productions win over later ones.
Resolved conflicts are available from the generator and logged as warnings.

Tables may be saved to JSON and loaded again; saving is reproducible to the
byte for the same grammar.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.lr'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.lr")
}
