/*
Package automaton implements finite automata as they are needed for lexer and
parser construction.

Automata are built incrementally on a Graph, an arena of integer states with
symbol-labeled and epsilon transitions. State IDs are owned by the graph they
were created on; graphs never share a counter. To combine graphs, a client
merges one into the other and receives the offset of the absorbed states.

    g := automaton.NewGraph[rune]()
    s0, s1 := g.NewState(), g.NewState()
    g.AddTransition(s0, 'a', s1)
    g.AddEpsilon(s1, s0)

Closure and Subset Construction

Epsilon closure and subset construction are generic over the state type and the
symbol type. The same routine determinizes character automata for the lexer and
the LR(1) item graph of package lr. Every deterministic state remembers the set
of original states it has been built from (its alias set), which is how clients
recover accepting rules or active LR items.

    dfa := automaton.Determinize[automaton.State, rune](g, start, isAccept,
        automaton.CompareStates, automaton.Compare[rune])

Deterministic states are numbered in breadth-first discovery order, with state 0
being the start state. Symbols are explored in ascending order, therefore the
numbering is a deterministic function of the input automaton.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package automaton

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrkit.automaton'.
func tracer() tracing.Trace {
	return tracing.Select("lrkit.automaton")
}
