package lr

import (
	"fmt"

	"github.com/npillmayer/lrkit/automaton"
	"golang.org/x/tools/container/intsets"
)

// === Item Graph ============================================================

// Refer to "Crafting A Compiler" by Charles N. Fisher & Richard J. LeBlanc, Jr.
// Section 6.3 LR(1) Parsing
//
// Instead of computing closures and goto sets of item sets directly, we build
// a non-deterministic automaton over single items. An item with a symbol X
// after the dot has an edge labeled X to its advanced item. If X is a
// non-terminal, the item has epsilon edges to the initial items of all
// productions for X. Subset construction on this graph yields the LR(1)
// automaton, with each deterministic state aliasing its active items.

// itemGraph is the item automaton. Edges are labeled with symbol serials.
type itemGraph struct {
	g     *automaton.Graph[int]
	items []*Item // items by graph state
	seed  automaton.State
}

func (ig *itemGraph) add(item *Item) automaton.State {
	s := ig.g.NewState()
	ig.items = append(ig.items, item)
	return s
}

// propagation is a lookahead flow between items: the target receives a
// spontaneous lookahead, and the lookahead of the source if pass is set.
type propagation struct {
	from, to    automaton.State
	spontaneous *intsets.Sparse
	pass        bool
}

// buildItemGraph builds the item graph with items identified by (production, dot).
// Lookaheads of all paths reaching an item are unioned. Construction happens
// in two phases: first the graph structure is built breadth first, then
// lookaheads are propagated along the edges until they converge.
func (ga *LRAnalysis) buildItemGraph() (*itemGraph, error) {
	g := ga.g
	st := g.symbols
	ig := &itemGraph{g: automaton.NewGraph[int]()}
	type key struct{ prod, dot int }
	index := make(map[key]automaton.State)
	node := func(p *Production, dot int) (automaton.State, bool) {
		if s, ok := index[key{p.Serial, dot}]; ok {
			return s, false
		}
		s := ig.add(&Item{prod: p, dot: dot, la: &intsets.Sparse{}})
		index[key{p.Serial, dot}] = s
		return s, true
	}
	var props []propagation
	ig.seed, _ = node(g.prods[0], 0)
	ig.items[ig.seed].la.Insert(st.bit(st.EndOfStream()))
	queue := []automaton.State{ig.seed}
	for k := 0; k < len(queue); k++ {
		n := queue[k]
		item := ig.items[n]
		if item.IsComplete() {
			continue
		}
		X := item.PeekSymbol()
		next, isnew := node(item.prod, item.dot+1)
		ig.g.AddTransition(n, X.serial, next)
		props = append(props, propagation{from: n, to: next, pass: true})
		if isnew {
			queue = append(queue, next)
		}
		if X.IsTerminal() {
			continue
		}
		spontaneous := item.prod.startsAt[item.dot+1]
		pass := item.prod.IsEmptyFrom(item.dot + 1)
		for _, p := range g.ProductionsFor(X) {
			t, isnew := node(p, 0)
			ig.g.AddEpsilon(n, t)
			props = append(props, propagation{from: n, to: t, spontaneous: spontaneous, pass: pass})
			if isnew {
				queue = append(queue, t)
			}
		}
	}
	// every round adds at least one terminal to some lookahead
	bound := len(ig.items)*len(st.Terminals()) + 1
	rounds := 0
	for changed := true; changed; rounds++ {
		if rounds > bound {
			return nil, inconsistency("lookaheads do not converge after %d rounds", rounds)
		}
		changed = false
		for _, pr := range props {
			la := ig.items[pr.to].la
			if pr.spontaneous != nil && la.UnionWith(pr.spontaneous) {
				changed = true
			}
			if pr.pass && la.UnionWith(ig.items[pr.from].la) {
				changed = true
			}
		}
	}
	tracer().Debugf("item graph has %d items, lookaheads converged after %d rounds",
		len(ig.items), rounds)
	return ig, nil
}

// buildCanonicalItemGraph builds the item graph with items identified by
// (production, dot, lookahead). Every distinct lookahead gets an item of its own,
// which results in the canonical LR(1) collection, at the cost of larger graphs.
func (ga *LRAnalysis) buildCanonicalItemGraph() (*itemGraph, error) {
	g := ga.g
	st := g.symbols
	ig := &itemGraph{g: automaton.NewGraph[int]()}
	index := make(map[string]automaton.State)
	node := func(item *Item) (automaton.State, bool) {
		k := fmt.Sprintf("%d.%d.%s", item.prod.Serial, item.dot, item.la.String())
		if s, ok := index[k]; ok {
			return s, false
		}
		s := ig.add(item)
		index[k] = s
		return s, true
	}
	seed := &Item{prod: g.prods[0], la: &intsets.Sparse{}}
	seed.la.Insert(st.bit(st.EndOfStream()))
	ig.seed, _ = node(seed)
	queue := []automaton.State{ig.seed}
	for k := 0; k < len(queue); k++ {
		n := queue[k]
		item := ig.items[n]
		if item.IsComplete() {
			continue
		}
		X := item.PeekSymbol()
		next, isnew := node(item.Advance())
		ig.g.AddTransition(n, X.serial, next)
		if isnew {
			queue = append(queue, next)
		}
		if X.IsTerminal() {
			continue
		}
		la := item.expansionLookahead()
		for _, p := range g.ProductionsFor(X) {
			initial := &Item{prod: p, la: &intsets.Sparse{}}
			initial.la.Copy(la)
			t, isnew := node(initial)
			ig.g.AddEpsilon(n, t)
			if isnew {
				queue = append(queue, t)
			}
		}
	}
	tracer().Debugf("canonical item graph has %d items", len(ig.items))
	return ig, nil
}

// determinize performs subset construction on the item graph. A deterministic
// state is accepting if it contains the completed augmented item.
func (ig *itemGraph) determinize() *automaton.DFA[automaton.State, int] {
	accepting := func(s automaton.State) bool {
		item := ig.items[s]
		return item.prod.Serial == 0 && item.IsComplete()
	}
	return automaton.Determinize[automaton.State, int](ig.g, []automaton.State{ig.seed},
		accepting, automaton.CompareStates, automaton.Compare[int])
}
