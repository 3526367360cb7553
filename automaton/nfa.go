package automaton

import (
	"golang.org/x/exp/constraints"
)

// ENFA is an epsilon-NFA fragment with a single start and a single accept
// state, as produced by Thompson construction.
type ENFA[A constraints.Ordered] struct {
	Graph  *Graph[A]
	Start  State
	Accept State
}

// Accepts simulates e directly on a word of symbols.
func (e *ENFA[A]) Accepts(word []A) bool {
	current := e.Graph.EpsilonClosure(e.Start)
	for _, a := range word {
		var next []State
		for _, s := range current {
			next = append(next, e.Graph.Targets(s, a)...)
		}
		if len(next) == 0 {
			return false
		}
		current = e.Graph.EpsilonClosure(next...)
	}
	for _, s := range current {
		if s == e.Accept {
			return true
		}
	}
	return false
}

// ToNFA removes the epsilon edges of e.
func (e *ENFA[A]) ToNFA() *NFA[A] {
	return RemoveEpsilons(e.Graph, e.Start, func(s State) bool { return s == e.Accept })
}

// NFA is a non-deterministic automaton without epsilon edges. It starts in a
// set of states.
type NFA[A constraints.Ordered] struct {
	Graph  *Graph[A]
	Start  []State
	accept map[State]bool
}

// IsAccepting is true for the accepting states of n.
func (n *NFA[A]) IsAccepting(s State) bool {
	return n.accept[s]
}

// Accepts simulates n on a word of symbols.
func (n *NFA[A]) Accepts(word []A) bool {
	current := n.Start
	for _, a := range word {
		set := newSet(CompareStates)
		for _, s := range current {
			for _, t := range n.Graph.Targets(s, a) {
				set.Add(t)
			}
		}
		if set.Empty() {
			return false
		}
		current = values[State](set)
	}
	for _, s := range current {
		if n.accept[s] {
			return true
		}
	}
	return false
}

// ToDFA determinizes n. The alias sets of the result are sets of states of n.
func (n *NFA[A]) ToDFA() *DFA[State, A] {
	return Determinize[State, A](n.Graph, n.Start, n.IsAccepting, CompareStates, Compare[A])
}

// RemoveEpsilons creates an NFA without epsilon edges, equivalent to the
// epsilon-NFA given by g, start and the accepting predicate. States keep their IDs.
//
// The NFA starts in the epsilon closure of start. For every state q and symbol a,
// it has transitions to the epsilon closure of all targets of a from the epsilon
// closure of q. Accepting states are the accepting states of g, plus start if
// its closure contains an accepting state.
func RemoveEpsilons[A constraints.Ordered](g *Graph[A], start State,
	accepting func(State) bool) *NFA[A] {
	//
	nfa := &NFA[A]{
		Graph:  NewGraph[A](),
		Start:  g.EpsilonClosure(start),
		accept: make(map[State]bool),
	}
	for i := 0; i < g.Size(); i++ {
		nfa.Graph.NewState()
	}
	for q := State(0); int(q) < g.Size(); q++ {
		if accepting(q) {
			nfa.accept[q] = true
		}
		moves := make(map[A][]State)
		for _, p := range g.EpsilonClosure(q) {
			for a, targets := range g.TransitionsFrom(p) {
				moves[a] = append(moves[a], targets...)
			}
		}
		for a, targets := range moves {
			for _, t := range g.EpsilonClosure(targets...) {
				nfa.Graph.AddTransition(q, a, t)
			}
		}
	}
	for _, s := range nfa.Start {
		if accepting(s) {
			nfa.accept[start] = true
			break
		}
	}
	tracer().Debugf("removed epsilons from graph of %d states", g.Size())
	return nfa
}
