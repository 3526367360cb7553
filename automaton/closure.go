package automaton

import (
	"fmt"
	"slices"
	"strings"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
)

// Source is the view the closure engine has of a non-deterministic automaton.
// States and symbols are type parameters, thus the same routines serve character
// automata and LR item graphs.
type Source[S comparable, A comparable] interface {
	TransitionsFrom(s S) map[A][]S
	EpsilonsFrom(s S) []S
}

// === Epsilon Closure =======================================================

// Closure computes epsilon closures over an epsilon-edge function and memoizes
// them per state. The underlying automaton must not change while a Closure is
// in use.
type Closure[S comparable] struct {
	epsilons func(S) []S
	cmp      func(S, S) int
	memo     map[S][]S
}

// NewClosure creates a closure calculator for the epsilon edges given by epsilons.
// cmp defines the order of states within closure sets.
func NewClosure[S comparable](epsilons func(S) []S, cmp func(S, S) int) *Closure[S] {
	return &Closure[S]{
		epsilons: epsilons,
		cmp:      cmp,
		memo:     make(map[S][]S),
	}
}

// Of returns the epsilon closure of a set of states, ordered by cmp and free of
// duplicates. Of is idempotent: Of(Of(S)...) equals Of(S...).
func (c *Closure[S]) Of(states ...S) []S {
	if len(states) == 1 {
		return c.single(states[0])
	}
	set := newSet(c.cmp)
	for _, s := range states {
		for _, t := range c.single(s) {
			set.Add(t)
		}
	}
	return values[S](set)
}

// single computes the closure of one state. States already visited in this
// computation are marked and never expanded twice, which makes the computation
// safe for epsilon cycles. States with a memoized closure are not expanded
// either; their closure is unioned in as a whole.
func (c *Closure[S]) single(s S) []S {
	if cl, ok := c.memo[s]; ok {
		return cl
	}
	set := newSet(c.cmp)
	computing := map[S]bool{s: true}
	stack := []S{s}
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cl, ok := c.memo[u]; ok && u != s {
			for _, t := range cl {
				set.Add(t)
			}
			continue
		}
		set.Add(u)
		for _, t := range c.epsilons(u) {
			if !computing[t] {
				computing[t] = true
				stack = append(stack, t)
			}
		}
	}
	cl := values[S](set)
	c.memo[s] = cl
	return cl
}

// === Subset Construction ===================================================

// DFA is a deterministic automaton resulting from subset construction. Every
// deterministic state carries the set of original states it aliases.
type DFA[S comparable, A comparable] struct {
	edges   [][]dfaEdge[A] // transitions per state, ordered by symbol
	accept  []bool         // accepting states
	aliases [][]S          // original states per deterministic state
}

type dfaEdge[A comparable] struct {
	symbol A
	to     int
}

// Size returns the number of deterministic states.
func (d *DFA[S, A]) Size() int {
	return len(d.aliases)
}

// Start returns the start state, which is always state 0.
func (d *DFA[S, A]) Start() int {
	return 0
}

// Next returns the successor of state for symbol a.
func (d *DFA[S, A]) Next(state int, a A) (int, bool) {
	if state < 0 || state >= len(d.edges) {
		return -1, false
	}
	for _, e := range d.edges[state] {
		if e.symbol == a {
			return e.to, true
		}
	}
	return -1, false
}

// Symbols returns the symbols of all transitions leaving state, in the order
// they were explored during construction.
func (d *DFA[S, A]) Symbols(state int) []A {
	r := make([]A, len(d.edges[state]))
	for i, e := range d.edges[state] {
		r[i] = e.symbol
	}
	return r
}

// Accepting is true if state aliases an accepting original state.
func (d *DFA[S, A]) Accepting(state int) bool {
	return d.accept[state]
}

// Aliases returns the original states which collapsed into state. Clients must
// not modify the result.
func (d *DFA[S, A]) Aliases(state int) []S {
	return d.aliases[state]
}

// Accepts runs d on a word of symbols.
func (d *DFA[S, A]) Accepts(word []A) bool {
	state := d.Start()
	for _, a := range word {
		next, ok := d.Next(state, a)
		if !ok {
			return false
		}
		state = next
	}
	return d.accept[state]
}

// Determinize performs subset construction on an automaton src, starting from
// a set of original states. The start state of the result is the epsilon
// closure of start. For every deterministic state and every symbol leaving one
// of its aliases, the successor is the epsilon closure of all original states
// reachable via that symbol. Equal alias sets (by value) share a deterministic
// state. A deterministic state accepts iff one of its aliases is accepting.
//
// cmpS and cmpA define the order in which states are stored and symbols are
// explored; together with breadth-first processing they make the numbering of
// deterministic states reproducible.
func Determinize[S comparable, A comparable](src Source[S, A], start []S, accepting func(S) bool,
	cmpS func(S, S) int, cmpA func(A, A) int) *DFA[S, A] {
	//
	closure := NewClosure(src.EpsilonsFrom, cmpS)
	d := &DFA[S, A]{}
	serials := make(map[S]int) // every original state gets a serial for set keys
	index := make(map[string]int)
	worklist := arraylist.New()
	lookup := func(set []S) int {
		key := setKey(set, serials)
		if id, ok := index[key]; ok {
			return id
		}
		id := len(d.aliases)
		index[key] = id
		d.aliases = append(d.aliases, set)
		d.edges = append(d.edges, nil)
		acc := false
		for _, s := range set {
			if accepting(s) {
				acc = true
				break
			}
		}
		d.accept = append(d.accept, acc)
		worklist.Add(id)
		return id
	}
	lookup(closure.Of(start...))
	for i := 0; i < worklist.Size(); i++ {
		x, _ := worklist.Get(i)
		id := x.(int)
		moves := make(map[A][]S)
		for _, s := range d.aliases[id] {
			for a, targets := range src.TransitionsFrom(s) {
				moves[a] = append(moves[a], targets...)
			}
		}
		symbols := make([]A, 0, len(moves))
		for a := range moves {
			symbols = append(symbols, a)
		}
		slices.SortFunc(symbols, cmpA)
		for _, a := range symbols {
			to := lookup(closure.Of(moves[a]...))
			d.edges[id] = append(d.edges[id], dfaEdge[A]{symbol: a, to: to})
		}
	}
	tracer().Debugf("subset construction produced %d deterministic states", len(d.aliases))
	return d
}

// setKey creates a value-based key for an ordered set of states.
func setKey[S comparable](set []S, serials map[S]int) string {
	var b strings.Builder
	for _, s := range set {
		n, ok := serials[s]
		if !ok {
			n = len(serials)
			serials[s] = n
		}
		fmt.Fprintf(&b, "%d,", n)
	}
	return b.String()
}

// --- Helpers ---------------------------------------------------------------

func newSet[S any](cmp func(S, S) int) *treeset.Set {
	return treeset.NewWith(func(a, b interface{}) int {
		return cmp(a.(S), b.(S))
	})
}

func values[S any](set *treeset.Set) []S {
	r := make([]S, 0, set.Size())
	for _, x := range set.Values() {
		r = append(r, x.(S))
	}
	return r
}
