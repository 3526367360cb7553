package automaton

import (
	"fmt"
	"slices"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
)

// State is a state of an automaton graph. States are indices into the arena of
// the graph which created them.
type State int

// CompareStates orders states by ID.
func CompareStates(s1, s2 State) int {
	return utils.IntComparator(int(s1), int(s2))
}

// Compare is a comparator for ordered symbol types.
func Compare[A constraints.Ordered](a, b A) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// We need this for sets of states. It sorts states by ID.
func stateComparator(s1, s2 interface{}) int {
	return CompareStates(s1.(State), s2.(State))
}

// Graph is a mutable automaton graph with symbol transitions and epsilon
// transitions. Targets of transitions are proper sets, thus adding an edge twice
// has no effect.
//
// A graph is built up incrementally and then handed over to closure/subset
// construction. Adding an edge drops any epsilon closures memoized so far.
type Graph[A constraints.Ordered] struct {
	size    int                          // number of states allocated
	trans   map[State]map[A]*treeset.Set // symbol transitions
	eps     map[State]*treeset.Set       // epsilon transitions
	closure *Closure[State]              // memoized closures, nil if invalidated
}

// NewGraph creates an empty graph.
func NewGraph[A constraints.Ordered]() *Graph[A] {
	return &Graph[A]{
		trans: make(map[State]map[A]*treeset.Set),
		eps:   make(map[State]*treeset.Set),
	}
}

// NewState allocates a fresh state.
func (g *Graph[A]) NewState() State {
	s := State(g.size)
	g.size++
	return s
}

// Size returns the number of states allocated on g.
func (g *Graph[A]) Size() int {
	return g.size
}

func (g *Graph[A]) mustOwn(s State) {
	if s < 0 || int(s) >= g.size {
		panic(fmt.Sprintf("automaton: state %d has not been created on this graph (size %d)", s, g.size))
	}
}

// AddTransition adds an edge from → to, labeled with symbol a.
func (g *Graph[A]) AddTransition(from State, a A, to State) {
	g.mustOwn(from)
	g.mustOwn(to)
	m, ok := g.trans[from]
	if !ok {
		m = make(map[A]*treeset.Set)
		g.trans[from] = m
	}
	targets, ok := m[a]
	if !ok {
		targets = treeset.NewWith(stateComparator)
		m[a] = targets
	}
	targets.Add(to)
	g.closure = nil
}

// AddEpsilon adds an epsilon edge from → to.
func (g *Graph[A]) AddEpsilon(from, to State) {
	g.mustOwn(from)
	g.mustOwn(to)
	targets, ok := g.eps[from]
	if !ok {
		targets = treeset.NewWith(stateComparator)
		g.eps[from] = targets
	}
	targets.Add(to)
	g.closure = nil
}

// Merge absorbs all states and edges of other into g. The states of other are
// appended to the arena of g: state s of other becomes s+offset in g.
// Merge returns the offset. other is not modified.
func (g *Graph[A]) Merge(other *Graph[A]) State {
	offset := State(g.size)
	g.size += other.size
	for from, m := range other.trans {
		for a, targets := range m {
			for _, to := range targets.Values() {
				g.AddTransition(from+offset, a, to.(State)+offset)
			}
		}
	}
	for from, targets := range other.eps {
		for _, to := range targets.Values() {
			g.AddEpsilon(from+offset, to.(State)+offset)
		}
	}
	g.closure = nil
	return offset
}

// TransitionsFrom returns the symbol transitions leaving s. Target slices are
// ordered by state ID. The result is a copy and may be modified by the caller.
func (g *Graph[A]) TransitionsFrom(s State) map[A][]State {
	m := g.trans[s]
	r := make(map[A][]State, len(m))
	for a, targets := range m {
		r[a] = asStates(targets)
	}
	return r
}

// EpsilonsFrom returns the targets of epsilon edges leaving s, ordered by ID.
func (g *Graph[A]) EpsilonsFrom(s State) []State {
	if targets, ok := g.eps[s]; ok {
		return asStates(targets)
	}
	return nil
}

// Symbols returns the symbols of all transitions leaving s, in ascending order.
func (g *Graph[A]) Symbols(s State) []A {
	syms := maps.Keys(g.trans[s])
	slices.Sort(syms)
	return syms
}

// Targets returns the states reachable from s with symbol a.
func (g *Graph[A]) Targets(s State, a A) []State {
	if m, ok := g.trans[s]; ok {
		if targets, ok := m[a]; ok {
			return asStates(targets)
		}
	}
	return nil
}

// HasEpsilons is true if g contains at least one epsilon edge.
func (g *Graph[A]) HasEpsilons() bool {
	return len(g.eps) > 0
}

// EpsilonClosure returns the set of states reachable from any of states by
// epsilon edges only (including states themselves). Closures are memoized until
// the next edge is added to g.
func (g *Graph[A]) EpsilonClosure(states ...State) []State {
	if g.closure == nil {
		g.closure = NewClosure(g.EpsilonsFrom, CompareStates)
	}
	return g.closure.Of(states...)
}

// Dump is a debugging helper
func (g *Graph[A]) Dump() {
	tracer().Debugf("--- graph of %d states -------", g.size)
	for s := State(0); int(s) < g.size; s++ {
		for _, a := range g.Symbols(s) {
			tracer().Debugf("    %03d --%v--> %v", s, a, g.Targets(s, a))
		}
		if eps := g.EpsilonsFrom(s); len(eps) > 0 {
			tracer().Debugf("    %03d --ε--> %v", s, eps)
		}
	}
	tracer().Debugf("------------------------------")
}

func asStates(set *treeset.Set) []State {
	r := make([]State, 0, set.Size())
	for _, x := range set.Values() {
		r = append(r, x.(State))
	}
	return r
}
