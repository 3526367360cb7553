package lex

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cnf/structhash"
	"github.com/npillmayer/lrkit/automaton"
	"github.com/npillmayer/lrkit/regex"
)

// Tables are the generated tables of a lexer: one deterministic automaton per
// lexer state, together with the rules it recognizes.
type Tables struct {
	Start    string     `json:"start"`
	States   []string   `json:"states"`
	Classes  []string   `json:"classes"`
	Machines []*Machine `json:"machines"` // in order of States
}

// Machine is the automaton for a single lexer state. DFA state 0 is the start state.
type Machine struct {
	State  string  `json:"state"`
	Rules  []*Rule `json:"rules"`
	Size   int     `json:"size"`
	Edges  []Edge  `json:"edges"`
	Accept []int   `json:"accept"` // rule accepted per DFA state, or -1
}

// Edge is a transition of a lexer automaton.
type Edge struct {
	From int  `json:"from"`
	Char rune `json:"char"`
	To   int  `json:"to"`
}

// Generate creates lexer tables from a lexical spec.
//
// Named expressions are registered in order of definition. For every lexer
// state, the ε-NFAs of its rules are joined under a fresh start state, then
// epsilons are removed and the result is determinized.
func Generate(spec *Spec) (*Tables, error) {
	if len(spec.States) == 0 {
		return nil, fmt.Errorf("lexical spec without lexer states")
	}
	c := regex.NewCompiler()
	for _, def := range spec.Definitions {
		if err := c.Register(def.Name, def.Pattern); err != nil {
			return nil, &SpecError{Line: def.line, Cause: err}
		}
	}
	t := &Tables{
		Start:   spec.States[0],
		States:  spec.States,
		Classes: spec.Classes,
	}
	if t.Classes == nil {
		t.Classes = []string{}
	}
	for _, state := range spec.States {
		m, err := generateMachine(c, spec, state)
		if err != nil {
			return nil, err
		}
		t.Machines = append(t.Machines, m)
	}
	tracer().Infof("generated lexer tables for %d lexer states", len(t.Machines))
	return t, nil
}

func generateMachine(c *regex.Compiler, spec *Spec, state string) (*Machine, error) {
	rules := spec.RulesFor(state)
	g := automaton.NewGraph[rune]()
	start := g.NewState()
	accepts := make(map[automaton.State]int) // accepting NFA state -> rule
	for i, rule := range rules {
		enfa, err := c.Compile(rule.Pattern)
		if err != nil {
			return nil, &SpecError{Line: spec.lines[rule], Cause: err}
		}
		offset := g.Merge(enfa.Graph)
		g.AddEpsilon(start, enfa.Start+offset)
		accepts[enfa.Accept+offset] = i
	}
	nfa := automaton.RemoveEpsilons(g, start, func(s automaton.State) bool {
		_, ok := accepts[s]
		return ok
	})
	dfa := nfa.ToDFA()
	m := &Machine{
		State:  state,
		Rules:  rules,
		Size:   dfa.Size(),
		Edges:  []Edge{},
		Accept: make([]int, dfa.Size()),
	}
	if m.Rules == nil {
		m.Rules = []*Rule{}
	}
	for s := 0; s < dfa.Size(); s++ {
		m.Accept[s] = -1
		for _, q := range dfa.Aliases(s) {
			if rule, ok := accepts[q]; ok && (m.Accept[s] < 0 || rule < m.Accept[s]) {
				m.Accept[s] = rule
			}
		}
		for _, r := range dfa.Symbols(s) {
			to, _ := dfa.Next(s, r)
			m.Edges = append(m.Edges, Edge{From: s, Char: r, To: to})
		}
	}
	tracer().Debugf("lexer state %s: %d rules, DFA with %d states", state, len(rules), m.Size)
	return m, nil
}

// Machine returns the automaton for a lexer state.
func (t *Tables) Machine(state string) (*Machine, bool) {
	for _, m := range t.Machines {
		if m.State == state {
			return m, true
		}
	}
	return nil, false
}

// GraphViz writes the automaton of a machine in Graphviz dot format.
func (m *Machine) GraphViz(w io.Writer) error {
	var edges [][]Edge
	for s := 0; s < m.Size; s++ {
		edges = append(edges, nil)
	}
	for _, e := range m.Edges {
		edges[e.From] = append(edges[e.From], e)
	}
	if _, err := fmt.Fprintf(w, "digraph %q {\nnode [shape=circle];\n", m.State); err != nil {
		return err
	}
	for s := 0; s < m.Size; s++ {
		label := fmt.Sprintf("%d", s)
		shape := "circle"
		if rule := m.Accept[s]; rule >= 0 {
			shape = "doublecircle"
			label = fmt.Sprintf("%d: %s", s, m.ruleLabel(rule))
		}
		fmt.Fprintf(w, "s%03d [shape=%s label=%q];\n", s, shape, label)
		for _, e := range edges[s] {
			fmt.Fprintf(w, "s%03d -> s%03d [label=%q];\n", e.From, e.To, string(e.Char))
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func (m *Machine) ruleLabel(rule int) string {
	if m.Rules[rule].Class == "" {
		return "-"
	}
	return m.Rules[rule].Class
}

// --- Persistence -----------------------------------------------------------

// Save writes t in JSON format. Saving the same tables always produces the same
// bytes.
func (t *Tables) Save(w io.Writer) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Fingerprint returns a hash of the tables.
func (t *Tables) Fingerprint() (string, error) {
	return structhash.Hash(t, 1)
}

// LoadTables reads tables written by Save.
func LoadTables(r io.Reader) (*Tables, error) {
	t := &Tables{}
	if err := json.NewDecoder(r).Decode(t); err != nil {
		return nil, err
	}
	if len(t.States) == 0 || len(t.Machines) != len(t.States) {
		return nil, fmt.Errorf("lexer tables: expected %d machines, have %d", len(t.States), len(t.Machines))
	}
	for i, m := range t.Machines {
		if m.State != t.States[i] || len(m.Accept) != m.Size {
			return nil, fmt.Errorf("lexer tables: inconsistent machine for state %s", m.State)
		}
		for _, e := range m.Edges {
			if e.From < 0 || e.From >= m.Size || e.To < 0 || e.To >= m.Size {
				return nil, fmt.Errorf("lexer tables: edge out of range in state %s", m.State)
			}
		}
		for _, rule := range m.Accept {
			if rule >= len(m.Rules) {
				return nil, fmt.Errorf("lexer tables: unknown rule %d in state %s", rule, m.State)
			}
		}
		for _, rule := range m.Rules {
			rule.State = m.State
		}
	}
	tracer().Debugf("loaded lexer tables with %d lexer states", len(t.Machines))
	return t, nil
}
