package lr

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cnf/structhash"
)

// Tables are the result of table generation: a grammar together with its
// ACTION and GOTO tables. Tables are all a parser needs, and may be saved to
// and loaded from a persistent form, thus table generation and parsing may
// happen in different processes.
type Tables struct {
	G      *Grammar
	States int // number of LR states; state 0 is the start state
	action *Table
	gotoT  *Table
}

// Action returns the action for a state and a terminal.
func (t *Tables) Action(state int, a *Symbol) Action {
	if state < 0 || state >= t.States || a == nil || a.serial < 0 {
		return Action{}
	}
	return t.action.action(state, a)
}

// Goto returns the successor state for a state and a non-terminal.
func (t *Tables) Goto(state int, A *Symbol) (int, bool) {
	if state < 0 || state >= t.States || A == nil || A.serial < 0 {
		return -1, false
	}
	return t.gotoT.gotoState(state, A)
}

// Expected returns the terminals for which a state has an action, in symbol order.
func (t *Tables) Expected(state int) []*Symbol {
	var r []*Symbol
	if state < 0 || state >= t.States {
		return r
	}
	t.action.matrix.EachInRow(state, func(j int, _, _ int32) {
		r = append(r, t.G.symbols.BySerial(j))
	})
	return r
}

// --- Persistence -----------------------------------------------------------

type tablesJSON struct {
	Name         string           `json:"name"`
	Start        string           `json:"start"`
	NonTerminals []string         `json:"non_terminals"`
	Terminals    []terminalJSON   `json:"terminals"`
	Productions  []productionJSON `json:"productions"`
	States       int              `json:"states"`
	Actions      []actionJSON     `json:"actions"`
	Gotos        []gotoJSON       `json:"gotos"`
}

type terminalJSON struct {
	Name string `json:"name"`
	Sync bool   `json:"sync,omitempty"`
}

type productionJSON struct {
	ID  int      `json:"id"`
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`
}

type actionJSON struct {
	State  int    `json:"state"`
	Symbol string `json:"symbol"`
	Kind   string `json:"kind"`
	Target int    `json:"target,omitempty"`
}

type gotoJSON struct {
	State  int    `json:"state"`
	Symbol string `json:"symbol"`
	Target int    `json:"target"`
}

func (t *Tables) toJSON() *tablesJSON {
	g := t.G
	st := g.symbols
	tj := &tablesJSON{
		Name:         g.Name,
		Start:        g.Start.Name,
		NonTerminals: []string{},
		Terminals:    []terminalJSON{},
		Productions:  []productionJSON{},
		States:       t.States,
		Actions:      []actionJSON{},
		Gotos:        []gotoJSON{},
	}
	for _, A := range st.Symbols() {
		if isSpecial(st, A) {
			continue
		}
		if A.IsTerminal() {
			tj.Terminals = append(tj.Terminals, terminalJSON{Name: A.Name, Sync: A.Sync})
		} else {
			tj.NonTerminals = append(tj.NonTerminals, A.Name)
		}
	}
	for _, p := range g.prods[1:] {
		pj := productionJSON{ID: p.Serial, LHS: p.LHS.Name, RHS: []string{}}
		for _, A := range p.rhs {
			pj.RHS = append(pj.RHS, A.Name)
		}
		tj.Productions = append(tj.Productions, pj)
	}
	t.action.matrix.Each(func(i, j int, code, target int32) {
		action := decodeAction(code, target)
		tj.Actions = append(tj.Actions, actionJSON{
			State:  i,
			Symbol: st.BySerial(j).Name,
			Kind:   action.Kind.String(),
			Target: action.Target,
		})
	})
	t.gotoT.matrix.Each(func(i, j int, next, _ int32) {
		tj.Gotos = append(tj.Gotos, gotoJSON{State: i, Symbol: st.BySerial(j).Name, Target: int(next)})
	})
	return tj
}

func isSpecial(st *SymbolTable, A *Symbol) bool {
	return A == st.Epsilon() || A == st.EndOfStream() || A == st.AugmentedStart()
}

// Save writes t in JSON format. Saving the same tables always produces the same
// bytes.
func (t *Tables) Save(w io.Writer) error {
	data, err := json.MarshalIndent(t.toJSON(), "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Fingerprint returns a hash of the tables, suitable to check if two table
// generation runs produced identical tables.
func (t *Tables) Fingerprint() (string, error) {
	return structhash.Hash(t.toJSON(), 1)
}

// LoadTables reads tables written by Save.
func LoadTables(r io.Reader) (*Tables, error) {
	var tj tablesJSON
	if err := json.NewDecoder(r).Decode(&tj); err != nil {
		return nil, err
	}
	b := NewGrammarBuilder(tj.Name)
	b.Start(tj.Start).NonTerminals(tj.NonTerminals...)
	for _, a := range tj.Terminals {
		b.Terminals(a.Name)
		if a.Sync {
			b.Sync(a.Name)
		}
	}
	kinds := make(map[string]Kind)
	for _, A := range tj.NonTerminals {
		kinds[A] = NonTerminal
	}
	for _, a := range tj.Terminals {
		kinds[a.Name] = Terminal
	}
	for i, pj := range tj.Productions {
		if pj.ID != i+1 {
			return nil, fmt.Errorf("tables: production %d out of order", pj.ID)
		}
		rb := b.LHS(pj.LHS)
		if len(pj.RHS) == 0 {
			rb.Epsilon()
			continue
		}
		for _, name := range pj.RHS {
			kind, ok := kinds[name]
			if !ok {
				return nil, fmt.Errorf("tables: production %d references unknown symbol %s", pj.ID, name)
			}
			if kind == Terminal {
				rb.T(name)
			} else {
				rb.N(name)
			}
		}
		rb.End()
	}
	g, err := b.Grammar()
	if err != nil {
		return nil, err
	}
	st := g.symbols
	t := &Tables{
		G:      g,
		States: tj.States,
		action: newTable(tj.States, len(st.Symbols())),
		gotoT:  newTable(tj.States, len(st.Symbols())),
	}
	for _, aj := range tj.Actions {
		a := st.Resolve(aj.Symbol, Terminal)
		if a == nil || aj.State < 0 || aj.State >= tj.States {
			return nil, fmt.Errorf("tables: invalid action for (%d,%s)", aj.State, aj.Symbol)
		}
		action := Action{Target: aj.Target}
		switch aj.Kind {
		case "shift":
			action.Kind = Shift
		case "reduce":
			action.Kind = Reduce
		case "accept":
			action.Kind = Accept
		default:
			return nil, fmt.Errorf("tables: unknown action %q", aj.Kind)
		}
		t.action.setAction(aj.State, a, action)
	}
	for _, gj := range tj.Gotos {
		A := st.Resolve(gj.Symbol, NonTerminal)
		if A == nil || gj.State < 0 || gj.State >= tj.States {
			return nil, fmt.Errorf("tables: invalid goto for (%d,%s)", gj.State, gj.Symbol)
		}
		t.gotoT.setGoto(gj.State, A, gj.Target)
	}
	tracer().Debugf("loaded tables for %s with %d states", g.Name, t.States)
	return t, nil
}
