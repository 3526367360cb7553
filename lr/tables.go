package lr

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/npillmayer/lrkit/automaton"
	"github.com/npillmayer/lrkit/lr/sparse"
	"github.com/npillmayer/schuko/gconf"
)

// Actions for parser action tables. An ACTION entry is a pair (action, target),
// where target is a state for shift actions and a production id for reduce
// actions.
const (
	ShiftAction  = -1
	AcceptAction = -2
	ReduceAction = -3
)

// ActionKind is the kind of a parser action.
type ActionKind int8

// Kinds of parser actions.
const (
	NoAction ActionKind = iota
	Shift
	Reduce
	Accept
)

func (k ActionKind) String() string {
	switch k {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	}
	return "none"
}

// Action is an entry of the ACTION table.
type Action struct {
	Kind   ActionKind
	Target int // next state for shift, production id for reduce
}

func (a Action) String() string {
	switch a.Kind {
	case Shift:
		return fmt.Sprintf("<shift %d>", a.Target)
	case Reduce:
		return fmt.Sprintf("<reduce %d>", a.Target)
	case Accept:
		return "<accept>"
	}
	return "<none>"
}

// Conflict records a choice between two actions for the same state and
// terminal. The earliest item in item order wins; the conflict remembers what
// has been dropped.
type Conflict struct {
	State   int
	Symbol  *Symbol
	Kept    Action
	Dropped Action
}

func (c Conflict) String() string {
	kind := "reduce/reduce"
	if c.Kept.Kind == Shift || c.Dropped.Kind == Shift {
		kind = "shift/reduce"
	}
	return fmt.Sprintf("%s conflict in state %d on %s: kept %s, dropped %s",
		kind, c.State, c.Symbol, c.Kept, c.Dropped)
}

// === Table Generator =======================================================

// TableGenerator is a generator object to construct LR parser tables.
// Clients usually create a Grammar G, then a LRAnalysis-object for G,
// and then a table generator. TableGenerator.CreateTables() constructs
// the LR(1) automaton and parser tables for an LR-parser recognizing grammar G.
type TableGenerator struct {
	g            *Grammar
	ga           *LRAnalysis
	canonical    bool
	items        *itemGraph
	dfa          *automaton.DFA[automaton.State, int]
	gototable    *Table
	actiontable  *Table
	conflicts    []Conflict
	HasConflicts bool
}

// Option configures a table generator.
type Option func(*TableGenerator)

// Canonical switches the generator to one item per (production, dot, lookahead)
// instead of unioning lookaheads per (production, dot).
func Canonical(b bool) Option {
	return func(lrgen *TableGenerator) {
		lrgen.canonical = b
	}
}

// NewTableGenerator creates a new TableGenerator for a (previously analysed) grammar.
func NewTableGenerator(ga *LRAnalysis, opts ...Option) *TableGenerator {
	lrgen := &TableGenerator{}
	lrgen.g = ga.Grammar()
	lrgen.ga = ga
	for _, opt := range opts {
		opt(lrgen)
	}
	return lrgen
}

// CreateTables builds the LR(1) automaton and derives GOTO and ACTION tables.
func (lrgen *TableGenerator) CreateTables() error {
	tracer().Debugf("=== build LR(1) automaton ======================================")
	var err error
	if lrgen.canonical {
		lrgen.items, err = lrgen.ga.buildCanonicalItemGraph()
	} else {
		lrgen.items, err = lrgen.ga.buildItemGraph()
	}
	if err != nil {
		return err
	}
	lrgen.dfa = lrgen.items.determinize()
	tracer().Infof("LR(1) automaton for %s has %d states", lrgen.g.Name, lrgen.dfa.Size())
	lrgen.buildTables()
	if lrgen.HasConflicts {
		warn := tracer().Infof
		if gconf.GetBool("lr-warn-conflicts") {
			warn = tracer().Errorf
		}
		for _, c := range lrgen.conflicts {
			warn("%s: %s", lrgen.g.Name, c)
		}
	}
	return nil
}

// GotoTable returns the GOTO table for LR-parsing a grammar. The tables have to be
// built by calling CreateTables() previously.
func (lrgen *TableGenerator) GotoTable() *Table {
	if lrgen.gototable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.gototable
}

// ActionTable returns the ACTION table for LR-parsing a grammar. The tables have to be
// built by calling CreateTables() previously.
func (lrgen *TableGenerator) ActionTable() *Table {
	if lrgen.actiontable == nil {
		tracer().Errorf("tables not yet initialized")
	}
	return lrgen.actiontable
}

// Tables bundles grammar, GOTO table and ACTION table for a parser.
func (lrgen *TableGenerator) Tables() *Tables {
	if lrgen.actiontable == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
		return nil
	}
	return &Tables{
		G:      lrgen.g,
		States: lrgen.dfa.Size(),
		action: lrgen.actiontable,
		gotoT:  lrgen.gototable,
	}
}

// Conflicts returns the conflicts the table derivation has resolved.
func (lrgen *TableGenerator) Conflicts() []Conflict {
	return lrgen.conflicts
}

// StateCount returns the number of states of the LR(1) automaton.
func (lrgen *TableGenerator) StateCount() int {
	if lrgen.dfa == nil {
		return 0
	}
	return lrgen.dfa.Size()
}

// Items returns the items of a state of the LR(1) automaton, in item order.
func (lrgen *TableGenerator) Items(state int) []*Item {
	return lrgen.itemsOf(lrgen.dfa.Aliases(state))
}

func (lrgen *TableGenerator) itemsOf(aliases []automaton.State) []*Item {
	items := make([]*Item, len(aliases))
	for i, s := range aliases {
		items[i] = lrgen.items.items[s]
	}
	slices.SortStableFunc(items, CompareItems)
	return items
}

// AcceptingStates returns all states of the automaton which contain the completed
// augmented item. Clients have to call CreateTables() first.
func (lrgen *TableGenerator) AcceptingStates() []int {
	if lrgen.dfa == nil {
		tracer().Errorf("tables not yet generated; call CreateTables() first")
		return nil
	}
	var acc []int
	for id := 0; id < lrgen.dfa.Size(); id++ {
		if lrgen.dfa.Accepting(id) {
			acc = append(acc, id)
		}
	}
	return acc
}

// For building the tables we iterate over all the states of the automaton.
// An inner loop iterates over the items of a state, in item order.
// Incomplete items produce shift entries for terminals and goto entries for
// non-terminals after the dot. Once a complete item has been seen, every
// following item produces reduce entries for its lookahead, or accept entries
// for the augmented production. Entries are never overwritten, except by accept:
// the first item in item order wins.
func (lrgen *TableGenerator) buildTables() {
	st := lrgen.g.symbols
	states, symbols := lrgen.dfa.Size(), len(st.Symbols())
	tracer().Infof("ACTION/GOTO tables of size %d x %d", states, symbols)
	lrgen.actiontable = newTable(states, symbols)
	lrgen.gototable = newTable(states, symbols)
	lrgen.conflicts = nil
	for state := 0; state < states; state++ {
		completed := false
		for _, item := range lrgen.Items(state) {
			if item.IsComplete() {
				completed = true
			}
			if completed {
				lrgen.reduceEntries(state, item)
				continue
			}
			A := item.PeekSymbol()
			next, ok := lrgen.dfa.Next(state, A.serial)
			if !ok {
				continue
			}
			if A.IsTerminal() {
				if lrgen.actiontable.action(state, A).Kind == NoAction {
					lrgen.actiontable.setAction(state, A, Action{Kind: Shift, Target: next})
				}
			} else if _, ok := lrgen.gototable.gotoState(state, A); !ok {
				lrgen.gototable.setGoto(state, A, next)
			}
		}
	}
	lrgen.HasConflicts = len(lrgen.conflicts) > 0
}

func (lrgen *TableGenerator) reduceEntries(state int, item *Item) {
	st := lrgen.g.symbols
	lookahead := lrgen.g.TerminalsOf(item.la)
	if item.prod.LHS == st.AugmentedStart() {
		for _, a := range lookahead {
			old := lrgen.actiontable.action(state, a)
			if old.Kind != NoAction && old.Kind != Accept {
				lrgen.conflict(state, a, Action{Kind: Accept}, old)
			}
			lrgen.actiontable.setAction(state, a, Action{Kind: Accept})
		}
	}
	reduce := Action{Kind: Reduce, Target: item.prod.Serial}
	for _, a := range lookahead {
		old := lrgen.actiontable.action(state, a)
		if old.Kind == NoAction {
			lrgen.actiontable.setAction(state, a, reduce)
		} else if old != reduce && old.Kind != Accept {
			lrgen.conflict(state, a, old, reduce)
		}
	}
}

func (lrgen *TableGenerator) conflict(state int, a *Symbol, kept, dropped Action) {
	c := Conflict{State: state, Symbol: a, Kept: kept, Dropped: dropped}
	tracer().Debugf("%s", c)
	lrgen.conflicts = append(lrgen.conflicts, c)
}

// === Exports ===============================================================

// DFA2GraphViz exports the LR(1) automaton to the Graphviz Dot format.
func (lrgen *TableGenerator) DFA2GraphViz(w io.Writer) error {
	if lrgen.dfa == nil {
		return fmt.Errorf("tables not yet generated; call CreateTables() first")
	}
	st := lrgen.g.symbols
	symbol := func(serial int) string {
		return st.BySerial(serial).Name
	}
	items := func(aliases []automaton.State) string {
		var b strings.Builder
		for _, item := range lrgen.itemsOf(aliases) {
			b.WriteString(item.StringWith(st))
			b.WriteString(`\l`)
		}
		return b.String()
	}
	return lrgen.dfa.GraphViz(w, symbol, items)
}

// GotoTableAsHTML exports a GOTO-table in HTML-format.
func GotoTableAsHTML(lrgen *TableGenerator, w io.Writer) error {
	if lrgen.gototable == nil {
		return fmt.Errorf("GOTO table not yet created, cannot export to HTML")
	}
	return parserTableAsHTML(lrgen, "GOTO", lrgen.g.symbols.NonTerminals(), w,
		func(state int, A *Symbol) string {
			if next, ok := lrgen.gototable.gotoState(state, A); ok {
				return fmt.Sprintf("%d", next)
			}
			return "&nbsp;"
		})
}

// ActionTableAsHTML exports the ACTION-table in HTML-format.
func ActionTableAsHTML(lrgen *TableGenerator, w io.Writer) error {
	if lrgen.actiontable == nil {
		return fmt.Errorf("ACTION table not yet created, cannot export to HTML")
	}
	return parserTableAsHTML(lrgen, "ACTION", lrgen.g.symbols.Terminals(), w,
		func(state int, a *Symbol) string {
			action := lrgen.actiontable.action(state, a)
			switch action.Kind {
			case Shift:
				return fmt.Sprintf("s%d", action.Target)
			case Reduce:
				return fmt.Sprintf("r%d", action.Target)
			case Accept:
				return "acc"
			}
			return "&nbsp;"
		})
}

func parserTableAsHTML(lrgen *TableGenerator, tname string, symvec []*Symbol, w io.Writer,
	cell func(int, *Symbol) string) error {
	//
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString(fmt.Sprintf("%s table of %s<p>", tname, lrgen.g.Name))
	b.WriteString("<table border=1 cellspacing=0 cellpadding=5>\n")
	b.WriteString("<tr bgcolor=#cccccc><td></td>\n")
	for _, A := range symvec {
		b.WriteString(fmt.Sprintf("<td>%s</td>", htmlEscaper.Replace(A.Name)))
	}
	b.WriteString("</tr>\n")
	for state := 0; state < lrgen.dfa.Size(); state++ {
		b.WriteString(fmt.Sprintf("<tr><td>state %d</td>\n", state))
		for _, A := range symvec {
			b.WriteString("<td>")
			b.WriteString(cell(state, A))
			b.WriteString("</td>\n")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table></body></html>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

var htmlEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")

// === Tables ================================================================

// Table is a parser table with one row per state and one column per symbol.
type Table struct {
	matrix *sparse.IntMatrix
}

func newTable(states, symbols int) *Table {
	return &Table{matrix: sparse.NewIntMatrix(states, symbols, sparse.DefaultNullValue)}
}

// NullValue returns the value of empty table entries.
func (t *Table) NullValue() int32 {
	return t.matrix.NullValue()
}

// Value returns the primary value of the entry for a state and a symbol.
func (t *Table) Value(state int, A *Symbol) int32 {
	return t.matrix.Value(state, A.serial)
}

// Values returns the pair of values of the entry for a state and a symbol.
func (t *Table) Values(state int, A *Symbol) (int32, int32) {
	return t.matrix.Values(state, A.serial)
}

// Size returns the number of entries in t.
func (t *Table) Size() int {
	return t.matrix.ValueCount()
}

func (t *Table) setAction(state int, a *Symbol, action Action) {
	var code int32
	switch action.Kind {
	case Shift:
		code = ShiftAction
	case Reduce:
		code = ReduceAction
	case Accept:
		code = AcceptAction
	default:
		panic(fmt.Sprintf("lr.Table.setAction() with no action for (%d,%s)", state, a))
	}
	t.matrix.SetPair(state, a.serial, code, int32(action.Target))
}

func (t *Table) action(state int, a *Symbol) Action {
	code, target := t.matrix.Values(state, a.serial)
	return decodeAction(code, target)
}

func decodeAction(code, target int32) Action {
	switch code {
	case ShiftAction:
		return Action{Kind: Shift, Target: int(target)}
	case ReduceAction:
		return Action{Kind: Reduce, Target: int(target)}
	case AcceptAction:
		return Action{Kind: Accept}
	}
	return Action{}
}

func (t *Table) setGoto(state int, A *Symbol, next int) {
	t.matrix.Set(state, A.serial, int32(next))
}

func (t *Table) gotoState(state int, A *Symbol) (int, bool) {
	v := t.matrix.Value(state, A.serial)
	if v == t.matrix.NullValue() {
		return -1, false
	}
	return int(v), true
}
