package lr

import (
	"fmt"
	"slices"
	"strings"
)

// Names of the special symbols every symbol table contains.
const (
	EpsilonName        = "$"      // marks epsilon productions
	EndOfStreamName    = "#eof"   // lookahead at the end of input
	AugmentedStartName = "#start" // left hand side of the augmented production
)

// Kind tells terminals from non-terminals. Non-terminals sort first.
type Kind int8

// Kinds of grammar symbols.
const (
	NonTerminal Kind = iota
	Terminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "non-terminal"
}

// Symbol is a grammar symbol. Symbols are interned by a symbol table: there is
// exactly one symbol per (name, kind) within a table, thus symbols may be compared
// by identity.
type Symbol struct {
	Name     string
	kind     Kind
	Nullable bool // derives the empty word; set by grammar analysis
	Sync     bool // synchronization symbol for error recovery
	serial   int  // position in symbol order; -1 before the table is frozen
}

// IsTerminal is true for terminal symbols.
func (A *Symbol) IsTerminal() bool {
	return A.kind == Terminal
}

// Kind returns the kind of the symbol.
func (A *Symbol) Kind() Kind {
	return A.kind
}

// Serial returns the position of A in the symbol order of its table. Non-terminals
// come first. Serials are valid only after the grammar has been built.
func (A *Symbol) Serial() int {
	return A.serial
}

func (A *Symbol) String() string {
	return A.Name
}

// CompareSymbols orders non-terminals before terminals, then by name.
func CompareSymbols(A, B *Symbol) int {
	if A.kind != B.kind {
		if A.kind == NonTerminal {
			return -1
		}
		return 1
	}
	return strings.Compare(A.Name, B.Name)
}

// === Symbol Tables =========================================================

type symkey struct {
	name string
	kind Kind
}

// SymbolTable is the alphabet of a grammar. It interns symbols by name and kind
// and contains the special symbols epsilon, end-of-stream and the augmented start
// symbol.
type SymbolTable struct {
	table   map[symkey]*Symbol
	epsilon *Symbol
	eof     *Symbol
	start   *Symbol
	order   []*Symbol // all symbols in symbol order, after freeze()
	nterms  int       // number of non-terminals, after freeze()
	frozen  bool
}

// NewSymbolTable creates a symbol table containing just the special symbols.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{
		table: make(map[symkey]*Symbol),
	}
	st.epsilon, _ = st.ResolveOrDefine(EpsilonName, Terminal)
	st.epsilon.Nullable = true
	st.eof, _ = st.ResolveOrDefine(EndOfStreamName, Terminal)
	st.start, _ = st.ResolveOrDefine(AugmentedStartName, NonTerminal)
	return st
}

// Resolve finds a symbol by name and kind. Returns nil if no such symbol exists.
func (st *SymbolTable) Resolve(name string, kind Kind) *Symbol {
	return st.table[symkey{name, kind}]
}

// ResolveOrDefine finds a symbol in the table and inserts a new one if it is not
// found. It returns the symbol and a flag signalling whether the symbol has
// already been present. A frozen table will not accept new symbols and panics.
func (st *SymbolTable) ResolveOrDefine(name string, kind Kind) (*Symbol, bool) {
	if A := st.Resolve(name, kind); A != nil {
		return A, true
	}
	if st.frozen {
		panic(fmt.Sprintf("symbol table is frozen, cannot define %s %q", kind, name))
	}
	A := &Symbol{Name: name, kind: kind, serial: -1}
	st.table[symkey{name, kind}] = A
	return A, false
}

// Lookup finds a symbol by name, preferring terminals.
func (st *SymbolTable) Lookup(name string) *Symbol {
	if A := st.Resolve(name, Terminal); A != nil {
		return A
	}
	return st.Resolve(name, NonTerminal)
}

// ambiguousNames returns the names, sorted, which are defined as a terminal and
// as a non-terminal. Persisted tables and token streams identify symbols by
// name only.
func (st *SymbolTable) ambiguousNames() []string {
	var names []string
	for key := range st.table {
		if key.kind == Terminal && st.Resolve(key.name, NonTerminal) != nil {
			names = append(names, key.name)
		}
	}
	slices.Sort(names)
	return names
}

// Epsilon returns the epsilon symbol.
func (st *SymbolTable) Epsilon() *Symbol { return st.epsilon }

// EndOfStream returns the end-of-stream terminal.
func (st *SymbolTable) EndOfStream() *Symbol { return st.eof }

// AugmentedStart returns the left hand side symbol of the augmented production.
func (st *SymbolTable) AugmentedStart() *Symbol { return st.start }

// freeze assigns serials in symbol order. No symbols may be added afterwards.
func (st *SymbolTable) freeze() {
	st.order = make([]*Symbol, 0, len(st.table))
	for _, A := range st.table {
		st.order = append(st.order, A)
	}
	slices.SortFunc(st.order, CompareSymbols)
	st.nterms = 0
	for i, A := range st.order {
		A.serial = i
		if !A.IsTerminal() {
			st.nterms++
		}
	}
	st.frozen = true
}

// Size returns the number of symbols, including the special ones.
func (st *SymbolTable) Size() int {
	return len(st.table)
}

// Symbols returns all symbols in symbol order. Valid after the grammar has been built.
func (st *SymbolTable) Symbols() []*Symbol {
	return st.order
}

// NonTerminals returns all non-terminals in symbol order.
func (st *SymbolTable) NonTerminals() []*Symbol {
	return st.order[:st.nterms]
}

// Terminals returns all terminals in symbol order.
func (st *SymbolTable) Terminals() []*Symbol {
	return st.order[st.nterms:]
}

// BySerial returns the symbol with a given serial.
func (st *SymbolTable) BySerial(serial int) *Symbol {
	if serial < 0 || serial >= len(st.order) {
		return nil
	}
	return st.order[serial]
}

// TerminalAt maps a position in a terminal bitset to its terminal.
func (st *SymbolTable) TerminalAt(bit int) *Symbol {
	return st.BySerial(st.nterms + bit)
}

// bit returns the position of terminal a in terminal bitsets.
func (st *SymbolTable) bit(a *Symbol) int {
	return a.serial - st.nterms
}
