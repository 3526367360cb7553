package lr

import (
	"bytes"
	"fmt"

	"golang.org/x/tools/container/intsets"
)

// Item is an LR(1) item: a production with a dot and a lookahead set of
// terminals. Items are nodes of the item graph, which is subject to subset
// construction to get the LR(1) automaton.
type Item struct {
	prod *Production
	dot  int
	la   *intsets.Sparse // lookahead, as terminal bit positions
}

// Production returns the production of the item.
func (i *Item) Production() *Production {
	return i.prod
}

// Dot returns the position of the dot in the RHS.
func (i *Item) Dot() int {
	return i.dot
}

// Lookahead returns the lookahead set as terminal bit positions. Clients must
// not modify it.
func (i *Item) Lookahead() *intsets.Sparse {
	return i.la
}

// IsComplete is true if the dot is at the end of the RHS. Items for epsilon
// productions are always complete.
func (i *Item) IsComplete() bool {
	return i.prod.IsEpsilon() || i.dot == len(i.prod.rhs)
}

// PeekSymbol returns the symbol after the dot, or nil for complete items.
func (i *Item) PeekSymbol() *Symbol {
	if i.IsComplete() {
		return nil
	}
	return i.prod.rhs[i.dot]
}

// IsEmptyAfterDot is true if everything after the dot is nullable.
func (i *Item) IsEmptyAfterDot() bool {
	return i.prod.IsEmptyFrom(i.dot)
}

// Advance returns a new item with the dot moved one position to the right and
// a copy of the lookahead.
func (i *Item) Advance() *Item {
	la := &intsets.Sparse{}
	la.Copy(i.la)
	return &Item{prod: i.prod, dot: i.dot + 1, la: la}
}

// expansionLookahead is the lookahead of items for productions of the
// non-terminal after the dot: the start set of the rest of the RHS, plus our
// own lookahead if the rest is nullable.
func (i *Item) expansionLookahead() *intsets.Sparse {
	la := &intsets.Sparse{}
	la.Copy(i.prod.startsAt[i.dot+1])
	if i.prod.IsEmptyFrom(i.dot + 1) {
		la.UnionWith(i.la)
	}
	return la
}

// CompareItems defines the item order for table derivation: incomplete items
// come before complete ones, then items are ordered by production id and dot
// position. Items equal in these are ordered by lookahead.
func CompareItems(i1, i2 *Item) int {
	c1, c2 := i1.IsComplete(), i2.IsComplete()
	if c1 != c2 {
		if c1 {
			return 1
		}
		return -1
	}
	if i1.prod.Serial != i2.prod.Serial {
		return compareInts(i1.prod.Serial, i2.prod.Serial)
	}
	if i1.dot != i2.dot {
		return compareInts(i1.dot, i2.dot)
	}
	return compareBitsets(i1.la, i2.la)
}

func compareInts(a, b int) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// compareBitsets orders bitsets lexicographically by their ascending elements.
func compareBitsets(s1, s2 *intsets.Sparse) int {
	e1, e2 := s1.AppendTo(nil), s2.AppendTo(nil)
	for k := 0; k < len(e1) && k < len(e2); k++ {
		if c := compareInts(e1[k], e2[k]); c != 0 {
			return c
		}
	}
	return compareInts(len(e1), len(e2))
}

// String renders an item as "A ➞ B • c , {d e}". Lookahead bits are printed as
// numbers, use StringWith for terminal names.
func (i *Item) String() string {
	return i.StringWith(nil)
}

// StringWith renders an item with lookahead terminals resolved from a symbol table.
func (i *Item) StringWith(st *SymbolTable) string {
	var b bytes.Buffer
	b.WriteString(i.prod.LHS.Name)
	b.WriteString(" ➞")
	for k, A := range i.prod.rhs {
		if k == i.dot {
			b.WriteString(" •")
		}
		b.WriteString(" ")
		b.WriteString(A.Name)
	}
	if i.dot == len(i.prod.rhs) {
		b.WriteString(" •")
	}
	b.WriteString(" , {")
	for k, bit := range i.la.AppendTo(nil) {
		if k > 0 {
			b.WriteString(" ")
		}
		if st != nil {
			b.WriteString(st.TerminalAt(bit).Name)
		} else {
			fmt.Fprintf(&b, "%d", bit)
		}
	}
	b.WriteString("}")
	return b.String()
}
