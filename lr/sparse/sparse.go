/*
Package sparse implements sparse matrices of int32 for parser tables. The
ACTION table stores a pair per entry (action code and target), the GOTO table
a single successor state.

Entries are kept as coordinate triplets (COO encoding), sorted by row and
column. Lookups are binary searches, and iteration over the entries of a
matrix or a row is ordered, which keeps everything derived from a matrix
reproducible.

   https://medium.com/@jmaxg3/101-ways-to-store-a-sparse-matrix-c7f2bf15a229


License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sparse

import (
	"fmt"
	"sort"
)

// DefaultNullValue is the default value of empty entries (min int32).
const DefaultNullValue = -2147483648

// IntMatrix is a sparse m x n matrix. Every entry holds a pair of values;
// entries set with Set have the null value as their second value.
//
//     M := NewIntMatrix(10, 10, -1)   // -1 marks empty entries
//     M.SetPair(2, 3, 4711, 7)
//     a, b := M.Values(2, 3)          // 4711, 7
//     v := M.Value(9, 9)              // -1
//
// Entries cannot be removed.
type IntMatrix struct {
	entries []entry
	m, n    int
	null    int32
}

type entry struct {
	row, col int
	a, b     int32
}

func (e entry) before(i, j int) bool {
	return e.row < i || (e.row == i && e.col < j)
}

// NewIntMatrix creates an empty m x n matrix with a given null value.
func NewIntMatrix(m, n int, nullValue int32) *IntMatrix {
	return &IntMatrix{m: m, n: n, null: nullValue}
}

// M returns the number of rows.
func (mx *IntMatrix) M() int { return mx.m }

// N returns the number of columns.
func (mx *IntMatrix) N() int { return mx.n }

// NullValue returns the value of empty entries.
func (mx *IntMatrix) NullValue() int32 { return mx.null }

// ValueCount returns the number of entries set.
func (mx *IntMatrix) ValueCount() int { return len(mx.entries) }

// find returns the index of entry (i,j) or the index where it would be inserted.
func (mx *IntMatrix) find(i, j int) (int, bool) {
	k := sort.Search(len(mx.entries), func(k int) bool {
		return !mx.entries[k].before(i, j)
	})
	found := k < len(mx.entries) && mx.entries[k].row == i && mx.entries[k].col == j
	return k, found
}

// Value returns the first value of entry (i,j), or the null value.
func (mx *IntMatrix) Value(i, j int) int32 {
	a, _ := mx.Values(i, j)
	return a
}

// Values returns both values of entry (i,j), or the null value twice.
func (mx *IntMatrix) Values(i, j int) (int32, int32) {
	if k, ok := mx.find(i, j); ok {
		return mx.entries[k].a, mx.entries[k].b
	}
	return mx.null, mx.null
}

// Set sets entry (i,j) to a single value.
func (mx *IntMatrix) Set(i, j int, value int32) *IntMatrix {
	return mx.SetPair(i, j, value, mx.null)
}

// SetPair sets both values of entry (i,j). Indices out of range panic.
func (mx *IntMatrix) SetPair(i, j int, a, b int32) *IntMatrix {
	if i < 0 || i >= mx.m || j < 0 || j >= mx.n {
		panic(fmt.Sprintf("sparse: index (%d,%d) out of range for %d x %d matrix", i, j, mx.m, mx.n))
	}
	k, ok := mx.find(i, j)
	if ok {
		mx.entries[k].a, mx.entries[k].b = a, b
		return mx
	}
	mx.entries = append(mx.entries, entry{})
	copy(mx.entries[k+1:], mx.entries[k:])
	mx.entries[k] = entry{row: i, col: j, a: a, b: b}
	return mx
}

// Each calls f for every entry, ordered by row and column.
func (mx *IntMatrix) Each(f func(i, j int, a, b int32)) {
	for _, e := range mx.entries {
		f(e.row, e.col, e.a, e.b)
	}
}

// EachInRow calls f for every entry of row i, ordered by column.
func (mx *IntMatrix) EachInRow(i int, f func(j int, a, b int32)) {
	k, _ := mx.find(i, 0)
	for ; k < len(mx.entries) && mx.entries[k].row == i; k++ {
		f(mx.entries[k].col, mx.entries[k].a, mx.entries[k].b)
	}
}
