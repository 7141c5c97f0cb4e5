package vars

import (
	"github.com/dolthub/swiss"

	"tinscript/internal/types"
)

// Table is a hash-table of VariableEntry keyed by name hash, used for
// namespace member tables, function local-variable tables, and hashtable
// variable entries (hashtables nest a VariableEntry table of their own).
// Backed by a swiss-table map rather than a bare Go map, since every lookup
// here is a fixed-width uint32 hash key.
type Table struct {
	m *swiss.Map[uint32, *Entry]
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{m: swiss.NewMap[uint32, *Entry](8)}
}

// Get looks up an entry by name hash.
func (t *Table) Get(nameHash uint32) (*Entry, bool) {
	if t == nil || t.m == nil {
		return nil, false
	}
	return t.m.Get(nameHash)
}

// Put inserts or overwrites an entry under its own NameHash.
func (t *Table) Put(e *Entry) {
	t.m.Put(e.NameHash, e)
}

// Delete removes an entry by name hash, returning it if present so the
// caller can recursively destroy a nested hashtable.
func (t *Table) Delete(nameHash uint32) (*Entry, bool) {
	e, ok := t.m.Get(nameHash)
	if ok {
		t.m.Delete(nameHash)
	}
	return e, ok
}

// Len reports how many entries the table holds.
func (t *Table) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Count()
}

// Each iterates all entries; iteration order is unspecified.
func (t *Table) Each(f func(*Entry) bool) {
	if t == nil || t.m == nil {
		return
	}
	t.m.Iter(func(_ uint32, e *Entry) bool {
		return f(e)
	})
}

// Destroy recursively destroys every entry this table holds (descending
// into nested hashtables first) and then empties the table itself:
// destroying a hashtable VariableEntry recursively destroys its entries.
func (t *Table) Destroy() {
	if t == nil || t.m == nil {
		return
	}
	t.Each(func(e *Entry) bool {
		if e.Type == types.Hashtable && e.HasNested() {
			e.Nested().Destroy()
		}
		return true
	})
	t.m = swiss.NewMap[uint32, *Entry](8)
}
