// Package strtable implements StringTable: a refcounted, hash-keyed string
// intern pool. VariableEntry never stores string bytes directly -- only
// the 32-bit hash -- so every string-typed read goes through a Table.
package strtable

import (
	"fmt"

	"github.com/dolthub/swiss"

	"tinscript/internal/hash"
)

type entry struct {
	bytes    string
	refCount int
}

// Table is the StringTable. Collisions (same hash, different bytes) are a
// fatal error: the language's identity of strings relies on hash
// uniqueness.
type Table struct {
	fold    bool
	entries *swiss.Map[uint32, *entry]
}

// New returns an empty Table. fold selects case-insensitive hashing,
// default off.
func New(fold bool) *Table {
	return &Table{fold: fold, entries: swiss.NewMap[uint32, *entry](64)}
}

// Intern adds s, bumping its refcount if already present, and returns its
// hash. A hash collision against different bytes is reported via panic
// (recovered at the diag.Isolate boundary like any other internal
// invariant violation) since string-table identity is assertional, not a
// script-recoverable condition.
func (t *Table) Intern(s string) uint32 {
	h := hash.Of(s, t.fold)
	if h == 0 {
		return 0
	}
	if e, ok := t.entries.Get(h); ok {
		if e.bytes != s {
			panic(fmt.Sprintf("string table hash collision: %#x already maps to %q, cannot also map to %q", h, e.bytes, s))
		}
		e.refCount++
		return h
	}
	t.entries.Put(h, &entry{bytes: s, refCount: 1})
	return h
}

// Lookup returns the interned bytes for hash, if present.
func (t *Table) Lookup(h uint32) (string, bool) {
	if h == 0 {
		return "", false
	}
	e, ok := t.entries.Get(h)
	if !ok {
		return "", false
	}
	return e.bytes, true
}

// RefCountDecrement decrements hash's refcount, marking it eligible for
// purge once it reaches zero.
func (t *Table) RefCountDecrement(h uint32) {
	if e, ok := t.entries.Get(h); ok && e.refCount > 0 {
		e.refCount--
	}
}

// RemoveUnreferencedStrings purges every zero-refcount entry, called at
// statement boundaries.
func (t *Table) RemoveUnreferencedStrings() {
	var dead []uint32
	t.entries.Iter(func(h uint32, e *entry) bool {
		if e.refCount <= 0 {
			dead = append(dead, h)
		}
		return true
	})
	for _, h := range dead {
		t.entries.Delete(h)
	}
}

// Len reports the number of interned strings, used by diagnostics/dump.
func (t *Table) Len() int { return t.entries.Count() }

// Each iterates every interned (hash, string, refCount) triple; iteration
// order is unspecified. Used by the cache/dump CLI to list a table's
// contents without exposing the unexported entry type.
func (t *Table) Each(f func(h uint32, s string, refCount int) bool) {
	t.entries.Iter(func(h uint32, e *entry) bool {
		return f(h, e.bytes, e.refCount)
	})
}
