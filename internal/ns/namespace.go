// Package ns implements Namespace (a named bag of members and methods,
// optionally chained to a single parent) and the registry that resolves
// deferred parent links as classes register in arbitrary order.
package ns

import (
	"github.com/dolthub/swiss"

	"tinscript/internal/funcs"
	"tinscript/internal/vars"
)

// CreateFunc is a registered class constructor: given the script-supplied
// object name, it allocates the native object and returns an opaque handle
// identifying its address.
type CreateFunc func(name string) (address uint64, err error)

// DestroyFunc is a registered class destructor.
type DestroyFunc func(address uint64) error

// Namespace is (name_hash, member_table, method_table, create_fn?,
// destroy_fn?, parent_namespace?).
type Namespace struct {
	NameHash uint32
	Name     string

	Members *vars.Table
	Methods *swiss.Map[uint32, *funcs.Entry]

	Create  CreateFunc
	Destroy DestroyFunc

	Parent *Namespace
}

// New builds an unlinked Namespace (Parent is nil until the registry links
// it).
func New(name string, nameHash uint32) *Namespace {
	return &Namespace{
		Name:     name,
		NameHash: nameHash,
		Members:  vars.NewTable(),
		Methods:  swiss.NewMap[uint32, *funcs.Entry](4),
	}
}

// LookupMember walks ns -> ns.Parent -> ... for a member entry: instance
// variable resolution checks the object's own namespace before falling
// back to each ancestor in turn.
func (ns *Namespace) LookupMember(hash uint32) (*vars.Entry, bool) {
	for n := ns; n != nil; n = n.Parent {
		if e, ok := n.Members.Get(hash); ok {
			return e, true
		}
	}
	return nil, false
}

// LookupMethod walks the parent chain for a method entry: namespace ->
// parent -> parent -> ... until a match is found.
func (ns *Namespace) LookupMethod(hash uint32) (*funcs.Entry, bool) {
	for n := ns; n != nil; n = n.Parent {
		if e, ok := n.Methods.Get(hash); ok {
			return e, true
		}
	}
	return nil, false
}

// MostDerivedCreate returns the nearest Create function found walking from
// ns upward: object creation uses whichever ancestor in the chain is the
// most-derived class that actually registered a constructor.
func (ns *Namespace) MostDerivedCreate() CreateFunc {
	for n := ns; n != nil; n = n.Parent {
		if n.Create != nil {
			return n.Create
		}
	}
	return nil
}

// MostDerivedDestroy is MostDerivedCreate's counterpart for DestroyObject.
func (ns *Namespace) MostDerivedDestroy() DestroyFunc {
	for n := ns; n != nil; n = n.Parent {
		if n.Destroy != nil {
			return n.Destroy
		}
	}
	return nil
}

// Chain returns ns and every ancestor, nearest first, for diagnostics
// (internal/ns/dump.go) and tests.
func (ns *Namespace) Chain() []*Namespace {
	var out []*Namespace
	for n := ns; n != nil; n = n.Parent {
		out = append(out, n)
	}
	return out
}
