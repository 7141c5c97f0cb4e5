// Package objreg implements ObjectEntry and the triple-indexed
// ObjectRegistry (id, address, name) backing every live script object.
package objreg

import (
	"tinscript/internal/ns"
	"tinscript/internal/vars"
)

// Address is an opaque handle identifying a native object; hosts are free
// to pack a real pointer, an index, or any other stable identifier into it.
type Address uint64

// Entry is an ObjectEntry: (id, name_hash, namespace, raw_address,
// dynamic_vars_table?).
type Entry struct {
	ID        uint32
	Name      string
	NameHash  uint32
	Namespace *ns.Namespace
	Address   Address

	dynamic *vars.Table
}

// Dynamic returns (creating if necessary) this object's dynamic variable
// bag, used by SelfVarDecl and by member resolution falling back to an
// object's dynamic-variable bag when no static member matches.
func (e *Entry) Dynamic() *vars.Table {
	if e.dynamic == nil {
		e.dynamic = vars.NewTable()
	}
	return e.dynamic
}

// HasDynamic reports whether a dynamic bag was ever created, so Destroy can
// avoid allocating one just to discard it.
func (e *Entry) HasDynamic() bool { return e.dynamic != nil }
