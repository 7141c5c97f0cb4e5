package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

// Cell is a resolved, read/write-able storage location: the common surface
// every one of the five exec-stack reference marker types resolves down to,
// so opcode handlers (Assign, the compound-assign family, the unary
// inc/dec pair) don't need to switch on reference kind themselves.
type Cell interface {
	Get() (types.Value, error)
	Set(types.Value) error
	// Type is the reference's declared type, i.e. the Assign family's
	// coercion target: assignment converts the incoming value to the
	// target's declared type before storing it.
	Type() types.VarType
}

type entryCell struct{ e *vars.Entry }

func (c entryCell) Get() (types.Value, error) { return c.e.Get(), nil }
func (c entryCell) Set(v types.Value) error   { c.e.Set(v); return nil }
func (c entryCell) Type() types.VarType       { return c.e.Type }

// stackCell addresses a word range directly on the ExecStack, resolved
// fresh on every Get/Set against addr -- used for __stackvar references,
// which combine the currently-executing frame's base with the offset
// rather than caching a resolved entry the way __var does.
type stackCell struct {
	m        *Machine
	addr     int
	declared types.VarType
}

func (c stackCell) Get() (types.Value, error) {
	words, err := c.m.exec.Read(c.addr, types.WordSize[c.declared])
	if err != nil {
		return types.Value{}, err
	}
	return types.FromWords(c.declared, words), nil
}

func (c stackCell) Set(v types.Value) error {
	return c.m.exec.Write(c.addr, v.Words())
}

func (c stackCell) Type() types.VarType { return c.declared }

// ResolveVar implements the four-step lookup for a (ns_hash, func_hash,
// var_hash, array_key_hash) quadruple carried by a __var or __hashvar
// reference: function-local, then namespace member, then global, then an
// optional hashtable key into whichever entry that resolved to.
func (m *Machine) ResolveVar(nsHash, funcHash, varHash, arrayKeyHash uint32) (*vars.Entry, error) {
	var e *vars.Entry
	var ok bool

	if funcHash != 0 {
		if fn, found := m.funcsByHash[funcHash]; found {
			e, ok = fn.Context.Locals.Get(varHash)
		}
	}
	if !ok && nsHash != 0 {
		if namespace, found := m.Namespaces.Lookup(nsHash); found {
			e, ok = namespace.LookupMember(varHash)
		}
	}
	if !ok {
		e, ok = m.Global.Members.Get(varHash)
	}
	if !ok {
		return nil, m.fault(diag.Resolution, "unresolved variable %#x", varHash)
	}

	if arrayKeyHash != 0 {
		if e.Type != types.Hashtable {
			return nil, m.fault(diag.RuntimeType, "array index on non-hashtable variable %#x", varHash)
		}
		nested, found := e.Nested().Get(arrayKeyHash)
		if !found {
			return nil, m.fault(diag.Resolution, "unresolved array key %#x on variable %#x", arrayKeyHash, varHash)
		}
		e = nested
	}
	return e, nil
}

// ResolveMember implements the __member reference: look up the object,
// then its per-instance variable bag (which CreateObject primes from the
// namespace chain's declared members, and SelfVarDecl appends to directly
// -- so declared and dynamic members live in the same table).
func (m *Machine) ResolveMember(objectID, varHash uint32) (*vars.Entry, error) {
	obj, ok := m.Objects.ByID(objectID)
	if !ok {
		return nil, m.fault(diag.Resolution, "unknown object %d", objectID)
	}
	e, ok := obj.Dynamic().Get(varHash)
	if !ok {
		return nil, m.fault(diag.Resolution, "object %d has no member %#x", objectID, varHash)
	}
	return e, nil
}

// resolveRef dispatches a pushed reference-marker Value to its Cell,
// covering all five reference marker types.
func (m *Machine) resolveRef(v types.Value) (Cell, error) {
	switch v.Type {
	case types.VarRef:
		nsHash, funcHash, varHash := v.VarRef()
		e, err := m.ResolveVar(nsHash, funcHash, varHash, 0)
		if err != nil {
			return nil, err
		}
		return entryCell{e}, nil

	case types.HashVarRef:
		nsHash, funcHash, varHash, arrayKeyHash := v.HashVarRef()
		e, err := m.ResolveVar(nsHash, funcHash, varHash, arrayKeyHash)
		if err != nil {
			return nil, err
		}
		return entryCell{e}, nil

	case types.MemberRef:
		varHash, objectID := v.MemberRef()
		e, err := m.ResolveMember(objectID, varHash)
		if err != nil {
			return nil, err
		}
		return entryCell{e}, nil

	case types.StackVarRef:
		declared, frameOffset := v.StackVarRef()
		frame := m.calls.Top()
		base := 0
		if frame != nil {
			base = frame.FrameBase
		}
		return stackCell{m: m, addr: base + int(frameOffset), declared: declared}, nil

	case types.PODMemberRef:
		_, addr := v.PODMemberRef()
		if int(addr) >= len(m.podCells) {
			return nil, m.fault(diag.Resolution, "invalid POD member reference %d", addr)
		}
		return entryCell{m.podCells[addr]}, nil

	default:
		return nil, m.fault(diag.RuntimeType, "value of type %v is not a reference", v.Type)
	}
}
