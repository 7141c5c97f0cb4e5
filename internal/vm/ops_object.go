package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/hash"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

// opCreateObject resolves the pushed class name, runs the namespace chain's
// most-derived constructor via objreg.Registry.Create, and primes the new
// object's dynamic-variable bag by cloning every declared member found
// walking the chain nearest-first, skipping a hash once it's already been
// cloned so the nearest ancestor's declaration wins: CreateObject seeds
// instance variables from the namespace chain.
func (m *Machine) opCreateObject() error {
	classHash := m.fetchUint()

	nameV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	name, ok := m.Strings.Lookup(nameV.StringHash())
	if !ok {
		return m.fault(diag.Resolution, "unknown object name string %#x", nameV.StringHash())
	}

	namespace, ok := m.Namespaces.Lookup(classHash)
	if !ok {
		return m.fault(diag.Link, "CreateObject: unknown namespace %#x", classHash)
	}

	obj, err := m.Objects.Create(name, nameV.StringHash(), namespace)
	if err != nil {
		return m.fault(diag.Resource, "%v", err)
	}

	seen := make(map[uint32]bool)
	for _, n := range namespace.Chain() {
		n.Members.Each(func(e *vars.Entry) bool {
			if seen[e.NameHash] {
				return true
			}
			seen[e.NameHash] = true
			clone := vars.NewDynamic(e.Name, e.NameHash, e.Type)
			obj.Dynamic().Put(clone)
			return true
		})
	}

	m.exec.Push(types.NewObject(obj.ID))
	return nil
}

// opDestroyObject runs the namespace chain's most-derived destructor and
// removes the object from every index.
func (m *Machine) opDestroyObject() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	if v.Type != types.Object {
		return m.fault(diag.RuntimeType, "DestroyObject requires an object, got %v", v.Type)
	}
	if err := m.Objects.Destroy(v.ObjectID()); err != nil {
		return m.fault(diag.Resource, "%v", err)
	}
	return nil
}

// opArrayHash pops (accumulator hash so far, key) and pushes the combined
// hash the compiler uses to address one hashtable entry: ArrayHash is
// hash_append(left, "_", right_as_string).
func (m *Machine) opArrayHash() error {
	keyV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	accV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	keyStr, ok := m.Strings.Lookup(keyV.StringHash())
	if !ok {
		return m.fault(diag.Resolution, "unknown array key string %#x", keyV.StringHash())
	}
	h := uint32(accV.Int())
	h = hash.Append(h, "_", m.Fold)
	h = hash.Append(h, keyStr, m.Fold)
	m.exec.Push(types.NewInt(int32(h)))
	return nil
}

// opArrayVarDecl declares (or fetches, if already present) a hashtable
// entry keyed by the combined hash popped first, under the hashtable
// variable reference popped after it.
func (m *Machine) opArrayVarDecl() error {
	declType := types.VarType(m.fetchUint())

	keyV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	tableRefV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	cell, err := m.resolveRef(tableRefV)
	if err != nil {
		return err
	}
	if cell.Type() != types.Hashtable {
		return m.fault(diag.RuntimeType, "ArrayVarDecl target is not a hashtable")
	}
	ec, ok := cell.(entryCell)
	if !ok {
		return m.fault(diag.RuntimeType, "ArrayVarDecl target is not addressable")
	}
	keyHash := uint32(keyV.Int())
	if _, found := ec.e.Nested().Get(keyHash); !found {
		ec.e.Nested().Put(vars.NewScriptOwned("", keyHash, declType))
	}
	return nil
}

// opSelfVarDecl adds a dynamic variable directly to the currently
// executing frame's object.
func (m *Machine) opSelfVarDecl() error {
	varHash := m.fetchUint()
	declType := types.VarType(m.fetchUint())

	frame := m.calls.Top()
	if frame == nil {
		return m.fault(diag.Resolution, "SelfVarDecl with no executing object frame")
	}
	obj, ok := m.Objects.ByID(frame.Object)
	if !ok {
		return m.fault(diag.Resolution, "SelfVarDecl: unknown object %d", frame.Object)
	}
	if _, found := obj.Dynamic().Get(varHash); !found {
		obj.Dynamic().Put(vars.NewDynamic("", varHash, declType))
	}
	return nil
}
