package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/types"
	"tinscript/internal/vars"
)

func (m *Machine) opPushSelf() error {
	frame := m.calls.Top()
	if frame == nil {
		return m.fault(diag.Resolution, "PushSelf outside a method call")
	}
	m.exec.Push(types.NewObject(frame.Object))
	return nil
}

func (m *Machine) opPop() error {
	_, err := m.exec.Pop()
	return err
}

func (m *Machine) opPush() error {
	t := types.VarType(m.fetchUint())
	words := make([]uint32, types.WordSize[t])
	for i := range words {
		words[i] = m.fetchUint()
	}
	m.exec.Push(types.FromWords(t, words))
	return nil
}

// opPushParam resolves parameter i against the call frame FuncCallArgs just
// reserved (still on top of the call stack, not yet executing). Argument
// passing compiles to a PushParam i + expression + Assign triple.
func (m *Machine) opPushParam() error {
	idx := int(m.fetchUint())
	frame := m.calls.Top()
	if frame == nil {
		return m.fault(diag.Resolution, "PushParam with no pending call frame")
	}
	params := frame.Function.Context.Parameters
	if idx <= 0 || idx >= len(params) {
		return m.fault(diag.Resolution, "PushParam index %d out of range", idx)
	}
	p := params[idx]
	m.exec.Push(types.NewStackVarRef(p.Type, p.StackOffset()))
	return nil
}

func (m *Machine) opPushLocalVar() error {
	declared := types.VarType(m.fetchUint())
	offset := m.fetch()
	m.exec.Push(types.NewStackVarRef(declared, offset))
	return nil
}

func (m *Machine) opPushLocalValue() error {
	declared := types.VarType(m.fetchUint())
	offset := m.fetch()
	cell, err := m.resolveRef(types.NewStackVarRef(declared, offset))
	if err != nil {
		return err
	}
	v, err := cell.Get()
	if err != nil {
		return err
	}
	m.exec.Push(v)
	return nil
}

func (m *Machine) opPushGlobalVar() error {
	nsHash := m.fetchUint()
	funcHash := m.fetchUint()
	varHash := m.fetchUint()
	m.exec.Push(types.NewVarRef(nsHash, funcHash, varHash))
	return nil
}

func (m *Machine) opPushGlobalValue() error {
	nsHash := m.fetchUint()
	funcHash := m.fetchUint()
	varHash := m.fetchUint()
	e, err := m.ResolveVar(nsHash, funcHash, varHash, 0)
	if err != nil {
		return err
	}
	m.exec.Push(e.Get())
	return nil
}

func (m *Machine) opPushArrayVar() error {
	key, err := m.exec.Pop()
	if err != nil {
		return err
	}
	nsHash := m.fetchUint()
	funcHash := m.fetchUint()
	varHash := m.fetchUint()
	m.exec.Push(types.NewHashVarRef(nsHash, funcHash, varHash, uint32(key.Int())))
	return nil
}

func (m *Machine) opPushArrayValue() error {
	key, err := m.exec.Pop()
	if err != nil {
		return err
	}
	nsHash := m.fetchUint()
	funcHash := m.fetchUint()
	varHash := m.fetchUint()
	e, err := m.ResolveVar(nsHash, funcHash, varHash, uint32(key.Int()))
	if err != nil {
		return err
	}
	m.exec.Push(e.Get())
	return nil
}

func (m *Machine) opPushMember() error {
	obj, err := m.exec.Pop()
	if err != nil {
		return err
	}
	varHash := m.fetchUint()
	m.exec.Push(types.NewMemberRef(varHash, obj.ObjectID()))
	return nil
}

func (m *Machine) opPushMemberVal() error {
	obj, err := m.exec.Pop()
	if err != nil {
		return err
	}
	varHash := m.fetchUint()
	e, err := m.ResolveMember(obj.ObjectID(), varHash)
	if err != nil {
		return err
	}
	m.exec.Push(e.Get())
	return nil
}

func (m *Machine) opPushPODMember() error {
	memberHash := m.fetchUint()
	e, err := m.resolvePODMember(memberHash)
	if err != nil {
		return err
	}
	idx := len(m.podCells)
	m.podCells = append(m.podCells, e)
	m.exec.Push(types.NewPODMemberRef(e.Type, uint32(idx)))
	return nil
}

func (m *Machine) opPushPODMemberVal() error {
	memberHash := m.fetchUint()
	e, err := m.resolvePODMember(memberHash)
	if err != nil {
		return err
	}
	m.exec.Push(e.Get())
	return nil
}

// resolvePODMember pops the POD aggregate value (carried as a Hashtable
// handle, per DESIGN.md's PODMember modeling) and looks up memberHash in
// its backing table. A missing field is a runtime error: POD members, like
// array keys, are never auto-vivified.
func (m *Machine) resolvePODMember(memberHash uint32) (*vars.Entry, error) {
	pod, err := m.exec.Pop()
	if err != nil {
		return nil, err
	}
	table, ok := m.hashtables[pod.HashtableHandle()]
	if !ok {
		return nil, m.fault(diag.Resolution, "invalid POD value")
	}
	e, ok := table.Get(memberHash)
	if !ok {
		return nil, m.fault(diag.Resolution, "POD value has no field %#x", memberHash)
	}
	return e, nil
}
