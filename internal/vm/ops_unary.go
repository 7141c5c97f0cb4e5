package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/types"
)

// preStep implements UnaryPreInc/PreDec: pop the variable reference left by
// the child's __var evaluation, write the incremented/decremented value
// back, and push the new value. PreInc/PreDec write back to the variable
// reference popped from the stack, then push the new value.
func (m *Machine) preStep(delta int32) error {
	refV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	cell, err := m.resolveRef(refV)
	if err != nil {
		return err
	}
	cur, err := cell.Get()
	if err != nil {
		return err
	}

	var next types.Value
	switch cur.Type {
	case types.Int:
		next = types.NewInt(cur.Int() + delta)
	case types.Float:
		next = types.NewFloat(cur.Float() + float32(delta))
	default:
		return m.fault(diag.RuntimeType, "pre-inc/dec requires int or float, got %v", cur.Type)
	}
	if err := cell.Set(next); err != nil {
		return err
	}
	m.exec.Push(next)
	return nil
}

func (m *Machine) opUnaryPreInc() error { return m.preStep(1) }
func (m *Machine) opUnaryPreDec() error { return m.preStep(-1) }

func (m *Machine) opUnaryNeg() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	switch v.Type {
	case types.Int:
		m.exec.Push(types.NewInt(-v.Int()))
	case types.Float:
		m.exec.Push(types.NewFloat(-v.Float()))
	default:
		return m.fault(diag.RuntimeType, "unary - requires int or float, got %v", v.Type)
	}
	return nil
}

func (m *Machine) opUnaryPos() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	if v.Type != types.Int && v.Type != types.Float {
		return m.fault(diag.RuntimeType, "unary + requires int or float, got %v", v.Type)
	}
	m.exec.Push(v)
	return nil
}

func (m *Machine) opUnaryBitInvert() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	i, err := types.Convert(v, types.Int, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewInt(^i.Int()))
	return nil
}

func (m *Machine) opUnaryNot() error {
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	b, err := types.Convert(v, types.Bool, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewBool(!b.Bool()))
	return nil
}
