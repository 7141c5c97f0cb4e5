package vm

import (
	"tinscript/internal/diag"
	"tinscript/internal/types"
)

// Branch offsets are relative to ip immediately after the operand word is
// fetched -- exactly the cursor position internal/ast's evalIf/evalWhile
// measured the patch against, so adding the (possibly negative) operand
// directly lands on the intended target.
func (m *Machine) opBranch() error {
	offset := m.fetch()
	m.ip += int(offset)
	return nil
}

func (m *Machine) opBranchTrue() error {
	offset := m.fetch()
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	b, err := types.Convert(v, types.Bool, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	if b.Bool() {
		m.ip += int(offset)
	}
	return nil
}

func (m *Machine) opBranchFalse() error {
	offset := m.fetch()
	v, err := m.exec.Pop()
	if err != nil {
		return err
	}
	b, err := types.Convert(v, types.Bool, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	if !b.Bool() {
		m.ip += int(offset)
	}
	return nil
}
