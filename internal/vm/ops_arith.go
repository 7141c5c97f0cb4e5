package vm

import (
	"fmt"
	"math"

	"tinscript/internal/diag"
	"tinscript/internal/types"
)

// arith implements Add/Sub/Mult/Div/Mod: pop RHS then LHS, reject object
// operands, operate in int if both sides are int/bool, otherwise promote
// both to float.
func (m *Machine) arith(intOp func(a, b int32) (int32, error), floatOp func(a, b float32) (float32, error)) error {
	rhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	if lhs.Type == types.Object || rhs.Type == types.Object {
		return m.fault(diag.RuntimeType, "arithmetic on object operand")
	}

	if isIntish(lhs.Type) && isIntish(rhs.Type) {
		a, err := types.Convert(lhs, types.Int, m.Strings)
		if err != nil {
			return m.fault(diag.RuntimeType, "%v", err)
		}
		b, err := types.Convert(rhs, types.Int, m.Strings)
		if err != nil {
			return m.fault(diag.RuntimeType, "%v", err)
		}
		res, err := intOp(a.Int(), b.Int())
		if err != nil {
			return m.fault(diag.RuntimeType, "%v", err)
		}
		m.exec.Push(types.NewInt(res))
		return nil
	}

	a, err := types.Convert(lhs, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(rhs, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	res, err := floatOp(a.Float(), b.Float())
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewFloat(res))
	return nil
}

func isIntish(t types.VarType) bool { return t == types.Int || t == types.Bool }

func (m *Machine) opAdd() error {
	return m.arith(
		func(a, b int32) (int32, error) { return a + b, nil },
		func(a, b float32) (float32, error) { return a + b, nil },
	)
}

func (m *Machine) opSub() error {
	return m.arith(
		func(a, b int32) (int32, error) { return a - b, nil },
		func(a, b float32) (float32, error) { return a - b, nil },
	)
}

func (m *Machine) opMult() error {
	return m.arith(
		func(a, b int32) (int32, error) { return a * b, nil },
		func(a, b float32) (float32, error) { return a * b, nil },
	)
}

func (m *Machine) opDiv() error {
	return m.arith(
		func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		},
		func(a, b float32) (float32, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		},
	)
}

func (m *Machine) opMod() error {
	return m.arith(
		func(a, b int32) (int32, error) {
			if b == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			return a % b, nil
		},
		func(a, b float32) (float32, error) {
			if b == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			return float32(math.Mod(float64(a), float64(b))), nil
		},
	)
}

// opAssign implements Assign: pop value, pop reference, convert value to the
// reference's declared type, store.
func (m *Machine) opAssign() error {
	val, err := m.exec.Pop()
	if err != nil {
		return err
	}
	refV, err := m.exec.Pop()
	if err != nil {
		return err
	}
	cell, err := m.resolveRef(refV)
	if err != nil {
		return err
	}
	converted, err := types.Convert(val, cell.Type(), m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	return cell.Set(converted)
}

// compoundAssignFloat implements the += -= *= /= %= family: convert both
// the current value and the incoming value to float, operate, convert the
// result back to the reference's declared type, store.
func (m *Machine) compoundAssignFloat(op func(a, b float32) (float32, error)) error {
	val, err := m.exec.Pop()
	if err != nil {
		return err
	}
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
	a, err := types.Convert(cur, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(val, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	res, err := op(a.Float(), b.Float())
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	converted, err := types.Convert(types.NewFloat(res), cell.Type(), m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	return cell.Set(converted)
}

// compoundAssignInt implements the bitwise-assign family (<<= >>= &= |= ^=),
// via int instead of float.
func (m *Machine) compoundAssignInt(op func(a, b int32) (int32, error)) error {
	val, err := m.exec.Pop()
	if err != nil {
		return err
	}
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
	a, err := types.Convert(cur, types.Int, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(val, types.Int, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	res, err := op(a.Int(), b.Int())
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	converted, err := types.Convert(types.NewInt(res), cell.Type(), m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	return cell.Set(converted)
}

func (m *Machine) opAssignAdd() error {
	return m.compoundAssignFloat(func(a, b float32) (float32, error) { return a + b, nil })
}

func (m *Machine) opAssignSub() error {
	return m.compoundAssignFloat(func(a, b float32) (float32, error) { return a - b, nil })
}

func (m *Machine) opAssignMult() error {
	return m.compoundAssignFloat(func(a, b float32) (float32, error) { return a * b, nil })
}

func (m *Machine) opAssignDiv() error {
	return m.compoundAssignFloat(func(a, b float32) (float32, error) {
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	})
}

func (m *Machine) opAssignMod() error {
	return m.compoundAssignFloat(func(a, b float32) (float32, error) {
		if b == 0 {
			return 0, fmt.Errorf("modulo by zero")
		}
		return float32(math.Mod(float64(a), float64(b))), nil
	})
}

func (m *Machine) bitOp(op func(a, b int32) int32) error {
	rhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	a, err := types.Convert(lhs, types.Int, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(rhs, types.Int, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewInt(op(a.Int(), b.Int())))
	return nil
}

func (m *Machine) opBitAnd() error { return m.bitOp(func(a, b int32) int32 { return a & b }) }
func (m *Machine) opBitOr() error  { return m.bitOp(func(a, b int32) int32 { return a | b }) }
func (m *Machine) opBitXor() error { return m.bitOp(func(a, b int32) int32 { return a ^ b }) }
func (m *Machine) opBitShiftLeft() error {
	return m.bitOp(func(a, b int32) int32 { return a << uint32(b) })
}
func (m *Machine) opBitShiftRight() error {
	return m.bitOp(func(a, b int32) int32 { return a >> uint32(b) })
}

func (m *Machine) opAssignBitAnd() error {
	return m.compoundAssignInt(func(a, b int32) (int32, error) { return a & b, nil })
}
func (m *Machine) opAssignBitOr() error {
	return m.compoundAssignInt(func(a, b int32) (int32, error) { return a | b, nil })
}
func (m *Machine) opAssignBitXor() error {
	return m.compoundAssignInt(func(a, b int32) (int32, error) { return a ^ b, nil })
}
func (m *Machine) opAssignShiftLeft() error {
	return m.compoundAssignInt(func(a, b int32) (int32, error) { return a << uint32(b), nil })
}
func (m *Machine) opAssignShiftRight() error {
	return m.compoundAssignInt(func(a, b int32) (int32, error) { return a >> uint32(b), nil })
}

func (m *Machine) compareEq(wantEqual bool) error {
	rhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	var equal bool
	switch {
	case lhs.Type == types.Object || rhs.Type == types.Object:
		equal = lhs.ObjectID() == rhs.ObjectID()
	case lhs.Type == types.String && rhs.Type == types.String:
		equal = lhs.StringHash() == rhs.StringHash()
	default:
		a, err := types.Convert(lhs, types.Float, m.Strings)
		if err != nil {
			return m.fault(diag.RuntimeType, "%v", err)
		}
		b, err := types.Convert(rhs, types.Float, m.Strings)
		if err != nil {
			return m.fault(diag.RuntimeType, "%v", err)
		}
		equal = a.Float() == b.Float()
	}
	if !wantEqual {
		equal = !equal
	}
	m.exec.Push(types.NewBool(equal))
	return nil
}

func (m *Machine) compareOrder(test func(diff float32) bool) error {
	rhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	if lhs.Type == types.Object || rhs.Type == types.Object {
		return m.fault(diag.RuntimeType, "ordering comparison on object operand")
	}
	a, err := types.Convert(lhs, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(rhs, types.Float, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewBool(test(a.Float() - b.Float())))
	return nil
}

func (m *Machine) opCompareEqual() error    { return m.compareEq(true) }
func (m *Machine) opCompareNotEqual() error { return m.compareEq(false) }
func (m *Machine) opCompareLess() error     { return m.compareOrder(func(d float32) bool { return d < 0 }) }
func (m *Machine) opCompareLessEqual() error {
	return m.compareOrder(func(d float32) bool { return d <= 0 })
}
func (m *Machine) opCompareGreater() error {
	return m.compareOrder(func(d float32) bool { return d > 0 })
}
func (m *Machine) opCompareGreaterEqual() error {
	return m.compareOrder(func(d float32) bool { return d >= 0 })
}

// opBooleanAnd/Or are deliberately non-short-circuit: both operands are
// already on the stack by the time the opcode runs.
func (m *Machine) boolOp(f func(a, b bool) bool) error {
	rhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	lhs, err := m.exec.Pop()
	if err != nil {
		return err
	}
	a, err := types.Convert(lhs, types.Bool, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	b, err := types.Convert(rhs, types.Bool, m.Strings)
	if err != nil {
		return m.fault(diag.RuntimeType, "%v", err)
	}
	m.exec.Push(types.NewBool(f(a.Bool(), b.Bool())))
	return nil
}

func (m *Machine) opBooleanAnd() error { return m.boolOp(func(a, b bool) bool { return a && b }) }
func (m *Machine) opBooleanOr() error  { return m.boolOp(func(a, b bool) bool { return a || b }) }
