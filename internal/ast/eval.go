package ast

import (
	"tinscript/internal/emit"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

func (n *Node) evalValue(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	wantRef := pushKind == types.VarRef

	switch n.VarKind {
	case Literal:
		cur.Emit(int32(opcode.Push))
		cur.Emit(int32(n.Lit.Type))
		for _, w := range n.Lit.Words() {
			cur.Emit(int32(w))
		}

	case LocalVar:
		if wantRef {
			cur.Emit(int32(opcode.PushLocalVar))
		} else {
			cur.Emit(int32(opcode.PushLocalValue))
		}
		cur.Emit(int32(n.DeclType))
		cur.Emit(n.FrameOffset)

	case GlobalVar:
		if wantRef {
			cur.Emit(int32(opcode.PushGlobalVar))
		} else {
			cur.Emit(int32(opcode.PushGlobalValue))
		}
		cur.Emit(0)
		cur.Emit(int32(n.FuncHash))
		cur.Emit(int32(n.VarHash))

	case ArrayVar:
		if _, err := n.Right.Eval(cur, types.Int); err != nil {
			return 0, err
		}
		if wantRef {
			cur.Emit(int32(opcode.PushArrayVar))
		} else {
			cur.Emit(int32(opcode.PushArrayValue))
		}
		cur.Emit(0)
		cur.Emit(int32(n.FuncHash))
		cur.Emit(int32(n.VarHash))
	}

	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalSelf(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	cur.Emit(int32(opcode.PushSelf))
	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

// evalMember implements both ObjMember and PODMember: pod selects the POD
// variant opcodes.
func (n *Node) evalMember(cur *emit.Cursor, pushKind types.VarType, pod bool) (int, error) {
	start := cur.Pos()
	leftKind := types.Object
	if pod {
		leftKind = types.Resolve
	}
	if _, err := n.Left.Eval(cur, leftKind); err != nil {
		return 0, err
	}

	wantRef := pushKind == types.VarRef
	switch {
	case pod && wantRef:
		cur.Emit(int32(opcode.PushPODMember))
	case pod && !wantRef:
		cur.Emit(int32(opcode.PushPODMemberVal))
	case !pod && wantRef:
		cur.Emit(int32(opcode.PushMember))
	default:
		cur.Emit(int32(opcode.PushMemberVal))
	}
	cur.Emit(int32(n.MemberHash))

	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

func isAssignOp(op opcode.Op) bool {
	switch op {
	case opcode.Assign, opcode.AssignAdd, opcode.AssignSub, opcode.AssignMult,
		opcode.AssignDiv, opcode.AssignMod, opcode.AssignBitAnd, opcode.AssignBitOr,
		opcode.AssignBitXor, opcode.AssignShiftLeft, opcode.AssignShiftRight:
		return true
	default:
		return false
	}
}

// evalBinaryOp: left is evaluated with __var when op is an assign-family
// opcode (so it leaves a reference an Assign* handler can write through),
// otherwise both sides are evaluated with __resolve and the arithmetic/
// compare/bitwise handler does its own numeric coercion at runtime
// rather than the compiler demanding a specific stack type.
func (n *Node) evalBinaryOp(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	leftKind := types.Resolve
	if isAssignOp(n.Op) {
		leftKind = types.VarRef
	}
	if _, err := n.Left.Eval(cur, leftKind); err != nil {
		return 0, err
	}
	if _, err := n.Right.Eval(cur, types.Resolve); err != nil {
		return 0, err
	}
	cur.Emit(int32(n.Op))
	if !isAssignOp(n.Op) && pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalUnaryOp(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	childKind := types.Resolve
	if n.Op == opcode.UnaryPreInc || n.Op == opcode.UnaryPreDec {
		childKind = types.VarRef
	}
	if _, err := n.Left.Eval(cur, childKind); err != nil {
		return 0, err
	}
	cur.Emit(int32(n.Op))
	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

// evalIf back-patches its branch offsets against live cursor positions
// rather than precomputing word-count arithmetic, so the jump targets are
// correct regardless of how large the condition/then/else subtrees turn out
// to be.
func (n *Node) evalIf(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Bool); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.BranchFalse))
	bfAt := cur.Reserve(1)
	afterBF := cur.Pos()

	if _, err := evalSeq(n.Right, cur, types.Void); err != nil {
		return 0, err
	}

	if n.Else != nil {
		cur.Emit(int32(opcode.Branch))
		brAt := cur.Reserve(1)
		afterBr := cur.Pos()
		cur.Patch(bfAt, int32(afterBr-afterBF))

		if _, err := evalSeq(n.Else, cur, types.Void); err != nil {
			return 0, err
		}
		cur.Patch(brAt, int32(cur.Pos()-afterBr))
	} else {
		cur.Patch(bfAt, int32(cur.Pos()-afterBF))
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalWhile(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	condStart := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Bool); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.BranchFalse))
	bfAt := cur.Reserve(1)
	afterBF := cur.Pos()

	if _, err := evalSeq(n.Right, cur, types.Void); err != nil {
		return 0, err
	}

	cur.Emit(int32(opcode.Branch))
	brAt := cur.Reserve(1)
	afterBr := cur.Pos()
	cur.Patch(brAt, int32(condStart-afterBr))
	cur.Patch(bfAt, int32(cur.Pos()-afterBF))
	return cur.Pos() - start, nil
}

func (n *Node) evalVarDecl(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	cur.Emit(int32(opcode.VarDecl))
	cur.Emit(int32(n.NameHash))
	cur.Emit(int32(n.DeclType))
	return cur.Pos() - start, nil
}

// evalFuncDecl emits the header, the ParamDecl/VarDecl pairs that (when
// this instruction sequence executes) populate the FunctionContext, a
// Branch that lets top-level flow skip the body, and finally the body
// itself. The body_offset operand is patched to the body's absolute word
// position, which internal/vm uses as the FunctionEntry's InstrOffset when
// it handles FuncDecl.
func (n *Node) evalFuncDecl(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	cur.Emit(int32(opcode.FuncDecl))
	cur.Emit(int32(n.NameHash))
	cur.Emit(int32(n.NSHash))
	bodyOffsetAt := cur.Reserve(1)

	for _, p := range n.Params {
		cur.Emit(int32(opcode.ParamDecl))
		cur.Emit(int32(p.NameHash))
		cur.Emit(int32(p.Type))
	}
	for _, l := range n.Locals {
		cur.Emit(int32(opcode.VarDecl))
		cur.Emit(int32(l.NameHash))
		cur.Emit(int32(l.Type))
	}
	cur.Emit(int32(opcode.FuncDeclEnd))

	cur.Emit(int32(opcode.Branch))
	skipAt := cur.Reserve(1)
	afterSkip := cur.Pos()

	bodyStart := cur.Pos()
	cur.Patch(bodyOffsetAt, int32(bodyStart))

	if _, err := evalSeq(n.Body, cur, types.Void); err != nil {
		return 0, err
	}
	cur.Patch(skipAt, int32(cur.Pos()-afterSkip))
	return cur.Pos() - start, nil
}

// evalFuncCall emits one PushParam/expr/Assign triple per argument (in
// order): the argument sub-tree emits one PushParam i + expression per
// argument. Arguments are pushed with __resolve and converted to each
// parameter's declared type by the Assign handler at runtime, the same
// conversion path an ordinary assignment uses.
func (n *Node) evalFuncCall(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	if n.IsMethod {
		cur.Emit(int32(opcode.MethodCallArgs))
	} else {
		cur.Emit(int32(opcode.FuncCallArgs))
	}
	cur.Emit(int32(n.NSHash))
	cur.Emit(int32(n.FuncHash))

	for i, arg := range n.Args {
		cur.Emit(int32(opcode.PushParam))
		cur.Emit(int32(i + 1)) // parameter 0 is always the return slot
		if _, err := arg.Eval(cur, types.Resolve); err != nil {
			return 0, err
		}
		cur.Emit(int32(opcode.Assign))
	}

	cur.Emit(int32(opcode.FuncCall))
	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalFuncReturn(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if n.Left == nil {
		cur.Emit(int32(opcode.Push))
		cur.Emit(int32(types.Int))
		cur.Emit(0)
	} else if _, err := n.Left.Eval(cur, n.DeclType); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.FuncReturn))
	return cur.Pos() - start, nil
}

func (n *Node) evalObjMethod(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Object); err != nil {
		return 0, err
	}
	if _, err := n.Right.Eval(cur, pushKind); err != nil {
		return 0, err
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalArrayHash(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Int); err != nil {
		return 0, err
	}
	if _, err := n.Right.Eval(cur, types.String); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.ArrayHash))
	return cur.Pos() - start, nil
}

func (n *Node) evalArrayVarDecl(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Hashtable); err != nil {
		return 0, err
	}
	if _, err := n.Right.Eval(cur, types.Int); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.ArrayVarDecl))
	cur.Emit(int32(n.DeclType))
	return cur.Pos() - start, nil
}

func (n *Node) evalSelfVarDecl(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	cur.Emit(int32(opcode.SelfVarDecl))
	cur.Emit(int32(n.NameHash))
	cur.Emit(int32(n.DeclType))
	return cur.Pos() - start, nil
}

// evalSchedule builds the deferred-call request: delay, target object and
// function-name hash are pushed first, then ScheduleBegin opens the
// request, each call argument is pushed and consumed by a ScheduleParam,
// and ScheduleEnd closes it -- either firing synchronously (immediate) or
// enqueuing and pushing the request id.
func (n *Node) evalSchedule(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	start := cur.Pos()
	if _, err := n.Delay.Eval(cur, types.Int); err != nil {
		return 0, err
	}
	if _, err := n.Object.Eval(cur, types.Object); err != nil {
		return 0, err
	}
	if _, err := n.FuncName.Eval(cur, types.String); err != nil {
		return 0, err
	}

	cur.Emit(int32(opcode.ScheduleBegin))
	if n.Immediate {
		cur.Emit(1)
	} else {
		cur.Emit(0)
	}

	for i, p := range n.SchedParams {
		if _, err := p.Eval(cur, types.Resolve); err != nil {
			return 0, err
		}
		cur.Emit(int32(opcode.ScheduleParam))
		cur.Emit(int32(i + 1))
	}

	cur.Emit(int32(opcode.ScheduleEnd))
	if pushKind == types.Void {
		cur.Emit(int32(opcode.Pop))
	}
	return cur.Pos() - start, nil
}

func (n *Node) evalCreateObject(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.String); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.CreateObject))
	cur.Emit(int32(n.ClassHash))
	return cur.Pos() - start, nil
}

func (n *Node) evalDestroyObject(cur *emit.Cursor) (int, error) {
	start := cur.Pos()
	if _, err := n.Left.Eval(cur, types.Object); err != nil {
		return 0, err
	}
	cur.Emit(int32(opcode.DestroyObject))
	return cur.Pos() - start, nil
}
