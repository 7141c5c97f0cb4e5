// Package ast implements the compile tree that an external parser builds
// and the two-pass count/emit walk that turns it into bytecode. A
// CompileTreeNode is a tagged union: Kind selects which fields are
// meaningful, Left/Right are the generic binary-tree links and Next chains
// statement sequences (a function body, a block, the top-level program).
package ast

import (
	"tinscript/internal/emit"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

// Kind tags a Node's variant.
type Kind uint8

const (
	NOP Kind = iota
	Value
	Self
	ObjMember
	PODMember
	BinaryOp
	UnaryOp
	If
	WhileLoop
	VarDeclStmt
	FuncDecl
	FuncCall
	FuncReturn
	ObjMethod
	ArrayHash
	ArrayVarDecl
	SelfVarDecl
	Schedule
	CreateObject
	DestroyObject
)

// VarKind distinguishes the ways a Value node can resolve, depending on
// scope and push_kind. PushParam is emitted directly by FuncCall's argument
// loop, not through a Value node, since a parameter is just a stack-local
// once FunctionContext.InitStackVarOffsets has run -- see DESIGN.md.
type VarKind uint8

const (
	Literal VarKind = iota
	LocalVar
	GlobalVar
	ArrayVar
)

// Param names one FuncDecl parameter or local, emitted as a ParamDecl/VarDecl
// pair when the declaring FuncDecl node runs.
type Param struct {
	NameHash uint32
	Type     types.VarType
}

// Node is one CompileTreeNode. Every Kind-specific field is documented at
// its use site in eval.go; unused fields for a given Kind are simply zero.
type Node struct {
	Kind Kind
	Line int

	Left, Right, Next *Node

	// Value
	VarKind     VarKind
	Lit         types.Value
	DeclType    types.VarType
	FrameOffset int32
	FuncHash    uint32
	VarHash     uint32

	// ObjMember / PODMember / SelfVarDecl
	MemberHash uint32
	NameHash   uint32

	// BinaryOp / UnaryOp
	Op opcode.Op

	// If
	Else *Node

	// VarDeclStmt
	IsLocal bool

	// FuncDecl
	NSHash uint32
	Params []Param
	Locals []Param
	Body   *Node

	// FuncCall
	IsMethod bool
	Args     []*Node

	// CreateObject
	ClassHash uint32

	// Schedule
	Delay     *Node
	Object    *Node
	FuncName  *Node
	Immediate bool
	SchedParams []*Node
}

// Eval walks n (and, for sequence-bearing kinds, its linked children),
// writing through cur. cur.CountOnly selects the sizing pass vs. the emit
// pass; both passes must walk identically, since the emit pass trusts the
// sizes the count pass computed. Returns the number of words this node
// (and anything it recursively emits) occupies.
func (n *Node) Eval(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	if n == nil {
		return 0, nil
	}
	if n.Line != 0 {
		cur.SetLine(n.Line)
	}
	switch n.Kind {
	case NOP:
		return evalSeq(n.Next, cur, types.Void)
	case Value:
		return n.evalValue(cur, pushKind)
	case Self:
		return n.evalSelf(cur, pushKind)
	case ObjMember:
		return n.evalMember(cur, pushKind, false)
	case PODMember:
		return n.evalMember(cur, pushKind, true)
	case BinaryOp:
		return n.evalBinaryOp(cur, pushKind)
	case UnaryOp:
		return n.evalUnaryOp(cur, pushKind)
	case If:
		return n.evalIf(cur)
	case WhileLoop:
		return n.evalWhile(cur)
	case VarDeclStmt:
		return n.evalVarDecl(cur)
	case FuncDecl:
		return n.evalFuncDecl(cur)
	case FuncCall:
		return n.evalFuncCall(cur, pushKind)
	case FuncReturn:
		return n.evalFuncReturn(cur)
	case ObjMethod:
		return n.evalObjMethod(cur, pushKind)
	case ArrayHash:
		return n.evalArrayHash(cur)
	case ArrayVarDecl:
		return n.evalArrayVarDecl(cur)
	case SelfVarDecl:
		return n.evalSelfVarDecl(cur)
	case Schedule:
		return n.evalSchedule(cur, pushKind)
	case CreateObject:
		return n.evalCreateObject(cur)
	case DestroyObject:
		return n.evalDestroyObject(cur)
	default:
		return 0, unsupportedKind(n.Kind)
	}
}

// evalSeq walks a Next-linked statement chain, each discarding its result
// (pushKind), and returns the total word count.
func evalSeq(n *Node, cur *emit.Cursor, pushKind types.VarType) (int, error) {
	total := 0
	for s := n; s != nil; s = s.Next {
		w, err := s.evalOne(cur, pushKind)
		if err != nil {
			return 0, err
		}
		total += w
	}
	return total, nil
}

// evalOne evaluates a single statement node without recursing into its own
// Next chain (Eval already dispatches NOP's Next traversal; for a non-NOP
// statement head we only want this node, its Next is the next statement).
func (n *Node) evalOne(cur *emit.Cursor, pushKind types.VarType) (int, error) {
	next := n.Next
	n.Next = nil
	w, err := n.Eval(cur, pushKind)
	n.Next = next
	return w, err
}
