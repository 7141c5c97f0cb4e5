package ast

import (
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

// The functions below are small constructors standing in for what the
// out-of-scope parser would build; tests (and eventually internal/code)
// use them directly rather than hand-filling Node{} literals everywhere.

func Seq(stmts ...*Node) *Node {
	root := &Node{Kind: NOP}
	tail := root
	for _, s := range stmts {
		tail.Next = s
		tail = s
	}
	return root
}

func Lit(v types.Value) *Node { return &Node{Kind: Value, VarKind: Literal, Lit: v} }

func LocalRef(declType types.VarType, frameOffset int32) *Node {
	return &Node{Kind: Value, VarKind: LocalVar, DeclType: declType, FrameOffset: frameOffset}
}

func GlobalRef(funcHash, varHash uint32) *Node {
	return &Node{Kind: Value, VarKind: GlobalVar, FuncHash: funcHash, VarHash: varHash}
}

func ArrayRef(funcHash, varHash uint32, key *Node) *Node {
	return &Node{Kind: Value, VarKind: ArrayVar, FuncHash: funcHash, VarHash: varHash, Right: key}
}

func SelfRef() *Node { return &Node{Kind: Self} }

func Member(obj *Node, memberHash uint32) *Node {
	return &Node{Kind: ObjMember, Left: obj, MemberHash: memberHash}
}

func PODField(pod *Node, memberHash uint32) *Node {
	return &Node{Kind: PODMember, Left: pod, MemberHash: memberHash}
}

func Bin(op opcode.Op, left, right *Node) *Node {
	return &Node{Kind: BinaryOp, Op: op, Left: left, Right: right}
}

func Un(op opcode.Op, operand *Node) *Node {
	return &Node{Kind: UnaryOp, Op: op, Left: operand}
}

func IfElse(cond *Node, then, els *Node) *Node {
	return &Node{Kind: If, Left: cond, Right: then, Else: els}
}

func While(cond, body *Node) *Node {
	return &Node{Kind: WhileLoop, Left: cond, Right: body}
}

func VarDecl(nameHash uint32, t types.VarType, local bool) *Node {
	return &Node{Kind: VarDeclStmt, NameHash: nameHash, DeclType: t, IsLocal: local}
}

func FuncDeclNode(nameHash, nsHash uint32, params, locals []Param, body *Node) *Node {
	return &Node{Kind: FuncDecl, NameHash: nameHash, NSHash: nsHash, Params: params, Locals: locals, Body: body}
}

func Call(nsHash, funcHash uint32, isMethod bool, args ...*Node) *Node {
	return &Node{Kind: FuncCall, NSHash: nsHash, FuncHash: funcHash, IsMethod: isMethod, Args: args}
}

func Method(obj *Node, call *Node) *Node {
	return &Node{Kind: ObjMethod, Left: obj, Right: call}
}

func Return(expr *Node, declType types.VarType) *Node {
	return &Node{Kind: FuncReturn, Left: expr, DeclType: declType}
}

func Hash(accum, key *Node) *Node {
	return &Node{Kind: ArrayHash, Left: accum, Right: key}
}

func ArrayDecl(table, key *Node, t types.VarType) *Node {
	return &Node{Kind: ArrayVarDecl, Left: table, Right: key, DeclType: t}
}

func SelfDecl(nameHash uint32, t types.VarType) *Node {
	return &Node{Kind: SelfVarDecl, NameHash: nameHash, DeclType: t}
}

func ScheduleCall(delay, object, funcName *Node, immediate bool, params ...*Node) *Node {
	return &Node{Kind: Schedule, Delay: delay, Object: object, FuncName: funcName, Immediate: immediate, SchedParams: params}
}

func Create(name *Node, classHash uint32) *Node {
	return &Node{Kind: CreateObject, Left: name, ClassHash: classHash}
}

func Destroy(obj *Node) *Node {
	return &Node{Kind: DestroyObject, Left: obj}
}
