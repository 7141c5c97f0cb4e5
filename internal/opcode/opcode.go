// Package opcode is the exhaustive TinScript instruction set. It is a
// dependency-free leaf so both internal/ast (which emits opcodes) and
// internal/vm (which dispatches on them) can import it without creating a
// cycle between the compiler and the VM.
package opcode

// Op identifies one bytecode instruction. All operand words are 32-bit.
type Op int32

const (
	NOP Op = iota

	VarDecl
	ParamDecl

	Push
	PushParam
	PushLocalVar
	PushLocalValue
	PushGlobalVar
	PushGlobalValue
	PushArrayVar
	PushArrayValue
	PushMember
	PushMemberVal
	PushPODMember
	PushPODMemberVal
	PushSelf

	Pop

	Add
	Sub
	Mult
	Div
	Mod

	Assign
	AssignAdd
	AssignSub
	AssignMult
	AssignDiv
	AssignMod

	BitAnd
	BitOr
	BitXor
	BitShiftLeft
	BitShiftRight
	AssignBitAnd
	AssignBitOr
	AssignBitXor
	AssignShiftLeft
	AssignShiftRight

	CompareEqual
	CompareNotEqual
	CompareLess
	CompareLessEqual
	CompareGreater
	CompareGreaterEqual

	BooleanAnd
	BooleanOr

	UnaryPreInc
	UnaryPreDec
	UnaryNeg
	UnaryPos
	UnaryBitInvert
	UnaryNot

	Branch
	BranchTrue
	BranchFalse

	FuncDecl
	FuncDeclEnd
	FuncCallArgs
	MethodCallArgs
	FuncCall
	FuncReturn

	ArrayHash
	ArrayVarDecl
	SelfVarDecl

	ScheduleBegin
	ScheduleParam
	ScheduleEnd

	CreateObject
	DestroyObject

	EOF

	numOps
)

// NumOps is the number of defined opcodes, exported so internal/vm can size
// its dispatch table against this package's enum without duplicating it.
const NumOps = int(numOps)

// OperandWords is the fixed operand-word count for each opcode (not
// counting the opcode word itself).
var OperandWords = [numOps]int{
	NOP: 0,

	VarDecl:   2, // var_hash, type
	ParamDecl: 2, // var_hash, type

	Push:              2, // type, value_words (value itself follows separately per type size)
	PushParam:         1,
	PushLocalVar:      2,
	PushLocalValue:    2,
	PushGlobalVar:     3, // 0, func_hash, var_hash
	PushGlobalValue:   3,
	PushArrayVar:      3,
	PushArrayValue:    3,
	PushMember:        1,
	PushMemberVal:     1,
	PushPODMember:     1,
	PushPODMemberVal:  1,
	PushSelf:          0,

	Pop: 0,

	Add: 0, Sub: 0, Mult: 0, Div: 0, Mod: 0,

	Assign: 0, AssignAdd: 0, AssignSub: 0, AssignMult: 0, AssignDiv: 0, AssignMod: 0,

	BitAnd: 0, BitOr: 0, BitXor: 0, BitShiftLeft: 0, BitShiftRight: 0,
	AssignBitAnd: 0, AssignBitOr: 0, AssignBitXor: 0, AssignShiftLeft: 0, AssignShiftRight: 0,

	CompareEqual: 0, CompareNotEqual: 0, CompareLess: 0, CompareLessEqual: 0,
	CompareGreater: 0, CompareGreaterEqual: 0,

	BooleanAnd: 0, BooleanOr: 0,

	UnaryPreInc: 0, UnaryPreDec: 0, UnaryNeg: 0, UnaryPos: 0, UnaryBitInvert: 0, UnaryNot: 0,

	Branch:      1,
	BranchTrue:  1,
	BranchFalse: 1,

	FuncDecl:       3, // func_hash, ns_hash, body_offset
	FuncDeclEnd:    0,
	FuncCallArgs:   2, // ns_hash, func_hash
	MethodCallArgs: 2, // ns_hash, method_hash
	FuncCall:       0,
	FuncReturn:     0,

	ArrayHash:    0,
	ArrayVarDecl: 1, // type
	SelfVarDecl:  2, // var_hash, type

	ScheduleBegin: 1, // immediate_flag
	ScheduleParam: 1, // paramindex
	ScheduleEnd:   0,

	CreateObject:  1, // class_hash
	DestroyObject: 0,

	EOF: 0,
}

var names = [numOps]string{
	NOP: "NOP",

	VarDecl:   "VarDecl",
	ParamDecl: "ParamDecl",

	Push: "Push", PushParam: "PushParam", PushLocalVar: "PushLocalVar",
	PushLocalValue: "PushLocalValue", PushGlobalVar: "PushGlobalVar",
	PushGlobalValue: "PushGlobalValue", PushArrayVar: "PushArrayVar",
	PushArrayValue: "PushArrayValue", PushMember: "PushMember",
	PushMemberVal: "PushMemberVal", PushPODMember: "PushPODMember",
	PushPODMemberVal: "PushPODMemberVal", PushSelf: "PushSelf",

	Pop: "Pop",

	Add: "Add", Sub: "Sub", Mult: "Mult", Div: "Div", Mod: "Mod",

	Assign: "Assign", AssignAdd: "AssignAdd", AssignSub: "AssignSub",
	AssignMult: "AssignMult", AssignDiv: "AssignDiv", AssignMod: "AssignMod",

	BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor",
	BitShiftLeft: "BitShiftLeft", BitShiftRight: "BitShiftRight",
	AssignBitAnd: "AssignBitAnd", AssignBitOr: "AssignBitOr", AssignBitXor: "AssignBitXor",
	AssignShiftLeft: "AssignShiftLeft", AssignShiftRight: "AssignShiftRight",

	CompareEqual: "CompareEqual", CompareNotEqual: "CompareNotEqual",
	CompareLess: "CompareLess", CompareLessEqual: "CompareLessEqual",
	CompareGreater: "CompareGreater", CompareGreaterEqual: "CompareGreaterEqual",

	BooleanAnd: "BooleanAnd", BooleanOr: "BooleanOr",

	UnaryPreInc: "UnaryPreInc", UnaryPreDec: "UnaryPreDec", UnaryNeg: "UnaryNeg",
	UnaryPos: "UnaryPos", UnaryBitInvert: "UnaryBitInvert", UnaryNot: "UnaryNot",

	Branch: "Branch", BranchTrue: "BranchTrue", BranchFalse: "BranchFalse",

	FuncDecl: "FuncDecl", FuncDeclEnd: "FuncDeclEnd", FuncCallArgs: "FuncCallArgs",
	MethodCallArgs: "MethodCallArgs", FuncCall: "FuncCall", FuncReturn: "FuncReturn",

	ArrayHash: "ArrayHash", ArrayVarDecl: "ArrayVarDecl", SelfVarDecl: "SelfVarDecl",

	ScheduleBegin: "ScheduleBegin", ScheduleParam: "ScheduleParam", ScheduleEnd: "ScheduleEnd",

	CreateObject: "CreateObject", DestroyObject: "DestroyObject",

	EOF: "EOF",
}

func (op Op) String() string {
	if op < 0 || int(op) >= len(names) || names[op] == "" {
		return "<invalid opcode>"
	}
	return names[op]
}
