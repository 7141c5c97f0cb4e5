package ast_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/ast"
	"tinscript/internal/emit"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

// compile runs the count-only pass then the emit pass and asserts they
// agree on size: both passes must walk the tree identically.
func compile(t *testing.T, n *ast.Node, pushKind types.VarType) []int32 {
	t.Helper()
	counter := emit.NewCounter()
	size, err := n.Eval(counter, pushKind)
	require.NoError(t, err)
	require.Equal(t, counter.Count, size)

	emitter := emit.NewEmitter(size)
	size2, err := n.Eval(emitter, pushKind)
	require.NoError(t, err)
	require.Equal(t, size, size2)
	require.Len(t, emitter.Buf, size)
	return emitter.Buf
}

func TestArithmeticPrecedence(t *testing.T) {
	// 1 + 2 * 3
	expr := ast.Bin(opcode.Add,
		ast.Lit(types.NewInt(1)),
		ast.Bin(opcode.Mult, ast.Lit(types.NewInt(2)), ast.Lit(types.NewInt(3))),
	)
	buf := compile(t, expr, types.Resolve)

	// Push 1; Push 2; Push 3; Mult; Add
	require.Equal(t, []int32{
		int32(opcode.Push), int32(types.Int), 1,
		int32(opcode.Push), int32(types.Int), 2,
		int32(opcode.Push), int32(types.Int), 3,
		int32(opcode.Mult),
		int32(opcode.Add),
	}, buf)
}

func TestVoidDiscardsBinaryOpResult(t *testing.T) {
	expr := ast.Bin(opcode.Add, ast.Lit(types.NewInt(1)), ast.Lit(types.NewInt(2)))
	buf := compile(t, expr, types.Void)
	require.Equal(t, opcode.Pop, opcode.Op(buf[len(buf)-1]))
}

func TestAssignEvaluatesLeftAsVarRef(t *testing.T) {
	assign := ast.Bin(opcode.Assign, ast.GlobalRef(0, 0x1234), ast.Lit(types.NewInt(7)))
	buf := compile(t, assign, types.Void)

	require.Equal(t, int32(opcode.PushGlobalVar), buf[0])
	// Assign never pops its own value (it consumes both operands itself);
	// Void pushKind on an assign-family op must NOT add a trailing Pop.
	require.Equal(t, int32(opcode.Assign), buf[len(buf)-1])
}

func TestWhileLoopBranchesBackToCondition(t *testing.T) {
	// while (i < 5) { i = i + 1; }
	cond := ast.Bin(opcode.CompareLess, ast.GlobalRef(0, 1), ast.Lit(types.NewInt(5)))
	body := ast.Seq(ast.Bin(opcode.Assign, ast.GlobalRef(0, 1), ast.Bin(opcode.Add, ast.GlobalRef(0, 1), ast.Lit(types.NewInt(1)))))
	loop := ast.While(cond, body)

	buf := compile(t, loop, types.Void)
	require.Equal(t, int32(opcode.BranchFalse), buf[8])
	require.Equal(t, int32(opcode.Branch), buf[len(buf)-2])

	// the back-branch operand must be negative (jumps backward to the
	// condition) and land exactly on the first condition word.
	backOffset := buf[len(buf)-1]
	require.Less(t, backOffset, int32(0))
	require.Equal(t, int32(-len(buf)), backOffset)
}

func TestIfElseSkipsElseBranch(t *testing.T) {
	n := ast.IfElse(
		ast.Lit(types.NewBool(true)),
		ast.Seq(ast.Lit(types.NewInt(1))),
		ast.Seq(ast.Lit(types.NewInt(2))),
	)
	buf := compile(t, n, types.Void)
	require.Equal(t, int32(opcode.BranchFalse), buf[3])
	require.Equal(t, int32(opcode.Branch), buf[9])
}

func TestFuncDeclEmitsParamAndLocalDecls(t *testing.T) {
	fn := ast.FuncDeclNode(0xAAAA, 0,
		[]ast.Param{{NameHash: 0x1, Type: types.Int}},
		[]ast.Param{{NameHash: 0x2, Type: types.Float}},
		ast.Seq(ast.Return(ast.Lit(types.NewInt(0)), types.Int)),
	)
	buf := compile(t, fn, types.Void)
	require.Equal(t, int32(opcode.FuncDecl), buf[0])
	require.Equal(t, int32(opcode.ParamDecl), buf[4])
	require.Equal(t, int32(opcode.VarDecl), buf[7])
	require.Equal(t, int32(opcode.FuncDeclEnd), buf[10])
	require.Equal(t, int32(opcode.Branch), buf[11])
}

func TestFuncCallPushesArgsThenCalls(t *testing.T) {
	call := ast.Call(0, 0xBEEF, false, ast.Lit(types.NewInt(40)), ast.Lit(types.NewInt(2)))
	buf := compile(t, call, types.Resolve)
	require.Equal(t, int32(opcode.FuncCallArgs), buf[0])
	require.Equal(t, int32(opcode.PushParam), buf[3])
	require.Equal(t, int32(1), buf[4])
	require.Equal(t, int32(opcode.FuncCall), buf[len(buf)-1])
}

func TestScheduleEndPushesRequestIDUnlessVoid(t *testing.T) {
	sched := ast.ScheduleCall(
		ast.Lit(types.NewInt(200)),
		ast.Lit(types.NewObject(1)),
		ast.Lit(types.NewString(0x51)),
		false,
	)
	bufValue := compile(t, sched, types.Resolve)
	require.Equal(t, int32(opcode.ScheduleEnd), bufValue[len(bufValue)-1])

	bufVoid := compile(t, sched, types.Void)
	require.Equal(t, int32(opcode.Pop), bufVoid[len(bufVoid)-1])
}

func TestArrayHashAccumulatesOverHashtableKeys(t *testing.T) {
	n := ast.Hash(ast.Lit(types.NewInt(0)), ast.Lit(types.NewString(0x41)))
	buf := compile(t, n, types.Resolve)
	require.Equal(t, int32(opcode.ArrayHash), buf[len(buf)-1])
}

// TestDump exercises ast.Dump -- the compile-tree printer grounded on the
// teacher's dumper.go -- against a tree with the Left, Right, Else, Args and
// Next child links populated (Body is not), plus the nil-root case a caller
// hits when dumping an empty program.
func TestDump(t *testing.T) {
	require.Equal(t, "<nil>", ast.Dump(nil))

	call := ast.Call(0, 0xBEEF, false, ast.Lit(types.NewInt(40)), ast.Lit(types.NewInt(2)))
	ifElse := ast.IfElse(
		ast.Lit(types.NewBool(true)),
		ast.Seq(call),
		ast.Seq(ast.Lit(types.NewInt(2))),
	)
	prog := ast.Seq(ifElse, ast.Bin(opcode.Add, ast.GlobalRef(0, 0x1234), ast.Lit(types.NewInt(1))))

	out := ast.Dump(prog)
	require.Contains(t, out, "If")
	require.Contains(t, out, "FuncCall(#0xbeef in ns #0x0 method=false)")
	require.Contains(t, out, "BinaryOp(Add)")
	require.Contains(t, out, "arg[0]")
	require.Contains(t, out, "next:")
	require.Contains(t, out, "else:")
}
