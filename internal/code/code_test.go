package code_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/ast"
	"tinscript/internal/code"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
)

func TestCompileAssignsInstructionsAndUntracksParsing(t *testing.T) {
	reg := code.NewRegistry()
	prog := ast.Seq(ast.Bin(opcode.Assign, ast.GlobalRef(0, 1), ast.Lit(types.NewInt(5))))

	b, err := code.Compile(reg, "main.tin", 0xF00D, prog)
	require.NoError(t, err)
	require.False(t, b.IsParsing)
	require.NotEmpty(t, b.Instructions)
	require.Equal(t, int32(opcode.PushGlobalVar), b.Instructions[0])

	got, ok := reg.Lookup(b.ID)
	require.True(t, ok)
	require.Same(t, b, got)
}

func TestCompileScansDefinedFunctions(t *testing.T) {
	reg := code.NewRegistry()
	fn := ast.FuncDeclNode(0xAAAA, 0,
		[]ast.Param{{NameHash: 0x1, Type: types.Int}},
		[]ast.Param{{NameHash: 0x2, Type: types.Float}},
		ast.Seq(ast.Return(ast.Lit(types.NewInt(0)), types.Int)),
	)

	b, err := code.Compile(reg, "funcs.tin", 1, ast.Seq(fn))
	require.NoError(t, err)

	require.Equal(t, []code.FuncDef{{FuncHash: 0xAAAA, NSHash: 0, InstrOffset: 13}}, b.Defined)
}

func TestCompileAbortsRegistrationOnEvalError(t *testing.T) {
	reg := code.NewRegistry()
	// An unsupported Kind hits the same error path both passes share,
	// without needing a node variant that legitimately fails at runtime.
	bad := &ast.Node{Kind: ast.Kind(200)}

	_, err := code.Compile(reg, "bad.tin", 2, bad)
	require.Error(t, err)

	_, ok := reg.Lookup(1)
	require.False(t, ok, "aborted compile must not leave a registered block behind")
}

func buildLinedProgram() *ast.Node {
	stmt := func(line int, varHash uint32, v int32) *ast.Node {
		n := ast.Bin(opcode.Assign, ast.GlobalRef(0, varHash), ast.Lit(types.NewInt(v)))
		n.Line = line
		return n
	}
	return ast.Seq(
		stmt(10, 1, 5),
		stmt(11, 2, 6),
		stmt(12, 3, 7),
	)
}

func TestNearestLineResolvesByOffset(t *testing.T) {
	reg := code.NewRegistry()
	b, err := code.Compile(reg, "lines.tin", 3, buildLinedProgram())
	require.NoError(t, err)

	require.Equal(t, 10, b.NearestLine(0))
	require.Equal(t, 11, b.NearestLine(8))
	require.Equal(t, 12, b.NearestLine(16))
	require.Equal(t, 12, b.NearestLine(23))
}

func TestBreakpointSetClearAndResolve(t *testing.T) {
	reg := code.NewRegistry()
	b, err := code.Compile(reg, "lines.tin", 4, buildLinedProgram())
	require.NoError(t, err)

	b.SetBreakpoint(11)
	b.SetBreakpoint(12)
	require.ElementsMatch(t, []int{11, 12}, b.Breakpoints())

	offset, ok := b.ResolveBreakpoint(11)
	require.True(t, ok)
	require.Equal(t, 8, offset)

	_, ok = b.ResolveBreakpoint(13)
	require.False(t, ok)

	b.ClearBreakpoint(11)
	require.ElementsMatch(t, []int{12}, b.Breakpoints())
}

func TestRegistryDestroyRefusesWhileInUse(t *testing.T) {
	reg := code.NewRegistry()
	b, err := code.Compile(reg, "retained.tin", 5, buildLinedProgram())
	require.NoError(t, err)

	b.Retain()
	require.True(t, b.IsInUse())
	require.Error(t, reg.Destroy(b.ID))

	b.Release()
	require.False(t, b.IsInUse())
	require.NoError(t, reg.Destroy(b.ID))

	_, ok := reg.Lookup(b.ID)
	require.False(t, ok)
}
