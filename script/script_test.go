package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/ast"
	"tinscript/internal/funcs"
	"tinscript/internal/hash"
	"tinscript/internal/opcode"
	"tinscript/internal/types"
	"tinscript/script"
)

// fakeParser stands in for the out-of-scope lexer/parser: it ignores its
// source argument entirely and always returns a fixed program, letting
// tests drive ExecScript/ExecCommand without a real front end.
type fakeParser struct {
	program func() *ast.Node
}

func (p *fakeParser) Parse(filename string, source []byte) (*ast.Node, error) {
	return p.program(), nil
}

func assignGlobal(t *testing.T, ctx *script.ScriptContext, nameHash uint32) int32 {
	t.Helper()
	e, err := ctx.M.ResolveVar(0, 0, nameHash, 0)
	require.NoError(t, err)
	return e.Get().Int()
}

func TestExecScriptRunsParsedProgram(t *testing.T) {
	outHash := hash.Of("out", false)
	parser := &fakeParser{program: func() *ast.Node {
		return ast.Seq(
			ast.VarDecl(outHash, types.Int, false),
			ast.Bin(opcode.Assign, ast.GlobalRef(0, outHash),
				ast.Bin(opcode.Add, ast.Lit(types.NewInt(4)), ast.Lit(types.NewInt(5)))),
		)
	}}

	var printed []string
	ctx := script.Create("main", parser, func(s string) { printed = append(printed, s) }, nil)

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.tin")
	require.NoError(t, os.WriteFile(path, []byte("unused"), 0o644))

	ok, err := ctx.ExecScript(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 9, assignGlobal(t, ctx, outHash))
}

func TestExecScriptUsesCacheOnSecondRun(t *testing.T) {
	outHash := hash.Of("out", false)
	calls := 0
	parser := &fakeParser{program: func() *ast.Node {
		calls++
		return ast.Seq(
			ast.VarDecl(outHash, types.Int, false),
			ast.Bin(opcode.Assign, ast.GlobalRef(0, outHash), ast.Lit(types.NewInt(7))),
		)
	}}

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.tin")
	require.NoError(t, os.WriteFile(path, []byte("unused"), 0o644))

	ctx1 := script.Create("main", parser, nil, nil, script.WithCacheDir(dir))
	ok, err := ctx1.ExecScript(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, calls)

	ctx2 := script.Create("main", parser, nil, nil, script.WithCacheDir(dir))
	ok, err = ctx2.ExecScript(path)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, calls, "second run should load the .cso cache instead of reparsing")
	require.EqualValues(t, 7, assignGlobal(t, ctx2, outHash))
}

func TestExecCommandRunsAdHocSource(t *testing.T) {
	outHash := hash.Of("out", false)
	parser := &fakeParser{program: func() *ast.Node {
		return ast.Seq(
			ast.VarDecl(outHash, types.Int, false),
			ast.Bin(opcode.Assign, ast.GlobalRef(0, outHash), ast.Lit(types.NewInt(1))),
		)
	}}
	ctx := script.Create("main", parser, nil, nil)

	ok, err := ctx.ExecCommand("out = 1;")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 1, assignGlobal(t, ctx, outHash))
}

func TestRegisterFunctionAndCallFromScript(t *testing.T) {
	sumHash := hash.Of("sum", false)
	outHash := hash.Of("out", false)
	parser := &fakeParser{program: func() *ast.Node {
		return ast.Seq(
			ast.VarDecl(outHash, types.Int, false),
			ast.Bin(opcode.Assign, ast.GlobalRef(0, outHash),
				ast.Call(0, sumHash, false, ast.Lit(types.NewInt(3)), ast.Lit(types.NewInt(4)))),
		)
	}}
	ctx := script.Create("main", parser, nil, nil)

	err := ctx.RegisterFunction("sum", script.Signature{
		Return:     types.Int,
		Parameters: []types.VarType{types.Int, types.Int},
	}, func(c *funcs.Context) error {
		a := c.Parameters[1].Get().Int()
		b := c.Parameters[2].Get().Int()
		c.Parameters[0].Set(types.NewInt(a + b))
		return nil
	})
	require.NoError(t, err)

	ok, err := ctx.ExecCommand("")
	require.NoError(t, err)
	require.True(t, ok)
	require.EqualValues(t, 7, assignGlobal(t, ctx, outHash))
}

func TestRegisterClassCreateDestroyAndDynamicVariable(t *testing.T) {
	widgetHash := hash.Of("Widget", false)
	objHash := hash.Of("obj", false)
	var ctx *script.ScriptContext
	parser := &fakeParser{program: func() *ast.Node {
		nameHash := ctx.M.Strings.Intern("w1")
		return ast.Seq(
			ast.VarDecl(objHash, types.Object, false),
			ast.Bin(opcode.Assign, ast.GlobalRef(0, objHash),
				ast.Create(ast.Lit(types.NewString(nameHash)), widgetHash)),
		)
	}}
	ctx = script.Create("main", parser, nil, nil)

	var nextAddr uint64
	require.NoError(t, ctx.RegisterClass("Widget", script.ClassDescriptor{
		Create: func(name string) (uint64, error) {
			nextAddr++
			return nextAddr, nil
		},
		Destroy: func(addr uint64) error { return nil },
		Members: []script.MemberDescriptor{{Name: "health", Type: types.Int}},
	}))

	ok, err := ctx.ExecCommand("")
	require.NoError(t, err)
	require.True(t, ok)

	objEntry, err := ctx.M.ResolveVar(0, 0, objHash, 0)
	require.NoError(t, err)
	objID := objEntry.Get().ObjectID()

	found, ok := ctx.FindObjectByID(objID)
	require.True(t, ok)
	require.EqualValues(t, 1, found.Address)

	require.NoError(t, ctx.AddDynamicVariable(objID, "nickname", types.String))
	dyn, ok := found.Dynamic().Get(hash.Of("nickname", false))
	require.True(t, ok)
	require.Equal(t, types.String, dyn.Type)
}

func TestLinkNamespacesAllowsChildBeforeParentDeclaration(t *testing.T) {
	ctx := script.Create("main", &fakeParser{program: func() *ast.Node { return ast.Seq() }}, nil, nil)

	require.NoError(t, ctx.RegisterClass("Widget", script.ClassDescriptor{}))
	require.NoError(t, ctx.RegisterClass("Base", script.ClassDescriptor{}))
	require.NoError(t, ctx.LinkNamespaces("Widget", "Base"))

	widget, ok := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))
	require.True(t, ok)
	base, ok := ctx.M.Namespaces.Lookup(hash.Of("Base", false))
	require.True(t, ok)
	require.Same(t, base, widget.Parent)
}

func TestRegisterGlobalIsVisibleToScriptAndTracksOpaqueAddr(t *testing.T) {
	scoreHash := hash.Of("score", false)
	parser := &fakeParser{program: func() *ast.Node {
		return ast.Seq(ast.Bin(opcode.Assign, ast.GlobalRef(0, scoreHash), ast.Lit(types.NewInt(11))))
	}}
	ctx := script.Create("main", parser, nil, nil)

	require.NoError(t, ctx.RegisterGlobal("score", 0xBEEF, types.Int))
	require.Error(t, ctx.RegisterGlobal("score", 0xCAFE, types.Int))

	addr, ok := ctx.NativeGlobalAddr("score")
	require.True(t, ok)
	require.EqualValues(t, 0xBEEF, addr)

	ok2, err := ctx.ExecCommand("")
	require.NoError(t, err)
	require.True(t, ok2)
	require.EqualValues(t, 11, assignGlobal(t, ctx, scoreHash))
}

func TestUpdateDelegatesToMachine(t *testing.T) {
	ctx := script.Create("main", &fakeParser{program: func() *ast.Node { return ast.Seq() }}, nil, nil)
	require.NoError(t, ctx.Update(100))
	require.EqualValues(t, 100, ctx.M.Now)
}
