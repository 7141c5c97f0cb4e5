package script_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/funcs"
	"tinscript/internal/hash"
	"tinscript/internal/types"
	"tinscript/script"
)

func TestListObjectsReportsEveryLiveObject(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	newWidgetNamespace(ctx)
	widget, _ := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))
	_, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)

	rows := ctx.ListObjects()
	require.Len(t, rows, 1)
	require.Equal(t, "w1", rows[0].Name)
	require.Equal(t, "Widget", rows[0].Namespace)
}

func TestGetObjectNamespaceAndDefaultMethods(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	newWidgetNamespace(ctx)
	widget, _ := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))
	e, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)

	got, err := ctx.GetObjectNamespace(e.ID)
	require.NoError(t, err)
	require.Equal(t, "Widget", got)

	id, err := ctx.GetObjectID(e.ID)
	require.NoError(t, err)
	require.Equal(t, e.ID, id)

	name, err := ctx.GetObjectName(e.ID)
	require.NoError(t, err)
	require.Equal(t, "w1", name)

	_, err = ctx.GetObjectNamespace(9999)
	require.Error(t, err)
}

func TestListVariablesGlobalAndPerObject(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	require.NoError(t, ctx.RegisterGlobal("score", 0, types.Int))

	newWidgetNamespace(ctx)
	widget, _ := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))
	e, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)
	require.NoError(t, ctx.AddDynamicVariable(e.ID, "hp", types.Int))

	globals, err := ctx.ListVariables(0)
	require.NoError(t, err)
	require.Len(t, globals, 1)
	require.Equal(t, "score", globals[0].Name)

	members, err := ctx.ListMembers(e.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, "hp", members[0].Name)

	_, err = ctx.ListMembers(0)
	require.Error(t, err)
}

func TestListFunctionsGlobalAndPerObject(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	require.NoError(t, ctx.RegisterFunction("helper", script.Signature{Return: types.Int}, func(fc *funcs.Context) error {
		return nil
	}))

	require.NoError(t, ctx.RegisterClass("Widget", script.ClassDescriptor{
		Create: func(name string) (uint64, error) { return 1, nil },
	}))
	require.NoError(t, ctx.RegisterMethod("Widget", "ping", script.Signature{Return: types.Int}, func(fc *funcs.Context) error {
		return nil
	}))
	widget, ok := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))
	require.True(t, ok)
	e, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)

	globals, err := ctx.ListFunctions(0)
	require.NoError(t, err)
	require.Len(t, globals, 1)
	require.False(t, globals[0].IsMethod)

	methods, err := ctx.ListMethods(e.ID)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	require.True(t, methods[0].IsMethod)
}

func TestScheduleIntrospection(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	require.NoError(t, ctx.RegisterFunction("tick", script.Signature{Return: types.Int}, func(fc *funcs.Context) error {
		return nil
	}))

	require.NoError(t, ctx.M.Scheduler.Begin(100, 0, 0, hash.Of("tick", false), false, mustScheduleContext(ctx, "tick")))
	_, err := ctx.M.Scheduler.End(ctx.M)
	require.NoError(t, err)

	rows := ctx.ListSchedules()
	require.Len(t, rows, 1)

	ctx.ScheduleCancel(rows[0].RequestID)
	require.Empty(t, ctx.ListSchedules())
}

func mustScheduleContext(ctx *script.ScriptContext, fn string) *funcs.Context {
	entry, ok := ctx.M.LookupGlobalFunction(hash.Of(fn, false))
	if !ok {
		return nil
	}
	return entry.Context
}
