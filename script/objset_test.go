package script_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/hash"
	"tinscript/internal/ns"
	"tinscript/script"
)

func newWidgetNamespace(ctx *script.ScriptContext) {
	n := ns.New("Widget", hash.Of("Widget", false))
	n.Create = func(name string) (uint64, error) { return 1, nil }
	_ = ctx.M.RegisterNamespace(n, 0)
}

func TestCreateObjectSetTracksMembership(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	newWidgetNamespace(ctx)
	widget, _ := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))

	w1, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)
	w2, err := ctx.M.Objects.Create("w2", hash.Of("w2", false), widget)
	require.NoError(t, err)

	setEntry, err := ctx.CreateObjectSet("set")
	require.NoError(t, err)
	s, ok := ctx.ObjectSet(setEntry.ID)
	require.True(t, ok)

	require.NoError(t, s.Add(w1.ID))
	require.NoError(t, s.Add(w2.ID))
	require.Equal(t, 2, s.Used())

	require.NoError(t, ctx.DestroyObject(setEntry.ID))
	_, ok = ctx.ObjectSet(setEntry.ID)
	require.False(t, ok)
	// A plain set never owns its members.
	_, stillAlive := ctx.FindObjectByID(w1.ID)
	require.True(t, stillAlive)
}

func TestCreateObjectGroupDestroysMembers(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	newWidgetNamespace(ctx)
	widget, _ := ctx.M.Namespaces.Lookup(hash.Of("Widget", false))

	w1, err := ctx.M.Objects.Create("w1", hash.Of("w1", false), widget)
	require.NoError(t, err)

	groupEntry, err := ctx.CreateObjectGroup("group")
	require.NoError(t, err)
	g, ok := ctx.ObjectGroup(groupEntry.ID)
	require.True(t, ok)
	require.NoError(t, g.Add(w1.ID))

	require.NoError(t, ctx.DestroyObject(groupEntry.ID))
	_, stillAlive := ctx.FindObjectByID(w1.ID)
	require.False(t, stillAlive)
}

func TestDestroyObjectRejectsUnknownID(t *testing.T) {
	ctx := script.Create("main", nil, nil, nil)
	require.Error(t, ctx.DestroyObject(9999))
}
