package vars_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/types"
	"tinscript/internal/vars"
)

func TestScriptOwnedGetSet(t *testing.T) {
	e := vars.NewScriptOwned("x", 1, types.Int)
	require.False(t, e.StackOffsetAssigned())
	e.Set(types.NewInt(7))
	require.EqualValues(t, 7, e.Get().Int())
}

func TestStackLocalOffsetAssignedOnce(t *testing.T) {
	e := vars.NewStackLocal("a", 1, types.Int)
	require.False(t, e.StackOffsetAssigned())
	e.SetStackOffset(0)
	require.True(t, e.StackOffsetAssigned())
	require.EqualValues(t, 0, e.StackOffset())
}

func TestTablePutGetDelete(t *testing.T) {
	tbl := vars.NewTable()
	e := vars.NewScriptOwned("x", 42, types.Int)
	tbl.Put(e)

	got, ok := tbl.Get(42)
	require.True(t, ok)
	require.Same(t, e, got)

	del, ok := tbl.Delete(42)
	require.True(t, ok)
	require.Same(t, e, del)

	_, ok = tbl.Get(42)
	require.False(t, ok)
}

func TestTableDestroyRecursesIntoHashtables(t *testing.T) {
	outer := vars.NewTable()
	h := vars.NewScriptOwned("t", 1, types.Hashtable)
	nested := h.Nested()
	nested.Put(vars.NewScriptOwned("inner", 2, types.Int))
	outer.Put(h)

	require.Equal(t, 1, nested.Len())
	outer.Destroy()
	require.Equal(t, 0, nested.Len())
	require.Equal(t, 0, outer.Len())
}
