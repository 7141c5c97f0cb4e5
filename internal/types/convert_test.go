package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/types"
)

type fakeTable struct {
	byHash map[uint32]string
	next   uint32
}

func newFakeTable() *fakeTable { return &fakeTable{byHash: map[uint32]string{}} }

func (t *fakeTable) Lookup(h uint32) (string, bool) { s, ok := t.byHash[h]; return s, ok }
func (t *fakeTable) Intern(s string) uint32 {
	t.next++
	t.byHash[t.next] = s
	return t.next
}

func TestConvertStringToIntCoercion(t *testing.T) {
	st := newFakeTable()
	h := st.Intern("2")
	v := types.NewString(h)
	out, err := types.Convert(v, types.Int, st)
	require.NoError(t, err)
	require.EqualValues(t, 2, out.Int())
}

func TestConvertIntToFloatAndBack(t *testing.T) {
	st := newFakeTable()
	out, err := types.Convert(types.NewInt(40), types.Float, st)
	require.NoError(t, err)
	require.Equal(t, float32(40), out.Float())

	out2, err := types.Convert(out, types.Int, st)
	require.NoError(t, err)
	require.EqualValues(t, 40, out2.Int())
}

func TestObjectTruthiness(t *testing.T) {
	st := newFakeTable()
	out, err := types.Convert(types.NewObject(0), types.Bool, st)
	require.NoError(t, err)
	require.False(t, out.Bool())

	out, err = types.Convert(types.NewObject(7), types.Bool, st)
	require.NoError(t, err)
	require.True(t, out.Bool())
}

func TestWordSizeMatchesMarkerShapes(t *testing.T) {
	require.Equal(t, 3, types.WordSize[types.VarRef])
	require.Equal(t, 4, types.WordSize[types.HashVarRef])
	require.Equal(t, 2, types.WordSize[types.MemberRef])
	require.Equal(t, 0, types.WordSize[types.Void])
}
