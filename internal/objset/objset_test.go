package objset_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/ns"
	"tinscript/internal/objreg"
	"tinscript/internal/objset"
)

func newCounterObjects(t *testing.T, r *objreg.Registry, n int) []uint32 {
	t.Helper()
	namespace := ns.New("Counter", 1)
	var nextAddr uint64
	namespace.Create = func(name string) (uint64, error) {
		nextAddr++
		return nextAddr, nil
	}
	ids := make([]uint32, n)
	for i := 0; i < n; i++ {
		e, err := r.Create("c", uint32(100+i), namespace)
		require.NoError(t, err)
		ids[i] = e.ID
	}
	return ids
}

func TestSetAddRemoveContains(t *testing.T) {
	r := objreg.NewRegistry()
	ids := newCounterObjects(t, r, 3)

	s := objset.NewSet(r)
	for _, id := range ids {
		require.NoError(t, s.Add(id))
	}
	require.Equal(t, 3, s.Used())
	require.True(t, s.Contains(ids[1]))

	s.Remove(ids[1])
	require.False(t, s.Contains(ids[1]))
	require.Equal(t, 2, s.Used())
	require.ElementsMatch(t, []uint32{ids[0], ids[2]}, s.ListObjects())
}

func TestSetAddUnknownObjectFails(t *testing.T) {
	r := objreg.NewRegistry()
	s := objset.NewSet(r)
	require.Error(t, s.Add(999))
}

func TestSetAddIsIdempotent(t *testing.T) {
	r := objreg.NewRegistry()
	ids := newCounterObjects(t, r, 1)
	s := objset.NewSet(r)
	require.NoError(t, s.Add(ids[0]))
	require.NoError(t, s.Add(ids[0]))
	require.Equal(t, 1, s.Used())
}

func TestSetIndexIteration(t *testing.T) {
	r := objreg.NewRegistry()
	ids := newCounterObjects(t, r, 3)
	s := objset.NewSet(r)
	for _, id := range ids {
		require.NoError(t, s.Add(id))
	}

	var seen []uint32
	i, ok := s.First()
	for ok {
		id, got := s.GetObjectByIndex(i)
		require.True(t, got)
		seen = append(seen, id)
		i, ok = s.Next(i)
	}
	require.Equal(t, ids, seen)
}

func TestGroupDestroyDestroysMembers(t *testing.T) {
	r := objreg.NewRegistry()
	namespace := ns.New("Counter", 1)
	var nextAddr uint64
	var destroyed []uint64
	namespace.Create = func(name string) (uint64, error) {
		nextAddr++
		return nextAddr, nil
	}
	namespace.Destroy = func(addr uint64) error {
		destroyed = append(destroyed, addr)
		return nil
	}

	e1, err := r.Create("a", 1, namespace)
	require.NoError(t, err)
	e2, err := r.Create("b", 2, namespace)
	require.NoError(t, err)

	g := objset.NewGroup(r)
	require.NoError(t, g.Add(e1.ID))
	require.NoError(t, g.Add(e2.ID))

	require.NoError(t, g.Destroy())
	require.Len(t, destroyed, 2)
	require.False(t, r.IsObject(e1.ID))
	require.False(t, r.IsObject(e2.ID))
	require.Equal(t, 0, g.Used())
}

func TestSetDoesNotOwnMembers(t *testing.T) {
	r := objreg.NewRegistry()
	ids := newCounterObjects(t, r, 1)
	s := objset.NewSet(r)
	require.NoError(t, s.Add(ids[0]))

	// A plain Set has no Destroy: dropping the ScriptContext's reference to
	// it leaves the underlying object alive, unlike a Group.
	require.True(t, r.IsObject(ids[0]))
}
