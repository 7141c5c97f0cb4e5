package objreg_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/ns"
	"tinscript/internal/objreg"
)

func TestCreateDestroyLifecycle(t *testing.T) {
	r := objreg.NewRegistry()
	namespace := ns.New("Counter", 1)
	var nextAddr uint64 = 100
	var destroyed []uint64
	namespace.Create = func(name string) (uint64, error) {
		nextAddr++
		return nextAddr, nil
	}
	namespace.Destroy = func(addr uint64) error {
		destroyed = append(destroyed, addr)
		return nil
	}

	e, err := r.Create("c", 42, namespace)
	require.NoError(t, err)
	require.True(t, r.IsObject(e.ID))

	got, ok := r.ByAddress(e.Address)
	require.True(t, ok)
	require.Same(t, e, got)

	byName, ok := r.ByName(42)
	require.True(t, ok)
	require.Same(t, e, byName)

	require.NoError(t, r.Destroy(e.ID))
	require.False(t, r.IsObject(e.ID))
	require.Equal(t, []uint64{uint64(e.Address)}, destroyed)
}

func TestAmbiguousNameLastRegisteredWins(t *testing.T) {
	r := objreg.NewRegistry()
	namespace := ns.New("Counter", 1)
	namespace.Create = func(name string) (uint64, error) { return 1, nil }

	e1, err := r.Create("dup", 7, namespace)
	require.NoError(t, err)
	namespace.Create = func(name string) (uint64, error) { return 2, nil }
	e2, err := r.Create("dup", 7, namespace)
	require.NoError(t, err)

	got, ok := r.ByName(7)
	require.True(t, ok)
	require.Same(t, e2, got)
	require.NotSame(t, e1, e2)
}
