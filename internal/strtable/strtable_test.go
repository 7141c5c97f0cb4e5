package strtable_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/strtable"
)

func TestInternAndLookup(t *testing.T) {
	tbl := strtable.New(false)
	h := tbl.Intern("hello")
	s, ok := tbl.Lookup(h)
	require.True(t, ok)
	require.Equal(t, "hello", s)
}

func TestInternBumpsRefcountIdempotently(t *testing.T) {
	tbl := strtable.New(false)
	h1 := tbl.Intern("x")
	h2 := tbl.Intern("x")
	require.Equal(t, h1, h2)
}

func TestRemoveUnreferencedStringsPurgesZeroRefcount(t *testing.T) {
	tbl := strtable.New(false)
	h := tbl.Intern("orphan")
	tbl.RefCountDecrement(h)
	tbl.RemoveUnreferencedStrings()
	_, ok := tbl.Lookup(h)
	require.False(t, ok)
}

func TestPersistRoundTrip(t *testing.T) {
	tbl := strtable.New(false)
	tbl.Intern("alpha")
	tbl.Intern("beta")

	var buf bytes.Buffer
	require.NoError(t, tbl.Save(&buf))

	tbl2 := strtable.New(false)
	require.NoError(t, tbl2.Load(&buf))
	require.Equal(t, tbl.Len(), tbl2.Len())
}

func TestEmptyStringHashesToZeroAndIsNotInterned(t *testing.T) {
	tbl := strtable.New(false)
	h := tbl.Intern("")
	require.EqualValues(t, 0, h)
	_, ok := tbl.Lookup(0)
	require.False(t, ok)
}
