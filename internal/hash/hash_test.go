package hash_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/hash"
)

func TestEmptyStringIsZero(t *testing.T) {
	require.EqualValues(t, 0, hash.Of("", false))
	require.EqualValues(t, 0, hash.Of("", true))
}

func TestDeterministic(t *testing.T) {
	require.Equal(t, hash.Of("foo", false), hash.Of("foo", false))
	require.NotEqual(t, hash.Of("foo", false), hash.Of("bar", false))
}

func TestCaseFolding(t *testing.T) {
	require.Equal(t, hash.Of("Foo", true), hash.Of("foo", true))
	require.NotEqual(t, hash.Of("Foo", false), hash.Of("foo", false))
}

func TestAppendAccumulates(t *testing.T) {
	// ArrayHash starts its accumulator at 0, not at the standard 5381 seed
	// used by Of for whole-string hashing.
	h := hash.Append(0, "alpha", false)
	h2 := hash.Append(h, "_", false)
	h2 = hash.Append(h2, "beta", false)

	h3 := hash.Append(0, "alpha", false)
	h3 = hash.Append(h3, "_", false)
	h3 = hash.Append(h3, "beta", false)
	require.Equal(t, h3, h2)
	require.NotEqual(t, hash.Append(0, "alpha", false), hash.Append(0, "beta", false))
}
