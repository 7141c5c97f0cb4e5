package emit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/emit"
)

func TestCounterAndEmitterAgreeOnSize(t *testing.T) {
	write := func(c *emit.Cursor) {
		c.Emit(1)
		c.Emit(2)
		at := c.Reserve(1)
		c.Emit(4)
		c.Patch(at, 3)
	}

	counter := emit.NewCounter()
	write(counter)
	require.Equal(t, 4, counter.Count)

	emitter := emit.NewEmitter(counter.Count)
	write(emitter)
	require.Equal(t, []int32{1, 2, 3, 4}, emitter.Buf)
}

func TestPatchIsNoOpInCountOnlyMode(t *testing.T) {
	c := emit.NewCounter()
	at := c.Reserve(1)
	require.NotPanics(t, func() { c.Patch(at, 99) })
}

func TestSetLineDedupesConsecutiveCalls(t *testing.T) {
	c := emit.NewEmitter(3)
	c.SetLine(10)
	c.Emit(1)
	c.SetLine(10)
	c.Emit(2)
	c.SetLine(11)
	c.Emit(3)
	require.Equal(t, []emit.LineEntry{{Offset: 0, Line: 10}, {Offset: 2, Line: 11}}, c.Lines)
}
