package host_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"tinscript/internal/hash"
	"tinscript/internal/host"
)

type fakeContext struct {
	updates int32
	lastNow int64
	failAt  int64
}

func (f *fakeContext) Update(now int64) error {
	atomic.AddInt32(&f.updates, 1)
	atomic.StoreInt64(&f.lastNow, now)
	if f.failAt != 0 && now == f.failAt {
		return fmt.Errorf("boom at %d", now)
	}
	return nil
}

func TestRegisterFirstContextBecomesMain(t *testing.T) {
	r := host.New(false)
	worker := &fakeContext{}
	workerHash := r.Register("worker", worker)

	main, ok := r.Main()
	require.True(t, ok)
	require.Same(t, worker, main)

	looked, ok := r.Lookup(workerHash)
	require.True(t, ok)
	require.Same(t, worker, looked)
}

func TestMakeMainRetargetsDesignation(t *testing.T) {
	r := host.New(false)
	r.Register("worker-a", &fakeContext{})
	bHash := r.Register("worker-b", &fakeContext{})

	require.NoError(t, r.MakeMain(bHash))
	main, ok := r.Main()
	require.True(t, ok)
	b, ok := r.Lookup(bHash)
	require.True(t, ok)
	require.Same(t, b, main)
}

func TestMakeMainRejectsUnknownHash(t *testing.T) {
	r := host.New(false)
	require.Error(t, r.MakeMain(hash.Of("nope", false)))
}

func TestUnregisterClearsMainDesignation(t *testing.T) {
	r := host.New(false)
	h := r.Register("only", &fakeContext{})
	r.Unregister(h)

	require.Equal(t, 0, r.Len())
	_, ok := r.Main()
	require.False(t, ok)
}

func TestUpdateAllDrivesEveryContext(t *testing.T) {
	r := host.New(false)
	a := &fakeContext{}
	b := &fakeContext{}
	r.Register("a", a)
	r.Register("b", b)

	require.NoError(t, r.UpdateAll(context.Background(), 42))

	require.EqualValues(t, 1, a.updates)
	require.EqualValues(t, 42, a.lastNow)
	require.EqualValues(t, 1, b.updates)
	require.EqualValues(t, 42, b.lastNow)
}

func TestUpdateAllPropagatesFirstError(t *testing.T) {
	r := host.New(false)
	ok := &fakeContext{}
	bad := &fakeContext{failAt: 7}
	r.Register("ok", ok)
	r.Register("bad", bad)

	err := r.UpdateAll(context.Background(), 7)
	require.Error(t, err)
	require.EqualValues(t, 1, ok.updates)
	require.EqualValues(t, 1, bad.updates)
}
