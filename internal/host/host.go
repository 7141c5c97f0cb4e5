// Package host implements the global registry of ScriptContexts: multiple
// ScriptContexts may exist, keyed in a global registry by thread-name hash,
// with one designated the main thread context. The library itself performs
// no locking across contexts -- that responsibility stays with whatever owns
// this Registry.
package host

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"tinscript/internal/hash"
)

// Context is the minimal surface a registered ScriptContext needs: a
// per-tick update entry point. internal/vm.Machine satisfies this directly
// via its Update method; the full script.ScriptContext wrapper will too.
type Context interface {
	Update(now int64) error
}

// Registry is the keyed-by-thread-name-hash map of live contexts, plus the
// single designation of which one is "main".
type Registry struct {
	mu       sync.RWMutex
	byHash   map[uint32]Context
	nameOf   map[uint32]string
	mainHash uint32
	fold     bool
}

// New returns an empty Registry. fold must match the fold setting every
// registered context's own StringTable uses, since thread names hash
// through the same case-folding rule as everything else.
func New(fold bool) *Registry {
	return &Registry{
		byHash: map[uint32]Context{},
		nameOf: map[uint32]string{},
		fold:   fold,
	}
}

// Register adds ctx under threadName's hash. The first context registered
// becomes the main thread context unless MakeMain is called explicitly
// later.
func (r *Registry) Register(threadName string, ctx Context) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	h := hash.Of(threadName, r.fold)
	r.byHash[h] = ctx
	r.nameOf[h] = threadName
	if r.mainHash == 0 {
		r.mainHash = h
	}
	return h
}

// Unregister removes a context by thread-name hash.
func (r *Registry) Unregister(threadNameHash uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byHash, threadNameHash)
	delete(r.nameOf, threadNameHash)
	if r.mainHash == threadNameHash {
		r.mainHash = 0
	}
}

// MakeMain designates the context registered under threadNameHash as the
// main thread context, the one that backs all module-level registration
// macros.
func (r *Registry) MakeMain(threadNameHash uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byHash[threadNameHash]; !ok {
		return fmt.Errorf("host: no context registered under hash %#x", threadNameHash)
	}
	r.mainHash = threadNameHash
	return nil
}

// Main returns the designated main thread context, if any.
func (r *Registry) Main() (Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.mainHash == 0 {
		return nil, false
	}
	c, ok := r.byHash[r.mainHash]
	return c, ok
}

// Lookup returns the context registered under threadNameHash.
func (r *Registry) Lookup(threadNameHash uint32) (Context, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byHash[threadNameHash]
	return c, ok
}

// Len reports how many contexts are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byHash)
}

// UpdateAll drives every registered context's Update(now) tick concurrently,
// generalizing the embedder's-main-loop shape (each context's Update must be
// called by the embedder from its own main loop) to a host managing more
// than one context at once. The library itself performs no cross-context
// locking, so this only fans out if the caller's own contexts are in fact
// independent; it does not retrofit a lock TinScript was explicitly designed
// without. The first error cancels the group and is returned; all other
// in-flight updates still run to completion.
func (r *Registry) UpdateAll(ctx context.Context, now int64) error {
	r.mu.RLock()
	targets := make([]Context, 0, len(r.byHash))
	names := make([]string, 0, len(r.byHash))
	for h, c := range r.byHash {
		targets = append(targets, c)
		names = append(names, r.nameOf[h])
	}
	r.mu.RUnlock()

	g, _ := errgroup.WithContext(ctx)
	for i, c := range targets {
		c, name := c, names[i]
		g.Go(func() error {
			if err := c.Update(now); err != nil {
				return fmt.Errorf("host: context %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
