package ns

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// pendingLink is a namespace awaiting its parent hookup: namespaces
// registered from native code form a linked-list awaiting hookup until
// their parent is known.
type pendingLink struct {
	child      *Namespace
	parentHash uint32
}

// Registry is the hash-table of namespaces chained by single inheritance.
type Registry struct {
	byHash  *swiss.Map[uint32, *Namespace]
	pending []pendingLink
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byHash: swiss.NewMap[uint32, *Namespace](8)}
}

// Register adds ns under its own NameHash. If parentHash is non-zero the
// link is queued, whether or not the parent is registered yet; call Drain
// once all expected namespaces have been Registered/Linked.
func (r *Registry) Register(n *Namespace, parentHash uint32) {
	r.byHash.Put(n.NameHash, n)
	if parentHash != 0 {
		r.pending = append(r.pending, pendingLink{child: n, parentHash: parentHash})
	}
}

// Link queues a parent-child relationship named by hash (Drain resolves
// it), for hosts that register the link separately from the namespace
// itself (the Context::LinkNamespaces(child, parent) entry point).
func (r *Registry) Link(childHash, parentHash uint32) error {
	child, ok := r.byHash.Get(childHash)
	if !ok {
		return fmt.Errorf("link_namespaces: unknown child namespace %#x", childHash)
	}
	r.pending = append(r.pending, pendingLink{child: child, parentHash: parentHash})
	return nil
}

// Lookup returns a registered namespace by hash.
func (r *Registry) Lookup(hash uint32) (*Namespace, bool) {
	return r.byHash.Get(hash)
}

// Drain resolves every queued pending link, iterating passes until either
// the queue empties (every namespace hooked up) or a pass makes no progress,
// which is a fatal cycle-or-missing-parent condition.
func (r *Registry) Drain() error {
	for len(r.pending) > 0 {
		var remaining []pendingLink
		progressed := false
		for _, link := range r.pending {
			parent, ok := r.byHash.Get(link.parentHash)
			if !ok {
				remaining = append(remaining, link)
				continue
			}
			cyclic := false
			for p := parent; p != nil; p = p.Parent {
				if p == link.child {
					cyclic = true
					break
				}
			}
			if cyclic {
				remaining = append(remaining, link)
				continue
			}
			link.child.Parent = parent
			progressed = true
		}
		if !progressed {
			return fmt.Errorf("namespace registration stalled: %d namespace(s) have a missing parent or form a cycle", len(remaining))
		}
		r.pending = remaining
	}
	return nil
}
