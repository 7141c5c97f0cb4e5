package objreg

import (
	"fmt"

	"github.com/dolthub/swiss"

	"tinscript/internal/ns"
)

// Registry indexes ObjectEntries by id, raw address and name. Names may be
// ambiguous: last-registered wins on lookup-by-name.
type Registry struct {
	byID      *swiss.Map[uint32, *Entry]
	byAddress *swiss.Map[Address, *Entry]
	byName    *swiss.Map[uint32, *Entry]

	nextID uint32
}

// NewRegistry returns an empty Registry. Object IDs are assigned starting
// at 1; 0 is never a valid id, mirroring the reserved-zero-hash convention
// for the global namespace.
func NewRegistry() *Registry {
	return &Registry{
		byID:      swiss.NewMap[uint32, *Entry](8),
		byAddress: swiss.NewMap[Address, *Entry](8),
		byName:    swiss.NewMap[uint32, *Entry](8),
	}
}

// Create runs namespace's most-derived constructor, allocates a fresh
// ObjectEntry and indexes it in all three dictionaries.
func (r *Registry) Create(name string, nameHash uint32, namespace *ns.Namespace) (*Entry, error) {
	create := namespace.MostDerivedCreate()
	if create == nil {
		return nil, fmt.Errorf("namespace %q has no constructor in its inheritance chain", namespace.Name)
	}
	addr, err := create(name)
	if err != nil {
		return nil, err
	}

	r.nextID++
	e := &Entry{
		ID:        r.nextID,
		Name:      name,
		NameHash:  nameHash,
		Namespace: namespace,
		Address:   Address(addr),
	}
	r.byID.Put(e.ID, e)
	r.byAddress.Put(e.Address, e)
	r.byName.Put(nameHash, e) // last-registered wins by construction order
	return e, nil
}

// Destroy runs namespace's most-derived destructor, removes the entry from
// all three indices and discards its dynamic-variable bag.
func (r *Registry) Destroy(id uint32) error {
	e, ok := r.byID.Get(id)
	if !ok {
		return fmt.Errorf("destroy: unknown object id %d", id)
	}
	destroy := e.Namespace.MostDerivedDestroy()
	if destroy != nil {
		if err := destroy(uint64(e.Address)); err != nil {
			return err
		}
	}
	r.byID.Delete(e.ID)
	r.byAddress.Delete(e.Address)
	// Only drop the name index if it still points at this entry: an older
	// object with the same ambiguous name may have been re-registered
	// under it in the meantime is not possible (last-registered always
	// overwrote), but a *newer* same-named object could have replaced this
	// entry already.
	if cur, ok := r.byName.Get(e.NameHash); ok && cur == e {
		r.byName.Delete(e.NameHash)
	}
	if e.HasDynamic() {
		e.Dynamic().Destroy()
	}
	return nil
}

func (r *Registry) ByID(id uint32) (*Entry, bool)           { return r.byID.Get(id) }
func (r *Registry) ByAddress(addr Address) (*Entry, bool)    { return r.byAddress.Get(addr) }
func (r *Registry) ByName(nameHash uint32) (*Entry, bool)    { return r.byName.Get(nameHash) }

// IsObject reports whether id currently names a live object, the direct
// backing for the script builtin IsObject().
func (r *Registry) IsObject(id uint32) bool {
	_, ok := r.byID.Get(id)
	return ok
}

// Each iterates every live object entry, keyed by id; iteration order is
// unspecified. Backs ListObjects().
func (r *Registry) Each(f func(*Entry) bool) {
	r.byID.Iter(func(_ uint32, e *Entry) bool {
		return f(e)
	})
}

// Count reports the number of live objects.
func (r *Registry) Count() int { return r.byID.Count() }
