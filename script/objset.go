package script

import (
	"fmt"

	"tinscript/internal/hash"
	"tinscript/internal/ns"
	"tinscript/internal/objreg"
	"tinscript/internal/objset"
)

// objectSetClass/objectGroupClass are the synthetic namespace names
// CreateObjectSet/CreateObjectGroup register their instances under, so a
// set or group gets an ordinary object id and shows up in FindObjectByID/
// ListObjects/GetObjectNamespace like any other object. Neither namespace
// declares script members or methods; a set/group's contents are reached
// through the ScriptContext accessors below, not script-visible fields.
const (
	objectSetClass   = "__ObjectSet"
	objectGroupClass = "__ObjectGroup"
)

func (c *ScriptContext) ensureObjectContainerNamespaces() {
	setHash := hash.Of(objectSetClass, c.M.Fold)
	if _, ok := c.M.Namespaces.Lookup(setHash); !ok {
		n := ns.New(objectSetClass, setHash)
		n.Create = func(string) (uint64, error) { return 0, nil }
		_ = c.M.RegisterNamespace(n, 0)
	}
	groupHash := hash.Of(objectGroupClass, c.M.Fold)
	if _, ok := c.M.Namespaces.Lookup(groupHash); !ok {
		n := ns.New(objectGroupClass, groupHash)
		n.Create = func(string) (uint64, error) { return 0, nil }
		_ = c.M.RegisterNamespace(n, 0)
	}
}

// CreateObjectSet implements Context::CreateObjectSet(name): allocates a
// membership-only ObjectSet and registers it as a live object under name,
// so it can be found and destroyed like any other object.
func (c *ScriptContext) CreateObjectSet(name string) (*objreg.Entry, error) {
	c.ensureObjectContainerNamespaces()
	namespace, _ := c.M.Namespaces.Lookup(hash.Of(objectSetClass, c.M.Fold))
	entry, err := c.M.Objects.Create(name, hash.Of(name, c.M.Fold), namespace)
	if err != nil {
		return nil, err
	}
	c.objSets[entry.ID] = objset.NewSet(c.M.Objects)
	return entry, nil
}

// CreateObjectGroup implements Context::CreateObjectGroup(name): allocates
// an owning ObjectGroup and registers it as a live object under name.
// Destroying the returned object id (via DestroyObject) also destroys
// every member still in the group.
func (c *ScriptContext) CreateObjectGroup(name string) (*objreg.Entry, error) {
	c.ensureObjectContainerNamespaces()
	namespace, _ := c.M.Namespaces.Lookup(hash.Of(objectGroupClass, c.M.Fold))
	entry, err := c.M.Objects.Create(name, hash.Of(name, c.M.Fold), namespace)
	if err != nil {
		return nil, err
	}
	c.objGroups[entry.ID] = objset.NewGroup(c.M.Objects)
	return entry, nil
}

// ObjectSet returns the ObjectSet backing a prior CreateObjectSet call.
func (c *ScriptContext) ObjectSet(id uint32) (*objset.Set, bool) {
	s, ok := c.objSets[id]
	return s, ok
}

// ObjectGroup returns the ObjectGroup backing a prior CreateObjectGroup
// call.
func (c *ScriptContext) ObjectGroup(id uint32) (*objset.Group, bool) {
	g, ok := c.objGroups[id]
	return g, ok
}

// DestroyObject destroys id. If id names an ObjectGroup, every member still
// in the group is destroyed first (the group's cascading-destroy
// semantics); if id names an ObjectSet, only the set's own bookkeeping is
// dropped, its members are left untouched.
func (c *ScriptContext) DestroyObject(id uint32) error {
	if g, ok := c.objGroups[id]; ok {
		if err := g.Destroy(); err != nil {
			return err
		}
		delete(c.objGroups, id)
	} else if _, ok := c.objSets[id]; ok {
		delete(c.objSets, id)
	}
	if !c.M.Objects.IsObject(id) {
		return fmt.Errorf("script: destroy_object: unknown object id %d", id)
	}
	return c.M.Objects.Destroy(id)
}
