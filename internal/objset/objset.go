// Package objset implements ObjectSet and ObjectGroup: script-visible
// containers of object ids, each maintaining its own membership list
// alongside an index for O(1) Contains/Remove. The list keeps insertion order
// only until a Remove, which moves the last id into the freed slot.
//
// A Set tracks membership only. A Group additionally owns its members: when
// a Group is destroyed, every object still in it is destroyed too, rather
// than merely dropped from the list.
package objset

import (
	"fmt"

	"tinscript/internal/objreg"
)

// Set is an ObjectSet: a duplicate-free list of object ids backed by the
// same Registry every other object lives in. Ids are checked against the
// Registry when added; an id whose object is later destroyed elsewhere stays
// in the set until it is removed.
type Set struct {
	objects *objreg.Registry
	ids     []uint32
	index   map[uint32]int
}

// NewSet returns an empty Set reading/writing through objects.
func NewSet(objects *objreg.Registry) *Set {
	return &Set{objects: objects, index: map[uint32]int{}}
}

// Add appends id if it isn't already a member. Adding an id the Registry
// doesn't currently recognize is an error: a Set only ever holds live
// objects.
func (s *Set) Add(id uint32) error {
	if !s.objects.IsObject(id) {
		return fmt.Errorf("objset: add: unknown object id %d", id)
	}
	if _, ok := s.index[id]; ok {
		return nil
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return nil
}

// Remove drops id from the set if present; removing an absent id is a
// no-op. Uses swap-with-last so Remove stays O(1) at the cost of
// reordering the tail of the list.
func (s *Set) Remove(id uint32) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	moved := s.ids[last]
	s.ids[i] = moved
	s.index[moved] = i
	s.ids = s.ids[:last]
	delete(s.index, id)
}

// Contains reports whether id is currently a member.
func (s *Set) Contains(id uint32) bool {
	_, ok := s.index[id]
	return ok
}

// Used reports the number of member ids.
func (s *Set) Used() int { return len(s.ids) }

// ListObjects returns a snapshot of every member id, in membership order.
func (s *Set) ListObjects() []uint32 {
	out := make([]uint32, len(s.ids))
	copy(out, s.ids)
	return out
}

// First returns the index of the first member, for the index-cursor
// iteration style the context layer exposes alongside ListObjects.
func (s *Set) First() (int, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	return 0, true
}

// Next returns the index following i, or false once the list is exhausted.
func (s *Set) Next(i int) (int, bool) {
	if i+1 >= len(s.ids) {
		return 0, false
	}
	return i + 1, true
}

// GetObjectByIndex returns the member id at position i.
func (s *Set) GetObjectByIndex(i int) (uint32, bool) {
	if i < 0 || i >= len(s.ids) {
		return 0, false
	}
	return s.ids[i], true
}

// Group is an ObjectSet that owns its members: destroying the group
// destroys every object still in it.
type Group struct {
	Set
}

// NewGroup returns an empty Group reading/writing through objects.
func NewGroup(objects *objreg.Registry) *Group {
	return &Group{Set: *NewSet(objects)}
}

// Destroy destroys every member object (via the backing Registry) and then
// empties the group. Objects already destroyed by some other path before
// this runs are skipped rather than treated as an error, since a group's
// membership list isn't informed of destructions that bypass it.
func (g *Group) Destroy() error {
	members := g.ListObjects()
	for _, id := range members {
		if !g.objects.IsObject(id) {
			continue
		}
		if err := g.objects.Destroy(id); err != nil {
			return err
		}
	}
	g.ids = nil
	g.index = map[uint32]int{}
	return nil
}
