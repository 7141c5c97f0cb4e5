package code

import (
	"fmt"

	"tinscript/internal/emit"
)

// Registry owns every compiled Block by integer ID, so a funcs.Entry can
// hold a plain CodeBlockID instead of a pointer -- internal/funcs stays a
// leaf with no dependency on this package, and internal/vm resolves the
// pointer here at call time.
type Registry struct {
	byID   map[int]*Block
	nextID int
}

func NewRegistry() *Registry {
	return &Registry{byID: map[int]*Block{}}
}

// Begin allocates a new Block under a fresh ID and marks it parsing. The
// caller must call Finish (on success) or Abort (on a compile error) before
// the block is usable or discarded.
func (r *Registry) Begin(filename string, filenameHash uint32) *Block {
	r.nextID++
	b := newBlock(r.nextID, filename, filenameHash)
	r.byID[b.ID] = b
	return b
}

// Finish marks a block as done parsing and installs its final contents.
func (r *Registry) Finish(b *Block, instructions []int32, lines []emit.LineEntry, defined []FuncDef) {
	b.Instructions = instructions
	b.Lines = lines
	b.Defined = defined
	b.IsParsing = false
}

// Abort discards a partially-built block: it is removed from the registry
// entirely rather than left installed with a truncated buffer.
func (r *Registry) Abort(b *Block) {
	delete(r.byID, b.ID)
}

// Lookup resolves a CodeBlockID to its Block.
func (r *Registry) Lookup(id int) (*Block, bool) {
	b, ok := r.byID[id]
	return b, ok
}

// Destroy removes a block, refusing if it is still in use -- only unused
// blocks may be destroyed.
func (r *Registry) Destroy(id int) error {
	b, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("code: destroy: unknown block id %d", id)
	}
	if b.IsInUse() {
		return fmt.Errorf("code: destroy: block %q is still in use", b.Filename)
	}
	delete(r.byID, id)
	return nil
}
