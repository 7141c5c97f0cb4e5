// Package code implements CodeBlock: the compiled-bytecode owner. A Block
// holds the instruction buffer and line table a two-pass compile produced,
// plus the bookkeeping (defined functions, is_in_use, breakpoints) the VM
// and a future debug transport need.
package code

import (
	"tinscript/internal/emit"
	"tinscript/internal/vars"
)

// FuncDef records one function this block declares: the hashes identifying
// it, and where its body starts within Instructions. Populated by Compile
// scanning the emitted buffer for FuncDecl instructions (internal/ast emits
// these inline regardless of control flow, so a linear scan finds every one
// without executing anything).
type FuncDef struct {
	FuncHash    uint32
	NSHash      uint32
	InstrOffset int
}

// Block is a CodeBlock: filename, compiled instructions, line table, the
// global-variable table declared at this block's top level, which
// functions it defines, and a reference count standing in for
// "is_in_use()" -- only unused blocks may be destroyed.
type Block struct {
	ID           int
	Filename     string
	FilenameHash uint32

	Instructions []int32
	Lines        []emit.LineEntry

	Globals *vars.Table

	Defined []FuncDef

	breakpoints map[int]bool
	refCount    int

	// IsParsing is true while Compile is still building this block; a
	// partially-filled buffer from an aborted compile is never installed.
	// Compile errors abort the in-progress CodeBlock before its buffer is
	// allocated, or discard the partially-filled buffer.
	IsParsing bool
}

func newBlock(id int, filename string, filenameHash uint32) *Block {
	return &Block{
		ID:           id,
		Filename:     filename,
		FilenameHash: filenameHash,
		Globals:      vars.NewTable(),
		breakpoints:  map[int]bool{},
		IsParsing:    true,
	}
}

// Retain/Release implement the is_in_use reference count: internal/vm calls
// Retain when a namespace registers a function whose body lives in this
// block, and Release when that function entry is removed (namespace
// destruction, redefinition).
func (b *Block) Retain()  { b.refCount++ }
func (b *Block) Release() {
	if b.refCount > 0 {
		b.refCount--
	}
}

// IsInUse reports whether any function declared from this block is still
// registered anywhere.
func (b *Block) IsInUse() bool { return b.refCount > 0 }

// InstructionCount is the word length of Instructions, mirroring the
// spec's explicit instruction_count field (kept separate from
// len(Instructions) there because that source's buffer could over-allocate;
// a Go slice's len is always exact, so this is just an alias).
func (b *Block) InstructionCount() int { return len(b.Instructions) }
