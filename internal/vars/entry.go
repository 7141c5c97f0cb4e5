// Package vars implements VariableEntry: a named, typed storage cell that
// may be script-owned heap, a class-member offset, a stack-local frame
// offset, or a dynamic per-object bag entry.
package vars

import "tinscript/internal/types"

// Kind distinguishes VariableEntry's four storage shapes.
type Kind uint8

const (
	// ScriptOwned entries own a heap cell sized to their type.
	ScriptOwned Kind = iota
	// MemberOffset entries hold a byte offset resolved against an object
	// address supplied at access time.
	MemberOffset
	// StackLocal entries hold a frame-relative offset resolved against the
	// currently executing call-stack frame.
	StackLocal
	// DynamicBag entries live inside an object's dynamic variable table.
	DynamicBag
)

// Entry is a VariableEntry. Its Type is immutable after New*; which of
// Cell/Offset/StackOffset is meaningful depends on Storage.
type Entry struct {
	Name     string
	NameHash uint32
	Type     types.VarType
	Storage  Kind

	// ScriptOwned
	cell types.Value

	// MemberOffset: byte offset into an object's native address.
	offset uint32

	// StackLocal: frame-relative word offset, assigned by
	// FunctionContext.InitStackVarOffsets. Negative until assigned.
	stackOffset int32

	// DynamicBag: hashtable-valued entries recursively own a nested Table.
	nested *Table
}

// NewScriptOwned allocates a heap-owned entry initialized to t's zero value.
func NewScriptOwned(name string, nameHash uint32, t types.VarType) *Entry {
	return &Entry{Name: name, NameHash: nameHash, Type: t, Storage: ScriptOwned, stackOffset: -1}
}

// NewMemberOffset builds a class-member entry; offset is resolved against
// whatever object address is supplied when the member is read/written.
func NewMemberOffset(name string, nameHash uint32, t types.VarType, offset uint32) *Entry {
	return &Entry{Name: name, NameHash: nameHash, Type: t, Storage: MemberOffset, offset: offset, stackOffset: -1}
}

// NewStackLocal builds a parameter/local entry. Its frame offset is
// unresolved (-1) until InitStackVarOffsets runs: every stack-local gets a
// non-negative stack offset once that pass completes.
func NewStackLocal(name string, nameHash uint32, t types.VarType) *Entry {
	return &Entry{Name: name, NameHash: nameHash, Type: t, Storage: StackLocal, stackOffset: -1}
}

// NewDynamic builds a dynamic-bag entry living inside an object's variable
// table, backing SelfVarDecl.
func NewDynamic(name string, nameHash uint32, t types.VarType) *Entry {
	return &Entry{Name: name, NameHash: nameHash, Type: t, Storage: DynamicBag, stackOffset: -1}
}

// StackOffsetAssigned reports whether InitStackVarOffsets has run for this
// entry yet.
func (e *Entry) StackOffsetAssigned() bool { return e.stackOffset >= 0 }

// StackOffset returns the frame-relative word offset for a StackLocal entry.
func (e *Entry) StackOffset() int32 { return e.stackOffset }

// SetStackOffset assigns e's frame offset; called exactly once by
// FunctionContext.InitStackVarOffsets.
func (e *Entry) SetStackOffset(off int32) { e.stackOffset = off }

// MemberByteOffset returns the class-member byte offset for a MemberOffset
// entry.
func (e *Entry) MemberByteOffset() uint32 { return e.offset }

// Get/Set on a ScriptOwned cell. Callers must route MemberOffset,
// StackLocal and DynamicBag reads/writes through the resolvers in
// internal/vm, which know how to find the backing address/frame/bag.
func (e *Entry) Get() types.Value  { return e.cell }
func (e *Entry) Set(v types.Value) { e.cell = v }

// Nested returns (creating if necessary) the hashtable Entry's nested
// variable table.
func (e *Entry) Nested() *Table {
	if e.nested == nil {
		e.nested = NewTable()
	}
	return e.nested
}

// HasNested reports whether a nested table was ever created, without
// creating one as a side effect (used by Destroy to avoid allocating on the
// way out).
func (e *Entry) HasNested() bool { return e.nested != nil }
