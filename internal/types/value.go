package types

import "math"

// Value is a tagged, fixed-size payload: either a concrete script value or
// one of the exec-stack reference marker types. Its word-count always
// matches WordSize[Type], which is what ExecStack uses to size pushes/pops.
type Value struct {
	Type VarType
	w    [4]uint32 // widest marker type (HashVarRef) needs 4 words
}

// Words returns the value's data words (not including the type tag word
// ExecStack appends separately).
func (v Value) Words() []uint32 {
	n := WordSize[v.Type]
	return v.w[:n]
}

// FromWords reconstructs a Value from its tag and data words, as ExecStack
// does on Pop.
func FromWords(t VarType, words []uint32) Value {
	v := Value{Type: t}
	copy(v.w[:], words)
	return v
}

func VoidValue() Value { return Value{Type: Void} }

func NewBool(b bool) Value {
	v := Value{Type: Bool}
	if b {
		v.w[0] = 1
	}
	return v
}

func NewInt(i int32) Value {
	v := Value{Type: Int}
	v.w[0] = uint32(i)
	return v
}

func NewFloat(f float32) Value {
	v := Value{Type: Float}
	v.w[0] = math.Float32bits(f)
	return v
}

// NewString wraps a string-table hash; string values never carry bytes
// directly.
func NewString(h uint32) Value {
	v := Value{Type: String}
	v.w[0] = h
	return v
}

func NewObject(id uint32) Value {
	v := Value{Type: Object}
	v.w[0] = id
	return v
}

// NewHashtable wraps an opaque handle identifying a nested VariableEntry
// table: hashtables are stored as pointers to nested VariableEntry tables.
func NewHashtable(handle uint32) Value {
	v := Value{Type: Hashtable}
	v.w[0] = handle
	return v
}

func (v Value) Bool() bool       { return v.w[0] != 0 }
func (v Value) Int() int32       { return int32(v.w[0]) }
func (v Value) Float() float32   { return math.Float32frombits(v.w[0]) }
func (v Value) StringHash() uint32 { return v.w[0] }
func (v Value) ObjectID() uint32 { return v.w[0] }
func (v Value) HashtableHandle() uint32 { return v.w[0] }

// --- reference marker constructors/accessors ---

func NewVarRef(nsHash, funcHash, varHash uint32) Value {
	v := Value{Type: VarRef}
	v.w[0], v.w[1], v.w[2] = nsHash, funcHash, varHash
	return v
}

func (v Value) VarRef() (nsHash, funcHash, varHash uint32) {
	return v.w[0], v.w[1], v.w[2]
}

func NewHashVarRef(nsHash, funcHash, varHash, arrayKeyHash uint32) Value {
	v := Value{Type: HashVarRef}
	v.w[0], v.w[1], v.w[2], v.w[3] = nsHash, funcHash, varHash, arrayKeyHash
	return v
}

func (v Value) HashVarRef() (nsHash, funcHash, varHash, arrayKeyHash uint32) {
	return v.w[0], v.w[1], v.w[2], v.w[3]
}

func NewMemberRef(varHash, objectID uint32) Value {
	v := Value{Type: MemberRef}
	v.w[0], v.w[1] = varHash, objectID
	return v
}

func (v Value) MemberRef() (varHash, objectID uint32) {
	return v.w[0], v.w[1]
}

func NewStackVarRef(declared VarType, frameOffset int32) Value {
	v := Value{Type: StackVarRef}
	v.w[0] = uint32(declared)
	v.w[1] = uint32(frameOffset)
	return v
}

func (v Value) StackVarRef() (declared VarType, frameOffset int32) {
	return VarType(v.w[0]), int32(v.w[1])
}

func NewPODMemberRef(declared VarType, address uint32) Value {
	v := Value{Type: PODMemberRef}
	v.w[0] = uint32(declared)
	v.w[1] = address
	return v
}

func (v Value) PODMemberRef() (declared VarType, address uint32) {
	return VarType(v.w[0]), v.w[1]
}
