// Package types implements TinScript's fixed VarType registry: the seven
// concrete script types plus the internal marker types used only on the
// exec stack.
package types

// VarType is TinScript's small closed type enumeration.
type VarType uint8

const (
	Void VarType = iota
	Bool
	Int
	Float
	String
	Object
	Hashtable

	// Marker types: never a declared variable type, only ever a push_kind
	// request or an exec-stack reference tag.
	VarRef     // __var: (ns_hash, func_hash, var_hash)
	HashVarRef // __hashvar: (ns_hash, func_hash, var_hash, array_key_hash)
	MemberRef  // __member: (var_hash, object_id)
	StackVarRef // __stackvar: (declared_type, frame_offset)
	PODMemberRef // __podmember: (declared_type, raw_address)
	Resolve    // __resolve: type-erased placeholder

	numVarTypes
)

// WordSize is the number of 32-bit exec-stack words a value (or reference)
// of this type occupies, not counting the trailing type-tag word that Push
// always appends.
var WordSize = [numVarTypes]int{
	Void:      0,
	Bool:      1,
	Int:       1,
	Float:     1,
	String:    1, // stored as the 32-bit string-table hash, not char data
	Object:    1,
	Hashtable: 1,

	VarRef:       3,
	HashVarRef:   4,
	MemberRef:    2,
	StackVarRef:  2,
	PODMemberRef: 2,
	Resolve:      0,
}

func (t VarType) String() string {
	switch t {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Object:
		return "object"
	case Hashtable:
		return "hashtable"
	case VarRef:
		return "__var"
	case HashVarRef:
		return "__hashvar"
	case MemberRef:
		return "__member"
	case StackVarRef:
		return "__stackvar"
	case PODMemberRef:
		return "__podmember"
	case Resolve:
		return "__resolve"
	default:
		return "<invalid VarType>"
	}
}

// IsConcrete reports whether t is one of the seven script-declarable types
// (as opposed to an exec-stack marker type).
func (t VarType) IsConcrete() bool {
	return t <= Hashtable
}

// IsReference reports whether t is one of the LHS-of-assignment reference
// marker types.
func (t VarType) IsReference() bool {
	switch t {
	case VarRef, HashVarRef, MemberRef, StackVarRef, PODMemberRef:
		return true
	default:
		return false
	}
}
