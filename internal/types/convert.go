package types

import (
	"fmt"
	"strconv"
)

// StringTable is the minimal interface Convert needs to turn a string-table
// hash back into bytes, satisfied by internal/strtable.Table. Kept as an
// interface here (rather than importing internal/strtable) so the types
// package stays a leaf with no dependency on string interning.
type StringTable interface {
	Lookup(hash uint32) (string, bool)
	Intern(s string) uint32
}

// Convert implements the implicit coercions to int/float/bool/string across
// the four numeric-ish concrete types. An object converts to bool
// (existence-as-truthiness), to int and string (its id) and to float (always
// 0); no other type converts to object. Convert never needs a StringTable for
// numeric conversions; it is only consulted when a string is either the
// source or destination.
func Convert(v Value, to VarType, st StringTable) (Value, error) {
	if v.Type == to {
		return v, nil
	}
	switch to {
	case Bool:
		return NewBool(truthy(v, st)), nil
	case Int:
		return NewInt(toInt(v, st)), nil
	case Float:
		return NewFloat(toFloat(v, st)), nil
	case String:
		return NewString(st.Intern(ToString(v, st))), nil
	case Object:
		if v.Type == Object {
			return v, nil
		}
		return Value{}, fmt.Errorf("cannot convert %v to object", v.Type)
	default:
		return Value{}, fmt.Errorf("cannot convert %v to %v", v.Type, to)
	}
}

func truthy(v Value, st StringTable) bool {
	switch v.Type {
	case Bool:
		return v.Bool()
	case Int:
		return v.Int() != 0
	case Float:
		return v.Float() != 0
	case String:
		s, _ := st.Lookup(v.StringHash())
		return s != ""
	case Object:
		return v.ObjectID() != 0
	default:
		return false
	}
}

func toInt(v Value, st StringTable) int32 {
	switch v.Type {
	case Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case Int:
		return v.Int()
	case Float:
		return int32(v.Float())
	case String:
		s, _ := st.Lookup(v.StringHash())
		n, _ := strconv.ParseInt(s, 10, 32)
		return int32(n)
	case Object:
		return int32(v.ObjectID())
	default:
		return 0
	}
}

func toFloat(v Value, st StringTable) float32 {
	switch v.Type {
	case Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case Int:
		return float32(v.Int())
	case Float:
		return v.Float()
	case String:
		s, _ := st.Lookup(v.StringHash())
		f, _ := strconv.ParseFloat(s, 32)
		return float32(f)
	default:
		return 0
	}
}

// ToString formats v per its type's to-string rule: each concrete type
// declares its own formatter.
func ToString(v Value, st StringTable) string {
	switch v.Type {
	case Bool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case Int:
		return strconv.FormatInt(int64(v.Int()), 10)
	case Float:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case String:
		s, _ := st.Lookup(v.StringHash())
		return s
	case Object:
		return strconv.FormatUint(uint64(v.ObjectID()), 10)
	default:
		return ""
	}
}

// IsNumeric reports whether t participates in int/float arithmetic
// promotion for comparisons and binary operators.
func IsNumeric(t VarType) bool {
	return t == Int || t == Float || t == Bool
}
