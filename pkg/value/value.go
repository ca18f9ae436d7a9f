// Package value implements the closed runtime-value sum the virtual
// machine operates over: none, i64, f64, bool, string, array, dict,
// native, and struct_instance. The representation is an explicit
// struct-per-kind union rather than an interface, so kind dispatch is a single switch and
// values never allocate an interface box for the common scalar cases.
package value

import (
	"fmt"
	"strconv"

	"github.com/chazu/vibeswift/pkg/ids"
)

// Kind tags which field of a Value is meaningful.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindArray
	KindDict
	KindNative
	KindStructInstance
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInt:
		return "i64"
	case KindFloat:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindNative:
		return "native"
	case KindStructInstance:
		return "struct_instance"
	default:
		return "unknown"
	}
}

// StructInstance is a value with a type id and a map from field id to
// value. Reading a field id absent from the map is a caller-level
// error (see pkg/vm's MissingFieldError); StructInstance itself stays
// a plain data holder.
type StructInstance struct {
	TypeID ids.TypeID
	Fields map[ids.FieldID]Value
}

// Clone returns a struct instance with its own, independent Fields
// map, used by set_field's copy-on-write semantics: set_field must
// not mutate in place.
func (s *StructInstance) Clone() *StructInstance {
	fields := make(map[ids.FieldID]Value, len(s.Fields))
	for k, v := range s.Fields {
		fields[k] = v
	}
	return &StructInstance{TypeID: s.TypeID, Fields: fields}
}

// Value is the runtime value sum. Only the field matching Kind is
// meaningful; the rest are zero values.
type Value struct {
	Kind      Kind
	IntVal    int64
	FloatVal  float64
	BoolVal   bool
	StringVal string
	ArrayVal  []Value
	DictVal   map[string]Value
	NativeVal any
	StructVal *StructInstance
}

func None() Value                 { return Value{Kind: KindNone} }
func Int(n int64) Value           { return Value{Kind: KindInt, IntVal: n} }
func Float(f float64) Value       { return Value{Kind: KindFloat, FloatVal: f} }
func Bool(b bool) Value           { return Value{Kind: KindBool, BoolVal: b} }
func String(s string) Value       { return Value{Kind: KindString, StringVal: s} }
func Array(elems []Value) Value   { return Value{Kind: KindArray, ArrayVal: elems} }
func Dict(m map[string]Value) Value {
	return Value{Kind: KindDict, DictVal: m}
}
func Native(v any) Value { return Value{Kind: KindNative, NativeVal: v} }
func Struct(s *StructInstance) Value {
	return Value{Kind: KindStructInstance, StructVal: s}
}

func (v Value) IsNone() bool { return v.Kind == KindNone }

// IsTruthy implements the truthiness table: none=false; bool as
// itself; numbers nonzero; non-empty string/array/dict; native and
// struct_instance are always true.
func (v Value) IsTruthy() bool {
	switch v.Kind {
	case KindNone:
		return false
	case KindBool:
		return v.BoolVal
	case KindInt:
		return v.IntVal != 0
	case KindFloat:
		return v.FloatVal != 0
	case KindString:
		return v.StringVal != ""
	case KindArray:
		return len(v.ArrayVal) > 0
	case KindDict:
		return len(v.DictVal) > 0
	case KindNative, KindStructInstance:
		return true
	default:
		return false
	}
}

// AsString renders a value for the bridge print sink and for
// diagnostics; it is display formatting, not a coercion operator.
func (v Value) AsString() string {
	switch v.Kind {
	case KindNone:
		return "nil"
	case KindInt:
		return strconv.FormatInt(v.IntVal, 10)
	case KindFloat:
		return strconv.FormatFloat(v.FloatVal, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.BoolVal)
	case KindString:
		return v.StringVal
	case KindArray:
		return fmt.Sprintf("%v", v.ArrayVal)
	case KindDict:
		return fmt.Sprintf("%v", v.DictVal)
	case KindNative:
		return fmt.Sprintf("<native %v>", v.NativeVal)
	case KindStructInstance:
		return fmt.Sprintf("<struct type=%d>", v.StructVal.TypeID)
	default:
		return "<?>"
	}
}

// Equal implements value equality used by the == operator bridge.
// native values are never equal to anything including themselves;
// the operator bridges in pkg/bridge raise before reaching here for
// native operands, so == never actually passes one in.
func Equal(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNone:
		return true
	case KindInt:
		return a.IntVal == b.IntVal
	case KindFloat:
		return a.FloatVal == b.FloatVal
	case KindBool:
		return a.BoolVal == b.BoolVal
	case KindString:
		return a.StringVal == b.StringVal
	case KindArray:
		if len(a.ArrayVal) != len(b.ArrayVal) {
			return false
		}
		for i := range a.ArrayVal {
			if !Equal(a.ArrayVal[i], b.ArrayVal[i]) {
				return false
			}
		}
		return true
	case KindDict:
		if len(a.DictVal) != len(b.DictVal) {
			return false
		}
		for k, av := range a.DictVal {
			bv, ok := b.DictVal[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
