package bytecode

import (
	"fmt"

	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// ConstantKind tags which field of a Constant is meaningful. It is a
// closed sum over nine kinds: none and the four scalar kinds, plus
// symbol/type/field/function, which are distinct pool entries even
// though they all collapse to i64 at runtime.
type ConstantKind int

const (
	ConstNone ConstantKind = iota
	ConstInt
	ConstFloat
	ConstBool
	ConstString
	ConstSymbol
	ConstType
	ConstField
	ConstFunction
)

// Constant is one entry of a program's constant pool.
type Constant struct {
	Kind     ConstantKind
	IntVal   int64
	FloatVal float64
	BoolVal  bool
	StrVal   string
	IDVal    uint32
}

// key returns a comparable value suitable as a map key for dedup,
// since Constant itself is comparable (no slice/map fields).
func (c Constant) key() Constant { return c }

// ToValue converts a constant to its runtime representation.
// symbol/type/field/function constants collapse to i64(id).
func (c Constant) ToValue() value.Value {
	switch c.Kind {
	case ConstNone:
		return value.None()
	case ConstInt:
		return value.Int(c.IntVal)
	case ConstFloat:
		return value.Float(c.FloatVal)
	case ConstBool:
		return value.Bool(c.BoolVal)
	case ConstString:
		return value.String(c.StrVal)
	case ConstSymbol, ConstType, ConstField, ConstFunction:
		return value.Int(int64(c.IDVal))
	default:
		return value.None()
	}
}

func ConstantNone() Constant              { return Constant{Kind: ConstNone} }
func ConstantInt(n int64) Constant        { return Constant{Kind: ConstInt, IntVal: n} }
func ConstantFloat(f float64) Constant    { return Constant{Kind: ConstFloat, FloatVal: f} }
func ConstantBool(b bool) Constant        { return Constant{Kind: ConstBool, BoolVal: b} }
func ConstantString(s string) Constant    { return Constant{Kind: ConstString, StrVal: s} }
func ConstantSymbol(id ids.SymbolID) Constant {
	return Constant{Kind: ConstSymbol, IDVal: uint32(id)}
}
func ConstantType(id ids.TypeID) Constant { return Constant{Kind: ConstType, IDVal: uint32(id)} }
func ConstantField(id ids.FieldID) Constant {
	return Constant{Kind: ConstField, IDVal: uint32(id)}
}
func ConstantFunction(id ids.FunctionID) Constant {
	return Constant{Kind: ConstFunction, IDVal: uint32(id)}
}

// ConstantPoolBuilder deduplicates constants on insertion; Intern
// returns a stable index, identical constants always map to the same
// index.
type ConstantPoolBuilder struct {
	pool  []Constant
	index map[Constant]int
}

func NewConstantPoolBuilder() *ConstantPoolBuilder {
	return &ConstantPoolBuilder{index: make(map[Constant]int)}
}

func (b *ConstantPoolBuilder) Intern(c Constant) int {
	if idx, ok := b.index[c.key()]; ok {
		return idx
	}
	idx := len(b.pool)
	b.pool = append(b.pool, c)
	b.index[c.key()] = idx
	return idx
}

func (b *ConstantPoolBuilder) Finish() []Constant {
	out := make([]Constant, len(b.pool))
	copy(out, b.pool)
	return out
}

func (c Constant) String() string {
	switch c.Kind {
	case ConstNone:
		return "none"
	case ConstInt:
		return fmt.Sprintf("i64(%d)", c.IntVal)
	case ConstFloat:
		return fmt.Sprintf("f64(%g)", c.FloatVal)
	case ConstBool:
		return fmt.Sprintf("bool(%v)", c.BoolVal)
	case ConstString:
		return fmt.Sprintf("string(%q)", c.StrVal)
	case ConstSymbol:
		return fmt.Sprintf("symbol(%d)", c.IDVal)
	case ConstType:
		return fmt.Sprintf("type(%d)", c.IDVal)
	case ConstField:
		return fmt.Sprintf("field(%d)", c.IDVal)
	case ConstFunction:
		return fmt.Sprintf("function(%d)", c.IDVal)
	default:
		return "?"
	}
}
