package bridge

import (
	"strconv"
	"strings"

	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// UnsupportedOperandError is raised when an operator is applied to a
// native value, per the open question decided in DESIGN.md: native
// values in operator contexts raise rather than silently coerce.
type UnsupportedOperandError struct {
	Operator string
	Kind     value.Kind
}

func (e UnsupportedOperandError) Error() string {
	return "unsupported operand for operator " + e.Operator + ": " + e.Kind.String()
}

// BindDefaults installs the Go implementations for every catalog
// entry DefaultCatalog registers, keyed by the same symbol table a
// frontend compiling against this catalog would use.
func BindDefaults(r *Registry, st *ids.SymbolTable) {
	r.Bind(st.Bridge("print"), implPrint)
	r.Bind(st.Bridge("String.uppercased"), implUppercased)
	r.Bind(st.Bridge("String.lowercased"), implLowercased)
	r.Bind(st.Bridge("String.contains"), implContains)
	r.Bind(st.Bridge("Int.init"), implIntInit)
	r.Bind(st.Bridge("Double.init"), implDoubleInit)
	r.Bind(st.Bridge("Bool.init"), implBoolInit)
	r.Bind(st.Bridge("Date.now"), implDateNow)

	bindOperator(r, st, "+", arithAdd)
	bindOperator(r, st, "-", arithSub)
	bindOperator(r, st, "*", arithMul)
	bindOperator(r, st, "/", arithDiv)
	bindOperator(r, st, "==", cmpEq)
	bindOperator(r, st, "<", cmpLt)
	bindOperator(r, st, ">", cmpGt)
	bindOperator(r, st, "<=", cmpLe)
	bindOperator(r, st, ">=", cmpGe)
	bindOperator(r, st, "&&", logAnd)
	bindOperator(r, st, "||", logOr)

	bindUIIntrinsics(r, st)
}

func bindOperator(r *Registry, st *ids.SymbolTable, op string, fn func(a, b value.Value) (value.Value, error)) {
	r.Bind(st.Operator(op), func(_ value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
		if len(args) != 2 {
			return value.Value{}, UnsupportedOperandError{Operator: op, Kind: value.KindNone}
		}
		for _, a := range args {
			if a.Kind == value.KindNative {
				return value.Value{}, UnsupportedOperandError{Operator: op, Kind: a.Kind}
			}
		}
		return fn(args[0], args[1])
	})
}

func implPrint(_ value.Value, args []value.Value, _ ScriptContext, sink PrintSink) (value.Value, error) {
	if len(args) > 0 && sink != nil {
		sink(args[0].AsString())
	}
	return value.None(), nil
}

func implUppercased(receiver value.Value, _ []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	return value.String(strings.ToUpper(receiver.StringVal)), nil
}

func implLowercased(receiver value.Value, _ []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	return value.String(strings.ToLower(receiver.StringVal)), nil
}

func implContains(receiver value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	return value.Bool(strings.Contains(receiver.StringVal, args[0].StringVal)), nil
}

func implIntInit(_ value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	if len(args) == 0 {
		return value.Int(0), nil
	}
	switch a := args[0]; a.Kind {
	case value.KindInt:
		return a, nil
	case value.KindFloat:
		return value.Int(int64(a.FloatVal)), nil
	case value.KindBool:
		if a.BoolVal {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(a.StringVal), 10, 64)
		if err != nil {
			return value.Int(0), nil
		}
		return value.Int(n), nil
	default:
		return value.Value{}, UnsupportedOperandError{Operator: "Int.init", Kind: a.Kind}
	}
}

func implDoubleInit(_ value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	if len(args) == 0 {
		return value.Float(0), nil
	}
	switch a := args[0]; a.Kind {
	case value.KindFloat:
		return a, nil
	case value.KindInt:
		return value.Float(float64(a.IntVal)), nil
	case value.KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(a.StringVal), 64)
		if err != nil {
			return value.Float(0), nil
		}
		return value.Float(f), nil
	default:
		return value.Value{}, UnsupportedOperandError{Operator: "Double.init", Kind: a.Kind}
	}
}

func implBoolInit(_ value.Value, args []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	return value.Bool(args[0].IsTruthy()), nil
}

func implDateNow(_ value.Value, _ []value.Value, _ ScriptContext, _ PrintSink) (value.Value, error) {
	return value.Native(now()), nil
}

func numeric(v value.Value, op string) (float64, bool, error) {
	switch v.Kind {
	case value.KindInt:
		return float64(v.IntVal), true, nil
	case value.KindFloat:
		return v.FloatVal, false, nil
	default:
		return 0, false, UnsupportedOperandError{Operator: op, Kind: v.Kind}
	}
}

func arith(op string, a, b value.Value, f func(x, y float64) float64) (value.Value, error) {
	if a.Kind == value.KindNative || b.Kind == value.KindNative || a.Kind == value.KindStructInstance || b.Kind == value.KindStructInstance {
		k := a.Kind
		if k != value.KindNative && k != value.KindStructInstance {
			k = b.Kind
		}
		return value.Value{}, UnsupportedOperandError{Operator: op, Kind: k}
	}
	af, aIsInt, err := numeric(a, op)
	if err != nil {
		return value.Value{}, err
	}
	bf, bIsInt, err := numeric(b, op)
	if err != nil {
		return value.Value{}, err
	}
	result := f(af, bf)
	if aIsInt && bIsInt {
		return value.Int(int64(result)), nil
	}
	return value.Float(result), nil
}

func arithAdd(a, b value.Value) (value.Value, error) {
	if a.Kind == value.KindString || b.Kind == value.KindString {
		return value.String(a.AsString() + b.AsString()), nil
	}
	return arith("+", a, b, func(x, y float64) float64 { return x + y })
}
func arithSub(a, b value.Value) (value.Value, error) {
	return arith("-", a, b, func(x, y float64) float64 { return x - y })
}
func arithMul(a, b value.Value) (value.Value, error) {
	return arith("*", a, b, func(x, y float64) float64 { return x * y })
}
func arithDiv(a, b value.Value) (value.Value, error) {
	return arith("/", a, b, func(x, y float64) float64 { return x / y })
}

func cmpEq(a, b value.Value) (value.Value, error) { return value.Bool(value.Equal(a, b)), nil }

func compareNumeric(op string, a, b value.Value, f func(x, y float64) bool) (value.Value, error) {
	af, _, err := numeric(a, op)
	if err != nil {
		return value.Value{}, err
	}
	bf, _, err := numeric(b, op)
	if err != nil {
		return value.Value{}, err
	}
	return value.Bool(f(af, bf)), nil
}

func cmpLt(a, b value.Value) (value.Value, error) {
	return compareNumeric("<", a, b, func(x, y float64) bool { return x < y })
}
func cmpGt(a, b value.Value) (value.Value, error) {
	return compareNumeric(">", a, b, func(x, y float64) bool { return x > y })
}
func cmpLe(a, b value.Value) (value.Value, error) {
	return compareNumeric("<=", a, b, func(x, y float64) bool { return x <= y })
}
func cmpGe(a, b value.Value) (value.Value, error) {
	return compareNumeric(">=", a, b, func(x, y float64) bool { return x >= y })
}

func logAnd(a, b value.Value) (value.Value, error) { return value.Bool(a.IsTruthy() && b.IsTruthy()), nil }
func logOr(a, b value.Value) (value.Value, error)  { return value.Bool(a.IsTruthy() || b.IsTruthy()), nil }
