package frontend

import (
	"testing"

	"github.com/chazu/vibeswift/pkg/bridge"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/guard"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
	"github.com/chazu/vibeswift/pkg/vm"
)

func run(t *testing.T, src string, caps capability.Set) (vm.Result, error) {
	t.Helper()
	prog, err := CompileSource(src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	reg := bridge.NewRegistry(bridge.DefaultCatalog())
	bridge.BindDefaults(reg, ids.NewSymbolTable())
	m := vm.New(prog, caps, reg, guard.Defaults())
	return m.Run(bridge.ScriptContext{})
}

func allCaps() capability.Set {
	return capability.NewSet(capability.FoundationBasic, capability.DateFormatting, capability.UIBasic, capability.Diagnostics)
}

func TestArithmeticAndPrintEndToEnd(t *testing.T) {
	src := "let x = 2\nlet y = 3\nprint(x + y)\nreturn x + y\n"
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.Kind != value.KindInt || res.Value.IntVal != 5 {
		t.Fatalf("expected 5, got %v", res.Value)
	}
	if len(res.Output) != 1 || res.Output[0] != "5" {
		t.Fatalf("expected output [5], got %v", res.Output)
	}
}

func TestFunctionCallEndToEnd(t *testing.T) {
	src := "func add(a, b) {\n  return a + b\n}\nreturn add(4, 6)\n"
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 10 {
		t.Fatalf("expected 10, got %v", res.Value)
	}
}

func TestWhileAndIfEndToEnd(t *testing.T) {
	src := `
var i = 0
var sum = 0
while i < 5 {
  if i == 2 {
    sum = sum + 100
  } else {
    sum = sum + i
  }
  i = i + 1
}
return sum
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// i=0,1,3,4 add themselves (0+1+3+4=8); i=2 adds 100.
	if res.Value.IntVal != 108 {
		t.Fatalf("expected 108, got %v", res.Value)
	}
}

func TestStructFieldMutationEndToEnd(t *testing.T) {
	src := `
struct Point {
  x
  y
}
let p = Point(2, 3)
p.x = 9
return p.x + p.y
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 12 {
		t.Fatalf("expected 12, got %v", res.Value)
	}
}

func TestCapabilityDeniedDateNow(t *testing.T) {
	src := "return Date.now()\n"
	_, err := run(t, src, capability.NewSet(capability.FoundationBasic))
	if err == nil {
		t.Fatal("expected a capability denial error")
	}
	re, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("expected *vm.RuntimeError, got %T", err)
	}
	if _, ok := re.Err.(bridge.DeniedError); !ok {
		t.Fatalf("expected wrapped DeniedError, got %v", re.Err)
	}
}

func TestStringUppercasedEndToEnd(t *testing.T) {
	src := `let s = "hello"
return s.uppercased()
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.Kind != value.KindString || res.Value.StringVal != "HELLO" {
		t.Fatalf("expected HELLO, got %v", res.Value)
	}
}

func TestEmptySourceReturnsNone(t *testing.T) {
	res, err := run(t, "", allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Value.IsNone() {
		t.Fatalf("expected none, got %v", res.Value)
	}
}

func TestSingleBranchIfWithNoElse(t *testing.T) {
	src := `
var x = 0
if true {
  x = 5
}
return x
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 5 {
		t.Fatalf("expected 5, got %v", res.Value)
	}
}

func TestElseIfChain(t *testing.T) {
	src := `
var n = 2
var label = 0
if n == 1 {
  label = 10
} else if n == 2 {
  label = 20
} else {
  label = 30
}
return label
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 20 {
		t.Fatalf("expected 20, got %v", res.Value)
	}
}

func TestZeroIterationWhile(t *testing.T) {
	src := "var i = 10\nwhile i < 5 {\n  i = i + 1\n}\nreturn i\n"
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 10 {
		t.Fatalf("expected 10, got %v", res.Value)
	}
}

func TestStructWithExtraConstructorArgsIgnoresOverflow(t *testing.T) {
	src := `
struct Pair {
  a
}
let p = Pair(1, 2, 3)
return p.a
`
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 1 {
		t.Fatalf("expected 1, got %v", res.Value)
	}
}

func TestLocalReassignment(t *testing.T) {
	src := "let x = 1\nx = x + 41\nreturn x\n"
	res, err := run(t, src, allCaps())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.IntVal != 42 {
		t.Fatalf("expected 42, got %v", res.Value)
	}
}

func TestUnaryNegationAndNot(t *testing.T) {
	src := "let x = 5\nlet y = -x\nlet z = !true\nreturn y\n"
	_, err := CompileSource(src)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
}

func TestLexerRejectsUnterminatedString(t *testing.T) {
	_, err := NewLexer(`let s = "unterminated`).Tokenize()
	if err == nil {
		t.Fatal("expected an unterminated string error")
	}
	if _, ok := err.(UnterminatedStringError); !ok {
		t.Fatalf("expected UnterminatedStringError, got %T", err)
	}
}

func TestLexerRejectsUnexpectedChar(t *testing.T) {
	_, err := NewLexer("let x = 1 @ 2").Tokenize()
	if err == nil {
		t.Fatal("expected an unexpected character error")
	}
	if _, ok := err.(UnexpectedCharError); !ok {
		t.Fatalf("expected UnexpectedCharError, got %T", err)
	}
}

func TestCompilerRejectsUnknownLocal(t *testing.T) {
	_, err := CompileSource("return doesNotExist\n")
	if err == nil {
		t.Fatal("expected an unknown-local compile error")
	}
	if _, ok := err.(UnknownLocalError); !ok {
		t.Fatalf("expected UnknownLocalError, got %T", err)
	}
}
