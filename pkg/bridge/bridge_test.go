package bridge

import (
	"testing"

	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

func TestScriptContextStackPushPop(t *testing.T) {
	k := Key(1)
	defer Release(k)

	if Current(k).StateGet != nil {
		t.Fatal("expected zero context before any push")
	}
	Push(k, ScriptContext{StateGet: func(string) (any, bool) { return "x", true }})
	v, ok := Current(k).StateGet("p")
	if !ok || v != "x" {
		t.Fatalf("unexpected context value: %v %v", v, ok)
	}
	Pop(k)
	if Current(k).StateGet != nil {
		t.Fatal("expected zero context after pop")
	}
}

func TestDispatchDeniedWithoutCapability(t *testing.T) {
	st := ids.NewSymbolTable()
	catalog := DefaultCatalog()
	reg := NewRegistry(catalog)
	BindDefaults(reg, st)

	id := st.Bridge("Date.now")
	_, err := reg.Dispatch(id, capability.NewSet(capability.FoundationBasic), value.None(), nil, ScriptContext{}, nil)
	if _, ok := err.(DeniedError); !ok {
		t.Fatalf("expected DeniedError, got %v", err)
	}
}

func TestDispatchAllowedInvokesImplementation(t *testing.T) {
	st := ids.NewSymbolTable()
	catalog := DefaultCatalog()
	reg := NewRegistry(catalog)
	BindDefaults(reg, st)

	var printed []string
	sink := func(s string) { printed = append(printed, s) }

	id := st.Bridge("print")
	_, err := reg.Dispatch(id, capability.NewSet(capability.FoundationBasic), value.None(), []value.Value{value.String("hi")}, ScriptContext{}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(printed) != 1 || printed[0] != "hi" {
		t.Fatalf("expected print sink to receive [hi], got %v", printed)
	}
}

func TestOperatorAddition(t *testing.T) {
	st := ids.NewSymbolTable()
	catalog := DefaultCatalog()
	reg := NewRegistry(catalog)
	BindDefaults(reg, st)

	id := st.Operator("+")
	result, err := reg.Dispatch(id, capability.NewSet(capability.FoundationBasic), value.None(), []value.Value{value.Int(2), value.Int(3)}, ScriptContext{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != value.KindInt || result.IntVal != 5 {
		t.Fatalf("expected 5, got %v", result)
	}
}

func TestOperatorOnNativeRaises(t *testing.T) {
	st := ids.NewSymbolTable()
	catalog := DefaultCatalog()
	reg := NewRegistry(catalog)
	BindDefaults(reg, st)

	id := st.Operator("+")
	_, err := reg.Dispatch(id, capability.NewSet(capability.FoundationBasic), value.None(), []value.Value{value.Native(1), value.Int(1)}, ScriptContext{}, nil)
	if _, ok := err.(UnsupportedOperandError); !ok {
		t.Fatalf("expected UnsupportedOperandError, got %v", err)
	}
}

func TestUnknownSymbol(t *testing.T) {
	catalog := capability.NewCatalog()
	entry := catalog.Register("ghost", capability.FoundationBasic)
	reg := NewRegistry(catalog)
	_, err := reg.Dispatch(entry.SymbolID, capability.NewSet(capability.FoundationBasic), value.None(), nil, ScriptContext{}, nil)
	if _, ok := err.(UnknownSymbolError); !ok {
		t.Fatalf("expected UnknownSymbolError, got %v", err)
	}
}
