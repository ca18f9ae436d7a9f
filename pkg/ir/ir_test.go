package ir

import (
	"testing"

	"github.com/chazu/vibeswift/pkg/value"
)

func TestRoundTripPrimitivesAndArray(t *testing.T) {
	v := value.Array([]value.Value{value.Int(1), value.String("a"), value.Bool(true), value.None()})
	got := ToValue(FromValue(v))
	if !value.Equal(v, got) {
		t.Fatalf("round trip mismatch: %v != %v", v, got)
	}
}

func TestRoundTripObjectKeysValues(t *testing.T) {
	v := value.Dict(map[string]value.Value{"a": value.Int(1), "b": value.String("x")})
	got := ToValue(FromValue(v))
	if !value.Equal(v, got) {
		t.Fatalf("round trip mismatch: %v != %v", v, got)
	}
}

func TestReservedBindingTagRoundTrips(t *testing.T) {
	v := value.Dict(map[string]value.Value{"$binding": value.String("path.to.field")})
	ir := FromValue(v)
	if ir.Kind != IRBindingRef || ir.RefPath != "path.to.field" {
		t.Fatalf("expected binding_ref, got %+v", ir)
	}
	if !value.Equal(v, ToValue(ir)) {
		t.Fatal("binding ref did not round trip back to the $binding dict")
	}
}

func TestReservedStateTagRoundTrips(t *testing.T) {
	v := value.Dict(map[string]value.Value{"$state": value.String("counter")})
	ir := FromValue(v)
	if ir.Kind != IRStateRef {
		t.Fatalf("expected state_ref, got %+v", ir)
	}
	if !value.Equal(v, ToValue(ir)) {
		t.Fatal("state ref did not round trip back to the $state dict")
	}
}

func TestNativeAndStructAreAbsent(t *testing.T) {
	if FromValue(value.Native(1)).Kind != IRNull {
		t.Fatal("expected native to map to absent/null")
	}
	if FromValue(value.Struct(&value.StructInstance{TypeID: 1})).Kind != IRNull {
		t.Fatal("expected struct_instance to map to absent/null")
	}
}

func TestNodeFromValueSynthesizesID(t *testing.T) {
	node := NodeFromValue(value.Dict(map[string]value.Value{
		"type":      value.String("Text"),
		"props":     value.Dict(map[string]value.Value{"text": value.String("hi")}),
		"children":  value.Array(nil),
		"modifiers": value.Array(nil),
		"events":    value.Array(nil),
	}))
	if node.ID == "" {
		t.Fatal("expected a synthesized node id")
	}
	if node.Type != "Text" {
		t.Fatalf("expected type Text, got %s", node.Type)
	}
}
