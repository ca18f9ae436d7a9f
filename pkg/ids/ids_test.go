package ids

import "testing"

func TestHashDeterministic(t *testing.T) {
	a := Hash(NamespaceBridge, "print")
	b := Hash(NamespaceBridge, "print")
	if a != b {
		t.Fatalf("hash not deterministic: %x != %x", a, b)
	}
}

func TestHashNamespaceSeparation(t *testing.T) {
	a := Hash(NamespaceFunction, "x")
	b := Hash(NamespaceType, "x")
	if a == b {
		t.Fatalf("same name in different namespaces collided: %x", a)
	}
}

func TestSymbolTableCaches(t *testing.T) {
	st := NewSymbolTable()
	id1 := st.Bridge("print")
	id2 := st.Bridge("print")
	if id1 != id2 {
		t.Fatalf("cached bridge id changed: %v != %v", id1, id2)
	}
	if id1 != HashBridge("print") {
		t.Fatalf("cached id diverged from direct hash")
	}
}

func TestHashFieldScopedToStruct(t *testing.T) {
	a := HashField("Point", "x")
	b := HashField("Vector", "x")
	if a == b {
		t.Fatalf("field ids for same field name on different structs collided")
	}
}
