package value

import (
	"testing"

	"github.com/chazu/vibeswift/pkg/ids"
)

func TestTruthiness(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"none", None(), false},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"false bool", Bool(false), false},
		{"true bool", Bool(true), true},
		{"empty string", String(""), false},
		{"nonempty string", String("x"), true},
		{"empty array", Array(nil), false},
		{"nonempty array", Array([]Value{Int(1)}), true},
		{"native always true", Native(struct{}{}), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.want {
			t.Errorf("%s: IsTruthy() = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(Int(1), Int(1)) {
		t.Fatal("expected equal ints to be equal")
	}
	if Equal(Int(1), Float(1)) {
		t.Fatal("expected different kinds to be unequal")
	}
	if !Equal(Array([]Value{Int(1), String("a")}), Array([]Value{Int(1), String("a")})) {
		t.Fatal("expected equal arrays to be equal")
	}
}

func TestStructCloneIsIndependent(t *testing.T) {
	fid := ids.FieldID(1)
	s := &StructInstance{TypeID: 1, Fields: map[ids.FieldID]Value{fid: Int(1)}}
	clone := s.Clone()
	clone.Fields[fid] = Int(2)
	if s.Fields[fid].IntVal != 1 {
		t.Fatalf("mutating clone affected original: %v", s.Fields[fid])
	}
}
