package dump

import (
	"testing"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/vibeswift/pkg/bytecode"
)

func TestEncodeRoundTripsThroughCBOR(t *testing.T) {
	fn := bytecode.FunctionMeta{ID: 1, Name: "entry", EntryInstructionIdx: 0, LocalCount: 0, IsEntry: true}
	prog := bytecode.Assemble(
		[]bytecode.Instruction{
			{Op: bytecode.OpPushConst, Operands: []int64{0}},
			{Op: bytecode.OpReturnValue},
		},
		[]bytecode.Constant{bytecode.ConstantInt(7)},
		[]bytecode.FunctionMeta{fn},
		nil,
		nil,
	)

	encoded, err := Encode(prog)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(encoded) == 0 {
		t.Fatal("expected non-empty CBOR output")
	}

	var decoded Program
	if err := cbor.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(decoded.Instructions) != 2 {
		t.Fatalf("instructions = %d, want 2", len(decoded.Instructions))
	}
	if decoded.Instructions[0].Op != "push_const" {
		t.Errorf("instructions[0].Op = %q, want push_const", decoded.Instructions[0].Op)
	}
	if decoded.Instructions[1].Op != "return_value" {
		t.Errorf("instructions[1].Op = %q, want return_value", decoded.Instructions[1].Op)
	}
	if len(decoded.Constants) != 1 || decoded.Constants[0] != "i64(7)" {
		t.Errorf("constants = %v, want [i64(7)]", decoded.Constants)
	}
	if len(decoded.Functions) != 1 || decoded.Functions[0].Name != "entry" {
		t.Errorf("functions = %v, want entry", decoded.Functions)
	}
}

func TestFlattenHandlesEmptyProgram(t *testing.T) {
	prog := bytecode.Assemble(nil, nil, nil, nil, nil)
	flat := Flatten(prog)
	if len(flat.Instructions) != 0 || len(flat.Constants) != 0 {
		t.Fatalf("expected empty flattened program, got %+v", flat)
	}
}
