package bytecode

import (
	"testing"

	"github.com/chazu/vibeswift/pkg/diag"
)

func TestConstantPoolDedup(t *testing.T) {
	b := NewConstantPoolBuilder()
	i1 := b.Intern(ConstantInt(42))
	i2 := b.Intern(ConstantInt(42))
	i3 := b.Intern(ConstantString("42"))
	if i1 != i2 {
		t.Fatalf("identical constants got different indices: %d != %d", i1, i2)
	}
	if i1 == i3 {
		t.Fatalf("different constants got the same index")
	}
}

func TestInstructionBuilderResolvesForwardLabel(t *testing.T) {
	b := NewInstructionBuilder()
	end := b.CreateLabel()
	b.EmitJump(OpJumpIfFalse, end)
	b.Emit(OpPushConst, 0)
	b.Mark(end)
	b.Emit(OpReturnValue)

	instrs, err := b.Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if instrs[0].Operands[0] != 2 {
		t.Fatalf("expected jump target 2, got %d", instrs[0].Operands[0])
	}
}

func TestInstructionBuilderUnmarkedLabelErrors(t *testing.T) {
	b := NewInstructionBuilder()
	l := b.CreateLabel()
	b.EmitJump(OpJump, l)
	if _, err := b.Finish(); err == nil {
		t.Fatal("expected error for unmarked label")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ins := Instruction{Op: OpCallBridge, Operands: []int64{7, 2, 1}}
	buf := ins.Encode(nil)
	decoded, n, err := DecodeInstruction(buf)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("consumed %d bytes, want %d", n, len(buf))
	}
	if decoded.Op != ins.Op || len(decoded.Operands) != len(ins.Operands) {
		t.Fatalf("round trip mismatch: %+v != %+v", decoded, ins)
	}
	for i := range ins.Operands {
		if decoded.Operands[i] != ins.Operands[i] {
			t.Fatalf("operand %d mismatch: %d != %d", i, decoded.Operands[i], ins.Operands[i])
		}
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	instrs := []Instruction{
		{Op: OpPushConst, Operands: []int64{0}},
		{Op: OpReturnValue, Operands: nil},
	}
	spans := map[int]diag.Span{0: {Start: diag.Position{Line: 1}, End: diag.Position{Line: 1}}}
	p1 := Assemble(instrs, nil, nil, nil, spans)
	p2 := Assemble(instrs, nil, nil, nil, spans)
	if string(p1.Code) != string(p2.Code) {
		t.Fatalf("assembling the same instructions twice produced different bytes")
	}
}

func TestSpanCoverage(t *testing.T) {
	sp := diag.Span{Start: diag.Position{Line: 1, UTF8Offset: 0}, End: diag.Position{Line: 1, UTF8Offset: 3}}
	if !sp.Valid() {
		t.Fatal("expected span to satisfy end >= start coverage invariant")
	}
}
