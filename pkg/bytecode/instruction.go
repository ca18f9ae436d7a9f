package bytecode

// Instruction is the decoded form the VM actually executes over.
// Operands are signed (ZigZag-decoded) regardless of what they
// address — constant indices, local slots, jump targets, and ids are
// all non-negative in practice but carried as int64 so decoding never
// needs a separate unsigned operand path.
type Instruction struct {
	Op       Opcode
	Operands []int64
}

// Encode appends this instruction's byte-coded form to buf: opcode
// byte, unsigned-varint operand count, then each operand as a signed
// ZigZag varint.
func (ins Instruction) Encode(buf []byte) []byte {
	buf = append(buf, byte(ins.Op))
	buf = PutUvarint(buf, uint64(len(ins.Operands)))
	for _, op := range ins.Operands {
		buf = PutVarint(buf, op)
	}
	return buf
}

// DecodeInstruction decodes one instruction from buf, returning the
// instruction and the number of bytes consumed.
func DecodeInstruction(buf []byte) (Instruction, int, error) {
	if len(buf) == 0 {
		return Instruction{}, 0, UnexpectedEOFError{}
	}
	op := Opcode(buf[0])
	pos := 1
	count, n, err := Uvarint(buf[pos:])
	if err != nil {
		return Instruction{}, 0, err
	}
	pos += n
	operands := make([]int64, count)
	for i := range operands {
		v, n, err := Varint(buf[pos:])
		if err != nil {
			return Instruction{}, 0, err
		}
		pos += n
		operands[i] = v
	}
	return Instruction{Op: op, Operands: operands}, pos, nil
}

// Label is a forward-referenceable jump target created by
// InstructionBuilder before the target instruction index is known.
type Label int

// InstructionBuilder assembles a logical instruction list with
// symbolic jump targets, resolving them to concrete instruction
// indices only once every instruction has been emitted. This is the
// piece that makes jump targets instruction-list indices rather
// than byte offsets: resolving fixups before any byte encoding
// happens sidesteps the backpatch-width problem a variable-width
// varint scheme would otherwise hit if jump targets were patched
// directly into an already-encoded byte stream.
type InstructionBuilder struct {
	instructions []Instruction
	labelTarget  map[Label]int
	nextLabel    Label
	fixups       []fixup
	marked       map[Label]bool
}

type fixup struct {
	instructionIndex int
	label            Label
}

func NewInstructionBuilder() *InstructionBuilder {
	return &InstructionBuilder{
		labelTarget: make(map[Label]int),
		marked:      make(map[Label]bool),
	}
}

// CreateLabel allocates a new, unmarked label.
func (b *InstructionBuilder) CreateLabel() Label {
	l := b.nextLabel
	b.nextLabel++
	return l
}

// Mark binds label to the instruction index that will be emitted
// next.
func (b *InstructionBuilder) Mark(l Label) {
	b.labelTarget[l] = len(b.instructions)
	b.marked[l] = true
}

// Emit appends a non-jump instruction and returns its index.
func (b *InstructionBuilder) Emit(op Opcode, operands ...int64) int {
	idx := len(b.instructions)
	b.instructions = append(b.instructions, Instruction{Op: op, Operands: append([]int64{}, operands...)})
	return idx
}

// EmitJump appends a jump-family instruction whose single operand
// will be resolved to l's marked index once Finish is called.
func (b *InstructionBuilder) EmitJump(op Opcode, l Label) int {
	idx := len(b.instructions)
	b.instructions = append(b.instructions, Instruction{Op: op, Operands: []int64{0}})
	b.fixups = append(b.fixups, fixup{instructionIndex: idx, label: l})
	return idx
}

// Len returns the number of instructions emitted so far, useful for
// computing a merge-time start offset.
func (b *InstructionBuilder) Len() int { return len(b.instructions) }

// UnmarkedLabelError reports a label that was created but never
// marked, an unbound-label compile error.
type UnmarkedLabelError struct{ Label Label }

func (e UnmarkedLabelError) Error() string { return "unbound label" }

// Finish resolves every jump fixup to its label's marked instruction
// index and returns the final instruction list. It errors if any
// referenced label was never marked.
func (b *InstructionBuilder) Finish() ([]Instruction, error) {
	for _, fx := range b.fixups {
		if !b.marked[fx.label] {
			return nil, UnmarkedLabelError{Label: fx.label}
		}
		target := b.labelTarget[fx.label]
		b.instructions[fx.instructionIndex].Operands[0] = int64(target)
	}
	return b.instructions, nil
}

// Offset shifts every jump operand of every instruction in ins by
// delta, used when merging a function's locally-built instruction
// block into the program-wide instruction list.
func Offset(ins []Instruction, delta int64) {
	for i := range ins {
		if ins[i].Op.IsJump() {
			ins[i].Operands[0] += delta
		}
	}
}
