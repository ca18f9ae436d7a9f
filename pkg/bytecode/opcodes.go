// Package bytecode defines the instruction set, constant pool,
// instruction builder, and immutable Program produced by the frontend
// and consumed by the virtual machine.
package bytecode

// Opcode is a single byte-tagged instruction code.
type Opcode byte

const (
	OpNop Opcode = iota
	OpHalt
	OpPushConst
	OpPop
	OpDup
	OpLoadLocal
	OpStoreLocal
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue
	OpReturnValue
	OpCallUser
	OpCallBridge
	OpCallInit
	OpMakeStruct
	OpGetField
	OpSetField
)

// OpcodeInfo carries static metadata about an opcode. OperandCount is
// -1 for variadic opcodes, whose true operand count is read from the
// instruction's own unsigned-varint prefix rather than fixed here.
type OpcodeInfo struct {
	Name         string
	OperandCount int
	IsJump       bool
	IsVariadic   bool
}

var opcodeInfo = map[Opcode]OpcodeInfo{
	OpNop:         {"nop", 0, false, false},
	OpHalt:        {"halt", 0, false, false},
	OpPushConst:   {"push_const", 1, false, false},
	OpPop:         {"pop", 0, false, false},
	OpDup:         {"dup", 0, false, false},
	OpLoadLocal:   {"load_local", 1, false, false},
	OpStoreLocal:  {"store_local", 1, false, false},
	OpJump:        {"jump", 1, true, false},
	OpJumpIfFalse: {"jump_if_false", 1, true, false},
	OpJumpIfTrue:  {"jump_if_true", 1, true, false},
	OpReturnValue: {"return_value", 0, false, false},
	OpCallUser:    {"call_user", -1, false, true},
	OpCallBridge:  {"call_bridge", -1, false, true},
	OpCallInit:    {"call_init", -1, false, true},
	OpMakeStruct:  {"make_struct", -1, false, true},
	OpGetField:    {"get_field", 1, false, false},
	OpSetField:    {"set_field", 1, false, false},
}

func (op Opcode) String() string {
	if info, ok := opcodeInfo[op]; ok {
		return info.Name
	}
	return "unknown"
}

func (op Opcode) Info() (OpcodeInfo, bool) {
	info, ok := opcodeInfo[op]
	return info, ok
}

func (op Opcode) IsJump() bool {
	info, ok := opcodeInfo[op]
	return ok && info.IsJump
}

// AllOpcodes returns every defined opcode, for exhaustive tests and
// the disassembler.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeInfo))
	for op := range opcodeInfo {
		ops = append(ops, op)
	}
	return ops
}
