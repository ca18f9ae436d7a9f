package bytecode

import (
	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/ids"
)

// FunctionMeta describes one compiled function's entry point and
// frame shape.
type FunctionMeta struct {
	ID                  ids.FunctionID
	Name                string
	EntryInstructionIdx int
	Arity               int
	LocalCount          int
	IsEntry             bool
}

// StructField is one entry of a StructLayout, in declaration order.
type StructField struct {
	FieldID  ids.FieldID
	Name     string
	TypeHint string // optional, compile-time only
}

// StructLayout describes a struct's field order, which also
// determines positional construction order.
type StructLayout struct {
	TypeID ids.TypeID
	Name   string
	Fields []StructField
}

// Program is the immutable, assembled output of the frontend: a byte
// stream, the decoded instruction list the VM actually executes over,
// the constant pool, function and struct tables, and a sparse
// instruction-index-to-span map for diagnostics.
type Program struct {
	Code         []byte
	Instructions []Instruction
	Constants    []Constant
	Functions    []FunctionMeta
	Structs      []StructLayout
	Spans        map[int]diag.Span
}

// EntryFunction returns the program's entry function: the one marked
// IsEntry, or functions[0] if none is marked.
func (p *Program) EntryFunction() (FunctionMeta, bool) {
	for _, f := range p.Functions {
		if f.IsEntry {
			return f, true
		}
	}
	if len(p.Functions) > 0 {
		return p.Functions[0], true
	}
	return FunctionMeta{}, false
}

// FunctionByID looks up a function by its FunctionID.
func (p *Program) FunctionByID(id ids.FunctionID) (FunctionMeta, bool) {
	for _, f := range p.Functions {
		if f.ID == id {
			return f, true
		}
	}
	return FunctionMeta{}, false
}

// StructByTypeID looks up a struct layout by TypeID.
func (p *Program) StructByTypeID(id ids.TypeID) (StructLayout, bool) {
	for _, s := range p.Structs {
		if s.TypeID == id {
			return s, true
		}
	}
	return StructLayout{}, false
}

// Assemble serializes instructions into Program.Code and records the
// span for each instruction index, producing a byte-identical
// deterministic encoding: the same instruction list and span map
// always yield the same bytes.
func Assemble(instructions []Instruction, constants []Constant, functions []FunctionMeta, structs []StructLayout, spans map[int]diag.Span) *Program {
	var code []byte
	for _, ins := range instructions {
		code = ins.Encode(code)
	}
	return &Program{
		Code:         code,
		Instructions: instructions,
		Constants:    constants,
		Functions:    functions,
		Structs:      structs,
		Spans:        spans,
	}
}
