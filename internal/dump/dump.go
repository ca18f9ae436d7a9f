// Package dump CBOR-encodes a flattened, debug-oriented view of an
// assembled bytecode.Program for the CLI's --dump-bytecode flag. It is
// one-way: nothing decodes this format back into an executable
// Program.
package dump

import (
	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/vibeswift/pkg/bytecode"
)

// Instruction is one flattened instruction: the opcode's display name
// instead of its raw byte, and its operands as-is.
type Instruction struct {
	Op       string  `cbor:"op"`
	Operands []int64 `cbor:"operands,omitempty"`
}

// Function mirrors bytecode.FunctionMeta.
type Function struct {
	ID                  uint32 `cbor:"id"`
	Name                string `cbor:"name"`
	EntryInstructionIdx int    `cbor:"entry_instruction_idx"`
	Arity               int    `cbor:"arity"`
	LocalCount          int    `cbor:"local_count"`
	IsEntry             bool   `cbor:"is_entry"`
}

// StructField mirrors bytecode.StructField.
type StructField struct {
	FieldID uint32 `cbor:"field_id"`
	Name    string `cbor:"name"`
}

// Struct mirrors bytecode.StructLayout.
type Struct struct {
	TypeID uint32        `cbor:"type_id"`
	Name   string        `cbor:"name"`
	Fields []StructField `cbor:"fields"`
}

// Program is the flattened, CBOR-serializable view of a
// bytecode.Program.
type Program struct {
	Instructions []Instruction `cbor:"instructions"`
	Constants    []string      `cbor:"constants"`
	Functions    []Function    `cbor:"functions"`
	Structs      []Struct      `cbor:"structs"`
	ByteCodeLen  int           `cbor:"bytecode_len"`
}

// Flatten builds the debug view of p without encoding it.
func Flatten(p *bytecode.Program) Program {
	out := Program{
		Instructions: make([]Instruction, len(p.Instructions)),
		Constants:    make([]string, len(p.Constants)),
		Functions:    make([]Function, len(p.Functions)),
		Structs:      make([]Struct, len(p.Structs)),
		ByteCodeLen:  len(p.Code),
	}
	for i, ins := range p.Instructions {
		out.Instructions[i] = Instruction{Op: ins.Op.String(), Operands: ins.Operands}
	}
	for i, c := range p.Constants {
		out.Constants[i] = c.String()
	}
	for i, f := range p.Functions {
		out.Functions[i] = Function{
			ID:                  uint32(f.ID),
			Name:                f.Name,
			EntryInstructionIdx: f.EntryInstructionIdx,
			Arity:               f.Arity,
			LocalCount:          f.LocalCount,
			IsEntry:             f.IsEntry,
		}
	}
	for i, s := range p.Structs {
		fields := make([]StructField, len(s.Fields))
		for j, fl := range s.Fields {
			fields[j] = StructField{FieldID: uint32(fl.FieldID), Name: fl.Name}
		}
		out.Structs[i] = Struct{TypeID: uint32(s.TypeID), Name: s.Name, Fields: fields}
	}
	return out
}

// Encode CBOR-encodes p's flattened debug view.
func Encode(p *bytecode.Program) ([]byte, error) {
	return cbor.Marshal(Flatten(p))
}
