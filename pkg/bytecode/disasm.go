package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program using
// an informal "; comment" style, one instruction per line.
func (p *Program) Disassemble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("; %d constants, %d functions, %d structs\n", len(p.Constants), len(p.Functions), len(p.Structs)))

	if len(p.Constants) > 0 {
		sb.WriteString("; Constants:\n")
		for i, c := range p.Constants {
			sb.WriteString(fmt.Sprintf(";   [%3d] %s\n", i, c))
		}
	}

	for _, fn := range p.Functions {
		entryTag := ""
		if fn.IsEntry {
			entryTag = " (entry)"
		}
		sb.WriteString(fmt.Sprintf("\n; func %s%s @ %d arity=%d locals=%d\n", fn.Name, entryTag, fn.EntryInstructionIdx, fn.Arity, fn.LocalCount))
	}

	sb.WriteString("\n")
	for i, ins := range p.Instructions {
		sb.WriteString(fmt.Sprintf("%5d  %-14s %v\n", i, ins.Op, ins.Operands))
	}

	return sb.String()
}
