package vm

import (
	"github.com/chazu/vibeswift/pkg/bridge"
	"github.com/chazu/vibeswift/pkg/bytecode"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// execute runs one instruction. It returns halted=true when the
// program has reached its final halt (entry-function return with an
// empty resulting call stack).
func (m *VM) execute(ins bytecode.Instruction, at int) (bool, error) {
	switch ins.Op {
	case bytecode.OpNop:
		return false, nil

	case bytecode.OpHalt:
		return true, nil

	case bytecode.OpPushConst:
		idx := int(ins.Operands[0])
		if idx < 0 || idx >= len(m.program.Constants) {
			return false, InvalidConstantIndexError{Index: idx, Count: len(m.program.Constants)}
		}
		return false, m.push(m.program.Constants[idx].ToValue())

	case bytecode.OpPop:
		_, err := m.pop("pop")
		return false, err

	case bytecode.OpDup:
		v, err := m.pop("dup")
		if err != nil {
			return false, err
		}
		if err := m.push(v); err != nil {
			return false, err
		}
		return false, m.push(v)

	case bytecode.OpLoadLocal:
		frame := m.currentFrame()
		idx := int(ins.Operands[0])
		if idx < 0 || idx >= len(frame.Locals) {
			return false, InvalidLocalIndexError{Index: idx, Count: len(frame.Locals)}
		}
		return false, m.push(frame.Locals[idx])

	case bytecode.OpStoreLocal:
		frame := m.currentFrame()
		idx := int(ins.Operands[0])
		v, err := m.pop("store_local")
		if err != nil {
			return false, err
		}
		if idx < 0 || idx >= len(frame.Locals) {
			return false, InvalidLocalIndexError{Index: idx, Count: len(frame.Locals)}
		}
		frame.Locals[idx] = v
		return false, nil

	case bytecode.OpJump:
		m.pc = int(ins.Operands[0])
		return false, nil

	case bytecode.OpJumpIfFalse:
		v, err := m.pop("jump_if_false")
		if err != nil {
			return false, err
		}
		if !v.IsTruthy() {
			m.pc = int(ins.Operands[0])
		}
		return false, nil

	case bytecode.OpJumpIfTrue:
		v, err := m.pop("jump_if_true")
		if err != nil {
			return false, err
		}
		if v.IsTruthy() {
			m.pc = int(ins.Operands[0])
		}
		return false, nil

	case bytecode.OpReturnValue:
		return m.execReturn()

	case bytecode.OpCallUser:
		return false, m.execCallUser(ins)

	case bytecode.OpCallBridge, bytecode.OpCallInit:
		return false, m.execCallBridge(ins, at)

	case bytecode.OpMakeStruct:
		return false, m.execMakeStruct(ins, at)

	case bytecode.OpGetField:
		return false, m.execGetField(ins, at)

	case bytecode.OpSetField:
		return false, m.execSetField(ins, at)

	default:
		return false, InvalidOpcodeError{Op: byte(ins.Op)}
	}
}

// execReturn implements return_value: pop result, pop frame; if the
// popped frame had a return_pc, resume the caller with the result
// pushed; otherwise this was the entry function's return, so clear
// the stack, push the result, and halt.
func (m *VM) execReturn() (bool, error) {
	result, err := m.pop("return_value")
	if err != nil {
		return false, err
	}
	if len(m.callStack) == 0 {
		return false, EmptyCallStackReturnError{}
	}
	popped := m.callStack[len(m.callStack)-1]
	m.callStack = m.callStack[:len(m.callStack)-1]

	if popped.ReturnPC != nil {
		m.pc = *popped.ReturnPC
		return false, m.push(result)
	}
	m.valueStack = m.valueStack[:0]
	if err := m.push(result); err != nil {
		return false, err
	}
	return true, nil
}

func (m *VM) execCallUser(ins bytecode.Instruction) error {
	fnID := ids.FunctionID(ins.Operands[0])
	argc := int(ins.Operands[1])

	target, ok := m.program.FunctionByID(fnID)
	if !ok {
		return UnknownFunctionError{FunctionID: fnID}
	}

	args, err := m.popN(argc, "call_user")
	if err != nil {
		return err
	}

	locals := make([]value.Value, target.LocalCount)
	for i := range locals {
		locals[i] = value.None()
	}
	copy(locals, args)

	returnPC := m.pc
	callSitePC := m.pc - 1
	m.callStack = append(m.callStack, &Frame{
		FunctionID:   target.ID,
		FunctionName: target.Name,
		ReturnPC:     &returnPC,
		CallSitePC:   &callSitePC,
		Locals:       locals,
	})
	m.pc = target.EntryInstructionIdx

	return m.guard.EnsureCallDepth(len(m.callStack))
}

func (m *VM) execCallBridge(ins bytecode.Instruction, at int) error {
	symID := ids.SymbolID(ins.Operands[0])
	argc := int(ins.Operands[1])
	hasReceiver := len(ins.Operands) > 2 && ins.Operands[2] == 1

	args, err := m.popN(argc, "call_bridge")
	if err != nil {
		return err
	}

	var receiver value.Value
	if hasReceiver {
		receiver, err = m.pop("call_bridge receiver")
		if err != nil {
			return err
		}
	}

	m.bridgeCache[at] = BridgeCacheEntry{ReceiverKind: receiver.Kind}

	ctx := bridge.Current(m.scriptK)
	sink := func(text string) { m.output = append(m.output, text) }

	result, err := m.registry.Dispatch(symID, m.caps, receiver, args, ctx, sink)
	if err != nil {
		return err
	}
	return m.push(result)
}

func (m *VM) execMakeStruct(ins bytecode.Instruction, at int) error {
	typeID := ids.TypeID(ins.Operands[0])
	fieldCount := int(ins.Operands[1])
	fieldIDs := ins.Operands[2:]
	if len(fieldIDs) != fieldCount {
		return MakeStructOperandMismatchError{Got: len(fieldIDs), Want: fieldCount}
	}

	values, err := m.popN(fieldCount, "make_struct")
	if err != nil {
		return err
	}

	fields := make(map[ids.FieldID]value.Value, fieldCount)
	var lastFieldID ids.FieldID
	for i, fidRaw := range fieldIDs {
		fid := ids.FieldID(fidRaw)
		fields[fid] = values[i]
		lastFieldID = fid
	}
	m.fieldCache[at] = FieldCacheEntry{TypeID: typeID, FieldID: lastFieldID}

	return m.push(value.Struct(&value.StructInstance{TypeID: typeID, Fields: fields}))
}

func (m *VM) execGetField(ins bytecode.Instruction, at int) error {
	fid := ids.FieldID(ins.Operands[0])
	base, err := m.pop("get_field")
	if err != nil {
		return err
	}
	if base.Kind != value.KindStructInstance {
		return NotAStructError{Op: "get_field"}
	}
	v, ok := base.StructVal.Fields[fid]
	if !ok {
		return MissingFieldError{FieldID: fid}
	}
	m.fieldCache[at] = FieldCacheEntry{TypeID: base.StructVal.TypeID, FieldID: fid}
	return m.push(v)
}

func (m *VM) execSetField(ins bytecode.Instruction, at int) error {
	fid := ids.FieldID(ins.Operands[0])
	newVal, err := m.pop("set_field value")
	if err != nil {
		return err
	}
	base, err := m.pop("set_field base")
	if err != nil {
		return err
	}
	if base.Kind != value.KindStructInstance {
		return NotAStructError{Op: "set_field"}
	}
	// Copy-on-write: set_field never mutates the popped instance in
	// place.
	clone := base.StructVal.Clone()
	clone.Fields[fid] = newVal
	m.fieldCache[at] = FieldCacheEntry{TypeID: clone.TypeID, FieldID: fid}
	return m.push(value.Struct(clone))
}
