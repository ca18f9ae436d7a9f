// Package vm implements the stack-based virtual machine: the
// run() loop, value/call stacks, frames, bridge dispatch, inline
// caches, and resource-guard/error-decoration integration.
//
// The CallFrame shape and switch-dispatch run loop follow a
// conventional string-typed stack machine design, adapted here to a
// typed value.Value stack machine.
package vm

import (
	"sync/atomic"

	"github.com/chazu/vibeswift/pkg/bridge"
	"github.com/chazu/vibeswift/pkg/bytecode"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/guard"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
)

// Frame is one activation record on the call stack.
type Frame struct {
	FunctionID   ids.FunctionID
	FunctionName string
	ReturnPC     *int
	CallSitePC   *int
	Locals       []value.Value
}

// BridgeCacheEntry records the last resolved receiver kind seen at a
// call_bridge site. Informative only: populated on every dispatch,
// never consulted to short-circuit.
type BridgeCacheEntry struct {
	ReceiverKind value.Kind
}

// FieldCacheEntry records the struct type id and field id seen at a
// make_struct/get_field/set_field site.
type FieldCacheEntry struct {
	TypeID  ids.TypeID
	FieldID ids.FieldID
}

// Result is what a successful run() call returns.
type Result struct {
	Value  value.Value
	Output []string
}

// VM is single-use: it owns its stacks from construction through Run,
// then is discarded.
type VM struct {
	program  *bytecode.Program
	caps     capability.Set
	registry *bridge.Registry
	guard    *guard.Guard
	scriptK  bridge.Key

	pc         int
	valueStack []value.Value
	callStack  []*Frame
	output     []string

	bridgeCache map[int]BridgeCacheEntry
	fieldCache  map[int]FieldCacheEntry
}

// New constructs a VM for one run over program, gated by caps and
// bounded by limits, dispatching bridge calls through registry.
func New(program *bytecode.Program, caps capability.Set, registry *bridge.Registry, limits guard.Limits) *VM {
	return &VM{
		program:     program,
		caps:        caps,
		registry:    registry,
		guard:       guard.New(limits),
		bridgeCache: make(map[int]BridgeCacheEntry),
		fieldCache:  make(map[int]FieldCacheEntry),
	}
}

func (m *VM) push(v value.Value) error {
	m.valueStack = append(m.valueStack, v)
	return m.guard.EnsureValueStackDepth(len(m.valueStack))
}

func (m *VM) pop(opName string) (value.Value, error) {
	if len(m.valueStack) == 0 {
		return value.Value{}, StackUnderflowError{Op: opName}
	}
	v := m.valueStack[len(m.valueStack)-1]
	m.valueStack = m.valueStack[:len(m.valueStack)-1]
	return v, nil
}

func (m *VM) popN(n int, opName string) ([]value.Value, error) {
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := m.pop(opName)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *VM) currentFrame() *Frame {
	if len(m.callStack) == 0 {
		return nil
	}
	return m.callStack[len(m.callStack)-1]
}

// Run executes the program's entry function to completion.
func (m *VM) Run(ctx bridge.ScriptContext) (Result, error) {
	bridge.Push(m.scriptKeyOrInit(), ctx)
	defer bridge.Release(m.scriptK)

	entry, ok := m.program.EntryFunction()
	if !ok {
		return Result{Value: value.None(), Output: m.output}, nil
	}

	locals := make([]value.Value, entry.LocalCount)
	for i := range locals {
		locals[i] = value.None()
	}
	m.callStack = append(m.callStack, &Frame{
		FunctionID:   entry.ID,
		FunctionName: entry.Name,
		Locals:       locals,
	})
	m.pc = entry.EntryInstructionIdx

	for m.pc >= 0 && m.pc < len(m.program.Instructions) {
		if err := m.guard.OnInstruction(); err != nil {
			return Result{}, m.decorate(err)
		}
		cur := m.pc
		m.pc++
		halted, err := m.execute(m.program.Instructions[cur], cur)
		if err != nil {
			return Result{}, m.decorateAt(err, cur)
		}
		if halted {
			break
		}
	}

	var result value.Value
	if len(m.valueStack) > 0 {
		result = m.valueStack[len(m.valueStack)-1]
	} else {
		result = value.None()
	}
	return Result{Value: result, Output: m.output}, nil
}

var scriptKeyCounter int64

func (m *VM) scriptKeyOrInit() bridge.Key {
	m.scriptK = bridge.Key(atomic.AddInt64(&scriptKeyCounter, 1))
	return m.scriptK
}

func (m *VM) decorate(err error) error {
	return m.decorateAt(err, m.pc)
}

func (m *VM) decorateAt(err error, instructionIndex int) error {
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	var span *diag.Span
	if s, ok := m.program.Spans[instructionIndex]; ok {
		span = &s
	}
	stack := make([]diag.CallFrame, 0, len(m.callStack))
	for i := len(m.callStack) - 1; i >= 0; i-- {
		f := m.callStack[i]
		var siteSpan *diag.Span
		if f.CallSitePC != nil {
			if s, ok := m.program.Spans[*f.CallSitePC]; ok {
				siteSpan = &s
			}
		}
		stack = append(stack, diag.CallFrame{FunctionName: f.FunctionName, CallSiteSpan: siteSpan})
	}
	return &RuntimeError{Err: err, FailingInstructionIndex: instructionIndex, Span: span, CallStack: stack}
}

// BridgeCache and FieldCache expose the informative-only inline
// caches for inspection (e.g. by tooling built on top of the engine).
func (m *VM) BridgeCache() map[int]BridgeCacheEntry { return m.bridgeCache }
func (m *VM) FieldCache() map[int]FieldCacheEntry   { return m.fieldCache }
