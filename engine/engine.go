// Package engine exposes the stable Engine API: compile, run, and
// preview a source program against a host-supplied capability set and
// resource limits. It owns one bridge registry, built once at
// construction and reused across every call.
package engine

import (
	"time"

	"github.com/chazu/vibeswift/internal/config"
	"github.com/chazu/vibeswift/internal/obs"
	"github.com/chazu/vibeswift/pkg/bridge"
	"github.com/chazu/vibeswift/pkg/bytecode"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/frontend"
	"github.com/chazu/vibeswift/pkg/guard"
	"github.com/chazu/vibeswift/pkg/ids"
	"github.com/chazu/vibeswift/pkg/value"
	"github.com/chazu/vibeswift/pkg/vm"
)

// Engine is single-construction, multi-call: one bridge registry and
// one set of default limits, reused across every
// Compile/CompileAndRun/BuildPreview call. The capability preset is
// only held for DefaultCapabilities; every call uses the capabilities
// its request carries. It holds no per-run state.
type Engine struct {
	registry            *bridge.Registry
	limits              guard.Limits
	defaultCapabilities capability.Set
}

// New constructs an Engine from cfg's loaded or defaulted limits and
// capability preset, binding the full default bridge catalog.
func New(cfg config.Config) *Engine {
	catalog := bridge.DefaultCatalog()
	registry := bridge.NewRegistry(catalog)
	bridge.BindDefaults(registry, ids.NewSymbolTable())
	return &Engine{
		registry:            registry,
		limits:              cfg.Limits,
		defaultCapabilities: cfg.DefaultCapabilities,
	}
}

// DefaultLimits returns the limits this Engine falls back to when a
// call passes a nil override.
func (e *Engine) DefaultLimits() guard.Limits { return e.limits }

// DefaultCapabilities returns the capability preset this Engine was
// constructed with.
func (e *Engine) DefaultCapabilities() capability.Set { return e.defaultCapabilities }

// CompileResult is the outcome of Compile: Program is nil iff
// Diagnostics contains at least one error-severity entry.
type CompileResult struct {
	Program     *bytecode.Program
	Diagnostics []diag.Diagnostic
}

// Compile lexes, parses, and lowers source into an assembled Program.
// Capabilities are accepted for API symmetry with CompileAndRun and
// BuildPreview but a compiled program's shape does not depend on
// them: policy is checked at dispatch time, not compile time.
func (e *Engine) Compile(source, fileName string, capabilities capability.Set) CompileResult {
	start := time.Now()
	obs.Logger().Debugf("compile start file=%s bytes=%d capabilities=%v", fileName, len(source), capabilities)

	toks, err := frontend.NewLexer(source).Tokenize()
	if err != nil {
		return e.finishCompile(fileName, start, nil, err)
	}
	ast, err := frontend.NewParser(toks).ParseProgram()
	if err != nil {
		return e.finishCompile(fileName, start, nil, err)
	}
	program, err := frontend.NewCompiler().Compile(ast)
	if err != nil {
		return e.finishCompile(fileName, start, nil, err)
	}
	return e.finishCompile(fileName, start, program, nil)
}

func (e *Engine) finishCompile(fileName string, start time.Time, program *bytecode.Program, err error) CompileResult {
	var diags []diag.Diagnostic
	if err != nil {
		diags = []diag.Diagnostic{compileErrorToDiagnostic(err)}
	}
	obs.Logger().Debugf("compile end file=%s diagnostics=%d elapsed=%s", fileName, len(diags), obs.FormatDuration(time.Since(start)))
	return CompileResult{Program: program, Diagnostics: diags}
}

// RunRequest is the input to CompileAndRun.
type RunRequest struct {
	Source       string
	FileName     string
	Capabilities capability.Set
	Limits       *guard.Limits // nil uses the Engine's default limits
	Context      bridge.ScriptContext
}

// RunResult is the successful (or compile-failed) outcome of
// CompileAndRun. A runtime failure is returned as an error instead,
// leaving RunResult zero.
type RunResult struct {
	Value       value.Value
	Output      []string
	Diagnostics []diag.Diagnostic
}

// CompileAndRun compiles req.Source and, if compilation succeeds,
// runs its entry function to completion. A compile failure is
// reported through RunResult.Diagnostics with a nil error, matching
// Compile's own nil-Program-on-failure shape; a runtime failure is
// returned as a typed error (usually *vm.RuntimeError).
func (e *Engine) CompileAndRun(req RunRequest) (RunResult, error) {
	runID := obs.NewRunID()
	start := time.Now()
	obs.Logger().Debugf("run start id=%s file=%s capabilities=%v", runID, req.FileName, req.Capabilities)

	compiled := e.Compile(req.Source, req.FileName, req.Capabilities)
	if compiled.Program == nil {
		obs.Logger().Debugf("run end id=%s outcome=compile_failed elapsed=%s", runID, obs.FormatDuration(time.Since(start)))
		return RunResult{Diagnostics: compiled.Diagnostics}, nil
	}

	limits := e.limits
	if req.Limits != nil {
		limits = *req.Limits
	}
	m := vm.New(compiled.Program, req.Capabilities, e.registry, limits)
	res, err := m.Run(req.Context)
	if err != nil {
		obs.Logger().Debugf("run end id=%s outcome=error elapsed=%s", runID, obs.FormatDuration(time.Since(start)))
		return RunResult{}, err
	}
	obs.Logger().Debugf("run end id=%s outcome=ok elapsed=%s", runID, obs.FormatDuration(time.Since(start)))
	return RunResult{Value: res.Value, Output: res.Output}, nil
}

// PreviewRequest is the input to BuildPreview.
type PreviewRequest struct {
	Source       string
	FileName     string
	Capabilities capability.Set
}

// PreviewResult summarizes a compilation for tooling without running
// it: every bridge symbol the program would call, which of those the
// given capabilities would block, and the program's static size.
type PreviewResult struct {
	CompilationDiagnostics []diag.Diagnostic
	UsedSymbols            []ids.SymbolID
	BlockedSymbols         []ids.SymbolID
	VMCompilationSucceeded bool
	BytecodeSize           int
	InstructionCount       int
	ConstantCount          int
	FunctionCount          int
}

// BuildPreview compiles req.Source and, on success, scans the
// assembled instruction list for call_bridge/call_init symbol ids
// rather than tracking usage during compilation: the symbol id is
// always the first operand of those two opcodes, so the assembled
// Program already carries everything build_preview needs.
func (e *Engine) BuildPreview(req PreviewRequest) PreviewResult {
	runID := obs.NewRunID()
	obs.Logger().Debugf("preview start id=%s file=%s capabilities=%v", runID, req.FileName, req.Capabilities)
	compiled := e.Compile(req.Source, req.FileName, req.Capabilities)
	if compiled.Program == nil {
		return PreviewResult{CompilationDiagnostics: compiled.Diagnostics}
	}

	used := usedSymbols(compiled.Program)
	policy := e.registry.Policy()
	var blocked []ids.SymbolID
	for _, id := range used {
		if !policy.IsAllowed(id, req.Capabilities) {
			blocked = append(blocked, id)
		}
	}

	return PreviewResult{
		CompilationDiagnostics: compiled.Diagnostics,
		UsedSymbols:            used,
		BlockedSymbols:         blocked,
		VMCompilationSucceeded: true,
		BytecodeSize:           len(compiled.Program.Code),
		InstructionCount:       len(compiled.Program.Instructions),
		ConstantCount:          len(compiled.Program.Constants),
		FunctionCount:          len(compiled.Program.Functions),
	}
}

func usedSymbols(p *bytecode.Program) []ids.SymbolID {
	seen := make(map[ids.SymbolID]bool)
	var out []ids.SymbolID
	for _, ins := range p.Instructions {
		if ins.Op != bytecode.OpCallBridge && ins.Op != bytecode.OpCallInit {
			continue
		}
		if len(ins.Operands) == 0 {
			continue
		}
		id := ids.SymbolID(ins.Operands[0])
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
