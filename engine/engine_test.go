package engine

import (
	"testing"

	"github.com/chazu/vibeswift/internal/config"
	"github.com/chazu/vibeswift/pkg/bridge"
	"github.com/chazu/vibeswift/pkg/capability"
	"github.com/chazu/vibeswift/pkg/value"
	"github.com/chazu/vibeswift/pkg/vm"
)

func allCaps() capability.Set {
	return capability.NewSet(capability.FoundationBasic, capability.DateFormatting, capability.UIBasic, capability.Diagnostics)
}

func newTestEngine() *Engine {
	return New(config.Defaults())
}

func TestCompileSucceeds(t *testing.T) {
	e := newTestEngine()
	res := e.Compile("let x = 2\nreturn x\n", "main.vsw", allCaps())
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", res.Diagnostics)
	}
	if res.Program == nil {
		t.Fatal("expected a compiled program")
	}
}

func TestCompileReportsUnknownIdentifierWithSpan(t *testing.T) {
	e := newTestEngine()
	res := e.Compile("return missing\n", "main.vsw", allCaps())
	if res.Program != nil {
		t.Fatal("expected compile failure")
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected one diagnostic, got %v", res.Diagnostics)
	}
	if res.Diagnostics[0].Span == nil {
		t.Error("expected the diagnostic to carry a span")
	}
}

func TestCompileAndRunArithmetic(t *testing.T) {
	e := newTestEngine()
	res, err := e.CompileAndRun(RunRequest{
		Source:       "let x = 2\nlet y = 3\nprint(x + y)\nreturn x + y\n",
		FileName:     "main.vsw",
		Capabilities: allCaps(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Value.Kind != value.KindInt || res.Value.IntVal != 5 {
		t.Fatalf("expected 5, got %v", res.Value)
	}
	if len(res.Output) != 1 || res.Output[0] != "5" {
		t.Fatalf("expected output [5], got %v", res.Output)
	}
}

func TestCompileAndRunReturnsDiagnosticsOnCompileFailure(t *testing.T) {
	e := newTestEngine()
	res, err := e.CompileAndRun(RunRequest{Source: "return missing\n", Capabilities: allCaps()})
	if err != nil {
		t.Fatalf("expected compile failures to surface as diagnostics, not an error: %v", err)
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func TestCompileAndRunReturnsTypedErrorOnDeniedCapability(t *testing.T) {
	e := newTestEngine()
	_, err := e.CompileAndRun(RunRequest{
		Source:       "return Date.now()\n",
		Capabilities: capability.NewSet(capability.FoundationBasic),
	})
	if err == nil {
		t.Fatal("expected a runtime error for a denied capability")
	}
	re, ok := err.(*vm.RuntimeError)
	if !ok {
		t.Fatalf("expected *vm.RuntimeError, got %T", err)
	}
	if _, ok := re.Err.(bridge.DeniedError); !ok {
		t.Fatalf("expected a wrapped DeniedError, got %v", re.Err)
	}
}

func TestBuildPreviewReportsUsedAndBlockedSymbols(t *testing.T) {
	e := newTestEngine()
	preview := e.BuildPreview(PreviewRequest{
		Source:       "print(Date.now())\n",
		Capabilities: capability.NewSet(capability.FoundationBasic),
	})
	if !preview.VMCompilationSucceeded {
		t.Fatalf("expected compilation to succeed, diagnostics: %v", preview.CompilationDiagnostics)
	}
	if len(preview.UsedSymbols) != 2 {
		t.Fatalf("expected 2 used symbols (print, Date.now), got %d", len(preview.UsedSymbols))
	}
	if len(preview.BlockedSymbols) != 1 {
		t.Fatalf("expected Date.now to be blocked, got %v", preview.BlockedSymbols)
	}
	if preview.InstructionCount == 0 {
		t.Error("expected a non-zero instruction count")
	}
}

func TestBuildPreviewOnCompileFailureReportsNoSymbols(t *testing.T) {
	e := newTestEngine()
	preview := e.BuildPreview(PreviewRequest{Source: "return missing\n", Capabilities: allCaps()})
	if preview.VMCompilationSucceeded {
		t.Fatal("expected compilation to fail")
	}
	if len(preview.CompilationDiagnostics) == 0 {
		t.Fatal("expected compilation diagnostics")
	}
	if preview.UsedSymbols != nil {
		t.Errorf("expected no used symbols, got %v", preview.UsedSymbols)
	}
}
