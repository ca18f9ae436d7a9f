package engine

import (
	"github.com/chazu/vibeswift/pkg/bytecode"
	"github.com/chazu/vibeswift/pkg/diag"
	"github.com/chazu/vibeswift/pkg/frontend"
)

// compileErrorToDiagnostic converts a lex/parse/compile error from
// pkg/frontend (or pkg/bytecode's unbound-label error) into the
// diag.Diagnostic shape the Engine API returns. Every frontend error
// that carries a source position gets a zero-width span at that
// position; UnknownLocalError already carries a full span from the
// offending identifier's node.
func compileErrorToDiagnostic(err error) diag.Diagnostic {
	switch e := err.(type) {
	case frontend.UnterminatedStringError:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error(), Span: pointSpan(e.Pos)}
	case frontend.UnexpectedCharError:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error(), Span: pointSpan(e.Pos)}
	case frontend.UnexpectedTokenError:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error(), Span: pointSpan(e.Pos)}
	case frontend.UnknownStatementStartError:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error(), Span: pointSpan(e.Pos)}
	case frontend.UnknownLocalError:
		span := e.Span
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error(), Span: &span}
	case bytecode.UnmarkedLabelError:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: e.Error()}
	default:
		return diag.Diagnostic{Severity: diag.SeverityError, Message: err.Error()}
	}
}

func pointSpan(p diag.Position) *diag.Span {
	return &diag.Span{Start: p, End: p}
}
