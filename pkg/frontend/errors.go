package frontend

import (
	"fmt"

	"github.com/chazu/vibeswift/pkg/diag"
)

type UnterminatedStringError struct{ Pos diag.Position }

func (e UnterminatedStringError) Error() string {
	return fmt.Sprintf("unterminated string literal starting at line %d, column %d", e.Pos.Line, e.Pos.Column)
}

type UnexpectedCharError struct {
	Char rune
	Pos  diag.Position
}

func (e UnexpectedCharError) Error() string {
	return fmt.Sprintf("unexpected character %q at line %d, column %d", e.Char, e.Pos.Line, e.Pos.Column)
}

type UnexpectedTokenError struct {
	Got      TokenType
	Expected string
	Pos      diag.Position
}

func (e UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %d at line %d, column %d: expected %s", e.Got, e.Pos.Line, e.Pos.Column, e.Expected)
}

type UnknownStatementStartError struct {
	Pos diag.Position
}

func (e UnknownStatementStartError) Error() string {
	return fmt.Sprintf("could not parse a statement at line %d, column %d", e.Pos.Line, e.Pos.Column)
}
