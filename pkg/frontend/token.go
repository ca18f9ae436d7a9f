// Package frontend implements the surface-language lexer, parser,
// operator-precedence folding, and lowering into bytecode.
package frontend

import "github.com/chazu/vibeswift/pkg/diag"

type TokenType int

const (
	TokEOF TokenType = iota
	TokInt
	TokFloat
	TokString
	TokIdent
	TokTrue
	TokFalse
	TokNil

	TokLet
	TokVar
	TokFunc
	TokStruct
	TokIf
	TokElse
	TokWhile
	TokReturn

	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokEq       // =
	TokEqEq     // ==
	TokLt
	TokGt
	TokLe
	TokGe
	TokAndAnd
	TokOrOr
	TokBang

	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokComma
	TokDot
	TokSemicolon
	TokNewline
)

var keywords = map[string]TokenType{
	"let": TokLet, "var": TokVar, "func": TokFunc, "struct": TokStruct,
	"if": TokIf, "else": TokElse, "while": TokWhile, "return": TokReturn,
	"true": TokTrue, "false": TokFalse, "nil": TokNil,
}

type Token struct {
	Type  TokenType
	Text  string
	Pos   diag.Position
}
