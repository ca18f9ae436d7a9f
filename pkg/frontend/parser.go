package frontend

import (
	"strconv"

	"github.com/chazu/vibeswift/pkg/diag"
)

// Parser is a recursive-descent parser over the token stream produced
// by Lexer. Operator folding is done inline via precedence climbing
// in parseBinary rather than as a separate pass over a flat infix
// chain; the two produce the same tree.
type Parser struct {
	toks []Token
	pos  int
}

func NewParser(toks []Token) *Parser {
	// Newlines terminate statements; blank lines collapse to nothing,
	// so we keep them in the stream and let statement parsing consume
	// them as terminators instead of filtering them out up front.
	return &Parser{toks: toks}
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) atEnd() bool { return p.cur().Type == TokEOF }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt TokenType) bool { return p.cur().Type == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if !p.check(tt) {
		return Token{}, UnexpectedTokenError{Got: p.cur().Type, Expected: what, Pos: p.cur().Pos}
	}
	return p.advance(), nil
}

func (p *Parser) skipNewlines() {
	for p.check(TokNewline) || p.check(TokSemicolon) {
		p.advance()
	}
}

func span(start, end diag.Position) diag.Span { return diag.Span{Start: start, End: end} }

// ParseProgram parses a full source file into top-level struct and
// function declarations plus free-standing top-level statements.
func (p *Parser) ParseProgram() (*Program, error) {
	start := p.cur().Pos
	prog := &Program{baseNode: baseNode{span: span(start, start)}}
	p.skipNewlines()
	for !p.atEnd() {
		switch p.cur().Type {
		case TokStruct:
			sd, err := p.parseStructDecl()
			if err != nil {
				return nil, err
			}
			prog.Structs = append(prog.Structs, sd)
		case TokFunc:
			fd, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fd)
		default:
			st, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			prog.Statements = append(prog.Statements, st)
		}
		p.skipNewlines()
	}
	prog.span = span(start, p.cur().Pos)
	return prog, nil
}

func (p *Parser) parseStructDecl() (*StructDecl, error) {
	start := p.cur().Pos
	p.advance() // 'struct'
	name, err := p.expect(TokIdent, "struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, err
	}
	p.skipNewlines()
	var fields []string
	for !p.check(TokRBrace) {
		f, err := p.expect(TokIdent, "field name")
		if err != nil {
			return nil, err
		}
		fields = append(fields, f.Text)
		p.skipNewlines()
	}
	end := p.cur().Pos
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, err
	}
	return &StructDecl{baseNode: baseNode{span: span(start, end)}, Name: name.Text, Fields: fields}, nil
}

func (p *Parser) parseFuncDecl() (*FuncDecl, error) {
	start := p.cur().Pos
	p.advance() // 'func'
	name, err := p.expect(TokIdent, "function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokLParen, "("); err != nil {
		return nil, err
	}
	var params []string
	for !p.check(TokRParen) {
		param, err := p.expect(TokIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, param.Text)
		if !p.match(TokComma) {
			break
		}
	}
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, err
	}
	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &FuncDecl{baseNode: baseNode{span: span(start, end)}, Name: name.Text, Params: params, Body: body}, nil
}

func (p *Parser) parseBlock() ([]Statement, diag.Position, error) {
	if _, err := p.expect(TokLBrace, "{"); err != nil {
		return nil, diag.Position{}, err
	}
	p.skipNewlines()
	var stmts []Statement
	for !p.check(TokRBrace) && !p.atEnd() {
		st, err := p.parseStatement()
		if err != nil {
			return nil, diag.Position{}, err
		}
		stmts = append(stmts, st)
		p.skipNewlines()
	}
	end := p.cur().Pos
	if _, err := p.expect(TokRBrace, "}"); err != nil {
		return nil, diag.Position{}, err
	}
	return stmts, end, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.cur().Type {
	case TokLet:
		return p.parseLetOrVar(true)
	case TokVar:
		return p.parseLetOrVar(false)
	case TokIf:
		return p.parseIf()
	case TokWhile:
		return p.parseWhile()
	case TokReturn:
		return p.parseReturn()
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseLetOrVar(isLet bool) (Statement, error) {
	start := p.cur().Pos
	p.advance() // 'let'/'var'
	name, err := p.expect(TokIdent, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokEq, "="); err != nil {
		return nil, err
	}
	init, err := p.parseExpressionTokens()
	if err != nil {
		return nil, err
	}
	end := init.Span().End
	if isLet {
		return &LetStatement{baseNode: baseNode{span: span(start, end)}, Name: name.Text, Init: init}, nil
	}
	return &VarStatement{baseNode: baseNode{span: span(start, end)}, Name: name.Text, Init: init}, nil
}

func (p *Parser) parseIf() (Statement, error) {
	start := p.cur().Pos
	p.advance() // 'if'
	cond, err := p.parseExpressionTokens()
	if err != nil {
		return nil, err
	}
	then, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	st := &IfStatement{baseNode: baseNode{span: span(start, end)}, Cond: cond, Then: then}
	save := p.pos
	p.skipNewlines()
	if p.check(TokElse) {
		p.advance()
		if p.check(TokIf) {
			elseIf, err := p.parseIf()
			if err != nil {
				return nil, err
			}
			st.Else = []Statement{elseIf}
			st.span = span(start, elseIf.Span().End)
			return st, nil
		}
		elseBody, elseEnd, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Else = elseBody
		st.span = span(start, elseEnd)
		return st, nil
	}
	p.pos = save
	return st, nil
}

func (p *Parser) parseWhile() (Statement, error) {
	start := p.cur().Pos
	p.advance() // 'while'
	cond, err := p.parseExpressionTokens()
	if err != nil {
		return nil, err
	}
	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStatement{baseNode: baseNode{span: span(start, end)}, Cond: cond, Body: body}, nil
}

func (p *Parser) parseReturn() (Statement, error) {
	start := p.cur().Pos
	p.advance() // 'return'
	if p.check(TokNewline) || p.check(TokSemicolon) || p.check(TokRBrace) {
		return &ReturnStatement{baseNode: baseNode{span: span(start, start)}}, nil
	}
	val, err := p.parseExpressionTokens()
	if err != nil {
		return nil, err
	}
	return &ReturnStatement{baseNode: baseNode{span: span(start, val.Span().End)}, Value: val}, nil
}

// parseExprOrAssignStatement parses an expression first, and if it is
// immediately followed by `=` reinterprets the statement as an
// assignment to that already-parsed target rather than re-parsing.
func (p *Parser) parseExprOrAssignStatement() (Statement, error) {
	start := p.cur().Pos
	target, err := p.parseExpressionTokens()
	if err != nil {
		return nil, err
	}
	if p.check(TokEq) {
		p.advance()
		value, err := p.parseExpressionTokens()
		if err != nil {
			return nil, err
		}
		return &AssignStatement{baseNode: baseNode{span: span(start, value.Span().End)}, Target: target, Value: value}, nil
	}
	return &ExpressionStatement{baseNode: baseNode{span: span(start, target.Span().End)}, Expr: target}, nil
}

// parseExpressionTokens folds operators directly via precedence
// climbing rather than parsing a flat chain and re-shaping it in a
// second pass: the two produce the same tree, but this avoids
// building and discarding an intermediate one.
func (p *Parser) parseExpressionTokens() (Expression, error) {
	return p.parseBinary(0)
}

var precedence = map[TokenType]int{
	TokOrOr:  1,
	TokAndAnd: 2,
	TokEqEq:  3,
	TokLt:    3,
	TokGt:    3,
	TokLe:    3,
	TokGe:    3,
	TokPlus:  4,
	TokMinus: 4,
	TokStar:  5,
	TokSlash: 5,
}

func (p *Parser) parseBinary(minPrec int) (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec, ok := precedence[p.cur().Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &InfixExpr{
			baseNode: baseNode{span: span(left.Span().Start, right.Span().End)},
			Op:       opText(opTok.Type),
			Left:     left,
			Right:    right,
		}
	}
}

func opText(tt TokenType) string {
	switch tt {
	case TokPlus:
		return "+"
	case TokMinus:
		return "-"
	case TokStar:
		return "*"
	case TokSlash:
		return "/"
	case TokEqEq:
		return "=="
	case TokLt:
		return "<"
	case TokGt:
		return ">"
	case TokLe:
		return "<="
	case TokGe:
		return ">="
	case TokAndAnd:
		return "&&"
	case TokOrOr:
		return "||"
	}
	return "?"
}

// parseUnary desugars the two unary forms into the fixed binary
// operator set (+ - * / == < > <= >= && ||): there is no dedicated
// unary opcode or op-namespace symbol, so `-x` becomes `0 - x` and
// `!x` becomes `x == false`.
func (p *Parser) parseUnary() (Expression, error) {
	if p.check(TokMinus) {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		zero := &IntLiteral{baseNode: baseNode{span: span(opTok.Pos, opTok.Pos)}, Value: 0}
		return &InfixExpr{
			baseNode: baseNode{span: span(opTok.Pos, operand.Span().End)},
			Op:       "-",
			Left:     zero,
			Right:    operand,
		}, nil
	}
	if p.check(TokBang) {
		opTok := p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		falseLit := &BoolLiteral{baseNode: baseNode{span: span(opTok.Pos, opTok.Pos)}, Value: false}
		return &InfixExpr{
			baseNode: baseNode{span: span(opTok.Pos, operand.Span().End)},
			Op:       "==",
			Left:     operand,
			Right:    falseLit,
		}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.check(TokDot):
			p.advance()
			name, err := p.expect(TokIdent, "member name")
			if err != nil {
				return nil, err
			}
			member := &MemberExpr{baseNode: baseNode{span: span(expr.Span().Start, name.Pos)}, Base: expr, Name: name.Text}
			if p.check(TokLParen) {
				args, end, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				expr = &CallExpr{baseNode: baseNode{span: span(expr.Span().Start, end)}, Callee: member, Args: args}
			} else {
				expr = member
			}
		case p.check(TokLParen):
			args, end, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			expr = &CallExpr{baseNode: baseNode{span: span(expr.Span().Start, end)}, Callee: expr, Args: args}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgs() ([]Expression, diag.Position, error) {
	p.advance() // '('
	var args []Expression
	for !p.check(TokRParen) {
		arg, err := p.parseExpressionTokens()
		if err != nil {
			return nil, diag.Position{}, err
		}
		args = append(args, arg)
		if !p.match(TokComma) {
			break
		}
	}
	end := p.cur().Pos
	if _, err := p.expect(TokRParen, ")"); err != nil {
		return nil, diag.Position{}, err
	}
	return args, end, nil
}

func (p *Parser) parsePrimary() (Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case TokInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, err
		}
		return &IntLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Value: n}, nil
	case TokFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, err
		}
		return &FloatLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Value: f}, nil
	case TokString:
		p.advance()
		return &StringLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Value: tok.Text}, nil
	case TokTrue:
		p.advance()
		return &BoolLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Value: true}, nil
	case TokFalse:
		p.advance()
		return &BoolLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Value: false}, nil
	case TokNil:
		p.advance()
		return &NilLiteral{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}}, nil
	case TokIdent:
		p.advance()
		return &Identifier{baseNode: baseNode{span: span(tok.Pos, tok.Pos)}, Name: tok.Text}, nil
	case TokLParen:
		p.advance()
		inner, err := p.parseExpressionTokens()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokRParen, ")"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, UnexpectedTokenError{Got: tok.Type, Expected: "expression", Pos: tok.Pos}
}
