package parser

import (
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/token"
)

// binPriority maps each binary operator to its precedence; larger binds
// tighter. Every operator here is left-associative.
var binPriority = map[token.Kind]int{
	token.OR:     1,
	token.AND:    2,
	token.EQEQ:   3,
	token.BANGEQ: 3,
	token.LT:     4,
	token.LE:     4,
	token.GT:     4,
	token.GE:     4,
	token.PLUS:   5,
	token.MINUS:  5,
	token.STAR:   6,
	token.SLASH:  6,
}

func canStartExpr(k token.Kind) bool {
	switch k {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NIL,
		token.IDENT, token.LPAREN, token.MINUS, token.BANG:
		return true
	default:
		return false
	}
}

// parseExpr implements precedence climbing: it parses a unary/primary term,
// then repeatedly folds in binary operators whose priority is >= minPrio.
func (p *parser) parseExpr(minPrio int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		prio, ok := binPriority[p.cur.Kind]
		if !ok || prio < minPrio {
			return left, nil
		}
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()

		right, err := p.parseExpr(prio + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Op: op, Left: left, Right: right, Start: pos}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.cur.Kind.IsUnop() {
		op := p.cur.Kind
		pos := p.cur.Pos
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Expr: x, Start: pos}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.cur

	switch tok.Kind {
	case token.NIL:
		p.advance()
		return &ast.Literal{Kind: ast.LitNil, Value: nil, Start: tok.Pos}, nil
	case token.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Value: true, Start: tok.Pos}, nil
	case token.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Value: false, Start: tok.Pos}, nil
	case token.INT:
		p.advance()
		return &ast.Literal{Kind: ast.LitInt, Value: tok.Int, Start: tok.Pos}, nil
	case token.FLOAT:
		p.advance()
		return &ast.Literal{Kind: ast.LitFloat, Value: tok.F64, Start: tok.Pos}, nil
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Value: tok.Str, Start: tok.Pos}, nil
	case token.IDENT:
		p.advance()
		if p.cur.Kind == token.LPAREN {
			return p.parseCallArgs(tok.Str, tok.Pos)
		}
		return &ast.Identifier{Name: tok.Str, Start: tok.Pos}, nil
	case token.LPAREN:
		p.advance()
		x, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, ExpectedRParen); err != nil {
			return nil, err
		}
		return x, nil
	default:
		return nil, &Error{Kind: ExpectedExpression, Pos: tok.Pos, Lexeme: tok.Raw}
	}
}

func (p *parser) parseCallArgs(callee string, start token.Position) (ast.Expr, error) {
	p.advance() // consume '('

	var args []ast.Expr
	for p.cur.Kind != token.RPAREN {
		if p.cur.Kind == token.EOF {
			return nil, &Error{Kind: UnterminatedArgs, Pos: p.cur.Pos}
		}
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)

		if p.cur.Kind == token.COMMA {
			p.advance()
			continue
		}
		break
	}

	if p.cur.Kind == token.EOF {
		return nil, &Error{Kind: UnterminatedArgs, Pos: p.cur.Pos}
	}
	if _, err := p.expect(token.RPAREN, ExpectedRParen); err != nil {
		return nil, err
	}

	return &ast.Call{CalleeName: callee, Args: args, Start: start}, nil
}
