package parser

import (
	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/token"
)

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.cur.Kind {
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.RETURN:
		return p.parseReturn()
	case token.LBRACE:
		return p.parseBlock()
	case token.IDENT:
		if p.peek(1).Kind == token.EQ {
			return p.parseAssign()
		}
		return p.parseExprStmt()
	default:
		if canStartExpr(p.cur.Kind) {
			return p.parseExprStmt()
		}
		return nil, &Error{Kind: ExpectedStmt, Pos: p.cur.Pos, Lexeme: p.cur.Raw}
	}
}

func (p *parser) parseLet() (ast.Stmt, error) {
	start := p.cur.Pos
	p.advance() // consume 'let'

	if p.cur.Kind != token.IDENT {
		return nil, &Error{Kind: ExpectedIdentifier, Pos: p.cur.Pos, Lexeme: p.cur.Raw}
	}
	name := p.cur.Str
	p.advance()

	if _, err := p.expect(token.EQ, ExpectedEqual); err != nil {
		return nil, err
	}

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI, ExpectedSemicolon); err != nil {
		return nil, err
	}

	return &ast.Let{Name: name, Value: value, Start: start}, nil
}

func (p *parser) parseAssign() (ast.Stmt, error) {
	start := p.cur.Pos
	name := p.cur.Str
	p.advance() // consume identifier
	p.advance() // consume '='

	value, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.SEMI, ExpectedSemicolon); err != nil {
		return nil, err
	}

	return &ast.Assign{Name: name, Value: value, Start: start}, nil
}

func (p *parser) parseExprStmt() (ast.Stmt, error) {
	start := p.cur.Pos
	x, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI, ExpectedSemicolon); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{X: x, Start: start}, nil
}

func (p *parser) parseIf() (ast.Stmt, error) {
	start := p.cur.Pos
	p.advance() // consume 'if'

	if _, err := p.expect(token.LPAREN, ExpectedLParen); err != nil {
		return nil, err
	}
	if !canStartExpr(p.cur.Kind) {
		return nil, &Error{Kind: ExpectedCondition, Pos: p.cur.Pos, Lexeme: p.cur.Raw}
	}
	cond, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ExpectedRParen); err != nil {
		return nil, err
	}

	then, err := p.parseBlockBody()
	if err != nil {
		return nil, err
	}

	var els *ast.Block
	if p.cur.Kind == token.ELSE {
		p.advance()
		els, err = p.parseBlockBody()
		if err != nil {
			return nil, err
		}
	}

	return &ast.If{Cond: cond, Then: then, Else: els, Start: start}, nil
}

func (p *parser) parseReturn() (ast.Stmt, error) {
	start := p.cur.Pos
	p.advance() // consume 'return'

	var value ast.Expr
	if p.cur.Kind != token.SEMI {
		var err error
		value, err = p.parseExpr(0)
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.SEMI, ExpectedSemicolon); err != nil {
		return nil, err
	}

	return &ast.Return{Value: value, Start: start}, nil
}

// parseBlock parses a `{ ... }` block used where a statement is expected.
func (p *parser) parseBlock() (ast.Stmt, error) {
	return p.parseBlockBody()
}

// parseBlockBody parses a brace-delimited block and returns the *ast.Block
// directly, for use both as a statement and as an if/else body.
func (p *parser) parseBlockBody() (*ast.Block, error) {
	if p.cur.Kind != token.LBRACE {
		return nil, &Error{Kind: ExpectedBlock, Pos: p.cur.Pos, Lexeme: p.cur.Raw}
	}
	start := p.cur.Pos
	p.advance() // consume '{'

	stmts, err := p.stmtsUntil(token.RBRACE)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.RBRACE, ExpectedRBrace); err != nil {
		return nil, err
	}

	return &ast.Block{Stmts: stmts, Start: start}, nil
}
