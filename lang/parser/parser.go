// Package parser implements a recursive-descent, precedence-climbing parser
// that turns a Vex token stream into an AST.
package parser

import (
	"fmt"

	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/scanner"
	"github.com/vex-lang/vex/lang/token"
)

// ErrorKind identifies the class of parse error encountered.
type ErrorKind int

//nolint:revive
const (
	NoTokens ErrorKind = iota
	ExpectedExpression
	ExpectedIdentifier
	ExpectedLParen
	ExpectedRParen
	ExpectedRBrace
	ExpectedEqual
	ExpectedSemicolon
	ExpectedCondition
	ExpectedBlock
	ExpectedStmt
	UnterminatedArgs
)

var kindNames = [...]string{
	NoTokens:            "NoTokens",
	ExpectedExpression:  "ExpectedExpression",
	ExpectedIdentifier:  "ExpectedIdentifier",
	ExpectedLParen:      "ExpectedLParen",
	ExpectedRParen:      "ExpectedRParen",
	ExpectedRBrace:      "ExpectedRBrace",
	ExpectedEqual:       "ExpectedEqual",
	ExpectedSemicolon:   "ExpectedSemicolon",
	ExpectedCondition:   "ExpectedCondition",
	ExpectedBlock:       "ExpectedBlock",
	ExpectedStmt:        "ExpectedStmt",
	UnterminatedArgs:    "UnterminatedArgs",
}

func (k ErrorKind) String() string { return kindNames[k] }

// Error reports a syntactic error, naming the missing symbol and the
// position at which parsing failed.
type Error struct {
	Kind   ErrorKind
	Pos    token.Position
	Lexeme string
}

func (e *Error) Error() string {
	if e.Lexeme != "" {
		return fmt.Sprintf("%s: unexpected %q at %s", e.Kind, e.Lexeme, e.Pos)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.Pos)
}

// Parse tokenizes and parses src, returning the top-level block.
func Parse(src []byte) (*ast.Block, error) {
	toks, err := scanner.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses an already-scanned token stream (its last token must be
// token.EOF) into the top-level block.
func ParseTokens(toks []token.Token) (*ast.Block, error) {
	if len(toks) == 0 {
		return nil, &Error{Kind: NoTokens}
	}
	p := &parser{toks: toks}
	p.cur = p.toks[0]

	start := p.cur.Pos
	stmts, err := p.stmtsUntil(token.EOF)
	if err != nil {
		return nil, err
	}
	return &ast.Block{Stmts: stmts, Start: start}, nil
}

type parser struct {
	toks []token.Token
	pos  int
	cur  token.Token
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	p.cur = p.toks[p.pos]
}

// peek returns the token n positions ahead of the current one (peek(0) ==
// p.cur), clamped to the final EOF token.
func (p *parser) peek(n int) token.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

// expect consumes the current token if it matches kind, otherwise returns a
// parse error of the given kind.
func (p *parser) expect(kind token.Kind, errKind ErrorKind) (token.Position, error) {
	if p.cur.Kind != kind {
		return token.Position{}, &Error{Kind: errKind, Pos: p.cur.Pos, Lexeme: p.cur.Raw}
	}
	pos := p.cur.Pos
	p.advance()
	return pos, nil
}

func (p *parser) stmtsUntil(end token.Kind) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for p.cur.Kind != end && p.cur.Kind != token.EOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}
