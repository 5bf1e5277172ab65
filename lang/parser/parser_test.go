package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vex-lang/vex/lang/ast"
	"github.com/vex-lang/vex/lang/parser"
)

func TestParseLet(t *testing.T) {
	blk, err := parser.Parse([]byte(`let x = 1 + 2;`))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)

	let, ok := blk.Stmts[0].(*ast.Let)
	require.True(t, ok)
	assert.Equal(t, "x", let.Name)

	bin, ok := let.Value.(*ast.Binary)
	require.True(t, ok)
	lit, ok := bin.Left.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(1), lit.Value)
}

func TestParseAssign(t *testing.T) {
	blk, err := parser.Parse([]byte(`x = 3;`))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)

	as, ok := blk.Stmts[0].(*ast.Assign)
	require.True(t, ok)
	assert.Equal(t, "x", as.Name)
}

func TestParseCallStmt(t *testing.T) {
	blk, err := parser.Parse([]byte(`print("hi", 1);`))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)

	es, ok := blk.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "print", call.CalleeName)
	assert.Len(t, call.Args, 2)
}

func TestParseIfElse(t *testing.T) {
	src := `
	if (x < 1) {
		return 1;
	} else {
		return 2;
	}`
	blk, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)

	ifStmt, ok := blk.Stmts[0].(*ast.If)
	require.True(t, ok)
	require.NotNil(t, ifStmt.Then)
	require.NotNil(t, ifStmt.Else)
	require.Len(t, ifStmt.Then.Stmts, 1)
	require.Len(t, ifStmt.Else.Stmts, 1)
}

func TestParseIfNoElse(t *testing.T) {
	blk, err := parser.Parse([]byte(`if (true) { return; }`))
	require.NoError(t, err)
	ifStmt, ok := blk.Stmts[0].(*ast.If)
	require.True(t, ok)
	assert.Nil(t, ifStmt.Else)
}

func TestParsePrecedence(t *testing.T) {
	// 1 + 2 * 3 should bind as 1 + (2 * 3).
	blk, err := parser.Parse([]byte(`let x = 1 + 2 * 3;`))
	require.NoError(t, err)

	let := blk.Stmts[0].(*ast.Let)
	top, ok := let.Value.(*ast.Binary)
	require.True(t, ok)

	_, leftIsLit := top.Left.(*ast.Literal)
	assert.True(t, leftIsLit)

	right, ok := top.Right.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, int64(2), right.Left.(*ast.Literal).Value)
	assert.Equal(t, int64(3), right.Right.(*ast.Literal).Value)
}

func TestParseUnaryAndParens(t *testing.T) {
	blk, err := parser.Parse([]byte(`let x = -(1 + 2);`))
	require.NoError(t, err)
	let := blk.Stmts[0].(*ast.Let)

	un, ok := let.Value.(*ast.Unary)
	require.True(t, ok)
	_, ok = un.Expr.(*ast.Binary)
	assert.True(t, ok)
}

func TestParseNestedBlockStmt(t *testing.T) {
	blk, err := parser.Parse([]byte(`{ let y = 1; }`))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)
	_, ok := blk.Stmts[0].(*ast.Block)
	assert.True(t, ok)
}

func TestParseBareExprStmtAllowed(t *testing.T) {
	// Parsing accepts any expression statement; rejecting non-call
	// expressions used as statements is the compiler's job.
	blk, err := parser.Parse([]byte(`"hi";`))
	require.NoError(t, err)
	require.Len(t, blk.Stmts, 1)
	es, ok := blk.Stmts[0].(*ast.ExprStmt)
	require.True(t, ok)
	_, ok = es.X.(*ast.Literal)
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind parser.ErrorKind
	}{
		{"missing semicolon", `let x = 1`, parser.ExpectedSemicolon},
		{"missing identifier", `let = 1;`, parser.ExpectedIdentifier},
		{"missing equal", `let x 1;`, parser.ExpectedEqual},
		{"missing rparen", `if (x { }`, parser.ExpectedRParen},
		{"missing lparen", `if x) { }`, parser.ExpectedLParen},
		{"missing block", `if (x) return 1;`, parser.ExpectedBlock},
		{"missing expression", `let x = ;`, parser.ExpectedExpression},
		{"unterminated args", `print(1, 2`, parser.UnterminatedArgs},
		{"stray token", `)`, parser.ExpectedStmt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.src))
			require.Error(t, err)
			perr, ok := err.(*parser.Error)
			require.True(t, ok, "expected *parser.Error, got %T", err)
			assert.Equal(t, tt.kind, perr.Kind)
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	src := []byte(`
	let x = 1 + 2 * 3;
	let s = "hi" + " there";
	if (x < 10 and true) {
		x = x + 1;
	} else {
		print(s, x);
	}
	return x;
	`)
	first, err := parser.Parse(src)
	require.NoError(t, err)
	second, err := parser.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, first, second, "parsing the same source twice must yield structurally equal ASTs")
}

func TestParseEmptySource(t *testing.T) {
	blk, err := parser.Parse([]byte(``))
	require.NoError(t, err)
	assert.Empty(t, blk.Stmts)
}
