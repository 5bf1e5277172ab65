package token_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vex-lang/vex/lang/token"
)

func TestLookupIdent(t *testing.T) {
	cases := []struct {
		lit  string
		want token.Kind
	}{
		{"and", token.AND},
		{"or", token.OR},
		{"return", token.RETURN},
		{"if", token.IF},
		{"else", token.ELSE},
		{"nil", token.NIL},
		{"let", token.LET},
		{"for", token.FOR},
		{"while", token.WHILE},
		{"true", token.TRUE},
		{"false", token.FALSE},
		{"fun", token.FUN},
		{"x", token.IDENT},
		{"letter", token.IDENT},
	}
	for _, c := range cases {
		t.Run(c.lit, func(t *testing.T) {
			assert.Equal(t, c.want, token.LookupIdent(c.lit))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "+", token.PLUS.String())
	assert.Equal(t, "and", token.AND.String())
	assert.Equal(t, "end of file", token.EOF.String())
}

func TestIsBinopUnop(t *testing.T) {
	assert.True(t, token.PLUS.IsBinop())
	assert.True(t, token.AND.IsBinop())
	assert.False(t, token.BANG.IsBinop())

	assert.True(t, token.MINUS.IsUnop())
	assert.True(t, token.BANG.IsUnop())
	assert.False(t, token.STAR.IsUnop())
}
