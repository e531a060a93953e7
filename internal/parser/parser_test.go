package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/lexer"
)

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	tokens, errs := lexer.New(src).Scan()
	require.Empty(t, errs)
	stmts, err := New(tokens).Parse()
	require.NoError(t, err)
	return stmts
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmts := parse(t, "1 + 2 * 3;")
	require.Len(t, stmts, 1)

	expr := stmts[0].(*ast.Expression).Expression
	bin := expr.(*ast.Binary)
	assert.Equal(t, float64(1), bin.Left.(*ast.Literal).Value)

	right := bin.Right.(*ast.Binary)
	assert.Equal(t, float64(2), right.Left.(*ast.Literal).Value)
	assert.Equal(t, float64(3), right.Right.(*ast.Literal).Value)
}

func TestParseAssignmentRequiresValidTarget(t *testing.T) {
	tokens, errs := lexer.New("1 = 2;").Scan()
	require.Empty(t, errs)

	_, err := New(tokens).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid assignment target")
}

func TestParseGetAndSetChain(t *testing.T) {
	stmts := parse(t, "a.b.c = 1;")
	require.Len(t, stmts, 1)

	set := stmts[0].(*ast.Expression).Expression.(*ast.Set)
	assert.Equal(t, "c", set.Name.Lexeme)

	get := set.Object.(*ast.Get)
	assert.Equal(t, "b", get.Name.Lexeme)
}

func TestParseForLoopKeepsClausesOptional(t *testing.T) {
	stmts := parse(t, "for (;;) print 1;")
	require.Len(t, stmts, 1)

	forStmt := stmts[0].(*ast.For)
	assert.Nil(t, forStmt.Init)
	assert.Nil(t, forStmt.Condition)
	assert.Nil(t, forStmt.Increment)
}

func TestParseClassWithSuperclassAndMethods(t *testing.T) {
	stmts := parse(t, `class Cake < Pastry { bake() { return this; } }`)
	require.Len(t, stmts, 1)

	class := stmts[0].(*ast.Class)
	assert.Equal(t, "Cake", class.Name.Lexeme)
	require.NotNil(t, class.Superclass)
	assert.Equal(t, "Pastry", class.Superclass.Name.Lexeme)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "bake", class.Methods[0].Name.Lexeme)
}

func TestParseBreakInUnaryPosition(t *testing.T) {
	stmts := parse(t, "while (true) { break; }")
	require.Len(t, stmts, 1)

	while := stmts[0].(*ast.While)
	block := while.Body.(*ast.Block)
	require.Len(t, block.Statements, 1)
	_, ok := block.Statements[0].(*ast.Expression).Expression.(*ast.Break)
	assert.True(t, ok)
}

func TestParseFunctionParameterLimit(t *testing.T) {
	var src string
	for i := 0; i < maxArgs+1; i++ {
		if i > 0 {
			src += ", "
		}
		src += "a" + string(rune('a'+(i%26)))
	}
	tokens, errs := lexer.New("fun f(" + src + ") {}").Scan()
	require.Empty(t, errs)

	_, err := New(tokens).Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't have more than 255 parameters")
}

func TestParseSuperCall(t *testing.T) {
	stmts := parse(t, `class A < B { m() { return super.m(); } }`)
	class := stmts[0].(*ast.Class)
	body := class.Methods[0].Body
	ret := body[0].(*ast.Return)
	call := ret.Value.(*ast.Call)
	sup := call.Callee.(*ast.Super)
	assert.Equal(t, "m", sup.Method.Lexeme)
}
