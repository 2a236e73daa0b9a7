package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sph-lang/sphinx/lang/ast"
	"github.com/sph-lang/sphinx/lang/parser"
	"github.com/sph-lang/sphinx/lang/token"
)

func parseOne(t *testing.T, src string) *ast.Chunk {
	t.Helper()
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(0, fset, "<test>", []byte(src))
	require.NoError(t, err)
	return ch
}

func TestSpanCoversEntireChunk(t *testing.T) {
	ch := parseOne(t, "var x = 1;\necho x;\n")
	start, end := ch.Span()
	require.Equal(t, token.Pos(1), start)
	require.Len(t, ch.Stmts, 2)
	require.True(t, end > start)
}

func TestOperatorPrecedenceMulBindsTighterThanAdd(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3): the multiplicative BinOpExpr is the
	// right child of the additive one.
	ch := parseOne(t, "echo 1 + 2 * 3;")
	echo := ch.Stmts[0].(*ast.EchoStmt)
	add := echo.X.(*ast.BinOpExpr)
	require.Equal(t, token.PLUS, add.Op)
	mul, ok := add.Right.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.STAR, mul.Op)
}

func TestLogicalPrecedenceAndBindsTighterThanOr(t *testing.T) {
	ch := parseOne(t, "echo a or b and c;")
	echo := ch.Stmts[0].(*ast.EchoStmt)
	or := echo.X.(*ast.LogicalExpr)
	require.Equal(t, token.OR, or.Op)
	and, ok := or.Right.(*ast.LogicalExpr)
	require.True(t, ok)
	require.Equal(t, token.AND, and.Op)
}

func TestComparisonOperatorsAreLeftAssociative(t *testing.T) {
	ch := parseOne(t, "echo a == b < c;")
	echo := ch.Stmts[0].(*ast.EchoStmt)
	// both == and < are level 8, left-associative: (a == b) < c
	outer := echo.X.(*ast.BinOpExpr)
	require.Equal(t, token.LT, outer.Op)
	inner, ok := outer.Left.(*ast.BinOpExpr)
	require.True(t, ok)
	require.Equal(t, token.EQL, inner.Op)
}

func TestAssignmentIsRightAssociativeExpression(t *testing.T) {
	ch := parseOne(t, "x = y = 1;")
	stmt := ch.Stmts[0].(*ast.ExprStmt)
	outer := stmt.X.(*ast.AssignExpr)
	require.Equal(t, "x", outer.Left.(*ast.IdentExpr).Name)
	inner, ok := outer.Right.(*ast.AssignExpr)
	require.True(t, ok)
	require.Equal(t, "y", inner.Left.(*ast.IdentExpr).Name)
}

func TestInvalidAssignmentTargetIsRejected(t *testing.T) {
	fset := token.NewFileSet()
	_, err := parser.ParseChunk(0, fset, "<test>", []byte("1 = 2;"))
	require.Error(t, err)
	list, ok := err.(parser.ErrorList)
	require.True(t, ok)
	require.Equal(t, parser.InvalidAssignmentLHS, list[0].Kind)
}

func TestErrorRecoveryKeepsSubsequentStatements(t *testing.T) {
	fset := token.NewFileSet()
	ch, err := parser.ParseChunk(0, fset, "<test>", []byte("x = ;\ny = 1;\n"))
	require.Error(t, err)
	list := err.(parser.ErrorList)
	require.Len(t, list, 1)
	require.Len(t, ch.Stmts, 2)
	require.IsType(t, &ast.BadStmt{}, ch.Stmts[0])
	require.IsType(t, &ast.ExprStmt{}, ch.Stmts[1])
}

func TestIfConditionDoesNotSwallowBlock(t *testing.T) {
	ch := parseOne(t, "if x { echo 1; }")
	stmt := ch.Stmts[0].(*ast.IfStmt)
	require.IsType(t, &ast.IdentExpr{}, stmt.Cond)
	require.Len(t, stmt.Then.Stmts, 1)
}

func TestIfElifElseChains(t *testing.T) {
	ch := parseOne(t, "if a { echo 1; } elif b { echo 2; } else { echo 3; }")
	top := ch.Stmts[0].(*ast.IfStmt)
	elif, ok := top.Else.(*ast.IfStmt)
	require.True(t, ok)
	els, ok := elif.Else.(*ast.BlockStmt)
	require.True(t, ok)
	require.Len(t, els.Stmts, 1)
}

func TestAccessPathChaining(t *testing.T) {
	ch := parseOne(t, "echo a.b[0](1, 2);")
	echo := ch.Stmts[0].(*ast.EchoStmt)
	prim := echo.X.(*ast.PrimaryExpr)
	require.Len(t, prim.Items, 3)
	require.IsType(t, &ast.AttrItem{}, prim.Items[0])
	require.IsType(t, &ast.IndexItem{}, prim.Items[1])
	require.IsType(t, &ast.InvokeItem{}, prim.Items[2])
}

func TestConstructExpression(t *testing.T) {
	ch := parseOne(t, "echo Point{x: 1, y: 2};")
	echo := ch.Stmts[0].(*ast.EchoStmt)
	prim := echo.X.(*ast.PrimaryExpr)
	ctor := prim.Items[0].(*ast.ConstructItem)
	require.Len(t, ctor.Fields, 2)
	require.Equal(t, "x", ctor.Fields[0].Name.Name)
}

func TestEmptyTupleAndParenGroup(t *testing.T) {
	ch := parseOne(t, "var a = ();\nvar b = (1);\n")
	decl1 := ch.Stmts[0].(*ast.DeclStmt)
	require.IsType(t, &ast.EmptyTupleExpr{}, decl1.Inits[0])
	decl2 := ch.Stmts[1].(*ast.DeclStmt)
	paren, ok := decl2.Inits[0].(*ast.ParenExpr)
	require.True(t, ok)
	require.IsType(t, &ast.IntExpr{}, paren.X)
}

func TestFunctionAndClassDeclarations(t *testing.T) {
	ch := parseOne(t, `
fn add(a, b = 1) {
	return a + b;
}

class Point : Shape {
	var x = 0;
	fn dist() {
		return x;
	}
}
`)
	fn := ch.Stmts[0].(*ast.FuncStmt)
	require.Equal(t, "add", fn.Name.Name)
	require.Len(t, fn.Params, 2)
	require.Nil(t, fn.Params[0].Default)
	require.NotNil(t, fn.Params[1].Default)

	cls := ch.Stmts[1].(*ast.ClassStmt)
	require.Equal(t, "Point", cls.Name.Name)
	require.Equal(t, "Shape", cls.Base.Name)
	require.Len(t, cls.Fields, 1)
	require.Len(t, cls.Methods, 1)
}

func TestForInLoop(t *testing.T) {
	ch := parseOne(t, "for x in xs { echo x; }")
	stmt := ch.Stmts[0].(*ast.ForStmt)
	require.Equal(t, "x", stmt.Name.Name)
	require.Equal(t, "xs", stmt.Range.(*ast.IdentExpr).Name)
}

func TestDeclMutability(t *testing.T) {
	ch := parseOne(t, "var a = 1;\nconst b = 2;\n")
	require.True(t, ch.Stmts[0].(*ast.DeclStmt).Mutable())
	require.False(t, ch.Stmts[1].(*ast.DeclStmt).Mutable())
}
