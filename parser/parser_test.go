package parser

import (
	"testing"

	"github.com/clang/cl/ast"
	"github.com/clang/cl/token"
)

func TestParseVarDecl(t *testing.T) {
	prog, err := Parse(`int x = 5;`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(prog.Decls) != 1 {
		t.Fatalf("got %d decls, want 1", len(prog.Decls))
	}
	vd, ok := prog.Decls[0].(*ast.VarDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.VarDecl", prog.Decls[0])
	}
	if vd.Name != "x" || vd.Type != token.INT {
		t.Fatalf("got %+v", vd)
	}
	if lit, ok := vd.Init.(*ast.IntLit); !ok || lit.Value != 5 {
		t.Fatalf("got init %+v", vd.Init)
	}
}

func TestParseFuncDecl(t *testing.T) {
	prog, err := Parse(`int add(int a, int b) { return a + b; }`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	fd, ok := prog.Decls[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.FuncDecl", prog.Decls[0])
	}
	if fd.Name != "add" || fd.RetType != token.INT || len(fd.Params) != 2 {
		t.Fatalf("got %+v", fd)
	}
	if len(fd.Body.Stmts) != 1 {
		t.Fatalf("got %d body stmts", len(fd.Body.Stmts))
	}
	ret, ok := fd.Body.Stmts[0].(*ast.Return)
	if !ok {
		t.Fatalf("got %T", fd.Body.Stmts[0])
	}
	bin, ok := ret.Result.(*ast.BinaryExpr)
	if !ok || bin.Op != token.PLUS {
		t.Fatalf("got %+v", ret.Result)
	}
}

func TestOperatorPrecedence(t *testing.T) {
	// "true || false && false" must parse as "true || (false && false)".
	prog, err := Parse(`bool b = true || false && false;`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	vd := prog.Decls[0].(*ast.VarDecl)
	top, ok := vd.Init.(*ast.BinaryExpr)
	if !ok || top.Op != token.OR {
		t.Fatalf("top-level op: got %+v", vd.Init)
	}
	right, ok := top.Right.(*ast.BinaryExpr)
	if !ok || right.Op != token.AND {
		t.Fatalf("right operand: got %+v", top.Right)
	}
}

func TestIfElseIfElseDesugars(t *testing.T) {
	src := `
	void f() {
		if (true) { int a = 1; } else if (false) { int b = 2; } else { int c = 3; }
	}
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	ifStmt, ok := fd.Body.Stmts[0].(*ast.If)
	if !ok {
		t.Fatalf("got %T", fd.Body.Stmts[0])
	}
	if len(ifStmt.Branches) != 2 {
		t.Fatalf("got %d branches, want 2", len(ifStmt.Branches))
	}
	if ifStmt.Else == nil {
		t.Fatalf("expected trailing else block")
	}
}

func TestAssignVsExpressionStatementDisambiguation(t *testing.T) {
	src := `
	void f() {
		int x;
		x = 5;
		x;
	}
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	fd := prog.Decls[0].(*ast.FuncDecl)
	if _, ok := fd.Body.Stmts[1].(*ast.AssignStmt); !ok {
		t.Fatalf("stmt 1: got %T, want *ast.AssignStmt", fd.Body.Stmts[1])
	}
	if _, ok := fd.Body.Stmts[2].(*ast.ExprStmt); !ok {
		t.Fatalf("stmt 2: got %T, want *ast.ExprStmt", fd.Body.Stmts[2])
	}
}

func TestTrailingDotNumberIsParseError(t *testing.T) {
	if _, err := Parse(`float f = 5.;`); err == nil {
		t.Fatalf("expected parse/lex error for trailing bare dot")
	}
}

func TestUnterminatedBlockIsIncomplete(t *testing.T) {
	_, err := Parse(`void f() { int x = 1;`)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsIncomplete(err) {
		t.Fatalf("expected incomplete parse error, got %v", err)
	}
}

func TestClassExtensionPointParses(t *testing.T) {
	src := `
	class Point {
		int x;
		int getX() { return self.x; }
	}
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cd, ok := prog.Decls[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("got %T, want *ast.ClassDecl", prog.Decls[0])
	}
	if len(cd.Fields) != 1 || len(cd.Methods) != 1 {
		t.Fatalf("got %+v", cd)
	}
}

func TestNoUnaryMinus(t *testing.T) {
	// Spec §4.1/§4.2: there is no unary minus in the grammar; "-5" parses
	// as a malformed primary, not a negative literal.
	_, err := Parse(`int x = -5;`)
	if err == nil {
		t.Fatalf("expected parse error for unary minus")
	}
}
