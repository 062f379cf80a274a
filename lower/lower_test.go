package lower

import (
	"strings"
	"testing"

	"github.com/clang/cl/ast"
	"github.com/clang/cl/parser"
)

func lowerSource(t *testing.T, src string) string {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	c, err := Lower(prog)
	if err != nil {
		t.Fatalf("Lower error: %v", err)
	}
	return c
}

func TestLowerIncludesRuntimeHeader(t *testing.T) {
	c := lowerSource(t, `void main_is_empty() {}`)
	if !strings.Contains(c, `#include "cl_runtime.h"`) {
		t.Fatalf("missing runtime include, got:\n%s", c)
	}
}

func TestLowerFuncDeclEmitsPrototypeAndBody(t *testing.T) {
	c := lowerSource(t, `int add(int a, int b) { return a + b; }`)
	if !strings.Contains(c, "int add(int a, int b);") {
		t.Fatalf("missing prototype, got:\n%s", c)
	}
	if !strings.Contains(c, "rt_operator_add_int_int(a, b)") {
		t.Fatalf("missing operator call, got:\n%s", c)
	}
}

func TestLowerTopLevelStatementsGoInMain(t *testing.T) {
	c := lowerSource(t, `
	int i = 0;
	while (i < 3) {
		println(intToString(i));
		i = i + 1;
	}
	`)
	if !strings.Contains(c, "int main(void) {") {
		t.Fatalf("missing generated main, got:\n%s", c)
	}
	if !strings.Contains(c, "while (rt_operator_lt_int_int(i, 3)) {") {
		t.Fatalf("missing lowered while condition, got:\n%s", c)
	}
	if !strings.Contains(c, "rt_builtin_println(rt_builtin_intToString(i))") {
		t.Fatalf("missing builtin calls, got:\n%s", c)
	}
}

func TestLowerShortCircuitUsesNativeOperators(t *testing.T) {
	c := lowerSource(t, `bool b = true || false && false;`)
	if !strings.Contains(c, "||") || !strings.Contains(c, "&&") {
		t.Fatalf("expected native && / ||, got:\n%s", c)
	}
	if strings.Contains(c, "rt_operator_") {
		t.Fatalf("did not expect an rt_operator_ call for && / ||, got:\n%s", c)
	}
}

func TestLowerStringLiteralIsCompoundLiteral(t *testing.T) {
	c := lowerSource(t, `string s = "hi";`)
	if !strings.Contains(c, `(rt_string){ .data = "hi", .len = 2 }`) {
		t.Fatalf("missing string compound literal, got:\n%s", c)
	}
}

func TestLowerIfElseIfElse(t *testing.T) {
	c := lowerSource(t, `
	void f() {
		if (true) {
			int a = 1;
		} else if (false) {
			int b = 2;
		} else {
			int c = 3;
		}
	}
	`)
	if !strings.Contains(c, "if (true) {") || !strings.Contains(c, "} else if (false) {") || !strings.Contains(c, "} else {") {
		t.Fatalf("missing desugared if/else-if/else, got:\n%s", c)
	}
}

func TestLowerRejectsClassSyntax(t *testing.T) {
	_, err := Lower(mustParse(t, `
	class Point {
		int x;
	}
	`))
	if err == nil {
		t.Fatalf("expected an error lowering class syntax")
	}
}

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return prog
}
