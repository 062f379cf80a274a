package eval

import (
	"strings"
	"testing"
)

func runCapture(t *testing.T, src string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := RunSource(src, func(s string) { out.WriteString(s) })
	return out.String(), err
}

// The six end-to-end scenarios from spec §8.

func TestScenarioHello(t *testing.T) {
	out, err := runCapture(t, `println("Hi there!");`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Hi there!\n" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioPrintIntHelper(t *testing.T) {
	src := `
	void printInt(int i) { print(intToString(i)+" "); }
	printInt((5+5)/3);
	`
	out, err := runCapture(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3 " {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioWhileLoop(t *testing.T) {
	src := `
	void printInt(int i) { print(intToString(i)+" "); }
	int i=0; while(i<3){ printInt(i); i=i+1; } println("");
	`
	out, err := runCapture(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0 1 2 \n" {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioPrecedence(t *testing.T) {
	src := `
	void printBool(bool b) { print(boolToString(b)+" "); }
	printBool(true || false && false);
	`
	out, err := runCapture(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "true " {
		t.Fatalf("got %q", out)
	}
}

func TestScenarioTypeMismatchOnReassign(t *testing.T) {
	_, err := runCapture(t, `int x = 5; x = "Hello";`)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*TypeMismatch); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestScenarioDivisionByZero(t *testing.T) {
	_, err := runCapture(t, `10 / 0;`)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*DivisionByZero); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestFunctionCrossingScopeRule(t *testing.T) {
	// A nested function body may see an outer *function* binding but not
	// an outer *value* binding from an ancestor frame (spec §3 / §9).
	src := `
	int outerValue = 1;
	void helper() { int x = outerValue; }
	helper();
	`
	_, err := runCapture(t, src)
	if err == nil {
		t.Fatalf("expected VariableNotFound, got success")
	}
	if _, ok := err.(*VariableNotFound); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestFunctionVisibleAcrossNestedCall(t *testing.T) {
	src := `
	int addOne(int n) { return n + 1; }
	void useIt() { int r = addOne(41); }
	useIt();
	`
	if _, err := runCapture(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestShadowingReplacesValueSlot(t *testing.T) {
	src := `
	int x = 1;
	{ float x = 2.0; }
	`
	if _, err := runCapture(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDivisionByZeroFloat(t *testing.T) {
	_, err := runCapture(t, `float f = 1.0 / 0.0;`)
	if _, ok := err.(*DivisionByZero); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestIllegalArgumentCount(t *testing.T) {
	src := `
	int addOne(int n) { return n + 1; }
	addOne(1, 2);
	`
	_, err := runCapture(t, src)
	if _, ok := err.(*IllegalArgumentCount); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestStringToXRoundTrip(t *testing.T) {
	src := `
	int i = stringToInt(intToString(42));
	bool b = stringToBool(boolToString(true));
	`
	if _, err := runCapture(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBlockScopeInheritsEnclosingValues(t *testing.T) {
	// Value visibility is transparent across block/if/while boundaries —
	// the function-crossing rule only fires at a call boundary (spec §4.3).
	src := `
	int total = 0;
	int i = 0;
	while (i < 3) {
		if (i < 3) {
			total = total + i;
		}
		i = i + 1;
	}
	`
	if _, err := runCapture(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReturnAtTopLevelIsIllegal(t *testing.T) {
	_, err := runCapture(t, `return;`)
	if _, ok := err.(*IllegalReturn); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestReturnInsideTopLevelBlockIsIllegal(t *testing.T) {
	_, err := runCapture(t, `while (true) { return; }`)
	if _, ok := err.(*IllegalReturn); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}

func TestReturnInsideFunctionIsLegal(t *testing.T) {
	src := `
	int f() { return 1; }
	f();
	`
	if _, err := runCapture(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUnsupportedClassSyntax(t *testing.T) {
	src := `
	class Point {
		int x;
		int getX() { return self.x; }
	}
	`
	_, err := runCapture(t, src)
	if _, ok := err.(*InvalidType); !ok {
		t.Fatalf("got %T: %v", err, err)
	}
}
