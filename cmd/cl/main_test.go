package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/clang/cl/parser"
)

func TestRunBufferedREPLEchoesPrintOutput(t *testing.T) {
	var out strings.Builder
	src := "int x = 40;\nprintln(intToString(x + 2));\n"
	runBufferedREPL(bufio.NewReader(bytes.NewBufferString(src)), func(s string) { out.WriteString(s) })

	if got, want := out.String(), "42\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRunBufferedREPLMultipleStatements(t *testing.T) {
	var out strings.Builder
	src := "int i = 0;\nwhile (i < 3) {\nprintln(intToString(i));\ni = i + 1;\n}\n"
	runBufferedREPL(bufio.NewReader(bytes.NewBufferString(src)), func(s string) { out.WriteString(s) })

	if got, want := out.String(), "0\n1\n2\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplIncompleteDetectsOpenBlock(t *testing.T) {
	_, err := parser.Parse("void f() {\n")
	if err == nil || !replIncomplete(err) {
		t.Fatalf("expected an incomplete parse error for an open block, got %v", err)
	}
}
