package lexer

import (
	"testing"

	"github.com/clang/cl/token"
)

func typesOf(t *testing.T, src string) []token.Type {
	t.Helper()
	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error: %v", src, err)
	}
	var tts []token.Type
	for _, tok := range toks {
		tts = append(tts, tok.Type)
	}
	return tts
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	got := typesOf(t, "int x = 1;")
	want := []token.Type{token.INT, token.IDENT, token.ASSIGN, token.INT_LIT, token.SEMI, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeOperatorsLongestMatch(t *testing.T) {
	got := typesOf(t, "a <= b == c && d")
	want := []token.Type{token.IDENT, token.LE, token.IDENT, token.EQ, token.IDENT, token.AND, token.IDENT, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	cases := []struct {
		src   string
		tt    token.Type
	}{
		{"123", token.INT_LIT},
		{"1.5", token.FLOAT_LIT},
		{".5", token.FLOAT_LIT},
		{"1e10", token.FLOAT_LIT},
		{"1.5e-3", token.FLOAT_LIT},
	}
	for _, c := range cases {
		toks, err := Tokenize(c.src)
		if err != nil {
			t.Fatalf("Tokenize(%q) error: %v", c.src, err)
		}
		if toks[0].Type != c.tt {
			t.Errorf("Tokenize(%q): got %s, want %s", c.src, toks[0].Type, c.tt)
		}
	}
}

func TestTrailingDotIsError(t *testing.T) {
	if _, err := Tokenize("1."); err == nil {
		t.Fatalf("expected error for trailing bare dot")
	}
}

func TestStringEscapes(t *testing.T) {
	toks, err := Tokenize(`"a\nb\tc\u{41}\x41"`)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := "a\nb\tcAA"
	if toks[0].StrVal != want {
		t.Fatalf("got %q, want %q", toks[0].StrVal, want)
	}
}

func TestUnterminatedStringIsIncomplete(t *testing.T) {
	_, err := Tokenize(`"abc`)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsIncomplete(err) {
		t.Fatalf("expected incomplete lex error, got %v", err)
	}
}

func TestUnterminatedBlockCommentIsIncomplete(t *testing.T) {
	_, err := Tokenize("/* not closed")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsIncomplete(err) {
		t.Fatalf("expected incomplete lex error, got %v", err)
	}
}

func TestLineCommentSkipped(t *testing.T) {
	got := typesOf(t, "int x; // trailing comment\nfloat y;")
	want := []token.Type{token.INT, token.IDENT, token.SEMI, token.FLOAT, token.IDENT, token.SEMI, token.EOF}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}
