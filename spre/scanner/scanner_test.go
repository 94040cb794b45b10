package scanner

import (
	"testing"

	"github.com/cps-atlas/strem/spre/token"
)

type tok struct {
	typ token.Type
	lit string
}

func scanAll(t *testing.T, src string) []tok {
	t.Helper()
	var s Scanner
	var errs []string
	s.Init([]byte(src), func(pos token.Pos, msg string) {
		errs = append(errs, msg)
	})
	var out []tok
	for {
		_, typ, lit := s.Scan()
		out = append(out, tok{typ, lit})
		if typ == token.EOF {
			break
		}
	}
	if len(errs) > 0 {
		t.Fatalf("unexpected scan errors for %q: %v", src, errs)
	}
	return out
}

func TestScanClassAndBrackets(t *testing.T) {
	got := scanAll(t, "[[:car:]]")
	want := []tok{
		{token.LBRACK, "["},
		{token.CLASS, "car"},
		{token.RBRACK, "]"},
		{token.EOF, ""},
	}
	assertTokens(t, got, want)
}

func TestScanBindersAndComparators(t *testing.T) {
	got := scanAll(t, "E(v:=[:car:])(@area(v)>1000)")
	var types []token.Type
	for _, g := range got {
		types = append(types, g.typ)
	}
	wantHas := []token.Type{token.E, token.LPAREN, token.IDENT, token.COLONEQ, token.CLASS, token.RPAREN, token.AT, token.GT, token.NUMBER}
	for _, w := range wantHas {
		found := false
		for _, ty := range types {
			if ty == w {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected token %v in scan of binder expr, got %v", w, types)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	got := scanAll(t, "1000 3.14 0.5")
	want := []tok{
		{token.NUMBER, "1000"},
		{token.NUMBER, "3.14"},
		{token.NUMBER, "0.5"},
		{token.EOF, ""},
	}
	assertTokens(t, got, want)
}

func TestScanIllegalCharacter(t *testing.T) {
	var s Scanner
	var gotMsg string
	s.Init([]byte("$"), func(pos token.Pos, msg string) { gotMsg = msg })
	_, typ, _ := s.Scan()
	if typ != token.ILLEGAL {
		t.Fatalf("typ = %v, want ILLEGAL", typ)
	}
	if gotMsg == "" {
		t.Fatalf("expected an error message for illegal character")
	}
}

func assertTokens(t *testing.T, got, want []tok) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}
