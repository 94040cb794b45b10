package parser

import (
	"testing"

	"github.com/cps-atlas/strem/spre/ast"
	serrors "github.com/cps-atlas/strem/spre/errors"
)

var roundTripPatterns = []string{
	`[:car:]`,
	`[:car:][:pedestrian:]`,
	`[:car:]|[:pedestrian:]`,
	`[:car:]*`,
	`[:car:]{2,5}`,
	`[:car:]{2}`,
	`[:car:]{2,}`,
	`([:car:][:pedestrian:])*`,
	`[[:car:] & [:pedestrian:]]{2,5}`,
	`[NE(!([:car:]|[:pedestrian:]))]`,
	`[E(v:=[:car:])(@area(v)>1000)]`,
	`[A(v:=[:car:])(@dist(v,[:pedestrian:])>500)]`,
	`[E(v:=[:car:],w:=[:pedestrian:])(@dist(v,w)<=50)]`,
	`[NE([:car:])]`,
	`[<nonempty>([:car:])]`,
}

func TestParseRoundTrip(t *testing.T) {
	for _, src := range roundTripPatterns {
		t.Run(src, func(t *testing.T) {
			n, err := Parse(src)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", src, err)
			}
			printed := ast.Print(n)
			n2, err := Parse(printed)
			if err != nil {
				t.Fatalf("Parse(Print(%q)) = %q failed: %v", src, printed, err)
			}
			printed2 := ast.Print(n2)
			if printed != printed2 {
				t.Fatalf("round-trip unstable: %q != %q", printed, printed2)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := []string{
		`[:car:]{3,2}`,  // min > max
		`[:car:`,        // unterminated class
		`[car]`,         // unbracketed spatial text is invalid at temporal level
		`[:car:]{,5}`,   // missing min
		`E(v:=[:car:])`, // missing body
		``,
	}
	for _, src := range cases {
		if _, err := Parse(src); err == nil {
			t.Fatalf("Parse(%q) succeeded, want error", src)
		} else if k := serrors.KindOf(err); k != serrors.SyntaxError && k != serrors.RepeatTooLarge {
			t.Fatalf("Parse(%q) error kind = %v, want SyntaxError", src, k)
		}
	}
}

func TestParseRepeatTooLarge(t *testing.T) {
	_, err := Parse(`[:car:]{1,2000}`)
	if err == nil {
		t.Fatalf("expected RepeatTooLarge error")
	}
	if k := serrors.KindOf(err); k != serrors.RepeatTooLarge {
		t.Fatalf("error kind = %v, want RepeatTooLarge", k)
	}
}

func TestParseAtomStructure(t *testing.T) {
	n, err := Parse(`[:car:][:pedestrian:]`)
	if err != nil {
		t.Fatal(err)
	}
	concat, ok := n.(*ast.Concat)
	if !ok || len(concat.Parts) != 2 {
		t.Fatalf("expected a 2-part Concat, got %#v", n)
	}
	for _, part := range concat.Parts {
		cls, ok := part.(*ast.Class)
		if !ok {
			t.Fatalf("expected Class leaf, got %#v", part)
		}
		if _, ok := cls.Body.(*ast.ClassUnary); !ok {
			t.Fatalf("expected ClassUnary body, got %#v", cls.Body)
		}
	}
}
