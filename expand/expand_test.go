package expand

import (
	"testing"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

func wordOf(parts ...ast.Node) *ast.Word {
	return &ast.Word{Parts: parts}
}

func paramWord(name string, index ast.Node) *ast.Word {
	return wordOf(&ast.ParamExpansion{Name: name, Index: index})
}

func TestExpandArrayIndex(t *testing.T) {
	vars := &fakeVars{arrays: map[string][]string{"arr": {"a", "b", "c"}}}
	e := &Expander{Vars: vars}

	got, err := e.ExpandWordNoSplit(paramWord("arr", idxLit("1")))
	if err != nil {
		t.Fatal(err)
	}
	if got != "b" {
		t.Fatalf("arr[1]: got %q, want b", got)
	}
}

func TestExpandArrayIndexArithmetic(t *testing.T) {
	vars := &fakeVars{arrays: map[string][]string{"arr": {"a", "b", "c"}}}
	e := &Expander{Vars: vars}

	got, err := e.ExpandWordNoSplit(paramWord("arr", idxLit("1+1")))
	if err != nil {
		t.Fatal(err)
	}
	if got != "c" {
		t.Fatalf("arr[1+1]: got %q, want c", got)
	}
}

func TestExpandArrayIndexOutOfRange(t *testing.T) {
	vars := &fakeVars{arrays: map[string][]string{"arr": {"a", "b"}}}
	e := &Expander{Vars: vars}

	got, err := e.ExpandWordNoSplit(paramWord("arr", idxLit("5")))
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("arr[5]: got %q, want empty", got)
	}
}

func TestExpandArrayAtJoinsWithIFS(t *testing.T) {
	vars := &fakeVars{arrays: map[string][]string{"arr": {"a", "b", "c"}}}
	e := &Expander{Vars: vars}

	got, err := e.ExpandWord(paramWord("arr", idxLit("@")))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("arr[@]: got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arr[@]: got %q, want %q", got, want)
		}
	}
}

func TestExpandWordIFSSplitting(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{"X": "one two  three"}}
	e := &Expander{Vars: vars}
	w := wordOf(&ast.ParamExpansion{Name: "X"})

	got, err := e.ExpandWord(w)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"one", "two", "three"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestExpandWordQuotedSkipsSplitting(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{"X": "one two  three"}}
	e := &Expander{Vars: vars}
	w := wordOf(&ast.StringLiteral{Text: "literal ", Quoting: token.DoubleQuoted}, &ast.ParamExpansion{Name: "X"})

	got, err := e.ExpandWord(w)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != "literal one two  three" {
		t.Fatalf("got %q, want a single quoted field", got)
	}
}
