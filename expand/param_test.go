package expand

import (
	"testing"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

type fakeVars struct {
	scalars map[string]string
	arrays  map[string][]string
	ifs     string
}

func (f *fakeVars) Get(name string) (string, bool) {
	v, ok := f.scalars[name]
	return v, ok
}

func (f *fakeVars) Set(name, value string) error {
	if f.scalars == nil {
		f.scalars = map[string]string{}
	}
	f.scalars[name] = value
	return nil
}

func (f *fakeVars) GetArray(name string) ([]string, bool) {
	v, ok := f.arrays[name]
	return v, ok
}

func (f *fakeVars) IFS() string {
	if f.ifs == "" {
		return " \t\n"
	}
	return f.ifs
}

func (f *fakeVars) HomeDir() (string, bool) { return "/home/flash", true }

func litWord(s string) ast.Node {
	return &ast.Word{Parts: []ast.Node{&ast.StringLiteral{Text: s, Quoting: token.Unquoted}}}
}

// idxLit builds the bare *ast.StringLiteral shape the parser uses for
// ParamExpansion/Assignment Index fields (unlike Op.Word operands, which
// are wrapped in *ast.Word).
func idxLit(s string) ast.Node {
	return &ast.StringLiteral{Text: s, Quoting: token.Unquoted}
}

func noopEval(n ast.Node) (string, error) {
	w, ok := n.(*ast.Word)
	if !ok {
		return "", nil
	}
	sl, ok := w.Parts[0].(*ast.StringLiteral)
	if !ok {
		return "", nil
	}
	return sl.Text, nil
}

func TestParamDefaultIfUnset(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{}}
	pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: token.OpDefaultIfUnset, Word: litWord("fallback")}}
	got, err := Param(pe, vars, noopEval, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestParamAssignIfUnset(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{}}
	pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: token.OpAssignIfUnset, Word: litWord("set-me")}}
	got, err := Param(pe, vars, noopEval, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "set-me" {
		t.Fatalf("got %q, want set-me", got)
	}
	if vars.scalars["X"] != "set-me" {
		t.Fatalf("OpAssignIfUnset did not persist: %q", vars.scalars["X"])
	}
}

func TestParamErrorIfUnset(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{}}
	pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: token.OpErrorIfUnset, Word: litWord("must be set")}}
	if _, err := Param(pe, vars, noopEval, false); err == nil {
		t.Fatal("expected an error for an unset required parameter")
	}
}

func TestParamNounsetErrorsOnUnsetVariable(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{}}
	pe := &ast.ParamExpansion{Name: "X"}
	if _, err := Param(pe, vars, noopEval, true); err == nil {
		t.Fatal("expected an error for an unbound variable under nounset")
	}
}

func TestParamNounsetExemptOperatorsStillWork(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{}}
	pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: token.OpDefaultIfUnset, Word: litWord("fallback")}}
	got, err := Param(pe, vars, noopEval, true)
	if err != nil {
		t.Fatalf("nounset should not reject an operator that handles unset itself: %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestParamNounsetAllowsSetVariable(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{"X": "hi"}}
	pe := &ast.ParamExpansion{Name: "X"}
	got, err := Param(pe, vars, noopEval, true)
	if err != nil {
		t.Fatalf("nounset should not reject a set variable: %v", err)
	}
	if got != "hi" {
		t.Fatalf("got %q, want hi", got)
	}
}

func TestParamLength(t *testing.T) {
	vars := &fakeVars{scalars: map[string]string{"X": "hello"}}
	pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: token.OpLength}}
	got, err := Param(pe, vars, noopEval, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "5" {
		t.Fatalf("got %q, want 5", got)
	}
}

func TestTrimPrefixSuffix(t *testing.T) {
	tests := []struct {
		name string
		kind token.ParamOp
		raw  string
		pat  string
		want string
	}{
		{"shortPrefix", token.OpTrimPrefix, "foo.tar.gz", "*.", "tar.gz"},
		{"longPrefix", token.OpTrimPrefixGreedy, "foo.tar.gz", "*.", "gz"},
		{"shortSuffix", token.OpTrimSuffix, "foo.tar.gz", ".*", "foo.tar"},
		{"longSuffix", token.OpTrimSuffixGreedy, "foo.tar.gz", ".*", "foo"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vars := &fakeVars{scalars: map[string]string{"X": tc.raw}}
			pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: tc.kind, Word: litWord(tc.pat)}}
			got, err := Param(pe, vars, noopEval, false)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCaseOps(t *testing.T) {
	tests := []struct {
		name string
		kind token.ParamOp
		raw  string
		want string
	}{
		{"upperFirst", token.OpCaseUpper, "hello world", "Hello world"},
		{"upperAll", token.OpCaseUpperAll, "hello world", "HELLO WORLD"},
		{"lowerFirst", token.OpCaseLower, "HELLO", "hELLO"},
		{"lowerAll", token.OpCaseLowerAll, "HELLO WORLD", "hello world"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			vars := &fakeVars{scalars: map[string]string{"X": tc.raw}}
			pe := &ast.ParamExpansion{Name: "X", Op: ast.ParamExpansionOp{Kind: tc.kind}}
			got, err := Param(pe, vars, noopEval, false)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
