package parser

import (
	"testing"

	"github.com/flashsh/flash/ast"
)

func mustParse(t *testing.T, src string) *ast.List {
	t.Helper()
	list, err := New([]byte(src)).Parse()
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", src, err)
	}
	if list == nil {
		t.Fatalf("Parse(%q) returned nil list with nil error", src)
	}
	return list
}

func TestParseSimpleCommand(t *testing.T) {
	list := mustParse(t, "echo hello world\n")
	if len(list.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(list.Statements))
	}
	cmd, ok := list.Statements[0].(*ast.Command)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Command", list.Statements[0])
	}
	if len(cmd.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(cmd.Args))
	}
}

func TestParsePipelineAndList(t *testing.T) {
	list := mustParse(t, "a | b && c || d; e &\n")
	if len(list.Statements) != 4 {
		t.Fatalf("got %d statements, want 4", len(list.Statements))
	}
	if _, ok := list.Statements[0].(*ast.Pipeline); !ok {
		t.Fatalf("first statement is %T, want *ast.Pipeline", list.Statements[0])
	}
	wantOps := []ast.ListOp{ast.OpAndIf, ast.OpOrIf, ast.OpSemicolon}
	if len(list.Operators) != len(wantOps) {
		t.Fatalf("got %d operators, want %d", len(list.Operators), len(wantOps))
	}
}

func TestParseIf(t *testing.T) {
	list := mustParse(t, "if true; then echo yes; elif false; then echo maybe; else echo no; fi\n")
	ifNode, ok := list.Statements[0].(*ast.If)
	if !ok {
		t.Fatalf("statement is %T, want *ast.If", list.Statements[0])
	}
	if len(ifNode.ElifBranches) != 1 {
		t.Fatalf("got %d elif branches, want 1", len(ifNode.ElifBranches))
	}
	if ifNode.ElseBranch == nil {
		t.Fatalf("ElseBranch is nil, want non-nil")
	}
}

func TestParseForWordList(t *testing.T) {
	list := mustParse(t, "for x in a b c; do echo $x; done\n")
	forNode, ok := list.Statements[0].(*ast.For)
	if !ok {
		t.Fatalf("statement is %T, want *ast.For", list.Statements[0])
	}
	if forNode.Var != "x" || len(forNode.Words) != 3 {
		t.Fatalf("got Var=%q Words=%d, want x/3", forNode.Var, len(forNode.Words))
	}
}

func TestParseForArithmetic(t *testing.T) {
	list := mustParse(t, "for ((i=0; i<10; i++)); do echo $i; done\n")
	forC, ok := list.Statements[0].(*ast.ForC)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ForC", list.Statements[0])
	}
	if forC.Init == nil || forC.Cond == nil || forC.Update == nil {
		t.Fatalf("ForC has a nil clause: init=%v cond=%v update=%v", forC.Init, forC.Cond, forC.Update)
	}
}

func TestParseCase(t *testing.T) {
	list := mustParse(t, "case $x in a|b) echo ab;; *) echo other;; esac\n")
	c, ok := list.Statements[0].(*ast.Case)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Case", list.Statements[0])
	}
	if len(c.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(c.Arms))
	}
	if len(c.Arms[0].Patterns) != 2 {
		t.Fatalf("got %d patterns in first arm, want 2", len(c.Arms[0].Patterns))
	}
}

func TestParseFunctionBothForms(t *testing.T) {
	list := mustParse(t, "function f { echo 1; }\ng() { echo 2; }\n")
	if len(list.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(list.Statements))
	}
	for i, want := range []string{"f", "g"} {
		fn, ok := list.Statements[i].(*ast.Function)
		if !ok {
			t.Fatalf("statement %d is %T, want *ast.Function", i, list.Statements[i])
		}
		if fn.Name != want {
			t.Fatalf("statement %d name = %q, want %q", i, fn.Name, want)
		}
	}
}

func TestParseSubshellAndGroup(t *testing.T) {
	list := mustParse(t, "(echo sub)\n{ echo grp; }\n")
	if _, ok := list.Statements[0].(*ast.Subshell); !ok {
		t.Fatalf("statement 0 is %T, want *ast.Subshell", list.Statements[0])
	}
	if _, ok := list.Statements[1].(*ast.Group); !ok {
		t.Fatalf("statement 1 is %T, want *ast.Group", list.Statements[1])
	}
}

func TestParseExtendedTest(t *testing.T) {
	list := mustParse(t, "[[ -f a && $b == c ]]\n")
	test, ok := list.Statements[0].(*ast.Test)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Test", list.Statements[0])
	}
	if !test.Extended {
		t.Fatalf("Extended = false, want true")
	}
	if _, ok := test.Expr.(*ast.TestBinary); !ok {
		t.Fatalf("Expr is %T, want *ast.TestBinary", test.Expr)
	}
}

func TestParseRedirectsAndHeredoc(t *testing.T) {
	list := mustParse(t, "cat <<EOF > out.txt\nhello\nEOF\n")
	cmd, ok := list.Statements[0].(*ast.Command)
	if !ok {
		t.Fatalf("statement is %T, want *ast.Command", list.Statements[0])
	}
	if len(cmd.Redirects) != 2 {
		t.Fatalf("got %d redirects, want 2", len(cmd.Redirects))
	}
	if cmd.Redirects[0].Kind != ast.RHereDoc || cmd.Redirects[0].Body != "hello\n" {
		t.Fatalf("heredoc redirect = %+v", cmd.Redirects[0])
	}
}

func TestParseErrorRecoverySynchronizes(t *testing.T) {
	_, err := New([]byte("| echo bad\necho ok\n")).Parse()
	if err == nil {
		t.Fatalf("expected a parse error for a leading pipe")
	}
	if el, ok := err.(ErrorList); !ok || len(el) != 1 {
		t.Fatalf("got %v, want exactly one error (parsing resumes after the newline)", err)
	}
}

func TestCommandSubstitutionIsParsedEagerly(t *testing.T) {
	list := mustParse(t, "echo $(echo inner)\n")
	cmd := list.Statements[0].(*ast.Command)
	w := cmd.Args[0].(*ast.Word)
	sub, ok := w.Parts[0].(*ast.CommandSubstitution)
	if !ok {
		t.Fatalf("word part is %T, want *ast.CommandSubstitution", w.Parts[0])
	}
	if sub.List == nil || len(sub.List.(*ast.List).Statements) != 1 {
		t.Fatalf("inner command substitution list not parsed: %#v", sub.List)
	}
}
