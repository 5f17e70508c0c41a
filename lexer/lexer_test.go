package lexer

import (
	"testing"

	"github.com/flashsh/flash/token"
)

func kinds(src string) []token.Kind {
	l := New([]byte(src))
	var out []token.Kind
	for {
		tok := l.Next()
		out = append(out, tok.Kind)
		if tok.Kind == token.EOF {
			break
		}
	}
	return out
}

func TestSimpleCommand(t *testing.T) {
	got := kinds("echo hello world\n")
	want := []token.Kind{token.Word, token.Word, token.Word, token.Newline, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestOperatorMaximalMunch(t *testing.T) {
	got := kinds("a && b || c ;; d ;& e ;;& f\n")
	wantHas := []token.Kind{token.AndIf, token.OrIf, token.DSemicolon, token.SemiFall, token.SemiFallAll}
	for _, w := range wantHas {
		found := false
		for _, k := range got {
			if k == w {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected to find token kind %v in %v", w, got)
		}
	}
}

func TestAssignmentDetection(t *testing.T) {
	l := New([]byte("X=5\n"))
	tok := l.Next()
	if tok.Kind != token.Assignment {
		t.Fatalf("got kind %v, want Assignment", tok.Kind)
	}
	if tok.Text != "X=5" {
		t.Fatalf("got text %q", tok.Text)
	}
}

func TestSingleQuoteNoEscapes(t *testing.T) {
	l := New([]byte(`'a\nb'`))
	tok := l.Next()
	if tok.Kind != token.StringLiteral || tok.Quoting != token.SingleQuoted {
		t.Fatalf("got %+v", tok)
	}
	if tok.Text != `a\nb` {
		t.Fatalf("got text %q, want literal backslash preserved", tok.Text)
	}
}

func TestDoubleQuoteEscapes(t *testing.T) {
	l := New([]byte(`"a\"b\\c\$d"`))
	tok := l.Next()
	if tok.Kind != token.Word || tok.Quoting != token.DoubleQuoted {
		t.Fatalf("got %+v", tok)
	}
	if tok.Text != `a"b\c$d` {
		t.Fatalf("got text %q", tok.Text)
	}
	eof := l.Next()
	if eof.Kind != token.EOF {
		t.Fatalf("expected EOF after quote, got %v", eof.Kind)
	}
}

func TestDollarParenCapturesBalanced(t *testing.T) {
	l := New([]byte(`$(echo (x) y)`))
	tok := l.Next()
	if tok.Kind != token.DollarLParen {
		t.Fatalf("got kind %v", tok.Kind)
	}
	if tok.Text != "echo (x) y" {
		t.Fatalf("got text %q", tok.Text)
	}
}

func TestArithmeticDoubleParenClose(t *testing.T) {
	l := New([]byte(`$((1 + (2 * 3)))`))
	tok := l.Next()
	if tok.Kind != token.DollarDLParen {
		t.Fatalf("got kind %v", tok.Kind)
	}
	if tok.Text != "1 + (2 * 3)" {
		t.Fatalf("got text %q", tok.Text)
	}
}

func TestHeredocCapturesBody(t *testing.T) {
	src := "cat <<EOF\nhello\nworld\nEOF\nafter\n"
	l := New([]byte(src))
	// cat
	if tok := l.Next(); tok.Kind != token.Word {
		t.Fatalf("got %v", tok.Kind)
	}
	// <<
	if tok := l.Next(); tok.Kind != token.DLess {
		t.Fatalf("got %v", tok.Kind)
	}
	// EOF tag
	tag := l.Next()
	if tag.Kind != token.Word || tag.Text != "EOF" {
		t.Fatalf("got %+v", tag)
	}
	idx := l.QueueHeredoc("EOF", false, false)
	nl := l.Next()
	if nl.Kind != token.Newline {
		t.Fatalf("got %v", nl.Kind)
	}
	body, resolved := l.HeredocBody(idx)
	if !resolved {
		t.Fatalf("expected heredoc body resolved after newline")
	}
	if body != "hello\nworld\n" {
		t.Fatalf("got body %q", body)
	}
	after := l.Next()
	if after.Kind != token.Word || after.Text != "after" {
		t.Fatalf("got %+v", after)
	}
}

func TestCommentSkippedByDefault(t *testing.T) {
	got := kinds("echo hi # a comment\n")
	for _, k := range got {
		if k == token.Comment {
			t.Fatalf("did not expect Comment token by default")
		}
	}
}

func TestCommentEmittedWhenRequested(t *testing.T) {
	l := New([]byte("# a comment\necho\n"), WithComments(true))
	tok := l.Next()
	if tok.Kind != token.Comment {
		t.Fatalf("got %v, want Comment", tok.Kind)
	}
}

func TestBraceGroupVsBraceExpansion(t *testing.T) {
	// standalone '{' is an operator
	l := New([]byte("{ echo hi ; }"))
	if tok := l.Next(); tok.Kind != token.LBrace {
		t.Fatalf("got %v, want LBrace", tok.Kind)
	}
	// '{' glued to a word is brace expansion content, stays in the word
	l2 := New([]byte("a{b,c}d"))
	tok := l2.Next()
	if tok.Kind != token.Word {
		t.Fatalf("got %v, want Word", tok.Kind)
	}
	if tok.Text != "a{b,c}d" {
		t.Fatalf("got text %q", tok.Text)
	}
}
