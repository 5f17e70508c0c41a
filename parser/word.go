package parser

import (
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

func (p *Parser) atWordStart() bool {
	switch p.tok.Kind {
	case token.Word, token.Assignment, token.StringLiteral, token.Number,
		token.Dollar, token.DollarLBrace, token.DollarLParen, token.DollarDLParen, token.Backtick:
		return true
	}
	return false
}

// parseWord assembles consecutive, unspaced lexer tokens into a single Word,
// mirroring the way the token stream marks part boundaries via Spaced
// (spec §4.1's note on word-part adjacency).
func (p *Parser) parseWord() *ast.Word {
	if !p.atWordStart() {
		return nil
	}
	startPos := p.tok.Pos
	endPos := startPos
	var parts []ast.Node
	first := true

	for p.atWordStart() {
		if !first && p.tok.Spaced {
			break
		}
		first = false

		switch p.tok.Kind {
		case token.Word, token.Assignment, token.Number:
			parts = append(parts, wordPartFromLiteral(p.tok))
			endPos = p.tok.End
			p.advance()
		case token.StringLiteral:
			lit := &ast.StringLiteral{Text: p.tok.Text, Quoting: p.tok.Quoting}
			lit.StartPos, lit.EndPos = p.tok.Pos, p.tok.End
			parts = append(parts, lit)
			endPos = p.tok.End
			p.advance()
		case token.Dollar:
			parts = append(parts, p.parseDollarParam())
			endPos = p.tok.Pos
		case token.DollarLBrace:
			parts = append(parts, p.parseParamBraceToken())
			endPos = p.tok.End
			p.advance()
		case token.DollarLParen:
			parts = append(parts, p.parseCommandSubToken(false))
			endPos = p.tok.End
			p.advance()
		case token.DollarDLParen:
			parts = append(parts, p.parseArithToken())
			endPos = p.tok.End
			p.advance()
		case token.Backtick:
			parts = append(parts, p.parseCommandSubToken(true))
			endPos = p.tok.End
			p.advance()
		}
	}
	if len(parts) == 0 {
		return nil
	}
	w := &ast.Word{Parts: parts}
	w.StartPos, w.EndPos = startPos, endPos
	return w
}

// wordPartFromLiteral turns one Word/Assignment/Number token into a word
// part, recognizing brace expansion ("a{b,c}d", "{1..10}") lexically in
// unquoted text before falling back to a plain literal.
func wordPartFromLiteral(t token.Token) ast.Node {
	if t.Kind == token.Word && t.Quoting == token.Unquoted {
		if be, ok := tryBraceExpansion(t.Text); ok {
			be.StartPos, be.EndPos = t.Pos, t.End
			return be
		}
	}
	lit := &ast.StringLiteral{Text: t.Text, Quoting: t.Quoting}
	lit.StartPos, lit.EndPos = t.Pos, t.End
	return lit
}

func (p *Parser) parseDollarParam() ast.Node {
	startPos := p.tok.Pos
	name := p.lex.ScanParamName()
	p.advance()
	if name == "" {
		lit := &ast.StringLiteral{Text: "$", Quoting: token.Unquoted}
		lit.StartPos, lit.EndPos = startPos, startPos
		return lit
	}
	pe := &ast.ParamExpansion{Name: name}
	pe.StartPos, pe.EndPos = startPos, startPos
	return pe
}

func (p *Parser) parseParamBraceToken() ast.Node {
	return parseParamBraceContent(p.tok.Text, p.tok.Pos, p.tok.End)
}

func (p *Parser) parseArithToken() ast.Node {
	a := &ast.Arithmetic{Expr: p.tok.Text}
	a.StartPos, a.EndPos = p.tok.Pos, p.tok.End
	return a
}

// parseCommandSubToken re-parses the raw text already captured by the
// lexer for "$(...)" or "`...`" into its own statement list, eagerly, so
// that a fully-formed AST (or a ParseError) exists before evaluation ever
// begins (spec §4.2 property 1).
func (p *Parser) parseCommandSubToken(backtick bool) ast.Node {
	sub := &ast.CommandSubstitution{Backtick: backtick}
	sub.StartPos, sub.EndPos = p.tok.Pos, p.tok.End

	inner := New([]byte(p.tok.Text))
	list, err := inner.Parse()
	if err != nil {
		if el, ok := err.(ErrorList); ok {
			p.errs = append(p.errs, el...)
		}
		list = &ast.List{}
	}
	sub.List = list
	return sub
}

// tryBraceExpansion looks for the first top-level "{...}" run in text and,
// if its interior is a comma list or a ".." range, splits it into items.
// Anything else (including a lone "{word}" with neither) is left as a
// plain literal, matching how an unexpandable brace group passes through
// untouched.
func tryBraceExpansion(text string) (*ast.BraceExpansion, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, false
	}
	depth := 0
	end := -1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end >= 0 {
			break
		}
	}
	if end < 0 {
		return nil, false
	}
	inner := text[start+1 : end]
	items := splitBraceItems(inner)
	if len(items) < 2 {
		items = expandRange(inner)
		if items == nil {
			return nil, false
		}
	}
	be := &ast.BraceExpansion{Prefix: text[:start], Suffix: text[end+1:]}
	for _, it := range items {
		s := &ast.StringLiteral{Text: it, Quoting: token.Unquoted}
		be.Items = append(be.Items, s)
	}
	return be, true
}

func splitBraceItems(s string) []string {
	var out []string
	depth := 0
	var cur []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, string(cur))
				cur = cur[:0]
				continue
			}
		}
		cur = append(cur, c)
	}
	out = append(out, string(cur))
	return out
}

func expandRange(s string) []string {
	if !strings.Contains(s, "..") {
		return nil
	}
	parts := strings.Split(s, "..")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}
	from, to := parts[0], parts[1]
	step := 1
	if len(parts) == 3 {
		n, ok := parseIntLiteral(parts[2])
		if !ok || n == 0 {
			return nil
		}
		step = n
	}
	if lo, ok1 := parseIntLiteral(from); ok1 {
		if hi, ok2 := parseIntLiteral(to); ok2 {
			return numericRange(lo, hi, step)
		}
		return nil
	}
	if len(from) == 1 && len(to) == 1 {
		return alphaRange(from[0], to[0], step)
	}
	return nil
}

func parseIntLiteral(s string) (int, bool) {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if s == "" {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}

func numericRange(lo, hi, step int) []string {
	if step < 0 {
		step = -step
	}
	if step == 0 {
		step = 1
	}
	var out []string
	if lo <= hi {
		for v := lo; v <= hi; v += step {
			out = append(out, itoaInt(v))
		}
	} else {
		for v := lo; v >= hi; v -= step {
			out = append(out, itoaInt(v))
		}
	}
	return out
}

func alphaRange(from, to byte, step int) []string {
	if step <= 0 {
		step = 1
	}
	var out []string
	if from <= to {
		for c := int(from); c <= int(to); c += step {
			out = append(out, string(byte(c)))
		}
	} else {
		for c := int(from); c >= int(to); c -= step {
			out = append(out, string(byte(c)))
		}
	}
	return out
}

func itoaInt(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
