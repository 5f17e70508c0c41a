package parser

import (
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

// parseCommand parses one `compound (redirect)*` or `simple` production.
func (p *Parser) parseCommand(stop stopSet) ast.Node {
	switch {
	case p.wordIs("if"):
		return p.withTrailingRedirects(p.parseIf())
	case p.wordIs("case"):
		return p.withTrailingRedirects(p.parseCase())
	case p.wordIs("for"):
		return p.withTrailingRedirects(p.parseFor())
	case p.wordIs("while"):
		return p.withTrailingRedirects(p.parseWhile())
	case p.wordIs("until"):
		return p.withTrailingRedirects(p.parseUntil())
	case p.wordIs("function"):
		return p.parseFunction(true)
	case p.tok.Kind == token.LParen:
		return p.withTrailingRedirects(p.parseSubshell())
	case p.tok.Kind == token.LBrace:
		return p.withTrailingRedirects(p.parseGroup())
	case p.tok.Kind == token.DLBracket:
		return p.parseExtendedTestCommand()
	case p.tok.Kind == token.Word && p.looksLikeFunctionDef():
		return p.parseFunction(false)
	default:
		return p.parseSimpleCommand(stop)
	}
}

// withTrailingRedirects attaches any redirects immediately following a
// compound command to its Redirects field.
func (p *Parser) withTrailingRedirects(node ast.Node) ast.Node {
	if node == nil {
		return nil
	}
	var redirects []*ast.Redirect
	for p.atRedirectStart() {
		r := p.parseRedirect()
		if r == nil {
			break
		}
		redirects = append(redirects, r)
	}
	if len(redirects) == 0 {
		return node
	}
	switch x := node.(type) {
	case *ast.If:
		x.Redirects = redirects
	case *ast.Case:
		x.Redirects = redirects
	case *ast.For:
		x.Redirects = redirects
	case *ast.ForC:
		x.Redirects = redirects
	case *ast.While:
		x.Redirects = redirects
	case *ast.Until:
		x.Redirects = redirects
	case *ast.Subshell:
		x.Redirects = redirects
	case *ast.Group:
		x.Redirects = redirects
	}
	return node
}

// looksLikeFunctionDef detects the "NAME ()" function-definition shorthand
// without the `function` keyword.
func (p *Parser) looksLikeFunctionDef() bool {
	if p.tok.Kind != token.Word {
		return false
	}
	nxt := p.peek()
	return nxt.Kind == token.LParen && !nxt.Spaced
}

func (p *Parser) atRedirectStart() bool {
	switch p.tok.Kind {
	case token.Less, token.Great, token.DGreat, token.LessAnd, token.GreatAnd,
		token.DLess, token.DLessDash, token.TLess, token.LessLParen, token.GreatLParen:
		return true
	case token.Number:
		nxt := p.peek()
		if nxt.Spaced {
			return false
		}
		switch nxt.Kind {
		case token.Less, token.Great, token.DGreat, token.LessAnd, token.GreatAnd,
			token.DLess, token.DLessDash, token.TLess:
			return true
		}
	}
	return false
}

// parseSimpleCommand parses `(assignment)* word (word|redirect|assignment)*`.
func (p *Parser) parseSimpleCommand(stop stopSet) ast.Node {
	startPos := p.tok.Pos
	cmd := &ast.Command{}
	haveName := false

	for {
		switch {
		case p.atRedirectStart():
			r := p.parseRedirect()
			if r == nil {
				return nil
			}
			cmd.Redirects = append(cmd.Redirects, r)
		case p.tok.Kind == token.Assignment && !haveName:
			a := p.parseAssignmentToken()
			cmd.Assignments = append(cmd.Assignments, a)
		case p.tok.Kind == token.Word || p.tok.Kind == token.Assignment ||
			p.tok.Kind == token.StringLiteral || p.tok.Kind == token.Number ||
			p.tok.Kind == token.Dollar || p.tok.Kind == token.DollarLBrace ||
			p.tok.Kind == token.DollarLParen || p.tok.Kind == token.DollarDLParen ||
			p.tok.Kind == token.Backtick:
			w := p.parseWord()
			if w == nil {
				return nil
			}
			if !haveName {
				cmd.Name = w
				haveName = true
			} else {
				cmd.Args = append(cmd.Args, w)
			}
		default:
			goto done
		}
	}
done:
	if !haveName && len(cmd.Redirects) == 0 && len(cmd.Assignments) == 0 {
		p.errorf(p.tok.Pos, "unexpected token %v, expected a command", p.tok.Kind)
		return nil
	}
	cmd.StartPos = startPos
	cmd.EndPos = p.tok.Pos
	return cmd
}

func (p *Parser) parseAssignmentToken() *ast.Assignment {
	text := p.tok.Text
	pos := p.tok.Pos
	p.advance()
	name, rest, plus := splitAssignmentText(text)
	var index ast.Node
	if i := strings.IndexByte(name, '['); i >= 0 && strings.HasSuffix(name, "]") {
		index = &ast.StringLiteral{Text: name[i+1 : len(name)-1], Quoting: token.Unquoted}
		name = name[:i]
	}
	a := &ast.Assignment{Name: name, Plus: plus, Index: index}
	a.StartPos = pos
	a.EndPos = p.tok.Pos
	if rest == "" {
		return a
	}
	if len(rest) > 0 && rest[0] == '(' {
		a.Value = parseArrayLiteralText(rest)
		return a
	}
	a.Value = &ast.StringLiteral{Text: rest, Quoting: token.Unquoted}
	return a
}

func splitAssignmentText(text string) (name, rest string, plus bool) {
	i := 0
	for i < len(text) && text[i] != '=' {
		i++
	}
	if i == 0 || i >= len(text) {
		return text, "", false
	}
	name = text[:i]
	if name[len(name)-1] == '+' {
		name = name[:len(name)-1]
		plus = true
	}
	rest = text[i+1:]
	return name, rest, plus
}

func parseArrayLiteralText(rest string) ast.Node {
	inner := rest
	if len(inner) >= 2 && inner[0] == '(' && inner[len(inner)-1] == ')' {
		inner = inner[1 : len(inner)-1]
	}
	var elems []ast.Node
	for _, f := range splitFields(inner) {
		if f == "" {
			continue
		}
		elems = append(elems, &ast.StringLiteral{Text: f, Quoting: token.Unquoted})
	}
	return &ast.ArrayLiteral{Elements: elems}
}

func splitFields(s string) []string {
	var out []string
	cur := []byte{}
	inField := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' {
			if inField {
				out = append(out, string(cur))
				cur = cur[:0]
				inField = false
			}
			continue
		}
		cur = append(cur, c)
		inField = true
	}
	if inField {
		out = append(out, string(cur))
	}
	return out
}

// parseRedirect parses `[fd] redirect_op target`.
func (p *Parser) parseRedirect() *ast.Redirect {
	pos := p.tok.Pos
	fd := -1
	hasFd := false
	if p.tok.Kind == token.Number {
		n := 0
		for _, c := range p.tok.Text {
			n = n*10 + int(c-'0')
		}
		fd = n
		hasFd = true
		p.advance()
	}

	kind := p.tok.Kind
	r := &ast.Redirect{}
	r.StartPos = pos

	switch kind {
	case token.Less:
		p.advance()
		r.Kind = ast.RInput
		r.Target = p.parseWord()
	case token.Great:
		p.advance()
		r.Kind = ast.ROutput
		r.Target = p.parseWord()
	case token.DGreat:
		p.advance()
		r.Kind = ast.RAppend
		r.Target = p.parseWord()
	case token.LessAnd:
		p.advance()
		r.Kind = ast.RInputDup
		r.Target = p.parseWord()
	case token.GreatAnd:
		p.advance()
		r.Kind = ast.ROutputDup
		r.Target = p.parseWord()
	case token.TLess:
		p.advance()
		r.Kind = ast.RHereString
		r.Target = p.parseWord()
	case token.LessLParen:
		p.advance()
		r.Kind = ast.RProcSubIn
		r.List = p.parseList(stops(")"))
		if p.tok.Kind == token.RParen {
			p.advance()
		} else {
			p.errorf(p.tok.Pos, "expected ')' to close <( process substitution")
		}
	case token.GreatLParen:
		p.advance()
		r.Kind = ast.RProcSubOut
		r.List = p.parseList(stops(")"))
		if p.tok.Kind == token.RParen {
			p.advance()
		} else {
			p.errorf(p.tok.Pos, "expected ')' to close >( process substitution")
		}
	case token.DLess, token.DLessDash:
		strip := kind == token.DLessDash
		p.advance()
		tagTok := p.tok
		quoted := tagTok.Kind == token.StringLiteral
		tag := tagTok.Text
		p.advance()
		r.Kind = ast.RHereDoc
		r.StripTabs = strip
		r.Quoted = quoted
		r.Delim = tag
		idx := p.lex.QueueHeredoc(tag, strip, quoted)
		p.pendingHeredocs = append(p.pendingHeredocs, pendingHeredoc{redirect: r, idx: idx})
	default:
		p.errorf(pos, "expected a redirection operator, got %v", kind)
		return nil
	}

	if fd >= 0 {
		r.Fd = fd
	} else {
		r.Fd = defaultFd(r.Kind)
	}
	r.HasFd = hasFd
	r.EndPos = p.tok.Pos
	p.resolveHeredocsIfReady()
	return r
}

// resolveHeredocsIfReady copies resolved here-document bodies from the
// lexer into their owning Redirect nodes once the lexer has consumed the
// newline that ends their queuing line.
func (p *Parser) resolveHeredocsIfReady() {
	remaining := p.pendingHeredocs[:0]
	for _, ph := range p.pendingHeredocs {
		if body, ok := p.lex.HeredocBody(ph.idx); ok {
			ph.redirect.Body = body
		} else {
			remaining = append(remaining, ph)
		}
	}
	p.pendingHeredocs = remaining
}

func defaultFd(kind ast.RedirectKind) int {
	switch kind {
	case ast.ROutput, ast.RAppend, ast.ROutputDup, ast.RProcSubOut:
		return 1
	default:
		return 0
	}
}
