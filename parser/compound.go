package parser

import (
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

func (p *Parser) expectWord(kw string) {
	if !p.wordIs(kw) {
		p.errorf(p.tok.Pos, "expected %q, got %s", kw, p.describeTok())
		return
	}
	p.advance()
}

func (p *Parser) describeTok() string {
	if p.tok.Kind == token.Word {
		return p.tok.Text
	}
	return p.tok.Kind.String()
}

func (p *Parser) consumeDoSep() {
	for p.tok.Kind == token.Semicolon || p.tok.Kind == token.Newline {
		p.advance()
	}
	p.expectWord("do")
}

// parseIf parses "if list; then list (elif list; then list)* [else list] fi".
func (p *Parser) parseIf() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "if"
	cond := p.parseList(stops("then"))
	p.expectWord("then")
	then := p.parseList(stops("elif", "else", "fi"))

	n := &ast.If{Condition: cond, ThenBranch: then}
	n.StartPos = startPos

	for p.wordIs("elif") {
		p.advance()
		c := p.parseList(stops("then"))
		p.expectWord("then")
		b := p.parseList(stops("elif", "else", "fi"))
		n.ElifBranches = append(n.ElifBranches, ast.ElifBranch{Condition: c, Body: b})
	}
	if p.wordIs("else") {
		p.advance()
		n.ElseBranch = p.parseList(stops("fi"))
	}
	n.EndPos = p.tok.End
	p.expectWord("fi")
	return n
}

// parseCase parses "case word in (pattern|pattern)* ) list term)* esac".
func (p *Parser) parseCase() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "case"
	word := p.parseWord()
	p.skipNewlines()
	p.expectWord("in")
	p.skipNewlines()

	n := &ast.Case{Word: word}
	n.StartPos = startPos

	for !p.wordIs("esac") && p.tok.Kind != token.EOF {
		if p.tok.Kind == token.LParen {
			p.advance()
		}
		var patterns []ast.Node
		for {
			if pat := p.parseWord(); pat != nil {
				patterns = append(patterns, pat)
			}
			if p.tok.Kind == token.Pipe {
				p.advance()
				continue
			}
			break
		}
		if p.tok.Kind == token.RParen {
			p.advance()
		} else {
			p.errorf(p.tok.Pos, "expected ')' after case pattern list")
		}
		p.skipNewlines()
		body := p.parseList(stops("esac", "<op>"))

		term := ast.TermBreak
		switch p.tok.Kind {
		case token.DSemicolon:
			p.advance()
		case token.SemiFall:
			term = ast.TermFallThrough
			p.advance()
		case token.SemiFallAll:
			term = ast.TermContinueMatch
			p.advance()
		}
		n.Arms = append(n.Arms, ast.CaseArm{Patterns: patterns, Body: body, Terminator: term})
		p.skipNewlines()
	}
	n.EndPos = p.tok.End
	p.expectWord("esac")
	return n
}

// parseFor dispatches between the word-list and arithmetic ("for ((") forms.
func (p *Parser) parseFor() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "for"
	if p.tok.Kind == token.LParen && p.peek().Kind == token.LParen {
		return p.parseForC(startPos)
	}

	name := p.tok.Text
	p.advance() // loop variable name
	p.skipNewlines()

	var words []ast.Node
	if p.wordIs("in") {
		p.advance()
		for p.tok.Kind != token.Semicolon && p.tok.Kind != token.Newline && p.tok.Kind != token.EOF {
			w := p.parseWord()
			if w == nil {
				break
			}
			words = append(words, w)
		}
	}
	p.consumeDoSep()
	body := p.parseList(stops("done"))

	n := &ast.For{Var: name, Words: words, Body: body}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	p.expectWord("done")
	return n
}

// parseForC parses the arithmetic "for ((init; cond; update)); do body; done"
// form. The '((' has already been confirmed by parseFor's lookahead; by the
// time this is called p.tok is the second '(' and the lexer sits right after
// it, ready for a raw capture up to the matching "))" exactly like $((...)).
func (p *Parser) parseForC(startPos token.Position) ast.Node {
	p.advance() // consume the second '(' from the lookahead buffer
	raw, ok := p.lex.CaptureArithRaw()
	if !ok {
		p.errorf(startPos, "unterminated arithmetic for header")
	}
	p.tok = p.lex.Next()
	p.lookTok = nil

	init, cond, update := splitArithHeader(raw)
	n := &ast.ForC{}
	n.StartPos = startPos
	if init != "" {
		n.Init = &ast.Arithmetic{Expr: init}
	}
	if cond != "" {
		n.Cond = &ast.Arithmetic{Expr: cond}
	}
	if update != "" {
		n.Update = &ast.Arithmetic{Expr: update}
	}

	p.consumeDoSep()
	n.Body = p.parseList(stops("done"))
	n.EndPos = p.tok.End
	p.expectWord("done")
	return n
}

func splitArithHeader(raw string) (init, cond, update string) {
	parts := splitTopLevelSemi(raw)
	if len(parts) > 0 {
		init = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		cond = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		update = strings.TrimSpace(parts[2])
	}
	return
}

func splitTopLevelSemi(s string) []string {
	var out []string
	depth := 0
	var cur []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		}
		if c == ';' && depth == 0 {
			out = append(out, string(cur))
			cur = cur[:0]
			continue
		}
		cur = append(cur, c)
	}
	out = append(out, string(cur))
	return out
}

func (p *Parser) parseWhile() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "while"
	cond := p.parseList(stops("do"))
	p.expectWord("do")
	body := p.parseList(stops("done"))
	n := &ast.While{Cond: cond, Body: body}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	p.expectWord("done")
	return n
}

func (p *Parser) parseUntil() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "until"
	cond := p.parseList(stops("do"))
	p.expectWord("do")
	body := p.parseList(stops("done"))
	n := &ast.Until{Cond: cond, Body: body}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	p.expectWord("done")
	return n
}

// parseFunction parses either "function NAME [()] compound" (withKeyword) or
// the bare "NAME () compound" shorthand.
func (p *Parser) parseFunction(withKeyword bool) ast.Node {
	startPos := p.tok.Pos
	var name string
	if withKeyword {
		p.advance() // "function"
		name = p.tok.Text
		p.advance()
		if p.tok.Kind == token.LParen {
			p.advance()
			p.expectRParen()
		}
	} else {
		name = p.tok.Text
		p.advance() // name
		p.advance() // '('
		p.expectRParen()
	}
	p.skipNewlines()
	body := p.parseCommand(nil)

	n := &ast.Function{Name: name, Body: body}
	n.StartPos = startPos
	if body != nil {
		n.EndPos = body.End()
	} else {
		n.EndPos = p.tok.End
	}
	return n
}

func (p *Parser) expectRParen() {
	if p.tok.Kind == token.RParen {
		p.advance()
		return
	}
	p.errorf(p.tok.Pos, "expected ')' after function name")
}

func (p *Parser) parseSubshell() ast.Node {
	startPos := p.tok.Pos
	p.advance() // '('
	list := p.parseList(stops("<op>"))
	n := &ast.Subshell{List: list}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	if p.tok.Kind == token.RParen {
		p.advance()
	} else {
		p.errorf(p.tok.Pos, "expected ')' to close subshell")
	}
	return n
}

func (p *Parser) parseGroup() ast.Node {
	startPos := p.tok.Pos
	p.advance() // '{'
	list := p.parseList(stops("<op>"))
	n := &ast.Group{List: list}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	if p.tok.Kind == token.RBrace {
		p.advance()
	} else {
		p.errorf(p.tok.Pos, "expected '}' to close group")
	}
	return n
}

var testUnaryOps = map[string]bool{
	"-z": true, "-n": true, "-e": true, "-f": true, "-d": true, "-s": true,
	"-r": true, "-w": true, "-x": true, "-L": true, "-h": true, "-p": true,
	"-S": true, "-b": true, "-c": true, "-g": true, "-u": true, "-k": true,
	"-O": true, "-G": true, "-N": true, "-v": true, "-o": true,
}

var testBinaryOps = map[string]bool{
	"==": true, "=": true, "!=": true, "=~": true,
	"-eq": true, "-ne": true, "-lt": true, "-le": true, "-gt": true, "-ge": true,
	"-nt": true, "-ot": true, "-ef": true,
}

// parseExtendedTestCommand parses "[[ expr ]]". Its operand words are parsed
// the same way as any other word, but the expander must not subject them to
// field splitting or pathname expansion (spec's [[ ]] non-splitting rule).
func (p *Parser) parseExtendedTestCommand() ast.Node {
	startPos := p.tok.Pos
	p.advance() // "[["
	expr := p.parseTestOr()
	n := &ast.Test{Expr: expr, Extended: true}
	n.StartPos = startPos
	n.EndPos = p.tok.End
	if p.tok.Kind == token.DRBracket {
		p.advance()
	} else {
		p.errorf(p.tok.Pos, "expected ']]' to close conditional expression")
	}
	return n
}

func (p *Parser) parseTestOr() ast.Node {
	left := p.parseTestAnd()
	for p.tok.Kind == token.OrIf {
		p.advance()
		right := p.parseTestAnd()
		left = &ast.TestBinary{Op: "||", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTestAnd() ast.Node {
	left := p.parseTestNot()
	for p.tok.Kind == token.AndIf {
		p.advance()
		right := p.parseTestNot()
		left = &ast.TestBinary{Op: "&&", Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseTestNot() ast.Node {
	if p.wordIs("!") {
		p.advance()
		return &ast.Negation{Node: p.parseTestNot()}
	}
	return p.parseTestPrimary()
}

func (p *Parser) parseTestPrimary() ast.Node {
	if p.tok.Kind == token.LParen {
		p.advance()
		inner := p.parseTestOr()
		if p.tok.Kind == token.RParen {
			p.advance()
		} else {
			p.errorf(p.tok.Pos, "expected ')' in conditional expression")
		}
		return &ast.TestGroup{Expr: inner}
	}
	if p.tok.Kind == token.Word && testUnaryOps[p.tok.Text] {
		op := p.tok.Text
		p.advance()
		return &ast.TestUnary{Op: op, Operand: p.parseWord()}
	}
	left := p.parseWord()
	if p.tok.Kind == token.Word && testBinaryOps[p.tok.Text] {
		op := p.tok.Text
		p.advance()
		right := p.parseWord()
		return &ast.TestBinary{Op: op, Left: left, Right: right}
	}
	return &ast.TestUnary{Op: "-n", Operand: left}
}
