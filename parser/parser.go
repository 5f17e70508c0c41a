// Package parser implements flash's recursive-descent parser (spec §4.2):
// it pulls tokens from a lexer.Lexer with 1-token lookahead and emits a
// single root ast.List.
package parser

import (
	"fmt"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/lexer"
	"github.com/flashsh/flash/token"
)

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithComments makes the parser retain '#'-led comments as ast.Comment
// statements instead of dropping them.
func WithComments(emit bool) Option {
	return func(p *Parser) { p.keepComments = emit }
}

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	lex *lexer.Lexer

	tok     token.Token
	lookTok *token.Token // 1-token lookahead buffer beyond tok, filled on demand

	keepComments bool
	errs         ErrorList

	pendingHeredocs []pendingHeredoc
}

type pendingHeredoc struct {
	redirect *ast.Redirect
	idx      int
}

// New creates a Parser over src.
func New(src []byte, opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	var lopts []lexer.Option
	if p.keepComments {
		lopts = append(lopts, lexer.WithComments(true))
	}
	p.lex = lexer.New(src, lopts...)
	p.advance()
	return p
}

// Parse runs the parser to completion. It always returns either a non-nil
// *ast.List or a non-nil error; it never returns both (spec §4.2, §8
// property 1). An empty input yields an empty List.
func (p *Parser) Parse() (*ast.List, error) {
	list := p.parseList(nil)
	if len(p.errs) > 0 {
		return nil, p.errs
	}
	return list, nil
}

func (p *Parser) advance() {
	if p.lookTok != nil {
		p.tok = *p.lookTok
		p.lookTok = nil
		return
	}
	p.tok = p.lex.Next()
}

// peek returns the token after p.tok without consuming p.tok. It is used
// only to disambiguate "for ((" (arithmetic for) from "for (" (a parse
// error) and similar narrow two-token decisions.
func (p *Parser) peek() token.Token {
	if p.lookTok == nil {
		t := p.lex.Next()
		p.lookTok = &t
	}
	return *p.lookTok
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	p.errs = append(p.errs, &Error{Msg: fmt.Sprintf(format, args...), Pos: pos})
}

func (p *Parser) wordIs(kw string) bool {
	return p.tok.Kind == token.Word && p.tok.Text == kw
}

// stopSet holds the keywords (and the "<op>" marker for closing operators)
// that end a compound body in a given context; atStop tests the current
// token against it so parseList can stop without consuming the terminator.
type stopSet map[string]bool

func stops(words ...string) stopSet {
	s := make(stopSet, len(words))
	for _, w := range words {
		s[w] = true
	}
	return s
}

func (p *Parser) atStop(set stopSet) bool {
	if p.tok.Kind == token.EOF {
		return true
	}
	if set == nil {
		return false
	}
	switch p.tok.Kind {
	case token.RParen, token.RBrace, token.DRBracket,
		token.DSemicolon, token.SemiFall, token.SemiFallAll:
		if set["<op>"] {
			return true
		}
	}
	return p.tok.Kind == token.Word && set[p.tok.Text]
}

// parseList parses `and_or (sep and_or)* [sep]`, stopping before any token
// whose text is in stop (a keyword terminator like "fi", "done", "esac") or
// at EOF/RParen/RBrace, per the caller's context.
func (p *Parser) parseList(stop stopSet) *ast.List {
	list := &ast.List{}
	// skip leading separators (blank statements)
	for p.tok.Kind == token.Newline || p.tok.Kind == token.Semicolon {
		p.advance()
	}
	for !p.atStop(stop) {
		if p.keepComments {
			for p.tok.Kind == token.Comment {
				list.Statements = append(list.Statements, &ast.Comment{Text: p.tok.Text})
				if len(list.Statements) > 1 {
					list.Operators = append(list.Operators, ast.OpNewline)
				}
				p.advance()
				for p.tok.Kind == token.Newline {
					p.advance()
				}
			}
			if p.atStop(stop) {
				break
			}
		}
		stmt := p.parsePipeline(stop)
		if stmt == nil {
			p.synchronize(stop)
			continue
		}
		list.Statements = append(list.Statements, stmt)

		op, hasOp := p.consumeSep()
		if !hasOp {
			break
		}
		for p.tok.Kind == token.Newline || p.tok.Kind == token.Semicolon {
			p.advance()
		}
		if p.atStop(stop) {
			break // a trailing separator joins nothing and is not recorded
		}
		list.Operators = append(list.Operators, op)
	}
	return list
}

func (p *Parser) consumeSep() (ast.ListOp, bool) {
	switch p.tok.Kind {
	case token.Semicolon:
		p.advance()
		return ast.OpSemicolon, true
	case token.Ampersand:
		p.advance()
		return ast.OpAmpersand, true
	case token.AndIf:
		p.advance()
		p.skipNewlines()
		return ast.OpAndIf, true
	case token.OrIf:
		p.advance()
		p.skipNewlines()
		return ast.OpOrIf, true
	case token.Newline:
		p.advance()
		return ast.OpNewline, true
	}
	return 0, false
}

func (p *Parser) skipNewlines() {
	for p.tok.Kind == token.Newline {
		p.advance()
	}
}

// synchronize recovers from a parse error by discarding tokens up to the
// next statement separator, per spec §4.2/§7.
func (p *Parser) synchronize(stop stopSet) {
	for {
		switch p.tok.Kind {
		case token.EOF, token.Newline, token.Semicolon:
			if p.tok.Kind != token.EOF {
				p.advance()
			}
			return
		}
		if p.atStop(stop) {
			return
		}
		p.advance()
	}
}

// parsePipeline parses `['!'] command ('|' command)*`.
func (p *Parser) parsePipeline(stop stopSet) ast.Node {
	negated := false
	if p.wordIs("!") {
		negated = true
		p.advance()
	}
	first := p.parseCommand(stop)
	if first == nil {
		return nil
	}
	cmds := []ast.Node{first}
	for p.tok.Kind == token.Pipe {
		p.advance()
		p.skipNewlines()
		next := p.parseCommand(stop)
		if next == nil {
			return nil
		}
		cmds = append(cmds, next)
	}
	if len(cmds) == 1 && !negated {
		return cmds[0]
	}
	return &ast.Pipeline{Commands: cmds, Negated: negated}
}
