package parser

import (
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
)

// parseParamBraceContent turns the raw text captured between "${" and "}"
// into a ParamExpansion node. Pattern and replacement operands are kept as
// literal text rather than recursively re-lexed: the expander re-scans them
// for nested expansions when it runs (spec §4.4 step 3), since a full
// recursive parse here would require the lexer to re-enter itself mid
// balanced-capture. This is a deliberate simplification, not an omission.
func parseParamBraceContent(raw string, pos, end token.Position) *ast.ParamExpansion {
	pe := &ast.ParamExpansion{}
	pe.StartPos, pe.EndPos = pos, end

	text := raw
	if strings.HasPrefix(text, "#") && text != "#" {
		rest := text[1:]
		if rest != "" && !isParamOpStart(rest[0]) {
			pe.Name, _ = scanParamNameText(rest)
			pe.Op.Kind = token.OpLength
			return pe
		}
	}

	indirect := strings.HasPrefix(text, "!") && len(text) > 1
	if indirect {
		text = text[1:]
	}
	name, rest := scanParamNameText(text)
	pe.Name = name
	if indirect {
		pe.Op.Kind = token.OpIndirect
	}
	if rest == "" {
		return pe
	}
	if rest[0] == '[' {
		depth := 1
		i := 1
		for i < len(rest) && depth > 0 {
			switch rest[i] {
			case '[':
				depth++
			case ']':
				depth--
			}
			i++
		}
		pe.Index = literalWord(rest[1 : i-1])
		rest = rest[i:]
	}
	if rest == "" {
		return pe
	}
	parseParamOp(pe, rest)
	return pe
}

func isParamOpStart(b byte) bool {
	switch b {
	case ':', '-', '=', '?', '+', '#', '%', '/', '^', ',':
		return true
	}
	return false
}

// scanParamNameText reads a parameter name, a single special-parameter
// character, or a positional-parameter digit run from the front of s.
func scanParamNameText(s string) (name, rest string) {
	if len(s) > 0 {
		switch s[0] {
		case '@', '*', '#', '?', '-', '!', '$', '_':
			if len(s) == 1 || !isNameCont(s[1]) {
				return s[:1], s[1:]
			}
		}
		if s[0] >= '0' && s[0] <= '9' {
			i := 0
			for i < len(s) && s[i] >= '0' && s[i] <= '9' {
				i++
			}
			return s[:i], s[i:]
		}
	}
	i := 0
	for i < len(s) && isNameCont(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func literalWord(text string) ast.Node {
	return &ast.StringLiteral{Text: text, Quoting: token.Unquoted}
}

// parseParamOp dispatches on the operator prefix of rest (everything after
// the name and any "[index]"). The colon-prefixed forms (":-", ":=", ":?",
// ":+") and the bare forms ("-", "=", "?", "+") map to the same ParamOp kind
// and no record of the colon is kept, so the expander applies the
// unset-or-null test to both: `${x-w}` behaves like `${x:-w}`.
func parseParamOp(pe *ast.ParamExpansion, rest string) {
	switch {
	case strings.HasPrefix(rest, ":-"):
		pe.Op.Kind, pe.Op.Word = token.OpDefaultIfUnset, literalWord(rest[2:])
	case strings.HasPrefix(rest, ":="):
		pe.Op.Kind, pe.Op.Word = token.OpAssignIfUnset, literalWord(rest[2:])
	case strings.HasPrefix(rest, ":?"):
		pe.Op.Kind, pe.Op.Word = token.OpErrorIfUnset, literalWord(rest[2:])
	case strings.HasPrefix(rest, ":+"):
		pe.Op.Kind, pe.Op.Word = token.OpAlternateIfSet, literalWord(rest[2:])
	case strings.HasPrefix(rest, "##"):
		pe.Op.Kind, pe.Op.Word = token.OpTrimPrefixGreedy, literalWord(rest[2:])
	case strings.HasPrefix(rest, "#"):
		pe.Op.Kind, pe.Op.Word = token.OpTrimPrefix, literalWord(rest[1:])
	case strings.HasPrefix(rest, "%%"):
		pe.Op.Kind, pe.Op.Word = token.OpTrimSuffixGreedy, literalWord(rest[2:])
	case strings.HasPrefix(rest, "%"):
		pe.Op.Kind, pe.Op.Word = token.OpTrimSuffix, literalWord(rest[1:])
	case strings.HasPrefix(rest, "//"):
		pe.Op.Kind, pe.Op.Global = token.OpReplace, true
		parseReplaceOperands(pe, rest[2:])
	case strings.HasPrefix(rest, "/"):
		pe.Op.Kind = token.OpReplace
		parseReplaceOperands(pe, rest[1:])
	case strings.HasPrefix(rest, ":"):
		pe.Op.Kind = token.OpSubstring
		parseSubstringOperands(pe, rest[1:])
	case rest == "^^":
		pe.Op.Kind = token.OpCaseUpperAll
	case rest == "^":
		pe.Op.Kind = token.OpCaseUpper
	case rest == ",,":
		pe.Op.Kind = token.OpCaseLowerAll
	case rest == ",":
		pe.Op.Kind = token.OpCaseLower
	case strings.HasPrefix(rest, "-"):
		pe.Op.Kind, pe.Op.Word = token.OpDefaultIfUnset, literalWord(rest[1:])
	case strings.HasPrefix(rest, "="):
		pe.Op.Kind, pe.Op.Word = token.OpAssignIfUnset, literalWord(rest[1:])
	case strings.HasPrefix(rest, "?"):
		pe.Op.Kind, pe.Op.Word = token.OpErrorIfUnset, literalWord(rest[1:])
	case strings.HasPrefix(rest, "+"):
		pe.Op.Kind, pe.Op.Word = token.OpAlternateIfSet, literalWord(rest[1:])
	}
}

func parseReplaceOperands(pe *ast.ParamExpansion, rest string) {
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		pe.Op.Word, pe.Op.Word2 = literalWord(rest[:i]), literalWord(rest[i+1:])
		return
	}
	pe.Op.Word = literalWord(rest)
}

func parseSubstringOperands(pe *ast.ParamExpansion, rest string) {
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		pe.Op.Word, pe.Op.Word2 = literalWord(rest[:i]), literalWord(rest[i+1:])
		return
	}
	pe.Op.Word = literalWord(rest)
}
