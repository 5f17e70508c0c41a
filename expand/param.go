package expand

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
	"github.com/samber/oops"
)

// nounsetExempt lists the operator kinds that explicitly handle an unset
// parameter themselves (spec §4.4's "${x:-d}"/"${x:=d}"/"${x:+d}" forms,
// and the "${x:?msg}" form, which already produces its own error message).
// "set -u" (spec §7) does not override these.
func nounsetExempt(kind token.ParamOp) bool {
	switch kind {
	case token.OpDefaultIfUnset, token.OpAssignIfUnset, token.OpAlternateIfSet, token.OpErrorIfUnset:
		return true
	default:
		return false
	}
}

// Param expands a ParamExpansion node against the given context, applying
// whichever operator it carries (spec §4.4 step 3). wordEval evaluates an
// operand ast.Node to a single string; it is supplied by the caller (the
// Expander's own word evaluation) so this package doesn't need to import
// anything beyond ast/token for the operator table itself. nounset mirrors
// "set -u" (spec §7): when true, referencing an unset parameter is an
// error, except through the operators nounsetExempt names.
func Param(pe *ast.ParamExpansion, vars Vars, wordEval func(ast.Node) (string, error), nounset bool) (string, error) {
	raw, isSet := vars.Get(pe.Name)
	isNull := raw == ""

	if nounset && !isSet && !nounsetExempt(pe.Op.Kind) {
		return "", oops.Code("expansion_error").With("name", pe.Name).Errorf("%s: unbound variable", pe.Name)
	}

	if pe.Op.Kind == token.OpLength {
		return strconv.Itoa(len(raw)), nil
	}
	if pe.Op.Kind == token.OpIndirect {
		target, ok := vars.Get(raw)
		if !ok {
			return "", nil
		}
		return target, nil
	}

	operand := func() (string, error) {
		if pe.Op.Word == nil {
			return "", nil
		}
		return wordEval(pe.Op.Word)
	}

	switch pe.Op.Kind {
	case token.OpDefaultIfUnset:
		if !isSet || isNull {
			return operand()
		}
		return raw, nil
	case token.OpAssignIfUnset:
		if !isSet || isNull {
			v, err := operand()
			if err != nil {
				return "", err
			}
			if err := vars.Set(pe.Name, v); err != nil {
				return "", err
			}
			return v, nil
		}
		return raw, nil
	case token.OpErrorIfUnset:
		if !isSet || isNull {
			msg, _ := operand()
			if msg == "" {
				msg = "parameter not set"
			}
			return "", oops.Code("expansion_error").With("name", pe.Name).Errorf("%s: %s", pe.Name, msg)
		}
		return raw, nil
	case token.OpAlternateIfSet:
		if isSet && !isNull {
			return operand()
		}
		return "", nil
	case token.OpTrimPrefix, token.OpTrimPrefixGreedy:
		pat, err := operand()
		if err != nil {
			return "", err
		}
		return trimPrefix(raw, pat, pe.Op.Kind == token.OpTrimPrefixGreedy), nil
	case token.OpTrimSuffix, token.OpTrimSuffixGreedy:
		pat, err := operand()
		if err != nil {
			return "", err
		}
		return trimSuffix(raw, pat, pe.Op.Kind == token.OpTrimSuffixGreedy), nil
	case token.OpReplace:
		pat, repl, err := replaceOperands(pe, wordEval)
		if err != nil {
			return "", err
		}
		return replacePattern(raw, pat, repl, pe.Op.Global), nil
	case token.OpSubstring:
		return substring(raw, pe.Op, wordEval)
	case token.OpCaseUpper:
		return caseOp(raw, false, true), nil
	case token.OpCaseUpperAll:
		return caseOp(raw, true, true), nil
	case token.OpCaseLower:
		return caseOp(raw, false, false), nil
	case token.OpCaseLowerAll:
		return caseOp(raw, true, false), nil
	default:
		return raw, nil
	}
}

func replaceOperands(pe *ast.ParamExpansion, wordEval func(ast.Node) (string, error)) (pat, repl string, err error) {
	if pe.Op.Word != nil {
		if pat, err = wordEval(pe.Op.Word); err != nil {
			return "", "", err
		}
	}
	if pe.Op.Word2 != nil {
		if repl, err = wordEval(pe.Op.Word2); err != nil {
			return "", "", err
		}
	}
	return pat, repl, nil
}

func substring(raw string, op ast.ParamExpansionOp, wordEval func(ast.Node) (string, error)) (string, error) {
	runes := []rune(raw)
	offStr, err := wordEval(op.Word)
	if err != nil {
		return "", err
	}
	off, _ := strconv.Atoi(strings.TrimSpace(offStr))
	if off < 0 {
		off = len(runes) + off
	}
	if off < 0 {
		off = 0
	}
	if off > len(runes) {
		off = len(runes)
	}
	if op.Word2 == nil {
		return string(runes[off:]), nil
	}
	lenStr, err := wordEval(op.Word2)
	if err != nil {
		return "", err
	}
	n, _ := strconv.Atoi(strings.TrimSpace(lenStr))
	end := off + n
	if n < 0 {
		end = len(runes) + n
	}
	if end > len(runes) {
		end = len(runes)
	}
	if end < off {
		end = off
	}
	return string(runes[off:end]), nil
}

// trimPrefix/trimSuffix implement "${x#pat}"/"${x##pat}" and their suffix
// counterparts. pat is matched as a shell glob pattern (spec §4.4 step 3);
// greedy forms consume the longest match, non-greedy the shortest.
func trimPrefix(s, pat string, greedy bool) string {
	matcher, err := CompileGlob(pat)
	if err != nil {
		return s
	}
	best := -1
	for i := 0; i <= len(s); i++ {
		if matcher.Match(s[:i]) {
			best = i
			if !greedy {
				break
			}
		}
	}
	if best < 0 {
		return s
	}
	return s[best:]
}

func trimSuffix(s, pat string, greedy bool) string {
	matcher, err := CompileGlob(pat)
	if err != nil {
		return s
	}
	best := -1
	for i := len(s); i >= 0; i-- {
		if matcher.Match(s[i:]) {
			best = i
			if !greedy {
				break
			}
		}
	}
	if best < 0 {
		return s
	}
	return s[:best]
}

func replacePattern(s, pat, repl string, global bool) string {
	if pat == "" {
		return s
	}
	matcher, err := CompileGlob(pat)
	if err != nil {
		return strings.ReplaceAll(s, pat, repl)
	}
	var b strings.Builder
	i := 0
	for i < len(s) {
		matched := false
		for j := len(s); j > i; j-- {
			if matcher.Match(s[i:j]) {
				b.WriteString(repl)
				i = j
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(s[i])
			i++
			continue
		}
		if !global {
			b.WriteString(s[i:])
			return b.String()
		}
	}
	return b.String()
}

func caseOp(s string, all, upper bool) string {
	apply := func(r rune) rune {
		if upper {
			return unicode.ToUpper(r)
		}
		return unicode.ToLower(r)
	}
	if s == "" {
		return s
	}
	runes := []rune(s)
	if !all {
		runes[0] = apply(runes[0])
		return string(runes)
	}
	for i, r := range runes {
		runes[i] = apply(r)
	}
	return string(runes)
}
