package expand

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/token"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// VarLookup is the variable-read surface the Expander needs beyond plain
// scalar Get/Set: array-valued lookups for "$@"/"$*"/"${arr[@]}" and the
// IFS/positional-parameter reads the splitting and brace/tilde steps need.
type VarLookup interface {
	Vars
	GetArray(name string) ([]string, bool)
	IFS() string
	HomeDir() (string, bool)
}

// CommandRunner executes a parsed command list and captures its standard
// output, the way "$(...)" and backtick substitution need (spec §4.4 step
// 4). It is a narrow, one-method interface — rather than importing interp
// directly — purely to avoid an expand<->interp import cycle: interp needs
// expand for its own word evaluation, so expand cannot import interp back.
type CommandRunner interface {
	RunCapture(list ast.Node) (string, error)
}

// Expander runs the full word-expansion pipeline of spec §4.4: brace
// expansion (already materialized into ast.BraceExpansion by the parser),
// tilde expansion, parameter expansion, command substitution, arithmetic
// expansion, IFS field splitting, pathname expansion (globbing), and quote
// removal, applied in that order to every Word a command evaluates.
type Expander struct {
	Vars    VarLookup
	Run     CommandRunner
	Cwd     string
	NoGlob  bool
	Nounset bool
}

// field is one intermediate expansion result plus whether it came from
// quoted source text — quoted fields are exempt from splitting and
// globbing (spec §4.4 steps 6-7). Quoting is tracked per-Word rather than
// per-part: the AST has no quote-context field on ParamExpansion,
// CommandSubstitution, or Arithmetic nodes (the lexer treats "${"/"$("/
// "$((" identically whether or not it is scanning inside a double-quoted
// span — see DESIGN.md's lexer section), so a Word containing any quoted
// StringLiteral part is conservatively treated as quoted in its entirety.
type field struct {
	text   string
	quoted bool
}

// ExpandWord runs the whole pipeline and returns the final argv fields a
// Word contributes once split and glob-expanded.
func (e *Expander) ExpandWord(w *ast.Word) ([]string, error) {
	alts, err := e.expandBraces(w)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, parts := range alts {
		fields, err := e.expandParts(parts)
		if err != nil {
			return nil, err
		}
		joined, quoted := e.joinFields(fields)
		if quoted {
			out = append(out, removeQuotes(joined))
			continue
		}
		for _, piece := range Split(joined, e.Vars.IFS()) {
			out = append(out, e.globOne(piece)...)
		}
	}
	return out, nil
}

// ExpandWordNoSplit runs the pipeline but skips field splitting and
// globbing entirely — used for assignment right-hand sides, case-arm
// patterns (which are matched, not executed), and "[[ ]]" operands.
func (e *Expander) ExpandWordNoSplit(w *ast.Word) (string, error) {
	fields, err := e.expandParts(w.Parts)
	if err != nil {
		return "", err
	}
	joined, _ := e.joinFields(fields)
	return removeQuotes(joined), nil
}

func (e *Expander) expandBraces(w *ast.Word) ([][]ast.Node, error) {
	combos := [][]ast.Node{nil}
	for _, part := range w.Parts {
		be, ok := part.(*ast.BraceExpansion)
		if !ok {
			for i := range combos {
				combos[i] = append(combos[i], part)
			}
			continue
		}
		alts := Braces(be)
		next := make([][]ast.Node, 0, len(combos)*len(alts))
		for _, c := range combos {
			for _, alt := range alts {
				lit := &ast.StringLiteral{Text: alt, Quoting: token.Unquoted}
				cp := append(append([]ast.Node(nil), c...), lit)
				next = append(next, cp)
			}
		}
		combos = next
	}
	return combos, nil
}

func (e *Expander) expandParts(parts []ast.Node) ([]field, error) {
	fields := make([]field, 0, len(parts))
	for _, part := range parts {
		fs, err := e.expandPart(part)
		if err != nil {
			return nil, err
		}
		fields = append(fields, fs...)
	}
	return fields, nil
}

func (e *Expander) expandPart(part ast.Node) ([]field, error) {
	switch x := part.(type) {
	case *ast.StringLiteral:
		text := x.Text
		if x.Quoting == token.Unquoted {
			if expanded, ok := Tilde(text, e.Vars.HomeDir); ok {
				text = expanded
			}
		}
		return []field{{text: text, quoted: x.Quoting != token.Unquoted}}, nil
	case *ast.ParamExpansion:
		return e.expandParam(x)
	case *ast.CommandSubstitution:
		out, err := e.Run.RunCapture(x.List)
		if err != nil {
			return nil, err
		}
		return []field{{text: strings.TrimRight(out, "\n")}}, nil
	case *ast.Arithmetic:
		n, err := EvalArith(x.Expr, e.Vars)
		if err != nil {
			return nil, err
		}
		return []field{{text: itoaInt64(n)}}, nil
	default:
		return nil, oops.Code("expansion_error").Errorf("unexpected word part %T", part)
	}
}

func (e *Expander) expandParam(pe *ast.ParamExpansion) ([]field, error) {
	if pe.Name == "@" || pe.Name == "*" {
		// $@ and $* both join on the first IFS byte; an unquoted word is then
		// split on IFS, which yields one word per element.
		vals, _ := e.Vars.GetArray(pe.Name)
		return []field{{text: strings.Join(vals, firstByte(e.Vars.IFS(), ' '))}}, nil
	}
	if arr, ok := e.Vars.GetArray(pe.Name); ok {
		if pe.Index == nil {
			return []field{{text: strings.Join(arr, firstByte(e.Vars.IFS(), ' '))}}, nil
		}
		lit, _ := pe.Index.(*ast.StringLiteral)
		if lit != nil && (lit.Text == "@" || lit.Text == "*") {
			return []field{{text: strings.Join(arr, firstByte(e.Vars.IFS(), ' '))}}, nil
		}
		idxStr := ""
		if lit != nil {
			idxStr = lit.Text
		}
		n, err := EvalArith(idxStr, e.Vars)
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) >= len(arr) {
			return []field{{text: ""}}, nil
		}
		return []field{{text: arr[int(n)]}}, nil
	}
	v, err := Param(pe, e.Vars, func(n ast.Node) (string, error) {
		return e.ExpandWordNoSplit(&ast.Word{Parts: []ast.Node{n}})
	}, e.Nounset)
	if err != nil {
		return nil, err
	}
	return []field{{text: v}}, nil
}

func (e *Expander) joinFields(fields []field) (string, bool) {
	var b strings.Builder
	quoted := false
	for _, f := range fields {
		b.WriteString(f.text)
		if f.quoted {
			quoted = true
		}
	}
	return b.String(), quoted
}

// globOne expands a single IFS-split field as a filesystem pathname
// pattern, via github.com/gobwas/glob: it needs no POSIX character classes
// (those only matter for case-arm/[[ ]] matching, handled by CompileGlob),
// just fast literal-vs-wildcard matching against directory entries.
func (e *Expander) globOne(pat string) []string {
	if e.NoGlob || !hasGlobMeta(pat) {
		return []string{pat}
	}
	dir, file := filepath.Split(pat)
	base := dir
	if base == "" {
		base = "."
	}
	if !filepath.IsAbs(base) {
		base = filepath.Join(e.Cwd, base)
	}
	g, err := glob.Compile(file, '/')
	if err != nil {
		return []string{pat}
	}
	entries, err := readDirNames(base)
	if err != nil {
		return []string{pat}
	}
	var matches []string
	for _, name := range entries {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(file, ".") {
			continue
		}
		if g.Match(name) {
			matches = append(matches, dir+name)
		}
	}
	if len(matches) == 0 {
		return []string{pat}
	}
	return matches
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, ent := range entries {
		names[i] = ent.Name()
	}
	return names, nil
}

// removeQuotes is a documented no-op: the lexer's single/double-quote
// scanning already strips the surrounding quote characters when it
// produces StringLiteral text (lexSingleQuote/lexDquoteLiteral return only
// the interior bytes), so by the time a field reaches here its quote
// removal (spec §4.4 step 8) has already happened at tokenization time.
func removeQuotes(s string) string { return s }

func firstByte(s string, def byte) string {
	if s == "" {
		return string(def)
	}
	return s[:1]
}

func itoaInt64(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [24]byte
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
