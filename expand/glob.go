package expand

import (
	"regexp"

	"github.com/flashsh/flash/pattern"
)

// Matcher tests whether a string matches a compiled shell pattern, used by
// parameter-expansion trim/replace operators and case-arm matching.
type Matcher interface {
	Match(s string) bool
}

type regexpMatcher struct{ re *regexp.Regexp }

func (m regexpMatcher) Match(s string) bool { return m.re.MatchString(s) }

// CompileGlob compiles a shell wildcard pattern (`*`, `?`, `[...]`, POSIX
// character classes) into a Matcher. It is built on the pattern package's
// shell-glob-to-regexp translator rather than github.com/gobwas/glob,
// because POSIX bracket expressions like `[[:digit:]]` — required by the
// parameter-expansion trim/replace operators this feeds — have no
// equivalent in gobwas/glob's matcher; gobwas/glob is used instead for
// plain filesystem pathname expansion in Expander.globOne (expand.go), which needs no
// character classes.
func CompileGlob(pat string) (Matcher, error) {
	expr, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return regexpMatcher{re: re}, nil
}

// MatchCase reports whether s matches a case-arm or `[[ == ]]` pattern.
func MatchCase(pat, s string) bool {
	m, err := CompileGlob(pat)
	if err != nil {
		return pat == s
	}
	return m.Match(s)
}
