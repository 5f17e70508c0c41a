package parser

import (
	"fmt"
	"strings"

	"github.com/flashsh/flash/token"
)

// Error is a single parse error with the position it was detected at.
type Error struct {
	Msg string
	Pos token.Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// ErrorList collects every error found during a parse. The parser
// synchronizes to the next statement separator after each one and keeps
// going, per spec §4.2, but a non-empty ErrorList always means Parse
// returns a nil AST: a partial tree is never handed to evaluation.
type ErrorList []*Error

func (el ErrorList) Error() string {
	parts := make([]string, len(el))
	for i, e := range el {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "\n")
}

func (el ErrorList) Unwrap() []error {
	out := make([]error, len(el))
	for i, e := range el {
		out[i] = e
	}
	return out
}
