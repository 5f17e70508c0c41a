package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/parser"
	"github.com/samber/oops"
)

// Interpreter is the public facade over Environment+Evaluator (spec §4.6):
// construction, one-shot execution, and the interactive REPL loop all go
// through here so callers (cmd/flash, the shell package) never touch the
// parser or evaluator packages directly.
type Interpreter struct {
	Env *Environment
	ev  *Evaluator
}

// New builds an Interpreter for a script named scriptName with the given
// positional parameters (spec §3.3's $0/$1../$#).
func New(scriptName string, args []string) *Interpreter {
	env := NewEnvironment(scriptName, args)
	return &Interpreter{Env: env, ev: NewEvaluator(env)}
}

// SetStreams redirects the interpreter's stdio. Passing nil for any stream
// leaves it unchanged.
func (it *Interpreter) SetStreams(stdin io.Reader, stdout, stderr io.Writer) {
	if stdin != nil {
		it.ev.Stdin = stdin
	}
	if stdout != nil {
		it.ev.Stdout = stdout
	}
	if stderr != nil {
		it.ev.Stderr = stderr
	}
}

// Execute parses and runs src as a complete script, returning its final
// exit status (spec §4.6, §7). A parse error yields a SyntaxError-coded
// failure rather than a panic; "exit N" inside src is caught here and
// turned into a plain status rather than propagating further.
func (it *Interpreter) Execute(src string) (int, error) {
	return it.Env.interpretString(it.ev, src)
}

// interpretString is the shared parse+run path used by Interpreter.Execute
// and the eval/source/"-c" builtins, which all need to run a fresh chunk
// of shell source against the *same* Environment rather than a new one.
func (e *Environment) interpretString(ev *Evaluator, src string) (int, error) {
	list, err := parser.New([]byte(src)).Parse()
	if err != nil {
		return 2, oops.Code("syntax_error").Wrap(err)
	}
	status, runErr := ev.Execute(list)
	if c, ok := asCtrl(runErr); ok {
		return c.status, nil
	}
	if runErr != nil {
		return exitCodeFor(runErr), runErr
	}
	return status, nil
}

// RunInteractive drives a simple read-eval-print loop over prompt/in/out,
// with no line editing (spec §4.6, §6). cmd/flash calls it only when
// chzyer/readline cannot be initialized; its readline loop runs each line
// through Execute instead.
func (it *Interpreter) RunInteractive(in io.Reader, out io.Writer, prompt func() string) error {
	return it.RunInteractiveWithEvaluator(in, out, prompt, it.ev)
}

// RunInteractiveWithEvaluator is RunInteractive generalized over a caller-
// supplied Evaluator, letting cmd/flash wire its own readline-backed
// Stdin/Stdout into the same Environment (spec §4.6's
// run_interactive_with_evaluator).
func (it *Interpreter) RunInteractiveWithEvaluator(in io.Reader, out io.Writer, prompt func() string, ev *Evaluator) error {
	readLine := func() (string, bool) {
		line := make([]byte, 0, 64)
		b := make([]byte, 1)
		for {
			n, err := in.Read(b)
			if n > 0 {
				if b[0] == '\n' {
					return string(line), true
				}
				line = append(line, b[0])
			}
			if err != nil {
				if len(line) > 0 {
					return string(line), true
				}
				return "", false
			}
		}
	}
	for {
		if prompt != nil {
			fmt.Fprint(out, prompt())
		}
		line, ok := readLine()
		if !ok {
			return nil
		}
		status, err := it.Env.interpretString(ev, line)
		if err != nil {
			fmt.Fprintf(ev.Stderr, "flash: %v\n", err)
		}
		it.Env.UpdateExit(status)
	}
}

// EvaluateWithEvaluator runs src against a caller-chosen Evaluator (e.g. one
// with substituted streams), returning its exit status (spec §4.6).
func (it *Interpreter) EvaluateWithEvaluator(ev *Evaluator, src string) (int, error) {
	return it.Env.interpretString(ev, src)
}

// CaptureCommandOutput runs src and returns what it wrote to stdout, the
// way command substitution does internally (spec §4.6) but exposed for
// embedders that want a one-shot "run this and give me the text" call.
func (it *Interpreter) CaptureCommandOutput(src string) (string, error) {
	list, err := parser.New([]byte(src)).Parse()
	if err != nil {
		return "", oops.Code("syntax_error").Wrap(err)
	}
	return it.ev.RunCapture(list)
}

// ExpandVariables expands the words of a snippet of shell source (parameter,
// command, arithmetic, brace, tilde, and pathname expansion) without
// executing it as a command, and returns the resulting text with expanded
// words rejoined by a single space (spec §4.6).
func (it *Interpreter) ExpandVariables(src string) (string, error) {
	list, err := parser.New([]byte(src)).Parse()
	if err != nil {
		return "", oops.Code("syntax_error").Wrap(err)
	}
	var words []ast.Node
	ast.Walk(visitFunc(func(n ast.Node) bool {
		if w, ok := n.(*ast.Word); ok {
			words = append(words, w)
			return false
		}
		return true
	}), list)
	exp := it.ev.expander()
	parts := make([]string, 0, len(words))
	for _, n := range words {
		s, err := exp.ExpandWordNoSplit(n.(*ast.Word))
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " "), nil
}

type visitFunc func(ast.Node) bool

func (f visitFunc) Visit(n ast.Node) ast.Visitor {
	if n == nil {
		return nil
	}
	if f(n) {
		return f
	}
	return nil
}
