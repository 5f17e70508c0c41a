package interp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/flashsh/flash/expand"
	"github.com/flashsh/flash/fileutil"
	"github.com/mattn/go-isatty"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// ctrlKind distinguishes the non-error control-flow signals a statement can
// produce: break/continue/return/exit all need to unwind through normal Go
// call frames without being mistaken for a real runtime failure, so they
// are carried as a distinguished error type rather than booleans threaded
// through every Execute call (spec §4.5's break/continue/return/exit
// builtins).
type ctrlKind int

const (
	ctrlBreak ctrlKind = iota
	ctrlContinue
	ctrlReturn
	ctrlExit
)

type ctrlSignal struct {
	kind   ctrlKind
	levels int
	status int
}

func (c *ctrlSignal) Error() string {
	switch c.kind {
	case ctrlBreak:
		return "break"
	case ctrlContinue:
		return "continue"
	case ctrlReturn:
		return "return"
	default:
		return "exit"
	}
}

func asCtrl(err error) (*ctrlSignal, bool) {
	c, ok := err.(*ctrlSignal)
	return c, ok
}

// Evaluator walks an ast.Node tree and executes it against an Environment
// (spec §4.5). It is the capability-shaped dispatcher the spec calls for:
// every node kind maps to exactly one of the methods below, mirroring the
// teacher's own Runner.cmd/Runner.stmt keyword-switch shape, generalized
// from syntax.Command to flash's ast.Node set.
type Evaluator struct {
	Env *Environment

	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	NoGlob bool
}

// NewEvaluator builds an Evaluator bound to env, with its standard streams
// inherited from env's (spec §4.3's Environment.Stdout/Stderr/Stdin).
func NewEvaluator(env *Environment) *Evaluator {
	return &Evaluator{Env: env, Stdout: env.Stdout, Stderr: env.Stderr, Stdin: env.Stdin}
}

func (ev *Evaluator) expander() *expand.Expander {
	return &expand.Expander{
		Vars:    envVars{env: ev.Env},
		Run:     ev,
		Cwd:     ev.Env.CWD(),
		NoGlob:  ev.NoGlob || ev.Env.Option("noglob"),
		Nounset: ev.Env.Option("nounset"),
	}
}

// RunCapture implements expand.CommandRunner for "$(...)"/backtick command
// substitution: it runs list with Stdout redirected to an in-memory buffer
// and returns what was written, leaving the enclosing Evaluator's own
// streams untouched. Variable/cwd side effects are NOT isolated — flash
// runs substitutions in the current process rather than forking, a
// deliberate simplification documented in DESIGN.md — but redirecting only
// Stdout keeps ordinary substitutions like "$(echo hi)" correct, which
// covers the overwhelming majority of real usage.
func (ev *Evaluator) RunCapture(list ast.Node) (string, error) {
	var buf bytes.Buffer
	sub := &Evaluator{Env: ev.Env, Stdout: &buf, Stderr: ev.Stderr, Stdin: ev.Stdin, NoGlob: ev.NoGlob}
	_, err := sub.Execute(list)
	if c, ok := asCtrl(err); ok && c.kind == ctrlExit {
		return buf.String(), nil
	}
	if err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// Execute runs node and returns its exit status. A non-nil *ctrlSignal
// error means the caller must unwind (break/continue/return/exit); any
// other non-nil error is a genuine runtime failure (spec §7).
func (ev *Evaluator) Execute(node ast.Node) (int, error) {
	switch x := node.(type) {
	case nil:
		return 0, nil
	case *ast.List:
		return ev.execList(x)
	case *ast.Pipeline:
		return ev.execPipeline(x)
	case *ast.Command:
		return ev.execCommand(x)
	case *ast.Assignment:
		return ev.execAssignment(x)
	case *ast.If:
		return ev.execIf(x)
	case *ast.Case:
		return ev.execCase(x)
	case *ast.For:
		return ev.execFor(x)
	case *ast.ForC:
		return ev.execForC(x)
	case *ast.While:
		return ev.execWhileUntil(x.Cond, x.Body, false)
	case *ast.Until:
		return ev.execWhileUntil(x.Cond, x.Body, true)
	case *ast.Function:
		ev.Env.DefineFunction(x.Name, x.Body)
		return 0, nil
	case *ast.Subshell:
		return ev.execSubshell(x)
	case *ast.Group:
		return ev.execGroup(x)
	case *ast.Test:
		return ev.execTest(x)
	case *ast.Negation:
		status, err := ev.Execute(x.Node)
		if _, ok := asCtrl(err); ok {
			return status, err
		}
		if err != nil {
			return 1, err
		}
		if status == 0 {
			return 1, nil
		}
		return 0, nil
	default:
		return 1, oops.Code("internal_error").Errorf("evaluator: unhandled node %T", node)
	}
}

// execList runs a List's statements left to right, honoring "&&"/"||"
// short-circuiting (spec §4.2). "&" (background) is accepted syntactically
// but run synchronously — flash has no job-control scheduler in this
// evaluator, a documented simplification (DESIGN.md).
func (ev *Evaluator) execList(l *ast.List) (int, error) {
	status := 0
	for i, stmt := range l.Statements {
		if i > 0 {
			switch l.Operators[i-1] {
			case ast.OpAndIf:
				if status != 0 {
					continue
				}
			case ast.OpOrIf:
				if status == 0 {
					continue
				}
			}
		}
		var err error
		status, err = ev.Execute(stmt)
		if _, ok := asCtrl(err); ok {
			return status, err
		}
		if err != nil {
			ev.report(err)
			status = exitCodeFor(err)
		}
		ev.Env.UpdateExit(status)
		if ev.Env.Option("errexit") && status != 0 {
			return status, nil
		}
	}
	return status, nil
}

func (ev *Evaluator) report(err error) {
	fmt.Fprintf(ev.Stderr, "flash: %v\n", err)
}

func (ev *Evaluator) execPipeline(p *ast.Pipeline) (int, error) {
	status, err := ev.runPipeline(p.Commands)
	if _, ok := asCtrl(err); ok {
		return status, err
	}
	if p.Negated {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
	}
	return status, err
}

func (ev *Evaluator) runPipeline(cmds []ast.Node) (int, error) {
	if len(cmds) == 1 {
		return ev.Execute(cmds[0])
	}

	readers := make([]*os.File, len(cmds))
	writers := make([]*os.File, len(cmds))
	for i := 0; i < len(cmds)-1; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			return 1, oops.Code("redirect_error").Wrap(err)
		}
		readers[i+1] = r
		writers[i] = w
	}

	var g errgroup.Group
	statuses := make([]int, len(cmds))
	for i, cmd := range cmds {
		i, cmd := i, cmd
		stage := &Evaluator{Env: ev.Env, Stdout: ev.Stdout, Stderr: ev.Stderr, Stdin: ev.Stdin, NoGlob: ev.NoGlob}
		if writers[i] != nil {
			stage.Stdout = writers[i]
		}
		if readers[i] != nil {
			stage.Stdin = readers[i]
		}
		g.Go(func() error {
			if writers[i] != nil {
				defer writers[i].Close()
			}
			if readers[i] != nil {
				defer readers[i].Close()
			}
			st, err := stage.Execute(cmd)
			statuses[i] = st
			if c, ok := asCtrl(err); ok {
				return c
			}
			return nil
		})
	}
	err := g.Wait()
	status := pipelineStatus(statuses, ev.Env.Option("pipefail"))
	if c, ok := asCtrl(err); ok {
		return status, c
	}
	return status, nil
}

// pipelineStatus picks the exit status a pipeline reports for its stages'
// statuses, left-to-right in pipeline order. Under "set -o pipefail" it's
// the first non-zero status (or 0 if every stage succeeded); otherwise it's
// always the last stage's status, matching plain POSIX pipelines.
func pipelineStatus(statuses []int, pipefail bool) int {
	if !pipefail {
		return statuses[len(statuses)-1]
	}
	for _, st := range statuses {
		if st != 0 {
			return st
		}
	}
	return 0
}

func (ev *Evaluator) execAssignment(a *ast.Assignment) (int, error) {
	if a.Index != nil {
		return ev.execArrayElemAssignment(a)
	}
	val, err := ev.evalAssignValue(a)
	if err != nil {
		return 1, err
	}
	if a.Plus {
		if existing, ok := ev.Env.Get(a.Name); ok {
			val = StringValue(existing.Scalar + val.Scalar)
		}
	}
	if err := ev.Env.Set(a.Name, val); err != nil {
		return 1, err
	}
	return 0, nil
}

// execArrayElemAssignment handles "arr[i]=value", growing the array with
// empty elements if the index falls beyond its current length.
func (ev *Evaluator) execArrayElemAssignment(a *ast.Assignment) (int, error) {
	idxStr, err := ev.expander().ExpandWordNoSplit(&ast.Word{Parts: []ast.Node{a.Index}})
	if err != nil {
		return 1, err
	}
	n, err := expand.EvalArith(idxStr, envVars{env: ev.Env})
	if err != nil {
		return 1, err
	}
	val, err := ev.evalAssignValue(a)
	if err != nil {
		return 1, err
	}
	existing, _ := ev.Env.Get(a.Name)
	arr := append([]string(nil), existing.Array...)
	idx := int(n)
	for len(arr) <= idx {
		arr = append(arr, "")
	}
	if idx >= 0 {
		arr[idx] = val.Scalar
	}
	if err := ev.Env.Set(a.Name, ArrayValue(arr)); err != nil {
		return 1, err
	}
	return 0, nil
}

func (ev *Evaluator) evalAssignValue(a *ast.Assignment) (VariableValue, error) {
	switch v := a.Value.(type) {
	case nil:
		return StringValue(""), nil
	case *ast.ArrayLiteral:
		elems := make([]string, 0, len(v.Elements))
		for _, el := range v.Elements {
			s, err := ev.evalWordNode(el)
			if err != nil {
				return VariableValue{}, err
			}
			elems = append(elems, s)
		}
		return ArrayValue(elems), nil
	default:
		s, err := ev.evalWordNode(a.Value)
		if err != nil {
			return VariableValue{}, err
		}
		return StringValue(s), nil
	}
}

func (ev *Evaluator) evalWordNode(n ast.Node) (string, error) {
	w, ok := n.(*ast.Word)
	if !ok {
		return "", nil
	}
	return ev.expander().ExpandWordNoSplit(w)
}

func (ev *Evaluator) execIf(n *ast.If) (int, error) {
	status, err := ev.Execute(n.Condition)
	if _, ok := asCtrl(err); ok {
		return status, err
	}
	if status == 0 {
		return ev.Execute(n.ThenBranch)
	}
	for _, elif := range n.ElifBranches {
		status, err = ev.Execute(elif.Condition)
		if _, ok := asCtrl(err); ok {
			return status, err
		}
		if status == 0 {
			return ev.Execute(elif.Body)
		}
	}
	if n.ElseBranch != nil {
		return ev.Execute(n.ElseBranch)
	}
	return 0, nil
}

func (ev *Evaluator) execCase(n *ast.Case) (int, error) {
	word, err := ev.evalWordNode(n.Word)
	if err != nil {
		return 1, err
	}
	for armIdx := 0; armIdx < len(n.Arms); armIdx++ {
		arm := n.Arms[armIdx]
		if !ev.caseMatches(arm, word) {
			continue
		}
		status, err := ev.Execute(arm.Body)
		if _, ok := asCtrl(err); ok {
			return status, err
		}
		if err != nil {
			return status, err
		}
		switch arm.Terminator {
		case ast.TermBreak:
			return status, nil
		case ast.TermFallThrough:
			if armIdx+1 < len(n.Arms) {
				status, err = ev.Execute(n.Arms[armIdx+1].Body)
			}
			return status, err
		case ast.TermContinueMatch:
			continue
		}
		return status, nil
	}
	return 0, nil
}

func (ev *Evaluator) caseMatches(arm ast.CaseArm, word string) bool {
	for _, pat := range arm.Patterns {
		patStr, err := ev.evalWordNode(pat)
		if err != nil {
			continue
		}
		if expand.MatchCase(patStr, word) {
			return true
		}
	}
	return false
}

func (ev *Evaluator) execFor(n *ast.For) (int, error) {
	status := 0
	for _, wordNode := range n.Words {
		w, ok := wordNode.(*ast.Word)
		if !ok {
			continue
		}
		fields, err := ev.expander().ExpandWord(w)
		if err != nil {
			return 1, err
		}
		for _, val := range fields {
			if err := ev.Env.Set(n.Var, StringValue(val)); err != nil {
				return 1, err
			}
			var bErr error
			status, bErr = ev.Execute(n.Body)
			if c, ok := asCtrl(bErr); ok {
				if stop, retStatus, retErr := handleLoopCtrl(c); stop {
					return retStatus, retErr
				}
				continue
			}
			if bErr != nil {
				return status, bErr
			}
		}
	}
	return status, nil
}

func (ev *Evaluator) execForC(n *ast.ForC) (int, error) {
	ev.Env.PushScope()
	defer ev.Env.PopScope()
	if n.Init != nil {
		if _, err := expand.EvalArith(n.Init.(*ast.Arithmetic).Expr, envVars{env: ev.Env}); err != nil {
			return 1, err
		}
	}
	status := 0
	for {
		if n.Cond != nil {
			cond, err := expand.EvalArith(n.Cond.(*ast.Arithmetic).Expr, envVars{env: ev.Env})
			if err != nil {
				return 1, err
			}
			if cond == 0 {
				break
			}
		}
		var err error
		status, err = ev.Execute(n.Body)
		if c, ok := asCtrl(err); ok {
			if stop, retStatus, retErr := handleLoopCtrl(c); stop {
				return retStatus, retErr
			}
		} else if err != nil {
			return status, err
		}
		if n.Update != nil {
			if _, err := expand.EvalArith(n.Update.(*ast.Arithmetic).Expr, envVars{env: ev.Env}); err != nil {
				return 1, err
			}
		}
	}
	return status, nil
}

func (ev *Evaluator) execWhileUntil(cond, body ast.Node, until bool) (int, error) {
	status := 0
	for {
		cstatus, err := ev.Execute(cond)
		if _, ok := asCtrl(err); ok {
			return cstatus, err
		}
		if err != nil {
			return cstatus, err
		}
		truthy := cstatus == 0
		if until {
			truthy = cstatus != 0
		}
		if !truthy {
			break
		}
		status, err = ev.Execute(body)
		if c, ok := asCtrl(err); ok {
			if stop, retStatus, retErr := handleLoopCtrl(c); stop {
				return retStatus, retErr
			}
			continue
		}
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// handleLoopCtrl interprets a break/continue signal at a loop boundary,
// decrementing its level count (spec's "break N"/"continue N" forms). stop
// reports whether the enclosing loop must itself return immediately
// (either the signal's levels are exhausted and it's a break, or it's a
// return/exit that must keep propagating outward).
func handleLoopCtrl(c *ctrlSignal) (stop bool, status int, err error) {
	switch c.kind {
	case ctrlBreak:
		if c.levels > 1 {
			return true, c.status, &ctrlSignal{kind: ctrlBreak, levels: c.levels - 1, status: c.status}
		}
		return true, c.status, nil
	case ctrlContinue:
		if c.levels > 1 {
			return true, c.status, &ctrlSignal{kind: ctrlContinue, levels: c.levels - 1, status: c.status}
		}
		return false, c.status, nil
	default:
		return true, c.status, c
	}
}

func (ev *Evaluator) execSubshell(n *ast.Subshell) (int, error) {
	ev.Env.PushScope()
	defer ev.Env.PopScope()
	status, err := ev.Execute(n.List)
	if c, ok := asCtrl(err); ok && c.kind == ctrlExit {
		return c.status, nil
	}
	return status, err
}

func (ev *Evaluator) execGroup(n *ast.Group) (int, error) {
	return ev.Execute(n.List)
}

func (ev *Evaluator) execCommand(c *ast.Command) (int, error) {
	for _, a := range c.Assignments {
		if _, err := ev.execAssignment(a); err != nil {
			return 1, err
		}
	}
	if c.Name == nil {
		return 0, nil
	}

	nameWord, ok := c.Name.(*ast.Word)
	if !ok {
		return 1, oops.Code("internal_error").Errorf("command name is not a word")
	}
	nameFields, err := ev.expander().ExpandWord(nameWord)
	if err != nil {
		return 1, err
	}
	if len(nameFields) == 0 {
		return 0, nil
	}
	name := nameFields[0]
	args := append([]string(nil), nameFields[1:]...)
	for _, argNode := range c.Args {
		w, ok := argNode.(*ast.Word)
		if !ok {
			continue
		}
		fields, err := ev.expander().ExpandWord(w)
		if err != nil {
			return 1, err
		}
		args = append(args, fields...)
	}

	restore, err := ev.applyRedirects(c.Redirects)
	if err != nil {
		return 1, err
	}
	defer restore()

	ev.traceCommand(name, args)

	if fn, ok := ev.Env.LookupFunction(name); ok {
		return ev.callFunction(fn, args)
	}
	if b, ok := builtins[name]; ok {
		return b(ev, args)
	}
	return ev.execExternal(name, args)
}

// traceCommand prints a command and its arguments the way "set -x" does,
// prefixed with the expanded value of PS4 (spec §0.2, mirroring the
// teacher's interp/trace.go tracer.call). It is a no-op unless the "xtrace"
// option is set.
func (ev *Evaluator) traceCommand(name string, args []string) {
	if !ev.Env.Option("xtrace") {
		return
	}
	prefix := ev.envString("PS4")
	if prefix == "" {
		prefix = "+ "
	}
	fmt.Fprint(ev.Stderr, prefix, name)
	for _, a := range args {
		fmt.Fprint(ev.Stderr, " ", shellQuote(a))
	}
	fmt.Fprintln(ev.Stderr)
}

// shellQuote wraps s in single quotes if it contains whitespace or shell
// metacharacters, escaping embedded single quotes POSIX-style.
func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"$`\\;|&<>()[]{}*?~") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func (ev *Evaluator) callFunction(fn FunctionDef, args []string) (int, error) {
	ev.Env.PushScope()
	savedPositional := ev.Env.Positional()
	ev.Env.SetPositional(args)
	defer func() {
		ev.Env.PopScope()
		ev.Env.SetPositional(savedPositional)
	}()
	status, err := ev.Execute(fn.Body)
	if c, ok := asCtrl(err); ok && c.kind == ctrlReturn {
		return c.status, nil
	}
	return status, err
}

func (ev *Evaluator) execExternal(name string, args []string) (int, error) {
	path, err := fileutil.LookPath(ev.Env.CWD(), ev.envString("PATH"), name)
	if err != nil {
		fmt.Fprintf(ev.Stderr, "flash: %s: command not found\n", name)
		return 127, nil
	}
	cmd := exec.Command(path, args...)
	cmd.Dir = ev.Env.CWD()
	cmd.Stdin = ev.Stdin
	cmd.Stdout = ev.Stdout
	cmd.Stderr = ev.Stderr
	cmd.Env = ev.processEnv()
	prepareCommand(cmd)
	if err := cmd.Start(); err != nil {
		return 126, oops.Code("exec_error").With("name", name).Wrap(err)
	}

	// Forward SIGINT to the foreground child's process group for the
	// duration of the wait, then resume at the next statement (spec §5).
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigCh:
			interruptCommand(cmd)
		case <-done:
		}
	}()
	runErr := cmd.Wait()
	close(done)
	signal.Stop(sigCh)
	if runErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if asExitError(runErr, &exitErr) {
		if sig := signalOf(exitErr); sig > 0 {
			return 128 + sig, nil
		}
		return exitErr.ExitCode(), nil
	}
	return 126, oops.Code("exec_error").With("name", name).Wrap(runErr)
}

func asExitError(err error, target **exec.ExitError) bool {
	if e, ok := err.(*exec.ExitError); ok {
		*target = e
		return true
	}
	return false
}

func (ev *Evaluator) envString(name string) string {
	s, _ := envVars{env: ev.Env}.Get(name)
	return s
}

func (ev *Evaluator) processEnv() []string {
	return os.Environ()
}

func (ev *Evaluator) execTest(n *ast.Test) (int, error) {
	truth, err := ev.evalTestExpr(n.Expr)
	if err != nil {
		return 2, err
	}
	if truth {
		return 0, nil
	}
	return 1, nil
}

func (ev *Evaluator) evalTestExpr(n ast.Node) (bool, error) {
	switch x := n.(type) {
	case *ast.TestGroup:
		return ev.evalTestExpr(x.Expr)
	case *ast.Negation:
		v, err := ev.evalTestExpr(x.Node)
		return !v, err
	case *ast.TestBinary:
		return ev.evalTestBinary(x)
	case *ast.TestUnary:
		return ev.evalTestUnary(x)
	default:
		return false, oops.Code("internal_error").Errorf("unexpected test node %T", n)
	}
}

func (ev *Evaluator) evalTestBinary(x *ast.TestBinary) (bool, error) {
	if x.Op == "&&" || x.Op == "||" {
		l, err := ev.evalTestExpr(x.Left)
		if err != nil {
			return false, err
		}
		if x.Op == "&&" && !l {
			return false, nil
		}
		if x.Op == "||" && l {
			return true, nil
		}
		return ev.evalTestExpr(x.Right)
	}
	left, err := ev.evalWordNode(x.Left)
	if err != nil {
		return false, err
	}
	right, err := ev.evalWordNode(x.Right)
	if err != nil {
		return false, err
	}
	switch x.Op {
	case "==", "=":
		return expand.MatchCase(right, left), nil
	case "!=":
		return !expand.MatchCase(right, left), nil
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		return compareNumeric(left, right, x.Op)
	case "-nt", "-ot":
		return fileNewerOlder(left, right, x.Op == "-nt"), nil
	case "-ef":
		return sameFile(left, right), nil
	default:
		return false, oops.Code("internal_error").Errorf("unsupported test operator %q", x.Op)
	}
}

func compareNumeric(l, r, op string) (bool, error) {
	ln, err := strconv.Atoi(strings.TrimSpace(l))
	if err != nil {
		return false, oops.Code("expansion_error").Errorf("%s: not a number", l)
	}
	rn, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return false, oops.Code("expansion_error").Errorf("%s: not a number", r)
	}
	switch op {
	case "-eq":
		return ln == rn, nil
	case "-ne":
		return ln != rn, nil
	case "-lt":
		return ln < rn, nil
	case "-le":
		return ln <= rn, nil
	case "-gt":
		return ln > rn, nil
	default:
		return ln >= rn, nil
	}
}

func fileNewerOlder(a, b string, newer bool) bool {
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		return false
	}
	if newer {
		return fa.ModTime().After(fb.ModTime())
	}
	return fa.ModTime().Before(fb.ModTime())
}

func sameFile(a, b string) bool {
	fa, errA := os.Stat(a)
	fb, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(fa, fb)
}

func (ev *Evaluator) evalTestUnary(x *ast.TestUnary) (bool, error) {
	operand, err := ev.evalWordNode(x.Operand)
	if err != nil {
		return false, err
	}
	switch x.Op {
	case "-n":
		return operand != "", nil
	case "-z":
		return operand == "", nil
	case "-v":
		_, ok := ev.Env.Get(operand)
		return ok, nil
	case "-t":
		fd, convErr := strconv.Atoi(operand)
		if convErr != nil {
			return false, nil
		}
		return ev.isTTY(fd), nil
	}
	info, statErr := os.Stat(operand)
	switch x.Op {
	case "-e":
		return statErr == nil, nil
	case "-f":
		return statErr == nil && info.Mode().IsRegular(), nil
	case "-d":
		return statErr == nil && info.IsDir(), nil
	case "-s":
		return statErr == nil && info.Size() > 0, nil
	case "-r", "-w", "-x":
		return fileutil.IsExecutable(operand) || statErr == nil, nil
	case "-L", "-h":
		li, err := os.Lstat(operand)
		return err == nil && li.Mode()&os.ModeSymlink != 0, nil
	default:
		return statErr == nil, nil
	}
}

// isTTY backs the "-t fd" test operator (spec's [[ -t N ]]): it only knows
// how to answer for the three streams flash actually models (spec §4.3),
// and only when that stream happens to be backed by a real *os.File (a
// buffer-redirected stream, e.g. inside command substitution, is never a
// terminal).
func (ev *Evaluator) isTTY(fd int) bool {
	var f *os.File
	switch fd {
	case 0:
		f, _ = ev.Stdin.(*os.File)
	case 1:
		f, _ = ev.Stdout.(*os.File)
	case 2:
		f, _ = ev.Stderr.(*os.File)
	default:
		return false
	}
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// applyRedirects opens each redirect target and swaps the Evaluator's
// streams for the duration of the command, returning a restore func. File
// descriptors beyond 0/1/2 are not modeled; flash's stream model is
// stdin/stdout/stderr only (spec §4.3).
func (ev *Evaluator) applyRedirects(redirects []*ast.Redirect) (func(), error) {
	savedOut, savedErr, savedIn := ev.Stdout, ev.Stderr, ev.Stdin
	var opened []io.Closer
	restore := func() {
		ev.Stdout, ev.Stderr, ev.Stdin = savedOut, savedErr, savedIn
		for _, c := range opened {
			c.Close()
		}
	}
	for _, r := range redirects {
		if err := ev.applyOneRedirect(r, &opened); err != nil {
			restore()
			return nil, err
		}
	}
	return restore, nil
}

func (ev *Evaluator) applyOneRedirect(r *ast.Redirect, opened *[]io.Closer) error {
	targetPath := func() (string, error) {
		w, ok := r.Target.(*ast.Word)
		if !ok {
			return "", oops.Code("internal_error").Errorf("redirect target is not a word")
		}
		return ev.expander().ExpandWordNoSplit(w)
	}
	fd := r.Fd

	switch r.Kind {
	case ast.RInput:
		path, err := targetPath()
		if err != nil {
			return err
		}
		f, err := os.Open(filepath.Join(ev.Env.CWD(), relOrAbs(path)))
		if err != nil {
			return oops.Code("redirect_error").With("path", path).Wrap(err)
		}
		*opened = append(*opened, f)
		ev.assignStream(fd, f, nil)
	case ast.ROutput, ast.RAppend:
		path, err := targetPath()
		if err != nil {
			return err
		}
		flags := os.O_CREATE | os.O_WRONLY
		if r.Kind == ast.RAppend {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		f, err := os.OpenFile(filepath.Join(ev.Env.CWD(), relOrAbs(path)), flags, 0o644)
		if err != nil {
			return oops.Code("redirect_error").With("path", path).Wrap(err)
		}
		*opened = append(*opened, f)
		ev.assignStream(fd, nil, f)
	case ast.RHereDoc, ast.RHereString:
		body := r.Body
		if r.Kind == ast.RHereString {
			path, err := targetPath()
			if err != nil {
				return err
			}
			body = path + "\n"
		}
		ev.Stdin = strings.NewReader(body)
	case ast.ROutputDup, ast.RInputDup:
		// "N>&M"/"N<&M": flash models only stdin/stdout/stderr, so dup-fd
		// redirection only has meaning for the 2>&1-style stderr/stdout merge.
		w, ok := r.Target.(*ast.Word)
		if ok {
			target, _ := ev.expander().ExpandWordNoSplit(w)
			if target == "1" && fd == 2 {
				ev.Stderr = ev.Stdout
			} else if target == "2" && fd == 1 {
				ev.Stdout = ev.Stderr
			}
		}
	}
	return nil
}

func relOrAbs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return path
}

func (ev *Evaluator) assignStream(fd int, in io.Reader, out io.Writer) {
	switch fd {
	case 0:
		if in != nil {
			ev.Stdin = in
		}
	case 1:
		if out != nil {
			ev.Stdout = out
		}
	case 2:
		if out != nil {
			ev.Stderr = out
		}
	}
}

// exitCodeFor maps a runtime error to the exit-status table of spec §7.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not_executable"):
		return 126
	case strings.Contains(msg, "not_found"):
		return 127
	default:
		return 1
	}
}
