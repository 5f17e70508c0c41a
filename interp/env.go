// Package interp implements flash's evaluator and the Interpreter facade
// (spec §4.3, §4.5, §4.6): a layered variable Environment, a capability-
// shaped Evaluator dispatched over ast.Node, and process/pipeline execution.
package interp

import (
	"os"
	"strconv"
	"strings"

	"github.com/flashsh/flash/ast"
	"github.com/samber/oops"
)

// VariableValue is the tagged value a variable holds (spec §3.3).
type VariableValue struct {
	Scalar string
	Array  []string
	Assoc  map[string]string

	Kind ValueKind
}

type ValueKind int

const (
	KindString ValueKind = iota
	KindArray
	KindAssoc
)

func StringValue(s string) VariableValue { return VariableValue{Scalar: s, Kind: KindString} }
func ArrayValue(a []string) VariableValue {
	return VariableValue{Array: append([]string(nil), a...), Kind: KindArray}
}

// VariableFlags mirrors spec §3.3's flag set.
type VariableFlags struct {
	Readonly bool
	Export   bool
	Integer  bool
	Array    bool
	Assoc    bool
}

type variable struct {
	Value VariableValue
	Flags VariableFlags
}

// scope is one layer of the variable stack.
type scope struct {
	vars map[string]*variable
}

func newScope() *scope { return &scope{vars: map[string]*variable{}} }

// Environment is flash's layered variable store plus shell-wide state:
// positional parameters, the last exit status, the current working
// directory, and the function/alias tables (spec §3.3).
type Environment struct {
	scopes []*scope

	positional []string
	scriptName string

	lastStatus int
	lastBgPID  int

	cwd    string
	oldCwd string

	options map[string]bool // set -e, -u, -x, -o pipefail, -o noglob, ...

	functions map[string]FunctionDef
	aliases   map[string]string

	Stdout, Stderr *os.File
	Stdin          *os.File
}

// NewEnvironment builds an Environment with the auto-set startup variables
// from spec §3.3 and the process's current environment mirrored in as
// exported variables.
func NewEnvironment(scriptName string, args []string) *Environment {
	e := &Environment{
		scopes:     []*scope{newScope()},
		positional: append([]string(nil), args...),
		scriptName: scriptName,
		options:    map[string]bool{},
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
	}
	for _, kv := range os.Environ() {
		if i := strings.IndexByte(kv, '='); i >= 0 {
			e.setRaw(kv[:i], StringValue(kv[i+1:]), VariableFlags{Export: true}, 0)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}
	e.cwd = cwd

	shlvl := 1
	if v, ok := e.Get("SHLVL"); ok {
		if n, err := strconv.Atoi(v.Scalar); err == nil {
			shlvl = n + 1
		}
	}
	e.setRaw("SHLVL", StringValue(strconv.Itoa(shlvl)), VariableFlags{Export: true}, 0)
	e.setRaw("PWD", StringValue(cwd), VariableFlags{Export: true}, 0)
	e.setRaw("SHELL", StringValue("/bin/flash"), VariableFlags{Export: true}, 0)
	e.setRaw("FLASH_VERSION", StringValue("0.1.0"), VariableFlags{}, 0)
	e.setRaw("MACHTYPE", StringValue("x86_64"), VariableFlags{}, 0)
	e.setRaw("HOSTTYPE", StringValue("x86_64"), VariableFlags{}, 0)
	e.setRaw("OSTYPE", StringValue("linux-gnu"), VariableFlags{}, 0)
	if _, ok := e.Get("IFS"); !ok {
		e.setRaw("IFS", StringValue(" \t\n"), VariableFlags{}, 0)
	}
	if _, ok := e.Get("PS1"); !ok {
		e.setRaw("PS1", StringValue("\\u@\\h:\\w\\$ "), VariableFlags{}, 0)
	}
	if _, ok := e.Get("PS2"); !ok {
		e.setRaw("PS2", StringValue("> "), VariableFlags{}, 0)
	}
	if _, ok := e.Get("PS4"); !ok {
		e.setRaw("PS4", StringValue("+ "), VariableFlags{}, 0)
	}
	if _, ok := e.Get("HISTFILE"); !ok {
		home, _ := os.UserHomeDir()
		e.setRaw("HISTFILE", StringValue(home+"/.flash_history"), VariableFlags{}, 0)
	}
	if _, ok := e.Get("HISTSIZE"); !ok {
		e.setRaw("HISTSIZE", StringValue("500"), VariableFlags{}, 0)
	}
	if _, ok := e.Get("HISTFILESIZE"); !ok {
		e.setRaw("HISTFILESIZE", StringValue("500"), VariableFlags{}, 0)
	}
	e.functions = map[string]FunctionDef{}
	e.aliases = map[string]string{}
	return e
}

// FunctionDef is the function table's value type (spec §3.3): a function
// is just its name and the compound-command body the parser produced for
// it. ast is a leaf package with no dependency on interp, so there is no
// import-cycle reason to erase the type here.
type FunctionDef struct {
	Name string
	Body ast.Node
}

func (e *Environment) lookupLayered(name string) (*variable, int) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i].vars[name]; ok {
			return v, i
		}
	}
	return nil, -1
}

// Get returns a variable's value, scanning scopes from innermost outward.
func (e *Environment) Get(name string) (VariableValue, bool) {
	if v, _ := e.lookupLayered(name); v != nil {
		return v.Value, true
	}
	return VariableValue{}, false
}

// GetFlags returns a variable's flags, or the zero value if unset.
func (e *Environment) GetFlags(name string) VariableFlags {
	if v, _ := e.lookupLayered(name); v != nil {
		return v.Flags
	}
	return VariableFlags{}
}

func (e *Environment) setRaw(name string, val VariableValue, flags VariableFlags, layer int) {
	if layer < 0 {
		layer = len(e.scopes) - 1
	}
	s := e.scopes[layer]
	if existing, ok := s.vars[name]; ok {
		existing.Value = val
		if flags.Export {
			existing.Flags.Export = true
		}
	} else {
		s.vars[name] = &variable{Value: val, Flags: flags}
	}
	if s.vars[name].Flags.Export {
		os.Setenv(name, val.Scalar)
	}
}

// ErrReadonly is returned (wrapped with a position-free oops context) when a
// write targets a readonly variable (spec §3.3 invariant, §7 ReadonlyViolation).
var ErrReadonly = oops.Code("readonly_violation").Errorf("readonly variable")

// SetLocal writes into the innermost scope.
func (e *Environment) SetLocal(name string, val VariableValue) error {
	if v, _ := e.lookupLayered(name); v != nil && v.Flags.Readonly {
		return oops.Code("readonly_violation").With("name", name).Wrap(ErrReadonly)
	}
	e.setRaw(name, val, VariableFlags{}, len(e.scopes)-1)
	return nil
}

// SetGlobal writes into the outermost scope, honoring `declare -g` and
// export-propagation semantics (spec §4.3).
func (e *Environment) SetGlobal(name string, val VariableValue) error {
	if v, _ := e.lookupLayered(name); v != nil && v.Flags.Readonly {
		return oops.Code("readonly_violation").With("name", name).Wrap(ErrReadonly)
	}
	e.setRaw(name, val, VariableFlags{}, 0)
	return nil
}

// Set writes to whichever scope already holds the variable (outer scopes
// included), or the innermost scope for a brand-new variable — ordinary
// assignment semantics, as opposed to SetLocal's "local"-builtin semantics.
func (e *Environment) Set(name string, val VariableValue) error {
	if v, layer := e.lookupLayered(name); v != nil {
		if v.Flags.Readonly {
			return oops.Code("readonly_violation").With("name", name).Wrap(ErrReadonly)
		}
		e.setRaw(name, val, v.Flags, layer)
		return nil
	}
	e.setRaw(name, val, VariableFlags{}, len(e.scopes)-1)
	return nil
}

// Export marks name exported, optionally setting its value first.
func (e *Environment) Export(name string, val *VariableValue) error {
	v, layer := e.lookupLayered(name)
	if v == nil {
		layer = len(e.scopes) - 1
		value := StringValue("")
		if val != nil {
			value = *val
		}
		e.setRaw(name, value, VariableFlags{Export: true}, layer)
		return nil
	}
	if val != nil {
		if v.Flags.Readonly {
			return oops.Code("readonly_violation").With("name", name).Wrap(ErrReadonly)
		}
		v.Value = *val
	}
	v.Flags.Export = true
	os.Setenv(name, v.Value.Scalar)
	return nil
}

// SetReadonly marks name readonly without changing its value.
func (e *Environment) SetReadonly(name string) {
	v, layer := e.lookupLayered(name)
	if v == nil {
		layer = len(e.scopes) - 1
		e.scopes[layer].vars[name] = &variable{Value: StringValue(""), Flags: VariableFlags{Readonly: true}}
		return
	}
	v.Flags.Readonly = true
}

// Unset removes a variable from whichever scope holds it.
func (e *Environment) Unset(name string) error {
	if v, layer := e.lookupLayered(name); v != nil {
		if v.Flags.Readonly {
			return oops.Code("readonly_violation").With("name", name).Wrap(ErrReadonly)
		}
		delete(e.scopes[layer].vars, name)
		os.Unsetenv(name)
	}
	return nil
}

// PushScope enters a new, innermost scope (function call or explicit push).
func (e *Environment) PushScope() { e.scopes = append(e.scopes, newScope()) }

// PopScope exits the innermost scope. It is a no-op at the global scope, so
// callers can defer it unconditionally around PushScope.
func (e *Environment) PopScope() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// SetPositional replaces $1..$N and $#. There is one positional list per
// Environment, not one per scope; callFunction and source save and restore
// it around their call.
func (e *Environment) SetPositional(params []string) {
	e.positional = append([]string(nil), params...)
}

func (e *Environment) Positional() []string { return e.positional }

func (e *Environment) LastStatus() int     { return e.lastStatus }
func (e *Environment) UpdateExit(code int) { e.lastStatus = code }

func (e *Environment) CWD() string    { return e.cwd }
func (e *Environment) OldCWD() string { return e.oldCwd }

// Chdir updates PWD/OLDPWD (spec §4.3).
func (e *Environment) Chdir(path string) error {
	if err := os.Chdir(path); err != nil {
		return oops.Code("redirect_error").With("path", path).Wrap(err)
	}
	abs, err := os.Getwd()
	if err != nil {
		return oops.Code("fatal").Wrap(err)
	}
	e.oldCwd = e.cwd
	e.cwd = abs
	e.setRaw("OLDPWD", StringValue(e.oldCwd), VariableFlags{Export: true}, 0)
	e.setRaw("PWD", StringValue(e.cwd), VariableFlags{Export: true}, 0)
	return nil
}

func (e *Environment) SetOption(name string, on bool) { e.options[name] = on }
func (e *Environment) Option(name string) bool        { return e.options[name] }

// DefineFunction and LookupFunction manage the flat, name-keyed function
// table, deliberately separate from the scoped variable stack (spec §3.3):
// functions can reference themselves and persist across scope pushes/pops.
func (e *Environment) DefineFunction(name string, body ast.Node) {
	e.functions[name] = FunctionDef{Name: name, Body: body}
}

func (e *Environment) LookupFunction(name string) (FunctionDef, bool) {
	fn, ok := e.functions[name]
	return fn, ok
}

func (e *Environment) SetAlias(name, value string) { e.aliases[name] = value }
func (e *Environment) UnsetAlias(name string)       { delete(e.aliases, name) }
func (e *Environment) LookupAlias(name string) (string, bool) {
	v, ok := e.aliases[name]
	return v, ok
}
func (e *Environment) Aliases() map[string]string { return e.aliases }
