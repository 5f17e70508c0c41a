package interp

import (
	"os"
	"strconv"
)

// envVars adapts *Environment to expand.Vars/expand.VarLookup, the narrow
// read/write surfaces the expand package's arithmetic, parameter, and word
// evaluators need. Kept separate from Environment itself so Environment's
// own API (VariableValue-based) stays the natural shape for the rest of
// interp, while expand only ever sees plain strings (spec §4.3/§4.4
// boundary).
type envVars struct {
	env *Environment
}

func (v envVars) Get(name string) (string, bool) {
	if name == "?" {
		return strconv.Itoa(v.env.LastStatus()), true
	}
	if name == "$" {
		return strconv.Itoa(os.Getpid()), true
	}
	if name == "#" {
		return strconv.Itoa(len(v.env.Positional())), true
	}
	if n, err := strconv.Atoi(name); err == nil {
		pos := v.env.Positional()
		if n == 0 {
			return v.env.scriptName, true
		}
		if n >= 1 && n <= len(pos) {
			return pos[n-1], true
		}
		return "", false
	}
	val, ok := v.env.Get(name)
	if !ok {
		return "", false
	}
	switch val.Kind {
	case KindArray:
		if len(val.Array) == 0 {
			return "", true
		}
		return val.Array[0], true
	default:
		return val.Scalar, true
	}
}

func (v envVars) Set(name, value string) error {
	return v.env.Set(name, StringValue(value))
}

func (v envVars) GetArray(name string) ([]string, bool) {
	switch name {
	case "@", "*":
		return v.env.Positional(), true
	}
	val, ok := v.env.Get(name)
	if !ok || val.Kind != KindArray {
		return nil, false
	}
	return val.Array, true
}

func (v envVars) IFS() string {
	s, _ := v.Get("IFS")
	return s
}

func (v envVars) HomeDir() (string, bool) {
	if s, ok := v.Get("HOME"); ok && s != "" {
		return s, true
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	return home, true
}
