package main

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/flashsh/flash/interp"
)

// lastExitCode is read by main.Execute after cmd.Execute returns, since
// cobra's RunE contract returns an error, not an integer status, and flash's
// exit codes (spec §6/§7) carry more meaning than "succeeded or not".
var lastExitCode int

var errColor = color.New(color.FgRed)

func newRootCmd() *cobra.Command {
	var commandStr string
	var readStdin bool

	cmd := &cobra.Command{
		Use:                   "flash [FILE [ARG...]]",
		Short:                 "flash is a POSIX/Bash-style shell",
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		Args:                  cobra.ArbitraryArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			lastExitCode = run(commandStr, readStdin, args)
			return nil
		},
	}
	cmd.Flags().StringVarP(&commandStr, "command", "c", "", "execute CMD instead of reading a script")
	cmd.Flags().BoolVarP(&readStdin, "stdin", "s", false, "read commands from stdin even if it is not a terminal")
	return cmd
}

func run(commandStr string, readStdin bool, args []string) int {
	switch {
	case commandStr != "":
		scriptName := "flash"
		scriptArgs := args
		if len(args) > 0 {
			scriptName, scriptArgs = args[0], args[1:]
		}
		it := interp.New(scriptName, scriptArgs)
		status, err := it.Execute(commandStr)
		reportErr(err)
		return status

	case len(args) > 0:
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			errColor.Fprintf(os.Stderr, "flash: %v\n", err)
			return 127
		}
		it := interp.New(path, args[1:])
		status, err := it.Execute(string(data))
		reportErr(err)
		return status

	case readStdin || !isatty.IsTerminal(os.Stdin.Fd()):
		it := interp.New("flash", nil)
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			errColor.Fprintf(os.Stderr, "flash: %v\n", err)
			return 1
		}
		status, err := it.Execute(string(data))
		reportErr(err)
		return status

	default:
		return runREPL()
	}
}

func reportErr(err error) {
	if err != nil {
		errColor.Fprintf(os.Stderr, "flash: %v\n", err)
	}
}

// loadRC executes $HOME/.flashrc before the first interactive prompt (spec
// §6's configuration file).
func loadRC(it *interp.Interpreter) {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	rc := filepath.Join(home, ".flashrc")
	data, err := os.ReadFile(rc)
	if err != nil {
		return
	}
	if _, err := it.Execute(string(data)); err != nil {
		errColor.Fprintf(os.Stderr, "flash: ~/.flashrc: %v\n", err)
	}
}

func runREPL() int {
	it := interp.New("flash", nil)
	loadRC(it)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          promptString(it, "PS1"),
		HistoryFile:     historyFilePath(it),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return runFallbackREPL(it)
	}
	defer rl.Close()

	for {
		rl.SetPrompt(promptString(it, "PS1"))
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		status, runErr := it.Execute(line)
		if runErr != nil {
			errColor.Fprintf(os.Stderr, "flash: %v\n", runErr)
		}
		lastExitCode = status
	}
	return lastExitCode
}

// runFallbackREPL drives the interpreter's own plain prompt loop when
// readline can't initialize (e.g. stdin isn't a real TTY device).
func runFallbackREPL(it *interp.Interpreter) int {
	reader := bufio.NewReader(os.Stdin)
	err := it.RunInteractive(reader, os.Stdout, func() string {
		return promptString(it, "PS1")
	})
	if err != nil {
		errColor.Fprintf(os.Stderr, "flash: %v\n", err)
		return 1
	}
	return lastExitCode
}

func promptString(it *interp.Interpreter, varName string) string {
	v, ok := it.Env.Get(varName)
	if !ok {
		return "$ "
	}
	return strings.NewReplacer(
		"\\u", os.Getenv("USER"),
		"\\w", it.Env.CWD(),
		"\\$", "$",
	).Replace(v.Scalar) + " "
}

func historyFilePath(it *interp.Interpreter) string {
	v, ok := it.Env.Get("HISTFILE")
	if !ok {
		return ""
	}
	return v.Scalar
}
