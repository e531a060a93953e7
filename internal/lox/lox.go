// Package lox wires the lexer, parser, resolver, and interpreter into
// the two entry points the CLI needs: running a whole script and
// driving an interactive prompt.
package lox

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/sdecook/golox/internal/interpreter"
	"github.com/sdecook/golox/internal/lexer"
	"github.com/sdecook/golox/internal/parser"
	"github.com/sdecook/golox/internal/resolver"
)

// Sentinel stage errors returned by run; the CLI compares against
// these to pick an exit code (65 for a static error, 70 for a runtime
// one), matching BSD sysexits conventions.
var (
	ErrLex     = errors.New("lex error")
	ErrParse   = errors.New("parse error")
	ErrResolve = errors.New("resolve error")
	ErrRuntime = errors.New("runtime error")
)

// Runner owns the single long-lived Interpreter a script or REPL
// session runs against, so that top-level variables and functions
// persist across lines in interactive mode.
type Runner struct {
	interp *interpreter.Interpreter
	stdout io.Writer
	stderr io.Writer
}

// NewRunner constructs a Runner writing program output to stdout and
// diagnostics to stderr.
func NewRunner(stdout, stderr io.Writer) *Runner {
	return &Runner{interp: interpreter.New(nil, stdout), stdout: stdout, stderr: stderr}
}

// RunFile executes the script at path. A failure to open the file is
// reported to stderr and does not propagate: the CLI treats it as
// "nothing ran," not a crash. The returned error, when non-nil, is one
// of ErrLex/ErrParse/ErrResolve/ErrRuntime and selects the process
// exit code.
func (r *Runner) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.stderr, "lox: cannot open %s: %v\n", path, err)
		return nil
	}
	return r.run(string(src), false)
}

// RunPrompt drives an interactive REPL: prompt "> ", blank lines and
// lines starting with '#' are skipped as a REPL-only convenience (the
// language itself has no line-comment syntax beyond //), and bare
// expression statements echo their value the way the `print` statement
// always does.
func (r *Runner) RunPrompt() error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("lox: readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF on Ctrl-D, readline.ErrInterrupt on Ctrl-C
			return nil
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if err := r.run(line, true); err != nil {
			// Diagnostics are already printed by run(); the REPL just
			// keeps prompting regardless of which stage failed.
			continue
		}
	}
}

func (r *Runner) run(src string, replEcho bool) error {
	lx := lexer.New(src)
	tokens, lexErrs := lx.Scan()
	if len(lexErrs) > 0 {
		for _, e := range lexErrs {
			r.reportError(e)
		}
		return ErrLex
	}

	p := parser.New(tokens)
	stmts, err := p.Parse()
	if err != nil {
		r.reportError(err)
		return ErrParse
	}

	res := resolver.New()
	locals, resolveErrs := res.Resolve(stmts)
	if len(resolveErrs) > 0 {
		for _, e := range resolveErrs {
			r.reportError(e)
		}
		return ErrResolve
	}
	r.interp.AddLocals(locals)

	if err := r.interp.Interpret(stmts, replEcho); err != nil {
		r.reportError(err)
		return ErrRuntime
	}
	return nil
}

func (r *Runner) reportError(err error) {
	fmt.Fprintln(r.stderr, color.RedString("%s", err.Error()))
}
