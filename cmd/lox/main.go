// Command lox runs lox scripts and provides an interactive prompt.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sdecook/golox/internal/lox"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	switch len(args) {
	case 0:
		r := lox.NewRunner(os.Stdout, os.Stderr)
		if err := r.RunPrompt(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case 1:
		r := lox.NewRunner(os.Stdout, os.Stderr)
		switch err := r.RunFile(args[0]); {
		case err == nil:
			return 0
		case errors.Is(err, lox.ErrRuntime):
			return 70
		default:
			return 65
		}
	default:
		fmt.Println("Usage: lox [script]")
		return 64
	}
}
