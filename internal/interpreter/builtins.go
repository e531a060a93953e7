package interpreter

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// nativeFunction is a builtin implemented in Go rather than lox.
type nativeFunction struct {
	name  string
	arity int
	fn    func(interp *Interpreter, args []Value) Value
}

func (*nativeFunction) Type() ValueType { return TypeCallable }
func (n *nativeFunction) String() string { return fmt.Sprintf("callable<%s>", n.name) }
func (n *nativeFunction) Arity() int     { return n.arity }

func (n *nativeFunction) Call(interp *Interpreter, args []Value) Value {
	return n.fn(interp, args)
}

// defineGlobals registers the language's six native builtins: clock,
// assert, str, getc, chr, and exit.
func defineGlobals(globals *Environment) {
	stdin := bufio.NewReader(os.Stdin)

	define := func(name string, arity int, fn func(interp *Interpreter, args []Value) Value) {
		globals.Define(name, &nativeFunction{name: name, arity: arity, fn: fn})
	}

	define("clock", 0, func(_ *Interpreter, _ []Value) Value {
		return Number(float64(time.Now().UnixMicro()))
	})

	define("assert", 1, func(interp *Interpreter, args []Value) Value {
		if !IsTruthy(args[0]) {
			panic(&RuntimeError{Message: "assert failed"})
		}
		return Nil{}
	})

	define("str", 1, func(_ *Interpreter, args []Value) Value {
		return String(args[0].String())
	})

	define("getc", 0, func(_ *Interpreter, _ []Value) Value {
		b, err := stdin.ReadByte()
		if err != nil {
			return Number(-1)
		}
		return Number(float64(b))
	})

	define("chr", 1, func(_ *Interpreter, args []Value) Value {
		n, ok := args[0].(Number)
		if !ok {
			panic(&RuntimeError{Message: "chr() argument must be a number"})
		}
		return String(string([]byte{byte(n)}))
	})

	define("exit", 1, func(_ *Interpreter, args []Value) Value {
		n, ok := args[0].(Number)
		if !ok {
			panic(&RuntimeError{Message: "exit() argument must be a number"})
		}
		os.Exit(int(n))
		return Nil{}
	})
}
