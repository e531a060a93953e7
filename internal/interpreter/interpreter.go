// Package interpreter evaluates a resolved lox program. Values,
// environments, callables, and the evaluator itself live in one
// package: a Function must both hold a closure Environment and be
// executed by the statement evaluator, and an Environment must store
// Values, so splitting these concerns into separate packages would
// require one of them to import back into the others.
package interpreter

import (
	"fmt"
	"io"

	"github.com/sdecook/golox/internal/ast"
	"github.com/sdecook/golox/internal/token"
)

// RuntimeError is a lox-level runtime error: a type mismatch, an
// undefined reference, a bad call. It carries the token closest to the
// fault so the caller can report a line number.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	if e.Token.Lexeme == "" {
		return e.Message
	}
	return fmt.Sprintf("[line %d] Error: %s", e.Token.Line, e.Message)
}

// ctrl tags the kind of non-local control transfer a statement
// produced, if any.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlBreak
	ctrlReturn
)

// flow is threaded up through statement execution instead of using
// panic/recover for control flow; panic is reserved for RuntimeError,
// which must be recoverable independently of break/return so a REPL
// can report an error on one line and keep prompting.
type flow struct {
	kind  ctrl
	value Value
	token token.Token
}

var flowNone = flow{kind: ctrlNone}

// Interpreter walks a resolved AST, evaluating expressions and
// executing statements against a chain of environments.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int
	stdout  io.Writer
}

// New constructs an Interpreter. locals is the side table produced by
// the resolver; stdout is where print statements and REPL echoes go.
func New(locals map[ast.Expr]int, stdout io.Writer) *Interpreter {
	globals := NewEnvironment()
	defineGlobals(globals)
	if locals == nil {
		locals = make(map[ast.Expr]int)
	}
	return &Interpreter{globals: globals, env: globals, locals: locals, stdout: stdout}
}

// AddLocals merges another resolver pass's side table into this
// Interpreter's, used by the REPL where each line is resolved
// independently but shares one long-lived Interpreter.
func (interp *Interpreter) AddLocals(locals map[ast.Expr]int) {
	for k, v := range locals {
		interp.locals[k] = v
	}
}

// Interpret executes a sequence of statements, returning the first
// runtime error encountered, if any. A runtime error aborts only the
// statements remaining in this call; the Interpreter's environment
// survives so a REPL can call Interpret again with the next line.
//
// When replEcho is true, the value of every bare expression statement
// (other than a lone break) is written to stdout as it is evaluated, so
// a REPL can echo it.
func (interp *Interpreter) Interpret(stmts []ast.Stmt, replEcho bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			re, ok := r.(*RuntimeError)
			if !ok {
				panic(r)
			}
			err = re
		}
	}()

	for _, stmt := range stmts {
		if expr, ok := stmt.(*ast.Expression); ok && replEcho {
			if _, isBreak := expr.Expression.(*ast.Break); isBreak {
				interp.checkNoLeakedBreak(interp.execStmt(stmt))
				continue
			}
			v := interp.evalExpr(expr.Expression)
			fmt.Fprintln(interp.stdout, v.String())
			continue
		}
		interp.checkNoLeakedBreak(interp.execStmt(stmt))
	}
	return nil
}

// checkNoLeakedBreak converts a break that escaped every enclosing loop
// into a runtime error. Resolution only rejects a bare break at the
// literal top level; a break nested in some block but outside any loop
// is caught here instead, once it actually executes.
func (interp *Interpreter) checkNoLeakedBreak(f flow) {
	if f.kind == ctrlBreak {
		panic(&RuntimeError{Token: f.token, Message: "Can't break outside of a loop."})
	}
}

func (interp *Interpreter) execStmt(stmt ast.Stmt) flow {
	switch s := stmt.(type) {
	case *ast.Expression:
		if b, ok := s.Expression.(*ast.Break); ok {
			return flow{kind: ctrlBreak, token: b.Keyword}
		}
		interp.evalExpr(s.Expression)
		return flowNone
	case *ast.Print:
		v := interp.evalExpr(s.Expression)
		fmt.Fprintln(interp.stdout, v.String())
		return flowNone
	case *ast.Var:
		var v Value = Nil{}
		if s.Initializer != nil {
			v = interp.evalExpr(s.Initializer)
		}
		interp.env.Define(s.Name.Lexeme, v)
		return flowNone
	case *ast.Block:
		return interp.execBlock(s.Statements, NewChildEnvironment(interp.env))
	case *ast.If:
		if IsTruthy(interp.evalExpr(s.Condition)) {
			return interp.execStmt(s.Then)
		}
		if s.Else != nil {
			return interp.execStmt(s.Else)
		}
		return flowNone
	case *ast.While:
		for IsTruthy(interp.evalExpr(s.Condition)) {
			f := interp.execStmt(s.Body)
			if f.kind == ctrlBreak {
				break
			}
			if f.kind == ctrlReturn {
				return f
			}
		}
		return flowNone
	case *ast.For:
		return interp.execFor(s)
	case *ast.Function:
		fn := NewFunction(s, interp.env, false)
		interp.env.Define(s.Name.Lexeme, fn)
		return flowNone
	case *ast.Return:
		var v Value = Nil{}
		if s.Value != nil {
			v = interp.evalExpr(s.Value)
		}
		return flow{kind: ctrlReturn, value: v}
	case *ast.Class:
		return interp.execClass(s)
	default:
		panic(fmt.Sprintf("interpreter: unhandled statement type %T", stmt))
	}
}

func (interp *Interpreter) execFor(s *ast.For) flow {
	outer := interp.env
	interp.env = NewChildEnvironment(outer)
	defer func() { interp.env = outer }()

	if s.Init != nil {
		interp.execStmt(s.Init)
	}
	for s.Condition == nil || IsTruthy(interp.evalExpr(s.Condition)) {
		f := interp.execStmt(s.Body)
		if f.kind == ctrlBreak {
			break
		}
		if f.kind == ctrlReturn {
			return f
		}
		if s.Increment != nil {
			interp.evalExpr(s.Increment)
		}
	}
	return flowNone
}

func (interp *Interpreter) execClass(s *ast.Class) flow {
	var superclass *Class
	if s.Superclass != nil {
		v := interp.evalExpr(s.Superclass)
		sc, ok := v.(*Class)
		if !ok {
			panic(&RuntimeError{Token: s.Superclass.Name, Message: "Superclass must be a class."})
		}
		superclass = sc
	}

	interp.env.Define(s.Name.Lexeme, Nil{})

	env := interp.env
	if superclass != nil {
		env = NewChildEnvironment(interp.env)
		env.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = NewFunction(m, env, m.Name.Lexeme == "init")
	}

	class := NewClass(s.Name.Lexeme, superclass, methods)
	if superclass != nil {
		env = interp.env
	}
	env.Assign(s.Name.Lexeme, class)
	return flowNone
}

// execBlock runs stmts in env, restoring the interpreter's previous
// environment before returning regardless of how the block exits.
func (interp *Interpreter) execBlock(stmts []ast.Stmt, env *Environment) flow {
	outer := interp.env
	interp.env = env
	defer func() { interp.env = outer }()

	for _, stmt := range stmts {
		if f := interp.execStmt(stmt); f.kind != ctrlNone {
			return f
		}
	}
	return flowNone
}

// executeBlockForReturn runs a function body in env and reports
// whether a return statement produced a value.
func (interp *Interpreter) executeBlockForReturn(stmts []ast.Stmt, env *Environment) (Value, bool) {
	f := interp.execBlock(stmts, env)
	interp.checkNoLeakedBreak(f)
	if f.kind == ctrlReturn {
		return f.value, true
	}
	return nil, false
}

func (interp *Interpreter) evalExpr(expr ast.Expr) Value {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e.Value)
	case *ast.Grouping:
		return interp.evalExpr(e.Expression)
	case *ast.Variable:
		return interp.lookUpVariable(e.Name, e)
	case *ast.Assign:
		v := interp.evalExpr(e.Value)
		if distance, ok := interp.locals[e]; ok {
			interp.env.AssignAt(distance, e.Name.Lexeme, v)
		} else if !interp.globals.Assign(e.Name.Lexeme, v) {
			panic(&RuntimeError{Token: e.Name, Message: fmt.Sprintf("Undefined variable '%s'.", e.Name.Lexeme)})
		}
		return v
	case *ast.Logical:
		left := interp.evalExpr(e.Left)
		if e.Op.Type == token.Or {
			if IsTruthy(left) {
				return left
			}
		} else if !IsTruthy(left) {
			return left
		}
		return interp.evalExpr(e.Right)
	case *ast.Unary:
		return interp.evalUnary(e)
	case *ast.Binary:
		return interp.evalBinary(e)
	case *ast.Break:
		panic(&RuntimeError{Token: e.Keyword, Message: "'break' is only valid as a whole statement."})
	case *ast.Call:
		return interp.evalCall(e)
	case *ast.Get:
		obj := interp.evalExpr(e.Object)
		inst, ok := obj.(*Instance)
		if !ok {
			panic(&RuntimeError{Token: e.Name, Message: "Only instances have properties."})
		}
		v, ok := inst.get(e.Name.Lexeme)
		if !ok {
			panic(&RuntimeError{Token: e.Name, Message: fmt.Sprintf("Undefined property '%s'.", e.Name.Lexeme)})
		}
		return v
	case *ast.Set:
		obj := interp.evalExpr(e.Object)
		inst, ok := obj.(*Instance)
		if !ok {
			panic(&RuntimeError{Token: e.Name, Message: "Only instances have fields."})
		}
		v := interp.evalExpr(e.Value)
		inst.set(e.Name.Lexeme, v)
		return v
	case *ast.This:
		return interp.lookUpVariable(e.Keyword, e)
	case *ast.Super:
		return interp.evalSuper(e)
	default:
		panic(fmt.Sprintf("interpreter: unhandled expression type %T", expr))
	}
}

// Break is parsed in expression position. When it is the whole of an
// expression statement, execStmt handles it directly as a loop exit.
// The resolver does not reject a break nested inside a larger expression
// (e.g. `{ print break; }`); evalExpr reaches its *ast.Break case for
// such a break and reports it as a runtime error.

func literalValue(v any) Value {
	switch x := v.(type) {
	case nil:
		return Nil{}
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case string:
		return String(x)
	default:
		panic(fmt.Sprintf("interpreter: unhandled literal payload %T", v))
	}
}

func (interp *Interpreter) lookUpVariable(name token.Token, node ast.Expr) Value {
	if distance, ok := interp.locals[node]; ok {
		return interp.env.GetAt(distance, name.Lexeme)
	}
	if v, ok := interp.globals.Get(name.Lexeme); ok {
		return v
	}
	panic(&RuntimeError{Token: name, Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme)})
}

func (interp *Interpreter) evalUnary(e *ast.Unary) Value {
	right := interp.evalExpr(e.Right)
	switch e.Op.Type {
	case token.Minus:
		n, ok := right.(Number)
		if !ok {
			panic(&RuntimeError{Token: e.Op, Message: "Operand must be a number."})
		}
		return -n
	case token.Bang:
		return Bool(!IsTruthy(right))
	default:
		panic(fmt.Sprintf("interpreter: unhandled unary operator %v", e.Op.Type))
	}
}

func (interp *Interpreter) evalBinary(e *ast.Binary) Value {
	left := interp.evalExpr(e.Left)
	right := interp.evalExpr(e.Right)

	switch e.Op.Type {
	case token.EqualEqual:
		return Bool(Equal(left, right))
	case token.BangEqual:
		return Bool(!Equal(left, right))
	case token.Plus:
		if ln, ok := left.(Number); ok {
			if rn, ok := right.(Number); ok {
				return ln + rn
			}
		}
		if ls, ok := left.(String); ok {
			if rs, ok := right.(String); ok {
				return ls + rs
			}
		}
		panic(&RuntimeError{Token: e.Op, Message: "Operands must be two numbers or two strings."})
	case token.Minus:
		l, r := interp.numberOperands(e.Op, left, right)
		return l - r
	case token.Star:
		l, r := interp.numberOperands(e.Op, left, right)
		return l * r
	case token.Slash:
		l, r := interp.numberOperands(e.Op, left, right)
		return l / r
	case token.Greater:
		l, r := interp.numberOperands(e.Op, left, right)
		return Bool(l > r)
	case token.GreaterEqual:
		l, r := interp.numberOperands(e.Op, left, right)
		return Bool(l >= r)
	case token.Less:
		l, r := interp.numberOperands(e.Op, left, right)
		return Bool(l < r)
	case token.LessEqual:
		l, r := interp.numberOperands(e.Op, left, right)
		return Bool(l <= r)
	default:
		panic(fmt.Sprintf("interpreter: unhandled binary operator %v", e.Op.Type))
	}
}

func (interp *Interpreter) numberOperands(op token.Token, left, right Value) (Number, Number) {
	ln, lok := left.(Number)
	rn, rok := right.(Number)
	if !lok || !rok {
		panic(&RuntimeError{Token: op, Message: "Operands must be numbers."})
	}
	return ln, rn
}

func (interp *Interpreter) evalCall(e *ast.Call) Value {
	callee := interp.evalExpr(e.Callee)

	args := make([]Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = interp.evalExpr(a)
	}

	fn, ok := callee.(Callable)
	if !ok {
		panic(&RuntimeError{Token: e.Paren, Message: "Can only call functions and classes."})
	}

	if len(args) != fn.Arity() {
		panic(&RuntimeError{Token: e.Paren, Message: fmt.Sprintf("Expected %d arguments but got %d.", fn.Arity(), len(args))})
	}

	return fn.Call(interp, args)
}

func (interp *Interpreter) evalSuper(e *ast.Super) Value {
	distance := interp.locals[e]
	superclass := interp.env.GetAt(distance, "super").(*Class)
	instance := interp.env.GetAt(distance-1, "this").(*Instance)

	method := superclass.findMethod(e.Method.Lexeme)
	if method == nil {
		panic(&RuntimeError{Token: e.Method, Message: fmt.Sprintf("Undefined property '%s'.", e.Method.Lexeme)})
	}
	return method.bind(instance)
}
