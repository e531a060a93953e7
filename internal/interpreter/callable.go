package interpreter

import (
	"fmt"

	"github.com/sdecook/golox/internal/ast"
)

// Callable is anything that can appear on the left of a call
// expression: a user-defined function, a native builtin, or a class
// (calling a class constructs an instance).
type Callable interface {
	Value
	Arity() int
	Call(interp *Interpreter, args []Value) Value
}

// Function is a user-defined function or method, closed over the
// environment active where it was declared.
type Function struct {
	decl          *ast.Function
	closure       *Environment
	isInitializer bool
}

func NewFunction(decl *ast.Function, closure *Environment, isInitializer bool) *Function {
	return &Function{decl: decl, closure: closure, isInitializer: isInitializer}
}

func (*Function) Type() ValueType { return TypeCallable }

func (f *Function) String() string {
	return fmt.Sprintf("callable<%s>", f.decl.Name.Lexeme)
}

func (f *Function) Arity() int { return len(f.decl.Params) }

func (f *Function) Call(interp *Interpreter, args []Value) (result Value) {
	env := NewChildEnvironment(f.closure)
	for i, p := range f.decl.Params {
		env.Define(p.Lexeme, args[i])
	}

	ret, ok := interp.executeBlockForReturn(f.decl.Body, env)
	if f.isInitializer {
		return f.closure.GetAt(0, "this")
	}
	if ok {
		return ret
	}
	return Nil{}
}

// bind returns a copy of f whose closure additionally binds "this" to
// instance, used to produce a method value when it is looked up on a
// specific instance.
func (f *Function) bind(instance *Instance) *Function {
	env := NewChildEnvironment(f.closure)
	env.Define("this", instance)
	return NewFunction(f.decl, env, f.isInitializer)
}

// Class is a runtime class value: callable to construct instances,
// carrying its own methods and an optional superclass to search next.
type Class struct {
	Name       string
	superclass *Class
	methods    map[string]*Function
}

func NewClass(name string, superclass *Class, methods map[string]*Function) *Class {
	return &Class{Name: name, superclass: superclass, methods: methods}
}

func (*Class) Type() ValueType { return TypeClass }

func (c *Class) String() string { return fmt.Sprintf("class<%s>", c.Name) }

func (c *Class) Arity() int {
	if init := c.findMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

func (c *Class) Call(interp *Interpreter, args []Value) Value {
	instance := &Instance{class: c, fields: make(map[string]Value)}
	if init := c.findMethod("init"); init != nil {
		init.bind(instance).Call(interp, args)
	}
	return instance
}

func (c *Class) findMethod(name string) *Function {
	if m, ok := c.methods[name]; ok {
		return m
	}
	if c.superclass != nil {
		return c.superclass.findMethod(name)
	}
	return nil
}

// Instance is a runtime object: a class plus its own field values.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func (*Instance) Type() ValueType { return TypeInstance }

func (inst *Instance) String() string {
	return fmt.Sprintf("instance<class<%s>>", inst.class.Name)
}

func (inst *Instance) get(name string) (Value, bool) {
	if v, ok := inst.fields[name]; ok {
		return v, true
	}
	if m := inst.class.findMethod(name); m != nil {
		return m.bind(inst), true
	}
	return nil, false
}

func (inst *Instance) set(name string, value Value) {
	inst.fields[name] = value
}
