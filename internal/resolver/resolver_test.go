package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdecook/golox/internal/lexer"
	"github.com/sdecook/golox/internal/parser"
)

func resolve(t *testing.T, src string) ([]error, int) {
	t.Helper()
	tokens, lexErrs := lexer.New(src).Scan()
	require.Empty(t, lexErrs)
	stmts, err := parser.New(tokens).Parse()
	require.NoError(t, err)
	locals, errs := New().Resolve(stmts)
	return errs, len(locals)
}

func TestResolveReadOwnInitializerIsError(t *testing.T) {
	errs, _ := resolve(t, "{ var a = a; }")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "own initializer")
}

func TestResolveRedeclareInSameScopeIsError(t *testing.T) {
	errs, _ := resolve(t, "{ var a = 1; var a = 2; }")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Already a variable")
}

func TestResolveReturnOutsideFunctionIsError(t *testing.T) {
	errs, _ := resolve(t, "return 1;")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "return from top-level")
}

func TestResolveReturnValueFromInitializerIsFine(t *testing.T) {
	errs, _ := resolve(t, "class A { init(x) { if (x < 0) return nil; this.x = x; } }")
	assert.Empty(t, errs)
}

func TestResolveBareBreakAtTopLevelIsError(t *testing.T) {
	errs, _ := resolve(t, "break;")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "top-level")
}

func TestResolveBreakInsideLoopIsFine(t *testing.T) {
	errs, _ := resolve(t, "while (true) { break; }")
	assert.Empty(t, errs)
}

// A break nested in a block but not inside any loop passes resolution:
// only the literal top level is rejected statically. Escaping every
// loop is instead a runtime error, tested at the interpreter level.
func TestResolveBreakInBlockWithoutLoopIsNotStaticallyRejected(t *testing.T) {
	errs, _ := resolve(t, "{ break; }")
	assert.Empty(t, errs)
}

func TestResolveBreakInFunctionWithoutLoopIsNotStaticallyRejected(t *testing.T) {
	errs, _ := resolve(t, "fun f() { break; }")
	assert.Empty(t, errs)
}

func TestResolveThisOutsideClassIsError(t *testing.T) {
	errs, _ := resolve(t, "print this;")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "'this' outside")
}

func TestResolveSuperWithoutSuperclassIsError(t *testing.T) {
	errs, _ := resolve(t, "class A { m() { super.m(); } }")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "no superclass")
}

func TestResolveClassInheritingFromItselfIsError(t *testing.T) {
	errs, _ := resolve(t, "class A < A {}")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "inherit from itself")
}

func TestResolveLocalsRecordsDistance(t *testing.T) {
	_, count := resolve(t, `
		fun outer() {
			var x = 1;
			fun inner() {
				print x;
			}
			inner();
		}
	`)
	assert.Positive(t, count)
}

func TestResolveNestedLoopBreakIsFineOnlyTopLevelBreakIsRejected(t *testing.T) {
	errs, _ := resolve(t, `
		fun f() {
			while (true) {
				while (true) {
					break;
				}
			}
		}
		break;
	`)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "top-level")
}
