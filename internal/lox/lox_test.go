package lox

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReportsLexErrorAndStopsThatChunk(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	err := r.run("1 @ 2;", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLex))
	assert.Contains(t, stderr.String(), "Unexpected character")
}

func TestRunReportsParseError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	err := r.run("1 = 2;", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

func TestRunReportsResolveError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	err := r.run("return 1;", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResolve))
}

func TestRunStateSurvivesAcrossCallsLikeAREPL(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	require.NoError(t, r.run("var x = 1;", false))
	require.NoError(t, r.run("x = x + 1;", false))
	require.NoError(t, r.run("print x;", false))

	assert.Equal(t, "2\n", stdout.String())
}

func TestRunRecoversAfterRuntimeErrorSoCallerCanKeepGoing(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	err := r.run("print undefined_thing;", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuntime))

	// A runtime error must not corrupt the Runner: later calls still work.
	require.NoError(t, r.run("print 1 + 1;", false))
	assert.Equal(t, "2\n", stdout.String())
}

func TestRunFileReportsOpenFailureWithoutAborting(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(&stdout, &stderr)

	err := r.RunFile("/nonexistent/path/does-not-exist.lox")
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "cannot open")
}
