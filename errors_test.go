package mvctest

import (
	"errors"
	"fmt"
	"github.com/go-andiamo/mvctest/framing"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestAssertionError_TestFormat(t *testing.T) {
	err := newAssertionError("When calling Get action in PetsController expected", OkResultAssertion, "WithModel",
		&framing.Frame{File: "pets_test.go", Line: 42}, "ok result model", "be 'Rex'", "in fact it was 'Felix'", "Rex", "Felix")
	assert.Equal(t, "When calling Get action in PetsController expected ok result model to be 'Rex', but in fact it was 'Felix'.", err.Error())
	assert.Equal(t, "When calling Get action in PetsController expected ok result model to be 'Rex', but in fact it was 'Felix'."+
		"\n\tCategory: \tOkResultAssertion"+
		"\n\tExpected: \t\"Rex\""+
		"\n\tActual:   \t\"Felix\""+
		"\n\tFrame:    \tpets_test.go:42", err.TestFormat())
}

func TestAssertionError_Cause(t *testing.T) {
	cause := errors.New("fooey")
	err := newAssertionError("Expected route '/'", RouteAssertion, "ToAction", nil, "", "be resolved", "it was not", nil, nil)
	err.cause = cause
	assert.Equal(t, "Expected route '/' to be resolved, but it was not.", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Cause())
	assert.Equal(t, "Expected route '/' to be resolved, but it was not."+
		"\n\tCategory: \tRouteAssertion"+
		"\n\tCause:    \tfooey", err.TestFormat())
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		value  any
		expect string
	}{
		{nil, "nil"},
		{"abc", "'abc'"},
		{[]byte("ab"), "[97 98]"},
		{42, "42"},
		{pet{Id: 1, Name: "Felix"}, "{Id:1 Name:Felix Tag:}"},
		{errorString("x"), "'x'"},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]", i+1), func(t *testing.T) {
			assert.Equal(t, tc.expect, formatValue(tc.value))
		})
	}
}

type errorString string

func (e errorString) String() string {
	return string(e)
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "nil", typeName(nil))
	assert.Equal(t, "*pet", typeName(&pet{}))
	assert.Equal(t, "pet", typeName(pet{}))
	assert.Equal(t, "[]*pet", typeName([]*pet{}))
	assert.Equal(t, "map[string]pet", typeName(map[string]pet{}))
	assert.Equal(t, "int", typeName(1))
	assert.Equal(t, "*fmt.wrapError", typeName(fmt.Errorf("x: %w", errNotAllowed)))
}

func TestTestFormat(t *testing.T) {
	assert.Equal(t, "nil", testFormat(nil))
	assert.Equal(t, `"a"`, testFormat("a"))
	assert.Equal(t, "[]byte([1 2])", testFormat([]byte{1, 2}))
	assert.Equal(t, "int(5)", testFormat(5))
	assert.Equal(t, "pet({Id:1 Name: Tag:})", testFormat(pet{Id: 1}))
}
