package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/framing"
	"reflect"
	"strconv"
	"strings"
)

// Category is the category (family) of an assertion failure
type Category string

const (
	InvocationAssertion        Category = "InvocationAssertion"
	ActionResultAssertion      Category = "ActionResultAssertion"
	ResponseModelAssertion     Category = "ResponseModelAssertion"
	OkResultAssertion          Category = "OkResultAssertion"
	BadRequestResultAssertion  Category = "BadRequestResultAssertion"
	NotFoundResultAssertion    Category = "NotFoundResultAssertion"
	ConflictResultAssertion    Category = "ConflictResultAssertion"
	ObjectResultAssertion      Category = "ObjectResultAssertion"
	JsonResultAssertion        Category = "JsonResultAssertion"
	CreatedResultAssertion     Category = "CreatedResultAssertion"
	RedirectResultAssertion    Category = "RedirectResultAssertion"
	ContentResultAssertion     Category = "ContentResultAssertion"
	FileResultAssertion        Category = "FileResultAssertion"
	StatusCodeResultAssertion  Category = "StatusCodeResultAssertion"
	AuthenticationAssertion    Category = "AuthenticationAssertion"
	ViewResultAssertion        Category = "ViewResultAssertion"
	ModelErrorAssertion        Category = "ModelErrorAssertion"
	DataProviderAssertion      Category = "DataProviderAssertion"
	ExceptionAssertion         Category = "ExceptionAssertion"
	AttributeAssertion         Category = "AttributeAssertion"
	HttpResponseAssertion      Category = "HttpResponseAssertion"
	DataAssertion              Category = "DataAssertion"
	RouteAssertion             Category = "RouteAssertion"
)

// Error represents the basic error for all assertion failures
type Error interface {
	error
	Category() Category
	Name() string
	Cause() error
	Unwrap() error
	TestFormat() string
	framing.Framed
}

// AssertionError is an assertion that was not met
//
// the message always follows the template "<prefix> <subject> to <expected>, but <actual>."
// (e.g. "When calling Get action in PetsController expected bad request result error message to be 'other', but instead received 'error'.")
type AssertionError struct {
	msg        string
	name       string
	category   Category
	controller string
	action     string
	expected   any
	actual     any
	cause      error
	frame      *framing.Frame
}

var _ Error = (*AssertionError)(nil)

func (e *AssertionError) Error() string {
	return e.msg
}

func (e *AssertionError) Category() Category {
	return e.category
}

// Name is the name of the assertion method (e.g. "WithErrorMessage")
func (e *AssertionError) Name() string {
	return e.name
}

// Controller is the name of the controller under test ("" if not applicable)
func (e *AssertionError) Controller() string {
	return e.controller
}

// Action is the name of the action under test ("" if not applicable)
func (e *AssertionError) Action() string {
	return e.action
}

func (e *AssertionError) Expected() any {
	return e.expected
}

func (e *AssertionError) Actual() any {
	return e.actual
}

func (e *AssertionError) Cause() error {
	return e.cause
}

func (e *AssertionError) Unwrap() error {
	return e.cause
}

func (e *AssertionError) Frame() *framing.Frame {
	return e.frame
}

func (e *AssertionError) TestFormat() string {
	var b strings.Builder
	b.WriteString(e.msg)
	b.WriteString(fmt.Sprintf("\n\tCategory: \t%s", e.category))
	if e.expected != nil || e.actual != nil {
		b.WriteString(fmt.Sprintf("\n\tExpected: \t%s", testFormat(e.expected)))
		b.WriteString(fmt.Sprintf("\n\tActual:   \t%s", testFormat(e.actual)))
	}
	if e.cause != nil {
		b.WriteString(fmt.Sprintf("\n\tCause:    \t%s", e.cause.Error()))
	}
	if e.frame != nil {
		b.WriteString(fmt.Sprintf("\n\tFrame:    \t%s:%d", e.frame.File, e.frame.Line))
	}
	return b.String()
}

func testFormat(v any) string {
	switch vt := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(vt)
	case []byte:
		return fmt.Sprintf("[]byte(%v)", vt)
	}
	return fmt.Sprintf("%s(%+v)", trimPackagePrefix(reflect.TypeOf(v).String()), v)
}

// formatValue formats a value for use in an assertion message
func formatValue(v any) string {
	switch vt := v.(type) {
	case nil:
		return "nil"
	case string:
		return "'" + vt + "'"
	case []byte:
		return fmt.Sprintf("%v", vt)
	case fmt.Stringer:
		return "'" + vt.String() + "'"
	}
	return fmt.Sprintf("%+v", v)
}

// typeName is the friendly name of the type of a value (e.g. "*api.Pet")
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return friendlyTypeName(reflect.TypeOf(v))
}

func friendlyTypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return trimPackagePrefix(t.String())
}

func trimPackagePrefix(s string) string {
	return strings.ReplaceAll(s, "mvctest.", "")
}
