package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"slices"
	"strings"
)

type OkResultBuilder interface {
	WithModel(expected any) And[OkResultBuilder]
	WithModelOfType(sample any) And[OkResultBuilder]
	WithModelPath(path string, expected any) And[OkResultBuilder]
	WithNoModel() And[OkResultBuilder]
	WithModelPassing(fn func(model any) bool) And[OkResultBuilder]
}

type okResultBuilder struct {
	*assertions[OkResultBuilder]
	*modelAssertions[OkResultBuilder]
}

func newOkResultBuilder(tc *TestContext) OkResultBuilder {
	a := newAssertions[OkResultBuilder](tc, OkResultAssertion)
	result := &okResultBuilder{
		assertions:      a,
		modelAssertions: newModelAssertions(a, "ok result"),
	}
	a.self = result
	return result
}

type BadRequestResultBuilder interface {
	WithModel(expected any) And[BadRequestResultBuilder]
	WithModelOfType(sample any) And[BadRequestResultBuilder]
	WithModelPath(path string, expected any) And[BadRequestResultBuilder]
	WithNoModel() And[BadRequestResultBuilder]
	WithModelPassing(fn func(model any) bool) And[BadRequestResultBuilder]
	// WithErrorMessage asserts the error message of the bad request (the value of the result as a string or error)
	WithErrorMessage(message string) And[BadRequestResultBuilder]
	WithErrorMessageContaining(text string) And[BadRequestResultBuilder]
	// WithValidationErrorFor asserts that the bad request is a validation problem containing errors for the key
	WithValidationErrorFor(key string) And[BadRequestResultBuilder]
}

type badRequestResultBuilder struct {
	*assertions[BadRequestResultBuilder]
	*modelAssertions[BadRequestResultBuilder]
}

func newBadRequestResultBuilder(tc *TestContext) BadRequestResultBuilder {
	a := newAssertions[BadRequestResultBuilder](tc, BadRequestResultAssertion)
	result := &badRequestResultBuilder{
		assertions:      a,
		modelAssertions: newModelAssertions(a, "bad request result"),
	}
	a.self = result
	return result
}

// errorMessage is the error message of a model - a string, an error or anything stringer
func errorMessage(model any) (string, bool) {
	switch mt := model.(type) {
	case string:
		return mt, true
	case error:
		return mt.Error(), true
	case fmt.Stringer:
		return mt.String(), true
	}
	return "", false
}

func (b *badRequestResultBuilder) WithErrorMessage(message string) And[BadRequestResultBuilder] {
	model := b.tc.Model()
	actual, ok := errorMessage(model)
	if !ok {
		return b.check("WithErrorMessage", false, "bad request result error message", "be "+formatValue(message),
			"instead received "+describeModel(model), message, model)
	}
	return b.check("WithErrorMessage", actual == message, "bad request result error message", "be "+formatValue(message),
		"instead received "+formatValue(actual), message, actual)
}

func (b *badRequestResultBuilder) WithErrorMessageContaining(text string) And[BadRequestResultBuilder] {
	actual, _ := errorMessage(b.tc.Model())
	return b.check("WithErrorMessageContaining", strings.Contains(actual, text), "bad request result error message",
		"contain "+formatValue(text), "instead received "+formatValue(actual), text, actual)
}

func (b *badRequestResultBuilder) WithValidationErrorFor(key string) And[BadRequestResultBuilder] {
	vp, ok := b.tc.Model().(*mvc.ValidationProblem)
	if !ok {
		return b.check("WithValidationErrorFor", false, "bad request result", "be a validation problem with errors for "+formatValue(key),
			"in fact it was "+describeModel(b.tc.Model()), key, b.tc.Model())
	}
	_, has := vp.Errors[key]
	keys := make([]string, 0, len(vp.Errors))
	for k := range vp.Errors {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return b.check("WithValidationErrorFor", has, "bad request result", "contain validation errors for "+formatValue(key),
		"in fact it contained errors for "+describeStrings(keys), key, keys)
}

type NotFoundResultBuilder interface {
	WithModel(expected any) And[NotFoundResultBuilder]
	WithModelOfType(sample any) And[NotFoundResultBuilder]
	WithModelPath(path string, expected any) And[NotFoundResultBuilder]
	WithNoModel() And[NotFoundResultBuilder]
	WithModelPassing(fn func(model any) bool) And[NotFoundResultBuilder]
}

type notFoundResultBuilder struct {
	*assertions[NotFoundResultBuilder]
	*modelAssertions[NotFoundResultBuilder]
}

func newNotFoundResultBuilder(tc *TestContext) NotFoundResultBuilder {
	a := newAssertions[NotFoundResultBuilder](tc, NotFoundResultAssertion)
	result := &notFoundResultBuilder{
		assertions:      a,
		modelAssertions: newModelAssertions(a, "not found result"),
	}
	a.self = result
	return result
}

type ConflictResultBuilder interface {
	WithModel(expected any) And[ConflictResultBuilder]
	WithModelOfType(sample any) And[ConflictResultBuilder]
	WithModelPath(path string, expected any) And[ConflictResultBuilder]
	WithNoModel() And[ConflictResultBuilder]
	WithModelPassing(fn func(model any) bool) And[ConflictResultBuilder]
}

type conflictResultBuilder struct {
	*assertions[ConflictResultBuilder]
	*modelAssertions[ConflictResultBuilder]
}

func newConflictResultBuilder(tc *TestContext) ConflictResultBuilder {
	a := newAssertions[ConflictResultBuilder](tc, ConflictResultAssertion)
	result := &conflictResultBuilder{
		assertions:      a,
		modelAssertions: newModelAssertions(a, "conflict result"),
	}
	a.self = result
	return result
}

type ObjectResultBuilder interface {
	WithModel(expected any) And[ObjectResultBuilder]
	WithModelOfType(sample any) And[ObjectResultBuilder]
	WithModelPath(path string, expected any) And[ObjectResultBuilder]
	WithNoModel() And[ObjectResultBuilder]
	WithModelPassing(fn func(model any) bool) And[ObjectResultBuilder]
	WithStatusCode(code int) And[ObjectResultBuilder]
	WithContentType(contentType string) And[ObjectResultBuilder]
}

type objectResultBuilder struct {
	*assertions[ObjectResultBuilder]
	*modelAssertions[ObjectResultBuilder]
	*statusCodeAssertions[ObjectResultBuilder]
	*contentTypeAssertions[ObjectResultBuilder]
}

func newObjectResultBuilder(tc *TestContext) ObjectResultBuilder {
	a := newAssertions[ObjectResultBuilder](tc, ObjectResultAssertion)
	result := &objectResultBuilder{
		assertions:           a,
		modelAssertions:      newModelAssertions(a, "object result"),
		statusCodeAssertions: &statusCodeAssertions[ObjectResultBuilder]{assertions: a, subject: "object result"},
		contentTypeAssertions: &contentTypeAssertions[ObjectResultBuilder]{assertions: a, subject: "object result", contentType: func() []string {
			if or, ok := objectResultOf(tc.ActionResult()); ok {
				return or.ContentTypes
			}
			return nil
		}},
	}
	a.self = result
	return result
}

type JsonResultBuilder interface {
	WithModel(expected any) And[JsonResultBuilder]
	WithModelOfType(sample any) And[JsonResultBuilder]
	WithModelPath(path string, expected any) And[JsonResultBuilder]
	WithNoModel() And[JsonResultBuilder]
	WithModelPassing(fn func(model any) bool) And[JsonResultBuilder]
	WithStatusCode(code int) And[JsonResultBuilder]
	WithContentType(contentType string) And[JsonResultBuilder]
}

type jsonResultBuilder struct {
	*assertions[JsonResultBuilder]
	*modelAssertions[JsonResultBuilder]
	*statusCodeAssertions[JsonResultBuilder]
	*contentTypeAssertions[JsonResultBuilder]
}

func newJsonResultBuilder(tc *TestContext) JsonResultBuilder {
	a := newAssertions[JsonResultBuilder](tc, JsonResultAssertion)
	result := &jsonResultBuilder{
		assertions:           a,
		modelAssertions:      newModelAssertions(a, "json result"),
		statusCodeAssertions: &statusCodeAssertions[JsonResultBuilder]{assertions: a, subject: "json result"},
		contentTypeAssertions: &contentTypeAssertions[JsonResultBuilder]{assertions: a, subject: "json result", contentType: func() []string {
			if jr, ok := tc.ActionResult().(*mvc.JsonResult); ok && jr.ContentType != "" {
				return []string{jr.ContentType}
			}
			return nil
		}},
	}
	a.self = result
	return result
}
