package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"net/http"
	"reflect"
)

// ShouldReturnBuilder asserts on the result returned by the action
type ShouldReturnBuilder interface {
	// Ok asserts that the action returned an ok result (with or without a value)
	Ok() OkResultBuilder
	// BadRequest asserts that the action returned a bad request result (with or without a value)
	BadRequest() BadRequestResultBuilder
	// NotFound asserts that the action returned a not found result (with or without a value)
	NotFound() NotFoundResultBuilder
	// Conflict asserts that the action returned a conflict result (with or without a value)
	Conflict() ConflictResultBuilder
	// Object asserts that the action returned an object result
	Object() ObjectResultBuilder
	// Json asserts that the action returned a json result
	Json() JsonResultBuilder
	// Created asserts that the action returned a created result (created, created at action or created at route)
	Created() CreatedResultBuilder
	// Redirect asserts that the action returned a redirect result (to url, to action or to route)
	Redirect() RedirectResultBuilder
	Content() ContentResultBuilder
	File() FileResultBuilder
	// StatusCode asserts that the action returned a result with the status code
	StatusCode(code int) And[ShouldReturnBuilder]
	NoContent() And[ShouldReturnBuilder]
	Unauthorized() And[ShouldReturnBuilder]
	Challenge() AuthenticationResultBuilder
	Forbid() AuthenticationResultBuilder
	// Empty asserts that the action returned an empty result
	Empty() And[ShouldReturnBuilder]
	// View asserts that the action returned a view result - if a name is supplied, the view name must match
	View(name ...string) ViewResultBuilder
	PartialView(name ...string) ViewResultBuilder
	ViewComponent(name ...string) ViewResultBuilder
	// ResultOfType asserts that the result is of the same type as the sample
	//
	// if the sample is a pointer to an interface (e.g. (*mvc.ActionResult)(nil)), the result must implement the interface
	ResultOfType(sample any) And[ShouldReturnBuilder]
	// Model asserts that the model of the result deep equals the expected value
	//
	// the model is the value of the result (e.g. the value of an ok object result or of an mvc.ActionResultOf)
	Model(expected any) And[ShouldReturnBuilder]
	ModelOfType(sample any) And[ShouldReturnBuilder]
	// ModelPath asserts the value at a json path of the model
	ModelPath(path string, expected any) And[ShouldReturnBuilder]
	// Nil asserts that the action returned nil
	Nil() And[ShouldReturnBuilder]
	// Passing asserts that the result passes the predicate
	Passing(fn func(result any) bool) And[ShouldReturnBuilder]
}

type shouldReturnBuilder struct {
	*assertions[ShouldReturnBuilder]
	model *modelAssertions[ShouldReturnBuilder]
}

var _ ShouldReturnBuilder = (*shouldReturnBuilder)(nil)

func newShouldReturnBuilder(tc *TestContext) *shouldReturnBuilder {
	a := newAssertions[ShouldReturnBuilder](tc, ActionResultAssertion)
	result := &shouldReturnBuilder{
		assertions: a,
		model:      newModelAssertions(a, "action result"),
	}
	a.self = result
	return result
}

// expectResult checks that the action result matches
func (b *shouldReturnBuilder) expectResult(name string, description string, match func(r mvc.ActionResult) bool) bool {
	r := b.tc.ActionResult()
	ok := r != nil && match(r)
	return b.tc.check(ActionResultAssertion, name, ok, "action result", "be "+description,
		"in fact it was "+describeResult(b.tc.Result()), description, describeResult(b.tc.Result()))
}

func isType[T any](r mvc.ActionResult) bool {
	_, ok := r.(T)
	return ok
}

func (b *shouldReturnBuilder) Ok() OkResultBuilder {
	b.expectResult("Ok", "ok result", func(r mvc.ActionResult) bool {
		return isType[*mvc.OkResult](r) || isType[*mvc.OkObjectResult](r)
	})
	return newOkResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) BadRequest() BadRequestResultBuilder {
	b.expectResult("BadRequest", "bad request result", func(r mvc.ActionResult) bool {
		return isType[*mvc.BadRequestResult](r) || isType[*mvc.BadRequestObjectResult](r)
	})
	return newBadRequestResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) NotFound() NotFoundResultBuilder {
	b.expectResult("NotFound", "not found result", func(r mvc.ActionResult) bool {
		return isType[*mvc.NotFoundResult](r) || isType[*mvc.NotFoundObjectResult](r)
	})
	return newNotFoundResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Conflict() ConflictResultBuilder {
	b.expectResult("Conflict", "conflict result", func(r mvc.ActionResult) bool {
		return isType[*mvc.ConflictResult](r) || isType[*mvc.ConflictObjectResult](r)
	})
	return newConflictResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Object() ObjectResultBuilder {
	b.expectResult("Object", "object result", func(r mvc.ActionResult) bool {
		_, ok := objectResultOf(r)
		return ok
	})
	return newObjectResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Json() JsonResultBuilder {
	b.expectResult("Json", "json result", isType[*mvc.JsonResult])
	return newJsonResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Created() CreatedResultBuilder {
	b.expectResult("Created", "created result", func(r mvc.ActionResult) bool {
		return isType[*mvc.CreatedResult](r) || isType[*mvc.CreatedAtActionResult](r) || isType[*mvc.CreatedAtRouteResult](r)
	})
	return newCreatedResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Redirect() RedirectResultBuilder {
	b.expectResult("Redirect", "redirect result", func(r mvc.ActionResult) bool {
		return isType[*mvc.RedirectResult](r) || isType[*mvc.RedirectToActionResult](r) || isType[*mvc.RedirectToRouteResult](r)
	})
	return newRedirectResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) Content() ContentResultBuilder {
	b.expectResult("Content", "content result", isType[*mvc.ContentResult])
	return newContentResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) File() FileResultBuilder {
	b.expectResult("File", "file result", isType[*mvc.FileContentResult])
	return newFileResultBuilder(b.tc)
}

func (b *shouldReturnBuilder) StatusCode(code int) And[ShouldReturnBuilder] {
	actual, ok := statusCodeOf(b.tc.ActionResult())
	if !ok {
		return b.check("StatusCode", false, "action result", fmt.Sprintf("have %d status code", code),
			"in fact it was "+describeResult(b.tc.Result())+" which has no status code", code, nil)
	}
	return b.check("StatusCode", actual == code, "action result", fmt.Sprintf("have %d status code", code),
		fmt.Sprintf("instead received %d", actual), code, actual)
}

func (b *shouldReturnBuilder) NoContent() And[ShouldReturnBuilder] {
	b.expectResult("NoContent", "no content result", func(r mvc.ActionResult) bool {
		sc, _ := statusCodeOf(r)
		return isType[*mvc.NoContentResult](r) || (isType[*mvc.StatusCodeResult](r) && sc == http.StatusNoContent)
	})
	return b.and()
}

func (b *shouldReturnBuilder) Unauthorized() And[ShouldReturnBuilder] {
	b.expectResult("Unauthorized", "unauthorized result", func(r mvc.ActionResult) bool {
		sc, _ := statusCodeOf(r)
		return isType[*mvc.UnauthorizedResult](r) || (isType[*mvc.StatusCodeResult](r) && sc == http.StatusUnauthorized)
	})
	return b.and()
}

func (b *shouldReturnBuilder) Challenge() AuthenticationResultBuilder {
	b.expectResult("Challenge", "challenge result", isType[*mvc.ChallengeResult])
	return newAuthenticationResultBuilder(b.tc, "challenge result")
}

func (b *shouldReturnBuilder) Forbid() AuthenticationResultBuilder {
	b.expectResult("Forbid", "forbid result", isType[*mvc.ForbidResult])
	return newAuthenticationResultBuilder(b.tc, "forbid result")
}

func (b *shouldReturnBuilder) Empty() And[ShouldReturnBuilder] {
	b.expectResult("Empty", "empty result", isType[*mvc.EmptyResult])
	return b.and()
}

func (b *shouldReturnBuilder) View(name ...string) ViewResultBuilder {
	b.expectResult("View", "view result", isType[*mvc.ViewResult])
	return newViewResultBuilder(b.tc, "view result", name...)
}

func (b *shouldReturnBuilder) PartialView(name ...string) ViewResultBuilder {
	b.expectResult("PartialView", "partial view result", isType[*mvc.PartialViewResult])
	return newViewResultBuilder(b.tc, "partial view result", name...)
}

func (b *shouldReturnBuilder) ViewComponent(name ...string) ViewResultBuilder {
	b.expectResult("ViewComponent", "view component result", isType[*mvc.ViewComponentResult])
	return newViewResultBuilder(b.tc, "view component result", name...)
}

func (b *shouldReturnBuilder) ResultOfType(sample any) And[ShouldReturnBuilder] {
	actual := b.tc.Result()
	expected := reflect.TypeOf(sample)
	if expected != nil && expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Interface {
		expected = expected.Elem()
	}
	return b.check("ResultOfType", isOfType(actual, sample), "action result", "be of type "+friendlyTypeName(expected),
		"in fact it was of type "+typeName(actual), friendlyTypeName(expected), typeName(actual))
}

func (b *shouldReturnBuilder) Model(expected any) And[ShouldReturnBuilder] {
	return b.model.WithModel(expected)
}

func (b *shouldReturnBuilder) ModelOfType(sample any) And[ShouldReturnBuilder] {
	return b.model.WithModelOfType(sample)
}

func (b *shouldReturnBuilder) ModelPath(path string, expected any) And[ShouldReturnBuilder] {
	return b.model.WithModelPath(path, expected)
}

func (b *shouldReturnBuilder) Nil() And[ShouldReturnBuilder] {
	actual := b.tc.Result()
	return b.check("Nil", isNil(actual), "action result", "be nil", "in fact it was "+describeModel(actual), nil, actual)
}

func (b *shouldReturnBuilder) Passing(fn func(result any) bool) And[ShouldReturnBuilder] {
	return b.check("Passing", fn(b.tc.Result()), "action result", "pass the given predicate", "it failed", nil, b.tc.Result())
}

// objectResultOf returns the object result of any result that is (or embeds) an mvc.ObjectResult
func objectResultOf(r mvc.ActionResult) (*mvc.ObjectResult, bool) {
	if or, ok := r.(*mvc.ObjectResult); ok {
		return or, true
	}
	rv := reflect.ValueOf(r)
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct {
		if f := rv.Elem().FieldByName("ObjectResult"); f.IsValid() && f.CanAddr() {
			if or, ok := f.Addr().Interface().(*mvc.ObjectResult); ok {
				return or, true
			}
		}
	}
	return nil, false
}
