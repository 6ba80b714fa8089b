package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"strings"
)

// locationTarget is where a created or redirect result points to
type locationTarget struct {
	url         string
	action      string
	controller  string
	route       string
	routeValues mvc.RouteValues
	permanent   bool
}

func targetOf(r mvc.ActionResult) locationTarget {
	switch rt := r.(type) {
	case *mvc.CreatedResult:
		return locationTarget{url: rt.Location}
	case *mvc.CreatedAtActionResult:
		return locationTarget{action: rt.ActionName, controller: rt.ControllerName, routeValues: rt.RouteValues}
	case *mvc.CreatedAtRouteResult:
		return locationTarget{route: rt.RouteName, routeValues: rt.RouteValues}
	case *mvc.RedirectResult:
		return locationTarget{url: rt.Url, permanent: rt.Permanent}
	case *mvc.RedirectToActionResult:
		return locationTarget{action: rt.ActionName, controller: rt.ControllerName, routeValues: rt.RouteValues, permanent: rt.Permanent}
	case *mvc.RedirectToRouteResult:
		return locationTarget{route: rt.RouteName, routeValues: rt.RouteValues, permanent: rt.Permanent}
	}
	return locationTarget{}
}

// locationAssertions are the assertions on the target of a created or redirect result
type locationAssertions[B any] struct {
	*assertions[B]
	subject string
}

func (l *locationAssertions[B]) target() locationTarget {
	return targetOf(l.tc.ActionResult())
}

func (l *locationAssertions[B]) url(name string, expected string) And[B] {
	actual := l.target().url
	return l.check(name, actual == expected, l.subject+" location", "be "+formatValue(expected),
		"instead received "+formatValue(actual), expected, actual)
}

func (l *locationAssertions[B]) action(name string, expected string) And[B] {
	actual := l.target().action
	return l.check(name, strings.EqualFold(actual, expected), l.subject, fmt.Sprintf("have '%s' action name", expected),
		fmt.Sprintf("instead received '%s'", actual), expected, actual)
}

// controller asserts the controller name - a result with no controller name targets the controller under test
func (l *locationAssertions[B]) controller(name string, expected string) And[B] {
	actual := l.target().controller
	if actual == "" && l.target().action != "" {
		actual = l.tc.ControllerName()
	}
	expected = strings.TrimSuffix(expected, "Controller")
	return l.check(name, strings.EqualFold(actual, expected), l.subject, fmt.Sprintf("have '%s' controller name", expected),
		fmt.Sprintf("instead received '%s'", actual), expected, actual)
}

func (l *locationAssertions[B]) route(name string, expected string) And[B] {
	actual := l.target().route
	return l.check(name, actual == expected, l.subject, fmt.Sprintf("have '%s' route name", expected),
		fmt.Sprintf("instead received '%s'", actual), expected, actual)
}

type CreatedResultBuilder interface {
	WithModel(expected any) And[CreatedResultBuilder]
	WithModelOfType(sample any) And[CreatedResultBuilder]
	WithModelPath(path string, expected any) And[CreatedResultBuilder]
	WithNoModel() And[CreatedResultBuilder]
	WithModelPassing(fn func(model any) bool) And[CreatedResultBuilder]
	// AtLocation asserts the explicit location of a created result
	AtLocation(location string) And[CreatedResultBuilder]
	// AtAction asserts the action name of a created at action result
	AtAction(action string) And[CreatedResultBuilder]
	// AtController asserts the controller name of a created at action result
	AtController(controller string) And[CreatedResultBuilder]
	// AtRoute asserts the route name of a created at route result
	AtRoute(route string) And[CreatedResultBuilder]
	ContainingRouteValue(key string, value ...any) And[CreatedResultBuilder]
	ContainingRouteValues(values map[string]any) And[CreatedResultBuilder]
}

type createdResultBuilder struct {
	*assertions[CreatedResultBuilder]
	*modelAssertions[CreatedResultBuilder]
	*routeValueAssertions[CreatedResultBuilder]
	location *locationAssertions[CreatedResultBuilder]
}

func newCreatedResultBuilder(tc *TestContext) CreatedResultBuilder {
	a := newAssertions[CreatedResultBuilder](tc, CreatedResultAssertion)
	result := &createdResultBuilder{
		assertions:      a,
		modelAssertions: newModelAssertions(a, "created result"),
		routeValueAssertions: &routeValueAssertions[CreatedResultBuilder]{assertions: a, subject: "created result", routeValues: func() mvc.RouteValues {
			return targetOf(tc.ActionResult()).routeValues
		}},
		location: &locationAssertions[CreatedResultBuilder]{assertions: a, subject: "created result"},
	}
	a.self = result
	return result
}

func (b *createdResultBuilder) AtLocation(location string) And[CreatedResultBuilder] {
	return b.location.url("AtLocation", location)
}

func (b *createdResultBuilder) AtAction(action string) And[CreatedResultBuilder] {
	return b.location.action("AtAction", action)
}

func (b *createdResultBuilder) AtController(controller string) And[CreatedResultBuilder] {
	return b.location.controller("AtController", controller)
}

func (b *createdResultBuilder) AtRoute(route string) And[CreatedResultBuilder] {
	return b.location.route("AtRoute", route)
}

type RedirectResultBuilder interface {
	ToUrl(url string) And[RedirectResultBuilder]
	ToAction(action string) And[RedirectResultBuilder]
	ToController(controller string) And[RedirectResultBuilder]
	ToRoute(route string) And[RedirectResultBuilder]
	ContainingRouteValue(key string, value ...any) And[RedirectResultBuilder]
	ContainingRouteValues(values map[string]any) And[RedirectResultBuilder]
	// Permanent asserts that the redirect is permanent
	Permanent() And[RedirectResultBuilder]
	// Temporary asserts that the redirect is not permanent
	Temporary() And[RedirectResultBuilder]
}

type redirectResultBuilder struct {
	*assertions[RedirectResultBuilder]
	*routeValueAssertions[RedirectResultBuilder]
	location *locationAssertions[RedirectResultBuilder]
}

func newRedirectResultBuilder(tc *TestContext) RedirectResultBuilder {
	a := newAssertions[RedirectResultBuilder](tc, RedirectResultAssertion)
	result := &redirectResultBuilder{
		assertions: a,
		routeValueAssertions: &routeValueAssertions[RedirectResultBuilder]{assertions: a, subject: "redirect result", routeValues: func() mvc.RouteValues {
			return targetOf(tc.ActionResult()).routeValues
		}},
		location: &locationAssertions[RedirectResultBuilder]{assertions: a, subject: "redirect result"},
	}
	a.self = result
	return result
}

func (b *redirectResultBuilder) ToUrl(url string) And[RedirectResultBuilder] {
	return b.location.url("ToUrl", url)
}

func (b *redirectResultBuilder) ToAction(action string) And[RedirectResultBuilder] {
	return b.location.action("ToAction", action)
}

func (b *redirectResultBuilder) ToController(controller string) And[RedirectResultBuilder] {
	return b.location.controller("ToController", controller)
}

func (b *redirectResultBuilder) ToRoute(route string) And[RedirectResultBuilder] {
	return b.location.route("ToRoute", route)
}

func (b *redirectResultBuilder) Permanent() And[RedirectResultBuilder] {
	return b.check("Permanent", b.location.target().permanent, "redirect result", "be permanent", "in fact it was temporary", true, false)
}

func (b *redirectResultBuilder) Temporary() And[RedirectResultBuilder] {
	return b.check("Temporary", !b.location.target().permanent, "redirect result", "be temporary", "in fact it was permanent", false, true)
}
