package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/common"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/go-andiamo/mvctest/resolve"
	htesting "github.com/go-andiamo/mvctest/testing"
	"maps"
	"slices"
	"strings"
)

// RouteTestBuilder tests the routing (and argument binding) of requests to the actions of an application
type RouteTestBuilder struct {
	t    htesting.T
	host *host
}

// Routes starts route testing of the application
//
// if app is nil, the application of the default test environment is used
func Routes(t htesting.T, app *mvc.Application) *RouteTestBuilder {
	return &RouteTestBuilder{
		t:    t,
		host: hostFor(app),
	}
}

// ShouldMap resolves a request - the target is either a path (string, optionally with a query string) or a *RequestBuilder
func (b *RouteTestBuilder) ShouldMap(target any) RouteMappingBuilder {
	switch tt := target.(type) {
	case string:
		return b.resolve(Request().WithPath(tt))
	case *RequestBuilder:
		return b.resolve(tt)
	}
	panic(fmt.Sprintf("route target must be a path or a *RequestBuilder - but %s was supplied", typeName(target)))
}

// ShouldMapRequest resolves the request built by the function
func (b *RouteTestBuilder) ShouldMapRequest(fn func(rb *RequestBuilder)) RouteMappingBuilder {
	rb := Request()
	fn(rb)
	return b.resolve(rb)
}

func (b *RouteTestBuilder) resolve(rb *RequestBuilder) RouteMappingBuilder {
	services := b.host.newServices()
	hc := mvc.NewHttpContext(rb.Build(), services)
	hc.User = rb.principal()
	resolved := resolve.Resolve(services, b.host.app.Router(), mvc.NewRouteContext(hc))
	path := rb.Path()
	if q := hc.Request.URL.RawQuery; q != "" {
		path += "?" + q
	}
	log().Debug("resolved route", "method", rb.method, "path", path, "reason", resolved.Reason)
	result := &routeMappingBuilder{
		helper:   htesting.NewHelper(b.t, nil, nil),
		app:      b.host.app,
		method:   rb.method,
		path:     path,
		resolved: resolved,
	}
	result.self = &andAlso[RouteMappingBuilder]{builder: result}
	if resolved.Failed() && resolved.Reason != resolve.NoActionReason {
		reportFailure(nil, fmt.Errorf("resolve failed: %s", resolved.Reason))
	}
	return result
}

// RouteMappingBuilder asserts on the resolved action (and bound arguments) of a request
type RouteMappingBuilder interface {
	// To asserts that the request resolves to the action of the call - literal arguments of the call must
	// equal the bound arguments (placeholders are ignored)
	To(call *ActionCall) And[RouteMappingBuilder]
	ToAction(name string) And[RouteMappingBuilder]
	ToController(name string) And[RouteMappingBuilder]
	ToRouteValue(key string, value ...any) And[RouteMappingBuilder]
	ToRouteValues(values map[string]any) And[RouteMappingBuilder]
	ToValidModelState() And[RouteMappingBuilder]
	ToInvalidModelState(numberOfErrors ...int) And[RouteMappingBuilder]
	// ToNonExistingRoute asserts that no action matches the request
	ToNonExistingRoute() And[RouteMappingBuilder]
	// Resolved returns the outcome of resolving the request
	Resolved() *resolve.ResolvedRouteContext
	// Failure returns the first assertion failure (nil if none)
	Failure() *AssertionError
}

type routeMappingBuilder struct {
	helper   htesting.Helper
	app      *mvc.Application
	method   string
	path     string
	resolved *resolve.ResolvedRouteContext
	failure  *AssertionError
	self     And[RouteMappingBuilder]
}

func (b *routeMappingBuilder) Resolved() *resolve.ResolvedRouteContext {
	return b.resolved
}

func (b *routeMappingBuilder) Failure() *AssertionError {
	return b.failure
}

func (b *routeMappingBuilder) action() common.Action {
	if b.resolved.Action != nil {
		return b.resolved.Action
	}
	return nil
}

func (b *routeMappingBuilder) check(name string, ok bool, expected, actual string, ev, av any) And[RouteMappingBuilder] {
	frame := callerFrame()
	if b.failure != nil || b.helper.Failed() {
		return b.self
	}
	if ok {
		reportMet(b.action(), name, frame)
		return b.self
	}
	err := newAssertionError(fmt.Sprintf("Expected route '%s'", b.path), RouteAssertion, name, frame, "", expected, actual, ev, av)
	if b.resolved.Action != nil {
		err.controller = b.resolved.ControllerType.Elem().Name()
		err.action = b.resolved.ActionName
	}
	b.failure = err
	reportUnmet(b.action(), err)
	b.helper.Report(err)
	return b.self
}

// matched checks that the request resolved to an action
func (b *routeMappingBuilder) matched(name string) bool {
	if !b.resolved.Failed() {
		return true
	}
	b.check(name, false, "be resolved", b.resolved.Reason, nil, b.resolved.Reason)
	return false
}

func (b *routeMappingBuilder) describeMatch() string {
	return fmt.Sprintf("%s action in %s", b.resolved.ActionName, b.resolved.ControllerType.Elem().Name())
}

func (b *routeMappingBuilder) To(call *ActionCall) And[RouteMappingBuilder] {
	if !b.matched("To") {
		return b.self
	}
	ct := call.controllerType
	if ct == nil {
		ct = b.resolved.ControllerType
	}
	d := call.descriptor(b.app, ct)
	if d != b.resolved.Action {
		return b.check("To", false, fmt.Sprintf("match %s action in %s", d.ActionName, d.ControllerType.Elem().Name()),
			"instead matched "+b.describeMatch(), d.DisplayName(), b.resolved.Action.DisplayName())
	}
	for i, p := range d.Parameters {
		arg := call.args[i]
		if _, isPlaceholder := arg.(*placeholder); isPlaceholder {
			continue
		}
		bound := b.resolved.Arguments[p.Name]
		if !Equal(arg, bound) {
			return b.check("To", false, fmt.Sprintf("have '%s' argument bound to %s", p.Name, formatValue(arg)),
				"instead it was bound to "+formatValue(bound), arg, bound)
		}
	}
	return b.check("To", true, "", "", nil, nil)
}

func (b *routeMappingBuilder) ToAction(name string) And[RouteMappingBuilder] {
	if !b.matched("ToAction") {
		return b.self
	}
	return b.check("ToAction", strings.EqualFold(b.resolved.ActionName, name), fmt.Sprintf("match %s action", name),
		"instead matched "+b.describeMatch(), name, b.resolved.ActionName)
}

func (b *routeMappingBuilder) ToController(name string) And[RouteMappingBuilder] {
	if !b.matched("ToController") {
		return b.self
	}
	name = strings.TrimSuffix(name, "Controller")
	return b.check("ToController", strings.EqualFold(b.resolved.ControllerName, name), fmt.Sprintf("match %s controller", name),
		"instead matched "+b.describeMatch(), name, b.resolved.ControllerName)
}

func (b *routeMappingBuilder) routeValues() mvc.RouteValues {
	if b.resolved.RouteData == nil {
		return mvc.RouteValues{}
	}
	return b.resolved.RouteData.Values
}

func (b *routeMappingBuilder) ToRouteValue(key string, value ...any) And[RouteMappingBuilder] {
	if !b.matched("ToRouteValue") {
		return b.self
	}
	actual, ok := b.routeValues().Lookup(key)
	if !ok {
		return b.check("ToRouteValue", false, fmt.Sprintf("contain route value with '%s' key", key), "such was not found", key, nil)
	}
	if len(value) == 0 {
		return b.check("ToRouteValue", true, "", "", nil, nil)
	}
	return b.check("ToRouteValue", Equal(value[0], actual), fmt.Sprintf("contain route value with '%s' key and the provided value", key),
		fmt.Sprintf("the value was different (expected %s, actual %s)", formatValue(value[0]), formatValue(actual)), value[0], actual)
}

func (b *routeMappingBuilder) ToRouteValues(values map[string]any) And[RouteMappingBuilder] {
	if !b.matched("ToRouteValues") {
		return b.self
	}
	actual := b.routeValues()
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if av, ok := actual.Lookup(k); !ok || !Equal(values[k], av) {
			return b.check("ToRouteValues", false, fmt.Sprintf("contain route value with '%s' key and value %s", k, formatValue(values[k])),
				"in fact route values were "+formatRouteValues(actual), values, map[string]any(actual))
		}
	}
	return b.check("ToRouteValues", true, "", "", nil, nil)
}

func (b *routeMappingBuilder) ToValidModelState() And[RouteMappingBuilder] {
	if !b.matched("ToValidModelState") {
		return b.self
	}
	ms := b.resolved.ModelState
	return b.check("ToValidModelState", ms.IsValid(), "have valid model state",
		fmt.Sprintf("in fact it had %d errors (%s)", ms.ErrorCount(), describeModelErrors(ms)), 0, ms.ErrorCount())
}

func (b *routeMappingBuilder) ToInvalidModelState(numberOfErrors ...int) And[RouteMappingBuilder] {
	if !b.matched("ToInvalidModelState") {
		return b.self
	}
	ms := b.resolved.ModelState
	if len(numberOfErrors) == 0 {
		return b.check("ToInvalidModelState", !ms.IsValid(), "have invalid model state", "in fact it was valid", nil, 0)
	}
	n := numberOfErrors[0]
	return b.check("ToInvalidModelState", !ms.IsValid() && ms.ErrorCount() == n, fmt.Sprintf("have invalid model state with %d errors", n),
		fmt.Sprintf("in fact contained %d", ms.ErrorCount()), n, ms.ErrorCount())
}

func (b *routeMappingBuilder) ToNonExistingRoute() And[RouteMappingBuilder] {
	switch {
	case b.resolved.Reason == resolve.NoActionReason:
		return b.check("ToNonExistingRoute", true, "", "", nil, nil)
	case b.resolved.Failed():
		return b.check("ToNonExistingRoute", false, "be non-existing", b.resolved.Reason, nil, b.resolved.Reason)
	}
	return b.check("ToNonExistingRoute", false, "be non-existing", "in fact it matched "+b.describeMatch(), nil, b.resolved.ActionName)
}
