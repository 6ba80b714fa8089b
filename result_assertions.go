package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// modelOf returns the model (value) carried by an action result
func modelOf(r mvc.ActionResult) (any, bool) {
	switch rt := r.(type) {
	case *mvc.ObjectResult:
		return rt.Value, true
	case *mvc.JsonResult:
		return rt.Value, true
	case *mvc.ViewResult:
		return rt.Model, true
	case *mvc.PartialViewResult:
		return rt.Model, true
	case *mvc.ViewComponentResult:
		return rt.Arguments, true
	}
	rv := reflect.Indirect(reflect.ValueOf(r))
	if rv.Kind() == reflect.Struct {
		if f := rv.FieldByName("ObjectResult"); f.IsValid() && f.CanInterface() {
			if or, ok := f.Interface().(mvc.ObjectResult); ok {
				return or.Value, true
			}
		}
	}
	return nil, false
}

func statusCodeOf(r mvc.ActionResult) (int, bool) {
	if sc, ok := r.(mvc.StatusCodeResultProvider); ok {
		return sc.StatusCodeValue(), true
	}
	return 0, false
}

func describeModel(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%s %s", typeName(v), formatValue(v))
}

func describeResult(v any) string {
	if isNil(v) {
		return "nil"
	}
	return typeName(v)
}

// modelAssertions are the assertions on the model of a result
type modelAssertions[B any] struct {
	*assertions[B]
	subject string
}

func newModelAssertions[B any](a *assertions[B], subject string) *modelAssertions[B] {
	return &modelAssertions[B]{assertions: a, subject: subject}
}

// WithModel asserts that the model deep equals the expected model (see Equal)
func (m *modelAssertions[B]) WithModel(expected any) And[B] {
	actual := m.tc.Model()
	return m.checkAs(ResponseModelAssertion, "WithModel", Equal(expected, actual),
		m.subject+" model", "be "+describeModel(expected), "in fact it was "+describeModel(actual), expected, actual)
}

// WithModelOfType asserts that the model is of the same type as the sample
//
// if the sample is a pointer to an interface (e.g. (*fmt.Stringer)(nil)), the model must implement the interface
func (m *modelAssertions[B]) WithModelOfType(sample any) And[B] {
	actual := m.tc.Model()
	expected := reflect.TypeOf(sample)
	if expected != nil && expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Interface {
		expected = expected.Elem()
	}
	return m.checkAs(ResponseModelAssertion, "WithModelOfType", isOfType(actual, sample),
		m.subject+" model", "be of type "+friendlyTypeName(expected), "in fact it was of type "+typeName(actual), friendlyTypeName(expected), typeName(actual))
}

// WithModelPath asserts the value at a json path of the model (the model is represented as json)
//
// e.g.
//
//	WithModelPath("owner.name", "Bilbo")
//	WithModelPath("tags.LEN", 2)
func (m *modelAssertions[B]) WithModelPath(path string, expected any) And[B] {
	actual, err := modelPath(m.tc.Model(), path)
	if err != nil {
		return m.checkAs(ResponseModelAssertion, "WithModelPath", false,
			fmt.Sprintf("%s model path %q", m.subject, path), "be "+formatValue(expected), "it could not be resolved ("+err.Error()+")", expected, nil)
	}
	return m.checkAs(ResponseModelAssertion, "WithModelPath", Equal(expected, actual),
		fmt.Sprintf("%s model path %q", m.subject, path), "be "+formatValue(expected), "in fact it was "+formatValue(actual), expected, actual)
}

// WithNoModel asserts that the result has no model
func (m *modelAssertions[B]) WithNoModel() And[B] {
	actual := m.tc.Model()
	return m.checkAs(ResponseModelAssertion, "WithNoModel", isNil(actual),
		m.subject, "not have a model", "in fact it had "+describeModel(actual), nil, actual)
}

// WithModelPassing asserts that the model passes the predicate
func (m *modelAssertions[B]) WithModelPassing(fn func(model any) bool) And[B] {
	actual := m.tc.Model()
	return m.checkAs(ResponseModelAssertion, "WithModelPassing", fn(actual),
		m.subject+" model", "pass the given predicate", "it failed", nil, actual)
}

// statusCodeAssertions are the assertions on the status code of a result
type statusCodeAssertions[B any] struct {
	*assertions[B]
	subject string
}

func (s *statusCodeAssertions[B]) WithStatusCode(code int) And[B] {
	actual, _ := statusCodeOf(s.tc.ActionResult())
	return s.check("WithStatusCode", actual == code,
		s.subject, fmt.Sprintf("have %d status code", code), fmt.Sprintf("instead received %d", actual), code, actual)
}

// contentTypeAssertions are the assertions on the content type of a result
type contentTypeAssertions[B any] struct {
	*assertions[B]
	subject     string
	contentType func() []string
}

func (c *contentTypeAssertions[B]) WithContentType(contentType string) And[B] {
	actual := c.contentType()
	ok := slices.ContainsFunc(actual, func(ct string) bool {
		return strings.EqualFold(ct, contentType)
	})
	return c.check("WithContentType", ok,
		c.subject, fmt.Sprintf("have '%s' content type", contentType), "instead received "+describeStrings(actual), contentType, actual)
}

func describeStrings(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return "'" + strings.Join(values, "', '") + "'"
}

// routeValueAssertions are the assertions on the route values of a result
type routeValueAssertions[B any] struct {
	*assertions[B]
	subject     string
	routeValues func() mvc.RouteValues
}

// ContainingRouteValue asserts that the route values contain the key (and, if supplied, the value)
func (r *routeValueAssertions[B]) ContainingRouteValue(key string, value ...any) And[B] {
	actual, ok := r.routeValues().Lookup(key)
	if !ok {
		return r.check("ContainingRouteValue", false,
			r.subject, fmt.Sprintf("have route value with '%s' key", key), "such was not found", key, nil)
	}
	if len(value) == 0 {
		return r.check("ContainingRouteValue", true, "", "", "", nil, nil)
	}
	return r.check("ContainingRouteValue", Equal(value[0], actual),
		r.subject, fmt.Sprintf("have route value with '%s' key and the provided value", key),
		fmt.Sprintf("the value was different (expected %s, actual %s)", formatValue(value[0]), formatValue(actual)), value[0], actual)
}

// ContainingRouteValues asserts that the route values contain all the keys and values
func (r *routeValueAssertions[B]) ContainingRouteValues(values map[string]any) And[B] {
	actual := r.routeValues()
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if av, ok := actual.Lookup(k); !ok || !Equal(values[k], av) {
			return r.check("ContainingRouteValues", false,
				r.subject, fmt.Sprintf("have route value with '%s' key and value %s", k, formatValue(values[k])),
				"in fact route values were "+formatRouteValues(actual), values, map[string]any(actual))
		}
	}
	return r.check("ContainingRouteValues", true, "", "", "", nil, nil)
}

func formatRouteValues(rv mvc.RouteValues) string {
	if len(rv) == 0 {
		return "empty"
	}
	parts := make([]string, 0, len(rv))
	for _, k := range slices.Sorted(maps.Keys(rv)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, rv[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
