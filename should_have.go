package mvctest

import (
	"context"
	"fmt"
	"github.com/go-andiamo/columbus"
	"github.com/go-andiamo/mvctest/mvc"
	"net/http"
	"reflect"
	"slices"
	"strings"
)

// ShouldHaveBuilder asserts on the state of the controller (and its ancillary state) after the action was called
type ShouldHaveBuilder interface {
	// ValidModelState asserts that the model state is valid
	ValidModelState() And[ShouldHaveBuilder]
	// InvalidModelState asserts that the model state is invalid - and, if supplied, the number of errors
	InvalidModelState(numberOfErrors ...int) And[ShouldHaveBuilder]
	// ModelStateFor asserts on the model state entry for a key
	ModelStateFor(key string) ModelStateForBuilder
	Session(fn func(SessionAssertions)) And[ShouldHaveBuilder]
	DistributedCache(fn func(DistributedCacheAssertions)) And[ShouldHaveBuilder]
	MemoryCache(fn func(MemoryCacheAssertions)) And[ShouldHaveBuilder]
	TempData(fn func(TempDataAssertions)) And[ShouldHaveBuilder]
	// ActionAttributes asserts on the attributes declared on the called action
	ActionAttributes(fn func(AttributesAssertions)) And[ShouldHaveBuilder]
	// ControllerAttributes asserts on the attributes declared on the controller
	ControllerAttributes(fn func(AttributesAssertions)) And[ShouldHaveBuilder]
	// HttpResponse asserts on the http response written by executing the action result
	HttpResponse(fn func(HttpResponseAssertions)) And[ShouldHaveBuilder]
	// Data asserts on the state of a database (registered using ControllerBuilder.WithDatabase)
	//
	// Note: when only one database is used by tests, the dbName can be ""
	Data(dbName string, fn func(DataAssertions)) And[ShouldHaveBuilder]
}

type shouldHaveBuilder struct {
	*assertions[ShouldHaveBuilder]
}

func newShouldHaveBuilder(tc *TestContext) ShouldHaveBuilder {
	a := newAssertions[ShouldHaveBuilder](tc, ModelErrorAssertion)
	result := &shouldHaveBuilder{assertions: a}
	a.self = result
	return result
}

func (b *shouldHaveBuilder) ValidModelState() And[ShouldHaveBuilder] {
	ms := b.tc.ModelState()
	return b.check("ValidModelState", ms.IsValid(), "model state", "be valid",
		fmt.Sprintf("in fact it had %d errors (%s)", ms.ErrorCount(), describeModelErrors(ms)), 0, ms.ErrorCount())
}

func (b *shouldHaveBuilder) InvalidModelState(numberOfErrors ...int) And[ShouldHaveBuilder] {
	ms := b.tc.ModelState()
	if len(numberOfErrors) == 0 {
		return b.check("InvalidModelState", !ms.IsValid(), "model state", "be invalid", "in fact it was valid", nil, 0)
	}
	n := numberOfErrors[0]
	return b.check("InvalidModelState", !ms.IsValid() && ms.ErrorCount() == n, "model state", fmt.Sprintf("have %d errors", n),
		fmt.Sprintf("in fact contained %d", ms.ErrorCount()), n, ms.ErrorCount())
}

func describeModelErrors(ms *mvc.ModelStateDictionary) string {
	parts := make([]string, 0)
	for _, k := range ms.Keys() {
		for _, msg := range ms.ErrorMessages(k) {
			parts = append(parts, fmt.Sprintf("%s: %s", k, msg))
		}
	}
	return strings.Join(parts, "; ")
}

func (b *shouldHaveBuilder) ModelStateFor(key string) ModelStateForBuilder {
	return newModelStateForBuilder(b.tc, key)
}

func (b *shouldHaveBuilder) Session(fn func(SessionAssertions)) And[ShouldHaveBuilder] {
	fn(newSessionAssertions(b.tc))
	return b.and()
}

func (b *shouldHaveBuilder) DistributedCache(fn func(DistributedCacheAssertions)) And[ShouldHaveBuilder] {
	fn(newDistributedCacheAssertions(b.tc))
	return b.and()
}

func (b *shouldHaveBuilder) MemoryCache(fn func(MemoryCacheAssertions)) And[ShouldHaveBuilder] {
	fn(newMemoryCacheAssertions(b.tc))
	return b.and()
}

func (b *shouldHaveBuilder) TempData(fn func(TempDataAssertions)) And[ShouldHaveBuilder] {
	fn(newTempDataAssertions(b.tc))
	return b.and()
}

func (b *shouldHaveBuilder) ActionAttributes(fn func(AttributesAssertions)) And[ShouldHaveBuilder] {
	fn(newAttributesAssertions(b.tc, "action", b.tc.MethodAttributes()))
	return b.and()
}

func (b *shouldHaveBuilder) ControllerAttributes(fn func(AttributesAssertions)) And[ShouldHaveBuilder] {
	fn(newAttributesAssertions(b.tc, "controller", b.tc.ControllerAttributes()))
	return b.and()
}

func (b *shouldHaveBuilder) HttpResponse(fn func(HttpResponseAssertions)) And[ShouldHaveBuilder] {
	fn(newHttpResponseAssertions(b.tc))
	return b.and()
}

func (b *shouldHaveBuilder) Data(dbName string, fn func(DataAssertions)) And[ShouldHaveBuilder] {
	fn(newDataAssertions(b.tc, b.tc.mustDb(dbName)))
	return b.and()
}

type ModelStateForBuilder interface {
	// ContainingError asserts that the entry has an error - and, if supplied, with the message
	ContainingError(message ...string) And[ModelStateForBuilder]
	ContainingNoErrors() And[ModelStateForBuilder]
	// WithAttemptedValue asserts the raw (attempted) value that was bound for the key
	WithAttemptedValue(value string) And[ModelStateForBuilder]
}

type modelStateForBuilder struct {
	*assertions[ModelStateForBuilder]
	key string
}

func newModelStateForBuilder(tc *TestContext, key string) ModelStateForBuilder {
	a := newAssertions[ModelStateForBuilder](tc, ModelErrorAssertion)
	result := &modelStateForBuilder{assertions: a, key: key}
	a.self = result
	return result
}

func (b *modelStateForBuilder) subject() string {
	return fmt.Sprintf("model state entry for '%s'", b.key)
}

func (b *modelStateForBuilder) ContainingError(message ...string) And[ModelStateForBuilder] {
	msgs := b.tc.ModelState().ErrorMessages(b.key)
	if len(message) == 0 {
		return b.check("ContainingError", len(msgs) > 0, b.subject(), "contain an error", "in fact it contained none", nil, msgs)
	}
	return b.check("ContainingError", slices.Contains(msgs, message[0]), b.subject(), "contain error "+formatValue(message[0]),
		"in fact it contained "+describeStrings(msgs), message[0], msgs)
}

func (b *modelStateForBuilder) ContainingNoErrors() And[ModelStateForBuilder] {
	msgs := b.tc.ModelState().ErrorMessages(b.key)
	return b.check("ContainingNoErrors", len(msgs) == 0, b.subject(), "contain no errors",
		"in fact it contained "+describeStrings(msgs), nil, msgs)
}

func (b *modelStateForBuilder) WithAttemptedValue(value string) And[ModelStateForBuilder] {
	actual := ""
	if e, ok := b.tc.ModelState().Get(b.key); ok {
		actual = e.AttemptedValue
	}
	return b.check("WithAttemptedValue", actual == value, b.subject(), "have attempted value "+formatValue(value),
		"instead received "+formatValue(actual), value, actual)
}

type AttributesAssertions interface {
	// ContainingAttributeOfType asserts that an attribute of the same type as the sample is declared
	ContainingAttributeOfType(sample any) AttributesAssertions
	// ContainingAttribute asserts that an attribute equal to the expected attribute is declared
	ContainingAttribute(expected any) AttributesAssertions
	// RestrictingForHttpMethod asserts that the action is restricted to the http method
	RestrictingForHttpMethod(method string) AttributesAssertions
	// RestrictingForAuthorizedRequests asserts that an Authorize attribute is declared - and, if supplied, with the roles
	RestrictingForAuthorizedRequests(roles ...string) AttributesAssertions
	AllowingAnonymousRequests() AttributesAssertions
	// ChangingRouteTo asserts the attribute route template of the action
	ChangingRouteTo(template string) AttributesAssertions
	ChangingActionNameTo(name string) AttributesAssertions
}

type attributesAssertions struct {
	tc         *TestContext
	of         string
	attributes []any
}

func newAttributesAssertions(tc *TestContext, of string, attributes []any) AttributesAssertions {
	return &attributesAssertions{tc: tc, of: of, attributes: attributes}
}

func (a *attributesAssertions) check(name string, ok bool, expected string, actual string, ev, av any) AttributesAssertions {
	a.tc.check(AttributeAssertion, name, ok, a.of, expected, actual, ev, av)
	return a
}

func (a *attributesAssertions) describe() string {
	if len(a.attributes) == 0 {
		return "in fact no attributes were declared"
	}
	names := make([]string, len(a.attributes))
	for i, attr := range a.attributes {
		names[i] = typeName(attr)
	}
	return "in fact declared attributes were " + describeStrings(names)
}

func (a *attributesAssertions) ContainingAttributeOfType(sample any) AttributesAssertions {
	found := slices.ContainsFunc(a.attributes, func(attr any) bool {
		return isOfType(attr, sample)
	})
	expected := reflect.TypeOf(sample)
	if expected != nil && expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Interface {
		expected = expected.Elem()
	}
	return a.check("ContainingAttributeOfType", found, "have attribute of type "+friendlyTypeName(expected), a.describe(), friendlyTypeName(expected), a.attributes)
}

func (a *attributesAssertions) ContainingAttribute(expected any) AttributesAssertions {
	found := slices.ContainsFunc(a.attributes, func(attr any) bool {
		return Equal(expected, attr)
	})
	return a.check("ContainingAttribute", found, "have attribute "+describeModel(expected), a.describe(), expected, a.attributes)
}

func (a *attributesAssertions) RestrictingForHttpMethod(method string) AttributesAssertions {
	var methods []string
	if a.tc.descriptor != nil {
		methods = a.tc.descriptor.HttpMethods()
	}
	ok := slices.ContainsFunc(methods, func(m string) bool {
		return strings.EqualFold(m, method)
	})
	return a.check("RestrictingForHttpMethod", ok, fmt.Sprintf("be restricted to %s requests", strings.ToUpper(method)),
		"in fact it was restricted to "+describeStrings(methods), method, methods)
}

func (a *attributesAssertions) RestrictingForAuthorizedRequests(roles ...string) AttributesAssertions {
	for _, attr := range a.attributes {
		if authz, ok := attr.(mvc.Authorize); ok {
			for _, role := range roles {
				if !slices.Contains(authz.Roles, role) {
					return a.check("RestrictingForAuthorizedRequests", false, "be restricted to authorized requests with role "+formatValue(role),
						"in fact the roles were "+describeStrings(authz.Roles), roles, authz.Roles)
				}
			}
			return a.check("RestrictingForAuthorizedRequests", true, "", "", nil, nil)
		}
	}
	return a.check("RestrictingForAuthorizedRequests", false, "be restricted to authorized requests", a.describe(), roles, a.attributes)
}

func (a *attributesAssertions) AllowingAnonymousRequests() AttributesAssertions {
	found := slices.ContainsFunc(a.attributes, func(attr any) bool {
		_, ok := attr.(mvc.AllowAnonymous)
		return ok
	})
	return a.check("AllowingAnonymousRequests", found, "allow anonymous requests", a.describe(), nil, a.attributes)
}

func (a *attributesAssertions) ChangingRouteTo(template string) AttributesAssertions {
	actual := ""
	if a.tc.descriptor != nil {
		actual = a.tc.descriptor.Template()
	}
	expected := strings.TrimPrefix(template, "/")
	return a.check("ChangingRouteTo", strings.EqualFold(strings.TrimPrefix(actual, "/"), expected),
		"have route template "+formatValue(template), "instead received "+formatValue(actual), template, actual)
}

func (a *attributesAssertions) ChangingActionNameTo(name string) AttributesAssertions {
	actual := ""
	if a.tc.descriptor != nil {
		actual = a.tc.descriptor.ActionName
	}
	return a.check("ChangingActionNameTo", actual == name, fmt.Sprintf("have '%s' action name", name),
		fmt.Sprintf("instead received '%s'", actual), name, actual)
}

type HttpResponseAssertions interface {
	WithStatusCode(code int) HttpResponseAssertions
	WithContentType(contentType string) HttpResponseAssertions
	// ContainingHeader asserts that the response has the header - and, if supplied, with the value
	ContainingHeader(name string, value ...string) HttpResponseAssertions
	// ContainingCookie asserts that the response sets the cookie - and, if supplied, with the value
	ContainingCookie(name string, value ...string) HttpResponseAssertions
	WithBody(body string) HttpResponseAssertions
	// WithBodyPath asserts the value at a json path of the (json) response body
	WithBodyPath(path string, expected any) HttpResponseAssertions
}

type httpResponseAssertions struct {
	tc *TestContext
}

func newHttpResponseAssertions(tc *TestContext) HttpResponseAssertions {
	return &httpResponseAssertions{tc: tc}
}

func (a *httpResponseAssertions) check(name string, ok bool, subject, expected, actual string, ev, av any) HttpResponseAssertions {
	a.tc.check(HttpResponseAssertion, name, ok, subject, expected, actual, ev, av)
	return a
}

func (a *httpResponseAssertions) response() (*http.Response, []byte) {
	hc, err := a.tc.Response()
	if err != nil {
		a.tc.check(HttpResponseAssertion, "HttpResponse", false, "action result", "be written to the response",
			"an error occurred ("+err.Error()+")", nil, err)
	}
	return hc.Response.Result(), hc.Response.Body.Bytes()
}

func (a *httpResponseAssertions) WithStatusCode(code int) HttpResponseAssertions {
	res, _ := a.response()
	return a.check("WithStatusCode", res.StatusCode == code, "http response", fmt.Sprintf("have %d status code", code),
		fmt.Sprintf("instead received %d", res.StatusCode), code, res.StatusCode)
}

func (a *httpResponseAssertions) WithContentType(contentType string) HttpResponseAssertions {
	res, _ := a.response()
	actual := res.Header.Get("Content-Type")
	ok := strings.EqualFold(actual, contentType) || strings.HasPrefix(strings.ToLower(actual), strings.ToLower(contentType)+";")
	return a.check("WithContentType", ok, "http response", fmt.Sprintf("have '%s' content type", contentType),
		fmt.Sprintf("instead received '%s'", actual), contentType, actual)
}

func (a *httpResponseAssertions) ContainingHeader(name string, value ...string) HttpResponseAssertions {
	res, _ := a.response()
	values := res.Header.Values(name)
	if len(value) == 0 {
		return a.check("ContainingHeader", len(values) > 0, "http response", fmt.Sprintf("have '%s' header", name),
			"such was not found", name, nil)
	}
	return a.check("ContainingHeader", slices.Contains(values, value[0]), "http response",
		fmt.Sprintf("have '%s' header with value '%s'", name, value[0]), "instead received "+describeStrings(values), value[0], values)
}

func (a *httpResponseAssertions) ContainingCookie(name string, value ...string) HttpResponseAssertions {
	res, _ := a.response()
	for _, c := range res.Cookies() {
		if c.Name == name {
			if len(value) == 0 {
				return a.check("ContainingCookie", true, "", "", "", nil, nil)
			}
			return a.check("ContainingCookie", c.Value == value[0], "http response",
				fmt.Sprintf("have '%s' cookie with value '%s'", name, value[0]), fmt.Sprintf("instead received '%s'", c.Value), value[0], c.Value)
		}
	}
	return a.check("ContainingCookie", false, "http response", fmt.Sprintf("have '%s' cookie", name), "such was not found", name, nil)
}

func (a *httpResponseAssertions) WithBody(body string) HttpResponseAssertions {
	_, data := a.response()
	actual := strings.TrimSuffix(string(data), "\n")
	return a.check("WithBody", actual == strings.TrimSuffix(body, "\n"), "http response body", "be "+formatValue(body),
		"instead received "+formatValue(actual), body, actual)
}

func (a *httpResponseAssertions) WithBodyPath(path string, expected any) HttpResponseAssertions {
	_, data := a.response()
	actual, err := bodyPath(data, path)
	if err != nil {
		return a.check("WithBodyPath", false, fmt.Sprintf("http response body path %q", path), "be "+formatValue(expected),
			"it could not be resolved ("+err.Error()+")", expected, nil)
	}
	return a.check("WithBodyPath", Equal(expected, actual), fmt.Sprintf("http response body path %q", path), "be "+formatValue(expected),
		"in fact it was "+formatValue(actual), expected, actual)
}

type DataAssertions interface {
	// WithRowCount asserts the number of rows returned by the query
	//
	// the query must start with "SELECT"
	WithRowCount(count int, query string, args ...any) DataAssertions
	// ContainingRow asserts that the query returns a row containing all the expected column values
	ContainingRow(expected map[string]any, query string, args ...any) DataAssertions
	// WithValue asserts the single value returned by the query (the query must return exactly one row)
	WithValue(expected any, query string, args ...any) DataAssertions
}

type dataAssertions struct {
	tc *TestContext
	db columbus.SqlInterface
}

func newDataAssertions(tc *TestContext, db columbus.SqlInterface) DataAssertions {
	return &dataAssertions{tc: tc, db: db}
}

func (a *dataAssertions) mapper(name string, query string) (columbus.Mapper, bool) {
	if !strings.HasPrefix(strings.ToUpper(query), "SELECT ") {
		panic(fmt.Sprintf("query %q must start with \"SELECT\"", query))
	}
	mapper, err := columbus.NewMapper(query[6:], columbus.Query(""))
	if err != nil {
		a.tc.check(DataAssertion, name, false, "query "+formatValue(query), "be valid", "it was not ("+err.Error()+")", query, err)
		return nil, false
	}
	return mapper, true
}

func (a *dataAssertions) rows(name string, query string, args []any) ([]map[string]any, bool) {
	mapper, ok := a.mapper(name, query)
	if !ok {
		return nil, false
	}
	rows, err := mapper.Rows(a.context(), a.db, args)
	if err != nil {
		a.tc.check(DataAssertion, name, false, "query "+formatValue(query), "execute", "an error occurred ("+err.Error()+")", query, err)
		return nil, false
	}
	return rows, true
}

func (a *dataAssertions) context() context.Context {
	return a.tc.helper.Context()
}

func (a *dataAssertions) WithRowCount(count int, query string, args ...any) DataAssertions {
	if rows, ok := a.rows("WithRowCount", query, args); ok {
		a.tc.check(DataAssertion, "WithRowCount", len(rows) == count, "query "+formatValue(query), fmt.Sprintf("return %d rows", count),
			fmt.Sprintf("in fact it returned %d", len(rows)), count, len(rows))
	}
	return a
}

func (a *dataAssertions) ContainingRow(expected map[string]any, query string, args ...any) DataAssertions {
	if rows, ok := a.rows("ContainingRow", query, args); ok {
		found := slices.ContainsFunc(rows, func(row map[string]any) bool {
			for k, ev := range expected {
				if av, has := row[k]; !has || !Equal(ev, av) {
					return false
				}
			}
			return true
		})
		a.tc.check(DataAssertion, "ContainingRow", found, "query "+formatValue(query), "return row "+formatValue(expected),
			fmt.Sprintf("no such row was found in the %d rows returned", len(rows)), expected, rows)
	}
	return a
}

func (a *dataAssertions) WithValue(expected any, query string, args ...any) DataAssertions {
	mapper, ok := a.mapper("WithValue", query)
	if !ok {
		return a
	}
	row, err := mapper.ExactlyOneRow(a.context(), a.db, args)
	if err != nil {
		a.tc.check(DataAssertion, "WithValue", false, "query "+formatValue(query), "return exactly one row",
			"an error occurred ("+err.Error()+")", expected, err)
		return a
	}
	var actual any
	if len(row) == 1 {
		for _, v := range row {
			actual = v
		}
	} else {
		actual = row
	}
	a.tc.check(DataAssertion, "WithValue", Equal(expected, actual), "query "+formatValue(query), "return "+formatValue(expected),
		"in fact it returned "+formatValue(actual), expected, actual)
	return a
}
