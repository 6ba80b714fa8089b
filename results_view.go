package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"slices"
	"strings"
)

type ViewResultBuilder interface {
	WithModel(expected any) And[ViewResultBuilder]
	WithModelOfType(sample any) And[ViewResultBuilder]
	WithModelPath(path string, expected any) And[ViewResultBuilder]
	WithNoModel() And[ViewResultBuilder]
	WithModelPassing(fn func(model any) bool) And[ViewResultBuilder]
	// WithViewData asserts that the view data contains the key (and, if supplied, the value)
	WithViewData(key string, value ...any) And[ViewResultBuilder]
	WithStatusCode(code int) And[ViewResultBuilder]
}

type viewResultBuilder struct {
	*assertions[ViewResultBuilder]
	*modelAssertions[ViewResultBuilder]
	*statusCodeAssertions[ViewResultBuilder]
	subject string
}

func newViewResultBuilder(tc *TestContext, subject string, name ...string) ViewResultBuilder {
	a := newAssertions[ViewResultBuilder](tc, ViewResultAssertion)
	result := &viewResultBuilder{
		assertions:           a,
		modelAssertions:      newModelAssertions(a, subject),
		statusCodeAssertions: &statusCodeAssertions[ViewResultBuilder]{assertions: a, subject: subject},
		subject:              subject,
	}
	a.self = result
	if len(name) > 0 {
		result.withName(name[0])
	}
	return result
}

// viewName is the name of a view result - empty is the default view (the name of the action)
func viewName(r mvc.ActionResult) string {
	switch rt := r.(type) {
	case *mvc.ViewResult:
		return rt.ViewName
	case *mvc.PartialViewResult:
		return rt.ViewName
	case *mvc.ViewComponentResult:
		return rt.ViewComponentName
	}
	return ""
}

func (b *viewResultBuilder) withName(name string) {
	actual := viewName(b.tc.ActionResult())
	if actual == "" && b.tc.descriptor != nil {
		if _, isComponent := b.tc.ActionResult().(*mvc.ViewComponentResult); !isComponent {
			actual = b.tc.descriptor.ActionName
		}
	}
	b.check("WithName", strings.EqualFold(actual, name), b.subject, fmt.Sprintf("be '%s'", name),
		fmt.Sprintf("instead received '%s'", actual), name, actual)
}

func (b *viewResultBuilder) viewData() map[string]any {
	switch rt := b.tc.ActionResult().(type) {
	case *mvc.ViewResult:
		return rt.ViewData
	case *mvc.PartialViewResult:
		return rt.ViewData
	}
	return nil
}

func (b *viewResultBuilder) WithViewData(key string, value ...any) And[ViewResultBuilder] {
	vd := b.viewData()
	actual, ok := vd[key]
	if !ok {
		return b.check("WithViewData", false, b.subject, fmt.Sprintf("have view data with '%s' key", key), "such was not found", key, nil)
	}
	if len(value) == 0 {
		return b.check("WithViewData", true, "", "", "", nil, nil)
	}
	return b.check("WithViewData", Equal(value[0], actual), b.subject, fmt.Sprintf("have view data with '%s' key and the provided value", key),
		fmt.Sprintf("the value was different (expected %s, actual %s)", formatValue(value[0]), formatValue(actual)), value[0], actual)
}

type AuthenticationResultBuilder interface {
	// ContainingAuthenticationScheme asserts that the result contains the authentication scheme
	ContainingAuthenticationScheme(scheme string) And[AuthenticationResultBuilder]
	// WithAuthenticationSchemes asserts that the result has exactly the authentication schemes (in any order)
	WithAuthenticationSchemes(schemes ...string) And[AuthenticationResultBuilder]
}

type authenticationResultBuilder struct {
	*assertions[AuthenticationResultBuilder]
	subject string
}

func newAuthenticationResultBuilder(tc *TestContext, subject string) AuthenticationResultBuilder {
	a := newAssertions[AuthenticationResultBuilder](tc, AuthenticationAssertion)
	result := &authenticationResultBuilder{
		assertions: a,
		subject:    subject,
	}
	a.self = result
	return result
}

func (b *authenticationResultBuilder) schemes() []string {
	switch rt := b.tc.ActionResult().(type) {
	case *mvc.ChallengeResult:
		return rt.AuthenticationSchemes
	case *mvc.ForbidResult:
		return rt.AuthenticationSchemes
	}
	return nil
}

func (b *authenticationResultBuilder) ContainingAuthenticationScheme(scheme string) And[AuthenticationResultBuilder] {
	actual := b.schemes()
	return b.check("ContainingAuthenticationScheme", slices.Contains(actual, scheme), b.subject,
		fmt.Sprintf("contain '%s' authentication scheme", scheme), "in fact it contained "+describeStrings(actual), scheme, actual)
}

func (b *authenticationResultBuilder) WithAuthenticationSchemes(schemes ...string) And[AuthenticationResultBuilder] {
	actual := slices.Sorted(slices.Values(b.schemes()))
	expected := slices.Sorted(slices.Values(schemes))
	return b.check("WithAuthenticationSchemes", slices.Equal(actual, expected), b.subject,
		"have authentication schemes "+describeStrings(expected), "in fact it had "+describeStrings(actual), expected, actual)
}
