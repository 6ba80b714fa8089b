package mvctest

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"testing"
)

func TestRequestBuilder_Build(t *testing.T) {
	r := Request().
		WithMethod("post").
		WithPath("api/pets?sort=name").
		WithQueryValue("page", "2").
		WithHeader("X-Trace", "a", "b").
		WithCookie(&http.Cookie{Name: "session", Value: "abc"}).
		WithJSONBody(map[string]any{"name": "Felix"}).
		WithHttps().
		Build()
	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/api/pets", r.URL.Path)
	assert.Equal(t, "https", r.URL.Scheme)
	assert.Equal(t, "name", r.URL.Query().Get("sort"))
	assert.Equal(t, "2", r.URL.Query().Get("page"))
	assert.Equal(t, []string{"a", "b"}, r.Header.Values("X-Trace"))
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	c, err := r.Cookie("session")
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Value)
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Felix"}`, string(body))
}

func TestRequestBuilder_Form(t *testing.T) {
	r := Request().WithMethod(http.MethodPost).WithPath("/login").WithFormValue("user", "bilbo").Build()
	assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
	require.NoError(t, r.ParseForm())
	assert.Equal(t, "bilbo", r.PostForm.Get("user"))
}

func TestRequestBuilder_ContentTypeNotOverridden(t *testing.T) {
	r := Request().WithContentType("application/vnd.api+json").WithJSONBody(1).Build()
	assert.Equal(t, "application/vnd.api+json", r.Header.Get("Content-Type"))
}

func TestRequestBuilder_NoPath(t *testing.T) {
	rb := Request()
	assert.Equal(t, "", rb.Path())
	r := rb.Build()
	assert.Equal(t, http.MethodGet, r.Method)
	assert.Equal(t, "", r.URL.Path)
}

func TestRequestBuilder_User(t *testing.T) {
	rb := Request().WithUser("bilbo", "admin", "hobbit")
	p := rb.principal()
	require.NotNil(t, p)
	assert.True(t, p.Authenticated)
	assert.True(t, p.IsInRole("hobbit"))
	assert.False(t, p.IsInRole("wizard"))
	rb.WithPrincipal(nil)
	assert.Nil(t, rb.principal())
}

func TestRequestBuilder_Panics(t *testing.T) {
	assert.PanicsWithValue(t, `query string "a=1" must start with '?'`, func() {
		Request().WithQuery("a=1")
	})
	assert.Panics(t, func() {
		Request().WithJSONBody(func() {})
	})
}
