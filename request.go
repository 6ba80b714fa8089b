package mvctest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
)

// RequestBuilder builds the synthetic http request used for routing, model binding and by the controller under test
type RequestBuilder struct {
	method  string
	path    string
	query   url.Values
	headers http.Header
	cookies []*http.Cookie
	body    []byte
	form    url.Values
	https   bool
	user    *mvc.Principal
}

// Request creates a new request builder (a GET request with no path)
func Request() *RequestBuilder {
	return &RequestBuilder{
		method:  http.MethodGet,
		query:   url.Values{},
		headers: http.Header{},
	}
}

func (rb *RequestBuilder) WithMethod(method string) *RequestBuilder {
	rb.method = strings.ToUpper(method)
	return rb
}

// WithPath sets the request path - any query string in the path is added to the query
func (rb *RequestBuilder) WithPath(path string) *RequestBuilder {
	if p, q, ok := strings.Cut(path, "?"); ok {
		path = p
		rb.WithQuery("?" + q)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	rb.path = path
	return rb
}

// WithQuery adds the query string values - the query string must start with "?" (panics otherwise)
func (rb *RequestBuilder) WithQuery(query string) *RequestBuilder {
	if !strings.HasPrefix(query, "?") {
		panic(fmt.Sprintf("query string %q must start with '?'", query))
	}
	values, err := url.ParseQuery(query[1:])
	if err != nil {
		panic(fmt.Sprintf("invalid query string %q: %s", query, err.Error()))
	}
	for k, vs := range values {
		rb.query[k] = append(rb.query[k], vs...)
	}
	return rb
}

func (rb *RequestBuilder) WithQueryValue(name string, values ...string) *RequestBuilder {
	rb.query[name] = append(rb.query[name], values...)
	return rb
}

func (rb *RequestBuilder) WithHeader(name string, values ...string) *RequestBuilder {
	for _, v := range values {
		rb.headers.Add(name, v)
	}
	return rb
}

func (rb *RequestBuilder) WithContentType(contentType string) *RequestBuilder {
	rb.headers.Set("Content-Type", contentType)
	return rb
}

func (rb *RequestBuilder) WithCookie(cookie *http.Cookie) *RequestBuilder {
	rb.cookies = append(rb.cookies, cookie)
	return rb
}

// WithBody sets the raw request body
func (rb *RequestBuilder) WithBody(body []byte) *RequestBuilder {
	rb.body = body
	return rb
}

// WithJSONBody sets the request body to the json of the value (and sets the content type if not already set)
//
// panics if the value cannot be marshalled
func (rb *RequestBuilder) WithJSONBody(v any) *RequestBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("request body cannot be marshalled to json: %s", err.Error()))
	}
	rb.body = data
	if rb.headers.Get("Content-Type") == "" {
		rb.headers.Set("Content-Type", "application/json")
	}
	return rb
}

// WithFormValue adds url encoded form values (the form is used as the body)
func (rb *RequestBuilder) WithFormValue(name string, values ...string) *RequestBuilder {
	if rb.form == nil {
		rb.form = url.Values{}
	}
	rb.form[name] = append(rb.form[name], values...)
	return rb
}

// WithHttps makes the request a https request
func (rb *RequestBuilder) WithHttps() *RequestBuilder {
	rb.https = true
	return rb
}

// WithUser sets the (authenticated) user of the request
func (rb *RequestBuilder) WithUser(name string, roles ...string) *RequestBuilder {
	rb.user = &mvc.Principal{
		Name:               name,
		Roles:              roles,
		AuthenticationType: "Test",
		Authenticated:      true,
	}
	return rb
}

// WithPrincipal sets the user of the request
func (rb *RequestBuilder) WithPrincipal(user *mvc.Principal) *RequestBuilder {
	rb.user = user
	return rb
}

// Path is the request path as set (may be empty)
func (rb *RequestBuilder) Path() string {
	return rb.path
}

// Build builds the http request
func (rb *RequestBuilder) Build() *http.Request {
	scheme := "http"
	if rb.https {
		scheme = "https"
	}
	target := scheme + "://example.com" + rb.path
	if len(rb.query) > 0 {
		target += "?" + rb.query.Encode()
	}
	var body io.Reader
	if rb.form != nil {
		body = strings.NewReader(rb.form.Encode())
	} else if rb.body != nil {
		body = bytes.NewReader(rb.body)
	}
	r := httptest.NewRequest(rb.method, target, body)
	if rb.path == "" {
		r.URL.Path = ""
		r.RequestURI = ""
	}
	for k, vs := range rb.headers {
		r.Header[k] = append([]string{}, vs...)
	}
	if rb.form != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range rb.cookies {
		r.AddCookie(c)
	}
	return r
}

func (rb *RequestBuilder) principal() *mvc.Principal {
	return rb.user
}
