package mvc

import (
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

func TestChiPattern(t *testing.T) {
	testCases := []struct {
		template string
		expect   string
	}{
		{"", "/"},
		{"api/pets", "/api/pets"},
		{"api/pets/{id}", "/api/pets/{id}"},
		{"api/pets/{id:int}", "/api/pets/{id:-?[0-9]+}"},
		{"api/pets/{name:alpha}/tags", "/api/pets/{name:[a-zA-Z]+}/tags"},
		{"api/pets/{id:[0-9]{3}}", "/api/pets/{id:[0-9]{3}}"},
		{"files/{*path}", "/files/{path}"},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]", i+1), func(t *testing.T) {
			assert.Equal(t, tc.expect, ChiPattern(tc.template))
		})
	}
}

func TestCombineTemplates(t *testing.T) {
	testCases := []struct {
		controllerRoute string
		actionRoute     string
		expect          string
		expectOk        bool
	}{
		{"", "", "", false},
		{"api/[controller]", "", "api/pets", true},
		{"api/[controller]", "{id}", "api/pets/{id}", true},
		{"", "[action]/{id}", "get/{id}", true},
		{"api/[controller]", "/other", "other", true},
		{"api/[controller]", "~/other/{id}", "other/{id}", true},
		{"/api/pets/", "", "api/pets", true},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]", i+1), func(t *testing.T) {
			s, ok := combineTemplates(tc.controllerRoute, tc.actionRoute, "Pets", "Get")
			assert.Equal(t, tc.expectOk, ok)
			assert.Equal(t, tc.expect, s)
		})
	}
}

func TestRouteValues(t *testing.T) {
	rv := RouteValues{"Controller": "Pets", "id": 5}
	v, ok := rv.Lookup("controller")
	assert.True(t, ok)
	assert.Equal(t, "Pets", v)
	assert.Equal(t, "5", rv.String("ID"))
	assert.Equal(t, "", rv.String("missing"))
	c := rv.Clone()
	c["id"] = 6
	assert.Equal(t, 5, rv["id"])
	assert.NotNil(t, RouteValues(nil).Clone())
}

func TestAttributeRouter_Route(t *testing.T) {
	app := testApplication()
	r := NewAttributeRouter(app.Actions())
	t.Run("matches with constraint", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/api/pets/5", ""))
		require.NoError(t, r.Route(rc))
		require.NotNil(t, rc.Handler)
		h, ok := rc.Handler.(*AttributeRouteHandler)
		require.True(t, ok)
		assert.Equal(t, "api/pets/{id:int}", h.RouteTemplate())
		assert.Len(t, h.Candidates, 1)
		assert.Equal(t, "5", rc.RouteData.Values["id"])
		assert.Equal(t, "Pets", rc.RouteData.Values["controller"])
		assert.Equal(t, "Get", rc.RouteData.Values["action"])
	})
	t.Run("constraint fails", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/api/pets/abc", ""))
		require.NoError(t, r.Route(rc))
		assert.Nil(t, rc.Handler)
	})
	t.Run("method not registered", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodPut, "/api/pets/5", ""))
		require.NoError(t, r.Route(rc))
		assert.Nil(t, rc.Handler)
	})
	t.Run("different method same template", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodDelete, "/api/pets/5", ""))
		require.NoError(t, r.Route(rc))
		h := rc.Handler.(*AttributeRouteHandler)
		require.Len(t, h.Candidates, 1)
		assert.Equal(t, "Delete", h.Candidates[0].(*ControllerActionDescriptor).ActionName)
	})
	t.Run("empty path", func(t *testing.T) {
		hc := testHttpContext(app, http.MethodGet, "/", "")
		hc.Request.URL.Path = ""
		rc := NewRouteContext(hc)
		require.NoError(t, r.Route(rc))
		assert.Nil(t, rc.Handler)
	})
}

func TestConventionalRouter_Route(t *testing.T) {
	app := testApplication()
	r := NewConventionalRouter("Home", "Index")
	testCases := []struct {
		path         string
		expectMatch  bool
		expectValues RouteValues
	}{
		{"/", true, RouteValues{"controller": "Home", "action": "Index"}},
		{"/Home", true, RouteValues{"controller": "Home", "action": "Index"}},
		{"/Home/About", true, RouteValues{"controller": "Home", "action": "About"}},
		{"/Home/About/", true, RouteValues{"controller": "Home", "action": "About"}},
		{"/Home/About/5", true, RouteValues{"controller": "Home", "action": "About", "id": "5"}},
		{"/a/b/c/d", false, nil},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]%s", i+1, tc.path), func(t *testing.T) {
			rc := NewRouteContext(testHttpContext(app, http.MethodGet, tc.path, ""))
			require.NoError(t, r.Route(rc))
			if tc.expectMatch {
				require.NotNil(t, rc.Handler)
				assert.Equal(t, ConventionalTemplate, rc.Handler.RouteTemplate())
				assert.Equal(t, tc.expectValues, rc.RouteData.Values)
			} else {
				assert.Nil(t, rc.Handler)
			}
		})
	}
}

func TestRouteCollection_Route(t *testing.T) {
	app := testApplication()
	router := app.Router()
	t.Run("attribute first", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/api/pets/5", ""))
		require.NoError(t, router.Route(rc))
		_, ok := rc.Handler.(*AttributeRouteHandler)
		assert.True(t, ok)
		assert.Len(t, rc.RouteData.Routers, 2)
	})
	t.Run("falls through to conventional", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/Home/About/x", ""))
		require.NoError(t, router.Route(rc))
		_, ok := rc.Handler.(*ConventionalRouteHandler)
		assert.True(t, ok)
	})
	t.Run("router error", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/", ""))
		err := NewRouteCollection(&failingRouter{}).Route(rc)
		assert.Error(t, err)
	})
	t.Run("router cached until registration", func(t *testing.T) {
		assert.Same(t, router, app.Router())
		app.MapPage("about")
		assert.NotSame(t, router, app.Router())
	})
}

type failingRouter struct{}

func (f *failingRouter) Route(rc *RouteContext) error {
	return fmt.Errorf("router failed")
}
