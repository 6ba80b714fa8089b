package mvc

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"reflect"
	"testing"
)

func TestActionSelector(t *testing.T) {
	app := testApplication()
	sel := NewActionSelector(app)
	t.Run("conventional candidates", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/Home/About", ""))
		require.NoError(t, app.Router().Route(rc))
		candidates := sel.SelectCandidates(rc)
		require.Len(t, candidates, 1)
		best, err := sel.SelectBestCandidate(rc, candidates)
		require.NoError(t, err)
		assert.Equal(t, "About", best.(*ControllerActionDescriptor).ActionName)
	})
	t.Run("attribute candidates", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodPost, "/api/pets", ""))
		require.NoError(t, app.Router().Route(rc))
		candidates := sel.SelectCandidates(rc)
		require.Len(t, candidates, 1)
		best, err := sel.SelectBestCandidate(rc, candidates)
		require.NoError(t, err)
		assert.Equal(t, "Create", best.(*ControllerActionDescriptor).ActionName)
	})
	t.Run("attribute routed actions not conventionally selected", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/Pets/Get/1", ""))
		require.NoError(t, app.Router().Route(rc))
		assert.Empty(t, sel.SelectCandidates(rc))
	})
	t.Run("no route data", func(t *testing.T) {
		rc := &RouteContext{HttpContext: testHttpContext(app, http.MethodGet, "/", "")}
		assert.Empty(t, sel.SelectCandidates(rc))
	})
	t.Run("method mismatch", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodPut, "/", ""))
		d, _ := app.FindAction(reflect.TypeFor[PetsController](), "Get")
		best, err := sel.SelectBestCandidate(rc, []ActionDescriptor{d})
		assert.NoError(t, err)
		assert.Nil(t, best)
	})
	t.Run("ambiguous", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/", ""))
		d1, _ := app.FindAction(reflect.TypeFor[HomeController](), "Index")
		d2, _ := app.FindAction(reflect.TypeFor[HomeController](), "About")
		_, err := sel.SelectBestCandidate(rc, []ActionDescriptor{d1, d2})
		require.Error(t, err)
		var aerr *AmbiguousActionError
		assert.ErrorAs(t, err, &aerr)
		assert.Contains(t, err.Error(), "multiple actions matched")
	})
	t.Run("constrained preferred", func(t *testing.T) {
		rc := NewRouteContext(testHttpContext(app, http.MethodGet, "/", ""))
		d1, _ := app.FindAction(reflect.TypeFor[HomeController](), "Index")
		d2, _ := app.FindAction(reflect.TypeFor[PetsController](), "Get")
		best, err := sel.SelectBestCandidate(rc, []ActionDescriptor{d1, d2})
		require.NoError(t, err)
		assert.Same(t, d2, best)
	})
}

type recordingProvider struct {
	order     int
	invoker   ActionInvoker
	executing *[]int
}

func (p *recordingProvider) Order() int {
	return p.order
}

func (p *recordingProvider) OnProvidersExecuting(ctx *ActionInvokerProviderContext) {
	*p.executing = append(*p.executing, p.order)
	if p.invoker != nil {
		ctx.Result = p.invoker
	}
}

func (p *recordingProvider) OnProvidersExecuted(*ActionInvokerProviderContext) {}

type nopInvoker struct{}

func (nopInvoker) Invoke(context.Context) error {
	return nil
}

func TestActionInvokerFactory(t *testing.T) {
	app := testApplication()
	d, _ := app.FindAction(reflect.TypeFor[PetsController](), "Get")
	ac := NewActionContext(testHttpContext(app, http.MethodGet, "/api/pets/1", ""), nil, d)
	t.Run("default is controller invoker", func(t *testing.T) {
		inv := MustGet[ActionInvokerFactory](app.Services()).CreateInvoker(ac)
		_, ok := inv.(*ControllerActionInvoker)
		assert.True(t, ok)
	})
	t.Run("providers run in order", func(t *testing.T) {
		executing := make([]int, 0)
		last := &recordingProvider{order: 10, invoker: nopInvoker{}, executing: &executing}
		f := NewActionInvokerFactory(last, &ControllerActionInvokerProvider{}, &recordingProvider{order: 5, executing: &executing})
		inv := f.CreateInvoker(ac)
		assert.Equal(t, nopInvoker{}, inv)
		assert.Equal(t, []int{5, 10}, executing)
		assert.Len(t, f.Providers(), 3)
	})
	t.Run("non controller", func(t *testing.T) {
		pac := NewActionContext(testHttpContext(app, http.MethodGet, "/about", ""), nil, &PageActionDescriptor{Path: "/about"})
		assert.Nil(t, NewActionInvokerFactory(&ControllerActionInvokerProvider{}).CreateInvoker(pac))
	})
}

func invokeAction(t *testing.T, app *Application, hc *HttpContext, action any, routeValues RouteValues) (*ControllerActionInvoker, error) {
	var d *ControllerActionDescriptor
	switch at := action.(type) {
	case string:
		var ok bool
		d, ok = app.FindAction(reflect.TypeFor[PetsController](), at)
		require.True(t, ok)
	case *ControllerActionDescriptor:
		d = at
	}
	rd := NewRouteData()
	for k, v := range routeValues {
		rd.Values[k] = v
	}
	inv := MustGet[ActionInvokerFactory](hc.Services).CreateInvoker(NewActionContext(hc, rd, d)).(*ControllerActionInvoker)
	return inv, inv.Invoke(context.Background())
}

func TestControllerActionInvoker(t *testing.T) {
	app := testApplication()
	t.Run("ok", func(t *testing.T) {
		inv, err := invokeAction(t, app, testHttpContext(app, http.MethodGet, "/api/pets/3", ""), "Get", RouteValues{"id": "3"})
		require.NoError(t, err)
		r, ok := inv.Result.(*OkObjectResult)
		require.True(t, ok)
		assert.Equal(t, testPet{Id: 3, Name: "Felix"}, r.Value)
		require.NotNil(t, inv.Invocation)
	})
	t.Run("authorization short-circuits", func(t *testing.T) {
		inv, err := invokeAction(t, app, testHttpContext(app, http.MethodPost, "/api/pets", `{"name":"x"}`), "Create", nil)
		require.NoError(t, err)
		_, ok := inv.Result.(*ChallengeResult)
		assert.True(t, ok)
		assert.Nil(t, inv.Invocation)
	})
	t.Run("forbidden role", func(t *testing.T) {
		hc := testHttpContext(app, http.MethodPost, "/api/pets", `{"name":"x"}`)
		hc.User = &Principal{Name: "bob", Authenticated: true, Roles: []string{"user"}}
		inv, err := invokeAction(t, app, hc, "Create", nil)
		require.NoError(t, err)
		_, ok := inv.Result.(*ForbidResult)
		assert.True(t, ok)
	})
	t.Run("api controller invalid model state", func(t *testing.T) {
		hc := testHttpContext(app, http.MethodPost, "/api/pets", `{"tag":"x"}`)
		hc.User = &Principal{Name: "bob", Authenticated: true, Roles: []string{"admin"}}
		inv, err := invokeAction(t, app, hc, "Create", nil)
		require.NoError(t, err)
		r, ok := inv.Result.(*BadRequestObjectResult)
		require.True(t, ok)
		vp, ok := r.Value.(*ValidationProblem)
		require.True(t, ok)
		assert.Len(t, vp.Errors, 1)
		assert.Nil(t, inv.Invocation)
	})
	t.Run("returns error", func(t *testing.T) {
		_, err := invokeAction(t, app, testHttpContext(app, http.MethodDelete, "/api/pets/3", ""), "Delete", RouteValues{"id": "3"})
		assert.Error(t, err)
	})
	t.Run("binding error", func(t *testing.T) {
		_, err := invokeAction(t, app, testHttpContext(app, http.MethodGet, "/api/pets/lookup/3", ""), "Lookup", RouteValues{"id": "3"})
		assert.Error(t, err)
	})
	t.Run("async panic", func(t *testing.T) {
		d, _ := app.FindAction(reflect.TypeFor[HomeController](), "Boom")
		_, err := invokeAction(t, app, testHttpContext(app, http.MethodGet, "/Home/Boom", ""), d, nil)
		var perr *PanicError
		require.True(t, errors.As(err, &perr))
		assert.Equal(t, "boom", perr.Value)
		assert.NotEmpty(t, perr.Stack)
	})
	t.Run("resource filter", func(t *testing.T) {
		withHeader := testApplication(WithGlobalFilters(RequireHeader{Name: "X-Api-Key"}))
		inv, err := invokeAction(t, withHeader, testHttpContext(withHeader, http.MethodGet, "/api/pets/3", ""), "Get", RouteValues{"id": "3"})
		require.NoError(t, err)
		_, ok := inv.Result.(*BadRequestObjectResult)
		assert.True(t, ok)
	})
	t.Run("https required", func(t *testing.T) {
		https := testApplication(WithGlobalFilters(RequireHttps{}))
		inv, err := invokeAction(t, https, testHttpContext(https, http.MethodGet, "/api/pets/3", ""), "Get", RouteValues{"id": "3"})
		require.NoError(t, err)
		assert.Equal(t, 403, inv.Result.(StatusCodeResultProvider).StatusCodeValue())
	})
}

func TestFilterPipeline(t *testing.T) {
	app := testApplication(WithGlobalFilters(RequireHttps{}, RequireHeader{Name: "X"}))
	d, _ := app.FindAction(reflect.TypeFor[PetsController](), "Create")
	p := NewFilterPipeline(d, app.GlobalFilters(), app.Options())
	assert.Equal(t, 4, p.Len())
	options := app.Options()
	options.SuppressModelStateInvalidFilter = true
	p = NewFilterPipeline(d, nil, options)
	assert.Equal(t, 1, p.Len())
	p = NewFilterPipeline(&PageActionDescriptor{}, nil, options)
	assert.Equal(t, 0, p.Len())
}
