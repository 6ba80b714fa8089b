package mvc

import (
	"context"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestResults_Execute(t *testing.T) {
	app := testApplication()
	newAc := func() *ActionContext {
		rd := NewRouteData()
		rd.Values["controller"] = "Pets"
		return NewActionContext(testHttpContext(app, http.MethodGet, "/", ""), rd, nil)
	}
	c := &PetsController{}
	t.Run("ok object", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.Ok(map[string]any{"a": 1}).Execute(ac))
		assert.Equal(t, http.StatusOK, ac.HttpContext.Response.Code)
		assert.JSONEq(t, `{"a":1}`, ac.HttpContext.Response.Body.String())
	})
	t.Run("created at action", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.CreatedAtAction("Get", RouteValues{"id": 5}, nil).Execute(ac))
		assert.Equal(t, http.StatusCreated, ac.HttpContext.Response.Code)
		assert.Equal(t, "/api/pets/5", ac.HttpContext.Response.Header().Get("Location"))
	})
	t.Run("created at route", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.CreatedAtRoute("GetPet", RouteValues{"id": 6}, nil).Execute(ac))
		assert.Equal(t, "/api/pets/6", ac.HttpContext.Response.Header().Get("Location"))
	})
	t.Run("created", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.Created("/x", 1).Execute(ac))
		assert.Equal(t, "/x", ac.HttpContext.Response.Header().Get("Location"))
	})
	t.Run("redirect to action", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.RedirectToControllerAction("Home", "About", RouteValues{"id": "me"}).Execute(ac))
		assert.Equal(t, http.StatusFound, ac.HttpContext.Response.Code)
		assert.Equal(t, "/Home/About/me", ac.HttpContext.Response.Header().Get("Location"))
	})
	t.Run("redirect permanent", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.RedirectPermanent("/y").Execute(ac))
		assert.Equal(t, http.StatusMovedPermanently, ac.HttpContext.Response.Code)
	})
	t.Run("redirect to route", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.RedirectToRoute("GetPet", RouteValues{"id": 1}).Execute(ac))
		assert.Equal(t, "/api/pets/1", ac.HttpContext.Response.Header().Get("Location"))
	})
	t.Run("content", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.Content("hello", "text/csv").Execute(ac))
		assert.Equal(t, "hello", ac.HttpContext.Response.Body.String())
		assert.Equal(t, "text/csv", ac.HttpContext.Response.Header().Get("Content-Type"))
	})
	t.Run("file", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.File([]byte("abc"), "text/plain", "a.txt").Execute(ac))
		assert.Equal(t, "abc", ac.HttpContext.Response.Body.String())
		assert.Contains(t, ac.HttpContext.Response.Header().Get("Content-Disposition"), "a.txt")
	})
	t.Run("challenge", func(t *testing.T) {
		ac := newAc()
		require.NoError(t, c.Challenge("Bearer").Execute(ac))
		assert.Equal(t, http.StatusUnauthorized, ac.HttpContext.Response.Code)
		assert.Equal(t, "Bearer", ac.HttpContext.Response.Header().Get("WWW-Authenticate"))
	})
	t.Run("status codes", func(t *testing.T) {
		testCases := []struct {
			result ActionResult
			expect int
		}{
			{c.Ok(), http.StatusOK},
			{c.BadRequest(), http.StatusBadRequest},
			{c.BadRequest("x"), http.StatusBadRequest},
			{c.NotFound(), http.StatusNotFound},
			{c.NotFound("x"), http.StatusNotFound},
			{c.Conflict(), http.StatusConflict},
			{c.Conflict("x"), http.StatusConflict},
			{c.Unauthorized(), http.StatusUnauthorized},
			{c.NoContent(), http.StatusNoContent},
			{c.StatusCode(418), 418},
			{c.StatusCode(418, "tea"), 418},
			{c.Forbid(), http.StatusForbidden},
			{c.Json(1), http.StatusOK},
			{c.View("Index", nil), http.StatusOK},
			{c.ValidationProblem(), http.StatusBadRequest},
		}
		for _, tc := range testCases {
			t.Run(reflect.TypeOf(tc.result).Elem().Name(), func(t *testing.T) {
				sc, ok := tc.result.(StatusCodeResultProvider)
				require.True(t, ok)
				assert.Equal(t, tc.expect, sc.StatusCodeValue())
				ac := newAc()
				require.NoError(t, tc.result.Execute(ac))
				assert.Equal(t, tc.expect, ac.HttpContext.Response.Code)
			})
		}
	})
}

func TestControllerBase(t *testing.T) {
	c := &HomeController{}
	assert.NotNil(t, c.ControllerContext())
	assert.NotNil(t, c.ModelState())
	assert.NotNil(t, c.Request())
	assert.Nil(t, c.User())
	assert.Nil(t, c.Session())
	assert.NotNil(t, c.Services())
	assert.NotNil(t, c.RouteData())
	assert.NotNil(t, c.Url())
	td := c.TempData()
	td.Set("a", 1)
	assert.Same(t, td, c.TempData())
	v, ok := td.Peek("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.True(t, td.ContainsKey("a"))
	v, ok = td.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	td.Keep()
	assert.Equal(t, []string{"a"}, td.Keys())
	assert.Equal(t, 1, td.Len())
	td.Remove("a")
	assert.Equal(t, 0, td.Len())
	td.Set("b", 2)
	td.Clear()
	assert.Equal(t, 0, td.Len())
}

func TestActionResultOf(t *testing.T) {
	r, v := UnwrapActionResult(ValueOf(5))
	assert.Nil(t, r)
	assert.Equal(t, 5, v)
	r, v = UnwrapActionResult(ResultOf[int](&NotFoundResult{}))
	assert.NotNil(t, r)
	assert.Nil(t, v)
	r, v = UnwrapActionResult(ActionResultOf[int]{})
	assert.Nil(t, r)
	assert.Nil(t, v)
	r, v = UnwrapActionResult(&OkResult{})
	assert.NotNil(t, r)
	assert.Nil(t, v)
	r, v = UnwrapActionResult("plain")
	assert.Nil(t, r)
	assert.Equal(t, "plain", v)
}

type invokeTarget struct{}

func (invokeTarget) Nothing() {}
func (invokeTarget) Value() int { return 1 }
func (invokeTarget) Err() error { return errors.New("x") }
func (invokeTarget) Pair() (string, error) { return "a", nil }
func (invokeTarget) Panics() int { panic(errors.New("inner")) }
func (invokeTarget) Future() *Future[int] { return Completed(2) }
func (invokeTarget) FailedFuture() *Task { return Failed[struct{}](errors.New("y")) }
func (invokeTarget) TaskDone() *Task { return Completed(struct{}{}) }
func (invokeTarget) Slow() *Future[int] { return Async(func() (int, error) { time.Sleep(time.Second); return 1, nil }) }
func (invokeTarget) NilResult() ActionResult { return nil }

func TestInvokeMethod(t *testing.T) {
	call := func(name string, ctx context.Context) Invocation {
		m, ok := reflect.TypeFor[invokeTarget]().MethodByName(name)
		require.True(t, ok)
		return InvokeMethod(ctx, invokeTarget{}, m, nil)
	}
	ctx := context.Background()
	assert.Equal(t, Invocation{Void: true}, call("Nothing", ctx))
	assert.Equal(t, Invocation{Value: 1}, call("Value", ctx))
	inv := call("Err", ctx)
	assert.True(t, inv.Void)
	assert.Error(t, inv.Err)
	assert.Equal(t, Invocation{Value: "a"}, call("Pair", ctx))
	inv = call("Panics", ctx)
	var perr *PanicError
	require.ErrorAs(t, inv.Err, &perr)
	assert.Equal(t, "panic: inner", perr.Error())
	assert.EqualError(t, perr.Unwrap(), "inner")
	assert.Equal(t, Invocation{Value: 2}, call("Future", ctx))
	inv = call("FailedFuture", ctx)
	assert.EqualError(t, inv.Err, "y")
	assert.Equal(t, Invocation{Void: true}, call("TaskDone", ctx))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	inv = call("Slow", cctx)
	assert.ErrorIs(t, inv.Err, context.Canceled)
	assert.Equal(t, Invocation{}, call("NilResult", ctx))
}
