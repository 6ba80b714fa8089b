package resolve

import (
	"github.com/go-andiamo/mvctest/mvc"
	"net/http"
	"net/http/httptest"
	"strings"
)

type pet struct {
	Id   int    `json:"id"`
	Name string `json:"name" valid:"required"`
}

type petStore interface {
	Count() int
}

type PetsController struct {
	mvc.ControllerBase
}

func (c *PetsController) Get(id int) mvc.ActionResult {
	panic("action body must never be called when resolving")
}

func (c *PetsController) Create(p pet) mvc.ActionResult {
	panic("action body must never be called when resolving")
}

func (c *PetsController) Lookup(store petStore, id int) mvc.ActionResult {
	panic("action body must never be called when resolving")
}

func (c *PetsController) First() mvc.ActionResult {
	return c.Ok(nil)
}

func (c *PetsController) Second() mvc.ActionResult {
	return c.Ok(nil)
}

type HomeController struct {
	mvc.ControllerBase
}

func (c *HomeController) About(id string) mvc.ActionResult {
	panic("action body must never be called when resolving")
}

func testApplication() *mvc.Application {
	app := mvc.NewApplication()
	mvc.Register[PetsController](app, mvc.ControllerMeta{
		Route:      "api/[controller]",
		Attributes: []any{mvc.ApiController{}},
		Actions: []mvc.ActionMeta{
			{Method: "Get", HttpMethod: http.MethodGet, Route: "{id:int}", Params: []mvc.ParameterMeta{mvc.FromRoute("id")}},
			{Method: "Create", HttpMethod: http.MethodPost, Params: []mvc.ParameterMeta{mvc.FromBody("p")}, Attributes: []any{mvc.Authorize{Roles: []string{"admin"}}}},
			{Method: "Lookup", HttpMethod: http.MethodGet, Route: "lookup/{id}", Params: []mvc.ParameterMeta{mvc.FromServices("store"), mvc.Param("id")}},
			{Method: "First", HttpMethod: http.MethodGet, Route: "dup"},
			{Method: "Second", HttpMethod: http.MethodGet, Route: "dup"},
		},
	})
	mvc.Register[HomeController](app, mvc.ControllerMeta{
		Actions: []mvc.ActionMeta{
			{Method: "About", Params: []mvc.ParameterMeta{mvc.Param("id")}},
		},
	})
	return app
}

func testRouteContext(services *mvc.Services, method string, target string, body string) *mvc.RouteContext {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return mvc.NewRouteContext(mvc.NewHttpContext(r, services))
}

var adminUser = &mvc.Principal{Name: "admin", Roles: []string{"admin"}, Authenticated: true}
