package mvc

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
)

type testPet struct {
	Id   int    `json:"id"`
	Name string `json:"name" valid:"required"`
	Tag  string `json:"tag" valid:"length(1|10)"`
}

type testPetStore interface {
	Get(id int) (*testPet, bool)
}

type testStore map[int]*testPet

func (s testStore) Get(id int) (*testPet, bool) {
	p, ok := s[id]
	return p, ok
}

type PetsController struct {
	ControllerBase
	Store testPetStore
}

func (c *PetsController) List(limit int) ActionResult {
	return c.Ok([]testPet{{Id: 1, Name: "Felix"}})
}

func (c *PetsController) Get(id int) ActionResult {
	if id == 0 {
		return c.NotFound()
	}
	return c.Ok(testPet{Id: id, Name: "Felix"})
}

func (c *PetsController) Create(pet testPet) ActionResult {
	return c.CreatedAtAction("Get", RouteValues{"id": pet.Id}, pet)
}

func (c *PetsController) Delete(id int) error {
	return errors.New("not allowed")
}

func (c *PetsController) Lookup(store testPetStore, id int) ActionResult {
	if p, ok := store.Get(id); ok {
		return c.Ok(p)
	}
	return c.NotFound()
}

type HomeController struct {
	ControllerBase
}

func (c *HomeController) Index() ActionResult {
	return c.View("Index", nil)
}

func (c *HomeController) About(id string) ActionResult {
	return c.Content("about " + id)
}

func (c *HomeController) Secret() ActionResult {
	return c.Content("secret")
}

func (c *HomeController) Boom() *Task {
	return Async(func() (struct{}, error) {
		panic("boom")
	})
}

func testApplication(options ...Option) *Application {
	app := NewApplication(options...)
	Register[PetsController](app, ControllerMeta{
		Route:      "api/[controller]",
		Attributes: []any{ApiController{}},
		Actions: []ActionMeta{
			{Method: "List", HttpMethod: http.MethodGet, Params: []ParameterMeta{FromQuery("limit")}},
			{Method: "Get", HttpMethod: http.MethodGet, Route: "{id:int}", RouteName: "GetPet", Params: []ParameterMeta{FromRoute("id")}},
			{Method: "Create", HttpMethod: http.MethodPost, Params: []ParameterMeta{FromBody("pet")}, Attributes: []any{Authorize{Roles: []string{"admin"}}}},
			{Method: "Delete", HttpMethod: http.MethodDelete, Route: "{id:int}", Params: []ParameterMeta{FromRoute("id")}},
			{Method: "Lookup", HttpMethod: http.MethodGet, Route: "lookup/{id}", Params: []ParameterMeta{FromServices("store"), Param("id")}},
		},
	})
	Register[HomeController](app, ControllerMeta{
		Actions: []ActionMeta{
			{Method: "Index"},
			{Method: "About", Params: []ParameterMeta{Param("id")}},
			{Method: "Secret", Attributes: []any{Authorize{}}},
			{Method: "Boom"},
		},
	})
	return app
}

func testHttpContext(app *Application, method string, target string, body string) *HttpContext {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return NewHttpContext(r, app.Services())
}
