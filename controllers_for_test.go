package mvctest

import (
	"database/sql"
	"errors"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"net/http"
	"time"
)

type pet struct {
	Id   int    `json:"id"`
	Name string `json:"name" valid:"required"`
	Tag  string `json:"tag,omitempty"`
}

type petStore interface {
	Get(id int) (*pet, bool)
}

type memoryPetStore map[int]*pet

func (s memoryPetStore) Get(id int) (*pet, bool) {
	p, ok := s[id]
	return p, ok
}

var defaultPets = memoryPetStore{
	1: {Id: 1, Name: "Felix", Tag: "cat"},
	2: {Id: 2, Name: "Rex", Tag: "dog"},
}

var errNotAllowed = errors.New("not allowed")

type lockedError struct {
	id int
}

func (e *lockedError) Error() string {
	return fmt.Sprintf("pet %d is locked", e.id)
}

type PetsController struct {
	mvc.ControllerBase
	Store   petStore
	touched bool
}

func (c *PetsController) Get(id int) mvc.ActionResult {
	if id < 0 {
		return c.BadRequest("error")
	}
	if p, ok := c.Store.Get(id); ok {
		return c.Ok(p)
	}
	return c.NotFound()
}

func (c *PetsController) Create(p pet) mvc.ActionResult {
	if !c.ModelState().IsValid() {
		return c.BadRequest(mvc.NewValidationProblem(c.ModelState()))
	}
	return c.CreatedAtAction("Get", mvc.RouteValues{"id": p.Id}, p)
}

func (c *PetsController) Validate() mvc.ActionResult {
	c.ModelState().AddModelError("name", "name is required")
	c.ModelState().AddModelError("tag", "tag is too long")
	return c.BadRequest(mvc.NewValidationProblem(c.ModelState()))
}

func (c *PetsController) Delete(id int) error {
	return fmt.Errorf("delete pet %d: %w", id, errNotAllowed)
}

func (c *PetsController) Purge() error {
	return errors.Join(errNotAllowed, &lockedError{id: 1})
}

func (c *PetsController) Explode() mvc.ActionResult {
	panic("boom")
}

func (c *PetsController) Touch() {
	c.touched = true
}

func (c *PetsController) Find(id int) *mvc.Future[*pet] {
	return mvc.Async(func() (*pet, error) {
		if p, ok := c.Store.Get(id); ok {
			return p, nil
		}
		return nil, fmt.Errorf("pet %d not found", id)
	})
}

func (c *PetsController) Remember(name string) mvc.ActionResult {
	mvc.SetString(c.Session(), "last", name)
	c.TempData().Set("message", "remembered "+name)
	mvc.MustGet[mvc.MemoryCache](c.Services()).Set("last", name, mvc.CacheEntryOptions{SlidingExpiration: time.Minute})
	_ = mvc.MustGet[mvc.DistributedCache](c.Services()).Set(c.HttpContext().Request.Context(), "last", []byte(name), mvc.CacheEntryOptions{})
	return c.NoContent()
}

func (c *PetsController) Archive(db *sql.DB, id int) error {
	_, err := db.Exec("UPDATE pets SET archived = 1 WHERE id = ?", id)
	return err
}

type HomeController struct {
	mvc.ControllerBase
}

func (c *HomeController) Index() mvc.ActionResult {
	return c.View("", map[string]any{"title": "Home"})
}

func (c *HomeController) About(id string) mvc.ActionResult {
	return c.Content("about "+id, "text/plain")
}

func (c *HomeController) Download() mvc.ActionResult {
	return c.File([]byte("abc"), "text/plain", "abc.txt")
}

func (c *HomeController) Login() mvc.ActionResult {
	return c.Challenge("Bearer", "Cookies")
}

func (c *HomeController) Pets() mvc.ActionResult {
	return c.RedirectToControllerAction("Pets", "Get", mvc.RouteValues{"id": 1})
}

func (c *HomeController) Away() mvc.ActionResult {
	return c.RedirectPermanent("https://example.org")
}

func testApplication() *mvc.Application {
	app := mvc.NewApplication()
	mvc.Register[PetsController](app, mvc.ControllerMeta{
		Route:      "api/[controller]",
		Attributes: []any{mvc.ApiController{}},
		Factory: func(*mvc.Services) any {
			return &PetsController{Store: defaultPets}
		},
		Actions: []mvc.ActionMeta{
			{Method: "Get", HttpMethod: http.MethodGet, Route: "{id:int}", RouteName: "GetPet", Params: []mvc.ParameterMeta{mvc.FromRoute("id")}},
			{Method: "Create", HttpMethod: http.MethodPost, Params: []mvc.ParameterMeta{mvc.FromBody("p")}, Attributes: []any{mvc.Authorize{Roles: []string{"admin"}}}},
			{Method: "Validate", HttpMethod: http.MethodPost, Route: "validate"},
			{Method: "Delete", HttpMethod: http.MethodDelete, Route: "{id:int}", Params: []mvc.ParameterMeta{mvc.FromRoute("id")}},
			{Method: "Purge", HttpMethod: http.MethodDelete, Route: "purge"},
			{Method: "Explode", HttpMethod: http.MethodGet, Route: "explode"},
			{Method: "Touch", HttpMethod: http.MethodPut, Route: "touch"},
			{Method: "Find", HttpMethod: http.MethodGet, Route: "find/{id:int}", Params: []mvc.ParameterMeta{mvc.FromRoute("id")}},
			{Method: "Remember", HttpMethod: http.MethodPut, Route: "remember/{name}", Params: []mvc.ParameterMeta{mvc.FromRoute("name")}},
			{Method: "Archive", HttpMethod: http.MethodPut, Route: "{id:int}/archive", Params: []mvc.ParameterMeta{mvc.FromServices("db"), mvc.FromRoute("id")}},
		},
	})
	mvc.Register[HomeController](app, mvc.ControllerMeta{
		Actions: []mvc.ActionMeta{
			{Method: "Index"},
			{Method: "About", Params: []mvc.ParameterMeta{mvc.Param("id")}},
			{Method: "Download"},
			{Method: "Login", Attributes: []any{mvc.AllowAnonymous{}}},
			{Method: "Pets"},
			{Method: "Away"},
		},
	})
	return app
}

// recordingT records failures without stopping the test
type recordingT struct {
	name   string
	logs   []string
	fatals []string
}

func newRecordingT() *recordingT {
	return &recordingT{name: "recording"}
}

func (r *recordingT) Helper() {}

func (r *recordingT) Log(args ...any) {
	r.logs = append(r.logs, fmt.Sprint(args...))
}

func (r *recordingT) Fatal(args ...any) {
	r.fatals = append(r.fatals, fmt.Sprint(args...))
}

func (r *recordingT) Failed() bool {
	return len(r.fatals) > 0
}

func (r *recordingT) Name() string {
	return r.name
}

type countingRouter struct {
	router mvc.Router
	count  int
}

func (r *countingRouter) Route(rc *mvc.RouteContext) error {
	r.count++
	return r.router.Route(rc)
}
