package mvc

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"reflect"
	"testing"
)

func TestRegister(t *testing.T) {
	app := testApplication()
	m, ok := app.Controller(reflect.TypeFor[PetsController]())
	require.True(t, ok)
	assert.Equal(t, "Pets", m.Name)
	assert.Len(t, m.Actions, 5)
	_, ok = app.ControllerByName("pets")
	assert.True(t, ok)

	d, ok := app.FindAction(reflect.TypeFor[*PetsController](), "get")
	require.True(t, ok)
	assert.Equal(t, "Get", d.ActionName)
	assert.Equal(t, []string{http.MethodGet}, d.HttpMethods())
	assert.Equal(t, "api/pets/{id:int}", d.Template())
	assert.Equal(t, "GetPet", d.RouteName())
	require.Len(t, d.Parameters, 1)
	assert.Equal(t, "id", d.Parameters[0].Name)
	assert.Equal(t, reflect.TypeFor[int](), d.Parameters[0].Type)
	assert.Equal(t, SourceRoute, d.Parameters[0].Source)
	assert.Len(t, d.AllAttributes(), 1)
	assert.True(t, d.AcceptsMethod("get"))
	assert.False(t, d.AcceptsMethod("post"))
	assert.Contains(t, d.DisplayName(), "PetsController.Get")
	p, idx, ok := d.Parameter("ID")
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "id", p.Name)

	_, ok = app.FindAction(reflect.TypeFor[*PetsController](), "Unknown")
	assert.False(t, ok)
	assert.Len(t, app.Actions(), 9)
}

func TestRegister_Panics(t *testing.T) {
	t.Run("unknown method", func(t *testing.T) {
		assert.Panics(t, func() {
			Register[HomeController](NewApplication(), ControllerMeta{Actions: []ActionMeta{{Method: "Missing"}}})
		})
	})
	t.Run("param count mismatch", func(t *testing.T) {
		assert.Panics(t, func() {
			Register[HomeController](NewApplication(), ControllerMeta{Actions: []ActionMeta{{Method: "About"}}})
		})
	})
	t.Run("already registered", func(t *testing.T) {
		app := NewApplication()
		Register[HomeController](app, ControllerMeta{})
		assert.Panics(t, func() {
			Register[HomeController](app, ControllerMeta{})
		})
	})
	t.Run("not a struct", func(t *testing.T) {
		assert.Panics(t, func() {
			Register[int](NewApplication(), ControllerMeta{})
		})
	})
}

func TestApplication_Services(t *testing.T) {
	app := testApplication(WithServices(func(s *Services) {
		Provide[testPetStore](s, testStore{})
	}))
	s := app.Services()
	_, ok := Get[ActionSelector](s)
	assert.True(t, ok)
	_, ok = Get[ActionInvokerFactory](s)
	assert.True(t, ok)
	_, ok = Get[ArgumentBinder](s)
	assert.True(t, ok)
	_, ok = Get[ControllerFactory](s)
	assert.True(t, ok)
	_, ok = Get[testPetStore](s)
	assert.True(t, ok)
	a, ok := Get[*Application](s)
	assert.True(t, ok)
	assert.Same(t, app, a)
	assert.Equal(t, 200, MustGet[Options](s).MaxModelValidationErrors)
}

func TestModelNew(t *testing.T) {
	app := NewApplication()
	Register[PetsController](app, ControllerMeta{
		Factory: func(services *Services) any {
			return &PetsController{Store: testStore{1: {Id: 1}}}
		},
	})
	Register[HomeController](app, ControllerMeta{})
	m, _ := app.Controller(reflect.TypeFor[PetsController]())
	c, ok := m.New(nil).(*PetsController)
	require.True(t, ok)
	assert.NotNil(t, c.Store)
	m, _ = app.Controller(reflect.TypeFor[HomeController]())
	_, ok = m.New(nil).(*HomeController)
	assert.True(t, ok)
}
