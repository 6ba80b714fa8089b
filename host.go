package mvctest

import (
	"github.com/go-andiamo/mvctest/environment"
	"github.com/go-andiamo/mvctest/mocks/storage"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/go-andiamo/mvctest/resolve"
	"sync"
)

// host is the test host of an application - the application plus the services prepared for resolving
type host struct {
	app      *mvc.Application
	env      *environment.TestEnvironment
	services *mvc.Services
}

var hosts sync.Map

// hostFor returns the (cached) test host for the application
//
// if app is nil, the application of the default test environment is used (panics if there is none)
func hostFor(app *mvc.Application) *host {
	env := environment.Default()
	if app == nil {
		app = env.MustApplication()
	}
	if h, ok := hosts.Load(app); ok {
		return h.(*host)
	}
	resolve.SetLogger(env.Logger())
	h, _ := hosts.LoadOrStore(app, &host{
		app:      app,
		env:      env,
		services: resolve.PrepareServices(app),
	})
	log().Debug("prepared test host", "application", env.ApplicationName(), "environment", env.EnvironmentName())
	return h.(*host)
}

// ResetHosts clears the cached test hosts and resets the default test environment
//
// must be called after changing the default environment configuration (or the registrations of an application already tested)
func ResetHosts() {
	hosts.Clear()
	environment.Default().Reset()
}

// newServices creates the services for a single test
//
// the services are a copy of the host services with the environment services applied, and
// the mocked storage providers registered (unless already registered)
func (h *host) newServices() *mvc.Services {
	result := h.services.Clone()
	h.env.ConfigureServices(result)
	if maxErrors := h.env.MaxValidationErrors(); maxErrors > 0 {
		options := h.app.Options()
		if o, ok := mvc.Get[mvc.Options](result); ok {
			options = o
		}
		options.MaxModelValidationErrors = maxErrors
		mvc.Provide[mvc.Options](result, options)
	}
	if _, ok := mvc.Get[mvc.DistributedCache](result); !ok {
		mvc.Provide[mvc.DistributedCache](result, storage.NewMockedDistributedCache())
	}
	if _, ok := mvc.Get[mvc.MemoryCache](result); !ok {
		mvc.Provide[mvc.MemoryCache](result, storage.NewMockedMemoryCache())
	}
	if _, ok := mvc.Get[mvc.TempDataFactory](result); !ok {
		mvc.Provide[mvc.TempDataFactory](result, storage.NewMockedTempData())
	}
	return result
}
