package mvctest

import (
	"database/sql"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	htesting "github.com/go-andiamo/mvctest/testing"
	"maps"
)

// ControllerBuilder builds the test of a controller of type T
//
// the controller is constructed (by the application's registered factory, or a zero value) the first time it is needed
type ControllerBuilder[T any] struct {
	tc *TestContext
}

// Controller starts the test of controller type T registered with the application
//
// if app is nil, the application of the default test environment is used (see environment.Configure and environment.WithApplication)
func Controller[T any](t htesting.T, app *mvc.Application) *ControllerBuilder[T] {
	h := hostFor(app)
	ct := controllerTypeOf[T]()
	return &ControllerBuilder[T]{
		tc: newTestContext(t, h, ct, func(services *mvc.Services) (any, error) {
			m, _ := h.app.Controller(ct)
			return m.New(services), nil
		}),
	}
}

// ControllerInstance starts the test of an existing controller instance
func ControllerInstance[T any](t htesting.T, app *mvc.Application, controller *T) *ControllerBuilder[T] {
	if controller == nil {
		panic("controller instance cannot be nil")
	}
	return &ControllerBuilder[T]{
		tc: newTestContext(t, hostFor(app), controllerTypeOf[T](), func(*mvc.Services) (any, error) {
			return controller, nil
		}),
	}
}

// ControllerFunc starts the test of a controller constructed by the given function (called at most once)
func ControllerFunc[T any](t htesting.T, app *mvc.Application, construct func(services *mvc.Services) (*T, error)) *ControllerBuilder[T] {
	return &ControllerBuilder[T]{
		tc: newTestContext(t, hostFor(app), controllerTypeOf[T](), func(services *mvc.Services) (any, error) {
			c, err := construct(services)
			if err != nil || c == nil {
				return nil, err
			}
			return c, nil
		}),
	}
}

// WithHttpRequest configures the http request of the test
func (b *ControllerBuilder[T]) WithHttpRequest(fn func(rb *RequestBuilder)) *ControllerBuilder[T] {
	fn(b.tc.request)
	if hc := b.tc.hc; hc != nil {
		hc.Request = b.tc.request.Build()
		hc.User = b.tc.request.principal()
	}
	return b
}

// WithUser sets an authenticated user on the http request
func (b *ControllerBuilder[T]) WithUser(name string, roles ...string) *ControllerBuilder[T] {
	return b.WithHttpRequest(func(rb *RequestBuilder) {
		rb.WithUser(name, roles...)
	})
}

// WithServices configures the services of the test (the services are a copy - changes do not affect other tests)
func (b *ControllerBuilder[T]) WithServices(fn func(services *mvc.Services)) *ControllerBuilder[T] {
	fn(b.tc.services)
	return b
}

// WithRouter sets the router used to resolve the route data of the test
func (b *ControllerBuilder[T]) WithRouter(router mvc.Router) *ControllerBuilder[T] {
	b.tc.SetRouter(router)
	return b
}

// WithRouteData sets the route data of the test
//
// with no values, the route data is derived from the action call (which is the default); otherwise
// the route data is exactly the values supplied
func (b *ControllerBuilder[T]) WithRouteData(values ...mvc.RouteValues) *ControllerBuilder[T] {
	if len(values) == 0 {
		return b
	}
	if b.tc.explicitValues == nil {
		b.tc.explicitValues = mvc.RouteValues{}
	}
	for _, rv := range values {
		maps.Copy(b.tc.explicitValues, rv)
	}
	if b.tc.routeData != nil {
		b.tc.routeData = nil
		b.tc.RouteData()
	}
	return b
}

// WithSession seeds the session
func (b *ControllerBuilder[T]) WithSession(fn func(sb SessionBuilder)) *ControllerBuilder[T] {
	fn(&sessionBuilder{session: b.tc.Session()})
	return b
}

// WithDistributedCache seeds the distributed cache
func (b *ControllerBuilder[T]) WithDistributedCache(fn func(cb DistributedCacheBuilder)) *ControllerBuilder[T] {
	fn(&distributedCacheBuilder{tc: b.tc})
	return b
}

// WithMemoryCache seeds the memory cache
func (b *ControllerBuilder[T]) WithMemoryCache(fn func(cb MemoryCacheBuilder)) *ControllerBuilder[T] {
	fn(&memoryCacheBuilder{tc: b.tc})
	return b
}

// WithTempData seeds the temp data (once the http context is available)
func (b *ControllerBuilder[T]) WithTempData(fn func(tb TempDataBuilder)) *ControllerBuilder[T] {
	b.tc.preparations = append(b.tc.preparations, func(tc *TestContext) {
		fn(&tempDataBuilder{tc: tc})
	})
	return b
}

// WithDatabase registers a named database - the database is also provided as a service (*sql.DB)
func (b *ControllerBuilder[T]) WithDatabase(name string, db *sql.DB) *ControllerBuilder[T] {
	if db == nil {
		panic(fmt.Sprintf("database %q cannot be nil", name))
	}
	b.tc.databases[name] = db
	b.tc.services.Register(name, db)
	mvc.Provide[*sql.DB](b.tc.services, db)
	return b
}

// WithData seeds the named database before the action is called (panics if seeding fails)
//
// Note: when only one database is used by tests, the dbName can be ""
func (b *ControllerBuilder[T]) WithData(dbName string, fn func(db *sql.DB) error) *ControllerBuilder[T] {
	b.tc.preparations = append(b.tc.preparations, func(tc *TestContext) {
		if err := fn(tc.mustDb(dbName)); err != nil {
			panic(fmt.Errorf("unable to seed database %q: %w", dbName, err))
		}
	})
	return b
}

// WithSetup sets up the controller (after construction, before the action is called)
func (b *ControllerBuilder[T]) WithSetup(fn func(controller *T)) *ControllerBuilder[T] {
	b.tc.preparations = append(b.tc.preparations, func(tc *TestContext) {
		fn(tc.Controller().(*T))
	})
	return b
}

// WithControllerContext customizes the controller context (when it is created)
func (b *ControllerBuilder[T]) WithControllerContext(fn func(cc *mvc.ControllerContext)) *ControllerBuilder[T] {
	b.tc.ccCustomizers = append(b.tc.ccCustomizers, fn)
	if b.tc.cc != nil {
		fn(b.tc.cc)
	}
	return b
}

// ShouldHaveAttributes asserts on the attributes declared on the controller
func (b *ControllerBuilder[T]) ShouldHaveAttributes(fn func(AttributesAssertions)) *ControllerBuilder[T] {
	fn(newAttributesAssertions(b.tc, "controller", b.tc.ControllerAttributes()))
	return b
}

// Calling calls the named action with the arguments
//
// arguments may be placeholders - Any[T]() (zero value), FromServices[T]() (resolved from services)
// or FromRequest[T]() (bound from the http request)
func (b *ControllerBuilder[T]) Calling(name string, args ...any) ActionCallBuilder {
	return b.Call(&ActionCall{name: name, args: args, frame: callerFrame()})
}

// Call calls the action described by the call (see Action and ActionOf)
//
// panics if the call is for a different controller type
func (b *ControllerBuilder[T]) Call(call *ActionCall) ActionCallBuilder {
	if call.controllerType != nil && call.controllerType != b.tc.controllerType {
		panic(fmt.Sprintf("action call is for controller %s - but the controller under test is %s",
			friendlyTypeName(call.controllerType), friendlyTypeName(b.tc.controllerType)))
	}
	b.tc.setCall(call)
	return newActionCallBuilder(b.tc)
}

// Instance returns the controller under test (constructing it if necessary)
func (b *ControllerBuilder[T]) Instance() *T {
	return b.tc.Controller().(*T)
}

// Context returns the test context
func (b *ControllerBuilder[T]) Context() *TestContext {
	return b.tc
}
