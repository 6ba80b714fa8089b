package mvc

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// ControllerMeta is the registration metadata for a controller
type ControllerMeta struct {
	// Name is the controller name used by routing - defaults to the type name with any "Controller" suffix removed
	Name string
	// Route is the controller level attribute route prefix (may contain [controller] token)
	Route string
	// Attributes are the controller level attributes (filters, markers etc.)
	Attributes []any
	// Actions are the controller actions
	Actions []ActionMeta
	// Factory is an optional constructor for the controller - if not set, the controller is created as a zero value
	Factory func(services *Services) any
}

// ActionMeta is the registration metadata for a controller action
type ActionMeta struct {
	// Method is the name of the Go method implementing the action
	Method string
	// Name is the action name used by routing - defaults to Method
	Name string
	// HttpMethod restricts the action to a http method
	HttpMethod string
	// Route is the action attribute route template (combined with the controller Route)
	Route string
	// RouteName names the attribute route
	RouteName string
	// Params describe the parameters of the action method (in order)
	Params []ParameterMeta
	// Attributes are the action level attributes
	Attributes []any
}

// ParameterMeta is the registration metadata for an action parameter
type ParameterMeta struct {
	Name   string
	Source ParameterSource
}

func Param(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceAny}
}

func FromRoute(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceRoute}
}

func FromQuery(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceQuery}
}

func FromForm(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceForm}
}

func FromHeader(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceHeader}
}

func FromBody(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceBody}
}

func FromServices(name string) ParameterMeta {
	return ParameterMeta{Name: name, Source: SourceServices}
}

// ControllerModel is a registered controller
type ControllerModel struct {
	Type       reflect.Type
	Name       string
	Meta       ControllerMeta
	Actions    []*ControllerActionDescriptor
	Attributes []any
}

// New creates a new instance of the controller (always a pointer)
func (m *ControllerModel) New(services *Services) any {
	if m.Meta.Factory != nil {
		return m.Meta.Factory(services)
	}
	return reflect.New(m.Type.Elem()).Interface()
}

// Application is the host application model - registered controllers, routes, options and services
type Application struct {
	mu          sync.RWMutex
	controllers map[reflect.Type]*ControllerModel
	names       map[string]*ControllerModel
	descriptors []ActionDescriptor
	options     Options
	services    *Services
	providers   []ActionInvokerProvider
	filters     []any
	router      Router
}

// Option is an option for NewApplication
type Option func(a *Application)

// WithOptions sets the mvc options of the application
func WithOptions(options Options) Option {
	return func(a *Application) {
		a.options = options
	}
}

// WithGlobalFilters adds filters that apply to every action
func WithGlobalFilters(filters ...any) Option {
	return func(a *Application) {
		a.filters = append(a.filters, filters...)
	}
}

// WithInvokerProviders adds additional action invoker providers
func WithInvokerProviders(providers ...ActionInvokerProvider) Option {
	return func(a *Application) {
		a.providers = append(a.providers, providers...)
	}
}

// WithServices registers application services
func WithServices(fn func(s *Services)) Option {
	return func(a *Application) {
		fn(a.services)
	}
}

// NewApplication creates a new application model
func NewApplication(options ...Option) *Application {
	result := &Application{
		controllers: make(map[reflect.Type]*ControllerModel),
		names:       make(map[string]*ControllerModel),
		options:     DefaultOptions(),
		services:    NewServices(),
	}
	for _, o := range options {
		o(result)
	}
	return result
}

// Register registers controller type T with the application
//
// panics if the metadata does not match the methods of *T
func Register[T any](app *Application, meta ControllerMeta) *Application {
	if err := app.register(reflect.TypeFor[*T](), meta); err != nil {
		panic(err)
	}
	return app
}

func (a *Application) register(ct reflect.Type, meta ControllerMeta) error {
	if ct.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("controller type %s must be a struct", ct.Elem())
	}
	name := meta.Name
	if name == "" {
		name = strings.TrimSuffix(ct.Elem().Name(), "Controller")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.controllers[ct]; exists {
		return fmt.Errorf("controller type %s already registered", ct.Elem())
	}
	model := &ControllerModel{
		Type:       ct,
		Name:       name,
		Meta:       meta,
		Attributes: meta.Attributes,
	}
	for _, am := range meta.Actions {
		m, ok := ct.MethodByName(am.Method)
		if !ok {
			return fmt.Errorf("controller type %s does not have method %q", ct.Elem(), am.Method)
		}
		d, err := newControllerActionDescriptor(len(a.descriptors), ct, name, m, am, meta)
		if err != nil {
			return err
		}
		model.Actions = append(model.Actions, d)
		a.descriptors = append(a.descriptors, d)
	}
	a.controllers[ct] = model
	a.names[strings.ToLower(name)] = model
	a.router = nil
	return nil
}

// MapPage registers a non-controller (page) endpoint at the path
func (a *Application) MapPage(path string) *Application {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.descriptors = append(a.descriptors, &PageActionDescriptor{Path: "/" + strings.TrimPrefix(path, "/")})
	a.router = nil
	return a
}

// Actions returns all registered action descriptors
func (a *Application) Actions() []ActionDescriptor {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]ActionDescriptor{}, a.descriptors...)
}

// Controller returns the registered controller model for a controller type (pointer or struct type)
func (a *Application) Controller(t reflect.Type) (*ControllerModel, bool) {
	if t != nil && t.Kind() != reflect.Ptr {
		t = reflect.PointerTo(t)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.controllers[t]
	return m, ok
}

// ControllerByName returns the registered controller model by routing name (case-insensitive)
func (a *Application) ControllerByName(name string) (*ControllerModel, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.names[strings.ToLower(name)]
	return m, ok
}

// FindAction finds the first action descriptor on a controller type with the given action (or method) name
func (a *Application) FindAction(t reflect.Type, action string) (*ControllerActionDescriptor, bool) {
	if m, ok := a.Controller(t); ok {
		for _, d := range m.Actions {
			if strings.EqualFold(d.ActionName, action) || d.Method.Name == action {
				return d, true
			}
		}
	}
	return nil, false
}

// Options returns the application mvc options
func (a *Application) Options() Options {
	return a.options
}

// GlobalFilters returns the filters that apply to every action
func (a *Application) GlobalFilters() []any {
	return a.filters
}

// InvokerProviders returns the invoker providers of the application (including the default controller provider)
func (a *Application) InvokerProviders() []ActionInvokerProvider {
	return append([]ActionInvokerProvider{&ControllerActionInvokerProvider{}}, a.providers...)
}

// Router returns the application router (attribute routes followed by conventional routes)
func (a *Application) Router() Router {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.router == nil {
		a.router = NewRouteCollection(
			NewAttributeRouter(a.descriptors),
			NewConventionalRouter(a.options.DefaultController, a.options.DefaultAction),
		)
	}
	return a.router
}

// Services returns a new service provider populated with the application services and the default host services
func (a *Application) Services() *Services {
	result := a.services.Clone()
	Provide[*Application](result, a)
	Provide[Options](result, a.options)
	Provide[ActionSelector](result, NewActionSelector(a))
	Provide[ControllerFactory](result, &DefaultControllerFactory{app: a})
	Provide[ArgumentBinder](result, NewArgumentBinder(DefaultValueProviderFactories()...))
	Provide[ActionInvokerFactory](result, NewActionInvokerFactory(a.InvokerProviders()...))
	return result
}
