package mvc

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
)

// Principal is the user of a request
type Principal struct {
	Name               string
	Roles              []string
	Claims             map[string]string
	AuthenticationType string
	Authenticated      bool
}

// IsInRole determines whether the principal is in the role (case-insensitive)
func (p *Principal) IsInRole(role string) bool {
	return p != nil && slices.ContainsFunc(p.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}

// RoutingFeature holds the route data of a http context
type RoutingFeature struct {
	RouteData *RouteData
}

// HttpContext is the context of a single request
type HttpContext struct {
	Request  *http.Request
	Response *httptest.ResponseRecorder
	User     *Principal
	Session  Session
	Items    map[any]any
	Services *Services
	Routing  *RoutingFeature
}

// NewHttpContext creates a new http context for a request
func NewHttpContext(r *http.Request, services *Services) *HttpContext {
	if r == nil {
		r = httptest.NewRequest(http.MethodGet, "/", nil)
	}
	if services == nil {
		services = NewServices()
	}
	return &HttpContext{
		Request:  r,
		Response: httptest.NewRecorder(),
		Items:    make(map[any]any),
		Services: services,
		Routing:  &RoutingFeature{},
	}
}

// ActionContext is the context of an action
type ActionContext struct {
	HttpContext      *HttpContext
	RouteData        *RouteData
	ActionDescriptor ActionDescriptor
	ModelState       *ModelStateDictionary
}

// NewActionContext creates a new action context
func NewActionContext(hc *HttpContext, rd *RouteData, d ActionDescriptor) *ActionContext {
	if rd == nil {
		rd = NewRouteData()
	}
	maxErrors := DefaultOptions().MaxModelValidationErrors
	if o, ok := Get[Options](hc.Services); ok && o.MaxModelValidationErrors > 0 {
		maxErrors = o.MaxModelValidationErrors
	}
	return &ActionContext{
		HttpContext:      hc,
		RouteData:        rd,
		ActionDescriptor: d,
		ModelState:       NewModelStateDictionary(maxErrors),
	}
}

// ControllerContext is the action context of a controller action
type ControllerContext struct {
	*ActionContext
	ValueProviderFactories []ValueProviderFactory
}

// NewControllerContext creates a new controller context from an action context
func NewControllerContext(ac *ActionContext) *ControllerContext {
	return &ControllerContext{
		ActionContext:          ac,
		ValueProviderFactories: DefaultValueProviderFactories(),
	}
}

// ControllerDescriptor returns the action descriptor as a controller action descriptor (nil if it is not)
func (cc *ControllerContext) ControllerDescriptor() *ControllerActionDescriptor {
	d, _ := cc.ActionDescriptor.(*ControllerActionDescriptor)
	return d
}

// ControllerContextAware is implemented by controllers that accept a controller context (ControllerBase does)
type ControllerContextAware interface {
	SetControllerContext(cc *ControllerContext)
	ControllerContext() *ControllerContext
}
