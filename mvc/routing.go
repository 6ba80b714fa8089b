package mvc

import (
	"fmt"
	"github.com/go-andiamo/splitter"
	"github.com/go-chi/chi/v5"
	"maps"
	"net/http"
	"strings"
)

// RouteValues are the values extracted by routing (keys are case-insensitive for lookups)
type RouteValues map[string]any

// Clone returns a copy of the route values
func (rv RouteValues) Clone() RouteValues {
	if rv == nil {
		return RouteValues{}
	}
	return maps.Clone(rv)
}

// Lookup gets a route value by key (case-insensitive)
func (rv RouteValues) Lookup(key string) (any, bool) {
	if v, ok := rv[key]; ok {
		return v, true
	}
	for k, v := range rv {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// String gets a route value as a string ("" if not present)
func (rv RouteValues) String(key string) string {
	if v, ok := rv.Lookup(key); ok && v != nil {
		return fmt.Sprint(v)
	}
	return ""
}

// RouteData is the result of routing
type RouteData struct {
	Values     RouteValues
	DataTokens map[string]any
	Routers    []Router
}

// NewRouteData creates a new empty route data
func NewRouteData() *RouteData {
	return &RouteData{
		Values:     RouteValues{},
		DataTokens: map[string]any{},
	}
}

// Clone returns a copy of the route data
func (rd *RouteData) Clone() *RouteData {
	if rd == nil {
		return nil
	}
	return &RouteData{
		Values:     rd.Values.Clone(),
		DataTokens: maps.Clone(rd.DataTokens),
		Routers:    append([]Router{}, rd.Routers...),
	}
}

// RouteContext is the context passed through routers
type RouteContext struct {
	HttpContext *HttpContext
	RouteData   *RouteData
	// Handler is set by the router that matched the request
	Handler RouteHandler
}

// NewRouteContext creates a new route context for a http context
func NewRouteContext(hc *HttpContext) *RouteContext {
	return &RouteContext{
		HttpContext: hc,
		RouteData:   NewRouteData(),
	}
}

// RouteHandler is the handler set by a matching router
type RouteHandler interface {
	// RouteTemplate is the template that was matched
	RouteTemplate() string
}

// AttributeRouteHandler is the handler set by the AttributeRouter - it carries the pre-computed action candidates
type AttributeRouteHandler struct {
	Template   string
	Candidates []ActionDescriptor
}

func (h *AttributeRouteHandler) RouteTemplate() string {
	return h.Template
}

// ConventionalRouteHandler is the handler set by the ConventionalRouter
type ConventionalRouteHandler struct {
	Template string
}

func (h *ConventionalRouteHandler) RouteTemplate() string {
	return h.Template
}

// Router routes a request - a router that matches sets the Handler of the route context
type Router interface {
	Route(rc *RouteContext) error
}

// RouteCollection is an ordered collection of routers - the first router that matches wins
type RouteCollection struct {
	routers []Router
}

// NewRouteCollection creates a new route collection
func NewRouteCollection(routers ...Router) *RouteCollection {
	return &RouteCollection{routers: routers}
}

func (c *RouteCollection) Route(rc *RouteContext) error {
	for _, r := range c.routers {
		snapshot := rc.RouteData.Clone()
		if err := r.Route(rc); err != nil {
			return err
		}
		if rc.Handler != nil {
			rc.RouteData.Routers = append(rc.RouteData.Routers, c, r)
			return nil
		}
		rc.RouteData = snapshot
	}
	return nil
}

// Routers returns the routers in the collection
func (c *RouteCollection) Routers() []Router {
	return c.routers
}

var noopHandler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

type attributeRoute struct {
	template   string
	candidates []ActionDescriptor
}

// AttributeRouter routes requests using the attribute route templates of actions
type AttributeRouter struct {
	mux    *chi.Mux
	routes map[string]*attributeRoute
}

// NewAttributeRouter creates a new attribute router for the actions that have route templates
func NewAttributeRouter(actions []ActionDescriptor) *AttributeRouter {
	result := &AttributeRouter{
		mux:    chi.NewRouter(),
		routes: make(map[string]*attributeRoute),
	}
	for _, d := range actions {
		tmpl := d.Template()
		if tmpl == "" {
			continue
		}
		pattern := ChiPattern(tmpl)
		methods := d.HttpMethods()
		if len(methods) == 0 {
			methods = []string{"*"}
		}
		for _, m := range methods {
			key := m + " " + pattern
			if ar, exists := result.routes[key]; exists {
				ar.candidates = append(ar.candidates, d)
				continue
			}
			result.routes[key] = &attributeRoute{template: tmpl, candidates: []ActionDescriptor{d}}
			if m == "*" {
				result.mux.Handle(pattern, noopHandler)
			} else {
				result.mux.Method(m, pattern, noopHandler)
			}
		}
	}
	return result
}

func (r *AttributeRouter) Route(rc *RouteContext) error {
	req := rc.HttpContext.Request
	path := req.URL.Path
	if path == "" {
		return nil
	}
	cctx := chi.NewRouteContext()
	pattern := r.mux.Find(cctx, req.Method, path)
	if pattern == "" {
		return nil
	}
	ar, ok := r.routes[req.Method+" "+pattern]
	if !ok {
		if ar, ok = r.routes["* "+pattern]; !ok {
			return nil
		}
	}
	for i, k := range cctx.URLParams.Keys {
		if k != "*" {
			rc.RouteData.Values[k] = cctx.URLParams.Values[i]
		}
	}
	if rv := ar.candidates[0].RouteValues(); len(ar.candidates) == 1 || sameRouteValues(ar.candidates) {
		for k, v := range rv {
			rc.RouteData.Values[k] = v
		}
	}
	rc.Handler = &AttributeRouteHandler{Template: ar.template, Candidates: ar.candidates}
	return nil
}

func sameRouteValues(candidates []ActionDescriptor) bool {
	first := candidates[0].RouteValues()
	for _, c := range candidates[1:] {
		if !maps.Equal(first, c.RouteValues()) {
			return false
		}
	}
	return true
}

// ConventionalRouter routes requests using the {controller}/{action}/{id} convention
type ConventionalRouter struct {
	mux               *chi.Mux
	defaultController string
	defaultAction     string
}

// NewConventionalRouter creates a new conventional router with defaults
func NewConventionalRouter(defaultController, defaultAction string) *ConventionalRouter {
	result := &ConventionalRouter{
		mux:               chi.NewRouter(),
		defaultController: defaultController,
		defaultAction:     defaultAction,
	}
	for _, pattern := range conventionalPatterns {
		result.mux.Handle(pattern, noopHandler)
	}
	return result
}

var conventionalPatterns = []string{
	"/",
	"/{controller}",
	"/{controller}/{action}",
	"/{controller}/{action}/{id}",
}

const ConventionalTemplate = "{controller=Home}/{action=Index}/{id?}"

func (r *ConventionalRouter) Route(rc *RouteContext) error {
	req := rc.HttpContext.Request
	path := req.URL.Path
	if path == "" {
		return nil
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	cctx := chi.NewRouteContext()
	if !r.mux.Match(cctx, req.Method, path) {
		return nil
	}
	rc.RouteData.Values["controller"] = r.defaultController
	rc.RouteData.Values["action"] = r.defaultAction
	for i, k := range cctx.URLParams.Keys {
		rc.RouteData.Values[k] = cctx.URLParams.Values[i]
	}
	rc.Handler = &ConventionalRouteHandler{Template: ConventionalTemplate}
	return nil
}

var templateSplitter = splitter.MustCreateSplitter('/', splitter.CurlyBrackets).
	AddDefaultOptions(splitter.IgnoreEmptyFirst, splitter.IgnoreEmptyLast)

var constraintPatterns = map[string]string{
	"int":      "-?[0-9]+",
	"long":     "-?[0-9]+",
	"bool":     "(?i)(true|false)",
	"alpha":    "[a-zA-Z]+",
	"guid":     "[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}",
	"decimal":  "-?[0-9]+(\\.[0-9]+)?",
	"double":   "-?[0-9]+(\\.[0-9]+)?",
	"datetime": "[0-9]{4}-[0-9]{2}-[0-9]{2}.*",
}

// ChiPattern converts a route template (e.g. "api/pets/{id:int}") into a chi routing pattern
//
// named constraints (int, guid, alpha etc.) are translated to regular expressions, other constraints
// are treated as regular expressions
func ChiPattern(template string) string {
	parts, err := templateSplitter.Split(template)
	if err != nil {
		return "/" + template
	}
	var sb strings.Builder
	for _, part := range parts {
		sb.WriteString("/")
		sb.WriteString(chiSegment(part))
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

func chiSegment(segment string) string {
	if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
		return segment
	}
	inner := segment[1 : len(segment)-1]
	inner = strings.TrimPrefix(inner, "*")
	name, constraint, hasConstraint := strings.Cut(inner, ":")
	if !hasConstraint {
		return "{" + name + "}"
	}
	if rx, ok := constraintPatterns[strings.ToLower(constraint)]; ok {
		constraint = rx
	}
	return "{" + name + ":" + constraint + "}"
}
