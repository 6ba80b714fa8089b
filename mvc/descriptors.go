package mvc

import (
	"fmt"
	"reflect"
	"strings"
)

// ActionDescriptor describes an action that can be selected by routing
type ActionDescriptor interface {
	// ID is the unique id of the action
	ID() string
	// DisplayName is the human-readable name of the action
	DisplayName() string
	// RouteValues are the required route values of the action (e.g. controller & action)
	RouteValues() RouteValues
	// HttpMethods are the http methods the action is restricted to (empty means any)
	HttpMethods() []string
	// Template is the attribute route template of the action ("" means conventionally routed)
	Template() string
}

// ParameterSource is where a parameter is bound from
type ParameterSource int

const (
	SourceAny ParameterSource = iota
	SourceRoute
	SourceQuery
	SourceForm
	SourceHeader
	SourceBody
	SourceServices
)

func (s ParameterSource) String() string {
	switch s {
	case SourceRoute:
		return "route"
	case SourceQuery:
		return "query"
	case SourceForm:
		return "form"
	case SourceHeader:
		return "header"
	case SourceBody:
		return "body"
	case SourceServices:
		return "services"
	}
	return "any"
}

// ParameterDescriptor describes a single action parameter
type ParameterDescriptor struct {
	Name   string
	Type   reflect.Type
	Source ParameterSource
}

// ControllerActionDescriptor describes an action method on a registered controller
type ControllerActionDescriptor struct {
	id                   string
	ControllerType       reflect.Type
	ControllerName       string
	ActionName           string
	Method               reflect.Method
	Parameters           []ParameterDescriptor
	Attributes           []any
	ControllerAttributes []any
	methods              []string
	template             string
	routeName            string
	routeValues          RouteValues
}

var _ ActionDescriptor = (*ControllerActionDescriptor)(nil)

func (d *ControllerActionDescriptor) ID() string {
	return d.id
}

func (d *ControllerActionDescriptor) DisplayName() string {
	return d.ControllerType.Elem().PkgPath() + "." + d.ControllerType.Elem().Name() + "." + d.Method.Name
}

func (d *ControllerActionDescriptor) RouteValues() RouteValues {
	return d.routeValues.Clone()
}

func (d *ControllerActionDescriptor) HttpMethods() []string {
	return d.methods
}

func (d *ControllerActionDescriptor) Template() string {
	return d.template
}

// RouteName is the name of the attribute route (if named)
func (d *ControllerActionDescriptor) RouteName() string {
	return d.routeName
}

// AllAttributes returns the controller attributes followed by the action attributes
func (d *ControllerActionDescriptor) AllAttributes() []any {
	result := make([]any, 0, len(d.ControllerAttributes)+len(d.Attributes))
	result = append(result, d.ControllerAttributes...)
	return append(result, d.Attributes...)
}

// Parameter finds a parameter by name (case-insensitive)
func (d *ControllerActionDescriptor) Parameter(name string) (ParameterDescriptor, int, bool) {
	for i, p := range d.Parameters {
		if strings.EqualFold(p.Name, name) {
			return p, i, true
		}
	}
	return ParameterDescriptor{}, -1, false
}

// AcceptsMethod determines whether the action can be selected for the http method
func (d *ControllerActionDescriptor) AcceptsMethod(method string) bool {
	if len(d.methods) == 0 {
		return true
	}
	for _, m := range d.methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

// PageActionDescriptor describes a non-controller (page) endpoint
type PageActionDescriptor struct {
	Path string
}

var _ ActionDescriptor = (*PageActionDescriptor)(nil)

func (d *PageActionDescriptor) ID() string {
	return "page:" + d.Path
}

func (d *PageActionDescriptor) DisplayName() string {
	return "Page " + d.Path
}

func (d *PageActionDescriptor) RouteValues() RouteValues {
	return RouteValues{"page": d.Path}
}

func (d *PageActionDescriptor) HttpMethods() []string {
	return nil
}

func (d *PageActionDescriptor) Template() string {
	return strings.TrimPrefix(d.Path, "/")
}

func newControllerActionDescriptor(index int, ct reflect.Type, cName string, m reflect.Method, am ActionMeta, cm ControllerMeta) (*ControllerActionDescriptor, error) {
	mt := m.Type
	if got, want := mt.NumIn()-1, len(am.Params); got != want {
		return nil, fmt.Errorf("action %s.%s has %d parameters but %d parameter metadata supplied", cName, m.Name, got, want)
	}
	params := make([]ParameterDescriptor, len(am.Params))
	for i, pm := range am.Params {
		params[i] = ParameterDescriptor{
			Name:   pm.Name,
			Type:   mt.In(i + 1),
			Source: pm.Source,
		}
	}
	actionName := am.Name
	if actionName == "" {
		actionName = m.Name
	}
	result := &ControllerActionDescriptor{
		id:                   fmt.Sprintf("%d:%s.%s", index, cName, m.Name),
		ControllerType:       ct,
		ControllerName:       cName,
		ActionName:           actionName,
		Method:               m,
		Parameters:           params,
		Attributes:           am.Attributes,
		ControllerAttributes: cm.Attributes,
		routeName:            am.RouteName,
		routeValues: RouteValues{
			"controller": cName,
			"action":     actionName,
		},
	}
	if am.HttpMethod != "" {
		result.methods = []string{strings.ToUpper(am.HttpMethod)}
	}
	for _, attr := range am.Attributes {
		if hm, ok := attr.(HttpMethod); ok {
			result.methods = append(result.methods, strings.ToUpper(string(hm)))
		}
	}
	if tmpl, ok := combineTemplates(cm.Route, am.Route, cName, actionName); ok {
		result.template = tmpl
	}
	return result, nil
}

// combineTemplates combines controller and action route templates, replacing [controller] and [action] tokens (lower-cased)
func combineTemplates(controllerRoute, actionRoute string, controller, action string) (string, bool) {
	var result string
	switch {
	case strings.HasPrefix(actionRoute, "~/"):
		result = actionRoute[2:]
	case strings.HasPrefix(actionRoute, "/"):
		result = actionRoute[1:]
	case controllerRoute == "" && actionRoute == "":
		return "", false
	case controllerRoute == "":
		result = actionRoute
	case actionRoute == "":
		result = strings.Trim(controllerRoute, "/")
	default:
		result = strings.Trim(controllerRoute, "/") + "/" + actionRoute
	}
	result = strings.ReplaceAll(result, "[controller]", strings.ToLower(controller))
	result = strings.ReplaceAll(result, "[action]", strings.ToLower(action))
	return strings.Trim(result, "/"), true
}
