package mvc

import (
	"fmt"
	"github.com/go-andiamo/urit"
	"net/url"
	"sort"
	"strings"
)

// UrlHelper generates urls for actions and named routes
type UrlHelper struct {
	ac  *ActionContext
	app *Application
}

// NewUrlHelper creates a url helper for an action context
func NewUrlHelper(ac *ActionContext) *UrlHelper {
	result := &UrlHelper{ac: ac}
	if ac != nil && ac.HttpContext != nil {
		result.app, _ = Get[*Application](ac.HttpContext.Services)
	}
	return result
}

// Action generates the url for an action - controller and action default to the current route values
//
// route values not used by the route template are appended as query parameters
func (u *UrlHelper) Action(action string, controller string, values RouteValues) (string, error) {
	if u.app == nil {
		return "", fmt.Errorf("cannot generate url - no application registered")
	}
	if controller == "" && u.ac != nil && u.ac.RouteData != nil {
		controller = u.ac.RouteData.Values.String("controller")
	}
	if action == "" && u.ac != nil && u.ac.RouteData != nil {
		action = u.ac.RouteData.Values.String("action")
	}
	m, ok := u.app.ControllerByName(controller)
	if !ok {
		return "", fmt.Errorf("no controller named %q", controller)
	}
	for _, d := range m.Actions {
		if strings.EqualFold(d.ActionName, action) {
			if d.Template() != "" {
				return generateUrl(d.Template(), values)
			}
			return conventionalUrl(m.Name, d.ActionName, values), nil
		}
	}
	return "", fmt.Errorf("no action named %q on controller %q", action, controller)
}

// RouteUrl generates the url for a named route
func (u *UrlHelper) RouteUrl(routeName string, values RouteValues) (string, error) {
	if u.app == nil {
		return "", fmt.Errorf("cannot generate url - no application registered")
	}
	for _, ad := range u.app.Actions() {
		if d, ok := ad.(*ControllerActionDescriptor); ok && d.RouteName() == routeName && d.Template() != "" {
			return generateUrl(d.Template(), values)
		}
	}
	return "", fmt.Errorf("no route named %q", routeName)
}

// Content converts an app relative path (~/...) to a rooted path
func (u *UrlHelper) Content(path string) string {
	if strings.HasPrefix(path, "~/") {
		return path[1:]
	}
	return path
}

func generateUrl(template string, values RouteValues) (string, error) {
	names, err := TemplateVarNames(template)
	if err != nil {
		return "", err
	}
	vars := make(positionalVars, len(names))
	used := make(map[string]bool, len(names))
	for i, name := range names {
		v, ok := values.Lookup(name)
		if !ok {
			return "", fmt.Errorf("missing route value %q for template %q", name, template)
		}
		vars[i] = v
		used[strings.ToLower(name)] = true
	}
	t, err := urit.NewTemplate(ChiPattern(template))
	if err != nil {
		return "", err
	}
	path, err := t.PathFrom(vars)
	if err != nil {
		return "", err
	}
	return path + queryFrom(values, used), nil
}

func conventionalUrl(controller string, action string, values RouteValues) string {
	path := "/" + controller + "/" + action
	used := map[string]bool{}
	if id, ok := values.Lookup("id"); ok {
		path += "/" + url.PathEscape(fmt.Sprint(id))
		used["id"] = true
	}
	return path + queryFrom(values, used)
}

func queryFrom(values RouteValues, used map[string]bool) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		lk := strings.ToLower(k)
		if !used[lk] && lk != "controller" && lk != "action" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	q := url.Values{}
	for _, k := range keys {
		q.Add(k, fmt.Sprint(values[k]))
	}
	return "?" + q.Encode()
}

// TemplateVarNames returns the names of the vars in a route template (e.g. "api/pets/{id:int}" gives ["id"])
func TemplateVarNames(template string) ([]string, error) {
	parts, err := templateSplitter.Split(template)
	if err != nil {
		return nil, err
	}
	result := make([]string, 0)
	for _, part := range parts {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
			name := strings.TrimPrefix(part[1:len(part)-1], "*")
			if i := strings.IndexAny(name, ":=?"); i >= 0 {
				name = name[:i]
			}
			result = append(result, name)
		}
	}
	return result, nil
}

type positionalVars []any

var _ urit.PathVars = positionalVars{}

func (p positionalVars) GetPositional(position int) (string, bool) {
	if position >= 0 && position < len(p) {
		if s, ok := p[position].(string); ok {
			return s, true
		}
		return fmt.Sprintf("%v", p[position]), true
	}
	return "", false
}

func (p positionalVars) GetNamed(name string, position int) (string, bool) {
	panic("not implemented, not used")
}

func (p positionalVars) GetNamedFirst(name string) (string, bool) {
	panic("not implemented, not used")
}

func (p positionalVars) GetNamedLast(name string) (string, bool) {
	panic("not implemented, not used")
}

func (p positionalVars) Get(idents ...interface{}) (string, bool) {
	panic("not implemented, not used")
}

func (p positionalVars) GetAll() []urit.PathVar {
	panic("not implemented, not used")
}

func (p positionalVars) Len() int {
	return len(p)
}

func (p positionalVars) Clear() {
	panic("not implemented, not used")
}

func (p positionalVars) VarsType() urit.PathVarsType {
	return urit.Positions
}

func (p positionalVars) AddNamedValue(name string, val interface{}) error {
	panic("not implemented, not used")
}

func (p positionalVars) AddPositionalValue(val interface{}) error {
	panic("not implemented, not used")
}
