package resolve

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"strings"
)

// ActionRouteData derives the route data for a call to an action
//
// the route values are the controller and action names plus any supplied argument whose
// parameter is route bound (or is a var in the action's route template)
func ActionRouteData(d *mvc.ControllerActionDescriptor, args map[string]any) *mvc.RouteData {
	result := mvc.NewRouteData()
	for k, v := range d.RouteValues() {
		result.Values[k] = v
	}
	vars := templateVars(d.Template())
	for _, p := range d.Parameters {
		v, ok := args[p.Name]
		if !ok || v == nil {
			continue
		}
		if _, isVar := vars[strings.ToLower(p.Name)]; p.Source == mvc.SourceRoute || isVar {
			result.Values[p.Name] = fmt.Sprint(v)
		}
	}
	return result
}

func templateVars(tmpl string) map[string]struct{} {
	result := make(map[string]struct{})
	names, _ := mvc.TemplateVarNames(tmpl)
	for _, name := range names {
		result[strings.ToLower(name)] = struct{}{}
	}
	return result
}
