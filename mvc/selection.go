package mvc

import (
	"fmt"
	"strings"
)

// ActionSelector selects the action for a routed request
type ActionSelector interface {
	// SelectCandidates finds the actions that match the route values of the route context
	SelectCandidates(rc *RouteContext) []ActionDescriptor
	// SelectBestCandidate selects the single best candidate (nil if none match)
	//
	// an error is returned if the match is ambiguous
	SelectBestCandidate(rc *RouteContext, candidates []ActionDescriptor) (ActionDescriptor, error)
}

// AmbiguousActionError is returned when more than one action matches a request
type AmbiguousActionError struct {
	Matches []ActionDescriptor
}

func (e *AmbiguousActionError) Error() string {
	names := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		names = append(names, m.DisplayName())
	}
	return fmt.Sprintf("multiple actions matched. The following actions matched route data and had all constraints satisfied: %s", strings.Join(names, ", "))
}

type defaultActionSelector struct {
	app *Application
}

// NewActionSelector creates the default action selector for an application
func NewActionSelector(app *Application) ActionSelector {
	return &defaultActionSelector{app: app}
}

func (s *defaultActionSelector) SelectCandidates(rc *RouteContext) []ActionDescriptor {
	if h, ok := rc.Handler.(*AttributeRouteHandler); ok {
		return h.Candidates
	}
	if rc.RouteData == nil {
		return nil
	}
	controller := rc.RouteData.Values.String("controller")
	action := rc.RouteData.Values.String("action")
	if controller == "" || action == "" {
		return nil
	}
	result := make([]ActionDescriptor, 0)
	for _, d := range s.app.Actions() {
		if d.Template() != "" {
			continue
		}
		rv := d.RouteValues()
		if strings.EqualFold(rv.String("controller"), controller) && strings.EqualFold(rv.String("action"), action) {
			result = append(result, d)
		}
	}
	return result
}

func (s *defaultActionSelector) SelectBestCandidate(rc *RouteContext, candidates []ActionDescriptor) (ActionDescriptor, error) {
	method := ""
	if rc.HttpContext != nil && rc.HttpContext.Request != nil {
		method = rc.HttpContext.Request.Method
	}
	constrained := make([]ActionDescriptor, 0, len(candidates))
	unconstrained := make([]ActionDescriptor, 0, len(candidates))
	for _, c := range candidates {
		methods := c.HttpMethods()
		if len(methods) == 0 {
			unconstrained = append(unconstrained, c)
			continue
		}
		for _, m := range methods {
			if strings.EqualFold(m, method) {
				constrained = append(constrained, c)
				break
			}
		}
	}
	matches := constrained
	if len(matches) == 0 {
		matches = unconstrained
	}
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return matches[0], nil
	}
	return nil, &AmbiguousActionError{Matches: matches}
}
