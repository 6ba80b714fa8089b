package resolve

import (
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"reflect"
)

// ResolvedRouteContext is the outcome of resolving a request to an action and its bound arguments
//
// either Reason is set (the resolve failed) or the action fields are set
type ResolvedRouteContext struct {
	Reason         string
	ControllerType reflect.Type
	ControllerName string
	ActionName     string
	Action         *mvc.ControllerActionDescriptor
	Arguments      map[string]any
	RouteData      *mvc.RouteData
	ModelState     *mvc.ModelStateDictionary
}

// Failed reports whether the resolve failed (see Reason)
func (r *ResolvedRouteContext) Failed() bool {
	return r.Reason != ""
}

func failed(format string, args ...any) *ResolvedRouteContext {
	return &ResolvedRouteContext{Reason: fmt.Sprintf(format, args...)}
}

const (
	RouteDataExceptionReason = "exception was thrown when trying to resolve route data: '%s'"
	SelectionExceptionReason = "exception was thrown when trying to select an action: '%s'"
	NoActionReason           = "action could not be matched"
	BindingExceptionReason   = "exception was thrown when trying to bind the action arguments: '%s'"
	FiltersBlockedReason     = "action could not be invoked because of the declared filters - you must set the request properties so that they will pass through the pipeline"
)

// RouteData runs the router against the request of the route context
//
// returns nil route data if the request has no path; if routing fails the partial route data is still returned along with the error
func RouteData(router mvc.Router, rc *mvc.RouteContext) (rd *mvc.RouteData, err error) {
	if rc == nil || rc.HttpContext == nil || rc.HttpContext.Request == nil ||
		rc.HttpContext.Request.URL == nil || rc.HttpContext.Request.URL.Path == "" {
		return nil, nil
	}
	if rc.RouteData == nil {
		rc.RouteData = mvc.NewRouteData()
	}
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
		rd = rc.RouteData
	}()
	log().Debug("resolving route data", "method", rc.HttpContext.Request.Method, "path", rc.HttpContext.Request.URL.Path)
	err = router.Route(rc)
	return
}

// Resolve resolves the request of the route context to a controller action and binds its arguments
//
// the action method itself is never called - the services must have been prepared (see PrepareServices)
// so that the invoker factory supplies a ModelBindingActionInvoker
//
// panics if the selected action is not a controller action or the services were not prepared
func Resolve(services *mvc.Services, router mvc.Router, rc *mvc.RouteContext) *ResolvedRouteContext {
	rd, err := RouteData(router, rc)
	if err != nil {
		log().Debug("route data failed", "error", err)
		return failed(RouteDataExceptionReason, err.Error())
	}
	if rd == nil {
		rd = mvc.NewRouteData()
		rc.RouteData = rd
	}
	if rc.HttpContext.Routing == nil {
		rc.HttpContext.Routing = &mvc.RoutingFeature{}
	}
	rc.HttpContext.Routing.RouteData = rd
	selected, err := selectAction(services, rc)
	if err != nil {
		log().Debug("action selection failed", "error", err)
		return failed(SelectionExceptionReason, err.Error())
	} else if selected == nil {
		return failed(NoActionReason)
	}
	d, ok := selected.(*mvc.ControllerActionDescriptor)
	if !ok {
		panic(fmt.Sprintf("only controller actions can be resolved - selected action %q is %T", selected.DisplayName(), selected))
	}
	ac := mvc.NewActionContext(rc.HttpContext, rd, d)
	invoker, ok := mvc.MustGet[mvc.ActionInvokerFactory](services).CreateInvoker(ac).(*ModelBindingActionInvoker)
	if !ok {
		panic("action invoker factory did not supply a model binding invoker - services must be prepared with resolve.PrepareServices")
	}
	if err = invoke(rc, invoker); err != nil {
		log().Debug("argument binding failed", "action", d.DisplayName(), "error", err)
		return failed(BindingExceptionReason, err.Error())
	} else if invoker.BoundArguments == nil {
		return failed(FiltersBlockedReason)
	}
	log().Debug("resolved action", "action", d.DisplayName(), "arguments", len(invoker.BoundArguments))
	return &ResolvedRouteContext{
		ControllerType: d.ControllerType,
		ControllerName: d.ControllerName,
		ActionName:     d.ActionName,
		Action:         d,
		Arguments:      invoker.BoundArguments,
		RouteData:      rd,
		ModelState:     ac.ModelState,
	}
}

func selectAction(services *mvc.Services, rc *mvc.RouteContext) (selected mvc.ActionDescriptor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	selector := mvc.MustGet[mvc.ActionSelector](services)
	var candidates []mvc.ActionDescriptor
	if h, ok := rc.Handler.(*mvc.AttributeRouteHandler); ok {
		candidates = h.Candidates
	} else {
		candidates = selector.SelectCandidates(rc)
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return selector.SelectBestCandidate(rc, candidates)
}

func invoke(rc *mvc.RouteContext, invoker *ModelBindingActionInvoker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	return invoker.Invoke(rc.HttpContext.Request.Context())
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}
