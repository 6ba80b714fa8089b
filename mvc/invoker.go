package mvc

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"slices"
)

// ActionInvoker invokes an action
type ActionInvoker interface {
	Invoke(ctx context.Context) error
}

// ActionInvokerProviderContext is the context passed to invoker providers
type ActionInvokerProviderContext struct {
	ActionContext *ActionContext
	Result        ActionInvoker
}

// ActionInvokerProvider provides the invoker for an action
//
// providers execute in ascending Order - each provider may set (or replace) the Result
type ActionInvokerProvider interface {
	Order() int
	OnProvidersExecuting(ctx *ActionInvokerProviderContext)
	OnProvidersExecuted(ctx *ActionInvokerProviderContext)
}

// ActionInvokerFactory creates invokers for actions
type ActionInvokerFactory interface {
	CreateInvoker(ac *ActionContext) ActionInvoker
}

// DefaultActionInvokerFactory creates invokers from an ordered list of providers
type DefaultActionInvokerFactory struct {
	providers []ActionInvokerProvider
}

// NewActionInvokerFactory creates a new invoker factory - providers are sorted (stable) by Order
func NewActionInvokerFactory(providers ...ActionInvokerProvider) *DefaultActionInvokerFactory {
	sorted := slices.Clone(providers)
	slices.SortStableFunc(sorted, func(a, b ActionInvokerProvider) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return &DefaultActionInvokerFactory{providers: sorted}
}

// Providers returns the providers in execution order
func (f *DefaultActionInvokerFactory) Providers() []ActionInvokerProvider {
	return f.providers
}

func (f *DefaultActionInvokerFactory) CreateInvoker(ac *ActionContext) ActionInvoker {
	pc := &ActionInvokerProviderContext{ActionContext: ac}
	for _, p := range f.providers {
		p.OnProvidersExecuting(pc)
	}
	for i := len(f.providers) - 1; i >= 0; i-- {
		f.providers[i].OnProvidersExecuted(pc)
	}
	return pc.Result
}

// ControllerFactory creates controller instances for actions
type ControllerFactory interface {
	CreateController(cc *ControllerContext) (any, error)
}

// DefaultControllerFactory creates controllers from the registered controller models
type DefaultControllerFactory struct {
	app *Application
}

func NewControllerFactory(app *Application) *DefaultControllerFactory {
	return &DefaultControllerFactory{app: app}
}

func (f *DefaultControllerFactory) CreateController(cc *ControllerContext) (any, error) {
	d := cc.ControllerDescriptor()
	if d == nil {
		return nil, errNotControllerAction
	}
	m, ok := f.app.Controller(d.ControllerType)
	if !ok {
		return nil, fmt.Errorf("controller type %s is not registered", d.ControllerType.Elem())
	}
	c := m.New(cc.HttpContext.Services)
	if ca, ok := c.(ControllerContextAware); ok {
		ca.SetControllerContext(cc)
	}
	return c, nil
}

// ControllerActionInvokerProvider provides ControllerActionInvoker for controller actions
type ControllerActionInvokerProvider struct{}

const ControllerActionInvokerProviderOrder = -1000

func (p *ControllerActionInvokerProvider) Order() int {
	return ControllerActionInvokerProviderOrder
}

func (p *ControllerActionInvokerProvider) OnProvidersExecuting(ctx *ActionInvokerProviderContext) {
	if _, ok := ctx.ActionContext.ActionDescriptor.(*ControllerActionDescriptor); ok {
		ctx.Result = NewControllerActionInvoker(NewControllerContext(ctx.ActionContext))
	}
}

func (p *ControllerActionInvokerProvider) OnProvidersExecuted(*ActionInvokerProviderContext) {}

// ControllerActionInvoker runs the full action pipeline - filters, model binding and the action method
type ControllerActionInvoker struct {
	cc       *ControllerContext
	pipeline *FilterPipeline
	// Result is the action result after invocation
	Result ActionResult
	// Invocation is the outcome of calling the action method (nil if the pipeline was short-circuited)
	Invocation *Invocation
}

func NewControllerActionInvoker(cc *ControllerContext) *ControllerActionInvoker {
	app, _ := Get[*Application](cc.HttpContext.Services)
	var globals []any
	options := DefaultOptions()
	if app != nil {
		globals = app.GlobalFilters()
		options = app.Options()
	}
	return &ControllerActionInvoker{
		cc:       cc,
		pipeline: NewFilterPipeline(cc.ActionDescriptor, globals, options),
	}
}

func (i *ControllerActionInvoker) Invoke(ctx context.Context) error {
	if i.Result = i.pipeline.RunAuthorization(i.cc.ActionContext); i.Result != nil {
		return nil
	}
	if i.Result = i.pipeline.RunResources(i.cc.ActionContext); i.Result != nil {
		return nil
	}
	services := i.cc.HttpContext.Services
	controller, err := MustGet[ControllerFactory](services).CreateController(i.cc)
	if err != nil {
		return err
	}
	args := make(map[string]any)
	if err = MustGet[ArgumentBinder](services).BindArguments(i.cc, controller, args); err != nil {
		return err
	}
	exCtx := &ActionExecutingContext{ControllerContext: i.cc, Arguments: args, Controller: controller}
	if i.Result = i.pipeline.RunActionExecuting(exCtx); i.Result != nil {
		return nil
	}
	d := i.cc.ControllerDescriptor()
	in := make([]reflect.Value, len(d.Parameters))
	for pi, p := range d.Parameters {
		if v, ok := exCtx.Arguments[p.Name]; ok && v != nil {
			in[pi] = reflect.ValueOf(v)
		} else {
			in[pi] = reflect.Zero(p.Type)
		}
	}
	inv := InvokeMethod(ctx, controller, d.Method, in)
	i.Invocation = &inv
	if r, v := UnwrapActionResult(inv.Value); r != nil {
		i.Result = r
	} else if v != nil {
		i.Result = &ObjectResult{Value: v}
	} else if inv.Void {
		i.Result = &EmptyResult{}
	}
	i.pipeline.RunActionExecuted(&ActionExecutedContext{ControllerContext: i.cc, Controller: controller, Result: i.Result, Err: inv.Err})
	return inv.Err
}
