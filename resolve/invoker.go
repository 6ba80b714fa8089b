package resolve

import (
	"context"
	"github.com/go-andiamo/mvctest/mvc"
	"math"
)

// ModelBindingActionInvoker is an action invoker that runs the action pipeline only as far as model binding
//
// the action method is never called
type ModelBindingActionInvoker struct {
	cc       *mvc.ControllerContext
	pipeline *mvc.FilterPipeline
	// BoundArguments are the arguments bound for the action (nil if the filters short-circuited the pipeline)
	BoundArguments map[string]any
	// Controller is the controller created for binding
	Controller any
	// Result is the result set by a short-circuiting filter
	Result mvc.ActionResult
}

var _ mvc.ActionInvoker = (*ModelBindingActionInvoker)(nil)

func NewModelBindingActionInvoker(cc *mvc.ControllerContext) *ModelBindingActionInvoker {
	var globals []any
	options := mvc.DefaultOptions()
	if app, ok := mvc.Get[*mvc.Application](cc.HttpContext.Services); ok {
		globals = app.GlobalFilters()
		options = app.Options()
	}
	return &ModelBindingActionInvoker{
		cc:       cc,
		pipeline: mvc.NewFilterPipeline(cc.ActionDescriptor, globals, options),
	}
}

func (i *ModelBindingActionInvoker) Invoke(ctx context.Context) error {
	if i.Result = i.pipeline.RunAuthorization(i.cc.ActionContext); i.Result != nil {
		return nil
	}
	if i.Result = i.pipeline.RunResources(i.cc.ActionContext); i.Result != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	services := i.cc.HttpContext.Services
	controller, err := mvc.MustGet[mvc.ControllerFactory](services).CreateController(i.cc)
	if err != nil {
		return err
	}
	args := make(map[string]any)
	if err = mvc.MustGet[mvc.ArgumentBinder](services).BindArguments(i.cc, controller, args); err != nil {
		return err
	}
	i.Controller = controller
	i.BoundArguments = args
	return nil
}

// ControllerContext is the controller context the invoker binds into
func (i *ModelBindingActionInvoker) ControllerContext() *mvc.ControllerContext {
	return i.cc
}

// ModelBindingActionInvokerProvider provides ModelBindingActionInvoker for controller actions
//
// it runs after every other provider so that it always replaces the invoker
type ModelBindingActionInvokerProvider struct{}

var _ mvc.ActionInvokerProvider = (*ModelBindingActionInvokerProvider)(nil)

const ModelBindingActionInvokerProviderOrder = math.MaxInt

func (p *ModelBindingActionInvokerProvider) Order() int {
	return ModelBindingActionInvokerProviderOrder
}

func (p *ModelBindingActionInvokerProvider) OnProvidersExecuting(ctx *mvc.ActionInvokerProviderContext) {
	if _, ok := ctx.ActionContext.ActionDescriptor.(*mvc.ControllerActionDescriptor); ok {
		ctx.Result = NewModelBindingActionInvoker(mvc.NewControllerContext(ctx.ActionContext))
	}
}

func (p *ModelBindingActionInvokerProvider) OnProvidersExecuted(*mvc.ActionInvokerProviderContext) {}

// PrepareServices creates a service provider for the application whose invoker factory supplies model binding invokers
//
// the application itself (and its own services) are not altered
func PrepareServices(app *mvc.Application) *mvc.Services {
	result := app.Services()
	providers := append(app.InvokerProviders(), &ModelBindingActionInvokerProvider{})
	mvc.Provide[mvc.ActionInvokerFactory](result, mvc.NewActionInvokerFactory(providers...))
	return result
}
