package mvc

// AuthorizationFilter is a filter that runs first - setting a Result short-circuits the pipeline
type AuthorizationFilter interface {
	OnAuthorization(ctx *AuthorizationFilterContext)
}

type AuthorizationFilterContext struct {
	*ActionContext
	Result ActionResult
}

// ResourceFilter is a filter that runs after authorization and before model binding
type ResourceFilter interface {
	OnResourceExecuting(ctx *ResourceExecutingContext)
}

type ResourceExecutingContext struct {
	*ActionContext
	Result ActionResult
}

// ActionFilter is a filter that runs around the action method (after model binding)
type ActionFilter interface {
	OnActionExecuting(ctx *ActionExecutingContext)
	OnActionExecuted(ctx *ActionExecutedContext)
}

type ActionExecutingContext struct {
	*ControllerContext
	Arguments  map[string]any
	Controller any
	Result     ActionResult
}

type ActionExecutedContext struct {
	*ControllerContext
	Controller any
	Result     ActionResult
	Err        error
}

// FilterPipeline is the ordered set of filters for an action
//
// global filters run first, then controller attribute filters, then action attribute filters
type FilterPipeline struct {
	authorization []AuthorizationFilter
	resource      []ResourceFilter
	action        []ActionFilter
}

// NewFilterPipeline creates the filter pipeline for an action descriptor
func NewFilterPipeline(d ActionDescriptor, globals []any, options Options) *FilterPipeline {
	result := &FilterPipeline{}
	all := append([]any{}, globals...)
	if cad, ok := d.(*ControllerActionDescriptor); ok {
		all = append(all, cad.AllAttributes()...)
		if !options.SuppressModelStateInvalidFilter && hasAttribute[ApiController](cad) {
			all = append(all, modelStateInvalidFilter{})
		}
	}
	for _, f := range all {
		if af, ok := f.(AuthorizationFilter); ok {
			result.authorization = append(result.authorization, af)
		}
		if rf, ok := f.(ResourceFilter); ok {
			result.resource = append(result.resource, rf)
		}
		if af, ok := f.(ActionFilter); ok {
			result.action = append(result.action, af)
		}
	}
	return result
}

// Len is the total number of filters
func (p *FilterPipeline) Len() int {
	return len(p.authorization) + len(p.resource) + len(p.action)
}

// RunAuthorization runs the authorization filters - returning the short-circuit result (if any)
func (p *FilterPipeline) RunAuthorization(ac *ActionContext) ActionResult {
	ctx := &AuthorizationFilterContext{ActionContext: ac}
	for _, f := range p.authorization {
		if f.OnAuthorization(ctx); ctx.Result != nil {
			return ctx.Result
		}
	}
	return nil
}

// RunResources runs the resource filters - returning the short-circuit result (if any)
func (p *FilterPipeline) RunResources(ac *ActionContext) ActionResult {
	ctx := &ResourceExecutingContext{ActionContext: ac}
	for _, f := range p.resource {
		if f.OnResourceExecuting(ctx); ctx.Result != nil {
			return ctx.Result
		}
	}
	return nil
}

// RunActionExecuting runs the action filters (executing) - returning the short-circuit result (if any)
//
// controllers that implement ActionFilter are run after the attribute filters
func (p *FilterPipeline) RunActionExecuting(ctx *ActionExecutingContext) ActionResult {
	for _, f := range p.actionFilters(ctx.Controller) {
		if f.OnActionExecuting(ctx); ctx.Result != nil {
			return ctx.Result
		}
	}
	return nil
}

// RunActionExecuted runs the action filters (executed) in reverse order
func (p *FilterPipeline) RunActionExecuted(ctx *ActionExecutedContext) {
	filters := p.actionFilters(ctx.Controller)
	for i := len(filters) - 1; i >= 0; i-- {
		filters[i].OnActionExecuted(ctx)
	}
}

func (p *FilterPipeline) actionFilters(controller any) []ActionFilter {
	if cf, ok := controller.(ActionFilter); ok {
		return append(append([]ActionFilter{}, p.action...), cf)
	}
	return p.action
}

type modelStateInvalidFilter struct{}

func (modelStateInvalidFilter) OnActionExecuting(ctx *ActionExecutingContext) {
	if !ctx.ModelState.IsValid() {
		ctx.Result = &BadRequestObjectResult{ObjectResult: ObjectResult{Value: NewValidationProblem(ctx.ModelState), StatusCode: 400}}
	}
}

func (modelStateInvalidFilter) OnActionExecuted(*ActionExecutedContext) {}
