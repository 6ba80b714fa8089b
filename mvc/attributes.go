package mvc

import (
	"slices"
	"strings"
)

// HttpMethod is an attribute restricting an action to a http method
type HttpMethod string

const (
	HttpGet    HttpMethod = "GET"
	HttpPost   HttpMethod = "POST"
	HttpPut    HttpMethod = "PUT"
	HttpPatch  HttpMethod = "PATCH"
	HttpDelete HttpMethod = "DELETE"
)

// ApiController marks a controller as an api controller - invalid model state automatically
// produces a bad request result before the action executes
type ApiController struct{}

// Area is an attribute denoting the area of a controller
type Area struct {
	Name string
}

// Produces is an attribute denoting the content types an action produces
type Produces struct {
	ContentTypes []string
}

// ResponseCache is an attribute denoting response caching for an action
type ResponseCache struct {
	Duration int
	NoStore  bool
}

// AllowAnonymous is an attribute that bypasses Authorize filters
type AllowAnonymous struct{}

// Authorize is an attribute (and authorization filter) requiring an authenticated user
//
// if Roles are specified, the user must be in at least one of them
type Authorize struct {
	Roles  []string
	Policy string
}

var _ AuthorizationFilter = Authorize{}

func (a Authorize) OnAuthorization(ctx *AuthorizationFilterContext) {
	if hasAttribute[AllowAnonymous](ctx.ActionDescriptor) {
		return
	}
	user := ctx.HttpContext.User
	if user == nil || !user.Authenticated {
		ctx.Result = &ChallengeResult{}
		return
	}
	if len(a.Roles) > 0 && !slices.ContainsFunc(a.Roles, user.IsInRole) {
		ctx.Result = &ForbidResult{}
	}
}

// RequireHttps is an attribute (and authorization filter) rejecting non-https requests
type RequireHttps struct{}

var _ AuthorizationFilter = RequireHttps{}

func (RequireHttps) OnAuthorization(ctx *AuthorizationFilterContext) {
	r := ctx.HttpContext.Request
	if r.TLS == nil && !strings.EqualFold(r.URL.Scheme, "https") {
		ctx.Result = &StatusCodeResult{StatusCode: 403}
	}
}

// RequireHeader is an attribute (and resource filter) rejecting requests without the named header
type RequireHeader struct {
	Name string
}

var _ ResourceFilter = RequireHeader{}

func (a RequireHeader) OnResourceExecuting(ctx *ResourceExecutingContext) {
	if ctx.HttpContext.Request.Header.Get(a.Name) == "" {
		ctx.Result = &BadRequestObjectResult{ObjectResult: ObjectResult{Value: "missing header " + a.Name, StatusCode: 400}}
	}
}

func hasAttribute[T any](d ActionDescriptor) bool {
	if cad, ok := d.(*ControllerActionDescriptor); ok {
		for _, attr := range cad.AllAttributes() {
			if _, ok := attr.(T); ok {
				return true
			}
		}
	}
	return false
}
