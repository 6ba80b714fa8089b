package mvc

import (
	"net/http"
)

// ControllerBase is embedded in controllers to provide access to the controller context and result helpers
type ControllerBase struct {
	cc *ControllerContext
}

var _ ControllerContextAware = (*ControllerBase)(nil)

func (c *ControllerBase) SetControllerContext(cc *ControllerContext) {
	c.cc = cc
}

// ControllerContext returns the controller context (a detached context is created if none has been set)
func (c *ControllerBase) ControllerContext() *ControllerContext {
	if c.cc == nil {
		c.cc = NewControllerContext(NewActionContext(NewHttpContext(nil, nil), nil, nil))
	}
	return c.cc
}

func (c *ControllerBase) HttpContext() *HttpContext {
	return c.ControllerContext().HttpContext
}

func (c *ControllerBase) Request() *http.Request {
	return c.HttpContext().Request
}

func (c *ControllerBase) User() *Principal {
	return c.HttpContext().User
}

func (c *ControllerBase) RouteData() *RouteData {
	return c.ControllerContext().RouteData
}

func (c *ControllerBase) ModelState() *ModelStateDictionary {
	return c.ControllerContext().ModelState
}

func (c *ControllerBase) Url() *UrlHelper {
	return NewUrlHelper(c.ControllerContext().ActionContext)
}

func (c *ControllerBase) Session() Session {
	return c.HttpContext().Session
}

func (c *ControllerBase) Services() *Services {
	return c.HttpContext().Services
}

const tempDataItemKey = "__tempData"

// TempData returns the temp data of the request
func (c *ControllerBase) TempData() TempData {
	hc := c.HttpContext()
	if f, ok := Get[TempDataFactory](hc.Services); ok {
		return f.GetTempData(hc)
	}
	if td, ok := hc.Items[tempDataItemKey].(TempData); ok {
		return td
	}
	td := newTempData()
	hc.Items[tempDataItemKey] = td
	return td
}

func (c *ControllerBase) Ok(value ...any) ActionResult {
	if len(value) > 0 {
		return &OkObjectResult{ObjectResult: ObjectResult{Value: value[0], StatusCode: http.StatusOK}}
	}
	return &OkResult{StatusCodeResult{StatusCode: http.StatusOK}}
}

func (c *ControllerBase) BadRequest(value ...any) ActionResult {
	if len(value) > 0 {
		return &BadRequestObjectResult{ObjectResult: ObjectResult{Value: value[0], StatusCode: http.StatusBadRequest}}
	}
	return &BadRequestResult{StatusCodeResult{StatusCode: http.StatusBadRequest}}
}

// ValidationProblem returns a bad request with the current model state errors
func (c *ControllerBase) ValidationProblem() ActionResult {
	return &BadRequestObjectResult{ObjectResult: ObjectResult{Value: NewValidationProblem(c.ModelState()), StatusCode: http.StatusBadRequest}}
}

func (c *ControllerBase) NotFound(value ...any) ActionResult {
	if len(value) > 0 {
		return &NotFoundObjectResult{ObjectResult: ObjectResult{Value: value[0], StatusCode: http.StatusNotFound}}
	}
	return &NotFoundResult{StatusCodeResult{StatusCode: http.StatusNotFound}}
}

func (c *ControllerBase) Conflict(value ...any) ActionResult {
	if len(value) > 0 {
		return &ConflictObjectResult{ObjectResult: ObjectResult{Value: value[0], StatusCode: http.StatusConflict}}
	}
	return &ConflictResult{StatusCodeResult{StatusCode: http.StatusConflict}}
}

func (c *ControllerBase) Unauthorized() ActionResult {
	return &UnauthorizedResult{StatusCodeResult{StatusCode: http.StatusUnauthorized}}
}

func (c *ControllerBase) NoContent() ActionResult {
	return &NoContentResult{StatusCodeResult{StatusCode: http.StatusNoContent}}
}

func (c *ControllerBase) StatusCode(code int, value ...any) ActionResult {
	if len(value) > 0 {
		return &ObjectResult{Value: value[0], StatusCode: code}
	}
	return &StatusCodeResult{StatusCode: code}
}

func (c *ControllerBase) Created(location string, value any) ActionResult {
	return &CreatedResult{ObjectResult: ObjectResult{Value: value, StatusCode: http.StatusCreated}, Location: location}
}

func (c *ControllerBase) CreatedAtAction(action string, routeValues RouteValues, value any) ActionResult {
	return &CreatedAtActionResult{ObjectResult: ObjectResult{Value: value, StatusCode: http.StatusCreated}, ActionName: action, RouteValues: routeValues}
}

func (c *ControllerBase) CreatedAtControllerAction(controller string, action string, routeValues RouteValues, value any) ActionResult {
	return &CreatedAtActionResult{ObjectResult: ObjectResult{Value: value, StatusCode: http.StatusCreated}, ActionName: action, ControllerName: controller, RouteValues: routeValues}
}

func (c *ControllerBase) CreatedAtRoute(routeName string, routeValues RouteValues, value any) ActionResult {
	return &CreatedAtRouteResult{ObjectResult: ObjectResult{Value: value, StatusCode: http.StatusCreated}, RouteName: routeName, RouteValues: routeValues}
}

func (c *ControllerBase) Content(content string, contentType ...string) ActionResult {
	result := &ContentResult{Content: content}
	if len(contentType) > 0 {
		result.ContentType = contentType[0]
	}
	return result
}

func (c *ControllerBase) Json(value any) ActionResult {
	return &JsonResult{Value: value}
}

func (c *ControllerBase) File(contents []byte, contentType string, downloadName ...string) ActionResult {
	result := &FileContentResult{Contents: contents, ContentType: contentType}
	if len(downloadName) > 0 {
		result.FileDownloadName = downloadName[0]
	}
	return result
}

func (c *ControllerBase) Redirect(url string) ActionResult {
	return &RedirectResult{Url: url}
}

func (c *ControllerBase) RedirectPermanent(url string) ActionResult {
	return &RedirectResult{Url: url, Permanent: true}
}

func (c *ControllerBase) RedirectToAction(action string, routeValues ...RouteValues) ActionResult {
	result := &RedirectToActionResult{ActionName: action}
	if len(routeValues) > 0 {
		result.RouteValues = routeValues[0]
	}
	return result
}

func (c *ControllerBase) RedirectToControllerAction(controller string, action string, routeValues ...RouteValues) ActionResult {
	result := &RedirectToActionResult{ActionName: action, ControllerName: controller}
	if len(routeValues) > 0 {
		result.RouteValues = routeValues[0]
	}
	return result
}

func (c *ControllerBase) RedirectToRoute(routeName string, routeValues RouteValues) ActionResult {
	return &RedirectToRouteResult{RouteName: routeName, RouteValues: routeValues}
}

func (c *ControllerBase) Challenge(schemes ...string) ActionResult {
	return &ChallengeResult{AuthenticationSchemes: schemes}
}

func (c *ControllerBase) Forbid(schemes ...string) ActionResult {
	return &ForbidResult{AuthenticationSchemes: schemes}
}

func (c *ControllerBase) View(name string, model any) ActionResult {
	return &ViewResult{ViewName: name, Model: model}
}

func (c *ControllerBase) PartialView(name string, model any) ActionResult {
	return &PartialViewResult{ViewName: name, Model: model}
}

func (c *ControllerBase) ViewComponent(name string, arguments any) ActionResult {
	return &ViewComponentResult{ViewComponentName: name, Arguments: arguments}
}
