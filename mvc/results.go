package mvc

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ActionResult is the result of an action - executing it writes the response
type ActionResult interface {
	Execute(ac *ActionContext) error
}

// StatusCodeResultProvider is implemented by results that have a status code
type StatusCodeResultProvider interface {
	StatusCodeValue() int
}

// ObjectResult is a result with a value (model)
type ObjectResult struct {
	Value        any
	StatusCode   int
	ContentTypes []string
}

func (r *ObjectResult) StatusCodeValue() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

func (r *ObjectResult) Execute(ac *ActionContext) error {
	return writeJson(ac, r.StatusCodeValue(), r.Value, r.ContentTypes...)
}

func writeJson(ac *ActionContext, status int, value any, contentTypes ...string) error {
	w := ac.HttpContext.Response
	ct := "application/json; charset=utf-8"
	if len(contentTypes) > 0 {
		ct = contentTypes[0]
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	if value == nil {
		return nil
	}
	return json.NewEncoder(w).Encode(value)
}

type OkObjectResult struct {
	ObjectResult
}

type BadRequestObjectResult struct {
	ObjectResult
}

func (r *BadRequestObjectResult) StatusCodeValue() int {
	return http.StatusBadRequest
}

type NotFoundObjectResult struct {
	ObjectResult
}

func (r *NotFoundObjectResult) StatusCodeValue() int {
	return http.StatusNotFound
}

type ConflictObjectResult struct {
	ObjectResult
}

func (r *ConflictObjectResult) StatusCodeValue() int {
	return http.StatusConflict
}

// CreatedResult is a created result with an explicit location
type CreatedResult struct {
	ObjectResult
	Location string
}

func (r *CreatedResult) StatusCodeValue() int {
	return http.StatusCreated
}

func (r *CreatedResult) Execute(ac *ActionContext) error {
	ac.HttpContext.Response.Header().Set("Location", r.Location)
	return writeJson(ac, http.StatusCreated, r.Value, r.ContentTypes...)
}

// CreatedAtActionResult is a created result with a location generated from an action
type CreatedAtActionResult struct {
	ObjectResult
	ActionName     string
	ControllerName string
	RouteValues    RouteValues
}

func (r *CreatedAtActionResult) StatusCodeValue() int {
	return http.StatusCreated
}

func (r *CreatedAtActionResult) Execute(ac *ActionContext) error {
	loc, err := NewUrlHelper(ac).Action(r.ActionName, r.ControllerName, r.RouteValues)
	if err != nil {
		return err
	}
	ac.HttpContext.Response.Header().Set("Location", loc)
	return writeJson(ac, http.StatusCreated, r.Value, r.ContentTypes...)
}

// CreatedAtRouteResult is a created result with a location generated from a named route
type CreatedAtRouteResult struct {
	ObjectResult
	RouteName   string
	RouteValues RouteValues
}

func (r *CreatedAtRouteResult) StatusCodeValue() int {
	return http.StatusCreated
}

func (r *CreatedAtRouteResult) Execute(ac *ActionContext) error {
	loc, err := NewUrlHelper(ac).RouteUrl(r.RouteName, r.RouteValues)
	if err != nil {
		return err
	}
	ac.HttpContext.Response.Header().Set("Location", loc)
	return writeJson(ac, http.StatusCreated, r.Value, r.ContentTypes...)
}

// StatusCodeResult is a result with only a status code
type StatusCodeResult struct {
	StatusCode int
}

func (r *StatusCodeResult) StatusCodeValue() int {
	return r.StatusCode
}

func (r *StatusCodeResult) Execute(ac *ActionContext) error {
	ac.HttpContext.Response.WriteHeader(r.StatusCode)
	return nil
}

type OkResult struct {
	StatusCodeResult
}

type BadRequestResult struct {
	StatusCodeResult
}

type NotFoundResult struct {
	StatusCodeResult
}

type NoContentResult struct {
	StatusCodeResult
}

type UnauthorizedResult struct {
	StatusCodeResult
}

type ConflictResult struct {
	StatusCodeResult
}

// EmptyResult writes nothing
type EmptyResult struct{}

func (r *EmptyResult) Execute(*ActionContext) error {
	return nil
}

// ContentResult is a result with string content
type ContentResult struct {
	Content     string
	ContentType string
	StatusCode  int
}

func (r *ContentResult) StatusCodeValue() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

func (r *ContentResult) Execute(ac *ActionContext) error {
	w := ac.HttpContext.Response
	ct := r.ContentType
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(r.StatusCodeValue())
	_, err := w.WriteString(r.Content)
	return err
}

// JsonResult is a result serialized as json
type JsonResult struct {
	Value       any
	ContentType string
	StatusCode  int
}

func (r *JsonResult) StatusCodeValue() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

func (r *JsonResult) Execute(ac *ActionContext) error {
	if r.ContentType != "" {
		return writeJson(ac, r.StatusCodeValue(), r.Value, r.ContentType)
	}
	return writeJson(ac, r.StatusCodeValue(), r.Value)
}

// FileContentResult is a result with file contents
type FileContentResult struct {
	Contents         []byte
	ContentType      string
	FileDownloadName string
}

func (r *FileContentResult) StatusCodeValue() int {
	return http.StatusOK
}

func (r *FileContentResult) Execute(ac *ActionContext) error {
	w := ac.HttpContext.Response
	w.Header().Set("Content-Type", r.ContentType)
	if r.FileDownloadName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+r.FileDownloadName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(r.Contents)
	return err
}

// RedirectResult redirects to a url
type RedirectResult struct {
	Url       string
	Permanent bool
}

func (r *RedirectResult) StatusCodeValue() int {
	return redirectStatus(r.Permanent)
}

func (r *RedirectResult) Execute(ac *ActionContext) error {
	return writeRedirect(ac, r.Url, r.Permanent)
}

// RedirectToActionResult redirects to an action
type RedirectToActionResult struct {
	ActionName     string
	ControllerName string
	RouteValues    RouteValues
	Permanent      bool
}

func (r *RedirectToActionResult) StatusCodeValue() int {
	return redirectStatus(r.Permanent)
}

func (r *RedirectToActionResult) Execute(ac *ActionContext) error {
	u, err := NewUrlHelper(ac).Action(r.ActionName, r.ControllerName, r.RouteValues)
	if err != nil {
		return err
	}
	return writeRedirect(ac, u, r.Permanent)
}

// RedirectToRouteResult redirects to a named route
type RedirectToRouteResult struct {
	RouteName   string
	RouteValues RouteValues
	Permanent   bool
}

func (r *RedirectToRouteResult) StatusCodeValue() int {
	return redirectStatus(r.Permanent)
}

func (r *RedirectToRouteResult) Execute(ac *ActionContext) error {
	u, err := NewUrlHelper(ac).RouteUrl(r.RouteName, r.RouteValues)
	if err != nil {
		return err
	}
	return writeRedirect(ac, u, r.Permanent)
}

func redirectStatus(permanent bool) int {
	if permanent {
		return http.StatusMovedPermanently
	}
	return http.StatusFound
}

func writeRedirect(ac *ActionContext, url string, permanent bool) error {
	ac.HttpContext.Response.Header().Set("Location", url)
	ac.HttpContext.Response.WriteHeader(redirectStatus(permanent))
	return nil
}

// ChallengeResult challenges the user to authenticate
type ChallengeResult struct {
	AuthenticationSchemes []string
}

func (r *ChallengeResult) StatusCodeValue() int {
	return http.StatusUnauthorized
}

func (r *ChallengeResult) Execute(ac *ActionContext) error {
	if len(r.AuthenticationSchemes) > 0 {
		ac.HttpContext.Response.Header().Set("WWW-Authenticate", strings.Join(r.AuthenticationSchemes, ", "))
	}
	ac.HttpContext.Response.WriteHeader(http.StatusUnauthorized)
	return nil
}

// ForbidResult forbids the user
type ForbidResult struct {
	AuthenticationSchemes []string
}

func (r *ForbidResult) StatusCodeValue() int {
	return http.StatusForbidden
}

func (r *ForbidResult) Execute(ac *ActionContext) error {
	ac.HttpContext.Response.WriteHeader(http.StatusForbidden)
	return nil
}

// ViewResult renders a view
type ViewResult struct {
	ViewName   string
	Model      any
	ViewData   map[string]any
	StatusCode int
}

func (r *ViewResult) StatusCodeValue() int {
	if r.StatusCode == 0 {
		return http.StatusOK
	}
	return r.StatusCode
}

func (r *ViewResult) Execute(ac *ActionContext) error {
	return writeView(ac, r.StatusCodeValue(), r.ViewName, r.Model)
}

// PartialViewResult renders a partial view
type PartialViewResult struct {
	ViewName string
	Model    any
	ViewData map[string]any
}

func (r *PartialViewResult) Execute(ac *ActionContext) error {
	return writeView(ac, http.StatusOK, r.ViewName, r.Model)
}

// ViewComponentResult renders a view component
type ViewComponentResult struct {
	ViewComponentName string
	Arguments         any
}

func (r *ViewComponentResult) Execute(ac *ActionContext) error {
	return writeView(ac, http.StatusOK, r.ViewComponentName, r.Arguments)
}

func writeView(ac *ActionContext, status int, name string, model any) error {
	w := ac.HttpContext.Response
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-View-Name", name)
	w.WriteHeader(status)
	return nil
}

// ValidationProblem is the body of a bad request produced from invalid model state
type ValidationProblem struct {
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Errors map[string][]string `json:"errors"`
}

// NewValidationProblem creates a validation problem from model state
func NewValidationProblem(ms *ModelStateDictionary) *ValidationProblem {
	result := &ValidationProblem{
		Title:  "One or more validation errors occurred.",
		Status: http.StatusBadRequest,
		Errors: make(map[string][]string),
	}
	for _, k := range ms.Keys() {
		if msgs := ms.ErrorMessages(k); len(msgs) > 0 {
			result.Errors[k] = msgs
		}
	}
	return result
}

// ActionResultOf is an action result that is either an ActionResult or a value of type T
type ActionResultOf[T any] struct {
	Result   ActionResult
	Value    T
	hasValue bool
}

// ResultOf creates an ActionResultOf from an ActionResult
func ResultOf[T any](r ActionResult) ActionResultOf[T] {
	return ActionResultOf[T]{Result: r}
}

// ValueOf creates an ActionResultOf from a value
func ValueOf[T any](v T) ActionResultOf[T] {
	return ActionResultOf[T]{Value: v, hasValue: true}
}

// UnwrapResult returns the result or value of the ActionResultOf
func (r ActionResultOf[T]) UnwrapResult() (ActionResult, any) {
	if r.Result != nil {
		return r.Result, nil
	}
	if r.hasValue {
		return nil, r.Value
	}
	return nil, nil
}

// ResultWrapper is implemented by ActionResultOf
type ResultWrapper interface {
	UnwrapResult() (ActionResult, any)
}

// UnwrapActionResult unwraps a value returned from an action into an ActionResult (if it is one) and/or plain value
func UnwrapActionResult(v any) (ActionResult, any) {
	switch vt := v.(type) {
	case ResultWrapper:
		return vt.UnwrapResult()
	case ActionResult:
		return vt, nil
	}
	return nil, v
}
