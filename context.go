package mvctest

import (
	"database/sql"
	"fmt"
	"github.com/go-andiamo/mvctest/common"
	"github.com/go-andiamo/mvctest/framing"
	"github.com/go-andiamo/mvctest/mocks/storage"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/go-andiamo/mvctest/resolve"
	htesting "github.com/go-andiamo/mvctest/testing"
	"reflect"
	"strings"
	"time"
)

// TestContext is the context of a single controller test
//
// everything is resolved lazily (and at most once) in a fixed order:
//   - the controller is constructed on first access (construction errors panic)
//   - route data is resolved on first access: explicit route data, else derived from the action call,
//     else the routing feature of the http context, else by running the router
//   - preparations (session, cache, temp data and database seeding) run after construction but before the action is called
//   - the action is called once, its result and error are captured
//
// a TestContext is not safe for concurrent use - it belongs to a single test
type TestContext struct {
	helper          htesting.Helper
	host            *host
	services        *mvc.Services
	router          mvc.Router
	request         *RequestBuilder
	controllerType  reflect.Type
	construct       func(services *mvc.Services) (any, error)
	constructed     bool
	controller      any
	call            *ActionCall
	descriptor      *mvc.ControllerActionDescriptor
	hc              *mvc.HttpContext
	routeData       *mvc.RouteData
	explicitValues  mvc.RouteValues
	cc              *mvc.ControllerContext
	ccCustomizers   []func(cc *mvc.ControllerContext)
	preparations    []func(tc *TestContext)
	databases       map[string]*sql.DB
	session         storage.MockedSession
	resolved        *resolve.ResolvedRouteContext
	invoked         bool
	invocation      mvc.Invocation
	duration        time.Duration
	result          any
	caught          error
	caughtSet       bool
	model           any
	modelSet        bool
	responseWritten bool
	responseErr     error
	failure         *AssertionError
}

func newTestContext(t htesting.T, h *host, controllerType reflect.Type, construct func(services *mvc.Services) (any, error)) *TestContext {
	if _, ok := h.app.Controller(controllerType); !ok {
		panic(fmt.Sprintf("controller type %s is not registered with the application", friendlyTypeName(controllerType)))
	}
	return &TestContext{
		helper:         htesting.NewHelper(t, nil, nil),
		host:           h,
		services:       h.newServices(),
		request:        Request(),
		controllerType: controllerType,
		construct:      construct,
		databases:      make(map[string]*sql.DB),
	}
}

// Services returns the services of the test
func (tc *TestContext) Services() *mvc.Services {
	return tc.services
}

// Application returns the application under test
func (tc *TestContext) Application() *mvc.Application {
	return tc.host.app
}

// Router returns the router used to resolve route data (the application router unless set)
func (tc *TestContext) Router() mvc.Router {
	if tc.router == nil {
		tc.router = tc.host.app.Router()
	}
	return tc.router
}

// SetRouter sets the router used to resolve route data
func (tc *TestContext) SetRouter(r mvc.Router) {
	if r == nil {
		panic("router cannot be nil")
	}
	tc.router = r
}

// HttpContext returns the http context of the test (created from the request on first access)
func (tc *TestContext) HttpContext() *mvc.HttpContext {
	if tc.hc == nil {
		hc := mvc.NewHttpContext(tc.request.Build(), tc.services)
		hc.User = tc.request.principal()
		hc.Session = tc.Session()
		tc.hc = hc
		if tc.routeData != nil {
			hc.Routing.RouteData = tc.routeData
		}
	}
	return tc.hc
}

// SetHttpContext replaces the http context (panics if nil)
func (tc *TestContext) SetHttpContext(hc *mvc.HttpContext) {
	if hc == nil {
		panic("http context cannot be nil")
	}
	if hc.Routing == nil {
		hc.Routing = &mvc.RoutingFeature{}
	}
	tc.hc = hc
	if tc.routeData != nil {
		hc.Routing.RouteData = tc.routeData
	}
	if tc.cc != nil {
		tc.cc.HttpContext = hc
	}
}

// RouteData returns the route data of the test
//
// the route data is resolved once - subsequent calls return the same route data (until explicitly set)
func (tc *TestContext) RouteData() *mvc.RouteData {
	if tc.routeData == nil {
		rd := tc.resolveRouteData()
		if rd == nil {
			rd = mvc.NewRouteData()
		}
		tc.routeData = rd
		tc.mirrorRouteData()
	}
	return tc.routeData
}

// SetRouteData sets the route data of the test (panics if nil)
//
// the route data is also set on the http context routing feature and the controller context
func (tc *TestContext) SetRouteData(rd *mvc.RouteData) {
	if rd == nil {
		panic("route data cannot be nil")
	}
	tc.routeData = rd
	tc.mirrorRouteData()
}

func (tc *TestContext) mirrorRouteData() {
	hc := tc.HttpContext()
	if hc.Routing == nil {
		hc.Routing = &mvc.RoutingFeature{}
	}
	hc.Routing.RouteData = tc.routeData
	if tc.cc != nil {
		tc.cc.RouteData = tc.routeData
	}
}

func (tc *TestContext) resolveRouteData() *mvc.RouteData {
	if tc.explicitValues != nil {
		rd := mvc.NewRouteData()
		for k, v := range tc.explicitValues {
			rd.Values[k] = v
		}
		return rd
	}
	if tc.call != nil {
		if tc.callBindsFromRequest() && tc.request.Path() != "" {
			if resolved, ok := tc.resolveRequest(); ok {
				return resolved.RouteData
			}
			return nil
		}
		return resolve.ActionRouteData(tc.descriptor, tc.call.literalArgs(tc.descriptor))
	}
	hc := tc.HttpContext()
	if hc.Routing != nil && hc.Routing.RouteData != nil && len(hc.Routing.RouteData.Values) > 0 {
		return hc.Routing.RouteData
	}
	rd, err := resolve.RouteData(tc.Router(), mvc.NewRouteContext(hc))
	if err != nil {
		log().Debug("route data could not be resolved", "error", err)
	}
	return rd
}

func (tc *TestContext) callBindsFromRequest() bool {
	for _, arg := range tc.call.args {
		if p, ok := arg.(*placeholder); ok && p.kind == fromRequest {
			return true
		}
	}
	return false
}

// ControllerContext returns the controller context (created on first access)
//
// when created, the controller context inherits the route data of the test
func (tc *TestContext) ControllerContext() *mvc.ControllerContext {
	if tc.cc == nil {
		var d mvc.ActionDescriptor
		if tc.descriptor != nil {
			d = tc.descriptor
		}
		cc := mvc.NewControllerContext(mvc.NewActionContext(tc.HttpContext(), nil, d))
		tc.cc = cc
		if len(cc.RouteData.Values) == 0 {
			cc.RouteData = tc.RouteData()
		}
		for _, fn := range tc.ccCustomizers {
			fn(cc)
		}
	}
	return tc.cc
}

// SetControllerContext replaces the controller context (panics if nil)
//
// if the controller context carries route values, they become the route data of the test - otherwise it inherits the route data of the test
func (tc *TestContext) SetControllerContext(cc *mvc.ControllerContext) {
	if cc == nil {
		panic("controller context cannot be nil")
	}
	tc.cc = cc
	if cc.RouteData != nil && len(cc.RouteData.Values) > 0 {
		tc.SetRouteData(cc.RouteData)
	} else {
		cc.RouteData = tc.RouteData()
	}
	if aware, ok := tc.controller.(mvc.ControllerContextAware); ok && tc.constructed {
		aware.SetControllerContext(cc)
	}
}

// ModelState returns the model state of the controller context
func (tc *TestContext) ModelState() *mvc.ModelStateDictionary {
	return tc.ControllerContext().ModelState
}

// Controller returns the controller under test - constructing it on first access
//
// panics if construction fails
func (tc *TestContext) Controller() any {
	if !tc.constructed {
		c, err := tc.construct(tc.services)
		if err != nil {
			panic(fmt.Errorf("unable to construct controller %s: %w", friendlyTypeName(tc.controllerType), err))
		} else if isNil(c) {
			panic(fmt.Sprintf("construction of controller %s returned nil", friendlyTypeName(tc.controllerType)))
		}
		tc.controller = c
		tc.constructed = true
		log().Debug("constructed controller", "type", friendlyTypeName(tc.controllerType))
		if aware, ok := c.(mvc.ControllerContextAware); ok {
			aware.SetControllerContext(tc.ControllerContext())
		}
	}
	return tc.controller
}

// ControllerModel returns the registered model of the controller under test
func (tc *TestContext) ControllerModel() *mvc.ControllerModel {
	m, _ := tc.host.app.Controller(tc.controllerType)
	return m
}

// ControllerName returns the routing name of the controller under test (e.g. "Pets")
func (tc *TestContext) ControllerName() string {
	return tc.ControllerModel().Name
}

// ControllerAttributes returns the attributes declared on the controller under test
func (tc *TestContext) ControllerAttributes() []any {
	return tc.ControllerModel().Attributes
}

// Call returns the action call (nil if no action has been called)
func (tc *TestContext) Call() *ActionCall {
	return tc.call
}

// Descriptor returns the descriptor of the called action - panics if no action has been called
func (tc *TestContext) Descriptor() *mvc.ControllerActionDescriptor {
	if tc.descriptor == nil {
		panic("no action has been called - the action is only available after Calling")
	}
	return tc.descriptor
}

// Method returns the method of the called action - panics if no action has been called
func (tc *TestContext) Method() reflect.Method {
	return tc.Descriptor().Method
}

// MethodAttributes returns the attributes declared on the called action - panics if no action has been called
func (tc *TestContext) MethodAttributes() []any {
	return tc.Descriptor().Attributes
}

func (tc *TestContext) setCall(call *ActionCall) {
	if tc.call != nil {
		panic("an action has already been called for this test")
	}
	tc.descriptor = call.descriptor(tc.host.app, tc.controllerType)
	tc.call = call
	if tc.cc != nil {
		tc.cc.ActionDescriptor = tc.descriptor
	}
}

// Session returns the (mocked) session of the test
func (tc *TestContext) Session() storage.MockedSession {
	if tc.session == nil {
		tc.session = storage.NewMockedSession()
	}
	return tc.session
}

func (tc *TestContext) DistributedCache() mvc.DistributedCache {
	return mvc.MustGet[mvc.DistributedCache](tc.services)
}

func (tc *TestContext) MemoryCache() mvc.MemoryCache {
	return mvc.MustGet[mvc.MemoryCache](tc.services)
}

// TempData returns the temp data of the http context
func (tc *TestContext) TempData() mvc.TempData {
	return mvc.MustGet[mvc.TempDataFactory](tc.services).GetTempData(tc.HttpContext())
}

// Db returns the named database (nil if not registered)
//
// Note: when only one database is used by tests, the dbName can be ""
func (tc *TestContext) Db(dbName string) *sql.DB {
	if db, ok := tc.databases[dbName]; ok {
		return db
	}
	if dbName == "" && len(tc.databases) == 1 {
		for _, db := range tc.databases {
			return db
		}
	}
	return nil
}

func (tc *TestContext) mustDb(dbName string) *sql.DB {
	if db := tc.Db(dbName); db != nil {
		return db
	}
	panic(fmt.Sprintf("database %q has not been registered - use WithDatabase", dbName))
}

// Result returns the result of the action (the awaited value for asynchronous actions)
func (tc *TestContext) Result() any {
	return tc.result
}

// SetResult replaces the result of the action
func (tc *TestContext) SetResult(v any) {
	tc.result = v
}

// ActionResult returns the result as an mvc.ActionResult (nil if the action returned a plain value)
func (tc *TestContext) ActionResult() mvc.ActionResult {
	r, _ := mvc.UnwrapActionResult(tc.result)
	return r
}

// Model returns the model of the result - unless explicitly set, this is the value of the result
// (e.g. the value of an ok object result or the value of an mvc.ActionResultOf)
func (tc *TestContext) Model() any {
	if tc.modelSet {
		return tc.model
	}
	r, v := mvc.UnwrapActionResult(tc.result)
	if r != nil {
		m, _ := modelOf(r)
		return m
	}
	return v
}

// SetModel overrides the model
func (tc *TestContext) SetModel(v any) {
	tc.model = v
	tc.modelSet = true
}

// CaughtError returns the error returned (or panic raised) by the action
func (tc *TestContext) CaughtError() error {
	return tc.caught
}

func (tc *TestContext) setCaughtError(err error) {
	if !tc.caughtSet {
		tc.caught = err
		tc.caughtSet = true
	}
}

// Duration is how long the action call took
func (tc *TestContext) Duration() time.Duration {
	return tc.duration
}

// Failed reports whether an assertion of the test has failed
func (tc *TestContext) Failed() bool {
	return tc.failure != nil || tc.helper.Failed()
}

// Failure returns the first assertion failure of the test (nil if none)
func (tc *TestContext) Failure() *AssertionError {
	return tc.failure
}

// invoke calls the action (once) - returns false if the action could not be called
func (tc *TestContext) invoke() bool {
	if tc.invoked {
		return tc.invocationOk()
	}
	tc.invoked = true
	d := tc.Descriptor()
	controller := tc.Controller()
	for _, prep := range tc.preparations {
		prep(tc)
	}
	args, ok := tc.arguments(d)
	if !ok {
		return false
	}
	tc.ControllerContext()
	start := time.Now()
	inv := mvc.InvokeMethod(tc.helper.Context(), controller, d.Method, args)
	tc.duration = time.Since(start)
	reportTiming(d, tc.duration)
	tc.invocation = inv
	tc.result = inv.Value
	tc.setCaughtError(inv.Err)
	log().Debug("called action", "action", d.DisplayName(), "duration", tc.duration, "error", inv.Err)
	return true
}

func (tc *TestContext) invocationOk() bool {
	return tc.resolved == nil || !tc.resolved.Failed()
}

func (tc *TestContext) arguments(d *mvc.ControllerActionDescriptor) ([]reflect.Value, bool) {
	result := make([]reflect.Value, len(d.Parameters))
	for i, p := range d.Parameters {
		switch at := tc.call.args[i].(type) {
		case nil:
			result[i] = reflect.Zero(p.Type)
		case *placeholder:
			switch at.kind {
			case fromServices:
				v, ok := tc.services.ResolveType(p.Type)
				if !ok {
					panic(fmt.Sprintf("no service for type %s has been registered (argument %q of action %s)", friendlyTypeName(p.Type), p.Name, d.ActionName))
				}
				result[i] = reflect.ValueOf(v)
			case fromRequest:
				resolved, ok := tc.resolveRequest()
				if !ok {
					return nil, false
				}
				if v, has := resolved.Arguments[p.Name]; has && v != nil {
					result[i] = argumentValue(v, p, d)
				} else {
					result[i] = reflect.Zero(p.Type)
				}
			default:
				result[i] = reflect.Zero(p.Type)
			}
		default:
			result[i] = argumentValue(at, p, d)
			mvc.ValidateModel(tc.ModelState(), at)
		}
	}
	return result, true
}

func argumentValue(v any, p mvc.ParameterDescriptor, d *mvc.ControllerActionDescriptor) reflect.Value {
	rv := reflect.ValueOf(v)
	switch {
	case rv.Type().AssignableTo(p.Type):
		return rv
	case rv.Type().ConvertibleTo(p.Type) && rv.Kind() != reflect.String:
		return rv.Convert(p.Type)
	}
	panic(fmt.Sprintf("argument %q of action %s must be %s - but %s was supplied", p.Name, d.ActionName, friendlyTypeName(p.Type), typeName(v)))
}

// resolveRequest resolves (once) the request to the called action and its bound arguments
func (tc *TestContext) resolveRequest() (*resolve.ResolvedRouteContext, bool) {
	frame := callerFrame()
	if tc.resolved == nil {
		rc := mvc.NewRouteContext(tc.HttpContext())
		tc.resolved = resolve.Resolve(tc.services, tc.Router(), rc)
		if tc.resolved.Failed() {
			reportFailure(tc.coverageAction(), fmt.Errorf("resolve failed: %s", tc.resolved.Reason))
			tc.fail(tc.newError(RouteAssertion, "FromRequest", frame, "request", "be resolved to the action arguments", tc.resolved.Reason, nil, nil))
			return nil, false
		}
		if tc.resolved.Action != tc.descriptor {
			tc.fail(tc.newError(RouteAssertion, "FromRequest", frame, "request",
				fmt.Sprintf("be resolved to %s action", tc.descriptor.ActionName),
				fmt.Sprintf("instead it was resolved to %s action in %s", tc.resolved.ActionName, tc.resolved.ControllerName),
				tc.descriptor.DisplayName(), tc.resolved.Action.DisplayName()))
			tc.resolved.Reason = "resolved to a different action"
			return nil, false
		}
		tc.ModelState().Merge(tc.resolved.ModelState)
		if tc.routeData != nil {
			tc.mirrorRouteData()
		}
	}
	return tc.resolved, !tc.resolved.Failed()
}

// Response returns the http response - executing the action result into the response recorder (once)
func (tc *TestContext) Response() (*mvc.HttpContext, error) {
	if !tc.responseWritten {
		tc.responseWritten = true
		if r := tc.ActionResult(); r != nil {
			tc.responseErr = r.Execute(tc.ControllerContext().ActionContext)
		} else if tc.result != nil {
			tc.responseErr = (&mvc.ObjectResult{Value: tc.Model()}).Execute(tc.ControllerContext().ActionContext)
		} else if tc.caught == nil {
			tc.responseErr = (&mvc.StatusCodeResult{StatusCode: 204}).Execute(tc.ControllerContext().ActionContext)
		}
	}
	return tc.HttpContext(), tc.responseErr
}

func (tc *TestContext) coverageAction() common.Action {
	if tc.descriptor != nil {
		return tc.descriptor
	}
	return nil
}

func (tc *TestContext) controllerTypeName() string {
	if tc.controllerType != nil && tc.controllerType.Kind() == reflect.Ptr {
		return tc.controllerType.Elem().Name()
	}
	return friendlyTypeName(tc.controllerType)
}

func (tc *TestContext) messagePrefix() string {
	if tc.descriptor != nil {
		return fmt.Sprintf("When calling %s action in %s expected", tc.descriptor.ActionName, tc.controllerTypeName())
	}
	return fmt.Sprintf("When testing %s expected", tc.controllerTypeName())
}

func (tc *TestContext) newError(category Category, name string, frame *framing.Frame, subject, expected, actual string, ev, av any) *AssertionError {
	err := newAssertionError(tc.messagePrefix(), category, name, frame, subject, expected, actual, ev, av)
	err.controller = tc.controllerTypeName()
	if tc.descriptor != nil {
		err.action = tc.descriptor.ActionName
	}
	return err
}

// check reports the outcome of an assertion - returns false if the assertion failed (or the test had already failed)
func (tc *TestContext) check(category Category, name string, ok bool, subject, expected, actual string, ev, av any) bool {
	frame := callerFrame()
	if tc.Failed() {
		return false
	}
	if ok {
		reportMet(tc.coverageAction(), name, frame)
		return true
	}
	tc.fail(tc.newError(category, name, frame, subject, expected, actual, ev, av))
	return false
}

func (tc *TestContext) fail(err *AssertionError) {
	if tc.failure == nil {
		tc.failure = err
	}
	reportUnmet(tc.coverageAction(), err)
	log().Debug("assertion failed", "name", err.Name(), "category", err.Category())
	tc.helper.Report(err)
}

func newAssertionError(prefix string, category Category, name string, frame *framing.Frame, subject, expected, actual string, ev, av any) *AssertionError {
	return &AssertionError{
		msg:      assertionMessage(prefix, subject, expected, actual),
		name:     name,
		category: category,
		expected: ev,
		actual:   av,
		frame:    frame,
	}
}

// assertionMessage is the uniform failure message "<prefix> <subject> to <expected>, but <actual>."
func assertionMessage(prefix, subject, expected, actual string) string {
	if subject == "" {
		return fmt.Sprintf("%s to %s, but %s.", prefix, expected, actual)
	}
	return fmt.Sprintf("%s %s to %s, but %s.", prefix, subject, expected, actual)
}

const thisPackage = "github.com/go-andiamo/mvctest"

// callerFrame finds the frame of the test code that called into the package
func callerFrame() *framing.Frame {
	return framing.FindFrame(func(f *framing.Frame) bool {
		return f.Package != thisPackage || strings.HasSuffix(f.File, "_test.go")
	})
}

// InvocationContext is a snapshot of an action call
type InvocationContext[T any] struct {
	MethodName string
	Call       *ActionCall
	Result     T
	Err        error
}

// InvocationOf snapshots the action call of the test context (the result is the zero value if it is not a T)
func InvocationOf[T any](tc *TestContext) InvocationContext[T] {
	result := InvocationContext[T]{
		Call: tc.call,
		Err:  tc.caught,
	}
	if tc.descriptor != nil {
		result.MethodName = tc.descriptor.Method.Name
	}
	if v, ok := tc.result.(T); ok {
		result.Result = v
	}
	return result
}
