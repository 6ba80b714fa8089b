package mvctest

import (
	"fmt"
	"github.com/go-andiamo/mvctest/framing"
	"github.com/go-andiamo/mvctest/mvc"
	"reflect"
)

// ActionCall describes a call to an action method - the action name and the arguments to call it with
//
// arguments may be literal values or placeholders (see Any, FromServices and FromRequest)
type ActionCall struct {
	controllerType reflect.Type
	name           string
	args           []any
	frame          *framing.Frame
}

// Action creates a call to the named action of the controller under test
//
//go:noinline
func Action(name string, args ...any) *ActionCall {
	return &ActionCall{
		name:  name,
		args:  args,
		frame: framing.NewFrame(0),
	}
}

// ActionOf creates a call to the named action of controller type T
//
// e.g.
//
//	mvctest.ActionOf[PetsController]("Get", 5)
//
//go:noinline
func ActionOf[T any](name string, args ...any) *ActionCall {
	return &ActionCall{
		controllerType: controllerTypeOf[T](),
		name:           name,
		args:           args,
		frame:          framing.NewFrame(0),
	}
}

func controllerTypeOf[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Ptr {
		t = reflect.PointerTo(t)
	}
	return t
}

// Name is the name of the called action
func (c *ActionCall) Name() string {
	return c.name
}

func (c *ActionCall) Args() []any {
	return c.args
}

// ControllerType is the (pointer) type of the controller called (nil if not specified)
func (c *ActionCall) ControllerType() reflect.Type {
	return c.controllerType
}

func (c *ActionCall) Frame() *framing.Frame {
	return c.frame
}

func (c *ActionCall) String() string {
	return fmt.Sprintf("%s(%d args)", c.name, len(c.args))
}

// descriptor finds the action descriptor of the call - panics if the action is not registered
func (c *ActionCall) descriptor(app *mvc.Application, controllerType reflect.Type) *mvc.ControllerActionDescriptor {
	if c.controllerType != nil {
		controllerType = c.controllerType
	}
	d, ok := app.FindAction(controllerType, c.name)
	if !ok {
		panic(fmt.Sprintf("action %q is not registered for controller %s", c.name, friendlyTypeName(controllerType)))
	}
	if len(c.args) != len(d.Parameters) {
		panic(fmt.Sprintf("action %q of controller %s expects %d arguments but %d were supplied", c.name, d.ControllerName, len(d.Parameters), len(c.args)))
	}
	return d
}

// literalArgs are the (non placeholder) arguments of the call, keyed by parameter name
func (c *ActionCall) literalArgs(d *mvc.ControllerActionDescriptor) map[string]any {
	result := make(map[string]any, len(c.args))
	for i, p := range d.Parameters {
		if i < len(c.args) {
			if _, isPlaceholder := c.args[i].(*placeholder); !isPlaceholder && c.args[i] != nil {
				result[p.Name] = c.args[i]
			}
		}
	}
	return result
}

type placeholderKind int

const (
	anyValue placeholderKind = iota
	fromServices
	fromRequest
)

type placeholder struct {
	kind placeholderKind
	typ  reflect.Type
}

func (p *placeholder) String() string {
	switch p.kind {
	case fromServices:
		return fmt.Sprintf("FromServices[%s]", friendlyTypeName(p.typ))
	case fromRequest:
		return fmt.Sprintf("FromRequest[%s]", friendlyTypeName(p.typ))
	}
	return fmt.Sprintf("Any[%s]", friendlyTypeName(p.typ))
}

// Any is an argument placeholder - the action is called with the zero value of T
//
// when used as an expected value in comparisons, Any matches any value
func Any[T any]() any {
	return &placeholder{kind: anyValue, typ: reflect.TypeFor[T]()}
}

// FromServices is an argument placeholder - the action is called with the service of type T
func FromServices[T any]() any {
	return &placeholder{kind: fromServices, typ: reflect.TypeFor[T]()}
}

// FromRequest is an argument placeholder - the argument is bound from the http request (see ControllerBuilder.WithHttpRequest)
func FromRequest[T any]() any {
	return &placeholder{kind: fromRequest, typ: reflect.TypeFor[T]()}
}

func isAnyPlaceholder(v any) bool {
	p, ok := v.(*placeholder)
	return ok && p.kind == anyValue
}
