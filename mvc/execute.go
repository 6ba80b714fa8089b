package mvc

import (
	"context"
	"reflect"
)

var (
	errorType = reflect.TypeFor[error]()
	voidType  = reflect.TypeFor[struct{}]()
)

// Invocation is the outcome of calling an action method
type Invocation struct {
	// Value is the (awaited) return value of the method
	Value any
	// Void is true when the method returns no value (or only an error, or a Task)
	Void bool
	// Err is the returned error or recovered panic (*PanicError)
	Err error
}

// InvokeMethod calls an action method on a controller - panics are recovered as *PanicError
// and Future results are awaited
func InvokeMethod(ctx context.Context, controller any, m reflect.Method, args []reflect.Value) (result Invocation) {
	defer func() {
		if r := recover(); r != nil {
			result = Invocation{Err: NewPanicError(r)}
		}
	}()
	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, reflect.ValueOf(controller))
	in = append(in, args...)
	outs := m.Func.Call(in)
	result = splitOutputs(outs)
	if result.Err == nil {
		if aw, ok := result.Value.(Awaitable); ok {
			v, err := aw.AwaitAny(ctx)
			result = Invocation{Value: v, Err: err}
			if err == nil && (v == nil || reflect.TypeOf(v) == voidType) {
				result.Value = nil
				result.Void = true
			}
		}
	}
	return result
}

func splitOutputs(outs []reflect.Value) Invocation {
	switch len(outs) {
	case 0:
		return Invocation{Void: true}
	case 1:
		if outs[0].Type() == errorType {
			return Invocation{Void: true, Err: asError(outs[0])}
		}
		return Invocation{Value: outs[0].Interface()}
	}
	return Invocation{Value: outs[0].Interface(), Err: asError(outs[len(outs)-1])}
}

func asError(v reflect.Value) error {
	if v.Type() == errorType && !v.IsNil() {
		return v.Interface().(error)
	}
	return nil
}
