package mvc

import (
	"context"
	"fmt"
	"runtime/debug"
)

// Awaitable is implemented by Future - it allows awaiting without knowing the result type
type Awaitable interface {
	AwaitAny(ctx context.Context) (any, error)
}

// Future is the eventual result of an asynchronous action
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Task is a Future with no result value
type Task = Future[struct{}]

// Async runs fn in a goroutine - a panic in fn completes the future with a *PanicError
func Async[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = NewPanicError(r)
			}
		}()
		f.value, f.err = fn()
	}()
	return f
}

// Completed returns an already completed future
func Completed[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: v}
	close(f.done)
	return f
}

// Failed returns an already failed future
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Await waits for the future to complete
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (f *Future[T]) AwaitAny(ctx context.Context) (any, error) {
	return f.Await(ctx)
}

// PanicError is the error produced when an action panics
type PanicError struct {
	Value any
	Stack []byte
}

func NewPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value if it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
