package mvctest

import (
	"errors"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"reflect"
	"strings"
)

// ShouldThrowBuilder asserts on the error returned (or panic raised) by the action
type ShouldThrowBuilder interface {
	// Error asserts that the action returned an error (or panicked)
	Error() ErrorBuilder
	// ErrorOfType asserts that the error (or any error it wraps) is of the same type as the sample
	//
	// if the sample is a pointer to an interface (e.g. (*net.Error)(nil)), the error must implement the interface
	ErrorOfType(sample any) ErrorBuilder
	// AggregateError asserts that the error is a joined error (e.g. from errors.Join)
	AggregateError() AggregateErrorBuilder
	// Panic asserts that the action panicked
	Panic() PanicBuilder
}

type shouldThrowBuilder struct {
	*assertions[ShouldThrowBuilder]
}

func newShouldThrowBuilder(tc *TestContext) ShouldThrowBuilder {
	a := newAssertions[ShouldThrowBuilder](tc, ExceptionAssertion)
	result := &shouldThrowBuilder{assertions: a}
	a.self = result
	return result
}

func (b *shouldThrowBuilder) expectCaught(name string) bool {
	caught := b.tc.CaughtError()
	return b.tc.check(ExceptionAssertion, name, caught != nil, "action", "return an error",
		"in fact it completed normally returning "+describeModel(b.tc.Result()), "error", b.tc.Result())
}

func (b *shouldThrowBuilder) Error() ErrorBuilder {
	b.expectCaught("Error")
	return newErrorBuilder(b.tc)
}

func (b *shouldThrowBuilder) ErrorOfType(sample any) ErrorBuilder {
	if b.expectCaught("ErrorOfType") {
		expected := reflect.TypeOf(sample)
		if expected != nil && expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Interface {
			expected = expected.Elem()
		}
		found := false
		for _, err := range errorsOf(b.tc.CaughtError()) {
			if isOfType(err, sample) {
				found = true
				break
			}
		}
		b.tc.check(ExceptionAssertion, "ErrorOfType", found, "error", "be of type "+friendlyTypeName(expected),
			"in fact it was of type "+typeName(b.tc.CaughtError()), friendlyTypeName(expected), typeName(b.tc.CaughtError()))
	}
	return newErrorBuilder(b.tc)
}

func (b *shouldThrowBuilder) AggregateError() AggregateErrorBuilder {
	if b.expectCaught("AggregateError") {
		_, ok := aggregateOf(b.tc.CaughtError())
		b.tc.check(ExceptionAssertion, "AggregateError", ok, "error", "be an aggregate error",
			"in fact it was of type "+typeName(b.tc.CaughtError()), "aggregate", typeName(b.tc.CaughtError()))
	}
	return newAggregateErrorBuilder(b.tc)
}

func (b *shouldThrowBuilder) Panic() PanicBuilder {
	if b.expectCaught("Panic") {
		_, ok := panicOf(b.tc.CaughtError())
		b.tc.check(ExceptionAssertion, "Panic", ok, "action", "panic",
			"in fact it returned error "+formatValue(b.tc.CaughtError().Error()), "panic", b.tc.CaughtError())
	}
	return newPanicBuilder(b.tc)
}

// errorsOf returns the error and every error it wraps (depth first)
func errorsOf(err error) []error {
	if err == nil {
		return nil
	}
	result := []error{err}
	switch et := err.(type) {
	case interface{ Unwrap() []error }:
		for _, inner := range et.Unwrap() {
			result = append(result, errorsOf(inner)...)
		}
	case interface{ Unwrap() error }:
		result = append(result, errorsOf(et.Unwrap())...)
	}
	return result
}

// aggregateOf finds the first joined error in the error chain
func aggregateOf(err error) ([]error, bool) {
	for _, e := range errorsOf(err) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			return joined.Unwrap(), true
		}
	}
	return nil, false
}

func panicOf(err error) (*mvc.PanicError, bool) {
	var pe *mvc.PanicError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

type ErrorBuilder interface {
	WithMessage(message string) And[ErrorBuilder]
	WithMessageContaining(text string) And[ErrorBuilder]
	// Is asserts that the error is (or wraps) the target error (see errors.Is)
	Is(target error) And[ErrorBuilder]
}

type errorBuilder struct {
	*assertions[ErrorBuilder]
}

func newErrorBuilder(tc *TestContext) ErrorBuilder {
	a := newAssertions[ErrorBuilder](tc, ExceptionAssertion)
	result := &errorBuilder{assertions: a}
	a.self = result
	return result
}

func (b *errorBuilder) message() string {
	if err := b.tc.CaughtError(); err != nil {
		return err.Error()
	}
	return ""
}

func (b *errorBuilder) WithMessage(message string) And[ErrorBuilder] {
	actual := b.message()
	return b.check("WithMessage", actual == message, "error", "have message "+formatValue(message),
		"instead received "+formatValue(actual), message, actual)
}

func (b *errorBuilder) WithMessageContaining(text string) And[ErrorBuilder] {
	actual := b.message()
	return b.check("WithMessageContaining", strings.Contains(actual, text), "error message", "contain "+formatValue(text),
		"instead received "+formatValue(actual), text, actual)
}

func (b *errorBuilder) Is(target error) And[ErrorBuilder] {
	actual := b.tc.CaughtError()
	return b.check("Is", errors.Is(actual, target), "error", "be (or wrap) "+formatValue(target.Error()),
		"in fact it was "+formatValue(b.message()), target, actual)
}

type AggregateErrorBuilder interface {
	// ContainingInnerErrorOfType asserts that one of the inner errors (or an error they wrap) is of the same type as the sample
	ContainingInnerErrorOfType(sample any) And[AggregateErrorBuilder]
	WithInnerErrorsCount(count int) And[AggregateErrorBuilder]
}

type aggregateErrorBuilder struct {
	*assertions[AggregateErrorBuilder]
}

func newAggregateErrorBuilder(tc *TestContext) AggregateErrorBuilder {
	a := newAssertions[AggregateErrorBuilder](tc, ExceptionAssertion)
	result := &aggregateErrorBuilder{assertions: a}
	a.self = result
	return result
}

func (b *aggregateErrorBuilder) ContainingInnerErrorOfType(sample any) And[AggregateErrorBuilder] {
	inner, _ := aggregateOf(b.tc.CaughtError())
	found := false
	types := make([]string, 0, len(inner))
	for _, ie := range inner {
		types = append(types, typeName(ie))
		for _, e := range errorsOf(ie) {
			if isOfType(e, sample) {
				found = true
			}
		}
	}
	expected := reflect.TypeOf(sample)
	if expected != nil && expected.Kind() == reflect.Ptr && expected.Elem().Kind() == reflect.Interface {
		expected = expected.Elem()
	}
	return b.check("ContainingInnerErrorOfType", found, "aggregate error", "contain inner error of type "+friendlyTypeName(expected),
		"in fact inner errors were of types "+describeStrings(types), friendlyTypeName(expected), types)
}

func (b *aggregateErrorBuilder) WithInnerErrorsCount(count int) And[AggregateErrorBuilder] {
	inner, _ := aggregateOf(b.tc.CaughtError())
	return b.check("WithInnerErrorsCount", len(inner) == count, "aggregate error", fmt.Sprintf("contain %d inner errors", count),
		fmt.Sprintf("in fact contained %d", len(inner)), count, len(inner))
}

type PanicBuilder interface {
	// WithValue asserts the value the action panicked with (see Equal)
	WithValue(expected any) And[PanicBuilder]
}

type panicBuilder struct {
	*assertions[PanicBuilder]
}

func newPanicBuilder(tc *TestContext) PanicBuilder {
	a := newAssertions[PanicBuilder](tc, ExceptionAssertion)
	result := &panicBuilder{assertions: a}
	a.self = result
	return result
}

func (b *panicBuilder) WithValue(expected any) And[PanicBuilder] {
	var actual any
	if pe, ok := panicOf(b.tc.CaughtError()); ok {
		actual = pe.Value
	}
	return b.check("WithValue", Equal(expected, actual), "panic value", "be "+formatValue(expected),
		"in fact it was "+formatValue(actual), expected, actual)
}
