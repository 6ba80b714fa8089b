package mvctest

import (
	"fmt"
)

// ActionCallBuilder asserts on the outcome of calling an action
//
// the action is called (once) by the first assertion entry point used
type ActionCallBuilder interface {
	// ShouldReturn asserts on the result of the action - the action must not have returned an error (or panicked)
	ShouldReturn() ShouldReturnBuilder
	// ShouldReturnEmpty asserts that the action returned nothing (the method has no result, or only an error)
	ShouldReturnEmpty() And[ActionCallBuilder]
	// ShouldThrow asserts on the error returned (or panic raised) by the action
	ShouldThrow() ShouldThrowBuilder
	// ShouldHave asserts on the state after the action was called
	ShouldHave() ShouldHaveBuilder
	Context() *TestContext
}

type actionCallBuilder struct {
	*assertions[ActionCallBuilder]
}

func newActionCallBuilder(tc *TestContext) ActionCallBuilder {
	a := newAssertions[ActionCallBuilder](tc, InvocationAssertion)
	result := &actionCallBuilder{assertions: a}
	a.self = result
	return result
}

// returnedNormally checks that the action did not return an error
func (b *actionCallBuilder) returnedNormally(name string) bool {
	if !b.tc.invoke() {
		return false
	}
	err := b.tc.CaughtError()
	if err == nil {
		return true
	}
	actual := "it returned error " + formatValue(err.Error())
	if pe, ok := panicOf(err); ok {
		actual = fmt.Sprintf("it panicked with %s", formatValue(pe.Value))
	}
	return b.tc.check(InvocationAssertion, name, false, "action", "return normally", actual, nil, err)
}

func (b *actionCallBuilder) ShouldReturn() ShouldReturnBuilder {
	b.returnedNormally("ShouldReturn")
	return newShouldReturnBuilder(b.tc)
}

func (b *actionCallBuilder) ShouldReturnEmpty() And[ActionCallBuilder] {
	if b.returnedNormally("ShouldReturnEmpty") {
		return b.check("ShouldReturnEmpty", b.tc.invocation.Void || b.tc.Result() == nil, "action", "return nothing",
			"in fact it returned "+describeModel(b.tc.Result()), nil, b.tc.Result())
	}
	return b.and()
}

func (b *actionCallBuilder) ShouldThrow() ShouldThrowBuilder {
	b.tc.invoke()
	return newShouldThrowBuilder(b.tc)
}

func (b *actionCallBuilder) ShouldHave() ShouldHaveBuilder {
	b.tc.invoke()
	return newShouldHaveBuilder(b.tc)
}

func (b *actionCallBuilder) Context() *TestContext {
	return b.tc
}
