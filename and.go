package mvctest

// And is the continuation of an assertion chain
//
// AndAlso returns to the builder the assertion was made on - it is only reachable after an assertion has been made
type And[B any] interface {
	AndAlso() B
}

type andAlso[B any] struct {
	builder B
}

func (a *andAlso[B]) AndAlso() B {
	return a.builder
}

// assertions is the common base of every assertion builder
type assertions[B any] struct {
	tc       *TestContext
	category Category
	self     B
}

func newAssertions[B any](tc *TestContext, category Category) *assertions[B] {
	return &assertions[B]{tc: tc, category: category}
}

func (a *assertions[B]) and() And[B] {
	return &andAlso[B]{builder: a.self}
}

func (a *assertions[B]) check(name string, ok bool, subject, expected, actual string, ev, av any) And[B] {
	a.tc.check(a.category, name, ok, subject, expected, actual, ev, av)
	return a.and()
}

func (a *assertions[B]) checkAs(category Category, name string, ok bool, subject, expected, actual string, ev, av any) And[B] {
	a.tc.check(category, name, ok, subject, expected, actual, ev, av)
	return a.and()
}
