package coverage

import (
	"errors"
	"github.com/go-andiamo/mvctest/framing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"sync"
	"testing"
	"time"
)

func TestCoverage_ReportFailure(t *testing.T) {
	t.Run("no action", func(t *testing.T) {
		cov := NewCoverage()
		cov.ReportFailure(nil, errors.New("fooey"))
		assert.True(t, cov.HasFailures())
		assert.Len(t, cov.Actions, 0)
		assert.Len(t, cov.Failures, 1)
	})
	t.Run("action", func(t *testing.T) {
		cov := NewCoverage()
		cov.ReportFailure(listPets, errors.New("fooey"))
		assert.True(t, cov.HasFailures())
		assert.Len(t, cov.Failures, 1)
		require.Len(t, cov.Actions, 1)
		covA := cov.Actions[listPets.name]
		require.NotNil(t, covA)
		assert.Equal(t, listPets, covA.Action)
		require.Len(t, covA.Failures, 1)
		assert.EqualError(t, covA.Failures[0].Error, "fooey")
	})
}

func TestCoverage_ReportUnmet(t *testing.T) {
	cov := NewCoverage()
	cov.ReportUnmet(nil, nil, nil)
	assert.True(t, cov.HasFailures())
	assert.Len(t, cov.Actions, 0)
	assert.Len(t, cov.Unmet, 1)

	cov = NewCoverage()
	a := &testAssertion{name: "Ok"}
	cov.ReportUnmet(getPet, a, errors.New("fooey"))
	assert.True(t, cov.HasFailures())
	require.Len(t, cov.Actions, 1)
	require.Len(t, cov.Actions[getPet.name].Unmet, 1)
	assert.Equal(t, a, cov.Actions[getPet.name].Unmet[0].Assertion)
}

func TestCoverage_ReportMet(t *testing.T) {
	cov := NewCoverage()
	cov.ReportMet(getPet, &testAssertion{name: "Ok"})
	cov.ReportMet(getPet, &testAssertion{name: "WithModel"})
	assert.False(t, cov.HasFailures())
	assert.Len(t, cov.Met, 2)
	require.Len(t, cov.Actions, 1)
	assert.Len(t, cov.Actions[getPet.name].Met, 2)
}

func TestCoverage_ReportTiming(t *testing.T) {
	cov := NewCoverage()
	cov.ReportTiming(getPet, time.Millisecond)
	cov.ReportTiming(listPets, 2*time.Millisecond)
	assert.False(t, cov.HasFailures())
	assert.Len(t, cov.Timings, 2)
	assert.Len(t, cov.Actions, 2)
	assert.Equal(t, 2*time.Millisecond, cov.Actions[listPets.name].Timings[0].Duration)
}

func TestCoverage_Concurrent(t *testing.T) {
	cov := NewCoverage()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cov.ReportMet(getPet, &testAssertion{name: "Ok"})
			cov.ReportTiming(listPets, time.Millisecond)
		}()
	}
	wg.Wait()
	assert.Len(t, cov.Met, 50)
	assert.Len(t, cov.Timings, 50)
	assert.Len(t, cov.Actions, 2)
}

var (
	listPets = &testAction{
		name:     "pets.PetsController.List",
		template: "api/pets",
		methods:  []string{http.MethodGet},
	}
	getPet = &testAction{
		name:     "pets.PetsController.Get",
		template: "api/pets/{id:int}",
		methods:  []string{http.MethodGet},
	}
	listFoos = &testAction{
		name:     "pets.FoosController.List",
		template: "api/foos",
	}
	homeIndex = &testAction{
		name: "pets.HomeController.Index",
	}
)

type testAction struct {
	name     string
	template string
	methods  []string
}

func (a *testAction) DisplayName() string {
	return a.name
}

func (a *testAction) Template() string {
	return a.template
}

func (a *testAction) HttpMethods() []string {
	return a.methods
}

type testAssertion struct {
	name string
}

func (a *testAssertion) Name() string {
	return a.name
}

func (a *testAssertion) Frame() *framing.Frame {
	return nil
}
