package coverage

import (
	"github.com/go-andiamo/mvctest/common"
	"time"
)

// Action provides coverage information about a controller action
type Action struct {
	Action common.Action
	Common
}

// Common provides common coverage information
type Common struct {
	Failures []Failure
	Unmet    []Unmet
	Met      []Met
	Timings  Timings
}

func (c Common) clone() Common {
	return Common{
		Failures: append([]Failure{}, c.Failures...),
		Unmet:    append([]Unmet{}, c.Unmet...),
		Met:      append([]Met{}, c.Met...),
		Timings:  append(Timings{}, c.Timings...),
	}
}

func (c *Common) merge(other Common) {
	c.Failures = append(c.Failures, other.Failures...)
	c.Unmet = append(c.Unmet, other.Unmet...)
	c.Met = append(c.Met, other.Met...)
	c.Timings = append(c.Timings, other.Timings...)
}

// Failure provides coverage information about an action that could not be tested (e.g. construction or resolving failed)
type Failure struct {
	Action common.Action
	Error  error
}

// Unmet provides coverage information about a failed assertion
type Unmet struct {
	Action    common.Action
	Assertion common.Assertion
	Error     error
}

// Met provides coverage information about a passed assertion
type Met struct {
	Action    common.Action
	Assertion common.Assertion
}

// Timing is the duration of a single action invocation
type Timing struct {
	Action   common.Action
	Duration time.Duration
}
