package coverage

import (
	"github.com/go-andiamo/chioas"
	"github.com/go-andiamo/mvctest/common"
	"sync"
	"time"
)

func NewCoverage() *Coverage {
	return &Coverage{
		Actions:         make(map[string]*Action),
		normalizedPaths: make(map[string]map[string]struct{}),
	}
}

// Coverage is the default coverage information - keyed by action display name
type Coverage struct {
	Actions map[string]*Action
	OAS     *chioas.Definition
	Common
	mutex           sync.RWMutex
	normalizedPaths map[string]map[string]struct{}
}

var _ Collector = (*Coverage)(nil)

func (c *Coverage) ReportFailure(action common.Action, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	fail := Failure{
		Action: action,
		Error:  err,
	}
	if covA := c.add(action); covA != nil {
		covA.Failures = append(covA.Failures, fail)
	}
	c.Failures = append(c.Failures, fail)
}

func (c *Coverage) ReportUnmet(action common.Action, assertion common.Assertion, err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	unmet := Unmet{
		Action:    action,
		Assertion: assertion,
		Error:     err,
	}
	if covA := c.add(action); covA != nil {
		covA.Unmet = append(covA.Unmet, unmet)
	}
	c.Unmet = append(c.Unmet, unmet)
}

func (c *Coverage) ReportMet(action common.Action, assertion common.Assertion) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	met := Met{
		Action:    action,
		Assertion: assertion,
	}
	if covA := c.add(action); covA != nil {
		covA.Met = append(covA.Met, met)
	}
	c.Met = append(c.Met, met)
}

func (c *Coverage) ReportTiming(action common.Action, dur time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	timing := Timing{
		Action:   action,
		Duration: dur,
	}
	if covA := c.add(action); covA != nil {
		covA.Timings = append(covA.Timings, timing)
	}
	c.Timings = append(c.Timings, timing)
}

func (c *Coverage) HasFailures() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.Failures) > 0 || len(c.Unmet) > 0
}

func (c *Coverage) add(action common.Action) *Action {
	if action == nil {
		return nil
	}
	key := action.DisplayName()
	covA, ok := c.Actions[key]
	if !ok {
		covA = &Action{Action: action}
		c.Actions[key] = covA
		if tmpl := action.Template(); tmpl != "" {
			nPath := routeKey(tmpl)
			if m, ok := c.normalizedPaths[nPath]; ok {
				m[key] = struct{}{}
			} else {
				c.normalizedPaths[nPath] = map[string]struct{}{key: {}}
			}
		}
	}
	return covA
}
