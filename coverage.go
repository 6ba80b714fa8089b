package mvctest

import (
	"github.com/go-andiamo/mvctest/common"
	"github.com/go-andiamo/mvctest/coverage"
	"github.com/go-andiamo/mvctest/framing"
	"sync"
	"time"
)

var (
	collectorMu sync.RWMutex
	collector   = coverage.NewNullCoverage()
)

// SetCoverageCollector sets the process-wide coverage collector that every test reports to
//
// passing nil restores the default (null) collector
func SetCoverageCollector(c coverage.Collector) {
	collectorMu.Lock()
	defer collectorMu.Unlock()
	if c == nil {
		c = coverage.NewNullCoverage()
	}
	collector = c
}

// CoverageCollector returns the current process-wide coverage collector
func CoverageCollector() coverage.Collector {
	collectorMu.RLock()
	defer collectorMu.RUnlock()
	return collector
}

type assertion struct {
	name  string
	frame *framing.Frame
}

var _ common.Assertion = (*assertion)(nil)

func (a *assertion) Name() string {
	return a.name
}

func (a *assertion) Frame() *framing.Frame {
	return a.frame
}

func reportMet(action common.Action, name string, frame *framing.Frame) {
	CoverageCollector().ReportMet(action, &assertion{name: name, frame: frame})
}

func reportUnmet(action common.Action, err *AssertionError) {
	CoverageCollector().ReportUnmet(action, &assertion{name: err.Name(), frame: err.Frame()}, err)
}

func reportFailure(action common.Action, err error) {
	CoverageCollector().ReportFailure(action, err)
}

func reportTiming(action common.Action, dur time.Duration) {
	CoverageCollector().ReportTiming(action, dur)
}
