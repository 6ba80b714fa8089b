package coverage

import (
	"github.com/go-andiamo/mvctest/common"
	"io"
	"sync/atomic"
	"time"
)

// NewNullCoverage creates a collector that only records whether there were failures
func NewNullCoverage() Collector {
	return &nullCoverage{}
}

type nullCoverage struct {
	hasFailures atomic.Bool
}

var _ Collector = (*nullCoverage)(nil)

func (n *nullCoverage) LoadSpec(io.Reader) error {
	return nil
}

func (n *nullCoverage) ReportFailure(common.Action, error) {
	n.hasFailures.Store(true)
}

func (n *nullCoverage) ReportUnmet(common.Action, common.Assertion, error) {
	n.hasFailures.Store(true)
}

func (n *nullCoverage) ReportMet(common.Action, common.Assertion) {}

func (n *nullCoverage) ReportTiming(common.Action, time.Duration) {}

func (n *nullCoverage) HasFailures() bool {
	return n.hasFailures.Load()
}
