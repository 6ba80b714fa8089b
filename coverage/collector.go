package coverage

import (
	"github.com/go-andiamo/mvctest/common"
	"io"
	"time"
)

// Collector is the interface for collecting coverage information
type Collector interface {
	LoadSpec(r io.Reader) (err error)
	ReportFailure(action common.Action, err error)
	ReportUnmet(action common.Action, assertion common.Assertion, err error)
	ReportMet(action common.Action, assertion common.Assertion)
	ReportTiming(action common.Action, dur time.Duration)
	HasFailures() bool
}
