package mvctest

import (
	charmlog "github.com/charmbracelet/log"
	"os"
	"sync/atomic"
)

var logger atomic.Pointer[charmlog.Logger]

func init() {
	logger.Store(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Prefix: "mvctest",
		Level:  charmlog.WarnLevel,
	}))
}

// SetLogger sets the logger used by the test builders (nil is ignored)
func SetLogger(l *charmlog.Logger) {
	if l != nil {
		logger.Store(l)
	}
}

func log() *charmlog.Logger {
	return logger.Load()
}
