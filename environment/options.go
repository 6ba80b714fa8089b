package environment

import (
	"bytes"
	charmlog "github.com/charmbracelet/log"
	"github.com/go-andiamo/mvctest/mvc"
)

// Option is an explicit environment option (options take precedence over config)
type Option func(e *explicit)

func WithApplicationName(name string) Option {
	return func(e *explicit) {
		e.applicationName = name
	}
}

func WithEnvironmentName(name string) Option {
	return func(e *explicit) {
		e.environmentName = name
	}
}

// WithTestPackage sets the test package explicitly (rather than discovering it)
func WithTestPackage(pkg string) Option {
	return func(e *explicit) {
		e.testPackage = pkg
	}
}

// WithWebModule sets the web module explicitly (rather than discovering it)
func WithWebModule(module string) Option {
	return func(e *explicit) {
		e.webModule = module
	}
}

// WithApplication sets the default application used when tests do not supply one
func WithApplication(app *mvc.Application) Option {
	return func(e *explicit) {
		e.app = app
	}
}

// WithConfig sets the config (no config file is read)
func WithConfig(cfg *Config) Option {
	return func(e *explicit) {
		e.config = cfg
	}
}

// WithConfigFile sets the config file to read (instead of the default config files)
func WithConfigFile(filename string) Option {
	return func(e *explicit) {
		e.configFile = filename
	}
}

// WithConfigData sets the config from yaml (or json) data
//
// panics if the data cannot be read
func WithConfigData(data []byte) Option {
	cfg, err := LoadConfig(bytes.NewReader(data))
	if err != nil {
		panic(err)
	}
	return WithConfig(cfg)
}

func WithMaxValidationErrors(max int) Option {
	return func(e *explicit) {
		e.maxErrors = max
	}
}

func WithLogger(logger *charmlog.Logger) Option {
	return func(e *explicit) {
		e.logger = logger
	}
}

func WithLogLevel(level charmlog.Level) Option {
	return func(e *explicit) {
		e.logLevel = &level
	}
}

// WithServices adds a function that configures the services of every test
func WithServices(fn func(s *mvc.Services)) Option {
	return func(e *explicit) {
		if fn != nil {
			e.services = append(e.services, fn)
		}
	}
}
