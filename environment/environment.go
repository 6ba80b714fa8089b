package environment

import (
	charmlog "github.com/charmbracelet/log"
	"github.com/go-andiamo/mvctest/mvc"
	"os"
	"sync"
)

// TestEnvironment is the process-wide environment that tests run in
//
// values are resolved lazily (on first access) from explicit options, then the config, then discovery
// and are cached until Reset is called
type TestEnvironment struct {
	mu       sync.Mutex
	options  []Option
	resolved *resolved
}

type resolved struct {
	config          *Config
	applicationName string
	environmentName string
	testPackage     string
	webModule       string
	maxErrors       int
	app             *mvc.Application
	logger          *charmlog.Logger
	services        []func(s *mvc.Services)
}

// explicit holds the values set by options
type explicit struct {
	config          *Config
	configFile      string
	applicationName string
	environmentName string
	testPackage     string
	webModule       string
	maxErrors       int
	app             *mvc.Application
	logger          *charmlog.Logger
	logLevel        *charmlog.Level
	services        []func(s *mvc.Services)
}

const DefaultEnvironmentName = "Development"

// New creates a new test environment
func New(options ...Option) *TestEnvironment {
	return &TestEnvironment{options: options}
}

var (
	defaultEnv = New()
)

// Default returns the process-wide default test environment
func Default() *TestEnvironment {
	return defaultEnv
}

// Configure adds options to the default test environment (and resets it)
func Configure(options ...Option) *TestEnvironment {
	defaultEnv.Configure(options...)
	return defaultEnv
}

// Configure adds options to the environment - cached values are reset
func (e *TestEnvironment) Configure(options ...Option) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.options = append(e.options, options...)
	e.resolved = nil
}

// Reset clears the cached (resolved and discovered) values so that they are re-resolved on next access
func (e *TestEnvironment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolved = nil
}

// Clear removes all options and resets the environment
func (e *TestEnvironment) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.options = nil
	e.resolved = nil
}

func (e *TestEnvironment) state() *resolved {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolved == nil {
		e.resolved = e.resolve()
	}
	return e.resolved
}

func (e *TestEnvironment) resolve() *resolved {
	ex := &explicit{}
	for _, o := range e.options {
		if o != nil {
			o(ex)
		}
	}
	cfg := ex.config
	if cfg == nil {
		var err error
		if ex.configFile != "" {
			cfg, err = LoadConfigFile(ex.configFile)
		} else {
			cfg, err = loadDefaultConfig()
		}
		if err != nil {
			panic(err)
		}
		if cfg == nil {
			cfg = &Config{}
		}
	}
	r := &resolved{
		config:          cfg,
		applicationName: firstNonEmpty(ex.applicationName, cfg.Application.Name),
		environmentName: firstNonEmpty(ex.environmentName, cfg.Application.Environment, DefaultEnvironmentName),
		testPackage:     firstNonEmpty(ex.testPackage, cfg.Test.Package),
		webModule:       firstNonEmpty(ex.webModule, cfg.Web.Module),
		maxErrors:       cfg.Validation.MaxErrors,
		app:             ex.app,
		services:        ex.services,
	}
	if ex.maxErrors > 0 {
		r.maxErrors = ex.maxErrors
	}
	if r.testPackage == "" {
		r.testPackage = discoverTestPackage()
	}
	if r.webModule == "" {
		r.webModule = discoverWebModule(r.testPackage)
	}
	if r.applicationName == "" {
		r.applicationName = r.webModule
	}
	r.logger = ex.logger
	if r.logger == nil {
		r.logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Prefix: "mvctest",
			Level:  charmlog.WarnLevel,
		})
	}
	if ex.logLevel != nil {
		r.logger.SetLevel(*ex.logLevel)
	} else if cfg.Logging.Level != "" {
		if lvl, err := charmlog.ParseLevel(cfg.Logging.Level); err == nil {
			r.logger.SetLevel(lvl)
		} else {
			r.logger.Warn("invalid logging level in config", "level", cfg.Logging.Level)
		}
	}
	r.logger.Debug("test environment resolved",
		"application", r.applicationName,
		"environment", r.environmentName,
		"testPackage", r.testPackage,
		"webModule", r.webModule)
	return r
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Config returns the config that the environment was resolved from
func (e *TestEnvironment) Config() *Config {
	return e.state().config
}

// ApplicationName returns the application name (defaults to the web module)
func (e *TestEnvironment) ApplicationName() string {
	return e.state().applicationName
}

// EnvironmentName returns the environment name (defaults to "Development")
func (e *TestEnvironment) EnvironmentName() string {
	return e.state().environmentName
}

// TestPackage returns the (configured or discovered) test package
func (e *TestEnvironment) TestPackage() string {
	return e.state().testPackage
}

// WebModule returns the (configured or discovered) module of the web application under test
func (e *TestEnvironment) WebModule() string {
	return e.state().webModule
}

// MustTestPackage is TestPackage but panics if the test package is not configured and could not be discovered
func (e *TestEnvironment) MustTestPackage() string {
	if pkg := e.TestPackage(); pkg != "" {
		return pkg
	}
	panic("test package could not be discovered - configure it explicitly with environment.WithTestPackage or the config 'test.package'")
}

// MaxValidationErrors returns the configured max model validation errors (0 if not configured)
func (e *TestEnvironment) MaxValidationErrors() int {
	return e.state().maxErrors
}

// Application returns the default application (nil if none set)
func (e *TestEnvironment) Application() *mvc.Application {
	return e.state().app
}

// MustApplication is Application but panics if no default application is set
func (e *TestEnvironment) MustApplication() *mvc.Application {
	if app := e.Application(); app != nil {
		return app
	}
	panic("no application supplied and no default application configured - use environment.WithApplication")
}

// Logger returns the environment logger
func (e *TestEnvironment) Logger() *charmlog.Logger {
	return e.state().logger
}

// ConfigureServices applies the additional service configuration functions to the services
func (e *TestEnvironment) ConfigureServices(s *mvc.Services) {
	for _, fn := range e.state().services {
		fn(s)
	}
}
