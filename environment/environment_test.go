package environment

import (
	"bytes"
	charmlog "github.com/charmbracelet/log"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runtime/debug"
	"testing"
)

func TestNew_FromConfigFile(t *testing.T) {
	var buf bytes.Buffer
	env := New(
		WithConfigFile("testdata/mvctest.yaml"),
		WithLogger(charmlog.New(&buf)),
	)
	assert.Equal(t, "petstore", env.ApplicationName())
	assert.Equal(t, "Testing", env.EnvironmentName())
	assert.Equal(t, "example.com/petstore/api", env.TestPackage())
	assert.Equal(t, "example.com/petstore", env.WebModule())
	assert.Equal(t, 5, env.MaxValidationErrors())
	assert.Equal(t, charmlog.DebugLevel, env.Logger().GetLevel())
	assert.Contains(t, buf.String(), "test environment resolved")
	require.NotNil(t, env.Config())
	assert.Equal(t, "debug", env.Config().Logging.Level)
}

func TestNew_ExplicitTakesPrecedence(t *testing.T) {
	app := mvc.NewApplication()
	env := New(
		WithConfigFile("testdata/mvctest.yaml"),
		WithApplicationName("other"),
		WithEnvironmentName("Staging"),
		WithTestPackage("example.com/other/tests"),
		WithWebModule("example.com/other"),
		WithMaxValidationErrors(10),
		WithLogLevel(charmlog.ErrorLevel),
		WithApplication(app),
	)
	assert.Equal(t, "other", env.ApplicationName())
	assert.Equal(t, "Staging", env.EnvironmentName())
	assert.Equal(t, "example.com/other/tests", env.TestPackage())
	assert.Equal(t, "example.com/other", env.WebModule())
	assert.Equal(t, 10, env.MaxValidationErrors())
	assert.Equal(t, charmlog.ErrorLevel, env.Logger().GetLevel())
	assert.Equal(t, app, env.Application())
	assert.Equal(t, app, env.MustApplication())
}

func TestNew_Discovery(t *testing.T) {
	env := New(WithConfig(&Config{}))
	assert.Equal(t, "github.com/go-andiamo/mvctest/environment", env.TestPackage())
	assert.Equal(t, DefaultEnvironmentName, env.EnvironmentName())
	assert.Equal(t, env.WebModule(), env.ApplicationName())
	assert.Equal(t, "github.com/go-andiamo/mvctest/environment", env.MustTestPackage())
	assert.Nil(t, env.Application())
	assert.Panics(t, func() {
		_ = env.MustApplication()
	})
}

func TestNew_WithConfigData(t *testing.T) {
	env := New(WithConfigData([]byte(`{"application":{"name":"from-json"},"test":{"package":"x"}}`)))
	assert.Equal(t, "from-json", env.ApplicationName())
	assert.Equal(t, "x", env.TestPackage())

	assert.Panics(t, func() {
		_ = WithConfigData([]byte("application: ["))
	})
}

func TestNew_BadConfigFile(t *testing.T) {
	env := New(WithConfigFile("testdata/bad.yaml"))
	assert.Panics(t, func() {
		_ = env.ApplicationName()
	})
}

func TestTestEnvironment_ResetAndConfigure(t *testing.T) {
	env := New(WithConfig(&Config{}), WithApplicationName("first"))
	s1 := env.state()
	assert.Equal(t, "first", env.ApplicationName())
	assert.Same(t, s1, env.state())

	env.Configure(WithApplicationName("second"))
	assert.Equal(t, "second", env.ApplicationName())
	assert.NotSame(t, s1, env.state())

	s2 := env.state()
	env.Reset()
	assert.NotSame(t, s2, env.state())

	env.Clear()
	assert.Empty(t, env.options)
}

func TestTestEnvironment_ConfigureServices(t *testing.T) {
	env := New(
		WithConfig(&Config{}),
		WithServices(func(s *mvc.Services) {
			s.Register("greeting", "hello")
		}),
		WithServices(nil),
	)
	s := mvc.NewServices()
	env.ConfigureServices(s)
	assert.Equal(t, "hello", s.Resolve("greeting"))
}

func TestDefault(t *testing.T) {
	defer Default().Clear()
	env := Configure(WithConfig(&Config{}), WithApplicationName("default"))
	assert.Same(t, Default(), env)
	assert.Equal(t, "default", Default().ApplicationName())
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)

	_, err = LoadConfig(bytes.NewReader([]byte("application: [")))
	assert.Error(t, err)

	cfg, err = LoadConfigFile("testdata/does-not-exist.yaml")
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}

func Test_discoverWebModule(t *testing.T) {
	defer func() {
		readBuildInfo = debug.ReadBuildInfo
	}()
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Path: "example.com/tests"},
			Deps: []*debug.Module{
				{Path: "example.com/petstore"},
				{Path: "example.com/petstore/api"},
				nil,
			},
		}, true
	}
	testCases := []struct {
		pkg    string
		expect string
	}{
		{pkg: "", expect: ""},
		{pkg: "example.com/tests/pets", expect: "example.com/tests"},
		{pkg: "example.com/petstore/api/handlers", expect: "example.com/petstore/api"},
		{pkg: "example.com/petstore", expect: "example.com/petstore"},
		{pkg: "example.com/petstores", expect: ""},
		{pkg: "other.com/x", expect: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.pkg, func(t *testing.T) {
			assert.Equal(t, tc.expect, discoverWebModule(tc.pkg))
		})
	}

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}
	assert.Equal(t, "", discoverWebModule("example.com/tests"))
}
