package environment

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"io"
	"io/fs"
	"os"
)

// Config is the file based configuration of the test environment
//
// all values are optional - explicit options take precedence
type Config struct {
	Application struct {
		Name        string `yaml:"name" json:"name"`
		Environment string `yaml:"environment" json:"environment"`
	} `yaml:"application" json:"application"`
	Test struct {
		Package string `yaml:"package" json:"package"`
	} `yaml:"test" json:"test"`
	Web struct {
		Module string `yaml:"module" json:"module"`
	} `yaml:"web" json:"web"`
	Logging struct {
		Level string `yaml:"level" json:"level"`
	} `yaml:"logging" json:"logging"`
	Validation struct {
		MaxErrors int `yaml:"maxErrors" json:"maxErrors"`
	} `yaml:"validation" json:"validation"`
}

// DefaultConfigFiles are the config files looked for (in order) when no config is explicitly supplied
var DefaultConfigFiles = []string{"mvctest.yaml", "mvctest.yml", "mvctest.json"}

// LoadConfig reads a config (yaml or json)
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a config file
//
// returns nil config (and no error) if the file does not exist
func LoadConfigFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	cfg, err := LoadConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cfg, nil
}

func loadDefaultConfig() (*Config, error) {
	for _, fn := range DefaultConfigFiles {
		if cfg, err := LoadConfigFile(fn); err != nil || cfg != nil {
			return cfg, err
		}
	}
	return &Config{}, nil
}
