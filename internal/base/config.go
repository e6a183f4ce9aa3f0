// Licensed Materials - Property of IBM
// Copyright IBM Corp. 2023.
// US Government Users Restricted Rights - Use, duplication or disclosure restricted by GSA ADP Schedule Contract with IBM Corp.

package base

import (
	"context"
	_ "embed"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var _DEFAULT_CONFIG_EMBED []byte

// DefaultConfigFile is picked up from the working directory when no config is given
const DefaultConfigFile = "liveload.yaml"

// Config controls a generation run. The mode applies to every call site of
// every package in the run.
type Config struct {
	// embed, runtime or tagged
	Mode string `yaml:"mode" env:"LIVELOAD_MODE,overwrite"`

	// Build tag selecting the runtime file in the tagged layout
	Tag string `yaml:"tag" env:"LIVELOAD_TAG,overwrite"`

	// Extra build tags used when deciding which source files to scan
	Tags []string `yaml:"tags" env:"LIVELOAD_TAGS,overwrite"`

	// File name used by the embed and runtime layouts
	Output string `yaml:"output" env:"LIVELOAD_OUTPUT,overwrite"`

	// Check that files exist while generating the runtime shape
	Check bool `yaml:"check" env:"LIVELOAD_CHECK,overwrite"`

	// Also scan _test.go files
	Tests bool `yaml:"tests" env:"LIVELOAD_TESTS,overwrite"`

	// Packages generated concurrently
	Jobs int `yaml:"jobs" env:"LIVELOAD_JOBS,overwrite"`
}

// DefaultConfig returns the embedded defaults
func DefaultConfig() Config {
	var cfg Config
	if err := yaml.Unmarshal(_DEFAULT_CONFIG_EMBED, &cfg); err != nil {
		panic("default configuration file is formatted incorrectly")
	}
	return cfg
}

// ParseConfig applies a YAML document on top of cfg. Keys missing from the
// document keep their current value.
func ParseConfig(cfg Config, src []byte) (Config, error) {
	if err := yaml.Unmarshal(src, &cfg); err != nil {
		return cfg, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// LoadConfig layers the defaults, the config file and the environment.
//
// An empty file name means DefaultConfigFile, which may be absent. A file
// that was named explicitly must exist.
func LoadConfig(file string, lookuper envconfig.Lookuper) (Config, error) {
	cfg := DefaultConfig()

	explicit := file != ""
	if !explicit {
		file = DefaultConfigFile
	}

	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if cfg, err = ParseConfig(cfg, data); err != nil {
			return cfg, errors.Wrapf(err, "config %v", file)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return cfg, errors.Wrap(err, "unable to load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		return cfg, errors.Wrap(err, "resolving config: envconfig.ProcessWith")
	}

	if cfg.Jobs < 1 {
		cfg.Jobs = 1
	}

	return cfg, nil
}
