package main

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/classload/classpath"
	"github.com/wippyai/classload/errors"
	"github.com/wippyai/classload/loader"
)

// Config is the optional YAML configuration of classdeps.
//
//	exclude:
//	  - javax.
//	  - org.slf4j.
//	workers: 8
//	cache_size: 1024
//	mode: analyzing
type Config struct {
	Mode      string   `yaml:"mode"`
	Exclude   []string `yaml:"exclude"`
	Workers   int      `yaml:"workers"`
	CacheSize int      `yaml:"cache_size"`
}

func defaultConfig() Config {
	return Config{
		Mode:      loader.ModeAnalyzing.String(),
		Workers:   classpath.DefaultWorkers,
		CacheSize: 1024,
	}
}

// loadConfig reads path over the defaults. An empty path yields the
// defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.New(errors.PhaseConfig, errors.KindIO).Path(path).Cause(err).Build()
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.New(errors.PhaseConfig, errors.KindInvalidInput).Path(path).Cause(err).Build()
	}
	if err := cfg.validate(); err != nil {
		e := err.(*errors.Error)
		e.Path = path
		return cfg, e
	}
	return cfg, nil
}

func (c Config) validate() error {
	if _, ok := loader.ParseMode(c.Mode); !ok {
		return errors.InvalidInput(errors.PhaseConfig, "unknown mode %q", c.Mode)
	}
	if c.Workers < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "workers must not be negative, got %d", c.Workers)
	}
	if c.CacheSize < 0 {
		return errors.InvalidInput(errors.PhaseConfig, "cache_size must not be negative, got %d", c.CacheSize)
	}
	return nil
}

// excluded reports whether name is a platform name or matches one of the
// configured prefixes.
func (c Config) excluded(name string) bool {
	if classpath.IsPlatformName(name) {
		return true
	}
	for _, prefix := range c.Exclude {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func (c Config) loaderOptions() []loader.Option {
	mode, _ := loader.ParseMode(c.Mode)
	opts := []loader.Option{
		loader.WithMode(mode),
		loader.WithExclude(c.excluded),
	}
	if c.CacheSize > 0 {
		opts = append(opts, loader.WithScanCache(c.CacheSize))
	}
	return opts
}
