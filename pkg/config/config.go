/*
Package config loads the engine library's own configuration: the data
directory an Index opens under, worker parallelism, facet-tree grouping
parameters, and the default settings a freshly created index starts
with. It is config for the library and the debug CLI (cmd/ftsctl), not
for a networked service — no listen address, no TLS, no auth ever
belongs here.
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/ftscore/pkg/facet"
	"github.com/cuemby/ftscore/pkg/invindex"
	"github.com/cuemby/ftscore/pkg/log"
	"github.com/cuemby/ftscore/pkg/settings"
)

// Config is the fully resolved configuration one engine.Index (or
// cmd/ftsctl invocation) runs under.
type Config struct {
	DataDir  string `yaml:"data_dir"`
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	Parallelism      int     `yaml:"parallelism"`
	CacheCapacity    int     `yaml:"cache_capacity"`
	PendingBatch     int     `yaml:"pending_batch"`
	TransformRunSize int     `yaml:"transform_run_size"`
	PrefixThreshold  float64 `yaml:"prefix_threshold"`
	MaxPrefixLength  int     `yaml:"max_prefix_length"`

	FacetGroupSize    int `yaml:"facet_group_size"`
	FacetMaxGroupSize int `yaml:"facet_max_group_size"`
	FacetMinLevelSize int `yaml:"facet_min_level_size"`

	DefaultSettings settings.Settings `yaml:"default_settings"`
}

// Default returns the configuration used when no file is supplied,
// carrying the same tunables invindex.DefaultParams and
// facet.DefaultParams already fix.
func Default() Config {
	return Config{
		DataDir:           "./data",
		LogLevel:          "info",
		LogJSON:           false,
		Parallelism:       invindex.DefaultParams.Parallelism,
		CacheCapacity:     invindex.DefaultParams.CacheCapacity,
		PendingBatch:      invindex.DefaultParams.PendingBatch,
		TransformRunSize:  2000,
		PrefixThreshold:   invindex.DefaultParams.PrefixThreshold,
		MaxPrefixLength:   invindex.DefaultParams.MaxPrefixLength,
		FacetGroupSize:    facet.DefaultParams.GroupSize,
		FacetMaxGroupSize: facet.DefaultParams.MaxGroupSize,
		FacetMinLevelSize: facet.DefaultParams.MinLevelSize,
		DefaultSettings:   settings.Default(),
	}
}

// Load reads a YAML file at path and overlays it onto Default(); a
// missing file is not an error, matching the reference stack's own
// "config file is optional, defaults always work" loader shape.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// InvindexParams derives the L6 build parameters this config resolves
// to, for a caller assembling an engine.Index.
func (c Config) InvindexParams() invindex.Params {
	return invindex.Params{
		Parallelism:     c.Parallelism,
		CacheCapacity:   c.CacheCapacity,
		PendingBatch:    c.PendingBatch,
		PrefixThreshold: c.PrefixThreshold,
		MaxPrefixLength: c.MaxPrefixLength,
		FacetParams:     c.FacetParams(),
	}
}

// FacetParams derives the L7 tree parameters this config resolves to.
func (c Config) FacetParams() facet.Params {
	return facet.Params{
		GroupSize:    c.FacetGroupSize,
		MaxGroupSize: c.FacetMaxGroupSize,
		MinLevelSize: c.FacetMinLevelSize,
	}
}

// InitLogger configures the process-wide logger from this config.
func (c Config) InitLogger() {
	log.Init(log.Config{Level: log.Level(c.LogLevel), JSONOutput: c.LogJSON})
}
