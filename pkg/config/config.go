// Package config loads deadfiles configuration from TOML, YAML or JSON.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/resolve"
)

// Config holds all configuration options for deadfiles.
type Config struct {
	// Directory that relative entries, patterns and bare specifiers resolve from
	Root string `koanf:"root" toml:"root" yaml:"root"`

	Entry   []string `koanf:"entry" toml:"entry" yaml:"entry"`
	Include []string `koanf:"include" toml:"include" yaml:"include"`
	Ignore  []string `koanf:"ignore" toml:"ignore" yaml:"ignore"`

	Resolve ResolveConfig `koanf:"resolve" toml:"resolve" yaml:"resolve"`
	Scan    ScanConfig    `koanf:"scan" toml:"scan" yaml:"scan"`
	Cache   CacheConfig   `koanf:"cache" toml:"cache" yaml:"cache"`
	Output  OutputConfig  `koanf:"output" toml:"output" yaml:"output"`
}

// ResolveConfig controls specifier resolution.
type ResolveConfig struct {
	Extensions []string `koanf:"extensions" toml:"extensions" yaml:"extensions"`
}

// ScanConfig controls candidate enumeration.
type ScanConfig struct {
	Gitignore bool `koanf:"gitignore" toml:"gitignore" yaml:"gitignore"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled" yaml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir" yaml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl" yaml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format" yaml:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color" toml:"color" yaml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose" yaml:"verbose"`
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "json", "markdown", "toon"}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Root:    ".",
		Entry:   []string{},
		Include: deadfile.DefaultInclude(),
		Ignore:  deadfile.DefaultIgnore(),
		Resolve: ResolveConfig{
			Extensions: resolve.DefaultExtensions(),
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".deadfiles/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Validate checks semantic rules the schema cannot express.
func (c *Config) Validate() error {
	var errs []error
	if !isFormat(c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format: unknown format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", ")))
	}
	if len(c.Resolve.Extensions) == 0 {
		errs = append(errs, errors.New("resolve.extensions: must not be empty"))
	}
	for _, ext := range c.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("resolve.extensions: %q must start with a dot", ext))
		}
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl: must not be negative, got %d", c.Cache.TTL))
	}
	return errors.Join(errs...)
}

func isFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dir  string
}

// WithPath loads the given file instead of searching standard locations.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDir searches standard locations below dir instead of the
// working directory.
func WithSearchDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadResult is a loaded configuration and the file it came from.
// Source is empty when defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadConfig loads, schema-checks and validates configuration. Without
// WithPath it searches standard locations and falls back to defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	path := o.path
	if path == "" {
		path = FindConfigFile(o.dir)
	}
	if path == "" {
		return &LoadResult{Config: DefaultConfig()}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Source: path}, nil
}

// Load loads configuration from a file over the defaults. The raw
// document is checked against the embedded schema before decoding.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if err := validateSchema(k.Raw()); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	// An empty list in the file replaces the default patterns.
	if isEmptyList(k, "include") {
		cfg.Include = []string{}
	}
	if isEmptyList(k, "ignore") {
		cfg.Ignore = []string{}
	}
	return cfg, nil
}

func isEmptyList(k *koanf.Koanf, key string) bool {
	if !k.Exists(key) {
		return false
	}
	switch v := k.Get(key).(type) {
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	}
	return false
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	case ".json":
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// configNames are searched in order within each search directory.
var configNames = []string{
	"deadfiles.toml",
	"deadfiles.yaml",
	"deadfiles.yml",
	"deadfiles.json",
	".deadfiles.toml",
	".deadfiles.yaml",
	".deadfiles.yml",
	".deadfiles.json",
}

// FindConfigFile returns the first config file found in dir or
// dir/.deadfiles, or "" when there is none.
func FindConfigFile(dir string) string {
	for _, d := range []string{dir, filepath.Join(dir, ".deadfiles")} {
		for _, name := range configNames {
			path := filepath.Join(d, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}
