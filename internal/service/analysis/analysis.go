// Package analysis turns configuration and per-call overrides into a
// dead-file detection run. It is shared by the CLI and the MCP server.
package analysis

import (
	"context"
	"path/filepath"

	"github.com/panbanda/deadfiles/internal/cache"
	"github.com/panbanda/deadfiles/pkg/analyzer/deadfile"
	"github.com/panbanda/deadfiles/pkg/config"
)

// Service orchestrates detection runs.
type Service struct {
	config *config.Config
	cache  *cache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithCache sets the analysis cache, overriding the configured one.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// New creates a new analysis service. Without WithConfig it uses the
// defaults.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	return s
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// DetectOptions overrides configuration for one run. Empty fields keep
// the configured values, except Include and Ignore: there only nil keeps
// them, and an empty list replaces them with nothing.
type DetectOptions struct {
	Root           string
	Entry          []string
	Include        []string
	Ignore         []string
	Gitignore      bool
	NoCache        bool
	OnTraverseFile deadfile.Observer
}

// Root returns the effective root directory for opts.
func (s *Service) Root(opts DetectOptions) string {
	if opts.Root != "" {
		return opts.Root
	}
	if s.config.Root != "" {
		return s.config.Root
	}
	return "."
}

// Ignore returns the effective ignore patterns for opts.
func (s *Service) Ignore(opts DetectOptions) []string {
	if ignore := patterns(opts.Ignore, s.config.Ignore); ignore != nil {
		return ignore
	}
	return deadfile.DefaultIgnore()
}

// AnalyzerOptions merges configuration and overrides into detector
// options.
func (s *Service) AnalyzerOptions(opts DetectOptions) ([]deadfile.Option, error) {
	cfg := s.config
	root := s.Root(opts)

	out := []deadfile.Option{
		deadfile.WithRoot(root),
		deadfile.WithEntries(pick(opts.Entry, cfg.Entry)...),
		deadfile.WithGitignore(opts.Gitignore || cfg.Scan.Gitignore),
		deadfile.WithObserver(opts.OnTraverseFile),
	}
	if include := patterns(opts.Include, cfg.Include); include != nil {
		out = append(out, deadfile.WithInclude(include...))
	}
	if ignore := patterns(opts.Ignore, cfg.Ignore); ignore != nil {
		out = append(out, deadfile.WithIgnore(ignore...))
	}
	if len(cfg.Resolve.Extensions) > 0 {
		out = append(out, deadfile.WithExtensions(cfg.Resolve.Extensions...))
	}

	c, err := s.cacheFor(root, opts.NoCache)
	if err != nil {
		return nil, err
	}
	if c != nil {
		out = append(out, deadfile.WithCache(c))
	}
	return out, nil
}

// FindDeadFiles runs one detection.
func (s *Service) FindDeadFiles(ctx context.Context, opts DetectOptions) (*deadfile.Report, error) {
	analyzerOpts, err := s.AnalyzerOptions(opts)
	if err != nil {
		return nil, err
	}
	a := deadfile.New(analyzerOpts...)
	defer a.Close()
	return a.Analyze(ctx)
}

// cacheFor returns the explicit cache, or opens the configured one.
func (s *Service) cacheFor(root string, disabled bool) (*cache.Cache, error) {
	if disabled {
		return nil, nil
	}
	if s.cache != nil {
		return s.cache, nil
	}
	if !s.config.Cache.Enabled || s.config.Cache.Dir == "" {
		return nil, nil
	}
	return cache.New(s.CacheDir(root), s.config.Cache.TTL, true)
}

// CacheDir returns the configured cache directory. A relative directory
// lives under root.
func (s *Service) CacheDir(root string) string {
	dir := s.config.Cache.Dir
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	return dir
}

func pick(override, configured []string) []string {
	if len(override) > 0 {
		return override
	}
	return configured
}

// patterns prefers override over configured. Only nil means unset, so an
// empty list is kept and disables the defaults.
func patterns(override, configured []string) []string {
	if override != nil {
		return override
	}
	return configured
}
