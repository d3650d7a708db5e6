package engine

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers/internal/cache"
	"github.com/mpyw/vssdkanalyzers/internal/metrics"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	logger    *zap.Logger
	jobs      int
	metrics   *metrics.Collector
	cache     cache.Store
	suppress  bool
	generated func(*syntax.Unit) bool
	enable    map[string]bool
	disable   map[string]bool
}

func defaultConfig() config {
	return config{
		logger:    zap.NewNop(),
		generated: func(u *syntax.Unit) bool { return u.Generated },
		enable:    make(map[string]bool),
		disable:   make(map[string]bool),
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithJobs limits the number of units analyzed at once. Zero or less means
// GOMAXPROCS.
func WithJobs(n int) Option {
	return func(c *config) {
		c.jobs = n
	}
}

// WithMetrics records run metrics into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(c *config) {
		c.metrics = m
	}
}

// WithCache enables incremental re-analysis backed by s.
func WithCache(s cache.Store) Option {
	return func(c *config) {
		c.cache = s
	}
}

// WithSuppressions enables #pragma warning and // vssdk:ignore handling,
// including the report of unused suppressions.
func WithSuppressions(on bool) Option {
	return func(c *config) {
		c.suppress = on
	}
}

// WithGeneratedPredicate replaces the test deciding whether a whole unit is
// generated code.
func WithGeneratedPredicate(fn func(*syntax.Unit) bool) Option {
	return func(c *config) {
		if fn != nil {
			c.generated = fn
		}
	}
}

// WithEnabled turns on diagnostic ids, including ids that are disabled by
// default.
func WithEnabled(ids ...string) Option {
	return func(c *config) {
		for _, id := range ids {
			id = strings.ToUpper(strings.TrimSpace(id))
			c.enable[id] = true
			delete(c.disable, id)
		}
	}
}

// WithDisabled turns off diagnostic ids.
func WithDisabled(ids ...string) Option {
	return func(c *config) {
		for _, id := range ids {
			id = strings.ToUpper(strings.TrimSpace(id))
			c.disable[id] = true
			delete(c.enable, id)
		}
	}
}
