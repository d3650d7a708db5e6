// Package metrics exposes Prometheus collectors for engine runs.
package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

const (
	// Namespace and subsystem for all metrics.
	namespace = "vssdk"
	subsystem = "engine"
)

// Cache lookup outcomes.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Collector records engine activity. The zero value is not usable; a nil
// *Collector discards everything.
type Collector struct {
	units       prometheus.Counter
	skipped     prometheus.Counter
	nodes       prometheus.Counter
	callbacks   *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	exceptions  *prometheus.CounterVec
	cache       *prometheus.CounterVec
	runTime     prometheus.Histogram
}

// New registers the engine collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		units: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "units_total",
			Help:      "Total number of units analyzed",
		}),
		skipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "generated_units_skipped_total",
			Help:      "Total number of generated units no rule analyzed",
		}),
		nodes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "nodes_visited_total",
			Help:      "Total number of syntax nodes visited",
		}),
		callbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "callbacks_total",
			Help:      "Total number of node actions invoked by rule",
		}, []string{"rule"}),
		diagnostics: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diagnostics_total",
			Help:      "Total number of diagnostics reported by id",
		}, []string{"id"}),
		exceptions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rule_exceptions_total",
			Help:      "Total number of recovered rule panics by rule",
		}, []string{"rule"}),
		cache: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_lookups_total",
			Help:      "Total number of incremental cache lookups by result",
		}, []string{"result"}),
		runTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Time taken by one engine run",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Unit counts an analyzed unit.
func (c *Collector) Unit() {
	if c == nil {
		return
	}
	c.units.Inc()
}

// SkippedGenerated counts a generated unit no rule wanted to analyze.
func (c *Collector) SkippedGenerated() {
	if c == nil {
		return
	}
	c.skipped.Inc()
}

// Nodes adds n visited nodes.
func (c *Collector) Nodes(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.nodes.Add(float64(n))
}

// Callback counts a node action invocation.
func (c *Collector) Callback(rule string) {
	if c == nil {
		return
	}
	c.callbacks.WithLabelValues(rule).Inc()
}

// Diagnostic counts a delivered diagnostic.
func (c *Collector) Diagnostic(id string) {
	if c == nil {
		return
	}
	c.diagnostics.WithLabelValues(id).Inc()
}

// Exception counts a recovered panic.
func (c *Collector) Exception(rule string) {
	if c == nil {
		return
	}
	c.exceptions.WithLabelValues(rule).Inc()
}

// CacheLookup counts a cache lookup with result CacheHit or CacheMiss.
func (c *Collector) CacheLookup(result string) {
	if c == nil {
		return
	}
	c.cache.WithLabelValues(result).Inc()
}

// RunDuration records the duration of one run.
func (c *Collector) RunDuration(d time.Duration) {
	if c == nil {
		return
	}
	c.runTime.Observe(d.Seconds())
}

// WriteText writes every metric gathered by g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}

	return nil
}
