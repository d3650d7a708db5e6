package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/cache"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/directives/ignore"
	"github.com/mpyw/vssdkanalyzers/internal/metrics"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

var (
	errUnsupportedID   = errors.New("diagnostic id is not declared in SupportedDiagnostics")
	errNoDescriptor    = errors.New("diagnostic has no descriptor")
	errOutsideUnit     = errors.New("diagnostic location is outside the analyzed unit")
	errUnknownCachedID = errors.New("cached diagnostic id is not registered")
)

type unitResult struct {
	diagnostics []diag.Diagnostic
	meta        []diag.Diagnostic
	stats       Stats
}

// runner analyzes one unit.
type runner struct {
	e        *Engine
	unit     *syntax.Unit
	resolver semantic.Resolver
	provider semantic.Provider

	generatedUnit  bool
	generatedSpans []syntax.Span

	sink      diag.Sink // domain diagnostics
	meta      diag.Sink
	exception bool
	stats     Stats
}

func (e *Engine) newRunner(u *syntax.Unit, resolver semantic.Resolver, provider semantic.Provider) *runner {
	return &runner{
		e:             e,
		unit:          u,
		resolver:      resolver,
		provider:      provider,
		generatedUnit: e.cfg.generated(u),
	}
}

// run walks the unit, or replays its cached result.
func (r *runner) run(ctx context.Context) (unitResult, error) {
	r.stats.Units = 1
	r.e.cfg.metrics.Unit()

	if r.generatedUnit && !r.anyRule(analysis.GeneratedCodeAnalyze) {
		r.stats.SkippedGenerated = 1
		r.e.cfg.metrics.SkippedGenerated()

		return unitResult{stats: r.stats}, nil
	}

	var key cache.Key
	if r.e.cfg.cache != nil {
		key = r.cacheKey()
		if res, ok := r.load(key); ok {
			return res, nil
		}
	}

	r.generatedSpans = generatedSpans(r.unit.Root)
	err := syntax.Walk(r.unit.Root, func(n *syntax.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.stats.Nodes++

		return r.dispatch(ctx, n)
	})
	r.e.cfg.metrics.Nodes(r.stats.Nodes)
	if err != nil {
		return unitResult{}, err
	}

	diags := r.sink.Items()
	meta := r.meta.Items()
	if r.e.cfg.suppress {
		diags, meta = r.suppress(diags, meta)
	}
	for _, d := range diags {
		r.e.cfg.metrics.Diagnostic(d.ID())
	}

	if r.e.cfg.cache != nil && !r.exception {
		r.store(key, diags, meta)
	}

	return unitResult{diagnostics: diags, meta: meta, stats: r.stats}, nil
}

func (r *runner) anyRule(flag analysis.GeneratedCodeFlags) bool {
	for _, lr := range r.e.rules {
		if lr.generated.Has(flag) {
			return true
		}
	}

	return false
}

// dispatch invokes every action registered for the node's kind, one after
// another.
func (r *runner) dispatch(ctx context.Context, n *syntax.Node) error {
	actions := r.e.byKind[n.Kind]
	if len(actions) == 0 {
		return nil
	}
	generated := r.generatedUnit || n.Generated()

	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return err
		}
		if generated && !a.rule.generated.Has(analysis.GeneratedCodeAnalyze) {
			continue
		}
		r.invoke(ctx, a, n)
	}

	return nil
}

func (r *runner) invoke(ctx context.Context, a action, n *syntax.Node) {
	lr := a.rule
	if !lr.concurrent {
		lr.mu.Lock()
		defer lr.mu.Unlock()
	}

	r.stats.Callbacks++
	r.e.cfg.metrics.Callback(lr.name)

	defer func() {
		if p := recover(); p != nil {
			r.exception = true
			r.e.cfg.metrics.Exception(lr.name)
			loc := diag.NewLocation(r.unit, n.Span)
			r.e.log.Warn("rule panicked",
				zap.String("rule", lr.name),
				zap.Stringer("location", loc),
				zap.Any("panic", p))
			r.meta.Add(diag.New(diag.RuleException, loc, lr.name, loc.String(), p))
		}
	}()

	nc := analysis.NewNodeContext(ctx, n, r.unit, r.resolver, func(d diag.Diagnostic) {
		r.report(lr, n, d)
	})
	a.fn(nc)
}

// report validates a diagnostic reported by rule lr while visiting n and
// keeps it when it passes the generated-code policy.
func (r *runner) report(lr *loadedRule, n *syntax.Node, d diag.Diagnostic) {
	if d.Descriptor == nil {
		r.violation(lr, n, errNoDescriptor)
		return
	}
	if _, ok := lr.supported[d.Descriptor.ID]; !ok {
		r.violation(lr, n, fmt.Errorf("%w: %s", errUnsupportedID, d.Descriptor.ID))
		return
	}
	loc := d.Location
	if loc.Path != r.unit.Path || !r.unit.Range().Contains(loc.Span) {
		r.violation(lr, n, fmt.Errorf("%w: %s %s", errOutsideUnit, loc.Path, loc.Span))
		return
	}
	if !lr.active[d.Descriptor.ID] {
		return
	}
	if r.inGenerated(loc.Span) && !lr.generated.Has(analysis.GeneratedCodeReportDiagnostics) {
		return
	}
	r.sink.Add(d)
}

func (r *runner) violation(lr *loadedRule, n *syntax.Node, err error) {
	r.e.log.Debug("invalid diagnostic dropped", zap.String("rule", lr.name), zap.Error(err))
	r.meta.Add(diag.New(diag.ContractViolation, diag.NewLocation(r.unit, n.Span), lr.name, err))
}

func (r *runner) inGenerated(sp syntax.Span) bool {
	if r.generatedUnit {
		return true
	}
	for _, g := range r.generatedSpans {
		if g.Contains(sp) {
			return true
		}
	}

	return false
}

// generatedSpans returns the spans of the outermost nodes flagged as
// generated.
func generatedSpans(root *syntax.Node) []syntax.Span {
	var out []syntax.Span
	syntax.Inspect(root, func(n *syntax.Node) bool {
		if n.Flags&syntax.FlagGenerated != 0 {
			out = append(out, n.Span)
			return false
		}

		return true
	})

	return out
}

// suppress drops suppressed diagnostics and reports unused suppressions.
func (r *runner) suppress(diags, meta []diag.Diagnostic) ([]diag.Diagnostic, []diag.Diagnostic) {
	m := ignore.Build(r.unit)
	if m.Len() == 0 {
		return diags, meta
	}

	kept := diags[:0]
	for _, d := range diags {
		if m.ShouldIgnore(d.Location.Start.Line, d.Location.Span.Start, d.ID()) {
			continue
		}
		kept = append(kept, d)
	}

	for _, u := range m.GetUnused(r.e.enabled) {
		what := "all diagnostics"
		if len(u.IDs) > 0 {
			what = strings.Join(u.IDs, ", ")
		}
		loc := diag.NewLocation(r.unit, syntax.Span{Start: u.Off, End: u.Off})
		meta = append(meta, diag.New(diag.UnusedSuppression, loc, what))
	}

	return kept, meta
}

func (r *runner) cacheKey() cache.Key {
	in := cache.KeyInput{
		Path:      r.unit.Path,
		Text:      r.unit.Text,
		Ruleset:   r.e.ruleset,
		Suppress:  r.e.cfg.suppress,
		Generated: r.generatedUnit,
	}
	if fp, ok := r.provider.(semantic.Fingerprinter); ok {
		in.Semantic = fp.Fingerprint()
	}

	return in.Key()
}

// load replays a cached result. Any failure is a miss.
func (r *runner) load(key cache.Key) (unitResult, bool) {
	entry, ok, err := r.e.cfg.cache.Get(key)
	if err != nil {
		r.e.log.Warn("cache read failed", zap.String("path", r.unit.Path), zap.Error(err))
	}
	if !ok || entry.Path != r.unit.Path {
		r.stats.CacheMisses = 1
		r.e.cfg.metrics.CacheLookup(metrics.CacheMiss)

		return unitResult{}, false
	}

	res := unitResult{}
	for _, cd := range entry.Diagnostics {
		desc, ok := r.e.registry.Lookup(cd.ID)
		if !ok {
			r.e.log.Warn("cache entry discarded", zap.String("path", r.unit.Path), zap.Error(fmt.Errorf("%w: %s", errUnknownCachedID, cd.ID)))
			r.stats.CacheMisses = 1
			r.e.cfg.metrics.CacheLookup(metrics.CacheMiss)

			return unitResult{}, false
		}
		d := diag.Diagnostic{
			Descriptor: desc,
			Severity:   diag.Severity(cd.Severity),
			Location:   diag.NewLocation(r.unit, syntax.Span{Start: cd.Start, End: cd.End}),
			Args:       cd.Args,
		}
		if r.e.isMeta(desc) {
			res.meta = append(res.meta, d)
		} else {
			res.diagnostics = append(res.diagnostics, d)
			r.e.cfg.metrics.Diagnostic(d.ID())
		}
	}
	r.stats.CacheHits = 1
	r.e.cfg.metrics.CacheLookup(metrics.CacheHit)
	res.stats = r.stats

	return res, true
}

func (r *runner) store(key cache.Key, diags, meta []diag.Diagnostic) {
	out := make([]cache.Diagnostic, 0, len(diags)+len(meta))
	for _, ds := range [][]diag.Diagnostic{diags, meta} {
		for _, d := range ds {
			out = append(out, cache.Diagnostic{
				ID:       d.ID(),
				Severity: uint8(d.Severity),
				Start:    d.Location.Span.Start,
				End:      d.Location.Span.End,
				Args:     cacheArgs(d.Args),
			})
		}
	}
	if err := r.e.cfg.cache.Put(key, cache.NewEntry(r.unit.Path, out)); err != nil {
		r.e.log.Warn("cache write failed", zap.String("path", r.unit.Path), zap.Error(err))
	}
}

// cacheArgs keeps scalar message arguments and renders everything else.
func cacheArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch a.(type) {
		case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			out[i] = a
		default:
			out[i] = fmt.Sprint(a)
		}
	}

	return out
}
