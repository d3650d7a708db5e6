package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/cache"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/directives/ignore"
	"github.com/mpyw/vssdkanalyzers/internal/registry"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// ErrCanceled is returned by Run when its context is done before every unit
// was analyzed. The context error is wrapped alongside it.
var ErrCanceled = errors.New("analysis canceled")

var (
	errNilRule       = errors.New("factory returned a nil rule")
	errNilDescriptor = errors.New("nil descriptor")
	errNoDescriptors = errors.New("rule registers node actions but supports no diagnostics")
)

// metaOwner owns the engine's own descriptors in the registry.
const metaOwner = "engine"

// Input is the material of one run.
type Input struct {
	Units []*syntax.Unit
	// Semantics may be nil, in which case node contexts carry no resolver.
	Semantics semantic.Provider
}

// Stats summarizes one run.
type Stats struct {
	Units            int
	SkippedGenerated int
	Nodes            int
	Callbacks        int
	CacheHits        int
	CacheMisses      int
	Duration         time.Duration
}

func (s *Stats) add(o Stats) {
	s.Units += o.Units
	s.SkippedGenerated += o.SkippedGenerated
	s.Nodes += o.Nodes
	s.Callbacks += o.Callbacks
	s.CacheHits += o.CacheHits
	s.CacheMisses += o.CacheMisses
}

// Result is the outcome of one run. Diagnostics come from rules, Meta from
// the engine itself. Neither is ordered; use diag.Sort.
type Result struct {
	Diagnostics []diag.Diagnostic
	Meta        []diag.Diagnostic
	Stats       Stats
}

// loadedRule is an admitted rule with its registrations.
type loadedRule struct {
	rule       analysis.Rule
	name       string
	ctx        *analysis.Context
	supported  map[string]*diag.Descriptor
	active     map[string]bool
	concurrent bool
	generated  analysis.GeneratedCodeFlags

	// serializes rules that did not enable concurrent execution
	mu sync.Mutex
}

type action struct {
	rule *loadedRule
	fn   analysis.NodeFunc
}

// Engine hosts a fixed set of rules. It is safe to call Run concurrently.
type Engine struct {
	cfg      config
	log      *zap.Logger
	registry *registry.Registry
	rules    []*loadedRule
	byKind   [syntax.KindCount][]action
	enabled  ignore.EnabledIDs

	loadMeta []diag.Diagnostic
	loadErrs []error
	ruleset  uint64
}

// New instantiates one rule per factory and admits every rule that loads
// cleanly. Rules that fail to load are reported through LoadErrors and as
// meta diagnostics of every run.
func New(factories []analysis.Factory, opts ...Option) *Engine {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		cfg:      cfg,
		log:      cfg.logger.Named("engine"),
		registry: registry.New(),
		enabled:  make(ignore.EnabledIDs),
	}
	if err := e.registry.Register(metaOwner, diag.MetaDescriptors()...); err != nil {
		// meta descriptors are static
		panic(err)
	}
	e.load(factories)
	e.index()

	return e
}

type candidate struct {
	rule  analysis.Rule
	name  string
	descs []*diag.Descriptor
}

func (e *Engine) load(factories []analysis.Factory) {
	var (
		candidates []*candidate
		names      = map[string]bool{metaOwner: true}
	)
	for i, f := range factories {
		c, err := instantiate(f)
		if err != nil {
			e.reject("rule #"+strconv.Itoa(i), err)
			continue
		}
		c.name = uniqueName(names, c.name)
		if err := validate(c.descs); err != nil {
			e.reject(c.name, err)
			continue
		}
		candidates = append(candidates, c)
	}

	// Every rule involved in a duplicate id is rejected, not only the later one.
	claims := map[string][]*diag.Descriptor{metaOwner: diag.MetaDescriptors()}
	order := []string{metaOwner}
	for _, c := range candidates {
		claims[c.name] = c.descs
		order = append(order, c.name)
	}
	rejected := make(map[string]error)
	for _, dup := range registry.Duplicates(claims, order) {
		for _, owner := range dup.Owners {
			if owner != metaOwner && rejected[owner] == nil {
				rejected[owner] = dup
			}
		}
	}

	for _, c := range candidates {
		if err := rejected[c.name]; err != nil {
			e.reject(c.name, err)
			continue
		}
		e.initialize(c)
	}
}

func instantiate(f analysis.Factory) (c *candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			c, err = nil, fmt.Errorf("panic while loading: %v", r)
		}
	}()

	if f == nil {
		return nil, errNilRule
	}
	r := f()
	if r == nil {
		return nil, errNilRule
	}

	return &candidate{rule: r, name: r.Name(), descs: r.SupportedDiagnostics()}, nil
}

func uniqueName(seen map[string]bool, name string) string {
	if name == "" {
		name = "unnamed"
	}
	out := name
	for i := 2; seen[out]; i++ {
		out = name + "#" + strconv.Itoa(i)
	}
	seen[out] = true

	return out
}

func validate(descs []*diag.Descriptor) error {
	for _, d := range descs {
		if d == nil {
			return &registry.InvalidDescriptorError{Err: errNilDescriptor}
		}
		if err := d.Validate(); err != nil {
			return &registry.InvalidDescriptorError{ID: d.ID, Err: err}
		}
	}

	return nil
}

func (e *Engine) initialize(c *candidate) {
	ctx := analysis.NewContext(c.name)
	if err := callInitialize(c.rule, ctx); err != nil {
		ctx.Seal()
		e.log.Warn("rule initialization panicked", zap.String("rule", c.name), zap.Error(err))
		e.loadErrs = append(e.loadErrs, fmt.Errorf("rule %s: %w", c.name, err))
		e.loadMeta = append(e.loadMeta, diag.New(diag.RuleException, diag.Location{}, c.name, "initialization", err))

		return
	}
	ctx.Seal()
	for _, err := range ctx.TakeErrors() {
		e.loadMeta = append(e.loadMeta, diag.New(diag.ContractViolation, diag.Location{}, c.name, err))
	}
	if len(c.descs) == 0 && len(ctx.Actions()) > 0 {
		e.reject(c.name, errNoDescriptors)
		return
	}

	if err := e.registry.Register(c.name, c.descs...); err != nil {
		e.reject(c.name, err)
		return
	}

	lr := &loadedRule{
		rule:       c.rule,
		name:       c.name,
		ctx:        ctx,
		supported:  make(map[string]*diag.Descriptor, len(c.descs)),
		active:     make(map[string]bool, len(c.descs)),
		concurrent: ctx.Concurrent(),
		generated:  ctx.GeneratedCode(),
	}
	for _, d := range c.descs {
		lr.supported[d.ID] = d
		if e.isActive(d) {
			lr.active[d.ID] = true
			e.enabled[strings.ToUpper(d.ID)] = true
		}
	}
	e.rules = append(e.rules, lr)
	e.log.Debug("rule loaded",
		zap.String("rule", c.name),
		zap.Int("actions", len(ctx.Actions())),
		zap.Bool("concurrent", lr.concurrent),
		zap.Stringer("generated", lr.generated))
}

func callInitialize(r analysis.Rule, ctx *analysis.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	r.Initialize(ctx)

	return nil
}

func (e *Engine) reject(name string, err error) {
	e.log.Warn("rule rejected", zap.String("rule", name), zap.Error(err))
	e.loadErrs = append(e.loadErrs, fmt.Errorf("rule %s: %w", name, err))
	e.loadMeta = append(e.loadMeta, diag.New(diag.RuleLoadFailure, diag.Location{}, name, err))
}

func (e *Engine) isActive(d *diag.Descriptor) bool {
	id := strings.ToUpper(d.ID)
	if e.cfg.disable[id] {
		return false
	}

	return d.EnabledByDefault || e.cfg.enable[id]
}

// index builds the kind to actions table and the rule-set fingerprint.
func (e *Engine) index() {
	var parts []string
	for _, r := range e.rules {
		if len(r.active) == 0 {
			continue
		}
		for _, a := range r.ctx.Actions() {
			for _, k := range a.Kinds {
				e.byKind[k] = append(e.byKind[k], action{rule: r, fn: a.Func})
			}
		}

		ids := make([]string, 0, len(r.active))
		for id := range r.active {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		key := ""
		if k, ok := r.rule.(analysis.Keyed); ok {
			key = k.CacheKey()
		}
		parts = append(parts, r.name, strings.Join(ids, ","), r.generated.String(), key)
	}
	e.ruleset = cache.Fingerprint(parts...)
}

// LoadErrors returns the reasons rules were rejected or failed to
// initialize, joined. It is nil if every rule loaded.
func (e *Engine) LoadErrors() error {
	return errors.Join(e.loadErrs...)
}

// Rules returns the names of the admitted rules in load order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.name
	}

	return names
}

// Supported returns the descriptors of the admitted rules sorted by id.
func (e *Engine) Supported() []*diag.Descriptor {
	var out []*diag.Descriptor
	for _, d := range e.registry.Supported() {
		if owner, _ := e.registry.Owner(d.ID); owner != metaOwner {
			out = append(out, d)
		}
	}

	return out
}

// Lookup returns the descriptor registered under id, including the
// engine's own descriptors.
func (e *Engine) Lookup(id string) (*diag.Descriptor, bool) {
	return e.registry.Lookup(id)
}

func (e *Engine) isMeta(d *diag.Descriptor) bool {
	owner, ok := e.registry.Owner(d.ID)

	return ok && owner == metaOwner
}

// Run analyzes every unit of in. On cancellation it returns an error
// matching ErrCanceled and the context error, and no result.
func (e *Engine) Run(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCanceled, err)
	}

	units := slices.DeleteFunc(slices.Clone(in.Units), func(u *syntax.Unit) bool { return u == nil })

	jobs := e.cfg.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Slots are unique per goroutine, no mutex needed.
	results := make([]unitResult, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(units))))
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var resolver semantic.Resolver
			if in.Semantics != nil {
				resolver = in.Semantics.ForUnit(u)
			}
			res, err := e.newRunner(u, resolver, in.Semantics).run(gctx)
			if err != nil {
				return err
			}
			results[i] = res

			return nil
		})
	}
	if err := g.Wait(); err != nil || ctx.Err() != nil {
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		e.log.Debug("run canceled", zap.Error(cause))

		return nil, fmt.Errorf("%w: %w", ErrCanceled, cause)
	}

	res := &Result{Meta: slices.Clone(e.loadMeta)}
	for _, ur := range results {
		res.Diagnostics = append(res.Diagnostics, ur.diagnostics...)
		res.Meta = append(res.Meta, ur.meta...)
		res.Stats.add(ur.stats)
	}
	// Registration attempts made after Initialize, for instance from a
	// node action, surface here.
	for _, r := range e.rules {
		for _, err := range r.ctx.TakeErrors() {
			res.Meta = append(res.Meta, diag.New(diag.ContractViolation, diag.Location{}, r.name, err))
		}
	}
	res.Stats.Duration = time.Since(start)
	e.cfg.metrics.RunDuration(res.Stats.Duration)

	e.log.Debug("run finished",
		zap.Int("units", res.Stats.Units),
		zap.Int("diagnostics", len(res.Diagnostics)),
		zap.Int("meta", len(res.Meta)),
		zap.Int("cache_hits", res.Stats.CacheHits),
		zap.Duration("duration", res.Stats.Duration))

	return res, nil
}
