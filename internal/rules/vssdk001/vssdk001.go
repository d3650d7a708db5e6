// Package vssdk001 reports Visual Studio packages that derive from Package
// instead of AsyncPackage.
package vssdk001

import (
	"fmt"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// ID is the diagnostic id reported by the rule.
const ID = "VSSDK001"

// Descriptor describes the diagnostic reported by the rule.
var Descriptor = &diag.Descriptor{
	ID:               ID,
	Title:            "Derive your VS package from AsyncPackage",
	MessageFormat:    "Your Package-derived class should derive from AsyncPackage instead.",
	Category:         "Usage",
	DefaultSeverity:  diag.SeverityInfo,
	EnabledByDefault: true,
	HelpURL:          "https://github.com/Microsoft/VSSDK-Analyzers/blob/main/doc/" + ID + ".md",
}

var (
	// DefaultLegacy is the discouraged base class.
	DefaultLegacy = semantic.MustParseName("Microsoft.VisualStudio.Shell.Package")
	// DefaultAsync is the base class packages should derive from.
	DefaultAsync = semantic.MustParseName("Microsoft.VisualStudio.Shell.AsyncPackage")
)

// Config holds the rule settings. Zero names select the defaults.
type Config struct {
	// ReportAnyBase reports the first base type of every class whatever it
	// resolves to.
	ReportAnyBase bool
	Legacy        semantic.Name
	Async         semantic.Name
}

// Rule is the VSSDK001 rule.
type Rule struct {
	reportAnyBase bool
	legacy        semantic.Name
	async         semantic.Name
}

// New creates the rule.
func New(cfg Config) *Rule {
	r := &Rule{
		reportAnyBase: cfg.ReportAnyBase,
		legacy:        cfg.Legacy,
		async:         cfg.Async,
	}
	if r.legacy.IsZero() {
		r.legacy = DefaultLegacy
	}
	if r.async.IsZero() {
		r.async = DefaultAsync
	}

	return r
}

// Factory returns a factory creating the rule with cfg.
func Factory(cfg Config) analysis.Factory {
	return func() analysis.Rule { return New(cfg) }
}

// Name implements analysis.Rule.
func (r *Rule) Name() string {
	return "VSSDK001DeriveFromAsyncPackage"
}

// SupportedDiagnostics implements analysis.Rule.
func (r *Rule) SupportedDiagnostics() []*diag.Descriptor {
	return []*diag.Descriptor{Descriptor}
}

// CacheKey implements analysis.Keyed.
func (r *Rule) CacheKey() string {
	return fmt.Sprintf("any=%t legacy=%s async=%s", r.reportAnyBase, r.legacy.FullName(), r.async.FullName())
}

// Initialize implements analysis.Rule. Generated code is visited but its
// diagnostics are not reported.
func (r *Rule) Initialize(ctx *analysis.Context) {
	ctx.EnableConcurrentExecution()
	ctx.ConfigureGeneratedCodeAnalysis(analysis.GeneratedCodeAnalyze)
	ctx.RegisterNodeAction(r.analyzeClassDeclaration, syntax.KindClassDeclaration)
}

func (r *Rule) analyzeClassDeclaration(nc *analysis.NodeContext) {
	bases := nc.Node().BaseTypes()
	if len(bases) == 0 {
		return
	}
	base := bases[0]

	var sym *semantic.Symbol
	res := nc.Semantic()
	if res != nil {
		if s, err := res.SymbolOf(nc.Context(), base); err == nil {
			sym = s
		}
	}

	if r.reportAnyBase {
		nc.ReportAt(Descriptor, base.Span)
		return
	}
	if sym == nil {
		return
	}

	// Derivation through the async type is fine even though it derives
	// from the legacy one.
	legacy, err := semantic.DerivesFrom(nc.Context(), res, sym, r.legacy, r.async)
	if err != nil || !legacy {
		return
	}
	nc.ReportAt(Descriptor, base.Span)
}
