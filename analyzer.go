// Package vssdkanalyzers checks C# Visual Studio extensions for SDK usage
// problems. It wires the shipped rules into the analysis engine and runs
// them over a set of source paths.
package vssdkanalyzers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/config"
	"github.com/mpyw/vssdkanalyzers/internal/csharp"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/engine"
	"github.com/mpyw/vssdkanalyzers/internal/report"
	"github.com/mpyw/vssdkanalyzers/internal/rules"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
	"github.com/mpyw/vssdkanalyzers/internal/workspace"
)

// Name is the tool name used in reports.
const Name = "vssdkcheck"

// Version is set at build time.
var Version = "dev"

// Rules returns the factories of the shipped rules configured by cfg.
func Rules(cfg *config.Config) ([]analysis.Factory, error) {
	rc, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	return rules.Configured(rc), nil
}

// NewEngine builds an engine hosting the shipped rules. opts are applied
// after the options derived from cfg.
func NewEngine(cfg *config.Config, opts ...engine.Option) (*engine.Engine, error) {
	factories, err := Rules(cfg)
	if err != nil {
		return nil, err
	}
	base := []engine.Option{
		engine.WithJobs(cfg.Jobs),
		engine.WithSuppressions(cfg.Suppress),
		engine.WithEnabled(cfg.Enable...),
		engine.WithDisabled(cfg.Disable...),
		engine.WithGeneratedPredicate(csharp.IsGenerated),
	}

	return engine.New(factories, append(base, opts...)...), nil
}

// Outcome is the result of Analyze.
type Outcome struct {
	*engine.Result
	Units     []*syntax.Unit
	Supported []*diag.Descriptor
	// SyntaxErrors are the recoverable parse errors. Analysis still runs
	// over whatever parsed.
	SyntaxErrors []error
}

// Report returns the outcome in the shape the reporters print.
func (o *Outcome) Report() *report.Report {
	units := make(map[string]*syntax.Unit, len(o.Units))
	for _, u := range o.Units {
		units[u.Path] = u
	}

	return &report.Report{
		Diagnostics: o.Diagnostics,
		Meta:        o.Meta,
		Rules:       o.Supported,
		Units:       units,
	}
}

// Failed reports whether the outcome holds a diagnostic at or above the
// configured failure threshold.
func (o *Outcome) Failed(cfg *config.Config) (bool, error) {
	threshold, ok, err := cfg.FailThreshold()
	if err != nil || !ok {
		return false, err
	}
	for _, ds := range [][]diag.Diagnostic{o.Diagnostics, o.Meta} {
		if sev, ok := diag.Max(ds); ok && sev >= threshold {
			return true, nil
		}
	}

	return false, nil
}

// Analyze discovers the sources under paths, parses them, builds the
// semantic model and runs the shipped rules.
func Analyze(ctx context.Context, cfg *config.Config, paths []string, log *zap.Logger, opts ...engine.Option) (*Outcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	files, err := workspace.Discover(paths, cfg.Exclude)
	if err != nil {
		return nil, err
	}
	ws, err := workspace.Load(ctx, files, workspace.Options{Jobs: cfg.Jobs, Logger: log.Named("workspace")})
	if err != nil {
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	buildOpts, err := cfg.SemanticOptions()
	if err != nil {
		return nil, err
	}
	model, err := semantic.Build(ws.Units, append(buildOpts, semantic.WithLogger(log.Named("semantic")))...)
	if err != nil {
		return nil, fmt.Errorf("building semantic model: %w", err)
	}

	eng, err := NewEngine(cfg, append([]engine.Option{engine.WithLogger(log)}, opts...)...)
	if err != nil {
		return nil, err
	}
	res, err := eng.Run(ctx, engine.Input{Units: ws.Units, Semantics: model})
	if err != nil {
		return nil, err
	}
	diag.Sort(res.Diagnostics)
	diag.Sort(res.Meta)

	return &Outcome{
		Result:       res,
		Units:        ws.Units,
		Supported:    eng.Supported(),
		SyntaxErrors: ws.SyntaxErrors(),
	}, nil
}
