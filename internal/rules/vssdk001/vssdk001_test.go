package vssdk001

import (
	"context"
	"slices"
	"testing"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/csharp"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/engine"
	"github.com/mpyw/vssdkanalyzers/internal/enginetest"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

func TestCorrected(t *testing.T) {
	enginetest.Run(t, enginetest.TestData(), []analysis.Factory{Factory(Config{})}, "corrected")
}

func TestLiteral(t *testing.T) {
	enginetest.Run(t, enginetest.TestData(), []analysis.Factory{Factory(Config{ReportAnyBase: true})}, "literal")
}

func TestCustomNames(t *testing.T) {
	cfg := Config{
		Legacy: semantic.MustParseName("Vendor.Shell.OldPackage"),
		Async:  semantic.MustParseName("Vendor.Shell.NewPackage"),
	}
	enginetest.Run(t, enginetest.TestData(), []analysis.Factory{Factory(cfg)}, "custom")
}

func TestImplicitUsings(t *testing.T) {
	enginetest.Run(t, enginetest.TestData(), []analysis.Factory{Factory(Config{})}, "implicit")
}

func TestSuppressed(t *testing.T) {
	enginetest.Run(t, enginetest.TestData(), []analysis.Factory{Factory(Config{})}, "suppressed",
		engine.WithSuppressions(true))
}

func TestDescriptor(t *testing.T) {
	if err := Descriptor.Validate(); err != nil {
		t.Fatalf("Validate() error: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{name: "id", got: Descriptor.ID, want: "VSSDK001"},
		{name: "title", got: Descriptor.Title, want: "Derive your VS package from AsyncPackage"},
		{name: "message", got: Descriptor.MessageFormat, want: "Your Package-derived class should derive from AsyncPackage instead."},
		{name: "category", got: Descriptor.Category, want: "Usage"},
		{name: "severity", got: Descriptor.DefaultSeverity, want: diag.SeverityInfo},
		{name: "enabled", got: Descriptor.EnabledByDefault, want: true},
		{name: "help", got: Descriptor.HelpURL, want: "https://github.com/Microsoft/VSSDK-Analyzers/blob/main/doc/VSSDK001.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	ctx := analysis.NewContext("VSSDK001")
	New(Config{}).Initialize(ctx)
	ctx.Seal()

	if errs := ctx.TakeErrors(); len(errs) != 0 {
		t.Fatalf("registration errors: %v", errs)
	}
	if !ctx.Concurrent() {
		t.Error("rule should enable concurrent execution")
	}
	if got := ctx.GeneratedCode(); got != analysis.GeneratedCodeAnalyze {
		t.Errorf("GeneratedCode() = %v, want %v", got, analysis.GeneratedCodeAnalyze)
	}
	actions := ctx.Actions()
	if len(actions) != 1 || !slices.Equal(actions[0].Kinds, []syntax.Kind{syntax.KindClassDeclaration}) {
		t.Errorf("actions = %+v", actions)
	}
}

// analyze runs the rule over one file and returns the reported spans as
// source text.
func analyze(t *testing.T, cfg Config, src string, withSemantics bool) []string {
	t.Helper()

	u, err := csharp.Parse("Foo.cs", []byte(src))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	in := engine.Input{Units: []*syntax.Unit{u}}
	if withSemantics {
		refs := semantic.DefaultReferences()
		model, err := semantic.Build(in.Units,
			semantic.WithReferences(refs...),
			semantic.WithImplicitUsings(semantic.ReferenceNamespaces(refs)...))
		if err != nil {
			t.Fatal(err)
		}
		in.Semantics = model
	}

	res, err := engine.New([]analysis.Factory{Factory(cfg)}).Run(context.Background(), in)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(res.Meta) != 0 {
		t.Errorf("unexpected meta diagnostics: %v", res.Meta)
	}

	var spans []string
	for _, d := range res.Diagnostics {
		spans = append(spans, u.Slice(d.Location.Span))
	}
	slices.Sort(spans)

	return spans
}

func TestAsyncPackageDeviation(t *testing.T) {
	const src = "using Microsoft.VisualStudio.Shell;\nclass Foo : AsyncPackage { }\n"

	tests := []struct {
		name          string
		cfg           Config
		withSemantics bool
		want          []string
	}{
		{name: "corrected", want: nil, withSemantics: true},
		{name: "literal", cfg: Config{ReportAnyBase: true}, withSemantics: true, want: []string{"AsyncPackage"}},
		{name: "corrected without semantics", want: nil},
		{name: "literal without semantics", cfg: Config{ReportAnyBase: true}, want: []string{"AsyncPackage"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyze(t, tt.cfg, src, tt.withSemantics)
			if !slices.Equal(got, tt.want) {
				t.Errorf("reported %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBareDeclarations(t *testing.T) {
	tests := []struct {
		src       string
		corrected []string
		literal   []string
	}{
		{src: "class Foo : Package { }", corrected: []string{"Package"}, literal: []string{"Package"}},
		{src: "class Foo { }"},
		{src: "class Foo : AsyncPackage { }", literal: []string{"AsyncPackage"}},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := analyze(t, Config{}, tt.src, true); !slices.Equal(got, tt.corrected) {
				t.Errorf("corrected: reported %q, want %q", got, tt.corrected)
			}
			if got := analyze(t, Config{ReportAnyBase: true}, tt.src, true); !slices.Equal(got, tt.literal) {
				t.Errorf("literal: reported %q, want %q", got, tt.literal)
			}
		})
	}
}

func TestReportLocation(t *testing.T) {
	got := analyze(t, Config{}, "class Foo : Microsoft.VisualStudio.Shell.Package, System.IDisposable { }", true)
	if want := []string{"Microsoft.VisualStudio.Shell.Package"}; !slices.Equal(got, want) {
		t.Errorf("reported %q, want %q", got, want)
	}
}

func TestCacheKey(t *testing.T) {
	keys := make(map[string]bool)
	for _, cfg := range []Config{
		{},
		{ReportAnyBase: true},
		{Legacy: semantic.MustParseName("A.B")},
	} {
		keys[New(cfg).CacheKey()] = true
	}
	if len(keys) != 3 {
		t.Errorf("cache keys collide: %v", keys)
	}
	if New(Config{}).CacheKey() != New(Config{Legacy: DefaultLegacy, Async: DefaultAsync}).CacheKey() {
		t.Error("defaults and explicit default names should share a key")
	}
}
