package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

func TestContextRegistration(t *testing.T) {
	c := NewContext("r")
	noop := func(*NodeContext) {}

	c.EnableConcurrentExecution()
	c.ConfigureGeneratedCodeAnalysis(GeneratedCodeAnalyze)
	c.RegisterNodeAction(noop, syntax.KindClassDeclaration)
	c.RegisterNodeAction(noop, syntax.KindStructDeclaration, syntax.KindRecordDeclaration)
	c.Seal()

	if !c.Concurrent() {
		t.Error("Concurrent() = false")
	}
	if got := c.GeneratedCode(); got != GeneratedCodeAnalyze {
		t.Errorf("GeneratedCode() = %v", got)
	}
	if got := len(c.Actions()); got != 2 {
		t.Errorf("len(Actions()) = %d, want 2", got)
	}
	if errs := c.TakeErrors(); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestContextRejectsInvalidRegistrations(t *testing.T) {
	tests := []struct {
		name     string
		register func(c *Context)
		want     error
	}{
		{
			name:     "no kinds",
			register: func(c *Context) { c.RegisterNodeAction(func(*NodeContext) {}) },
			want:     ErrNoKinds,
		},
		{
			name:     "nil action",
			register: func(c *Context) { c.RegisterNodeAction(nil, syntax.KindClassDeclaration) },
			want:     ErrNilAction,
		},
		{
			name:     "invalid kind",
			register: func(c *Context) { c.RegisterNodeAction(func(*NodeContext) {}, syntax.KindInvalid) },
			want:     ErrInvalidKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext("r")
			tt.register(c)
			c.Seal()

			errs := c.TakeErrors()
			if len(errs) != 1 || !errors.Is(errs[0], tt.want) {
				t.Fatalf("errors = %v, want %v", errs, tt.want)
			}
			if len(c.Actions()) != 0 {
				t.Error("invalid registration must not add an action")
			}
		})
	}
}

func TestContextSealed(t *testing.T) {
	c := NewContext("r")
	c.Seal()

	c.RegisterNodeAction(func(*NodeContext) {}, syntax.KindClassDeclaration)
	c.EnableConcurrentExecution()
	c.ConfigureGeneratedCodeAnalysis(GeneratedCodeAnalyze)

	if len(c.Actions()) != 0 || c.Concurrent() || c.GeneratedCode() != GeneratedCodeNone {
		t.Error("sealed context must ignore registrations")
	}
	errs := c.TakeErrors()
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, ErrSealed) {
			t.Errorf("error %v is not ErrSealed", err)
		}
	}
	if len(c.TakeErrors()) != 0 {
		t.Error("TakeErrors() must clear recorded errors")
	}
}

func TestGeneratedCodeFlags(t *testing.T) {
	f := GeneratedCodeAnalyze | GeneratedCodeReportDiagnostics
	if !f.Has(GeneratedCodeAnalyze) || !f.Has(GeneratedCodeReportDiagnostics) {
		t.Error("combined flags should have both bits")
	}
	if GeneratedCodeNone.Has(GeneratedCodeAnalyze) {
		t.Error("none must not have analyze")
	}
	if got := f.String(); got != "analyze|report" {
		t.Errorf("String() = %q", got)
	}
}

func TestNodeContextReportAt(t *testing.T) {
	u := syntax.NewUnit("a.cs", []byte("class A : B { }"), nil)
	node := syntax.NewNode(syntax.KindClassDeclaration, u.Range(), "A")
	desc := &diag.Descriptor{ID: "T1", MessageFormat: "found %s", DefaultSeverity: diag.SeverityWarning}

	var got []diag.Diagnostic
	nc := NewNodeContext(context.Background(), node, u, nil, func(d diag.Diagnostic) {
		got = append(got, d)
	})
	nc.ReportAt(desc, syntax.Span{Start: 10, End: 11}, "B")

	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got))
	}
	d := got[0]
	if d.Message() != "found B" || d.Severity != diag.SeverityWarning {
		t.Errorf("diagnostic = %v", d)
	}
	if d.Location.Start != (syntax.Position{Line: 1, Column: 11}) {
		t.Errorf("start = %v", d.Location.Start)
	}
	if nc.Node() != node || nc.Unit() != u || nc.Semantic() != nil || nc.Canceled() {
		t.Error("accessors returned unexpected values")
	}

	nc.ReportAt(nil, syntax.Span{Start: 10, End: 11})
	if len(got) != 2 || got[1].Descriptor != nil || got[1].Location.Start != d.Location.Start {
		t.Errorf("nil descriptor was not passed on: %v", got)
	}
}
