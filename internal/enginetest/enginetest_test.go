package enginetest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/engine"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

type recorder struct {
	errs []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

var classDesc = &diag.Descriptor{
	ID:               "TST001",
	Title:            "Class",
	MessageFormat:    "class %s",
	Category:         "Test",
	DefaultSeverity:  diag.SeverityInfo,
	EnabledByDefault: true,
}

type classRule struct{}

func (classRule) Name() string { return "Classes" }

func (classRule) SupportedDiagnostics() []*diag.Descriptor { return []*diag.Descriptor{classDesc} }

func (classRule) Initialize(ctx *analysis.Context) {
	ctx.RegisterNodeAction(func(nc *analysis.NodeContext) {
		nc.ReportAt(classDesc, nc.Node().Span, nc.Node().Text)
	}, syntax.KindClassDeclaration)
}

var factories = []analysis.Factory{func() analysis.Rule { return classRule{} }}

func TestRunArchive(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		opts    []engine.Option
		want    []string // substrings of reported errors, in order
	}{
		{
			name: "all expectations met",
			archive: `-- a.cs --
class A { } // want "TST001: class A"
struct S { }
class B { class C { } } // want "class B" ` + "`class C`" + `
`,
		},
		{
			name: "missing diagnostic",
			archive: `-- a.cs --
struct S { } // want "TST001"
`,
			want: []string{`a.cs:1: no diagnostic was reported matching "TST001"`},
		},
		{
			name: "unexpected diagnostic",
			archive: `-- a.cs --
class A { }
`,
			want: []string{"a.cs:1:1: unexpected diagnostic: TST001: class A"},
		},
		{
			name: "pattern does not match",
			archive: `-- a.cs --
class A { } // want "class B"
`,
			want: []string{"unexpected diagnostic: TST001: class A", `no diagnostic was reported matching "class B"`},
		},
		{
			name: "malformed want comment",
			archive: `-- a.cs --
class A { } // want class A
`,
			want: []string{"malformed want comment", "unexpected diagnostic"},
		},
		{
			name: "block comment carries expectation next to a suppression",
			archive: `-- a.cs --
/* want "AD0004: Suppression of TST001" */ // vssdk:ignore TST001

class A { } // want "class A"
`,
			opts: []engine.Option{engine.WithSuppressions(true)},
		},
		{
			name: "several files and references",
			archive: `-- references --
# comment
Lib.Base
-- a.cs --
class A : Lib.Base { } // want "class A"
-- b.cs --
class B { } // want "class B"
-- notes.txt --
ignored
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			res := RunArchive(rec, txtar.Parse([]byte(tt.archive)), factories, tt.opts...)
			if res == nil {
				t.Fatalf("RunArchive() = nil, errors: %v", rec.errs)
			}

			if len(rec.errs) != len(tt.want) {
				t.Fatalf("got errors %q, want %d", rec.errs, len(tt.want))
			}
			for i, w := range tt.want {
				if !strings.Contains(rec.errs[i], w) {
					t.Errorf("error %d = %q, want it to contain %q", i, rec.errs[i], w)
				}
			}
		})
	}
}

func TestRunArchiveBadReferences(t *testing.T) {
	rec := &recorder{}
	ar := txtar.Parse([]byte("-- references --\nnot a name!\n-- a.cs --\nclass A { }\n"))
	if res := RunArchive(rec, ar, factories); res != nil {
		t.Errorf("RunArchive() = %v, want nil", res)
	}
	if len(rec.errs) != 1 || !strings.HasPrefix(rec.errs[0], "references:") {
		t.Errorf("errors = %q", rec.errs)
	}
}

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: `"a"`, want: []string{"a"}},
		{in: `"a" "b\"c"`, want: []string{"a", `b"c`}},
		{in: "`raw\\d` \"x\"", want: []string{`raw\d`, "x"}},
		{in: `"a\\.b"`, want: []string{`a\.b`}},
		{in: ``, wantErr: true},
		{in: `a`, wantErr: true},
		{in: `"open`, wantErr: true},
		{in: "`open", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePatterns(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePatterns(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parsePatterns(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}
