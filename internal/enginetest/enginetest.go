// Package enginetest runs rules over txtar fixtures and checks the
// diagnostics against expectations written in the fixture's comments.
//
// A fixture is a txtar archive. Every .cs file in it is parsed and
// analyzed together. An optional "references" file lists metadata types in
// the format accepted by semantic.ParseReferences, one or more per line;
// without it the default references are used. The namespaces of the
// references are imported implicitly, as the host does by default.
//
// Expectations are comments of the form
//
//	class Foo : Package { } // want "VSSDK001: .*AsyncPackage"
//
// Each quoted string is a regular expression that must match
// "<id>: <message>" of exactly one diagnostic starting on the same line.
// Block comments work too, which lets a line carry both an expectation and
// another directive:
//
//	/* want "AD0004" */ // vssdk:ignore VSSDK001
package enginetest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/txtar"

	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/csharp"
	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/engine"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// Testing is the subset of testing.TB used by Run.
type Testing interface {
	Helper()
	Errorf(format string, args ...any)
}

// TestData returns the absolute path of the testdata directory of the
// calling test's package.
func TestData() string {
	dir, err := filepath.Abs("testdata")
	if err != nil {
		panic(err)
	}

	return dir
}

// Run analyzes dir/<fixture>.txtar with the rules of factories and reports
// every mismatch between diagnostics and expectations through t. It returns
// the engine result, or nil if the fixture could not be run.
func Run(t Testing, dir string, factories []analysis.Factory, fixture string, opts ...engine.Option) *engine.Result {
	t.Helper()

	ar, err := txtar.ParseFile(filepath.Join(dir, fixture+".txtar"))
	if err != nil {
		t.Errorf("reading fixture: %v", err)
		return nil
	}

	return RunArchive(t, ar, factories, opts...)
}

// RunArchive is Run for an archive already in memory.
func RunArchive(t Testing, ar *txtar.Archive, factories []analysis.Factory, opts ...engine.Option) *engine.Result {
	t.Helper()

	var (
		units []*syntax.Unit
		refs  = semantic.DefaultReferences()
	)
	for _, f := range ar.Files {
		switch {
		case f.Name == "references":
			parsed, err := parseReferences(string(f.Data))
			if err != nil {
				t.Errorf("references: %v", err)
				return nil
			}
			refs = parsed
		case strings.HasSuffix(f.Name, ".cs"):
			// Syntax errors are part of what fixtures may exercise.
			u, _ := csharp.Parse(f.Name, f.Data)
			units = append(units, u)
		}
	}

	model, err := semantic.Build(units,
		semantic.WithReferences(refs...),
		semantic.WithImplicitUsings(semantic.ReferenceNamespaces(refs)...))
	if err != nil {
		t.Errorf("building semantic model: %v", err)
		return nil
	}

	e := engine.New(factories, opts...)
	res, err := e.Run(context.Background(), engine.Input{Units: units, Semantics: model})
	if err != nil {
		t.Errorf("running engine: %v", err)
		return nil
	}

	want := make(map[key][]*regexp.Regexp)
	for _, u := range units {
		for k, rxs := range expectations(t, u) {
			want[k] = append(want[k], rxs...)
		}
	}

	all := append(append([]diag.Diagnostic(nil), res.Diagnostics...), res.Meta...)
	diag.Sort(all)
	for _, d := range all {
		check(t, want, d)
	}

	for k, rxs := range want {
		for _, rx := range rxs {
			t.Errorf("%s:%d: no diagnostic was reported matching %q", k.path, k.line, rx)
		}
	}

	return res
}

type key struct {
	path string
	line int
}

func check(t Testing, want map[key][]*regexp.Regexp, d diag.Diagnostic) {
	t.Helper()

	text := d.ID() + ": " + d.Message()
	if d.Location.Path == "" {
		t.Errorf("unexpected diagnostic without location: %s", text)
		return
	}

	k := key{path: d.Location.Path, line: d.Location.Start.Line}
	for i, rx := range want[k] {
		if rx.MatchString(text) {
			want[k] = append(want[k][:i], want[k][i+1:]...)
			if len(want[k]) == 0 {
				delete(want, k)
			}

			return
		}
	}
	t.Errorf("%s: unexpected diagnostic: %s", d.Location, text)
}

func parseReferences(data string) ([]semantic.Reference, error) {
	var refs []semantic.Reference
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := semantic.ParseReferences(line)
		if err != nil {
			return nil, err
		}
		refs = append(refs, parsed...)
	}

	return refs, nil
}

// expectations collects the want comments of u by line.
func expectations(t Testing, u *syntax.Unit) map[key][]*regexp.Regexp {
	t.Helper()

	out := make(map[key][]*regexp.Regexp)
	for _, tr := range u.Trivia {
		var text string
		switch tr.Kind {
		case syntax.TriviaLineComment:
			text = strings.TrimPrefix(tr.Text, "//")
		case syntax.TriviaBlockComment:
			text = strings.TrimSuffix(strings.TrimPrefix(tr.Text, "/*"), "*/")
		default:
			continue
		}
		text = strings.TrimSpace(text)
		rest, ok := strings.CutPrefix(text, "want ")
		if !ok {
			continue
		}

		pos := u.Position(tr.Span.Start)
		patterns, err := parsePatterns(rest)
		if err != nil {
			t.Errorf("%s:%s: malformed want comment: %v", u.Path, pos, err)
			continue
		}
		k := key{path: u.Path, line: pos.Line}
		for _, p := range patterns {
			rx, err := regexp.Compile(p)
			if err != nil {
				t.Errorf("%s:%s: %v", u.Path, pos, err)
				continue
			}
			out[k] = append(out[k], rx)
		}
	}

	return out
}

// parsePatterns splits a sequence of Go string literals.
func parsePatterns(s string) ([]string, error) {
	var out []string
	for s = strings.TrimSpace(s); s != ""; s = strings.TrimSpace(s) {
		end := -1
		switch s[0] {
		case '`':
			end = strings.IndexByte(s[1:], '`') + 1
		case '"':
			for i := 1; i < len(s); i++ {
				if s[i] == '\\' {
					i++
					continue
				}
				if s[i] == '"' {
					end = i
					break
				}
			}
		default:
			return nil, fmt.Errorf("expected string literal at %q", s)
		}
		if end <= 0 {
			return nil, fmt.Errorf("unterminated string literal %q", s)
		}
		p, err := strconv.Unquote(s[:end+1])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
		s = s[end+1:]
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no patterns")
	}

	return out, nil
}
