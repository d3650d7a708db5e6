package csharp

import (
	"errors"
	"strings"
	"testing"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

func mustParse(t *testing.T, path, src string) *syntax.Unit {
	t.Helper()
	u, err := Parse(path, []byte(src))
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", path, err)
	}
	return u
}

func collect(u *syntax.Unit, kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	syntax.Inspect(u.Root, func(n *syntax.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestParseClassWithBase(t *testing.T) {
	src := "class Foo : Package { }"
	u := mustParse(t, "foo.cs", src)

	classes := collect(u, syntax.KindClassDeclaration)
	if len(classes) != 1 {
		t.Fatalf("got %d classes, want 1", len(classes))
	}
	class := classes[0]
	if class.Text != "Foo" {
		t.Errorf("class name = %q, want Foo", class.Text)
	}
	if got := u.Slice(class.Span); got != src {
		t.Errorf("class span covers %q", got)
	}

	bases := class.BaseTypes()
	if len(bases) != 1 {
		t.Fatalf("got %d base types, want 1", len(bases))
	}
	if got := u.Slice(bases[0].Span); got != "Package" {
		t.Errorf("base type span covers %q, want %q", got, "Package")
	}
	if pos := u.Position(bases[0].Span.Start); pos != (syntax.Position{Line: 1, Column: 13}) {
		t.Errorf("base type position = %v", pos)
	}
}

func TestParseClassWithoutBase(t *testing.T) {
	u := mustParse(t, "foo.cs", "class Foo { }")
	class := collect(u, syntax.KindClassDeclaration)[0]
	if class.BaseList() != nil {
		t.Error("expected no base list")
	}
	if len(class.BaseTypes()) != 0 {
		t.Error("expected no base types")
	}
}

func TestParseNamespacesAndUsings(t *testing.T) {
	src := `extern alias Shell;
global using System;
using Microsoft.VisualStudio.Shell;
using static System.Math;
using Pkg = Microsoft.VisualStudio.Shell.Package;

namespace Contoso.Extension
{
    namespace Inner
    {
        public sealed partial class MyPackage : global::Microsoft.VisualStudio.Shell.AsyncPackage, IDisposable
        {
            public void Dispose() { }
        }
    }
}
`
	u := mustParse(t, "pkg.cs", src)

	if got := len(collect(u, syntax.KindExternAlias)); got != 1 {
		t.Errorf("extern aliases = %d, want 1", got)
	}

	usings := collect(u, syntax.KindUsingDirective)
	if len(usings) != 4 {
		t.Fatalf("usings = %d, want 4", len(usings))
	}
	if usings[0].Flags&syntax.FlagGlobal == 0 {
		t.Error("first using should be global")
	}
	if usings[2].Text != "static" {
		t.Errorf("using static Text = %q", usings[2].Text)
	}
	if usings[3].Text != "Pkg" {
		t.Errorf("alias = %q, want Pkg", usings[3].Text)
	}

	nss := collect(u, syntax.KindNamespaceDeclaration)
	if len(nss) != 2 || nss[0].Text != "Contoso.Extension" || nss[1].Text != "Inner" {
		t.Fatalf("namespaces = %v", nss)
	}

	class := collect(u, syntax.KindClassDeclaration)[0]
	if class.Parent() != nss[1] {
		t.Error("class should be nested in the inner namespace")
	}
	bases := class.BaseTypes()
	if len(bases) != 2 {
		t.Fatalf("base types = %d, want 2", len(bases))
	}
	name := bases[0].TypeName()
	alias, segs := name.Segments()
	if alias != "global" || strings.Join(segs, ".") != "Microsoft.VisualStudio.Shell.AsyncPackage" {
		t.Errorf("Segments() = %q, %v", alias, segs)
	}
	if got := u.Slice(bases[0].Span); got != "global::Microsoft.VisualStudio.Shell.AsyncPackage" {
		t.Errorf("base span covers %q", got)
	}
	if len(collect(u, syntax.KindMember)) != 1 {
		t.Error("expected one opaque member")
	}
}

func TestParseFileScopedNamespace(t *testing.T) {
	src := `namespace Contoso;

class A : B { }
class B { }
`
	u := mustParse(t, "fs.cs", src)
	ns := collect(u, syntax.KindNamespaceDeclaration)
	if len(ns) != 1 {
		t.Fatalf("namespaces = %d", len(ns))
	}
	if got := len(ns[0].ChildrenOf(syntax.KindClassDeclaration)); got != 2 {
		t.Errorf("classes inside file-scoped namespace = %d, want 2", got)
	}
}

func TestParseMembersAndNestedTypes(t *testing.T) {
	src := `public class Outer<T> : List<Dictionary<string, int>>, IComparable<T> where T : class, new()
{
    private int field = 1;
    public int Prop { get; set; } = 42;
    public string Name => $"{field} {"nested"}";
    public Outer() : base() { var s = @"verbatim "" quote"; }
    public event EventHandler Changed;
    private Action act = () => { };

    [GeneratedCode("tool", "1.0")]
    internal class Nested : Package { }

    public record Point(int X, int Y) : Base(X);
    public record struct Pair(int A, int B);
    public enum Color : byte { Red, Green }
    public delegate void Handler<TArg>(TArg arg);
    public interface IThing : IDisposable { void Do(); }
}
`
	u := mustParse(t, "outer.cs", src)

	outer := collect(u, syntax.KindClassDeclaration)[0]
	if outer.Child(syntax.KindTypeParameterList) == nil {
		t.Error("missing type parameter list")
	}
	bases := outer.BaseTypes()
	if len(bases) != 2 {
		t.Fatalf("outer base types = %d, want 2", len(bases))
	}
	if got := bases[0].TypeName().Arity(); got != 1 {
		t.Errorf("List<...> arity = %d, want 1", got)
	}

	if got := len(outer.ChildrenOf(syntax.KindMember)); got != 6 {
		t.Errorf("opaque members = %d, want 6", got)
	}

	nested := outer.ChildrenOf(syntax.KindClassDeclaration)
	if len(nested) != 1 || nested[0].Text != "Nested" {
		t.Fatalf("nested classes = %v", nested)
	}
	if !nested[0].Generated() {
		t.Error("[GeneratedCode] class should be flagged generated")
	}
	if outer.Generated() {
		t.Error("outer class must not be flagged generated")
	}

	records := outer.ChildrenOf(syntax.KindRecordDeclaration)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if bt := records[0].BaseTypes(); len(bt) != 1 || bt[0].Kind != syntax.KindPrimaryConstructorBaseType {
		t.Errorf("record base = %v", bt)
	}
	if records[0].Child(syntax.KindParameterList) == nil {
		t.Error("record should keep its parameter list")
	}

	enums := outer.ChildrenOf(syntax.KindEnumDeclaration)
	if len(enums) != 1 || len(enums[0].BaseTypes()) != 1 {
		t.Errorf("enum with underlying type not parsed: %v", enums)
	}

	delegates := outer.ChildrenOf(syntax.KindDelegateDeclaration)
	if len(delegates) != 1 || delegates[0].Text != "Handler" {
		t.Errorf("delegate = %v", delegates)
	}

	ifaces := outer.ChildrenOf(syntax.KindInterfaceDeclaration)
	if len(ifaces) != 1 || ifaces[0].Text != "IThing" {
		t.Errorf("interface = %v", ifaces)
	}
}

func TestParseTrivia(t *testing.T) {
	src := `// leading comment
#pragma warning disable VSSDK001
/* block */
class Foo : Package { } // trailing
#pragma warning restore VSSDK001
`
	u := mustParse(t, "t.cs", src)

	var kinds []syntax.TriviaKind
	for _, tr := range u.Trivia {
		kinds = append(kinds, tr.Kind)
	}
	want := []syntax.TriviaKind{
		syntax.TriviaLineComment, syntax.TriviaDirective, syntax.TriviaBlockComment,
		syntax.TriviaLineComment, syntax.TriviaDirective,
	}
	if len(kinds) != len(want) {
		t.Fatalf("trivia kinds = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("trivia[%d] = %v, want %v", i, kinds[i], want[i])
		}
	}
	if u.Trivia[1].Text != "#pragma warning disable VSSDK001" {
		t.Errorf("directive text = %q", u.Trivia[1].Text)
	}
}

func TestParseRecoversFromErrors(t *testing.T) {
	src := `class Broken : { }
class Fine : Package { }
`
	u, err := Parse("broken.cs", []byte(src))
	if err == nil {
		t.Fatal("expected a syntax error")
	}
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error %v is not a *SyntaxError", err)
	}
	if se.Pos.Line != 1 {
		t.Errorf("error line = %d, want 1", se.Pos.Line)
	}

	var names []string
	for _, c := range collect(u, syntax.KindClassDeclaration) {
		names = append(names, c.Text)
	}
	if strings.Join(names, ",") != "Broken,Fine" {
		t.Errorf("classes = %v", names)
	}
}

func TestParseUnterminatedString(t *testing.T) {
	_, err := Parse("s.cs", []byte("class A { string s = \"oops\n; }"))
	if err == nil || !strings.Contains(err.Error(), "unterminated string literal") {
		t.Errorf("error = %v", err)
	}
}
