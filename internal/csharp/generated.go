package csharp

import (
	"path/filepath"
	"strings"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

var generatedSuffixes = []string{
	".designer.cs",
	".generated.cs",
	".g.cs",
	".g.i.cs",
}

const generatedPrefix = "TemporaryGeneratedFile_"

// IsGenerated reports whether a unit is machine-generated: either its file
// name follows a generator convention or the comments before its first
// token carry an <auto-generated> marker.
func IsGenerated(u *syntax.Unit) bool {
	return IsGeneratedPath(u.Path) || hasGeneratedHeader(u)
}

// IsGeneratedPath reports whether a file name follows a generator naming convention.
func IsGeneratedPath(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, generatedPrefix) {
		return true
	}
	lower := strings.ToLower(base)
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func hasGeneratedHeader(u *syntax.Unit) bool {
	firstToken := u.Range().End
	if u.Root != nil {
		for _, c := range u.Root.Children {
			if c.Span.Start < firstToken {
				firstToken = c.Span.Start
			}
		}
	}
	for _, tr := range u.Trivia {
		if tr.Span.Start >= firstToken {
			break
		}
		if tr.Kind == syntax.TriviaDirective {
			continue
		}
		lower := strings.ToLower(tr.Text)
		if strings.Contains(lower, "<autogenerated") || strings.Contains(lower, "<auto-generated") {
			return true
		}
	}
	return false
}

// hasGeneratedCodeAttribute reports whether an attribute list applies
// System.CodeDom.Compiler.GeneratedCodeAttribute.
func hasGeneratedCodeAttribute(list *syntax.Node) bool {
	for _, attr := range list.ChildrenOf(syntax.KindAttribute) {
		name := attr.TypeName()
		if name == nil {
			continue
		}
		_, segs := name.Segments()
		if len(segs) == 0 {
			continue
		}
		switch segs[len(segs)-1] {
		case "GeneratedCode", "GeneratedCodeAttribute":
			return true
		}
	}
	return false
}
