package semantic

import (
	"fmt"
	"slices"
	"strings"
)

// Reference declares a type provided by a compiled assembly.
// Format: "Namespace.Type" or "Namespace.Type:Namespace.Base".
type Reference struct {
	Type Name
	Base Name // zero means System.Object
}

func (r Reference) String() string {
	if r.Base.IsZero() {
		return r.Type.FullName()
	}

	return r.Type.FullName() + ":" + r.Base.FullName()
}

var defaultReferences = []string{
	"System.Object",
	"Microsoft.VisualStudio.Shell.Package:System.Object",
	"Microsoft.VisualStudio.Shell.AsyncPackage:Microsoft.VisualStudio.Shell.Package",
	"Community.VisualStudio.Toolkit.ToolkitPackage:Microsoft.VisualStudio.Shell.AsyncPackage",
}

// DefaultReferences returns the metadata types every model knows about
// unless configured otherwise: System.Object and the Visual Studio package
// base classes.
func DefaultReferences() []Reference {
	refs, err := ParseReferences(strings.Join(defaultReferences, ","))
	if err != nil {
		panic(err)
	}

	return refs
}

// ReferenceNamespaces returns the distinct namespaces declaring refs,
// sorted. Types in the global namespace contribute nothing.
func ReferenceNamespaces(refs []Reference) []string {
	var out []string
	for _, r := range refs {
		if r.Type.Namespace != "" {
			out = append(out, r.Type.Namespace)
		}
	}
	slices.Sort(out)

	return slices.Compact(out)
}

// ParseReferences parses a comma-separated list of references.
func ParseReferences(s string) ([]Reference, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	refs := make([]Reference, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		typ, base, _ := strings.Cut(strings.ReplaceAll(part, "global::", ""), ":")

		ref := Reference{}
		var err error
		if ref.Type, err = ParseName(typ); err != nil {
			return nil, fmt.Errorf("reference %q: %w", part, err)
		}
		if strings.TrimSpace(base) != "" {
			if ref.Base, err = ParseName(base); err != nil {
				return nil, fmt.Errorf("reference %q: %w", part, err)
			}
		}

		refs = append(refs, ref)
	}

	return refs, nil
}
