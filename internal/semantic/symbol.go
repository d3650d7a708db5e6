package semantic

import (
	"strconv"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// SymbolKind classifies a type symbol.
type SymbolKind uint8

const (
	SymbolClass SymbolKind = iota
	SymbolStruct
	SymbolInterface
	SymbolRecord
	SymbolEnum
	SymbolDelegate
)

var symbolKindNames = [...]string{
	SymbolClass:     "class",
	SymbolStruct:    "struct",
	SymbolInterface: "interface",
	SymbolRecord:    "record",
	SymbolEnum:      "enum",
	SymbolDelegate:  "delegate",
}

func (k SymbolKind) String() string {
	if int(k) < len(symbolKindNames) {
		return symbolKindNames[k]
	}

	return "SymbolKind(" + strconv.Itoa(int(k)) + ")"
}

// HasBaseClass reports whether types of this kind inherit from a class.
func (k SymbolKind) HasBaseClass() bool {
	return k == SymbolClass || k == SymbolRecord
}

func symbolKindOf(k syntax.Kind) SymbolKind {
	switch k {
	case syntax.KindStructDeclaration:
		return SymbolStruct
	case syntax.KindInterfaceDeclaration:
		return SymbolInterface
	case syntax.KindRecordDeclaration:
		return SymbolRecord
	case syntax.KindEnumDeclaration:
		return SymbolEnum
	case syntax.KindDelegateDeclaration:
		return SymbolDelegate
	default:
		return SymbolClass
	}
}

// Decl is one source declaration of a symbol. Partial types have several.
type Decl struct {
	Node *syntax.Node
	Unit *syntax.Unit
}

// Symbol is a named type declared in source or provided by a reference.
type Symbol struct {
	Name      string
	Arity     int
	Kind      SymbolKind
	Namespace string  // dotted, empty for the global namespace
	Container *Symbol // enclosing type of a nested type
	Decls     []Decl  // empty for metadata symbols
	Metadata  bool

	fullName string
	members  map[string]*Symbol
	baseRef  Name
}

func newSymbol(name string, arity int, kind SymbolKind, ns string, container *Symbol) *Symbol {
	s := &Symbol{
		Name:      name,
		Arity:     arity,
		Kind:      kind,
		Namespace: ns,
		Container: container,
	}
	s.fullName = s.computeFullName()

	return s
}

func (s *Symbol) computeFullName() string {
	prefix := s.Namespace
	if s.Container != nil {
		prefix = s.Container.FullName()
	}
	name := s.Name
	if s.Arity > 0 {
		name += "`" + strconv.Itoa(s.Arity)
	}
	if prefix == "" {
		return name
	}

	return prefix + "." + name
}

// FullName returns the dotted name with backtick arity suffixes, e.g.
// "Microsoft.VisualStudio.Shell.Package" or "Contoso.Outer`1.Inner".
func (s *Symbol) FullName() string {
	return s.fullName
}

func (s *Symbol) String() string {
	return s.fullName
}

func (s *Symbol) member(key string) *Symbol {
	return s.members[key]
}
