package semantic

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// level is one scope visited by name lookup, innermost first.
type level struct {
	typ *Symbol
	ns  *namespace

	// usings is the compilation unit or namespace declaration whose using
	// directives apply at this level; nil for implied outer namespaces.
	usings *syntax.Node
}

type importSet struct {
	aliases    map[string]entity
	namespaces []*namespace
}

var predefined = map[string]string{
	"object":  "System.Object",
	"string":  "System.String",
	"bool":    "System.Boolean",
	"byte":    "System.Byte",
	"sbyte":   "System.SByte",
	"char":    "System.Char",
	"decimal": "System.Decimal",
	"double":  "System.Double",
	"float":   "System.Single",
	"int":     "System.Int32",
	"uint":    "System.UInt32",
	"long":    "System.Int64",
	"ulong":   "System.UInt64",
	"short":   "System.Int16",
	"ushort":  "System.UInt16",
	"nint":    "System.IntPtr",
	"nuint":   "System.UIntPtr",
}

func (m *Model) levels(n *syntax.Node) []level {
	var out []level
	outside := false
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch {
		case p.Kind == syntax.KindBaseList, p.Kind == syntax.KindAttributeList:
			outside = true
		case p.Kind.IsTypeDeclaration():
			if outside {
				outside = false
				continue
			}
			if sym, ok := m.decls[p]; ok {
				out = append(out, level{typ: sym})
			}
		case p.Kind == syntax.KindNamespaceDeclaration:
			ns, ok := m.nsDecls[p]
			if !ok {
				continue
			}
			out = append(out, level{ns: ns, usings: p})
			// namespace A.B { } also puts A in scope.
			for i := strings.Count(p.Text, "."); i > 0 && ns.parent != nil; i-- {
				ns = ns.parent
				out = append(out, level{ns: ns})
			}
		case p.Kind == syntax.KindCompilationUnit:
			out = append(out, level{ns: m.global, usings: p})
		}
	}
	if len(out) == 0 || out[len(out)-1].ns != m.global {
		out = append(out, level{ns: m.global})
	}

	return out
}

func (m *Model) resolveName(n *syntax.Node, levels []level) (entity, error) {
	switch n.Kind {
	case syntax.KindIdentifierName, syntax.KindGenericName:
		if n.Text == "" || n.Flags&syntax.FlagMissing != 0 {
			return entity{}, fmt.Errorf("%w: missing name", ErrUnresolved)
		}
		if full, ok := predefined[n.Text]; ok && n.Kind == syntax.KindIdentifierName {
			sym := m.Lookup(MustParseName(full))
			if sym == nil {
				return entity{}, fmt.Errorf("%w: %s (%s)", ErrUnresolved, n.Text, full)
			}

			return entity{sym: sym}, nil
		}

		return m.lookupSimple(normalize(n.Text), n.Arity(), levels)
	case syntax.KindQualifiedName:
		if len(n.Children) != 2 {
			return entity{}, fmt.Errorf("%w: malformed name %s", ErrUnresolved, n.Text)
		}
		left, err := m.resolveName(n.Children[0], levels)
		if err != nil {
			return entity{}, err
		}

		return memberOf(left, n.Children[1], n.Text)
	case syntax.KindAliasQualifiedName:
		if len(n.Children) != 2 {
			return entity{}, fmt.Errorf("%w: malformed name %s", ErrUnresolved, n.Text)
		}
		left, err := m.resolveAlias(normalize(n.Children[0].Text), levels)
		if err != nil {
			return entity{}, err
		}

		return memberOf(left, n.Children[1], n.Text)
	}

	return entity{}, fmt.Errorf("%w: %s", ErrNotTypeReference, n.Kind)
}

func memberOf(left entity, right *syntax.Node, display string) (entity, error) {
	name := normalize(right.Text)
	arity := right.Arity()

	if left.sym != nil {
		if s := left.sym.member(typeKey(name, arity)); s != nil {
			return entity{sym: s}, nil
		}
	} else if left.ns != nil {
		if e, ok := left.ns.member(name, arity); ok {
			return e, nil
		}
	}

	return entity{}, fmt.Errorf("%w: %s", ErrUnresolved, display)
}

func (m *Model) lookupSimple(name string, arity int, levels []level) (entity, error) {
	key := typeKey(name, arity)

	for i, lv := range levels {
		if lv.typ != nil {
			if s := lv.typ.member(key); s != nil {
				return entity{sym: s}, nil
			}
			continue
		}

		if e, ok := lv.ns.member(name, arity); ok {
			return e, nil
		}
		if lv.usings == nil {
			continue
		}

		imp := m.importsAt(levels, i)
		if arity == 0 {
			if e, ok := imp.aliases[name]; ok {
				return e, nil
			}
		}

		var found *Symbol
		for _, ns := range imp.namespaces {
			s, ok := ns.types[key]
			if !ok || s == found {
				continue
			}
			if found != nil {
				return entity{}, fmt.Errorf("%w: %s could be %s or %s", ErrAmbiguous, name, found, s)
			}
			found = s
		}
		if found != nil {
			return entity{sym: found}, nil
		}
	}

	return entity{}, fmt.Errorf("%w: %s", ErrUnresolved, typeKey(name, arity))
}

func (m *Model) resolveAlias(alias string, levels []level) (entity, error) {
	if alias == "global" {
		return entity{ns: m.global}, nil
	}

	for i, lv := range levels {
		if lv.usings == nil {
			continue
		}
		if e, ok := m.importsAt(levels, i).aliases[alias]; ok {
			return e, nil
		}
	}

	return entity{}, fmt.Errorf("%w: alias %s", ErrUnresolved, alias)
}

// importsAt returns the resolved using directives of levels[i]. Their
// targets are resolved in the enclosing scope, ignoring directives of the
// same level.
func (m *Model) importsAt(levels []level, i int) *importSet {
	container := levels[i].usings

	m.mu.Lock()
	set, ok := m.imports[container]
	m.mu.Unlock()
	if ok {
		return set
	}

	outer := append([]level{{ns: levels[i].ns}}, levels[i+1:]...)
	set = &importSet{aliases: make(map[string]entity)}
	root := container.Kind == syntax.KindCompilationUnit
	for _, c := range container.ChildrenOf(syntax.KindUsingDirective, syntax.KindExternAlias) {
		if root && c.Flags&syntax.FlagGlobal != 0 {
			continue
		}
		m.addImport(set, c, outer)
	}
	if root {
		global := m.globalImportSet()
		for name, e := range global.aliases {
			if _, ok := set.aliases[name]; !ok {
				set.aliases[name] = e
			}
		}
		set.namespaces = append(set.namespaces, global.namespaces...)
	}

	// Concurrent builders produce equal sets; the first stored one wins.
	m.mu.Lock()
	if prev, ok := m.imports[container]; ok {
		set = prev
	} else {
		m.imports[container] = set
	}
	m.mu.Unlock()

	return set
}

func (m *Model) globalImportSet() *importSet {
	m.globalOnce.Do(func() {
		set := &importSet{aliases: make(map[string]entity)}
		outer := []level{{ns: m.global}}
		for _, u := range m.units {
			for _, c := range u.Root.ChildrenOf(syntax.KindUsingDirective) {
				if c.Flags&syntax.FlagGlobal != 0 {
					m.addImport(set, c, outer)
				}
			}
		}
		for _, n := range m.implicit {
			e, ok := m.namespaceNamed(n)
			if !ok {
				m.logger.Debug("implicit using does not resolve", zap.Stringer("namespace", n))
				continue
			}
			if !slices.Contains(set.namespaces, e) {
				set.namespaces = append(set.namespaces, e)
			}
		}
		m.globalImports = set
	})

	return m.globalImports
}

func (m *Model) namespaceNamed(n Name) (*namespace, bool) {
	ns := m.global
	for _, seg := range n.Segments() {
		c, ok := ns.children[normalize(seg)]
		if !ok {
			return nil, false
		}
		ns = c
	}

	return ns, ns != m.global
}

func (m *Model) addImport(set *importSet, directive *syntax.Node, outer []level) {
	if directive.Kind == syntax.KindExternAlias {
		// Every referenced assembly shares the global namespace.
		set.aliases[normalize(directive.Text)] = entity{ns: m.global}

		return
	}
	if directive.Text == "static" {
		return
	}

	target := directive.TypeName()
	if target == nil {
		return
	}
	e, err := m.resolveName(target, outer)
	if err != nil {
		m.logger.Debug("using directive does not resolve", zap.String("target", target.Text), zap.Error(err))

		return
	}

	if directive.Text != "" {
		set.aliases[normalize(directive.Text)] = e

		return
	}
	if e.ns != nil {
		set.namespaces = append(set.namespaces, e.ns)
	}
}
