package syntax

// Flags carries per-node attributes set by the front end.
type Flags uint8

const (
	// FlagGenerated marks a node whose subtree is attributed to a code generator.
	FlagGenerated Flags = 1 << iota
	// FlagMissing marks a node synthesized during error recovery.
	FlagMissing
	// FlagGlobal marks a using directive that applies to every unit.
	FlagGlobal
)

// Node is a tagged-variant syntax node.
//
// Text holds the identifier for declarations and simple or generic names, and
// the full dotted text for qualified names. It is empty for other kinds.
type Node struct {
	Kind     Kind
	Span     Span
	Text     string
	Flags    Flags
	Children []*Node

	parent *Node
}

// NewNode creates a detached node.
func NewNode(kind Kind, span Span, text string) *Node {
	return &Node{Kind: kind, Span: span, Text: text}
}

// Append adds children and links them back to n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// Parent returns the enclosing node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns the direct children of the given kinds, in order.
func (n *Node) ChildrenOf(kinds ...Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Ancestor returns the closest proper ancestor whose kind satisfies match.
func (n *Node) Ancestor(match func(Kind) bool) *Node {
	for p := n.parent; p != nil; p = p.parent {
		if match(p.Kind) {
			return p
		}
	}
	return nil
}

// Generated reports whether n or any ancestor is marked FlagGenerated.
func (n *Node) Generated() bool {
	for p := n; p != nil; p = p.parent {
		if p.Flags&FlagGenerated != 0 {
			return true
		}
	}
	return false
}

// BaseList returns the base list of a type declaration, or nil.
func (n *Node) BaseList() *Node {
	if !n.Kind.IsTypeDeclaration() {
		return nil
	}
	return n.Child(KindBaseList)
}

// BaseTypes returns the base type entries of a type declaration in source order.
func (n *Node) BaseTypes() []*Node {
	bl := n.BaseList()
	if bl == nil {
		return nil
	}
	return bl.ChildrenOf(KindSimpleBaseType, KindPrimaryConstructorBaseType)
}

// TypeName returns the name node of a base type entry or attribute.
func (n *Node) TypeName() *Node {
	for _, c := range n.Children {
		if c.Kind.IsName() {
			return c
		}
	}
	return nil
}

// Segments flattens a name node into its dotted identifier segments, ignoring
// type arguments. An alias-qualified name yields the alias as first segment
// and reports it through the alias result.
func (n *Node) Segments() (alias string, segments []string) {
	switch n.Kind {
	case KindIdentifierName, KindGenericName:
		return "", []string{n.Text}
	case KindQualifiedName:
		var out []string
		for _, c := range n.Children {
			a, segs := c.Segments()
			if a != "" && alias == "" {
				alias = a
			}
			out = append(out, segs...)
		}
		return alias, out
	case KindAliasQualifiedName:
		if len(n.Children) != 2 {
			return "", nil
		}
		_, segs := n.Children[1].Segments()
		return n.Children[0].Text, segs
	}
	return "", nil
}

// Arity returns the number of type arguments of the rightmost segment of a name.
func (n *Node) Arity() int {
	switch n.Kind {
	case KindGenericName:
		if args := n.Child(KindTypeArgumentList); args != nil {
			return len(args.Children)
		}
	case KindQualifiedName, KindAliasQualifiedName:
		if len(n.Children) > 0 {
			return n.Children[len(n.Children)-1].Arity()
		}
	}
	return 0
}
