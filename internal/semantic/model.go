package semantic

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

var (
	// ErrUnresolved is returned when a name does not denote any known type.
	ErrUnresolved = errors.New("unresolved type reference")
	// ErrAmbiguous is returned when using directives import several types of the same name.
	ErrAmbiguous = errors.New("ambiguous type reference")
	// ErrCycle is returned when a base type chain loops back on itself.
	ErrCycle = errors.New("cyclic base type chain")
	// ErrNotTypeReference is returned for nodes that cannot denote a type.
	ErrNotTypeReference = errors.New("not a type reference")
)

// Provider hands out resolvers scoped to one unit.
type Provider interface {
	ForUnit(u *syntax.Unit) Resolver
}

// Resolver answers type queries for nodes of one unit.
type Resolver interface {
	// SymbolOf resolves a type declaration, a base type entry, an
	// attribute or a type name node.
	SymbolOf(ctx context.Context, n *syntax.Node) (*Symbol, error)
	// BaseOf returns the base class of sym, or nil if it has none.
	BaseOf(ctx context.Context, sym *Symbol) (*Symbol, error)
}

// Fingerprinter is implemented by providers whose answers can be summarized
// by a hash. Cached analysis results keyed by it stay valid as long as the
// fingerprint does not change.
type Fingerprinter interface {
	Fingerprint() uint64
}

// DefaultCacheSize bounds each resolution cache of a Model.
const DefaultCacheSize = 4096

var objectName = MustParseName("System.Object")

type buildConfig struct {
	refs      []Reference
	implicit  []string
	cacheSize int
	logger    *zap.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

// WithReferences adds metadata types. Later entries for the same type
// replace the base of earlier ones.
func WithReferences(refs ...Reference) BuildOption {
	return func(c *buildConfig) {
		c.refs = append(c.refs, refs...)
	}
}

// WithImplicitUsings imports namespaces into every unit as if a global
// using directive named each of them. Namespaces nothing declares are
// ignored.
func WithImplicitUsings(namespaces ...string) BuildOption {
	return func(c *buildConfig) {
		c.implicit = append(c.implicit, namespaces...)
	}
}

// WithCacheSize sets the size of the resolution caches.
func WithCacheSize(n int) BuildOption {
	return func(c *buildConfig) {
		c.cacheSize = n
	}
}

// WithLogger sets the logger used for build diagnostics.
func WithLogger(l *zap.Logger) BuildOption {
	return func(c *buildConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type namespace struct {
	fullName string
	parent   *namespace
	children map[string]*namespace
	types    map[string]*Symbol
}

func newNamespace(fullName string, parent *namespace) *namespace {
	return &namespace{
		fullName: fullName,
		parent:   parent,
		children: make(map[string]*namespace),
		types:    make(map[string]*Symbol),
	}
}

func (ns *namespace) child(seg string) *namespace {
	if c, ok := ns.children[seg]; ok {
		return c
	}
	full := seg
	if ns.fullName != "" {
		full = ns.fullName + "." + seg
	}
	c := newNamespace(full, ns)
	ns.children[seg] = c

	return c
}

// member returns the type or, for arity 0, the nested namespace called name.
func (ns *namespace) member(name string, arity int) (entity, bool) {
	if s, ok := ns.types[typeKey(name, arity)]; ok {
		return entity{sym: s}, true
	}
	if arity == 0 {
		if c, ok := ns.children[name]; ok {
			return entity{ns: c}, true
		}
	}

	return entity{}, false
}

// entity is what a namespace-or-type name denotes.
type entity struct {
	ns  *namespace
	sym *Symbol
}

type resolution struct {
	sym *Symbol
	err error
}

// Model is the declaration model of a set of units plus metadata references.
type Model struct {
	global      *namespace
	units       []*syntax.Unit
	symbols     []*Symbol
	decls       map[*syntax.Node]*Symbol
	nsDecls     map[*syntax.Node]*namespace
	implicit    []Name
	fingerprint uint64
	logger      *zap.Logger

	names *lru.Cache[*syntax.Node, resolution]
	bases *lru.Cache[*Symbol, resolution]

	mu            sync.Mutex
	imports       map[*syntax.Node]*importSet
	globalOnce    sync.Once
	globalImports *importSet
}

// Build creates the model of units. Units that failed to parse may be
// passed; whatever declarations they contain are used.
func Build(units []*syntax.Unit, opts ...BuildOption) (*Model, error) {
	cfg := &buildConfig{cacheSize: DefaultCacheSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	names, err := lru.New[*syntax.Node, resolution](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating name cache: %w", err)
	}
	bases, err := lru.New[*Symbol, resolution](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating base cache: %w", err)
	}

	m := &Model{
		global:  newNamespace("", nil),
		decls:   make(map[*syntax.Node]*Symbol),
		nsDecls: make(map[*syntax.Node]*namespace),
		logger:  cfg.logger,
		names:   names,
		bases:   bases,
		imports: make(map[*syntax.Node]*importSet),
	}

	for _, u := range units {
		if u == nil || u.Root == nil {
			continue
		}
		m.units = append(m.units, u)
		m.declare(m.global, nil, u.Root, u)
	}
	m.addReferences(cfg.refs)
	for _, ns := range cfg.implicit {
		n, err := ParseName(ns)
		if err == nil && n.Arity > 0 {
			err = errors.New("namespaces take no type parameters")
		}
		if err != nil {
			return nil, fmt.Errorf("implicit using %q: %w", ns, err)
		}
		m.implicit = append(m.implicit, n)
	}
	m.fingerprint = m.computeFingerprint()

	m.logger.Debug("semantic model built",
		zap.Int("units", len(m.units)),
		zap.Int("symbols", len(m.symbols)),
		zap.Int("references", len(cfg.refs)),
	)

	return m, nil
}

func normalize(s string) string {
	return norm.NFC.String(s)
}

func typeKey(name string, arity int) string {
	if arity == 0 {
		return name
	}

	return name + "`" + strconv.Itoa(arity)
}

func (m *Model) declare(ns *namespace, container *Symbol, n *syntax.Node, u *syntax.Unit) {
	for _, c := range n.Children {
		switch {
		case c.Kind == syntax.KindNamespaceDeclaration:
			if container != nil || c.Text == "" {
				continue
			}
			inner := ns
			for _, seg := range strings.Split(c.Text, ".") {
				inner = inner.child(normalize(seg))
			}
			m.nsDecls[c] = inner
			m.declare(inner, nil, c, u)
		case c.Kind.IsTypeDeclaration():
			if c.Text == "" {
				continue
			}
			sym := m.declareType(ns, container, c, u)
			m.declare(ns, sym, c, u)
		}
	}
}

func (m *Model) declareType(ns *namespace, container *Symbol, n *syntax.Node, u *syntax.Unit) *Symbol {
	name := normalize(n.Text)
	arity := declaredArity(n, u)
	key := typeKey(name, arity)

	table := ns.types
	if container != nil {
		if container.members == nil {
			container.members = make(map[string]*Symbol)
		}
		table = container.members
	}

	sym, ok := table[key]
	if !ok {
		sym = newSymbol(name, arity, symbolKindOf(n.Kind), ns.fullName, container)
		table[key] = sym
		m.symbols = append(m.symbols, sym)
	}
	sym.Decls = append(sym.Decls, Decl{Node: n, Unit: u})
	m.decls[n] = sym

	return sym
}

// declaredArity counts the type parameters of a declaration.
func declaredArity(n *syntax.Node, u *syntax.Unit) int {
	tp := n.Child(syntax.KindTypeParameterList)
	if tp == nil {
		return 0
	}

	depth, arity := 0, 1
	for _, r := range u.Slice(tp.Span) {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 1 {
				arity++
			}
		}
	}

	return arity
}

func (m *Model) addReferences(refs []Reference) {
	for _, ref := range refs {
		ns := m.global
		if ref.Type.Namespace != "" {
			for _, seg := range strings.Split(ref.Type.Namespace, ".") {
				ns = ns.child(normalize(seg))
			}
		}

		name := normalize(ref.Type.Type)
		key := typeKey(name, ref.Type.Arity)
		if existing, ok := ns.types[key]; ok {
			if existing.Metadata {
				existing.baseRef = ref.Base
				continue
			}
			m.logger.Debug("source declaration hides reference", zap.Stringer("type", ref.Type))
			continue
		}

		sym := newSymbol(name, ref.Type.Arity, SymbolClass, ns.fullName, nil)
		sym.Metadata = true
		sym.baseRef = ref.Base
		ns.types[key] = sym
		m.symbols = append(m.symbols, sym)
	}
}

func (m *Model) computeFingerprint() uint64 {
	var entries []string
	for _, sym := range m.symbols {
		var b strings.Builder
		b.WriteString(sym.Kind.String())
		b.WriteByte(' ')
		b.WriteString(sym.FullName())
		if sym.Metadata {
			b.WriteString(" : ")
			b.WriteString(sym.baseRef.FullName())
		}
		for _, d := range sym.Decls {
			b.WriteString("\x00")
			b.WriteString(d.Unit.Path)
			if bl := d.Node.BaseList(); bl != nil {
				b.WriteString(d.Unit.Slice(bl.Span))
			}
		}
		entries = append(entries, b.String())
	}
	for _, u := range m.units {
		for _, c := range u.Root.ChildrenOf(syntax.KindUsingDirective) {
			if c.Flags&syntax.FlagGlobal != 0 {
				entries = append(entries, "global using "+u.Slice(c.Span))
			}
		}
	}
	for _, n := range m.implicit {
		entries = append(entries, "implicit using "+n.FullName())
	}
	slices.Sort(entries)

	d := xxhash.New()
	for _, e := range entries {
		_, _ = d.WriteString(e)
		_, _ = d.WriteString("\n")
	}

	return d.Sum64()
}

// Fingerprint summarizes every declaration, base list, global or implicit
// using and reference of the model.
func (m *Model) Fingerprint() uint64 {
	return m.fingerprint
}

// Symbols returns every symbol of the model in declaration order.
func (m *Model) Symbols() []*Symbol {
	return slices.Clone(m.symbols)
}

// Lookup finds a symbol by its fully qualified name.
func (m *Model) Lookup(n Name) *Symbol {
	if n.IsZero() {
		return nil
	}

	e := entity{ns: m.global}
	segs := n.Segments()
	for i, seg := range segs {
		seg = normalize(seg)
		last := i == len(segs)-1
		arity := 0
		if last {
			arity = n.Arity
		}

		switch {
		case e.sym != nil:
			s := e.sym.member(typeKey(seg, arity))
			if s == nil {
				return nil
			}
			e = entity{sym: s}
		case last:
			s, ok := e.ns.types[typeKey(seg, arity)]
			if !ok {
				return nil
			}
			e = entity{sym: s}
		default:
			next, ok := e.ns.member(seg, 0)
			if !ok {
				return nil
			}
			e = next
		}
	}

	return e.sym
}

// ForUnit returns a resolver for nodes of u.
func (m *Model) ForUnit(u *syntax.Unit) Resolver {
	return &unitResolver{m: m, unit: u}
}

type unitResolver struct {
	m    *Model
	unit *syntax.Unit
}

func (r *unitResolver) SymbolOf(ctx context.Context, n *syntax.Node) (*Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", ErrNotTypeReference)
	}

	switch {
	case n.Kind.IsTypeDeclaration():
		if sym, ok := r.m.decls[n]; ok {
			return sym, nil
		}

		return nil, fmt.Errorf("%w: declaration of %s is not part of the model", ErrUnresolved, n.Text)
	case n.Kind == syntax.KindSimpleBaseType, n.Kind == syntax.KindPrimaryConstructorBaseType, n.Kind == syntax.KindAttribute:
		name := n.TypeName()
		if name == nil {
			return nil, fmt.Errorf("%w: %s without a name", ErrNotTypeReference, n.Kind)
		}

		return r.m.resolveType(name)
	case n.Kind.IsName():
		return r.m.resolveType(n)
	}

	return nil, fmt.Errorf("%w: %s", ErrNotTypeReference, n.Kind)
}

func (r *unitResolver) BaseOf(ctx context.Context, sym *Symbol) (*Symbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sym == nil {
		return nil, nil
	}

	if res, ok := r.m.bases.Get(sym); ok {
		return res.sym, res.err
	}
	base, err := r.m.computeBase(sym)
	r.m.bases.Add(sym, resolution{sym: base, err: err})

	return base, err
}

func (m *Model) resolveType(n *syntax.Node) (*Symbol, error) {
	if res, ok := m.names.Get(n); ok {
		return res.sym, res.err
	}

	e, err := m.resolveName(n, m.levels(n))
	if err == nil && e.sym == nil {
		err = fmt.Errorf("%w: %s is a namespace", ErrNotTypeReference, n.Text)
	}
	m.names.Add(n, resolution{sym: e.sym, err: err})

	return e.sym, err
}

func (m *Model) computeBase(sym *Symbol) (*Symbol, error) {
	if !sym.Kind.HasBaseClass() {
		return nil, nil
	}

	if sym.Metadata {
		if sym.baseRef.IsZero() {
			return m.objectBase(sym), nil
		}
		base := m.Lookup(sym.baseRef)
		if base == nil {
			return nil, fmt.Errorf("%w: base %s of %s", ErrUnresolved, sym.baseRef, sym)
		}

		return base, nil
	}

	for _, d := range sym.Decls {
		bases := d.Node.BaseTypes()
		if len(bases) == 0 {
			continue
		}
		name := bases[0].TypeName()
		if name == nil {
			continue
		}
		base, err := m.resolveType(name)
		if err != nil {
			return nil, err
		}
		if base.Kind.HasBaseClass() {
			return base, nil
		}
	}

	return m.objectBase(sym), nil
}

func (m *Model) objectBase(sym *Symbol) *Symbol {
	obj := m.Lookup(objectName)
	if obj == sym {
		return nil
	}

	return obj
}
