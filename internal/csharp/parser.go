package csharp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// SyntaxError describes a recoverable problem found while parsing.
type SyntaxError struct {
	Path string
	Pos  syntax.Position
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Pos.Line, e.Pos.Column, e.Msg)
}

// Parse parses src into a unit. The returned unit is always non-nil; err
// joins every *SyntaxError encountered, which are also kept on Unit.Errors.
func Parse(path string, src []byte) (*syntax.Unit, error) {
	lx := lex(src)
	p := &parser{toks: lx.tokens}

	root := syntax.NewNode(syntax.KindCompilationUnit, syntax.Span{}, "")
	p.compilationUnit(root)

	unit := syntax.NewUnit(path, src, root)
	root.Span = unit.Range()
	unit.Trivia = lx.trivia
	unit.Generated = IsGenerated(unit)

	for _, e := range lx.errs {
		unit.Errors = append(unit.Errors, &SyntaxError{Path: path, Pos: unit.Position(e.off), Msg: e.msg})
	}
	for _, e := range p.errs {
		unit.Errors = append(unit.Errors, &SyntaxError{Path: path, Pos: unit.Position(e.off), Msg: e.msg})
	}

	return unit, errors.Join(unit.Errors...)
}

type parser struct {
	toks []token
	pos  int
	errs []lexError
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekN(n int) token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) prev() token {
	if p.pos == 0 {
		return p.toks[0]
	}
	return p.toks[p.pos-1]
}

func (p *parser) accept(text string) bool {
	if p.peek().is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) bool {
	if p.accept(text) {
		return true
	}
	p.errorf(p.peek(), "expected %q, found %s", text, describe(p.peek()))
	return false
}

func (p *parser) errorf(at token, format string, args ...any) {
	p.errs = append(p.errs, lexError{off: at.span.Start, msg: fmt.Sprintf(format, args...)})
}

func (p *parser) atEOF() bool {
	return p.peek().kind == tokEOF
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.text)
}

func spanFrom(start token, end token) syntax.Span {
	return syntax.Span{Start: start.span.Start, End: end.span.End}
}

var modifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "abstract": true, "sealed": true, "partial": true,
	"unsafe": true, "new": true, "readonly": true, "ref": true, "file": true,
	"required": true, "virtual": true, "override": true, "extern": true,
	"async": true, "volatile": true, "const": true, "fixed": true,
}

var typeKeywords = map[string]syntax.Kind{
	"class":     syntax.KindClassDeclaration,
	"struct":    syntax.KindStructDeclaration,
	"interface": syntax.KindInterfaceDeclaration,
	"record":    syntax.KindRecordDeclaration,
	"enum":      syntax.KindEnumDeclaration,
	"delegate":  syntax.KindDelegateDeclaration,
}

func (p *parser) compilationUnit(root *syntax.Node) {
	container := root
	for !p.atEOF() {
		if p.peek().is("}") {
			p.errorf(p.peek(), "unexpected %q", "}")
			p.next()
			continue
		}
		if ns := p.memberDeclaration(container, true); ns != nil {
			// File-scoped namespace: everything that follows belongs to it.
			container = ns
		}
	}
	if container != root {
		container.Span.End = p.prev().span.End
	}
}

// memberDeclaration parses one namespace or type member into parent. When
// topLevel is set a file-scoped namespace may start here; it is returned so
// the caller can redirect subsequent members into it.
func (p *parser) memberDeclaration(parent *syntax.Node, topLevel bool) *syntax.Node {
	start := p.peek()

	switch {
	case start.is("extern") && p.peekN(1).is("alias"):
		p.externAlias(parent)
		return nil
	case start.is("using") || (start.is("global") && p.peekN(1).is("using")):
		if p.isUsingDirective() {
			p.usingDirective(parent)
			return nil
		}
	case start.is("namespace"):
		return p.namespaceDeclaration(parent, topLevel)
	}

	var attrs []*syntax.Node
	for p.peek().is("[") {
		list := p.attributeList()
		if list.Text == "assembly" || list.Text == "module" {
			parent.Append(list)
			continue
		}
		attrs = append(attrs, list)
	}
	for {
		t := p.peek()
		if t.kind == tokIdent && !t.verbatim && modifiers[t.text] && !p.peekN(1).is("(") {
			p.next()
			continue
		}
		break
	}

	if t := p.peek(); t.kind == tokIdent && !t.verbatim {
		// "record" is contextual and must be followed by a name or class/struct.
		if kind, ok := typeKeywords[t.text]; ok && (kind != syntax.KindRecordDeclaration || p.peekN(1).kind == tokIdent) {
			parent.Append(p.typeDeclaration(kind, start, attrs))
			return nil
		}
	}

	if len(attrs) > 0 && (p.peek().is("}") || p.atEOF()) {
		parent.Append(attrs...)
		return nil
	}

	member := p.skipMember(start)
	member.Append(attrs...)
	parent.Append(member)
	return nil
}

func (p *parser) isUsingDirective() bool {
	i := 0
	if p.peekN(i).is("global") {
		i++
	}
	// using (var x = ...) and using var x = ... are statements.
	n := p.peekN(i + 1)
	if n.is("(") || n.is("var") {
		return false
	}
	return true
}

func (p *parser) externAlias(parent *syntax.Node) {
	start := p.next() // extern
	p.next()          // alias
	name := p.next()
	p.expect(";")
	parent.Append(syntax.NewNode(syntax.KindExternAlias, spanFrom(start, p.prev()), name.text))
}

// usingDirective parses "[global] using [static] [Alias =] Name;". Text is
// "static" for using-static directives, otherwise the alias, if any.
func (p *parser) usingDirective(parent *syntax.Node) {
	start := p.next()
	if start.is("global") {
		p.next()
	}
	node := syntax.NewNode(syntax.KindUsingDirective, syntax.Span{}, "")
	if start.is("global") {
		node.Flags |= syntax.FlagGlobal
	}
	if p.accept("static") {
		node.Text = "static"
	} else if p.peek().kind == tokIdent && p.peekN(1).is("=") {
		node.Text = p.next().text
		p.next()
	}
	if name := p.typeName(); name != nil {
		node.Append(name)
	}
	p.expect(";")
	node.Span = spanFrom(start, p.prev())
	parent.Append(node)
}

func (p *parser) namespaceDeclaration(parent *syntax.Node, topLevel bool) *syntax.Node {
	start := p.next()
	node := syntax.NewNode(syntax.KindNamespaceDeclaration, syntax.Span{}, "")
	name := p.typeName()
	if name == nil {
		p.errorf(p.peek(), "expected namespace name, found %s", describe(p.peek()))
		node.Span = spanFrom(start, p.prev())
		parent.Append(node)
		return nil
	}
	_, segs := name.Segments()
	node.Text = strings.Join(segs, ".")
	node.Append(name)
	parent.Append(node)

	if p.accept(";") {
		node.Span = spanFrom(start, p.prev())
		if !topLevel {
			p.errorf(start, "file-scoped namespace must be declared at the top level")
			return nil
		}
		return node
	}

	if !p.expect("{") {
		node.Span = spanFrom(start, p.prev())
		return nil
	}
	for !p.atEOF() && !p.peek().is("}") {
		p.memberDeclaration(node, false)
	}
	p.expect("}")
	p.accept(";")
	node.Span = spanFrom(start, p.prev())
	return nil
}

// attributeList parses "[target: A, B(args)]". Text holds the target.
func (p *parser) attributeList() *syntax.Node {
	start := p.next() // [
	list := syntax.NewNode(syntax.KindAttributeList, syntax.Span{}, "")
	if p.peek().kind == tokIdent && p.peekN(1).is(":") {
		list.Text = p.next().text
		p.next()
	}
	for !p.atEOF() && !p.peek().is("]") {
		astart := p.peek()
		name := p.typeName()
		if name == nil {
			p.errorf(p.peek(), "expected attribute name, found %s", describe(p.peek()))
			p.skipBalanced("]")
			break
		}
		attr := syntax.NewNode(syntax.KindAttribute, syntax.Span{}, "")
		attr.Append(name)
		if p.peek().is("(") {
			p.skipGroup()
		}
		attr.Span = spanFrom(astart, p.prev())
		list.Append(attr)
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	list.Span = spanFrom(start, p.prev())
	return list
}

func (p *parser) typeDeclaration(kind syntax.Kind, start token, attrs []*syntax.Node) *syntax.Node {
	p.next() // keyword
	if kind == syntax.KindRecordDeclaration && (p.peek().is("class") || p.peek().is("struct")) {
		p.next()
	}
	node := syntax.NewNode(kind, syntax.Span{}, "")
	node.Append(attrs...)
	for _, list := range attrs {
		if hasGeneratedCodeAttribute(list) {
			node.Flags |= syntax.FlagGenerated
		}
	}

	if kind == syntax.KindDelegateDeclaration {
		p.delegateRest(node)
		node.Span = spanFrom(start, p.prev())
		return node
	}

	name := p.peek()
	if name.kind != tokIdent {
		p.errorf(name, "expected type name, found %s", describe(name))
		node.Flags |= syntax.FlagMissing
	} else {
		p.next()
		node.Text = name.text
	}

	if p.peek().is("<") {
		tstart := p.peek()
		p.skipAngles()
		node.Append(syntax.NewNode(syntax.KindTypeParameterList, spanFrom(tstart, p.prev()), ""))
	}
	if p.peek().is("(") {
		pstart := p.peek()
		p.skipGroup()
		node.Append(syntax.NewNode(syntax.KindParameterList, spanFrom(pstart, p.prev()), ""))
	}
	if p.peek().is(":") {
		node.Append(p.baseList())
	}
	// Constraint clauses.
	for p.peek().is("where") {
		for !p.atEOF() && !p.peek().is("{") && !p.peek().is(";") {
			if p.peek().is("(") {
				p.skipGroup()
				continue
			}
			p.next()
		}
	}

	switch {
	case p.peek().is("{"):
		if kind == syntax.KindEnumDeclaration {
			p.skipGroup()
		} else {
			p.next()
			for !p.atEOF() && !p.peek().is("}") {
				p.memberDeclaration(node, false)
			}
			p.expect("}")
		}
		p.accept(";")
	case p.accept(";"):
	default:
		p.errorf(p.peek(), "expected type body, found %s", describe(p.peek()))
	}

	node.Span = spanFrom(start, p.prev())
	return node
}

func (p *parser) delegateRest(node *syntax.Node) {
	var last token
	for !p.atEOF() && !p.peek().is(";") {
		t := p.peek()
		if t.is("(") {
			if node.Text == "" {
				node.Text = last.text
			}
			p.skipGroup()
			continue
		}
		if t.is("<") && node.Text == "" {
			node.Text = last.text
		}
		if t.kind == tokIdent {
			last = t
		}
		p.next()
	}
	p.expect(";")
}

func (p *parser) baseList() *syntax.Node {
	start := p.next() // :
	list := syntax.NewNode(syntax.KindBaseList, syntax.Span{}, "")
	for {
		bstart := p.peek()
		name := p.typeName()
		if name == nil {
			p.errorf(p.peek(), "expected base type, found %s", describe(p.peek()))
			break
		}
		kind := syntax.KindSimpleBaseType
		if p.peek().is("(") {
			kind = syntax.KindPrimaryConstructorBaseType
			p.skipGroup()
		}
		entry := syntax.NewNode(kind, spanFrom(bstart, p.prev()), "")
		entry.Append(name)
		list.Append(entry)
		if !p.accept(",") {
			break
		}
	}
	list.Span = spanFrom(start, p.prev())
	return list
}

// typeName parses a possibly qualified, alias-qualified or generic name and
// any trailing nullable, pointer or array suffixes (excluded from the span).
func (p *parser) typeName() *syntax.Node {
	if p.peek().is("(") {
		// Tuple type: keep it as a single opaque name.
		start := p.peek()
		p.skipGroup()
		return syntax.NewNode(syntax.KindIdentifierName, spanFrom(start, p.prev()), "")
	}

	first := p.peek()
	if first.kind != tokIdent {
		return nil
	}

	var name *syntax.Node
	if p.peekN(1).is("::") {
		p.next()
		p.next()
		alias := syntax.NewNode(syntax.KindIdentifierName, first.span, first.text)
		right := p.simpleName()
		if right == nil {
			p.errorf(p.peek(), "expected identifier after %q", "::")
			return alias
		}
		name = syntax.NewNode(syntax.KindAliasQualifiedName, first.span.Cover(right.Span), first.text+"::"+right.Text)
		name.Append(alias, right)
	} else {
		name = p.simpleName()
	}

	for p.peek().is(".") && p.peekN(1).kind == tokIdent {
		p.next()
		right := p.simpleName()
		_, left := name.Segments()
		text := strings.Join(append(left, right.Text), ".")
		if name.Kind == syntax.KindAliasQualifiedName {
			text = name.Children[0].Text + "::" + text
		}
		q := syntax.NewNode(syntax.KindQualifiedName, name.Span.Cover(right.Span), text)
		q.Append(name, right)
		name = q
	}

	for {
		switch {
		case p.peek().is("?"), p.peek().is("*"):
			p.next()
			continue
		case p.peek().is("[") && (p.peekN(1).is("]") || p.peekN(1).is(",")):
			p.skipGroup()
			continue
		}
		break
	}
	return name
}

func (p *parser) simpleName() *syntax.Node {
	t := p.peek()
	if t.kind != tokIdent {
		return nil
	}
	p.next()
	if !p.peek().is("<") {
		return syntax.NewNode(syntax.KindIdentifierName, t.span, t.text)
	}

	lt := p.next()
	args := syntax.NewNode(syntax.KindTypeArgumentList, syntax.Span{}, "")
	for !p.atEOF() && !p.peek().is(">") {
		if p.peek().is(",") {
			// Unbound generic: typeof(Dictionary<,>).
			p.next()
			missing := syntax.NewNode(syntax.KindIdentifierName, p.prev().span, "")
			missing.Flags |= syntax.FlagMissing
			args.Append(missing)
			continue
		}
		arg := p.typeName()
		if arg == nil {
			p.errorf(p.peek(), "expected type argument, found %s", describe(p.peek()))
			p.skipAngles()
			break
		}
		args.Append(arg)
		if !p.accept(",") {
			break
		}
	}
	if len(args.Children) == 0 || p.prev().is(",") {
		missing := syntax.NewNode(syntax.KindIdentifierName, p.peek().span, "")
		missing.Flags |= syntax.FlagMissing
		args.Append(missing)
	}
	p.accept(">")
	args.Span = spanFrom(lt, p.prev())

	g := syntax.NewNode(syntax.KindGenericName, spanFrom(t, p.prev()), t.text)
	g.Append(args)
	return g
}

// skipMember consumes one type member (field, property, method, event,
// operator, indexer, ...) and returns an opaque node covering it.
func (p *parser) skipMember(start token) *syntax.Node {
	depth := 0
	for !p.atEOF() {
		t := p.peek()
		switch {
		case t.is("{") || t.is("(") || t.is("["):
			depth++
		case t.is("}") || t.is(")") || t.is("]"):
			if depth == 0 {
				// Closing brace of the enclosing declaration.
				if p.pos == 0 || p.prev().span.End <= start.span.Start {
					p.errorf(t, "unexpected %s", describe(t))
					p.next()
				}
				return p.memberNode(start)
			}
			depth--
			if depth == 0 && t.is("}") {
				p.next()
				n := p.peek()
				switch {
				case n.is(";"):
					p.next()
					return p.memberNode(start)
				case n.is("=") || n.is(".") || n.is(",") || n.is(")") || n.is("=>"):
					continue
				}
				return p.memberNode(start)
			}
		case t.is(";") && depth == 0:
			p.next()
			return p.memberNode(start)
		}
		p.next()
	}
	p.errorf(p.peek(), "unexpected end of file in member declaration")
	return p.memberNode(start)
}

func (p *parser) memberNode(start token) *syntax.Node {
	end := p.prev()
	if end.span.End < start.span.Start {
		end = start
	}
	return syntax.NewNode(syntax.KindMember, spanFrom(start, end), "")
}

// skipGroup consumes a balanced (), [] or {} group starting at the current token.
func (p *parser) skipGroup() {
	open := p.next()
	var closeText string
	switch open.text {
	case "(":
		closeText = ")"
	case "[":
		closeText = "]"
	case "{":
		closeText = "}"
	default:
		return
	}
	p.skipBalanced(closeText)
}

func (p *parser) skipBalanced(closeText string) {
	var stack []string
	stack = append(stack, closeText)
	for !p.atEOF() && len(stack) > 0 {
		t := p.next()
		switch {
		case t.is("("):
			stack = append(stack, ")")
		case t.is("["):
			stack = append(stack, "]")
		case t.is("{"):
			stack = append(stack, "}")
		case t.is(stack[len(stack)-1]):
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		p.errorf(p.peek(), "expected %q before end of file", stack[len(stack)-1])
	}
}

func (p *parser) skipAngles() {
	depth := 0
	for !p.atEOF() {
		t := p.next()
		switch {
		case t.is("<"):
			depth++
		case t.is(">"):
			depth--
			if depth <= 0 {
				return
			}
		case t.is("{") || t.is(";"):
			p.pos--
			p.errorf(t, "unterminated type parameter list")
			return
		}
	}
}
