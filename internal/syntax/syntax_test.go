package syntax

import (
	"errors"
	"testing"
)

func buildTree() *Node {
	// class Foo : Bar.Baz { }
	root := NewNode(KindCompilationUnit, Span{0, 25}, "")
	class := NewNode(KindClassDeclaration, Span{0, 25}, "Foo")
	bl := NewNode(KindBaseList, Span{10, 19}, "")
	bt := NewNode(KindSimpleBaseType, Span{12, 19}, "")
	q := NewNode(KindQualifiedName, Span{12, 19}, "Bar.Baz")
	q.Append(NewNode(KindIdentifierName, Span{12, 15}, "Bar"), NewNode(KindIdentifierName, Span{16, 19}, "Baz"))
	bt.Append(q)
	bl.Append(bt)
	class.Append(bl)
	root.Append(class)
	return root
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindClassDeclaration, "ClassDeclaration"},
		{KindBaseList, "BaseList"},
		{KindMember, "Member"},
		{Kind(200), "Kind(?)"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}

	for k := KindInvalid + 1; k < kindCount; k++ {
		if kindNames[k] == "" {
			t.Errorf("kind %d has no name", k)
		}
	}
}

func TestInspectPreorder(t *testing.T) {
	var got []Kind
	Inspect(buildTree(), func(n *Node) bool {
		got = append(got, n.Kind)
		return true
	})

	want := []Kind{
		KindCompilationUnit, KindClassDeclaration, KindBaseList, KindSimpleBaseType,
		KindQualifiedName, KindIdentifierName, KindIdentifierName,
	}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("visit[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestWalkStops(t *testing.T) {
	stop := errors.New("stop")
	visited := 0
	err := Walk(buildTree(), func(n *Node) error {
		visited++
		if n.Kind == KindBaseList {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Walk() error = %v, want %v", err, stop)
	}
	if visited != 3 {
		t.Errorf("visited %d nodes, want 3", visited)
	}
}

func TestBaseTypesAndSegments(t *testing.T) {
	class := buildTree().Child(KindClassDeclaration)
	bases := class.BaseTypes()
	if len(bases) != 1 {
		t.Fatalf("BaseTypes() = %d entries, want 1", len(bases))
	}

	name := bases[0].TypeName()
	if name == nil {
		t.Fatal("TypeName() = nil")
	}
	alias, segs := name.Segments()
	if alias != "" || len(segs) != 2 || segs[0] != "Bar" || segs[1] != "Baz" {
		t.Errorf("Segments() = %q, %v", alias, segs)
	}

	if name.Parent().Parent().Parent() != class {
		t.Error("parent links are not set")
	}
}

func TestGeneratedFlagInherited(t *testing.T) {
	root := buildTree()
	class := root.Child(KindClassDeclaration)
	leaf := class.BaseTypes()[0].TypeName()

	if leaf.Generated() {
		t.Fatal("leaf reported generated before flagging")
	}
	class.Flags |= FlagGenerated
	if !leaf.Generated() {
		t.Error("leaf should inherit FlagGenerated from its class")
	}
	if root.Generated() {
		t.Error("root should not inherit from a child")
	}
}

func TestUnitPosition(t *testing.T) {
	u := NewUnit("a.cs", []byte("ab\ncd\r\nef"), nil)

	tests := []struct {
		off  uint32
		want Position
	}{
		{0, Position{1, 1}},
		{1, Position{1, 2}},
		{3, Position{2, 1}},
		{7, Position{3, 1}},
		{9, Position{3, 3}},
		{100, Position{3, 3}},
	}

	for _, tt := range tests {
		if got := u.Position(tt.off); got != tt.want {
			t.Errorf("Position(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}

	if got := u.LineText(2); got != "cd" {
		t.Errorf("LineText(2) = %q, want %q", got, "cd")
	}
	if got := u.Slice(Span{3, 5}); got != "cd" {
		t.Errorf("Slice() = %q", got)
	}
	if got := u.Slice(Span{3, 50}); got != "" {
		t.Errorf("Slice() out of range = %q, want empty", got)
	}
}

func TestSpanContains(t *testing.T) {
	outer := Span{10, 20}
	if !outer.Contains(Span{10, 20}) || !outer.Contains(Span{12, 15}) {
		t.Error("Contains() rejected an inner span")
	}
	if outer.Contains(Span{5, 15}) || outer.Contains(Span{15, 25}) {
		t.Error("Contains() accepted an overlapping span")
	}
	if got := (Span{5, 8}).Cover(Span{2, 6}); got != (Span{2, 8}) {
		t.Errorf("Cover() = %v", got)
	}
}
