package syntax

import (
	"sort"

	"fortio.org/safecast"
)

// TriviaKind distinguishes comments from preprocessor lines.
type TriviaKind uint8

const (
	TriviaLineComment TriviaKind = iota
	TriviaBlockComment
	TriviaDirective
)

// Trivia is source text that is not part of the tree but that hosts care
// about: comments (suppression markers, generated headers) and preprocessor
// lines such as #pragma.
type Trivia struct {
	Kind TriviaKind
	Span Span
	Text string
}

// Unit is one parsed source file.
type Unit struct {
	Path      string
	Text      []byte
	Root      *Node
	Trivia    []Trivia
	Generated bool
	Errors    []error

	lines []uint32 // byte offset of the start of each line
}

// NewUnit builds a unit and its line index.
func NewUnit(path string, text []byte, root *Node) *Unit {
	u := &Unit{Path: path, Text: text, Root: root}
	u.lines = append(u.lines, 0)
	for i, b := range text {
		if b == '\n' {
			off, err := safecast.Conv[uint32](i + 1)
			if err != nil {
				break
			}
			u.lines = append(u.lines, off)
		}
	}
	return u
}

// Range returns the span covering the whole text.
func (u *Unit) Range() Span {
	end, err := safecast.Conv[uint32](len(u.Text))
	if err != nil {
		end = ^uint32(0)
	}
	return Span{Start: 0, End: end}
}

// Position converts a byte offset into a 1-based line and column. Offsets
// past the end clamp to the end of the text.
func (u *Unit) Position(off uint32) Position {
	if r := u.Range(); off > r.End {
		off = r.End
	}
	line := sort.Search(len(u.lines), func(i int) bool { return u.lines[i] > off }) - 1
	if line < 0 {
		line = 0
	}
	col := int(off-u.lines[line]) + 1
	return Position{Line: line + 1, Column: col}
}

// Slice returns the source text covered by sp, or "" if sp is out of range.
func (u *Unit) Slice(sp Span) string {
	if !u.Range().Contains(sp) {
		return ""
	}
	return string(u.Text[sp.Start:sp.End])
}

// LineText returns the text of a 1-based line without its terminator.
func (u *Unit) LineText(line int) string {
	if line < 1 || line > len(u.lines) {
		return ""
	}
	start := u.lines[line-1]
	end := u.Range().End
	if line < len(u.lines) {
		end = u.lines[line] - 1
	}
	s := string(u.Text[start:end])
	if n := len(s); n > 0 && s[n-1] == '\r' {
		s = s[:n-1]
	}
	return s
}

// LineCount returns the number of lines in the unit.
func (u *Unit) LineCount() int {
	return len(u.lines)
}
