package syntax

import "fmt"

// Span is a half-open byte range [Start, End) into a unit's text.
type Span struct {
	Start uint32
	End   uint32
}

// Len returns the number of bytes covered.
func (s Span) Len() uint32 {
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start == s.End
}

// Contains reports whether other lies entirely within s.
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End && other.Start <= other.End
}

// Cover returns the smallest span covering both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Position is a 1-based line and column. Columns count bytes.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}
