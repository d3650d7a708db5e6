package diag

import (
	"fmt"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// Location pins a diagnostic to a range of one file.
type Location struct {
	Path  string
	Span  syntax.Span
	Start syntax.Position
	End   syntax.Position
}

// NewLocation resolves sp against u.
func NewLocation(u *syntax.Unit, sp syntax.Span) Location {
	return Location{
		Path:  u.Path,
		Span:  sp,
		Start: u.Position(sp.Start),
		End:   u.Position(sp.End),
	}
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%s", l.Path, l.Start)
}

// Diagnostic is one reported finding.
type Diagnostic struct {
	Descriptor *Descriptor
	Severity   Severity
	Location   Location
	Args       []any
}

// New creates a diagnostic with the descriptor's default severity.
func New(d *Descriptor, loc Location, args ...any) Diagnostic {
	return Diagnostic{
		Descriptor: d,
		Severity:   d.DefaultSeverity,
		Location:   loc,
		Args:       args,
	}
}

// ID returns the descriptor id.
func (d Diagnostic) ID() string {
	if d.Descriptor == nil {
		return ""
	}

	return d.Descriptor.ID
}

// Message formats the descriptor's message with the diagnostic arguments.
func (d Diagnostic) Message() string {
	if d.Descriptor == nil {
		return ""
	}
	if len(d.Args) == 0 {
		return d.Descriptor.MessageFormat
	}

	return fmt.Sprintf(d.Descriptor.MessageFormat, d.Args...)
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s %s: %s", d.Location, d.Severity, d.ID(), d.Message())
}
