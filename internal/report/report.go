// Package report renders diagnostics for humans and tools.
package report

import (
	"fmt"
	"io"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// Report is what a host prints after a run.
type Report struct {
	Diagnostics []diag.Diagnostic
	Meta        []diag.Diagnostic
	// Rules lists the descriptors of the admitted rules.
	Rules []*diag.Descriptor
	// Units maps paths to analyzed units, used to print source context.
	Units map[string]*syntax.Unit
}

// All returns diagnostics followed by meta diagnostics, sorted.
func (r *Report) All() []diag.Diagnostic {
	all := make([]diag.Diagnostic, 0, len(r.Diagnostics)+len(r.Meta))
	all = append(all, r.Diagnostics...)
	all = append(all, r.Meta...)
	diag.Sort(all)

	return all
}

// Tool identifies the producer in machine-readable output.
type Tool struct {
	Name           string
	Version        string
	InformationURI string
}

// Format selects an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// Options configures Write.
type Options struct {
	Format Format
	Color  bool
	Tool   Tool
}

// Write renders r in the selected format.
func Write(w io.Writer, r *Report, opts Options) error {
	switch opts.Format {
	case FormatText, "":
		return Text(w, r, TextOpts{Color: opts.Color})
	case FormatJSON:
		return JSON(w, r)
	case FormatSARIF:
		return SARIF(w, r, opts.Tool)
	}

	return fmt.Errorf("unknown report format %q", opts.Format)
}
