package report

import (
	"io"

	"fortio.org/safecast"
	json "github.com/goccy/go-json"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

// LocationJSON is the JSON shape of a diagnostic location.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

// DiagnosticJSON is the JSON shape of one diagnostic.
type DiagnosticJSON struct {
	Severity string        `json:"severity"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	HelpURL  string        `json:"help_url,omitempty"`
	Meta     bool          `json:"meta,omitempty"`
	Location *LocationJSON `json:"location,omitempty"`
}

// DiagnosticsOutput is the root JSON object.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

// JSON writes r as an indented DiagnosticsOutput.
func JSON(w io.Writer, r *Report) error {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	meta := make(map[*diag.Descriptor]bool)
	for _, d := range r.Meta {
		meta[d.Descriptor] = true
	}
	for _, d := range r.All() {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.ID(),
			Message:  d.Message(),
			Meta:     meta[d.Descriptor],
		}
		if d.Descriptor != nil {
			dj.HelpURL = d.Descriptor.HelpURL
		}
		if d.Location.Path != "" {
			loc, err := locationJSON(d.Location)
			if err != nil {
				return err
			}
			dj.Location = loc
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func locationJSON(l diag.Location) (*LocationJSON, error) {
	var (
		lj  = &LocationJSON{File: l.Path, StartByte: l.Span.Start, EndByte: l.Span.End}
		err error
	)
	if lj.StartLine, err = safecast.Conv[uint32](l.Start.Line); err != nil {
		return nil, err
	}
	if lj.StartCol, err = safecast.Conv[uint32](l.Start.Column); err != nil {
		return nil, err
	}
	if lj.EndLine, err = safecast.Conv[uint32](l.End.Line); err != nil {
		return nil, err
	}
	if lj.EndCol, err = safecast.Conv[uint32](l.End.Column); err != nil {
		return nil, err
	}

	return lj, nil
}
