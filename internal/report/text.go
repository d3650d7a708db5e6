package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// TextOpts configures Text.
type TextOpts struct {
	Color bool
}

type palette struct {
	path, help, caret *color.Color
	sev               map[diag.Severity]*color.Color
}

func newPalette(on bool) palette {
	p := palette{
		path:  color.New(color.Bold),
		help:  color.New(color.FgCyan),
		caret: color.New(color.FgGreen, color.Bold),
		sev: map[diag.Severity]*color.Color{
			diag.SeverityHidden:  color.New(color.Faint),
			diag.SeverityInfo:    color.New(color.FgBlue, color.Bold),
			diag.SeverityWarning: color.New(color.FgYellow, color.Bold),
			diag.SeverityError:   color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.help, p.caret}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if on {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// Text writes one block per diagnostic:
//
//	<path>:<line>:<col>: <severity> <ID>: <message>
//	   3 | class Foo : Package { }
//	     |             ^~~~~~~
//	  help: <url>
//
// followed by a summary line.
func Text(w io.Writer, r *Report, opts TextOpts) error {
	p := newPalette(opts.Color)
	var b strings.Builder

	all := r.All()
	counts := make(map[diag.Severity]int)
	for _, d := range all {
		counts[d.Severity]++
		writeHeader(&b, p, d)
		if u := r.Units[d.Location.Path]; u != nil && d.Location.Path != "" {
			writeSnippet(&b, p, u, d.Location)
		}
		if d.Descriptor != nil && d.Descriptor.HelpURL != "" {
			fmt.Fprintf(&b, "  %s %s\n", p.help.Sprint("help:"), d.Descriptor.HelpURL)
		}
	}
	if len(all) > 0 {
		fmt.Fprintf(&b, "%d diagnostic%s (%d error, %d warning, %d info)\n",
			len(all), plural(len(all)),
			counts[diag.SeverityError], counts[diag.SeverityWarning], counts[diag.SeverityInfo])
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func plural(n int) string {
	if n == 1 {
		return ""
	}

	return "s"
}

func writeHeader(b *strings.Builder, p palette, d diag.Diagnostic) {
	loc := d.Location
	if loc.Path != "" {
		b.WriteString(p.path.Sprintf("%s:%d:%d:", loc.Path, loc.Start.Line, loc.Start.Column))
		b.WriteByte(' ')
	}
	sev := p.sev[d.Severity]
	if sev == nil {
		sev = p.sev[diag.SeverityHidden]
	}
	fmt.Fprintf(b, "%s %s: %s\n", sev.Sprint(d.Severity.String()), d.ID(), d.Message())
}

// writeSnippet prints the first line of the location with an underline.
// Display columns account for wide runes; tabs are kept so the underline
// lines up in any terminal.
func writeSnippet(b *strings.Builder, p palette, u *syntax.Unit, loc diag.Location) {
	line := u.LineText(loc.Start.Line)
	if line == "" {
		return
	}
	num := strconv.Itoa(loc.Start.Line)
	gutter := strings.Repeat(" ", len(num))

	fmt.Fprintf(b, " %s | %s\n", num, line)

	startCol := min(loc.Start.Column-1, len(line))
	endCol := len(line)
	if loc.End.Line == loc.Start.Line {
		endCol = min(max(loc.End.Column-1, startCol), len(line))
	}

	var pad strings.Builder
	for _, r := range line[:startCol] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	width := runewidth.StringWidth(line[startCol:endCol])
	mark := "^"
	if width > 1 {
		mark += strings.Repeat("~", width-1)
	}

	fmt.Fprintf(b, " %s | %s%s\n", gutter, pad.String(), p.caret.Sprint(mark))
}
