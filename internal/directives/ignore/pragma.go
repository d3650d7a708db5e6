package ignore

import (
	"strings"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// region is the range covered by one #pragma warning disable for one id.
type region struct {
	off        uint32 // offset of the disable directive
	start, end uint32
	id         string // empty = all
	used       map[string]bool
}

func (r *region) covers(off uint32, id string) bool {
	return off >= r.start && off < r.end && (r.id == "" || r.id == id)
}

type pragma struct {
	disable bool
	ids     []string // empty = all
}

// parsePragma parses "#pragma warning disable|restore [ids] [// comment]".
func parsePragma(text string) (pragma, bool) {
	if idx := strings.Index(text, "//"); idx >= 0 {
		text = text[:idx]
	}
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(text), "#"))
	if len(fields) < 3 || fields[0] != "pragma" || fields[1] != "warning" {
		return pragma{}, false
	}

	var p pragma
	switch fields[2] {
	case "disable":
		p.disable = true
	case "restore":
	default:
		return pragma{}, false
	}
	p.ids = splitIDs(strings.Join(fields[3:], " "))

	return p, true
}

// buildRegions turns disable/restore pragmas into regions. A disable
// without a matching restore extends to end.
func buildRegions(directives []syntax.Trivia, end uint32) []*region {
	var regions []*region
	open := make(map[string]*region)

	closeRegion := func(id string, at uint32) {
		if r, ok := open[id]; ok {
			r.end = at
			delete(open, id)
		}
	}

	for _, d := range directives {
		p, ok := parsePragma(d.Text)
		if !ok {
			continue
		}

		ids := p.ids
		if len(ids) == 0 {
			ids = []string{""}
		}

		switch {
		case p.disable:
			for _, id := range ids {
				if _, ok := open[id]; ok {
					continue
				}
				r := &region{off: d.Span.Start, start: d.Span.End, end: end, id: id, used: make(map[string]bool)}
				open[id] = r
				regions = append(regions, r)
			}
		case len(p.ids) == 0:
			for id := range open {
				closeRegion(id, d.Span.Start)
			}
		default:
			for _, id := range ids {
				closeRegion(id, d.Span.Start)
			}
		}
	}

	return regions
}
