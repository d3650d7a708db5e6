package diag

import "sort"

// Sort orders diagnostics by file, start, end, severity (desc), id (asc)
// for a stable and deterministic output.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		di, dj := ds[i], ds[j]
		if di.Location.Path != dj.Location.Path {
			return di.Location.Path < dj.Location.Path
		}
		if di.Location.Span.Start != dj.Location.Span.Start {
			return di.Location.Span.Start < dj.Location.Span.Start
		}
		if di.Location.Span.End != dj.Location.Span.End {
			return di.Location.Span.End < dj.Location.Span.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.ID() != dj.ID() {
			return di.ID() < dj.ID()
		}

		return di.Message() < dj.Message()
	})
}

// Max returns the highest severity among ds and false if ds is empty.
func Max(ds []Diagnostic) (Severity, bool) {
	if len(ds) == 0 {
		return 0, false
	}
	m := ds[0].Severity
	for _, d := range ds[1:] {
		if d.Severity > m {
			m = d.Severity
		}
	}

	return m, true
}
