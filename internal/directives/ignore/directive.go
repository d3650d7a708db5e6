// Package ignore handles // vssdk:ignore comments and #pragma warning regions.
package ignore

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

const commentPrefix = "vssdk:ignore"

// EnabledIDs tracks which diagnostic ids are currently enabled.
type EnabledIDs map[string]bool

// Entry tracks an ignore comment and its usage.
type Entry struct {
	off  uint32          // offset of the ignore comment
	ids  []string        // diagnostic ids (empty = all)
	used map[string]bool // track usage per id
}

// Map tracks the suppressions of one unit: ignore comments by line number
// and pragma regions by offset.
type Map struct {
	lines   map[int]*Entry
	regions []*region
}

// Build scans a unit's trivia for suppressions.
func Build(u *syntax.Unit) *Map {
	m := &Map{lines: make(map[int]*Entry)}

	var directives []syntax.Trivia
	for _, tr := range u.Trivia {
		switch tr.Kind {
		case syntax.TriviaLineComment:
			if ids, ok := parseIgnoreComment(tr.Text); ok {
				line := u.Position(tr.Span.Start).Line
				m.lines[line] = &Entry{
					off:  tr.Span.Start,
					ids:  ids,
					used: make(map[string]bool),
				}
			}
		case syntax.TriviaDirective:
			directives = append(directives, tr)
		}
	}
	m.regions = buildRegions(directives, u.Range().End)

	return m
}

// Len returns the number of ignore comments and pragma regions.
func (m *Map) Len() int {
	return len(m.lines) + len(m.regions)
}

// parseIgnoreComment parses an ignore comment and returns the ids.
// Returns nil slice if no specific ids are specified (ignore all).
// Returns false if not an ignore comment.
//
// Supported formats:
//   - // vssdk:ignore                        -> ignore all diagnostics
//   - // vssdk:ignore VSSDK001               -> ignore a specific id
//   - // vssdk:ignore VSSDK001,VSSDK002      -> ignore several ids
//   - // vssdk:ignore - reason               -> ignore all with comment
//   - // vssdk:ignore VSSDK001 - reason      -> ignore specific with comment
func parseIgnoreComment(text string) ([]string, bool) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, commentPrefix) {
		return nil, false
	}

	rest := strings.TrimPrefix(text, commentPrefix)
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return nil, false // e.g. vssdk:ignored
	}
	rest = strings.TrimSpace(rest)

	if rest == "" {
		return nil, true
	}

	// Stop at comment markers: " - " or " //".
	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, " //"); idx >= 0 {
		rest = rest[:idx]
	}
	if strings.HasPrefix(rest, "- ") || rest == "-" {
		return nil, true
	}

	return splitIDs(rest), true
}

func splitIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, strings.ToUpper(f))
	}

	return ids
}

// ShouldIgnore reports whether a diagnostic with the given id starting at
// off on line is suppressed. An ignore comment applies to its own line and
// the next one. When a suppression is used, it is marked as used for id.
func (m *Map) ShouldIgnore(line int, off uint32, id string) bool {
	id = strings.ToUpper(id)

	if shouldIgnoreEntry(m.lines[line], id) {
		return true
	}
	if shouldIgnoreEntry(m.lines[line-1], id) {
		return true
	}

	for _, r := range m.regions {
		if r.covers(off, id) {
			r.used[id] = true
			return true
		}
	}

	return false
}

func shouldIgnoreEntry(entry *Entry, id string) bool {
	if entry == nil {
		return false
	}

	// Empty id list means ignore all
	if len(entry.ids) == 0 || slices.Contains(entry.ids, id) {
		entry.used[id] = true
		return true
	}

	return false
}

// Unused represents an unused suppression.
type Unused struct {
	Off    uint32
	Pragma bool
	IDs    []string // unused ids (empty if the entire suppression is unused)
}

// GetUnused returns suppressions that were not used, ordered by offset.
// Ids of ignore comments that are not enabled are always reported. Keys of
// enabled are upper-case ids.
func (m *Map) GetUnused(enabled EnabledIDs) []Unused {
	var unused []Unused

	for _, entry := range m.lines {
		if u, ok := unusedOf(entry, enabled); ok {
			unused = append(unused, u)
		}
	}
	for _, r := range m.regions {
		// Only single-id regions of enabled ids are reported.
		if r.id == "" || !enabled[r.id] || r.used[r.id] {
			continue
		}
		unused = append(unused, Unused{Off: r.off, Pragma: true, IDs: []string{r.id}})
	}

	slices.SortFunc(unused, func(a, b Unused) int {
		return cmp.Compare(a.Off, b.Off)
	})

	return unused
}

func unusedOf(entry *Entry, enabled EnabledIDs) (Unused, bool) {
	off, ids, used := entry.off, entry.ids, entry.used
	if len(ids) == 0 {
		// Suppress-all: unused unless some enabled id used it
		for id := range enabled {
			if enabled[id] && used[id] {
				return Unused{}, false
			}
		}

		return Unused{Off: off}, true
	}

	var unusedIDs []string
	for _, id := range ids {
		if !enabled[id] || !used[id] {
			unusedIDs = append(unusedIDs, id)
		}
	}
	if len(unusedIDs) == 0 {
		return Unused{}, false
	}

	return Unused{Off: off, IDs: unusedIDs}, true
}
