package analysis

import (
	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

// Rule is one pluggable analysis.
type Rule interface {
	// Name identifies the rule in logs and meta diagnostics.
	Name() string
	// SupportedDiagnostics lists every descriptor the rule may report.
	SupportedDiagnostics() []*diag.Descriptor
	// Initialize registers the rule's actions.
	Initialize(ctx *Context)
}

// Keyed is implemented by rules whose output depends on settings beyond
// their name. CacheKey must change whenever those settings do.
type Keyed interface {
	CacheKey() string
}

// Factory creates a rule instance.
type Factory func() Rule

// GeneratedCodeFlags controls how a rule treats generated code.
type GeneratedCodeFlags uint8

const (
	// GeneratedCodeNone skips generated code entirely.
	GeneratedCodeNone GeneratedCodeFlags = 0
	// GeneratedCodeAnalyze runs actions on generated code.
	GeneratedCodeAnalyze GeneratedCodeFlags = 1 << 0
	// GeneratedCodeReportDiagnostics keeps diagnostics located in generated code.
	GeneratedCodeReportDiagnostics GeneratedCodeFlags = 1 << 1
)

// Has reports whether all bits of flag are set.
func (f GeneratedCodeFlags) Has(flag GeneratedCodeFlags) bool {
	return f&flag == flag
}

func (f GeneratedCodeFlags) String() string {
	switch f {
	case GeneratedCodeNone:
		return "none"
	case GeneratedCodeAnalyze:
		return "analyze"
	case GeneratedCodeReportDiagnostics:
		return "report"
	case GeneratedCodeAnalyze | GeneratedCodeReportDiagnostics:
		return "analyze|report"
	}

	return "invalid"
}
