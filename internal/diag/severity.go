package diag

import (
	"fmt"
	"strings"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SeverityHidden is for diagnostics that hosts do not show by default.
	SeverityHidden Severity = iota
	// SeverityInfo is for informational diagnostics.
	SeverityInfo
	// SeverityWarning is for warning diagnostics.
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityHidden:
		return "hidden"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}

	return "unknown"
}

// ParseSeverity parses the lower-case name of a severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hidden":
		return SeverityHidden, nil
	case "info", "information", "suggestion":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	}

	return 0, fmt.Errorf("unknown severity %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v

	return nil
}
