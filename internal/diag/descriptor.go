package diag

import (
	"fmt"
	"regexp"
)

// Descriptor is the immutable metadata of one kind of diagnostic.
type Descriptor struct {
	ID               string
	Title            string
	MessageFormat    string // fmt verbs stand for message arguments
	Category         string
	DefaultSeverity  Severity
	EnabledByDefault bool
	HelpURL          string
}

var idPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// ValidID reports whether id is a short alphanumeric token starting with a letter.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// Validate checks that d can be registered.
func (d *Descriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("nil descriptor")
	}
	if !ValidID(d.ID) {
		return fmt.Errorf("invalid diagnostic id %q", d.ID)
	}
	if d.MessageFormat == "" {
		return fmt.Errorf("diagnostic %s has no message format", d.ID)
	}
	if d.DefaultSeverity > SeverityError {
		return fmt.Errorf("diagnostic %s has invalid severity %d", d.ID, d.DefaultSeverity)
	}

	return nil
}

func (d *Descriptor) String() string {
	return d.ID
}
