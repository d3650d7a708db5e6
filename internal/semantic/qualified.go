package semantic

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name holds the parsed components of a fully qualified type name.
// Format: "Namespace.Type" or "Namespace.Type`N" for generic types.
type Name struct {
	Namespace string // empty for the global namespace
	Type      string
	Arity     int
}

// ParseName parses a fully qualified type name. Generic arity may be given as
// a backtick suffix ("List`1") or as a type parameter list ("List<T>").
func ParseName(s string) (Name, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "global::")
	if s == "" {
		return Name{}, fmt.Errorf("empty type name")
	}

	name := Name{}

	switch {
	case strings.HasSuffix(s, ">"):
		open := strings.IndexByte(s, '<')
		if open <= 0 {
			return Name{}, fmt.Errorf("invalid type name %q", s)
		}
		name.Arity = strings.Count(s[open:], ",") + 1
		s = s[:open]
	case strings.Contains(s, "`"):
		tick := strings.LastIndexByte(s, '`')
		n, err := strconv.Atoi(s[tick+1:])
		if err != nil || n <= 0 {
			return Name{}, fmt.Errorf("invalid arity in type name %q", s)
		}
		name.Arity = n
		s = s[:tick]
	}

	for _, seg := range strings.Split(s, ".") {
		if !isIdentifier(seg) {
			return Name{}, fmt.Errorf("invalid type name %q", s)
		}
	}

	lastDot := strings.LastIndex(s, ".")
	if lastDot == -1 {
		name.Type = s

		return name, nil
	}

	name.Namespace = s[:lastDot]
	name.Type = s[lastDot+1:]

	return name, nil
}

// MustParseName is like ParseName but panics on error.
func MustParseName(s string) Name {
	name, err := ParseName(s)
	if err != nil {
		panic(err)
	}

	return name
}

// IsZero reports whether n is the zero Name.
func (n Name) IsZero() bool {
	return n.Type == ""
}

// FullName returns the dotted name with a backtick arity suffix.
func (n Name) FullName() string {
	s := n.Type
	if n.Namespace != "" {
		s = n.Namespace + "." + s
	}
	if n.Arity > 0 {
		s += "`" + strconv.Itoa(n.Arity)
	}

	return s
}

func (n Name) String() string {
	return n.FullName()
}

// Segments returns the namespace segments followed by the type name.
func (n Name) Segments() []string {
	if n.Namespace == "" {
		return []string{n.Type}
	}

	return append(strings.Split(n.Namespace, "."), n.Type)
}

// Matches checks if a symbol has this full name.
func (n Name) Matches(sym *Symbol) bool {
	if sym == nil || n.IsZero() {
		return false
	}

	return norm.NFC.String(n.FullName()) == sym.FullName()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= 0x80:
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}

	return true
}
