package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

// ErrDuplicateID is matched by every *DuplicateIDError.
var ErrDuplicateID = errors.New("duplicate diagnostic id")

// DuplicateIDError reports an id that is already registered, or that
// appears twice in one Register call.
type DuplicateIDError struct {
	ID     string
	Owners []string // rule names claiming the id
}

func (e *DuplicateIDError) Error() string {
	if len(e.Owners) == 0 {
		return fmt.Sprintf("duplicate diagnostic id %s", e.ID)
	}

	return fmt.Sprintf("duplicate diagnostic id %s (claimed by %s)", e.ID, strings.Join(e.Owners, ", "))
}

// Is makes errors.Is(err, ErrDuplicateID) hold.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// InvalidDescriptorError reports a descriptor that cannot be registered.
type InvalidDescriptorError struct {
	ID  string
	Err error
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid descriptor %q: %v", e.ID, e.Err)
}

func (e *InvalidDescriptorError) Unwrap() error {
	return e.Err
}

type entry struct {
	desc  *diag.Descriptor
	owner string
}

// Registry holds registered descriptors keyed by id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds descriptors on behalf of owner. Either every descriptor is
// admitted or none is.
func (r *Registry) Register(owner string, descs ...*diag.Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(descs))
	for _, d := range descs {
		if err := d.Validate(); err != nil {
			id := ""
			if d != nil {
				id = d.ID
			}

			return &InvalidDescriptorError{ID: id, Err: err}
		}
		if seen[d.ID] {
			return &DuplicateIDError{ID: d.ID, Owners: []string{owner}}
		}
		if prev, ok := r.entries[d.ID]; ok {
			return &DuplicateIDError{ID: d.ID, Owners: []string{prev.owner, owner}}
		}
		seen[d.ID] = true
	}

	for _, d := range descs {
		r.entries[d.ID] = entry{desc: d, owner: owner}
	}

	return nil
}

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id string) (*diag.Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]

	return e.desc, ok
}

// Owner returns the name of the rule that registered id.
func (r *Registry) Owner(id string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]

	return e.owner, ok
}

// Supported returns every registered descriptor sorted by id. The slice is
// a fresh copy.
func (r *Registry) Supported() []*diag.Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*diag.Descriptor, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.desc)
	}
	slices.SortFunc(out, func(a, b *diag.Descriptor) int {
		return strings.Compare(a.ID, b.ID)
	})

	return out
}

// Len returns the number of registered descriptors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// Duplicates groups ids declared by more than one owner. Owners are listed
// in input order; the result is sorted by id.
func Duplicates(claims map[string][]*diag.Descriptor, order []string) []*DuplicateIDError {
	owners := make(map[string][]string)
	for _, owner := range order {
		seen := make(map[string]bool)
		for _, d := range claims[owner] {
			if d == nil || seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			owners[d.ID] = append(owners[d.ID], owner)
		}
	}

	var out []*DuplicateIDError
	for id, os := range owners {
		if len(os) > 1 {
			out = append(out, &DuplicateIDError{ID: id, Owners: os})
		}
	}
	slices.SortFunc(out, func(a, b *DuplicateIDError) int {
		return strings.Compare(a.ID, b.ID)
	})

	return out
}
