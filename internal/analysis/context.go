package analysis

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

var (
	// ErrSealed is recorded for registration calls made after Initialize returned.
	ErrSealed = errors.New("registration after initialization")
	// ErrNoKinds is recorded for node actions registered without kinds.
	ErrNoKinds = errors.New("node action registered without kinds")
	// ErrInvalidKind is recorded for node actions registered for an unknown kind.
	ErrInvalidKind = errors.New("node action registered for an invalid kind")
	// ErrNilAction is recorded for nil node actions.
	ErrNilAction = errors.New("nil node action")
)

// NodeFunc is a node action callback.
type NodeFunc func(*NodeContext)

// NodeAction is one registration made through RegisterNodeAction.
type NodeAction struct {
	Func  NodeFunc
	Kinds []syntax.Kind
}

// Context records the registrations of one rule.
type Context struct {
	rule string

	mu         sync.Mutex
	sealed     bool
	concurrent bool
	generated  GeneratedCodeFlags
	actions    []NodeAction
	errs       []error
}

// NewContext creates the registration context of the named rule.
func NewContext(rule string) *Context {
	return &Context{rule: rule}
}

// Rule returns the name of the rule the context belongs to.
func (c *Context) Rule() string {
	return c.rule
}

// EnableConcurrentExecution declares that the rule's actions may run
// concurrently with themselves.
func (c *Context) EnableConcurrentExecution() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rejectLocked("EnableConcurrentExecution") {
		return
	}
	c.concurrent = true
}

// ConfigureGeneratedCodeAnalysis sets how generated code is treated.
func (c *Context) ConfigureGeneratedCodeAnalysis(flags GeneratedCodeFlags) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rejectLocked("ConfigureGeneratedCodeAnalysis") {
		return
	}
	c.generated = flags
}

// RegisterNodeAction subscribes fn to nodes of the given kinds. It may be
// called several times.
func (c *Context) RegisterNodeAction(fn NodeFunc, kinds ...syntax.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rejectLocked("RegisterNodeAction") {
		return
	}
	if fn == nil {
		c.errs = append(c.errs, ErrNilAction)
		return
	}
	if len(kinds) == 0 {
		c.errs = append(c.errs, ErrNoKinds)
		return
	}
	for _, k := range kinds {
		if !k.Valid() {
			c.errs = append(c.errs, fmt.Errorf("%w: %s", ErrInvalidKind, k))
			return
		}
	}

	c.actions = append(c.actions, NodeAction{Func: fn, Kinds: slices.Clone(kinds)})
}

func (c *Context) rejectLocked(op string) bool {
	if !c.sealed {
		return false
	}
	c.errs = append(c.errs, fmt.Errorf("%w: %s", ErrSealed, op))

	return true
}

// Seal ends the registration phase.
func (c *Context) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}

// Concurrent reports whether EnableConcurrentExecution was called.
func (c *Context) Concurrent() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.concurrent
}

// GeneratedCode returns the configured generated code flags.
func (c *Context) GeneratedCode() GeneratedCodeFlags {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.generated
}

// Actions returns a copy of the registered node actions.
func (c *Context) Actions() []NodeAction {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.actions)
}

// TakeErrors returns and clears the registration errors recorded so far.
func (c *Context) TakeErrors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()

	errs := c.errs
	c.errs = nil

	return errs
}
