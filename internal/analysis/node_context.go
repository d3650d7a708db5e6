package analysis

import (
	"context"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// NodeContext is handed to a node action for one node.
type NodeContext struct {
	ctx      context.Context
	node     *syntax.Node
	unit     *syntax.Unit
	resolver semantic.Resolver
	report   func(diag.Diagnostic)
}

// NewNodeContext creates a node context. report receives every diagnostic
// the action reports.
func NewNodeContext(
	ctx context.Context,
	node *syntax.Node,
	unit *syntax.Unit,
	resolver semantic.Resolver,
	report func(diag.Diagnostic),
) *NodeContext {
	return &NodeContext{
		ctx:      ctx,
		node:     node,
		unit:     unit,
		resolver: resolver,
		report:   report,
	}
}

// Context returns the cancellation context of the run.
func (c *NodeContext) Context() context.Context {
	return c.ctx
}

// Node returns the node being analyzed.
func (c *NodeContext) Node() *syntax.Node {
	return c.node
}

// Unit returns the unit containing the node.
func (c *NodeContext) Unit() *syntax.Unit {
	return c.unit
}

// Semantic returns the resolver for the unit, or nil if the host provided
// no semantic information.
func (c *NodeContext) Semantic() semantic.Resolver {
	return c.resolver
}

// Canceled reports whether the run was canceled.
func (c *NodeContext) Canceled() bool {
	return c.ctx.Err() != nil
}

// Report emits a diagnostic.
func (c *NodeContext) Report(d diag.Diagnostic) {
	c.report(d)
}

// ReportAt emits a diagnostic of desc at sp within the current unit. A nil
// desc is passed on as is and rejected by the engine.
func (c *NodeContext) ReportAt(desc *diag.Descriptor, sp syntax.Span, args ...any) {
	loc := diag.NewLocation(c.unit, sp)
	if desc == nil {
		c.report(diag.Diagnostic{Location: loc, Args: args})
		return
	}
	c.report(diag.New(desc, loc, args...))
}
