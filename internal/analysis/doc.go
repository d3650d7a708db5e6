// Package analysis defines the contract between rules and the engine.
//
// # Rules
//
// A rule is a value implementing [Rule]. The engine instantiates each rule
// once through its [Factory], records the descriptors it declares, and then
// calls Initialize exactly once with a fresh [Context]:
//
//	func (r *Rule) Initialize(ctx *analysis.Context) {
//	    ctx.EnableConcurrentExecution()
//	    ctx.ConfigureGeneratedCodeAnalysis(analysis.GeneratedCodeAnalyze)
//	    ctx.RegisterNodeAction(r.analyzeClass, syntax.KindClassDeclaration)
//	}
//
// Registration is only possible while Initialize runs. Calls made after it
// returned are rejected with [ErrSealed] and surfaced by the engine as a
// contract violation.
//
// # Node Actions
//
// A node action runs once per matching node with a [NodeContext] carrying
// the node, its unit, a semantic resolver scoped to that unit and the run's
// cancellation context:
//
//	func (r *Rule) analyzeClass(nc *analysis.NodeContext) {
//	    bases := nc.Node().BaseTypes()
//	    if len(bases) == 0 {
//	        return
//	    }
//	    nc.ReportAt(Descriptor, bases[0].Span)
//	}
//
// # Concurrency
//
// Actions of a rule that called [Context.EnableConcurrentExecution] may run
// on several units at once. Other rules are entered by one goroutine at a
// time.
//
// # Generated Code
//
// By default actions never see generated units or nodes. With
// [GeneratedCodeAnalyze] they do, but their diagnostics inside generated
// code are dropped unless [GeneratedCodeReportDiagnostics] is set as well.
package analysis
