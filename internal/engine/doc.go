// Package engine hosts analysis rules and runs them over parsed units.
//
// # Architecture Overview
//
//	                       +------------------+
//	                       |   engine.New     |  load, validate, index
//	                       +--------+---------+
//	                                |
//	                       +--------v---------+
//	                       |   Engine.Run     |  one job per unit
//	                       +--------+---------+
//	                                |
//	      +-------------------------+-------------------------+
//	      |                         |                         |
//	+-----v------+        +---------v----------+     +--------v--------+
//	|   cache    |        |   runner.dispatch  |     |  ignore.Map     |
//	| (replay)   |        |   (syntax walk)    |     |  (suppression)  |
//	+------------+        +---------+----------+     +-----------------+
//	                                |
//	                      +---------v----------+
//	                      |  rule callbacks    |  analysis.NodeContext
//	                      +--------------------+
//
// # Loading
//
// [New] instantiates one rule per factory. A rule is admitted only if
//
//   - its factory returns a non-nil rule without panicking,
//   - every descriptor it supports is valid,
//   - none of its ids is claimed by another rule or by the engine,
//   - its Initialize call returns without panicking.
//
// Rejected rules never run. Each rejection surfaces once through
// [Engine.LoadErrors] and as a meta diagnostic (AD0001 or AD0002) in every
// [Result]. Registrations attempted after Initialize returned are dropped
// and reported as AD0003.
//
// # Execution Flow
//
//  1. [Engine.Run] fans units out to at most WithJobs workers
//  2. A generated unit is skipped when no rule analyzes generated code
//  3. With a cache, an unchanged unit replays its stored diagnostics
//  4. Otherwise the syntax tree is walked in pre-order; for each node
//     the actions registered for its kind run in load order
//  5. Reports are validated, filtered by the enabled ids and the
//     generated-code policy, then by suppression directives
//
// Rules that did not call EnableConcurrentExecution never run two
// callbacks at once. A panicking callback is reported as AD0001 and the
// walk continues with the next action.
//
// # Cancellation
//
// The context is checked before every node and every callback. A canceled
// run returns an error matching both [ErrCanceled] and the context error,
// and no partial result:
//
//	res, err := eng.Run(ctx, engine.Input{Units: units, Semantics: model})
//	if errors.Is(err, engine.ErrCanceled) {
//	    // res is nil
//	}
package engine
