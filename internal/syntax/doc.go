// Package syntax defines the immutable syntax model consumed by the rule engine.
//
// # Overview
//
// A parsed source file is a [Unit]: its path, text, root [Node], trivia
// (comments and preprocessor lines) and whether it is machine-generated.
// Nodes form a tree of tagged variants: every node carries a [Kind] tag plus
// the handful of fields the kind needs (a span, an identifier, flags and
// children). There is no per-kind Go type, so dispatch is a switch on the tag:
//
//	syntax.Inspect(unit.Root, func(n *syntax.Node) bool {
//	    if n.Kind == syntax.KindClassDeclaration {
//	        // ...
//	    }
//	    return true
//	})
//
// # Positions
//
// Spans are half-open byte ranges into [Unit.Text]. [Unit.Position] converts
// an offset into a 1-based line and column using a line index computed once
// when the unit is constructed.
//
// # Immutability
//
// Front ends build trees with [Node.Append]; after a unit is handed to the
// engine nothing mutates it, which is what allows concurrent rule callbacks
// to share it without synchronization.
package syntax
