// Package semantic resolves C# type references to symbols.
//
// # Overview
//
// A [Model] is built once from every parsed unit of a run plus a set of
// metadata [Reference] entries standing in for compiled assemblies. It is
// read-only afterwards and safe for concurrent use; resolution results are
// computed lazily and memoized in bounded LRU caches.
//
//	model, err := semantic.Build(units, semantic.WithReferences(semantic.DefaultReferences()...))
//	r := model.ForUnit(unit)
//	sym, err := r.SymbolOf(ctx, baseTypeNode)
//
// # Name Lookup
//
// A simple name is looked up from the reference outwards:
//
//  1. Nested types of each enclosing type, innermost first. A name in the
//     base list of a type is resolved outside that type.
//  2. For each enclosing namespace declaration, innermost first: members of
//     the namespace, then using aliases, then types of namespaces imported
//     with using directives. Two distinct imported candidates are reported
//     as [ErrAmbiguous].
//  3. The compilation unit: members of the global namespace, then the
//     unit's usings together with every global using of the model and the
//     namespaces given to [WithImplicitUsings].
//
// Qualified names resolve their leftmost segment this way and descend
// through namespace and nested type members. "global::" starts from the
// global namespace. Predefined type keywords such as object map to their
// System types. Identifiers are compared after Unicode NFC normalization.
//
// # Names
//
// Fully qualified names use dots for namespaces and nesting and a backtick
// arity suffix for generic types:
//
//	Microsoft.VisualStudio.Shell.AsyncPackage
//	System.Collections.Generic.List`1
//
// Use [ParseName] and [Name.Matches] to compare a resolved symbol against a
// configured name, and [DerivesFrom] to walk base type chains.
//
// # References
//
// Metadata types are declared with [ParseReferences]:
//
//	semantic.ParseReferences("Contoso.Base:System.Object,Contoso.Derived:Contoso.Base")
//
// A source declaration with the same full name hides the reference.
package semantic
