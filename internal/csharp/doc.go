// Package csharp is a declaration-level C# front end producing syntax units.
//
// It recognizes what rules over type declarations need: extern aliases,
// using directives, attributes, namespaces (block and file-scoped), class,
// struct, interface, record, enum and delegate declarations with their type
// parameters, primary constructors, base lists and nested types. Member
// bodies are not parsed; each member becomes an opaque [syntax.KindMember]
// node covering its source.
//
// Comments and preprocessor lines are preserved as trivia so hosts can find
// generated-code headers and suppression directives.
//
// Parsing is best effort: [Parse] always returns a usable unit and reports
// syntax errors alongside it.
package csharp
