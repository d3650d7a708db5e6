// Package registry provides the diagnostic descriptor registry.
//
// # Overview
//
// Every rule declares the descriptors it may report. The engine admits
// them into one [Registry] at load time; afterwards the registry is
// read-only and answers lookups by id, for example when diagnostics are
// restored from the incremental cache.
//
// # Registering Descriptors
//
// Use [Registry.Register] with the owning rule's name:
//
//	reg := registry.New()
//	err := reg.Register("PackageDerivation", vssdk001.Descriptor)
//
// Registration is atomic per call. A descriptor with a malformed id yields
// *[InvalidDescriptorError]; an id that is already taken yields
// *[DuplicateIDError]:
//
//	var dup *registry.DuplicateIDError
//	if errors.As(err, &dup) {
//	    // dup.ID, dup.Owners
//	}
//	errors.Is(err, registry.ErrDuplicateID) // true
//
// # Detecting Conflicts Up Front
//
// Ids shared by several rules disqualify every rule involved, not just the
// later ones. The engine therefore calls [Duplicates] on all claims before
// registering anything:
//
//	claims := map[string][]*diag.Descriptor{"A": a.SupportedDiagnostics(), "B": b.SupportedDiagnostics()}
//	for _, dup := range registry.Duplicates(claims, []string{"A", "B"}) {
//	    // reject dup.Owners
//	}
//
// # Listing
//
// [Registry.Supported] returns a fresh slice sorted by id, so callers may
// modify it freely.
package registry
