package diag

const metaCategory = "Tooling"

// Diagnostics the engine reports about rules and suppressions rather than
// about the analyzed code.
var (
	RuleException = &Descriptor{
		ID:               "AD0001",
		Title:            "Rule threw an exception",
		MessageFormat:    "Rule '%s' threw an exception while analyzing %s: %v",
		Category:         metaCategory,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
	}
	RuleLoadFailure = &Descriptor{
		ID:               "AD0002",
		Title:            "Rule could not be loaded",
		MessageFormat:    "Rule '%s' could not be loaded: %v",
		Category:         metaCategory,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
	}
	ContractViolation = &Descriptor{
		ID:               "AD0003",
		Title:            "Rule reported an invalid diagnostic",
		MessageFormat:    "Rule '%s' reported an invalid diagnostic: %v",
		Category:         metaCategory,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
	}
	UnusedSuppression = &Descriptor{
		ID:               "AD0004",
		Title:            "Unused suppression",
		MessageFormat:    "Suppression of %s is never used",
		Category:         metaCategory,
		DefaultSeverity:  SeverityInfo,
		EnabledByDefault: true,
	}
)

// MetaDescriptors returns the engine's own descriptors.
func MetaDescriptors() []*Descriptor {
	return []*Descriptor{RuleException, RuleLoadFailure, ContractViolation, UnusedSuppression}
}
