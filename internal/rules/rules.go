// Package rules lists the rules shipped with the analyzers.
package rules

import (
	"github.com/mpyw/vssdkanalyzers/internal/analysis"
	"github.com/mpyw/vssdkanalyzers/internal/rules/vssdk001"
)

// Config carries per-rule settings.
type Config struct {
	VSSDK001 vssdk001.Config
}

// All returns a factory for every rule with default settings.
func All() []analysis.Factory {
	return Configured(Config{})
}

// Configured returns a factory for every rule with the given settings.
func Configured(cfg Config) []analysis.Factory {
	return []analysis.Factory{
		vssdk001.Factory(cfg.VSSDK001),
	}
}
