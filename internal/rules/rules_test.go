package rules

import (
	"testing"

	"github.com/mpyw/vssdkanalyzers/internal/rules/vssdk001"
)

func TestAll(t *testing.T) {
	factories := All()
	if len(factories) != 1 {
		t.Fatalf("All() returned %d factories, want 1", len(factories))
	}

	seen := make(map[string]bool)
	for _, f := range factories {
		r := f()
		if seen[r.Name()] {
			t.Errorf("duplicate rule name %s", r.Name())
		}
		seen[r.Name()] = true
		for _, d := range r.SupportedDiagnostics() {
			if err := d.Validate(); err != nil {
				t.Errorf("%s: %v", r.Name(), err)
			}
		}
	}
}

func TestConfigured(t *testing.T) {
	r := Configured(Config{VSSDK001: vssdk001.Config{ReportAnyBase: true}})[0]()
	def := All()[0]()

	a, ok := r.(*vssdk001.Rule)
	if !ok {
		t.Fatalf("rule is %T", r)
	}
	if a.CacheKey() == def.(*vssdk001.Rule).CacheKey() {
		t.Error("configuration was not applied")
	}
}
