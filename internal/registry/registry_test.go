package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
)

func desc(id string) *diag.Descriptor {
	return &diag.Descriptor{ID: id, Title: id, MessageFormat: id, DefaultSeverity: diag.SeverityInfo, EnabledByDefault: true}
}

func TestRegister(t *testing.T) {
	reg := New()

	if err := reg.Register("A", desc("X001"), desc("X002")); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	err := reg.Register("B", desc("X003"), desc("X001"))
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("Register() error = %v, want *DuplicateIDError", err)
	}
	if !errors.Is(err, ErrDuplicateID) {
		t.Error("errors.Is(err, ErrDuplicateID) should hold")
	}
	if dup.ID != "X001" {
		t.Errorf("duplicate id = %s, want X001", dup.ID)
	}
	if diff := cmp.Diff([]string{"A", "B"}, dup.Owners); diff != "" {
		t.Errorf("owners mismatch (-want +got):\n%s", diff)
	}

	if _, ok := reg.Lookup("X003"); ok {
		t.Error("failed Register call must not admit any descriptor")
	}
	if owner, ok := reg.Owner("X001"); !ok || owner != "A" {
		t.Errorf("Owner(X001) = %q, %v", owner, ok)
	}
}

func TestRegisterDuplicateWithinCall(t *testing.T) {
	reg := New()

	err := reg.Register("A", desc("X001"), desc("X001"))
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Register() error = %v, want ErrDuplicateID", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegisterInvalid(t *testing.T) {
	tests := []struct {
		name string
		desc *diag.Descriptor
	}{
		{name: "nil", desc: nil},
		{name: "empty id", desc: desc("")},
		{name: "malformed id", desc: desc("VS 001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Register("A", tt.desc)
			var invalid *InvalidDescriptorError
			if !errors.As(err, &invalid) {
				t.Fatalf("Register() error = %v, want *InvalidDescriptorError", err)
			}
		})
	}
}

func TestSupportedIsSortedCopy(t *testing.T) {
	reg := New()
	if err := reg.Register("A", desc("B002"), desc("A001"), desc("C003")); err != nil {
		t.Fatal(err)
	}

	got := reg.Supported()
	var ids []string
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	if diff := cmp.Diff([]string{"A001", "B002", "C003"}, ids); diff != "" {
		t.Errorf("Supported() mismatch (-want +got):\n%s", diff)
	}

	got[0] = nil
	if reg.Supported()[0] == nil {
		t.Error("Supported() must return a fresh slice")
	}
}

func TestDuplicates(t *testing.T) {
	claims := map[string][]*diag.Descriptor{
		"A": {desc("X001"), desc("X002")},
		"B": {desc("X002")},
		"C": {desc("X003"), desc("X002"), desc("X001")},
		"D": {desc("X004"), desc("X004")},
	}

	got := Duplicates(claims, []string{"A", "B", "C", "D"})

	type dupView struct {
		ID     string
		Owners []string
	}
	var view []dupView
	for _, d := range got {
		view = append(view, dupView{ID: d.ID, Owners: d.Owners})
	}
	want := []dupView{
		{ID: "X001", Owners: []string{"A", "C"}},
		{ID: "X002", Owners: []string{"A", "B", "C"}},
	}
	if diff := cmp.Diff(want, view); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
}
