package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"
)

func TestKeyInput(t *testing.T) {
	base := KeyInput{Path: "a.cs", Text: []byte("class A { }"), Ruleset: 1, Semantic: 2, Suppress: true}

	tests := []struct {
		name   string
		mutate func(in *KeyInput)
		same   bool
	}{
		{name: "identical", mutate: func(*KeyInput) {}, same: true},
		{name: "path", mutate: func(in *KeyInput) { in.Path = "b.cs" }},
		{name: "text", mutate: func(in *KeyInput) { in.Text = []byte("class B { }") }},
		{name: "ruleset", mutate: func(in *KeyInput) { in.Ruleset = 3 }},
		{name: "semantic", mutate: func(in *KeyInput) { in.Semantic = 3 }},
		{name: "suppress", mutate: func(in *KeyInput) { in.Suppress = false }},
		{name: "generated", mutate: func(in *KeyInput) { in.Generated = true }},
		{name: "suppress and generated swapped", mutate: func(in *KeyInput) {
			in.Suppress = false
			in.Generated = true
		}},
		{name: "path and text boundary", mutate: func(in *KeyInput) {
			in.Path = "a.csclass"
			in.Text = []byte(" A { }")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			if got := in.Key() == base.Key(); got != tt.same {
				t.Errorf("keys equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Error("part boundaries must affect the fingerprint")
	}
	if Fingerprint("a", "b") != Fingerprint("a", "b") {
		t.Error("fingerprint must be deterministic")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	e := NewEntry("a.cs", []Diagnostic{{ID: "VSSDK001", Severity: 1, Start: 10, End: 17}})

	if _, ok, _ := m.Get(1); ok {
		t.Fatal("empty store reported a hit")
	}
	if err := m.Put(1, e); err != nil {
		t.Fatal(err)
	}
	e.Diagnostics[0].ID = "MUTATED"

	got, ok, err := m.Get(1)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if got.Diagnostics[0].ID != "VSSDK001" {
		t.Error("Put() must copy the entry")
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d", m.Len())
	}
}

func TestDisk(t *testing.T) {
	dir := t.TempDir()
	c, err := OpenDisk(dir)
	if err != nil {
		t.Fatalf("OpenDisk() error: %v", err)
	}

	key := KeyInput{Path: "a.cs", Text: []byte("class A : Package { }")}.Key()
	want := NewEntry("a.cs", []Diagnostic{
		{ID: "VSSDK001", Severity: 1, Start: 10, End: 17},
		{ID: "AD0004", Severity: 1, Start: 0, End: 5, Args: []any{"VSSDK002"}},
	})

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("Get() on empty cache = %v, %v", ok, err)
	}
	if err := c.Put(key, want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get() = %v, %v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "units", "*", "tmp-*"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}

func TestDiskSchemaMismatchIsMiss(t *testing.T) {
	c, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var key Key = 0xabcdef
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	data, err := msgpack.Marshal(&Entry{Schema: schemaVersion + 1, Path: "a.cs"})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Errorf("Get() = %v, %v; want miss without error", ok, err)
	}
}

func TestDiskCorruptEntry(t *testing.T) {
	c, err := OpenDisk(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var key Key = 7
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte{0xc1}, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := c.Get(key); err == nil {
		t.Error("expected a decode error")
	}
}
