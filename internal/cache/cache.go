// Package cache stores per-unit analysis results between runs.
package cache

import (
	"encoding/binary"
	"slices"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Current schema version - increment when Entry format changes
const schemaVersion uint16 = 1

// Key identifies the result of analyzing one unit under one configuration.
type Key uint64

func (k Key) String() string {
	return strconv.FormatUint(uint64(k), 16)
}

// KeyInput holds everything a unit's result depends on.
type KeyInput struct {
	Path     string
	Text     []byte
	Ruleset  uint64 // fingerprint of the admitted rules and descriptors
	Semantic uint64 // fingerprint of the semantic model, 0 if unknown
	Suppress bool
	// Generated is the host's verdict on whether the whole unit is
	// generated code.
	Generated bool
}

// Key hashes the input.
func (in KeyInput) Key() Key {
	d := xxhash.New()

	var buf [8]byte
	binary.LittleEndian.PutUint16(buf[:2], schemaVersion)
	_, _ = d.Write(buf[:2])
	writeString(d, in.Path)
	binary.LittleEndian.PutUint64(buf[:], uint64(len(in.Text)))
	_, _ = d.Write(buf[:])
	_, _ = d.Write(in.Text)
	binary.LittleEndian.PutUint64(buf[:], in.Ruleset)
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], in.Semantic)
	_, _ = d.Write(buf[:])
	_, _ = d.Write([]byte{flag(in.Suppress), flag(in.Generated)})

	return Key(d.Sum64())
}

func flag(b bool) byte {
	if b {
		return 1
	}

	return 0
}

func writeString(d *xxhash.Digest, s string) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
	_, _ = d.Write(buf[:])
	_, _ = d.WriteString(s)
}

// Fingerprint hashes parts in order.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		writeString(d, p)
	}

	return d.Sum64()
}

// Diagnostic is the cached form of one diagnostic. Descriptors are stored by
// id and re-linked on load.
type Diagnostic struct {
	ID       string
	Severity uint8
	Start    uint32
	End      uint32
	Args     []any
}

// Entry is the cached result of one unit.
type Entry struct {
	// Schema version for safe invalidation when format changes
	Schema      uint16
	Path        string
	Diagnostics []Diagnostic
}

// NewEntry creates an entry with the current schema version.
func NewEntry(path string, diags []Diagnostic) *Entry {
	return &Entry{Schema: schemaVersion, Path: path, Diagnostics: diags}
}

// Store persists entries by key.
type Store interface {
	Get(key Key) (*Entry, bool, error)
	Put(key Key, e *Entry) error
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[Key]*Entry)}
}

// Get returns a copy of the entry stored under key.
func (m *Memory) Get(key Key) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}

	return cloneEntry(e), true, nil
}

// Put stores a copy of e.
func (m *Memory) Put(key Key, e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = cloneEntry(e)

	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

func cloneEntry(e *Entry) *Entry {
	c := *e
	c.Diagnostics = slices.Clone(e.Diagnostics)

	return &c
}
