package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Disk stores entries as msgpack files under a directory.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns the per-user cache directory for app.
func DefaultDir(app string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, app), nil
}

// OpenDisk initializes a disk cache rooted at dir.
func OpenDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Disk{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string {
	return c.dir
}

func (c *Disk) pathFor(key Key) string {
	hex := key.String()
	if len(hex) < 2 {
		hex = "0" + hex
	}

	return filepath.Join(c.dir, "units", hex[:2], hex+".mp")
}

// Put serializes and writes an entry.
func (c *Disk) Put(key Key, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true

	return nil
}

// Get reads an entry. Entries written with another schema version are
// reported as missing.
func (c *Disk) Get(key Key) (*Entry, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, err
	}
	defer f.Close()

	var e Entry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil {
		return nil, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}
	if e.Schema != schemaVersion {
		return nil, false, nil
	}

	return &e, true, nil
}
