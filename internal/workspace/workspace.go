// Package workspace finds C# sources and parses them in parallel.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/mpyw/vssdkanalyzers/internal/csharp"
	"github.com/mpyw/vssdkanalyzers/internal/syntax"
)

// Extension is the suffix of the files Discover collects.
const Extension = ".cs"

// ErrNoSources is returned by Discover when no path yields a source file.
var ErrNoSources = errors.New("no C# source files found")

// Discover expands paths into a sorted, duplicate-free list of source files.
// Directories are walked recursively. A directory or file whose base name
// or slash-separated path relative to the walked root matches one of the
// exclude patterns is skipped. Files named explicitly are kept even without
// the .cs suffix.
func Discover(paths []string, exclude []string) ([]string, error) {
	for _, p := range exclude {
		if _, err := filepath.Match(p, ""); err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && excluded(root, path, exclude) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), Extension) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, ErrNoSources
	}
	slices.Sort(files)

	return files, nil
}

func excluded(root, path string, patterns []string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
	}

	return false
}

// Options configures Load.
type Options struct {
	// Jobs bounds the number of files read and parsed at once. Zero or
	// less means GOMAXPROCS.
	Jobs   int
	Logger *zap.Logger
}

// Workspace is a set of parsed units.
type Workspace struct {
	Units []*syntax.Unit
}

// SyntaxErrors returns the recoverable parse errors of every unit.
func (w *Workspace) SyntaxErrors() []error {
	var errs []error
	for _, u := range w.Units {
		errs = append(errs, u.Errors...)
	}

	return errs
}

// Load reads and parses files in parallel. Units keep the order of files.
// Syntax errors do not fail the load; unreadable files do.
func Load(ctx context.Context, files []string, opts Options) (*Workspace, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	units := make([]*syntax.Unit, len(files))
	if len(files) == 0 {
		return &Workspace{}, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := ReadSource(path)
			if err != nil {
				return err
			}
			u, err := csharp.Parse(path, src)
			if err != nil {
				log.Debug("syntax errors", zap.String("path", path), zap.Int("count", len(u.Errors)))
			}
			units[i] = u

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("workspace loaded", zap.Int("units", len(units)), zap.Int("jobs", jobs))

	return &Workspace{Units: units}, nil
}

// ReadSource reads a file and decodes it to UTF-8. A UTF-8 or UTF-16 byte
// order mark selects the encoding and is removed; without one the content
// is taken as UTF-8.
func ReadSource(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Decode(raw)
}

// Decode converts src to UTF-8 following its byte order mark.
func Decode(src []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, src)
	if err != nil {
		return nil, err
	}

	return out, nil
}
