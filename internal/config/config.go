// Package config loads the .vssdkcheck.toml host configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mpyw/vssdkanalyzers/internal/diag"
	"github.com/mpyw/vssdkanalyzers/internal/logger"
	"github.com/mpyw/vssdkanalyzers/internal/rules"
	"github.com/mpyw/vssdkanalyzers/internal/semantic"
)

// FileName is the configuration file looked up from the working directory
// upwards.
const FileName = ".vssdkcheck.toml"

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Color modes.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// FailNever disables the failure threshold.
const FailNever = "never"

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the host configuration.
type Config struct {
	Jobs       int      `toml:"jobs"`
	Format     string   `toml:"format"`
	Color      string   `toml:"color"`
	FailOn     string   `toml:"fail_on"`
	Suppress   bool     `toml:"suppress"`
	Enable     []string `toml:"enable"`
	Disable    []string `toml:"disable"`
	References []string `toml:"references"`
	Exclude    []string `toml:"exclude"`

	// ImplicitUsings imports the namespaces of every reference into each
	// unit, as SDK-style projects do.
	ImplicitUsings bool `toml:"implicit_usings"`

	Cache    CacheConfig    `toml:"cache"`
	Log      LogConfig      `toml:"log"`
	VSSDK001 VSSDK001Config `toml:"vssdk001"`
}

// CacheConfig configures incremental re-analysis.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // empty means the user cache directory
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// VSSDK001Config holds the VSSDK001 settings.
type VSSDK001Config struct {
	ReportAnyBase bool   `toml:"report_any_base"`
	Legacy        string `toml:"legacy"`
	Async         string `toml:"async"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Format:   FormatText,
		Color:    ColorAuto,
		FailOn:   diag.SeverityError.String(),
		Suppress: true,
		Exclude:  []string{"bin", "obj", ".git", ".vs"},

		ImplicitUsings: true,
		Log: LogConfig{
			Level:  string(logger.WarnLevel),
			Format: string(logger.FormatConsole),
		},
	}
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false, nil
}

// Load reads path over the defaults and validates the result. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalid, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	var errs []error
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("%w: jobs must not be negative", ErrInvalid))
	}
	switch c.Format {
	case FormatText, FormatJSON, FormatSARIF:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown format %q", ErrInvalid, c.Format))
	}
	switch c.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		errs = append(errs, fmt.Errorf("%w: unknown color mode %q", ErrInvalid, c.Color))
	}
	if _, _, err := c.FailThreshold(); err != nil {
		errs = append(errs, err)
	}
	for _, id := range append(append([]string(nil), c.Enable...), c.Disable...) {
		if !diag.ValidID(strings.TrimSpace(id)) {
			errs = append(errs, fmt.Errorf("%w: invalid diagnostic id %q", ErrInvalid, id))
		}
	}
	if _, err := c.SemanticReferences(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Rules(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}
	if _, err := logger.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}

	return errors.Join(errs...)
}

// FailThreshold returns the lowest severity failing a run. ok is false
// when runs never fail on diagnostics.
func (c *Config) FailThreshold() (sev diag.Severity, ok bool, err error) {
	if strings.EqualFold(c.FailOn, FailNever) {
		return 0, false, nil
	}
	sev, err = diag.ParseSeverity(strings.ToLower(c.FailOn))
	if err != nil {
		return 0, false, fmt.Errorf("%w: fail_on: %w", ErrInvalid, err)
	}

	return sev, true, nil
}

// SemanticReferences returns the default metadata references followed by
// the configured ones.
func (c *Config) SemanticReferences() ([]semantic.Reference, error) {
	refs := semantic.DefaultReferences()
	for _, s := range c.References {
		parsed, err := semantic.ParseReferences(s)
		if err != nil {
			return nil, fmt.Errorf("%w: references: %w", ErrInvalid, err)
		}
		refs = append(refs, parsed...)
	}

	return refs, nil
}

// SemanticOptions returns the semantic model options for the configured
// references and implicit usings.
func (c *Config) SemanticOptions() ([]semantic.BuildOption, error) {
	refs, err := c.SemanticReferences()
	if err != nil {
		return nil, err
	}
	opts := []semantic.BuildOption{semantic.WithReferences(refs...)}
	if c.ImplicitUsings {
		opts = append(opts, semantic.WithImplicitUsings(semantic.ReferenceNamespaces(refs)...))
	}

	return opts, nil
}

// Rules returns the rule settings.
func (c *Config) Rules() (rules.Config, error) {
	var out rules.Config
	out.VSSDK001.ReportAnyBase = c.VSSDK001.ReportAnyBase
	for _, f := range []struct {
		key string
		in  string
		out *semantic.Name
	}{
		{key: "legacy", in: c.VSSDK001.Legacy, out: &out.VSSDK001.Legacy},
		{key: "async", in: c.VSSDK001.Async, out: &out.VSSDK001.Async},
	} {
		if strings.TrimSpace(f.in) == "" {
			continue
		}
		n, err := semantic.ParseName(f.in)
		if err != nil {
			return rules.Config{}, fmt.Errorf("%w: vssdk001.%s: %w", ErrInvalid, f.key, err)
		}
		*f.out = n
	}

	return out, nil
}
