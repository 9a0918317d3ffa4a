package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/fix"
)

// ConfigFileName is the optional per-project configuration file.
const ConfigFileName = "snafu-upgrade.toml"

// DefaultMaxIterations bounds the follow-up cycles after the first one.
const DefaultMaxIterations = 5

// FileConfig mirrors snafu-upgrade.toml.
type FileConfig struct {
	Upgrade upgradeConfig `toml:"upgrade"`
	Codes   codesConfig   `toml:"codes"`

	path string
	meta toml.MetaData
}

type upgradeConfig struct {
	Suffix         string   `toml:"suffix"`
	MaxIterations  int      `toml:"max-iterations"`
	ExtraCheckArgs []string `toml:"extra-check-args"`
	LegacySuffixes []string `toml:"legacy-suffixes"`
	Placeholder    string   `toml:"placeholder"`
}

type codesConfig struct {
	ContextSelector []string `toml:"context-selector"`
	WithContext     []string `toml:"with-context"`
}

// Path returns the file the config was loaded from.
func (c *FileConfig) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// IsDefined reports whether the key was present in the file.
func (c *FileConfig) IsDefined(key ...string) bool {
	if c == nil {
		return false
	}
	return c.meta.IsDefined(key...)
}

// FindConfig returns the config file to use: explicit if given (it must
// exist), otherwise snafu-upgrade.toml in root when present.
func FindConfig(root, explicit string) (path string, ok bool, err error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", false, fmt.Errorf("config file: %w", err)
		}
		return explicit, true, nil
	}
	candidate := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, true, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
	}
	return "", false, nil
}

// LoadConfig decodes a config file. Unknown keys are rejected so a typo does
// not silently fall back to a default.
func LoadConfig(path string) (*FileConfig, error) {
	cfg := &FileConfig{path: path}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.meta = meta
	if meta.IsDefined("upgrade", "suffix") && strings.TrimSpace(cfg.Upgrade.Suffix) == "" {
		return nil, fmt.Errorf("%s: [upgrade].suffix must not be empty", path)
	}
	if meta.IsDefined("upgrade", "max-iterations") && cfg.Upgrade.MaxIterations < 0 {
		return nil, fmt.Errorf("%s: [upgrade].max-iterations must not be negative", path)
	}
	return cfg, nil
}

// Settings are the fully merged knobs of a run.
type Settings struct {
	Suffix         string
	MaxIterations  int
	ExtraArgs      []string
	LegacySuffixes []string
	Placeholder    string
	Codes          diag.CodeTable
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	opts := fix.DefaultPatchOptions()
	return Settings{
		Suffix:         opts.Suffix,
		MaxIterations:  DefaultMaxIterations,
		LegacySuffixes: opts.LegacySuffixes,
		Placeholder:    opts.Placeholder,
		Codes:          diag.DefaultCodeTable(),
	}
}

// Apply overlays every key defined in the file onto s.
func (s *Settings) Apply(cfg *FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.IsDefined("upgrade", "suffix") {
		s.Suffix = cfg.Upgrade.Suffix
	}
	if cfg.IsDefined("upgrade", "max-iterations") {
		s.MaxIterations = cfg.Upgrade.MaxIterations
	}
	if cfg.IsDefined("upgrade", "extra-check-args") {
		s.ExtraArgs = slices.Clone(cfg.Upgrade.ExtraCheckArgs)
	}
	if cfg.IsDefined("upgrade", "legacy-suffixes") {
		s.LegacySuffixes = slices.Clone(cfg.Upgrade.LegacySuffixes)
	}
	if cfg.IsDefined("upgrade", "placeholder") {
		s.Placeholder = cfg.Upgrade.Placeholder
	}
	if cfg.IsDefined("codes", "context-selector") {
		s.Codes.ContextSelector = toCodes(cfg.Codes.ContextSelector)
	}
	if cfg.IsDefined("codes", "with-context") {
		s.Codes.WithContext = toCodes(cfg.Codes.WithContext)
	}
}

// Validate checks the merged settings before the first cycle.
func (s Settings) Validate() error {
	if s.Suffix == "" {
		return errors.New("suffix must not be empty")
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("max-iterations must not be negative, got %d", s.MaxIterations)
	}
	if err := s.Codes.Validate(); err != nil {
		return fmt.Errorf("invalid code table: %w", err)
	}
	return nil
}

// PatchOptions returns the patcher options of these settings.
func (s Settings) PatchOptions() fix.PatchOptions {
	return fix.PatchOptions{
		Suffix:         s.Suffix,
		LegacySuffixes: slices.Clone(s.LegacySuffixes),
		Placeholder:    s.Placeholder,
	}
}

func toCodes(raw []string) []diag.Code {
	out := make([]diag.Code, 0, len(raw))
	for _, c := range raw {
		out = append(out, diag.Code(strings.TrimSpace(c)))
	}
	return out
}
