package project

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"snafu-upgrade/internal/diag"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverlaysDefinedKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[upgrade]
suffix = "Ctx"
max-iterations = 0
extra-check-args = ["--all-targets"]

[codes]
with-context = ["E0593", "E0631"]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Path() != path {
		t.Fatalf("expected path %s, got %s", path, cfg.Path())
	}

	s := DefaultSettings()
	s.Apply(cfg)

	if s.Suffix != "Ctx" {
		t.Fatalf("expected suffix from file, got %q", s.Suffix)
	}
	if s.MaxIterations != 0 {
		t.Fatalf("expected explicit zero to override default, got %d", s.MaxIterations)
	}
	if !slices.Equal(s.ExtraArgs, []string{"--all-targets"}) {
		t.Fatalf("unexpected extra args %v", s.ExtraArgs)
	}
	if s.Placeholder != "_" {
		t.Fatalf("expected default placeholder, got %q", s.Placeholder)
	}
	if !slices.Equal(s.LegacySuffixes, []string{"Error", "Context"}) {
		t.Fatalf("expected default legacy suffixes, got %v", s.LegacySuffixes)
	}
	if !slices.Equal(s.Codes.WithContext, []diag.Code{"E0593", "E0631"}) {
		t.Fatalf("unexpected with-context codes %v", s.Codes.WithContext)
	}
	if !slices.Equal(s.Codes.ContextSelector, diag.DefaultContextSelectorCodes) {
		t.Fatalf("expected default context-selector codes, got %v", s.Codes.ContextSelector)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "syntax", content: "[upgrade\n", want: "failed to parse TOML"},
		{name: "unknown key", content: "[upgrade]\nsufix = \"X\"\n", want: "unknown keys: upgrade.sufix"},
		{name: "empty suffix", content: "[upgrade]\nsuffix = \"\"\n", want: "suffix must not be empty"},
		{name: "negative iterations", content: "[upgrade]\nmax-iterations = -1\n", want: "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, t.TempDir(), tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestSettingsValidateOverlappingCodes(t *testing.T) {
	s := DefaultSettings()
	s.Codes.WithContext = append(s.Codes.WithContext, "E0425")
	if err := s.Validate(); err == nil || !strings.Contains(err.Error(), "E0425") {
		t.Fatalf("expected overlapping codes to be rejected, got %v", err)
	}
}

func TestFindConfig(t *testing.T) {
	dir := t.TempDir()
	if _, ok, err := FindConfig(dir, ""); err != nil || ok {
		t.Fatalf("expected no config, got ok=%v err=%v", ok, err)
	}
	path := writeConfig(t, dir, "")
	if got, ok, err := FindConfig(dir, ""); err != nil || !ok || got != path {
		t.Fatalf("expected %s, got %s ok=%v err=%v", path, got, ok, err)
	}
	if _, _, err := FindConfig(dir, filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatal("expected explicit missing config to fail")
	}
}

func TestSettingsPatchOptions(t *testing.T) {
	s := DefaultSettings()
	s.Suffix = "Ctx"
	opts := s.PatchOptions()
	if opts.Suffix != "Ctx" || opts.Placeholder != "_" || len(opts.LegacySuffixes) != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}
