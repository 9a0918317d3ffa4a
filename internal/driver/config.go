package driver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/fix"
)

// Checker runs the external build tool once and returns its complete stdout.
type Checker interface {
	Check(ctx context.Context, extraArgs []string) ([]byte, error)
}

// Config is the immutable configuration of one upgrade run.
type Config struct {
	// Root is the directory diagnostic file names are relative to.
	Root string
	// SafeDir bounds every write; defaults to Root.
	SafeDir        string
	DryRun         bool
	Suffix         string
	LegacySuffixes []string
	Placeholder    string
	// MaxIterations bounds the follow-up cycles after the first one.
	MaxIterations int
	ExtraArgs     []string
	Codes         diag.CodeTable
}

// Validate reports configuration errors that would make every cycle fail.
func (c Config) Validate() error {
	if c.Root == "" {
		return errors.New("driver: project root is not set")
	}
	if c.Suffix == "" {
		return errors.New("driver: suffix must not be empty")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("driver: max iterations must not be negative, got %d", c.MaxIterations)
	}
	if err := c.Codes.Validate(); err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	return nil
}

func (c Config) safeDir() string {
	if c.SafeDir != "" {
		return c.SafeDir
	}
	return c.Root
}

func (c Config) patchOptions() fix.PatchOptions {
	return fix.PatchOptions{
		Suffix:         c.Suffix,
		LegacySuffixes: slices.Clone(c.LegacySuffixes),
		Placeholder:    c.Placeholder,
	}
}
