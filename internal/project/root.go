package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file that marks a crate or workspace directory.
const ManifestName = "Cargo.toml"

// FindCargoToml walks up from startDir to locate the nearest Cargo.toml.
func FindCargoToml(startDir string) (path string, ok bool, err error) {
	var found string
	err = walkUp(startDir, func(candidate string) bool {
		found = candidate
		return true
	})
	if err != nil || found == "" {
		return "", false, err
	}
	return found, true, nil
}

// FindWorkspaceRoot returns the directory of the outermost Cargo.toml above
// startDir that declares [workspace], or of the nearest Cargo.toml when none
// does.
func FindWorkspaceRoot(startDir string) (root string, ok bool, err error) {
	var nearest, workspace string
	var decodeErr error
	err = walkUp(startDir, func(candidate string) bool {
		if nearest == "" {
			nearest = candidate
		}
		isWs, werr := IsWorkspaceManifest(candidate)
		if werr != nil {
			decodeErr = werr
			return true
		}
		if isWs {
			workspace = candidate
		}
		return false
	})
	if err != nil {
		return "", false, err
	}
	if decodeErr != nil {
		return "", false, decodeErr
	}
	switch {
	case workspace != "":
		return filepath.Dir(workspace), true, nil
	case nearest != "":
		return filepath.Dir(nearest), true, nil
	default:
		return "", false, nil
	}
}

type cargoManifest struct {
	Workspace struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

// IsWorkspaceManifest reports whether the manifest at path has a [workspace] table.
func IsWorkspaceManifest(path string) (bool, error) {
	var m cargoManifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return false, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	return meta.IsDefined("workspace"), nil
}

// walkUp calls visit for every Cargo.toml from startDir up to the filesystem
// root until visit returns true.
func walkUp(startDir string, visit func(candidate string) bool) error {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			if visit(candidate) {
				return nil
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}
