package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// BoundaryError reports a target path that resolves outside the safe directory.
type BoundaryError struct {
	Path     string
	Boundary string
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("attempted to update file outside of safe directory: %s is not within %s", e.Path, e.Boundary)
}

// Resolve joins a diagnostic file name onto root and returns a clean absolute path.
// Absolute names are kept as-is.
func Resolve(root, name string) (string, error) {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, filepath.FromSlash(name))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", name, err)
	}
	return abs, nil
}

// Within reports whether path lies inside boundary, comparing whole path
// components. Symlinks are followed for whichever side exists on disk, so a
// link pointing out of the tree does not pass.
func Within(path, boundary string) (bool, error) {
	absPath, err := realPath(path)
	if err != nil {
		return false, err
	}
	absBoundary, err := realPath(boundary)
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(absBoundary, absPath)
	if err != nil {
		return false, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return !filepath.IsAbs(rel), nil
}

// CheckWithin is Within turned into an error suitable for aborting a run.
func CheckWithin(path, boundary string) error {
	ok, err := Within(path, boundary)
	if err != nil {
		return err
	}
	if !ok {
		return &BoundaryError{Path: path, Boundary: boundary}
	}
	return nil
}

// realPath resolves symlinks in p. When p does not exist yet, the deepest
// existing ancestor is resolved and the missing components are appended.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", p, err)
	}
	var missing []string
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			return filepath.Join(append([]string{resolved}, missing...)...), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		missing = append([]string{filepath.Base(dir)}, missing...)
		dir = parent
	}
}
