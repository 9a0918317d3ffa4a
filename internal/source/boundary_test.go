package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWithin(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "crate", "src"), 0o755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}
	sibling := root + "-sibling"

	tests := []struct {
		name     string
		path     string
		boundary string
		want     bool
	}{
		{name: "nested file", path: filepath.Join(root, "crate", "src", "lib.rs"), boundary: root, want: true},
		{name: "boundary itself", path: root, boundary: root, want: true},
		{name: "parent escape", path: filepath.Join(root, "crate", "..", "..", "etc", "passwd"), boundary: filepath.Join(root, "crate"), want: false},
		{name: "shared prefix is not containment", path: filepath.Join(sibling, "lib.rs"), boundary: root, want: false},
		{name: "narrower boundary", path: filepath.Join(root, "other.rs"), boundary: filepath.Join(root, "crate"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Within(tt.path, tt.boundary)
			if err != nil {
				t.Fatalf("Within returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Within(%q, %q) = %v, want %v", tt.path, tt.boundary, got, tt.want)
			}
		})
	}
}

func TestWithinRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "lib.rs")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to write target: %v", err)
	}
	link := filepath.Join(root, "lib.rs")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	ok, err := Within(link, root)
	if err != nil {
		t.Fatalf("Within returned error: %v", err)
	}
	if ok {
		t.Fatal("expected symlink pointing outside the boundary to be rejected")
	}
}

func TestWithinResolvesMissingPathThroughLinkedAncestor(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(t.TempDir(), "linked")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tests := []struct {
		name     string
		path     string
		boundary string
	}{
		{name: "path through link", path: filepath.Join(link, "new", "deeper", "lib.rs"), boundary: dir},
		{name: "boundary through link", path: filepath.Join(dir, "new", "deeper", "lib.rs"), boundary: link},
		{name: "missing boundary below link", path: filepath.Join(dir, "gen", "out.rs"), boundary: filepath.Join(link, "gen")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Within(tt.path, tt.boundary)
			if err != nil {
				t.Fatalf("Within returned error: %v", err)
			}
			if !ok {
				t.Fatalf("Within(%q, %q) = false, want true", tt.path, tt.boundary)
			}
		})
	}
}

func TestCheckWithinReportsBothPaths(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(filepath.Dir(root), "elsewhere.rs")

	err := CheckWithin(path, root)
	var be *BoundaryError
	if !errors.As(err, &be) {
		t.Fatalf("expected BoundaryError, got %v", err)
	}
	if be.Path != path || be.Boundary != root {
		t.Fatalf("unexpected error fields: %+v", be)
	}
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	got, err := Resolve(root, "src/main.rs")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if want := filepath.Join(root, "src", "main.rs"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	abs := filepath.Join(root, "abs.rs")
	got, err = Resolve("/unused", abs)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if got != abs {
		t.Fatalf("expected absolute name kept, got %q", got)
	}
}
