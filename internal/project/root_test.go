package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
}

const crateManifest = "[package]\nname = \"demo\"\nversion = \"0.1.0\"\n"

func TestFindCargoTomlNearest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[workspace]\nmembers = [\"crates/a\"]\n")
	crate := filepath.Join(root, "crates", "a")
	writeManifest(t, crate, crateManifest)
	deep := filepath.Join(crate, "src", "bin")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := FindCargoToml(deep)
	if err != nil || !ok {
		t.Fatalf("FindCargoToml: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(crate, ManifestName) {
		t.Fatalf("expected crate manifest, got %s", path)
	}
}

func TestFindWorkspaceRoot(t *testing.T) {
	tests := []struct {
		name   string
		layout map[string]string // dir (relative) -> manifest
		start  string
		want   string
	}{
		{
			name: "workspace above crate",
			layout: map[string]string{
				".":        "[workspace]\nmembers = [\"crates/a\"]\n",
				"crates/a": crateManifest,
			},
			start: "crates/a/src",
			want:  ".",
		},
		{
			name: "outermost workspace wins",
			layout: map[string]string{
				".":     "[workspace]\n",
				"inner": "[workspace]\nmembers = [\"x\"]\n",
			},
			start: "inner",
			want:  ".",
		},
		{
			name:   "single crate",
			layout: map[string]string{"app": crateManifest},
			start:  "app/src",
			want:   "app",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			for dir, content := range tt.layout {
				writeManifest(t, filepath.Join(root, dir), content)
			}
			start := filepath.Join(root, tt.start)
			if err := os.MkdirAll(start, 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			got, ok, err := FindWorkspaceRoot(start)
			if err != nil || !ok {
				t.Fatalf("FindWorkspaceRoot: ok=%v err=%v", ok, err)
			}
			if want := filepath.Clean(filepath.Join(root, tt.want)); got != want {
				t.Fatalf("expected %s, got %s", want, got)
			}
		})
	}
}

func TestFindWorkspaceRootBadManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[workspace\n")
	if _, _, err := FindWorkspaceRoot(root); err == nil {
		t.Fatal("expected malformed manifest to fail")
	}
}
