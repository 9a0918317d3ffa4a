package project

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func fakeCargo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil { // #nosec G306
		t.Fatalf("write fake cargo: %v", err)
	}
	return path
}

func TestParseMetadata(t *testing.T) {
	md, err := ParseMetadata([]byte(`{"packages":[],"workspace_root":"/src/ws","target_directory":"/src/ws/target","version":1}`))
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.WorkspaceRoot != "/src/ws" || md.TargetDirectory != "/src/ws/target" {
		t.Fatalf("unexpected metadata %+v", md)
	}
	if _, err := ParseMetadata([]byte(`{"version":1}`)); err == nil {
		t.Fatal("expected missing workspace_root to fail")
	}
	if _, err := ParseMetadata([]byte(`not json`)); err == nil {
		t.Fatal("expected invalid json to fail")
	}
}

func TestResolveRootFromMetadata(t *testing.T) {
	tool := fakeCargo(t, `echo '{"workspace_root":"/work/space"}'`)
	root, err := ResolveRoot(context.Background(), t.TempDir(), &MetadataRunner{Program: tool})
	if err != nil {
		t.Fatalf("ResolveRoot: %v", err)
	}
	if root.Dir != "/work/space" || root.Source != RootFromMetadata {
		t.Fatalf("unexpected root %+v", root)
	}
}

func TestResolveRootFallsBackToManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, crateManifest)
	tool := fakeCargo(t, `echo "error: could not find Cargo.toml" >&2; exit 101`)

	root, err := ResolveRoot(context.Background(), dir, &MetadataRunner{Program: tool})
	if err != nil {
		t.Fatalf("ResolveRoot: %v", err)
	}
	if root.Dir != dir || root.Source != RootFromManifest {
		t.Fatalf("unexpected root %+v", root)
	}
}

func TestResolveRootWithoutRunner(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, crateManifest)
	root, err := ResolveRoot(context.Background(), filepath.Join(dir, "."), nil)
	if err != nil {
		t.Fatalf("ResolveRoot: %v", err)
	}
	if root.Dir != dir {
		t.Fatalf("expected %s, got %s", dir, root.Dir)
	}
}
