package project

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// RootSource tells how a project root was found.
type RootSource string

const (
	RootFromMetadata RootSource = "cargo-metadata"
	RootFromManifest RootSource = "manifest"
)

// Root is the resolved workspace root.
type Root struct {
	Dir    string
	Source RootSource
}

// Metadata is the subset of `cargo metadata` output the tool needs.
type Metadata struct {
	WorkspaceRoot   string `json:"workspace_root"`
	TargetDirectory string `json:"target_directory"`
}

// ParseMetadata decodes `cargo metadata --format-version 1` output.
func ParseMetadata(data []byte) (Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		return Metadata{}, fmt.Errorf("failed to decode cargo metadata: %w", err)
	}
	if md.WorkspaceRoot == "" {
		return Metadata{}, errors.New("cargo metadata: missing workspace_root")
	}
	return md, nil
}

// MetadataRunner invokes `cargo metadata`.
type MetadataRunner struct {
	Program string // defaults to "cargo"
	Dir     string
}

// Metadata runs the tool and decodes its output.
func (r *MetadataRunner) Metadata(ctx context.Context) (Metadata, error) {
	program := r.Program
	if program == "" {
		program = "cargo"
	}
	// #nosec G204 -- fixed arguments
	cmd := exec.CommandContext(ctx, program, "metadata", "--format-version", "1", "--no-deps")
	cmd.Dir = r.Dir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return Metadata{}, fmt.Errorf("%s metadata: %w", program, err)
		}
		return Metadata{}, fmt.Errorf("%s metadata: %s", program, msg)
	}
	return ParseMetadata(bytes.TrimSpace(out))
}

// ResolveRoot finds the workspace root for startDir. It asks cargo first and
// falls back to reading manifests when cargo is unavailable or fails.
func ResolveRoot(ctx context.Context, startDir string, runner *MetadataRunner) (Root, error) {
	var metaErr error
	if runner != nil {
		md, err := runner.Metadata(ctx)
		if err == nil {
			return Root{Dir: md.WorkspaceRoot, Source: RootFromMetadata}, nil
		}
		if ctx.Err() != nil {
			return Root{}, ctx.Err()
		}
		metaErr = err
	}

	dir, ok, err := FindWorkspaceRoot(startDir)
	if err != nil {
		return Root{}, err
	}
	if !ok {
		if metaErr != nil {
			return Root{}, fmt.Errorf("no %s found above %s (%v)", ManifestName, startDir, metaErr)
		}
		return Root{}, fmt.Errorf("no %s found above %s", ManifestName, startDir)
	}
	return Root{Dir: dir, Source: RootFromManifest}, nil
}
