package fix

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"snafu-upgrade/internal/source"
	"snafu-upgrade/internal/trace"
)

// ApplyOptions configures how a plan is written to disk.
type ApplyOptions struct {
	// Root is the directory plan paths are relative to.
	Root string
	// SafeDir bounds every write; a file resolving outside it aborts the run.
	SafeDir string
	DryRun  bool
	Patch   PatchOptions
	// OnFile, if set, is called before each file is patched.
	OnFile func(path string)
}

// FileChange summarises what happened to one planned file.
type FileChange struct {
	Path    string // as named in the plan
	AbsPath string
	Applied int
	Skipped int
	// Written is false in dry-run mode and when patching left the bytes unchanged.
	Written bool
	// Before and After are kept in dry-run mode only, for previews.
	Before []byte
	After  []byte
}

// Changed reports whether patching produced different content.
func (c FileChange) Changed() bool {
	return c.Applied > 0
}

// ApplyResult aggregates the per-file outcome of Apply.
type ApplyResult struct {
	FileChanges []FileChange
}

// Applied returns the number of anchors applied across all files.
func (r *ApplyResult) Applied() int {
	n := 0
	for _, c := range r.FileChanges {
		n += c.Applied
	}
	return n
}

// Apply patches every file of plan in sorted path order.
//
// Each file is checked against opts.SafeDir before it is read. The first
// failure aborts: files earlier in the order keep their new content, later
// ones are untouched. The partial result is returned together with the error.
func Apply(ctx context.Context, plan Plan, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		FileChanges: make([]FileChange, 0, len(plan)),
	}

	for _, name := range plan.Files() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		_, span := trace.Start(trace.WithFile(ctx, name), trace.ScopeFile, "patch")
		change, err := applyFile(name, plan[name], opts)
		if err != nil {
			span.End(err.Error())
			return result, err
		}
		span.WithExtra("applied", strconv.Itoa(change.Applied)).
			WithExtra("skipped", strconv.Itoa(change.Skipped)).
			End("")
		result.FileChanges = append(result.FileChanges, change)
	}
	return result, nil
}

func applyFile(name string, rewrites []Rewrite, opts ApplyOptions) (FileChange, error) {
	change := FileChange{Path: name}

	abs, err := source.Resolve(opts.Root, name)
	if err != nil {
		return change, err
	}
	change.AbsPath = abs
	if err := source.CheckWithin(abs, opts.SafeDir); err != nil {
		return change, err
	}
	if opts.OnFile != nil {
		opts.OnFile(name)
	}

	file, err := source.Load(abs)
	if err != nil {
		return change, fmt.Errorf("read %s: %w", abs, err)
	}
	patched, stats, err := Patch(file.Content, rewrites, opts.Patch)
	if err != nil {
		return change, fmt.Errorf("patch %s: %w", name, err)
	}
	change.Applied = stats.Applied
	change.Skipped = stats.Skipped

	if opts.DryRun {
		change.Before = file.Content
		change.After = patched
		return change, nil
	}
	if bytes.Equal(patched, file.Content) {
		return change, nil
	}
	if err := source.Write(abs, patched, file.Mode); err != nil {
		return change, err
	}
	change.Written = true
	return change, nil
}
