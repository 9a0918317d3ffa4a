package diagfmt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snafu-upgrade/internal/driver"
	"snafu-upgrade/internal/fix"
	"snafu-upgrade/internal/observ"
	"snafu-upgrade/internal/source"
)

const mainRS = "fn main() {\n    FooSnafu.fail();\n}\n"

func projectWithMain(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "src", "main.rs"), []byte(mainRS), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func renameAt(start, end uint32) fix.Rewrite {
	return fix.ContextSelectorRename{Span: source.Range{Start: start, End: end}}
}

func convergedResult() *driver.Result {
	return &driver.Result{
		Status:        driver.StatusConverged,
		MaxIterations: 5,
		Cycles: []driver.CycleReport{
			{
				Index:    1,
				Messages: 2,
				Plan:     fix.Plan{"src/main.rs": {renameAt(16, 24)}},
				Changes:  []fix.FileChange{{Path: "src/main.rs", Applied: 1, Written: true}},
			},
			{Index: 2, Plan: fix.Plan{}},
		},
	}
}

func TestPrettyConverged(t *testing.T) {
	root := projectWithMain(t)
	var sb strings.Builder
	err := Pretty(&sb, convergedResult(), NewFiles(root), PrettyOpts{ShowAnchors: true})
	if err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "cycle 1: 2 messages, 1 anchor in 1 file\n" +
		"  src/main.rs: 1 applied, 0 skipped, written\n" +
		"    src/main.rs:2:5 context-selector\n" +
		"cycle 2: 0 messages, 0 anchors in 0 files\n" +
		"converged after 2 cycles\n"
	if sb.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestPrettyDryRunWithDiff(t *testing.T) {
	before := []byte("fn main() {\n    FooError.fail();\n}\n")
	res := &driver.Result{
		Status: driver.StatusDryRun,
		Cycles: []driver.CycleReport{{
			Index:    1,
			Messages: 1,
			Plan:     fix.Plan{"src/main.rs": {renameAt(16, 24)}},
			Changes: []fix.FileChange{{
				Path:    "src/main.rs",
				Applied: 1,
				Before:  before,
				After:   []byte(mainRS),
			}},
		}},
	}
	var sb strings.Builder
	if err := Pretty(&sb, res, NewFiles(t.TempDir()), PrettyOpts{ShowDiff: true, ShowAnchors: true}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"would write modified content to 'src/main.rs'",
		"src/main.rs:2:5 context-selector",
		"-    FooError.fail();\n+    FooSnafu.fail();\n",
		"dry run finished; no files were written",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrettyNonConvergence(t *testing.T) {
	res := convergedResult()
	res.Status = driver.StatusExhausted
	res.Warnings = []string{"failed to write journal: disk full"}

	var sb strings.Builder
	if err := Pretty(&sb, res, NewFiles(t.TempDir()), PrettyOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := sb.String()
	if !strings.Contains(out, "  main.rs: 1 applied") {
		t.Fatalf("expected basename paths:\n%s", out)
	}
	if !strings.Contains(out, "warning: failed to write journal: disk full\n") {
		t.Fatalf("expected warning line:\n%s", out)
	}
	if !strings.HasSuffix(out, "could not converge on a resolution in 5 attempts\n") {
		t.Fatalf("expected outcome line:\n%s", out)
	}
}

func TestPrettyNonConvergenceGoesToStderr(t *testing.T) {
	tests := []struct {
		status driver.Status
		want   string
	}{
		{driver.StatusExhausted, "could not converge on a resolution in 5 attempts\n"},
		{driver.StatusNoProgress, "did not make progress"},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			res := convergedResult()
			res.Status = tt.status

			var out, errOut strings.Builder
			if err := Pretty(&out, res, NewFiles(t.TempDir()), PrettyOpts{Stderr: &errOut}); err != nil {
				t.Fatalf("Pretty: %v", err)
			}
			if !strings.Contains(errOut.String(), tt.want) {
				t.Fatalf("stderr = %q, want %q", errOut.String(), tt.want)
			}
			if strings.Contains(out.String(), tt.want) {
				t.Fatalf("status line leaked into the report:\n%s", out.String())
			}
			if !strings.Contains(out.String(), "cycle 1:") {
				t.Fatalf("report body missing:\n%s", out.String())
			}
		})
	}

	var out, errOut strings.Builder
	if err := Pretty(&out, convergedResult(), NewFiles(t.TempDir()), PrettyOpts{Stderr: &errOut}); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	if errOut.Len() != 0 || !strings.Contains(out.String(), "converged after") {
		t.Fatalf("converged status should stay in the report: out=%q err=%q", out.String(), errOut.String())
	}
}

func TestJSONReport(t *testing.T) {
	root := projectWithMain(t)
	res := convergedResult()
	res.Status = driver.StatusNoProgress

	var sb strings.Builder
	err := JSON(&sb, res, NewFiles(root), JSONOpts{
		IncludePositions: true,
		IncludeAnchors:   true,
		Timings:          &observ.Report{TotalMS: 1.5},
	})
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var out ReportOutput
	if err := json.Unmarshal([]byte(sb.String()), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, sb.String())
	}
	if out.Status != "no-progress" || out.Message != "did not make progress on a resolution" {
		t.Fatalf("unexpected status %q / %q", out.Status, out.Message)
	}
	if len(out.Cycles) != 2 || out.Cycles[0].Anchors != 1 {
		t.Fatalf("unexpected cycles %+v", out.Cycles)
	}
	file := out.Cycles[0].Files[0]
	if !file.Written || file.Applied != 1 || len(file.Anchors) != 1 {
		t.Fatalf("unexpected file %+v", file)
	}
	loc := file.Anchors[0].Location
	if file.Anchors[0].Kind != "context-selector" || loc.StartLine != 2 || loc.StartCol != 5 || loc.EndCol != 13 {
		t.Fatalf("unexpected anchor %+v", file.Anchors[0])
	}
	if out.Timings == nil || out.Timings.TotalMS != 1.5 {
		t.Fatalf("expected timings, got %+v", out.Timings)
	}
}

func TestFilesMissingFile(t *testing.T) {
	files := NewFiles(t.TempDir())
	if files.Get("nope.rs") != nil {
		t.Fatal("expected nil for missing file")
	}
	loc := makeLocation("nope.rs", source.Range{Start: 3, End: 7}, files, PathModeAuto, true)
	if loc.StartLine != 0 || loc.StartByte != 3 {
		t.Fatalf("unexpected location %+v", loc)
	}
}
