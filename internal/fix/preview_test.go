package fix

import (
	"strings"
	"testing"
)

func TestPreviewShowsChangedLines(t *testing.T) {
	change := FileChange{
		Path:   "src/main.rs",
		Before: []byte("fn main() {\n    FooError.fail();\n}\n"),
		After:  []byte("fn main() {\n    FooSnafu.fail();\n}\n"),
	}
	var sb strings.Builder
	if err := Preview(&sb, change, false); err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	want := "--- a/src/main.rs\n+++ b/src/main.rs\n@@ -2 +2 @@\n-    FooError.fail();\n+    FooSnafu.fail();\n"
	if sb.String() != want {
		t.Fatalf("unexpected preview:\n%s", sb.String())
	}
}

func TestPreviewNoChanges(t *testing.T) {
	content := []byte("same\n")
	var sb strings.Builder
	if err := Preview(&sb, FileChange{Path: "a.rs", Before: content, After: content}, false); err != nil {
		t.Fatalf("Preview returned error: %v", err)
	}
	if strings.Contains(sb.String(), "@@") {
		t.Fatalf("expected no hunks, got:\n%s", sb.String())
	}
}
