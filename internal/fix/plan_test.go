package fix

import (
	"slices"
	"testing"

	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/source"
)

func renameMsg(file string, start, end uint32) *diag.Message {
	return &diag.Message{
		Code:  codePtr("E0425"),
		Level: diag.LevelError,
		Spans: []diag.Span{{ByteStart: start, ByteEnd: end, FileName: file, IsPrimary: true}},
	}
}

func TestCollectorDeduplicates(t *testing.T) {
	c := NewCollector(diag.DefaultCodeTable())
	if n := c.Add(renameMsg("src/main.rs", 5, 10)); n != 1 {
		t.Fatalf("expected 1 new anchor, got %d", n)
	}
	dup := renameMsg("src/main.rs", 5, 10)
	dup.Spans[0].Label = "different label"
	if n := c.Add(dup); n != 0 {
		t.Fatalf("expected duplicate to be dropped, got %d", n)
	}
	if n := c.Add(renameMsg("src/other.rs", 5, 10)); n != 1 {
		t.Fatalf("expected same offsets in another file to count, got %d", n)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 anchors, got %d", c.Len())
	}
}

func TestCollectGroupsAndSorts(t *testing.T) {
	msgs := []*diag.Message{
		renameMsg("src/main.rs", 40, 45),
		renameMsg("src/lib.rs", 3, 9),
		renameMsg("src/main.rs", 2, 8),
		renameMsg("src/main.rs", 40, 45),
	}
	plan := Collect(msgs, diag.DefaultCodeTable())

	if got, want := plan.Files(), []string{"src/lib.rs", "src/main.rs"}; !slices.Equal(got, want) {
		t.Fatalf("expected files %v, got %v", want, got)
	}
	if plan.Len() != 3 {
		t.Fatalf("expected 3 anchors, got %d", plan.Len())
	}
	main := plan["src/main.rs"]
	want := []Rewrite{
		ContextSelectorRename{Span: source.Range{Start: 2, End: 8}},
		ContextSelectorRename{Span: source.Range{Start: 40, End: 45}},
	}
	if !slices.Equal(main, want) {
		t.Fatalf("expected %v, got %v", want, main)
	}
}

func TestPlanEqual(t *testing.T) {
	a := Collect([]*diag.Message{renameMsg("a.rs", 1, 4), renameMsg("b.rs", 2, 5)}, diag.DefaultCodeTable())
	b := Collect([]*diag.Message{renameMsg("b.rs", 2, 5), renameMsg("a.rs", 1, 4)}, diag.DefaultCodeTable())
	c := Collect([]*diag.Message{renameMsg("a.rs", 1, 4)}, diag.DefaultCodeTable())

	if !a.Equal(b) {
		t.Fatalf("expected %v to equal %v", a, b)
	}
	if a.Equal(c) {
		t.Fatalf("expected %v to differ from %v", a, c)
	}
	if !Plan(nil).Equal(Plan{}) {
		t.Fatal("expected nil and empty plans to be equal")
	}
}

func TestPlanEmptyAndString(t *testing.T) {
	var empty Plan
	if !empty.Empty() {
		t.Fatal("expected nil plan to be empty")
	}
	plan := Collect([]*diag.Message{renameMsg("a.rs", 1, 4)}, diag.DefaultCodeTable())
	if plan.Empty() {
		t.Fatal("expected plan to be non-empty")
	}
	if got, want := plan.String(), "a.rs: rename@1-4"; got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
