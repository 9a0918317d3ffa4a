package fix

import (
	"errors"
	"strings"
	"testing"

	"snafu-upgrade/internal/source"
)

// renameAt anchors a ContextSelectorRename on the first occurrence of ident.
func renameAt(t *testing.T, src, ident string) Rewrite {
	t.Helper()
	start := strings.Index(src, ident)
	if start < 0 {
		t.Fatalf("%q not found in source", ident)
	}
	return ContextSelectorRename{Span: source.Range{Start: uint32(start), End: uint32(start + len(ident))}}
}

// argumentAt anchors a WithContextArgument on the first `||` after marker.
func argumentAt(t *testing.T, src, marker string) Rewrite {
	t.Helper()
	base := strings.Index(src, marker)
	if base < 0 {
		t.Fatalf("%q not found in source", marker)
	}
	start := base + strings.Index(src[base:], "||")
	return WithContextArgument{Span: source.Range{Start: uint32(start), End: uint32(start + 2)}}
}

func TestPatchStripsLegacySuffix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		end  uint32
		want string
	}{
		{name: "error suffix", in: "FooError", end: 8, want: "FooSnafu"},
		{name: "context suffix", in: "FooContext", end: 10, want: "FooSnafu"},
		{name: "no legacy suffix", in: "Foo", end: 3, want: "FooSnafu"},
		{name: "both markers in priority order", in: "FooContextError", end: 15, want: "FooSnafu"},
		{name: "trailing text kept", in: "FooContext.build();", end: 10, want: "FooSnafu.build();"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := ContextSelectorRename{Span: source.Range{Start: 0, End: tt.end}}
			got, stats, err := Patch([]byte(tt.in), []Rewrite{rw}, DefaultPatchOptions())
			if err != nil {
				t.Fatalf("Patch returned error: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if stats.Applied != 1 || stats.Skipped != 0 {
				t.Fatalf("unexpected stats: %+v", stats)
			}
		})
	}
}

func TestPatchRenameIsIdempotent(t *testing.T) {
	src := "let _ = FooSnafu.build();"
	rw := renameAt(t, src, "FooSnafu")

	got, stats, err := Patch([]byte(src), []Rewrite{rw}, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(got) != src {
		t.Fatalf("expected unchanged content, got %q", got)
	}
	if stats.Skipped != 1 || stats.Applied != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	// same offsets against content migrated by an earlier run
	first, _, err := Patch([]byte("FooError"), []Rewrite{ContextSelectorRename{Span: source.Range{End: 8}}}, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	second, _, err := Patch(first, []Rewrite{ContextSelectorRename{Span: source.Range{End: 8}}}, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("second application changed content: %q -> %q", first, second)
	}
}

func TestPatchInsertsPlaceholder(t *testing.T) {
	src := "    let _ = inner.with_context(|| x.fail());\n"
	rw := argumentAt(t, src, "with_context")

	got, stats, err := Patch([]byte(src), []Rewrite{rw}, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := "    let _ = inner.with_context(|_| x.fail());\n"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if stats.Applied != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPatchPlaceholderGuard(t *testing.T) {
	src := "inner.with_context(|_| x.fail())"
	start := strings.Index(src, "|_|")
	rw := WithContextArgument{Span: source.Range{Start: uint32(start), End: uint32(start + 3)}}

	got, stats, err := Patch([]byte(src), []Rewrite{rw}, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(got) != src {
		t.Fatalf("expected migrated closure to be left alone, got %q", got)
	}
	if stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPatchAppliesRightToLeft(t *testing.T) {
	src := `fn main() {
    let _ = EnumVariant1.build();
    let _ = EnumVariant2 { name: "name" }.build();
    let _ = StructContext.build();
}
`
	rewrites := []Rewrite{
		renameAt(t, src, "EnumVariant1"),
		renameAt(t, src, "EnumVariant2"),
		renameAt(t, src, "StructContext"),
	}
	got, stats, err := Patch([]byte(src), rewrites, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := `fn main() {
    let _ = EnumVariant1Snafu.build();
    let _ = EnumVariant2Snafu { name: "name" }.build();
    let _ = StructSnafu.build();
}
`
	if string(got) != want {
		t.Fatalf("unexpected content:\n%s", got)
	}
	if stats.Applied != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPatchOrderOfInputDoesNotMatter(t *testing.T) {
	src := "A.x(); BContext.y(); CError.z();"
	forward := []Rewrite{renameAt(t, src, "A"), renameAt(t, src, "BContext"), renameAt(t, src, "CError")}
	backward := []Rewrite{forward[2], forward[0], forward[1]}

	a, _, err := Patch([]byte(src), forward, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	b, _, err := Patch([]byte(src), backward, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := "ASnafu.x(); BSnafu.y(); CSnafu.z();"
	if string(a) != want || string(b) != want {
		t.Fatalf("expected %q for both orders, got %q and %q", want, a, b)
	}
}

func TestPatchMixedCategories(t *testing.T) {
	src := `fn main() {
    let inner = InnerContext.fail::<()>();
    let _ = inner.with_context(|| Variant1);
}
`
	rewrites := []Rewrite{
		renameAt(t, src, "InnerContext"),
		argumentAt(t, src, "with_context"),
		renameAt(t, src, "Variant1"),
	}
	got, _, err := Patch([]byte(src), rewrites, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := `fn main() {
    let inner = InnerSnafu.fail::<()>();
    let _ = inner.with_context(|_| Variant1Snafu);
}
`
	if string(got) != want {
		t.Fatalf("unexpected content:\n%s", got)
	}
}

func TestPatchLeavesOtherBytesUntouched(t *testing.T) {
	src := "héllo FooError wörld\r\n\tBarContext ✓ tail"
	rewrites := []Rewrite{renameAt(t, src, "FooError"), renameAt(t, src, "BarContext")}

	got, _, err := Patch([]byte(src), rewrites, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := "héllo FooSnafu wörld\r\n\tBarSnafu ✓ tail"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestPatchCollapsesSharedEnd(t *testing.T) {
	src := "a::FooError"
	rewrites := []Rewrite{
		ContextSelectorRename{Span: source.Range{Start: 0, End: 11}},
		ContextSelectorRename{Span: source.Range{Start: 3, End: 11}},
	}
	got, stats, err := Patch([]byte(src), rewrites, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(got) != "a::FooSnafu" {
		t.Fatalf("expected single suffix, got %q", got)
	}
	if stats.Applied != 1 || stats.Skipped != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestPatchDetectsOverlap(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		rewrites []Rewrite
	}{
		{
			name: "rename reaching into stripped marker",
			src:  "FooError",
			rewrites: []Rewrite{
				ContextSelectorRename{Span: source.Range{Start: 0, End: 8}},
				ContextSelectorRename{Span: source.Range{Start: 2, End: 5}},
			},
		},
		{
			name: "categories sharing an end offset",
			src:  "x(||)",
			rewrites: []Rewrite{
				ContextSelectorRename{Span: source.Range{Start: 0, End: 4}},
				WithContextArgument{Span: source.Range{Start: 2, End: 4}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Patch([]byte(tt.src), tt.rewrites, DefaultPatchOptions())
			var oe *OverlapError
			if !errors.As(err, &oe) {
				t.Fatalf("expected OverlapError, got %v", err)
			}
		})
	}
}

func TestPatchRejectsOutOfRange(t *testing.T) {
	rw := ContextSelectorRename{Span: source.Range{Start: 2, End: 42}}
	_, _, err := Patch([]byte("short"), []Rewrite{rw}, DefaultPatchOptions())
	var re *RangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if re.Size != 5 {
		t.Fatalf("expected size 5, got %d", re.Size)
	}
}

func TestPatchCustomOptions(t *testing.T) {
	opts := PatchOptions{Suffix: "Ctx", Placeholder: "e"}
	src := "FooError.fail(); x.with_context(|| FooError)"
	rewrites := []Rewrite{renameAt(t, src, "FooError"), argumentAt(t, src, "with_context")}

	got, _, err := Patch([]byte(src), rewrites, opts)
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	want := "FooErrorCtx.fail(); x.with_context(|e| FooError)"
	if string(got) != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if _, _, err := Patch([]byte(src), rewrites, PatchOptions{}); err == nil {
		t.Fatal("expected empty suffix to be rejected")
	}
}

func TestPatchNoAnchors(t *testing.T) {
	src := []byte("unchanged")
	got, stats, err := Patch(src, nil, DefaultPatchOptions())
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if string(got) != "unchanged" || stats != (PatchStats{}) {
		t.Fatalf("unexpected result %q %+v", got, stats)
	}
}
