package fix

import (
	"cmp"
	"fmt"

	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/source"
)

// Rewrite is one edit anchor. The set of implementations is closed:
// ContextSelectorRename and WithContextArgument. Both are comparable, so a
// Rewrite can be used as a map key and compared with ==.
type Rewrite interface {
	// Range returns the anchor's byte range in the original file.
	Range() source.Range
	Category() diag.Category
	String() string
	rewrite()
}

// ContextSelectorRename replaces the legacy suffix of the selector that ends
// at Span.End with the configured one.
type ContextSelectorRename struct {
	Span source.Range
}

func (r ContextSelectorRename) Range() source.Range     { return r.Span }
func (r ContextSelectorRename) Category() diag.Category { return diag.CategoryContextSelector }
func (r ContextSelectorRename) String() string {
	return fmt.Sprintf("rename@%s", r.Span)
}
func (ContextSelectorRename) rewrite() {}

// WithContextArgument inserts a placeholder parameter into the empty closure
// header `||` that ends at Span.End.
type WithContextArgument struct {
	Span source.Range
}

func (r WithContextArgument) Range() source.Range     { return r.Span }
func (r WithContextArgument) Category() diag.Category { return diag.CategoryWithContext }
func (r WithContextArgument) String() string {
	return fmt.Sprintf("argument@%s", r.Span)
}
func (WithContextArgument) rewrite() {}

// NewRewrite builds the anchor for a category; ok is false for CategoryNone.
func NewRewrite(cat diag.Category, r source.Range) (Rewrite, bool) {
	switch cat {
	case diag.CategoryContextSelector:
		return ContextSelectorRename{Span: r}, true
	case diag.CategoryWithContext:
		return WithContextArgument{Span: r}, true
	default:
		return nil, false
	}
}

// CompareRewrites orders anchors by their range, then by category.
func CompareRewrites(a, b Rewrite) int {
	if c := source.Compare(a.Range(), b.Range()); c != 0 {
		return c
	}
	return cmp.Compare(a.Category(), b.Category())
}
