package diag

import (
	"fmt"
	"slices"
	"strings"
)

// Category is the rewrite a diagnostic code asks for.
type Category uint8

const (
	// CategoryNone: the code is not handled and the message is discarded.
	CategoryNone Category = iota
	// CategoryContextSelector: a context selector lost its suffix in the new API
	// (unresolved name/import/variant). Anchored on the primary span.
	CategoryContextSelector
	// CategoryWithContext: a closure passed to with_context now takes an
	// argument. Anchored on the secondary span covering the empty `||`.
	CategoryWithContext
)

func (c Category) String() string {
	switch c {
	case CategoryContextSelector:
		return "context-selector"
	case CategoryWithContext:
		return "with-context"
	default:
		return "none"
	}
}

// WantsPrimary reports which spans of a message anchor this category.
func (c Category) WantsPrimary() bool {
	return c == CategoryContextSelector
}

// Коды rustc, закреплённые за каждой категорией.
var (
	// DefaultContextSelectorCodes: cannot find type (E0412), struct/variant
	// (E0422), expected value found struct (E0423), value (E0425), unresolved
	// import (E0432), expected struct/variant (E0574).
	DefaultContextSelectorCodes = []Code{"E0412", "E0422", "E0423", "E0425", "E0432", "E0574"}
	// DefaultWithContextCodes: closure takes a different number of arguments (E0593).
	DefaultWithContextCodes = []Code{"E0593"}
)

// CodeTable holds the two disjoint allow-lists that drive classification.
type CodeTable struct {
	ContextSelector []Code
	WithContext     []Code
}

// DefaultCodeTable returns the table matching current rustc code assignments.
func DefaultCodeTable() CodeTable {
	return CodeTable{
		ContextSelector: slices.Clone(DefaultContextSelectorCodes),
		WithContext:     slices.Clone(DefaultWithContextCodes),
	}
}

// Category classifies a code. It is a pure function of the table contents.
func (t CodeTable) Category(code Code) Category {
	switch {
	case slices.Contains(t.ContextSelector, code):
		return CategoryContextSelector
	case slices.Contains(t.WithContext, code):
		return CategoryWithContext
	default:
		return CategoryNone
	}
}

// Classify returns the category of a message, CategoryNone when it has no code.
func (t CodeTable) Classify(m *Message) Category {
	if !m.HasCode() {
		return CategoryNone
	}
	return t.Category(*m.Code)
}

// Validate rejects empty codes and codes listed under both categories.
func (t CodeTable) Validate() error {
	var shared []string
	for _, c := range t.ContextSelector {
		if strings.TrimSpace(string(c)) == "" {
			return fmt.Errorf("empty code in context-selector list")
		}
		if slices.Contains(t.WithContext, c) {
			shared = append(shared, string(c))
		}
	}
	for _, c := range t.WithContext {
		if strings.TrimSpace(string(c)) == "" {
			return fmt.Errorf("empty code in with-context list")
		}
	}
	if len(shared) > 0 {
		return fmt.Errorf("codes listed under both categories: %s", strings.Join(shared, ", "))
	}
	return nil
}
