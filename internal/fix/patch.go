package fix

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Defaults matching the SNAFU 0.7 selector naming.
const (
	DefaultSuffix      = "Snafu"
	DefaultPlaceholder = "_"
)

// DefaultLegacySuffixes lists markers stripped before the new suffix is added,
// in priority order.
var DefaultLegacySuffixes = []string{"Error", "Context"}

// closureHeader is the empty parameter list a WithContextArgument anchor ends on.
const closureHeader = "||"

var errEmptySuffix = errors.New("fix: suffix must not be empty")

// PatchOptions configures the text inserted by Patch.
type PatchOptions struct {
	Suffix         string
	LegacySuffixes []string
	Placeholder    string
}

// DefaultPatchOptions returns the options used when nothing is configured.
func DefaultPatchOptions() PatchOptions {
	return PatchOptions{
		Suffix:         DefaultSuffix,
		LegacySuffixes: slices.Clone(DefaultLegacySuffixes),
		Placeholder:    DefaultPlaceholder,
	}
}

// PatchStats counts what Patch did with the anchors it was given.
type PatchStats struct {
	Applied int
	Skipped int
}

// RangeError reports an anchor that points past the end of the file,
// usually because the file changed after the build tool ran.
type RangeError struct {
	Rewrite Rewrite
	Size    int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s is out of range for content of %d bytes", e.Rewrite, e.Size)
}

// OverlapError reports an anchor reaching into a region already rewritten in
// the same pass. Anchors of one file must not overlap.
type OverlapError struct {
	Rewrite  Rewrite
	Previous Rewrite
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("%s overlaps previously processed %s", e.Rewrite, e.Previous)
}

// Patch applies rewrites to content and returns the new content.
//
// Anchors are processed right to left, so every edit is computed against the
// original offsets. The unprocessed part of the content is always a prefix of
// the original; finished pieces are pushed onto a stack and joined in reverse
// at the end. Bytes outside the edited spots are copied unchanged.
func Patch(content []byte, rewrites []Rewrite, opts PatchOptions) ([]byte, PatchStats, error) {
	var stats PatchStats
	if opts.Suffix == "" {
		return nil, stats, errEmptySuffix
	}

	ordered := slices.Clone(rewrites)
	slices.SortStableFunc(ordered, CompareRewrites)

	text := string(content)
	remaining := text
	pieces := make([]string, 0, 2*len(ordered)+1)

	var prev Rewrite
	for i := len(ordered) - 1; i >= 0; i-- {
		rw := ordered[i]
		end := int(rw.Range().End)
		if end > len(text) {
			return nil, stats, &RangeError{Rewrite: rw, Size: len(text)}
		}
		if prev != nil && prev.Range().End == rw.Range().End {
			// тот же участок, уже обработан
			if prev.Category() != rw.Category() {
				return nil, stats, &OverlapError{Rewrite: rw, Previous: prev}
			}
			stats.Skipped++
			continue
		}
		if end > len(remaining) {
			return nil, stats, &OverlapError{Rewrite: rw, Previous: prev}
		}
		prev = rw

		switch rw.(type) {
		case ContextSelectorRename:
			head, tail := remaining[:end], remaining[end:]
			if strings.HasSuffix(head, opts.Suffix) {
				stats.Skipped++
				continue
			}
			for _, legacy := range opts.LegacySuffixes {
				if legacy != "" {
					head = strings.TrimSuffix(head, legacy)
				}
			}
			pieces = append(pieces, tail, opts.Suffix)
			remaining = head

		case WithContextArgument:
			if end < len(closureHeader) || remaining[end-len(closureHeader):end] != closureHeader {
				stats.Skipped++
				continue
			}
			head, tail := remaining[:end-1], remaining[end-1:]
			pieces = append(pieces, tail, opts.Placeholder)
			remaining = head

		default:
			return nil, stats, fmt.Errorf("fix: unsupported rewrite %T", rw)
		}
		stats.Applied++
	}
	pieces = append(pieces, remaining)

	var sb strings.Builder
	sb.Grow(len(text) + len(ordered)*len(opts.Suffix))
	for i := len(pieces) - 1; i >= 0; i-- {
		sb.WriteString(pieces[i])
	}
	return []byte(sb.String()), stats, nil
}
