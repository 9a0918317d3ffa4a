package source

import (
	"cmp"
	"fmt"
)

// Range is a half-open byte interval [Start, End) inside one file.
type Range struct {
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

func (r Range) Empty() bool {
	return r.Start == r.End
}

func (r Range) Len() uint32 {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Overlaps reports whether two ranges share at least one byte.
// Zero-length ranges overlap a non-empty range only when they sit strictly inside it.
func (r Range) Overlaps(other Range) bool {
	if r.Empty() && other.Empty() {
		return false
	}
	if r.Empty() {
		return other.Start < r.Start && r.Start < other.End
	}
	if other.Empty() {
		return r.Start < other.Start && other.Start < r.End
	}
	return r.Start < other.End && other.Start < r.End
}

// Compare orders ranges by start, then by end.
func Compare(a, b Range) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	return cmp.Compare(a.End, b.End)
}
