package fix

import (
	"maps"
	"slices"
	"strings"

	"snafu-upgrade/internal/diag"
)

// Plan maps a file (relative to the project root) to its anchors, sorted
// ascending by range start. It is rebuilt every cycle and is the only record
// of what a cycle changes.
type Plan map[string][]Rewrite

// Empty reports whether the plan has no anchors.
func (p Plan) Empty() bool {
	return p.Len() == 0
}

// Len returns the total number of anchors across all files.
func (p Plan) Len() int {
	n := 0
	for _, rws := range p {
		n += len(rws)
	}
	return n
}

// Files returns the planned files in sorted order.
func (p Plan) Files() []string {
	return slices.Sorted(maps.Keys(p))
}

// Equal reports whether both plans touch the same files with the same anchors.
func (p Plan) Equal(other Plan) bool {
	return maps.EqualFunc(p, other, func(a, b []Rewrite) bool {
		return slices.Equal(a, b)
	})
}

func (p Plan) String() string {
	var sb strings.Builder
	for i, file := range p.Files() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(file)
		sb.WriteString(": ")
		for j, rw := range p[file] {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(rw.String())
		}
	}
	return sb.String()
}

// Collector deduplicates anchors across all messages of a cycle.
type Collector struct {
	codes diag.CodeTable
	seen  map[Anchor]struct{}
}

// NewCollector returns a Collector classifying with codes.
func NewCollector(codes diag.CodeTable) *Collector {
	return &Collector{
		codes: codes,
		seen:  make(map[Anchor]struct{}),
	}
}

// Add classifies a message and records its anchors. It returns how many new
// anchors were recorded; byte-identical locations collapse to one.
func (c *Collector) Add(m *diag.Message) int {
	added := 0
	for _, a := range Classify(m, c.codes) {
		if _, ok := c.seen[a]; ok {
			continue
		}
		c.seen[a] = struct{}{}
		added++
	}
	return added
}

// Len returns the number of unique anchors collected so far.
func (c *Collector) Len() int {
	return len(c.seen)
}

// Plan groups the collected anchors by file and sorts each group.
func (c *Collector) Plan() Plan {
	plan := make(Plan)
	for a := range c.seen {
		plan[a.File] = append(plan[a.File], a.Rewrite)
	}
	for _, rws := range plan {
		slices.SortFunc(rws, CompareRewrites)
	}
	return plan
}

// Collect is the one-shot form of Collector.
func Collect(msgs []*diag.Message, codes diag.CodeTable) Plan {
	c := NewCollector(codes)
	for _, m := range msgs {
		c.Add(m)
	}
	return c.Plan()
}
