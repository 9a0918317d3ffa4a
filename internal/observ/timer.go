package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase records the duration and metadata of one timed step.
type Phase struct {
	Name  string
	Group string // e.g. the cycle stage; phases sharing a group are summed
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer tracks the execution time of the steps of a run.
// A nil *Timer is valid and records nothing.
type Timer struct {
	phases []Phase
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 16)} }

// Begin starts a new ungrouped phase and returns its index.
func (t *Timer) Begin(name string) int {
	return t.BeginGroup(name, "")
}

// BeginGroup starts a new phase belonging to group and returns its index.
func (t *Timer) BeginGroup(name, group string) int {
	if t == nil {
		return -1
	}
	t.phases = append(t.phases, Phase{Name: name, Group: group, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index.
func (t *Timer) End(idx int, note string) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Summary returns a human-readable string summarizing all tracked phases.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-24s %9.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteString("\n")
	}
	if len(report.Groups) > 0 {
		sb.WriteString("by stage:\n")
		for _, g := range report.Groups {
			fmt.Fprintf(&sb, "  %-24s %9.2f ms  (%d×)\n", g.Name, g.DurationMS, g.Count)
		}
	}
	fmt.Fprintf(&sb, "  %-24s %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

// PhaseReport представляет сжатую информацию о фазе таймера для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	Group      string  `json:"group,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// GroupReport sums the phases of one group.
type GroupReport struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	DurationMS float64 `json:"duration_ms"`
}

// Report описывает агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	Groups  []GroupReport `json:"groups,omitempty"`
}

// Report формирует срез фаз, суммы по группам и общую длительность в миллисекундах.
// Groups appear in the order they were first seen.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	report := Report{
		Phases: make([]PhaseReport, len(t.phases)),
	}
	groupIdx := make(map[string]int)
	groupDur := make([]time.Duration, 0)
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			Group:      phase.Group,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
		if phase.Group == "" {
			continue
		}
		idx, ok := groupIdx[phase.Group]
		if !ok {
			idx = len(report.Groups)
			groupIdx[phase.Group] = idx
			report.Groups = append(report.Groups, GroupReport{Name: phase.Group})
			groupDur = append(groupDur, 0)
		}
		report.Groups[idx].Count++
		groupDur[idx] += phase.Dur
	}
	for i := range report.Groups {
		report.Groups[i].DurationMS = durationToMillis(groupDur[i])
	}
	report.TotalMS = durationToMillis(total)
	return report
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
