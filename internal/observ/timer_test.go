package observ

import (
	"strings"
	"testing"
)

func TestTimerGroupsPhases(t *testing.T) {
	tm := NewTimer()
	for _, name := range []string{"cycle 1: check", "cycle 1: patch", "cycle 2: check"} {
		group := name[strings.Index(name, ": ")+2:]
		tm.End(tm.BeginGroup(name, group), "")
	}
	tm.End(tm.Begin("resolve root"), "cargo-metadata")

	report := tm.Report()
	if len(report.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(report.Phases))
	}
	if len(report.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", report.Groups)
	}
	if report.Groups[0].Name != "check" || report.Groups[0].Count != 2 {
		t.Fatalf("unexpected first group %+v", report.Groups[0])
	}
	if report.Groups[1].Name != "patch" || report.Groups[1].Count != 1 {
		t.Fatalf("unexpected second group %+v", report.Groups[1])
	}
	if report.Phases[3].Note != "cargo-metadata" {
		t.Fatalf("expected note to be kept, got %+v", report.Phases[3])
	}

	summary := tm.Summary()
	for _, want := range []string{"timings:", "cycle 2: check", "by stage:", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(5, "x")
	tm.End(-1, "x")
	if len(tm.Report().Phases) != 0 {
		t.Fatal("expected no phases")
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	idx := tm.BeginGroup("check", "check")
	tm.End(idx, "")
	if r := tm.Report(); r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}
