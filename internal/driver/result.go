package driver

import (
	"errors"
	"fmt"

	"snafu-upgrade/internal/buildpipeline"
	"snafu-upgrade/internal/fix"
)

// Status is how a run ended.
type Status uint8

const (
	// StatusConverged: the last cycle found nothing to rewrite.
	StatusConverged Status = iota
	// StatusDryRun: a single cycle ran without writing.
	StatusDryRun
	// StatusNoProgress: two consecutive cycles produced the same plan.
	StatusNoProgress
	// StatusExhausted: the iteration ceiling was passed with work left.
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusDryRun:
		return "dry-run"
	case StatusNoProgress:
		return "no-progress"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// OK reports whether the status counts as success.
func (s Status) OK() bool {
	return s == StatusConverged || s == StatusDryRun
}

var (
	// ErrNoProgress matches outcomes where a cycle repeated its predecessor's plan.
	ErrNoProgress = errors.New("did not make progress on a resolution")
	// ErrNotConverged matches outcomes where the iteration ceiling was reached.
	ErrNotConverged = errors.New("could not converge on a resolution")
)

// OutcomeError reports a run that ended without converging. It is not a
// failure of the tool itself.
type OutcomeError struct {
	Status        Status
	MaxIterations int
}

func (e *OutcomeError) Error() string {
	if e.Status == StatusExhausted {
		return fmt.Sprintf("%s in %d attempts", ErrNotConverged, e.MaxIterations)
	}
	return ErrNoProgress.Error()
}

func (e *OutcomeError) Unwrap() error {
	if e.Status == StatusExhausted {
		return ErrNotConverged
	}
	return ErrNoProgress
}

// CycleReport records one check/parse/classify/apply cycle.
type CycleReport struct {
	Index    int // 1-based
	Messages int // compiler messages decoded
	Plan     fix.Plan
	Changes  []fix.FileChange
}

// Result describes a finished run.
type Result struct {
	Status        Status
	Cycles        []CycleReport
	MaxIterations int
	Timings       buildpipeline.Timings
	// Warnings are problems that did not affect the files, such as a failed
	// journal write.
	Warnings []string
}

// Err maps non-convergence to an *OutcomeError; it is nil otherwise.
func (r *Result) Err() error {
	if r == nil || r.Status.OK() {
		return nil
	}
	return &OutcomeError{Status: r.Status, MaxIterations: r.MaxIterations}
}

// Plans returns every cycle's plan in order.
func (r *Result) Plans() []fix.Plan {
	plans := make([]fix.Plan, len(r.Cycles))
	for i, c := range r.Cycles {
		plans[i] = c.Plan
	}
	return plans
}

// LastPlan returns the plan of the final cycle, nil before any cycle ran.
func (r *Result) LastPlan() fix.Plan {
	if len(r.Cycles) == 0 {
		return nil
	}
	return r.Cycles[len(r.Cycles)-1].Plan
}

// Changes returns the file changes of all cycles in order.
func (r *Result) Changes() []fix.FileChange {
	var out []fix.FileChange
	for _, c := range r.Cycles {
		out = append(out, c.Changes...)
	}
	return out
}
