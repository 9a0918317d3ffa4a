package buildpipeline

import "time"

// Stage describes one phase of a fix-up cycle.
type Stage string

const (
	// StageCheck runs the external build tool.
	StageCheck Stage = "check"
	// StageParse decodes the build tool's records.
	StageParse Stage = "parse"
	// StageClassify turns messages into a plan.
	StageClassify Stage = "classify"
	// StagePatch rewrites planned files.
	StagePatch Stage = "patch"
)

// Stages lists the cycle stages in execution order.
var Stages = []Stage{StageCheck, StageParse, StageClassify, StagePatch}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole cycle when File is empty).
type Event struct {
	Cycle   int // 1-based
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	// Count is stage specific: messages parsed, anchors planned or applied.
	Count int
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// Timings accumulates stage durations over all cycles of a run.
type Timings struct {
	stages map[Stage]time.Duration
}

func (t *Timings) ensure() {
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
}

// Add accumulates a duration for the given stage.
func (t *Timings) Add(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	t.ensure()
	t.stages[stage] += dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	if t.stages == nil {
		return false
	}
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	if t.stages == nil {
		return 0
	}
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
