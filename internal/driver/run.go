// Package driver runs the fix-up loop: check the project, rewrite what the
// diagnostics point at, and repeat until nothing is left to rewrite.
package driver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"snafu-upgrade/internal/buildpipeline"
	"snafu-upgrade/internal/observ"
	"snafu-upgrade/internal/trace"
)

// Options carries the optional collaborators of a run.
type Options struct {
	Progress buildpipeline.ProgressSink
	Timer    *observ.Timer
	Journal  *Journal
}

// Run performs the first cycle and then follow-up cycles until the plan is
// empty, repeats itself, or more than cfg.MaxIterations follow-ups ran.
// In dry-run mode only the first cycle runs.
//
// The returned error is non-nil only for fatal failures; non-convergence is
// reported through Result.Status and Result.Err.
func Run(ctx context.Context, cfg Config, checker Checker, opts Options) (*Result, error) {
	if checker == nil {
		return nil, errors.New("driver: no checker")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		cfg:     cfg,
		checker: checker,
		opts:    opts,
		result:  &Result{MaxIterations: cfg.MaxIterations},
	}
	started := time.Now()

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "upgrade")

	err := r.loop(ctx)
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	span.WithExtra("status", r.result.Status.String()).
		WithExtra("cycles", strconv.Itoa(len(r.result.Cycles))).
		End(detail)

	if opts.Journal != nil {
		entry := NewJournalEntry(cfg, r.result, started, err)
		if jerr := opts.Journal.Put(entry); jerr != nil {
			r.result.Warnings = append(r.result.Warnings, fmt.Sprintf("failed to write journal: %v", jerr))
		}
	}
	return r.result, err
}

type runner struct {
	cfg     Config
	checker Checker
	opts    Options
	result  *Result
}

func (r *runner) loop(ctx context.Context) error {
	last, err := r.cycle(ctx)
	if err != nil {
		return err
	}
	if r.cfg.DryRun {
		r.result.Status = StatusDryRun
		return nil
	}

	depth := 0
	for {
		trace.Note(ctx, trace.ScopeCycle, "depth", strconv.Itoa(depth))

		if last.Empty() {
			r.result.Status = StatusConverged
			return nil
		}
		if depth > r.cfg.MaxIterations {
			r.result.Status = StatusExhausted
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		current, err := r.cycle(ctx)
		if err != nil {
			return err
		}
		if current.Equal(last) {
			r.result.Status = StatusNoProgress
			return nil
		}
		last = current
		depth++
	}
}

// stage times fn and reports it to the sink, the timer and the tracer.
// fn runs under the stage's span and returns its count for the progress event.
func (r *runner) stage(ctx context.Context, cycle int, stage buildpipeline.Stage, fn func(context.Context) (int, error)) error {
	buildpipeline.Emit(r.opts.Progress, buildpipeline.Event{Cycle: cycle, Stage: stage, Status: buildpipeline.StatusWorking})
	ctx, span := trace.StartStage(ctx, string(stage))
	idx := r.opts.Timer.BeginGroup(fmt.Sprintf("cycle %d: %s", cycle, stage), string(stage))
	start := time.Now()

	count, err := fn(ctx)

	elapsed := time.Since(start)
	r.result.Timings.Add(stage, elapsed)
	note := strconv.Itoa(count)
	status := buildpipeline.StatusDone
	if err != nil {
		note = err.Error()
		status = buildpipeline.StatusError
	}
	r.opts.Timer.End(idx, note)
	span.WithExtra("count", strconv.Itoa(count)).End(errDetail(err))
	buildpipeline.Emit(r.opts.Progress, buildpipeline.Event{
		Cycle:   cycle,
		Stage:   stage,
		Status:  status,
		Err:     err,
		Elapsed: elapsed,
		Count:   count,
	})
	return err
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
