package driver

import (
	"context"
	"fmt"
	"strconv"

	"snafu-upgrade/internal/buildpipeline"
	"snafu-upgrade/internal/diag"
	"snafu-upgrade/internal/fix"
	"snafu-upgrade/internal/trace"
)

// cycle runs check → parse → classify → patch once and returns its plan.
func (r *runner) cycle(ctx context.Context) (fix.Plan, error) {
	index := len(r.result.Cycles) + 1
	ctx, span := trace.Start(trace.WithCycle(ctx, index), trace.ScopeCycle, "cycle")

	report, err := r.runCycle(ctx, index)
	r.result.Cycles = append(r.result.Cycles, report)

	span.WithExtra("anchors", strconv.Itoa(report.Plan.Len())).End(errDetail(err))
	if err != nil {
		return nil, fmt.Errorf("cycle %d: %w", index, err)
	}
	return report.Plan, nil
}

func (r *runner) runCycle(ctx context.Context, index int) (CycleReport, error) {
	report := CycleReport{Index: index}

	var stdout []byte
	err := r.stage(ctx, index, buildpipeline.StageCheck, func(ctx context.Context) (int, error) {
		out, err := r.checker.Check(ctx, r.cfg.ExtraArgs)
		stdout = out
		return len(out), err
	})
	if err != nil {
		return report, fmt.Errorf("check: %w", err)
	}
	trace.Note(ctx, trace.ScopeAnchor, "stdout", string(stdout))

	var msgs []*diag.Message
	err = r.stage(ctx, index, buildpipeline.StageParse, func(context.Context) (int, error) {
		parsed, err := diag.Parse(stdout)
		msgs = parsed
		return len(parsed), err
	})
	if err != nil {
		return report, err
	}
	report.Messages = len(msgs)

	err = r.stage(ctx, index, buildpipeline.StageClassify, func(ctx context.Context) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		report.Plan = fix.Collect(msgs, r.cfg.Codes)
		for _, file := range report.Plan.Files() {
			fctx := trace.WithFile(ctx, file)
			for _, rw := range report.Plan[file] {
				trace.Note(fctx, trace.ScopeAnchor, rw.String(), "")
			}
		}
		return report.Plan.Len(), nil
	})
	if err != nil {
		return report, fmt.Errorf("classify: %w", err)
	}

	err = r.stage(ctx, index, buildpipeline.StagePatch, func(ctx context.Context) (int, error) {
		res, err := fix.Apply(ctx, report.Plan, fix.ApplyOptions{
			Root:    r.cfg.Root,
			SafeDir: r.cfg.safeDir(),
			DryRun:  r.cfg.DryRun,
			Patch:   r.cfg.patchOptions(),
			OnFile: func(path string) {
				buildpipeline.Emit(r.opts.Progress, buildpipeline.Event{
					Cycle:  index,
					File:   path,
					Stage:  buildpipeline.StagePatch,
					Status: buildpipeline.StatusWorking,
				})
			},
		})
		if res != nil {
			report.Changes = res.FileChanges
			for _, ch := range res.FileChanges {
				buildpipeline.Emit(r.opts.Progress, buildpipeline.Event{
					Cycle:  index,
					File:   ch.Path,
					Stage:  buildpipeline.StagePatch,
					Status: buildpipeline.StatusDone,
					Count:  ch.Applied,
				})
			}
			return res.Applied(), err
		}
		return 0, err
	})
	return report, err
}
