// Package trace is the structured logging layer of snafu-upgrade.
//
// It records what the fix-up loop does: each check cycle, each file patched
// and, at the most verbose level, each anchor considered. A hung `cargo check`
// shows up as heartbeats without span ends.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	snafu-upgrade --trace=- --trace-level=detail
//	snafu-upgrade --trace=upgrade.ndjson --trace-mode=both
//
// --verbose is a shortcut for --trace=- --trace-level=debug.
//
// # Architecture
//
//   - Nop: tracer used when tracing is disabled
//   - StreamTracer: immediate write to stderr or a rotating file
//   - RingTracer: circular buffer dumped when the run crashes
//   - MultiTracer: combines several tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: run and cycle boundaries
//   - LevelDetail: per-file events
//   - LevelDebug: everything including single anchors
//
// # Scopes
//
//   - ScopeDriver: the whole run
//   - ScopeCycle: one check/parse/classify/apply cycle and its stages
//   - ScopeFile: patching a single file
//   - ScopeAnchor: a single rewrite
//
// # Context Propagation
//
// The context carries a Frame: tracer, innermost span, cycle and file.
// Spans pick their parent from it, so callers never pass IDs around.
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx = trace.WithCycle(ctx, 2)
//	ctx, span := trace.StartStage(ctx, "check")
//	defer span.End("")
//
// The heartbeat attached with WithHeartbeat names the stage that
// StartStage opened last, so a stuck cargo check reads as
// "check running for 4m10s" rather than a bare tick.
package trace
