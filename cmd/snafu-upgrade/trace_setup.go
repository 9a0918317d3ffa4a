package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"snafu-upgrade/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// verbose is a shortcut for --trace=- --trace-level=debug; explicit trace
// flags still win. It returns a cleanup function and an error if
// initialization fails.
func setupTracing(cmd *cobra.Command, verbose bool) (func(), error) {
	root := cmd.Root()
	flags := root.PersistentFlags()

	// Read trace configuration from flags
	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}

	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}

	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}

	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	heartbeatInterval, err := flags.GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	if verbose {
		if !flags.Changed("trace") {
			traceOutput = "-"
		}
		if !flags.Changed("trace-level") {
			levelStr = "debug"
		}
	}

	// Parse level
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// An output without a level means the user wants the phases.
	if level == trace.LevelOff && traceOutput != "" && !flags.Changed("trace-level") {
		level = trace.LevelPhase
	}

	if level == trace.LevelOff {
		ctx := trace.WithTracer(cmd.Context(), trace.Nop)
		cmd.SetContext(ctx)
		return func() {}, nil
	}

	// Parse mode
	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}
	if traceOutput == "" && mode != trace.ModeRing {
		traceOutput = "-"
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace format: %w", err)
	}

	// Create tracer config
	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
		Heartbeat:  heartbeatInterval,
	}

	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	// Attach tracer to context
	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)

	// cargo check can run for minutes; the heartbeat names the stage it is stuck in
	var heartbeat *trace.Heartbeat
	if heartbeatInterval > 0 {
		heartbeat = trace.StartHeartbeat(tracer, heartbeatInterval)
		cmd.SetContext(trace.WithHeartbeat(ctx, heartbeat))
	}

	cleanup := func() {
		heartbeat.Stop()

		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}

	return cleanup, nil
}

// dumpTraceOnPanic prints the ring buffer of the command's tracer and
// re-panics. It must be deferred directly.
func dumpTraceOnPanic(cmd *cobra.Command) {
	r := recover()
	if r == nil {
		return
	}
	tracer := trace.FromContext(cmd.Context())
	fmt.Fprintf(os.Stderr, "panic: %v\n", r)
	if trace.DumpRing(tracer, os.Stderr, trace.FormatText) {
		fmt.Fprintln(os.Stderr, "(trace ring dumped above)")
	}
	_ = tracer.Flush()
	panic(r)
}
