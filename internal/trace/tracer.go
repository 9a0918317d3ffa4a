package trace

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Tracer is the main interface for emitting trace events.
type Tracer interface {
	// Emit records a trace event. Must be goroutine-safe.
	Emit(ev *Event)

	// Flush ensures all buffered events are written.
	Flush() error

	// Close flushes and releases resources.
	Close() error

	// Level returns the current tracing level.
	Level() Level

	// Enabled returns true if tracing is active (Level > LevelOff).
	Enabled() bool
}

// StorageMode determines how events are stored.
type StorageMode uint8

const (
	ModeStream StorageMode = iota + 1 // immediate write
	ModeRing                          // circular buffer
	ModeBoth                          // stream + ring
)

// String returns the string representation of StorageMode.
func (m StorageMode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeRing:
		return "ring"
	case ModeBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ParseMode converts a string to StorageMode.
func ParseMode(s string) (StorageMode, error) {
	switch strings.ToLower(s) {
	case "stream":
		return ModeStream, nil
	case "ring":
		return ModeRing, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeRing, fmt.Errorf("invalid storage mode: %q (expected: stream|ring|both)", s)
	}
}

// Config holds tracer configuration.
type Config struct {
	Level      Level         // tracing level
	Mode       StorageMode   // storage mode
	Format     Format        // output format (FormatAuto picks from OutputPath)
	Output     io.Writer     // for stream mode (if nil, use OutputPath)
	OutputPath string        // alternative: file path ("-" for stderr)
	RingSize   int           // for ring mode (default 4096)
	Heartbeat  time.Duration // heartbeat interval (0 = disabled)
	// MaxSizeMB rotates file output once it grows past this size (default 16).
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept (default 3).
	MaxBackups int
}

// New creates a Tracer based on Config.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}

	if cfg.RingSize <= 0 {
		cfg.RingSize = 4096
	}

	format := cfg.Format
	if format == FormatAuto {
		format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			format = FormatNDJSON
		}
	}

	switch cfg.Mode {
	case ModeStream:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		return NewStreamTracer(w, cfg.Level, format), nil

	case ModeRing:
		return NewRingTracer(cfg.RingSize, cfg.Level), nil

	case ModeBoth:
		w, err := openOutput(cfg)
		if err != nil {
			return nil, err
		}
		stream := NewStreamTracer(w, cfg.Level, format)
		ring := NewRingTracer(cfg.RingSize, cfg.Level)
		return NewMultiTracer(cfg.Level, stream, ring), nil

	default:
		return nil, fmt.Errorf("unknown storage mode: %v", cfg.Mode)
	}
}

// openOutput opens the output writer from config. Files go through a
// rotating logger so repeated runs with --trace do not grow without bound.
func openOutput(cfg Config) (io.Writer, error) {
	if cfg.Output != nil {
		return cfg.Output, nil
	}

	if cfg.OutputPath == "" || cfg.OutputPath == "-" {
		return os.Stderr, nil
	}

	dir := filepath.Dir(cfg.OutputPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to open trace output: %w", err)
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 16
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = 3
	}
	return &lumberjack.Logger{
		Filename:   cfg.OutputPath,
		MaxSize:    maxSize,
		MaxBackups: backups,
	}, nil
}

func isStdStream(w io.Writer) bool {
	return w == os.Stderr || w == os.Stdout
}

type nopTracer struct{}

func (nopTracer) Emit(*Event)   {}
func (nopTracer) Flush() error  { return nil }
func (nopTracer) Close() error  { return nil }
func (nopTracer) Level() Level  { return LevelOff }
func (nopTracer) Enabled() bool { return false }

// Nop is the tracer used when tracing is off.
var Nop Tracer = nopTracer{}

// Frame is the tracing state a context carries. SpanID is the parent of
// the next span; Cycle and File stamp every event. The zero Frame traces
// nothing.
type Frame struct {
	Tracer Tracer
	SpanID uint64
	Cycle  int
	File   string
	beat   *Heartbeat
}

type frameKey struct{}

// FrameOf returns the frame stored in ctx, with Tracer never nil.
func FrameOf(ctx context.Context) Frame {
	var f Frame
	if ctx != nil {
		f, _ = ctx.Value(frameKey{}).(Frame)
	}
	if f.Tracer == nil {
		f.Tracer = Nop
	}
	return f
}

func withFrame(ctx context.Context, f Frame) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, frameKey{}, f)
}

// FromContext returns the tracer of ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	return FrameOf(ctx).Tracer
}

// WithTracer attaches t to ctx. A nil t means Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	f := FrameOf(ctx)
	f.Tracer = t
	if t == nil {
		f.Tracer = Nop
	}
	return withFrame(ctx, f)
}

// WithHeartbeat makes stage spans started below ctx report to h.
func WithHeartbeat(ctx context.Context, h *Heartbeat) context.Context {
	f := FrameOf(ctx)
	f.beat = h
	return withFrame(ctx, f)
}

// WithCycle marks ctx as belonging to check cycle n. It clears the file.
func WithCycle(ctx context.Context, n int) context.Context {
	f := FrameOf(ctx)
	f.Cycle = n
	f.File = ""
	return withFrame(ctx, f)
}

// WithFile marks ctx as working on the source file path.
func WithFile(ctx context.Context, path string) context.Context {
	f := FrameOf(ctx)
	f.File = path
	return withFrame(ctx, f)
}
