package trace

import (
	"bytes"
	"context"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"
)

var (
	globalSeq   uint64
	globalSpans uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}

// NextSpanID returns a unique span ID.
func NextSpanID() uint64 {
	return atomic.AddUint64(&globalSpans, 1)
}

// getGoroutineID extracts the current goroutine ID using runtime.Stack.
// This is a lightweight approach that doesn't require linkname or unsafe.
func getGoroutineID() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]

	// Stack format: "goroutine 123 [running]:\n..."
	// Extract the number between "goroutine " and " ["
	const prefix = "goroutine "
	if !bytes.HasPrefix(buf, []byte(prefix)) {
		return 0
	}

	buf = buf[len(prefix):]
	end := bytes.IndexByte(buf, ' ')
	if end < 0 {
		return 0
	}

	gid, err := strconv.ParseUint(string(buf[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return gid
}

// Span is an open operation. Its end event repeats the cycle and file of
// the frame it was started in.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	gid      uint64
	scope    Scope
	name     string
	cycle    int
	file     string
	started  time.Time
	extra    map[string]string
	beat     *Heartbeat
}

// Start opens a span under the innermost span of ctx and returns a context
// in which it is the parent of further spans.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	f := FrameOf(ctx)
	s := begin(f, scope, name)
	if s.id == 0 {
		if ctx == nil {
			ctx = context.Background()
		}
		return ctx, s
	}
	f.SpanID = s.id
	return withFrame(ctx, f), s
}

// StartStage opens a cycle-scope span for one stage of the current cycle
// and tells the heartbeat about it until the span ends.
func StartStage(ctx context.Context, stage string) (context.Context, *Span) {
	f := FrameOf(ctx)
	ctx, s := Start(ctx, ScopeCycle, stage)
	if f.beat != nil {
		f.beat.enter(f.Cycle, stage)
		s.beat = f.beat
	}
	return ctx, s
}

func begin(f Frame, scope Scope, name string) *Span {
	t := f.Tracer
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop, name: name}
	}

	s := &Span{
		tracer:   t,
		id:       NextSpanID(),
		parentID: f.SpanID,
		gid:      getGoroutineID(),
		scope:    scope,
		name:     name,
		cycle:    f.Cycle,
		file:     f.File,
		started:  time.Now(),
	}
	t.Emit(s.event(KindSpanBegin, s.started, ""))
	return s
}

func (s *Span) event(kind Kind, at time.Time, detail string) *Event {
	ev := &Event{
		Time:     at,
		Kind:     kind,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		GID:      s.gid,
		Name:     s.name,
		Cycle:    s.cycle,
		File:     s.file,
		Detail:   detail,
	}
	if kind == KindSpanEnd {
		ev.Extra = s.extra
	}
	return ev
}

// End emits the end event and returns the span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	if s.beat != nil {
		s.beat.leave(s.name)
	}
	if s.tracer == nil || !s.tracer.Enabled() {
		return 0
	}
	now := time.Now()
	s.tracer.Emit(s.event(KindSpanEnd, now, detail))
	return now.Sub(s.started)
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.tracer == nil || !s.tracer.Enabled() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, zero for a span that is not recorded.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Note emits an instant event under the innermost span of ctx.
func Note(ctx context.Context, scope Scope, name, detail string) {
	f := FrameOf(ctx)
	t := f.Tracer
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	t.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindPoint,
		Scope:    scope,
		ParentID: f.SpanID,
		GID:      getGoroutineID(),
		Name:     name,
		Cycle:    f.Cycle,
		File:     f.File,
		Detail:   detail,
	})
}
