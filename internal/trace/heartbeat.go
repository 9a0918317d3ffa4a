package trace

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Heartbeat periodically reports which stage of which cycle is running and
// for how long. A check stage whose heartbeats keep growing is a cargo
// build that is slow or stuck.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	current  atomic.Pointer[beatState]
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

type beatState struct {
	cycle int
	stage string
	since time.Time
}

// StartHeartbeat starts emitting through tracer every interval. It returns
// nil when tracing is off or interval is not positive.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(h.beat(now))
		case <-h.stop:
			return
		}
	}
}

// beat builds the event for a tick at now.
func (h *Heartbeat) beat(now time.Time) *Event {
	ev := &Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		GID:    getGoroutineID(),
		Name:   "heartbeat",
		Detail: "idle",
	}
	if st := h.current.Load(); st != nil {
		ev.Cycle = st.cycle
		ev.Detail = fmt.Sprintf("%s running for %s", st.stage, now.Sub(st.since).Round(100*time.Millisecond))
	}
	return ev
}

func (h *Heartbeat) enter(cycle int, stage string) {
	if h == nil {
		return
	}
	h.current.Store(&beatState{cycle: cycle, stage: stage, since: time.Now()})
}

// leave clears the running stage unless another one has replaced it.
func (h *Heartbeat) leave(stage string) {
	if h == nil {
		return
	}
	if st := h.current.Load(); st != nil && st.stage == stage {
		h.current.CompareAndSwap(st, nil)
	}
}

// Stop ends the heartbeat goroutine and waits for it. It is safe to call
// more than once and on a nil Heartbeat.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() { close(h.stop) })
	<-h.done
}
