package giveaway

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type endRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *endRecorder) end(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
	return nil
}

func (r *endRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func TestSchedulerRearmCancelsPrevious(t *testing.T) {
	clock := newFakeClock()
	store := NewStore()
	sched := NewScheduler(store, time.Minute, zap.NewNop())
	sched.WithClock(clock)
	rec := &endRecorder{}
	sched.bind(rec.end)

	sched.Arm("g1", clock.Now().Add(10*time.Second))
	sched.Arm("g1", clock.Now().Add(20*time.Second))

	clock.Advance(10 * time.Second)
	if rec.count() != 0 {
		t.Fatalf("cancelled timer fired")
	}
	clock.Advance(10 * time.Second)
	if rec.count() != 1 {
		t.Fatalf("expected one end, got %d", rec.count())
	}
	if sched.Armed("g1") {
		t.Fatalf("fired handle should be released")
	}
}

func TestSchedulerStop(t *testing.T) {
	clock := newFakeClock()
	store := NewStore()
	store.Put(NewRecord("g1", "guild", "c1", Terms{WinnerCount: 1}, clock.Now().Add(time.Second)))
	sched := NewScheduler(store, time.Second, zap.NewNop())
	sched.WithClock(clock)
	rec := &endRecorder{}
	sched.bind(rec.end)

	sched.Arm("g1", clock.Now().Add(time.Second))
	sched.EnsureSweep()
	sched.Stop()

	clock.Advance(time.Minute)
	if rec.count() != 0 {
		t.Fatalf("stopped scheduler must not end anything")
	}
	sched.Arm("g1", clock.Now())
	if sched.Armed("g1") {
		t.Fatalf("stopped scheduler must not arm")
	}
}
