package giveaway

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSweepInterval = 5 * time.Second
	defaultEndTimeout    = 30 * time.Second
	maxConcurrentEnds    = 4
)

var ErrSchedulerStopped = errors.New("giveaway scheduler stopped")

type endFunc func(ctx context.Context, id string) error

type handle struct {
	gen   uint64
	timer Timer
}

// Scheduler drives records to their end transition. Each open record gets a
// one-shot timer; a periodic sweep ends anything whose time has passed in case
// a timer was lost or never armed. Both paths call the same end function,
// which must be idempotent.
type Scheduler struct {
	mu         sync.Mutex
	clock      Clock
	store      *Store
	logger     *zap.Logger
	interval   time.Duration
	endTimeout time.Duration
	end        endFunc
	handles    map[string]handle
	gen        uint64
	sweep      Timer
	sweepGen   uint64
	stopped    bool
}

func NewScheduler(store *Store, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Scheduler{
		clock:      realClock{},
		store:      store,
		logger:     logger,
		interval:   interval,
		endTimeout: defaultEndTimeout,
		handles:    make(map[string]handle),
	}
}

func (s *Scheduler) WithClock(clock Clock) {
	s.mu.Lock()
	s.clock = clock
	s.mu.Unlock()
}

func (s *Scheduler) bind(end endFunc) {
	s.mu.Lock()
	s.end = end
	s.mu.Unlock()
}

// Arm installs the one-shot timer for id, cancelling any earlier one first.
// It fails once the scheduler has been stopped.
func (s *Scheduler) Arm(id string, endTime time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.logger.Warn("giveaway timer not armed after stop", zap.String("giveaway_id", id))
		return ErrSchedulerStopped
	}

	if prev, ok := s.handles[id]; ok {
		prev.timer.Stop()
		delete(s.handles, id)
	}

	delay := endTime.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.gen++
	gen := s.gen
	timer := s.clock.AfterFunc(delay, func() { s.fire(id, gen) })
	s.handles[id] = handle{gen: gen, timer: timer}
	return nil
}

func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[id]; ok {
		h.timer.Stop()
		delete(s.handles, id)
	}
}

func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.handles[id]
	return ok
}

// EnsureSweep starts the periodic sweep unless it is already scheduled.
func (s *Scheduler) EnsureSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.sweep != nil {
		return
	}
	s.scheduleSweepLocked()
}

func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Scheduler) SweepRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweep != nil
}

// Sweep ends every open record whose end time has passed.
func (s *Scheduler) Sweep(ctx context.Context) error {
	s.mu.Lock()
	now := s.clock.Now()
	end := s.end
	s.mu.Unlock()
	if end == nil {
		return nil
	}

	due := s.store.Filter(func(r *Record) bool {
		return !r.Ended && !r.EndTime.After(now)
	})
	if len(due) == 0 {
		return nil
	}

	// one failed end must not cancel the others
	var g errgroup.Group
	g.SetLimit(maxConcurrentEnds)
	for _, record := range due {
		id := record.ID
		g.Go(func() error {
			return end(ctx, id)
		})
	}
	return g.Wait()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, h := range s.handles {
		h.timer.Stop()
		delete(s.handles, id)
	}
	if s.sweep != nil {
		s.sweep.Stop()
		s.sweep = nil
	}
}

func (s *Scheduler) fire(id string, gen uint64) {
	s.mu.Lock()
	h, ok := s.handles[id]
	if !ok || h.gen != gen {
		// superseded by a later Arm or already cancelled
		s.mu.Unlock()
		return
	}
	delete(s.handles, id)
	end := s.end
	timeout := s.endTimeout
	s.mu.Unlock()

	if end == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := end(ctx, id); err != nil {
		s.logger.Warn("giveaway timer end failed", zap.String("giveaway_id", id), zap.Error(err))
	}
}

func (s *Scheduler) scheduleSweepLocked() {
	s.sweepGen++
	gen := s.sweepGen
	s.sweep = s.clock.AfterFunc(s.interval, func() { s.tick(gen) })
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if s.stopped || s.sweepGen != gen {
		s.mu.Unlock()
		return
	}
	s.sweep = nil
	timeout := s.endTimeout
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("giveaway sweep failed", zap.Error(err))
	}
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.sweep != nil {
		return
	}
	if s.store.Any(isOpen) {
		s.scheduleSweepLocked()
	}
}
