package expiry

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence hook the scheduler clears expired pending
// slots through. Implemented by the account repository.
type Store interface {
	ClearFields(ctx context.Context, accountID uuid.UUID, fields []string) error
}

// Scheduler owns the expiry timers for pending account operations. It is
// process wide, holds at most one live timer per (purpose, account) key
// and clears a slot's columns at most once per armed token: arming the
// same key again replaces the previous timer, consuming cancels it.
//
// The scheduler is best-effort cleanup, not the correctness guarantee:
// lookups on the consume path check the expiry column themselves, so a
// clear that never runs (crash, restart, storage failure) only leaves
// stale columns behind, never accepts an expired token.
type Scheduler struct {
	store Store
	clock Clock

	mu      sync.Mutex
	entries map[timerKey]*timerEntry
	seq     uint64
	stopped bool

	// All scheduler-side persistence writes funnel through this queue to
	// a single worker, so they never race each other and run after the
	// consuming request's own write has been submitted.
	clears chan clearJob
	quit   chan struct{}
	done   chan struct{}
}

type timerKey struct {
	purpose   string
	accountID uuid.UUID
}

type timerEntry struct {
	seq    uint64
	timer  Timer
	fields []string
}

type clearJob struct {
	accountID uuid.UUID
	fields    []string
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithClock substitutes the time source, used by simulated-time tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func NewScheduler(store Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:   store,
		clock:   systemClock{},
		entries: make(map[timerKey]*timerEntry),
		clears:  make(chan clearJob, 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.clearLoop()

	return s
}

// Arm schedules the slot identified by (purpose, accountID) to have
// fields cleared from storage at expiresAt. A previous timer for the
// same key is cancelled first, so only the most recent arming is ever
// in effect. Deadlines already in the past fire asynchronously, never
// inline with the caller.
func (s *Scheduler) Arm(purpose string, accountID uuid.UUID, expiresAt time.Time, fields []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	k := timerKey{purpose: purpose, accountID: accountID}
	if old := s.entries[k]; old != nil {
		old.timer.Stop()
	}

	s.seq++
	e := &timerEntry{
		seq:    s.seq,
		fields: append([]string(nil), fields...),
	}

	delay := expiresAt.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}

	seq := e.seq
	e.timer = s.clock.AfterFunc(delay, func() { s.fire(k, seq) })
	s.entries[k] = e
}

// Disarm cancels the timer for (purpose, accountID) if one is armed.
// Cancelling an absent, already fired or already cancelled timer is a
// no-op.
//
// With cancelOnly the bookkeeping is simply dropped, leaving storage
// alone: the caller has already rewritten the slot itself, or is about
// to supersede it with a fresh token. Without cancelOnly a clear of the
// remembered fields is queued behind the caller's own persistence write;
// it becomes a no-op rewrite of already empty columns on the normal
// consume path.
func (s *Scheduler) Disarm(purpose string, accountID uuid.UUID, cancelOnly bool) {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return
	}

	k := timerKey{purpose: purpose, accountID: accountID}
	e := s.entries[k]
	if e == nil {
		s.mu.Unlock()
		return
	}

	e.timer.Stop()
	delete(s.entries, k)
	s.mu.Unlock()

	if !cancelOnly {
		s.enqueue(clearJob{accountID: accountID, fields: e.fields})
	}
}

// Armed reports whether a timer is currently held for the key.
func (s *Scheduler) Armed(purpose string, accountID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.entries[timerKey{purpose: purpose, accountID: accountID}]
	return ok
}

// Stop cancels every timer, drains queued clears and shuts the worker
// down. Arm and Disarm become no-ops afterwards. Safe to call twice.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	for k, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, k)
	}
	s.mu.Unlock()

	close(s.quit)
	<-s.done
}

// fire runs when a timer goes off. The seq check rejects stale callbacks
// from timers that were replaced or cancelled after they had already
// started firing.
func (s *Scheduler) fire(k timerKey, seq uint64) {
	s.mu.Lock()

	if s.stopped {
		s.mu.Unlock()
		return
	}

	e := s.entries[k]
	if e == nil || e.seq != seq {
		s.mu.Unlock()
		return
	}
	delete(s.entries, k)
	s.mu.Unlock()

	s.enqueue(clearJob{accountID: k.accountID, fields: e.fields})
}

// enqueue hands a clear job to the worker. It runs outside s.mu so a
// full queue behind a slow store only blocks its own caller, never every
// Arm and Disarm in the process. A shutdown racing the send abandons the
// job; the consume path's expiry check covers slots that keep their
// stale columns.
func (s *Scheduler) enqueue(job clearJob) {
	select {
	case s.clears <- job:
	case <-s.quit:
	}
}

func (s *Scheduler) clearLoop() {
	defer close(s.done)

	for {
		select {
		case job := <-s.clears:
			s.clear(job)
		case <-s.quit:
			// Drain what was already queued, then exit.
			for {
				select {
				case job := <-s.clears:
					s.clear(job)
				default:
					return
				}
			}
		}
	}
}

func (s *Scheduler) clear(job clearJob) {
	if err := s.store.ClearFields(context.Background(), job.accountID, job.fields); err != nil {
		// Not retried: the consume path's expiry check is the safety
		// net for slots that keep their stale columns.
		log.Printf("expiry: clearing pending fields of account %s: %v", job.accountID, err)
		return
	}
	log.Printf("expiry: cleared pending fields of account %s", job.accountID)
}
