// scheduler.go: Cancelable deferred and debounced task execution
//
// The runtime's only concurrency-flavored constructs live here: the short
// fixed-delay "apply-after-settle" timers scheduled from table-event
// handlers, and the debounce timers that collapse bursts of layout-change
// notifications into a single detection pass. Every scheduled task is a
// cancelable handle owned by a plugin; uninstall cancels everything the
// plugin owns, which is what prevents a deferred callback from firing
// against a torn-down context.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gridplugins

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/go-timecache"
)

// cachedNow returns the current time from the process-wide time cache. Event
// and store timestamps are informational, so cached resolution is enough.
func cachedNow() time.Time {
	return timecache.CachedTime()
}

// ClockTimer is one armed timer. Stop reports whether the timer was
// prevented from firing.
type ClockTimer interface {
	Stop() bool
}

// Clock abstracts timer creation so deferral behavior is testable without
// real sleeps. The runtime uses SystemClock; tests use ManualClock and
// advance it explicitly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arms a timer that invokes fn once after d elapses.
	AfterFunc(d time.Duration, fn func()) ClockTimer
}

// SystemClock is the production Clock backed by the Go runtime's timers and
// the cached wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return cachedNow()
}

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, fn func()) ClockTimer {
	return time.AfterFunc(d, fn)
}

// ManualClock is a deterministic Clock for tests. Timers fire synchronously,
// in due order, when Advance moves the clock past their deadline.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

// NewManualClock creates a manual clock starting at an arbitrary fixed time.
func NewManualClock() *ManualClock {
	return &ManualClock{now: time.Unix(1700000000, 0)}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc implements Clock.
func (c *ManualClock) AfterFunc(d time.Duration, fn func()) ClockTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{deadline: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and fires every timer whose deadline has
// been reached, in deadline order. Callbacks run on the caller's goroutine,
// matching the single UI-thread model.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*manualTimer
	var pending []*manualTimer
	for _, t := range c.timers {
		if t.stopped.Load() {
			continue
		}
		if !t.deadline.After(c.now) {
			due = append(due, t)
		} else {
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		if t.stopped.CompareAndSwap(false, true) {
			t.fn()
		}
	}
}

// PendingTimers returns the number of armed, unexpired timers.
func (c *ManualClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped.Load() {
			n++
		}
	}
	return n
}

type manualTimer struct {
	deadline time.Time
	fn       func()
	stopped  atomic.Bool
}

// Stop implements ClockTimer.
func (t *manualTimer) Stop() bool {
	return t.stopped.CompareAndSwap(false, true)
}

// TaskHandle identifies one scheduled task. Cancel is idempotent and safe to
// call after the task fired.
type TaskHandle struct {
	owner     string
	key       string // non-empty for debounced tasks
	timer     ClockTimer
	done      atomic.Bool
	fired     atomic.Bool
	scheduler *Scheduler
}

// Cancel stops the task if it has not fired yet and reports whether it did.
func (h *TaskHandle) Cancel() bool {
	if h == nil {
		return false
	}
	if !h.done.CompareAndSwap(false, true) {
		return false
	}
	if h.timer != nil {
		h.timer.Stop()
	}
	h.scheduler.forget(h)
	return true
}

// Fired reports whether the task's callback has already run.
func (h *TaskHandle) Fired() bool {
	return h != nil && h.done.Load() && h.fired.Load()
}

// Scheduler owns every deferred and debounced task in one runtime. Tasks are
// keyed by the plugin that scheduled them so a plugin's uninstall can cancel
// exactly its own pending work.
type Scheduler struct {
	clock  Clock
	logger Logger

	mu       sync.Mutex
	tasks    map[*TaskHandle]struct{}
	debounce map[string]*TaskHandle // ownerName + "\x00" + key
}

// NewScheduler creates a scheduler on the given clock. A nil clock selects
// SystemClock, a nil logger selects the no-op logger.
func NewScheduler(clock Clock, logger Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = DefaultLogger()
	}
	return &Scheduler{
		clock:    clock,
		logger:   logger,
		tasks:    make(map[*TaskHandle]struct{}),
		debounce: make(map[string]*TaskHandle),
	}
}

// Defer schedules fn to run once after delay on behalf of owner. The
// returned handle stays valid after firing.
func (s *Scheduler) Defer(owner string, delay time.Duration, fn func()) *TaskHandle {
	handle := &TaskHandle{owner: owner, scheduler: s}
	s.arm(handle, delay, fn)
	return handle
}

// Debounce schedules fn to run after a quiet period. Re-arming the same
// owner and key before the period elapses cancels the pending run and starts
// the wait over, so a burst of triggers produces exactly one trailing run.
func (s *Scheduler) Debounce(owner, key string, quiet time.Duration, fn func()) *TaskHandle {
	mapKey := owner + "\x00" + key

	s.mu.Lock()
	prev := s.debounce[mapKey]
	s.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	handle := &TaskHandle{owner: owner, key: mapKey, scheduler: s}
	s.arm(handle, quiet, fn)
	return handle
}

func (s *Scheduler) arm(handle *TaskHandle, delay time.Duration, fn func()) {
	s.mu.Lock()
	s.tasks[handle] = struct{}{}
	if handle.key != "" {
		s.debounce[handle.key] = handle
	}
	s.mu.Unlock()

	handle.timer = s.clock.AfterFunc(delay, func() {
		if !handle.done.CompareAndSwap(false, true) {
			return // canceled between firing and running
		}
		handle.fired.Store(true)
		s.forget(handle)
		fn()
	})
}

// CancelOwned cancels every pending task scheduled by the given owner.
// Called from plugin uninstall so no deferred callback outlives its plugin.
func (s *Scheduler) CancelOwned(owner string) int {
	s.mu.Lock()
	var owned []*TaskHandle
	for handle := range s.tasks {
		if handle.owner == owner {
			owned = append(owned, handle)
		}
	}
	s.mu.Unlock()

	canceled := 0
	for _, handle := range owned {
		if handle.Cancel() {
			canceled++
		}
	}
	if canceled > 0 {
		s.logger.Debug("Canceled pending tasks", "owner", owner, "count", canceled)
	}
	return canceled
}

// CancelAll cancels every pending task. Called at runtime shutdown.
func (s *Scheduler) CancelAll() int {
	s.mu.Lock()
	all := make([]*TaskHandle, 0, len(s.tasks))
	for handle := range s.tasks {
		all = append(all, handle)
	}
	s.mu.Unlock()

	canceled := 0
	for _, handle := range all {
		if handle.Cancel() {
			canceled++
		}
	}
	return canceled
}

// Pending returns the number of armed tasks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *Scheduler) forget(handle *TaskHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, handle)
	if handle.key != "" && s.debounce[handle.key] == handle {
		delete(s.debounce, handle.key)
	}
}
