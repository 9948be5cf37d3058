// Package sched is the timer core for the level: cancellable one-shot and
// repeating tasks plus a bounded-interval condition await, all driven by a
// single cooperatively-advanced clock. There is no real parallelism; every
// callback runs inline from Advance, and callbacks may freely schedule or
// cancel other tasks.
package sched

import (
	"sort"
	"time"
)

// Task is one scheduled callback. Cancel is idempotent: cancelling twice, or
// cancelling after the task already completed, is a no-op and never causes a
// double run.
type Task struct {
	runner *Runner
	seq    uint64

	due    time.Duration
	period time.Duration // 0 for one-shot
	cond   func() bool   // non-nil for condition awaits
	fn     func()

	done      bool
	cancelled bool
}

// Cancel removes the task from its runner. Safe to call any number of times,
// before or after the task has fired.
func (t *Task) Cancel() {
	if t == nil || t.cancelled || t.done {
		return
	}
	t.cancelled = true
}

// Active reports whether the task is still pending.
func (t *Task) Active() bool {
	return t != nil && !t.done && !t.cancelled
}

// Runner owns every pending task for one level run.
type Runner struct {
	now   time.Duration
	seq   uint64
	tasks []*Task
}

func NewRunner() *Runner {
	return &Runner{}
}

// Now returns the runner clock, the total advanced time since creation.
func (r *Runner) Now() time.Duration {
	return r.now
}

// Pending returns the number of live tasks.
func (r *Runner) Pending() int {
	n := 0
	for _, t := range r.tasks {
		if t.Active() {
			n++
		}
	}
	return n
}

// After schedules fn to run once after d.
func (r *Runner) After(d time.Duration, fn func()) *Task {
	return r.add(&Task{due: r.now + d, fn: fn})
}

// Every schedules fn to run repeatedly at the given period, first firing one
// period from now. The task repeats until cancelled.
func (r *Runner) Every(period time.Duration, fn func()) *Task {
	if period <= 0 {
		period = time.Millisecond
	}
	return r.add(&Task{due: r.now + period, period: period, fn: fn})
}

// Await polls cond at the given interval and runs fn once when cond first
// reports true, then completes. This is the explicit "wait for condition"
// primitive used in place of ad hoc repeating timers.
func (r *Runner) Await(interval time.Duration, cond func() bool, fn func()) *Task {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return r.add(&Task{due: r.now + interval, period: interval, cond: cond, fn: fn})
}

func (r *Runner) add(t *Task) *Task {
	r.seq++
	t.seq = r.seq
	t.runner = r
	r.tasks = append(r.tasks, t)
	return t
}

// CancelAll cancels every pending task. Used on wave teardown and game over
// so no stale callback fires into a reset state.
func (r *Runner) CancelAll() {
	for _, t := range r.tasks {
		t.Cancel()
	}
	r.tasks = r.tasks[:0]
}

// Advance moves the clock forward by dt, firing every task that comes due, in
// deadline order. Tasks scheduled by callbacks within the window are honored
// in the same Advance call.
func (r *Runner) Advance(dt time.Duration) {
	if dt <= 0 {
		return
	}
	target := r.now + dt
	for {
		t := r.nextDue(target)
		if t == nil {
			break
		}
		if t.due > r.now {
			r.now = t.due
		}
		r.fire(t)
	}
	r.now = target
	r.compact()
}

// nextDue picks the earliest live task due at or before target, tie-broken by
// scheduling order.
func (r *Runner) nextDue(target time.Duration) *Task {
	var best *Task
	for _, t := range r.tasks {
		if !t.Active() || t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (r *Runner) fire(t *Task) {
	if t.cond != nil {
		if !t.cond() {
			t.due += t.period
			return
		}
		t.done = true
		if t.fn != nil {
			t.fn()
		}
		return
	}
	if t.period > 0 {
		t.due += t.period
		if t.fn != nil {
			t.fn()
		}
		return
	}
	t.done = true
	if t.fn != nil {
		t.fn()
	}
}

func (r *Runner) compact() {
	live := r.tasks[:0]
	for _, t := range r.tasks {
		if t.Active() {
			live = append(live, t)
		}
	}
	r.tasks = live
}

// Step is one entry of a declarative timeline: run Do at offset At from the
// moment the timeline is played.
type Step struct {
	At time.Duration
	Do func()
}

// Timeline is a handle over the scheduled steps of one Play call.
type Timeline struct {
	tasks []*Task
}

// Cancel stops every step that has not fired yet. Idempotent.
func (tl *Timeline) Cancel() {
	if tl == nil {
		return
	}
	for _, t := range tl.tasks {
		t.Cancel()
	}
}

// Done reports whether every step has fired or been cancelled.
func (tl *Timeline) Done() bool {
	if tl == nil {
		return true
	}
	for _, t := range tl.tasks {
		if t.Active() {
			return false
		}
	}
	return true
}

// Play schedules all steps relative to the current clock. Steps are sorted by
// offset; equal offsets fire in slice order.
func (r *Runner) Play(steps []Step) *Timeline {
	ordered := append([]Step(nil), steps...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At < ordered[j].At })
	tl := &Timeline{tasks: make([]*Task, 0, len(ordered))}
	for _, s := range ordered {
		if s.Do == nil {
			continue
		}
		tl.tasks = append(tl.tasks, r.After(s.At, s.Do))
	}
	return tl
}
