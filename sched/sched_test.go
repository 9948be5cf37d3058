package sched

import (
	"testing"
	"time"
)

func TestRunnerFiresInDeadlineOrder(t *testing.T) {
	r := NewRunner()
	var got []string

	r.After(300*time.Millisecond, func() { got = append(got, "c") })
	r.After(100*time.Millisecond, func() { got = append(got, "a") })
	r.After(200*time.Millisecond, func() { got = append(got, "b") })

	r.Advance(time.Second)

	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d fires, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fire order %v, want %v", got, want)
		}
	}
}

func TestRunnerTiesFireInScheduleOrder(t *testing.T) {
	r := NewRunner()
	var got []string
	r.After(100*time.Millisecond, func() { got = append(got, "first") })
	r.After(100*time.Millisecond, func() { got = append(got, "second") })

	r.Advance(100 * time.Millisecond)

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("tie order %v", got)
	}
}

func TestRunnerClockMatchesDueTimeDuringFire(t *testing.T) {
	r := NewRunner()
	var at time.Duration
	r.After(250*time.Millisecond, func() { at = r.Now() })

	r.Advance(time.Second)

	if at != 250*time.Millisecond {
		t.Fatalf("callback saw clock %s, want 250ms", at)
	}
	if r.Now() != time.Second {
		t.Fatalf("clock after advance %s, want 1s", r.Now())
	}
}

func TestTasksScheduledByCallbacksFireInSameAdvance(t *testing.T) {
	r := NewRunner()
	var got []string
	r.After(100*time.Millisecond, func() {
		got = append(got, "outer")
		r.After(50*time.Millisecond, func() { got = append(got, "inner") })
	})

	r.Advance(200 * time.Millisecond)

	if len(got) != 2 || got[1] != "inner" {
		t.Fatalf("expected nested task within the same advance, got %v", got)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	r := NewRunner()
	fired := 0
	task := r.After(100*time.Millisecond, func() { fired++ })

	task.Cancel()
	task.Cancel()
	r.Advance(time.Second)

	if fired != 0 {
		t.Fatalf("cancelled task fired %d times", fired)
	}
	if task.Active() {
		t.Fatalf("cancelled task still active")
	}

	// Cancelling after completion is also a no-op.
	done := r.After(100*time.Millisecond, func() { fired++ })
	r.Advance(time.Second)
	done.Cancel()
	if fired != 1 {
		t.Fatalf("completed task fired %d times, want 1", fired)
	}
}

func TestCancelFromEarlierTaskSuppressesLaterTask(t *testing.T) {
	r := NewRunner()
	fired := false
	victim := r.After(200*time.Millisecond, func() { fired = true })
	r.After(100*time.Millisecond, func() { victim.Cancel() })

	r.Advance(time.Second)

	if fired {
		t.Fatalf("task fired despite being cancelled mid-advance")
	}
}

func TestEveryRepeatsUntilCancelled(t *testing.T) {
	r := NewRunner()
	fired := 0
	task := r.Every(100*time.Millisecond, func() { fired++ })

	r.Advance(450 * time.Millisecond)
	if fired != 4 {
		t.Fatalf("periodic fired %d times in 450ms, want 4", fired)
	}

	task.Cancel()
	r.Advance(time.Second)
	if fired != 4 {
		t.Fatalf("periodic fired after cancel")
	}
}

func TestAwaitPollsUntilConditionHolds(t *testing.T) {
	r := NewRunner()
	ready := false
	polls := 0
	done := false

	r.Await(100*time.Millisecond, func() bool {
		polls++
		return ready
	}, func() { done = true })

	r.Advance(300 * time.Millisecond)
	if done {
		t.Fatalf("await completed before condition held")
	}
	if polls != 3 {
		t.Fatalf("expected 3 polls, got %d", polls)
	}

	ready = true
	r.Advance(100 * time.Millisecond)
	if !done {
		t.Fatalf("await did not complete after condition held")
	}

	// One-shot: no more polls after completion.
	r.Advance(time.Second)
	if polls != 4 {
		t.Fatalf("await kept polling after completion: %d polls", polls)
	}
}

func TestCancelAllDropsEverything(t *testing.T) {
	r := NewRunner()
	fired := 0
	r.After(100*time.Millisecond, func() { fired++ })
	r.Every(50*time.Millisecond, func() { fired++ })
	r.Await(50*time.Millisecond, func() bool { return true }, func() { fired++ })

	r.CancelAll()
	r.Advance(time.Second)

	if fired != 0 {
		t.Fatalf("tasks fired after CancelAll: %d", fired)
	}
	if r.Pending() != 0 {
		t.Fatalf("pending tasks after CancelAll: %d", r.Pending())
	}
}

func TestTimelinePlaysStepsAtOffsets(t *testing.T) {
	r := NewRunner()
	var got []string

	tl := r.Play([]Step{
		{At: 300 * time.Millisecond, Do: func() { got = append(got, "late") }},
		{At: 100 * time.Millisecond, Do: func() { got = append(got, "early") }},
		{At: 100 * time.Millisecond, Do: func() { got = append(got, "early2") }},
	})

	r.Advance(150 * time.Millisecond)
	if len(got) != 2 || got[0] != "early" || got[1] != "early2" {
		t.Fatalf("after 150ms got %v", got)
	}
	if tl.Done() {
		t.Fatalf("timeline done with a step pending")
	}

	r.Advance(200 * time.Millisecond)
	if len(got) != 3 || got[2] != "late" {
		t.Fatalf("after 350ms got %v", got)
	}
	if !tl.Done() {
		t.Fatalf("timeline not done after all steps fired")
	}
}

func TestTimelineCancelStopsPendingSteps(t *testing.T) {
	r := NewRunner()
	fired := 0
	tl := r.Play([]Step{
		{At: 100 * time.Millisecond, Do: func() { fired++ }},
		{At: 500 * time.Millisecond, Do: func() { fired++ }},
	})

	r.Advance(200 * time.Millisecond)
	tl.Cancel()
	tl.Cancel()
	r.Advance(time.Second)

	if fired != 1 {
		t.Fatalf("expected only the first step, got %d fires", fired)
	}
	if !tl.Done() {
		t.Fatalf("cancelled timeline should report done")
	}
}

func TestAdvanceZeroIsNoOp(t *testing.T) {
	r := NewRunner()
	fired := false
	r.After(0, func() { fired = true })

	r.Advance(0)
	if fired {
		t.Fatalf("zero advance fired a task")
	}

	r.Advance(time.Nanosecond)
	if !fired {
		t.Fatalf("due task did not fire")
	}
}
