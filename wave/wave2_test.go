package wave

import (
	"testing"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// resolveAll resolves every live obstacle as a ground impact, standing in
// for the physics that is not running in these tests.
func (f *waveFixture) resolveAll() {
	var live []ecs.Entity
	ecs.ForEach(f.world, component.ObstacleComponent.Kind(), func(e ecs.Entity, obs *component.Obstacle) {
		if obs.Outcome == component.OutcomeNone {
			live = append(live, e)
		}
	})
	for _, e := range live {
		f.sp.Resolve(e, component.OutcomeGroundImpact)
	}
}

func TestWave2LoadsStepQueueFromPrefabs(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)

	if d.Remaining() < 20 {
		t.Fatalf("step queue suspiciously short: %d", d.Remaining())
	}
}

func TestWave2StepWaitsForResolutionAndSettle(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)
	d.steps = []string{"spike", "spike"}

	d.Start(nil)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("expected the first step to spawn immediately")
	}

	// The first spike stays unresolved: no second spawn, however long.
	f.runner.Advance(5 * time.Second)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("second step fired before the first resolved")
	}

	f.resolveAll()

	// Resolution is noticed on the next poll, then the settle delay runs.
	f.runner.Advance(wave2Poll + wave2Settle - time.Millisecond)
	if f.sp.LiveObstacles() != 0 {
		t.Fatalf("second step fired before the settle elapsed")
	}
	f.runner.Advance(time.Millisecond)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("second step did not fire after the settle")
	}
}

func TestWave2RetriesWhileArenaOccupied(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)
	d.steps = []string{"spike"}

	// External occupancy in a different category still blocks the queue;
	// the retry must observe live state, not a snapshot.
	tok, _ := f.reg.TryAcquire(arena.CategoryRoller)
	d.Start(nil)

	f.runner.Advance(2 * time.Second)
	if f.sp.LiveObstacles() != 0 {
		t.Fatalf("step fired into an occupied arena")
	}

	f.reg.Release(arena.CategoryRoller, tok)
	f.runner.Advance(wave2Retry)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("step did not fire after the arena cleared")
	}
}

func TestWave2MiniShowerCompletesWhenAllThreeResolve(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)
	d.steps = []string{"mini_shower", "spike"}

	done := false
	d.Start(func() { done = true })

	// Three spikes fire over two 500ms intervals.
	f.runner.Advance(time.Second)
	if f.sp.LiveObstacles() != 3 {
		t.Fatalf("expected 3 shower spikes, got %d", f.sp.LiveObstacles())
	}
	if !f.reg.Showering() {
		t.Fatalf("shower flag not held during mini shower")
	}

	f.resolveAll()
	// Burst completion plus the longer shower settle gates the next step.
	f.runner.Advance(wave2ShowerSettle)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("queue did not advance past the mini shower: %d live", f.sp.LiveObstacles())
	}

	f.resolveAll()
	f.runner.Advance(wave2Poll + wave2Settle)
	if !done {
		t.Fatalf("queue exhaustion did not complete the wave")
	}
}

func TestWave2StopHaltsQueue(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)
	d.steps = []string{"spike", "spike", "spike"}

	done := false
	d.Start(func() { done = true })
	d.Stop()

	f.resolveAll()
	f.runner.Advance(time.Minute)

	if f.sp.LiveObstacles() != 0 {
		t.Fatalf("stopped queue kept spawning")
	}
	if done {
		t.Fatalf("stop invoked the completion callback")
	}
}

func TestWave2UnknownStepSkipped(t *testing.T) {
	f := newWaveFixture(t)
	d := NewDirector2(f.runner, f.sp, f.reg)
	d.steps = []string{"laser", "spike"}

	d.Start(nil)
	if f.sp.LiveObstacles() != 1 {
		t.Fatalf("unknown step blocked the queue")
	}
}
