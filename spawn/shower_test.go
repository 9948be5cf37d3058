package spawn

import (
	"testing"
	"time"

	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

func liveShowerSpikes(f *fixture) []ecs.Entity {
	var out []ecs.Entity
	ecs.ForEach(f.world, component.ObstacleComponent.Kind(), func(e ecs.Entity, obs *component.Obstacle) {
		if obs.Kind == component.ObstacleShowerSpike && obs.Outcome == component.OutcomeNone {
			out = append(out, e)
		}
	})
	return out
}

func TestShowerBurstFiresAlternatingLanes(t *testing.T) {
	f := newFixture(t)

	ShowerBurst(f.sp, 3, nil)

	if !f.reg.Showering() {
		t.Fatalf("shower flag not set at burst start")
	}

	spikes := liveShowerSpikes(f)
	if len(spikes) != 1 {
		t.Fatalf("expected 1 spike immediately, got %d", len(spikes))
	}
	tr, _ := ecs.Get(f.world, spikes[0], component.TransformComponent.Kind())
	if tr.X != common.LaneLeftX {
		t.Fatalf("first spike at %v, want left lane", tr.X)
	}

	f.runner.Advance(showerSpacing)
	spikes = liveShowerSpikes(f)
	if len(spikes) != 2 {
		t.Fatalf("expected 2 spikes after one interval, got %d", len(spikes))
	}

	lanes := map[float64]bool{}
	for _, e := range spikes {
		tr, _ := ecs.Get(f.world, e, component.TransformComponent.Kind())
		lanes[tr.X] = true
	}
	if !lanes[common.LaneLeftX] || !lanes[common.LaneRightX] {
		t.Fatalf("spikes did not alternate lanes: %v", lanes)
	}

	f.runner.Advance(showerSpacing)
	if got := len(liveShowerSpikes(f)); got != 3 {
		t.Fatalf("expected 3 spikes, got %d", got)
	}

	// No further spikes after the count is reached.
	f.runner.Advance(3 * showerSpacing)
	if got := len(liveShowerSpikes(f)); got != 3 {
		t.Fatalf("burst kept firing past its count: %d", got)
	}
}

func TestShowerBurstCompletesOnlyWhenAllResolve(t *testing.T) {
	f := newFixture(t)

	doneCount := 0
	ShowerBurst(f.sp, 3, func() { doneCount++ })
	f.runner.Advance(2 * showerSpacing)

	spikes := liveShowerSpikes(f)
	if len(spikes) != 3 {
		t.Fatalf("expected 3 spikes, got %d", len(spikes))
	}

	f.sp.Resolve(spikes[0], component.OutcomeGroundImpact)
	f.sp.Resolve(spikes[1], component.OutcomePlayerHit)
	if doneCount != 0 {
		t.Fatalf("burst completed with a spike still falling")
	}
	if !f.reg.Showering() {
		t.Fatalf("shower flag dropped before the last spike resolved")
	}

	f.sp.Resolve(spikes[2], component.OutcomeGroundImpact)
	if doneCount != 1 {
		t.Fatalf("onDone ran %d times, want 1", doneCount)
	}
	if f.reg.Showering() {
		t.Fatalf("shower flag still set after the burst finished")
	}
}

func TestShowerBurstCancelSuppressesOnDone(t *testing.T) {
	f := newFixture(t)

	done := false
	cancel := ShowerBurst(f.sp, 5, func() { done = true })
	f.runner.Advance(showerSpacing)

	spikes := liveShowerSpikes(f)
	if len(spikes) != 2 {
		t.Fatalf("expected 2 spikes before cancel, got %d", len(spikes))
	}

	cancel()
	cancel()
	f.runner.Advance(5 * showerSpacing)
	if got := len(liveShowerSpikes(f)); got != 2 {
		t.Fatalf("cancelled burst kept firing: %d spikes", got)
	}

	// The already-falling spikes still resolve naturally.
	for _, e := range spikes {
		f.sp.Resolve(e, component.OutcomeGroundImpact)
	}
	if done {
		t.Fatalf("onDone ran after cancel")
	}
	if f.reg.Showering() {
		t.Fatalf("shower flag still set after cancelled burst drained")
	}
}

func TestShowerBurstSingleSpike(t *testing.T) {
	f := newFixture(t)

	done := false
	ShowerBurst(f.sp, 1, func() { done = true })

	spikes := liveShowerSpikes(f)
	if len(spikes) != 1 {
		t.Fatalf("expected 1 spike, got %d", len(spikes))
	}
	f.runner.Advance(3 * showerSpacing)
	if got := len(liveShowerSpikes(f)); got != 1 {
		t.Fatalf("single burst fired extra spikes: %d", got)
	}

	f.sp.Resolve(spikes[0], component.OutcomeGroundImpact)
	if !done {
		t.Fatalf("single-spike burst never completed")
	}
}

func TestShowerBurstZeroCountCompletesImmediately(t *testing.T) {
	f := newFixture(t)
	done := false
	ShowerBurst(f.sp, 0, func() { done = true })
	if !done {
		t.Fatalf("zero-count burst did not complete immediately")
	}
	if f.reg.Showering() {
		t.Fatalf("zero-count burst left the shower flag set")
	}
}

func TestShowerDurationScalesWithCount(t *testing.T) {
	if ShowerDuration(3) != 3*showerSpacing+1500*time.Millisecond {
		t.Fatalf("unexpected duration for 3: %s", ShowerDuration(3))
	}
	if ShowerDuration(10) <= ShowerDuration(3) {
		t.Fatalf("duration not monotonic in count")
	}
}
