package spawn

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// Randomized interleavings of spawns, clock advances, resolutions, duplicate
// resolutions and stale releases. After every step the slot bookkeeping must
// match the live obstacles exactly: at most one per category, a slot held iff
// its obstacle is unresolved, and one resolution event per obstacle lifetime.
func TestRandomizedInterleavingKeepsSlotInvariants(t *testing.T) {
	const (
		seeds = 20
		steps = 2000
	)

	for seed := int64(0); seed < seeds; seed++ {
		seed := seed
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			f := newFixture(t)
			rng := rand.New(rand.NewSource(seed))

			var dead []ecs.Entity
			resolutions := 0

			live := func() map[arena.Category]int {
				counts := map[arena.Category]int{}
				ecs.ForEach(f.world, component.ObstacleComponent.Kind(), func(_ ecs.Entity, obs *component.Obstacle) {
					if obs.Outcome == component.OutcomeNone {
						counts[obs.Category]++
					}
				})
				return counts
			}

			randomLive := func() (ecs.Entity, bool) {
				var pool []ecs.Entity
				ecs.ForEach(f.world, component.ObstacleComponent.Kind(), func(e ecs.Entity, obs *component.Obstacle) {
					if obs.Outcome == component.OutcomeNone {
						pool = append(pool, e)
					}
				})
				if len(pool) == 0 {
					return 0, false
				}
				return pool[rng.Intn(len(pool))], true
			}

			outcomes := []component.Outcome{
				component.OutcomeGroundImpact,
				component.OutcomePlayerHit,
				component.OutcomeExitedScreen,
			}

			for step := 0; step < steps; step++ {
				switch rng.Intn(8) {
				case 0:
					f.sp.SpawnTargetedSpike(1)
				case 1:
					f.sp.SpawnLaneSpike(420, 1)
				case 2:
					f.sp.SpawnRoller(1)
				case 3:
					f.sp.SpawnWeaver()
				case 4:
					f.runner.Advance(time.Duration(rng.Intn(400)) * time.Millisecond)
				case 5:
					if e, ok := randomLive(); ok {
						f.sp.Resolve(e, outcomes[rng.Intn(len(outcomes))])
						resolutions++
						dead = append(dead, e)
					}
				case 6:
					// Duplicate resolution of an already-dead obstacle.
					if len(dead) > 0 {
						f.sp.Resolve(dead[rng.Intn(len(dead))], outcomes[rng.Intn(len(outcomes))])
					}
				case 7:
					// A release with a never-issued token must not free a
					// held slot.
					f.reg.Release(arena.Category(rng.Intn(3)), arena.Token(1<<40))
				}

				counts := live()
				for _, cat := range []arena.Category{arena.CategorySpike, arena.CategoryRoller, arena.CategoryWeaver} {
					if counts[cat] > 1 {
						t.Fatalf("seed %d step %d: %d live %s obstacles", seed, step, counts[cat], cat)
					}
					if f.reg.Occupied(cat) != (counts[cat] == 1) {
						t.Fatalf("seed %d step %d: %s slot=%v but %d live obstacles",
							seed, step, cat, f.reg.Occupied(cat), counts[cat])
					}
				}
			}

			events := 0
			for _, evt := range f.world.Events().Drain() {
				if evt.Type == EventObstacleResolved {
					events++
				}
			}
			if events != resolutions {
				t.Fatalf("seed %d: %d resolution events for %d resolutions", seed, events, resolutions)
			}
		})
	}
}
