package wave

import (
	"log"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

const (
	wave2Retry        = 200 * time.Millisecond
	wave2Poll         = 100 * time.Millisecond
	wave2Settle       = 300 * time.Millisecond
	wave2ShowerSettle = 500 * time.Millisecond
	miniShowerCount   = 3
)

// Director2 consumes an ordered step queue loaded from prefabs. Each step
// waits for the arena to accept it, spawns, waits for the obstacle to fully
// resolve, settles briefly, then advances. Busy checks always re-read live
// registry state at fire time.
type Director2 struct {
	runner *sched.Runner
	sp     *spawn.Spawner
	reg    *arena.Registry

	steps  []string
	index  int
	active bool
	onDone func()

	pending    *sched.Task
	showerStop func()
}

func NewDirector2(runner *sched.Runner, sp *spawn.Spawner, reg *arena.Registry) *Director2 {
	d := &Director2{runner: runner, sp: sp, reg: reg}

	spec, err := prefabs.LoadSpec[prefabs.Wave2Spec]("wave2.yaml")
	if err != nil || len(spec.Steps) == 0 {
		log.Printf("wave2: step queue unavailable (%v), using fallback", err)
		spec.Steps = []string{"spike", "roller", "spike", "weaver", "mini_shower", "spike"}
	}
	d.steps = spec.Steps
	return d
}

func (d *Director2) Remaining() int {
	return len(d.steps) - d.index
}

func (d *Director2) Start(onDone func()) {
	if d.active {
		log.Printf("wave2: start while active, ignored")
		return
	}
	d.active = true
	d.index = 0
	d.onDone = onDone
	d.advance()
}

func (d *Director2) Stop() {
	d.active = false
	if d.pending != nil {
		d.pending.Cancel()
	}
	if d.showerStop != nil {
		d.showerStop()
		d.showerStop = nil
	}
}

func (d *Director2) finish() {
	if !d.active {
		return
	}
	d.active = false
	if d.onDone != nil {
		d.onDone()
	}
}

// advance attempts the current step. An occupied arena, in any category or
// the shower flag, means the same step retries in 200ms.
func (d *Director2) advance() {
	if !d.active {
		return
	}
	if d.index >= len(d.steps) {
		d.finish()
		return
	}

	if d.reg.AnyOccupied() {
		d.pending = d.runner.After(wave2Retry, d.advance)
		return
	}

	step := d.steps[d.index]
	d.index++

	switch step {
	case "spike":
		if e, ok := d.sp.SpawnTargetedSpike(1); ok {
			d.awaitResolved(e, wave2Settle)
		} else {
			d.retryCurrent()
		}
	case "roller":
		if e, ok := d.sp.SpawnRoller(1); ok {
			d.awaitResolved(e, wave2Settle)
		} else {
			d.retryCurrent()
		}
	case "weaver":
		if e, ok := d.sp.SpawnWeaver(); ok {
			d.awaitResolved(e, wave2Settle)
		} else {
			d.retryCurrent()
		}
	case "mini_shower":
		d.showerStop = spawn.ShowerBurst(d.sp, miniShowerCount, func() {
			d.showerStop = nil
			if !d.active {
				return
			}
			d.pending = d.runner.After(wave2ShowerSettle, d.advance)
		})
	default:
		log.Printf("wave2: unknown step %q, skipped", step)
		d.advance()
	}
}

// retryCurrent rewinds the cursor and retries; the spawner refused an
// acquire that AnyOccupied did not predict, which can happen when a step
// fires into a slot released and retaken within the same instant.
func (d *Director2) retryCurrent() {
	d.index--
	d.pending = d.runner.After(wave2Retry, d.advance)
}

// awaitResolved polls the slot every 100ms until the obstacle resolves, then
// applies the settle delay and advances. The resolution callback covers the
// case where the obstacle resolves between polls.
func (d *Director2) awaitResolved(e ecs.Entity, settle time.Duration) {
	resolved := false
	d.sp.OnResolved(e, func(component.Outcome) {
		resolved = true
	})
	d.pending = d.runner.Await(wave2Poll, func() bool {
		return resolved || !d.reg.AnyOccupied()
	}, func() {
		if !d.active {
			return
		}
		d.pending = d.runner.After(settle, d.advance)
	})
}
