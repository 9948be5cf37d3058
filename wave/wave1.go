package wave

import (
	"log"
	"math/rand"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

const (
	wave1Duration   = 60 * time.Second
	wave1Retry      = 500 * time.Millisecond
	wave1BaseDelay  = 1800 * time.Millisecond
	wave1BusyDelay  = 2500 * time.Millisecond
	comboChance     = 0.4
	difficultyStep  = 0.2
	difficultyEvery = 15 * time.Second
)

// Director1 runs the randomized first wave: a self-rescheduling spawn loop
// whose pace divides by a difficulty multiplier that ratchets up every 15
// seconds and never resets mid-wave.
type Director1 struct {
	runner *sched.Runner
	sp     *spawn.Spawner
	reg    *arena.Registry
	rng    *rand.Rand
	combos *comboRuntime

	difficulty float64
	prevCombo  string
	active     bool

	loopTask *sched.Task
	rampTask *sched.Task
	endTask  *sched.Task
	onDone   func()
}

func NewDirector1(runner *sched.Runner, sp *spawn.Spawner, reg *arena.Registry, rng *rand.Rand) *Director1 {
	return &Director1{
		runner: runner,
		sp:     sp,
		reg:    reg,
		rng:    rng,
		combos: newComboRuntime(),
	}
}

func (d *Director1) Difficulty() float64 {
	return d.difficulty
}

func (d *Director1) Start(onDone func()) {
	if d.active {
		log.Printf("wave1: start while active, ignored")
		return
	}
	d.active = true
	d.difficulty = 1.0
	d.prevCombo = ""
	d.onDone = onDone

	d.rampTask = d.runner.Every(difficultyEvery, func() {
		d.difficulty += difficultyStep
		log.Printf("wave1: difficulty now %.1f", d.difficulty)
	})
	d.endTask = d.runner.After(wave1Duration, func() {
		d.finish()
	})
	d.iterate()
}

// Stop halts the wave immediately without invoking the completion callback.
func (d *Director1) Stop() {
	d.active = false
	d.cancelTasks()
}

func (d *Director1) finish() {
	if !d.active {
		return
	}
	d.active = false
	d.cancelTasks()
	if d.onDone != nil {
		d.onDone()
	}
}

func (d *Director1) cancelTasks() {
	if d.loopTask != nil {
		d.loopTask.Cancel()
	}
	if d.rampTask != nil {
		d.rampTask.Cancel()
	}
	if d.endTask != nil {
		d.endTask.Cancel()
	}
}

// iterate is one turn of the spawn loop. The spike slot gates everything: a
// busy slot means a short retry with no draw, so the random stream only
// advances when something can actually spawn.
func (d *Director1) iterate() {
	if !d.active {
		return
	}

	if d.reg.Occupied(arena.CategorySpike) {
		d.loopTask = d.runner.After(wave1Retry, d.iterate)
		return
	}

	rollerLive := d.reg.Occupied(arena.CategoryRoller)
	base := wave1BaseDelay
	if rollerLive {
		base = wave1BusyDelay
	}

	var combo *ComboPlan
	if d.rng.Float64() < comboChance && !rollerLive {
		plan := d.pickCombo()
		d.playCombo(plan)
		combo = &plan
	} else {
		d.sp.SpawnTargetedSpike(d.difficulty)
	}

	d.loopTask = d.runner.After(loopDelay(base, d.difficulty, combo), d.iterate)
}

// loopDelay scales only the base delay by difficulty. A combo's step offsets
// and trailing pause are fixed, so the loop waits out the whole combo and
// then the scaled delay.
func loopDelay(base time.Duration, difficulty float64, combo *ComboPlan) time.Duration {
	wait := time.Duration(float64(base) / difficulty)
	if combo != nil {
		wait += combo.Duration()
	}
	return wait
}

// pickCombo draws uniformly over the combos, rejecting the immediately
// previous pick and resampling.
func (d *Director1) pickCombo() ComboPlan {
	name := ComboNames[d.rng.Intn(len(ComboNames))]
	for name == d.prevCombo {
		name = ComboNames[d.rng.Intn(len(ComboNames))]
	}
	d.prevCombo = name

	playerX := common.BaseWidth / 2.0
	if p, ok := d.sp.PlayerPos(); ok {
		playerX = p.X
	}
	plan, err := d.combos.eval(name, playerX, d.reg.Occupied(arena.CategoryRoller))
	if err != nil {
		log.Printf("wave1: %v, falling back to targeted spike", err)
		return ComboPlan{Name: name, Steps: []ComboStep{{Action: "targeted_spike"}}}
	}
	return plan
}

func (d *Director1) playCombo(plan ComboPlan) {
	for _, step := range plan.Steps {
		s := step
		d.runner.After(s.At, func() {
			if !d.active {
				return
			}
			switch s.Action {
			case "targeted_spike":
				d.sp.SpawnTargetedSpike(d.difficulty)
			case "lane_spike":
				d.sp.SpawnLaneSpike(s.X, d.difficulty)
			case "roller":
				d.sp.SpawnRoller(d.difficulty)
			default:
				log.Printf("wave1: combo %q: unknown action %q", plan.Name, s.Action)
			}
		})
	}
}
