package wave

import (
	"log"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

const weaveFillInterval = 250 * time.Millisecond

// Director3 plays a fixed absolute-offset timeline loaded from prefabs, then
// holds a continuous weave-fill: whenever no weaver is live, spawn one, until
// the fill window closes. Lane attacks are delegated to the encounter
// controller through LaneAttack.
type Director3 struct {
	runner *sched.Runner
	sp     *spawn.Spawner
	reg    *arena.Registry

	// LaneAttack runs a boss lane sub-sequence. Left nil, lane events log
	// and skip.
	LaneAttack func(laneX float64, onDone func())

	spec   prefabs.Wave3Spec
	active bool
	onDone func()

	timeline    *sched.Timeline
	fillTask    *sched.Task
	fillEndTask *sched.Task
	showerStops []func()
}

func NewDirector3(runner *sched.Runner, sp *spawn.Spawner, reg *arena.Registry) *Director3 {
	d := &Director3{runner: runner, sp: sp, reg: reg}

	spec, err := prefabs.LoadSpec[prefabs.Wave3Spec]("wave3.yaml")
	if err != nil || len(spec.Events) == 0 {
		log.Printf("wave3: timeline unavailable (%v), using fallback", err)
		spec = prefabs.Wave3Spec{
			Events: []prefabs.Wave3Event{
				{AtMs: 0, Action: "spike"},
				{AtMs: 1500, Action: "roller"},
				{AtMs: 3000, Action: "shower"},
			},
			FillMs: 30000,
		}
	}
	d.spec = spec
	return d
}

func (d *Director3) Start(onDone func()) {
	if d.active {
		log.Printf("wave3: start while active, ignored")
		return
	}
	d.active = true
	d.onDone = onDone

	steps := make([]sched.Step, 0, len(d.spec.Events)+1)
	var last time.Duration
	for _, ev := range d.spec.Events {
		e := ev
		at := time.Duration(e.AtMs) * time.Millisecond
		if at > last {
			last = at
		}
		steps = append(steps, sched.Step{At: at, Do: func() { d.fire(e) }})
	}
	steps = append(steps, sched.Step{At: last, Do: func() {
		d.runner.After(0, d.startFill)
	}})
	d.timeline = d.runner.Play(steps)
}

func (d *Director3) Stop() {
	d.active = false
	if d.timeline != nil {
		d.timeline.Cancel()
	}
	if d.fillTask != nil {
		d.fillTask.Cancel()
	}
	if d.fillEndTask != nil {
		d.fillEndTask.Cancel()
	}
	for _, stop := range d.showerStops {
		stop()
	}
	d.showerStops = nil
}

func (d *Director3) fire(ev prefabs.Wave3Event) {
	if !d.active {
		return
	}
	switch ev.Action {
	case "spike":
		d.sp.SpawnTargetedSpike(1)
	case "roller":
		d.sp.SpawnRoller(1)
	case "shower":
		d.showerStops = append(d.showerStops, spawn.ShowerBurst(d.sp, 10, nil))
	case "lane_attack":
		if d.LaneAttack == nil {
			log.Printf("wave3: lane_attack with no encounter wired, skipped")
			return
		}
		x := common.LaneLeftX
		if ev.Lane == "right" {
			x = common.LaneRightX
		}
		d.LaneAttack(x, nil)
	default:
		log.Printf("wave3: unknown timeline action %q, skipped", ev.Action)
	}
}

// startFill opens the weave-fill window. The in-flight weaver at window close
// is left to exit on its own.
func (d *Director3) startFill() {
	if !d.active {
		return
	}
	d.fillTask = d.runner.Every(weaveFillInterval, func() {
		if !d.reg.Occupied(arena.CategoryWeaver) {
			d.sp.SpawnWeaver()
		}
	})
	d.fillEndTask = d.runner.After(time.Duration(d.spec.FillMs)*time.Millisecond, func() {
		d.fillTask.Cancel()
		d.finish()
	})
}

func (d *Director3) finish() {
	if !d.active {
		return
	}
	d.active = false
	if d.onDone != nil {
		d.onDone()
	}
}
