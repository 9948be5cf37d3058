// Command simulate runs headless seeded games with a scripted dodge policy
// and reports per-kind outcome counts. Useful for tuning the wave tables
// without playing the full run.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"

	"golang.design/x/clipboard"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/boss"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/ecs/entity"
	"github.com/milk9111/spikefall/ecs/system"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/save"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
	"github.com/milk9111/spikefall/wave"
)

const frameStep = time.Second / 60

type outcomeKey struct {
	kind    component.ObstacleKind
	outcome component.Outcome
}

type runStats struct {
	seed       int64
	frames     int
	finalPhase wave.Phase
	livesLeft  int
	wave       int
	outcomes   map[outcomeKey]int
}

func main() {
	seed := flag.Int64("seed", 1, "RNG seed for the first run")
	runs := flag.Int("runs", 1, "number of seeded runs (seed increments per run)")
	startWave := flag.Int("wave", 1, "start at wave 1-3")
	maxMinutes := flag.Int("max", 10, "abort a run after this many simulated minutes")
	copyReport := flag.Bool("copy", false, "copy the report to the system clipboard")
	flag.Parse()

	var reports []string
	for i := 0; i < *runs; i++ {
		stats := simulate(*seed+int64(i), *startWave, *maxMinutes)
		reports = append(reports, format(stats))
	}

	report := strings.Join(reports, "\n")
	fmt.Print(report)

	if *copyReport {
		if err := clipboard.Init(); err != nil {
			log.Printf("simulate: clipboard unavailable: %v", err)
			return
		}
		clipboard.Write(clipboard.FmtText, []byte(report))
		log.Printf("simulate: report copied to clipboard")
	}
}

func simulate(seed int64, startWave, maxMinutes int) runStats {
	rng := rand.New(rand.NewSource(seed))
	world := ecs.NewWorld()
	runner := sched.NewRunner()
	reg := arena.NewRegistry()
	cfg := prefabs.LoadTuning()
	saves := save.NewManager(nil)

	sp := spawn.New(world, runner, reg, cfg)
	machine := wave.NewMachine(world, runner, sp, reg, rng, cfg, saves, nil)

	stats := runStats{seed: seed, outcomes: map[outcomeKey]int{}}
	player := entity.NewPlayer(world, cfg.Player)
	systems := ecs.NewScheduler(
		system.NewKinematicsSystem(runner),
		spawn.NewOutcomeSystem(sp),
		boss.NewProjectileSystem(machine.Ring(), sp, cfg.Player),
		system.NewTTLSystem(),
	)

	machine.Start(startWave)

	maxFrames := maxMinutes * 60 * 60
	for frame := 0; frame < maxFrames; frame++ {
		dodge(world, player, cfg.Player)
		runner.Advance(frameStep)
		systems.Update(world)

		for _, evt := range world.Events().Drain() {
			if evt.Type != spawn.EventObstacleResolved {
				continue
			}
			res := evt.Data.(spawn.ResolvedEvent)
			stats.outcomes[outcomeKey{kind: res.Kind, outcome: res.Outcome}]++
		}

		if p := machine.Phase(); p == wave.PhaseComplete || p == wave.PhaseGameOver {
			stats.frames = frame + 1
			break
		}
		stats.frames = frame + 1
	}

	stats.finalPhase = machine.Phase()
	stats.livesLeft = machine.Lives()
	stats.wave = machine.CurrentWave()
	return stats
}

// dodge is the scripted stand-in for a player: step away from the nearest
// overhead threat, drift back to center otherwise.
func dodge(w *ecs.World, player ecs.Entity, cfg prefabs.PlayerSpec) {
	t, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}

	threatX := math.NaN()
	threatDist := math.Inf(1)
	consider := func(x, y float64) {
		d := math.Abs(x - t.X)
		if d < 140 && y < t.Y && d < threatDist {
			threatX = x
			threatDist = d
		}
	}

	ecs.ForEach2(w, component.ObstacleComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, obs *component.Obstacle, ot *component.Transform) {
			if obs.Outcome == component.OutcomeNone {
				consider(ot.X, ot.Y)
			}
		})
	ecs.ForEach(w, component.LaneWarningComponent.Kind(), func(_ ecs.Entity, warn *component.LaneWarning) {
		consider(warn.X, 0)
	})
	ecs.ForEach2(w, component.ProjectileComponent.Kind(), component.TransformComponent.Kind(),
		func(_ ecs.Entity, _ *component.Projectile, pt *component.Transform) {
			consider(pt.X, pt.Y)
		})

	step := cfg.MoveSpeed / 60
	switch {
	case !math.IsNaN(threatX):
		if threatX >= t.X {
			t.X -= step
		} else {
			t.X += step
		}
	case t.X < common.BaseWidth/2-step:
		t.X += step
	case t.X > common.BaseWidth/2+step:
		t.X -= step
	}
	t.X = common.Clamp(t.X, cfg.Width/2, common.BaseWidth-cfg.Width/2)
}

func format(s runStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "seed %d: %s after %s (wave %d, %d lives left)\n",
		s.seed, s.finalPhase, (time.Duration(s.frames) * frameStep).Round(time.Second), s.wave, s.livesLeft)

	keys := make([]outcomeKey, 0, len(s.outcomes))
	for k := range s.outcomes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].kind != keys[j].kind {
			return keys[i].kind < keys[j].kind
		}
		return keys[i].outcome < keys[j].outcome
	})
	for _, k := range keys {
		fmt.Fprintf(&b, "  %-14s %-13s %d\n", k.kind, k.outcome, s.outcomes[k])
	}
	return b.String()
}
