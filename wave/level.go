package wave

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/boss"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/save"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseWave1
	PhaseWave1Ending
	PhaseInterWave
	PhaseWave2
	PhaseWave2Ending
	PhaseWave3
	PhaseWave3Ending
	PhaseComplete
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWave1:
		return "wave1Active"
	case PhaseWave1Ending:
		return "wave1Ending"
	case PhaseInterWave:
		return "interWave"
	case PhaseWave2:
		return "wave2Active"
	case PhaseWave2Ending:
		return "wave2Ending"
	case PhaseWave3:
		return "wave3Active"
	case PhaseWave3Ending:
		return "wave3Ending"
	case PhaseComplete:
		return "complete"
	}
	return "gameOver"
}

const (
	graceDuration  = 7 * time.Second
	interWaveDelay = 3 * time.Second
)

// Machine sequences the run: three waves, each capped by a boss encounter,
// with health restored between waves. It owns the lives counter and is the
// only place a run ends, either at complete or gameOver.
type Machine struct {
	world  *ecs.World
	runner *sched.Runner
	sp     *spawn.Spawner
	reg    *arena.Registry
	cfg    prefabs.TuningSpec
	saves  *save.Manager

	d1 *Director1
	d2 *Director2
	d3 *Director3

	ring       *boss.Ring
	encounters []*boss.Encounter

	phase       Phase
	lives       int
	active      bool
	currentWave int

	graceTask *sched.Task
	nextTask  *sched.Task
}

// NewMachine builds a run's state machine. A nil ring gets a fresh one;
// passing the previous run's ring keeps projectile bookkeeping stable across
// restarts, since the overlap system holds the ring it was built with.
func NewMachine(world *ecs.World, runner *sched.Runner, sp *spawn.Spawner, reg *arena.Registry, rng *rand.Rand, cfg prefabs.TuningSpec, saves *save.Manager, ring *boss.Ring) *Machine {
	if ring == nil {
		ring = boss.NewRing(world, cfg.Boss.CapNormal)
	}
	m := &Machine{
		world:  world,
		runner: runner,
		sp:     sp,
		reg:    reg,
		cfg:    cfg,
		saves:  saves,
		phase:  PhaseIdle,
		ring:   ring,
	}
	m.d1 = NewDirector1(runner, sp, reg, rng)
	m.d2 = NewDirector2(runner, sp, reg)
	m.d3 = NewDirector3(runner, sp, reg)
	m.d3.LaneAttack = m.laneAttack

	sp.SetHitHandler(m.onPlayerHit)
	return m
}

func (m *Machine) Phase() Phase      { return m.phase }
func (m *Machine) Lives() int        { return m.lives }
func (m *Machine) Active() bool      { return m.active }
func (m *Machine) CurrentWave() int  { return m.currentWave }
func (m *Machine) Ring() *boss.Ring  { return m.ring }
func (m *Machine) Difficulty() float64 {
	if m.phase == PhaseWave1 {
		return m.d1.Difficulty()
	}
	return 1
}

// Start begins a run at the given wave (1..3, as persisted restarts allow).
func (m *Machine) Start(fromWave int) {
	if m.active {
		log.Printf("level: start while active, ignored")
		return
	}
	if fromWave < 1 || fromWave > 3 {
		fromWave = 1
	}
	m.active = true
	m.lives = m.cfg.Player.MaxHealth
	m.restoreHealth()
	m.startWave(fromWave)
}

func (m *Machine) startWave(n int) {
	if !m.active {
		return
	}
	m.currentWave = n
	m.saves.SetRestartWave(n)
	m.narrate(fmt.Sprintf("WAVE %d", n))
	log.Printf("level: wave %d begins", n)

	switch n {
	case 1:
		m.phase = PhaseWave1
		m.d1.Start(func() { m.enterEnding(1) })
	case 2:
		m.phase = PhaseWave2
		m.d2.Start(func() { m.enterEnding(2) })
	case 3:
		m.phase = PhaseWave3
		m.d3.Start(func() { m.enterEnding(3) })
	}
}

// enterEnding stops the wave's director and hands the field to the boss.
// Obstacles still in flight get a grace window to finish on their own
// timers before the sweep clears stragglers.
func (m *Machine) enterEnding(wave int) {
	if !m.active {
		return
	}
	m.scheduleSweep()

	enc := m.newEncounter()
	switch wave {
	case 1:
		m.phase = PhaseWave1Ending
		enc.StartWave1(func() { m.interWave(2) })
	case 2:
		m.phase = PhaseWave2Ending
		enc.StartWave2(func() { m.interWave(3) })
	case 3:
		m.phase = PhaseWave3Ending
		enc.StartFinale(m.complete)
	}
}

func (m *Machine) newEncounter() *boss.Encounter {
	enc := boss.NewEncounter(m.world, m.runner, m.sp, m.reg, m.cfg.Boss, m.ring)
	m.encounters = append(m.encounters, enc)
	return enc
}

// laneAttack is the wave-3 timeline's hook into the encounter controller.
func (m *Machine) laneAttack(laneX float64, onDone func()) {
	if !m.active {
		return
	}
	m.newEncounter().StartLaneAttack(laneX, onDone)
}

func (m *Machine) interWave(next int) {
	if !m.active {
		return
	}
	m.phase = PhaseInterWave
	m.restoreHealth()
	m.narrate(fmt.Sprintf("WAVE %d CLEAR", next-1))
	m.nextTask = m.runner.After(interWaveDelay, func() { m.startWave(next) })
}

func (m *Machine) complete() {
	if !m.active {
		return
	}
	m.active = false
	m.phase = PhaseComplete
	m.scheduleSweep()

	count := m.saves.RecordCompletion()
	log.Printf("level: run complete, %d total", count)

	e := ecs.CreateEntity(m.world)
	_ = ecs.Add(m.world, e, component.EndingRequestComponent.Kind(), &component.EndingRequest{Completions: count})
}

// onPlayerHit is invoked by the spawner whenever anything damages the
// player, obstacle or projectile alike.
func (m *Machine) onPlayerHit() {
	if !m.active {
		return
	}
	m.lives--
	log.Printf("level: hit, %d lives left", m.lives)
	if m.lives <= 0 {
		m.gameOver()
	}
}

// gameOver cancels everything scheduled and releases every lock at once.
// Directors and encounters are stopped first so their callbacks cannot
// observe the torn-down runner.
func (m *Machine) gameOver() {
	m.active = false
	m.phase = PhaseGameOver
	m.saves.SetRestartWave(m.currentWave)

	m.d1.Stop()
	m.d2.Stop()
	m.d3.Stop()
	for _, enc := range m.encounters {
		enc.Stop()
	}
	m.encounters = nil

	m.runner.CancelAll()
	m.sp.CancelWatches()
	m.reg.Reset()
	m.narrate("GAME OVER")
	log.Printf("level: game over on wave %d", m.currentWave)
}

// scheduleSweep resolves, after the grace window, any obstacle that was
// already falling when the wave stopped and still has not reached a terminal
// state. Obstacles born after the mark belong to whatever started since and
// are left alone.
func (m *Machine) scheduleSweep() {
	mark := m.runner.Now()
	m.graceTask = m.runner.After(graceDuration, func() {
		swept := 0
		ecs.ForEach(m.world, component.ObstacleComponent.Kind(), func(e ecs.Entity, obs *component.Obstacle) {
			if obs.Outcome != component.OutcomeNone || obs.Born > mark {
				return
			}
			m.sp.Resolve(e, sweepOutcome(obs.Kind))
			swept++
		})
		if swept > 0 {
			log.Printf("level: grace sweep resolved %d straggler(s)", swept)
		}
	})
}

// sweepOutcome maps a swept straggler to the terminal outcome its kind would
// naturally reach: spikes hit the ground, rollers and weavers leave the
// screen.
func sweepOutcome(kind component.ObstacleKind) component.Outcome {
	switch kind {
	case component.ObstacleRoller, component.ObstacleWeaver:
		return component.OutcomeExitedScreen
	}
	return component.OutcomeGroundImpact
}

func (m *Machine) restoreHealth() {
	if e, ok := ecs.First(m.world, component.PlayerTagComponent.Kind()); ok {
		if h, okh := ecs.Get(m.world, e, component.HealthComponent.Kind()); okh {
			h.Current = h.Max
		}
	}
	m.lives = m.cfg.Player.MaxHealth
}

func (m *Machine) narrate(msg string) {
	e := ecs.CreateEntity(m.world)
	_ = ecs.Add(m.world, e, component.FloatingTextComponent.Kind(), &component.FloatingText{Message: msg, Frames: 150})
	_ = ecs.Add(m.world, e, component.TTLComponent.Kind(), &component.TTL{Frames: 150})
}
