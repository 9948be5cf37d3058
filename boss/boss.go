// Package boss runs the scripted encounters: appearance and exit tweens, the
// telegraph/fire cycle, the bounded projectile ring, and the wave-3 finale
// timeline. Each encounter is a declarative list of absolute-offset steps
// consumed by the shared sched timeline runner, not nested callbacks.
package boss

import (
	"image/color"
	"log"
	"math"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

const (
	trackedShotSpacing = 800 * time.Millisecond
	hoverAmplitude     = 9.0
	exitHoldoff        = 400 * time.Millisecond
)

// Encounter drives one boss appearance. A fresh Encounter is built per wave
// ending; Stop tears down whatever is in flight.
type Encounter struct {
	world  *ecs.World
	runner *sched.Runner
	sp     *spawn.Spawner
	reg    *arena.Registry
	cfg    prefabs.BossSpec

	entity ecs.Entity
	ring   *Ring

	timeline   *sched.Timeline
	motionTask *sched.Task
	hoverTask  *sched.Task
	flashTask  *sched.Task
	ensureTask *sched.Task
	showerStop func()

	stopped bool
}

// NewEncounter builds one encounter over a shared projectile ring. The ring
// outlives individual encounters so back-to-back appearances reuse it.
func NewEncounter(world *ecs.World, runner *sched.Runner, sp *spawn.Spawner, reg *arena.Registry, cfg prefabs.BossSpec, ring *Ring) *Encounter {
	if ring == nil {
		ring = NewRing(world, cfg.CapNormal)
	}
	return &Encounter{
		world:  world,
		runner: runner,
		sp:     sp,
		reg:    reg,
		cfg:    cfg,
		ring:   ring,
	}
}

// Ring exposes the encounter's projectile ring for the overlap system.
func (b *Encounter) Projectiles() *Ring {
	return b.ring
}

// script accumulates steps against a running cursor. then() places an action
// at the cursor and advances it by the action's nominal duration; pause()
// just advances.
type script struct {
	steps []sched.Step
	cur   time.Duration
}

func (s *script) then(d time.Duration, fn func()) {
	s.steps = append(s.steps, sched.Step{At: s.cur, Do: fn})
	s.cur += d
}

func (s *script) pause(d time.Duration) {
	s.cur += d
}

func (b *Encounter) enterDur() time.Duration {
	return time.Duration(b.cfg.EnterMs) * time.Millisecond
}

func (b *Encounter) telegraphDur(cycles int) time.Duration {
	return time.Duration(2*cycles*b.cfg.TelegraphMs) * time.Millisecond
}

// StartWave1 plays the first encounter: one tracked shot behind a long
// telegraph.
func (b *Encounter) StartWave1(onDone func()) {
	s := &script{}
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(b.telegraphDur(10), func() { b.telegraph(10) })
	s.then(0, b.fireTracked)
	s.pause(2 * time.Second)
	b.finishWith(s, onDone)
}

// StartWave2 plays the second encounter: a 5-shot barrage with a continuous
// "one roller always live" loop between the first and last shot.
func (b *Encounter) StartWave2(onDone func()) {
	s := &script{}
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(b.telegraphDur(6), func() { b.telegraph(6) })
	for i := 0; i < 5; i++ {
		shot := i
		s.then(trackedShotSpacing, func() {
			b.fireTracked()
			if shot == 0 {
				b.startEnsureRoller()
			}
			if shot == 4 {
				b.stopEnsureRoller()
			}
		})
	}
	s.pause(500 * time.Millisecond)
	b.finishWith(s, onDone)
}

// StartLaneAttack plays the short mid-wave-3 sub-sequence: a telegraphed
// 4-shot attack at a fixed lane.
func (b *Encounter) StartLaneAttack(laneX float64, onDone func()) {
	s := &script{}
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(b.telegraphDur(4), func() { b.telegraph(4) })
	for i := 0; i < 4; i++ {
		s.then(600*time.Millisecond, func() { b.fireLane(laneX) })
	}
	s.pause(400 * time.Millisecond)
	b.finishWith(s, onDone)
}

// StartFinale plays the wave-3 ending: two tracked volleys broken by shower
// attacks, then a timed lane attack against each lane with continuous hazard
// replenishment, then the final exit.
func (b *Encounter) StartFinale(onDone func()) {
	s := &script{}

	volley := func(s *script) {
		for i := 0; i < 10; i++ {
			shot := i
			s.then(trackedShotSpacing, func() {
				b.fireTracked()
				if shot == 0 {
					b.startEnsureRoller()
				}
				if shot == 9 {
					b.stopEnsureRoller()
				}
			})
		}
	}

	// First volley.
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(b.telegraphDur(6), func() { b.telegraph(6) })
	volley(s)
	s.then(b.enterDur()+exitHoldoff, b.exit)
	s.then(spawn.ShowerDuration(10), func() { b.showerStop = spawn.ShowerBurst(b.sp, 10, nil) })

	// Second volley.
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(b.telegraphDur(6), func() { b.telegraph(6) })
	volley(s)
	s.then(b.enterDur()+exitHoldoff, b.exit)
	s.then(spawn.ShowerDuration(10), func() { b.showerStop = spawn.ShowerBurst(b.sp, 10, nil) })

	// Lane phase: the densest stretch of the game runs with the tighter
	// projectile cap.
	s.then(b.enterDur()+exitHoldoff, b.enter)
	s.then(0, func() { b.ring.SetCap(b.cfg.CapDense) })
	b.lanePhase(s, common.LaneLeftX)
	b.lanePhase(s, common.LaneRightX)
	s.then(0, func() { b.ring.SetCap(b.cfg.CapNormal) })

	b.finishWith(s, onDone)
}

// lanePhase is one telegraphed 10-shot fixed-lane attack with 10 seconds of
// continuous roller replenishment.
func (b *Encounter) lanePhase(s *script, laneX float64) {
	spacing := time.Duration(b.cfg.LaneShotSpacing) * time.Millisecond
	s.then(b.telegraphDur(6), func() {
		b.telegraph(6)
		b.warn(laneX)
		b.startEnsureRoller()
		b.runner.After(10*time.Second, b.stopEnsureRoller)
	})
	for i := 0; i < 10; i++ {
		s.then(spacing, func() { b.fireLane(laneX) })
	}
	s.pause(500 * time.Millisecond)
}

func (b *Encounter) finishWith(s *script, onDone func()) {
	s.then(b.enterDur()+exitHoldoff, b.exit)
	s.then(0, func() {
		if onDone != nil {
			onDone()
		}
	})
	b.timeline = b.runner.Play(s.steps)
}

// Stop cancels the encounter mid-flight: all timeline steps, motion and
// flash tasks, the roller loop, and every live projectile. Idempotent.
func (b *Encounter) Stop() {
	if b == nil || b.stopped {
		return
	}
	b.stopped = true
	if b.timeline != nil {
		b.timeline.Cancel()
	}
	b.cancelMotion()
	b.stopEnsureRoller()
	if b.showerStop != nil {
		b.showerStop()
		b.showerStop = nil
	}
	b.ring.Clear()
	if ecs.IsAlive(b.world, b.entity) {
		ecs.DestroyEntity(b.world, b.entity)
	}
}

func (b *Encounter) enter() {
	if b.stopped {
		return
	}
	if ecs.IsAlive(b.world, b.entity) {
		log.Printf("boss: enter requested while already present, ignored")
		return
	}

	e := ecs.CreateEntity(b.world)
	_ = ecs.Add(b.world, e, component.TransformComponent.Kind(), &component.Transform{X: common.BaseWidth / 2, Y: -b.cfg.Height})
	_ = ecs.Add(b.world, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeRect,
		W:     b.cfg.Width,
		H:     b.cfg.Height,
		Color: color.NRGBA{R: 0x4c, G: 0x7f, B: 0x3f, A: 0xff},
		Layer: 60,
	})
	_ = ecs.Add(b.world, e, component.BossComponent.Kind(), &component.Boss{Phase: component.BossEntering, HomeY: b.cfg.HoverY})
	_ = ecs.Add(b.world, e, component.BossTagComponent.Kind(), &component.BossTag{})
	b.entity = e

	b.sound("boss_enter")
	b.moveTo(b.cfg.HoverY, func() {
		b.setPhase(component.BossHovering)
		b.startHover()
	})
}

func (b *Encounter) exit() {
	if b.stopped || !ecs.IsAlive(b.world, b.entity) {
		return
	}
	b.cancelMotion()
	b.setPhase(component.BossExiting)
	b.sound("boss_exit")
	b.moveTo(-b.cfg.Height*2, func() {
		b.setPhase(component.BossGone)
		ecs.DestroyEntity(b.world, b.entity)
	})
}

// moveTo tweens the boss vertically over the configured entrance time.
func (b *Encounter) moveTo(targetY float64, then func()) {
	t, ok := ecs.Get(b.world, b.entity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	fromY := t.Y
	dur := b.enterDur()
	start := b.runner.Now()

	b.motionTask = b.runner.Every(time.Second/60, func() {
		t, ok := ecs.Get(b.world, b.entity, component.TransformComponent.Kind())
		if !ok {
			b.cancelMotion()
			return
		}
		p := float64(b.runner.Now()-start) / float64(dur)
		if p >= 1 {
			t.Y = targetY
			b.motionTask.Cancel()
			if then != nil {
				then()
			}
			return
		}
		t.Y = common.Lerp(fromY, targetY, p)
	})
}

func (b *Encounter) startHover() {
	start := b.runner.Now()
	b.hoverTask = b.runner.Every(time.Second/60, func() {
		t, ok := ecs.Get(b.world, b.entity, component.TransformComponent.Kind())
		if !ok {
			return
		}
		boss, ok := ecs.Get(b.world, b.entity, component.BossComponent.Kind())
		if !ok || boss.Phase == component.BossEntering || boss.Phase == component.BossExiting {
			return
		}
		elapsed := (b.runner.Now() - start).Seconds()
		t.Y = boss.HomeY + hoverAmplitude*math.Sin(2.2*elapsed)
	})
}

func (b *Encounter) cancelMotion() {
	if b.motionTask != nil {
		b.motionTask.Cancel()
	}
	if b.hoverTask != nil {
		b.hoverTask.Cancel()
	}
	if b.flashTask != nil {
		b.flashTask.Cancel()
	}
}

// telegraph flashes the boss for the given number of cycles before a shot.
func (b *Encounter) telegraph(cycles int) {
	if b.stopped {
		return
	}
	b.setPhase(component.BossAiming)
	b.sound("boss_aim")

	flips := 0
	b.flashTask = b.runner.Every(time.Duration(b.cfg.TelegraphMs)*time.Millisecond, func() {
		boss, ok := ecs.Get(b.world, b.entity, component.BossComponent.Kind())
		if !ok {
			return
		}
		boss.Telegraph = !boss.Telegraph
		flips++
		if flips >= cycles*2 {
			boss.Telegraph = false
			b.flashTask.Cancel()
		}
	})
}

// fireTracked fires one shot at the player's position captured at fire time.
func (b *Encounter) fireTracked() {
	target := cp.Vector{X: common.BaseWidth / 2, Y: common.GroundY}
	if p, ok := b.sp.PlayerPos(); ok {
		target = p
	}
	b.fireAt(target)
}

// fireLane fires one shot at a fixed lane column, not tracking the player.
func (b *Encounter) fireLane(laneX float64) {
	b.fireAt(cp.Vector{X: laneX, Y: common.GroundY})
}

func (b *Encounter) fireAt(target cp.Vector) {
	if b.stopped || !ecs.IsAlive(b.world, b.entity) {
		return
	}
	t, ok := ecs.Get(b.world, b.entity, component.TransformComponent.Kind())
	if !ok {
		return
	}
	b.setPhase(component.BossFiring)
	b.sound("boss_fire")
	b.ring.Fire(b.runner, cp.Vector{X: t.X, Y: t.Y + b.cfg.Height/2}, target, b.cfg.ShotSpeed, b.cfg.ProjectileSize)

	b.runner.After(200*time.Millisecond, func() {
		if !b.stopped && ecs.IsAlive(b.world, b.entity) {
			b.setPhase(component.BossHovering)
		}
	})
}

// startEnsureRoller keeps exactly one roller live for as long as the loop
// runs. Restarting an already-running loop is a no-op.
func (b *Encounter) startEnsureRoller() {
	if b.ensureTask != nil && b.ensureTask.Active() {
		return
	}
	b.ensureTask = b.runner.Every(time.Duration(b.cfg.RollerEnsureMs)*time.Millisecond, func() {
		if !b.reg.Occupied(arena.CategoryRoller) {
			b.sp.SpawnRoller(1)
		}
	})
}

func (b *Encounter) stopEnsureRoller() {
	if b.ensureTask != nil {
		b.ensureTask.Cancel()
	}
}

func (b *Encounter) setPhase(p component.BossPhase) {
	if boss, ok := ecs.Get(b.world, b.entity, component.BossComponent.Kind()); ok {
		boss.Phase = p
	}
}

func (b *Encounter) warn(x float64) {
	e := ecs.CreateEntity(b.world)
	_ = ecs.Add(b.world, e, component.LaneWarningComponent.Kind(), &component.LaneWarning{X: x, Frames: 90})
	_ = ecs.Add(b.world, e, component.TTLComponent.Kind(), &component.TTL{Frames: 90})
}

func (b *Encounter) sound(name string) {
	e := ecs.CreateEntity(b.world)
	_ = ecs.Add(b.world, e, component.SoundRequestComponent.Kind(), &component.SoundRequest{Name: name})
}
