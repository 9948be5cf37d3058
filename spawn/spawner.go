// Package spawn creates obstacle entities and owns their lifecycle: slot
// acquisition, telegraph arming, terminal-outcome resolution, and slot
// release. Every obstacle resolves exactly once no matter how many terminal
// listeners observe it.
package spawn

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
)

const (
	// exitPollInterval is the polling period for off-screen exit detection on
	// rollers and weavers.
	exitPollInterval = 100 * time.Millisecond

	// exitMargin is how far past the screen edge an obstacle must travel
	// before it counts as exited.
	exitMargin = 80.0
)

// EventObstacleResolved is pushed to the world event queue on every terminal
// outcome. Data is a ResolvedEvent.
const EventObstacleResolved = "obstacle_resolved"

// ResolvedEvent is the payload of an EventObstacleResolved event.
type ResolvedEvent struct {
	Kind    component.ObstacleKind
	Outcome component.Outcome
}

// Spawner is shared by the wave directors and the boss controller. It is the
// only code allowed to mutate arena slots.
type Spawner struct {
	world  *ecs.World
	runner *sched.Runner
	reg    *arena.Registry
	cfg    prefabs.TuningSpec

	onPlayerHit func()

	resolved  map[ecs.Entity]func(component.Outcome)
	pollTasks map[ecs.Entity]*sched.Task
}

func New(world *ecs.World, runner *sched.Runner, reg *arena.Registry, cfg prefabs.TuningSpec) *Spawner {
	return &Spawner{
		world:     world,
		runner:    runner,
		reg:       reg,
		cfg:       cfg,
		resolved:  make(map[ecs.Entity]func(component.Outcome)),
		pollTasks: make(map[ecs.Entity]*sched.Task),
	}
}

// Reload swaps the tuning spec in place; obstacles already in flight keep
// the values they spawned with.
func (s *Spawner) Reload(cfg prefabs.TuningSpec) {
	s.cfg = cfg
}

// SetHitHandler registers the callback run after each successful player hit.
func (s *Spawner) SetHitHandler(fn func()) {
	s.onPlayerHit = fn
}

// OnResolved registers a one-shot listener for an obstacle's terminal
// outcome. Used by shower bursts to track their spikes individually.
func (s *Spawner) OnResolved(e ecs.Entity, fn func(component.Outcome)) {
	if fn != nil {
		s.resolved[e] = fn
	}
}

// PlayerPos reads the player entity's live position.
func (s *Spawner) PlayerPos() (cp.Vector, bool) {
	e, ok := ecs.First(s.world, component.PlayerTagComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	t, ok := ecs.Get(s.world, e, component.TransformComponent.Kind())
	if !ok {
		return cp.Vector{}, false
	}
	return cp.Vector{X: t.X, Y: t.Y}, true
}

// SpawnTargetedSpike drops a spike on the player's current column. The
// telegraph shortens and the fall steepens with difficulty; at difficulty 1.0
// both are exactly the base constants.
func (s *Spawner) SpawnTargetedSpike(difficulty float64) (ecs.Entity, bool) {
	x := common.BaseWidth / 2.0
	if p, ok := s.PlayerPos(); ok {
		x = p.X
	}
	return s.spawnSpike(component.ObstacleTargetedSpike, x, difficulty)
}

// SpawnLaneSpike drops a spike at a fixed column.
func (s *Spawner) SpawnLaneSpike(x, difficulty float64) (ecs.Entity, bool) {
	return s.spawnSpike(component.ObstacleLaneSpike, x, difficulty)
}

func (s *Spawner) spawnSpike(kind component.ObstacleKind, x, difficulty float64) (ecs.Entity, bool) {
	tok, ok := s.reg.TryAcquire(arena.CategorySpike)
	if !ok {
		// Occupied slot: the request is dropped, never queued.
		return 0, false
	}

	if difficulty < 1 {
		difficulty = 1
	}
	warn := time.Duration(float64(s.cfg.Spike.WarnMs)/difficulty) * time.Millisecond
	gravity := s.cfg.Spike.Gravity * difficulty

	e := s.buildSpike(kind, arena.CategorySpike, tok, x, warn, gravity)
	return e, true
}

// SpawnShowerSpike drops one burst spike at a fixed column with a minimal
// warning. Shower spikes live outside the single-slot model and are tracked
// individually by the burst that fired them.
func (s *Spawner) SpawnShowerSpike(x float64) (ecs.Entity, bool) {
	warn := time.Duration(s.cfg.Spike.ShowerWarnMs) * time.Millisecond
	e := s.buildSpike(component.ObstacleShowerSpike, arena.CategorySpike, 0, x, warn, s.cfg.Spike.Gravity)
	return e, true
}

func (s *Spawner) buildSpike(kind component.ObstacleKind, cat arena.Category, tok arena.Token, x float64, warn time.Duration, gravity float64) ecs.Entity {
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: s.cfg.Spike.SpawnY})
	_ = ecs.Add(s.world, e, component.VelocityComponent.Kind(), &component.Velocity{})
	_ = ecs.Add(s.world, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeSpike,
		W:     s.cfg.Spike.Width,
		H:     s.cfg.Spike.Height,
		Color: color.NRGBA{R: 0xd8, G: 0x5a, B: 0x4a, A: 0xff},
		Layer: 50,
	})
	_ = ecs.Add(s.world, e, component.ObstacleComponent.Kind(), &component.Obstacle{
		Kind:     kind,
		Category: cat,
		Token:    tok,
		Born:     s.runner.Now(),
	})

	s.laneWarning(x, warn)

	// Arm after the telegraph; a resolution racing in first makes this a
	// no-op via the liveness check.
	s.runner.After(warn, func() {
		obs, ok := ecs.Get(s.world, e, component.ObstacleComponent.Kind())
		if !ok || obs.Outcome != component.OutcomeNone {
			return
		}
		obs.Armed = true
		if v, ok := ecs.Get(s.world, e, component.VelocityComponent.Kind()); ok {
			v.V.Y = 60
			v.Accel.Y = gravity
		}
		s.requestSound("spike_drop")
	})

	return e
}

// SpawnRoller sends a rolling hazard in from the side opposite the player, at
// a horizontal speed scaled by difficulty. Rollers are lethal immediately.
func (s *Spawner) SpawnRoller(difficulty float64) (ecs.Entity, bool) {
	tok, ok := s.reg.TryAcquire(arena.CategoryRoller)
	if !ok {
		return 0, false
	}
	if difficulty < 1 {
		difficulty = 1
	}

	fromLeft := false
	if p, ok := s.PlayerPos(); ok && p.X >= common.BaseWidth/2 {
		fromLeft = true
	}

	r := s.cfg.Roller.Radius
	x := common.BaseWidth + r
	vx := -s.cfg.Roller.Speed * difficulty
	if fromLeft {
		x = -r
		vx = -vx
	}

	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: x, Y: common.GroundY - r})
	_ = ecs.Add(s.world, e, component.VelocityComponent.Kind(), &component.Velocity{V: cp.Vector{X: vx}})
	_ = ecs.Add(s.world, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeCircle,
		W:     r * 2,
		H:     r * 2,
		Color: color.NRGBA{R: 0xb0, G: 0x8c, B: 0x3e, A: 0xff},
		Layer: 50,
	})
	_ = ecs.Add(s.world, e, component.ObstacleComponent.Kind(), &component.Obstacle{
		Kind:     component.ObstacleRoller,
		Category: arena.CategoryRoller,
		Token:    tok,
		Armed:    true,
		Born:     s.runner.Now(),
	})

	s.watchExit(e)
	s.requestSound("roller")
	return e, true
}

// SpawnWeaver drops a hazard that falls at constant speed while weaving
// sinusoidally around the player's column at spawn time.
func (s *Spawner) SpawnWeaver() (ecs.Entity, bool) {
	tok, ok := s.reg.TryAcquire(arena.CategoryWeaver)
	if !ok {
		return 0, false
	}

	center := common.BaseWidth / 2.0
	if p, ok := s.PlayerPos(); ok {
		center = common.Clamp(p.X, s.cfg.Weaver.Amplitude, common.BaseWidth-s.cfg.Weaver.Amplitude)
	}

	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.TransformComponent.Kind(), &component.Transform{X: center, Y: -s.cfg.Weaver.Width})
	_ = ecs.Add(s.world, e, component.VelocityComponent.Kind(), &component.Velocity{V: cp.Vector{Y: s.cfg.Weaver.FallSpeed}})
	_ = ecs.Add(s.world, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeRect,
		W:     s.cfg.Weaver.Width,
		H:     s.cfg.Weaver.Width,
		Color: color.NRGBA{R: 0x7a, G: 0x5f, B: 0xc9, A: 0xff},
		Layer: 50,
	})
	_ = ecs.Add(s.world, e, component.ObstacleComponent.Kind(), &component.Obstacle{
		Kind:           component.ObstacleWeaver,
		Category:       arena.CategoryWeaver,
		Token:          tok,
		Armed:          true,
		Born:           s.runner.Now(),
		WeaveCenterX:   center,
		WeaveAmplitude: s.cfg.Weaver.Amplitude,
		WeaveFreq:      s.cfg.Weaver.Freq,
	})

	s.watchExit(e)
	return e, true
}

// watchExit polls for off-screen exit on rollers and weavers and resolves
// them with OutcomeExitedScreen.
func (s *Spawner) watchExit(e ecs.Entity) {
	task := s.runner.Every(exitPollInterval, func() {
		t, ok := ecs.Get(s.world, e, component.TransformComponent.Kind())
		if !ok {
			// Entity already resolved through another outcome; the poll task
			// is cancelled during resolution, but guard anyway.
			s.stopWatch(e)
			return
		}
		if t.X < -exitMargin || t.X > common.BaseWidth+exitMargin || t.Y > common.BaseHeight+exitMargin {
			s.Resolve(e, component.OutcomeExitedScreen)
		}
	})
	s.pollTasks[e] = task
}

func (s *Spawner) stopWatch(e ecs.Entity) {
	if task, ok := s.pollTasks[e]; ok {
		task.Cancel()
		delete(s.pollTasks, e)
	}
}

// Resolve records an obstacle's terminal outcome, destroys it, and releases
// its slot, exactly once. Later calls for the same obstacle are absorbed.
func (s *Spawner) Resolve(e ecs.Entity, outcome component.Outcome) {
	obs, ok := ecs.Get(s.world, e, component.ObstacleComponent.Kind())
	if !ok {
		return
	}
	if obs.Outcome != component.OutcomeNone {
		// Second terminal listener firing for the same obstacle.
		log.Printf("spawn: duplicate %s for %s absorbed", outcome, obs.Kind)
		return
	}
	obs.Outcome = outcome

	s.stopWatch(e)
	s.reg.Release(obs.Category, obs.Token)

	switch outcome {
	case component.OutcomeGroundImpact:
		s.requestShake(120*time.Millisecond, 4)
		s.requestSound("impact")
	case component.OutcomePlayerHit:
		s.DamagePlayer()
	}

	notify := s.resolved[e]
	delete(s.resolved, e)
	kind := obs.Kind

	ecs.DestroyEntity(s.world, e)

	if notify != nil {
		notify(outcome)
	}
	s.world.Events().Push(ecs.Event{
		Type: EventObstacleResolved,
		Data: ResolvedEvent{Kind: kind, Outcome: outcome},
	})
}

// DamagePlayer decrements the player's life counter and fires the hit
// effects. Also used by the boss controller for projectile hits.
func (s *Spawner) DamagePlayer() {
	e, ok := ecs.First(s.world, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	hp, ok := ecs.Get(s.world, e, component.HealthComponent.Kind())
	if !ok || hp.Current <= 0 {
		return
	}
	hp.Current--

	s.requestShake(250*time.Millisecond, 10)
	s.requestSound("hurt")
	if s.onPlayerHit != nil {
		s.onPlayerHit()
	}
}

// CancelWatches cancels every off-screen poll task. Part of wave teardown.
func (s *Spawner) CancelWatches() {
	for e, task := range s.pollTasks {
		task.Cancel()
		delete(s.pollTasks, e)
	}
}

// LiveObstacles returns the number of unresolved obstacles, for the debug
// overlay and the simulator.
func (s *Spawner) LiveObstacles() int {
	return ecs.Count(s.world, component.ObstacleComponent.Kind())
}

func (s *Spawner) laneWarning(x float64, warn time.Duration) {
	frames := int(math.Ceil(warn.Seconds() * 60))
	if frames <= 0 {
		frames = 1
	}
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.LaneWarningComponent.Kind(), &component.LaneWarning{X: x, Frames: frames})
	_ = ecs.Add(s.world, e, component.TTLComponent.Kind(), &component.TTL{Frames: frames})
	s.requestSound("warning")
}

func (s *Spawner) requestShake(d time.Duration, intensity float64) {
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.CameraShakeRequestComponent.Kind(), &component.CameraShakeRequest{Duration: d, Intensity: intensity})
}

func (s *Spawner) requestSound(name string) {
	e := ecs.CreateEntity(s.world)
	_ = ecs.Add(s.world, e, component.SoundRequestComponent.Kind(), &component.SoundRequest{Name: name})
}
