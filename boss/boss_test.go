package boss

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spikefall/arena"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/ecs/entity"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/sched"
	"github.com/milk9111/spikefall/spawn"
)

type bossFixture struct {
	world  *ecs.World
	runner *sched.Runner
	reg    *arena.Registry
	sp     *spawn.Spawner
	cfg    prefabs.TuningSpec
}

func newBossFixture(t *testing.T) *bossFixture {
	t.Helper()
	world := ecs.NewWorld()
	runner := sched.NewRunner()
	reg := arena.NewRegistry()
	cfg := prefabs.Defaults()
	sp := spawn.New(world, runner, reg, cfg)
	entity.NewPlayer(world, cfg.Player)
	return &bossFixture{world: world, runner: runner, reg: reg, sp: sp, cfg: cfg}
}

func (f *bossFixture) bossEntity() (ecs.Entity, bool) {
	return ecs.First(f.world, component.BossTagComponent.Kind())
}

func projectileCount(w *ecs.World) int {
	return ecs.Count(w, component.ProjectileComponent.Kind())
}

func TestRingEvictsOldestAtCap(t *testing.T) {
	f := newBossFixture(t)
	ring := NewRing(f.world, 3)

	origin := cp.Vector{X: 640, Y: 140}
	var fired []ecs.Entity
	for i := 0; i < 5; i++ {
		e := ring.Fire(f.runner, origin, cp.Vector{X: 640, Y: 650}, 420, 16)
		fired = append(fired, e)
	}

	if ring.Count() != 3 {
		t.Fatalf("ring holds %d, want cap 3", ring.Count())
	}
	if ecs.IsAlive(f.world, fired[0]) || ecs.IsAlive(f.world, fired[1]) {
		t.Fatalf("oldest projectiles survived eviction")
	}
	for _, e := range fired[2:] {
		if !ecs.IsAlive(f.world, e) {
			t.Fatalf("recent projectile evicted")
		}
	}
}

func TestRingCapChangeAppliesToNewShots(t *testing.T) {
	f := newBossFixture(t)
	ring := NewRing(f.world, 10)

	origin := cp.Vector{X: 640, Y: 140}
	for i := 0; i < 6; i++ {
		ring.Fire(f.runner, origin, cp.Vector{X: 640, Y: 650}, 420, 16)
	}
	ring.SetCap(5)

	// A tighter cap does not evict retroactively, only on the next shot.
	if ring.Count() != 6 {
		t.Fatalf("cap change evicted immediately: %d", ring.Count())
	}
	ring.Fire(f.runner, origin, cp.Vector{X: 640, Y: 650}, 420, 16)
	if ring.Count() != 5 {
		t.Fatalf("ring holds %d after shot under cap 5", ring.Count())
	}
}

func TestRingCullsOffscreenOnFire(t *testing.T) {
	f := newBossFixture(t)
	ring := NewRing(f.world, 10)

	origin := cp.Vector{X: 640, Y: 140}
	e := ring.Fire(f.runner, origin, cp.Vector{X: 640, Y: 650}, 420, 16)
	tr, _ := ecs.Get(f.world, e, component.TransformComponent.Kind())
	tr.Y = 10000

	ring.Fire(f.runner, origin, cp.Vector{X: 640, Y: 650}, 420, 16)
	if ecs.IsAlive(f.world, e) {
		t.Fatalf("far off-screen projectile survived the fire-time cull")
	}
	if ring.Count() != 1 {
		t.Fatalf("ring holds %d, want 1", ring.Count())
	}
}

func TestRingClearDestroysEverything(t *testing.T) {
	f := newBossFixture(t)
	ring := NewRing(f.world, 10)
	for i := 0; i < 4; i++ {
		ring.Fire(f.runner, cp.Vector{X: 640, Y: 140}, cp.Vector{X: 640, Y: 650}, 420, 16)
	}

	ring.Clear()
	if ring.Count() != 0 || projectileCount(f.world) != 0 {
		t.Fatalf("projectiles survived Clear")
	}
}

func TestWave1EncounterScript(t *testing.T) {
	f := newBossFixture(t)
	enc := NewEncounter(f.world, f.runner, f.sp, f.reg, f.cfg.Boss, nil)

	done := false
	enc.StartWave1(func() { done = true })

	// Entrance: the boss entity appears and tweens in.
	f.runner.Advance(100 * time.Millisecond)
	e, ok := f.bossEntity()
	if !ok {
		t.Fatalf("no boss entity after the encounter started")
	}

	// After the entrance it hovers at its home line.
	f.runner.Advance(2 * time.Second)
	boss, _ := ecs.Get(f.world, e, component.BossComponent.Kind())
	if boss.Phase == component.BossEntering {
		t.Fatalf("boss still entering after the entrance window")
	}

	// One tracked shot total for this encounter.
	f.runner.Advance(3 * time.Second)
	if got := projectileCount(f.world); got != 1 {
		t.Fatalf("%d projectiles, want 1", got)
	}

	// Exit completes the script and despawns the boss.
	f.runner.Advance(4 * time.Second)
	if !done {
		t.Fatalf("encounter never completed")
	}
	if _, ok := f.bossEntity(); ok {
		t.Fatalf("boss entity survived its exit")
	}
}

func TestWave2EncounterKeepsARollerLive(t *testing.T) {
	f := newBossFixture(t)
	enc := NewEncounter(f.world, f.runner, f.sp, f.reg, f.cfg.Boss, nil)

	done := false
	enc.StartWave2(func() { done = true })

	// Entrance 1.6s + telegraph 1.44s + first shot; then the ensure-roller
	// loop holds the slot through the barrage.
	f.runner.Advance(3*time.Second + 100*time.Millisecond)
	f.runner.Advance(time.Duration(f.cfg.Boss.RollerEnsureMs) * time.Millisecond)
	if !f.reg.Occupied(arena.CategoryRoller) {
		t.Fatalf("no roller live during the wave-2 barrage")
	}

	f.runner.Advance(15 * time.Second)
	if !done {
		t.Fatalf("encounter never completed")
	}
	if got := projectileCount(f.world); got != 5 {
		t.Fatalf("%d projectiles, want 5 tracked shots", got)
	}
}

func TestEncounterStopTearsDown(t *testing.T) {
	f := newBossFixture(t)
	enc := NewEncounter(f.world, f.runner, f.sp, f.reg, f.cfg.Boss, nil)

	enc.StartWave2(nil)
	f.runner.Advance(4 * time.Second)

	enc.Stop()
	enc.Stop()

	if projectileCount(f.world) != 0 {
		t.Fatalf("projectiles survived Stop")
	}
	if _, ok := f.bossEntity(); ok {
		t.Fatalf("boss entity survived Stop")
	}

	// Nothing fires after teardown.
	f.runner.Advance(time.Minute)
	if projectileCount(f.world) != 0 {
		t.Fatalf("stopped encounter kept firing")
	}
}

func TestLaneAttackFiresFixedColumn(t *testing.T) {
	f := newBossFixture(t)
	ring := NewRing(f.world, 10)
	enc := NewEncounter(f.world, f.runner, f.sp, f.reg, f.cfg.Boss, ring)

	done := false
	enc.StartLaneAttack(420, func() { done = true })

	f.runner.Advance(10 * time.Second)
	if !done {
		t.Fatalf("lane attack never completed")
	}

	// All four shots aim at the lane column left of the centered boss.
	var dirs []cp.Vector
	ecs.ForEach(f.world, component.ProjectileComponent.Kind(), func(_ ecs.Entity, p *component.Projectile) {
		dirs = append(dirs, p.Dir)
	})
	if len(dirs) != 4 {
		t.Fatalf("%d projectiles, want 4 lane shots", len(dirs))
	}
	for _, d := range dirs {
		if d.X >= 0 || d.Y <= 0 {
			t.Fatalf("lane shot direction %v does not point down-left", d)
		}
	}
}
