package wave

import (
	"math/rand"
	"testing"
	"time"

	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/save"
	"github.com/milk9111/spikefall/spawn"
)

func newMachine(t *testing.T, f *waveFixture) (*Machine, *save.Manager) {
	t.Helper()
	saves := save.NewManager(nil)
	m := NewMachine(f.world, f.runner, f.sp, f.reg, rand.New(rand.NewSource(9)), f.cfg, saves, nil)
	return m, saves
}

func TestMachineStartEntersWave1(t *testing.T) {
	f := newWaveFixture(t)
	m, saves := newMachine(t, f)

	m.Start(1)

	if m.Phase() != PhaseWave1 {
		t.Fatalf("phase %s, want wave1Active", m.Phase())
	}
	if m.Lives() != f.cfg.Player.MaxHealth {
		t.Fatalf("lives %d, want %d", m.Lives(), f.cfg.Player.MaxHealth)
	}
	if saves.RestartWave() != 1 {
		t.Fatalf("restart wave %d, want 1", saves.RestartWave())
	}
	if m.Difficulty() != 1.0 {
		t.Fatalf("difficulty %v at start", m.Difficulty())
	}
}

func TestMachineStartClampsWave(t *testing.T) {
	f := newWaveFixture(t)
	m, _ := newMachine(t, f)

	m.Start(7)
	if m.CurrentWave() != 1 {
		t.Fatalf("out-of-range start landed on wave %d", m.CurrentWave())
	}
}

func TestMachineWave1RunsIntoEncounterThenWave2(t *testing.T) {
	f := newWaveFixture(t)
	m, saves := newMachine(t, f)

	m.Start(1)
	f.runner.Advance(60 * time.Second)

	if m.Phase() != PhaseWave1Ending {
		t.Fatalf("phase %s after 60s, want wave1Ending", m.Phase())
	}

	// Encounter script (~7.6s) plus the inter-wave delay.
	f.runner.Advance(12 * time.Second)
	if m.Phase() != PhaseWave2 {
		t.Fatalf("phase %s, want wave2Active", m.Phase())
	}
	if saves.RestartWave() != 2 {
		t.Fatalf("restart wave %d, want 2", saves.RestartWave())
	}

	h, _ := ecs.Get(f.world, f.player, component.HealthComponent.Kind())
	if h.Current != h.Max {
		t.Fatalf("health %d/%d not restored between waves", h.Current, h.Max)
	}
}

func TestMachineGraceSweepClearsStragglers(t *testing.T) {
	f := newWaveFixture(t)
	m, _ := newMachine(t, f)

	m.Start(1)
	f.runner.Advance(60 * time.Second)

	if f.sp.LiveObstacles() == 0 {
		t.Skipf("no straggler spawned by seed, nothing to sweep")
	}

	f.runner.Advance(graceDuration)
	if f.sp.LiveObstacles() != 0 {
		t.Fatalf("%d stragglers after the grace sweep", f.sp.LiveObstacles())
	}
}

func TestMachineGameOverOnThirdHit(t *testing.T) {
	f := newWaveFixture(t)
	m, saves := newMachine(t, f)

	m.Start(2)
	f.runner.Advance(time.Second)

	for i := 0; i < f.cfg.Player.MaxHealth; i++ {
		f.sp.DamagePlayer()
	}

	if m.Phase() != PhaseGameOver {
		t.Fatalf("phase %s, want gameOver", m.Phase())
	}
	if m.Active() {
		t.Fatalf("machine active after game over")
	}
	if f.runner.Pending() != 0 {
		t.Fatalf("%d tasks pending after game over", f.runner.Pending())
	}
	if f.reg.AnyOccupied() {
		t.Fatalf("locks held after game over")
	}
	if saves.RestartWave() != 2 {
		t.Fatalf("restart wave %d, want the wave the run died on", saves.RestartWave())
	}

	// Stray time passing must not revive anything.
	before := f.sp.LiveObstacles()
	f.runner.Advance(time.Minute)
	if f.sp.LiveObstacles() != before {
		t.Fatalf("spawning continued after game over")
	}
}

func TestMachineHitsBelowMaxDoNotEndRun(t *testing.T) {
	f := newWaveFixture(t)
	m, _ := newMachine(t, f)

	m.Start(1)
	f.sp.DamagePlayer()
	f.sp.DamagePlayer()

	if m.Phase() == PhaseGameOver {
		t.Fatalf("run ended with a life remaining")
	}
	if m.Lives() != f.cfg.Player.MaxHealth-2 {
		t.Fatalf("lives %d, want %d", m.Lives(), f.cfg.Player.MaxHealth-2)
	}
}

func TestMachineCompleteRecordsRun(t *testing.T) {
	f := newWaveFixture(t)
	m, saves := newMachine(t, f)

	m.Start(3)
	m.complete()

	if m.Phase() != PhaseComplete {
		t.Fatalf("phase %s, want complete", m.Phase())
	}
	if saves.CompletionCount() != 1 {
		t.Fatalf("completion count %d, want 1", saves.CompletionCount())
	}
	if saves.RestartWave() != 1 {
		t.Fatalf("restart wave %d, want reset to 1", saves.RestartWave())
	}
	if _, ok := ecs.First(f.world, component.EndingRequestComponent.Kind()); !ok {
		t.Fatalf("no ending request emitted")
	}
}

func TestPhaseStrings(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseWave1, "wave1Active"},
		{PhaseInterWave, "interWave"},
		{PhaseWave3Ending, "wave3Ending"},
		{PhaseComplete, "complete"},
		{PhaseGameOver, "gameOver"},
	}
	for _, c := range cases {
		if got := c.phase.String(); got != c.want {
			t.Fatalf("%d.String() = %q, want %q", c.phase, got, c.want)
		}
	}
}

func TestMachineReusesProvidedRing(t *testing.T) {
	f := newWaveFixture(t)
	m1, _ := newMachine(t, f)
	if m1.Ring() == nil {
		t.Fatalf("no ring built for a nil argument")
	}

	saves := save.NewManager(nil)
	m2 := NewMachine(f.world, f.runner, f.sp, f.reg, rand.New(rand.NewSource(10)), f.cfg, saves, m1.Ring())
	if m2.Ring() != m1.Ring() {
		t.Fatalf("machine replaced the ring it was given")
	}
}

func TestGraceSweepOutcomeFollowsKind(t *testing.T) {
	f := newWaveFixture(t)
	m, _ := newMachine(t, f)

	if _, ok := f.sp.SpawnTargetedSpike(1); !ok {
		t.Fatalf("spike spawn failed")
	}
	if _, ok := f.sp.SpawnRoller(1); !ok {
		t.Fatalf("roller spawn failed")
	}
	f.world.Events().Drain()

	m.scheduleSweep()
	f.runner.Advance(graceDuration)

	got := map[component.ObstacleKind]component.Outcome{}
	for _, evt := range f.world.Events().Drain() {
		if evt.Type != spawn.EventObstacleResolved {
			continue
		}
		res := evt.Data.(spawn.ResolvedEvent)
		got[res.Kind] = res.Outcome
	}

	if got[component.ObstacleTargetedSpike] != component.OutcomeGroundImpact {
		t.Fatalf("swept spike resolved as %s, want ground impact", got[component.ObstacleTargetedSpike])
	}
	if got[component.ObstacleRoller] != component.OutcomeExitedScreen {
		t.Fatalf("swept roller resolved as %s, want exited screen", got[component.ObstacleRoller])
	}
}
