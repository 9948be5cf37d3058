package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
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

type Game struct {
	world   *ecs.World
	runner  *sched.Runner
	systems *ecs.Scheduler
	render  *system.RenderSystem
	shake   *system.CameraShakeSystem

	reg     *arena.Registry
	sp      *spawn.Spawner
	machine *wave.Machine
	saves   *save.Manager
	cfg     prefabs.TuningSpec

	pauseUI  *ebitenui.UI
	watcher  *prefabs.Watcher
	paused   bool
	debug    bool
	frames   int
	resolves map[component.Outcome]int
}

func NewGame(seed int64, startWave int, debug bool) *Game {
	rng := rand.New(rand.NewSource(seed))
	world := ecs.NewWorld()
	runner := sched.NewRunner()
	reg := arena.NewRegistry()
	cfg := prefabs.LoadTuning()
	saves := save.Open()

	sp := spawn.New(world, runner, reg, cfg)
	machine := wave.NewMachine(world, runner, sp, reg, rng, cfg, saves, nil)

	player := entity.NewPlayer(world, cfg.Player)

	shake := system.NewCameraShakeSystem(rng)
	g := &Game{
		world:    world,
		runner:   runner,
		render:   system.NewRenderSystem(shake),
		shake:    shake,
		reg:      reg,
		sp:       sp,
		machine:  machine,
		saves:    saves,
		cfg:      cfg,
		debug:    debug,
		resolves: make(map[component.Outcome]int),
	}
	g.systems = ecs.NewScheduler(
		system.NewPlayerControllerSystem(),
		system.NewKinematicsSystem(runner),
		spawn.NewOutcomeSystem(sp),
		boss.NewProjectileSystem(machine.Ring(), sp, cfg.Player),
		shake,
		system.NewAudioSystem(nil),
		system.NewTTLSystem(),
	)
	g.pauseUI = NewPauseUI(g)

	if startWave < 1 || startWave > 3 {
		startWave = saves.RestartWave()
	}
	g.begin(player, startWave)
	return g
}

// begin either starts the run immediately or holds for the one-shot
// movement tutorial on a fresh save.
func (g *Game) begin(player ecs.Entity, startWave int) {
	if g.saves.TutorialCompleted() {
		g.runner.After(time.Second, func() { g.machine.Start(startWave) })
		return
	}

	e := ecs.CreateEntity(g.world)
	_ = ecs.Add(g.world, e, component.FloatingTextComponent.Kind(), &component.FloatingText{Message: "MOVE WITH A / D", Frames: 1})

	g.runner.Await(100*time.Millisecond, func() bool {
		p, ok := ecs.Get(g.world, player, component.PlayerComponent.Kind())
		return ok && p.Moved
	}, func() {
		ecs.DestroyEntity(g.world, e)
		g.saves.MarkTutorialCompleted()
		g.runner.After(time.Second, func() { g.machine.Start(startWave) })
	})
}

func (g *Game) Update() error {
	g.frames++

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	g.drainReloads()

	g.runner.Advance(frameStep)
	g.systems.Update(g.world)
	g.drainEvents()

	if g.machine.Phase() == wave.PhaseGameOver && inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	return nil
}

// drainEvents empties the world event queue once per frame and keeps the
// running outcome tallies shown on the debug overlay.
func (g *Game) drainEvents() {
	for _, evt := range g.world.Events().Drain() {
		if evt.Type != spawn.EventObstacleResolved {
			continue
		}
		res := evt.Data.(spawn.ResolvedEvent)
		g.resolves[res.Outcome]++
	}
}

// WatchPrefabs points loads at an on-disk prefab directory and reloads
// tuning whenever a file there changes.
func (g *Game) WatchPrefabs(dir string) {
	prefabs.SetOverrideDir(dir)
	w, err := prefabs.NewWatcher(dir)
	if err != nil {
		log.Printf("game: prefab watch %s: %v", dir, err)
		return
	}
	g.watcher = w
}

func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	reloaded := false
	for {
		select {
		case name := <-g.watcher.Events:
			log.Printf("game: prefab changed: %s", name)
			reloaded = true
		case err := <-g.watcher.Errors:
			log.Printf("game: prefab watch: %v", err)
		default:
			if reloaded {
				g.cfg = prefabs.LoadTuning()
				g.sp.Reload(g.cfg)
			}
			return
		}
	}
}

// restart tears the world back to the persisted wave after a game over. The
// projectile ring is carried into the new machine so the scheduler's overlap
// system, which captured it at construction, keeps watching the live ring.
func (g *Game) restart() {
	log.Printf("game: restarting at wave %d", g.saves.RestartWave())
	g.runner.CancelAll()
	for _, e := range ecs.Entities(g.world) {
		ecs.DestroyEntity(g.world, e)
	}
	g.reg.Reset()
	ring := g.machine.Ring()
	ring.Clear()

	entity.NewPlayer(g.world, g.cfg.Player)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	g.machine = wave.NewMachine(g.world, g.runner, g.sp, g.reg, rng, g.cfg, g.saves, ring)
	g.machine.Start(g.saves.RestartWave())
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.render.Draw(g.world, screen)

	if g.debug {
		g.render.DrawDebug(screen, []string{
			fmt.Sprintf("fps: %.1f  frame: %d", ebiten.ActualFPS(), g.frames),
			fmt.Sprintf("clock: %s  pending: %d", g.runner.Now().Round(time.Millisecond), g.runner.Pending()),
			fmt.Sprintf("phase: %s  lives: %d  difficulty: %.1f", g.machine.Phase(), g.machine.Lives(), g.machine.Difficulty()),
			fmt.Sprintf("slots: spike=%v roller=%v weaver=%v shower=%v",
				g.reg.Occupied(arena.CategorySpike), g.reg.Occupied(arena.CategoryRoller),
				g.reg.Occupied(arena.CategoryWeaver), g.reg.Showering()),
			fmt.Sprintf("obstacles: %d  projectiles: %d", g.sp.LiveObstacles(), g.machine.Ring().Count()),
			fmt.Sprintf("resolved: ground=%d hit=%d exited=%d",
				g.resolves[component.OutcomeGroundImpact], g.resolves[component.OutcomePlayerHit],
				g.resolves[component.OutcomeExitedScreen]),
		})
	}

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}
