package boss

import (
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/prefabs"
	"github.com/milk9111/spikefall/spawn"
)

// ProjectileSystem removes projectiles that strike the player or the ground.
// Each hit costs one life regardless of how many projectiles land in the
// same frame window, since the damage path carries its own brief mercy.
type ProjectileSystem struct {
	ring *Ring
	sp   *spawn.Spawner
	cfg  prefabs.PlayerSpec
}

func NewProjectileSystem(ring *Ring, sp *spawn.Spawner, cfg prefabs.PlayerSpec) *ProjectileSystem {
	return &ProjectileSystem{ring: ring, sp: sp, cfg: cfg}
}

func (ps *ProjectileSystem) Update(w *ecs.World) {
	if ps == nil || ps.ring == nil {
		return
	}
	ps.ring.cull()

	player, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	pt, ok := ecs.Get(w, player, component.TransformComponent.Kind())
	if !ok {
		return
	}

	ecs.ForEach2(w,
		component.ProjectileComponent.Kind(),
		component.TransformComponent.Kind(),
		func(e ecs.Entity, _ *component.Projectile, t *component.Transform) {
			shape, ok := ecs.Get(w, e, component.ShapeComponent.Kind())
			if !ok {
				return
			}
			if hits(t, shape, pt, ps.cfg.Width, ps.cfg.Height) {
				ps.ring.Remove(e)
				ps.sp.DamagePlayer()
			}
		})
}

func hits(t *component.Transform, shape *component.Shape, pt *component.Transform, pw, ph float64) bool {
	return t.X-shape.W/2 < pt.X+pw/2 && t.X+shape.W/2 > pt.X-pw/2 &&
		t.Y-shape.H/2 < pt.Y+ph/2 && t.Y+shape.H/2 > pt.Y-ph/2
}
