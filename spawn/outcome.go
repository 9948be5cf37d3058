package spawn

import (
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// OutcomeSystem runs the per-frame terminal checks: player overlap for every
// armed obstacle, and ground impact for spikes. Off-screen exit is handled by
// the spawner's poll tasks. Whichever check observes its condition first wins;
// Resolve absorbs the rest.
type OutcomeSystem struct {
	sp *Spawner
}

func NewOutcomeSystem(sp *Spawner) *OutcomeSystem {
	return &OutcomeSystem{sp: sp}
}

type aabb struct {
	x, y, w, h float64
}

func overlaps(a, b aabb) bool {
	return a.x < b.x+b.w && a.x+a.w > b.x && a.y < b.y+b.h && a.y+a.h > b.y
}

func (o *OutcomeSystem) Update(w *ecs.World) {
	if o == nil || o.sp == nil {
		return
	}

	playerBox, hasPlayer := o.playerBox(w)

	ecs.ForEach3(w,
		component.ObstacleComponent.Kind(),
		component.TransformComponent.Kind(),
		component.ShapeComponent.Kind(),
		func(e ecs.Entity, obs *component.Obstacle, t *component.Transform, shape *component.Shape) {
			if obs.Outcome != component.OutcomeNone || !obs.Armed {
				return
			}

			box := aabb{x: t.X - shape.W/2, y: t.Y - shape.H/2, w: shape.W, h: shape.H}

			if hasPlayer && overlaps(box, playerBox) {
				o.sp.Resolve(e, component.OutcomePlayerHit)
				return
			}

			if isSpike(obs.Kind) && t.Y+shape.H/2 >= common.GroundY {
				o.sp.Resolve(e, component.OutcomeGroundImpact)
			}
		})
}

func (o *OutcomeSystem) playerBox(w *ecs.World) (aabb, bool) {
	e, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return aabb{}, false
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return aabb{}, false
	}
	pw := o.sp.cfg.Player.Width
	ph := o.sp.cfg.Player.Height
	return aabb{x: t.X - pw/2, y: t.Y - ph/2, w: pw, h: ph}, true
}

func isSpike(k component.ObstacleKind) bool {
	switch k {
	case component.ObstacleTargetedSpike, component.ObstacleLaneSpike, component.ObstacleShowerSpike:
		return true
	}
	return false
}
