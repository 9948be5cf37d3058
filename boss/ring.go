package boss

import (
	"image/color"
	"log"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/sched"
)

const offscreenMargin = 64.0

// Ring bounds the number of live projectiles. When a shot would exceed the
// cap, the oldest live projectile is evicted first, so the densest phases
// never accumulate an unbounded field.
type Ring struct {
	world *ecs.World
	cap   int
	order []ecs.Entity // oldest first
}

func NewRing(world *ecs.World, cap int) *Ring {
	return &Ring{world: world, cap: cap}
}

// SetCap changes the bound going forward. A tighter cap does not evict
// immediately; live projectiles drain on the next shots.
func (r *Ring) SetCap(n int) {
	r.cap = n
}

func (r *Ring) Count() int {
	n := 0
	for _, e := range r.order {
		if ecs.IsAlive(r.world, e) {
			n++
		}
	}
	return n
}

// Fire spawns one projectile from origin toward target. The direction is
// captured here; projectiles never re-aim in flight.
func (r *Ring) Fire(runner *sched.Runner, origin, target cp.Vector, speed, size float64) ecs.Entity {
	r.cull()
	for r.Count() >= r.cap {
		r.evictOldest()
	}

	dir := target.Sub(origin)
	if dir.Length() < 1e-6 {
		dir = cp.Vector{X: 0, Y: 1}
	}
	dir = dir.Normalize()

	e := ecs.CreateEntity(r.world)
	_ = ecs.Add(r.world, e, component.TransformComponent.Kind(), &component.Transform{X: origin.X, Y: origin.Y})
	_ = ecs.Add(r.world, e, component.VelocityComponent.Kind(), &component.Velocity{V: dir.Mult(speed)})
	_ = ecs.Add(r.world, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeCircle,
		W:     size,
		H:     size,
		Color: color.NRGBA{R: 0xe8, G: 0x5d, B: 0x2f, A: 0xff},
		Layer: 70,
	})
	_ = ecs.Add(r.world, e, component.ProjectileComponent.Kind(), &component.Projectile{
		Dir:   dir,
		Speed: speed,
		Born:  runner.Now(),
	})
	r.order = append(r.order, e)
	return e
}

// cull drops entries whose entity died elsewhere and removes projectiles
// that left the screen.
func (r *Ring) cull() {
	kept := r.order[:0]
	for _, e := range r.order {
		if !ecs.IsAlive(r.world, e) {
			continue
		}
		t, ok := ecs.Get(r.world, e, component.TransformComponent.Kind())
		if ok && offscreen(t) {
			ecs.DestroyEntity(r.world, e)
			continue
		}
		kept = append(kept, e)
	}
	r.order = kept
}

func (r *Ring) evictOldest() {
	for len(r.order) > 0 {
		e := r.order[0]
		r.order = r.order[1:]
		if ecs.IsAlive(r.world, e) {
			log.Printf("boss: projectile cap reached, evicting oldest")
			ecs.DestroyEntity(r.world, e)
			return
		}
	}
}

// Remove takes one projectile out of the ring, destroying its entity.
func (r *Ring) Remove(e ecs.Entity) {
	for i, o := range r.order {
		if o == e {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if ecs.IsAlive(r.world, e) {
		ecs.DestroyEntity(r.world, e)
	}
}

// Clear destroys every live projectile.
func (r *Ring) Clear() {
	for _, e := range r.order {
		if ecs.IsAlive(r.world, e) {
			ecs.DestroyEntity(r.world, e)
		}
	}
	r.order = r.order[:0]
}

func offscreen(t *component.Transform) bool {
	return t.X < -offscreenMargin || t.X > common.BaseWidth+offscreenMargin ||
		t.Y < -offscreenMargin*2 || t.Y > common.BaseHeight+offscreenMargin
}
