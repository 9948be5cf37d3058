// Package entity holds the factories for long-lived entities.
package entity

import (
	"image/color"

	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/prefabs"
)

// NewPlayer builds the player at the center of the arena floor.
func NewPlayer(w *ecs.World, spec prefabs.PlayerSpec) ecs.Entity {
	e := ecs.CreateEntity(w)
	_ = ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X: common.BaseWidth / 2,
		Y: common.GroundY - spec.Height/2,
	})
	_ = ecs.Add(w, e, component.VelocityComponent.Kind(), &component.Velocity{})
	_ = ecs.Add(w, e, component.ShapeComponent.Kind(), &component.Shape{
		Kind:  component.ShapeRect,
		W:     spec.Width,
		H:     spec.Height,
		Color: color.NRGBA{R: 0x5b, G: 0x9d, B: 0xd6, A: 0xff},
		Layer: 50,
	})
	_ = ecs.Add(w, e, component.PlayerComponent.Kind(), &component.Player{MoveSpeed: spec.MoveSpeed})
	_ = ecs.Add(w, e, component.HealthComponent.Kind(), &component.Health{Current: spec.MaxHealth, Max: spec.MaxHealth})
	_ = ecs.Add(w, e, component.PlayerTagComponent.Kind(), &component.PlayerTag{})
	return e
}
