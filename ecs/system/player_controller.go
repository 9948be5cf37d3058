package system

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/spikefall/common"
	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// PlayerControllerSystem reads the horizontal axis and drives the player's
// velocity. The player is ground-bound; vertical position is pinned.
type PlayerControllerSystem struct{}

func NewPlayerControllerSystem() *PlayerControllerSystem {
	return &PlayerControllerSystem{}
}

func (p *PlayerControllerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	const stickDeadzone = 0.2

	moveX := 0.0
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		moveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		moveX += 1
	}

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(leftX) > stickDeadzone {
			moveX = leftX
		}
	}

	e, ok := ecs.First(w, component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	player, ok := ecs.Get(w, e, component.PlayerComponent.Kind())
	if !ok {
		return
	}
	v, ok := ecs.Get(w, e, component.VelocityComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok {
		return
	}

	v.V.X = moveX * player.MoveSpeed
	if moveX != 0 {
		player.Moved = true
	}

	half := 16.0
	if shape, okShape := ecs.Get(w, e, component.ShapeComponent.Kind()); okShape {
		half = shape.W / 2
	}
	t.X = common.Clamp(t.X, half, common.BaseWidth-half)
	t.Y = common.GroundY - playerFootOffset(w, e)
}

func playerFootOffset(w *ecs.World, e ecs.Entity) float64 {
	if shape, ok := ecs.Get(w, e, component.ShapeComponent.Kind()); ok {
		return shape.H / 2
	}
	return 24
}
