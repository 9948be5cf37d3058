package system

import (
	"math"

	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
	"github.com/milk9111/spikefall/sched"
)

const frameDT = 1.0 / 60.0

// KinematicsSystem integrates acceleration into velocity and velocity into
// position at a fixed 60Hz step. Armed weavers additionally override their X
// with a sine sweep around the column captured at spawn, so horizontal
// motion stays phase-locked to the scheduler clock rather than accumulating
// integration drift.
type KinematicsSystem struct {
	runner *sched.Runner
}

func NewKinematicsSystem(runner *sched.Runner) *KinematicsSystem {
	return &KinematicsSystem{runner: runner}
}

func (k *KinematicsSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach2(w, component.VelocityComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, v *component.Velocity, t *component.Transform) {
			v.V = v.V.Add(v.Accel.Mult(frameDT))
			t.X += v.V.X * frameDT
			t.Y += v.V.Y * frameDT
		})

	if k.runner == nil {
		return
	}
	now := k.runner.Now()
	ecs.ForEach2(w, component.ObstacleComponent.Kind(), component.TransformComponent.Kind(),
		func(e ecs.Entity, obs *component.Obstacle, t *component.Transform) {
			if obs.Kind != component.ObstacleWeaver || !obs.Armed || obs.WeaveAmplitude == 0 {
				return
			}
			age := (now - obs.Born).Seconds()
			t.X = obs.WeaveCenterX + obs.WeaveAmplitude*math.Sin(obs.WeaveFreq*age)
		})
}
