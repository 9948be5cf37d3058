package system

import (
	"math/rand"

	"github.com/milk9111/spikefall/ecs"
	"github.com/milk9111/spikefall/ecs/component"
)

// CameraShakeSystem consumes CameraShakeRequest entities and produces a
// decaying screen-space jitter. Overlapping requests keep whichever shake is
// stronger at the moment of arrival.
type CameraShakeSystem struct {
	rng *rand.Rand

	framesLeft int
	intensity  float64
	offsetX    float64
	offsetY    float64
}

func NewCameraShakeSystem(rng *rand.Rand) *CameraShakeSystem {
	return &CameraShakeSystem{rng: rng}
}

func (c *CameraShakeSystem) Offset() (float64, float64) {
	return c.offsetX, c.offsetY
}

func (c *CameraShakeSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}

	ecs.ForEach(w, component.CameraShakeRequestComponent.Kind(), func(e ecs.Entity, req *component.CameraShakeRequest) {
		frames := int(req.Duration.Seconds() * 60)
		if frames < 1 {
			frames = 1
		}
		if req.Intensity >= c.intensity || c.framesLeft <= 0 {
			c.intensity = req.Intensity
			c.framesLeft = frames
		}
		ecs.DestroyEntity(w, e)
	})

	if c.framesLeft <= 0 {
		c.offsetX, c.offsetY = 0, 0
		c.intensity = 0
		return
	}
	c.framesLeft--

	falloff := c.intensity * (float64(c.framesLeft) / 60.0 * 4)
	if falloff > c.intensity {
		falloff = c.intensity
	}
	c.offsetX = (c.rng.Float64()*2 - 1) * falloff
	c.offsetY = (c.rng.Float64()*2 - 1) * falloff
}
