package component

import "time"

// CameraShakeRequest asks the camera system to apply a short shake effect.
// Intensity is measured in world units. Consumed and destroyed by the camera
// system; harmless if no consumer is registered.
type CameraShakeRequest struct {
	Duration  time.Duration
	Intensity float64
}

var CameraShakeRequestComponent = NewComponent[CameraShakeRequest]()
