package component

import "github.com/jakecoffman/cp"

// Velocity is integrated into Transform each frame, in world units per
// second. Accel is applied to V first (spike gravity after arming).
type Velocity struct {
	V     cp.Vector
	Accel cp.Vector
}

var VelocityComponent = NewComponent[Velocity]()
