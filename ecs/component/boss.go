package component

import (
	"time"

	"github.com/jakecoffman/cp"
)

type BossPhase uint8

const (
	BossEntering BossPhase = iota
	BossHovering
	BossAiming
	BossFiring
	BossExiting
	BossGone
)

func (p BossPhase) String() string {
	switch p {
	case BossEntering:
		return "entering"
	case BossHovering:
		return "hovering"
	case BossAiming:
		return "aiming"
	case BossFiring:
		return "firing"
	case BossExiting:
		return "exiting"
	}
	return "gone"
}

// Boss is the singleton encounter entity's state. Telegraph toggles the
// visual flash while aiming.
type Boss struct {
	Phase     BossPhase
	HomeY     float64
	Telegraph bool
}

var BossComponent = NewComponent[Boss]()

// Projectile moves at constant speed toward a target point captured at fire
// time; it is not homing. Born backs the staleness/off-screen cull.
type Projectile struct {
	Dir   cp.Vector // unit direction toward the captured target
	Speed float64
	Born  time.Duration
}

var ProjectileComponent = NewComponent[Projectile]()
