package component

import (
	"time"

	"github.com/milk9111/spikefall/arena"
)

type ObstacleKind uint8

const (
	ObstacleTargetedSpike ObstacleKind = iota
	ObstacleLaneSpike
	ObstacleShowerSpike
	ObstacleRoller
	ObstacleWeaver
)

func (k ObstacleKind) String() string {
	switch k {
	case ObstacleTargetedSpike:
		return "targeted_spike"
	case ObstacleLaneSpike:
		return "lane_spike"
	case ObstacleShowerSpike:
		return "shower_spike"
	case ObstacleRoller:
		return "roller"
	case ObstacleWeaver:
		return "weaver"
	}
	return "unknown"
}

// Outcome is an obstacle's terminal event. Exactly one fires per obstacle;
// whichever is recorded first wins and later signals are absorbed.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeGroundImpact
	OutcomePlayerHit
	OutcomeExitedScreen
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGroundImpact:
		return "ground_impact"
	case OutcomePlayerHit:
		return "player_hit"
	case OutcomeExitedScreen:
		return "exited_screen"
	}
	return "none"
}

// Obstacle carries the lifecycle state of one hazard. Token is the arena slot
// acquisition backing this instance; zero for shower spikes, which live
// outside the single-slot model.
type Obstacle struct {
	Kind     ObstacleKind
	Category arena.Category
	Token    arena.Token

	// Armed is false during the warning telegraph and true once lethal.
	Armed   bool
	Outcome Outcome

	Born time.Duration // runner clock at spawn

	// Weaver oscillation parameters; X = CenterX + Amplitude*sin(Freq*elapsed).
	WeaveCenterX   float64
	WeaveAmplitude float64
	WeaveFreq      float64
}

var ObstacleComponent = NewComponent[Obstacle]()
