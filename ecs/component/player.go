package component

// Player holds movement tuning for the player entity.
type Player struct {
	MoveSpeed float64
	// Moved flips true on the first input, for the one-shot tutorial await.
	Moved bool
}

var PlayerComponent = NewComponent[Player]()
