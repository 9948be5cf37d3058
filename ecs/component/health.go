package component

// Health is the player's life counter.
type Health struct {
	Current int
	Max     int
}

var HealthComponent = NewComponent[Health]()
