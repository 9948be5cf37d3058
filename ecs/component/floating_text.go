package component

// FloatingText shows a short message centered above the arena for Frames
// update ticks.
type FloatingText struct {
	Message string
	Frames  int
}

var FloatingTextComponent = NewComponent[FloatingText]()
