package component

// SoundRequest asks the audio system to play a named effect once. Dropped
// silently when audio is unavailable; the core never depends on it.
type SoundRequest struct {
	Name string
}

var SoundRequestComponent = NewComponent[SoundRequest]()
