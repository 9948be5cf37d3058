package component

// EndingRequest triggers the ending overlay after the finale boss exit.
type EndingRequest struct {
	Completions int
}

var EndingRequestComponent = NewComponent[EndingRequest]()
