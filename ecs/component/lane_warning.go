package component

// LaneWarning marks a telegraphed column on the floor while an incoming
// spike is still unarmed.
type LaneWarning struct {
	X      float64
	Frames int
}

var LaneWarningComponent = NewComponent[LaneWarning]()
