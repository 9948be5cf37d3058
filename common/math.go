package common

const (
	BaseWidth  = 1280
	BaseHeight = 720

	// GroundY is the top of the floor in world units. Spikes resolve with a
	// ground impact when their tip reaches this line.
	GroundY = 650.0

	// LaneLeftX and LaneRightX are the two fixed lane columns used by lane
	// spikes, showers, and boss lane attacks.
	LaneLeftX  = 420.0
	LaneRightX = 860.0
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
