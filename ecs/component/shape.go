package component

import "image/color"

type ShapeKind uint8

const (
	ShapeRect ShapeKind = iota
	ShapeCircle
	ShapeSpike // downward triangle
)

// Shape is procedural render data; all sprites are drawn with ebiten/vector.
// Width/Height double as the overlap bounds for hazard checks, centered on
// the transform.
type Shape struct {
	Kind   ShapeKind
	W      float64
	H      float64
	Color  color.NRGBA
	Layer  int
	Hidden bool
}

var ShapeComponent = NewComponent[Shape]()
