package layout

import (
	"fmt"
	"math"
)

// Point is a position (or a displacement) on the integer grid the layout is drawn on.
type Point struct {
	X int64
	Y int64
}

func Pt(x, y int64) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

func (p Point) Negate() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Normalise returns the sign of each component, so an axis-aligned vector becomes a unit vector.
func (p Point) Normalise() Point {
	return Point{X: sign(p.X), Y: sign(p.Y)}
}

// VectorTo returns the displacement from p to q.
func (p Point) VectorTo(q Point) Point {
	return Point{X: q.X - p.X, Y: q.Y - p.Y}
}

// DistanceTo returns the Euclidean distance to q, rounded down.
func (p Point) DistanceTo(q Point) int64 {
	return int64(math.Hypot(float64(abs(p.X-q.X)), float64(abs(p.Y-q.Y))))
}

func (p Point) IsZero() bool {
	return p == Point{}
}

// AxisAligned is true if p has at most one non-zero component.
func (p Point) AxisAligned() bool {
	return p.X == 0 || p.Y == 0
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

func sign(v int64) int64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func between(v, a, b int64) bool {
	if a > b {
		a, b = b, a
	}
	return a <= v && v <= b
}
