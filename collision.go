package main

import "math"

// epsilon guards distance/seek math against division by zero
const epsilon = 1e-6

// Rect is an axis-aligned rectangle in world space
type Rect struct {
	X, Y, W, H float64
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.W }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether two rectangles overlap
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() <= o.Left() || r.Left() >= o.Right() ||
		r.Bottom() <= o.Top() || r.Top() >= o.Bottom())
}

// Contains reports whether the point lies inside the rectangle
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// SegPointDist returns the distance from point (px,py) to the
// segment (ax,ay)-(bx,by). Degenerate segments resolve to the
// distance to the endpoint.
func SegPointDist(ax, ay, bx, by, px, py float64) float64 {
	abx := bx - ax
	aby := by - ay
	apx := px - ax
	apy := py - ay
	ab2 := abx*abx + aby*aby + epsilon
	t := Clamp((apx*abx+apy*aby)/ab2, 0, 1)
	cx := ax + abx*t
	cy := ay + aby*t
	return math.Hypot(px-cx, py-cy)
}

// Normalize returns the unit vector for (dx,dy), or a neutral
// rightward direction when the input is degenerate.
func Normalize(dx, dy float64) (float64, float64) {
	l := math.Hypot(dx, dy)
	if l < epsilon {
		return 1, 0
	}
	return dx / l, dy / l
}
