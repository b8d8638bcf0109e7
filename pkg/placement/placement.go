package placement

import "math"

// Center returns the geometric center of the container.
func Center(b Bounds) Point {
	return Point{X: b.Width / 2, Y: b.Height / 2}
}

// Collides reports whether a and b come within gap of each other.
// They do not collide when a single separating condition holds along
// either axis, with separation strictly greater than gap.
func Collides(a, b Rect, gap float64) bool {
	return !(a.X+a.Width+gap < b.X ||
		a.X > b.X+b.Width+gap ||
		a.Y+a.Height+gap < b.Y ||
		a.Y > b.Y+b.Height+gap)
}

// WithinBoundary reports whether box lies inside the container shrunk by
// padding on all four sides. Touching the inset edge counts as inside.
func WithinBoundary(box Rect, b Bounds, padding float64) bool {
	return box.X >= padding &&
		box.Y >= padding &&
		box.X+box.Width <= b.Width-padding &&
		box.Y+box.Height <= b.Height-padding
}

// Result describes the outcome of a position search.
type Result struct {
	// Point is the card center to draw at.
	Point Point
	// Rect is the card rectangle centered on Point.
	Rect Rect
	// Attempts is the number of candidates tested, at most MaxAttempts.
	Attempts int
	// Exhausted is true when no candidate passed and Point is the fallback.
	// The card may then overlap an obstacle or leave the boundary.
	Exhausted bool
}

// FindPosition returns the center point for card number index of total.
// It never fails. See [Search] for the outcome details.
func FindPosition(index, total int, b Bounds, obstacles []Rect, card Size, cfg Config) Point {
	return Search(index, total, b, obstacles, card, cfg).Point
}

// Search runs the spiral search for card number index of total and reports
// the chosen point together with how it was found.
//
// A total below 1 is treated as 1 and a MaxAttempts below 1 as 1, so at
// least one candidate is always produced. The search is deterministic.
func Search(index, total int, b Bounds, obstacles []Rect, card Size, cfg Config) Result {
	if total < 1 {
		total = 1
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	c := Center(b)
	radius := cfg.InitialRadius
	angle := float64(index) / float64(total) * 2 * math.Pi

	var res Result
	for res.Attempts < maxAttempts {
		res.Point = Point{
			X: c.X + math.Cos(angle)*radius,
			Y: c.Y + math.Sin(angle)*radius,
		}
		res.Rect = RectAt(res.Point, card)
		res.Attempts++

		if !collidesAny(res.Rect, obstacles, cfg.MinGap) && WithinBoundary(res.Rect, b, cfg.BoundaryPadding) {
			return res
		}

		radius += cfg.RadiusStep
		angle += cfg.AngleStep
	}

	res.Exhausted = true
	return res
}

func collidesAny(r Rect, obstacles []Rect, gap float64) bool {
	for _, o := range obstacles {
		if Collides(r, o, gap) {
			return true
		}
	}
	return false
}
