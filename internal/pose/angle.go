package pose

import "math"

// Point is a 2D position in normalized image coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Angle returns the interior angle at vertex b formed by the rays b→a and
// b→c, in degrees within [0, 180]. Argument order of a and c does not matter.
// If a or c coincides with b the angle is undefined and 0 is returned.
func Angle(a, b, c Point) float64 {
	if a == b || c == b {
		return 0
	}
	rad := math.Atan2(c.Y-b.Y, c.X-b.X) - math.Atan2(a.Y-b.Y, a.X-b.X)
	deg := math.Abs(rad * 180.0 / math.Pi)
	if deg > 180.0 {
		deg = 360.0 - deg
	}
	return deg
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
