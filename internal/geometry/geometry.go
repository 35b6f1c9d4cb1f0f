package geometry

import "math"

// Tolerance used for approximate float comparisons
const Tolerance = 0.0001

// Position is a point on the pitch, in metres
type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Vector is a displacement or direction, in metres
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// DistanceTo returns the straight-line distance to other
func (p Position) DistanceTo(other Position) float64 {
	return p.VectorTo(other).Length()
}

// VectorTo returns the vector from p to other
func (p Position) VectorTo(other Position) Vector {
	return Vector{X: other.X - p.X, Y: other.Y - p.Y}
}

// Add returns p translated by v
func (p Position) Add(v Vector) Position {
	return Position{X: p.X + v.X, Y: p.Y + v.Y}
}

// ApproxEqual reports whether both coordinates are within Tolerance
func (p Position) ApproxEqual(other Position) bool {
	return ApproxEqual(p.X, other.X) && ApproxEqual(p.Y, other.Y)
}

// Length returns the magnitude of v
func (v Vector) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// Scale returns v multiplied by f
func (v Vector) Scale(f float64) Vector {
	return Vector{X: v.X * f, Y: v.Y * f}
}

// ApproxEqual reports whether a and b differ by less than Tolerance
func ApproxEqual(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// NormaliseDirection wraps a direction in degrees into [0, 360)
func NormaliseDirection(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	if d >= 360.0 {
		d = 0
	}
	return d
}

// AngleDelta returns the signed shortest rotation from one direction to
// another, in (-180, 180]. Positive is clockwise.
func AngleDelta(from, to float64) float64 {
	delta := to - from
	if delta > 180.0 {
		delta -= 360.0
	}
	if delta <= -180.0 {
		delta += 360.0
	}
	return delta
}

// AnglesApproxEqual compares two directions, taking the 0/360 wrap into account
func AnglesApproxEqual(a, b float64) bool {
	return math.Abs(AngleDelta(NormaliseDirection(a), NormaliseDirection(b))) < Tolerance
}

// AngleBetween returns the direction in degrees from one position to another.
//
// Directions are measured clockwise from "up" the pitch (towards -y), so 0 is
// up, 90 is towards +x, 180 is towards +y and 270 is towards -x.
func AngleBetween(from, to Position) float64 {
	v := from.VectorTo(to)
	radians := math.Atan2(v.X, -v.Y)
	return NormaliseDirection(radians * 180.0 / math.Pi)
}

// VectorFromDirection returns the unit vector pointing in the given direction
func VectorFromDirection(direction float64) Vector {
	radians := direction * math.Pi / 180.0
	return Vector{X: math.Sin(radians), Y: -math.Cos(radians)}
}
