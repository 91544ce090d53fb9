package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the tolerance used for float64 comparisons and for deciding
// when a vector is too short to carry a direction.
const (
	Epsilon = 1e-9
)

// Vector2D represents a 2D vector or point in world space.
// Fields are public because they are plain data: v := Vector2D{X: 1, Y: 2}
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero is the null vector.
var Zero = Vector2D{}

// FromAngle returns the unit vector pointing at theta radians from the X-axis.
func FromAngle(theta float64) Vector2D {
	sin, cos := math.Sincos(theta)
	return Vector2D{X: cos, Y: sin}
}

// String implements the fmt.Stringer interface.
func (v Vector2D) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y)
}

// ---------------------------------------------------------------------
// Arithmetic
// Value receivers, new values returned: vectors are small and immutable.
// ---------------------------------------------------------------------

// Add adds two vectors.
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts other from v.
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{v.X - other.X, v.Y - other.Y}
}

// Mul scales the vector by a scalar value.
func (v Vector2D) Mul(scalar float64) Vector2D {
	return Vector2D{v.X * scalar, v.Y * scalar}
}

// Div scales the vector by 1/scalar. Dividing by zero yields the zero vector,
// so an empty average never turns into Inf or NaN.
func (v Vector2D) Div(scalar float64) Vector2D {
	if scalar == 0 {
		return Zero
	}
	return Vector2D{v.X / scalar, v.Y / scalar}
}

// Dot calculates the dot product of two vectors.
func (v Vector2D) Dot(other Vector2D) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Cross calculates the 2D scalar cross product (z-component of the 3D cross product).
// Positive when other lies counter-clockwise from v.
func (v Vector2D) Cross(other Vector2D) float64 {
	return v.X*other.Y - v.Y*other.X
}

// ---------------------------------------------------------------------
// Magnitude and Normalization
// ---------------------------------------------------------------------

// LenSqr calculates the squared magnitude of the vector. Use it for comparisons.
func (v Vector2D) LenSqr() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Len calculates the magnitude (length) of the vector.
func (v Vector2D) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns a unit vector in the same direction.
// Returns the zero vector if the length is effectively zero or not finite.
func (v Vector2D) Normalize() Vector2D {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) || math.IsInf(l, 0) {
		return Zero
	}
	return Vector2D{v.X / l, v.Y / l}
}

// IsZero reports whether the vector is too short to carry a direction.
func (v Vector2D) IsZero() bool {
	return v.LenSqr() < Epsilon*Epsilon
}

// IsNaN reports whether any component is NaN.
func (v Vector2D) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y)
}

// ---------------------------------------------------------------------
// Angles and rotation
// ---------------------------------------------------------------------

// Angle returns the heading of the vector relative to the X-axis, in [-Pi, Pi].
func (v Vector2D) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// SignedAngleTo returns the signed rotation (radians, in [-Pi, Pi]) that
// brings the direction of v onto the direction of other.
// atan2(cross, dot) stays accurate when the vectors are almost aligned.
func (v Vector2D) SignedAngleTo(other Vector2D) float64 {
	return math.Atan2(v.Cross(other), v.Dot(other))
}

// Rotate rotates the vector by angle (in radians) around the origin.
func (v Vector2D) Rotate(angle float64) Vector2D {
	sinTheta, cosTheta := math.Sincos(angle)
	return Vector2D{
		X: v.X*cosTheta - v.Y*sinTheta,
		Y: v.X*sinTheta + v.Y*cosTheta,
	}
}

// Perp returns v rotated a quarter turn counter-clockwise.
func (v Vector2D) Perp() Vector2D {
	return Vector2D{-v.Y, v.X}
}

// ---------------------------------------------------------------------
// Geometric Utilities
// ---------------------------------------------------------------------

// DistanceTo calculates the Euclidean distance to another point.
func (v Vector2D) DistanceTo(other Vector2D) float64 {
	return v.Sub(other).Len()
}

// DistanceSquaredTo calculates the squared Euclidean distance to another point.
func (v Vector2D) DistanceSquaredTo(other Vector2D) float64 {
	return v.Sub(other).LenSqr()
}

// Eq checks if two vectors are approximately equal using Epsilon.
func (v Vector2D) Eq(other Vector2D) bool {
	return math.Abs(v.X-other.X) <= Epsilon && math.Abs(v.Y-other.Y) <= Epsilon
}
