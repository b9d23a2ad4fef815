package graphics

import "math"

// Matrix is a 2D affine transformation stored as the top two rows of a
// 3x3 matrix:
//
//	| A  B  C |
//	| D  E  F |
//
// A point (x, y) maps to (A*x + B*y + C, D*x + E*y + F).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a translation.
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a non-uniform scale around the origin.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, E: sy}
}

// Rotate returns a rotation by angle radians. Positive angles turn
// clockwise on a y-down surface.
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{A: cos, B: -sin, D: sin, E: cos}
}

// Orthographic maps a width x height pixel space with a top-left origin to
// normalized device coordinates in [-1, 1] with y pointing up.
func Orthographic(width, height float64) Matrix {
	return Matrix{A: 2 / width, C: -1, E: -2 / height, F: 1}
}

// Multiply returns m * o: o is applied first, then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Apply transforms a point.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Matrix) ApplyVector(p Point) Point {
	return Point{X: m.A*p.X + m.B*p.Y, Y: m.D*p.X + m.E*p.Y}
}

// Determinant returns A*E - B*D.
func (m Matrix) Determinant() float64 {
	return m.A*m.E - m.B*m.D
}

// Invert returns the inverse transformation and false if m is singular.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// Float32 returns A, B, C, D, E, F as float32 for instance buffers.
func (m Matrix) Float32() [6]float32 {
	return [6]float32{
		float32(m.A), float32(m.B), float32(m.C),
		float32(m.D), float32(m.E), float32(m.F),
	}
}
