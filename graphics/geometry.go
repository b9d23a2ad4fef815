package graphics

// Point is a 2D point or vector.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Mul scales p by s.
func (p Point) Mul(s float64) Point { return Point{X: p.X * s, Y: p.Y * s} }

// Lerp interpolates between p and q. Draw code uses it with the timer
// fraction to smooth motion between two fixed updates.
func (p Point) Lerp(q Point, t float64) Point {
	return Point{X: p.X + (q.X-p.X)*t, Y: p.Y + (q.Y-p.Y)*t}
}

// Rect is an axis-aligned rectangle given by its origin and size.
type Rect struct {
	X, Y, W, H float64
}

// FullUV covers a whole texture layer in normalized coordinates.
var FullUV = Rect{W: 1, H: 1}

// R is shorthand for Rect{X: x, Y: y, W: w, H: h}.
func R(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Min returns the top-left corner.
func (r Rect) Min() Point { return Point{X: r.X, Y: r.Y} }

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return Point{X: r.X + r.W, Y: r.Y + r.H} }

// Contains reports whether p lies inside r, including the top-left edges.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X < r.X+r.W && p.Y < r.Y+r.H
}

// Normalize converts a pixel rectangle within a width x height image into
// UV space.
func (r Rect) Normalize(width, height int) Rect {
	w, h := float64(width), float64(height)
	return Rect{X: r.X / w, Y: r.Y / h, W: r.W / w, H: r.H / h}
}

// Float32 returns the rectangle as u0, v0, u1, v1.
func (r Rect) Float32() [4]float32 {
	return [4]float32{float32(r.X), float32(r.Y), float32(r.X + r.W), float32(r.Y + r.H)}
}
