package geom

import "math"

// Epsilon guards every division and degenerate-length check in this package.
const Epsilon = 1e-6

// Vec is a 2D vector. Y points up.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{x, y}
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

func (v Vec) Scale(s float64) Vec {
	return Vec{v.X * s, v.Y * s}
}

func (v Vec) Dot(o Vec) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross returns the z component of the 3D cross product
func (v Vec) Cross(o Vec) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceTo returns the distance between two points
func (v Vec) DistanceTo(o Vec) float64 {
	return o.Sub(v).Length()
}

// Normalize returns the unit vector of v, or the zero vector when v is shorter than Epsilon.
func (v Vec) Normalize() Vec {
	l := v.Length()
	if l < Epsilon {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// ClampLength shortens v to max if it is longer
func (v Vec) ClampLength(max float64) Vec {
	l := v.Length()
	if l <= max || l < Epsilon {
		return v
	}
	return v.Scale(max / l)
}

// Reflect mirrors direction d about a unit normal n: d - 2(d·n)n.
func Reflect(d, n Vec) Vec {
	return d.Sub(n.Scale(2 * d.Dot(n)))
}

// FromAngle returns the unit vector pointing at angle radians
func FromAngle(angle float64) Vec {
	return Vec{math.Cos(angle), math.Sin(angle)}
}

// Angle returns the direction of v in radians
func (v Vec) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Lerp interpolates between a and b
func Lerp(a, b Vec, t float64) Vec {
	return a.Add(b.Sub(a).Scale(t))
}

// ApproxEqual reports whether both components differ by at most tol
func (v Vec) ApproxEqual(o Vec, tol float64) bool {
	return math.Abs(v.X-o.X) <= tol && math.Abs(v.Y-o.Y) <= tol
}

// Rect is an axis-aligned rectangle anchored at its bottom-left corner.
type Rect struct {
	Pos  Vec
	Size Vec
}

func (r Rect) Min() Vec { return r.Pos }
func (r Rect) Max() Vec { return r.Pos.Add(r.Size) }

func (r Rect) Center() Vec {
	return r.Pos.Add(r.Size.Scale(0.5))
}

// Contains reports whether p lies strictly inside r
func (r Rect) Contains(p Vec) bool {
	max := r.Max()
	return p.X > r.Pos.X && p.X < max.X && p.Y > r.Pos.Y && p.Y < max.Y
}

// Circle is a circle with a centre and radius
type Circle struct {
	Pos    Vec
	Radius float64
}

// Line is a directed segment from Start to End
type Line struct {
	Start, End Vec
}

func (l Line) Dir() Vec {
	return l.End.Sub(l.Start)
}

func (l Line) Length() float64 {
	return l.Dir().Length()
}

// At returns the point at parameter t along the segment
func (l Line) At(t float64) Vec {
	return l.Start.Add(l.Dir().Scale(t))
}

// ClosestPoint returns the point on segment ab nearest to p.
func ClosestPoint(a, b, p Vec) Vec {
	ab := b.Sub(a)
	denom := ab.LengthSq()
	if denom < Epsilon*Epsilon {
		return a
	}
	t := Clamp(p.Sub(a).Dot(ab)/denom, 0, 1)
	return a.Add(ab.Scale(t))
}

// Intersect returns the parameters t (along a) and u (along b) where the two
// segments cross. Parallel and collinear segments report no intersection.
func Intersect(a, b Line) (t, u float64, ok bool) {
	r := a.Dir()
	s := b.Dir()
	denom := r.Cross(s)
	if math.Abs(denom) < Epsilon {
		return 0, 0, false
	}
	qp := b.Start.Sub(a.Start)
	t = qp.Cross(s) / denom
	u = qp.Cross(r) / denom
	// Written so that NaN parameters fail the range check.
	if !(t >= 0 && t <= 1 && u >= 0 && u <= 1) {
		return 0, 0, false
	}
	return t, u, true
}
