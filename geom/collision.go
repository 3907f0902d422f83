package geom

import "math"

// Hit describes where a segment first crosses a shape boundary.
type Hit struct {
	Point  Vec
	Normal Vec     // unit, pointing out of the shape
	T      float64 // parameter along the segment, 0 at Start
}

// CircleRectOverlap returns the displacement that moves c out of r so that
// it just touches the boundary.
func CircleRectOverlap(c Circle, r Rect) (Vec, bool) {
	min, max := r.Min(), r.Max()

	if r.Contains(c.Pos) {
		// Push out through the nearest edge.
		dl := c.Pos.X - min.X
		dr := max.X - c.Pos.X
		db := c.Pos.Y - min.Y
		dt := max.Y - c.Pos.Y
		best, push := dl, Vec{-(dl + c.Radius), 0}
		if dr < best {
			best, push = dr, Vec{dr + c.Radius, 0}
		}
		if db < best {
			best, push = db, Vec{0, -(db + c.Radius)}
		}
		if dt < best {
			push = Vec{0, dt + c.Radius}
		}
		return push, true
	}

	closest := Vec{Clamp(c.Pos.X, min.X, max.X), Clamp(c.Pos.Y, min.Y, max.Y)}
	sep := c.Pos.Sub(closest)
	dist := sep.Length()
	if dist >= c.Radius {
		return Vec{}, false
	}
	if dist < Epsilon {
		// Centre sits on the boundary; push away from the midpoint.
		away := c.Pos.Sub(r.Center()).Normalize()
		if away == (Vec{}) {
			away = Vec{0, 1}
		}
		return away.Scale(c.Radius), true
	}
	return sep.Scale((c.Radius - dist) / dist), true
}

// edgeNormal returns the outward unit normal of edge a->b of a
// counter-clockwise polygon, or ok=false for a degenerate edge.
func edgeNormal(a, b Vec) (Vec, bool) {
	e := b.Sub(a)
	if e.Length() < Epsilon {
		return Vec{}, false
	}
	return Vec{e.Y, -e.X}.Normalize(), true
}

// ccw reorders a triangle counter-clockwise.
func ccw(t0, t1, t2 Vec) (Vec, Vec, Vec) {
	if t1.Sub(t0).Cross(t2.Sub(t0)) < 0 {
		return t0, t2, t1
	}
	return t0, t1, t2
}

// CircleTriangleOverlap returns the displacement that moves c out of the
// triangle t0,t1,t2. The centre is classified against each edge's half-plane:
// outside one edge resolves against that edge, outside two resolves against
// their shared vertex, and an interior centre leaves through the nearest edge.
func CircleTriangleOverlap(c Circle, t0, t1, t2 Vec) (Vec, bool) {
	t0, t1, t2 = ccw(t0, t1, t2)
	verts := [3]Vec{t0, t1, t2}

	var (
		normals [3]Vec
		dists   [3]float64
		valid   [3]bool
		outside []int
	)
	nearest := -1
	for i := 0; i < 3; i++ {
		a, b := verts[i], verts[(i+1)%3]
		n, ok := edgeNormal(a, b)
		if !ok {
			continue
		}
		d := c.Pos.Sub(a).Dot(n)
		if d >= c.Radius {
			// Separating axis.
			return Vec{}, false
		}
		normals[i], dists[i], valid[i] = n, d, true
		if d > -Epsilon {
			outside = append(outside, i)
		}
		if nearest < 0 || d > dists[nearest] {
			nearest = i
		}
	}
	if nearest < 0 {
		return Vec{}, false
	}

	switch len(outside) {
	case 0:
		n := normals[nearest]
		return n.Scale(c.Radius - dists[nearest]), true
	case 1:
		i := outside[0]
		p := ClosestPoint(verts[i], verts[(i+1)%3], c.Pos)
		return pushFrom(c, p, normals[i])
	default:
		i, j := outside[0], outside[1]
		if len(outside) == 2 && j-i == 2 {
			// Edges 0 and 2 share vertex 0, so walk them in edge order.
			i, j = j, i
		}
		shared := verts[j]
		p := shared
		best := c.Pos.DistanceTo(shared)
		for _, k := range outside {
			q := ClosestPoint(verts[k], verts[(k+1)%3], c.Pos)
			if d := c.Pos.DistanceTo(q); d < best-Epsilon {
				p, best = q, d
			}
		}
		bisector := normals[i].Add(normals[j]).Normalize()
		if bisector == (Vec{}) {
			bisector = normals[i]
		}
		return pushFrom(c, p, bisector)
	}
}

// pushFrom moves c away from boundary point p until it just touches p,
// falling back to dir when the centre coincides with p.
func pushFrom(c Circle, p, dir Vec) (Vec, bool) {
	sep := c.Pos.Sub(p)
	dist := sep.Length()
	if dist >= c.Radius {
		return Vec{}, false
	}
	if dist < Epsilon {
		return dir.Scale(c.Radius), true
	}
	return sep.Scale((c.Radius - dist) / dist), true
}

// nearestCrossing intersects l with each edge of a closed polygon and returns
// the crossing closest to l.Start.
func nearestCrossing(l Line, verts []Vec) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for i := range verts {
		a, b := verts[i], verts[(i+1)%len(verts)]
		n, ok := edgeNormal(a, b)
		if !ok {
			continue
		}
		t, _, ok := Intersect(l, Line{a, b})
		if !ok {
			continue
		}
		if !found || t < best.T {
			best = Hit{Point: l.At(t), Normal: n, T: t}
			found = true
		}
	}
	return best, found
}

// backUp extends a segment whose start lies inside a shape backwards by
// reach so that the entry crossing can be found. The returned hit parameter
// is rescaled onto the original segment and clamped at 0.
func backUp(l Line, reach float64, verts []Vec) (Hit, bool) {
	dir := l.Dir().Normalize()
	length := l.Length()
	if dir == (Vec{}) {
		return Hit{}, false
	}
	ext := Line{l.Start.Sub(dir.Scale(reach)), l.End}
	hit, ok := nearestCrossing(ext, verts)
	if !ok {
		return Hit{}, false
	}
	along := hit.Point.Sub(l.Start).Dot(dir)
	hit.T = Clamp(along/length, 0, 1)
	return hit, true
}

func rectVerts(r Rect) []Vec {
	min, max := r.Min(), r.Max()
	return []Vec{min, {max.X, min.Y}, max, {min.X, max.Y}}
}

// SegmentRectHit returns the boundary crossing of r nearest to l.Start.
// A segment starting inside r reports the point where it entered.
func SegmentRectHit(l Line, r Rect) (Hit, bool) {
	verts := rectVerts(r)
	if r.Contains(l.Start) {
		return backUp(l, r.Size.X+r.Size.Y, verts)
	}
	return nearestCrossing(l, verts)
}

// SegmentTriangleHit returns the boundary crossing of triangle t0,t1,t2
// nearest to l.Start.
func SegmentTriangleHit(l Line, t0, t1, t2 Vec) (Hit, bool) {
	t0, t1, t2 = ccw(t0, t1, t2)
	verts := []Vec{t0, t1, t2}
	if strictlyInside(l.Start, t0, t1, t2) {
		reach := t0.DistanceTo(t1) + t1.DistanceTo(t2) + t2.DistanceTo(t0)
		return backUp(l, reach, verts)
	}
	return nearestCrossing(l, verts)
}

func strictlyInside(p, t0, t1, t2 Vec) bool {
	return t1.Sub(t0).Cross(p.Sub(t0)) > Epsilon &&
		t2.Sub(t1).Cross(p.Sub(t1)) > Epsilon &&
		t0.Sub(t2).Cross(p.Sub(t2)) > Epsilon
}

// SegmentCircleHit returns the point where l first enters c. Segments that
// start inside the circle or stop short of it do not hit.
func SegmentCircleHit(l Line, c Circle) (Hit, bool) {
	d := l.Dir()
	f := l.Start.Sub(c.Pos)
	a := d.Dot(d)
	if !(a >= Epsilon) {
		return Hit{}, false
	}
	b := 2 * f.Dot(d)
	cc := f.Dot(f) - c.Radius*c.Radius
	discriminant := b*b - 4*a*cc
	if !(discriminant >= 0) {
		return Hit{}, false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	if !(t1 >= 0 && t1 <= 1) {
		return Hit{}, false
	}
	p := l.At(t1)
	n := p.Sub(c.Pos).Normalize()
	if n == (Vec{}) {
		n = d.Normalize().Scale(-1)
	}
	return Hit{Point: p, Normal: n, T: t1}, true
}
