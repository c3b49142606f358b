package geom

import "math"

// ClipCloser keeps the part of poly that is at least as close to a as to b,
// i.e. clips by the perpendicular bisector of a and b (Sutherland-Hodgman).
func ClipCloser(poly Polygon, a, b Point) Polygon {
	if len(poly) == 0 {
		return nil
	}
	n := b.Sub(a)
	c := (b.Dot(b) - a.Dot(a)) / 2
	side := func(p Point) float64 { return p.Dot(n) - c }

	out := make(Polygon, 0, len(poly)+1)
	prev := poly[len(poly)-1]
	prevSide := side(prev)
	for _, cur := range poly {
		curSide := side(cur)
		if curSide <= 0 {
			if prevSide > 0 {
				out = append(out, intersect(prev, cur, prevSide, curSide))
			}
			out = append(out, cur)
		} else if prevSide <= 0 {
			out = append(out, intersect(prev, cur, prevSide, curSide))
		}
		prev, prevSide = cur, curSide
	}
	return dedupe(out)
}

func intersect(p, q Point, sp, sq float64) Point {
	t := sp / (sp - sq)
	return p.Add(q.Sub(p).Mul(t))
}

// dedupe drops consecutive vertices that coincide, including the wrap-around pair.
func dedupe(poly Polygon) Polygon {
	const eps = 1e-9
	out := poly[:0]
	for _, p := range poly {
		if len(out) > 0 && DistSq(out[len(out)-1], p) < eps*eps {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && DistSq(out[0], out[len(out)-1]) < eps*eps {
		out = out[:len(out)-1]
	}
	return out
}

// ClipSegment clips the segment p0-p1 to a convex polygon (Cyrus-Beck).
// ok is false when no part of the segment lies inside.
func ClipSegment(p0, p1 Point, poly Polygon) (a, b Point, ok bool) {
	if len(poly) < 3 {
		return a, b, false
	}
	orient := 1.0
	if SignedArea(poly) < 0 {
		orient = -1
	}
	d := p1.Sub(p0)
	tIn, tOut := 0.0, 1.0
	for i := range poly {
		v0 := poly[i]
		v1 := poly[(i+1)%len(poly)]
		e := v1.Sub(v0)
		// Inward normal for the polygon's winding.
		normal := Pt(-e.Y(), e.X()).Mul(orient)
		num := p0.Sub(v0).Dot(normal)
		den := d.Dot(normal)
		if math.Abs(den) < 1e-12 {
			if num < 0 {
				return a, b, false
			}
			continue
		}
		t := -num / den
		if den > 0 {
			tIn = math.Max(tIn, t)
		} else {
			tOut = math.Min(tOut, t)
		}
		if tIn > tOut {
			return a, b, false
		}
	}
	return p0.Add(d.Mul(tIn)), p0.Add(d.Mul(tOut)), true
}
