package geom

import (
	"math"
	"sort"
)

// Triangle holds three site indices in counter-clockwise order.
type Triangle [3]int

// Triangulation is a Delaunay triangulation over a site list.
type Triangulation struct {
	Points    []Point
	Triangles []Triangle
	// Neighbors[i] lists the sites sharing a Delaunay edge with site i, ascending.
	Neighbors [][]int
	// Duplicate marks sites that coincide with an earlier site; they take no part.
	Duplicate []bool
}

type edgeKey struct{ a, b int }

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// Triangulate builds the Delaunay triangulation with Bowyer-Watson insertion
// inside a super-triangle. Insertion order follows site order, so the result is
// deterministic for a given input.
func Triangulate(points []Point) *Triangulation {
	n := len(points)
	t := &Triangulation{
		Points:    points,
		Neighbors: make([][]int, n),
		Duplicate: make([]bool, n),
	}
	if n == 0 {
		return t
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
	}
	deltaMax := math.Max(math.Max(maxX-minX, maxY-minY), 1)
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	// Working list: sites followed by the three super-triangle vertices.
	all := make([]Point, n+3)
	copy(all, points)
	all[n] = Pt(midX-1000*deltaMax, midY-1000*deltaMax)
	all[n+1] = Pt(midX+1000*deltaMax, midY-1000*deltaMax)
	all[n+2] = Pt(midX, midY+1000*deltaMax)

	tris := []Triangle{ensureCCW(all, n, n+1, n+2)}

	for pi := 0; pi < n; pi++ {
		p := all[pi]
		if dup := firstCoincident(points[:pi], p, t.Duplicate); dup {
			t.Duplicate[pi] = true
			continue
		}

		// Cavity: every triangle whose circumcircle contains p.
		var keep []Triangle
		var bad []Triangle
		for _, tri := range tris {
			if inCircumcircle(all[tri[0]], all[tri[1]], all[tri[2]], p) {
				bad = append(bad, tri)
			} else {
				keep = append(keep, tri)
			}
		}

		// Boundary edges appear exactly once among the bad triangles.
		count := make(map[edgeKey]int, len(bad)*3)
		var order []edgeKey
		for _, tri := range bad {
			for k := 0; k < 3; k++ {
				key := makeEdgeKey(tri[k], tri[(k+1)%3])
				if count[key] == 0 {
					order = append(order, key)
				}
				count[key]++
			}
		}
		for _, key := range order {
			if count[key] != 1 {
				continue
			}
			keep = append(keep, ensureCCW(all, key.a, key.b, pi))
		}
		tris = keep
	}

	adj := make([]map[int]bool, n)
	for _, tri := range tris {
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		t.Triangles = append(t.Triangles, tri)
	}
	// Hull edges survive in triangles that touch the super-triangle, so
	// adjacency is read from every triangle, not just the interior ones.
	for _, tri := range tris {
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a >= n || b >= n {
				continue
			}
			if adj[a] == nil {
				adj[a] = make(map[int]bool)
			}
			if adj[b] == nil {
				adj[b] = make(map[int]bool)
			}
			adj[a][b] = true
			adj[b][a] = true
		}
	}
	for i, set := range adj {
		for j := range set {
			t.Neighbors[i] = append(t.Neighbors[i], j)
		}
		sort.Ints(t.Neighbors[i])
	}
	return t
}

func firstCoincident(prev []Point, p Point, dup []bool) bool {
	for i, q := range prev {
		if !dup[i] && q == p {
			return true
		}
	}
	return false
}

// Adjacent reports whether sites i and j share a Delaunay edge.
func (t *Triangulation) Adjacent(i, j int) bool {
	ns := t.Neighbors[i]
	k := sort.SearchInts(ns, j)
	return k < len(ns) && ns[k] == j
}

// inCircumcircle reports whether p lies strictly inside the circumcircle of (a, b, c).
func inCircumcircle(a, b, c, p Point) bool {
	ax, ay := a.X()-p.X(), a.Y()-p.Y()
	bx, by := b.X()-p.X(), b.Y()-p.Y()
	cx, cy := c.X()-p.X(), c.Y()-p.Y()

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	if orientation(a, b, c) < 0 {
		return det < 0
	}
	return det > 0
}

func orientation(a, b, c Point) float64 {
	return (b.X()-a.X())*(c.Y()-a.Y()) - (c.X()-a.X())*(b.Y()-a.Y())
}

func ensureCCW(pts []Point, a, b, c int) Triangle {
	if orientation(pts[a], pts[b], pts[c]) < 0 {
		return Triangle{a, c, b}
	}
	return Triangle{a, b, c}
}

// Circumcenter returns the circumcenter of (a, b, c); ok is false for degenerate triangles.
func Circumcenter(a, b, c Point) (cc Point, ok bool) {
	d := 2 * (a.X()*(b.Y()-c.Y()) + b.X()*(c.Y()-a.Y()) + c.X()*(a.Y()-b.Y()))
	if math.Abs(d) < 1e-12 {
		return Point{}, false
	}
	a2 := a.Dot(a)
	b2 := b.Dot(b)
	c2 := c.Dot(c)
	ux := (a2*(b.Y()-c.Y()) + b2*(c.Y()-a.Y()) + c2*(a.Y()-b.Y())) / d
	uy := (a2*(c.X()-b.X()) + b2*(a.X()-c.X()) + c2*(b.X()-a.X())) / d
	return Pt(ux, uy), true
}
