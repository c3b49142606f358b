package geom

// Voronoi returns each site's Voronoi cell clipped to bounds, indexed like sites.
// A cell is nil when the site is skipped (duplicate) or the clipped cell degenerates
// to fewer than three vertices or zero area.
func Voronoi(sites []Point, bounds Rect, skip []bool) []Polygon {
	cells := make([]Polygon, len(sites))
	for i, site := range sites {
		if skip != nil && skip[i] {
			continue
		}
		cell := bounds.Polygon()
		for j, other := range sites {
			if j == i || (skip != nil && skip[j]) {
				continue
			}
			cell = ClipCloser(cell, site, other)
			if len(cell) == 0 {
				break
			}
		}
		if len(cell) < 3 || Area(cell) == 0 {
			continue
		}
		cells[i] = cell
	}
	return cells
}

// Tessellation bundles the Delaunay triangulation and the clipped Voronoi cells
// of one site set.
type Tessellation struct {
	*Triangulation
	Bounds Rect
	Cells  []Polygon
}

// Tessellate triangulates the sites and derives their clipped Voronoi cells.
func Tessellate(sites []Point, bounds Rect) *Tessellation {
	tri := Triangulate(sites)
	return &Tessellation{
		Triangulation: tri,
		Bounds:        bounds,
		Cells:         Voronoi(sites, bounds, tri.Duplicate),
	}
}

// Valid reports whether cell i has a usable polygon.
func (t *Tessellation) Valid(i int) bool {
	return t.Cells[i] != nil
}
