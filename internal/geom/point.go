// Package geom holds the planar geometry shared by the zone synthesizer and the
// raster collaborator: points, polygon measures, convex clipping, Delaunay
// triangulation and canvas-clipped Voronoi cells.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a 2D position. Canvas space for zones, grid space for contours.
type Point = mgl64.Vec2

// Pt is shorthand for building a Point.
func Pt(x, y float64) Point {
	return Point{x, y}
}

// Polygon is a closed sequence of vertices; the closing edge is implicit.
type Polygon []Point

// Rect is an axis-aligned rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Polygon returns the rectangle corners in counter-clockwise order (y up).
func (r Rect) Polygon() Polygon {
	return Polygon{
		Pt(r.MinX, r.MinY),
		Pt(r.MaxX, r.MinY),
		Pt(r.MaxX, r.MaxY),
		Pt(r.MinX, r.MaxY),
	}
}

// Center returns the rectangle midpoint.
func (r Rect) Center() Point {
	return Pt((r.MinX+r.MaxX)/2, (r.MinY+r.MaxY)/2)
}

// SignedArea is the shoelace sum; positive for counter-clockwise winding in a y-up frame.
func SignedArea(poly Polygon) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += poly[j].X()*poly[i].Y() - poly[i].X()*poly[j].Y()
	}
	return sum / 2
}

// Area returns the absolute polygon area.
func Area(poly Polygon) float64 {
	return math.Abs(SignedArea(poly))
}

// Bounds returns the bounding rectangle of all vertices of the given polygons.
// ok is false when there are no vertices.
func Bounds(polys ...Polygon) (r Rect, ok bool) {
	r = Rect{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, poly := range polys {
		for _, p := range poly {
			r.MinX = math.Min(r.MinX, p.X())
			r.MinY = math.Min(r.MinY, p.Y())
			r.MaxX = math.Max(r.MaxX, p.X())
			r.MaxY = math.Max(r.MaxY, p.Y())
			ok = true
		}
	}
	return r, ok
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	return a.Sub(b).Len()
}

// DistSq returns the squared distance between two points.
func DistSq(a, b Point) float64 {
	d := a.Sub(b)
	return d.Dot(d)
}
