package geom

import (
	"fmt"
	"math"

	"github.com/matzehuels/geoprofile/pkg/errors"
)

// Point is a planar (x, y) coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product of p and q treated as vectors.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// String formats the point as "(x, y)".
func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Segment is a straight piece of a polyline from A to B.
type Segment struct {
	A, B Point
}

// Length returns the length of the segment.
func (s Segment) Length() float64 { return Dist(s.A, s.B) }

// Dir returns the direction vector B - A.
func (s Segment) Dir() Point { return s.B.Sub(s.A) }

// At returns the point A + t*(B-A).
func (s Segment) At(t float64) Point { return s.A.Add(s.Dir().Scale(t)) }

// ClosestOnSegment returns the point of s closest to p, the projection
// parameter t in [0, 1] and the distance from p to that point.
//
// t is clamped: when the perpendicular foot of p lies before A or after B,
// the closest point is A or B respectively. A zero-length segment yields A
// with t = 0.
func ClosestOnSegment(p Point, s Segment) (q Point, t, dist float64) {
	d := s.Dir()
	l2 := d.Dot(d)
	if l2 == 0 {
		return s.A, 0, Dist(p, s.A)
	}
	t = p.Sub(s.A).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	q = s.At(t)
	return q, t, Dist(p, q)
}

// Polyline is an ordered chain of at least two vertices with no consecutive
// duplicates. The zero value is not usable; construct with [NewPolyline].
type Polyline struct {
	vertices []Point
	cum      []float64 // cum[i] is the arc length from the start to vertex i
}

// NewPolyline builds a polyline from vertices in drawing order. Consecutive
// duplicate vertices are collapsed. It returns a DEGENERATE_LINE error when
// no segment of positive length remains, and an INVALID_INPUT error for
// non-finite coordinates.
func NewPolyline(vertices ...Point) (Polyline, error) {
	kept := make([]Point, 0, len(vertices))
	for i, v := range vertices {
		if err := errors.ValidateCoordinate(fmt.Sprintf("line vertex %d x", i), v.X); err != nil {
			return Polyline{}, err
		}
		if err := errors.ValidateCoordinate(fmt.Sprintf("line vertex %d y", i), v.Y); err != nil {
			return Polyline{}, err
		}
		if len(kept) > 0 && kept[len(kept)-1] == v {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) < 2 {
		return Polyline{}, errors.New(errors.ErrCodeDegenerateLine,
			"profile line needs at least one segment of positive length (got %d distinct vertices)", len(kept))
	}

	cum := make([]float64, len(kept))
	for i := 1; i < len(kept); i++ {
		cum[i] = cum[i-1] + Dist(kept[i-1], kept[i])
	}
	if cum[len(cum)-1] == 0 {
		return Polyline{}, errors.New(errors.ErrCodeDegenerateLine, "profile line has zero length")
	}
	return Polyline{vertices: kept, cum: cum}, nil
}

// Valid reports whether the polyline was built by [NewPolyline].
func (pl Polyline) Valid() bool { return len(pl.vertices) >= 2 }

// Vertices returns a copy of the vertices.
func (pl Polyline) Vertices() []Point {
	out := make([]Point, len(pl.vertices))
	copy(out, pl.vertices)
	return out
}

// NumSegments returns the number of segments.
func (pl Polyline) NumSegments() int {
	if len(pl.vertices) < 2 {
		return 0
	}
	return len(pl.vertices) - 1
}

// Segment returns segment i, from vertex i to vertex i+1.
func (pl Polyline) Segment(i int) Segment {
	return Segment{A: pl.vertices[i], B: pl.vertices[i+1]}
}

// Start returns the first vertex.
func (pl Polyline) Start() Point { return pl.vertices[0] }

// End returns the last vertex.
func (pl Polyline) End() Point { return pl.vertices[len(pl.vertices)-1] }

// Closed reports whether the first and last vertex coincide.
func (pl Polyline) Closed() bool {
	return len(pl.vertices) > 2 && pl.Start() == pl.End()
}

// Length returns the total length of the polyline.
func (pl Polyline) Length() float64 {
	if len(pl.cum) == 0 {
		return 0
	}
	return pl.cum[len(pl.cum)-1]
}

// CumulativeLength returns the arc length from the start to vertex i.
func (pl Polyline) CumulativeLength(i int) float64 { return pl.cum[i] }

// PathLength returns the length of the open path through pts in order.
// Unlike a Polyline, pts may contain duplicates.
func PathLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += Dist(pts[i-1], pts[i])
	}
	return total
}
