// Package geom provides the planar primitives used to place columns along a
// profile line: points, segments and polylines.
//
// # Overview
//
// A profile line is an ordered chain of straight segments drawn on a map in a
// Cartesian coordinate system (for example RD New, EPSG:28992). The order of
// the vertices is the direction of the section: the first vertex is the left
// edge of the drawn section, the last vertex the right edge.
//
// # Polylines
//
// Build a [Polyline] with [NewPolyline]. Consecutive duplicate vertices are
// collapsed so that every stored segment has a positive length; a line that
// collapses to a single point is rejected with a DEGENERATE_LINE error:
//
//	line, err := geom.NewPolyline(geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10))
//	if err != nil {
//	    return err
//	}
//	fmt.Println(line.Length()) // 20
//
// Open, bent and closed lines are handled the same way: a closed line is a
// polyline whose first and last vertex coincide, and its last segment simply
// returns to the start.
//
// # Clamped projection
//
// [ClosestOnSegment] projects a point onto a segment and clamps the
// projection parameter to [0, 1], so a point past either end of a segment is
// mapped onto the nearer endpoint and never onto the segment's extension.
//
// # Concurrency
//
// All types are immutable values; every function is safe for concurrent use.
package geom
