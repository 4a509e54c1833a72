// Package projection maps arbitrary map locations onto a profile line.
//
// [Project] finds the closest point on any segment of a [geom.Polyline] and
// reports the owning segment, the clamped projection parameter, the distance
// to the line and the arc length from the line's start. Every segment is a
// candidate; open, bent and closed lines need no special handling.
//
// Ties between segments at (nearly) equal distance, which happen for points
// sitting exactly at a bend vertex or on the bisector of a bend, resolve to
// the segment with the lower index. Together with clamping this keeps a
// point just before a bend on the segment that leads into the bend instead of
// projecting it onto the extension of the next segment.
package projection

import (
	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
)

// TieTolerance is the relative tolerance used to treat two segment distances
// as equal. It is multiplied by the total line length.
const TieTolerance = 1e-9

// Result describes the projection of one point onto a polyline.
type Result struct {
	Position  geom.Point // Closest point on the line
	Segment   int        // Index of the segment holding Position
	T         float64    // Clamped parameter of Position on that segment, in [0, 1]
	Distance  float64    // Distance from the input point to Position
	ArcLength float64    // Distance along the line from its start to Position
}

// Project projects p onto line.
//
// It returns a DEGENERATE_LINE error if the line has no segment of positive
// length (for example the zero value).
func Project(p geom.Point, line geom.Polyline) (Result, error) {
	if !line.Valid() || line.Length() <= 0 {
		return Result{}, errors.New(errors.ErrCodeDegenerateLine, "cannot project onto a line without a positive-length segment")
	}
	return project(p, line, TieTolerance*line.Length()), nil
}

// ProjectAll projects every point in pts, preserving order.
func ProjectAll(pts []geom.Point, line geom.Polyline) ([]Result, error) {
	if !line.Valid() || line.Length() <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateLine, "cannot project onto a line without a positive-length segment")
	}
	eps := TieTolerance * line.Length()
	out := make([]Result, len(pts))
	for i, p := range pts {
		out[i] = project(p, line, eps)
	}
	return out, nil
}

func project(p geom.Point, line geom.Polyline, eps float64) Result {
	best := Result{Segment: -1}
	for i := 0; i < line.NumSegments(); i++ {
		seg := line.Segment(i)
		segLen := seg.Length()
		if segLen == 0 {
			continue
		}
		q, t, d := geom.ClosestOnSegment(p, seg)
		// Strictly closer by more than eps; otherwise the lower index stays.
		if best.Segment >= 0 && d >= best.Distance-eps {
			continue
		}
		best = Result{
			Position:  q,
			Segment:   i,
			T:         t,
			Distance:  d,
			ArcLength: line.CumulativeLength(i) + t*segLen,
		}
	}
	return best
}
