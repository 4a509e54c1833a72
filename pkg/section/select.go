package section

import (
	"math"

	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
)

// Select returns the columns lying inside the corridor of half-width buffer
// around line, in input order.
//
// The corridor has flat ends and rounded corners: a column beyond either end
// of an open line is excluded even if it is within buffer of the end vertex,
// while columns on the outside of a bend are kept. A closed line has no ends.
// Columns on the corridor boundary are included.
//
// Select fails with INVALID_INPUT when buffer is not a positive finite
// number, DEGENERATE_LINE for an invalid line and EMPTY_COLUMN_SET when no
// column is selected.
func Select(columns []Column, line geom.Polyline, buffer float64) ([]Column, error) {
	if !(buffer > 0) || math.IsInf(buffer, 1) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "buffer must be a positive number, got %g", buffer)
	}
	if !line.Valid() || line.Length() <= 0 {
		return nil, errors.New(errors.ErrCodeDegenerateLine, "profile line has no positive-length segment")
	}

	tol := buffer * 1e-9
	var selected []Column
	for _, c := range columns {
		if inCorridor(c.Point(), line, buffer+tol) {
			selected = append(selected, c)
		}
	}
	if len(selected) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyColumnSet,
			"none of %d columns lies within %g of the profile line", len(columns), buffer)
	}
	return selected, nil
}

func inCorridor(p geom.Point, line geom.Polyline, buffer float64) bool {
	n := line.NumSegments()
	closed := line.Closed()
	for i := 0; i < n; i++ {
		s := line.Segment(i)
		d := s.Dir()
		l2 := d.Dot(d)
		if l2 == 0 {
			continue
		}
		t := p.Sub(s.A).Dot(d) / l2
		if t >= 0 && t <= 1 && geom.Dist(p, s.At(t)) <= buffer {
			return true
		}
		// Round join at every vertex except the free ends of an open line.
		if (i > 0 || closed) && geom.Dist(p, s.A) <= buffer {
			return true
		}
	}
	return false
}
