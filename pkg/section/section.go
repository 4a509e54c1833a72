package section

import (
	"fmt"

	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/ordering"
	"github.com/matzehuels/geoprofile/pkg/projection"
)

// NoSegment is the Placement.SegmentIndex of a column that was not reprojected.
const NoSegment = -1

// Column is a located vertical profile such as a borehole or CPT.
// Only the location takes part in ordering; the rest is carried through.
type Column struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	// Z is the surface level.
	Z                float64        `json:"z"`
	GroundwaterLevel *float64       `json:"groundwater_level,omitempty"`
	Payload          map[string]any `json:"payload,omitempty"`
}

// Point returns the column's plan location.
func (c Column) Point() geom.Point { return geom.Pt(c.X, c.Y) }

// Placement is where a column ends up in the section.
type Placement struct {
	// ArcLength is the horizontal coordinate: distance along the line for
	// along-line ordering, distance along the visiting path otherwise.
	ArcLength float64 `json:"arc_length"`
	// Position is the projected point when reprojecting, the column's own
	// location otherwise.
	Position geom.Point `json:"position"`
	// SegmentIndex is the line segment Position lies on, or NoSegment.
	SegmentIndex int `json:"segment_index"`
}

// Entry pairs a column with its placement.
type Entry struct {
	Column    Column    `json:"column"`
	Placement Placement `json:"placement"`
}

// OrderedSection is an assembled cross-section.
type OrderedSection struct {
	Entries   []Entry         `json:"entries"`
	Policy    ordering.Policy `json:"policy"`
	Reproject bool            `json:"reproject"`
	// Length is the arc length of the last entry.
	Length float64 `json:"length"`
}

// Names returns the column names in section order.
func (s OrderedSection) Names() []string {
	names := make([]string, len(s.Entries))
	for i, e := range s.Entries {
		names[i] = e.Column.Name
	}
	return names
}

// Positions returns the placed positions in section order.
func (s OrderedSection) Positions() []geom.Point {
	pts := make([]geom.Point, len(s.Entries))
	for i, e := range s.Entries {
		pts[i] = e.Placement.Position
	}
	return pts
}

// Options configures Assemble.
type Options struct {
	// Policy selects the ordering. Empty means ordering.DefaultPolicy.
	Policy ordering.Policy
	// Reproject moves every column onto its closest point on the line.
	Reproject bool
	// Solver is used by the tour policy. Nil means ordering.NearestNeighbor{}.
	Solver ordering.Solver
}

// Assemble orders columns relative to line and computes their placements.
//
// It fails with DEGENERATE_LINE when line has no positive-length segment,
// INVALID_POLICY for an unknown policy, EMPTY_COLUMN_SET when columns is
// empty, INVALID_INPUT for non-finite coordinates and TOUR_INFEASIBLE when
// a tour solver misbehaves. No partial section is returned on failure.
func Assemble(columns []Column, line geom.Polyline, opts Options) (OrderedSection, error) {
	if !line.Valid() || line.Length() <= 0 {
		return OrderedSection{}, errors.New(errors.ErrCodeDegenerateLine, "profile line has no positive-length segment")
	}
	policy := opts.Policy
	if policy == "" {
		policy = ordering.DefaultPolicy
	}
	orderer, err := ordering.New(policy, opts.Solver)
	if err != nil {
		return OrderedSection{}, err
	}
	if len(columns) == 0 {
		return OrderedSection{}, errors.New(errors.ErrCodeEmptyColumnSet, "no columns to assemble")
	}

	original := make([]geom.Point, len(columns))
	for i, c := range columns {
		if err := validateColumn(i, c); err != nil {
			return OrderedSection{}, err
		}
		original[i] = c.Point()
	}

	placements := make([]Placement, len(columns))
	if opts.Reproject {
		proj, err := projection.ProjectAll(original, line)
		if err != nil {
			return OrderedSection{}, err
		}
		for i, r := range proj {
			placements[i] = Placement{Position: r.Position, SegmentIndex: r.Segment}
		}
	} else {
		for i, p := range original {
			placements[i] = Placement{Position: p, SegmentIndex: NoSegment}
		}
	}

	// Along-line ordering always projects the original locations; projecting
	// an already projected point may land on an earlier segment where the
	// line crosses itself. The path policies measure the placed positions.
	pts := original
	if policy != ordering.PolicyAlongLine {
		pts = make([]geom.Point, len(placements))
		for i, p := range placements {
			pts[i] = p.Position
		}
	}

	res, err := orderer.Order(pts, line)
	if err != nil {
		return OrderedSection{}, err
	}

	entries := make([]Entry, len(res.Order))
	for k, i := range res.Order {
		p := placements[i]
		p.ArcLength = res.ArcLength[k]
		entries[k] = Entry{Column: columns[i], Placement: p}
	}

	s := OrderedSection{
		Entries:   entries,
		Policy:    policy,
		Reproject: opts.Reproject,
	}
	if n := len(entries); n > 0 {
		s.Length = entries[n-1].Placement.ArcLength
	}
	return s, nil
}

func validateColumn(i int, c Column) error {
	label := c.Name
	if label == "" {
		label = fmt.Sprintf("#%d", i)
	}
	if err := errors.ValidateCoordinate("column "+label+" x", c.X); err != nil {
		return err
	}
	return errors.ValidateCoordinate("column "+label+" y", c.Y)
}
