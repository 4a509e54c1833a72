package ordering

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/projection"
)

// Policy names an ordering policy.
type Policy string

const (
	PolicyAlongLine Policy = "along-line"
	PolicyTour      Policy = "tour"
	PolicyInput     Policy = "input"
)

// DefaultPolicy is used when no policy is given.
const DefaultPolicy = PolicyAlongLine

// Policies lists the supported policies in display order.
var Policies = []Policy{PolicyAlongLine, PolicyTour, PolicyInput}

// ParsePolicy parses a policy name. Matching is case-insensitive and accepts
// "custom" as an alias of "input" and "tsp" as an alias of "tour". An unknown
// name yields an INVALID_POLICY error.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "along-line", "alongline", "line":
		return PolicyAlongLine, nil
	case "tour", "tsp", "nearest_neighbor":
		return PolicyTour, nil
	case "input", "custom":
		return PolicyInput, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPolicy,
		"unknown ordering policy %q (must be one of: along-line, tour, input)", s)
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	return slices.Contains(Policies, p)
}

// Orderer computes the drawing order of a set of points relative to a line.
type Orderer interface {
	Order(pts []geom.Point, line geom.Polyline) (Result, error)
}

// Result is the outcome of an ordering.
type Result struct {
	// Order[k] is the input index of the point drawn at position k.
	Order []int
	// ArcLength[k] is the horizontal coordinate reported for position k.
	ArcLength []float64
}

// New returns the orderer for policy. The solver is only used by
// [PolicyTour]; nil selects [NearestNeighbor] with default settings.
func New(policy Policy, solver Solver) (Orderer, error) {
	switch policy {
	case PolicyAlongLine:
		return AlongLine{}, nil
	case PolicyTour:
		return Tour{Solver: solver}, nil
	case PolicyInput:
		return Input{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidPolicy,
		"unknown ordering policy %q (must be one of: along-line, tour, input)", string(policy))
}

// AlongLine orders points by their projected arc length on the line.
type AlongLine struct{}

// Order projects every point and stable-sorts by arc length.
func (AlongLine) Order(pts []geom.Point, line geom.Polyline) (Result, error) {
	proj, err := projection.ProjectAll(pts, line)
	if err != nil {
		return Result{}, err
	}
	// Arc lengths within the projection tolerance are equal, so the stable
	// sort keeps input order for columns sharing a foot point.
	eps := projection.TieTolerance * line.Length()
	order := seq(len(pts))
	slices.SortStableFunc(order, func(a, b int) int {
		if math.Abs(proj[a].ArcLength-proj[b].ArcLength) <= eps {
			return 0
		}
		return cmp.Compare(proj[a].ArcLength, proj[b].ArcLength)
	})
	arc := make([]float64, len(order))
	for k, i := range order {
		arc[k] = proj[i].ArcLength
	}
	return Result{Order: order, ArcLength: arc}, nil
}

// Input keeps the caller's order.
type Input struct{}

// Order returns the identity permutation with path distances as arc lengths.
func (Input) Order(pts []geom.Point, line geom.Polyline) (Result, error) {
	if !line.Valid() {
		return Result{}, errors.New(errors.ErrCodeDegenerateLine, "profile line has no positive-length segment")
	}
	order := seq(len(pts))
	return Result{Order: order, ArcLength: pathArcLengths(pts, order)}, nil
}

// Tour orders points along an approximately shortest open path that starts
// at the point nearest the line's first vertex.
type Tour struct {
	// Solver computes the path. Nil means NearestNeighbor{}.
	Solver Solver
}

// Order solves the open path and reports cumulative path distances.
// Fewer than two points need no solver.
func (t Tour) Order(pts []geom.Point, line geom.Polyline) (Result, error) {
	if !line.Valid() {
		return Result{}, errors.New(errors.ErrCodeDegenerateLine, "profile line has no positive-length segment")
	}
	if len(pts) < 2 {
		order := seq(len(pts))
		return Result{Order: order, ArcLength: make([]float64, len(pts))}, nil
	}

	solver := t.Solver
	if solver == nil {
		solver = NearestNeighbor{}
	}
	order, err := solver.Solve(pts, line.Start())
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeTourInfeasible, err, "tour solver failed")
	}
	if !isPermutation(order, len(pts)) {
		return Result{}, errors.New(errors.ErrCodeTourInfeasible,
			"tour solver returned %d indices that are not a permutation of %d columns", len(order), len(pts))
	}
	return Result{Order: order, ArcLength: pathArcLengths(pts, order)}, nil
}

// pathArcLengths returns the cumulative distance along pts visited in order.
func pathArcLengths(pts []geom.Point, order []int) []float64 {
	arc := make([]float64, len(order))
	for k := 1; k < len(order); k++ {
		arc[k] = arc[k-1] + geom.Dist(pts[order[k-1]], pts[order[k]])
	}
	return arc
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, i := range order {
		if i < 0 || i >= n || seen[i] {
			return false
		}
		seen[i] = true
	}
	return true
}

// seq returns [0, 1, ..., n-1].
func seq(n int) []int {
	result := make([]int, n)
	for i := range result {
		result[i] = i
	}
	return result
}
