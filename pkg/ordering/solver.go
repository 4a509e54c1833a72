package ordering

import (
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
)

// Solver computes an open path through points. The returned slice is a
// permutation of the point indices; position 0 must be adjacent to anchor.
type Solver interface {
	Solve(pts []geom.Point, anchor geom.Point) ([]int, error)
}

const (
	// DefaultMaxPasses bounds the 2-opt improvement passes of NearestNeighbor.
	DefaultMaxPasses = 64

	// DefaultMaxExact is the default HeldKarp size limit.
	DefaultMaxExact = 12

	// MaxExactPoints is the hard HeldKarp size limit; the table needs
	// 2^(n-1) * n entries.
	MaxExactPoints = 16

	// tieTolerance is relative to the extent of the point set.
	tieTolerance = 1e-9
)

// Solver names accepted by SolverByName.
const (
	SolverNearestNeighbor = "nearest-neighbor"
	SolverExact           = "exact"
)

// SolverByName returns the solver registered under name. maxPasses and
// maxExact override the defaults when positive.
func SolverByName(name string, maxPasses, maxExact int) (Solver, error) {
	nn := NearestNeighbor{MaxPasses: maxPasses}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SolverNearestNeighbor, "2opt", "2-opt", "heuristic":
		return nn, nil
	case SolverExact, "held-karp", "dp":
		return HeldKarp{MaxPoints: maxExact, Fallback: nn}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidInput,
		"unknown tour solver %q (must be one of: nearest-neighbor, exact)", name)
}

// NearestNeighbor builds a path greedily from the start column and improves
// it with 2-opt moves. The first position stays fixed and the end is free.
//
// The work is bounded by MaxPasses full 2-opt sweeps, each O(n^2). Reaching
// the bound returns the best path found so far, which is a valid but
// possibly longer tour.
type NearestNeighbor struct {
	// MaxPasses limits the 2-opt sweeps. Zero means DefaultMaxPasses;
	// a negative value disables improvement.
	MaxPasses int
}

// Solve implements Solver.
func (s NearestNeighbor) Solve(pts []geom.Point, anchor geom.Point) ([]int, error) {
	n := len(pts)
	if n == 0 {
		return []int{}, nil
	}
	eps := tieEpsilon(pts, anchor)
	start := nearest(pts, anchor, eps)

	path := make([]int, 0, n)
	path = append(path, start)
	visited := make([]bool, n)
	visited[start] = true

	for len(path) < n {
		cur := pts[path[len(path)-1]]
		best, bestD := -1, 0.0
		for j := 0; j < n; j++ {
			if visited[j] {
				continue
			}
			d := geom.Dist(cur, pts[j])
			if best < 0 || d < bestD-eps {
				best, bestD = j, d
			}
		}
		visited[best] = true
		path = append(path, best)
	}

	passes := s.MaxPasses
	if passes == 0 {
		passes = DefaultMaxPasses
	}
	twoOpt(pts, path, passes, eps)
	return path, nil
}

// twoOpt improves an open path in place. path[0] never moves.
func twoOpt(pts []geom.Point, path []int, maxPasses int, eps float64) {
	n := len(path)
	for pass := 0; pass < maxPasses; pass++ {
		improved := false
		for i := 1; i < n-1; i++ {
			for j := i + 1; j < n; j++ {
				a, b, c := pts[path[i-1]], pts[path[i]], pts[path[j]]
				delta := geom.Dist(a, c) - geom.Dist(a, b)
				if j+1 < n {
					d := pts[path[j+1]]
					delta += geom.Dist(b, d) - geom.Dist(c, d)
				}
				if delta < -eps {
					slices.Reverse(path[i : j+1])
					improved = true
				}
			}
		}
		if !improved {
			return
		}
	}
}

// HeldKarp solves the open path exactly by dynamic programming over subsets.
// Inputs larger than MaxPoints are handed to Fallback.
type HeldKarp struct {
	// MaxPoints is the largest input solved exactly. Zero means
	// DefaultMaxExact; values above MaxExactPoints are capped.
	MaxPoints int
	// Fallback handles larger inputs. Nil means NearestNeighbor{}.
	Fallback Solver
}

// Solve implements Solver.
func (s HeldKarp) Solve(pts []geom.Point, anchor geom.Point) ([]int, error) {
	limit := s.MaxPoints
	if limit <= 0 {
		limit = DefaultMaxExact
	}
	limit = min(limit, MaxExactPoints)

	n := len(pts)
	if n > limit {
		fb := s.Fallback
		if fb == nil {
			fb = NearestNeighbor{}
		}
		return fb.Solve(pts, anchor)
	}
	if n == 0 {
		return []int{}, nil
	}

	eps := tieEpsilon(pts, anchor)
	start := nearest(pts, anchor, eps)
	if n == 1 {
		return []int{start}, nil
	}

	// others[k] is the k-th non-start index, in ascending order.
	others := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if i != start {
			others = append(others, i)
		}
	}
	m := len(others)
	full := 1<<m - 1

	cost := make([][]float64, 1<<m)
	parent := make([][]int8, 1<<m)
	for mask := range cost {
		cost[mask] = make([]float64, m)
		parent[mask] = make([]int8, m)
		for k := range cost[mask] {
			cost[mask][k] = math.Inf(1)
			parent[mask][k] = -1
		}
	}
	for k := 0; k < m; k++ {
		cost[1<<k][k] = geom.Dist(pts[start], pts[others[k]])
	}

	for mask := 1; mask <= full; mask++ {
		for k := 0; k < m; k++ {
			if mask&(1<<k) == 0 || math.IsInf(cost[mask][k], 1) {
				continue
			}
			for next := 0; next < m; next++ {
				if mask&(1<<next) != 0 {
					continue
				}
				nm := mask | 1<<next
				c := cost[mask][k] + geom.Dist(pts[others[k]], pts[others[next]])
				if c < cost[nm][next]-eps {
					cost[nm][next] = c
					parent[nm][next] = int8(k)
				}
			}
		}
	}

	last, best := -1, math.Inf(1)
	for k := 0; k < m; k++ {
		if cost[full][k] < best-eps {
			last, best = k, cost[full][k]
		}
	}
	if last < 0 {
		return nil, errors.New(errors.ErrCodeTourInfeasible, "no complete path found")
	}

	path := make([]int, n)
	path[0] = start
	mask := full
	for pos := n - 1; pos >= 1; pos-- {
		path[pos] = others[last]
		prev := int(parent[mask][last])
		mask &^= 1 << last
		last = prev
	}
	return path, nil
}

// nearest returns the index of the point closest to anchor, preferring the
// lowest index among ties.
func nearest(pts []geom.Point, anchor geom.Point, eps float64) int {
	best, bestD := 0, geom.Dist(pts[0], anchor)
	for i := 1; i < len(pts); i++ {
		if d := geom.Dist(pts[i], anchor); d < bestD-eps {
			best, bestD = i, d
		}
	}
	return best
}

// tieEpsilon scales the tie tolerance to the bounding box of pts and anchor.
func tieEpsilon(pts []geom.Point, anchor geom.Point) float64 {
	minX, maxX, minY, maxY := anchor.X, anchor.X, anchor.Y, anchor.Y
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return tieTolerance * math.Max(1, math.Hypot(maxX-minX, maxY-minY))
}
