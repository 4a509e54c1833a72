// Package ordering decides the left-to-right order in which columns appear
// in a cross-section.
//
// # Policies
//
// Three [Orderer] implementations cover the supported policies:
//
//   - [AlongLine] ("along-line"): project every column onto the profile line
//     and sort by arc length. Equal arc lengths keep input order. This is the
//     right choice when the columns already follow the drawn line.
//   - [Tour] ("tour"): visit the columns along an approximately shortest open
//     path that starts at the column nearest the line's first vertex. Use this
//     for wandering or looping sites where sorting by arc length would make
//     the section double back on itself.
//   - [Input] ("input"): keep the caller's order.
//
// Every orderer returns a [Result] holding a permutation of the input indices
// and the arc length reported for each position. For [Tour] and [Input] the
// arc length is the distance travelled along the resulting path, measured from
// the first column, so renderers still get a meaningful horizontal axis.
//
// # Tour Solvers
//
// [Tour] delegates to a [Solver] strategy:
//
//   - [NearestNeighbor]: greedy construction followed by 2-opt improvement,
//     bounded by MaxPasses. This is the default.
//   - [HeldKarp]: exact dynamic programming over subsets for small inputs
//     (at most [MaxExactPoints] columns), falling back to NearestNeighbor
//     above that size.
//
// Both solvers pin the first position to the column nearest the anchor and
// are deterministic: fixed iteration order, distance ties within a small
// epsilon resolved by ascending input index, no randomness.
//
// # Example
//
//	o, err := ordering.New(ordering.PolicyTour, ordering.NearestNeighbor{})
//	if err != nil {
//	    return err
//	}
//	res, err := o.Order(points, line)
package ordering
