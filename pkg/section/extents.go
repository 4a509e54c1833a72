package section

import "github.com/matzehuels/geoprofile/pkg/geom"

// Extent is the horizontal interval a column occupies in a plotted section.
type Extent struct {
	Left   float64 `json:"left"`
	Center float64 `json:"center"`
	Right  float64 `json:"right"`
}

// Width returns Right - Left.
func (e Extent) Width() float64 { return e.Right - e.Left }

// Extents lays the section's columns out side by side starting at x0.
//
// Each column reaches halfway to its neighbours' placed positions. The outer
// neighbours of the first and last column are the line's start and end
// vertex for a reprojected section; otherwise the outer columns themselves,
// so they get no outer half. The returned total is the width of all extents.
func Extents(s OrderedSection, line geom.Polyline, x0 float64) ([]Extent, float64) {
	n := len(s.Entries)
	if n == 0 {
		return nil, 0
	}

	pts := make([]geom.Point, 0, n+2)
	if s.Reproject && line.Valid() {
		pts = append(pts, line.Start())
	} else {
		pts = append(pts, s.Entries[0].Placement.Position)
	}
	pts = append(pts, s.Positions()...)
	if s.Reproject && line.Valid() {
		pts = append(pts, line.End())
	} else {
		pts = append(pts, s.Entries[n-1].Placement.Position)
	}

	out := make([]Extent, n)
	x := x0
	for i := 1; i <= n; i++ {
		left := geom.Dist(pts[i], pts[i-1]) / 2
		right := geom.Dist(pts[i], pts[i+1]) / 2
		out[i-1] = Extent{Left: x, Center: x + left, Right: x + left + right}
		x = out[i-1].Right
	}
	return out, x - x0
}
