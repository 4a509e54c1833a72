// Package overlay draws a section in plan view: the profile line, each
// column at its surveyed location and, for reprojected sections, where the
// column was moved to on the line.
//
// # Usage
//
// Convert a section to DOT, then render it:
//
//	dot := overlay.ToDOT(s, line, overlay.Options{})
//	svg, err := overlay.RenderSVG(ctx, dot)
//	png, err := overlay.RenderPNG(ctx, dot)
//
// # Layout
//
// Every node is pinned at its map coordinate (pos="x,y!") and the graph is
// laid out with the neato engine, so Graphviz only draws. Coordinates are
// scaled to fit Options.Width points; the y axis points up as on a map.
//
// Columns are labelled with their position in the section ("1 CPT01").
// Dotted arrows connect consecutive columns in section order, and dashed
// ties connect original and projected locations.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG and
// PNG rendering; no Graphviz installation is required.
package overlay
