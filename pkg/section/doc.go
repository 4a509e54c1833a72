// Package section assembles geotechnical cross-sections.
//
// A cross-section is built from a set of [Column] values (boreholes, CPTs or
// any other located vertical profile) and a profile line drawn by the user.
// [Assemble] decides the left-to-right order of the columns, computes the
// horizontal coordinate of each one and, when asked, moves every column onto
// the line:
//
//	line, _ := geom.NewPolyline(geom.Pt(0, 0), geom.Pt(10, 0))
//	s, err := section.Assemble(columns, line, section.Options{
//	    Policy:    ordering.PolicyAlongLine,
//	    Reproject: true,
//	})
//
// The result is an [OrderedSection]: every input column exactly once, paired
// with its [Placement]. Assemble is a pure function. It never mutates the
// columns, keeps no state between calls and returns identical output for
// identical input, so it is safe to call from multiple goroutines.
//
// # Supporting Steps
//
// [Select] narrows a larger column set to the ones lying inside a buffer
// around the line before assembly. [Extents] turns an assembled section into
// plotting intervals, and [Check] reports suspicious input such as duplicated
// names or locations.
//
// # Empty Input
//
// Assemble rejects an empty column set with EMPTY_COLUMN_SET rather than
// returning an empty section; every consumer of a section expects at least
// one column to draw.
package section
