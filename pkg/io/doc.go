// Package io reads section input documents and writes assembled sections.
//
// # Input Format
//
// An input document holds the profile line and the columns:
//
//	{
//	  "name": "Dike section 12",
//	  "line": [[0, 0], [120, 15], [240, 0]],
//	  "columns": [
//	    {"name": "CPT01", "x": 3.1, "y": 1.2, "z": 0.4},
//	    {"name": "B02", "x": 118, "y": 19, "z": 1.1, "groundwater_level": -0.8,
//	     "payload": {"source": "BRO"}}
//	  ]
//	}
//
// Line vertices are [x, y] pairs. Column names must be non-empty; payload is
// carried through untouched. Use [ImportInput] for a path and [ReadInput]
// for any io.Reader. Both validate the document and build the polyline, so
// a zero-length line is reported as DEGENERATE_LINE at read time.
//
// # Section Output
//
// [WriteSection] writes the ordered columns with their placement and plotting
// extent:
//
//	{
//	  "policy": "along-line",
//	  "reproject": true,
//	  "length": 240.9,
//	  "width": 240.9,
//	  "columns": [
//	    {"name": "CPT01", "x": 3.1, "y": 1.2, "z": 0.4,
//	     "arc_length": 3.2, "position": [3.2, 0.4], "segment_index": 0,
//	     "extent": {"left": 0, "center": 3.2, "right": 60.5}}
//	  ]
//	}
//
// segment_index is omitted when the section was not reprojected.
//
// # GeoJSON
//
// [WriteGeoJSON] writes a FeatureCollection for map overlays: the profile
// line, every column at its original location and, for reprojected sections,
// the projected position plus a tie line between the two. Each feature
// carries a "role" property ("line", "column", "projected" or "tie").
package io
