// Package pkg provides the core libraries for geoprofile cross-sections.
//
// # Overview
//
// geoprofile turns a set of point-located soil columns (boreholes, CPTs)
// and a profile line drawn on a map into an ordered cross-section. The pkg
// directory is organized into four main areas:
//
//  1. Domain logic: [geom], [projection], [ordering] and [section]
//  2. Input and output: [io] and the renderers under [render]
//  3. Orchestration: [pipeline], shared by the CLI and the HTTP API
//  4. Infrastructure: [cache], [config], [errors] and [observability]
//
// # Architecture
//
// The typical data flow:
//
//	Input document (JSON columns + line)
//	         ↓
//	    [io] package (decode and validate)
//	         ↓
//	    [section] package (select, project, order)
//	         ↓
//	    [render] packages (plan overlay, cross-section)
//	         ↓
//	    JSON/GeoJSON/DOT/SVG/PNG output
//
// # Quick Start
//
// Build a section along a line and render its profile:
//
//	import (
//	    "github.com/matzehuels/geoprofile/pkg/geom"
//	    "github.com/matzehuels/geoprofile/pkg/ordering"
//	    "github.com/matzehuels/geoprofile/pkg/render/profile"
//	    "github.com/matzehuels/geoprofile/pkg/section"
//	)
//
//	line := geom.Polyline{{X: 0, Y: 0}, {X: 100, Y: 0}}
//	s, err := section.Assemble(columns, line, section.Options{
//	    Policy:    ordering.PolicyAlongLine,
//	    Reproject: true,
//	})
//	svg := profile.RenderSVG(s, line)
//
// Most callers go through [pipeline.Runner], which adds caching, hooks and
// multi-format output on top of the same steps.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/ordering  # Examples only
//	go test -tags integration ./pkg/...  # Include Redis and MongoDB tests
package pkg
