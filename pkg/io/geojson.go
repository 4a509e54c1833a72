package io

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/section"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string         `json:"type"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func pointGeometry(p geom.Point) geometry {
	return geometry{Type: "Point", Coordinates: [2]float64{p.X, p.Y}}
}

func lineGeometry(pts ...geom.Point) geometry {
	coords := make([][2]float64, len(pts))
	for i, p := range pts {
		coords[i] = [2]float64{p.X, p.Y}
	}
	return geometry{Type: "LineString", Coordinates: coords}
}

// WriteGeoJSON writes the line and the section's columns as a GeoJSON
// FeatureCollection. Coordinates are written as given; no CRS is implied.
func WriteGeoJSON(s section.OrderedSection, line geom.Polyline, w io.Writer) error {
	fc := featureCollection{Type: "FeatureCollection"}
	if line.Valid() {
		fc.Features = append(fc.Features, feature{
			Type:       "Feature",
			Geometry:   lineGeometry(line.Vertices()...),
			Properties: map[string]any{"role": "line", "length": line.Length()},
		})
	}

	for k, e := range s.Entries {
		c, p := e.Column, e.Placement
		fc.Features = append(fc.Features, feature{
			Type:     "Feature",
			Geometry: pointGeometry(c.Point()),
			Properties: map[string]any{
				"role":       "column",
				"name":       c.Name,
				"order":      k,
				"arc_length": p.ArcLength,
			},
		})
		if !s.Reproject {
			continue
		}
		fc.Features = append(fc.Features,
			feature{
				Type:     "Feature",
				Geometry: pointGeometry(p.Position),
				Properties: map[string]any{
					"role":          "projected",
					"name":          c.Name,
					"order":         k,
					"segment_index": p.SegmentIndex,
				},
			},
			feature{
				Type:       "Feature",
				Geometry:   lineGeometry(c.Point(), p.Position),
				Properties: map[string]any{"role": "tie", "name": c.Name},
			},
		)
	}
	if fc.Features == nil {
		fc.Features = []feature{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
