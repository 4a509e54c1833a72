package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// SectionDocument is the JSON form of an assembled section.
type SectionDocument struct {
	Name      string         `json:"name,omitempty"`
	Policy    string         `json:"policy"`
	Reproject bool           `json:"reproject"`
	Length    float64        `json:"length"`
	Width     float64        `json:"width"`
	Columns   []PlacedColumn `json:"columns"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// PlacedColumn is one column of a SectionDocument.
type PlacedColumn struct {
	Name             string         `json:"name"`
	X                float64        `json:"x"`
	Y                float64        `json:"y"`
	Z                float64        `json:"z"`
	GroundwaterLevel *float64       `json:"groundwater_level,omitempty"`
	ArcLength        float64        `json:"arc_length"`
	Position         [2]float64     `json:"position"`
	SegmentIndex     *int           `json:"segment_index,omitempty"`
	Extent           section.Extent `json:"extent"`
	Payload          map[string]any `json:"payload,omitempty"`
}

// NewSectionDocument lays s out from x0 and converts it to its JSON form.
func NewSectionDocument(name string, s section.OrderedSection, line geom.Polyline, x0 float64) SectionDocument {
	extents, width := section.Extents(s, line, x0)
	doc := SectionDocument{
		Name:      name,
		Policy:    string(s.Policy),
		Reproject: s.Reproject,
		Length:    s.Length,
		Width:     width,
		Columns:   make([]PlacedColumn, len(s.Entries)),
	}
	for i, e := range s.Entries {
		c, p := e.Column, e.Placement
		pc := PlacedColumn{
			Name:             c.Name,
			X:                c.X,
			Y:                c.Y,
			Z:                c.Z,
			GroundwaterLevel: c.GroundwaterLevel,
			ArcLength:        p.ArcLength,
			Position:         [2]float64{p.Position.X, p.Position.Y},
			Extent:           extents[i],
			Payload:          c.Payload,
		}
		if p.SegmentIndex != section.NoSegment {
			seg := p.SegmentIndex
			pc.SegmentIndex = &seg
		}
		doc.Columns[i] = pc
	}
	return doc
}

// WriteSection writes s as a SectionDocument laid out from x0.
func WriteSection(name string, s section.OrderedSection, line geom.Polyline, x0 float64, w io.Writer) error {
	return WriteDocument(NewSectionDocument(name, s, line, x0), w)
}

// WriteDocument encodes doc as indented JSON.
func WriteDocument(doc SectionDocument, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSection writes s to the file at path.
func ExportSection(name string, s section.OrderedSection, line geom.Polyline, x0 float64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteSection(name, s, line, x0, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
