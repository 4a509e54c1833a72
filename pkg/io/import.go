package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// Input is a decoded input document.
type Input struct {
	Name    string
	Line    geom.Polyline
	Columns []section.Column
}

type document struct {
	Name    string           `json:"name,omitempty"`
	Line    [][2]float64     `json:"line"`
	Columns []section.Column `json:"columns"`
}

// ReadInput decodes and validates an input document from r.
//
// It returns INVALID_FORMAT for malformed JSON or unknown fields,
// INVALID_COLUMN for a missing or unusable column name, INVALID_INPUT for
// non-finite coordinates and DEGENERATE_LINE when the line has no
// positive-length segment. An empty column list is accepted here; the
// section build reports it.
func ReadInput(r io.Reader) (*Input, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode input document")
	}

	for i, c := range doc.Columns {
		if err := errors.ValidateColumnName(c.Name); err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
	}

	vertices := make([]geom.Point, len(doc.Line))
	for i, v := range doc.Line {
		vertices[i] = geom.Pt(v[0], v[1])
	}
	line, err := geom.NewPolyline(vertices...)
	if err != nil {
		return nil, err
	}

	return &Input{Name: doc.Name, Line: line, Columns: doc.Columns}, nil
}

// ImportInput reads an input document from path.
func ImportInput(path string) (*Input, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	in, err := ReadInput(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return in, nil
}

// WriteInput encodes in as an input document. The output reads back with
// [ReadInput] to an equal Input.
func WriteInput(in *Input, w io.Writer) error {
	doc := document{Name: in.Name, Columns: in.Columns}
	for _, v := range in.Line.Vertices() {
		doc.Line = append(doc.Line, [2]float64{v.X, v.Y})
	}
	if doc.Columns == nil {
		doc.Columns = []section.Column{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
