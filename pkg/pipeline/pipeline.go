// Package pipeline runs the complete section build for the CLI and the
// HTTP API.
//
// A run has four stages:
//
//  1. Check: report duplicate names and locations in the input
//  2. Select: keep the columns inside the buffered line (only when Buffer > 0)
//  3. Assemble: order and place the columns along the line
//  4. Render: produce the requested artifacts (JSON, GeoJSON, DOT, SVG, PNG
//     and the profile drawing)
//
// Assembled sections and rendered artifacts are cached by content hash, so
// repeated runs over the same input are cheap.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, input, pipeline.Options{
//	    Policy:    "tour",
//	    Reproject: true,
//	    Formats:   []string{"json", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/geoprofile/pkg/cache"
	"github.com/matzehuels/geoprofile/pkg/errors"
	"github.com/matzehuels/geoprofile/pkg/ordering"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// DefaultOverlayWidth is the default overlay width in points.
const DefaultOverlayWidth = 720.0

// Format constants for output formats.
const (
	FormatJSON    = "json"
	FormatGeoJSON = "geojson"
	FormatDOT     = "dot"
	FormatSVG     = "svg"
	FormatPNG     = "png"
	FormatProfile = "profile"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:    true,
	FormatGeoJSON: true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
	FormatProfile: true,
}

// formatList is ValidFormats in documentation order.
var formatList = []string{FormatJSON, FormatGeoJSON, FormatDOT, FormatSVG, FormatPNG, FormatProfile}

// Extension returns the file extension written for format.
func Extension(format string) string {
	switch format {
	case FormatGeoJSON:
		return ".geojson"
	case FormatDOT:
		return ".dot"
	case FormatProfile:
		return ".profile.svg"
	}
	return "." + format
}

// ContentType returns the MIME type served for format.
func ContentType(format string) string {
	switch format {
	case FormatJSON:
		return "application/json"
	case FormatGeoJSON:
		return "application/geo+json"
	case FormatDOT:
		return "text/vnd.graphviz"
	case FormatSVG, FormatProfile:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

// Options contains all configuration for a section build.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Assembly options
	Policy    string  `json:"policy,omitempty"`
	Reproject bool    `json:"reproject"`
	Buffer    float64 `json:"buffer,omitempty"`
	Solver    string  `json:"solver,omitempty"`
	MaxPasses int     `json:"max_passes,omitempty"`
	MaxExact  int     `json:"max_exact,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	X0      float64  `json:"x0,omitempty"`
	Width   float64  `json:"width,omitempty"` // overlay width
	Title   string   `json:"title,omitempty"`
	// Depth is drawn for columns without a "depth" payload. Zero means
	// profile.DefaultDepth.
	Depth float64 `json:"depth,omitempty"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	solver    ordering.Solver
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// InputHash is the content hash of the input document.
	InputHash string

	// Section is the assembled section.
	Section section.OrderedSection

	// Warnings are the input checks' findings.
	Warnings []section.Warning

	// Extents lay the section out from Options.X0; Width is their total.
	Extents []section.Extent
	Width   float64

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Columns      int // columns in the input
	Selected     int // columns that reached assembly
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SectionHit bool // Whether the section came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(formatList, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Policy == "" {
		o.Policy = string(ordering.DefaultPolicy)
	}
	policy, err := ordering.ParsePolicy(o.Policy)
	if err != nil {
		return err
	}
	o.Policy = string(policy)
	if o.Solver == "" {
		o.Solver = ordering.SolverNearestNeighbor
	}
	solver, err := ordering.SolverByName(o.Solver, o.MaxPasses, o.MaxExact)
	if err != nil {
		return err
	}
	o.solver = solver
	if o.Buffer < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "buffer must not be negative, got %g", o.Buffer)
	}
	if err := errors.ValidateCoordinate("x0", o.X0); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Depth < 0 || math.IsNaN(o.Depth) || math.IsInf(o.Depth, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "depth must be a non-negative number, got %g", o.Depth)
	}
	if o.Width < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "width must not be negative, got %g", o.Width)
	}
	if o.Width == 0 {
		o.Width = DefaultOverlayWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Clone returns a copy of o that will be validated afresh.
func (o Options) Clone() Options {
	o.Formats = append([]string(nil), o.Formats...)
	o.solver = nil
	o.validated = false
	return o
}

// SectionKeyOpts returns cache key options for section assembly.
func (o *Options) SectionKeyOpts() cache.SectionKeyOpts {
	return cache.SectionKeyOpts{
		Policy:    o.Policy,
		Reproject: o.Reproject,
		Buffer:    o.Buffer,
		Solver:    o.Solver,
		MaxPasses: o.MaxPasses,
		MaxExact:  o.MaxExact,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		X0:     o.X0,
		Width:  o.Width,
		Title:  o.Title,
		Depth:  o.Depth,
	}
}
