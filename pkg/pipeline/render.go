package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/observability"
	"github.com/matzehuels/geoprofile/pkg/render/overlay"
	"github.com/matzehuels/geoprofile/pkg/render/profile"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, s section.OrderedSection, in *gpio.Input, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	hooks := observability.Section()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	// The overlay DOT feeds three formats; build it once.
	var dot string
	overlayDOT := func() string {
		if dot == "" {
			dot = overlay.ToDOT(s, in.Line, overlay.Options{Width: opts.Width, Title: opts.Title})
		}
		return dot
	}

	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}

		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = renderJSON(s, in, opts)
		case FormatGeoJSON:
			var buf bytes.Buffer
			err = gpio.WriteGeoJSON(s, in.Line, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(overlayDOT())
		case FormatSVG:
			data, err = overlay.RenderSVG(ctx, overlayDOT())
		case FormatPNG:
			data, err = overlay.RenderPNG(ctx, overlayDOT())
		case FormatProfile:
			popts := []profile.Option{profile.WithX0(opts.X0), profile.WithTitle(opts.Title)}
			if opts.Depth > 0 {
				popts = append(popts, profile.WithDefaultDepth(opts.Depth))
			}
			data = profile.RenderSVG(s, in.Line, popts...)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderJSON(s section.OrderedSection, in *gpio.Input, opts Options) ([]byte, error) {
	doc := gpio.NewSectionDocument(in.Name, s, in.Line, opts.X0)
	columns := make([]section.Column, len(s.Entries))
	for i, e := range s.Entries {
		columns[i] = e.Column
	}
	for _, w := range section.Check(columns) {
		doc.Warnings = append(doc.Warnings, w.Message)
	}

	var buf bytes.Buffer
	if err := gpio.WriteDocument(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
