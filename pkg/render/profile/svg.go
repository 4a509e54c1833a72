package profile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"math"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// DefaultDepth is the drawn depth of a column without a "depth" payload.
const DefaultDepth = 5.0

const (
	margin     = 48.0
	fontFamily = "Helvetica, Arial, sans-serif"

	columnFill   = "#e8dcc4"
	columnStroke = "#5b4a2f"
	surfaceColor = "#8c6d31"
	waterColor   = "#1f77b4"
)

// Option configures RenderSVG.
type Option func(*renderer)

type renderer struct {
	x0            float64
	width, height float64
	title         string
	depth         float64
}

func WithX0(x0 float64) Option          { return func(r *renderer) { r.x0 = x0 } }
func WithTitle(t string) Option         { return func(r *renderer) { r.title = t } }
func WithDefaultDepth(d float64) Option { return func(r *renderer) { r.depth = d } }

// WithSize sets the SVG size in pixels. Defaults to 960x420.
func WithSize(w, h float64) Option {
	return func(r *renderer) { r.width, r.height = w, h }
}

// bar is one column in drawing coordinates.
type bar struct {
	name        string
	extent      section.Extent
	top, bottom float64
	groundwater *float64
}

// RenderSVG draws s. An empty section yields an empty frame.
func RenderSVG(s section.OrderedSection, line geom.Polyline, opts ...Option) []byte {
	r := renderer{width: 960, height: 420, depth: DefaultDepth}
	for _, opt := range opts {
		opt(&r)
	}

	extents, total := section.Extents(s, line, r.x0)
	bars := make([]bar, len(s.Entries))
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i, e := range s.Entries {
		c := e.Column
		depth := r.depth
		if d, ok := c.Payload["depth"].(float64); ok && d > 0 {
			depth = d
		}
		b := bar{name: c.Name, extent: extents[i], top: c.Z, bottom: c.Z - depth, groundwater: c.GroundwaterLevel}
		bars[i] = b
		minY, maxY = math.Min(minY, b.bottom), math.Max(maxY, b.top)
		if b.groundwater != nil {
			minY, maxY = math.Min(minY, *b.groundwater), math.Max(maxY, *b.groundwater)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="20" text-anchor="middle" font-family="%s" font-size="16">%s</text>`+"\n",
			r.width/2, fontFamily, escapeXML(r.title))
	}
	if len(bars) == 0 {
		buf.WriteString("</svg>\n")
		return buf.Bytes()
	}

	if total <= 0 {
		total = 1
	}
	if maxY-minY <= 0 {
		minY, maxY = minY-1, maxY+1
	}
	sx := (r.width - 2*margin) / total
	sy := (r.height - 2*margin) / (maxY - minY)
	px := func(x float64) float64 { return margin + (x-r.x0)*sx }
	py := func(y float64) float64 { return margin + (maxY-y)*sy }

	renderAxes(&buf, &r, minY, maxY, py)

	for _, b := range bars {
		x, w := px(b.extent.Left), b.extent.Width()*sx
		fmt.Fprintf(&buf, `  <rect class="column" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			x, py(b.top), w, (b.top-b.bottom)*sy, columnFill, columnStroke)
		fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="1.5"/>`+"\n",
			px(b.extent.Center), py(b.top), px(b.extent.Center), py(b.bottom), columnStroke)
		fmt.Fprintf(&buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="11">%s</text>`+"\n",
			px(b.extent.Center), py(b.top)-6, fontFamily, escapeXML(b.name))
	}

	surface := make([]string, len(bars))
	for i, b := range bars {
		surface[i] = fmt.Sprintf("%.2f,%.2f", px(b.extent.Center), py(b.top))
	}
	writePolyline(&buf, "surface", surface, surfaceColor, "")

	var water []string
	for _, b := range bars {
		if b.groundwater != nil {
			water = append(water, fmt.Sprintf("%.2f,%.2f", px(b.extent.Center), py(*b.groundwater)))
		}
	}
	if len(water) > 1 {
		writePolyline(&buf, "groundwater", water, waterColor, "6,4")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderAxes(buf *bytes.Buffer, r *renderer, minY, maxY float64, py func(float64) float64) {
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333" stroke-width="1"/>`+"\n",
		margin, margin, margin, r.height-margin)
	for _, y := range []float64{maxY, (minY + maxY) / 2, minY} {
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.2f" text-anchor="end" font-family="%s" font-size="10">%.1f</text>`+"\n",
			margin-4, py(y)+3, fontFamily, y)
	}
	fmt.Fprintf(buf, `  <text x="12" y="%.1f" font-family="%s" font-size="11" transform="rotate(-90 12 %.1f)" text-anchor="middle">Level [m REF]</text>`+"\n",
		r.height/2, fontFamily, r.height/2)
}

func writePolyline(buf *bytes.Buffer, class string, pts []string, color, dash string) {
	fmt.Fprintf(buf, `  <polyline class="%s" fill="none" stroke="%s" stroke-width="2"`, class, color)
	if dash != "" {
		fmt.Fprintf(buf, ` stroke-dasharray="%s"`, dash)
	}
	buf.WriteString(` points="`)
	for i, p := range pts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(p)
	}
	buf.WriteString("\"/>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
