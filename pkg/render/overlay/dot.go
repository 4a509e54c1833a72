package overlay

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// Options configures overlay rendering.
type Options struct {
	// Width is the drawing size of the longer map axis in points.
	// Zero means 720.
	Width float64
	// Title is drawn above the map when set.
	Title string
	// HideOrder omits the section order arrows.
	HideOrder bool
}

const defaultWidth = 720

// Colors used by the overlay.
const (
	lineColor      = "#8c6d31"
	columnColor    = "#1f77b4"
	projectedColor = "#d62728"
	orderColor     = "#7f7f7f"
)

// ToDOT converts a section and its line to Graphviz DOT with pinned
// positions. Render the result with [RenderSVG] or [RenderPNG].
func ToDOT(s section.OrderedSection, line geom.Polyline, opts Options) string {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}
	vertices := line.Vertices()
	tf := fit(width, vertices, s)

	var buf bytes.Buffer
	buf.WriteString("digraph overlay {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=\"edgesfirst\";\n")
	buf.WriteString("  splines=false;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%s;\n  labelloc=t;\n  fontsize=18;\n", quote(opts.Title))
	}
	buf.WriteString("  node [fontsize=10, fontname=\"Helvetica\"];\n")
	buf.WriteString("  edge [arrowsize=0.6];\n")
	buf.WriteString("\n")

	for i, v := range vertices {
		fmt.Fprintf(&buf, "  \"L%d\" [shape=point, width=0.04, color=%q, pos=%q];\n", i, lineColor, tf.pos(v))
	}
	for i := 1; i < len(vertices); i++ {
		fmt.Fprintf(&buf, "  \"L%d\" -> \"L%d\" [dir=none, penwidth=2.5, color=%q];\n", i-1, i, lineColor)
	}
	buf.WriteString("\n")

	for k, e := range s.Entries {
		c := e.Column
		fmt.Fprintf(&buf, "  \"C%d\" [shape=circle, style=filled, fillcolor=%q, color=%q, width=0.12, label=\"\", xlabel=%s, pos=%q];\n",
			k, columnColor, columnColor, quote(fmt.Sprintf("%d %s", k+1, c.Name)), tf.pos(c.Point()))
		if s.Reproject {
			fmt.Fprintf(&buf, "  \"P%d\" [shape=point, width=0.08, color=%q, pos=%q];\n",
				k, projectedColor, tf.pos(e.Placement.Position))
			fmt.Fprintf(&buf, "  \"C%d\" -> \"P%d\" [dir=none, style=dashed, color=%q];\n", k, k, projectedColor)
		}
	}

	if !opts.HideOrder && len(s.Entries) > 1 {
		buf.WriteString("\n")
		prefix := "C"
		if s.Reproject {
			prefix = "P"
		}
		for k := 1; k < len(s.Entries); k++ {
			fmt.Fprintf(&buf, "  \"%s%d\" -> \"%s%d\" [style=dotted, color=%q];\n", prefix, k-1, prefix, k, orderColor)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", "")

// quote returns s as a DOT double-quoted string. Non-ASCII text is kept as
// UTF-8, which DOT reads natively.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// transform maps world coordinates to points.
type transform struct {
	minX, minY, scale float64
}

func fit(width float64, vertices []geom.Point, s section.OrderedSection) transform {
	pts := append([]geom.Point{}, vertices...)
	for _, e := range s.Entries {
		pts = append(pts, e.Column.Point(), e.Placement.Position)
	}
	if len(pts) == 0 {
		return transform{scale: 1}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	extent := math.Max(maxX-minX, maxY-minY)
	if extent == 0 {
		return transform{minX: minX, minY: minY, scale: 1}
	}
	return transform{minX: minX, minY: minY, scale: width / extent}
}

// pos formats p as a pinned Graphviz position in points.
func (t transform) pos(p geom.Point) string {
	return fmt.Sprintf("%.2f,%.2f!", (p.X-t.minX)*t.scale, (p.Y-t.minY)*t.scale)
}
