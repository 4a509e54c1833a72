package overlay

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/ordering"
	"github.com/matzehuels/geoprofile/pkg/section"
)

func testSection(t *testing.T, reproject bool) (section.OrderedSection, geom.Polyline) {
	t.Helper()
	line, err := geom.NewPolyline(geom.Pt(0, 0), geom.Pt(100, 0), geom.Pt(100, 50))
	if err != nil {
		t.Fatal(err)
	}
	cols := []section.Column{
		{Name: "CPT01", X: 10, Y: 5},
		{Name: "B02", X: 60, Y: -8},
		{Name: "CPT03", X: 104, Y: 30},
	}
	s, err := section.Assemble(cols, line, section.Options{Policy: ordering.PolicyAlongLine, Reproject: reproject})
	if err != nil {
		t.Fatal(err)
	}
	return s, line
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name      string
		reproject bool
		opts      Options
		contains  []string
		excludes  []string
	}{
		{
			name:      "Reprojected",
			reproject: true,
			contains: []string{
				`"L0" -> "L1"`, `"L1" -> "L2"`,
				`xlabel="1 CPT01"`, `xlabel="3 CPT03"`,
				`"C0" -> "P0"`, `"P0" -> "P1"`, `"P1" -> "P2"`,
				`pos="0.00,55.38!"`, `pos="720.00,263.08!"`,
			},
		},
		{
			name:      "OriginalPositions",
			reproject: false,
			contains:  []string{`"C0" -> "C1"`, `"C1" -> "C2"`},
			excludes:  []string{`"P0"`},
		},
		{
			name:      "HideOrder",
			reproject: true,
			opts:      Options{HideOrder: true, Title: "Dike 12", Width: 360},
			contains:  []string{`label="Dike 12"`, `pos="0.00,27.69!"`},
			excludes:  []string{`"P0" -> "P1"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, line := testSection(t, tt.reproject)
			dot := ToDOT(s, line, tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(dot, want) {
					t.Errorf("DOT missing %s:\n%s", want, dot)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(dot, unwanted) {
					t.Errorf("DOT should not contain %s:\n%s", unwanted, dot)
				}
			}
		})
	}
}

func TestToDOTQuoting(t *testing.T) {
	line, err := geom.NewPolyline(geom.Pt(0, 0), geom.Pt(100, 0))
	if err != nil {
		t.Fatal(err)
	}
	cols := []section.Column{
		{Name: "Sondering Ørsted", X: 10, Y: 5},
		{Name: `B "west" \ 2`, X: 60, Y: -8},
	}
	s, err := section.Assemble(cols, line, section.Options{Policy: ordering.PolicyAlongLine})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(s, line, Options{Title: "Dijk Zuid–Noord"})

	for _, want := range []string{
		`xlabel="1 Sondering Ørsted"`,
		`xlabel="2 B \"west\" \\ 2"`,
		`label="Dijk Zuid–Noord"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `\u`) || strings.Contains(dot, `\x`) {
		t.Errorf("DOT contains Go escapes:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	s, line := testSection(t, true)
	svg, err := RenderSVG(context.Background(), ToDOT(s, line, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("viewBox=\"0 0 ")) {
		t.Errorf("output is not a normalized SVG:\n%.300s", svg)
	}
	if !bytes.Contains(svg, []byte("CPT01")) {
		t.Error("SVG missing column label")
	}
}

func TestRenderPNG(t *testing.T) {
	s, line := testSection(t, false)
	png, err := RenderPNG(context.Background(), ToDOT(s, line, Options{Width: 200}))
	if err != nil {
		t.Skipf("png renderer unavailable: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG: % x", png[:min(8, len(png))])
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("SVG without viewBox changed: %s", got)
	}
}
