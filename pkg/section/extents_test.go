package section_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/ordering"
	"github.com/matzehuels/geoprofile/pkg/section"
)

func TestExtentsReprojected(t *testing.T) {
	cols := []section.Column{col("A", 0, 0), col("B", 5, 5), col("C", 10, 0)}
	line := mustLine(t, geom.Pt(0, 0), geom.Pt(10, 0))
	s, err := section.Assemble(cols, line, section.Options{Reproject: true})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got, total := section.Extents(s, line, 100)
	want := []section.Extent{
		{Left: 100, Center: 100, Right: 102.5},
		{Left: 102.5, Center: 105, Right: 107.5},
		{Left: 107.5, Center: 110, Right: 110},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("extents mismatch (-want +got):\n%s", diff)
	}
	if total != 10 {
		t.Errorf("total = %v, want 10", total)
	}
}

func TestExtentsReprojectedUsesLineEnds(t *testing.T) {
	cols := []section.Column{col("A", 2, 1), col("B", 6, -1)}
	line := mustLine(t, geom.Pt(0, 0), geom.Pt(10, 0))
	s, err := section.Assemble(cols, line, section.Options{Reproject: true})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got, total := section.Extents(s, line, 0)
	want := []section.Extent{
		{Left: 0, Center: 1, Right: 3},
		{Left: 3, Center: 5, Right: 7},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("extents mismatch (-want +got):\n%s", diff)
	}
	if math.Abs(total-7) > 1e-9 {
		t.Errorf("total = %v, want 7", total)
	}
}

func TestExtentsOriginalPositions(t *testing.T) {
	cols := []section.Column{col("A", 0, 0), col("B", 5, 5), col("C", 10, 0), col("D", 14, 3)}
	line := mustLine(t, geom.Pt(0, 0), geom.Pt(20, 0))
	s, err := section.Assemble(cols, line, section.Options{Policy: ordering.PolicyInput})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	got, total := section.Extents(s, line, 0)
	if got[0].Left != got[0].Center {
		t.Errorf("first column has an outer half: %+v", got[0])
	}
	if last := got[len(got)-1]; last.Center != last.Right {
		t.Errorf("last column has an outer half: %+v", last)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Left != got[i-1].Right {
			t.Errorf("gap between extents %d and %d: %v != %v", i-1, i, got[i-1].Right, got[i].Left)
		}
	}
	// Without reprojection the centres sit at the path distances.
	for i, e := range s.Entries {
		if math.Abs(got[i].Center-e.Placement.ArcLength) > 1e-9 {
			t.Errorf("%s: center %v, want arc length %v", e.Column.Name, got[i].Center, e.Placement.ArcLength)
		}
	}
	if want := geom.PathLength(s.Positions()); math.Abs(total-want) > 1e-9 {
		t.Errorf("total = %v, want %v", total, want)
	}
}

func TestExtentsEmpty(t *testing.T) {
	got, total := section.Extents(section.OrderedSection{}, geom.Polyline{}, 3)
	if got != nil || total != 0 {
		t.Errorf("Extents(empty) = %v, %v", got, total)
	}
}
